package config

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/open-rsc/openrsc/internal/errors"
)

const (
	// ConfigName is the configuration file name without extension.
	ConfigName = "openrsc"

	// EnvPrefix prefixes environment overrides, e.g. OPENRSC_DEV_PORT.
	EnvPrefix = "OPENRSC"

	DefaultHost     = "localhost"
	DefaultPort     = 3456
	DefaultManifest = "openrsc.manifest.json"
	DefaultDebounce = 100 * time.Millisecond
)

// FileNames are the accepted configuration files, in lookup order.
var FileNames = []string{ConfigName + ".json", ConfigName + ".yaml", ConfigName + ".yml"}

// Config is a project's openrsc configuration.
type Config struct {
	// Root is the project root, relative to the config file.
	Root string `mapstructure:"root" json:"root,omitempty"`

	// Source lists the directories the tagger scans, relative to Root.
	Source []string `mapstructure:"source" json:"source" validate:"min=1,dive,required"`

	// Output mirrors tagged files into this directory instead of
	// rewriting sources in place. Empty means in place.
	Output string `mapstructure:"output" json:"output,omitempty"`

	// Manifest is where the registration manifest is written.
	Manifest string `mapstructure:"manifest" json:"manifest" validate:"required"`

	// Extensions are the file extensions the tagger considers.
	Extensions []string `mapstructure:"extensions" json:"extensions" validate:"min=1,dive,startswith=."`

	// Template is the HTML page template.
	Template string `mapstructure:"template" json:"template,omitempty"`

	Dev     DevConfig     `mapstructure:"dev" json:"dev"`
	Static  StaticConfig  `mapstructure:"static" json:"static"`
	Publish PublishConfig `mapstructure:"publish" json:"publish"`

	configPath string
}

// DevConfig configures the development watcher and reload server.
type DevConfig struct {
	Host string `mapstructure:"host" json:"host" validate:"required"`
	Port int    `mapstructure:"port" json:"port" validate:"min=1,max=65535"`

	// Watch lists extra directories to watch besides Source.
	Watch []string `mapstructure:"watch" json:"watch,omitempty"`

	// Ignore lists glob patterns excluded from watching.
	Ignore []string `mapstructure:"ignore" json:"ignore,omitempty"`

	// Debounce coalesces bursts of file events.
	Debounce time.Duration `mapstructure:"debounce" json:"debounce" validate:"min=0"`

	// Proxy is the URL of the running application. When set, the dev
	// server proxies pages to it and injects the reload script.
	Proxy string `mapstructure:"proxy" json:"proxy,omitempty" validate:"omitempty,url"`
}

// StaticConfig configures static file serving.
type StaticConfig struct {
	Dir    string `mapstructure:"dir" json:"dir,omitempty"`
	Prefix string `mapstructure:"prefix" json:"prefix" validate:"startswith=/"`
}

// PublishConfig configures where client modules are published.
type PublishConfig struct {
	Bucket   string `mapstructure:"bucket" json:"bucket,omitempty"`
	Prefix   string `mapstructure:"prefix" json:"prefix,omitempty"`
	Region   string `mapstructure:"region" json:"region,omitempty"`
	Endpoint string `mapstructure:"endpoint" json:"endpoint,omitempty" validate:"omitempty,url"`
}

// New returns a configuration with default values.
func New() *Config {
	return &Config{
		Root:       ".",
		Source:     []string{"."},
		Manifest:   DefaultManifest,
		Extensions: []string{".go"},
		Dev: DevConfig{
			Host:     DefaultHost,
			Port:     DefaultPort,
			Debounce: DefaultDebounce,
		},
		Static: StaticConfig{Prefix: "/"},
	}
}

// newViper creates a viper instance seeded with every key's default, so
// environment overrides apply to keys absent from the file.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	d := New()
	v.SetDefault("root", d.Root)
	v.SetDefault("source", d.Source)
	v.SetDefault("output", d.Output)
	v.SetDefault("manifest", d.Manifest)
	v.SetDefault("extensions", d.Extensions)
	v.SetDefault("template", d.Template)
	v.SetDefault("dev.host", d.Dev.Host)
	v.SetDefault("dev.port", d.Dev.Port)
	v.SetDefault("dev.watch", d.Dev.Watch)
	v.SetDefault("dev.ignore", d.Dev.Ignore)
	v.SetDefault("dev.debounce", d.Dev.Debounce)
	v.SetDefault("dev.proxy", d.Dev.Proxy)
	v.SetDefault("static.dir", d.Static.Dir)
	v.SetDefault("static.prefix", d.Static.Prefix)
	v.SetDefault("publish.bucket", d.Publish.Bucket)
	v.SetDefault("publish.prefix", d.Publish.Prefix)
	v.SetDefault("publish.region", d.Publish.Region)
	v.SetDefault("publish.endpoint", d.Publish.Endpoint)
	return v
}

// Load reads the configuration file in dir.
func Load(dir string) (*Config, error) {
	path, ok := find(dir)
	if !ok {
		return nil, errors.New(errors.CodeConfigNotFound).
			WithDetailf("no %s found in %s", strings.Join(FileNames, ", "), dir).
			WithSuggestion("Run 'openrsc init' to create one")
	}
	return LoadFile(path)
}

// LoadFile reads, defaults and validates a configuration file. JSON and
// YAML are accepted; OPENRSC_* environment variables override file values.
func LoadFile(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.CodeConfigNotFound).WithDetailf("no config at %s", path)
		}
		return nil, errors.New(errors.CodeConfigInvalid).Wrap(err)
	}

	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, errors.New(errors.CodeConfigInvalid).
			WithDetailf("failed to parse %s", filepath.Base(path)).
			WithSuggestion("Check the file for syntax errors").
			Wrap(err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.New(errors.CodeConfigInvalid).Wrap(err)
	}
	cfg.configPath = path
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromWorkingDir loads the configuration of the project containing the
// working directory.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	root, err := FindProjectRoot(wd)
	if err != nil {
		return nil, err
	}
	return Load(root)
}

// FindProjectRoot walks up from startDir to the first directory holding a
// configuration file.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}
	for {
		if _, ok := find(dir); ok {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New(errors.CodeConfigNotFound).
				WithDetailf("no configuration in %s or any parent directory", startDir).
				WithSuggestion("Run 'openrsc init' to create one")
		}
		dir = parent
	}
}

// Exists reports whether dir holds a configuration file.
func Exists(dir string) bool {
	_, ok := find(dir)
	return ok
}

func find(dir string) (string, bool) {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
	}
	return "", false
}

// SaveTo writes the configuration as JSON.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New(errors.CodeConfigInvalid).Wrap(err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.New(errors.CodeConfigInvalid).Wrap(err)
	}
	c.configPath = path
	return nil
}

// applyDefaults fills fields an explicit empty value in the file cleared.
func (c *Config) applyDefaults() {
	d := New()
	if c.Root == "" {
		c.Root = d.Root
	}
	if len(c.Source) == 0 {
		c.Source = d.Source
	}
	if c.Manifest == "" {
		c.Manifest = d.Manifest
	}
	if len(c.Extensions) == 0 {
		c.Extensions = d.Extensions
	}
	if c.Dev.Host == "" {
		c.Dev.Host = d.Dev.Host
	}
	if c.Dev.Port == 0 {
		c.Dev.Port = d.Dev.Port
	}
	if c.Static.Prefix == "" {
		c.Static.Prefix = d.Static.Prefix
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the configuration against its field constraints.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) {
		return errors.New(errors.CodeConfigInvalid).Wrap(err)
	}
	lines := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		lines = append(lines, fmt.Sprintf("%s: failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return errors.New(errors.CodeConfigInvalid).
		WithDetail(strings.Join(lines, "\n")).
		WithSuggestion("Fix the listed fields in " + filepath.Base(c.Path()))
}

// ValidatePublish checks the settings the publish command needs.
func (c *Config) ValidatePublish() error {
	if c.Publish.Bucket == "" {
		return errors.New(errors.CodeConfigInvalid).
			WithDetail("publish.bucket is not set").
			WithSuggestion("Set publish.bucket or OPENRSC_PUBLISH_BUCKET")
	}
	return nil
}

// Path returns the file the configuration was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory holding the configuration file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		wd, _ := os.Getwd()
		return wd
	}
	return filepath.Dir(c.configPath)
}

// RootDir returns the absolute project root.
func (c *Config) RootDir() string {
	return resolve(c.Dir(), c.Root)
}

// SourceDirs returns the absolute directories the tagger scans.
func (c *Config) SourceDirs() []string {
	dirs := make([]string, len(c.Source))
	for i, s := range c.Source {
		dirs[i] = resolve(c.RootDir(), s)
	}
	return dirs
}

// WatchDirs returns the source directories plus dev.watch.
func (c *Config) WatchDirs() []string {
	dirs := c.SourceDirs()
	for _, w := range c.Dev.Watch {
		dirs = append(dirs, resolve(c.RootDir(), w))
	}
	return dirs
}

// OutputPath returns the absolute mirror directory, or "" for in place.
func (c *Config) OutputPath() string {
	if c.Output == "" {
		return ""
	}
	return resolve(c.RootDir(), c.Output)
}

// ManifestPath returns the absolute manifest location.
func (c *Config) ManifestPath() string {
	return resolve(c.RootDir(), c.Manifest)
}

// TemplatePath returns the absolute template location, or "".
func (c *Config) TemplatePath() string {
	if c.Template == "" {
		return ""
	}
	return resolve(c.RootDir(), c.Template)
}

// StaticDir returns the absolute static directory, or "".
func (c *Config) StaticDir() string {
	if c.Static.Dir == "" {
		return ""
	}
	return resolve(c.RootDir(), c.Static.Dir)
}

// DevAddress returns host:port for the dev server.
func (c *Config) DevAddress() string {
	return fmt.Sprintf("%s:%d", c.Dev.Host, c.Dev.Port)
}

// DevURL returns the dev server's base URL.
func (c *Config) DevURL() string {
	return "http://" + c.DevAddress()
}

func resolve(base, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(base, p)
}
