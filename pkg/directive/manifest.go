package directive

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// ManifestVersion is the current manifest format.
const ManifestVersion = 1

// Manifest lists every registration produced by a scan.
type Manifest struct {
	Version       int            `json:"manifestVersion"`
	Registrations []Registration `json:"registrations"`
}

// Add appends a registration, replacing any earlier one with the same module ID.
func (m *Manifest) Add(r Registration) {
	for i := range m.Registrations {
		if m.Registrations[i].ModuleID == r.ModuleID {
			m.Registrations[i] = r
			return
		}
	}
	m.Registrations = append(m.Registrations, r)
}

// Lookup returns the registration for a module ID.
func (m *Manifest) Lookup(moduleID string) (Registration, bool) {
	for _, r := range m.Registrations {
		if r.ModuleID == moduleID {
			return r, true
		}
	}
	return Registration{}, false
}

// ModuleIDs returns the registered module IDs, sorted.
func (m *Manifest) ModuleIDs() []string {
	ids := make([]string, 0, len(m.Registrations))
	for _, r := range m.Registrations {
		ids = append(ids, r.ModuleID)
	}
	sort.Strings(ids)
	return ids
}

func (m *Manifest) sort() {
	sort.Slice(m.Registrations, func(i, j int) bool {
		return m.Registrations[i].ModuleID < m.Registrations[j].ModuleID
	})
}

// WriteFile writes the manifest as indented JSON, creating parent directories.
func (m *Manifest) WriteFile(path string) error {
	m.Version = ManifestVersion
	m.sort()
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// ReadManifest loads a manifest written by WriteFile.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}
	if m.Version != ManifestVersion {
		return nil, fmt.Errorf("manifest %s: unsupported version %d", path, m.Version)
	}
	return &m, nil
}
