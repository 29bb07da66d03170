package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/open-rsc/openrsc/internal/config"
	"github.com/open-rsc/openrsc/pkg/directive"
)

func tagCmd() *cobra.Command {
	var (
		root   string
		output string
	)

	cmd := &cobra.Command{
		Use:   "tag",
		Short: `Tag "use client" modules and write the manifest`,
		Long: `Scan the source directories for files that start with the
"use client" directive, append a registration to each one, and write
the manifest of tagged modules.

Examples:
  openrsc tag
  openrsc tag --output=build/tagged`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(root)
			if err != nil {
				return err
			}
			if output != "" {
				cfg.Output = output
			}

			start := time.Now()
			result, err := runTag(cmd.Context(), cfg, slog.Default())
			if err != nil {
				return err
			}
			for _, w := range result.Warnings {
				warn("%s", w)
			}
			success("Tagged %d modules in %s", len(result.Manifest.Registrations), time.Since(start).Round(time.Millisecond))
			info("%d files scanned, %d rewritten", result.Files, len(result.Changed))
			info("manifest: %s", cfg.ManifestPath())
			return nil
		},
	}

	cmd.Flags().StringVarP(&root, "root", "r", "", "Project directory (default: nearest with a configuration)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Mirror tagged files into this directory")
	return cmd
}

func loadConfig(root string) (*config.Config, error) {
	if root == "" {
		return config.LoadFromWorkingDir()
	}
	dir, err := config.FindProjectRoot(root)
	if err != nil {
		return nil, err
	}
	return config.Load(dir)
}

func runTag(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*directive.ScanResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	opts := []directive.ScannerOption{directive.WithLogger(logger)}
	if out := cfg.OutputPath(); out != "" {
		opts = append(opts, directive.WithOutput(out))
	}
	scanner, err := directive.NewScanner(directive.Options{
		Root:       cfg.RootDir(),
		Extensions: cfg.Extensions,
	}, opts...)
	if err != nil {
		return nil, err
	}
	result, err := scanner.Scan(ctx, cfg.SourceDirs()...)
	if err != nil {
		return nil, err
	}
	if err := result.Manifest.WriteFile(cfg.ManifestPath()); err != nil {
		return nil, err
	}
	return result, nil
}
