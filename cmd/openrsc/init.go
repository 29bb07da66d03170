package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/open-rsc/openrsc/internal/config"
	"github.com/open-rsc/openrsc/internal/errors"
)

func initCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Write a default openrsc.json",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			path, err := runInit(dir, force)
			if err != nil {
				return err
			}
			success("Created %s", path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing configuration")
	return cmd
}

func runInit(dir string, force bool) (string, error) {
	if config.Exists(dir) && !force {
		return "", errors.New(errors.CodeConfigInvalid).
			WithDetailf("%s already has a configuration", dir).
			WithSuggestion("Pass --force to overwrite it")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, config.ConfigName+".json")
	if err := config.New().SaveTo(path); err != nil {
		return "", err
	}
	return path, nil
}
