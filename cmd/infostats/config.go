package main

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matsen/infostats/internal/config"
)

var configInitForce bool

func init() {
	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "Overwrite an existing file")
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the infostats.yml configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init [file]",
	Short: "Write a config file holding the default settings",
	Long: `Write a config file holding the default settings.

The file defaults to ./infostats.yml. An existing file is left alone unless
--force is given.

Examples:
  infostats config init
  infostats config init ~/.config/infostats/config.yml --force`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfigInit,
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := config.DefaultFile
	if len(args) == 1 {
		path = config.ExpandPath(args[0])
	}

	if !configInitForce {
		if _, err := os.Stat(path); err == nil {
			exitWithError(ExitError, "%s already exists (use --force to overwrite)", path)
		} else if !errors.Is(err, os.ErrNotExist) {
			exitWithError(ExitError, "checking %s: %v", path, err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		exitWithError(ExitError, "creating config directory: %v", err)
	}
	if err := config.Default().Save(path); err != nil {
		exitWithError(ExitError, "%v", err)
	}

	if humanOutput {
		outputHuman("Wrote default configuration to %s\n", path)
		return nil
	}
	return outputJSON(StatusResponse{Status: "created", Path: path})
}
