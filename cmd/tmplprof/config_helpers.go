package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tmplprof/internal/config"
)

// loadConfig reads --config or the nearest tmplprof.toml. A missing file is
// not an error.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to get config flag: %w", err)
	}
	if path != "" {
		return config.Load(path)
	}
	return config.Discover(".")
}
