package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mwhitford/stagehand/internal/command"
	"github.com/mwhitford/stagehand/internal/config"
)

// loadOrCreateConfig resolves the configuration for a command: the
// --config path when given, otherwise ./stagehand.yaml, generating a
// default file on first use.
func loadOrCreateConfig(cmd *cobra.Command, logger *slog.Logger) (*config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	if path == "" {
		path = config.DefaultFileName
		if _, err := os.Stat(path); os.IsNotExist(err) {
			cfg := config.GenerateDefault()
			if err := cfg.SaveToFile(path); err != nil {
				return nil, err
			}
			logger.Info("generated default configuration", "path", path)
			return cfg, nil
		}
	}

	cfg, err := config.LoadFromFile(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger.Info("loaded configuration", "path", path)
	return cfg, nil
}

// buildEnv assembles the execution environment from configuration.
func buildEnv(cfg *config.Config) command.Env {
	env := command.NewEnv()
	env.Profiles = cfg.EnvProfiles
	return env
}

// workdirFlag resolves the --dir flag to an absolute existing directory.
func workdirFlag(cmd *cobra.Command) (string, error) {
	dir, err := cmd.Flags().GetString("dir")
	if err != nil {
		return "", err
	}
	if dir == "" {
		dir, err = os.Getwd()
		if err != nil {
			return "", err
		}
	}
	info, err := os.Stat(dir)
	if err != nil {
		return "", fmt.Errorf("working directory check failed: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("working directory must be a directory: %s", dir)
	}
	return dir, nil
}
