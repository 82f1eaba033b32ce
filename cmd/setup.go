package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/wtx/internal/repositories"
	"github.com/desertthunder/wtx/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup writes a config file when none exists and initializes the storage it
// names, running migrations for the sqlite driver.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	var config *shared.Config
	if _, err := os.Stat(configPath); err == nil {
		if config, err = shared.LoadConfig(configPath); err != nil {
			r.logger.Warn("failed to load config, using defaults", "error", err)
			config = shared.DefaultConfig()
		}
	} else {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "error", err)
			config = shared.DefaultConfig()
		} else {
			r.logger.Info("config file created", "path", configPath)
			if config, err = shared.LoadConfig(configPath); err != nil {
				r.logger.Warn("failed to load created config, using defaults", "error", err)
				config = shared.DefaultConfig()
			}
		}
	}

	r.logger.Info("initializing storage", "driver", config.Storage.Driver, "path", config.Storage.Path)

	backend, err := repositories.Open(config.Storage)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer backend.Close()

	stored, err := repositories.Dump(backend.Storage)
	if err != nil {
		return fmt.Errorf("failed to read storage: %w", err)
	}

	r.logger.Infof("setup complete for storage: %v", config.Storage.Path)
	r.writePlain("✓ Storage ready at %s (%d keys)\n", config.Storage.Path, len(stored))
	r.writePlainln("Next steps:")
	r.writePlain("1. Point backend.base_url in %s at your server (now %s)\n", configPath, config.Backend.BaseURL)
	r.writePlain("2. Run 'wtx auth login' or 'wtx auth plex'\n")
	return nil
}
