package main

import (
	"cmp"
	"context"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/wtx/internal/repositories"
	"github.com/desertthunder/wtx/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	configPath := cmp.Or(os.Getenv("WTX_CONFIG"), "config.toml")
	config, err := shared.LoadConfigOrDefault(configPath)
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}

	var logCloser io.Closer
	if config.Log.File != "" {
		if fl, closer, err := shared.NewFileLogger(config.Log); err != nil {
			logger.Warn("failed to open log file, logging to stderr", "file", config.Log.File, "error", err)
		} else {
			logger, logCloser = fl, closer
		}
	} else if lvl, err := log.ParseLevel(config.Log.Level); err == nil {
		shared.SetLogLevel(logger, lvl)
	}

	backend, err := repositories.Open(config.Storage)
	if err != nil {
		logger.Fatalf("failed to open storage: %v", err)
	}

	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: configPath,
		Backend:    backend,
		Logger:     logger,
	})

	app := &cli.Command{
		Name:     "wtx",
		Usage:    "Keep a self-hosted watched list in sync from the terminal",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	err = app.Run(context.Background(), os.Args)

	runner.Close()
	if err := backend.Close(); err != nil {
		logger.Warn("failed to close storage", "error", err)
	}
	if logCloser != nil {
		logCloser.Close()
	}

	switch exitCode(err) {
	case 0:
	case 2:
		logger.Error(err.Error())
		os.Exit(2)
	default:
		logger.Fatalf("application error: %v", err)
	}
}
