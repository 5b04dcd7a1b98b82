// cmd/server/main.go
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/opd-ai/go-maritime/pkg/config"
	"github.com/opd-ai/go-maritime/pkg/event"
	"github.com/opd-ai/go-maritime/pkg/logging"
	"github.com/opd-ai/go-maritime/pkg/network"
)

func main() {
	logger := logging.NewLogger()
	ctx := context.Background()

	configPath := flag.String("config", "config.json", "Path to configuration file (.json, .yaml or .yml)")
	createDefault := flag.Bool("default", false, "Create default configuration file")
	addr := flag.String("addr", "", "Listen address (overrides config)")
	flag.Parse()

	if *createDefault {
		if err := config.SaveConfig(config.DefaultConfig(), *configPath); err != nil {
			logger.Error(ctx, "Failed to create default configuration", err,
				"config_path", *configPath,
			)
			os.Exit(1)
		}
		logger.Info(ctx, "Created default configuration file",
			"config_path", *configPath,
		)
		return
	}

	cfg, err := loadConfig(ctx, logger, *configPath)
	if err != nil {
		logger.Error(ctx, "Failed to load configuration", err,
			"config_path", *configPath,
		)
		os.Exit(1)
	}
	if err := config.ApplyEnvironmentOverrides(cfg); err != nil {
		logger.Error(ctx, "Failed to apply environment configuration", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Server.Address = *addr
	}
	if os.Getenv(logging.LevelEnvVar) == "" {
		logger = logging.NewLoggerWithWriter(os.Stdout, cfg.Logging.Level)
	}

	bus := event.NewEventBus()
	bus.Subscribe(event.EpisodeEnded, func(e event.Event) {
		if ended, ok := e.(*event.EpisodeEndedEvent); ok {
			logger.Debug(ctx, "Episode ended",
				"episode_id", ended.EpisodeID,
				"outcome", ended.Outcome,
				"ticks", ended.Ticks,
				"return", ended.Return,
			)
		}
	})

	server, err := network.NewEnvServer(cfg,
		network.WithServerLogger(logger),
		network.WithServerEventBus(bus),
	)
	if err != nil {
		logger.Error(ctx, "Invalid server configuration", err)
		os.Exit(1)
	}

	if err := server.Start(); err != nil {
		logger.Error(ctx, "Failed to start server", err,
			"address", cfg.Server.Address,
		)
		os.Exit(1)
	}
	logger.Info(ctx, "Server started",
		"address", server.Addr(),
		"path", network.EnvPath,
		"max_sessions", cfg.Server.MaxSessions,
	)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	logger.Info(ctx, "Shutting down server", "signal", sig.String())

	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout.Std())
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "Server shutdown failed", err)
		os.Exit(1)
	}
	logger.Info(ctx, "Server stopped")
}

// loadConfig reads path, falling back to the defaults when it does not exist.
func loadConfig(ctx context.Context, logger *logging.Logger, path string) (*config.SimConfig, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		logger.Info(ctx, "Configuration file not found, using default configuration",
			"config_path", path,
		)
		return config.DefaultConfig(), nil
	}
	return config.LoadConfig(path)
}
