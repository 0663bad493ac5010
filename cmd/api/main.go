package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"simple-todo/configs"
	"simple-todo/internal/api"
	"simple-todo/internal/config"
	"simple-todo/internal/repository"
	"simple-todo/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

// run owns every resource, so its defers close stores and flush logs on
// both clean shutdown and startup failure.
func run() error {
	// Load config
	cfg := configs.LoadConfig()

	// Inisialisasi logger
	loggers, err := logger.New(cfg.LogDir)
	if err != nil {
		return fmt.Errorf("cannot create loggers: %w", err)
	}
	defer loggers.Sync()
	loggers.System.Info("Starting application", zap.String("time", time.Now().Format(time.RFC3339)))

	if err := cfg.Validate(); err != nil {
		loggers.Error.Error("Invalid configuration", zap.Error(err))
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stores, err := repository.Open(ctx, cfg, loggers)
	if err != nil {
		loggers.Error.Error("Store connection failed", zap.Error(err))
		return fmt.Errorf("store connection failed: %w", err)
	}
	defer stores.Close()

	deps, err := config.NewDependencies(cfg, loggers, stores.Users, stores.Tasks, nil)
	if err != nil {
		loggers.Error.Error("Dependency setup failed", zap.Error(err))
		return fmt.Errorf("dependency setup failed: %w", err)
	}

	app := api.NewApp(deps)

	go func() {
		<-ctx.Done()
		loggers.System.Info("Shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			loggers.Error.Error("Shutdown failed", zap.Error(err))
		}
	}()

	loggers.System.Info("Application ready", zap.String("port", cfg.Port))
	log.Printf("Server running on port %s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		loggers.Error.Error("Application failed to start", zap.Error(err))
		return fmt.Errorf("application failed to start: %w", err)
	}
	return nil
}
