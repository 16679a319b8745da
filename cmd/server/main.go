// Command server runs the codebook query HTTP API: codebook retrieval,
// variable index search, temporal catalog lookup, and categorization views.
//
// Configuration comes from a YAML file (CONFIG_PATH or --config) with
// environment overrides. Exit codes: 0 = clean shutdown, 1 = startup error.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hrsdata/codebook-backend/internal/adapter/postgres"
	"github.com/hrsdata/codebook-backend/internal/adapter/postgres/catalogstore"
	"github.com/hrsdata/codebook-backend/internal/adapter/postgres/codebookstore"
	"github.com/hrsdata/codebook-backend/internal/app"
	"github.com/hrsdata/codebook-backend/internal/config"
	svc "github.com/hrsdata/codebook-backend/internal/service/codebook"
	"github.com/hrsdata/codebook-backend/internal/transport/rest"
	"github.com/hrsdata/codebook-backend/internal/wave"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config")
	flag.Parse()
	if *configPath != "" {
		os.Setenv("CONFIG_PATH", *configPath)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg.Log)
	slog.SetDefault(logger)
	logger.Info("starting server", slog.String("version", app.BuildVersion()))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Error("connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	registry := wave.NewRegistry()
	service := svc.New(codebookstore.New(pool), catalogstore.New(pool), registry, logger)
	server := rest.NewServer(cfg.Server, service, logger)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", slog.String("addr", addr))
		errCh <- server.Listen(addr)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
	case <-ctx.Done():
		logger.Info("shutting down", slog.Duration("timeout", cfg.Server.ShutdownTimeout))
		if err := server.ShutdownWithTimeout(cfg.Server.ShutdownTimeout); err != nil {
			logger.Error("shutdown", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	logger.Info("server stopped")
}
