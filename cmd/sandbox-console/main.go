package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/sandboxops/console/config"
	"github.com/sandboxops/console/internal/bootstrap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		slog.Default().ErrorContext(ctx, "load config", "error", err)
		stop()
		os.Exit(1) //nolint:forbidigo // Main entrypoint should exit with non-zero status on fatal errors.
	}
	logger := bootstrap.InitLogger(cfg.Observability.Logging)

	if err := run(ctx, logger, cfg); err != nil {
		logger.ErrorContext(ctx, "fatal error", "error", err)
		stop()
		os.Exit(1) //nolint:forbidigo // Main entrypoint should exit with non-zero status on fatal errors.
	}
}

func run(ctx context.Context, logger *slog.Logger, cfg config.AppConfig) error {
	logStartupInfo(ctx, logger, &cfg)
	return bootstrap.RunConsole(ctx, cfg, logger)
}

func logStartupInfo(ctx context.Context, logger *slog.Logger, cfg *config.AppConfig) {
	logger.InfoContext(ctx, "starting sandbox console",
		"addr", cfg.HTTP.Addr,
		"backend", cfg.Backend.BaseURL,
		"screens", cfg.Lists.Screens,
		"url_mode", cfg.Lists.URLMode,
		"cache", cfg.Cache.Enabled,
		"redis_cache", cfg.Cache.RedisEnabled,
		"dev", cfg.IsDev)
}
