package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/sandboxops/console/config"
	"github.com/sandboxops/console/internal/service"
)

// RunConsole wires config, logging, observability, the optional Redis
// cache tier, the screen registry and the HTTP server, then serves until
// ctx is done.
func RunConsole(ctx context.Context, cfg config.AppConfig, logger *slog.Logger) (err error) {
	obs := BuildObservability(logger, cfg.Observability)
	defer func() {
		if cerr := obs.Close(); cerr != nil {
			logger.Warn("close observability", "error", cerr)
		}
	}()

	var rdb redis.UniversalClient
	if cfg.Cache.RedisEnabled {
		rdb, err = ConnectRedis(ctx, RedisConnectConfig{Redis: cfg.Redis, Logger: logger})
		if err != nil {
			// The shared tier is optional; lists still load from the origin.
			logger.Warn("redis cache tier disabled", "error", err)
			rdb = nil
		} else {
			defer func() {
				if cerr := rdb.Close(); cerr != nil {
					err = errors.Join(err, fmt.Errorf("close redis: %w", cerr))
				}
			}()
		}
	}

	tiers := BuildCacheTiers(cfg.Cache, rdb)
	registry, err := BuildRegistry(RegistryDeps{
		Config:        &cfg,
		Redis:         rdb,
		Observability: obs,
		Logger:        logger,
		Tiers:         &tiers,
	})
	if err != nil {
		return fmt.Errorf("build screens: %w", err)
	}

	if local, ok := tiers.Local.(service.LocalCacheMaintainer); ok {
		go service.RunLocalCacheJanitor(ctx, local, cfg.Cache.LocalSweepInterval, service.Telemetry{
			Logger:  logger,
			Metrics: obs.Sink(),
		})
	}

	server, err := NewHTTPServer(HTTPServerConfig{Config: &cfg, Screens: registry, Logger: logger})
	if err != nil {
		return err
	}
	return server.Run(ctx)
}
