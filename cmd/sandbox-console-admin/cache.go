package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sandboxops/console/internal/bootstrap"
	"github.com/sandboxops/console/internal/core"
	"github.com/sandboxops/console/internal/data"
)

type purgeOptions struct {
	Screen string
	All    bool
	DryRun bool
}

func parsePurgeFlags(args []string) (purgeOptions, error) {
	fs := flag.NewFlagSet("cache-purge", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var opts purgeOptions
	fs.StringVar(&opts.Screen, "screen", "", "Purge cached responses of one screen")
	fs.BoolVar(&opts.All, "all", false, "Purge cached responses of every screen")
	fs.BoolVar(&opts.DryRun, "dry-run", false, "Count matching keys without deleting them")
	if err := fs.Parse(args); err != nil {
		return purgeOptions{}, err
	}
	if opts.All == (opts.Screen != "") {
		return purgeOptions{}, errors.New("exactly one of --screen or --all is required")
	}
	return opts, nil
}

// purgePattern matches the keys written by the list cache for opts.
func purgePattern(prefix string, opts purgeOptions) string {
	source := opts.Screen
	if opts.All {
		source = "*"
	}
	return core.ListCacheKey(prefix, source, "*")
}

func runCachePurge(cmdCtx *commandContext, args []string) error {
	opts, err := parsePurgeFlags(args)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, 2*time.Minute)
	defer cancel()

	client, err := bootstrap.ConnectRedis(ctx, bootstrap.RedisConnectConfig{
		Redis:  cmdCtx.Config.Redis,
		Logger: cmdCtx.Logger,
	})
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := client.Close(); closeErr != nil {
			cmdCtx.Logger.Warn("redis close failed", "error", closeErr)
		}
	}()

	n, err := purgeKeys(ctx, client, cmdCtx.Logger, purgePattern(cmdCtx.Config.Cache.KeyPrefix, opts), opts.DryRun)
	if err != nil {
		return err
	}
	verb := "deleted"
	if opts.DryRun {
		verb = "matched"
	}
	return writef(cmdCtx.Out, "%d cached list responses %s\n", n, verb)
}

func purgeKeys(ctx context.Context, client redis.UniversalClient, logger *slog.Logger, pattern string, dryRun bool) (int, error) {
	logger.Info("scanning redis", "pattern", pattern, "dry_run", dryRun)
	n, err := data.NewRedisCacheRepo(client).Purge(ctx, pattern, dryRun)
	if err != nil {
		return n, err
	}
	if !dryRun {
		logger.Info("redis keys deleted", "count", n)
	}
	return n, nil
}
