package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"

	"github.com/sandboxops/console/config"
)

type RedisConnectConfig struct {
	Redis  config.RedisConfig
	Logger *slog.Logger
	// PingTimeout bounds the connection check, retries included. Defaults
	// to 5s.
	PingTimeout time.Duration
}

type redisTopology string

const (
	topologySingle   redisTopology = "single"
	topologySentinel redisTopology = "sentinel"
	topologyCluster  redisTopology = "cluster"
)

// ConnectRedis opens the shared cache tier's client in the configured
// topology and waits for it to answer a PING.
//
//nolint:ireturn // the topology is only known at runtime.
func ConnectRedis(ctx context.Context, cfg RedisConnectConfig) (redis.UniversalClient, error) {
	opts, topo, err := redisOptions(cfg.Redis)
	if err != nil {
		return nil, err
	}

	var client redis.UniversalClient
	switch topo {
	case topologyCluster:
		client = redis.NewClusterClient(opts.Cluster())
	case topologySentinel:
		client = redis.NewFailoverClient(opts.Failover())
	default:
		client = redis.NewClient(opts.Simple())
	}

	timeout := cfg.PingTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	retry := backoff.WithContext(backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(200*time.Millisecond),
		backoff.WithMaxElapsedTime(timeout),
	), pingCtx)
	if err := backoff.Retry(func() error { return client.Ping(pingCtx).Err() }, retry); err != nil {
		return nil, errors.Join(fmt.Errorf("ping redis (%s): %w", topo, err), client.Close())
	}

	if cfg.Logger != nil {
		cfg.Logger.Info("redis connected",
			"topology", string(topo),
			"addrs", strings.Join(opts.Addrs, ","),
			"db", opts.DB)
	}
	return client, nil
}

// redisOptions folds RedisConfig into go-redis universal options. A
// redis:// or rediss:// URI contributes address, credentials, DB and TLS;
// explicit Password and DB settings only fill what the URI leaves empty.
func redisOptions(cfg config.RedisConfig) (*redis.UniversalOptions, redisTopology, error) {
	opts := &redis.UniversalOptions{Password: cfg.Password, DB: cfg.DB}

	uri := strings.TrimSpace(cfg.URI)
	if strings.HasPrefix(uri, "redis://") || strings.HasPrefix(uri, "rediss://") {
		parsed, err := redis.ParseURL(uri)
		if err != nil {
			return nil, "", fmt.Errorf("parse redis url: %w", err)
		}
		uri = parsed.Addr
		opts.Username = parsed.Username
		opts.TLSConfig = parsed.TLSConfig
		if parsed.Password != "" {
			opts.Password = parsed.Password
		}
		if parsed.DB != 0 {
			opts.DB = parsed.DB
		}
	}

	switch {
	case cfg.UseCluster:
		opts.Addrs = nonEmpty(cfg.ClusterNodes)
		if len(opts.Addrs) == 0 && uri != "" {
			opts.Addrs = []string{uri}
		}
		if len(opts.Addrs) == 0 {
			return nil, "", errors.New("redis cluster requires REDIS_CLUSTER_NODES or REDIS_URI")
		}
		return opts, topologyCluster, nil

	case cfg.UseSentinel:
		opts.Addrs = nonEmpty(cfg.SentinelNodes)
		if len(opts.Addrs) == 0 {
			return nil, "", errors.New("redis sentinel requires REDIS_SENTINEL_NODES")
		}
		opts.MasterName = cfg.SentinelMasterName
		opts.SentinelPassword = cfg.SentinelPassword
		return opts, topologySentinel, nil
	}

	if uri == "" {
		return nil, "", errors.New("redis requires REDIS_URI")
	}
	opts.Addrs = []string{uri}
	return opts, topologySingle, nil
}

func nonEmpty(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
