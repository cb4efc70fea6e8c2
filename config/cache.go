package config

import (
	"strings"
	"time"
)

// RedisConfig contains Redis configuration.
type RedisConfig struct {
	URI                string   `env:"URI"                  envDefault:"localhost:6379"`
	Password           string   `env:"PASSWORD"             envDefault:""`
	DB                 int      `env:"DB"                   envDefault:"0"`
	SentinelNodes      []string `env:"SENTINEL_NODES"       envDefault:""`
	SentinelMasterName string   `env:"SENTINEL_MASTER_NAME" envDefault:"mymaster"`
	SentinelPassword   string   `env:"SENTINEL_PASSWORD"    envDefault:""`
	UseSentinel        bool     `env:"USE_SENTINEL"         envDefault:"false"`
	ClusterNodes       []string `env:"CLUSTER_NODES"        envDefault:""`
	UseCluster         bool     `env:"USE_CLUSTER"          envDefault:"false"`
}

// CacheConfig controls caching of list responses.
type CacheConfig struct {
	// Enabled turns on the in-process tier; Redis is added when RedisEnabled.
	Enabled      bool `env:"CACHE_ENABLED"       envDefault:"true"`
	RedisEnabled bool `env:"CACHE_REDIS_ENABLED" envDefault:"false"`

	// KeyPrefix namespaces cache keys.
	KeyPrefix string `env:"CACHE_KEY_PREFIX" envDefault:"sandbox-console"`

	LocalCapacity int           `env:"CACHE_LOCAL_CAPACITY" envDefault:"256"`
	LocalMaxBytes int           `env:"CACHE_LOCAL_MAX_BYTES" envDefault:"8388608"`
	LocalTTL      time.Duration `env:"CACHE_LOCAL_TTL"      envDefault:"15s"`
	RedisTTL      time.Duration `env:"CACHE_REDIS_TTL"      envDefault:"1m"`

	// LocalSweepInterval is how often expired in-process entries are purged.
	LocalSweepInterval time.Duration `env:"CACHE_LOCAL_SWEEP_INTERVAL" envDefault:"30s"`
}

// Sanitize applies guardrails to cache configuration values.
func (c *CacheConfig) Sanitize() {
	c.KeyPrefix = strings.Trim(strings.TrimSpace(c.KeyPrefix), ":")
	if c.LocalCapacity <= 0 {
		c.LocalCapacity = 256
	}
	if c.LocalMaxBytes <= 0 {
		c.LocalMaxBytes = 8 << 20
	}
	if c.LocalTTL <= 0 {
		c.LocalTTL = 15 * time.Second
	}
	if c.RedisTTL <= 0 {
		c.RedisTTL = time.Minute
	}
	if c.LocalSweepInterval <= 0 {
		c.LocalSweepInterval = 30 * time.Second
	}
	if !c.Enabled {
		c.RedisEnabled = false
	}
}
