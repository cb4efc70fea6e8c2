// Package config describes the console's environment configuration. Each
// concern lives in its own file; AppConfig composes them for
// github.com/caarlos0/env.
package config

import (
	"errors"
	"os"
	"strings"
)

type AppConfig struct {
	// IsDev reloads templates from disk and enables text logs by default.
	// NODE_ENV=development also turns it on.
	IsDev bool `env:"DEV" envDefault:"false"`

	HTTP    HTTPConfig
	Backend BackendConfig `envPrefix:"BACKEND_"`
	Redis   RedisConfig   `envPrefix:"REDIS_"`
	Cache   CacheConfig
	Lists   ListsConfig

	Observability ObservabilityConfig
}

// Sanitize trims values and replaces out-of-range ones with defaults. Call
// it once after parsing and before Validate.
func (c *AppConfig) Sanitize() {
	c.HTTP.Sanitize()
	c.Backend.Sanitize()
	c.Cache.Sanitize()
	c.Lists.Sanitize()
	c.Observability.Sanitize()

	if !c.IsDev {
		switch strings.ToLower(os.Getenv("NODE_ENV")) {
		case "development", "dev":
			c.IsDev = true
		}
	}
}

// Validate reports every problem Sanitize cannot repair.
func (c *AppConfig) Validate() error {
	var errs []error
	if c.Backend.BaseURL == "" {
		errs = append(errs, errors.New("BACKEND_URL is required"))
	}
	if c.Backend.ClientID != "" && c.Backend.TokenURL == "" {
		errs = append(errs, errors.New("BACKEND_TOKEN_URL is required with BACKEND_CLIENT_ID"))
	}
	if _, err := c.Lists.EnabledScreens(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
