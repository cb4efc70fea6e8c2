package config

import (
	"strings"
	"time"
)

// BackendConfig contains the sandbox REST backend client configuration.
// Variables are prefixed with BACKEND_.
type BackendConfig struct {
	// BaseURL is the backend root, e.g. https://sandbox.example.com/api.
	BaseURL string        `env:"URL"`
	Timeout time.Duration `env:"TIMEOUT" envDefault:"15s"`

	// Token is a static bearer token. Ignored when ClientID is set.
	Token string `env:"TOKEN"`

	// ClientID, ClientSecret and TokenURL enable the OAuth2 client
	// credentials flow.
	ClientID     string   `env:"CLIENT_ID"`
	ClientSecret string   `env:"CLIENT_SECRET"`
	TokenURL     string   `env:"TOKEN_URL"`
	Scopes       []string `env:"SCOPES"`

	// RateLimit caps outgoing requests per second; 0 disables the limit.
	RateLimit float64 `env:"RATE_LIMIT" envDefault:"20"`
	Burst     int     `env:"BURST"      envDefault:"10"`

	MaxRetries     uint64        `env:"MAX_RETRIES"     envDefault:"2"`
	InitialBackoff time.Duration `env:"INITIAL_BACKOFF" envDefault:"200ms"`
	MaxBackoff     time.Duration `env:"MAX_BACKOFF"     envDefault:"5s"`

	UserAgent string `env:"USER_AGENT" envDefault:"sandbox-console"`
}

// Sanitize normalises the backend configuration.
func (c *BackendConfig) Sanitize() {
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	c.Token = strings.TrimSpace(c.Token)
	c.ClientID = strings.TrimSpace(c.ClientID)
	c.TokenURL = strings.TrimSpace(c.TokenURL)
	if c.Timeout <= 0 {
		c.Timeout = 15 * time.Second
	}
	if c.RateLimit < 0 {
		c.RateLimit = 0
	}
	if c.Burst < 1 {
		c.Burst = 1
	}
	if c.MaxRetries > 10 {
		c.MaxRetries = 10
	}
	if c.InitialBackoff <= 0 {
		c.InitialBackoff = 200 * time.Millisecond
	}
	if c.MaxBackoff < c.InitialBackoff {
		c.MaxBackoff = c.InitialBackoff
	}
}
