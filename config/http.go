package config

import "time"

// HTTPConfig contains HTTP server configuration.
type HTTPConfig struct {
	// Addr is the address to bind the HTTP server to.
	Addr string `env:"HTTP_ADDR" envDefault:":8080"`

	// CookieDomain is the domain for session cookies.
	// Leave empty to use the request domain.
	CookieDomain string `env:"APP_COOKIE_DOMAIN" envDefault:""`

	// CookieSecure marks the session cookie Secure.
	CookieSecure bool `env:"APP_COOKIE_SECURE" envDefault:"false"`

	// SessionIdleTTL is how long an idle session keeps its list controllers.
	SessionIdleTTL time.Duration `env:"HTTP_SESSION_IDLE_TTL" envDefault:"30m"`

	// SettleTimeout bounds how long a request waits for a list to load
	// before rendering its loading state.
	SettleTimeout time.Duration `env:"HTTP_SETTLE_TIMEOUT" envDefault:"10s"`

	ReadHeaderTimeout time.Duration `env:"HTTP_READ_HEADER_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout   time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT"    envDefault:"15s"`

	// CompressionEnabled gzips textual responses for clients that accept it.
	CompressionEnabled bool `env:"HTTP_COMPRESSION_ENABLED" envDefault:"true"`
	CompressionLevel   int  `env:"HTTP_COMPRESSION_LEVEL"   envDefault:"5"`
}

// Sanitize applies guardrails to HTTP configuration values.
func (h *HTTPConfig) Sanitize() {
	if h.Addr == "" {
		h.Addr = ":8080"
	}
	if h.SessionIdleTTL < time.Minute {
		h.SessionIdleTTL = time.Minute
	}
	if h.SettleTimeout <= 0 {
		h.SettleTimeout = 10 * time.Second
	}
	if h.ReadHeaderTimeout <= 0 {
		h.ReadHeaderTimeout = 10 * time.Second
	}
	if h.ShutdownTimeout <= 0 {
		h.ShutdownTimeout = 15 * time.Second
	}
	if h.CompressionLevel < 1 || h.CompressionLevel > 9 {
		h.CompressionLevel = 5
	}
}
