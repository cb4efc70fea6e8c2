// Package sandboxapi reads list data from the sandbox REST backend.
package sandboxapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"

	apperrors "github.com/sandboxops/console/internal/errors"
	obserrors "github.com/sandboxops/console/internal/observability/errors"
)

const (
	defaultTimeout          = 15 * time.Second
	defaultInitialBackoff   = 200 * time.Millisecond
	defaultMaxBackoff       = 5 * time.Second
	defaultMaxResponseBytes = 32 << 20
	errorExcerptBytes       = 512
)

// Config configures a Client.
type Config struct {
	// BaseURL is the backend root, e.g. https://sandbox.example.com/api.
	BaseURL string
	// Timeout bounds each attempt. Defaults to 15s.
	Timeout time.Duration

	// Token is a static bearer token. Ignored when ClientID is set.
	Token string
	// ClientID, ClientSecret and TokenURL enable the OAuth2 client
	// credentials flow.
	ClientID     string
	ClientSecret string
	TokenURL     string
	Scopes       []string

	// RateLimit caps outgoing requests per second; 0 disables the limit.
	RateLimit float64
	Burst     int

	// MaxRetries is the number of retries after a transient failure.
	MaxRetries     uint64
	InitialBackoff time.Duration
	MaxBackoff     time.Duration

	MaxResponseBytes int64
	UserAgent        string

	// HTTPClient is the underlying client. Defaults to http.DefaultClient.
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client performs authenticated, rate-limited GET requests against the
// backend, retrying transient failures.
type Client struct {
	base             *url.URL
	hc               *http.Client
	timeout          time.Duration
	limiter          *rate.Limiter
	maxRetries       uint64
	initialBackoff   time.Duration
	maxBackoff       time.Duration
	maxResponseBytes int64
	userAgent        string
	logger           *slog.Logger
}

// NewClient validates cfg and builds a Client.
func NewClient(cfg Config) (*Client, error) {
	base, err := url.Parse(strings.TrimSpace(cfg.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("parse backend url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("backend url must be http or https, got %q", cfg.BaseURL)
	}
	if base.Host == "" {
		return nil, errors.New("backend url: missing host")
	}
	base.Path = strings.TrimRight(base.Path, "/")

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	c := &Client{
		base:             base,
		hc:               authClient(cfg),
		timeout:          cfg.Timeout,
		limiter:          rate.NewLimiter(rate.Inf, 1),
		maxRetries:       cfg.MaxRetries,
		initialBackoff:   cfg.InitialBackoff,
		maxBackoff:       cfg.MaxBackoff,
		maxResponseBytes: cfg.MaxResponseBytes,
		userAgent:        cfg.UserAgent,
		logger:           logger.With("component", "sandboxapi"),
	}
	if c.timeout <= 0 {
		c.timeout = defaultTimeout
	}
	if cfg.RateLimit > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), max(1, cfg.Burst))
	}
	if c.initialBackoff <= 0 {
		c.initialBackoff = defaultInitialBackoff
	}
	if c.maxBackoff <= 0 {
		c.maxBackoff = defaultMaxBackoff
	}
	if c.maxResponseBytes <= 0 {
		c.maxResponseBytes = defaultMaxResponseBytes
	}
	return c, nil
}

// authClient wraps the base client with an oauth2 transport when
// credentials are configured.
func authClient(cfg Config) *http.Client {
	base := cfg.HTTPClient
	if base == nil {
		base = http.DefaultClient
	}
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)

	switch {
	case cfg.ClientID != "":
		cc := clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
			Scopes:       cfg.Scopes,
		}
		return cc.Client(ctx)
	case cfg.Token != "":
		return oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: cfg.Token,
			TokenType:   "Bearer",
		}))
	default:
		return base
	}
}

// URL resolves path and query against the base URL.
func (c *Client) URL(path string, query url.Values) string {
	u := *c.base
	u.Path = c.base.Path + "/" + strings.TrimLeft(path, "/")
	u.RawQuery = query.Encode()
	return u.String()
}

// Get fetches path with query and returns the response body. Non-2xx
// responses and transport failures are returned as *errors.AppError.
func (c *Client) Get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	target := c.URL(path, query)
	policy := backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(c.initialBackoff),
		backoff.WithMaxInterval(c.maxBackoff),
		backoff.WithMaxElapsedTime(0),
	)
	b := backoff.WithContext(backoff.WithMaxRetries(policy, c.maxRetries), ctx)

	attempt := 0
	body, err := backoff.RetryNotifyWithData(func() ([]byte, error) {
		attempt++
		body, err := c.do(ctx, target)
		if err != nil && !apperrors.Retryable(err) {
			return nil, backoff.Permanent(err)
		}
		return body, err
	}, b, func(err error, wait time.Duration) {
		c.logger.WarnContext(ctx, "retrying backend request",
			"path", path,
			"attempt", attempt,
			"wait", wait,
			"error", err,
			"error_type", obserrors.Classify(err))
	})
	if err != nil {
		return nil, apperrors.MapTransportError(err)
	}
	return body, nil
}

func (c *Client) do(ctx context.Context, target string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, apperrors.MapTransportError(ctxErr)
		}
		return nil, apperrors.Wrap(err, apperrors.ErrCodeTimeout, "Rate limit wait exceeds the request deadline.")
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, target, nil)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "build backend request")
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		var re *oauth2.RetrieveError
		if errors.As(err, &re) && re.Response != nil {
			return nil, apperrors.FromStatus(re.Response.StatusCode, string(re.Body))
		}
		return nil, apperrors.MapTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, errorExcerptBytes))
		return nil, apperrors.FromStatus(resp.StatusCode, string(excerpt))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxResponseBytes+1))
	if err != nil {
		return nil, apperrors.MapTransportError(err)
	}
	if int64(len(body)) > c.maxResponseBytes {
		return nil, apperrors.Internalf("backend response exceeds %d bytes", c.maxResponseBytes)
	}
	return body, nil
}
