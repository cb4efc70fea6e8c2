package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sandboxops/console/config"
	"github.com/sandboxops/console/internal/adapters/urlsync"
	httpx "github.com/sandboxops/console/internal/http"
)

// HTTPServerConfig contains configuration for the HTTP server.
type HTTPServerConfig struct {
	Config  *config.AppConfig
	Screens httpx.ScreenOpener
	Logger  *slog.Logger
}

// Server is the console's HTTP server together with the session registry
// its handlers use.
type Server struct {
	http            *http.Server
	sessions        *httpx.SessionRegistry
	shutdownTimeout time.Duration
	logger          *slog.Logger
}

// NewHTTPServer builds the session registry, router and server.
func NewHTTPServer(cfg HTTPServerConfig) (*Server, error) {
	if cfg.Config == nil {
		return nil, errors.New("config is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	appCfg := cfg.Config

	mode := urlsync.Push
	if appCfg.Lists.URLMode == config.URLModeReplace {
		mode = urlsync.Replace
	}
	sessions, err := httpx.NewSessionRegistry(httpx.SessionRegistryOptions{
		Screens: cfg.Screens,
		Policy:  httpx.SessionPolicy{IdleTTL: appCfg.HTTP.SessionIdleTTL, URLMode: mode},
		Logger:  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("session registry: %w", err)
	}

	services := httpx.RouterServices{
		Sessions:      sessions,
		Cookie:        httpx.CookieConfig{Domain: appCfg.HTTP.CookieDomain, Secure: appCfg.HTTP.CookieSecure},
		SettleTimeout: appCfg.HTTP.SettleTimeout,
		IsDev:         appCfg.IsDev,
		Logger:        logger,
	}
	if appCfg.HTTP.CompressionEnabled {
		logger.Info("HTTP compression enabled", "level", appCfg.HTTP.CompressionLevel)
		services.Compression = &httpx.CompressionConfig{Level: appCfg.HTTP.CompressionLevel}
	}
	handler, err := httpx.NewRouter(services)
	if err != nil {
		sessions.Close()
		return nil, err
	}

	addr := appCfg.HTTP.Addr
	// Guard against empty addr to avoid listening on Go default
	if addr == "" {
		addr = ":8080"
	}
	return &Server{
		http: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: appCfg.HTTP.ReadHeaderTimeout,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      appCfg.HTTP.SettleTimeout + 30*time.Second,
			IdleTimeout:       120 * time.Second,
		},
		sessions:        sessions,
		shutdownTimeout: appCfg.HTTP.ShutdownTimeout,
		logger:          logger,
	}, nil
}

// Run serves on the configured address until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		s.sessions.Close()
		return fmt.Errorf("listen %s: %w", s.http.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done, then drains requests
// for up to the shutdown timeout and closes every session.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	// Sessions outlive gctx so that requests drained during shutdown still
	// see their lists.
	sessCtx, stopSessions := context.WithCancel(context.WithoutCancel(ctx))
	defer stopSessions()

	g.Go(func() error { return s.sessions.Run(sessCtx) })
	g.Go(func() error {
		s.logger.Info("starting HTTP server", "addr", ln.Addr().String())
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		defer stopSessions()
		return s.shutdown()
	})
	return g.Wait()
}

func (s *Server) shutdown() error {
	s.logger.Info("shutting down HTTP server")
	timeout := s.shutdownTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.http.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	s.logger.Info("HTTP server stopped")
	return nil
}

// Sessions returns the server's session registry.
func (s *Server) Sessions() *httpx.SessionRegistry { return s.sessions }
