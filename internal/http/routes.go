package httpx

import (
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"time"

	console "github.com/sandboxops/console"
)

// RouterServices holds everything the HTTP router needs.
type RouterServices struct {
	Sessions *SessionRegistry
	Cookie   CookieConfig
	// Compression enables gzip responses when non-nil.
	Compression   *CompressionConfig
	SettleTimeout time.Duration
	IsDev         bool         // Development mode: templates and static files are read from disk.
	Logger        *slog.Logger // Logger for template and HTTP errors (optional)
}

// NewRouter creates the console's HTTP handler.
func NewRouter(services RouterServices) (http.Handler, error) {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if services.Sessions == nil {
		return nil, fmt.Errorf("session registry is required")
	}

	templateFS, staticFS := assetFS(services.IsDev, logger)
	tr, err := NewTemplateRenderer(TemplateRendererConfig{TemplateFS: templateFS, Logger: logger, Reload: services.IsDev})
	if err != nil {
		return nil, fmt.Errorf("create template renderer: %w", err)
	}

	lists := &ListHandlers{
		Sessions:      services.Sessions,
		Renderer:      tr,
		SettleTimeout: services.SettleTimeout,
		IsDev:         services.IsDev,
		Logger:        logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", healthHandler(services.Sessions))
	mux.HandleFunc("HEAD /healthz", healthHandler(services.Sessions))
	mux.Handle("GET /static/", staticHandler(staticFS, services.IsDev))
	registerListRoutes(mux, lists)
	mux.HandleFunc("/", lists.NotFound)

	var handler http.Handler = mux
	if services.Compression != nil {
		cfg := *services.Compression
		if cfg.Logger == nil {
			cfg.Logger = logger
		}
		handler = Compression(cfg)(handler)
	}
	handler = Logging(logger)(handler)
	handler = Session(services.Cookie)(handler)
	return Recover(logger)(handler), nil
}

func registerListRoutes(mux *http.ServeMux, h *ListHandlers) {
	mux.HandleFunc("GET /{$}", h.Index)
	mux.HandleFunc("GET /lists/{screen}", h.Show)
	mux.HandleFunc("POST /lists/{screen}/filters", h.Filters)
	mux.HandleFunc("POST /lists/{screen}/retry", h.Retry)
	mux.HandleFunc("POST /lists/{screen}/reset", h.Reset)
	mux.HandleFunc("GET /api/lists/{screen}", h.JSON)
	mux.HandleFunc("POST /session/reset", h.SessionReset)
}

// assetFS picks the template and static filesystems. In dev mode both are
// read from disk so edits show up without a rebuild.
func assetFS(isDev bool, logger *slog.Logger) (templates, static fs.FS) {
	if isDev {
		return os.DirFS(TemplatePathFromRoot), os.DirFS(StaticPathFromRoot)
	}
	templates, err := fs.Sub(console.TemplateFS, TemplatePathFromRoot)
	if err != nil {
		logger.Warn("embedded templates unavailable, falling back to disk", "error", err)
		templates = os.DirFS(TemplatePathFromRoot)
	}
	static, err = fs.Sub(console.StaticFS, StaticPathFromRoot)
	if err != nil {
		logger.Warn("embedded static files unavailable, falling back to disk", "error", err)
		static = os.DirFS(StaticPathFromRoot)
	}
	return templates, static
}

func staticHandler(fsys fs.FS, isDev bool) http.Handler {
	files := http.StripPrefix(StaticPathPrefix, http.FileServer(http.FS(fsys)))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isDev {
			w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		} else {
			w.Header().Set("Cache-Control", "public, max-age=3600")
		}
		files.ServeHTTP(w, r)
	})
}
