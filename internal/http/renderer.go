package httpx

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"

	corefuncs "github.com/sandboxops/console/internal/http/templates/core"
)

var templatePatterns = []string{"*.tmpl", "pages/*.tmpl", "partials/*.tmpl"}

// TemplateRenderer executes the console's page templates into a buffer so a
// failing template never leaves a half-written response.
type TemplateRenderer struct {
	fsys   fs.FS
	reload bool
	logger *slog.Logger
	t      *template.Template
}

type TemplateRendererConfig struct {
	TemplateFS fs.FS
	Logger     *slog.Logger
	// Reload re-parses TemplateFS on every render, for editing templates in
	// development.
	Reload bool
}

func NewTemplateRenderer(cfg TemplateRendererConfig) (*TemplateRenderer, error) {
	if cfg.TemplateFS == nil {
		return nil, errors.New("TemplateFS is required")
	}
	r := &TemplateRenderer{fsys: cfg.TemplateFS, reload: cfg.Reload, logger: cfg.Logger}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	t, err := r.parse()
	if err != nil {
		r.logger.Error("template parsing failed", slog.Any("error", err))
		return nil, err
	}
	r.t = t
	return r, nil
}

func (r *TemplateRenderer) parse() (*template.Template, error) {
	t, err := template.New("root").Funcs(template.FuncMap(corefuncs.Funcs())).ParseFS(r.fsys, templatePatterns...)
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return t, nil
}

// RenderFull writes the whole page.
func (r *TemplateRenderer) RenderFull(w http.ResponseWriter, data any) error {
	return r.render(w, http.StatusOK, "layout", data)
}

// RenderPartial writes only the list region swapped in by htmx.
func (r *TemplateRenderer) RenderPartial(w http.ResponseWriter, data any) error {
	return r.render(w, http.StatusOK, "content", data)
}

func (r *TemplateRenderer) RenderError(w http.ResponseWriter, status int, data any) error {
	return r.render(w, status, "error-layout", data)
}

func (r *TemplateRenderer) render(w http.ResponseWriter, status int, name string, data any) error {
	t := r.t
	if r.reload {
		fresh, err := r.parse()
		if err != nil {
			r.logger.Error("template reload failed", slog.String("template", name), slog.Any("error", err))
			return err
		}
		t = fresh
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, name, data); err != nil {
		r.logger.Error("template execution failed", slog.String("template", name), slog.Any("error", err))
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		r.logger.Debug("client went away mid-response", slog.String("template", name), slog.Any("error", err))
		return err
	}
	return nil
}
