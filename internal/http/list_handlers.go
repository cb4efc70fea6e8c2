package httpx

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sandboxops/console/internal/adapters/urlsync"
	apperrors "github.com/sandboxops/console/internal/errors"
	"github.com/sandboxops/console/internal/http/ui/viewmodel"
	"github.com/sandboxops/console/internal/listview"
	"github.com/sandboxops/console/internal/screens"
)

// Form fields accepted by the filters endpoint besides the dimension names.
const (
	FieldSearch   = "q"
	FieldPageSize = "page_size"
)

// ListHandlers serves the list screens.
type ListHandlers struct {
	Sessions *SessionRegistry
	Renderer *TemplateRenderer
	// SettleTimeout bounds how long a request waits for a list to load
	// before rendering it in its loading state.
	SettleTimeout time.Duration
	IsDev         bool
	Logger        *slog.Logger
}

// ListJSON is the body of the JSON list endpoint.
type ListJSON struct {
	screens.Page
	URL string `json:"url"`
}

func (h *ListHandlers) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger.With("component", "list_handlers")
	}
	return slog.Default().With("component", "list_handlers")
}

// Index redirects to the first screen.
func (h *ListHandlers) Index(w http.ResponseWriter, r *http.Request) {
	infos := h.Sessions.Screens()
	if len(infos) == 0 {
		h.renderError(ErrorOpts{W: w, R: r, Err: apperrors.NotFound("no screens are enabled")})
		return
	}
	http.Redirect(w, r, ListPathPrefix+infos[0].Slug, http.StatusSeeOther)
}

// Show renders a list screen. The page query parameter is synchronized with
// the list's history; a location that disagrees with the list after loading
// is corrected with a redirect, or with HX-Replace-Url for htmx requests.
func (h *ListHandlers) Show(w http.ResponseWriter, r *http.Request) {
	ss, ok := h.open(w, r)
	if !ok {
		return
	}
	page := h.settle(r.Context(), ss.Handle)
	canonical := ss.History.URL(r.URL.Path)

	if WantsPartial(r) {
		if canonical != r.URL.RequestURI() {
			SyncLocation(w, canonical, LocationReplace)
		}
		h.render(w, r, page, canonical, true)
		return
	}
	if canonical != r.URL.RequestURI() {
		http.Redirect(w, r, canonical, http.StatusSeeOther)
		return
	}
	h.render(w, r, page, canonical, false)
}

// JSON returns a list screen as JSON.
func (h *ListHandlers) JSON(w http.ResponseWriter, r *http.Request) {
	ss, ok := h.open(w, r)
	if !ok {
		return
	}
	page := h.settle(r.Context(), ss.Handle)
	WriteJSON(w, http.StatusOK, ListJSON{
		Page: page,
		URL:  ss.History.URL(ListPathPrefix + ss.Handle.Slug()),
	})
}

// Filters applies the submitted search, dimension and page size values as a
// single transition.
func (h *ListHandlers) Filters(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderError(ErrorOpts{W: w, R: r, Err: apperrors.Validation("invalid form submission")})
		return
	}
	h.mutate(w, r, func(handle screens.Handle) {
		handle.Apply(changesFromForm(r, handle.Page()))
	})
}

// Retry refetches a list with unchanged parameters.
func (h *ListHandlers) Retry(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, screens.Handle.Retry)
}

// Reset clears every filter of a list.
func (h *ListHandlers) Reset(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, screens.Handle.ResetFilters)
}

// SessionReset closes every list of the caller's session.
func (h *ListHandlers) SessionReset(w http.ResponseWriter, r *http.Request) {
	if id, ok := SessionIDFromContext(r.Context()); ok {
		h.Sessions.Drop(id)
	}
	Redirect(w, r, "/")
}

// NotFound renders the 404 page.
func (h *ListHandlers) NotFound(w http.ResponseWriter, r *http.Request) {
	h.renderError(ErrorOpts{W: w, R: r, Err: apperrors.NotFound("page not found")})
}

// mutate runs fn against the list and answers with the updated list. A
// mutation that moved the list to a new history entry pushes the URL,
// anything else replaces it.
func (h *ListHandlers) mutate(w http.ResponseWriter, r *http.Request, fn func(screens.Handle)) {
	ss, _, ok := h.screen(w, r, 0)
	if !ok {
		return
	}
	_, before := ss.History.Entries()
	fn(ss.Handle)
	page := h.settle(r.Context(), ss.Handle)
	_, after := ss.History.Entries()

	canonical := ss.History.URL(ListPathPrefix + ss.Handle.Slug())
	if !IsHTMX(r) {
		http.Redirect(w, r, canonical, http.StatusSeeOther)
		return
	}
	mode := LocationReplace
	if after > before {
		mode = LocationPush
	}
	SyncLocation(w, canonical, mode)
	h.render(w, r, page, canonical, true)
}

// open resolves the list addressed by a GET request and moves an existing
// list to the page in the query string. A location without a page means
// the first page.
func (h *ListHandlers) open(w http.ResponseWriter, r *http.Request) (*ScreenSession, bool) {
	page, hasPage := urlsync.PageFromQuery(r.URL.Query())
	if !hasPage {
		page = 0
	}
	ss, created, ok := h.screen(w, r, page)
	if !ok {
		return nil, false
	}
	if !created {
		ss.History.Navigate(page)
	}
	return ss, true
}

func (h *ListHandlers) screen(w http.ResponseWriter, r *http.Request, page int) (*ScreenSession, bool, bool) {
	id, ok := SessionIDFromContext(r.Context())
	if !ok {
		h.renderError(ErrorOpts{W: w, R: r, Err: apperrors.Internal("missing session")})
		return nil, false, false
	}
	ss, created, err := h.Sessions.Screen(id, r.PathValue("screen"), page)
	if err != nil {
		h.renderError(ErrorOpts{W: w, R: r, Err: err})
		return nil, false, false
	}
	return ss, created, true
}

// settle waits for the list to finish loading. When the wait is cut short
// the list is rendered as it currently is.
func (h *ListHandlers) settle(ctx context.Context, handle screens.Handle) screens.Page {
	timeout := h.SettleTimeout
	if timeout <= 0 {
		timeout = DefaultSettleTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	page, err := handle.Settle(ctx)
	if err != nil {
		h.logger().Debug("list still loading", "screen", handle.Slug(), "error", err)
		return handle.Page()
	}
	return page
}

func (h *ListHandlers) render(w http.ResponseWriter, r *http.Request, page screens.Page, canonical string, partial bool) {
	base := ListPathPrefix + page.Screen
	data := &ListPageData{
		Layout:     buildLayout(h.Sessions.Screens(), page.Screen, page.Title, h.IsDev),
		Page:       page,
		URL:        canonical,
		Pagination: viewmodel.NewPagination(page.Pagination, base),
	}

	var err error
	if partial {
		err = h.Renderer.RenderPartial(w, data)
	} else {
		err = h.Renderer.RenderFull(w, data)
	}
	if err != nil {
		h.logger().ErrorContext(r.Context(), "render list failed", "screen", page.Screen, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// changesFromForm collects the submitted fields of r that page knows about.
// Missing fields are left untouched.
func changesFromForm(r *http.Request, page screens.Page) listview.Changes {
	var ch listview.Changes
	if page.Searchable && r.Form.Has(FieldSearch) {
		q := strings.TrimSpace(r.Form.Get(FieldSearch))
		ch.Search = &q
	}
	for _, d := range page.Dimensions {
		if !r.Form.Has(d.Name) {
			continue
		}
		if ch.Dimensions == nil {
			ch.Dimensions = make(map[string]string)
		}
		ch.Dimensions[d.Name] = strings.TrimSpace(r.Form.Get(d.Name))
	}
	if raw := r.Form.Get(FieldPageSize); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			ch.PageSize = n
		}
	}
	return ch
}
