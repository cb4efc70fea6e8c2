package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/sandboxops/console/internal/errors"
	"github.com/sandboxops/console/internal/listview"
	"github.com/sandboxops/console/internal/screens"
)

type listTestEnv struct {
	handler http.Handler
	opener  *fakeOpener
	reg     *SessionRegistry
	cookie  *http.Cookie
}

func newListTestEnv(t *testing.T) *listTestEnv {
	t.Helper()
	opener := newFakeOpener()
	reg := newTestRegistry(t, opener)
	h, err := NewRouter(RouterServices{Sessions: reg})
	require.NoError(t, err)
	return &listTestEnv{handler: h, opener: opener, reg: reg}
}

// do serves req, carrying the session cookie between calls.
func (e *listTestEnv) do(req *http.Request) *httptest.ResponseRecorder {
	if e.cookie != nil {
		req.AddCookie(e.cookie)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	for _, c := range rec.Result().Cookies() {
		if c.Name == SessionCookieName {
			e.cookie = c
		}
	}
	return rec
}

func htmxRequest(method, target string, form url.Values) *http.Request {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	req.Header.Set("HX-Request", "true")
	return req
}

func TestIndex_RedirectsToFirstScreen(t *testing.T) {
	env := newListTestEnv(t)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/lists/tasks", rec.Header().Get("Location"))
}

func TestShow_RendersFullPage(t *testing.T) {
	env := newListTestEnv(t)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/lists/tasks", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<!DOCTYPE html>")
	assert.Contains(t, body, "Sample tasks")
	assert.Contains(t, body, "invoice.pdf")
	assert.Contains(t, body, "badge-danger", "status cells get a badge")
	assert.Contains(t, body, `href="/lists/users"`, "navigation lists every screen")
	assert.Contains(t, body, `/lists/tasks?page=2`, "pager links to the next page")
	require.NotNil(t, env.cookie, "a session cookie is issued")
	assert.True(t, env.cookie.HttpOnly)
}

func TestShow_UnknownScreen(t *testing.T) {
	env := newListTestEnv(t)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/lists/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "does not exist")
}

func TestShow_InvalidPageIsDropped(t *testing.T) {
	env := newListTestEnv(t)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/lists/tasks?page=abc", nil))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/lists/tasks", rec.Header().Get("Location"))
}

func TestShow_DeepLinkIsClamped(t *testing.T) {
	env := newListTestEnv(t)

	rec := env.do(htmxRequest(http.MethodGet, "/lists/tasks?page=9", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/lists/tasks?page=3", rec.Header().Get("HX-Replace-Url"))
	assert.NotContains(t, rec.Body.String(), "<!DOCTYPE html>", "htmx requests get the partial")
}

func TestShow_NavigatesExistingList(t *testing.T) {
	env := newListTestEnv(t)
	env.do(httptest.NewRequest(http.MethodGet, "/lists/tasks", nil))

	rec := env.do(htmxRequest(http.MethodGet, "/lists/tasks?page=2", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("HX-Replace-Url"), "location already canonical")
	h := env.opener.last()
	assert.Equal(t, 2, h.Page().Pagination.PageNumber)
	assert.Len(t, env.opener.opened, 1, "the session reuses its list")
}

func TestShow_HistoryRestoreGetsFullPage(t *testing.T) {
	env := newListTestEnv(t)
	req := htmxRequest(http.MethodGet, "/lists/tasks", nil)
	req.Header.Set("HX-History-Restore-Request", "true")

	rec := env.do(req)

	assert.Contains(t, rec.Body.String(), "<!DOCTYPE html>")
}

func TestShow_BusyListPolls(t *testing.T) {
	env := newListTestEnv(t)
	env.opener.page = func(slug string) screens.Page {
		p := samplePage(slug)
		p.Status = listview.StatusLoading
		p.Rows = nil
		return p
	}

	rec := env.do(htmxRequest(http.MethodGet, "/lists/tasks", nil))

	body := rec.Body.String()
	assert.Contains(t, body, `hx-trigger="load delay:1s"`)
	assert.NotContains(t, body, "No records found.")
}

func TestShow_ErrorOffersRetry(t *testing.T) {
	env := newListTestEnv(t)
	env.opener.page = func(slug string) screens.Page {
		p := samplePage(slug)
		p.Status = listview.StatusError
		p.Err = &listview.ErrorInfo{Code: "network", Message: "backend unreachable"}
		return p
	}

	rec := env.do(httptest.NewRequest(http.MethodGet, "/lists/tasks", nil))

	body := rec.Body.String()
	assert.Contains(t, body, "backend unreachable")
	assert.Contains(t, body, `action="/lists/tasks/retry"`)
}

func TestFilters_AppliesSubmittedFields(t *testing.T) {
	env := newListTestEnv(t)
	env.do(httptest.NewRequest(http.MethodGet, "/lists/tasks?page=2", nil))

	form := url.Values{
		"q":         {"  invoice "},
		"status":    {"Failed"},
		"page_size": {"20"},
		"colour":    {"red"},
	}
	rec := env.do(htmxRequest(http.MethodPost, "/lists/tasks/filters", form))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/lists/tasks?page=1", rec.Header().Get("HX-Replace-Url"))

	h := env.opener.last()
	require.Len(t, h.applied, 1)
	ch := h.applied[0]
	require.NotNil(t, ch.Search)
	assert.Equal(t, "invoice", *ch.Search)
	assert.Equal(t, map[string]string{"status": "Failed"}, ch.Dimensions, "unknown fields are ignored")
	assert.Equal(t, 20, ch.PageSize)
}

func TestFilters_LeavesMissingFieldsUntouched(t *testing.T) {
	env := newListTestEnv(t)

	rec := env.do(htmxRequest(http.MethodPost, "/lists/tasks/filters", url.Values{"dateFrom": {"2024-03-01"}}))

	require.Equal(t, http.StatusOK, rec.Code)
	ch := env.opener.last().applied[0]
	assert.Nil(t, ch.Search)
	assert.Equal(t, map[string]string{"dateFrom": "2024-03-01"}, ch.Dimensions)
	assert.Zero(t, ch.PageSize)
}

func TestFilters_WithoutHTMXRedirects(t *testing.T) {
	env := newListTestEnv(t)
	req := httptest.NewRequest(http.MethodPost, "/lists/tasks/filters", strings.NewReader("q=x"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := env.do(req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/lists/tasks?page=1", rec.Header().Get("Location"))
}

func TestRetryAndReset(t *testing.T) {
	env := newListTestEnv(t)

	rec := env.do(htmxRequest(http.MethodPost, "/lists/tasks/retry", url.Values{}))
	require.Equal(t, http.StatusOK, rec.Code)
	rec = env.do(htmxRequest(http.MethodPost, "/lists/tasks/reset", url.Values{}))
	require.Equal(t, http.StatusOK, rec.Code)

	h := env.opener.last()
	assert.Equal(t, 1, h.retries)
	assert.Equal(t, 1, h.resets)
	assert.Len(t, env.opener.opened, 1)
}

func TestJSON_ReturnsPage(t *testing.T) {
	env := newListTestEnv(t)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/lists/users?page=2", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body struct {
		Screen     string `json:"screen"`
		URL        string `json:"url"`
		Status     string `json:"status"`
		Pagination struct {
			PageNumber int `json:"page_number"`
		} `json:"pagination"`
		Rows []struct {
			ID string `json:"id"`
		} `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "users", body.Screen)
	assert.Equal(t, "/lists/users?page=2", body.URL)
	assert.Equal(t, "ready", body.Status)
	assert.Equal(t, 2, body.Pagination.PageNumber)
	assert.Len(t, body.Rows, 2)
}

func TestJSON_UnknownScreen(t *testing.T) {
	env := newListTestEnv(t)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/lists/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not_found", body["error"])
}

func TestSessionReset_ClosesLists(t *testing.T) {
	env := newListTestEnv(t)
	env.do(httptest.NewRequest(http.MethodGet, "/lists/tasks", nil))
	require.Equal(t, 1, env.reg.Len())

	rec := env.do(htmxRequest(http.MethodPost, "/session/reset", url.Values{}))

	assert.Equal(t, "/", rec.Header().Get("HX-Redirect"))
	assert.Zero(t, env.reg.Len())
	assert.True(t, env.opener.last().isClosed())
}

func TestShow_AfterShutdown(t *testing.T) {
	env := newListTestEnv(t)
	env.reg.Close()

	rec := env.do(httptest.NewRequest(http.MethodGet, "/lists/tasks", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestNotFound(t *testing.T) {
	env := newListTestEnv(t)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "<h1>404</h1>")
}

func TestDetermineErrorStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"unknown screen", fmt.Errorf("open: %w", screens.ErrUnknownScreen), http.StatusNotFound},
		{"app not found", apperrors.NotFound("x"), http.StatusNotFound},
		{"validation", apperrors.Validation("bad"), http.StatusBadRequest},
		{"registry closed", ErrRegistryClosed, http.StatusServiceUnavailable},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetermineErrorStatus(tt.err))
		})
	}
}
