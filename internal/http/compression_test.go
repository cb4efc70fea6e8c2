package httpx

import (
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serveCompressed(t *testing.T, req *http.Request, h http.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	Compression(CompressionConfig{Level: 5})(h).ServeHTTP(rr, req)
	return rr
}

func TestCompression_GzipsHTML(t *testing.T) {
	body := strings.Repeat("<tr><td>sample.exe</td></tr>", 50)
	req := httptest.NewRequest(http.MethodGet, "/lists/task-history", nil)
	req.Header.Set("Accept-Encoding", "br, gzip")

	rr := serveCompressed(t, req, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = io.WriteString(w, body)
	})

	assert.Equal(t, "gzip", rr.Header().Get("Content-Encoding"))
	assert.Contains(t, rr.Header().Values("Vary"), "Accept-Encoding")
	zr, err := gzip.NewReader(rr.Body)
	require.NoError(t, err)
	got, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Equal(t, body, string(got))
}

func TestCompression_Skips(t *testing.T) {
	tests := []struct {
		name     string
		method   string
		encoding string
		status   int
		ctype    string
		preset   string
	}{
		{name: "no accept-encoding", method: http.MethodGet, status: http.StatusOK, ctype: "text/html"},
		{name: "gzip disabled by q=0", method: http.MethodGet, encoding: "gzip;q=0", status: http.StatusOK, ctype: "text/html"},
		{name: "head request", method: http.MethodHead, encoding: "gzip", status: http.StatusOK, ctype: "text/html"},
		{name: "no content", method: http.MethodGet, encoding: "gzip", status: http.StatusNoContent, ctype: "text/html"},
		{name: "binary content", method: http.MethodGet, encoding: "gzip", status: http.StatusOK, ctype: "image/png"},
		{name: "already encoded", method: http.MethodGet, encoding: "gzip", status: http.StatusOK, ctype: "text/html", preset: "br"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/x", nil)
			if tt.encoding != "" {
				req.Header.Set("Accept-Encoding", tt.encoding)
			}
			rr := serveCompressed(t, req, func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", tt.ctype)
				if tt.preset != "" {
					w.Header().Set("Content-Encoding", tt.preset)
				}
				w.WriteHeader(tt.status)
			})
			assert.NotEqual(t, "gzip", rr.Header().Get("Content-Encoding"))
			assert.Equal(t, tt.status, rr.Code)
		})
	}
}

func TestAcceptsGzip(t *testing.T) {
	assert.True(t, acceptsGzip("gzip"))
	assert.True(t, acceptsGzip("deflate, GZIP;q=0.5"))
	assert.False(t, acceptsGzip("gzip; q=0"))
	assert.False(t, acceptsGzip("gzip;q=0.0"))
	assert.False(t, acceptsGzip("x-gzip-like"))
	assert.False(t, acceptsGzip(""))
}
