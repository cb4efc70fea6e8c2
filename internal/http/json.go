package httpx

import (
	"bytes"
	"encoding/json"
	"net/http"
)

// APIError is the body of every JSON error response.
type APIError struct {
	Code    string `json:"error"`
	Message string `json:"message"`
}

// WriteJSON encodes v and writes it with status. Encoding happens before the
// header is written so a failure still becomes a 500.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// WriteAPIError writes an APIError with status. An empty message falls back
// to the status text.
func WriteAPIError(w http.ResponseWriter, status int, code, message string) {
	if message == "" {
		message = http.StatusText(status)
	}
	WriteJSON(w, status, APIError{Code: code, Message: message})
}
