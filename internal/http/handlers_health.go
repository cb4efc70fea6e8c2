package httpx

import (
	"io"
	"net/http"
)

const (
	healthResponse       = `{"status":"ok"}`
	shuttingDownResponse = `{"status":"shutting_down"}`
)

// healthHandler reports readiness. Once the session registry is closed the
// console answers 503 so load balancers stop routing to it.
func healthHandler(sessions *SessionRegistry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, body := http.StatusOK, healthResponse
		if sessions != nil && sessions.Closed() {
			status, body = http.StatusServiceUnavailable, shuttingDownResponse
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if r.Method == http.MethodHead {
			return
		}
		if _, err := io.WriteString(w, body); err != nil {
			// Nothing more to do if the client connection is gone.
			return
		}
	}
}
