package httpx

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// SessionCookieName is the cookie carrying the browser session id.
const SessionCookieName = "console_session"

// sessionKey is an unexported context key type to avoid collisions across packages.
type sessionKey struct{}

// SetSessionIDInContext returns a child context that carries the session id.
// If id is empty, the original ctx is returned unchanged.
func SetSessionIDInContext(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, sessionKey{}, id)
}

// SessionIDFromContext returns the session id stored by the Session middleware.
func SessionIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(sessionKey{}).(string)
	return id, ok && id != ""
}

// CookieConfig controls the session cookie attributes.
type CookieConfig struct {
	Domain string
	Secure bool
}

// Session returns a middleware that assigns every browser a random session
// id cookie and stores the id in the request context. Cookies that are not
// valid UUIDs are replaced.
func Session(cfg CookieConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := ""
			if c, err := r.Cookie(SessionCookieName); err == nil {
				if parsed, perr := uuid.Parse(c.Value); perr == nil {
					id = parsed.String()
				}
			}
			if id == "" {
				id = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     SessionCookieName,
					Value:    id,
					Path:     "/",
					Domain:   cfg.Domain,
					HttpOnly: true,
					Secure:   cfg.Secure,
					SameSite: http.SameSiteLaxMode,
				})
			}
			next.ServeHTTP(w, r.WithContext(SetSessionIDInContext(r.Context(), id)))
		})
	}
}
