package httpx

import (
	"net/http"
	"strings"
)

const (
	hxRequest        = "Hx-Request"
	hxHistoryRestore = "Hx-History-Restore-Request"
	hxPushURL        = "Hx-Push-Url"
	hxReplaceURL     = "Hx-Replace-Url"
	hxRedirect       = "Hx-Redirect"
)

// IsHTMX reports whether the request was initiated by htmx.
func IsHTMX(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get(hxRequest), "true")
}

// IsHistoryRestore reports whether htmx is restoring a history entry it
// had no snapshot for.
func IsHistoryRestore(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get(hxHistoryRestore), "true")
}

// WantsPartial reports whether only the list fragment should be returned.
// History restores need the full layout.
func WantsPartial(r *http.Request) bool {
	return IsHTMX(r) && !IsHistoryRestore(r)
}

// LocationUpdate selects how the browser location follows a swapped list.
type LocationUpdate int

const (
	// LocationKeep leaves the address bar alone.
	LocationKeep LocationUpdate = iota
	// LocationReplace overwrites the current history entry.
	LocationReplace
	// LocationPush adds a history entry.
	LocationPush
)

// SyncLocation tells htmx to move the browser location to url.
func SyncLocation(w http.ResponseWriter, url string, mode LocationUpdate) {
	switch mode {
	case LocationPush:
		w.Header().Set(hxPushURL, url)
	case LocationReplace:
		w.Header().Set(hxReplaceURL, url)
	case LocationKeep:
	}
}

// Redirect sends the browser to url. htmx requests get Hx-Redirect with
// 204 so the whole page reloads instead of swapping the target.
func Redirect(w http.ResponseWriter, r *http.Request, url string) {
	if IsHTMX(r) {
		w.Header().Set(hxRedirect, url)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, url, http.StatusSeeOther)
}
