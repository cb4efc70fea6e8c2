// Package urlsync keeps a list screen's page number in a navigable location.
package urlsync

import (
	"net/url"
	"slices"
	"strconv"
	"sync"

	"github.com/sandboxops/console/internal/listview"
)

// PageParam is the query parameter holding the page number.
const PageParam = "page"

// WriteMode selects how WritePage records a page change.
type WriteMode int

const (
	// Push adds a history entry for every page change.
	Push WriteMode = iota
	// Replace overwrites the current entry.
	Replace
)

// History is an in-memory back/forward stack of locations that only carry a
// page number. Entry value 0 means the location has no page parameter.
// It implements listview.URLSync and listview.PageReplacer.
type History struct {
	mu      sync.Mutex
	entries []int
	index   int
	mode    WriteMode
	subs    map[int]func(int)
	nextSub int
}

var (
	_ listview.URLSync      = (*History)(nil)
	_ listview.PageReplacer = (*History)(nil)
)

// NewHistory starts a history at page. Pass 0 for a location without a
// page parameter.
func NewHistory(page int, mode WriteMode) *History {
	return &History{
		entries: []int{max(0, page)},
		mode:    mode,
		subs:    make(map[int]func(int)),
	}
}

// ReadPage returns the page of the current entry.
func (h *History) ReadPage() (int, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	p := h.entries[h.index]
	return p, p > 0
}

// WritePage records page without notifying subscribers.
func (h *History) WritePage(page int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.mode == Replace {
		h.entries[h.index] = page
		return
	}
	h.pushLocked(page)
}

// ReplacePage overwrites the current entry without notifying subscribers.
func (h *History) ReplacePage(page int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries[h.index] = page
}

// OnExternalChange subscribes fn to Navigate, Back and Forward.
func (h *History) OnExternalChange(fn func(page int)) func() {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.nextSub
	h.nextSub++
	h.subs[id] = fn
	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.subs, id)
	}
}

// Navigate records an externally initiated location, such as a deep link or
// an edited address bar, and notifies subscribers. A location equal to the
// current one is ignored.
func (h *History) Navigate(page int) {
	page = max(0, page)
	h.mu.Lock()
	if h.entries[h.index] == page {
		h.mu.Unlock()
		return
	}
	h.pushLocked(page)
	h.unlockAndNotify(page)
}

// Back moves to the previous entry and notifies subscribers. It reports
// false when there is no previous entry.
func (h *History) Back() bool { return h.move(-1) }

// Forward moves to the next entry and notifies subscribers. It reports
// false when there is no next entry.
func (h *History) Forward() bool { return h.move(1) }

func (h *History) move(delta int) bool {
	h.mu.Lock()
	next := h.index + delta
	if next < 0 || next >= len(h.entries) {
		h.mu.Unlock()
		return false
	}
	h.index = next
	h.unlockAndNotify(h.entries[next])
	return true
}

func (h *History) pushLocked(page int) {
	if h.entries[h.index] == page {
		return
	}
	h.entries = append(h.entries[:h.index+1], page)
	h.index++
}

// unlockAndNotify releases mu before calling subscribers, which may call
// back into the History.
func (h *History) unlockAndNotify(page int) {
	fns := make([]func(int), 0, len(h.subs))
	ids := make([]int, 0, len(h.subs))
	for id := range h.subs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		fns = append(fns, h.subs[id])
	}
	h.mu.Unlock()

	if page == 0 {
		page = 1
	}
	for _, fn := range fns {
		fn(page)
	}
}

// Entries returns a copy of the stack and the current index.
func (h *History) Entries() ([]int, int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return slices.Clone(h.entries), h.index
}

// URL renders the current location relative to base, replacing any page
// parameter already present in base.
func (h *History) URL(base string) string {
	page, ok := h.ReadPage()
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	q := u.Query()
	q.Del(PageParam)
	if ok {
		q.Set(PageParam, strconv.Itoa(page))
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// PageFromQuery extracts a positive page number from q.
func PageFromQuery(q url.Values) (int, bool) {
	raw := q.Get(PageParam)
	if raw == "" {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}
