package httpx

import (
	"context"
	"sync"

	"github.com/sandboxops/console/internal/listview"
	"github.com/sandboxops/console/internal/screens"
)

// fakeHandle is a screens.Handle whose page is fixed by the test. It
// clamps the page read from its URL to totalPages like a real controller.
type fakeHandle struct {
	mu         sync.Mutex
	slug       string
	urls       listview.URLSync
	page       screens.Page
	totalPages int
	mountedCtx context.Context
	closed     bool
	applied    []listview.Changes
	retries    int
	resets     int
	unsub      func()
}

func (f *fakeHandle) Slug() string { return f.slug }

func (f *fakeHandle) Mount(ctx context.Context) {
	f.mu.Lock()
	f.mountedCtx = ctx
	f.mu.Unlock()
	if p, ok := f.urls.ReadPage(); ok {
		f.goTo(p, false)
	}
	f.unsub = f.urls.OnExternalChange(func(p int) { f.goTo(p, false) })
}

func (f *fakeHandle) goTo(p int, push bool) {
	if f.totalPages > 0 && p > f.totalPages {
		p = f.totalPages
		f.urls.(listview.PageReplacer).ReplacePage(p)
	} else if push {
		f.urls.WritePage(p)
	}
	f.mu.Lock()
	f.page.Pagination.PageNumber = p
	f.mu.Unlock()
}

func (f *fakeHandle) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	if f.unsub != nil {
		f.unsub()
	}
}

func (f *fakeHandle) SetSearch(string)            {}
func (f *fakeHandle) SetDimension(string, string) {}
func (f *fakeHandle) SetPageSize(int)             {}
func (f *fakeHandle) SetPage(n int)               { f.goTo(n, true) }

func (f *fakeHandle) ResetFilters() {
	f.mu.Lock()
	f.resets++
	f.mu.Unlock()
	f.urls.(listview.PageReplacer).ReplacePage(1)
}

func (f *fakeHandle) Apply(ch listview.Changes) {
	f.mu.Lock()
	f.applied = append(f.applied, ch)
	f.mu.Unlock()
	f.urls.(listview.PageReplacer).ReplacePage(1)
}

func (f *fakeHandle) Check(listview.Changes) error { return nil }

func (f *fakeHandle) Retry() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.retries++
}

func (f *fakeHandle) Page() screens.Page {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.page
}

func (f *fakeHandle) Settle(context.Context) (screens.Page, error) { return f.Page(), nil }

func (f *fakeHandle) Updated() <-chan struct{} { return make(chan struct{}) }

func (f *fakeHandle) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// fakeOpener opens fakeHandles for the screens in infos and remembers every
// handle it opened.
type fakeOpener struct {
	mu      sync.Mutex
	infos   []screens.Info
	page    func(slug string) screens.Page
	opened  []*fakeHandle
	maxPage int
}

func (o *fakeOpener) Screens() []screens.Info { return o.infos }

func (o *fakeOpener) Open(slug string, urls listview.URLSync) (screens.Handle, error) {
	for _, info := range o.infos {
		if info.Slug != slug {
			continue
		}
		h := &fakeHandle{slug: slug, urls: urls, page: o.page(slug), totalPages: o.maxPage}
		o.mu.Lock()
		o.opened = append(o.opened, h)
		o.mu.Unlock()
		return h, nil
	}
	return nil, screens.ErrUnknownScreen
}

func (o *fakeOpener) last() *fakeHandle {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.opened) == 0 {
		return nil
	}
	return o.opened[len(o.opened)-1]
}

func newFakeOpener() *fakeOpener {
	return &fakeOpener{
		infos: []screens.Info{
			{Slug: "tasks", Title: "Tasks"},
			{Slug: "users", Title: "Users"},
		},
		maxPage: 3,
		page:    samplePage,
	}
}

func samplePage(slug string) screens.Page {
	return screens.Page{
		Screen: slug,
		Title:  "Sample " + slug,
		Mode:   "client",
		Columns: []screens.Column{
			{Key: "id", Title: "ID"},
			{Key: "target", Title: "Target"},
			{Key: "status", Title: "Status"},
		},
		Rows: []screens.Row{
			{ID: "41", Cells: []string{"41", "invoice.pdf", "Failed"}},
			{ID: "42", Cells: []string{"42", "setup.exe", "Completed"}},
		},
		Pagination: listview.PaginationInfo{
			PageNumber: 1, PageSize: 10, TotalItems: 25, TotalPages: 3,
			StartIndex: 1, EndIndex: 10, HasNext: true,
		},
		Status:     listview.StatusReady,
		Searchable: true,
		Dimensions: []screens.Dimension{
			{Name: "status", Label: "Status", Kind: screens.DimensionSelect, Options: []string{"Running", "Failed"}, Value: listview.All},
			{Name: "dateFrom", Label: "From", Kind: screens.DimensionDate, Value: listview.All},
		},
		PageSizes: []int{10, 20, 50},
	}
}
