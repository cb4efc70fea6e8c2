package listview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	apperrors "github.com/sandboxops/console/internal/errors"
	obserrors "github.com/sandboxops/console/internal/observability/errors"
)

const (
	// DefaultPageSize is used when Options.PageSize is not set.
	DefaultPageSize = 10
	// DefaultMaxPageSize bounds page sizes when Options.MaxPageSize is not set.
	DefaultMaxPageSize = 100
)

// ErrClosed is returned by Settle once the controller has been closed.
var ErrClosed = errors.New("list controller closed")

// Options configures a Controller. Mode, Schema and Source are required.
type Options[T any] struct {
	// Name labels the list in logs.
	Name   string
	Mode   Mode
	Schema Schema[T]
	Source Source[T]
	// URLSync mirrors the page number into the URL. Optional.
	URLSync URLSync
	// PageSize is the initial page size. Defaults to DefaultPageSize.
	PageSize int
	// PageSizes restricts SetPageSize to these values when non-empty.
	PageSizes   []int
	MaxPageSize int
	Logger      *slog.Logger
	// Observer is called after every completed fetch, stale ones included.
	Observer func(FetchEvent)
}

// FetchEvent describes one completed Source call.
type FetchEvent struct {
	List     string
	Mode     Mode
	Duration time.Duration
	Items    int
	Err      error
	// Stale is set when the response was discarded because a newer fetch
	// had been dispatched or the controller was closed.
	Stale bool
}

// Changes groups several filter mutations applied as one transition.
// Nil and zero fields are left untouched.
type Changes struct {
	Search     *string
	Dimensions map[string]string
	PageSize   int
}

// Controller owns the FilterSet and PageSpec of one list screen, drives its
// Source, reconciles server- and client-side pagination, and exposes the
// result as a View.
//
// Mutators never block on I/O, never panic on bad input, and never return
// errors: invalid input is logged and ignored, fetch failures surface as
// StatusError. Responses are applied in dispatch order; a response from a
// superseded generation is discarded.
//
// Controller is safe for concurrent use.
type Controller[T any] struct {
	name        string
	mode        Mode
	schema      Schema[T]
	source      Source[T]
	urls        URLSync
	pageSizes   []int
	maxPageSize int
	logger      *slog.Logger
	observe     func(FetchEvent)

	mu         sync.Mutex
	filters    FilterSet
	page       PageSpec
	status     Status
	err        *ErrorInfo
	items      []T
	totalItems int

	// Latest successful response, kept for stale-while-revalidate and for
	// local re-projection in client mode.
	raw         []T
	serverTotal *int
	resultKey   string
	hasResult   bool

	generation  uint64
	cancelFetch context.CancelFunc
	baseCtx     context.Context
	cancelBase  context.CancelFunc
	mounted     bool
	closed      bool
	changed     chan struct{}
	unsubscribe func()

	// URL page bookkeeping, guarded by mu.
	urlPage    int
	pushNext   bool
	urlSeq     uint64
	pendingURL *urlWrite
	// urlWrites counts queued writes not yet delivered to URLSync.
	urlWrites int

	urlMu      sync.Mutex
	urlFlushed uint64
}

type urlWrite struct {
	seq  uint64
	page int
	push bool
}

// New validates opts and returns an unmounted Controller with default
// filters and the first page selected.
func New[T any](opts Options[T]) (*Controller[T], error) {
	if opts.Source == nil {
		return nil, errors.New("list source is required")
	}
	if err := opts.Schema.Validate(opts.Mode); err != nil {
		return nil, fmt.Errorf("list %q: %w", opts.Name, err)
	}
	maxSize := opts.MaxPageSize
	if maxSize <= 0 {
		maxSize = DefaultMaxPageSize
	}
	size := opts.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}
	if size > maxSize {
		return nil, fmt.Errorf("list %q: page size %d exceeds maximum %d", opts.Name, size, maxSize)
	}
	if len(opts.PageSizes) > 0 && !slices.Contains(opts.PageSizes, size) {
		return nil, fmt.Errorf("list %q: page size %d is not one of %v", opts.Name, size, opts.PageSizes)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Controller[T]{
		name:        opts.Name,
		mode:        opts.Mode,
		schema:      opts.Schema,
		source:      opts.Source,
		urls:        opts.URLSync,
		pageSizes:   slices.Clone(opts.PageSizes),
		maxPageSize: maxSize,
		logger:      logger.With("list", opts.Name, "mode", opts.Mode.String()),
		observe:     opts.Observer,
		filters:     NewFilterSet(opts.Schema.Names()...),
		page:        NewPageSpec(1, size),
		changed:     make(chan struct{}),
	}, nil
}

// Name returns the list name given in Options.
func (c *Controller[T]) Name() string { return c.name }

// Mode returns the pagination mode.
func (c *Controller[T]) Mode() Mode { return c.mode }

// PageSizes returns the accepted page sizes, or nil when any size up to the
// maximum is accepted.
func (c *Controller[T]) PageSizes() []int { return slices.Clone(c.pageSizes) }

// Searchable reports whether SetSearch has any effect on this list.
func (c *Controller[T]) Searchable() bool { return c.schema.Searchable(c.mode) }

// Mount starts the controller: it adopts the page number from the URL when
// present, issues the first fetch, and subscribes to external navigation.
// Fetches run under ctx until Close. Mounting twice is a no-op.
func (c *Controller[T]) Mount(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	var (
		urlPage int
		fromURL bool
	)
	if c.urls != nil {
		urlPage, fromURL = c.urls.ReadPage()
	}

	c.mu.Lock()
	if c.mounted || c.closed {
		c.mu.Unlock()
		return
	}
	c.mounted = true
	c.baseCtx, c.cancelBase = context.WithCancel(ctx)
	if fromURL && urlPage >= 1 {
		c.page = c.page.WithPage(urlPage)
	}
	c.urlPage = c.page.Number()
	c.dispatchLocked(c.queryLocked(), false)
	c.unlockAndFlush()

	if c.urls == nil {
		return
	}
	unsubscribe := c.urls.OnExternalChange(c.onExternalPage)
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		unsubscribe()
		return
	}
	c.unsubscribe = unsubscribe
	c.mu.Unlock()
}

// Close cancels any in-flight fetch, discards its result and stops URL
// synchronization. The last View remains readable.
func (c *Controller[T]) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.supersedeLocked()
	if c.cancelBase != nil {
		c.cancelBase()
	}
	unsubscribe := c.unsubscribe
	c.unsubscribe = nil
	c.notifyLocked()
	c.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	c.logger.Debug("list controller closed")
}

// SetSearch replaces the search text and returns to the first page.
func (c *Controller[T]) SetSearch(q string) {
	c.mu.Lock()
	defer c.unlockAndFlush()
	if c.closed {
		return
	}
	if !c.schema.Searchable(c.mode) {
		c.logger.Warn("ignoring search on a list without search support")
		return
	}
	c.applyFiltersLocked(c.filters.WithSearch(q))
}

// SetDimension selects value for the named dimension and returns to the
// first page. Unknown dimensions and invalid values are ignored.
func (c *Controller[T]) SetDimension(name, value string) {
	c.mu.Lock()
	defer c.unlockAndFlush()
	if c.closed {
		return
	}
	next, ok := c.withDimensionLocked(c.filters, name, value)
	if !ok {
		return
	}
	c.applyFiltersLocked(next)
}

// ResetFilters clears the search text and every dimension and returns to
// the first page.
func (c *Controller[T]) ResetFilters() {
	c.mu.Lock()
	defer c.unlockAndFlush()
	if c.closed {
		return
	}
	c.applyFiltersLocked(c.filters.Reset())
}

// SetPageSize changes the page size and returns to the first page. Sizes
// outside the accepted set are ignored.
func (c *Controller[T]) SetPageSize(size int) {
	c.mu.Lock()
	defer c.unlockAndFlush()
	if c.closed {
		return
	}
	if err := c.checkPageSize(size); err != nil {
		c.logger.Warn("ignoring page size change", "page_size", size, "error", err)
		return
	}
	changed := size != c.page.Size() || c.page.Number() != 1
	c.page = c.page.WithSize(size)
	c.pushNext = false
	if changed {
		c.refreshLocked()
	}
}

// SetPage requests page n. Values below 1 select the first page; values past
// the last page are clamped once the result arrives.
func (c *Controller[T]) SetPage(n int) {
	c.mu.Lock()
	defer c.unlockAndFlush()
	if c.closed {
		return
	}
	n = max(1, n)
	if n == c.page.Number() {
		return
	}
	c.page = c.page.WithPage(n)
	c.pushNext = true
	c.refreshLocked()
}

// Apply performs several filter mutations as a single transition with a
// single fetch. Like the individual mutators it returns to the first page;
// invalid parts are logged and skipped.
func (c *Controller[T]) Apply(ch Changes) {
	c.mu.Lock()
	defer c.unlockAndFlush()
	if c.closed {
		return
	}
	next := c.filters
	if ch.Search != nil {
		if c.schema.Searchable(c.mode) {
			next = next.WithSearch(*ch.Search)
		} else if *ch.Search != "" {
			c.logger.Warn("ignoring search on a list without search support")
		}
	}
	for _, name := range c.schema.Names() {
		value, ok := ch.Dimensions[name]
		if !ok {
			continue
		}
		if updated, valid := c.withDimensionLocked(next, name, value); valid {
			next = updated
		}
	}
	for name := range ch.Dimensions {
		if !next.Has(name) {
			c.logger.Warn("ignoring unknown filter dimension", "dimension", name)
		}
	}
	size := c.page.Size()
	if ch.PageSize > 0 {
		if err := c.checkPageSize(ch.PageSize); err != nil {
			c.logger.Warn("ignoring page size change", "page_size", ch.PageSize, "error", err)
		} else {
			size = ch.PageSize
		}
	}
	changed := !next.Equal(c.filters) || size != c.page.Size() || c.page.Number() != 1
	c.filters = next
	c.page = c.page.WithSize(size)
	c.pushNext = false
	if changed {
		c.refreshLocked()
	}
}

// Check reports every part of ch that Apply would log and skip. It does not
// change the controller.
func (c *Controller[T]) Check(ch Changes) error {
	var errs []error
	if ch.Search != nil && *ch.Search != "" && !c.schema.Searchable(c.mode) {
		errs = append(errs, fmt.Errorf("list %q does not support search", c.name))
	}
	names := make([]string, 0, len(ch.Dimensions))
	for name := range ch.Dimensions {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		if _, err := c.schema.Normalize(name, ch.Dimensions[name]); err != nil {
			errs = append(errs, err)
		}
	}
	if ch.PageSize > 0 {
		if err := c.checkPageSize(ch.PageSize); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Retry re-issues the fetch for the current filters and page, for example
// after StatusError. Sources implementing Invalidator drop their cached
// response first, so a retry always reaches the backend.
func (c *Controller[T]) Retry() {
	c.mu.Lock()
	defer c.unlockAndFlush()
	if !c.mounted || c.closed {
		return
	}
	c.dispatchLocked(c.queryLocked(), true)
}

// View returns the current read model.
func (c *Controller[T]) View() View[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked()
}

// Updated returns a channel that is closed on the next state change.
func (c *Controller[T]) Updated() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.changed
}

// Settle waits until no fetch is in flight, including follow-up fetches
// issued by page clamping, and the URL reflects the current page. It returns
// the resulting View. On ctx expiry it
// returns the current View together with ctx.Err().
func (c *Controller[T]) Settle(ctx context.Context) (View[T], error) {
	for {
		c.mu.Lock()
		view := c.viewLocked()
		closed := c.closed
		busy := view.Status.Busy() || c.urlWrites > 0
		ch := c.changed
		c.mu.Unlock()

		if closed {
			return view, ErrClosed
		}
		if !busy {
			return view, nil
		}
		select {
		case <-ch:
		case <-ctx.Done():
			return view, ctx.Err()
		}
	}
}

func (c *Controller[T]) viewLocked() View[T] {
	items := slices.Clone(c.items)
	if items == nil {
		items = []T{}
	}
	return View[T]{
		Items:      items,
		Pagination: Paginate(c.totalItems, c.page),
		Status:     c.status,
		Err:        c.err,
		Filters:    c.filters,
		Page:       c.page,
	}
}

func (c *Controller[T]) withDimensionLocked(f FilterSet, name, value string) (FilterSet, bool) {
	canonical, err := c.schema.Normalize(name, value)
	if err != nil {
		c.logger.Warn("ignoring filter change", "dimension", name, "value", value, "error", err)
		return f, false
	}
	return f.WithDimension(name, canonical)
}

// applyFiltersLocked installs next and returns to the first page. A fetch is
// issued only when the filters or the page actually changed.
func (c *Controller[T]) applyFiltersLocked(next FilterSet) {
	changed := !next.Equal(c.filters) || c.page.Number() != 1
	c.filters = next
	c.page = c.page.WithPage(1)
	c.pushNext = false
	if changed {
		c.refreshLocked()
	}
}

func (c *Controller[T]) checkPageSize(size int) error {
	if size < 1 || size > c.maxPageSize {
		return fmt.Errorf("page size must be between 1 and %d", c.maxPageSize)
	}
	if len(c.pageSizes) > 0 && !slices.Contains(c.pageSizes, size) {
		return fmt.Errorf("page size must be one of %v", c.pageSizes)
	}
	return nil
}

func (c *Controller[T]) queryLocked() QueryParams {
	return Serialize(c.schema, c.mode, c.filters, c.page)
}

// refreshLocked brings the result in line with the current filters and page.
// A client-paginated list whose server query is unchanged is re-projected
// from the retained records instead of being fetched again.
func (c *Controller[T]) refreshLocked() {
	if !c.mounted || c.closed {
		c.notifyLocked()
		return
	}
	params := c.queryLocked()
	if c.mode == ClientPaginated && c.status == StatusReady && c.hasResult && params.Encode() == c.resultKey {
		c.supersedeLocked()
		c.applyResultLocked()
		return
	}
	c.dispatchLocked(params, false)
}

// supersedeLocked starts a new generation and cancels the in-flight fetch,
// whose result will be discarded.
func (c *Controller[T]) supersedeLocked() {
	c.generation++
	if c.cancelFetch != nil {
		c.cancelFetch()
		c.cancelFetch = nil
	}
}

// dispatchLocked starts a fetch for params in a new generation. fresh asks
// the source to bypass any cached response.
func (c *Controller[T]) dispatchLocked(params QueryParams, fresh bool) {
	c.supersedeLocked()
	gen := c.generation
	ctx, cancel := context.WithCancel(c.baseCtx)
	c.cancelFetch = cancel
	if c.hasResult {
		c.status = StatusRefreshing
	} else {
		c.status = StatusLoading
	}
	c.notifyLocked()
	c.logger.Debug("list fetch dispatched", "generation", gen, "query", params.Encode())
	go c.fetch(ctx, gen, params, fresh)
}

func (c *Controller[T]) fetch(ctx context.Context, gen uint64, params QueryParams, fresh bool) {
	start := time.Now()
	if inv, ok := c.source.(Invalidator); ok && fresh {
		inv.Invalidate(ctx, params)
	}
	res, err := c.fetchSafely(ctx, params)
	applied := c.complete(gen, params.Encode(), res, err)
	if c.observe != nil {
		c.observe(FetchEvent{
			List:     c.name,
			Mode:     c.mode,
			Duration: time.Since(start),
			Items:    len(res.Items),
			Err:      err,
			Stale:    !applied,
		})
	}
}

func (c *Controller[T]) fetchSafely(ctx context.Context, params QueryParams) (res ListResult[T], err error) {
	defer func() {
		if r := recover(); r != nil {
			err = apperrors.Internalf("list source panicked: %v", r)
		}
	}()
	return c.source.FetchPage(ctx, params)
}

// complete applies the outcome of fetch generation gen and reports whether it
// was still current.
func (c *Controller[T]) complete(gen uint64, key string, res ListResult[T], err error) bool {
	c.mu.Lock()
	defer c.unlockAndFlush()
	if c.closed || gen != c.generation {
		c.logger.Debug("discarding stale list response", "generation", gen, "latest", c.generation)
		return false
	}
	if c.cancelFetch != nil {
		c.cancelFetch()
		c.cancelFetch = nil
	}
	if err != nil {
		c.status = StatusError
		c.err = newErrorInfo(err)
		c.logger.Warn("list fetch failed",
			"generation", gen,
			"query", key,
			"error", err,
			"error_type", obserrors.Classify(err))
		c.notifyLocked()
		return true
	}
	c.raw = res.Items
	c.serverTotal = res.ServerTotal
	c.resultKey = key
	c.hasResult = true
	c.applyResultLocked()
	return true
}

// applyResultLocked reconciles the retained result with the current filters
// and page. When the page turns out to be out of range, the clamp is a
// separate transition: a follow-up fetch for server-paginated lists, a
// local re-projection for client-paginated ones.
func (c *Controller[T]) applyResultLocked() {
	res := ListResult[T]{Items: c.raw, ServerTotal: c.serverTotal}
	r := reconcile(c.mode, c.schema, res, c.filters, c.page)
	if r.missingTotal {
		c.logger.Warn("server-paginated response has no total; using a lower bound", "total", r.totalItems)
	}
	c.totalItems = r.totalItems
	c.err = nil

	if r.clampTo > 0 {
		c.logger.Debug("requested page out of range", "page", c.page.Number(), "clamp_to", r.clampTo)
		c.page = c.page.WithPage(r.clampTo)
		// The clamped page inherits pushNext: a SetPage past the end still
		// adds one history entry, while deep-link corrections replace.
		if c.mode == ServerPaginated {
			// Keep the rows on screen until the clamped page arrives.
			c.dispatchLocked(c.queryLocked(), false)
			return
		}
		r = reconcile(c.mode, c.schema, res, c.filters, c.page)
	}

	c.items = r.items
	c.status = StatusReady
	c.queueURLWriteLocked()
	c.notifyLocked()
}

func (c *Controller[T]) onExternalPage(page int) {
	c.mu.Lock()
	defer c.unlockAndFlush()
	if c.closed {
		return
	}
	page = max(1, page)
	c.urlPage = page
	if page == c.page.Number() {
		return
	}
	c.page = c.page.WithPage(page)
	c.pushNext = false
	c.refreshLocked()
}

func (c *Controller[T]) queueURLWriteLocked() {
	if c.urls == nil {
		return
	}
	push := c.pushNext
	c.pushNext = false
	page := c.page.Number()
	if page == c.urlPage {
		return
	}
	c.urlPage = page
	c.urlSeq++
	if c.pendingURL == nil {
		c.urlWrites++
	}
	c.pendingURL = &urlWrite{seq: c.urlSeq, page: page, push: push}
}

// unlockAndFlush releases mu and then performs any queued URL write, so
// URLSync implementations may call back into the controller.
func (c *Controller[T]) unlockAndFlush() {
	w := c.pendingURL
	c.pendingURL = nil
	c.mu.Unlock()
	if w == nil {
		return
	}

	c.writeURL(w)

	c.mu.Lock()
	c.urlWrites--
	c.notifyLocked()
	c.mu.Unlock()
}

func (c *Controller[T]) writeURL(w *urlWrite) {
	c.urlMu.Lock()
	defer c.urlMu.Unlock()
	if w.seq <= c.urlFlushed {
		return
	}
	c.urlFlushed = w.seq
	if r, ok := c.urls.(PageReplacer); ok && !w.push {
		r.ReplacePage(w.page)
		return
	}
	c.urls.WritePage(w.page)
}

func (c *Controller[T]) notifyLocked() {
	close(c.changed)
	c.changed = make(chan struct{})
}
