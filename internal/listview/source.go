package listview

import "context"

// ListResult is one response from a Source. A nil ServerTotal means the
// source returned an unbounded list and the controller derives the total.
type ListResult[T any] struct {
	Items       []T  `json:"items"`
	ServerTotal *int `json:"server_total,omitempty"`
}

// Paged returns a ListResult for one server-side page out of total records.
func Paged[T any](items []T, total int) ListResult[T] {
	return ListResult[T]{Items: items, ServerTotal: &total}
}

// Unbounded returns a ListResult without a server total.
func Unbounded[T any](items []T) ListResult[T] {
	return ListResult[T]{Items: items}
}

// Source fetches list data for serialized query parameters. Implementations
// must honor ctx cancellation where the transport supports it and report
// transport failures as errors, ideally *errors.AppError with an HTTP status.
type Source[T any] interface {
	FetchPage(ctx context.Context, params QueryParams) (ListResult[T], error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc[T any] func(ctx context.Context, params QueryParams) (ListResult[T], error)

// FetchPage calls f.
func (f SourceFunc[T]) FetchPage(ctx context.Context, params QueryParams) (ListResult[T], error) {
	return f(ctx, params)
}

// Invalidator is implemented by sources that cache responses. Retry calls
// Invalidate before refetching.
type Invalidator interface {
	Invalidate(ctx context.Context, params QueryParams)
}

// URLSync mirrors the page number into the navigable URL.
type URLSync interface {
	// ReadPage returns the page number in the current URL, if any.
	ReadPage() (int, bool)
	// WritePage records page in the URL without a full navigation.
	WritePage(page int)
	// OnExternalChange subscribes to navigations not caused by WritePage
	// (back/forward, deep links). The returned function unsubscribes.
	OnExternalChange(fn func(page int)) (unsubscribe func())
}

// PageReplacer is implemented by URLSync adapters that can overwrite the
// current history entry. The controller uses it for corrections (clamping,
// returning to page 1 after a filter change) so they do not add history.
type PageReplacer interface {
	ReplacePage(page int)
}
