package listview

// reconciliation is the pure outcome of applying a ListResult to the current
// FilterSet and PageSpec. It never changes controller state; the controller
// applies it, and performs any clamp as a separate transition.
type reconciliation[T any] struct {
	items      []T
	totalItems int
	// clampTo is the last valid page when the requested page is out of
	// range, 0 otherwise.
	clampTo int
	// missingTotal flags a server-paginated response without a total.
	missingTotal bool
}

func reconcile[T any](mode Mode, s Schema[T], res ListResult[T], f FilterSet, p PageSpec) reconciliation[T] {
	var r reconciliation[T]
	if mode == ServerPaginated {
		// The server already searched, filtered and paginated: the items are
		// the page. Filtering them again would under-count the total.
		r.items = res.Items
		if res.ServerTotal != nil {
			r.totalItems = max(0, *res.ServerTotal)
		} else {
			r.missingTotal = true
			r.totalItems = p.Offset() + len(res.Items)
		}
	} else {
		matched := filterRecords(s, res.Items, f)
		r.totalItems = len(matched)
		r.items = slicePage(matched, p)
	}
	if pages := TotalPages(r.totalItems, p.Size()); p.Number() > pages {
		r.clampTo = pages
	}
	return r
}

func filterRecords[T any](s Schema[T], records []T, f FilterSet) []T {
	out := make([]T, 0, len(records))
	for _, rec := range records {
		if s.Match(rec, f) {
			out = append(out, rec)
		}
	}
	return out
}

// slicePage returns records[(n-1)*size : n*size], bounded to the slice.
func slicePage[T any](records []T, p PageSpec) []T {
	start := p.Offset()
	if start >= len(records) {
		return []T{}
	}
	end := min(start+p.Size(), len(records))
	out := make([]T, end-start)
	copy(out, records[start:end])
	return out
}
