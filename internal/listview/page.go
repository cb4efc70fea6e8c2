package listview

// PageSpec is an immutable page request: a 1-indexed page number and a page size.
type PageSpec struct {
	number int
	size   int
}

// NewPageSpec returns a PageSpec with both fields clamped to at least 1.
func NewPageSpec(number, size int) PageSpec {
	return PageSpec{number: max(1, number), size: max(1, size)}
}

// Number returns the 1-indexed page number.
func (p PageSpec) Number() int { return max(1, p.number) }

// Size returns the page size.
func (p PageSpec) Size() int { return max(1, p.size) }

// Offset returns the zero-based index of the first record on the page.
func (p PageSpec) Offset() int { return (p.Number() - 1) * p.Size() }

// WithPage returns a copy requesting page n (at least 1).
func (p PageSpec) WithPage(n int) PageSpec {
	return PageSpec{number: max(1, n), size: p.Size()}
}

// WithSize returns a copy with a new page size. Changing the size always
// returns to the first page.
func (p PageSpec) WithSize(size int) PageSpec {
	return PageSpec{number: 1, size: max(1, size)}
}

// PaginationInfo is derived pagination metadata for a list view. It is never
// persisted. PageNumber is always within [1, TotalPages].
type PaginationInfo struct {
	PageNumber int `json:"page_number"`
	PageSize   int `json:"page_size"`
	TotalItems int `json:"total_items"`
	TotalPages int `json:"total_pages"`
	// StartIndex and EndIndex are the 1-based positions of the first and last
	// record on the page, both 0 when the list is empty.
	StartIndex int  `json:"start_index"`
	EndIndex   int  `json:"end_index"`
	HasPrev    bool `json:"has_prev"`
	HasNext    bool `json:"has_next"`
}

// TotalPages returns max(1, ceil(totalItems/pageSize)).
func TotalPages(totalItems, pageSize int) int {
	if pageSize < 1 {
		pageSize = 1
	}
	if totalItems <= 0 {
		return 1
	}
	return (totalItems + pageSize - 1) / pageSize
}

// ClampPage bounds page into [1, totalPages].
func ClampPage(page, totalPages int) int {
	return min(max(1, page), max(1, totalPages))
}

// Paginate derives PaginationInfo for totalItems records viewed through spec.
func Paginate(totalItems int, spec PageSpec) PaginationInfo {
	totalItems = max(0, totalItems)
	pages := TotalPages(totalItems, spec.Size())
	page := ClampPage(spec.Number(), pages)
	info := PaginationInfo{
		PageNumber: page,
		PageSize:   spec.Size(),
		TotalItems: totalItems,
		TotalPages: pages,
		HasPrev:    page > 1,
		HasNext:    page < pages,
	}
	if totalItems > 0 {
		info.StartIndex = (page-1)*spec.Size() + 1
		info.EndIndex = min(page*spec.Size(), totalItems)
	}
	return info
}
