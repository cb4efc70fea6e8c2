package viewmodel

import (
	"net/url"
	"strconv"

	"github.com/sandboxops/console/internal/listview"
)

// PageLink is one numbered link of the pager. Gap entries render as an
// ellipsis and carry no URL.
type PageLink struct {
	Number  int
	URL     string
	Current bool
	Gap     bool
}

// Pagination contains pagination metadata for list views.
type Pagination struct {
	Page       int
	PageSize   int
	TotalPages int
	HasPrev    bool
	HasNext    bool
	StartIndex int
	EndIndex   int
	TotalCount int
	PrevURL    string
	NextURL    string
	Links      []PageLink
}

// pagerRadius is the number of pages shown on each side of the current one.
const pagerRadius = 2

// NewPagination builds the pager for info with links relative to base.
// The first and last pages are always linked; runs of skipped pages
// collapse into a single gap.
func NewPagination(info listview.PaginationInfo, base string) Pagination {
	p := Pagination{
		Page:       info.PageNumber,
		PageSize:   info.PageSize,
		TotalPages: info.TotalPages,
		HasPrev:    info.HasPrev,
		HasNext:    info.HasNext,
		StartIndex: info.StartIndex,
		EndIndex:   info.EndIndex,
		TotalCount: info.TotalItems,
	}
	if p.HasPrev {
		p.PrevURL = PageURL(base, p.Page-1)
	}
	if p.HasNext {
		p.NextURL = PageURL(base, p.Page+1)
	}

	last := 0
	for n := 1; n <= p.TotalPages; n++ {
		if n != 1 && n != p.TotalPages && (n < p.Page-pagerRadius || n > p.Page+pagerRadius) {
			continue
		}
		if last != 0 && n > last+1 {
			p.Links = append(p.Links, PageLink{Gap: true})
		}
		p.Links = append(p.Links, PageLink{Number: n, URL: PageURL(base, n), Current: n == p.Page})
		last = n
	}
	return p
}

// PageURL returns base with its page parameter set to n.
func PageURL(base string, n int) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	q := u.Query()
	q.Set("page", strconv.Itoa(n))
	u.RawQuery = q.Encode()
	return u.String()
}
