// Package listview implements the list view controller shared by every list
// screen of the console: free-text search, filter dimensions, pagination over
// a remote source, and page-number synchronization with the browser URL.
package listview

import (
	"slices"
	"strings"
)

// All is the sentinel value of an unconstrained filter dimension.
const All = "ALL"

// FilterSet is an immutable combination of search text and per-dimension
// selections. The set of dimension names is fixed when the FilterSet is
// created; every With* method returns a new value.
type FilterSet struct {
	q     string
	names []string
	dims  map[string]string
}

// NewFilterSet returns a FilterSet with empty search text and every named
// dimension set to All. Duplicate and empty names are ignored.
func NewFilterSet(names ...string) FilterSet {
	dims := make(map[string]string, len(names))
	ordered := make([]string, 0, len(names))
	for _, name := range names {
		if name == "" {
			continue
		}
		if _, dup := dims[name]; dup {
			continue
		}
		dims[name] = All
		ordered = append(ordered, name)
	}
	return FilterSet{names: ordered, dims: dims}
}

// Search returns the free-text search token.
func (f FilterSet) Search() string { return f.q }

// Names returns the dimension names in declaration order.
func (f FilterSet) Names() []string { return slices.Clone(f.names) }

// Has reports whether name is one of the dimensions of this FilterSet.
func (f FilterSet) Has(name string) bool {
	_, ok := f.dims[name]
	return ok
}

// Get returns the selected value of a dimension, or All when the dimension
// is unknown or unconstrained.
func (f FilterSet) Get(name string) string {
	if v, ok := f.dims[name]; ok {
		return v
	}
	return All
}

// WithSearch returns a copy with the search text replaced. Surrounding
// whitespace is not significant.
func (f FilterSet) WithSearch(q string) FilterSet {
	next := f
	next.q = strings.TrimSpace(q)
	return next
}

// WithDimension returns a copy with one dimension replaced. Empty values and
// any casing of "all" select All. The second result is false, and f is
// returned unchanged, when name is not a dimension of this FilterSet.
func (f FilterSet) WithDimension(name, value string) (FilterSet, bool) {
	if !f.Has(name) {
		return f, false
	}
	value = normalizeSentinel(value)
	if f.dims[name] == value {
		return f, true
	}
	next := f
	next.dims = make(map[string]string, len(f.dims))
	for k, v := range f.dims {
		next.dims[k] = v
	}
	next.dims[name] = value
	return next, true
}

// Reset returns a copy with empty search text and every dimension set to All.
func (f FilterSet) Reset() FilterSet {
	return NewFilterSet(f.names...)
}

// ActiveCount returns the number of constrained dimensions. Search text is
// not counted.
func (f FilterSet) ActiveCount() int {
	n := 0
	for _, v := range f.dims {
		if v != All {
			n++
		}
	}
	return n
}

// Equal reports whether both FilterSets carry the same search text and the
// same value for every dimension.
func (f FilterSet) Equal(other FilterSet) bool {
	if f.q != other.q || len(f.dims) != len(other.dims) {
		return false
	}
	for k, v := range f.dims {
		ov, ok := other.dims[k]
		if !ok || ov != v {
			return false
		}
	}
	return true
}

func normalizeSentinel(value string) string {
	value = strings.TrimSpace(value)
	if value == "" || strings.EqualFold(value, All) {
		return All
	}
	return value
}
