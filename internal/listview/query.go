package listview

import (
	"net/url"
	"strconv"
	"strings"
)

// QueryParams is the serialized form of a FilterSet and PageSpec as sent to a
// Source. Each parameter carries a single value.
type QueryParams struct {
	values url.Values
}

// NewQueryParams builds QueryParams from a plain map.
func NewQueryParams(m map[string]string) QueryParams {
	v := make(url.Values, len(m))
	for k, val := range m {
		v.Set(k, val)
	}
	return QueryParams{values: v}
}

// Get returns the value of key, or "" when absent.
func (q QueryParams) Get(key string) string { return q.values.Get(key) }

// Has reports whether key is present.
func (q QueryParams) Has(key string) bool { return q.values.Has(key) }

// Len returns the number of parameters.
func (q QueryParams) Len() int { return len(q.values) }

// Values returns a copy of the parameters as url.Values.
func (q QueryParams) Values() url.Values {
	out := make(url.Values, len(q.values))
	for k, v := range q.values {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// Encode renders the parameters as a query string sorted by key. Equal
// FilterSets and PageSpecs always encode identically, so the result doubles
// as the request's cache and race key.
func (q QueryParams) Encode() string { return q.values.Encode() }

func (q QueryParams) String() string { return q.Encode() }

// Serialize renders f and p into QueryParams for a source operating in mode.
//
// Dimensions at All are omitted unless the schema names a wildcard token.
// Dimensions applied locally, and search text matched locally, are never
// sent. Page and size are sent only to server-paginated sources.
func Serialize[T any](s Schema[T], mode Mode, f FilterSet, p PageSpec) QueryParams {
	params := s.Params.withDefaults()
	v := make(url.Values, len(s.Dimensions)+3)
	for _, d := range s.Dimensions {
		if !d.ServerSide {
			continue
		}
		val := f.Get(d.Name)
		if val == All {
			if s.WildcardToken != "" {
				v.Set(d.param(), s.WildcardToken)
			}
			continue
		}
		if d.Lowercase {
			val = strings.ToLower(val)
		}
		v.Set(d.param(), val)
	}
	if s.ServerSearch {
		if q := f.Search(); q != "" {
			v.Set(params.Search, q)
		}
	}
	if mode == ServerPaginated {
		v.Set(params.Page, strconv.Itoa(p.Number()))
		v.Set(params.Size, strconv.Itoa(p.Size()))
	}
	return QueryParams{values: v}
}
