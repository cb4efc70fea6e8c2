package listview

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Mode declares who paginates a list. It is fixed per screen and never
// inferred from a response: an empty page is ambiguous between "end of
// results" and "no server-side paging".
type Mode int

const (
	// ServerPaginated sources search, filter and paginate, and report a total.
	ServerPaginated Mode = iota + 1
	// ClientPaginated sources return an unbounded list; the controller filters
	// and slices it locally.
	ClientPaginated
)

func (m Mode) String() string {
	switch m {
	case ServerPaginated:
		return "server"
	case ClientPaginated:
		return "client"
	default:
		return "unknown"
	}
}

// DimensionKind selects how a dimension is validated, serialized and matched.
type DimensionKind int

const (
	// KindEnum dimensions match by case-insensitive equality.
	KindEnum DimensionKind = iota
	// KindDateFrom dimensions keep records dated on or after the value.
	KindDateFrom
	// KindDateTo dimensions keep records dated on or before the value.
	KindDateTo
)

// DateLayout is the calendar format of date dimension values.
const DateLayout = "2006-01-02"

// FormatDate renders t in DateLayout, for use with Controller.SetDimension.
func FormatDate(t time.Time) string { return t.Format(DateLayout) }

// Dimension describes one filter dimension of a screen.
type Dimension[T any] struct {
	// Name identifies the dimension in the FilterSet.
	Name string
	// Param is the query parameter name. Defaults to Name.
	Param string
	Kind  DimensionKind
	// Options lists the accepted values besides All. Empty accepts any value.
	Options []string
	// ServerSide dimensions are sent to the source; the others are applied
	// locally and require ClientPaginated mode.
	ServerSide bool
	// Lowercase sends the value lower-cased, for backends that expect the
	// lower-cased UI label.
	Lowercase bool
	// Value extracts the record field matched by a local enum dimension.
	Value func(T) string
	// Time extracts the record date matched by a local date dimension.
	Time func(T) time.Time
}

func (d Dimension[T]) param() string {
	if d.Param != "" {
		return d.Param
	}
	return d.Name
}

// Params names the query parameters that are not dimensions.
type Params struct {
	Page   string
	Size   string
	Search string
}

// DefaultParams returns the parameter names used by the sandbox REST API.
func DefaultParams() Params {
	return Params{Page: "page", Size: "limit", Search: "q"}
}

func (p Params) withDefaults() Params {
	def := DefaultParams()
	if p.Page == "" {
		p.Page = def.Page
	}
	if p.Size == "" {
		p.Size = def.Size
	}
	if p.Search == "" {
		p.Search = def.Search
	}
	return p
}

// Schema is the per-screen description of what can be searched and filtered.
type Schema[T any] struct {
	Dimensions []Dimension[T]
	// SearchFields returns the record fields matched case-insensitively by
	// local search. Unused when ServerSearch is set.
	SearchFields func(T) []string
	// ServerSearch sends the search text to the source instead of matching locally.
	ServerSearch bool
	Params       Params
	// WildcardToken, when set, is sent for dimensions left at All instead of
	// omitting them.
	WildcardToken string
}

// Names returns the dimension names in declaration order.
func (s Schema[T]) Names() []string {
	names := make([]string, 0, len(s.Dimensions))
	for _, d := range s.Dimensions {
		names = append(names, d.Name)
	}
	return names
}

// Dimension looks up a dimension by name.
func (s Schema[T]) Dimension(name string) (Dimension[T], bool) {
	for _, d := range s.Dimensions {
		if d.Name == name {
			return d, true
		}
	}
	return Dimension[T]{}, false
}

// Searchable reports whether search text has any effect in mode.
func (s Schema[T]) Searchable(mode Mode) bool {
	if s.ServerSearch {
		return true
	}
	return mode == ClientPaginated && s.SearchFields != nil
}

// Validate checks the schema against the pagination mode.
func (s Schema[T]) Validate(mode Mode) error {
	if mode != ServerPaginated && mode != ClientPaginated {
		return fmt.Errorf("unknown pagination mode %d", mode)
	}
	seen := make(map[string]bool, len(s.Dimensions))
	params := s.Params.withDefaults()
	reserved := map[string]bool{params.Page: true, params.Size: true, params.Search: true}
	for _, d := range s.Dimensions {
		if d.Name == "" {
			return errors.New("dimension name cannot be empty")
		}
		if seen[d.Name] {
			return fmt.Errorf("duplicate dimension %q", d.Name)
		}
		seen[d.Name] = true
		if d.ServerSide && reserved[d.param()] {
			return fmt.Errorf("dimension %q uses reserved parameter %q", d.Name, d.param())
		}
		if d.ServerSide {
			continue
		}
		if mode == ServerPaginated {
			return fmt.Errorf("dimension %q must be server-side on a server-paginated list", d.Name)
		}
		switch d.Kind {
		case KindEnum:
			if d.Value == nil {
				return fmt.Errorf("local dimension %q requires a Value accessor", d.Name)
			}
		case KindDateFrom, KindDateTo:
			if d.Time == nil {
				return fmt.Errorf("local dimension %q requires a Time accessor", d.Name)
			}
		default:
			return fmt.Errorf("dimension %q has unknown kind %d", d.Name, d.Kind)
		}
	}
	return nil
}

// Normalize validates a value for the named dimension and returns its
// canonical form: the declared option spelling for enums, DateLayout for dates.
func (s Schema[T]) Normalize(name, value string) (string, error) {
	d, ok := s.Dimension(name)
	if !ok {
		return "", fmt.Errorf("unknown filter dimension %q", name)
	}
	value = normalizeSentinel(value)
	if value == All {
		return All, nil
	}
	switch d.Kind {
	case KindDateFrom, KindDateTo:
		t, err := parseDate(value)
		if err != nil {
			return "", fmt.Errorf("dimension %q: %w", name, err)
		}
		return FormatDate(t), nil
	default:
		if len(d.Options) == 0 {
			return value, nil
		}
		for _, opt := range d.Options {
			if strings.EqualFold(opt, value) {
				return opt, nil
			}
		}
		return "", fmt.Errorf("dimension %q: %q must be one of: %s", name, value, strings.Join(d.Options, ", "))
	}
}

// Match reports whether rec passes the locally applied part of f: the
// search text (unless searched server-side) and every non-server dimension.
func (s Schema[T]) Match(rec T, f FilterSet) bool {
	if q := f.Search(); q != "" && !s.ServerSearch && s.SearchFields != nil {
		if !containsFold(s.SearchFields(rec), q) {
			return false
		}
	}
	for _, d := range s.Dimensions {
		if d.ServerSide {
			continue
		}
		want := f.Get(d.Name)
		if want == All {
			continue
		}
		switch d.Kind {
		case KindDateFrom:
			if d.Time == nil || FormatDate(d.Time(rec)) < want {
				return false
			}
		case KindDateTo:
			if d.Time == nil || FormatDate(d.Time(rec)) > want {
				return false
			}
		default:
			if d.Value == nil || !strings.EqualFold(d.Value(rec), want) {
				return false
			}
		}
	}
	return true
}

func containsFold(fields []string, q string) bool {
	q = strings.ToLower(q)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

func parseDate(value string) (time.Time, error) {
	for _, layout := range []string{DateLayout, time.RFC3339, time.RFC3339Nano} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%q is not a date (want YYYY-MM-DD)", value)
}
