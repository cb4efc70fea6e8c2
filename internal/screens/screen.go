package screens

import (
	"context"
	"slices"

	"github.com/sandboxops/console/internal/listview"
)

// dimensionDef pairs a typed listview dimension with its label.
type dimensionDef[T any] struct {
	listview.Dimension[T]
	Label string
}

// definition is the typed description of one screen.
type definition[T any] struct {
	info       Info
	dimensions []dimensionDef[T]
	search     func(T) []string
	serverSide bool
	row        func(T) Row
}

func (d definition[T]) schema(wildcard string) listview.Schema[T] {
	s := listview.Schema[T]{
		SearchFields: d.search,
		ServerSearch: d.serverSide,
	}
	if d.serverSide {
		s.WildcardToken = wildcard
	}
	for _, dim := range d.dimensions {
		s.Dimensions = append(s.Dimensions, dim.Dimension)
	}
	return s
}

// screen adapts a typed Controller to Handle.
type screen[T any] struct {
	def  definition[T]
	ctrl *listview.Controller[T]
}

var _ Handle = (*screen[struct{}])(nil)

func (s *screen[T]) Slug() string { return s.def.info.Slug }
func (s *screen[T]) Mount(ctx context.Context) { s.ctrl.Mount(ctx) }
func (s *screen[T]) Close() { s.ctrl.Close() }
func (s *screen[T]) SetSearch(q string) { s.ctrl.SetSearch(q) }
func (s *screen[T]) SetDimension(name, value string) { s.ctrl.SetDimension(name, value) }
func (s *screen[T]) SetPageSize(size int) { s.ctrl.SetPageSize(size) }
func (s *screen[T]) SetPage(n int) { s.ctrl.SetPage(n) }
func (s *screen[T]) ResetFilters() { s.ctrl.ResetFilters() }
func (s *screen[T]) Apply(ch listview.Changes) { s.ctrl.Apply(ch) }
func (s *screen[T]) Check(ch listview.Changes) error { return s.ctrl.Check(ch) }
func (s *screen[T]) Retry() { s.ctrl.Retry() }
func (s *screen[T]) Updated() <-chan struct{} { return s.ctrl.Updated() }
func (s *screen[T]) Page() Page { return s.render(s.ctrl.View()) }

func (s *screen[T]) Settle(ctx context.Context) (Page, error) {
	v, err := s.ctrl.Settle(ctx)
	return s.render(v), err
}

func (s *screen[T]) render(v listview.View[T]) Page {
	rows := make([]Row, len(v.Items))
	for i, item := range v.Items {
		rows[i] = s.def.row(item)
	}
	dims := make([]Dimension, len(s.def.dimensions))
	for i, d := range s.def.dimensions {
		kind := DimensionSelect
		if d.Kind != listview.KindEnum {
			kind = DimensionDate
		}
		dims[i] = Dimension{
			Name:    d.Name,
			Label:   d.Label,
			Kind:    kind,
			Options: slices.Clone(d.Options),
			Value:   v.Filters.Get(d.Name),
		}
	}
	return Page{
		Screen:        s.def.info.Slug,
		Title:         s.def.info.Title,
		Mode:          s.ctrl.Mode().String(),
		Columns:       slices.Clone(s.def.info.Columns),
		Rows:          rows,
		Pagination:    v.Pagination,
		Status:        v.Status,
		Err:           v.Err,
		Search:        v.Filters.Search(),
		Searchable:    s.ctrl.Searchable(),
		Dimensions:    dims,
		ActiveFilters: v.Filters.ActiveCount(),
		PageSizes:     s.ctrl.PageSizes(),
	}
}
