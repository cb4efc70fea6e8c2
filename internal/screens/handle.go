// Package screens defines the console's list screens on top of listview and
// exposes them through a non-generic Handle for the HTTP and CLI layers.
package screens

import (
	"context"

	"github.com/sandboxops/console/internal/listview"
)

// Column is one table column.
type Column struct {
	Key   string `json:"key"`
	Title string `json:"title"`
}

// Row is one rendered record.
type Row struct {
	ID    string   `json:"id"`
	Cells []string `json:"cells"`
}

// DimensionKind tells the presentation layer which input to render.
type DimensionKind string

// Dimension kinds.
const (
	DimensionSelect DimensionKind = "select"
	DimensionDate   DimensionKind = "date"
)

// Dimension describes one filter control and its current value.
type Dimension struct {
	Name    string        `json:"name"`
	Label   string        `json:"label"`
	Kind    DimensionKind `json:"kind"`
	Options []string      `json:"options,omitempty"`
	Value   string        `json:"value"`
}

// Active reports whether the dimension constrains the list.
func (d Dimension) Active() bool { return d.Value != listview.All }

// Page is the rendered read model of a screen.
type Page struct {
	Screen        string                  `json:"screen"`
	Title         string                  `json:"title"`
	Mode          string                  `json:"mode"`
	Columns       []Column                `json:"columns"`
	Rows          []Row                   `json:"rows"`
	Pagination    listview.PaginationInfo `json:"pagination"`
	Status        listview.Status         `json:"status"`
	Err           *listview.ErrorInfo     `json:"error,omitempty"`
	Search        string                  `json:"search"`
	Searchable    bool                    `json:"searchable"`
	Dimensions    []Dimension             `json:"dimensions"`
	ActiveFilters int                     `json:"active_filters"`
	PageSizes     []int                   `json:"page_sizes"`
}

// Handle drives one mounted list screen.
type Handle interface {
	Slug() string
	Mount(ctx context.Context)
	Close()

	SetSearch(q string)
	SetDimension(name, value string)
	SetPageSize(size int)
	SetPage(n int)
	ResetFilters()
	Apply(ch listview.Changes)
	// Check reports the parts of ch that Apply would skip.
	Check(ch listview.Changes) error
	Retry()

	Page() Page
	Settle(ctx context.Context) (Page, error)
	Updated() <-chan struct{}
}
