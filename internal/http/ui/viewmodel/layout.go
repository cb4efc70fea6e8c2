// Package viewmodel holds the template data shared by console pages.
package viewmodel

// NavItem is one entry of the screen menu.
type NavItem struct {
	Slug    string
	Title   string
	URL     string
	Current bool
}

// Layout captures shared chrome metadata (titles, navigation state).
type Layout struct {
	Title       string
	CurrentPage string
	Nav         []NavItem
	IsDev       bool
}

// LayoutProvider exposes layout metadata for renderer utilities.
type LayoutProvider interface {
	LayoutData() *Layout
}
