package httpx

import (
	"github.com/sandboxops/console/internal/http/ui/viewmodel"
	"github.com/sandboxops/console/internal/screens"
)

// ListPageData is the template data of a list screen.
type ListPageData struct {
	Layout     viewmodel.Layout
	Page       screens.Page
	URL        string
	Pagination viewmodel.Pagination
}

// LayoutData implements viewmodel.LayoutProvider.
func (d *ListPageData) LayoutData() *viewmodel.Layout { return &d.Layout }

// ErrorPageData is the template data of the error page.
type ErrorPageData struct {
	Layout  viewmodel.Layout
	Status  int
	Message string
}

// LayoutData implements viewmodel.LayoutProvider.
func (d *ErrorPageData) LayoutData() *viewmodel.Layout { return &d.Layout }

func buildLayout(infos []screens.Info, current, title string, isDev bool) viewmodel.Layout {
	nav := make([]viewmodel.NavItem, 0, len(infos))
	for _, info := range infos {
		nav = append(nav, viewmodel.NavItem{
			Slug:    info.Slug,
			Title:   info.Title,
			URL:     ListPathPrefix + info.Slug,
			Current: info.Slug == current,
		})
	}
	return viewmodel.Layout{
		Title:       title,
		CurrentPage: current,
		Nav:         nav,
		IsDev:       isDev,
	}
}
