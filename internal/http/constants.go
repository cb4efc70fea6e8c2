package httpx

import "time"

// CurrentPage identifiers used in templates and navigation.
const (
	PageList  = "list"
	PageError = "error"
)

// Route prefixes.
const (
	ListPathPrefix   = "/lists/"
	APIPathPrefix    = "/api/lists/"
	StaticPathPrefix = "/static/"
)

// DefaultSettleTimeout bounds how long a request waits for a list to load.
const DefaultSettleTimeout = 10 * time.Second

// Template paths used for loading templates in tests and production.
const (
	TemplatePathFromRoot = "frontend/templates"       // From project root
	TemplatePathFromTest = "../../frontend/templates" // From internal/http test files
)

// StaticPathFromRoot is the directory served under /static/.
const StaticPathFromRoot = "frontend/static"
