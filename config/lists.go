package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/sandboxops/console/internal/screens"
)

// URL write modes for page changes.
const (
	URLModePush    = "push"
	URLModeReplace = "replace"
)

// ListsConfig controls which screens are served and their list defaults.
type ListsConfig struct {
	// Screens is a comma-delimited list of screen slugs, or "all".
	Screens string `env:"LISTS_SCREENS" envDefault:"all"`

	// PageSize is the initial page size of every screen.
	PageSize int `env:"LISTS_PAGE_SIZE" envDefault:"10"`

	// WildcardToken is sent for server-side filters left at All. Empty
	// omits the parameter.
	WildcardToken string `env:"LISTS_WILDCARD_TOKEN" envDefault:""`

	// URLMode selects whether page changes add browser history entries.
	URLMode string `env:"LISTS_URL_MODE" envDefault:"push"`

	// ItemsExpr and TotalExpr are JMESPath expressions locating the records
	// and the server total in backend responses.
	ItemsExpr string `env:"LISTS_ITEMS_EXPR" envDefault:"not_null(data, items, @)"`
	TotalExpr string `env:"LISTS_TOTAL_EXPR" envDefault:"not_null(totalItems, total)"`
}

// Sanitize applies guardrails to list configuration values.
func (c *ListsConfig) Sanitize() {
	if !slices.Contains(screens.DefaultPageSizes, c.PageSize) {
		c.PageSize = screens.DefaultPageSizes[0]
	}
	c.URLMode = strings.ToLower(strings.TrimSpace(c.URLMode))
	if c.URLMode != URLModeReplace {
		c.URLMode = URLModePush
	}
	c.WildcardToken = strings.TrimSpace(c.WildcardToken)
}

// EnabledScreens parses Screens into a set of screen slugs.
func (c *ListsConfig) EnabledScreens() (map[string]bool, error) {
	return ParseScreens(c.Screens)
}

// ParseScreens parses a comma-delimited string of screen slugs and returns
// the enabled screens. "all" enables every screen.
func ParseScreens(s string) (map[string]bool, error) {
	valid := make([]string, 0, len(screens.Infos()))
	for _, info := range screens.Infos() {
		valid = append(valid, info.Slug)
	}

	enabled := make(map[string]bool)
	if strings.TrimSpace(s) == "" {
		return nil, errors.New("at least one screen must be specified")
	}
	for _, part := range strings.Split(s, ",") {
		name := strings.ToLower(strings.TrimSpace(part))
		switch {
		case name == "":
			continue
		case name == "all":
			for _, slug := range valid {
				enabled[slug] = true
			}
		case slices.Contains(valid, name):
			enabled[name] = true
		default:
			return nil, fmt.Errorf("invalid screen name: %q (valid options: all, %s)", name, strings.Join(valid, ", "))
		}
	}
	if len(enabled) == 0 {
		return nil, errors.New("at least one valid screen must be specified")
	}
	return enabled, nil
}
