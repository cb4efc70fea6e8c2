// Package core holds the template helpers used by the list pages.
package core

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/sandboxops/console/internal/listview"
)

// Funcs returns the helpers installed on every template.
func Funcs() map[string]any {
	return map[string]any{
		"formatNumber": formatNumber,
		"truncateText": Truncate,
		"isAll":        func(v string) bool { return v == listview.All },
		"statusClass":  statusClass,
	}
}

var badgeClasses = map[string]string{
	"failed":    "badge-danger",
	"inactive":  "badge-danger",
	"stopped":   "badge-danger",
	"running":   "badge-info",
	"analyzing": "badge-info",
	"pending":   "badge-info",
	"completed": "badge-success",
	"active":    "badge-success",
}

// statusClass picks the badge colour for a status cell.
func statusClass(value string) string {
	if c, ok := badgeClasses[strings.ToLower(strings.TrimSpace(value))]; ok {
		return c
	}
	return "badge-light"
}

// formatNumber groups the digits of an integer by thousands; other values
// print as-is.
func formatNumber(v any) string {
	var digits string
	switch n := v.(type) {
	case int:
		digits = strconv.Itoa(n)
	case int32:
		digits = strconv.FormatInt(int64(n), 10)
	case int64:
		digits = strconv.FormatInt(n, 10)
	case uint:
		digits = strconv.FormatUint(uint64(n), 10)
	case uint64:
		digits = strconv.FormatUint(n, 10)
	default:
		return fmt.Sprint(v)
	}

	sign := ""
	if digits[0] == '-' {
		sign, digits = "-", digits[1:]
	}
	out := make([]byte, 0, len(digits)+len(digits)/3)
	for i := range len(digits) {
		if i > 0 && (len(digits)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, digits[i])
	}
	return sign + string(out)
}

// Truncate shortens s to at most n runes, the last being an ellipsis.
// n <= 0 disables truncation.
func Truncate(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	if n == 1 {
		return string(r[:1])
	}
	return string(r[:n-1]) + "…"
}
