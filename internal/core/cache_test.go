package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestListCacheKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name                  string
		prefix, source, query string
		want                  string
	}{
		{"with prefix", "console:", "active-tasks", "limit=10&page=1", "console:list:active-tasks:limit=10&page=1"},
		{"no prefix", "", "users", "role=admin", "list:users:role=admin"},
		{"empty query", "console", "vms", "", "console:list:vms:-"},
		{"prefix colons trimmed", "::console::", "signatures", "q=emotet", "console:list:signatures:q=emotet"},
		{"purge pattern", "console", "*", "*", "console:list:*:*"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ListCacheKey(tt.prefix, tt.source, tt.query))
		})
	}
}
