package core

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sandboxops/console/internal/listview"
)

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{-1234567, "-1,234,567"},
		{-100, "-100"},
		{int64(1234567890), "1,234,567,890"},
		{int32(12345), "12,345"},
		{uint(4500), "4,500"},
		{"n/a", "n/a"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatNumber(tt.in), "formatNumber(%v)", tt.in)
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "e3b0c442…", Truncate("e3b0c44298fc1c149afbf4c8996fb924", 9))
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "h", Truncate("héllo", 1))
	assert.Equal(t, "hé…", Truncate("héllo", 3))
	assert.Equal(t, "unbounded", Truncate("unbounded", 0))
}

func TestIsAll(t *testing.T) {
	isAll := Funcs()["isAll"].(func(string) bool)
	assert.True(t, isAll(listview.All))
	assert.False(t, isAll("Running"))
}

func TestStatusClass(t *testing.T) {
	assert.Equal(t, "badge-danger", statusClass("Failed"))
	assert.Equal(t, "badge-success", statusClass(" Completed "))
	assert.Equal(t, "badge-info", statusClass("analyzing"))
	assert.Equal(t, "badge-light", statusClass("unknown"))
}
