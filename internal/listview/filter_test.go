package listview

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFilterSet_DefaultsToAll(t *testing.T) {
	f := NewFilterSet("status", "category", "", "status")

	assert.Equal(t, []string{"status", "category"}, f.Names())
	assert.Empty(t, f.Search())
	assert.Equal(t, All, f.Get("status"))
	assert.Equal(t, All, f.Get("category"))
	assert.Equal(t, All, f.Get("unknown"))
	assert.Zero(t, f.ActiveCount())
}

func TestFilterSet_WithDimensionIsCopyOnWrite(t *testing.T) {
	base := NewFilterSet("status")

	next, ok := base.WithDimension("status", "Running")
	require.True(t, ok)

	assert.Equal(t, "Running", next.Get("status"))
	assert.Equal(t, All, base.Get("status"), "original must not change")
	assert.Equal(t, 1, next.ActiveCount())
}

func TestFilterSet_WithDimensionUnknownName(t *testing.T) {
	base := NewFilterSet("status")

	next, ok := base.WithDimension("colour", "red")

	assert.False(t, ok)
	assert.True(t, next.Equal(base))
	assert.False(t, next.Has("colour"))
}

func TestFilterSet_SentinelSpellings(t *testing.T) {
	f, _ := NewFilterSet("status").WithDimension("status", "Failed")

	for _, v := range []string{"", "  ", "all", "All", "ALL"} {
		cleared, ok := f.WithDimension("status", v)
		require.True(t, ok)
		assert.Equal(t, All, cleared.Get("status"), "value %q", v)
	}
}

func TestFilterSet_WithSearchTrims(t *testing.T) {
	f := NewFilterSet().WithSearch("  report.pdf ")
	assert.Equal(t, "report.pdf", f.Search())
	assert.Zero(t, f.ActiveCount(), "search text is not a dimension")
}

func TestFilterSet_Reset(t *testing.T) {
	f, _ := NewFilterSet("status", "category").WithSearch("x").WithDimension("status", "Running")
	f, _ = f.WithDimension("category", "File")

	reset := f.Reset()

	assert.Empty(t, reset.Search())
	assert.Zero(t, reset.ActiveCount())
	assert.Equal(t, f.Names(), reset.Names())
	assert.True(t, reset.Equal(NewFilterSet("status", "category")))
}

func TestFilterSet_Equal(t *testing.T) {
	a, _ := NewFilterSet("status").WithDimension("status", "Running")
	b, _ := NewFilterSet("status").WithDimension("status", "Running")
	c, _ := NewFilterSet("status").WithDimension("status", "Failed")

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(a.WithSearch("q")))
	assert.False(t, NewFilterSet("status").Equal(NewFilterSet("category")))
}
