package viewmodel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandboxops/console/internal/listview"
)

func numbers(links []PageLink) []int {
	out := make([]int, 0, len(links))
	for _, l := range links {
		if l.Gap {
			out = append(out, 0)
			continue
		}
		out = append(out, l.Number)
	}
	return out
}

func TestNewPagination_Window(t *testing.T) {
	info := listview.Paginate(200, listview.NewPageSpec(7, 10))
	p := NewPagination(info, "/lists/users")

	assert.Equal(t, []int{1, 0, 5, 6, 7, 8, 9, 0, 20}, numbers(p.Links))
	assert.Equal(t, "/lists/users?page=6", p.PrevURL)
	assert.Equal(t, "/lists/users?page=8", p.NextURL)
	assert.Equal(t, 61, p.StartIndex)
	assert.Equal(t, 70, p.EndIndex)
	for _, l := range p.Links {
		if l.Number == 7 {
			assert.True(t, l.Current)
		}
	}
}

func TestNewPagination_NoGapBetweenAdjacentPages(t *testing.T) {
	info := listview.Paginate(50, listview.NewPageSpec(2, 10))
	p := NewPagination(info, "/lists/users")

	assert.Equal(t, []int{1, 2, 3, 4, 5}, numbers(p.Links))
}

func TestNewPagination_Empty(t *testing.T) {
	p := NewPagination(listview.Paginate(0, listview.NewPageSpec(1, 10)), "/lists/users")

	require.Len(t, p.Links, 1)
	assert.True(t, p.Links[0].Current)
	assert.Empty(t, p.PrevURL)
	assert.Empty(t, p.NextURL)
	assert.Zero(t, p.StartIndex)
}

func TestPageURL_ReplacesExistingPage(t *testing.T) {
	assert.Equal(t, "/lists/users?page=3", PageURL("/lists/users?page=9", 3))
}
