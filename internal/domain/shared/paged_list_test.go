package shared

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPagedList(t *testing.T) {
	t.Run("computes page flags", func(t *testing.T) {
		list := NewPagedList([]int{4, 5, 6}, 1, 3, 10)

		assert.Equal(t, 4, list.TotalPages)
		assert.True(t, list.HasPreviousPage)
		assert.True(t, list.HasNextPage)
		assert.Equal(t, int64(10), list.TotalCount)
	})

	t.Run("last page has no next page", func(t *testing.T) {
		list := NewPagedList([]int{10}, 3, 3, 10)

		assert.False(t, list.HasNextPage)
		assert.True(t, list.HasPreviousPage)
	})

	t.Run("clamps page size", func(t *testing.T) {
		list := NewPagedList[int](nil, 0, 0, 2)

		assert.Equal(t, 1, list.PageSize)
		assert.Equal(t, 2, list.TotalPages)
		assert.NotNil(t, list.Items)
	})

	t.Run("empty result", func(t *testing.T) {
		list := NewPagedList[string](nil, 0, 20, 0)

		assert.Equal(t, 0, list.TotalPages)
		assert.False(t, list.HasPreviousPage)
		assert.False(t, list.HasNextPage)
	})
}

func TestPagedListFromSlice(t *testing.T) {
	all := []string{"a", "b", "c", "d", "e"}

	t.Run("middle page", func(t *testing.T) {
		list := PagedListFromSlice(all, 1, 2)
		assert.Equal(t, []string{"c", "d"}, list.Items)
		assert.Equal(t, 3, list.TotalPages)
	})

	t.Run("partial last page", func(t *testing.T) {
		list := PagedListFromSlice(all, 2, 2)
		assert.Equal(t, []string{"e"}, list.Items)
		assert.False(t, list.HasNextPage)
	})

	t.Run("page beyond range", func(t *testing.T) {
		list := PagedListFromSlice(all, 9, 2)
		assert.Empty(t, list.Items)
		assert.Equal(t, int64(5), list.TotalCount)
	})

	t.Run("out of range indexes", func(t *testing.T) {
		tests := []struct {
			name      string
			pageIndex int
			pageSize  int
		}{
			{name: "just past the end", pageIndex: 3, pageSize: 2},
			{name: "product overflows", pageIndex: 461168601842738791, pageSize: 20},
			{name: "max int", pageIndex: math.MaxInt, pageSize: 100},
			{name: "max int page size", pageIndex: 1, pageSize: math.MaxInt},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				var list *PagedList[string]
				require.NotPanics(t, func() { list = PagedListFromSlice(all, tt.pageIndex, tt.pageSize) })
				assert.Empty(t, list.Items)
				assert.Equal(t, int64(5), list.TotalCount)
				assert.False(t, list.HasNextPage)
			})
		}
	})
}
