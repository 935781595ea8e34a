package pagination_test

import (
	"testing"

	"liblend/internal/pkg/pagination"

	"github.com/stretchr/testify/assert"
)

func TestGetMeta(t *testing.T) {
	t.Run("middle page", func(t *testing.T) {
		meta := pagination.GetMeta(&pagination.Params{Page: 2, Limit: 10}, 35)

		assert.Equal(t, 4, meta.TotalPages)
		assert.Equal(t, int64(35), meta.Total)
		assert.True(t, meta.HasNext)
		assert.True(t, meta.HasPrev)
	})

	t.Run("first and last page flags", func(t *testing.T) {
		first := pagination.GetMeta(&pagination.Params{Page: 1, Limit: 10}, 35)
		assert.True(t, first.HasNext)
		assert.False(t, first.HasPrev)

		last := pagination.GetMeta(&pagination.Params{Page: 4, Limit: 10}, 35)
		assert.False(t, last.HasNext)
		assert.True(t, last.HasPrev)
	})

	t.Run("exact multiple of limit", func(t *testing.T) {
		meta := pagination.GetMeta(&pagination.Params{Page: 1, Limit: 10}, 30)
		assert.Equal(t, 3, meta.TotalPages)
	})
}

func TestNewResponse(t *testing.T) {
	data := []string{"a", "b"}
	resp := pagination.NewResponse(data, &pagination.Params{Page: 1, Limit: 2}, 2)

	assert.Equal(t, data, resp.Data)
	assert.Equal(t, 1, resp.Meta.TotalPages)
	assert.False(t, resp.Meta.HasNext)
}
