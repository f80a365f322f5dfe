package kernel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaginationNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   PaginationOptions
		want PaginationOptions
	}{
		{"defaults", PaginationOptions{}, PaginationOptions{Page: 1, PageSize: 20}},
		{"negative page", PaginationOptions{Page: -3, PageSize: 10}, PaginationOptions{Page: 1, PageSize: 10}},
		{"oversized page", PaginationOptions{Page: 2, PageSize: 500}, PaginationOptions{Page: 2, PageSize: 100}},
		{"in range untouched", PaginationOptions{Page: 4, PageSize: 25}, PaginationOptions{Page: 4, PageSize: 25}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Normalize())
		})
	}
}

func TestPaginationOffset(t *testing.T) {
	assert.Equal(t, 0, PaginationOptions{Page: 1, PageSize: 20}.Offset())
	assert.Equal(t, 40, PaginationOptions{Page: 3, PageSize: 20}.Offset())
}

func TestNewPaginated(t *testing.T) {
	items := []string{"a", "b", "c"}
	p := NewPaginated(items, PaginationOptions{Page: 1, PageSize: 2}, 5)

	assert.Equal(t, items, p.Items)
	assert.Equal(t, 5, p.Page.Total)
	assert.Equal(t, 3, p.Page.Pages)
	assert.False(t, p.Empty)

	empty := NewPaginated([]string{}, PaginationOptions{Page: 1, PageSize: 20}, 0)
	assert.True(t, empty.Empty)
	assert.Equal(t, 0, empty.Page.Pages)
}
