package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaginationParams_Validate(t *testing.T) {
	tests := []struct {
		name string
		in   PaginationParams
		want PaginationParams
	}{
		{"zero values", PaginationParams{}, PaginationParams{Page: 1, PerPage: 15}},
		{"negative page", PaginationParams{Page: -3, PerPage: 20}, PaginationParams{Page: 1, PerPage: 20}},
		{"per page capped", PaginationParams{Page: 2, PerPage: 500}, PaginationParams{Page: 2, PerPage: 100}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.in
			p.Validate()
			assert.Equal(t, tt.want, p)
		})
	}
}

func TestPaginationParams_Offset(t *testing.T) {
	p := &PaginationParams{Page: 3, PerPage: 20}
	assert.Equal(t, 40, p.Offset())
	assert.Equal(t, 0, DefaultPagination().Offset())
}

func TestNewPagination(t *testing.T) {
	p := NewPagination(2, 10, 25)
	assert.Equal(t, 3, p.TotalPages)
	assert.True(t, p.HasNext)
	assert.True(t, p.HasPrev)

	last := NewPagination(3, 10, 25)
	assert.False(t, last.HasNext)

	empty := NewPagination(1, 10, 0)
	assert.Equal(t, 0, empty.TotalPages)
	assert.False(t, empty.HasNext)
	assert.False(t, empty.HasPrev)
}

func TestMap(t *testing.T) {
	in := NewPaginatedResult([]int{1, 2, 3}, NewPagination(1, 15, 3))
	out := Map(in, func(n int) string { return string(rune('a' + n - 1)) })

	assert.Equal(t, []string{"a", "b", "c"}, out.Items)
	assert.Same(t, in.Pagination, out.Pagination)

	assert.NotNil(t, NewPaginatedResult[int](nil, in.Pagination).Items)
}
