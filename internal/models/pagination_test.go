package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPageRequestClamps(t *testing.T) {
	assert.Equal(t, PageRequest{Page: 1, PageSize: DefaultPageSize}, NewPageRequest(0, 0))
	assert.Equal(t, PageRequest{Page: 3, PageSize: MaxPageSize}, NewPageRequest(3, 1000))
	assert.Equal(t, 40, NewPageRequest(3, 20).Offset())
}

func TestPageMeta(t *testing.T) {
	meta := NewPageRequest(2, 10).Meta(25)

	assert.Equal(t, 3, meta.TotalPages)
	assert.True(t, meta.HasNextPage)
	assert.True(t, meta.HasPreviousPage)

	last := NewPageRequest(3, 10).Meta(25)
	assert.False(t, last.HasNextPage)

	empty := NewPageRequest(1, 10).Meta(0)
	assert.Equal(t, 0, empty.TotalPages)
	assert.False(t, empty.HasNextPage)
	assert.False(t, empty.HasPreviousPage)
}

func TestNewPageNeverNil(t *testing.T) {
	page := NewPage[Post](nil, NewPageRequest(1, 20), 0)
	assert.NotNil(t, page.Items)
}

func TestFullName(t *testing.T) {
	assert.Equal(t, "Ada Lovelace", (&User{FirstName: "Ada", LastName: "Lovelace"}).FullName())
	assert.Equal(t, "Ada", (&User{FirstName: "Ada"}).FullName())
	assert.Equal(t, "", (&User{}).FullName())
}
