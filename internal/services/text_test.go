package services_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/anonto42/nano-social/backend/internal/apperr"
	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostContentIsStoredAsPlainText(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")

	p := f.post(t, alice, "Tom & Jerry say 1 < 2")
	assert.Equal(t, "Tom & Jerry say 1 < 2", f.reloadPost(t, p.ID).Content)

	p = f.post(t, alice, "<b>bold</b> move <script>alert(1)</script>")
	assert.Equal(t, "bold move", f.reloadPost(t, p.ID).Content)
}

func TestPostContentStaysWithinLimitAfterCleaning(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")

	p := f.post(t, alice, strings.Repeat("&", 280))
	assert.Equal(t, 280, utf8.RuneCountInString(f.reloadPost(t, p.ID).Content))

	_, err := f.svc.Posts.Create(f.ctx, alice, models.CreatePostRequest{Content: strings.Repeat("&", 281)}, nil)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestCommentContentStaysWithinLimitAfterCleaning(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	post := f.post(t, alice, "hello")

	c, err := f.svc.Comments.Create(f.ctx, alice, post.ID, models.CreateCommentRequest{Content: strings.Repeat(`"`, 200)})
	require.NoError(t, err)

	row, err := f.repos.Comments.GetCommentByID(f.ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat(`"`, 200), row.Content)
}

func TestProfileTextIsStoredAsPlainText(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")

	bio := "<i>Cats</i> & dogs"
	_, err := f.svc.Users.UpdateMe(f.ctx, alice, models.UpdateProfileRequest{Bio: &bio}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Cats & dogs", f.reload(t, alice.ID).Bio)
}
