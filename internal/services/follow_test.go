package services_test

import (
	"testing"

	"github.com/anonto42/nano-social/backend/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollowUnfollowRoundTrip(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")

	res, err := f.svc.Follows.Follow(f.ctx, alice, bob.ID)
	require.NoError(t, err)
	assert.True(t, res.Applied)
	assert.Equal(t, "Now following bob", res.Message)
	assert.EqualValues(t, 1, f.reload(t, alice.ID).FollowingCount)
	assert.EqualValues(t, 1, f.reload(t, bob.ID).FollowersCount)
	assert.EqualValues(t, 1, f.unread(t, bob))
	assert.Equal(t, 1, f.mirror.count())

	res, err = f.svc.Follows.Follow(f.ctx, alice, bob.ID)
	require.NoError(t, err)
	assert.False(t, res.Applied)
	assert.Equal(t, "Already following bob", res.Message)
	assert.EqualValues(t, 1, f.reload(t, bob.ID).FollowersCount)
	assert.EqualValues(t, 1, f.unread(t, bob))

	res, err = f.svc.Follows.Unfollow(f.ctx, alice, bob.ID)
	require.NoError(t, err)
	assert.True(t, res.Applied)
	assert.EqualValues(t, 0, f.reload(t, alice.ID).FollowingCount)
	assert.EqualValues(t, 0, f.reload(t, bob.ID).FollowersCount)

	res, err = f.svc.Follows.Unfollow(f.ctx, alice, bob.ID)
	require.NoError(t, err)
	assert.False(t, res.Applied)
	assert.Equal(t, "Not following bob", res.Message)
}

func TestFollowSelfIsRejected(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")

	_, err := f.svc.Follows.Follow(f.ctx, alice, alice.ID)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindSelfAction))

	following, err := f.repos.Follows.IsFollowing(f.ctx, alice.ID, alice.ID)
	require.NoError(t, err)
	assert.False(t, following)
	got := f.reload(t, alice.ID)
	assert.EqualValues(t, 0, got.FollowersCount)
	assert.EqualValues(t, 0, got.FollowingCount)
	assert.EqualValues(t, 0, f.unread(t, alice))
	assert.Equal(t, 0, f.mirror.count())
}

func TestFollowInactiveTargetIsNotFound(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	require.NoError(t, f.repos.Users.SetActive(f.ctx, bob.ID, false))

	_, err := f.svc.Follows.Follow(f.ctx, alice, bob.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	_, err = f.svc.Follows.Follow(f.ctx, alice, 4242)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestFollowersAndFollowingLists(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	carol := f.user(t, "carol")

	_, err := f.svc.Follows.Follow(f.ctx, alice, carol.ID)
	require.NoError(t, err)
	_, err = f.svc.Follows.Follow(f.ctx, bob, carol.ID)
	require.NoError(t, err)

	followers, err := f.svc.Follows.Followers(f.ctx, carol.ID, firstPage())
	require.NoError(t, err)
	assert.EqualValues(t, 2, followers.Meta.TotalItems)
	require.Len(t, followers.Items, 2)
	assert.Equal(t, "alice", followers.Items[0].Username)

	following, err := f.svc.Follows.Following(f.ctx, alice.ID, firstPage())
	require.NoError(t, err)
	require.Len(t, following.Items, 1)
	assert.Equal(t, "carol", following.Items[0].Username)

	ok, err := f.svc.Follows.IsFollowing(f.ctx, bob, carol.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = f.svc.Follows.IsFollowing(f.ctx, carol, bob.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}
