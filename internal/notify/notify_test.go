package notify_test

import (
	"context"
	"errors"
	"testing"

	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/notify"
	"github.com/anonto42/nano-social/backend/internal/repositories"
	"github.com/anonto42/nano-social/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type failingMirror struct{ calls int }

func (m *failingMirror) Forward(context.Context, *models.Notification) error {
	m.calls++
	return errors.New("mirror down")
}

func TestRecordSkipsSelf(t *testing.T) {
	ctx := context.Background()
	repos := repositories.New(testutil.NewDB(t))
	alice := &models.User{Username: "alice", Email: "alice@example.com", Role: models.RoleUser, IsActive: true}
	require.NoError(t, repos.Users.CreateUser(ctx, alice))

	n := notify.New(nil, zap.NewNop())
	got, err := n.Record(ctx, repos, notify.Event{Type: models.NotificationLike, Sender: alice, RecipientID: alice.ID})
	require.NoError(t, err)
	assert.Nil(t, got)

	count, err := repos.Notifications.GetUnreadCount(ctx, alice.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)
}

func TestRecordWritesMessage(t *testing.T) {
	ctx := context.Background()
	repos := repositories.New(testutil.NewDB(t))
	alice := &models.User{Username: "alice", Email: "alice@example.com", Role: models.RoleUser, IsActive: true}
	bob := &models.User{Username: "bob", Email: "bob@example.com", Role: models.RoleUser, IsActive: true}
	require.NoError(t, repos.Users.CreateUser(ctx, alice))
	require.NoError(t, repos.Users.CreateUser(ctx, bob))

	n := notify.New(nil, zap.NewNop())
	got, err := n.Record(ctx, repos, notify.Event{Type: models.NotificationFollow, Sender: alice, RecipientID: bob.ID})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "alice started following you", got.Message)
	assert.NotZero(t, got.ID)
}

func TestDeliverSwallowsMirrorErrors(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	m := &failingMirror{}
	n := notify.New(m, zap.New(core))

	assert.NotPanics(t, func() {
		n.Deliver(context.Background(), &models.Notification{ID: 1, RecipientID: 2}, nil)
	})
	assert.Equal(t, 1, m.calls)
	assert.Equal(t, 1, logs.FilterMessage("notification mirror failed").Len())
}

func TestMessages(t *testing.T) {
	assert.Equal(t, "bob liked your post", notify.Message(models.NotificationLike, "bob"))
	assert.Equal(t, "bob commented on your post", notify.Message(models.NotificationComment, "bob"))
}
