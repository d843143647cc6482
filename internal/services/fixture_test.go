package services_test

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/anonto42/nano-social/backend/internal/auth"
	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/notify"
	"github.com/anonto42/nano-social/backend/internal/repositories"
	"github.com/anonto42/nano-social/backend/internal/services"
	"github.com/anonto42/nano-social/backend/internal/testutil"
	"github.com/anonto42/nano-social/backend/pkg/media"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const cdnBase = "https://cdn.test/"

type fakeHost struct {
	mu        sync.Mutex
	uploadErr error
	uploads   []string
	deletes   []string
}

func (h *fakeHost) Upload(_ context.Context, folder string, img *media.Image) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.uploadErr != nil {
		return "", h.uploadErr
	}
	url := cdnBase + folder + "/" + img.Filename
	h.uploads = append(h.uploads, url)
	return url, nil
}

func (h *fakeHost) Delete(_ context.Context, url string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !strings.HasPrefix(url, cdnBase) {
		return media.ErrForeignURL
	}
	h.deletes = append(h.deletes, url)
	return nil
}

type recordingMirror struct {
	mu  sync.Mutex
	got []*models.Notification
}

func (m *recordingMirror) Forward(_ context.Context, n *models.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.got = append(m.got, n)
	return nil
}

func (m *recordingMirror) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.got)
}

type fixture struct {
	ctx    context.Context
	repos  *repositories.Repositories
	svc    *services.Services
	host   *fakeHost
	mirror *recordingMirror
	tokens *auth.TokenManager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := zap.NewNop()
	f := &fixture{
		ctx:    context.Background(),
		repos:  repositories.New(testutil.NewDB(t)),
		host:   &fakeHost{},
		mirror: &recordingMirror{},
		tokens: auth.NewTokenManager("test-secret", time.Hour, auth.NewBlacklist(nil, log)),
	}
	f.svc = services.New(services.Deps{
		Repos:    f.repos,
		Notifier: notify.New(f.mirror, log),
		Media:    f.host,
		Tokens:   f.tokens,
		Log:      log,
	})
	return f
}

func (f *fixture) user(t *testing.T, username string) *models.User {
	t.Helper()
	u := &models.User{Username: username, Email: username + "@example.com", Role: models.RoleUser, IsActive: true}
	require.NoError(t, f.repos.Users.CreateUser(f.ctx, u))
	return u
}

func (f *fixture) admin(t *testing.T, username string) *models.User {
	t.Helper()
	u := &models.User{Username: username, Email: username + "@example.com", Role: models.RoleAdmin, IsActive: true}
	require.NoError(t, f.repos.Users.CreateUser(f.ctx, u))
	return u
}

func (f *fixture) reload(t *testing.T, id uint) *models.User {
	t.Helper()
	u, err := f.repos.Users.GetUserByID(f.ctx, id)
	require.NoError(t, err)
	return u
}

func (f *fixture) post(t *testing.T, author *models.User, content string) *models.Post {
	t.Helper()
	p, err := f.svc.Posts.Create(f.ctx, author, models.CreatePostRequest{Content: content}, nil)
	require.NoError(t, err)
	return p
}

func (f *fixture) reloadPost(t *testing.T, id uint) *models.Post {
	t.Helper()
	p, err := f.repos.Posts.GetPostByID(f.ctx, id)
	require.NoError(t, err)
	return p
}

func (f *fixture) unread(t *testing.T, recipient *models.User) int64 {
	t.Helper()
	n, err := f.repos.Notifications.GetUnreadCount(f.ctx, recipient.ID)
	require.NoError(t, err)
	return n
}

func pngImage(t *testing.T, name string) *media.Image {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.Black)
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return &media.Image{Filename: name, Size: int64(buf.Len()), Data: buf.Bytes()}
}

func firstPage() models.PageRequest {
	return models.NewPageRequest(1, 20)
}
