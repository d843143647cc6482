package policy

import (
	"testing"

	"github.com/anonto42/nano-social/backend/internal/apperr"
	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestCheck(t *testing.T) {
	owner := &models.User{ID: 1, Role: models.RoleUser}
	other := &models.User{ID: 2, Role: models.RoleUser}
	admin := &models.User{ID: 3, Role: models.RoleAdmin}
	post := &models.Post{ID: 10, AuthorID: owner.ID}
	comment := &models.Comment{ID: 20, AuthorID: owner.ID}

	tests := []struct {
		name    string
		actor   *models.User
		res     Resource
		rules   []Rule
		allowed bool
	}{
		{"owner edits own post", owner, post, OwnerOrAdmin, true},
		{"admin edits any post", admin, post, OwnerOrAdmin, true},
		{"stranger cannot edit post", other, post, OwnerOrAdmin, false},
		{"owner deletes own comment", owner, comment, OwnerOnly, true},
		{"admin cannot delete comment", admin, comment, OwnerOnly, false},
		{"admin only", admin, nil, AdminOnly, true},
		{"user is not admin", owner, nil, AdminOnly, false},
		{"nil actor", nil, post, OwnerOrAdmin, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Check(tt.actor, tt.res, "denied", tt.rules...)
			if tt.allowed {
				assert.NoError(t, err)
				return
			}
			assert.True(t, apperr.Is(err, apperr.KindPermission))
		})
	}
}
