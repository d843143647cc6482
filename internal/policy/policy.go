// Package policy decides whether an actor may act on a resource.
package policy

import (
	"github.com/anonto42/nano-social/backend/internal/apperr"
	"github.com/anonto42/nano-social/backend/internal/models"
)

// Resource is anything with an owning account.
type Resource interface {
	OwnerID() uint
}

// Rule grants access when it returns true. res may be nil for rules that ignore it.
type Rule func(actor *models.User, res Resource) bool

func Owner(actor *models.User, res Resource) bool {
	return actor != nil && res != nil && actor.ID == res.OwnerID()
}

func Admin(actor *models.User, _ Resource) bool {
	return actor.IsAdmin()
}

var (
	OwnerOrAdmin = []Rule{Owner, Admin}
	OwnerOnly    = []Rule{Owner}
	AdminOnly    = []Rule{Admin}
)

// Allows reports whether any rule grants actor access to res.
func Allows(actor *models.User, res Resource, rules ...Rule) bool {
	for _, rule := range rules {
		if rule(actor, res) {
			return true
		}
	}
	return false
}

// Check returns a permission error carrying denied unless some rule grants access.
func Check(actor *models.User, res Resource, denied string, rules ...Rule) error {
	if Allows(actor, res, rules...) {
		return nil
	}
	return apperr.Permission(denied)
}
