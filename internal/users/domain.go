package users

import (
	"time"

	"github.com/lexora-app/lexora/internal/authz"
)

// User is a directory entry. Visibility between users follows realm
// co-membership and verified email domains, both resolved by the access
// engine.
type User struct {
	ID          int64     `json:"id"`
	RealmID     int64     `json:"realm_id"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	EmailDomain string    `json:"email_domain,omitempty"`
	InKernel    bool      `json:"in_kernel,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Descriptor declares the users directory to the access engine. A user row
// owns itself.
func Descriptor() authz.Entity {
	return authz.Entity{
		Name:        authz.UserEntityName,
		Table:       "users",
		IDColumn:    "id",
		RealmColumn: "realm_id",
		OwnerColumn: "id",
	}
}

func (u User) record() authz.Record {
	return authz.Record{ID: u.ID, RealmID: u.RealmID, OwnerID: u.ID}
}
