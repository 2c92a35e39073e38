package rbac

import (
	"time"

	"github.com/lexora-app/lexora/internal/authz"
)

// Role is a named bundle of grants. Role definitions are administered from
// the kernel realm.
type Role struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedBy   int64     `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// GrantRow is one permission row attached to a role. Exactly one of
// FilterIntValue and FilterTextValue must be set.
type GrantRow struct {
	ID              int64     `json:"id"`
	RoleID          int64     `json:"role_id"`
	Entity          string    `json:"entity"`
	Action          string    `json:"action"`
	FilterName      string    `json:"filter_name"`
	FilterIntValue  *int64    `json:"filter_int_value,omitempty"`
	FilterTextValue *string   `json:"filter_text_value,omitempty"`
	Scope           *string   `json:"scope,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// wellFormed mirrors the engine's grant validity rule.
func (g GrantRow) wellFormed() bool {
	return (g.FilterIntValue != nil) != (g.FilterTextValue != nil)
}

// Assignment activates a role for a user within one realm.
type Assignment struct {
	UserID    int64     `json:"user_id"`
	RoleID    int64     `json:"role_id"`
	RealmID   int64     `json:"realm_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Membership records a user's standing inside a realm. Root members hold
// full control over the realm's records.
type Membership struct {
	UserID    int64     `json:"user_id"`
	RealmID   int64     `json:"realm_id"`
	IsRoot    bool      `json:"is_root"`
	CreatedAt time.Time `json:"created_at"`
}

// Stewardship delegates care of a realm to a kernel operator.
type Stewardship struct {
	UserID    int64     `json:"user_id"`
	RealmID   int64     `json:"realm_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Descriptor declares role administration to the access engine. Role rows
// live only in the kernel realm.
func Descriptor() authz.Entity {
	return authz.Entity{
		Name:        "roles",
		Table:       "roles",
		IDColumn:    "id",
		RealmColumn: "realm_id",
		OwnerColumn: "created_by",
		KernelOnly:  true,
	}
}
