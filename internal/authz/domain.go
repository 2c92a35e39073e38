package authz

import "errors"

// Sentinel errors surfaced by the engine.
var (
	// ErrRecordNotFound indicates a record or dependent parent could not be loaded.
	ErrRecordNotFound = errors.New("authz: record not found")
)

// RealmKind classifies a tenant realm.
type RealmKind string

// Realm kinds. The kernel realm represents the operating company itself and
// is never a customer tenant.
const (
	RealmKernel RealmKind = "kernel"
	RealmOrg    RealmKind = "org"
	RealmUser   RealmKind = "user"
)

// Scope is the breadth of a grant.
type Scope string

const (
	// ScopeAll covers every record matched by the grant's filter.
	ScopeAll Scope = "*"
	// ScopeOwned restricts the grant to records owned by the acting user.
	ScopeOwned Scope = "owned"
)

// Action names the operation being authorized.
type Action string

const (
	ActionView   Action = "view"
	ActionCreate Action = "create"
	ActionEdit   Action = "edit"
	ActionDelete Action = "delete"
)

// Well-known grant filter names. Entity-specific record and relation filters
// are derived from the entity descriptor.
const (
	FilterRealmID   = "realm.id"
	FilterRealmKind = "realm.kind"
)

// ControlledByKernel marks a record administratively controlled by the
// operating company. FlowDeveloping is the lifecycle stage during which such
// records stay invisible to outside tenants.
const (
	ControlledByKernel = "realm.kernel"
	FlowDeveloping     = "developing"
)

// Identity is the already-authenticated acting user. It is produced by the
// session layer; the engine never authenticates anyone itself.
type Identity struct {
	ID       int64
	RealmID  int64
	IsRoot   bool
	InKernel bool
}

// Realm is a tenant/organization unit owning protected records.
type Realm struct {
	ID   int64
	Kind RealmKind
}

// Role is a realm-scoped bundle of grants.
type Role struct {
	ID      int64
	RealmID int64
	Name    string
}

// Grant is the atomic capability row: the permission for one entity/action
// pair, narrowed by a filter. Exactly one of FilterInt/FilterText must be
// set, matching the semantic type of FilterName.
type Grant struct {
	RoleID     int64
	Entity     string
	Action     Action
	Scope      Scope
	FilterName string
	FilterInt  *int64
	FilterText *string
}

// wellFormed reports whether the grant carries exactly one filter value.
// Malformed rows are skipped during evaluation; they never expand access.
func (g Grant) wellFormed() bool {
	return (g.FilterInt != nil) != (g.FilterText != nil)
}

func (g Grant) intValue() int64 {
	if g.FilterInt == nil {
		return 0
	}
	return *g.FilterInt
}

func (g Grant) textValue() string {
	if g.FilterText == nil {
		return ""
	}
	return *g.FilterText
}

// RoleAssignment ties a user to a role.
type RoleAssignment struct {
	UserID int64
	RoleID int64
}

// RealmMembership marks a user as member (optionally root) of a realm. A
// realm root has full control over the realm's records regardless of role
// grants.
type RealmMembership struct {
	RealmID int64
	UserID  int64
	IsRoot  bool
}

// Stewardship delegates authority over a tenant realm to an in-kernel
// operator. It is inert unless the acting user is in-kernel.
type Stewardship struct {
	RealmID int64
	UserID  int64
}

// ScopeSet is the set of scopes a user holds for one entity/action pair.
type ScopeSet map[Scope]struct{}

// Add inserts a scope.
func (s ScopeSet) Add(scope Scope) { s[scope] = struct{}{} }

// Has reports membership.
func (s ScopeSet) Has(scope Scope) bool {
	_, ok := s[scope]
	return ok
}

// Empty reports whether no scope is held.
func (s ScopeSet) Empty() bool { return len(s) == 0 }
