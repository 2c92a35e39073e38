package rbac

import (
	"context"
	"fmt"
	"strings"

	"github.com/lexora-app/lexora/internal/authz"
	"github.com/lexora-app/lexora/internal/shared"
)

// RepositoryPort defines data access methods for role administration.
type RepositoryPort interface {
	ListRoles(ctx context.Context) ([]Role, error)
	GetRole(ctx context.Context, id int64) (Role, error)
	CreateRole(ctx context.Context, kernelRealmID int64, name, description string, createdBy int64) (Role, error)
	DeleteRole(ctx context.Context, id int64) error
	ListGrants(ctx context.Context, roleID int64) ([]GrantRow, error)
	AddGrant(ctx context.Context, g GrantRow) (GrantRow, error)
	RemoveGrant(ctx context.Context, id int64) error
	Assign(ctx context.Context, a Assignment) (Assignment, error)
	Unassign(ctx context.Context, userID, roleID, realmID int64) error
	AddMembership(ctx context.Context, m Membership) (Membership, error)
	RemoveMembership(ctx context.Context, userID, realmID int64) error
	AddStewardship(ctx context.Context, s Stewardship) (Stewardship, error)
	RemoveStewardship(ctx context.Context, userID, realmID int64) error
	UserInKernel(ctx context.Context, userID int64) (bool, error)
}

// Authorizer is the slice of the access engine the admin surface consumes.
type Authorizer interface {
	PermitFilter(ctx context.Context, id authz.Identity, ent authz.Entity, action authz.Action) (authz.PermitFilter, error)
	Permitted(ctx context.Context, id authz.Identity, ent authz.Entity, rec authz.Record, action authz.Action) (bool, error)
}

// Service orchestrates role administration. Every operation is guarded by
// the engine itself: roles are a kernel-only entity, so only kernel-realm
// roots and explicit grant holders get through.
type Service struct {
	repo          RepositoryPort
	authz         Authorizer
	kernelRealmID int64
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, az Authorizer, kernelRealmID int64) *Service {
	return &Service{repo: repo, authz: az, kernelRealmID: kernelRealmID}
}

func (s *Service) guard(ctx context.Context, id authz.Identity, action authz.Action) error {
	filter, err := s.authz.PermitFilter(ctx, id, Descriptor(), action)
	if err != nil {
		return fmt.Errorf("rbac: guard: %w", err)
	}
	// Administration is all-or-nothing; partial record visibility does not
	// confer the right to change grant state.
	if !filter.IsAllowed() {
		return shared.ErrForbidden
	}
	return nil
}

// ListRoles returns all roles.
func (s *Service) ListRoles(ctx context.Context, id authz.Identity) ([]Role, error) {
	if err := s.guard(ctx, id, authz.ActionView); err != nil {
		return nil, err
	}
	return s.repo.ListRoles(ctx)
}

// GetRole fetches one role together with its grant rows.
func (s *Service) GetRole(ctx context.Context, id authz.Identity, roleID int64) (Role, []GrantRow, error) {
	role, err := s.repo.GetRole(ctx, roleID)
	if err != nil {
		return Role{}, nil, err
	}
	ok, err := s.authz.Permitted(ctx, id, Descriptor(), authz.Record{ID: role.ID, RealmID: s.kernelRealmID, OwnerID: role.CreatedBy}, authz.ActionView)
	if err != nil {
		return Role{}, nil, err
	}
	if !ok {
		return Role{}, nil, shared.ErrNotFound
	}
	grants, err := s.repo.ListGrants(ctx, roleID)
	if err != nil {
		return Role{}, nil, err
	}
	return role, grants, nil
}

// CreateRole inserts a role in the kernel realm.
func (s *Service) CreateRole(ctx context.Context, id authz.Identity, name, description string) (Role, error) {
	if err := s.guard(ctx, id, authz.ActionEdit); err != nil {
		return Role{}, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return Role{}, fmt.Errorf("rbac: role name required: %w", shared.ErrValidation)
	}
	return s.repo.CreateRole(ctx, s.kernelRealmID, name, strings.TrimSpace(description), id.ID)
}

// DeleteRole removes a role and everything hanging off it.
func (s *Service) DeleteRole(ctx context.Context, id authz.Identity, roleID int64) error {
	if err := s.guard(ctx, id, authz.ActionDelete); err != nil {
		return err
	}
	return s.repo.DeleteRole(ctx, roleID)
}

var validActions = map[string]struct{}{
	string(authz.ActionView):   {},
	string(authz.ActionCreate): {},
	string(authz.ActionEdit):   {},
	string(authz.ActionDelete): {},
}

// AddGrant validates and attaches a grant row to a role. Malformed rows are
// rejected here so the engine never has to skip them at decision time.
func (s *Service) AddGrant(ctx context.Context, id authz.Identity, g GrantRow) (GrantRow, error) {
	if err := s.guard(ctx, id, authz.ActionEdit); err != nil {
		return GrantRow{}, err
	}
	if _, ok := validActions[g.Action]; !ok {
		return GrantRow{}, fmt.Errorf("rbac: unknown action %q: %w", g.Action, shared.ErrValidation)
	}
	if !g.wellFormed() {
		return GrantRow{}, fmt.Errorf("rbac: exactly one of filter_int_value and filter_text_value must be set: %w", shared.ErrValidation)
	}
	if g.Scope != nil {
		switch authz.Scope(*g.Scope) {
		case authz.ScopeAll, authz.ScopeOwned:
		default:
			return GrantRow{}, fmt.Errorf("rbac: unknown scope %q: %w", *g.Scope, shared.ErrValidation)
		}
	}
	if strings.TrimSpace(g.Entity) == "" || strings.TrimSpace(g.FilterName) == "" {
		return GrantRow{}, fmt.Errorf("rbac: entity and filter_name required: %w", shared.ErrValidation)
	}
	return s.repo.AddGrant(ctx, g)
}

// RemoveGrant deletes one grant row.
func (s *Service) RemoveGrant(ctx context.Context, id authz.Identity, grantID int64) error {
	if err := s.guard(ctx, id, authz.ActionEdit); err != nil {
		return err
	}
	return s.repo.RemoveGrant(ctx, grantID)
}

// Assign activates a role for a user in a realm.
func (s *Service) Assign(ctx context.Context, id authz.Identity, a Assignment) (Assignment, error) {
	if err := s.guard(ctx, id, authz.ActionEdit); err != nil {
		return Assignment{}, err
	}
	return s.repo.Assign(ctx, a)
}

// Unassign removes a role assignment.
func (s *Service) Unassign(ctx context.Context, id authz.Identity, userID, roleID, realmID int64) error {
	if err := s.guard(ctx, id, authz.ActionEdit); err != nil {
		return err
	}
	return s.repo.Unassign(ctx, userID, roleID, realmID)
}

// AddMembership enrolls a user in a realm, optionally as root.
func (s *Service) AddMembership(ctx context.Context, id authz.Identity, m Membership) (Membership, error) {
	if err := s.guard(ctx, id, authz.ActionEdit); err != nil {
		return Membership{}, err
	}
	return s.repo.AddMembership(ctx, m)
}

// RemoveMembership withdraws a user from a realm.
func (s *Service) RemoveMembership(ctx context.Context, id authz.Identity, userID, realmID int64) error {
	if err := s.guard(ctx, id, authz.ActionEdit); err != nil {
		return err
	}
	return s.repo.RemoveMembership(ctx, userID, realmID)
}

// AddStewardship delegates a realm to a kernel-realm operator. Stewardships
// only ever influence decisions for kernel members, so granting one to an
// outside user is rejected outright.
func (s *Service) AddStewardship(ctx context.Context, id authz.Identity, st Stewardship) (Stewardship, error) {
	if err := s.guard(ctx, id, authz.ActionEdit); err != nil {
		return Stewardship{}, err
	}
	inKernel, err := s.repo.UserInKernel(ctx, st.UserID)
	if err != nil {
		return Stewardship{}, err
	}
	if !inKernel {
		return Stewardship{}, fmt.Errorf("rbac: stewards must belong to the kernel realm: %w", shared.ErrValidation)
	}
	return s.repo.AddStewardship(ctx, st)
}

// RemoveStewardship revokes a delegation.
func (s *Service) RemoveStewardship(ctx context.Context, id authz.Identity, userID, realmID int64) error {
	if err := s.guard(ctx, id, authz.ActionEdit); err != nil {
		return err
	}
	return s.repo.RemoveStewardship(ctx, userID, realmID)
}
