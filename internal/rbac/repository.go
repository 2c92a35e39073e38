package rbac

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lexora-app/lexora/internal/shared"
)

// Repository persists roles, grants, assignments, memberships and
// stewardships in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const uniqueViolation = "23505"

func mapWriteErr(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return shared.ErrDuplicate
	}
	return fmt.Errorf("rbac: %s: %w", op, err)
}

// ListRoles returns all roles ordered by name.
func (r *Repository) ListRoles(ctx context.Context) ([]Role, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, description, created_by, created_at, updated_at FROM roles ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("rbac: list roles: %w", err)
	}
	defer rows.Close()

	var out []Role
	for rows.Next() {
		var role Role
		if err := rows.Scan(&role.ID, &role.Name, &role.Description, &role.CreatedBy, &role.CreatedAt, &role.UpdatedAt); err != nil {
			return nil, fmt.Errorf("rbac: scan role: %w", err)
		}
		out = append(out, role)
	}
	return out, rows.Err()
}

// GetRole fetches a role by id.
func (r *Repository) GetRole(ctx context.Context, id int64) (Role, error) {
	var role Role
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, description, created_by, created_at, updated_at FROM roles WHERE id = $1`, id).
		Scan(&role.ID, &role.Name, &role.Description, &role.CreatedBy, &role.CreatedAt, &role.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Role{}, shared.ErrNotFound
	}
	if err != nil {
		return Role{}, fmt.Errorf("rbac: get role: %w", err)
	}
	return role, nil
}

// CreateRole inserts a role in the kernel realm.
func (r *Repository) CreateRole(ctx context.Context, kernelRealmID int64, name, description string, createdBy int64) (Role, error) {
	var role Role
	err := r.pool.QueryRow(ctx,
		`INSERT INTO roles (realm_id, name, description, created_by)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, name, description, created_by, created_at, updated_at`,
		kernelRealmID, name, description, createdBy).
		Scan(&role.ID, &role.Name, &role.Description, &role.CreatedBy, &role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		return Role{}, mapWriteErr("create role", err)
	}
	return role, nil
}

// DeleteRole removes a role; grants and assignments cascade.
func (r *Repository) DeleteRole(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM roles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("rbac: delete role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// ListGrants returns the grant rows of a role.
func (r *Repository) ListGrants(ctx context.Context, roleID int64) ([]GrantRow, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, role_id, entity, action, filter_name, filter_int_value, filter_text_value, scope, created_at
		 FROM role_grants WHERE role_id = $1 ORDER BY id`, roleID)
	if err != nil {
		return nil, fmt.Errorf("rbac: list grants: %w", err)
	}
	defer rows.Close()

	var out []GrantRow
	for rows.Next() {
		var g GrantRow
		if err := rows.Scan(&g.ID, &g.RoleID, &g.Entity, &g.Action, &g.FilterName, &g.FilterIntValue, &g.FilterTextValue, &g.Scope, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("rbac: scan grant: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// AddGrant attaches a grant row to a role.
func (r *Repository) AddGrant(ctx context.Context, g GrantRow) (GrantRow, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO role_grants (role_id, entity, action, filter_name, filter_int_value, filter_text_value, scope)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at`,
		g.RoleID, g.Entity, g.Action, g.FilterName, g.FilterIntValue, g.FilterTextValue, g.Scope).
		Scan(&g.ID, &g.CreatedAt)
	if err != nil {
		return GrantRow{}, mapWriteErr("add grant", err)
	}
	return g, nil
}

// RemoveGrant deletes one grant row.
func (r *Repository) RemoveGrant(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM role_grants WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("rbac: remove grant: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Assign activates a role for a user in a realm.
func (r *Repository) Assign(ctx context.Context, a Assignment) (Assignment, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO role_assignments (user_id, role_id, realm_id)
		 VALUES ($1, $2, $3)
		 RETURNING created_at`,
		a.UserID, a.RoleID, a.RealmID).Scan(&a.CreatedAt)
	if err != nil {
		return Assignment{}, mapWriteErr("assign role", err)
	}
	return a, nil
}

// Unassign removes a role assignment.
func (r *Repository) Unassign(ctx context.Context, userID, roleID, realmID int64) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM role_assignments WHERE user_id = $1 AND role_id = $2 AND realm_id = $3`,
		userID, roleID, realmID)
	if err != nil {
		return fmt.Errorf("rbac: unassign role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// AddMembership enrolls a user in a realm.
func (r *Repository) AddMembership(ctx context.Context, m Membership) (Membership, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO realm_members (user_id, realm_id, is_root)
		 VALUES ($1, $2, $3)
		 RETURNING created_at`,
		m.UserID, m.RealmID, m.IsRoot).Scan(&m.CreatedAt)
	if err != nil {
		return Membership{}, mapWriteErr("add membership", err)
	}
	return m, nil
}

// RemoveMembership withdraws a user from a realm.
func (r *Repository) RemoveMembership(ctx context.Context, userID, realmID int64) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM realm_members WHERE user_id = $1 AND realm_id = $2`, userID, realmID)
	if err != nil {
		return fmt.Errorf("rbac: remove membership: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// AddStewardship delegates a realm to a kernel operator.
func (r *Repository) AddStewardship(ctx context.Context, s Stewardship) (Stewardship, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO stewardships (user_id, realm_id)
		 VALUES ($1, $2)
		 RETURNING created_at`,
		s.UserID, s.RealmID).Scan(&s.CreatedAt)
	if err != nil {
		return Stewardship{}, mapWriteErr("add stewardship", err)
	}
	return s, nil
}

// UserInKernel reports whether a user belongs to the kernel realm.
func (r *Repository) UserInKernel(ctx context.Context, userID int64) (bool, error) {
	var inKernel bool
	err := r.pool.QueryRow(ctx, `SELECT in_kernel FROM users WHERE id = $1`, userID).Scan(&inKernel)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, shared.ErrNotFound
	}
	if err != nil {
		return false, fmt.Errorf("rbac: user in kernel: %w", err)
	}
	return inKernel, nil
}

// RemoveStewardship revokes a delegation.
func (r *Repository) RemoveStewardship(ctx context.Context, userID, realmID int64) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM stewardships WHERE user_id = $1 AND realm_id = $2`, userID, realmID)
	if err != nil {
		return fmt.Errorf("rbac: remove stewardship: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
