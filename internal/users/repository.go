package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lexora-app/lexora/internal/authz"
	"github.com/lexora-app/lexora/internal/shared"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const userColumns = `id, realm_id, email, name, COALESCE(email_domain, ''), in_kernel, is_active, created_at, updated_at`

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.RealmID, &u.Email, &u.Name, &u.EmailDomain, &u.InKernel, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// List returns the directory entries visible under the supplied filter.
func (r *Repository) List(ctx context.Context, filter authz.PermitFilter, p shared.Pagination) ([]User, error) {
	baseSQL := `SELECT ` + userColumns + ` FROM users WHERE is_active`
	sql, args := filter.AppendTo(baseSQL, nil)
	sql += fmt.Sprintf(" ORDER BY name, id LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, p.PerPage, p.Offset())

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("users: list: %w", err)
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("users: scan: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// Get loads one user by id.
func (r *Repository) Get(ctx context.Context, id int64) (User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	u, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, shared.ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("users: get: %w", err)
	}
	return u, nil
}

// UpdateName rewrites the display name.
func (r *Repository) UpdateName(ctx context.Context, id int64, name string) (User, error) {
	row := r.pool.QueryRow(ctx, `UPDATE users SET name = $2, updated_at = now() WHERE id = $1 RETURNING `+userColumns, id, name)
	u, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, shared.ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("users: update name: %w", err)
	}
	return u, nil
}
