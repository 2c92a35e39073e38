package authz

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store reads the permission tables. The engine only ever reads; grant
// lifecycle belongs to the realm-administration flows.
type Store interface {
	// Identity loads the acting-user fields the engine needs.
	Identity(ctx context.Context, userID int64) (Identity, error)
	// GrantsFor returns the grant rows reachable through the user's role
	// assignments for one entity/action pair, malformed rows included (the
	// engine skips those itself so the skip can be logged in one place).
	GrantsFor(ctx context.Context, userID int64, entity string, action Action) ([]Grant, error)
	// StewardedRealmIDs returns the realms of the given kind delegated to the
	// user.
	StewardedRealmIDs(ctx context.Context, userID int64, kind RealmKind) ([]int64, error)
	// RootRealmIDs returns the realms of the given kind the user is a root
	// member of.
	RootRealmIDs(ctx context.Context, userID int64, kind RealmKind) ([]int64, error)
	// RealmKindOf resolves a realm's kind.
	RealmKindOf(ctx context.Context, realmID int64) (RealmKind, error)
	// DomainPeerIDs returns ids of users sharing the user's verified email
	// domain. Empty when the user's own domain is unverified.
	DomainPeerIDs(ctx context.Context, userID int64) ([]int64, error)
	// CoRealmUserIDs returns ids of users occupying any realm the user
	// occupies (home realm or realm membership).
	CoRealmUserIDs(ctx context.Context, userID int64) ([]int64, error)
}

// PGStore implements Store over PostgreSQL.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore constructs a PostgreSQL-backed store.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

// Identity loads the authorization-relevant user columns.
func (s *PGStore) Identity(ctx context.Context, userID int64) (Identity, error) {
	const q = `SELECT id, realm_id, is_root, in_kernel FROM users WHERE id = $1`
	var id Identity
	err := s.pool.QueryRow(ctx, q, userID).Scan(&id.ID, &id.RealmID, &id.IsRoot, &id.InKernel)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Identity{}, ErrRecordNotFound
		}
		return Identity{}, fmt.Errorf("authz: load identity: %w", err)
	}
	return id, nil
}

// GrantsFor enumerates grant rows through the user's role assignments.
func (s *PGStore) GrantsFor(ctx context.Context, userID int64, entity string, action Action) ([]Grant, error) {
	const q = `
		SELECT g.role_id, g.entity, g.action, g.scope, g.filter_name, g.filter_int_value, g.filter_text_value
		FROM role_grants g
		JOIN role_assignments ra ON ra.role_id = g.role_id
		WHERE ra.user_id = $1 AND g.entity = $2 AND g.action = $3`
	rows, err := s.pool.Query(ctx, q, userID, entity, string(action))
	if err != nil {
		return nil, fmt.Errorf("authz: list grants: %w", err)
	}
	defer rows.Close()
	var grants []Grant
	for rows.Next() {
		var g Grant
		if err := rows.Scan(&g.RoleID, &g.Entity, &g.Action, &g.Scope, &g.FilterName, &g.FilterInt, &g.FilterText); err != nil {
			return nil, fmt.Errorf("authz: scan grant: %w", err)
		}
		grants = append(grants, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("authz: list grants: %w", err)
	}
	return grants, nil
}

// StewardedRealmIDs lists realms of one kind delegated to the user.
func (s *PGStore) StewardedRealmIDs(ctx context.Context, userID int64, kind RealmKind) ([]int64, error) {
	const q = `
		SELECT st.realm_id
		FROM stewardships st
		JOIN realms r ON r.id = st.realm_id
		WHERE st.user_id = $1 AND r.kind = $2
		ORDER BY st.realm_id`
	return s.listIDs(ctx, "stewarded realms", q, userID, string(kind))
}

// RootRealmIDs lists realms of one kind the user roots.
func (s *PGStore) RootRealmIDs(ctx context.Context, userID int64, kind RealmKind) ([]int64, error) {
	const q = `
		SELECT rm.realm_id
		FROM realm_members rm
		JOIN realms r ON r.id = rm.realm_id
		WHERE rm.user_id = $1 AND rm.is_root AND r.kind = $2
		ORDER BY rm.realm_id`
	return s.listIDs(ctx, "root realms", q, userID, string(kind))
}

// RealmKindOf resolves the kind of a realm.
func (s *PGStore) RealmKindOf(ctx context.Context, realmID int64) (RealmKind, error) {
	const q = `SELECT kind FROM realms WHERE id = $1`
	var kind string
	if err := s.pool.QueryRow(ctx, q, realmID).Scan(&kind); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrRecordNotFound
		}
		return "", fmt.Errorf("authz: realm kind: %w", err)
	}
	return RealmKind(kind), nil
}

// DomainPeerIDs lists users sharing the caller's verified email domain.
func (s *PGStore) DomainPeerIDs(ctx context.Context, userID int64) ([]int64, error) {
	const q = `
		SELECT u.id
		FROM users u
		JOIN users me ON me.id = $1
		WHERE u.id <> me.id
		  AND me.email_domain_verified AND u.email_domain_verified
		  AND u.email_domain = me.email_domain
		ORDER BY u.id`
	return s.listIDs(ctx, "domain peers", q, userID)
}

// CoRealmUserIDs lists users occupying any realm the caller occupies.
func (s *PGStore) CoRealmUserIDs(ctx context.Context, userID int64) ([]int64, error) {
	const q = `
		WITH my_realms AS (
			SELECT realm_id FROM realm_members WHERE user_id = $1
			UNION
			SELECT realm_id FROM users WHERE id = $1
		)
		SELECT DISTINCT u.id
		FROM users u
		WHERE u.id <> $1
		  AND (u.realm_id IN (SELECT realm_id FROM my_realms)
		       OR u.id IN (SELECT user_id FROM realm_members WHERE realm_id IN (SELECT realm_id FROM my_realms)))
		ORDER BY u.id`
	return s.listIDs(ctx, "co-realm users", q, userID)
}

func (s *PGStore) listIDs(ctx context.Context, op, query string, args ...any) ([]int64, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("authz: %s: %w", op, err)
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("authz: %s: %w", op, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("authz: %s: %w", op, err)
	}
	return ids, nil
}

var _ Store = (*PGStore)(nil)
