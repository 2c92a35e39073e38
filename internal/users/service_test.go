package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lexora-app/lexora/internal/authz"
	"github.com/lexora-app/lexora/internal/shared"
)

type memoryRepo struct {
	users     map[int64]User
	listCalls int
}

func (r *memoryRepo) List(context.Context, authz.PermitFilter, shared.Pagination) ([]User, error) {
	r.listCalls++
	var out []User
	for _, u := range r.users {
		out = append(out, u)
	}
	return out, nil
}

func (r *memoryRepo) Get(_ context.Context, id int64) (User, error) {
	u, ok := r.users[id]
	if !ok {
		return User{}, shared.ErrNotFound
	}
	return u, nil
}

func (r *memoryRepo) UpdateName(_ context.Context, id int64, name string) (User, error) {
	u, ok := r.users[id]
	if !ok {
		return User{}, shared.ErrNotFound
	}
	u.Name = name
	r.users[id] = u
	return u, nil
}

// selfOnlyAuthorizer allows access to the caller's own row only.
type selfOnlyAuthorizer struct{}

func (selfOnlyAuthorizer) PermitFilter(_ context.Context, id authz.Identity, ent authz.Entity, _ authz.Action) (authz.PermitFilter, error) {
	return authz.Query(authz.Predicate{SQL: ent.IDColumn + " = ?", Args: []any{id.ID}}), nil
}

func (selfOnlyAuthorizer) Permitted(_ context.Context, id authz.Identity, _ authz.Entity, rec authz.Record, _ authz.Action) (bool, error) {
	return rec.ID == id.ID, nil
}

func TestServiceGetHidesForeignUsers(t *testing.T) {
	repo := &memoryRepo{users: map[int64]User{
		5: {ID: 5, RealmID: 42, Name: "Mara"},
		9: {ID: 9, RealmID: 77, Name: "Iris"},
	}}
	svc := NewService(repo, selfOnlyAuthorizer{})

	u, err := svc.Get(context.Background(), authz.Identity{ID: 5, RealmID: 42}, 5)
	require.NoError(t, err)
	require.Equal(t, "Mara", u.Name)

	_, err = svc.Get(context.Background(), authz.Identity{ID: 5, RealmID: 42}, 9)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestServiceRenameRequiresEditPermission(t *testing.T) {
	repo := &memoryRepo{users: map[int64]User{
		5: {ID: 5, RealmID: 42, Name: "Mara"},
		9: {ID: 9, RealmID: 42, Name: "Iris"},
	}}
	svc := NewService(repo, selfOnlyAuthorizer{})

	u, err := svc.Rename(context.Background(), authz.Identity{ID: 5, RealmID: 42}, 5, "Marta")
	require.NoError(t, err)
	require.Equal(t, "Marta", u.Name)

	_, err = svc.Rename(context.Background(), authz.Identity{ID: 5, RealmID: 42}, 9, "X")
	require.ErrorIs(t, err, shared.ErrForbidden)
}
