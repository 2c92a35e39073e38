package authz

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllowedScopesRoot(t *testing.T) {
	engine := newTestEngine(newFakeStore())
	root := Identity{ID: 1, IsRoot: true}

	scopes, err := engine.AllowedScopes(context.Background(), root, RealmOrg, ordersEntity(), ActionDelete)
	require.NoError(t, err)
	assert.True(t, scopes.Has(ScopeAll))
}

func TestAllowedScopesHomeRealmStanding(t *testing.T) {
	store := newFakeStore()
	seedRealms(store, 42, 43)
	engine := newTestEngine(store)
	user := Identity{ID: 5, RealmID: 42}

	// realm.id grant for the home realm counts; one for a foreign realm does
	// not give standing.
	store.addGrant(5, Grant{
		RoleID: 1, Entity: "orders", Action: ActionView,
		Scope: ScopeOwned, FilterName: FilterRealmID, FilterInt: intp(42),
	})
	store.addGrant(5, Grant{
		RoleID: 1, Entity: "orders", Action: ActionView,
		Scope: ScopeAll, FilterName: FilterRealmID, FilterInt: intp(43),
	})

	scopes, err := engine.AllowedScopes(context.Background(), user, RealmOrg, ordersEntity(), ActionView)
	require.NoError(t, err)
	assert.True(t, scopes.Has(ScopeOwned))
	assert.False(t, scopes.Has(ScopeAll))
}

func TestAllowedScopesRealmKindMatch(t *testing.T) {
	store := newFakeStore()
	seedRealms(store, 42)
	engine := newTestEngine(store)
	user := Identity{ID: 5, RealmID: 42}
	store.addGrant(5, Grant{
		RoleID: 1, Entity: "orders", Action: ActionView,
		Scope: ScopeAll, FilterName: FilterRealmKind, FilterText: strp("org"),
	})

	scopes, err := engine.AllowedScopes(context.Background(), user, RealmOrg, ordersEntity(), ActionView)
	require.NoError(t, err)
	assert.True(t, scopes.Has(ScopeAll))

	scopes, err = engine.AllowedScopes(context.Background(), user, RealmUser, ordersEntity(), ActionView)
	require.NoError(t, err)
	assert.True(t, scopes.Empty())
}

func TestAllowedScopesForSteward(t *testing.T) {
	store := newFakeStore()
	seedRealms(store, 20)
	engine := newTestEngine(store)
	op := Identity{ID: 3, RealmID: testKernelRealmID, InKernel: true}
	store.addSteward(3, 20)
	store.addGrant(3, Grant{
		RoleID: 1, Entity: "orders", Action: ActionView,
		Scope: ScopeAll, FilterName: FilterRealmID, FilterInt: intp(20),
	})

	scopes, err := engine.AllowedScopesForSteward(context.Background(), op, RealmOrg, ordersEntity(), ActionView)
	require.NoError(t, err)
	assert.True(t, scopes.Has(ScopeAll))

	// Stewardship is inert outside the kernel.
	outsider := Identity{ID: 4, RealmID: 42}
	store.addSteward(4, 20)
	store.addGrant(4, Grant{
		RoleID: 2, Entity: "orders", Action: ActionView,
		Scope: ScopeAll, FilterName: FilterRealmID, FilterInt: intp(20),
	})
	scopes, err = engine.AllowedScopesForSteward(context.Background(), outsider, RealmOrg, ordersEntity(), ActionView)
	require.NoError(t, err)
	assert.True(t, scopes.Empty())
}

func TestAllowedScopesForRealmRoot(t *testing.T) {
	store := newFakeStore()
	seedRealms(store, 42)
	engine := newTestEngine(store)
	user := Identity{ID: 5, RealmID: 42}

	scopes, err := engine.AllowedScopesForRealmRoot(context.Background(), user, RealmOrg, ordersEntity(), ActionEdit)
	require.NoError(t, err)
	assert.True(t, scopes.Empty())

	// Root membership alone yields full scope; no grant rows needed.
	store.addRealmRoot(5, 42)
	scopes, err = engine.AllowedScopesForRealmRoot(context.Background(), user, RealmOrg, ordersEntity(), ActionEdit)
	require.NoError(t, err)
	assert.True(t, scopes.Has(ScopeAll))
}
