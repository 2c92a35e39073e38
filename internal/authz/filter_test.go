package authz

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intp(v int64) *int64 { return &v }
func strp(v string) *string { return &v }

const testKernelRealmID = int64(1)

func newTestEngine(store Store) *Engine {
	return NewEngine(EngineConfig{
		Store:         store,
		KernelRealmID: testKernelRealmID,
		Logger:        slog.New(slog.DiscardHandler),
	})
}

// ordersEntity has no overlay columns.
func ordersEntity() Entity {
	return Entity{
		Name:        "orders",
		Table:       "orders",
		IDColumn:    "id",
		RealmColumn: "realm_id",
		OwnerColumn: "owner_id",
		RealmKinds:  []RealmKind{RealmOrg, RealmUser},
	}
}

// decksEntity carries the kernel-control overlay columns and a relation
// filter.
func decksEntity() Entity {
	return Entity{
		Name:               "decks",
		Table:              "decks",
		IDColumn:           "id",
		RealmColumn:        "realm_id",
		OwnerColumn:        "owner_id",
		ControlledByColumn: "controlled_by",
		FlowStatusColumn:   "flow_status",
		RealmKinds:         []RealmKind{RealmKernel, RealmOrg, RealmUser},
		Relations:          map[string]string{"course.id": "course_id"},
	}
}

func usersEntity() Entity {
	return Entity{
		Name:        UserEntityName,
		Table:       "users",
		IDColumn:    "id",
		RealmColumn: "realm_id",
		OwnerColumn: "id",
		RealmKinds:  []RealmKind{RealmKernel, RealmOrg, RealmUser},
	}
}

// seedRealms registers the kernel realm plus the given org realms.
func seedRealms(store *fakeStore, orgRealms ...int64) {
	store.realms[testKernelRealmID] = RealmKernel
	for _, id := range orgRealms {
		store.realms[id] = RealmOrg
	}
}

func TestPermitFilterRootBypass(t *testing.T) {
	store := newFakeStore()
	engine := newTestEngine(store)
	root := Identity{ID: 9, RealmID: testKernelRealmID, IsRoot: true}

	for _, ent := range []Entity{ordersEntity(), decksEntity(), usersEntity()} {
		for _, action := range []Action{ActionView, ActionEdit, ActionDelete, ActionCreate} {
			f, err := engine.PermitFilter(context.Background(), root, ent, action)
			require.NoError(t, err)
			assert.True(t, f.IsAllowed(), "%s/%s", ent.Name, action)
		}
	}
}

func TestPermitFilterDenyByDefault(t *testing.T) {
	store := newFakeStore()
	seedRealms(store, 42)
	engine := newTestEngine(store)
	user := Identity{ID: 5, RealmID: 42}

	f, err := engine.PermitFilter(context.Background(), user, ordersEntity(), ActionView)
	require.NoError(t, err)
	assert.True(t, f.IsDenied())

	f, err = engine.PermitFilter(context.Background(), user, decksEntity(), ActionDelete)
	require.NoError(t, err)
	assert.True(t, f.IsDenied())

	// Self-access keeps the user directory reachable even with zero grants.
	f, err = engine.PermitFilter(context.Background(), user, usersEntity(), ActionView)
	require.NoError(t, err)
	require.False(t, f.IsDenied())
	require.Len(t, f.Predicates(), 1)
	assert.Equal(t, []any{int64(5)}, f.Predicates()[0].Args)
}

func TestPermitFilterRealmIDGrant(t *testing.T) {
	store := newFakeStore()
	seedRealms(store, 7, 42)
	store.realms[8] = RealmOrg
	engine := newTestEngine(store)
	user := Identity{ID: 5, RealmID: 42}
	store.addGrant(5, Grant{
		RoleID: 1, Entity: "orders", Action: ActionView,
		Scope: ScopeAll, FilterName: FilterRealmID, FilterInt: intp(7),
	})

	f, err := engine.PermitFilter(context.Background(), user, ordersEntity(), ActionView)
	require.NoError(t, err)
	require.Len(t, f.Predicates(), 1)
	assert.Equal(t, "realm_id IN (?)", f.Predicates()[0].SQL)
	assert.Equal(t, []any{int64(7)}, f.Predicates()[0].Args)

	// Consistency with the single-record check: realm 7 passes, realm 8
	// fails, identically to the filter applied as WHERE id = record.id.
	in := Record{ID: 100, RealmID: 7, OwnerID: 99}
	out := Record{ID: 101, RealmID: 8, OwnerID: 99}
	ok, err := engine.Permitted(context.Background(), user, ordersEntity(), in, ActionView)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = engine.Permitted(context.Background(), user, ordersEntity(), out, ActionView)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPermitFilterOwnedRealmKindScenario(t *testing.T) {
	// Grant: entity docs, action edit, scope owned, realm.kind org. User 5
	// lives in org realm 42. Only realm-42 docs owned by user 5 qualify.
	store := newFakeStore()
	seedRealms(store, 42, 99)
	engine := newTestEngine(store)
	user := Identity{ID: 5, RealmID: 42}
	docs := Entity{
		Name: "docs", Table: "docs",
		IDColumn: "id", RealmColumn: "realm_id", OwnerColumn: "owner_id",
		RealmKinds: []RealmKind{RealmOrg},
	}
	store.addGrant(5, Grant{
		RoleID: 1, Entity: "docs", Action: ActionEdit,
		Scope: ScopeOwned, FilterName: FilterRealmKind, FilterText: strp("org"),
	})

	f, err := engine.PermitFilter(context.Background(), user, docs, ActionEdit)
	require.NoError(t, err)
	require.Len(t, f.Predicates(), 1)
	assert.Equal(t, "(realm_id IN (?)) AND (owner_id = ?)", f.Predicates()[0].SQL)
	assert.Equal(t, []any{int64(42), int64(5)}, f.Predicates()[0].Args)

	cases := []struct {
		name string
		rec  Record
		want bool
	}{
		{"own doc in home realm", Record{ID: 1, RealmID: 42, OwnerID: 5}, true},
		{"someone else's doc in home realm", Record{ID: 2, RealmID: 42, OwnerID: 9}, false},
		{"own doc in foreign org realm", Record{ID: 3, RealmID: 99, OwnerID: 5}, false},
	}
	for _, tc := range cases {
		ok, err := engine.Permitted(context.Background(), user, docs, tc.rec, ActionEdit)
		require.NoError(t, err, tc.name)
		assert.Equal(t, tc.want, ok, tc.name)
	}
}

func TestPermitFilterScopeMonotonicity(t *testing.T) {
	store := newFakeStore()
	seedRealms(store, 7, 42)
	engine := newTestEngine(store)
	user := Identity{ID: 5, RealmID: 42}
	store.addGrant(5, Grant{
		RoleID: 1, Entity: "orders", Action: ActionView,
		Scope: ScopeAll, FilterName: FilterRealmID, FilterInt: intp(7),
	})

	before, err := engine.PermitFilter(context.Background(), user, ordersEntity(), ActionView)
	require.NoError(t, err)

	store.addGrant(5, Grant{
		RoleID: 2, Entity: "orders", Action: ActionView,
		Scope: ScopeAll, FilterName: "orders.id", FilterInt: intp(55),
	})
	after, err := engine.PermitFilter(context.Background(), user, ordersEntity(), ActionView)
	require.NoError(t, err)

	// Adding a grant only appends predicates; whatever was reachable before
	// stays reachable.
	require.Greater(t, len(after.Predicates()), len(before.Predicates()))
	afterSQL := map[string]bool{}
	for _, p := range after.Predicates() {
		afterSQL[p.SQL] = true
	}
	for _, p := range before.Predicates() {
		assert.True(t, afterSQL[p.SQL], "predicate %q disappeared", p.SQL)
	}
}

func TestPermitFilterStewardStrategy(t *testing.T) {
	store := newFakeStore()
	seedRealms(store, 20, 21)
	engine := newTestEngine(store)
	op := Identity{ID: 3, RealmID: testKernelRealmID, InKernel: true}
	store.addSteward(3, 20)
	store.addSteward(3, 21)
	store.addGrant(3, Grant{
		RoleID: 1, Entity: "orders", Action: ActionEdit,
		Scope: ScopeAll, FilterName: FilterRealmKind, FilterText: strp("org"),
	})

	f, err := engine.PermitFilter(context.Background(), op, ordersEntity(), ActionEdit)
	require.NoError(t, err)
	require.False(t, f.IsDenied())

	var found bool
	for _, p := range f.Predicates() {
		if p.SQL == "realm_id IN (?, ?)" {
			found = true
			assert.Equal(t, []any{int64(20), int64(21)}, p.Args)
		}
	}
	assert.True(t, found, "expected stewarded realm predicate")
}

func TestPermitFilterStewardOwnedOnly(t *testing.T) {
	store := newFakeStore()
	seedRealms(store, 20)
	engine := newTestEngine(store)
	op := Identity{ID: 3, RealmID: testKernelRealmID, InKernel: true}
	store.addSteward(3, 20)
	store.addGrant(3, Grant{
		RoleID: 1, Entity: "orders", Action: ActionEdit,
		Scope: ScopeOwned, FilterName: FilterRealmID, FilterInt: intp(20),
	})

	f, err := engine.PermitFilter(context.Background(), op, ordersEntity(), ActionEdit)
	require.NoError(t, err)
	require.False(t, f.IsDenied())

	// The steward path narrows to owned records; the raw realm.id grant is
	// itself owner-restricted too. Nothing may accept a foreign-owned row.
	mine := Record{ID: 1, RealmID: 20, OwnerID: 3}
	theirs := Record{ID: 2, RealmID: 20, OwnerID: 8}
	ok, err := engine.Permitted(context.Background(), op, ordersEntity(), mine, ActionEdit)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = engine.Permitted(context.Background(), op, ordersEntity(), theirs, ActionEdit)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPermitFilterRealmOwnerStrategy(t *testing.T) {
	store := newFakeStore()
	seedRealms(store, 42)
	engine := newTestEngine(store)
	user := Identity{ID: 5, RealmID: 42}
	store.addRealmRoot(5, 42)

	// Root membership needs no grants at all.
	f, err := engine.PermitFilter(context.Background(), user, ordersEntity(), ActionDelete)
	require.NoError(t, err)
	require.Len(t, f.Predicates(), 1)
	assert.Equal(t, "realm_id IN (?)", f.Predicates()[0].SQL)
	assert.Equal(t, []any{int64(42)}, f.Predicates()[0].Args)

	ok, err := engine.Permitted(context.Background(), user, ordersEntity(), Record{ID: 9, RealmID: 42, OwnerID: 77}, ActionDelete)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestPermitFilterKernelKindGrantRequiresInKernel(t *testing.T) {
	store := newFakeStore()
	seedRealms(store, 42)
	store.realms[43] = RealmOrg
	grant := Grant{
		RoleID: 1, Entity: "orders", Action: ActionView,
		Scope: ScopeAll, FilterName: FilterRealmKind, FilterText: strp("org"),
	}

	// Kernel operator: kind grant expands to every org realm.
	opStore := newFakeStore()
	seedRealms(opStore, 42)
	opStore.addGrant(3, grant)
	op := Identity{ID: 3, RealmID: testKernelRealmID, InKernel: true}
	f, err := newTestEngine(opStore).PermitFilter(context.Background(), op, ordersEntity(), ActionView)
	require.NoError(t, err)
	require.Len(t, f.Predicates(), 1)
	assert.Contains(t, f.Predicates()[0].SQL, "SELECT id FROM realms WHERE kind IN (?)")

	// Tenant user: the same grant only reaches the home realm.
	store.addGrant(5, grant)
	user := Identity{ID: 5, RealmID: 42}
	f, err = newTestEngine(store).PermitFilter(context.Background(), user, ordersEntity(), ActionView)
	require.NoError(t, err)
	require.Len(t, f.Predicates(), 1)
	assert.Equal(t, "realm_id IN (?)", f.Predicates()[0].SQL)
	assert.Equal(t, []any{int64(42)}, f.Predicates()[0].Args)
}

func TestPermitFilterRelationGrant(t *testing.T) {
	store := newFakeStore()
	seedRealms(store, 42)
	engine := newTestEngine(store)
	user := Identity{ID: 5, RealmID: 42, InKernel: true}
	store.addGrant(5, Grant{
		RoleID: 1, Entity: "decks", Action: ActionView,
		Scope: ScopeAll, FilterName: "course.id", FilterInt: intp(12),
	})

	f, err := engine.PermitFilter(context.Background(), user, decksEntity(), ActionView)
	require.NoError(t, err)
	require.Len(t, f.Predicates(), 1)
	assert.Equal(t, "course_id IN (?)", f.Predicates()[0].SQL)

	rec := Record{ID: 4, RealmID: 42, OwnerID: 9, Relations: map[string]int64{"course.id": 12}}
	ok, err := engine.Permitted(context.Background(), user, decksEntity(), rec, ActionView)
	require.NoError(t, err)
	assert.True(t, ok)

	other := Record{ID: 5, RealmID: 42, OwnerID: 9, Relations: map[string]int64{"course.id": 13}}
	ok, err = engine.Permitted(context.Background(), user, decksEntity(), other, ActionView)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestKernelControlOverlay(t *testing.T) {
	store := newFakeStore()
	seedRealms(store, 42)
	engine := newTestEngine(store)
	user := Identity{ID: 5, RealmID: 42}
	store.addGrant(5, Grant{
		RoleID: 1, Entity: "decks", Action: ActionView,
		Scope: ScopeAll, FilterName: FilterRealmID, FilterInt: intp(42),
	})
	store.addGrant(5, Grant{
		RoleID: 1, Entity: "decks", Action: ActionEdit,
		Scope: ScopeAll, FilterName: FilterRealmID, FilterInt: intp(42),
	})

	view, err := engine.PermitFilter(context.Background(), user, decksEntity(), ActionView)
	require.NoError(t, err)
	require.Len(t, view.Predicates(), 1)
	assert.Equal(t,
		"(realm_id IN (?)) AND ((controlled_by IS DISTINCT FROM ? OR flow_status IS DISTINCT FROM ?))",
		view.Predicates()[0].SQL)
	assert.Equal(t, []any{int64(42), ControlledByKernel, FlowDeveloping}, view.Predicates()[0].Args)

	edit, err := engine.PermitFilter(context.Background(), user, decksEntity(), ActionEdit)
	require.NoError(t, err)
	require.Len(t, edit.Predicates(), 1)
	assert.Equal(t,
		"(realm_id IN (?)) AND (controlled_by IS DISTINCT FROM ?)",
		edit.Predicates()[0].SQL)
}

func TestKernelDevelopingInvisibility(t *testing.T) {
	store := newFakeStore()
	seedRealms(store, 42)
	engine := newTestEngine(store)
	developing := Record{ID: 4, RealmID: 42, OwnerID: 5, ControlledBy: ControlledByKernel, FlowStatus: FlowDeveloping}
	released := Record{ID: 5, RealmID: 42, OwnerID: 5, ControlledBy: ControlledByKernel, FlowStatus: "released"}

	// Tenant user with a broad realm grant still cannot see the developing
	// record, and can never edit a kernel-controlled one.
	user := Identity{ID: 5, RealmID: 42}
	store.addGrant(5, Grant{
		RoleID: 1, Entity: "decks", Action: ActionView,
		Scope: ScopeAll, FilterName: FilterRealmID, FilterInt: intp(42),
	})
	store.addGrant(5, Grant{
		RoleID: 1, Entity: "decks", Action: ActionEdit,
		Scope: ScopeAll, FilterName: FilterRealmID, FilterInt: intp(42),
	})

	ok, err := engine.Permitted(context.Background(), user, decksEntity(), developing, ActionView)
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = engine.Permitted(context.Background(), user, decksEntity(), released, ActionView)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = engine.Permitted(context.Background(), user, decksEntity(), released, ActionEdit)
	require.NoError(t, err)
	assert.False(t, ok)

	// A kernel operator who otherwise qualifies sees it.
	op := Identity{ID: 3, RealmID: testKernelRealmID, InKernel: true}
	store.addSteward(3, 42)
	store.addGrant(3, Grant{
		RoleID: 2, Entity: "decks", Action: ActionView,
		Scope: ScopeAll, FilterName: FilterRealmKind, FilterText: strp("org"),
	})
	ok, err = engine.Permitted(context.Background(), op, decksEntity(), developing, ActionView)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMalformedGrantSkipped(t *testing.T) {
	store := newFakeStore()
	seedRealms(store, 7, 42)
	engine := newTestEngine(store)
	user := Identity{ID: 5, RealmID: 42}

	// Both values set: skipped. Neither set: skipped. The valid grant still
	// contributes, so one bad row never denies an otherwise-valid user.
	store.addGrant(5, Grant{
		RoleID: 1, Entity: "orders", Action: ActionView,
		Scope: ScopeAll, FilterName: FilterRealmID, FilterInt: intp(8), FilterText: strp("org"),
	})
	store.addGrant(5, Grant{
		RoleID: 1, Entity: "orders", Action: ActionView,
		Scope: ScopeAll, FilterName: FilterRealmID,
	})
	store.addGrant(5, Grant{
		RoleID: 1, Entity: "orders", Action: ActionView,
		Scope: ScopeAll, FilterName: FilterRealmID, FilterInt: intp(7),
	})

	f, err := engine.PermitFilter(context.Background(), user, ordersEntity(), ActionView)
	require.NoError(t, err)
	require.Len(t, f.Predicates(), 1)
	assert.Equal(t, []any{int64(7)}, f.Predicates()[0].Args)
}

func TestPermitFilterStoreErrorPropagates(t *testing.T) {
	store := newFakeStore()
	seedRealms(store, 42)
	store.addGrant(5, Grant{
		RoleID: 1, Entity: "orders", Action: ActionView,
		Scope: ScopeAll, FilterName: FilterRealmID, FilterInt: intp(42),
	})
	store.failOp = "rooted"
	engine := newTestEngine(store)
	user := Identity{ID: 5, RealmID: 42}

	_, err := engine.PermitFilter(context.Background(), user, ordersEntity(), ActionView)
	require.ErrorIs(t, err, errStore)
}

func TestUserDirectoryVisibility(t *testing.T) {
	store := newFakeStore()
	seedRealms(store, 42)
	engine := newTestEngine(store)
	user := Identity{ID: 5, RealmID: 42}
	store.domainPeers[5] = []int64{6, 7}
	store.coRealm[5] = []int64{7, 8}

	f, err := engine.PermitFilter(context.Background(), user, usersEntity(), ActionView)
	require.NoError(t, err)
	require.Len(t, f.Predicates(), 1)
	assert.Equal(t, "id IN (?, ?, ?, ?)", f.Predicates()[0].SQL)
	assert.Equal(t, []any{int64(5), int64(6), int64(7), int64(8)}, f.Predicates()[0].Args)

	ok, err := engine.Permitted(context.Background(), user, usersEntity(), Record{ID: 6, RealmID: 42, OwnerID: 6}, ActionView)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = engine.Permitted(context.Background(), user, usersEntity(), Record{ID: 9, RealmID: 42, OwnerID: 9}, ActionView)
	require.NoError(t, err)
	assert.False(t, ok)

	// A kernel operator sees the whole directory, no realm relationship
	// required.
	op := Identity{ID: 3, RealmID: testKernelRealmID, InKernel: true}
	f, err = engine.PermitFilter(context.Background(), op, usersEntity(), ActionView)
	require.NoError(t, err)
	assert.True(t, f.IsAllowed())
}

func TestUserDirectoryKernelControlOverlay(t *testing.T) {
	// A user directory carrying the overlay columns: kernel-locked accounts.
	// The overlay outranks self-access and peer visibility in the filter and
	// in the single-record check alike.
	locked := Entity{
		Name: UserEntityName, Table: "users",
		IDColumn: "id", RealmColumn: "realm_id", OwnerColumn: "id",
		ControlledByColumn: "controlled_by", FlowStatusColumn: "flow_status",
	}
	store := newFakeStore()
	seedRealms(store, 42)
	engine := newTestEngine(store)
	user := Identity{ID: 5, RealmID: 42}

	f, err := engine.PermitFilter(context.Background(), user, locked, ActionEdit)
	require.NoError(t, err)
	require.Len(t, f.Predicates(), 1)
	assert.Equal(t, "(id = ?) AND (controlled_by IS DISTINCT FROM ?)", f.Predicates()[0].SQL)

	own := Record{ID: 5, RealmID: 42, OwnerID: 5, ControlledBy: ControlledByKernel}
	ok, err := engine.Permitted(context.Background(), user, locked, own, ActionEdit)
	require.NoError(t, err)
	assert.False(t, ok, "a locked account is not editable, not even by itself")

	free := Record{ID: 5, RealmID: 42, OwnerID: 5}
	ok, err = engine.Permitted(context.Background(), user, locked, free, ActionEdit)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestUserSelfEdit(t *testing.T) {
	store := newFakeStore()
	seedRealms(store, 42)
	engine := newTestEngine(store)
	user := Identity{ID: 5, RealmID: 42}

	f, err := engine.PermitFilter(context.Background(), user, usersEntity(), ActionEdit)
	require.NoError(t, err)
	require.Len(t, f.Predicates(), 1)
	assert.Equal(t, "id = ?", f.Predicates()[0].SQL)

	ok, err := engine.Permitted(context.Background(), user, usersEntity(), Record{ID: 5, RealmID: 42, OwnerID: 5}, ActionEdit)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = engine.Permitted(context.Background(), user, usersEntity(), Record{ID: 6, RealmID: 42, OwnerID: 6}, ActionEdit)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestKernelOnlyEntity(t *testing.T) {
	plans := Entity{
		Name: "billing_plans", Table: "billing_plans",
		IDColumn: "id", RealmColumn: "realm_id", OwnerColumn: "owner_id",
		KernelOnly: true,
	}
	store := newFakeStore()
	seedRealms(store, 42)
	engine := newTestEngine(store)

	// Root-of-kernel operator: allowed outright.
	op := Identity{ID: 3, RealmID: testKernelRealmID, InKernel: true}
	store.addRealmRoot(3, testKernelRealmID)
	f, err := engine.PermitFilter(context.Background(), op, plans, ActionEdit)
	require.NoError(t, err)
	assert.True(t, f.IsAllowed())

	// Plain operator with a kernel-kind grant: restricted query.
	clerk := Identity{ID: 4, RealmID: testKernelRealmID, InKernel: true}
	store.addGrant(4, Grant{
		RoleID: 1, Entity: "billing_plans", Action: ActionEdit,
		Scope: ScopeAll, FilterName: FilterRealmKind, FilterText: strp("kernel"),
	})
	f, err = engine.PermitFilter(context.Background(), clerk, plans, ActionEdit)
	require.NoError(t, err)
	require.Len(t, f.Predicates(), 1)
	assert.Equal(t, "realm_id = ?", f.Predicates()[0].SQL)
	assert.Equal(t, []any{testKernelRealmID}, f.Predicates()[0].Args)

	ok, err := engine.Permitted(context.Background(), clerk, plans, Record{ID: 2, RealmID: testKernelRealmID}, ActionEdit)
	require.NoError(t, err)
	assert.True(t, ok)

	// Tenant user with a record-id grant reaches exactly that record.
	user := Identity{ID: 5, RealmID: 42}
	store.addGrant(5, Grant{
		RoleID: 2, Entity: "billing_plans", Action: ActionView,
		Scope: ScopeAll, FilterName: "billing_plans.id", FilterInt: intp(77),
	})
	f, err = engine.PermitFilter(context.Background(), user, plans, ActionView)
	require.NoError(t, err)
	require.Len(t, f.Predicates(), 1)
	assert.Equal(t, "id IN (?)", f.Predicates()[0].SQL)

	ok, err = engine.Permitted(context.Background(), user, plans, Record{ID: 77, RealmID: testKernelRealmID}, ActionView)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = engine.Permitted(context.Background(), user, plans, Record{ID: 78, RealmID: testKernelRealmID}, ActionView)
	require.NoError(t, err)
	assert.False(t, ok)
}
