package authz

import (
	"context"
	"errors"
	"fmt"
)

// fakeStore is an in-memory Store for engine tests.
type fakeStore struct {
	identities  map[int64]Identity
	grants      []grantRow
	stewarded   map[int64]map[RealmKind][]int64
	rooted      map[int64]map[RealmKind][]int64
	realms      map[int64]RealmKind
	domainPeers map[int64][]int64
	coRealm     map[int64][]int64

	// failOp makes the named operation fail, to exercise fail-closed paths.
	failOp string
}

type grantRow struct {
	userID int64
	grant  Grant
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		identities:  map[int64]Identity{},
		stewarded:   map[int64]map[RealmKind][]int64{},
		rooted:      map[int64]map[RealmKind][]int64{},
		realms:      map[int64]RealmKind{},
		domainPeers: map[int64][]int64{},
		coRealm:     map[int64][]int64{},
	}
}

var errStore = errors.New("store unavailable")

func (f *fakeStore) fail(op string) error {
	if f.failOp == op {
		return fmt.Errorf("%s: %w", op, errStore)
	}
	return nil
}

func (f *fakeStore) addGrant(userID int64, g Grant) {
	f.grants = append(f.grants, grantRow{userID: userID, grant: g})
}

func (f *fakeStore) addSteward(userID, realmID int64) {
	kind := f.realms[realmID]
	if f.stewarded[userID] == nil {
		f.stewarded[userID] = map[RealmKind][]int64{}
	}
	f.stewarded[userID][kind] = append(f.stewarded[userID][kind], realmID)
}

func (f *fakeStore) addRealmRoot(userID, realmID int64) {
	kind := f.realms[realmID]
	if f.rooted[userID] == nil {
		f.rooted[userID] = map[RealmKind][]int64{}
	}
	f.rooted[userID][kind] = append(f.rooted[userID][kind], realmID)
}

func (f *fakeStore) Identity(ctx context.Context, userID int64) (Identity, error) {
	if err := f.fail("identity"); err != nil {
		return Identity{}, err
	}
	id, ok := f.identities[userID]
	if !ok {
		return Identity{}, ErrRecordNotFound
	}
	return id, nil
}

func (f *fakeStore) GrantsFor(ctx context.Context, userID int64, entity string, action Action) ([]Grant, error) {
	if err := f.fail("grants"); err != nil {
		return nil, err
	}
	var out []Grant
	for _, row := range f.grants {
		if row.userID == userID && row.grant.Entity == entity && row.grant.Action == action {
			out = append(out, row.grant)
		}
	}
	return out, nil
}

func (f *fakeStore) StewardedRealmIDs(ctx context.Context, userID int64, kind RealmKind) ([]int64, error) {
	if err := f.fail("stewarded"); err != nil {
		return nil, err
	}
	return f.stewarded[userID][kind], nil
}

func (f *fakeStore) RootRealmIDs(ctx context.Context, userID int64, kind RealmKind) ([]int64, error) {
	if err := f.fail("rooted"); err != nil {
		return nil, err
	}
	return f.rooted[userID][kind], nil
}

func (f *fakeStore) RealmKindOf(ctx context.Context, realmID int64) (RealmKind, error) {
	if err := f.fail("realmkind"); err != nil {
		return "", err
	}
	kind, ok := f.realms[realmID]
	if !ok {
		return "", ErrRecordNotFound
	}
	return kind, nil
}

func (f *fakeStore) DomainPeerIDs(ctx context.Context, userID int64) ([]int64, error) {
	if err := f.fail("domainpeers"); err != nil {
		return nil, err
	}
	return f.domainPeers[userID], nil
}

func (f *fakeStore) CoRealmUserIDs(ctx context.Context, userID int64) ([]int64, error) {
	if err := f.fail("corealm"); err != nil {
		return nil, err
	}
	return f.coRealm[userID], nil
}

var _ Store = (*fakeStore)(nil)
