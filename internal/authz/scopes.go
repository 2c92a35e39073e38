package authz

import (
	"context"
	"slices"
)

// AllowedScopes resolves the scopes the user holds for one entity/action pair
// within realms of the given kind. Root users hold "*" unconditionally.
// Otherwise scopes come from grants whose realm.kind filter matches the kind,
// or whose realm.id filter names a realm the user has standing in (here: the
// home realm).
func (e *Engine) AllowedScopes(ctx context.Context, id Identity, kind RealmKind, ent Entity, action Action) (ScopeSet, error) {
	if id.IsRoot {
		return ScopeSet{ScopeAll: {}}, nil
	}
	grants, err := e.store.GrantsFor(ctx, id.ID, ent.Name, action)
	if err != nil {
		return nil, err
	}
	return e.scopesFromGrants(grants, kind, []int64{id.RealmID}), nil
}

// AllowedScopesForSteward is the steward-standing variant: realm.id filters
// match realms of the kind delegated to the user. Stewardship is inert for
// users outside the kernel.
func (e *Engine) AllowedScopesForSteward(ctx context.Context, id Identity, kind RealmKind, ent Entity, action Action) (ScopeSet, error) {
	if id.IsRoot {
		return ScopeSet{ScopeAll: {}}, nil
	}
	if !id.InKernel {
		return ScopeSet{}, nil
	}
	realms, err := e.store.StewardedRealmIDs(ctx, id.ID, kind)
	if err != nil {
		return nil, err
	}
	if len(realms) == 0 {
		return ScopeSet{}, nil
	}
	grants, err := e.store.GrantsFor(ctx, id.ID, ent.Name, action)
	if err != nil {
		return nil, err
	}
	return e.scopesFromGrants(grants, kind, realms), nil
}

// AllowedScopesForRealmRoot is the realm-root variant. A root member holds
// full control over the realm regardless of role grants, so rooting any realm
// of the kind yields "*"; grant-derived scopes are unioned on top.
func (e *Engine) AllowedScopesForRealmRoot(ctx context.Context, id Identity, kind RealmKind, ent Entity, action Action) (ScopeSet, error) {
	if id.IsRoot {
		return ScopeSet{ScopeAll: {}}, nil
	}
	realms, err := e.store.RootRealmIDs(ctx, id.ID, kind)
	if err != nil {
		return nil, err
	}
	if len(realms) == 0 {
		return ScopeSet{}, nil
	}
	set := ScopeSet{ScopeAll: {}}
	grants, err := e.store.GrantsFor(ctx, id.ID, ent.Name, action)
	if err != nil {
		return nil, err
	}
	for scope := range e.scopesFromGrants(grants, kind, realms) {
		set.Add(scope)
	}
	return set, nil
}

// scopesFromGrants collects distinct scopes from grants whose filter matches
// the realm kind or one of the standing realm ids.
func (e *Engine) scopesFromGrants(grants []Grant, kind RealmKind, standingRealms []int64) ScopeSet {
	set := ScopeSet{}
	for _, g := range e.validGrants(grants) {
		switch g.FilterName {
		case FilterRealmKind:
			if RealmKind(g.textValue()) == kind {
				set.Add(g.Scope)
			}
		case FilterRealmID:
			if slices.Contains(standingRealms, g.intValue()) {
				set.Add(g.Scope)
			}
		}
	}
	return set
}
