package authz

import (
	"context"
	"errors"
	"fmt"
)

// UserEntityName is the grant entity name of the user directory. The user
// entity carries two extra rules: self-access, and view shared with verified
// email-domain peers and co-realm occupants.
const UserEntityName = "users"

// evaluation caches the permission rows one decision needs so each table is
// read at most once per request.
type evaluation struct {
	grants    []Grant
	homeKind  RealmKind
	stewarded map[RealmKind][]int64
	rooted    map[RealmKind][]int64
}

func (ev *evaluation) anyRooted() bool {
	for _, ids := range ev.rooted {
		if len(ids) > 0 {
			return true
		}
	}
	return false
}

// PermitFilter composes the access filter for listing/searching an entity:
// Allowed (no filter needed), Denied (empty result set) or a Query whose
// predicates are OR-combined. The number of store reads is bounded by the
// entity's realm kinds, never by candidate records.
func (e *Engine) PermitFilter(ctx context.Context, id Identity, ent Entity, action Action) (PermitFilter, error) {
	f, err := e.permitFilter(ctx, id, ent, action)
	if err != nil {
		return Denied(), fmt.Errorf("authz: permit filter %s/%s: %w", ent.Name, action, err)
	}
	e.record(ent.Name, action, f.outcome())
	return f, nil
}

func (e *Engine) permitFilter(ctx context.Context, id Identity, ent Entity, action Action) (PermitFilter, error) {
	if id.IsRoot {
		return Allowed(), nil
	}
	if ent.KernelOnly {
		return e.kernelPermitFilter(ctx, id, ent, action)
	}
	// Kernel operators see the whole user directory. Broader than the other
	// entities on purpose: support staff must be able to look up any account.
	if ent.Name == UserEntityName && action == ActionView && id.InKernel {
		return Allowed(), nil
	}

	raw, err := e.store.GrantsFor(ctx, id.ID, ent.Name, action)
	if err != nil {
		return Denied(), err
	}
	homeKind, err := e.store.RealmKindOf(ctx, id.RealmID)
	if err != nil && !errors.Is(err, ErrRecordNotFound) {
		return Denied(), err
	}
	ev := &evaluation{
		grants:    e.validGrants(raw),
		homeKind:  homeKind,
		stewarded: map[RealmKind][]int64{},
		rooted:    map[RealmKind][]int64{},
	}
	for _, kind := range ent.kinds() {
		ids, err := e.store.RootRealmIDs(ctx, id.ID, kind)
		if err != nil {
			return Denied(), err
		}
		ev.rooted[kind] = ids
	}

	userExtra, err := e.userEntityPredicates(ctx, id, ent, action)
	if err != nil {
		return Denied(), err
	}

	// No grants, no rooted realm, no user-entity rule: nothing downstream can
	// contribute a predicate, so stop before reading the store further.
	if len(ev.grants) == 0 && !ev.anyRooted() && len(userExtra) == 0 {
		return Denied(), nil
	}

	if id.InKernel && len(ev.grants) > 0 {
		for _, kind := range ent.kinds() {
			if kind == RealmKernel {
				continue
			}
			ids, err := e.store.StewardedRealmIDs(ctx, id.ID, kind)
			if err != nil {
				return Denied(), err
			}
			ev.stewarded[kind] = ids
		}
	}

	var predicates []Predicate
	predicates = append(predicates, e.stewardPredicates(id, ent, ev)...)
	predicates = append(predicates, e.realmOwnerPredicates(ent, ev)...)
	predicates = append(predicates, e.recordGrantPredicates(ent, ev)...)
	predicates = append(predicates, e.roleGrantPredicates(id, ent, ev)...)
	predicates = append(predicates, userExtra...)
	predicates = e.kernelControlOverlay(id, ent, action, predicates)

	return Query(predicates...), nil
}

// stewardPredicates grants access to realms delegated to an in-kernel
// operator, narrowed by the scopes the operator's grants resolve to for each
// realm kind.
func (e *Engine) stewardPredicates(id Identity, ent Entity, ev *evaluation) []Predicate {
	if !id.InKernel {
		return nil
	}
	var out []Predicate
	for _, kind := range ent.kinds() {
		if kind == RealmKernel {
			continue
		}
		realms := ev.stewarded[kind]
		if len(realms) == 0 {
			continue
		}
		scopes := e.scopesFromGrants(ev.grants, kind, realms)
		switch {
		case scopes.Has(ScopeAll):
			out = append(out, colIn(ent.RealmColumn, realms))
		case scopes.Has(ScopeOwned):
			out = append(out, allOf(colIn(ent.RealmColumn, realms), colEqual(ent.OwnerColumn, id.ID)))
		}
	}
	return out
}

// realmOwnerPredicates grants access to realms the user is a root member of.
// Root membership confers full control within the realm regardless of role
// grants, including the kernel realm when the user roots it.
func (e *Engine) realmOwnerPredicates(ent Entity, ev *evaluation) []Predicate {
	var out []Predicate
	for _, kind := range ent.kinds() {
		realms := ev.rooted[kind]
		if len(realms) == 0 {
			continue
		}
		out = append(out, colIn(ent.RealmColumn, realms))
	}
	return out
}

// recordGrantPredicates whitelists individually granted record ids.
func (e *Engine) recordGrantPredicates(ent Entity, ev *evaluation) []Predicate {
	var ids []int64
	for _, g := range ev.grants {
		if g.FilterName == ent.IDFilter() && g.FilterInt != nil {
			ids = append(ids, g.intValue())
		}
	}
	if len(ids) == 0 {
		return nil
	}
	return []Predicate{colIn(ent.IDColumn, ids)}
}

// roleGrantPredicates buckets the remaining grant filters: realm ids, realm
// kinds (in-kernel only) and entity-specific relation filters, each doubled
// into an owner-restricted form when the grant's scope is "owned".
func (e *Engine) roleGrantPredicates(id Identity, ent Entity, ev *evaluation) []Predicate {
	var (
		realmAll, realmOwned []int64
		kindAll, kindOwned   []RealmKind
		relations            = map[string][]int64{}
	)
	for _, g := range ev.grants {
		switch g.FilterName {
		case FilterRealmID:
			if g.FilterInt == nil {
				continue
			}
			if g.Scope == ScopeOwned {
				realmOwned = append(realmOwned, g.intValue())
			} else {
				realmAll = append(realmAll, g.intValue())
			}
		case FilterRealmKind:
			if g.FilterText == nil {
				continue
			}
			kind := RealmKind(g.textValue())
			if id.InKernel {
				// Kind-wide reach across tenants is a kernel-operator
				// privilege.
				if g.Scope == ScopeOwned {
					kindOwned = append(kindOwned, kind)
				} else {
					kindAll = append(kindAll, kind)
				}
				continue
			}
			// Outside the kernel a kind grant only covers the user's home
			// realm, when its kind matches.
			if kind != ev.homeKind {
				continue
			}
			if g.Scope == ScopeOwned {
				realmOwned = append(realmOwned, id.RealmID)
			} else {
				realmAll = append(realmAll, id.RealmID)
			}
		default:
			if col := ent.Relations[g.FilterName]; col != "" && g.FilterInt != nil {
				relations[col] = append(relations[col], g.intValue())
			}
		}
	}

	var out []Predicate
	if len(realmAll) > 0 {
		out = append(out, colIn(ent.RealmColumn, dedupe(realmAll)))
	}
	if len(realmOwned) > 0 {
		out = append(out, allOf(colIn(ent.RealmColumn, dedupe(realmOwned)), colEqual(ent.OwnerColumn, id.ID)))
	}
	if len(kindAll) > 0 {
		out = append(out, realmKindSubquery(ent.RealmColumn, kindAll))
	}
	if len(kindOwned) > 0 {
		out = append(out, allOf(realmKindSubquery(ent.RealmColumn, kindOwned), colEqual(ent.OwnerColumn, id.ID)))
	}
	for col, ids := range relations {
		out = append(out, colIn(col, ids))
	}
	return out
}

// kernelControlOverlay tightens every predicate for users outside the kernel:
// kernel-controlled records cannot be edited or deleted, and stay invisible
// while still in the developing lifecycle stage.
func (e *Engine) kernelControlOverlay(id Identity, ent Entity, action Action, predicates []Predicate) []Predicate {
	if id.InKernel || !ent.hasControlledBy() || len(predicates) == 0 {
		return predicates
	}
	var guard Predicate
	switch action {
	case ActionEdit, ActionDelete:
		guard = Predicate{
			SQL:  ent.ControlledByColumn + " IS DISTINCT FROM ?",
			Args: []any{ControlledByKernel},
		}
	default:
		if !ent.hasFlowStatus() {
			return predicates
		}
		guard = Predicate{
			SQL:  "(" + ent.ControlledByColumn + " IS DISTINCT FROM ? OR " + ent.FlowStatusColumn + " IS DISTINCT FROM ?)",
			Args: []any{ControlledByKernel, FlowDeveloping},
		}
	}
	out := make([]Predicate, len(predicates))
	for i, p := range predicates {
		out[i] = allOf(p, guard)
	}
	return out
}

// userEntityPredicates layers the user-directory rules: everyone may view and
// edit themselves, and view users sharing a verified email domain or any
// realm.
func (e *Engine) userEntityPredicates(ctx context.Context, id Identity, ent Entity, action Action) ([]Predicate, error) {
	if ent.Name != UserEntityName {
		return nil, nil
	}
	switch action {
	case ActionView:
		peers, err := e.store.DomainPeerIDs(ctx, id.ID)
		if err != nil {
			return nil, err
		}
		coRealm, err := e.store.CoRealmUserIDs(ctx, id.ID)
		if err != nil {
			return nil, err
		}
		ids := append([]int64{id.ID}, peers...)
		ids = append(ids, coRealm...)
		return []Predicate{colIn(ent.IDColumn, dedupe(ids))}, nil
	case ActionEdit:
		return []Predicate{colEqual(ent.IDColumn, id.ID)}, nil
	}
	return nil, nil
}

// kernelPermitFilter handles entities that exist only inside the kernel
// realm. There is exactly one kernel realm, so steward and realm-owner
// strategies collapse: a root member of the kernel realm is allowed outright,
// anyone else needs kernel-kind or record-id grants.
func (e *Engine) kernelPermitFilter(ctx context.Context, id Identity, ent Entity, action Action) (PermitFilter, error) {
	if id.InKernel {
		rooted, err := e.store.RootRealmIDs(ctx, id.ID, RealmKernel)
		if err != nil {
			return Denied(), err
		}
		for _, realmID := range rooted {
			if realmID == e.kernelRealmID {
				return Allowed(), nil
			}
		}
	}
	raw, err := e.store.GrantsFor(ctx, id.ID, ent.Name, action)
	if err != nil {
		return Denied(), err
	}
	ev := &evaluation{grants: e.validGrants(raw)}
	var predicates []Predicate
	predicates = append(predicates, e.recordGrantPredicates(ent, ev)...)
	if id.InKernel {
		for _, g := range ev.grants {
			if g.FilterName == FilterRealmKind && RealmKind(g.textValue()) == RealmKernel {
				predicates = append(predicates, colEqual(ent.RealmColumn, e.kernelRealmID))
				break
			}
		}
	}
	return Query(predicates...), nil
}

func dedupe(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
