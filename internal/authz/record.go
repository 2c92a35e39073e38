package authz

import (
	"context"
	"fmt"
	"slices"
)

// Permitted is the single-record counterpart of PermitFilter: it answers
// whether applying the composed filter as "WHERE id = rec.ID" would return a
// row, but tests the record against the resolved sets directly instead of
// materializing a query. Strategies are tried in order; the first one that
// accepts wins. Store errors always propagate — a failed permission read is
// never "allowed".
func (e *Engine) Permitted(ctx context.Context, id Identity, ent Entity, rec Record, action Action) (bool, error) {
	ok, err := e.permitted(ctx, id, ent, rec, action)
	if err != nil {
		return false, fmt.Errorf("authz: permitted %s/%s: %w", ent.Name, action, err)
	}
	return ok, nil
}

func (e *Engine) permitted(ctx context.Context, id Identity, ent Entity, rec Record, action Action) (bool, error) {
	if id.IsRoot {
		return true, nil
	}
	// Kernel-controlled overlay: outside tenants cannot mutate controlled
	// records and cannot see them while still developing. The overlay outranks
	// every accepting strategy below, self-access included, mirroring how the
	// composed filter wraps each predicate.
	if !id.InKernel && ent.hasControlledBy() && rec.ControlledBy == ControlledByKernel {
		switch action {
		case ActionEdit, ActionDelete:
			return false, nil
		default:
			if ent.hasFlowStatus() && rec.FlowStatus == FlowDeveloping {
				return false, nil
			}
		}
	}
	// Self-access on the user directory.
	if ent.Name == UserEntityName && rec.ID == id.ID && (action == ActionView || action == ActionEdit) {
		return true, nil
	}
	if ent.KernelOnly {
		return e.kernelPermitted(ctx, id, ent, rec, action)
	}
	if ent.Name == UserEntityName && action == ActionView && id.InKernel {
		return true, nil
	}

	raw, err := e.store.GrantsFor(ctx, id.ID, ent.Name, action)
	if err != nil {
		return false, err
	}
	grants := e.validGrants(raw)

	kind, err := e.store.RealmKindOf(ctx, rec.RealmID)
	if err != nil {
		return false, err
	}

	// Steward strategy.
	if id.InKernel && len(grants) > 0 && kind != RealmKernel {
		stewarded, err := e.store.StewardedRealmIDs(ctx, id.ID, kind)
		if err != nil {
			return false, err
		}
		if slices.Contains(stewarded, rec.RealmID) {
			scopes := e.scopesFromGrants(grants, kind, stewarded)
			if scopes.Has(ScopeAll) {
				return true, nil
			}
			if scopes.Has(ScopeOwned) && rec.OwnerID == id.ID {
				return true, nil
			}
		}
	}

	// Realm-owner strategy: root membership is full control.
	rooted, err := e.store.RootRealmIDs(ctx, id.ID, kind)
	if err != nil {
		return false, err
	}
	if slices.Contains(rooted, rec.RealmID) {
		return true, nil
	}

	// Record-id and role grants.
	if grantsAccept(grants, id, ent, rec, kind) {
		return true, nil
	}

	// User-directory sharing: verified email-domain peers and co-realm users
	// are mutually visible.
	if ent.Name == UserEntityName && action == ActionView {
		peers, err := e.store.DomainPeerIDs(ctx, id.ID)
		if err != nil {
			return false, err
		}
		if slices.Contains(peers, rec.ID) {
			return true, nil
		}
		coRealm, err := e.store.CoRealmUserIDs(ctx, id.ID)
		if err != nil {
			return false, err
		}
		if slices.Contains(coRealm, rec.ID) {
			return true, nil
		}
	}

	return false, nil
}

// grantsAccept tests the record against the role-grant buckets, mirroring
// roleGrantPredicates and recordGrantPredicates.
func grantsAccept(grants []Grant, id Identity, ent Entity, rec Record, kind RealmKind) bool {
	for _, g := range grants {
		switch g.FilterName {
		case ent.IDFilter():
			if g.FilterInt != nil && g.intValue() == rec.ID {
				return true
			}
		case FilterRealmID:
			if g.FilterInt == nil || g.intValue() != rec.RealmID {
				continue
			}
			if g.Scope != ScopeOwned || rec.OwnerID == id.ID {
				return true
			}
		case FilterRealmKind:
			if g.FilterText == nil || RealmKind(g.textValue()) != kind {
				continue
			}
			// Kind grants reach every realm of the kind for kernel
			// operators, and only the home realm otherwise.
			if !id.InKernel && rec.RealmID != id.RealmID {
				continue
			}
			if g.Scope != ScopeOwned || rec.OwnerID == id.ID {
				return true
			}
		default:
			if ent.Relations[g.FilterName] == "" || g.FilterInt == nil {
				continue
			}
			if rel, ok := rec.Relations[g.FilterName]; ok && rel == g.intValue() {
				return true
			}
		}
	}
	return false
}

// kernelPermitted is the single-record check for kernel-only entities.
func (e *Engine) kernelPermitted(ctx context.Context, id Identity, ent Entity, rec Record, action Action) (bool, error) {
	if id.InKernel {
		rooted, err := e.store.RootRealmIDs(ctx, id.ID, RealmKernel)
		if err != nil {
			return false, err
		}
		for _, realmID := range rooted {
			if realmID == e.kernelRealmID {
				return true, nil
			}
		}
	}
	raw, err := e.store.GrantsFor(ctx, id.ID, ent.Name, action)
	if err != nil {
		return false, err
	}
	for _, g := range e.validGrants(raw) {
		switch g.FilterName {
		case ent.IDFilter():
			if g.FilterInt != nil && g.intValue() == rec.ID {
				return true, nil
			}
		case FilterRealmKind:
			if id.InKernel && RealmKind(g.textValue()) == RealmKernel {
				return true, nil
			}
		}
	}
	return false, nil
}
