package authz

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// BulkRequest describes one bulk action over not-yet-trusted candidate ids.
// Load must fetch all candidates in a single query; Apply performs the
// per-record effect and is called only for records that pass the permission
// check. Both run on the caller's connection/transaction so the check and the
// effect see the same grant state.
type BulkRequest struct {
	Entity Entity
	Action Action
	IDs    []int64
	Load   func(ctx context.Context, ids []int64) ([]Record, error)
	Apply  func(ctx context.Context, rec Record) error
	// Dependent redirects the permission check to a parent entity when the
	// action's permission is really held on the parent (e.g. deleting a card
	// requires edit on its deck). Optional.
	Dependent *DependentLookup
}

// DependentLookup resolves the parent record a candidate's permission is
// keyed off. Parent fetches are memoized by parent id.
type DependentLookup struct {
	Entity   Entity
	Action   Action
	ParentID func(rec Record) int64
	Fetch    func(ctx context.Context, parentID int64) (Record, error)
}

// BulkOutcome partitions the candidate ids. Applied, Denied and Errored are
// disjoint and together cover the deduplicated input exactly; denied and
// failed ids are reported, never silently dropped.
type BulkOutcome struct {
	Applied []int64 `json:"applied"`
	Denied  []int64 `json:"denied"`
	Errored []int64 `json:"errored"`
}

// Done reports whether every candidate was applied.
func (o BulkOutcome) Done() bool {
	return len(o.Denied) == 0 && len(o.Errored) == 0
}

// BulkApply loads the candidates, checks each against the engine (or its
// dependent parent) and applies the effect to the accepted ones, sequentially.
// A store failure during the permission checks aborts the whole operation;
// apply-function failures only move the affected id into Errored.
func (e *Engine) BulkApply(ctx context.Context, id Identity, req BulkRequest) (BulkOutcome, error) {
	if req.Load == nil || req.Apply == nil {
		return BulkOutcome{}, errors.New("authz: bulk apply: load and apply functions required")
	}
	ids := dedupe(req.IDs)
	var out BulkOutcome
	if len(ids) == 0 {
		return out, nil
	}

	records, err := req.Load(ctx, ids)
	if err != nil {
		return BulkOutcome{}, fmt.Errorf("authz: bulk load %s: %w", req.Entity.Name, err)
	}
	byID := make(map[int64]Record, len(records))
	for _, rec := range records {
		byID[rec.ID] = rec
	}

	parents := map[int64]Record{}
	for _, candidate := range ids {
		rec, ok := byID[candidate]
		if !ok {
			// Unknown ids fail closed.
			out.Denied = append(out.Denied, candidate)
			continue
		}

		checkEntity, checkAction, checkRec := req.Entity, req.Action, rec
		if req.Dependent != nil {
			parentID := req.Dependent.ParentID(rec)
			parent, cached := parents[parentID]
			if !cached {
				parent, err = req.Dependent.Fetch(ctx, parentID)
				if err != nil {
					if errors.Is(err, ErrRecordNotFound) {
						out.Denied = append(out.Denied, candidate)
						continue
					}
					return BulkOutcome{}, fmt.Errorf("authz: bulk dependent fetch: %w", err)
				}
				parents[parentID] = parent
			}
			checkEntity, checkAction, checkRec = req.Dependent.Entity, req.Dependent.Action, parent
		}

		ok, err = e.Permitted(ctx, id, checkEntity, checkRec, checkAction)
		if err != nil {
			return BulkOutcome{}, err
		}
		if !ok {
			out.Denied = append(out.Denied, candidate)
			continue
		}

		if err := req.Apply(ctx, rec); err != nil {
			e.logger.Warn("bulk apply failed",
				slog.String("entity", req.Entity.Name),
				slog.String("action", string(req.Action)),
				slog.Int64("id", candidate),
				slog.Any("error", err))
			out.Errored = append(out.Errored, candidate)
			continue
		}
		out.Applied = append(out.Applied, candidate)
	}
	return out, nil
}
