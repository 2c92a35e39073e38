package decks

import (
	"context"
	"fmt"

	"github.com/lexora-app/lexora/internal/authz"
	"github.com/lexora-app/lexora/internal/shared"
)

// RepositoryPort defines data access methods for decks.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, RepositoryPort) error) error
	List(ctx context.Context, filter authz.PermitFilter, p shared.Pagination) ([]Deck, error)
	Get(ctx context.Context, id int64) (Deck, error)
	Records(ctx context.Context, ids []int64) ([]authz.Record, error)
	Create(ctx context.Context, d Deck) (Deck, error)
	Update(ctx context.Context, id int64, title, description string) (Deck, error)
	Archive(ctx context.Context, id int64) error
	ListCards(ctx context.Context, deckID int64) ([]Card, error)
	CardRecords(ctx context.Context, ids []int64) ([]authz.Record, error)
	DeckRecord(ctx context.Context, deckID int64) (authz.Record, error)
	DeleteCard(ctx context.Context, id int64) error
}

// Authorizer is the slice of the authorization engine this module consumes.
type Authorizer interface {
	PermitFilter(ctx context.Context, id authz.Identity, ent authz.Entity, action authz.Action) (authz.PermitFilter, error)
	Permitted(ctx context.Context, id authz.Identity, ent authz.Entity, rec authz.Record, action authz.Action) (bool, error)
	BulkApply(ctx context.Context, id authz.Identity, req authz.BulkRequest) (authz.BulkOutcome, error)
}

// Service handles deck business logic behind the access engine.
type Service struct {
	repo  RepositoryPort
	authz Authorizer
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, az Authorizer) *Service {
	return &Service{repo: repo, authz: az}
}

// List returns the decks the acting user may view.
func (s *Service) List(ctx context.Context, id authz.Identity, p shared.Pagination) ([]Deck, error) {
	filter, err := s.authz.PermitFilter(ctx, id, Descriptor(), authz.ActionView)
	if err != nil {
		return nil, fmt.Errorf("decks: resolve filter: %w", err)
	}
	if filter.IsDenied() {
		return []Deck{}, nil
	}
	return s.repo.List(ctx, filter, p)
}

// Get loads one deck, enforcing record-level visibility. Records the caller
// may not see are reported as not found rather than forbidden.
func (s *Service) Get(ctx context.Context, id authz.Identity, deckID int64) (Deck, error) {
	d, err := s.repo.Get(ctx, deckID)
	if err != nil {
		return Deck{}, err
	}
	ok, err := s.authz.Permitted(ctx, id, Descriptor(), d.record(), authz.ActionView)
	if err != nil {
		return Deck{}, err
	}
	if !ok {
		return Deck{}, shared.ErrNotFound
	}
	return d, nil
}

// Create inserts a deck owned by the acting user in their home realm.
func (s *Service) Create(ctx context.Context, id authz.Identity, title, description string, courseID *int64) (Deck, error) {
	return s.repo.Create(ctx, Deck{
		RealmID:     id.RealmID,
		OwnerID:     id.ID,
		CourseID:    courseID,
		Title:       title,
		Description: description,
	})
}

// Update edits a deck after an edit-permission check on the current row.
func (s *Service) Update(ctx context.Context, id authz.Identity, deckID int64, title, description string) (Deck, error) {
	d, err := s.repo.Get(ctx, deckID)
	if err != nil {
		return Deck{}, err
	}
	ok, err := s.authz.Permitted(ctx, id, Descriptor(), d.record(), authz.ActionEdit)
	if err != nil {
		return Deck{}, err
	}
	if !ok {
		return Deck{}, shared.ErrForbidden
	}
	return s.repo.Update(ctx, deckID, title, description)
}

// Archive soft-deletes one deck after a delete-permission check.
func (s *Service) Archive(ctx context.Context, id authz.Identity, deckID int64) error {
	d, err := s.repo.Get(ctx, deckID)
	if err != nil {
		return err
	}
	ok, err := s.authz.Permitted(ctx, id, Descriptor(), d.record(), authz.ActionDelete)
	if err != nil {
		return err
	}
	if !ok {
		return shared.ErrForbidden
	}
	return s.repo.Archive(ctx, deckID)
}

// BulkArchive archives a batch of decks, partitioning the ids by outcome.
// The record loads and the archives they gate run in one RepeatableRead
// transaction, so a deck cannot change hands between its permission check and
// the write.
func (s *Service) BulkArchive(ctx context.Context, id authz.Identity, ids []int64) (authz.BulkOutcome, error) {
	var out authz.BulkOutcome
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo RepositoryPort) error {
		var err error
		out, err = s.authz.BulkApply(ctx, id, authz.BulkRequest{
			Entity: Descriptor(),
			Action: authz.ActionDelete,
			IDs:    ids,
			Load:   repo.Records,
			Apply: func(ctx context.Context, rec authz.Record) error {
				return repo.Archive(ctx, rec.ID)
			},
		})
		return err
	})
	return out, err
}

// Cards lists the cards of a deck the user may view.
func (s *Service) Cards(ctx context.Context, id authz.Identity, deckID int64) ([]Card, error) {
	if _, err := s.Get(ctx, id, deckID); err != nil {
		return nil, err
	}
	return s.repo.ListCards(ctx, deckID)
}

// BulkDeleteCards removes a batch of cards. Permission is held on the parent
// deck, so each card's check is redirected there. Runs in one RepeatableRead
// transaction like BulkArchive.
func (s *Service) BulkDeleteCards(ctx context.Context, id authz.Identity, ids []int64) (authz.BulkOutcome, error) {
	var out authz.BulkOutcome
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo RepositoryPort) error {
		var err error
		out, err = s.authz.BulkApply(ctx, id, authz.BulkRequest{
			Entity: authz.Entity{Name: "cards", Table: "cards", IDColumn: "id"},
			Action: authz.ActionEdit,
			IDs:    ids,
			Load:   repo.CardRecords,
			Apply: func(ctx context.Context, rec authz.Record) error {
				return repo.DeleteCard(ctx, rec.ID)
			},
			Dependent: &authz.DependentLookup{
				Entity:   Descriptor(),
				Action:   authz.ActionEdit,
				ParentID: func(rec authz.Record) int64 { return rec.Relations["deck.id"] },
				Fetch:    repo.DeckRecord,
			},
		})
		return err
	})
	return out, err
}
