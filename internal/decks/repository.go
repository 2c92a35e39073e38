package decks

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lexora-app/lexora/internal/authz"
	"github.com/lexora-app/lexora/internal/platform/db"
	"github.com/lexora-app/lexora/internal/shared"
)

// querier is the query surface shared by the pool and an open transaction.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Repository persists decks and cards in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
	q    querier
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool, q: pool}
}

// WithTx runs fn against a repository bound to one RepeatableRead
// transaction, so record loads and the writes they gate read a single
// snapshot.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, RepositoryPort) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &Repository{pool: r.pool, q: tx})
	})
}

const deckColumns = `id, realm_id, owner_id, course_id, title, description, controlled_by, flow_status, archived_at, created_at, updated_at`

func scanDeck(row pgx.Row) (Deck, error) {
	var d Deck
	err := row.Scan(&d.ID, &d.RealmID, &d.OwnerID, &d.CourseID, &d.Title, &d.Description, &d.ControlledBy, &d.FlowStatus, &d.ArchivedAt, &d.CreatedAt, &d.UpdatedAt)
	return d, err
}

// List returns decks visible under the supplied access filter, newest first.
func (r *Repository) List(ctx context.Context, filter authz.PermitFilter, p shared.Pagination) ([]Deck, error) {
	baseSQL := `SELECT ` + deckColumns + ` FROM decks WHERE archived_at IS NULL`
	sql, args := filter.AppendTo(baseSQL, nil)
	sql += fmt.Sprintf(" ORDER BY updated_at DESC, id DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, p.PerPage, p.Offset())

	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("decks: list: %w", err)
	}
	defer rows.Close()

	var out []Deck
	for rows.Next() {
		d, err := scanDeck(rows)
		if err != nil {
			return nil, fmt.Errorf("decks: scan: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Get loads one deck by id.
func (r *Repository) Get(ctx context.Context, id int64) (Deck, error) {
	row := r.q.QueryRow(ctx, `SELECT `+deckColumns+` FROM decks WHERE id = $1`, id)
	d, err := scanDeck(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Deck{}, shared.ErrNotFound
	}
	if err != nil {
		return Deck{}, fmt.Errorf("decks: get: %w", err)
	}
	return d, nil
}

// Records loads the authorization snapshots for a batch of deck ids in a
// single query.
func (r *Repository) Records(ctx context.Context, ids []int64) ([]authz.Record, error) {
	rows, err := r.q.Query(ctx, `SELECT id, realm_id, owner_id, course_id, controlled_by, flow_status FROM decks WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("decks: load records: %w", err)
	}
	defer rows.Close()

	var out []authz.Record
	for rows.Next() {
		var rec authz.Record
		var courseID *int64
		if err := rows.Scan(&rec.ID, &rec.RealmID, &rec.OwnerID, &courseID, &rec.ControlledBy, &rec.FlowStatus); err != nil {
			return nil, fmt.Errorf("decks: scan record: %w", err)
		}
		if courseID != nil {
			rec.Relations = map[string]int64{"course.id": *courseID}
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Create inserts a deck owned by the given user.
func (r *Repository) Create(ctx context.Context, d Deck) (Deck, error) {
	row := r.q.QueryRow(ctx,
		`INSERT INTO decks (realm_id, owner_id, course_id, title, description, controlled_by, flow_status)
		 VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), NULLIF($7, ''))
		 RETURNING `+deckColumns,
		d.RealmID, d.OwnerID, d.CourseID, d.Title, d.Description, d.ControlledBy, d.FlowStatus)
	created, err := scanDeck(row)
	if err != nil {
		return Deck{}, fmt.Errorf("decks: create: %w", err)
	}
	return created, nil
}

// Update rewrites the editable fields of a deck.
func (r *Repository) Update(ctx context.Context, id int64, title, description string) (Deck, error) {
	row := r.q.QueryRow(ctx,
		`UPDATE decks SET title = $2, description = $3, updated_at = now() WHERE id = $1 RETURNING `+deckColumns,
		id, title, description)
	d, err := scanDeck(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Deck{}, shared.ErrNotFound
	}
	if err != nil {
		return Deck{}, fmt.Errorf("decks: update: %w", err)
	}
	return d, nil
}

// Archive soft-deletes a deck.
func (r *Repository) Archive(ctx context.Context, id int64) error {
	tag, err := r.q.Exec(ctx, `UPDATE decks SET archived_at = now(), updated_at = now() WHERE id = $1 AND archived_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("decks: archive: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// ListCards returns the cards of one deck in position order.
func (r *Repository) ListCards(ctx context.Context, deckID int64) ([]Card, error) {
	rows, err := r.q.Query(ctx,
		`SELECT id, deck_id, front, back, position, created_at, updated_at FROM cards WHERE deck_id = $1 ORDER BY position, id`, deckID)
	if err != nil {
		return nil, fmt.Errorf("decks: list cards: %w", err)
	}
	defer rows.Close()

	var out []Card
	for rows.Next() {
		var c Card
		if err := rows.Scan(&c.ID, &c.DeckID, &c.Front, &c.Back, &c.Position, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("decks: scan card: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// CardRecords loads card rows as lightweight records keyed for the parent
// deck lookup. Only the card id and deck id matter here.
func (r *Repository) CardRecords(ctx context.Context, ids []int64) ([]authz.Record, error) {
	rows, err := r.q.Query(ctx, `SELECT id, deck_id FROM cards WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("decks: load card records: %w", err)
	}
	defer rows.Close()

	var out []authz.Record
	for rows.Next() {
		var id, deckID int64
		if err := rows.Scan(&id, &deckID); err != nil {
			return nil, fmt.Errorf("decks: scan card record: %w", err)
		}
		out = append(out, authz.Record{ID: id, Relations: map[string]int64{"deck.id": deckID}})
	}
	return out, rows.Err()
}

// DeckRecord loads the authorization snapshot of a single deck. Used as the
// dependent lookup target for card operations.
func (r *Repository) DeckRecord(ctx context.Context, deckID int64) (authz.Record, error) {
	recs, err := r.Records(ctx, []int64{deckID})
	if err != nil {
		return authz.Record{}, err
	}
	if len(recs) == 0 {
		return authz.Record{}, authz.ErrRecordNotFound
	}
	return recs[0], nil
}

// DeleteCard removes one card.
func (r *Repository) DeleteCard(ctx context.Context, id int64) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM cards WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("decks: delete card: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
