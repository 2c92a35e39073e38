package decks

import (
	"time"

	"github.com/lexora-app/lexora/internal/authz"
)

// Deck is a study deck owned by a user inside a realm. Kernel-controlled
// decks carry a controlled_by marker and a flow status driving reader
// visibility while content is still being developed.
type Deck struct {
	ID           int64      `json:"id"`
	RealmID      int64      `json:"realm_id"`
	OwnerID      int64      `json:"owner_id"`
	CourseID     *int64     `json:"course_id,omitempty"`
	Title        string     `json:"title"`
	Description  string     `json:"description,omitempty"`
	ControlledBy string     `json:"controlled_by,omitempty"`
	FlowStatus   string     `json:"flow_status,omitempty"`
	ArchivedAt   *time.Time `json:"archived_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Card belongs to a deck and inherits its access rules.
type Card struct {
	ID        int64     `json:"id"`
	DeckID    int64     `json:"deck_id"`
	Front     string    `json:"front"`
	Back      string    `json:"back"`
	Position  int32     `json:"position"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Descriptor declares decks to the authorization engine.
func Descriptor() authz.Entity {
	return authz.Entity{
		Name:               "decks",
		Table:              "decks",
		IDColumn:           "id",
		RealmColumn:        "realm_id",
		OwnerColumn:        "owner_id",
		ControlledByColumn: "controlled_by",
		FlowStatusColumn:   "flow_status",
		Relations:          map[string]string{"course.id": "course_id"},
	}
}

func (d Deck) record() authz.Record {
	rec := authz.Record{
		ID:           d.ID,
		RealmID:      d.RealmID,
		OwnerID:      d.OwnerID,
		ControlledBy: d.ControlledBy,
		FlowStatus:   d.FlowStatus,
	}
	if d.CourseID != nil {
		rec.Relations = map[string]int64{"course.id": *d.CourseID}
	}
	return rec
}
