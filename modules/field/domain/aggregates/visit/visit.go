package visit

import (
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
)

var ErrNotFound = errors.New("visit not found")

type Kind string

const (
	KindVisit    Kind = "visit"
	KindActivity Kind = "activity"
	KindImport   Kind = "import"
)

// Visit is append-only: imports may create duplicates on re-run, nothing
// ever updates a stored visit.
type Visit struct {
	id          uuid.UUID
	userID      uuid.UUID
	facilityID  uuid.UUID
	kind        Kind
	visitedAt   time.Time
	comment     string
	payload     map[string]any
	availableID []uuid.UUID
	tastedID    []uuid.UUID
	createdAt   time.Time
}

func New(
	userID, facilityID uuid.UUID,
	kind Kind,
	visitedAt time.Time,
	comment string,
	payload map[string]any,
	availableProductIDs, tastedProductIDs []uuid.UUID,
) Visit {
	return Visit{
		userID:      userID,
		facilityID:  facilityID,
		kind:        kind,
		visitedAt:   visitedAt,
		comment:     strings.TrimSpace(comment),
		payload:     payload,
		availableID: availableProductIDs,
		tastedID:    tastedProductIDs,
	}
}

func Hydrate(
	id uuid.UUID,
	userID, facilityID uuid.UUID,
	kind Kind,
	visitedAt time.Time,
	comment string,
	payload map[string]any,
	availableProductIDs, tastedProductIDs []uuid.UUID,
	createdAt time.Time,
) Visit {
	return Visit{
		id:          id,
		userID:      userID,
		facilityID:  facilityID,
		kind:        kind,
		visitedAt:   visitedAt,
		comment:     comment,
		payload:     payload,
		availableID: availableProductIDs,
		tastedID:    tastedProductIDs,
		createdAt:   createdAt,
	}
}

func (v Visit) ID() uuid.UUID                     { return v.id }
func (v Visit) UserID() uuid.UUID                 { return v.userID }
func (v Visit) FacilityID() uuid.UUID             { return v.facilityID }
func (v Visit) Kind() Kind                        { return v.kind }
func (v Visit) VisitedAt() time.Time              { return v.visitedAt }
func (v Visit) Comment() string                   { return v.comment }
func (v Visit) Payload() map[string]any           { return v.payload }
func (v Visit) AvailableProductIDs() []uuid.UUID  { return v.availableID }
func (v Visit) TastedProductIDs() []uuid.UUID     { return v.tastedID }
func (v Visit) CreatedAt() time.Time              { return v.createdAt }
func (v Visit) IsZero() bool                      { return v.id == uuid.Nil }
