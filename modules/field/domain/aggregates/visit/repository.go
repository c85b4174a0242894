package visit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type FindParams struct {
	UserID     uuid.UUID
	FacilityID uuid.UUID
	From       time.Time
	To         time.Time
	Limit      int
	Offset     int
}

type Repository interface {
	GetPaginated(ctx context.Context, params *FindParams) ([]Visit, int64, error)
	GetByID(ctx context.Context, id uuid.UUID) (Visit, error)
	Create(ctx context.Context, v Visit) (Visit, error)

	// LatestByFacility returns the most recent visit ordered by visited_at
	// with id as the deterministic tiebreaker.
	LatestByFacility(ctx context.Context, facilityID uuid.UUID) (Visit, error)
	// FacilityIDsWithVisits returns each facility id that has at least one
	// visit, exactly once.
	FacilityIDsWithVisits(ctx context.Context) ([]uuid.UUID, error)
	// ReassignFacility re-points all visits from one facility to another.
	ReassignFacility(ctx context.Context, fromFacilityID, toFacilityID uuid.UUID) error
}
