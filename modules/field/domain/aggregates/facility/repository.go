package facility

import (
	"context"

	"github.com/google/uuid"
)

type FindParams struct {
	Q              string
	IncludeService bool
	Verified       *bool
	Limit          int
	Offset         int
}

type Repository interface {
	GetPaginated(ctx context.Context, params *FindParams) ([]Facility, int64, error)
	GetByID(ctx context.Context, id uuid.UUID) (Facility, error)
	GetByNameAddress(ctx context.Context, name, address string) (Facility, error)
	GetAll(ctx context.Context, includeService bool) ([]Facility, error)
	Create(ctx context.Context, f Facility) (Facility, error)
	Update(ctx context.Context, f Facility) (Facility, error)
	Delete(ctx context.Context, id uuid.UUID) error

	MustList(ctx context.Context, facilityID uuid.UUID) ([]uuid.UUID, error)
	ReplaceMustList(ctx context.Context, facilityID uuid.UUID, productIDs []uuid.UUID) error
}
