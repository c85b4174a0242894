package order

import (
	"context"

	"github.com/google/uuid"
)

type FindParams struct {
	UserID     uuid.UUID
	FacilityID uuid.UUID
	Status     Status
	Limit      int
	Offset     int
}

type Repository interface {
	GetPaginated(ctx context.Context, params *FindParams) ([]Order, int64, error)
	GetByID(ctx context.Context, id uuid.UUID) (Order, error)
	Create(ctx context.Context, o Order) (Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) (Order, error)
	ReassignFacility(ctx context.Context, fromFacilityID, toFacilityID uuid.UUID) error
}
