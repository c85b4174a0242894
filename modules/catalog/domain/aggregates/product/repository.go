package product

import (
	"context"

	"github.com/google/uuid"
)

type FindParams struct {
	Q      string
	Line   Line
	Limit  int
	Offset int
}

type Repository interface {
	GetPaginated(ctx context.Context, params *FindParams) ([]Product, int64, error)
	GetByID(ctx context.Context, id uuid.UUID) (Product, error)
	GetBySKU(ctx context.Context, sku string) (Product, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]Product, error)
	Create(ctx context.Context, p Product) (Product, error)
	Update(ctx context.Context, p Product) (Product, error)
}
