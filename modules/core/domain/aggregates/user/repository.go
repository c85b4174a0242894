package user

import (
	"context"

	"github.com/google/uuid"
)

type FindParams struct {
	Q      string
	Role   Role
	Limit  int
	Offset int
}

type Repository interface {
	GetPaginated(ctx context.Context, params *FindParams) ([]User, int64, error)
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	GetByFullName(ctx context.Context, fullName string) (User, error)
	GetByChatID(ctx context.Context, chatID int64) (User, error)
	Create(ctx context.Context, u User) (User, error)
	Update(ctx context.Context, u User) (User, error)
}
