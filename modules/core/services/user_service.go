package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/urnevurnev-lab/ambassador-crm-sub000/modules/core/domain/aggregates/user"
	"github.com/urnevurnev-lab/ambassador-crm-sub000/pkg/composables"
	"github.com/urnevurnev-lab/ambassador-crm-sub000/pkg/middleware"
)

type UserService struct {
	repo user.Repository
}

func NewUserService(repo user.Repository) *UserService {
	return &UserService{repo: repo}
}

func (s *UserService) GetPaginated(ctx context.Context, params *user.FindParams) ([]user.User, int64, error) {
	if params != nil {
		params.Q = strings.TrimSpace(params.Q)
	}
	return s.repo.GetPaginated(ctx, params)
}

func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (user.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *UserService) GetByChatID(ctx context.Context, chatID int64) (user.User, error) {
	return s.repo.GetByChatID(ctx, chatID)
}

func (s *UserService) Create(ctx context.Context, dto *user.CreateDTO) (user.User, error) {
	if dto == nil {
		return user.User{}, errors.New("missing dto")
	}
	dto.Normalize()
	entity := user.New(dto.FullName, user.Role(dto.Role))
	if dto.ChatID != 0 {
		entity = entity.WithChatID(dto.ChatID)
	}
	return s.repo.Create(ctx, entity)
}

// GetOrCreateByFullName resolves an imported full name to a user, creating
// an ambassador with a placeholder chat id on first sight. The second
// return reports whether a new user was created.
func (s *UserService) GetOrCreateByFullName(ctx context.Context, fullName string) (user.User, bool, error) {
	fullName = strings.Join(strings.Fields(fullName), " ")
	existing, err := s.repo.GetByFullName(ctx, fullName)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, user.ErrNotFound) {
		return user.User{}, false, err
	}
	created, err := s.repo.Create(ctx, user.New(fullName, user.RoleAmbassador))
	if err != nil {
		return user.User{}, false, err
	}
	return created, true, nil
}

// BindChatID attaches a real Telegram chat id to a user, replacing the
// import placeholder.
func (s *UserService) BindChatID(ctx context.Context, id uuid.UUID, chatID int64) (user.User, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return user.User{}, err
	}
	return s.repo.Update(ctx, existing.WithChatID(chatID))
}

// ResolveSubject implements the auth middleware's subject lookup.
func (s *UserService) ResolveSubject(ctx context.Context, id uuid.UUID) (composables.AuthSubject, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// IssueToken signs a bearer token for a user identified by chat id. Used
// by the mini-app login exchange.
func (s *UserService) IssueToken(ctx context.Context, chatID int64, secret string, ttl time.Duration) (string, user.User, error) {
	u, err := s.repo.GetByChatID(ctx, chatID)
	if err != nil {
		return "", user.User{}, err
	}
	token := middleware.SignToken(u.ID(), time.Now().Add(ttl), secret)
	return token, u, nil
}
