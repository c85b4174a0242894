package services

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/urnevurnev-lab/ambassador-crm-sub000/modules/field/domain/aggregates/visit"
)

type VisitService struct {
	repo visit.Repository
}

func NewVisitService(repo visit.Repository) *VisitService {
	return &VisitService{repo: repo}
}

func (s *VisitService) GetPaginated(ctx context.Context, params *visit.FindParams) ([]visit.Visit, int64, error) {
	return s.repo.GetPaginated(ctx, params)
}

func (s *VisitService) GetByID(ctx context.Context, id uuid.UUID) (visit.Visit, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *VisitService) Create(ctx context.Context, userID uuid.UUID, dto *visit.CreateDTO) (visit.Visit, error) {
	if dto == nil {
		return visit.Visit{}, errors.New("missing dto")
	}
	dto.Normalize()
	entity := visit.New(
		userID,
		dto.FacilityID,
		visit.Kind(dto.Kind),
		dto.VisitedAt,
		dto.Comment,
		dto.Payload,
		dto.AvailableProductIDs,
		dto.TastedProductIDs,
	)
	return s.repo.Create(ctx, entity)
}

// CreateRaw stores an already-assembled visit. The importer uses it to
// append historical rows without DTO validation.
func (s *VisitService) CreateRaw(ctx context.Context, v visit.Visit) (visit.Visit, error) {
	return s.repo.Create(ctx, v)
}
