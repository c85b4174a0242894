package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/urnevurnev-lab/ambassador-crm-sub000/modules/field/domain/aggregates/facility"
	"github.com/urnevurnev-lab/ambassador-crm-sub000/pkg/composables"
)

// Geocoder resolves an address to coordinates. Lookups are best effort:
// failures are logged and never block facility writes.
type Geocoder interface {
	Forward(ctx context.Context, address string) (lat, lon float64, err error)
}

type FacilityService struct {
	repo     facility.Repository
	geocoder Geocoder
}

func NewFacilityService(repo facility.Repository, geocoder Geocoder) *FacilityService {
	return &FacilityService{repo: repo, geocoder: geocoder}
}

func (s *FacilityService) GetPaginated(ctx context.Context, params *facility.FindParams) ([]facility.Facility, int64, error) {
	if params != nil {
		params.Q = strings.TrimSpace(params.Q)
	}
	return s.repo.GetPaginated(ctx, params)
}

func (s *FacilityService) GetByID(ctx context.Context, id uuid.UUID) (facility.Facility, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *FacilityService) Create(ctx context.Context, dto *facility.CreateDTO) (facility.Facility, error) {
	if dto == nil {
		return facility.Facility{}, errors.New("missing dto")
	}
	dto.Normalize()
	entity := facility.New(dto.Name, dto.Address)
	entity = s.fillCoords(ctx, entity)
	return s.repo.Create(ctx, entity)
}

func (s *FacilityService) Verify(ctx context.Context, id uuid.UUID) (facility.Facility, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return facility.Facility{}, err
	}
	updated := existing.WithVerified(true)
	if !updated.HasCoords() {
		updated = s.fillCoords(ctx, updated)
	}
	return s.repo.Update(ctx, updated)
}

// GetOrCreate resolves an imported (name, address) pair to a facility,
// creating it on first sight. The second return reports creation.
func (s *FacilityService) GetOrCreate(ctx context.Context, name, address string) (facility.Facility, bool, error) {
	name = strings.Join(strings.Fields(name), " ")
	address = strings.Join(strings.Fields(address), " ")
	existing, err := s.repo.GetByNameAddress(ctx, name, address)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, facility.ErrNotFound) {
		return facility.Facility{}, false, err
	}
	created, err := s.repo.Create(ctx, facility.New(name, address))
	if err != nil {
		return facility.Facility{}, false, err
	}
	return created, true, nil
}

// GetOrCreateService resolves the synthesized facility holding activity
// rows of the given kind.
func (s *FacilityService) GetOrCreateService(ctx context.Context, kind string) (facility.Facility, bool, error) {
	candidate := facility.NewService(kind)
	existing, err := s.repo.GetByNameAddress(ctx, candidate.Name(), "")
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, facility.ErrNotFound) {
		return facility.Facility{}, false, err
	}
	created, err := s.repo.Create(ctx, candidate)
	if err != nil {
		return facility.Facility{}, false, err
	}
	return created, true, nil
}

func (s *FacilityService) MustList(ctx context.Context, facilityID uuid.UUID) ([]uuid.UUID, error) {
	return s.repo.MustList(ctx, facilityID)
}

func (s *FacilityService) fillCoords(ctx context.Context, f facility.Facility) facility.Facility {
	if s.geocoder == nil || f.Address() == "" || f.IsService() {
		return f
	}
	lat, lon, err := s.geocoder.Forward(ctx, f.Address())
	if err != nil {
		composables.UseLogger(ctx).WithError(err).WithField("address", f.Address()).Warn("geocode failed")
		return f
	}
	return f.WithCoords(lat, lon)
}
