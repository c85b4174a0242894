package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/urnevurnev-lab/ambassador-crm-sub000/modules/field/domain/aggregates/facility"
	"github.com/urnevurnev-lab/ambassador-crm-sub000/modules/field/domain/aggregates/visit"
)

type fakeFacilityRepo struct {
	facilities map[uuid.UUID]facility.Facility
	mustLists  map[uuid.UUID][]uuid.UUID
	deleted    []uuid.UUID
}

func newFakeFacilityRepo() *fakeFacilityRepo {
	return &fakeFacilityRepo{
		facilities: map[uuid.UUID]facility.Facility{},
		mustLists:  map[uuid.UUID][]uuid.UUID{},
	}
}

func (r *fakeFacilityRepo) add(name, address string) facility.Facility {
	f := facility.Hydrate(uuid.New(), name, address, 0, 0, false, false, time.Now(), time.Now())
	r.facilities[f.ID()] = f
	return f
}

func (r *fakeFacilityRepo) GetPaginated(_ context.Context, params *facility.FindParams) ([]facility.Facility, int64, error) {
	all, _ := r.GetAll(context.Background(), params != nil && params.IncludeService)
	return all, int64(len(all)), nil
}

func (r *fakeFacilityRepo) GetByID(_ context.Context, id uuid.UUID) (facility.Facility, error) {
	f, ok := r.facilities[id]
	if !ok {
		return facility.Facility{}, facility.ErrNotFound
	}
	return f, nil
}

func (r *fakeFacilityRepo) GetByNameAddress(_ context.Context, name, address string) (facility.Facility, error) {
	for _, f := range r.facilities {
		if f.Name() == name && f.Address() == address {
			return f, nil
		}
	}
	return facility.Facility{}, facility.ErrNotFound
}

func (r *fakeFacilityRepo) GetAll(_ context.Context, includeService bool) ([]facility.Facility, error) {
	var out []facility.Facility
	for _, f := range r.facilities {
		if !includeService && f.IsService() {
			continue
		}
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out, nil
}

func (r *fakeFacilityRepo) Create(_ context.Context, f facility.Facility) (facility.Facility, error) {
	for _, existing := range r.facilities {
		if existing.Name() == f.Name() && existing.Address() == f.Address() {
			return facility.Facility{}, facility.ErrDuplicate
		}
	}
	created := facility.Hydrate(uuid.New(), f.Name(), f.Address(), f.Latitude(), f.Longitude(), f.HasCoords(), f.Verified(), time.Now(), time.Now())
	r.facilities[created.ID()] = created
	return created, nil
}

func (r *fakeFacilityRepo) Update(_ context.Context, f facility.Facility) (facility.Facility, error) {
	if _, ok := r.facilities[f.ID()]; !ok {
		return facility.Facility{}, facility.ErrNotFound
	}
	r.facilities[f.ID()] = f
	return f, nil
}

func (r *fakeFacilityRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.facilities[id]; !ok {
		return facility.ErrNotFound
	}
	delete(r.facilities, id)
	r.deleted = append(r.deleted, id)
	return nil
}

func (r *fakeFacilityRepo) MustList(_ context.Context, facilityID uuid.UUID) ([]uuid.UUID, error) {
	return r.mustLists[facilityID], nil
}

func (r *fakeFacilityRepo) ReplaceMustList(_ context.Context, facilityID uuid.UUID, productIDs []uuid.UUID) error {
	r.mustLists[facilityID] = append([]uuid.UUID(nil), productIDs...)
	return nil
}

type fakeVisitRepo struct {
	visits []visit.Visit
}

func (r *fakeVisitRepo) add(facilityID uuid.UUID, visitedAt time.Time, available []uuid.UUID) visit.Visit {
	v := visit.Hydrate(
		uuid.New(), uuid.New(), facilityID, visit.KindVisit, visitedAt,
		"", nil, available, nil, time.Now(),
	)
	r.visits = append(r.visits, v)
	return v
}

func (r *fakeVisitRepo) GetPaginated(_ context.Context, _ *visit.FindParams) ([]visit.Visit, int64, error) {
	return r.visits, int64(len(r.visits)), nil
}

func (r *fakeVisitRepo) GetByID(_ context.Context, id uuid.UUID) (visit.Visit, error) {
	for _, v := range r.visits {
		if v.ID() == id {
			return v, nil
		}
	}
	return visit.Visit{}, visit.ErrNotFound
}

func (r *fakeVisitRepo) Create(_ context.Context, v visit.Visit) (visit.Visit, error) {
	created := visit.Hydrate(
		uuid.New(), v.UserID(), v.FacilityID(), v.Kind(), v.VisitedAt(),
		v.Comment(), v.Payload(), v.AvailableProductIDs(), v.TastedProductIDs(), time.Now(),
	)
	r.visits = append(r.visits, created)
	return created, nil
}

func (r *fakeVisitRepo) LatestByFacility(_ context.Context, facilityID uuid.UUID) (visit.Visit, error) {
	var best visit.Visit
	found := false
	for _, v := range r.visits {
		if v.FacilityID() != facilityID {
			continue
		}
		if !found {
			best, found = v, true
			continue
		}
		if v.VisitedAt().After(best.VisitedAt()) {
			best = v
			continue
		}
		if v.VisitedAt().Equal(best.VisitedAt()) && strings.Compare(v.ID().String(), best.ID().String()) > 0 {
			best = v
		}
	}
	if !found {
		return visit.Visit{}, visit.ErrNotFound
	}
	return best, nil
}

func (r *fakeVisitRepo) FacilityIDsWithVisits(_ context.Context) ([]uuid.UUID, error) {
	seen := map[uuid.UUID]struct{}{}
	var out []uuid.UUID
	for _, v := range r.visits {
		if _, ok := seen[v.FacilityID()]; ok {
			continue
		}
		seen[v.FacilityID()] = struct{}{}
		out = append(out, v.FacilityID())
	}
	return out, nil
}

func (r *fakeVisitRepo) ReassignFacility(_ context.Context, from, to uuid.UUID) error {
	for i, v := range r.visits {
		if v.FacilityID() != from {
			continue
		}
		r.visits[i] = visit.Hydrate(
			v.ID(), v.UserID(), to, v.Kind(), v.VisitedAt(),
			v.Comment(), v.Payload(), v.AvailableProductIDs(), v.TastedProductIDs(), v.CreatedAt(),
		)
	}
	return nil
}
