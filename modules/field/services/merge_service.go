package services

import (
	"context"
	"sort"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/urnevurnev-lab/ambassador-crm-sub000/modules/field/domain/aggregates/facility"
	"github.com/urnevurnev-lab/ambassador-crm-sub000/modules/field/domain/aggregates/visit"
	"github.com/urnevurnev-lab/ambassador-crm-sub000/pkg/composables"
	"github.com/urnevurnev-lab/ambassador-crm-sub000/pkg/normalize"
)

var (
	ErrMergeSelf    = errors.New("cannot merge a facility into itself")
	ErrMergeService = errors.New("service facilities cannot be merged")
)

// FacilityRelinker re-points rows referencing a facility. Other modules
// register theirs so a merge moves every reference in one transaction.
type FacilityRelinker interface {
	RelinkFacility(ctx context.Context, fromFacilityID, toFacilityID uuid.UUID) error
}

type FacilityMergeService struct {
	facilities facility.Repository
	visits     visit.Repository
	relinkers  []FacilityRelinker
	inTx       func(context.Context, func(context.Context) error) error
}

func NewFacilityMergeService(facilities facility.Repository, visits visit.Repository) *FacilityMergeService {
	return &FacilityMergeService{
		facilities: facilities,
		visits:     visits,
		inTx:       composables.InTx,
	}
}

func (s *FacilityMergeService) AddRelinker(r FacilityRelinker) {
	s.relinkers = append(s.relinkers, r)
}

type MergeCandidate struct {
	Facility facility.Facility
	Distance int
}

// Candidates ranks other facilities by Levenshtein distance between
// normalized name+address slugs. Service facilities never appear.
func (s *FacilityMergeService) Candidates(ctx context.Context, facilityID uuid.UUID, limit int) ([]MergeCandidate, error) {
	target, err := s.facilities.GetByID(ctx, facilityID)
	if err != nil {
		return nil, err
	}
	if target.IsService() {
		return nil, ErrMergeService
	}
	if limit <= 0 {
		limit = 10
	}

	all, err := s.facilities.GetAll(ctx, false)
	if err != nil {
		return nil, err
	}

	targetSlug := facilitySlug(target)
	candidates := make([]MergeCandidate, 0, len(all))
	for _, f := range all {
		if f.ID() == target.ID() {
			continue
		}
		candidates = append(candidates, MergeCandidate{
			Facility: f,
			Distance: fuzzy.LevenshteinDistance(targetSlug, facilitySlug(f)),
		})
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Distance != candidates[j].Distance {
			return candidates[i].Distance < candidates[j].Distance
		}
		return candidates[i].Facility.Name() < candidates[j].Facility.Name()
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates, nil
}

// Merge re-points every reference from the duplicate to the primary and
// removes the duplicate, all in one transaction. The primary's baseline is
// left for the next recompute.
func (s *FacilityMergeService) Merge(ctx context.Context, primaryID, duplicateID uuid.UUID) (facility.Facility, error) {
	if primaryID == duplicateID {
		return facility.Facility{}, ErrMergeSelf
	}

	var merged facility.Facility
	err := s.inTx(ctx, func(txCtx context.Context) error {
		primary, err := s.facilities.GetByID(txCtx, primaryID)
		if err != nil {
			return err
		}
		duplicate, err := s.facilities.GetByID(txCtx, duplicateID)
		if err != nil {
			return err
		}
		if primary.IsService() || duplicate.IsService() {
			return ErrMergeService
		}

		if err := s.visits.ReassignFacility(txCtx, duplicateID, primaryID); err != nil {
			return err
		}
		for _, relinker := range s.relinkers {
			if err := relinker.RelinkFacility(txCtx, duplicateID, primaryID); err != nil {
				return err
			}
		}
		if err := s.facilities.ReplaceMustList(txCtx, duplicateID, nil); err != nil {
			return err
		}
		if err := s.facilities.Delete(txCtx, duplicateID); err != nil {
			return err
		}
		merged = primary
		return nil
	})
	if err != nil {
		return facility.Facility{}, err
	}

	composables.UseLogger(ctx).WithFields(map[string]any{
		"primary":   primaryID,
		"duplicate": duplicateID,
	}).Info("facilities merged")
	return merged, nil
}

func facilitySlug(f facility.Facility) string {
	return normalize.Slugify(f.Name() + " " + f.Address())
}
