package services

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/urnevurnev-lab/ambassador-crm-sub000/modules/field/domain/aggregates/visit"
	"github.com/urnevurnev-lab/ambassador-crm-sub000/pkg/composables"
	"github.com/urnevurnev-lab/ambassador-crm-sub000/pkg/metrics"
)

// mustListFacilities is the slice of the facility repository the
// recompute needs.
type mustListFacilities interface {
	MustList(ctx context.Context, facilityID uuid.UUID) ([]uuid.UUID, error)
	ReplaceMustList(ctx context.Context, facilityID uuid.UUID, productIDs []uuid.UUID) error
}

type mustListVisits interface {
	LatestByFacility(ctx context.Context, facilityID uuid.UUID) (visit.Visit, error)
	FacilityIDsWithVisits(ctx context.Context) ([]uuid.UUID, error)
}

type MustListService struct {
	facilities mustListFacilities
	visits     mustListVisits
}

func NewMustListService(facilities mustListFacilities, visits mustListVisits) *MustListService {
	return &MustListService{facilities: facilities, visits: visits}
}

type RecomputeSummary struct {
	FacilitiesProcessed int `json:"facilitiesProcessed"`
}

// Recompute rebuilds every baseline from the latest visit. Each facility
// with at least one visit is processed exactly once; facilities without
// visits keep their baseline untouched. The baseline is fully replaced,
// never merged.
func (s *MustListService) Recompute(ctx context.Context) (RecomputeSummary, error) {
	facilityIDs, err := s.visits.FacilityIDsWithVisits(ctx)
	if err != nil {
		return RecomputeSummary{}, err
	}

	summary := RecomputeSummary{}
	for _, facilityID := range facilityIDs {
		latest, err := s.visits.LatestByFacility(ctx, facilityID)
		if err != nil {
			if errors.Is(err, visit.ErrNotFound) {
				continue
			}
			return summary, err
		}
		if err := s.facilities.ReplaceMustList(ctx, facilityID, latest.AvailableProductIDs()); err != nil {
			return summary, err
		}
		summary.FacilitiesProcessed++
	}

	metrics.MustListRecomputesTotal.Inc()
	composables.UseLogger(ctx).WithField("facilities", summary.FacilitiesProcessed).Info("must list recomputed")
	return summary, nil
}

type GapReport struct {
	FacilityID        uuid.UUID   `json:"facilityId"`
	Baseline          []uuid.UUID `json:"baseline"`
	Missing           []uuid.UUID `json:"missing"`
	CompletionPercent float64     `json:"completionPercent"`
}

// Gap compares the baseline against the latest visit's available set.
// A facility without visits is fully non-compliant.
func (s *MustListService) Gap(ctx context.Context, facilityID uuid.UUID) (GapReport, error) {
	baseline, err := s.facilities.MustList(ctx, facilityID)
	if err != nil {
		return GapReport{}, err
	}

	report := GapReport{FacilityID: facilityID, Baseline: baseline}
	if len(baseline) == 0 {
		report.CompletionPercent = 100
		report.Missing = []uuid.UUID{}
		return report, nil
	}

	have := map[uuid.UUID]struct{}{}
	latest, err := s.visits.LatestByFacility(ctx, facilityID)
	if err != nil && !errors.Is(err, visit.ErrNotFound) {
		return GapReport{}, err
	}
	if err == nil {
		for _, id := range latest.AvailableProductIDs() {
			have[id] = struct{}{}
		}
	}

	missing := []uuid.UUID{}
	for _, id := range baseline {
		if _, ok := have[id]; !ok {
			missing = append(missing, id)
		}
	}
	report.Missing = missing
	report.CompletionPercent = float64(len(baseline)-len(missing)) / float64(len(baseline)) * 100
	return report, nil
}
