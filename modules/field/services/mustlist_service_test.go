package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestRecomputeUsesLatestVisit(t *testing.T) {
	facilities := newFakeFacilityRepo()
	visits := &fakeVisitRepo{}
	svc := NewMustListService(facilities, visits)

	cafe := facilities.add("Кафе Ромашка", "ул. Ленина, 1")
	empty := facilities.add("Бар Лето", "пр. Мира, 5")

	older := []uuid.UUID{uuid.New(), uuid.New()}
	newer := []uuid.UUID{uuid.New()}
	visits.add(cafe.ID(), time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), older)
	visits.add(cafe.ID(), time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), newer)

	summary, err := svc.Recompute(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, summary.FacilitiesProcessed)

	baseline, err := facilities.MustList(context.Background(), cafe.ID())
	require.NoError(t, err)
	require.Equal(t, newer, baseline, "baseline must come from the latest visit, fully replaced")

	untouched, err := facilities.MustList(context.Background(), empty.ID())
	require.NoError(t, err)
	require.Empty(t, untouched, "facilities without visits keep their baseline")
}

func TestRecomputeTiebreaksOnID(t *testing.T) {
	facilities := newFakeFacilityRepo()
	visits := &fakeVisitRepo{}
	svc := NewMustListService(facilities, visits)

	cafe := facilities.add("Кафе Ромашка", "ул. Ленина, 1")
	same := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	first := visits.add(cafe.ID(), same, []uuid.UUID{uuid.New()})
	second := visits.add(cafe.ID(), same, []uuid.UUID{uuid.New()})

	_, err := svc.Recompute(context.Background())
	require.NoError(t, err)

	want := first.AvailableProductIDs()
	if second.ID().String() > first.ID().String() {
		want = second.AvailableProductIDs()
	}
	baseline, err := facilities.MustList(context.Background(), cafe.ID())
	require.NoError(t, err)
	require.Equal(t, want, baseline)
}

func TestGapSetDifference(t *testing.T) {
	facilities := newFakeFacilityRepo()
	visits := &fakeVisitRepo{}
	svc := NewMustListService(facilities, visits)

	cafe := facilities.add("Кафе Ромашка", "ул. Ленина, 1")
	kept := uuid.New()
	missing := uuid.New()
	require.NoError(t, facilities.ReplaceMustList(context.Background(), cafe.ID(), []uuid.UUID{kept, missing}))
	visits.add(cafe.ID(), time.Now(), []uuid.UUID{kept})

	report, err := svc.Gap(context.Background(), cafe.ID())
	require.NoError(t, err)
	require.Equal(t, []uuid.UUID{missing}, report.Missing)
	require.InDelta(t, 50.0, report.CompletionPercent, 0.01)
}

func TestGapWithoutVisitsIsFullyMissing(t *testing.T) {
	facilities := newFakeFacilityRepo()
	visits := &fakeVisitRepo{}
	svc := NewMustListService(facilities, visits)

	cafe := facilities.add("Кафе Ромашка", "ул. Ленина, 1")
	baseline := []uuid.UUID{uuid.New(), uuid.New()}
	require.NoError(t, facilities.ReplaceMustList(context.Background(), cafe.ID(), baseline))

	report, err := svc.Gap(context.Background(), cafe.ID())
	require.NoError(t, err)
	require.Equal(t, baseline, report.Missing)
	require.Zero(t, report.CompletionPercent)
}

func TestGapEmptyBaselineIsComplete(t *testing.T) {
	facilities := newFakeFacilityRepo()
	visits := &fakeVisitRepo{}
	svc := NewMustListService(facilities, visits)

	cafe := facilities.add("Кафе Ромашка", "ул. Ленина, 1")

	report, err := svc.Gap(context.Background(), cafe.ID())
	require.NoError(t, err)
	require.Empty(t, report.Missing)
	require.InDelta(t, 100.0, report.CompletionPercent, 0.01)
}
