package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func newMergeServiceForTest(facilities *fakeFacilityRepo, visits *fakeVisitRepo) *FacilityMergeService {
	svc := NewFacilityMergeService(facilities, visits)
	svc.inTx = func(ctx context.Context, fn func(context.Context) error) error {
		return fn(ctx)
	}
	return svc
}

type fakeRelinker struct {
	calls [][2]uuid.UUID
}

func (r *fakeRelinker) RelinkFacility(_ context.Context, from, to uuid.UUID) error {
	r.calls = append(r.calls, [2]uuid.UUID{from, to})
	return nil
}

func TestMergeRepointsVisitsAndDeletesDuplicate(t *testing.T) {
	facilities := newFakeFacilityRepo()
	visits := &fakeVisitRepo{}
	svc := newMergeServiceForTest(facilities, visits)

	primary := facilities.add("Кафе Ромашка", "ул. Ленина, 1")
	duplicate := facilities.add("Кафе Ромашка", "ул. Ленина, д. 1")
	visits.add(duplicate.ID(), time.Now(), nil)

	relinker := &fakeRelinker{}
	svc.AddRelinker(relinker)

	merged, err := svc.Merge(context.Background(), primary.ID(), duplicate.ID())
	require.NoError(t, err)
	require.Equal(t, primary.ID(), merged.ID())

	for _, v := range visits.visits {
		require.Equal(t, primary.ID(), v.FacilityID())
	}
	require.Contains(t, facilities.deleted, duplicate.ID())
	require.Equal(t, [][2]uuid.UUID{{duplicate.ID(), primary.ID()}}, relinker.calls)
}

func TestMergeRejectsSelfAndService(t *testing.T) {
	facilities := newFakeFacilityRepo()
	visits := &fakeVisitRepo{}
	svc := newMergeServiceForTest(facilities, visits)

	primary := facilities.add("Кафе Ромашка", "ул. Ленина, 1")
	service := facilities.add("@service:activity", "")

	_, err := svc.Merge(context.Background(), primary.ID(), primary.ID())
	require.ErrorIs(t, err, ErrMergeSelf)

	_, err = svc.Merge(context.Background(), primary.ID(), service.ID())
	require.ErrorIs(t, err, ErrMergeService)
}

func TestCandidatesRanksByDistance(t *testing.T) {
	facilities := newFakeFacilityRepo()
	visits := &fakeVisitRepo{}
	svc := newMergeServiceForTest(facilities, visits)

	target := facilities.add("Кафе Ромашка", "ул. Ленина, 1")
	near := facilities.add("Кафе Ромашка", "ул. Ленина, д. 1")
	far := facilities.add("Суши Бар Токио", "пр. Мира, 99")
	facilities.add("@service:activity", "")

	candidates, err := svc.Candidates(context.Background(), target.ID(), 10)
	require.NoError(t, err)
	require.Len(t, candidates, 2, "service facilities never appear")
	require.Equal(t, near.ID(), candidates[0].Facility.ID())
	require.Equal(t, far.ID(), candidates[1].Facility.ID())
	require.Less(t, candidates[0].Distance, candidates[1].Distance)
}
