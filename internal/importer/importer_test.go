package importer

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/urnevurnev-lab/ambassador-crm-sub000/modules/catalog/domain/aggregates/product"
	"github.com/urnevurnev-lab/ambassador-crm-sub000/modules/core/domain/aggregates/user"
	"github.com/urnevurnev-lab/ambassador-crm-sub000/modules/field/domain/aggregates/facility"
	"github.com/urnevurnev-lab/ambassador-crm-sub000/modules/field/domain/aggregates/visit"
	fieldservices "github.com/urnevurnev-lab/ambassador-crm-sub000/modules/field/services"
)

type fakeUsers struct {
	byName map[string]user.User
}

func (f *fakeUsers) GetOrCreateByFullName(_ context.Context, fullName string) (user.User, bool, error) {
	if u, ok := f.byName[fullName]; ok {
		return u, false, nil
	}
	u := user.Hydrate(uuid.New(), fullName, user.PlaceholderChatID, user.RoleAmbassador, time.Now(), time.Now())
	f.byName[fullName] = u
	return u, true, nil
}

type fakeFacilities struct {
	byKey map[string]facility.Facility
}

func (f *fakeFacilities) get(name, address string) (facility.Facility, bool, error) {
	key := name + "|" + address
	if fac, ok := f.byKey[key]; ok {
		return fac, false, nil
	}
	fac := facility.Hydrate(uuid.New(), name, address, 0, 0, false, false, time.Now(), time.Now())
	f.byKey[key] = fac
	return fac, true, nil
}

func (f *fakeFacilities) GetOrCreate(_ context.Context, name, address string) (facility.Facility, bool, error) {
	return f.get(name, address)
}

func (f *fakeFacilities) GetOrCreateService(_ context.Context, kind string) (facility.Facility, bool, error) {
	return f.get(facility.ServicePrefix+kind, "")
}

type fakeProducts struct {
	bySKU map[string]product.Product
}

func (f *fakeProducts) GetOrCreate(_ context.Context, line product.Line, flavor string, category product.Category) (product.Product, bool, error) {
	p := product.New(line, flavor, category)
	if existing, ok := f.bySKU[p.SKU()]; ok {
		return existing, false, nil
	}
	stored := product.Hydrate(uuid.New(), p.SKU(), line, flavor, category, p.Price(), time.Now(), time.Now())
	f.bySKU[p.SKU()] = stored
	return stored, true, nil
}

type fakeVisits struct {
	created []visit.Visit
}

func (f *fakeVisits) CreateRaw(_ context.Context, v visit.Visit) (visit.Visit, error) {
	stored := visit.Hydrate(
		uuid.New(), v.UserID(), v.FacilityID(), v.Kind(), v.VisitedAt(),
		v.Comment(), v.Payload(), v.AvailableProductIDs(), v.TastedProductIDs(), time.Now(),
	)
	f.created = append(f.created, stored)
	return stored, nil
}

type fakeRecomputer struct {
	runs int
}

func (f *fakeRecomputer) Recompute(context.Context) (fieldservices.RecomputeSummary, error) {
	f.runs++
	return fieldservices.RecomputeSummary{}, nil
}

type testEnv struct {
	users      *fakeUsers
	facilities *fakeFacilities
	products   *fakeProducts
	visits     *fakeVisits
	recompute  *fakeRecomputer
	importer   *Importer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		users:      &fakeUsers{byName: make(map[string]user.User)},
		facilities: &fakeFacilities{byKey: make(map[string]facility.Facility)},
		products:   &fakeProducts{bySKU: make(map[string]product.Product)},
		visits:     &fakeVisits{},
		recompute:  &fakeRecomputer{},
	}
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	resolver := NewResolver(env.users, env.facilities, env.products)
	env.importer = NewImporter(resolver, env.visits, env.recompute, logger)
	return env
}

const testHeader = "Амбассадор;Название точки;Адрес;Bliss (шт);White Line;Black Line;Cigar Line;Дата"

func csvInput(rows ...string) Source {
	return NewCSVSource(strings.NewReader(strings.Join(append([]string{testHeader}, rows...), "\n")), ';')
}

func TestRunImportsRowEndToEnd(t *testing.T) {
	env := newTestEnv(t)

	summary, err := env.importer.Run(
		context.Background(),
		csvInput("Иван Петров;Кафе Ромашка;ул. Ленина 1;Ананас,Груша;;;;01.06.2024"),
		DefaultProfile(),
	)
	require.NoError(t, err)

	require.Equal(t, Summary{
		Processed:         1,
		UsersCreated:      1,
		FacilitiesCreated: 1,
		ProductsCreated:   2,
		VisitsCreated:     1,
	}, summary)

	require.Contains(t, env.users.byName, "Иван Петров")
	require.Contains(t, env.facilities.byKey, "Кафе Ромашка|ул. Ленина 1")
	require.Contains(t, env.products.bySKU, "bliss_ananas")
	require.Contains(t, env.products.bySKU, "bliss_grusha")

	require.Len(t, env.visits.created, 1)
	v := env.visits.created[0]
	require.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), v.VisitedAt())
	require.Equal(t, visit.KindImport, v.Kind())
	require.ElementsMatch(t, []uuid.UUID{
		env.products.bySKU["bliss_ananas"].ID(),
		env.products.bySKU["bliss_grusha"].ID(),
	}, v.AvailableProductIDs())
	require.Equal(t, env.users.byName["Иван Петров"].ID(), v.UserID())
	require.Equal(t, 1, env.recompute.runs)
}

func TestRerunDeduplicatesEntitiesButNotVisits(t *testing.T) {
	env := newTestEnv(t)
	row := "Иван Петров;Кафе Ромашка;ул. Ленина 1;Ананас;;;;01.06.2024"

	for i := 0; i < 2; i++ {
		_, err := env.importer.Run(context.Background(), csvInput(row), DefaultProfile())
		require.NoError(t, err)
	}

	require.Len(t, env.users.byName, 1)
	require.Len(t, env.facilities.byKey, 1)
	require.Len(t, env.products.bySKU, 1)
	require.Len(t, env.visits.created, 2)
}

func TestActivityRowSynthesizesServiceFacility(t *testing.T) {
	env := newTestEnv(t)
	profile := DefaultProfile()

	header := testHeader + ";Тип активности"
	src := NewCSVSource(strings.NewReader(
		header+"\n"+"Иван Петров;;;;;;;01.06.2024;Тест",
	), ';')

	summary, err := env.importer.Run(context.Background(), src, profile)
	require.NoError(t, err)
	require.Equal(t, 1, summary.Processed)
	require.Equal(t, 1, summary.FacilitiesCreated)

	require.Len(t, env.visits.created, 1)
	require.Equal(t, visit.KindActivity, env.visits.created[0].Kind())

	var names []string
	for _, f := range env.facilities.byKey {
		names = append(names, f.Name())
	}
	require.Equal(t, []string{facility.ServicePrefix + "Тест"}, names)
}

func TestBlankRowsSkippedSilently(t *testing.T) {
	env := newTestEnv(t)

	summary, err := env.importer.Run(
		context.Background(),
		csvInput(
			";;;;;;;",
			"Иван Петров;Кафе Ромашка;ул. Ленина 1;Ананас;;;;01.06.2024",
		),
		DefaultProfile(),
	)
	require.NoError(t, err)
	require.Equal(t, 1, summary.Processed)
	require.Equal(t, 1, summary.Skipped)
}

func TestStrictDatePolicySkipsUnparseableDates(t *testing.T) {
	env := newTestEnv(t)

	summary, err := env.importer.Run(
		context.Background(),
		csvInput("Иван Петров;Кафе Ромашка;ул. Ленина 1;Ананас;;;;не дата"),
		DefaultProfile(),
	)
	require.NoError(t, err)
	require.Equal(t, 0, summary.Processed)
	require.Equal(t, 1, summary.Skipped)
	require.Empty(t, env.visits.created)
}

func TestLenientDatePolicySubstitutesClock(t *testing.T) {
	env := newTestEnv(t)
	now := time.Date(2024, 7, 15, 10, 30, 0, 0, time.UTC)
	env.importer.clock = func() time.Time { return now }

	profile := DefaultProfile()
	profile.DatePolicy = DatePolicyLenient

	summary, err := env.importer.Run(
		context.Background(),
		csvInput("Иван Петров;Кафе Ромашка;ул. Ленина 1;Ананас;;;;не дата"),
		profile,
	)
	require.NoError(t, err)
	require.Equal(t, 1, summary.Processed)
	require.Len(t, env.visits.created, 1)
	require.Equal(t, now, env.visits.created[0].VisitedAt())
}

func TestMissingRequiredColumnIsFatal(t *testing.T) {
	env := newTestEnv(t)

	src := NewCSVSource(strings.NewReader("Амбассадор;Адрес;Bliss;Дата\nИван;а;б;01.06.2024"), ';')
	_, err := env.importer.Run(context.Background(), src, DefaultProfile())
	require.Error(t, err)
	require.Contains(t, err.Error(), "Название точки")
	require.Empty(t, env.visits.created)
	require.Equal(t, 0, env.recompute.runs)
}

func TestDryRunWritesNothing(t *testing.T) {
	env := newTestEnv(t)
	env.importer.DryRun = true

	summary, err := env.importer.Run(
		context.Background(),
		csvInput("Иван Петров;Кафе Ромашка;ул. Ленина 1;Ананас;;;;01.06.2024"),
		DefaultProfile(),
	)
	require.NoError(t, err)
	require.Equal(t, 1, summary.Processed)
	require.Empty(t, env.users.byName)
	require.Empty(t, env.visits.created)
	require.Equal(t, 0, env.recompute.runs)
}

func TestFindColumnFallsBackToParenthesisPrefix(t *testing.T) {
	header := []string{"Дата", "Bliss (шт)", "White Line (вкусы)"}
	require.Equal(t, 1, findColumn(header, "Bliss"))
	require.Equal(t, 2, findColumn(header, "White Line"))
	require.Equal(t, columnAbsent, findColumn(header, "Black Line"))
}

func TestCSVSourceStripsBOMAndKeepsDelimiter(t *testing.T) {
	src := NewCSVSource(strings.NewReader("\xEF\xBB\xBFa;b\nc;d"), ';')
	rows, err := src.Rows()
	require.NoError(t, err)
	require.Equal(t, [][]string{{"a", "b"}, {"c", "d"}}, rows)
}

func TestSwappedNameAddressRepaired(t *testing.T) {
	env := newTestEnv(t)

	longAddress := "г. Москва, ул. Большая Садовая, д. 302-бис, корпус 5, офис 50"
	src := csvInput("Иван Петров;" + longAddress + ";Кафе Ромашка;Ананас;;;;01.06.2024")

	summary, err := env.importer.Run(context.Background(), src, DefaultProfile())
	require.NoError(t, err)
	require.Equal(t, 1, summary.Processed)
	require.Contains(t, env.facilities.byKey, "Кафе Ромашка|"+longAddress)
}
