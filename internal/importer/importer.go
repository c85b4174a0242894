// Package importer ingests distributor spreadsheets (CSV or XLSX) and
// normalizes their rows into users, facilities, products and visits.
// Entities deduplicate by natural key across and within runs; visits are
// append-only, so re-importing the same file doubles the visit count.
package importer

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/urnevurnev-lab/ambassador-crm-sub000/modules/catalog/domain/aggregates/product"
	"github.com/urnevurnev-lab/ambassador-crm-sub000/modules/field/domain/aggregates/visit"
	fieldservices "github.com/urnevurnev-lab/ambassador-crm-sub000/modules/field/services"
	"github.com/urnevurnev-lab/ambassador-crm-sub000/pkg/metrics"
	"github.com/urnevurnev-lab/ambassador-crm-sub000/pkg/normalize"
)

// columnAbsent marks an optional column the header did not carry.
const columnAbsent = -1

type visitRecorder interface {
	CreateRaw(ctx context.Context, v visit.Visit) (visit.Visit, error)
}

type mustListRecomputer interface {
	Recompute(ctx context.Context) (fieldservices.RecomputeSummary, error)
}

type Summary struct {
	Processed         int `json:"processed"`
	Skipped           int `json:"skipped"`
	UsersCreated      int `json:"users_created"`
	FacilitiesCreated int `json:"facilities_created"`
	ProductsCreated   int `json:"products_created"`
	VisitsCreated     int `json:"visits_created"`
}

// Importer runs the single-pass import pipeline. One run is single-writer
// by construction; concurrent runs against the same storage are not safe
// and callers must serialize them.
type Importer struct {
	resolver *Resolver
	visits   visitRecorder
	mustList mustListRecomputer
	logger   *logrus.Logger

	// DryRun parses and validates the file without touching storage.
	DryRun bool

	clock func() time.Time
}

func NewImporter(
	resolver *Resolver,
	visits visitRecorder,
	mustList mustListRecomputer,
	logger *logrus.Logger,
) *Importer {
	return &Importer{
		resolver: resolver,
		visits:   visits,
		mustList: mustList,
		logger:   logger,
		clock:    time.Now,
	}
}

// lineBinding pairs a bound column index with the line its flavors belong to.
type lineBinding struct {
	label string
	line  product.Line
	index int
}

type binding struct {
	date     int
	user     int
	name     int
	address  int
	comment  int
	activity int
	lines    []lineBinding
}

// errRowSkipped marks rows dropped by policy rather than by failure.
var errRowSkipped = errors.New("row skipped")

// Run executes one import. Header problems on required columns abort the
// run before any row is touched; a failing row is logged and skipped, never
// fatal. Finishes with a must-list recompute unless dry-running.
func (im *Importer) Run(ctx context.Context, source Source, profile *Profile) (Summary, error) {
	var summary Summary

	if err := profile.Validate(); err != nil {
		metrics.ImportRunsTotal.WithLabelValues("failed").Inc()
		return summary, err
	}
	rows, err := source.Rows()
	if err != nil {
		metrics.ImportRunsTotal.WithLabelValues("failed").Inc()
		return summary, err
	}
	if len(rows) == 0 {
		metrics.ImportRunsTotal.WithLabelValues("failed").Inc()
		return summary, errors.New("input has no header row")
	}

	bound, err := bindHeader(rows[0], profile)
	if err != nil {
		metrics.ImportRunsTotal.WithLabelValues("failed").Inc()
		return summary, err
	}

	for i, row := range rows[1:] {
		// 1-based file line, header included, for operator-facing logs.
		rowNum := i + 2
		if err := im.processRow(ctx, row, bound, profile, &summary); err != nil {
			summary.Skipped++
			metrics.ImportRowsTotal.WithLabelValues("skipped").Inc()
			if !errors.Is(err, errRowSkipped) {
				im.logger.WithField("row", rowNum).WithError(err).Warn("import: row skipped")
			}
			continue
		}
		summary.Processed++
		metrics.ImportRowsTotal.WithLabelValues("processed").Inc()
	}

	if !im.DryRun {
		if _, err := im.mustList.Recompute(ctx); err != nil {
			metrics.ImportRunsTotal.WithLabelValues("failed").Inc()
			return summary, errors.Wrap(err, "must-list recompute")
		}
	}

	metrics.ImportRunsTotal.WithLabelValues("ok").Inc()
	return summary, nil
}

// processRow handles one data row. A panic anywhere inside counts as a row
// failure, not a run failure.
func (im *Importer) processRow(
	ctx context.Context,
	row []string,
	bound binding,
	profile *Profile,
	summary *Summary,
) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("panic: %v", r)
		}
	}()

	rawUser := cell(row, bound.user)
	rawName := cell(row, bound.name)
	rawAddress := cell(row, bound.address)
	rawActivity := cell(row, bound.activity)

	// Blank separator rows are dropped without a warning.
	if rawUser == "" && rawName == "" && rawActivity == "" {
		return errRowSkipped
	}
	if rawUser == "" {
		return errors.New("ambassador name is empty")
	}

	visitedAt, ok := normalize.ParseFlexibleDate(cell(row, bound.date))
	if !ok {
		if profile.DatePolicy == DatePolicyStrict {
			return errors.Errorf("unparseable date %q", cell(row, bound.date))
		}
		visitedAt = im.clock().UTC()
	}

	rawName, rawAddress = normalize.RepairSwappedNameAddress(rawName, rawAddress, profile.SwapThreshold)

	if im.DryRun {
		return nil
	}

	userID, created, err := im.resolver.ResolveUser(ctx, rawUser)
	if err != nil {
		return errors.Wrap(err, "resolve user")
	}
	if created {
		summary.UsersCreated++
		metrics.EntitiesCreatedTotal.WithLabelValues("user").Inc()
	}

	kind := visit.KindImport
	var facilityID uuid.UUID
	switch {
	case rawName != "":
		facilityID, created, err = im.resolver.ResolveFacility(ctx, rawName, rawAddress)
	case rawActivity != "":
		kind = visit.KindActivity
		facilityID, created, err = im.resolver.ResolveServiceFacility(ctx, rawActivity)
	default:
		return errors.New("row has neither a facility nor an activity")
	}
	if err != nil {
		return errors.Wrap(err, "resolve facility")
	}
	if created {
		summary.FacilitiesCreated++
		metrics.EntitiesCreatedTotal.WithLabelValues("facility").Inc()
	}

	productIDs, createdProducts, err := im.resolveRowProducts(ctx, row, bound, profile)
	if err != nil {
		return err
	}
	summary.ProductsCreated += createdProducts

	v := visit.New(userID, facilityID, kind, visitedAt, cell(row, bound.comment), nil, productIDs, nil)
	if _, err := im.visits.CreateRaw(ctx, v); err != nil {
		return errors.Wrap(err, "create visit")
	}
	summary.VisitsCreated++
	metrics.EntitiesCreatedTotal.WithLabelValues("visit").Inc()
	return nil
}

func (im *Importer) resolveRowProducts(
	ctx context.Context,
	row []string,
	bound binding,
	profile *Profile,
) ([]uuid.UUID, int, error) {
	var (
		ids          []uuid.UUID
		createdCount int
		seen         = make(map[uuid.UUID]struct{})
	)
	for _, lb := range bound.lines {
		for _, flavor := range normalize.SplitFlavors(cell(row, lb.index), profile.FlavorSeparators) {
			id, created, err := im.resolver.ResolveProduct(ctx, lb.line, flavor)
			if err != nil {
				return nil, 0, errors.Wrapf(err, "resolve product %s/%s", lb.label, flavor)
			}
			if created {
				createdCount++
				metrics.EntitiesCreatedTotal.WithLabelValues("product").Inc()
			}
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	return ids, createdCount, nil
}

// bindHeader locates column indices. Required columns that bind nowhere are
// fatal; optional ones fall back to the absent sentinel.
func bindHeader(header []string, profile *Profile) (binding, error) {
	bound := binding{
		date:     findColumn(header, profile.Columns.Date),
		user:     findColumn(header, profile.Columns.User),
		name:     findColumn(header, profile.Columns.FacilityName),
		address:  findColumn(header, profile.Columns.FacilityAddress),
		comment:  findColumn(header, profile.Columns.Comment),
		activity: findColumn(header, profile.Columns.Activity),
	}

	required := map[string]int{
		profile.Columns.Date:            bound.date,
		profile.Columns.User:            bound.user,
		profile.Columns.FacilityName:    bound.name,
		profile.Columns.FacilityAddress: bound.address,
	}
	for label, idx := range required {
		if idx == columnAbsent {
			return binding{}, errors.Errorf("required column %q not found in header", label)
		}
	}

	for label, lineLabel := range profile.LineColumns {
		idx := findColumn(header, label)
		if idx == columnAbsent {
			continue
		}
		bound.lines = append(bound.lines, lineBinding{
			label: label,
			line:  product.ParseLine(lineLabel),
			index: idx,
		})
	}
	if len(bound.lines) == 0 {
		return binding{}, errors.New("no product line columns found in header")
	}
	// Map iteration order is random; keep file column order for the row loop.
	sort.Slice(bound.lines, func(i, j int) bool { return bound.lines[i].index < bound.lines[j].index })
	return bound, nil
}

// findColumn matches exactly first, then retries against the header text
// before any parenthesis so "Bliss (шт)" still binds to "Bliss".
func findColumn(header []string, label string) int {
	if label == "" {
		return columnAbsent
	}
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), label) {
			return i
		}
	}
	for i, h := range header {
		prefix, _, _ := strings.Cut(h, "(")
		if strings.EqualFold(strings.TrimSpace(prefix), label) {
			return i
		}
	}
	return columnAbsent
}

func cell(row []string, idx int) string {
	if idx == columnAbsent || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
