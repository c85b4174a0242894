package services

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/urnevurnev-lab/ambassador-crm-sub000/modules/field/domain/aggregates/facility"
	"github.com/urnevurnev-lab/ambassador-crm-sub000/pkg/excel"
)

const visitReportSQL = `
SELECT
    u.full_name AS ambassador,
    f.name AS facility,
    f.address AS address,
    v.kind AS kind,
    v.visited_at AS visited_at,
    v.comment AS comment,
    (SELECT COUNT(*) FROM visit_available_products vap WHERE vap.visit_id = v.id) AS available_products,
    (SELECT COUNT(*) FROM visit_tasted_products vtp WHERE vtp.visit_id = v.id) AS tasted_products
FROM visits v
JOIN users u ON u.id = v.user_id
JOIN facilities f ON f.id = v.facility_id
ORDER BY v.visited_at DESC, v.id DESC`

type ReportService struct {
	pool       *pgxpool.Pool
	facilities facility.Repository
	mustList   *MustListService
}

func NewReportService(pool *pgxpool.Pool, facilities facility.Repository, mustList *MustListService) *ReportService {
	return &ReportService{pool: pool, facilities: facilities, mustList: mustList}
}

// VisitReport exports all visits joined with ambassadors and facilities.
func (s *ReportService) VisitReport(ctx context.Context) ([]byte, error) {
	datasource := excel.NewPgxDataSource(s.pool, visitReportSQL).WithSheetName("Visits")
	exporter := excel.NewExcelExporter(excel.DefaultExportOptions(), excel.DefaultStyleOptions())
	data, err := exporter.Export(ctx, datasource)
	if err != nil {
		return nil, fmt.Errorf("export visit report: %w", err)
	}
	return data, nil
}

// ComplianceReport exports the must-list gap per facility.
func (s *ReportService) ComplianceReport(ctx context.Context) ([]byte, error) {
	facilities, err := s.facilities.GetAll(ctx, false)
	if err != nil {
		return nil, err
	}

	rows := make([][]any, 0, len(facilities))
	for _, f := range facilities {
		gap, err := s.mustList.Gap(ctx, f.ID())
		if err != nil {
			return nil, fmt.Errorf("gap for %s: %w", f.ID(), err)
		}
		rows = append(rows, []any{
			f.Name(),
			f.Address(),
			len(gap.Baseline),
			len(gap.Missing),
			gap.CompletionPercent,
		})
	}

	datasource := excel.NewSliceDataSource(
		[]string{"facility", "address", "baseline", "missing", "completion_percent"},
		rows,
	).WithSheetName("Compliance")
	exporter := excel.NewExcelExporter(excel.DefaultExportOptions(), excel.DefaultStyleOptions())
	data, err := exporter.Export(ctx, datasource)
	if err != nil {
		return nil, fmt.Errorf("export compliance report: %w", err)
	}
	return data, nil
}
