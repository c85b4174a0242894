package excel_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/urnevurnev-lab/ambassador-crm-sub000/pkg/excel"
)

func TestExportSliceDataSource(t *testing.T) {
	ds := excel.NewSliceDataSource(
		[]string{"facility", "visits", "last_visit"},
		[][]any{
			{"Кафе Ромашка", 3, time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)},
			{"Бар Лето", 1, nil},
		},
	).WithSheetName("Visits")

	exporter := excel.NewExcelExporter(nil, nil)
	data, err := exporter.Export(context.Background(), ds)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { require.NoError(t, f.Close()) }()

	rows, err := f.GetRows("Visits")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, []string{"facility", "visits", "last_visit"}, rows[0])
	require.Equal(t, "Кафе Ромашка", rows[1][0])
	require.Equal(t, "2024-06-01 12:00", rows[1][2])
	require.Equal(t, "Бар Лето", rows[2][0])
}

func TestExportEmptySource(t *testing.T) {
	ds := excel.NewSliceDataSource([]string{"a", "b"}, nil)
	exporter := excel.NewExcelExporter(nil, nil)
	data, err := exporter.Export(context.Background(), ds)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { require.NoError(t, f.Close()) }()

	rows, err := f.GetRows("Export")
	require.NoError(t, err)
	require.Len(t, rows, 1)
}
