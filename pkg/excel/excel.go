// Package excel renders tabular data sources into XLSX workbooks.
package excel

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
)

// DataSource feeds rows to the exporter. Rows returns nil when exhausted.
type DataSource interface {
	Headers() []string
	Rows(ctx context.Context) (func() ([]any, error), error)
	SheetName() string
}

type ExportOptions struct {
	IncludeHeaders bool
	AutoFilter     bool
	FreezeHeader   bool
	DateFormat     string
}

func DefaultExportOptions() *ExportOptions {
	return &ExportOptions{
		IncludeHeaders: true,
		AutoFilter:     true,
		FreezeHeader:   true,
		DateFormat:     "2006-01-02 15:04",
	}
}

type StyleOptions struct {
	HeaderBold      bool
	HeaderFillColor string
	ColumnAutoWidth bool
}

func DefaultStyleOptions() *StyleOptions {
	return &StyleOptions{
		HeaderBold:      true,
		HeaderFillColor: "DDEBF7",
		ColumnAutoWidth: true,
	}
}

type Exporter struct {
	exportOpts *ExportOptions
	styleOpts  *StyleOptions
}

func NewExcelExporter(exportOpts *ExportOptions, styleOpts *StyleOptions) *Exporter {
	if exportOpts == nil {
		exportOpts = DefaultExportOptions()
	}
	if styleOpts == nil {
		styleOpts = DefaultStyleOptions()
	}
	return &Exporter{exportOpts: exportOpts, styleOpts: styleOpts}
}

func (e *Exporter) Export(ctx context.Context, ds DataSource) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := ds.SheetName()
	if sheet == "" {
		sheet = "Sheet1"
	}
	idx, err := f.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	if sheet != "Sheet1" {
		_ = f.DeleteSheet("Sheet1")
	}

	// Open the source before asking for headers: the pgx source only
	// learns its column names from the executed query.
	next, err := ds.Rows(ctx)
	if err != nil {
		return nil, fmt.Errorf("open data source: %w", err)
	}

	headers := ds.Headers()
	rowNum := 1
	maxWidths := make([]int, len(headers))

	if e.exportOpts.IncludeHeaders {
		for col, header := range headers {
			cell, err := excelize.CoordinatesToCellName(col+1, rowNum)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, header); err != nil {
				return nil, err
			}
			if len(header) > maxWidths[col] {
				maxWidths[col] = len(header)
			}
		}
		if err := e.styleHeader(f, sheet, len(headers)); err != nil {
			return nil, err
		}
		rowNum++
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row, err := next()
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		if row == nil {
			break
		}
		for col, value := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, rowNum)
			if err != nil {
				return nil, err
			}
			value = e.normalizeValue(value)
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, err
			}
			if col < len(maxWidths) {
				if width := len(fmt.Sprint(value)); width > maxWidths[col] {
					maxWidths[col] = width
				}
			}
		}
		rowNum++
	}

	if e.exportOpts.AutoFilter && e.exportOpts.IncludeHeaders && len(headers) > 0 && rowNum > 2 {
		lastCell, _ := excelize.CoordinatesToCellName(len(headers), rowNum-1)
		_ = f.AutoFilter(sheet, "A1:"+lastCell, nil)
	}
	if e.exportOpts.FreezeHeader && e.exportOpts.IncludeHeaders {
		_ = f.SetPanes(sheet, &excelize.Panes{
			Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft",
		})
	}
	if e.styleOpts.ColumnAutoWidth {
		for col, width := range maxWidths {
			name, _ := excelize.ColumnNumberToName(col + 1)
			w := float64(width) + 2
			if w > 60 {
				w = 60
			}
			_ = f.SetColWidth(sheet, name, name, w)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func (e *Exporter) styleHeader(f *excelize.File, sheet string, cols int) error {
	if cols == 0 || (!e.styleOpts.HeaderBold && e.styleOpts.HeaderFillColor == "") {
		return nil
	}
	style := &excelize.Style{}
	if e.styleOpts.HeaderBold {
		style.Font = &excelize.Font{Bold: true}
	}
	if e.styleOpts.HeaderFillColor != "" {
		style.Fill = excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{e.styleOpts.HeaderFillColor}}
	}
	styleID, err := f.NewStyle(style)
	if err != nil {
		return err
	}
	lastCell, err := excelize.CoordinatesToCellName(cols, 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", lastCell, styleID)
}

func (e *Exporter) normalizeValue(value any) any {
	switch v := value.(type) {
	case time.Time:
		return v.Format(e.exportOpts.DateFormat)
	case *time.Time:
		if v == nil {
			return ""
		}
		return v.Format(e.exportOpts.DateFormat)
	case nil:
		return ""
	default:
		return value
	}
}
