package excel

import "context"

// SliceDataSource serves pre-built rows. Useful for reports assembled in
// memory and for tests.
type SliceDataSource struct {
	headers   []string
	rows      [][]any
	sheetName string
}

func NewSliceDataSource(headers []string, rows [][]any) *SliceDataSource {
	return &SliceDataSource{headers: headers, rows: rows, sheetName: "Export"}
}

func (d *SliceDataSource) WithSheetName(name string) *SliceDataSource {
	d.sheetName = name
	return d
}

func (d *SliceDataSource) Headers() []string { return d.headers }
func (d *SliceDataSource) SheetName() string { return d.sheetName }

func (d *SliceDataSource) Rows(_ context.Context) (func() ([]any, error), error) {
	i := 0
	return func() ([]any, error) {
		if i >= len(d.rows) {
			return nil, nil
		}
		row := d.rows[i]
		i++
		return row, nil
	}, nil
}

var _ DataSource = (*SliceDataSource)(nil)
