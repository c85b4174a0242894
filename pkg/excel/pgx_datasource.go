package excel

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxDataSource streams a SQL query's result set as export rows. Column
// header names come from the query's field descriptions.
type PgxDataSource struct {
	pool      *pgxpool.Pool
	query     string
	args      []any
	sheetName string
	headers   []string
}

func NewPgxDataSource(pool *pgxpool.Pool, query string, args ...any) *PgxDataSource {
	return &PgxDataSource{pool: pool, query: query, args: args, sheetName: "Export"}
}

func (d *PgxDataSource) WithSheetName(name string) *PgxDataSource {
	d.sheetName = name
	return d
}

func (d *PgxDataSource) SheetName() string { return d.sheetName }

// Headers is only populated after Rows has been called; the exporter
// calls Rows first when headers are empty.
func (d *PgxDataSource) Headers() []string { return d.headers }

func (d *PgxDataSource) Rows(ctx context.Context) (func() ([]any, error), error) {
	rows, err := d.pool.Query(ctx, d.query, d.args...)
	if err != nil {
		return nil, fmt.Errorf("query export rows: %w", err)
	}
	fields := rows.FieldDescriptions()
	d.headers = make([]string, len(fields))
	for i, fd := range fields {
		d.headers[i] = fd.Name
	}
	return func() ([]any, error) {
		if !rows.Next() {
			err := rows.Err()
			rows.Close()
			if err != nil {
				return nil, err
			}
			return nil, nil
		}
		values, err := rows.Values()
		if err != nil {
			rows.Close()
			return nil, err
		}
		return values, nil
	}, nil
}

var _ DataSource = (*PgxDataSource)(nil)
