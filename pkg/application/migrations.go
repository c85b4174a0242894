package application

import (
	"context"
	"embed"
	"io/fs"
	"sort"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SchemaRegistry collects embedded schema files from modules and applies
// them in registration order. Schema files are written to be idempotent
// (CREATE TABLE IF NOT EXISTS and the like), so Apply can run on every boot.
type SchemaRegistry struct {
	filesystems []*embed.FS
}

func NewSchemaRegistry() *SchemaRegistry {
	return &SchemaRegistry{}
}

func (r *SchemaRegistry) RegisterSchema(fsys *embed.FS) {
	r.filesystems = append(r.filesystems, fsys)
}

func (r *SchemaRegistry) Apply(ctx context.Context, pool *pgxpool.Pool) error {
	for _, fsys := range r.filesystems {
		var paths []string
		err := fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && len(path) > 4 && path[len(path)-4:] == ".sql" {
				paths = append(paths, path)
			}
			return nil
		})
		if err != nil {
			return errors.Wrap(err, "walk schema files")
		}
		sort.Strings(paths)
		for _, path := range paths {
			data, err := fsys.ReadFile(path)
			if err != nil {
				return errors.Wrapf(err, "read schema %s", path)
			}
			if _, err := pool.Exec(ctx, string(data)); err != nil {
				return errors.Wrapf(err, "apply schema %s", path)
			}
		}
	}
	return nil
}
