package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/urnevurnev-lab/ambassador-crm-sub000/modules/field/domain/aggregates/facility"
	"github.com/urnevurnev-lab/ambassador-crm-sub000/pkg/composables"
)

const facilityColumns = "id, name, address, latitude, longitude, verified, created_at, updated_at"

type FacilityRepository struct{}

func NewFacilityRepository() facility.Repository {
	return &FacilityRepository{}
}

func (r *FacilityRepository) GetPaginated(ctx context.Context, params *facility.FindParams) ([]facility.Facility, int64, error) {
	if params == nil {
		params = &facility.FindParams{}
	}
	q, err := composables.UseQuerier(ctx)
	if err != nil {
		return nil, 0, err
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := params.Offset
	if offset < 0 {
		offset = 0
	}

	where := []string{"true"}
	args := []any{}
	if !params.IncludeService {
		args = append(args, facility.ServicePrefix+"%")
		where = append(where, fmt.Sprintf("name NOT LIKE $%d", len(args)))
	}
	if search := strings.TrimSpace(params.Q); search != "" {
		args = append(args, "%"+search+"%")
		where = append(where, fmt.Sprintf("(name ILIKE $%d OR address ILIKE $%d)", len(args), len(args)))
	}
	if params.Verified != nil {
		args = append(args, *params.Verified)
		where = append(where, fmt.Sprintf("verified = $%d", len(args)))
	}
	cond := strings.Join(where, " AND ")

	var total int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*) FROM facilities WHERE "+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count facilities: %w", err)
	}

	args = append(args, limit, offset)
	query := fmt.Sprintf(
		"SELECT %s FROM facilities WHERE %s ORDER BY name ASC LIMIT $%d OFFSET $%d",
		facilityColumns, cond, len(args)-1, len(args),
	)
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list facilities: %w", err)
	}
	defer rows.Close()

	var out []facility.Facility
	for rows.Next() {
		f, err := scanFacility(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, f)
	}
	return out, total, rows.Err()
}

func (r *FacilityRepository) GetByID(ctx context.Context, id uuid.UUID) (facility.Facility, error) {
	q, err := composables.UseQuerier(ctx)
	if err != nil {
		return facility.Facility{}, err
	}
	row := q.QueryRow(ctx, "SELECT "+facilityColumns+" FROM facilities WHERE id = $1", pgUUID(id))
	return scanFacilityRow(row)
}

func (r *FacilityRepository) GetByNameAddress(ctx context.Context, name, address string) (facility.Facility, error) {
	q, err := composables.UseQuerier(ctx)
	if err != nil {
		return facility.Facility{}, err
	}
	row := q.QueryRow(ctx,
		"SELECT "+facilityColumns+" FROM facilities WHERE name = $1 AND address = $2",
		strings.TrimSpace(name), strings.TrimSpace(address),
	)
	return scanFacilityRow(row)
}

func (r *FacilityRepository) GetAll(ctx context.Context, includeService bool) ([]facility.Facility, error) {
	q, err := composables.UseQuerier(ctx)
	if err != nil {
		return nil, err
	}
	query := "SELECT " + facilityColumns + " FROM facilities"
	args := []any{}
	if !includeService {
		query += " WHERE name NOT LIKE $1"
		args = append(args, facility.ServicePrefix+"%")
	}
	query += " ORDER BY name ASC"
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list all facilities: %w", err)
	}
	defer rows.Close()

	var out []facility.Facility
	for rows.Next() {
		f, err := scanFacility(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (r *FacilityRepository) Create(ctx context.Context, f facility.Facility) (facility.Facility, error) {
	q, err := composables.UseQuerier(ctx)
	if err != nil {
		return facility.Facility{}, err
	}
	var lat, lon any
	if f.HasCoords() {
		lat, lon = f.Latitude(), f.Longitude()
	}
	row := q.QueryRow(ctx,
		`INSERT INTO facilities (name, address, latitude, longitude, verified)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+facilityColumns,
		f.Name(), f.Address(), lat, lon, f.Verified(),
	)
	created, err := scanFacilityRow(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return facility.Facility{}, facility.ErrDuplicate
		}
		return facility.Facility{}, fmt.Errorf("create facility: %w", err)
	}
	return created, nil
}

func (r *FacilityRepository) Update(ctx context.Context, f facility.Facility) (facility.Facility, error) {
	q, err := composables.UseQuerier(ctx)
	if err != nil {
		return facility.Facility{}, err
	}
	var lat, lon any
	if f.HasCoords() {
		lat, lon = f.Latitude(), f.Longitude()
	}
	row := q.QueryRow(ctx,
		`UPDATE facilities
		 SET name = $2, address = $3, latitude = $4, longitude = $5, verified = $6, updated_at = now()
		 WHERE id = $1
		 RETURNING `+facilityColumns,
		pgUUID(f.ID()), f.Name(), f.Address(), lat, lon, f.Verified(),
	)
	updated, err := scanFacilityRow(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return facility.Facility{}, facility.ErrDuplicate
		}
		return facility.Facility{}, err
	}
	return updated, nil
}

func (r *FacilityRepository) Delete(ctx context.Context, id uuid.UUID) error {
	q, err := composables.UseQuerier(ctx)
	if err != nil {
		return err
	}
	tag, err := q.Exec(ctx, "DELETE FROM facilities WHERE id = $1", pgUUID(id))
	if err != nil {
		return fmt.Errorf("delete facility: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return facility.ErrNotFound
	}
	return nil
}

func (r *FacilityRepository) MustList(ctx context.Context, facilityID uuid.UUID) ([]uuid.UUID, error) {
	q, err := composables.UseQuerier(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := q.Query(ctx,
		"SELECT product_id FROM facility_must_products WHERE facility_id = $1",
		pgUUID(facilityID),
	)
	if err != nil {
		return nil, fmt.Errorf("load must list: %w", err)
	}
	defer rows.Close()
	return scanUUIDs(rows)
}

// ReplaceMustList overwrites the baseline set, never merges.
func (r *FacilityRepository) ReplaceMustList(ctx context.Context, facilityID uuid.UUID, productIDs []uuid.UUID) error {
	q, err := composables.UseQuerier(ctx)
	if err != nil {
		return err
	}
	if _, err := q.Exec(ctx,
		"DELETE FROM facility_must_products WHERE facility_id = $1",
		pgUUID(facilityID),
	); err != nil {
		return fmt.Errorf("clear must list: %w", err)
	}
	for _, productID := range productIDs {
		if _, err := q.Exec(ctx,
			`INSERT INTO facility_must_products (facility_id, product_id)
			 VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			pgUUID(facilityID), pgUUID(productID),
		); err != nil {
			return fmt.Errorf("insert must list row: %w", err)
		}
	}
	return nil
}

func scanUUIDs(rows pgx.Rows) ([]uuid.UUID, error) {
	var out []uuid.UUID
	for rows.Next() {
		var id pgtype.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, uuid.UUID(id.Bytes))
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFacility(row rowScanner) (facility.Facility, error) {
	var (
		id        pgtype.UUID
		name      string
		address   string
		lat       pgtype.Float8
		lon       pgtype.Float8
		verified  bool
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
	)
	if err := row.Scan(&id, &name, &address, &lat, &lon, &verified, &createdAt, &updatedAt); err != nil {
		return facility.Facility{}, err
	}
	return facility.Hydrate(
		uuid.UUID(id.Bytes),
		name,
		address,
		lat.Float64,
		lon.Float64,
		lat.Valid && lon.Valid,
		verified,
		createdAt.Time,
		updatedAt.Time,
	), nil
}

func scanFacilityRow(row rowScanner) (facility.Facility, error) {
	f, err := scanFacility(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return facility.Facility{}, facility.ErrNotFound
		}
		return facility.Facility{}, err
	}
	return f, nil
}
