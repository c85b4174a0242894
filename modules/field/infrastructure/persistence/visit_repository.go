package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/urnevurnev-lab/ambassador-crm-sub000/modules/field/domain/aggregates/visit"
	"github.com/urnevurnev-lab/ambassador-crm-sub000/pkg/composables"
)

const visitColumns = "id, user_id, facility_id, kind, visited_at, comment, payload, created_at"

type VisitRepository struct{}

func NewVisitRepository() visit.Repository {
	return &VisitRepository{}
}

func (r *VisitRepository) GetPaginated(ctx context.Context, params *visit.FindParams) ([]visit.Visit, int64, error) {
	if params == nil {
		params = &visit.FindParams{}
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
	if params.UserID != uuid.Nil {
		args = append(args, pgUUID(params.UserID))
		where = append(where, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if params.FacilityID != uuid.Nil {
		args = append(args, pgUUID(params.FacilityID))
		where = append(where, fmt.Sprintf("facility_id = $%d", len(args)))
	}
	if !params.From.IsZero() {
		args = append(args, params.From)
		where = append(where, fmt.Sprintf("visited_at >= $%d", len(args)))
	}
	if !params.To.IsZero() {
		args = append(args, params.To)
		where = append(where, fmt.Sprintf("visited_at < $%d", len(args)))
	}
	cond := strings.Join(where, " AND ")

	var total int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*) FROM visits WHERE "+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count visits: %w", err)
	}

	args = append(args, limit, offset)
	query := fmt.Sprintf(
		"SELECT %s FROM visits WHERE %s ORDER BY visited_at DESC, id DESC LIMIT $%d OFFSET $%d",
		visitColumns, cond, len(args)-1, len(args),
	)
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list visits: %w", err)
	}
	defer rows.Close()

	var out []visit.Visit
	for rows.Next() {
		v, err := scanVisit(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	for i, v := range out {
		loaded, err := r.loadProductSets(ctx, v)
		if err != nil {
			return nil, 0, err
		}
		out[i] = loaded
	}
	return out, total, nil
}

func (r *VisitRepository) GetByID(ctx context.Context, id uuid.UUID) (visit.Visit, error) {
	q, err := composables.UseQuerier(ctx)
	if err != nil {
		return visit.Visit{}, err
	}
	row := q.QueryRow(ctx, "SELECT "+visitColumns+" FROM visits WHERE id = $1", pgUUID(id))
	v, err := scanVisitRow(row)
	if err != nil {
		return visit.Visit{}, err
	}
	return r.loadProductSets(ctx, v)
}

func (r *VisitRepository) Create(ctx context.Context, v visit.Visit) (visit.Visit, error) {
	q, err := composables.UseQuerier(ctx)
	if err != nil {
		return visit.Visit{}, err
	}
	payload, err := json.Marshal(payloadOrEmpty(v.Payload()))
	if err != nil {
		return visit.Visit{}, fmt.Errorf("encode payload: %w", err)
	}
	row := q.QueryRow(ctx,
		`INSERT INTO visits (user_id, facility_id, kind, visited_at, comment, payload)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+visitColumns,
		pgUUID(v.UserID()), pgUUID(v.FacilityID()), string(v.Kind()), v.VisitedAt(), v.Comment(), payload,
	)
	created, err := scanVisitRow(row)
	if err != nil {
		return visit.Visit{}, fmt.Errorf("create visit: %w", err)
	}

	for _, productID := range v.AvailableProductIDs() {
		if _, err := q.Exec(ctx,
			`INSERT INTO visit_available_products (visit_id, product_id)
			 VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			pgUUID(created.ID()), pgUUID(productID),
		); err != nil {
			return visit.Visit{}, fmt.Errorf("insert available product: %w", err)
		}
	}
	for _, productID := range v.TastedProductIDs() {
		if _, err := q.Exec(ctx,
			`INSERT INTO visit_tasted_products (visit_id, product_id)
			 VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			pgUUID(created.ID()), pgUUID(productID),
		); err != nil {
			return visit.Visit{}, fmt.Errorf("insert tasted product: %w", err)
		}
	}
	return r.loadProductSets(ctx, created)
}

func (r *VisitRepository) LatestByFacility(ctx context.Context, facilityID uuid.UUID) (visit.Visit, error) {
	q, err := composables.UseQuerier(ctx)
	if err != nil {
		return visit.Visit{}, err
	}
	row := q.QueryRow(ctx,
		"SELECT "+visitColumns+" FROM visits WHERE facility_id = $1 ORDER BY visited_at DESC, id DESC LIMIT 1",
		pgUUID(facilityID),
	)
	v, err := scanVisitRow(row)
	if err != nil {
		return visit.Visit{}, err
	}
	return r.loadProductSets(ctx, v)
}

func (r *VisitRepository) FacilityIDsWithVisits(ctx context.Context) ([]uuid.UUID, error) {
	q, err := composables.UseQuerier(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := q.Query(ctx, "SELECT DISTINCT facility_id FROM visits")
	if err != nil {
		return nil, fmt.Errorf("list visited facilities: %w", err)
	}
	defer rows.Close()
	return scanUUIDs(rows)
}

func (r *VisitRepository) ReassignFacility(ctx context.Context, fromFacilityID, toFacilityID uuid.UUID) error {
	q, err := composables.UseQuerier(ctx)
	if err != nil {
		return err
	}
	if _, err := q.Exec(ctx,
		"UPDATE visits SET facility_id = $2 WHERE facility_id = $1",
		pgUUID(fromFacilityID), pgUUID(toFacilityID),
	); err != nil {
		return fmt.Errorf("reassign visits: %w", err)
	}
	return nil
}

func (r *VisitRepository) loadProductSets(ctx context.Context, v visit.Visit) (visit.Visit, error) {
	q, err := composables.UseQuerier(ctx)
	if err != nil {
		return visit.Visit{}, err
	}
	available, err := queryProductIDs(ctx, q, "visit_available_products", v.ID())
	if err != nil {
		return visit.Visit{}, err
	}
	tasted, err := queryProductIDs(ctx, q, "visit_tasted_products", v.ID())
	if err != nil {
		return visit.Visit{}, err
	}
	return visit.Hydrate(
		v.ID(), v.UserID(), v.FacilityID(), v.Kind(), v.VisitedAt(),
		v.Comment(), v.Payload(), available, tasted, v.CreatedAt(),
	), nil
}

func queryProductIDs(ctx context.Context, q composables.Querier, table string, visitID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := q.Query(ctx, "SELECT product_id FROM "+table+" WHERE visit_id = $1", pgUUID(visitID))
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", table, err)
	}
	defer rows.Close()
	return scanUUIDs(rows)
}

func payloadOrEmpty(payload map[string]any) map[string]any {
	if payload == nil {
		return map[string]any{}
	}
	return payload
}

func scanVisit(row rowScanner) (visit.Visit, error) {
	var (
		id         pgtype.UUID
		userID     pgtype.UUID
		facilityID pgtype.UUID
		kind       string
		visitedAt  pgtype.Timestamptz
		comment    string
		payloadRaw []byte
		createdAt  pgtype.Timestamptz
	)
	if err := row.Scan(&id, &userID, &facilityID, &kind, &visitedAt, &comment, &payloadRaw, &createdAt); err != nil {
		return visit.Visit{}, err
	}
	payload := map[string]any{}
	if len(payloadRaw) > 0 {
		if err := json.Unmarshal(payloadRaw, &payload); err != nil {
			return visit.Visit{}, fmt.Errorf("decode payload: %w", err)
		}
	}
	return visit.Hydrate(
		uuid.UUID(id.Bytes),
		uuid.UUID(userID.Bytes),
		uuid.UUID(facilityID.Bytes),
		visit.Kind(kind),
		visitedAt.Time,
		comment,
		payload,
		nil,
		nil,
		createdAt.Time,
	), nil
}

func scanVisitRow(row rowScanner) (visit.Visit, error) {
	v, err := scanVisit(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return visit.Visit{}, visit.ErrNotFound
		}
		return visit.Visit{}, err
	}
	return v, nil
}
