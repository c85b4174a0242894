package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/urnevurnev-lab/ambassador-crm-sub000/modules/orders/domain/aggregates/order"
	"github.com/urnevurnev-lab/ambassador-crm-sub000/pkg/composables"
)

const orderColumns = "id, user_id, facility_id, status, comment, created_at, updated_at"

type OrderRepository struct{}

func NewOrderRepository() order.Repository {
	return &OrderRepository{}
}

func (r *OrderRepository) GetPaginated(ctx context.Context, params *order.FindParams) ([]order.Order, int64, error) {
	if params == nil {
		params = &order.FindParams{}
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
	if params.Status != "" {
		args = append(args, string(params.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	cond := strings.Join(where, " AND ")

	var total int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*) FROM sample_orders WHERE "+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	args = append(args, limit, offset)
	query := fmt.Sprintf(
		"SELECT %s FROM sample_orders WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		orderColumns, cond, len(args)-1, len(args),
	)
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var out []order.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	for i, o := range out {
		items, err := r.loadItems(ctx, o.ID())
		if err != nil {
			return nil, 0, err
		}
		out[i] = withItems(o, items)
	}
	return out, total, nil
}

func (r *OrderRepository) GetByID(ctx context.Context, id uuid.UUID) (order.Order, error) {
	q, err := composables.UseQuerier(ctx)
	if err != nil {
		return order.Order{}, err
	}
	row := q.QueryRow(ctx, "SELECT "+orderColumns+" FROM sample_orders WHERE id = $1", pgUUID(id))
	o, err := scanOrderRow(row)
	if err != nil {
		return order.Order{}, err
	}
	items, err := r.loadItems(ctx, o.ID())
	if err != nil {
		return order.Order{}, err
	}
	return withItems(o, items), nil
}

func (r *OrderRepository) Create(ctx context.Context, o order.Order) (order.Order, error) {
	if len(o.Items()) == 0 {
		return order.Order{}, order.ErrEmptyItems
	}
	q, err := composables.UseQuerier(ctx)
	if err != nil {
		return order.Order{}, err
	}
	row := q.QueryRow(ctx,
		`INSERT INTO sample_orders (user_id, facility_id, status, comment)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+orderColumns,
		pgUUID(o.UserID()), pgUUID(o.FacilityID()), string(o.Status()), o.Comment(),
	)
	created, err := scanOrderRow(row)
	if err != nil {
		return order.Order{}, fmt.Errorf("create order: %w", err)
	}
	for _, item := range o.Items() {
		if _, err := q.Exec(ctx,
			`INSERT INTO sample_order_items (order_id, product_id, quantity)
			 VALUES ($1, $2, $3)
			 ON CONFLICT (order_id, product_id) DO UPDATE SET quantity = sample_order_items.quantity + EXCLUDED.quantity`,
			pgUUID(created.ID()), pgUUID(item.ProductID), item.Quantity,
		); err != nil {
			return order.Order{}, fmt.Errorf("insert order item: %w", err)
		}
	}
	items, err := r.loadItems(ctx, created.ID())
	if err != nil {
		return order.Order{}, err
	}
	return withItems(created, items), nil
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status order.Status) (order.Order, error) {
	q, err := composables.UseQuerier(ctx)
	if err != nil {
		return order.Order{}, err
	}
	row := q.QueryRow(ctx,
		`UPDATE sample_orders SET status = $2, updated_at = now() WHERE id = $1 RETURNING `+orderColumns,
		pgUUID(id), string(status),
	)
	o, err := scanOrderRow(row)
	if err != nil {
		return order.Order{}, err
	}
	items, err := r.loadItems(ctx, o.ID())
	if err != nil {
		return order.Order{}, err
	}
	return withItems(o, items), nil
}

func (r *OrderRepository) ReassignFacility(ctx context.Context, fromFacilityID, toFacilityID uuid.UUID) error {
	q, err := composables.UseQuerier(ctx)
	if err != nil {
		return err
	}
	if _, err := q.Exec(ctx,
		"UPDATE sample_orders SET facility_id = $2 WHERE facility_id = $1",
		pgUUID(fromFacilityID), pgUUID(toFacilityID),
	); err != nil {
		return fmt.Errorf("reassign orders: %w", err)
	}
	return nil
}

// RelinkFacility lets the facility merge move order references in the
// same transaction.
func (r *OrderRepository) RelinkFacility(ctx context.Context, fromFacilityID, toFacilityID uuid.UUID) error {
	return r.ReassignFacility(ctx, fromFacilityID, toFacilityID)
}

func (r *OrderRepository) loadItems(ctx context.Context, orderID uuid.UUID) ([]order.Item, error) {
	q, err := composables.UseQuerier(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := q.Query(ctx,
		"SELECT product_id, quantity FROM sample_order_items WHERE order_id = $1",
		pgUUID(orderID),
	)
	if err != nil {
		return nil, fmt.Errorf("load order items: %w", err)
	}
	defer rows.Close()

	var out []order.Item
	for rows.Next() {
		var productID pgtype.UUID
		var quantity int
		if err := rows.Scan(&productID, &quantity); err != nil {
			return nil, err
		}
		out = append(out, order.Item{ProductID: uuid.UUID(productID.Bytes), Quantity: quantity})
	}
	return out, rows.Err()
}

func withItems(o order.Order, items []order.Item) order.Order {
	return order.Hydrate(
		o.ID(), o.UserID(), o.FacilityID(), o.Status(), o.Comment(),
		items, o.CreatedAt(), o.UpdatedAt(),
	)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (order.Order, error) {
	var (
		id         pgtype.UUID
		userID     pgtype.UUID
		facilityID pgtype.UUID
		status     string
		comment    string
		createdAt  pgtype.Timestamptz
		updatedAt  pgtype.Timestamptz
	)
	if err := row.Scan(&id, &userID, &facilityID, &status, &comment, &createdAt, &updatedAt); err != nil {
		return order.Order{}, err
	}
	return order.Hydrate(
		uuid.UUID(id.Bytes),
		uuid.UUID(userID.Bytes),
		uuid.UUID(facilityID.Bytes),
		order.Status(status),
		comment,
		nil,
		createdAt.Time,
		updatedAt.Time,
	), nil
}

func scanOrderRow(row rowScanner) (order.Order, error) {
	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return order.Order{}, order.ErrNotFound
		}
		return order.Order{}, err
	}
	return o, nil
}
