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
	"github.com/shopspring/decimal"

	"github.com/urnevurnev-lab/ambassador-crm-sub000/modules/catalog/domain/aggregates/product"
	"github.com/urnevurnev-lab/ambassador-crm-sub000/pkg/composables"
)

const productColumns = "id, sku, line, flavor, category, price, created_at, updated_at"

type ProductRepository struct{}

func NewProductRepository() product.Repository {
	return &ProductRepository{}
}

func (r *ProductRepository) GetPaginated(ctx context.Context, params *product.FindParams) ([]product.Product, int64, error) {
	if params == nil {
		params = &product.FindParams{}
	}
	q, err := composables.UseQuerier(ctx)
	if err != nil {
		return nil, 0, err
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := params.Offset
	if offset < 0 {
		offset = 0
	}

	where := []string{"true"}
	args := []any{}
	if search := strings.TrimSpace(params.Q); search != "" {
		args = append(args, "%"+search+"%")
		where = append(where, fmt.Sprintf("(sku ILIKE $%d OR flavor ILIKE $%d)", len(args), len(args)))
	}
	if params.Line != "" {
		args = append(args, string(params.Line))
		where = append(where, fmt.Sprintf("line = $%d", len(args)))
	}
	cond := strings.Join(where, " AND ")

	var total int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*) FROM products WHERE "+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	args = append(args, limit, offset)
	query := fmt.Sprintf(
		"SELECT %s FROM products WHERE %s ORDER BY line, flavor LIMIT $%d OFFSET $%d",
		productColumns, cond, len(args)-1, len(args),
	)
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var out []product.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

func (r *ProductRepository) GetByID(ctx context.Context, id uuid.UUID) (product.Product, error) {
	q, err := composables.UseQuerier(ctx)
	if err != nil {
		return product.Product{}, err
	}
	row := q.QueryRow(ctx, "SELECT "+productColumns+" FROM products WHERE id = $1", pgUUID(id))
	return scanProductRow(row)
}

func (r *ProductRepository) GetBySKU(ctx context.Context, sku string) (product.Product, error) {
	q, err := composables.UseQuerier(ctx)
	if err != nil {
		return product.Product{}, err
	}
	row := q.QueryRow(ctx, "SELECT "+productColumns+" FROM products WHERE sku = $1", strings.TrimSpace(sku))
	return scanProductRow(row)
}

func (r *ProductRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]product.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	q, err := composables.UseQuerier(ctx)
	if err != nil {
		return nil, err
	}
	pgIDs := make([]pgtype.UUID, 0, len(ids))
	for _, id := range ids {
		pgIDs = append(pgIDs, pgUUID(id))
	}
	rows, err := q.Query(ctx, "SELECT "+productColumns+" FROM products WHERE id = ANY($1)", pgIDs)
	if err != nil {
		return nil, fmt.Errorf("list products by ids: %w", err)
	}
	defer rows.Close()

	var out []product.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *ProductRepository) Create(ctx context.Context, p product.Product) (product.Product, error) {
	q, err := composables.UseQuerier(ctx)
	if err != nil {
		return product.Product{}, err
	}
	row := q.QueryRow(ctx,
		`INSERT INTO products (sku, line, flavor, category, price)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+productColumns,
		p.SKU(), string(p.Line()), p.Flavor(), string(p.Category()), nullDecimalArg(p.Price()),
	)
	created, err := scanProductRow(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return product.Product{}, product.ErrSKUTaken
		}
		return product.Product{}, fmt.Errorf("create product: %w", err)
	}
	return created, nil
}

func (r *ProductRepository) Update(ctx context.Context, p product.Product) (product.Product, error) {
	q, err := composables.UseQuerier(ctx)
	if err != nil {
		return product.Product{}, err
	}
	row := q.QueryRow(ctx,
		`UPDATE products
		 SET line = $2, flavor = $3, category = $4, price = $5, updated_at = now()
		 WHERE id = $1
		 RETURNING `+productColumns,
		pgUUID(p.ID()), string(p.Line()), p.Flavor(), string(p.Category()), nullDecimalArg(p.Price()),
	)
	return scanProductRow(row)
}

func nullDecimalArg(d decimal.NullDecimal) any {
	if !d.Valid {
		return nil
	}
	return d.Decimal.String()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (product.Product, error) {
	var (
		id        pgtype.UUID
		sku       string
		line      string
		flavor    string
		category  string
		price     pgtype.Numeric
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
	)
	if err := row.Scan(&id, &sku, &line, &flavor, &category, &price, &createdAt, &updatedAt); err != nil {
		return product.Product{}, err
	}
	var priceDec decimal.NullDecimal
	if price.Valid {
		value, err := price.Value()
		if err == nil {
			if s, ok := value.(string); ok {
				if dec, err := decimal.NewFromString(s); err == nil {
					priceDec = decimal.NewNullDecimal(dec)
				}
			}
		}
	}
	return product.Hydrate(
		uuid.UUID(id.Bytes),
		sku,
		product.Line(line),
		flavor,
		product.Category(category),
		priceDec,
		createdAt.Time,
		updatedAt.Time,
	), nil
}

func scanProductRow(row rowScanner) (product.Product, error) {
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return product.Product{}, product.ErrNotFound
		}
		return product.Product{}, err
	}
	return p, nil
}
