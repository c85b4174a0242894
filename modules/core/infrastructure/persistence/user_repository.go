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

	"github.com/urnevurnev-lab/ambassador-crm-sub000/modules/core/domain/aggregates/user"
	"github.com/urnevurnev-lab/ambassador-crm-sub000/pkg/composables"
)

const userColumns = "id, full_name, chat_id, role, created_at, updated_at"

type UserRepository struct{}

func NewUserRepository() user.Repository {
	return &UserRepository{}
}

func (r *UserRepository) GetPaginated(ctx context.Context, params *user.FindParams) ([]user.User, int64, error) {
	if params == nil {
		params = &user.FindParams{}
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
	if search := strings.TrimSpace(params.Q); search != "" {
		args = append(args, "%"+search+"%")
		where = append(where, fmt.Sprintf("full_name ILIKE $%d", len(args)))
	}
	if params.Role != "" {
		args = append(args, string(params.Role))
		where = append(where, fmt.Sprintf("role = $%d", len(args)))
	}
	cond := strings.Join(where, " AND ")

	var total int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*) FROM users WHERE "+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	args = append(args, limit, offset)
	query := fmt.Sprintf(
		"SELECT %s FROM users WHERE %s ORDER BY full_name ASC LIMIT $%d OFFSET $%d",
		userColumns, cond, len(args)-1, len(args),
	)
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var out []user.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, u)
	}
	return out, total, rows.Err()
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (user.User, error) {
	q, err := composables.UseQuerier(ctx)
	if err != nil {
		return user.User{}, err
	}
	row := q.QueryRow(ctx, "SELECT "+userColumns+" FROM users WHERE id = $1", pgUUID(id))
	return scanUserRow(row)
}

func (r *UserRepository) GetByFullName(ctx context.Context, fullName string) (user.User, error) {
	q, err := composables.UseQuerier(ctx)
	if err != nil {
		return user.User{}, err
	}
	row := q.QueryRow(ctx, "SELECT "+userColumns+" FROM users WHERE full_name = $1", strings.TrimSpace(fullName))
	return scanUserRow(row)
}

func (r *UserRepository) GetByChatID(ctx context.Context, chatID int64) (user.User, error) {
	q, err := composables.UseQuerier(ctx)
	if err != nil {
		return user.User{}, err
	}
	row := q.QueryRow(ctx, "SELECT "+userColumns+" FROM users WHERE chat_id = $1", chatID)
	return scanUserRow(row)
}

func (r *UserRepository) Create(ctx context.Context, u user.User) (user.User, error) {
	q, err := composables.UseQuerier(ctx)
	if err != nil {
		return user.User{}, err
	}
	row := q.QueryRow(ctx,
		`INSERT INTO users (full_name, chat_id, role)
		 VALUES ($1, $2, $3)
		 RETURNING `+userColumns,
		u.FullName(), u.ChatID(), string(u.Role()),
	)
	created, err := scanUserRow(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return user.User{}, user.ErrFullNameTaken
		}
		return user.User{}, fmt.Errorf("create user: %w", err)
	}
	return created, nil
}

func (r *UserRepository) Update(ctx context.Context, u user.User) (user.User, error) {
	q, err := composables.UseQuerier(ctx)
	if err != nil {
		return user.User{}, err
	}
	row := q.QueryRow(ctx,
		`UPDATE users
		 SET full_name = $2, chat_id = $3, role = $4, updated_at = now()
		 WHERE id = $1
		 RETURNING `+userColumns,
		pgUUID(u.ID()), u.FullName(), u.ChatID(), string(u.Role()),
	)
	updated, err := scanUserRow(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return user.User{}, user.ErrFullNameTaken
		}
		return user.User{}, err
	}
	return updated, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (user.User, error) {
	var (
		id        pgtype.UUID
		fullName  string
		chatID    pgtype.Int8
		role      string
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
	)
	if err := row.Scan(&id, &fullName, &chatID, &role, &createdAt, &updatedAt); err != nil {
		return user.User{}, err
	}
	return user.Hydrate(
		uuid.UUID(id.Bytes),
		fullName,
		chatID.Int64,
		user.Role(role),
		createdAt.Time,
		updatedAt.Time,
	), nil
}

func scanUserRow(row rowScanner) (user.User, error) {
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}
	return u, nil
}
