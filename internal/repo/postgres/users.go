package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/notehub/internal/domain/user"
	"github.com/geocoder89/notehub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const usersEmailConstraint = "users_email_uniq"

type UsersRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewUsersRepo(pool *pgxpool.Pool, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{pool: pool, prom: prom}
}

func (r *UsersRepo) Create(ctx context.Context, req user.CreateUserRequest) (user.User, error) {
	u := user.User{
		Email:        req.Email,
		PasswordHash: req.PasswordHash,
		FirstName:    req.FirstName,
	}

	err := r.prom.ObserveDB("users.create", func() error {
		return r.pool.QueryRow(
			ctx,
			`INSERT INTO users (email, password_hash, first_name)
			VALUES ($1, $2, $3)
			RETURNING id, created_at`,
			u.Email, u.PasswordHash, u.FirstName,
		).Scan(&u.ID, &u.CreatedAt)
	})

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == usersEmailConstraint {
			return user.User{}, user.ErrEmailTaken
		}

		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	return r.getOne(ctx, "users.get_by_email",
		`SELECT id, email, password_hash, first_name, created_at
		FROM users
		WHERE email = $1`,
		email,
	)
}

func (r *UsersRepo) GetByID(ctx context.Context, id int64) (user.User, error) {
	return r.getOne(ctx, "users.get_by_id",
		`SELECT id, email, password_hash, first_name, created_at
		FROM users
		WHERE id = $1`,
		id,
	)
}

func (r *UsersRepo) getOne(ctx context.Context, op, query string, arg any) (user.User, error) {
	var u user.User

	err := r.prom.ObserveDB(op, func() error {
		return r.pool.QueryRow(ctx, query, arg).Scan(
			&u.ID,
			&u.Email,
			&u.PasswordHash,
			&u.FirstName,
			&u.CreatedAt,
		)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}

		return user.User{}, err
	}
	return u, nil
}
