package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/geocoder89/notehub/internal/domain/note"
	"github.com/geocoder89/notehub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

var noteColumns = []string{"id", "data", "date", "user_id"}

type NotesRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewNotesRepo(pool *pgxpool.Pool, prom *observability.Prom) *NotesRepo {
	return &NotesRepo{pool: pool, prom: prom}
}

func (r *NotesRepo) Create(ctx context.Context, req note.CreateNoteRequest) (note.Note, error) {
	n := note.Note{
		Data:   req.Data,
		UserID: req.UserID,
	}

	// date is assigned by the database clock
	err := r.prom.ObserveDB("notes.create", func() error {
		return r.pool.QueryRow(
			ctx,
			`INSERT INTO notes (data, user_id)
			VALUES ($1, $2)
			RETURNING id, date`,
			n.Data, n.UserID,
		).Scan(&n.ID, &n.Date)
	})

	if err != nil {
		return note.Note{}, err
	}

	return n, nil
}

func (r *NotesRepo) GetByID(ctx context.Context, id int64) (note.Note, error) {
	query, args, err := psql.Select(noteColumns...).
		From("notes").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return note.Note{}, fmt.Errorf("build query: %w", err)
	}

	var n note.Note

	err = r.prom.ObserveDB("notes.get_by_id", func() error {
		return r.pool.QueryRow(ctx, query, args...).Scan(&n.ID, &n.Data, &n.Date, &n.UserID)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return note.Note{}, note.ErrNotFound
		}

		return note.Note{}, err
	}

	return n, nil
}

func (r *NotesRepo) ListByUser(ctx context.Context, userID int64) ([]note.Note, error) {
	query, args, err := psql.Select(noteColumns...).
		From("notes").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("date ASC", "id ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	out := make([]note.Note, 0)

	err = r.prom.ObserveDB("notes.list_by_user", func() error {
		rows, err := r.pool.Query(ctx, query, args...)

		if err != nil {
			return err
		}

		defer rows.Close()

		for rows.Next() {
			var n note.Note

			if err := rows.Scan(&n.ID, &n.Data, &n.Date, &n.UserID); err != nil {
				return err
			}

			out = append(out, n)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}

// Delete removes the note only when it is still owned by ownerID.
func (r *NotesRepo) Delete(ctx context.Context, id, ownerID int64) error {
	var tag pgconn.CommandTag

	err := r.prom.ObserveDB("notes.delete", func() error {
		var err error
		tag, err = r.pool.Exec(ctx, `DELETE FROM notes WHERE id = $1 AND user_id = $2`, id, ownerID)
		return err
	})

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return note.ErrNotFound
	}

	return nil
}
