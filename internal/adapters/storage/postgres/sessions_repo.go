package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"pethouse/internal/domain"
	"pethouse/internal/session"
)

type SessionsRepo struct {
	q queryer
}

func NewSessionsRepo(q queryer) *SessionsRepo {
	return &SessionsRepo{q: q}
}

var _ session.Store = (*SessionsRepo)(nil)

type sessionRow struct {
	UserID    sql.NullInt64  `db:"user_id"`
	Username  string         `db:"username"`
	Role      string         `db:"role"`
	Flash     sql.NullString `db:"flash"`
	ExpiresAt time.Time      `db:"expires_at"`
}

func (r *SessionsRepo) Load(ctx context.Context, id string) (session.Data, error) {
	var row sessionRow
	err := sqlx.GetContext(ctx, r.q, &row, `
		SELECT user_id, username, role, flash, expires_at
		FROM sessions
		WHERE id = $1
	`, id)
	if err != nil {
		return session.Data{}, notFound(err)
	}
	return session.Data{
		UserID:    row.UserID.Int64,
		Username:  row.Username,
		Role:      row.Role,
		Flash:     row.Flash.String,
		ExpiresAt: row.ExpiresAt,
	}, nil
}

func (r *SessionsRepo) Save(ctx context.Context, id string, d session.Data) error {
	userID := sql.NullInt64{Int64: d.UserID, Valid: d.UserID > 0}
	flash := sql.NullString{String: d.Flash, Valid: d.Flash != ""}

	_, err := r.q.ExecContext(ctx, `
		INSERT INTO sessions (id, user_id, username, role, flash, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE
		SET user_id = EXCLUDED.user_id,
			username = EXCLUDED.username,
			role = EXCLUDED.role,
			flash = EXCLUDED.flash,
			expires_at = EXCLUDED.expires_at
	`, id, userID, d.Username, d.Role, flash, d.ExpiresAt)
	return err
}

func (r *SessionsRepo) Delete(ctx context.Context, id string) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	return err
}

func (r *SessionsRepo) SetFlash(ctx context.Context, id, msg string) error {
	res, err := r.q.ExecContext(ctx, `UPDATE sessions SET flash = $2 WHERE id = $1`, id, msg)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// TakeFlash locks the row, clears the flash and returns the previous value in one statement.
func (r *SessionsRepo) TakeFlash(ctx context.Context, id string) (string, bool, error) {
	var prev sql.NullString
	err := r.q.QueryRowxContext(ctx, `
		WITH old AS (
			SELECT id, flash FROM sessions WHERE id = $1 FOR UPDATE
		)
		UPDATE sessions s
		SET flash = NULL
		FROM old
		WHERE s.id = old.id
		RETURNING old.flash
	`, id).Scan(&prev)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, domain.ErrNotFound
		}
		return "", false, err
	}
	if !prev.Valid || prev.String == "" {
		return "", false, nil
	}
	return prev.String, true, nil
}

// DeleteExpired removes sessions past their expiry. Returns how many rows went away.
func (r *SessionsRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.q.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
