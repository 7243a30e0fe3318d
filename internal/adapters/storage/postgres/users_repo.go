package postgres

import (
	"context"
	"time"

	"pethouse/internal/domain"
	"pethouse/internal/domain/users"
	"pethouse/internal/ports/auth"
)

type UsersRepo struct {
	q queryer
}

func NewUsersRepo(q queryer) *UsersRepo {
	return &UsersRepo{q: q}
}

type userRow struct {
	ID           int64     `db:"id"`
	Username     string    `db:"username"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	Role         string    `db:"role"`
	CreatedAt    time.Time `db:"created_at"`
}

func (r userRow) toDomain() users.User {
	return users.User{
		ID:           r.ID,
		Username:     r.Username,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		Role:         auth.ParseRole(r.Role),
		CreatedAt:    r.CreatedAt,
	}
}

func (r *UsersRepo) Create(ctx context.Context, u users.User) (int64, error) {
	var id int64
	err := r.q.QueryRowxContext(ctx, `
		INSERT INTO users (username, email, password_hash, role, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, u.Username, u.Email, u.PasswordHash, string(u.Role), u.CreatedAt).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, domain.ErrDuplicateIdentity
		}
		return 0, err
	}
	return id, nil
}

func (r *UsersRepo) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	var exists bool
	err := r.q.QueryRowxContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM users WHERE username = $1 OR lower(email) = lower($2)
		)
	`, username, email).Scan(&exists)
	return exists, err
}

func (r *UsersRepo) GetByIdentifier(ctx context.Context, identifier string) (users.User, error) {
	var row userRow
	err := r.q.QueryRowxContext(ctx, `
		SELECT id, username, email, password_hash, role, created_at
		FROM users
		WHERE username = $1 OR lower(email) = lower($1)
		ORDER BY (username = $1) DESC
		LIMIT 1
	`, identifier).StructScan(&row)
	if err != nil {
		return users.User{}, notFound(err)
	}
	return row.toDomain(), nil
}
