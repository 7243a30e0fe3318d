package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"pethouse/internal/domain"
	"pethouse/internal/domain/pets"
)

type PetsRepo struct {
	q queryer
}

func NewPetsRepo(q queryer) *PetsRepo {
	return &PetsRepo{q: q}
}

const petColumns = `id, user_id, name, species, breed, birth_date, gender, photo, notes, created_at`

type petRow struct {
	ID        int64          `db:"id"`
	UserID    int64          `db:"user_id"`
	Name      string         `db:"name"`
	Species   sql.NullString `db:"species"`
	Breed     sql.NullString `db:"breed"`
	BirthDate sql.NullTime   `db:"birth_date"`
	Gender    string         `db:"gender"`
	Photo     sql.NullString `db:"photo"`
	Notes     sql.NullString `db:"notes"`
	CreatedAt time.Time      `db:"created_at"`
}

func (r petRow) toDomain() pets.Pet {
	p := pets.Pet{
		ID:          r.ID,
		OwnerUserID: r.UserID,
		Name:        r.Name,
		Species:     stringPtr(r.Species),
		Breed:       stringPtr(r.Breed),
		Gender:      pets.ParseGender(r.Gender),
		Photo:       stringPtr(r.Photo),
		Notes:       stringPtr(r.Notes),
		CreatedAt:   r.CreatedAt,
	}
	if r.BirthDate.Valid {
		bd := r.BirthDate.Time
		p.BirthDate = &bd
	}
	return p
}

func nullDate(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func (r *PetsRepo) Create(ctx context.Context, p pets.Pet) (int64, error) {
	var id int64
	err := r.q.QueryRowxContext(ctx, `
		INSERT INTO pets (user_id, name, species, breed, birth_date, gender, photo, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`,
		p.OwnerUserID,
		p.Name,
		nullString(p.Species),
		nullString(p.Breed),
		nullDate(p.BirthDate),
		string(p.Gender),
		nullString(p.Photo),
		nullString(p.Notes),
		p.CreatedAt,
	).Scan(&id)
	return id, err
}

func (r *PetsRepo) GetByID(ctx context.Context, id int64, forUpdate bool) (pets.Pet, error) {
	var row petRow
	err := sqlx.GetContext(ctx, r.q, &row,
		`SELECT `+petColumns+` FROM pets WHERE id = $1`+lockClause(forUpdate), id)
	if err != nil {
		return pets.Pet{}, notFound(err)
	}
	return row.toDomain(), nil
}

func (r *PetsRepo) List(ctx context.Context, ownerID int64) ([]pets.Pet, error) {
	var rows []petRow
	err := sqlx.SelectContext(ctx, r.q, &rows, `
		SELECT `+petColumns+`
		FROM pets
		WHERE $1::bigint = 0 OR user_id = $1
		ORDER BY created_at DESC, id DESC
	`, ownerID)
	if err != nil {
		return nil, err
	}

	out := make([]pets.Pet, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

// Update never touches user_id or created_at.
func (r *PetsRepo) Update(ctx context.Context, p pets.Pet) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE pets
		SET
			name = $2,
			species = $3,
			breed = $4,
			birth_date = $5,
			gender = $6,
			photo = $7,
			notes = $8
		WHERE id = $1
	`,
		p.ID,
		p.Name,
		nullString(p.Species),
		nullString(p.Breed),
		nullDate(p.BirthDate),
		string(p.Gender),
		nullString(p.Photo),
		nullString(p.Notes),
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete relies on visits.pet_id ON DELETE CASCADE.
func (r *PetsRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM pets WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PetsRepo) CountByOwner(ctx context.Context, ownerID int64) (int, error) {
	var n int
	err := sqlx.GetContext(ctx, r.q, &n,
		`SELECT COUNT(*) FROM pets WHERE $1::bigint = 0 OR user_id = $1`, ownerID)
	return n, err
}
