package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"pethouse/internal/domain"
	"pethouse/internal/domain/visits"
)

type VisitsRepo struct {
	q queryer
}

func NewVisitsRepo(q queryer) *VisitsRepo {
	return &VisitsRepo{q: q}
}

type visitRow struct {
	ID          int64          `db:"id"`
	PetID       int64          `db:"pet_id"`
	VisitDate   time.Time      `db:"visit_date"`
	Type        sql.NullString `db:"type"`
	Description sql.NullString `db:"description"`
	CreatedAt   time.Time      `db:"created_at"`
}

func (r visitRow) toDomain() visits.Visit {
	return visits.Visit{
		ID:          r.ID,
		PetID:       r.PetID,
		VisitDate:   r.VisitDate,
		Type:        stringPtr(r.Type),
		Description: stringPtr(r.Description),
		CreatedAt:   r.CreatedAt,
	}
}

func (r *VisitsRepo) Create(ctx context.Context, v visits.Visit) (int64, error) {
	var id int64
	err := r.q.QueryRowxContext(ctx, `
		INSERT INTO visits (pet_id, visit_date, type, description, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, v.PetID, v.VisitDate, nullString(v.Type), nullString(v.Description), v.CreatedAt).Scan(&id)
	return id, err
}

// GetWithPet is an inner join, so a visit without its pet is simply not found.
func (r *VisitsRepo) GetWithPet(ctx context.Context, id int64, forUpdate bool) (visits.Record, error) {
	var row struct {
		visitRow
		Pet petRow `db:"p"`
	}
	err := sqlx.GetContext(ctx, r.q, &row, `
		SELECT
			v.id, v.pet_id, v.visit_date, v.type, v.description, v.created_at,
			p.id AS "p.id", p.user_id AS "p.user_id", p.name AS "p.name",
			p.species AS "p.species", p.breed AS "p.breed", p.birth_date AS "p.birth_date",
			p.gender AS "p.gender", p.photo AS "p.photo", p.notes AS "p.notes",
			p.created_at AS "p.created_at"
		FROM visits v
		INNER JOIN pets p ON p.id = v.pet_id
		WHERE v.id = $1`+lockClause(forUpdate), id)
	if err != nil {
		return visits.Record{}, notFound(err)
	}
	return visits.Record{Visit: row.visitRow.toDomain(), Pet: row.Pet.toDomain()}, nil
}

func (r *VisitsRepo) ListByPet(ctx context.Context, petID int64) ([]visits.Visit, error) {
	var rows []visitRow
	err := sqlx.SelectContext(ctx, r.q, &rows, `
		SELECT id, pet_id, visit_date, type, description, created_at
		FROM visits
		WHERE pet_id = $1
		ORDER BY visit_date DESC, created_at DESC, id DESC
	`, petID)
	if err != nil {
		return nil, err
	}

	out := make([]visits.Visit, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *VisitsRepo) Update(ctx context.Context, v visits.Visit) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE visits
		SET visit_date = $2, type = $3, description = $4
		WHERE id = $1
	`, v.ID, v.VisitDate, nullString(v.Type), nullString(v.Description))
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *VisitsRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM visits WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *VisitsRepo) CountByOwner(ctx context.Context, ownerID int64) (int, error) {
	var n int
	err := sqlx.GetContext(ctx, r.q, &n, `
		SELECT COUNT(*)
		FROM visits v
		INNER JOIN pets p ON p.id = v.pet_id
		WHERE p.user_id = $1
	`, ownerID)
	return n, err
}

func (r *VisitsRepo) ListRecent(ctx context.Context, ownerID int64, f visits.RecentFilter) ([]visits.RecentVisit, error) {
	var rows []struct {
		visitRow
		PetName string `db:"pet_name"`
	}
	err := sqlx.SelectContext(ctx, r.q, &rows, `
		SELECT v.id, v.pet_id, v.visit_date, v.type, v.description, v.created_at, p.name AS pet_name
		FROM visits v
		INNER JOIN pets p ON p.id = v.pet_id
		WHERE p.user_id = $1
		  AND ($2::date IS NULL OR v.visit_date >= $2::date)
		  AND ($3::date IS NULL OR v.visit_date <= $3::date)
		ORDER BY v.visit_date DESC, v.created_at DESC, v.id DESC
		LIMIT $4
	`, ownerID, nullDate(f.From), nullDate(f.To), f.Limit)
	if err != nil {
		return nil, err
	}

	out := make([]visits.RecentVisit, 0, len(rows))
	for _, row := range rows {
		out = append(out, visits.RecentVisit{Visit: row.visitRow.toDomain(), PetName: row.PetName})
	}
	return out, nil
}
