package postgres

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pethouse/internal/domain"
	"pethouse/internal/domain/pets"
	"pethouse/internal/domain/users"
	"pethouse/internal/domain/visits"
	"pethouse/internal/session"
)

func TestStatements_SplitsSchema(t *testing.T) {
	stmts := statements(schema)
	require.NotEmpty(t, stmts)
	for _, s := range stmts {
		assert.NotContains(t, s, ";")
		assert.NotRegexp(t, `^--`, s)
	}
	assert.Contains(t, stmts[0], "CREATE TABLE IF NOT EXISTS users")
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, isUniqueViolation(errors.New("boom")))
}

// The tests below need a disposable database: PETHOUSE_TEST_DSN=postgres://... go test ./...
func openTestDB(t *testing.T) *TxRunner {
	t.Helper()
	dsn := os.Getenv("PETHOUSE_TEST_DSN")
	if dsn == "" {
		t.Skip("PETHOUSE_TEST_DSN not set")
	}

	ctx := context.Background()
	db, err := Open(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, Migrate(ctx, db))
	_, err = db.ExecContext(ctx, `TRUNCATE sessions, visits, pets, users RESTART IDENTITY CASCADE`)
	require.NoError(t, err)

	return NewTxRunner(db)
}

func day(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func TestIntegration_UsersPetsVisits(t *testing.T) {
	tx := openTestDB(t)
	ctx := context.Background()
	usersRepo := NewUsersRepo(tx.db)
	petsRepo := NewPetsRepo(tx.db)
	visitsRepo := NewVisitsRepo(tx.db)

	uid, err := usersRepo.Create(ctx, users.User{Username: "alice", Email: "alice@example.com", PasswordHash: "x", Role: "owner", CreatedAt: time.Now()})
	require.NoError(t, err)

	_, err = usersRepo.Create(ctx, users.User{Username: "alice2", Email: "ALICE@example.com", PasswordHash: "x", Role: "owner", CreatedAt: time.Now()})
	assert.ErrorIs(t, err, domain.ErrDuplicateIdentity)

	u, err := usersRepo.GetByIdentifier(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, uid, u.ID)

	species := "dog"
	petID, err := petsRepo.Create(ctx, pets.Pet{OwnerUserID: uid, Name: "Rex", Species: &species, Gender: pets.GenderMale, CreatedAt: time.Now()})
	require.NoError(t, err)

	for _, d := range []string{"2024-01-01", "2024-02-01", "2024-03-01"} {
		_, err := visitsRepo.Create(ctx, visits.Visit{PetID: petID, VisitDate: day(d), CreatedAt: time.Now()})
		require.NoError(t, err)
	}

	from, to := day("2024-01-01"), day("2024-02-01")
	recent, err := visitsRepo.ListRecent(ctx, uid, visits.RecentFilter{From: &from, To: &to, Limit: 5})
	require.NoError(t, err)
	assert.Len(t, recent, 2)
	assert.Equal(t, "Rex", recent[0].PetName)

	err = tx.RunPets(ctx, func(repo pets.Repository) error {
		p, err := repo.GetByID(ctx, petID, true)
		if err != nil {
			return err
		}
		return repo.Delete(ctx, p.ID)
	})
	require.NoError(t, err)

	n, err := visitsRepo.CountByOwner(ctx, uid)
	require.NoError(t, err)
	assert.Zero(t, n, "visits must cascade with their pet")
}

func TestIntegration_SessionFlashIsReadOnce(t *testing.T) {
	tx := openTestDB(t)
	ctx := context.Background()
	repo := NewSessionsRepo(tx.db)

	require.NoError(t, repo.Save(ctx, "sid", session.Data{Flash: "hi", ExpiresAt: time.Now().Add(time.Hour)}))

	msg, ok, err := repo.TakeFlash(ctx, "sid")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "hi", msg)

	_, ok, err = repo.TakeFlash(ctx, "sid")
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = repo.TakeFlash(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
