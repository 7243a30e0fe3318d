package memory

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pethouse/internal/domain"
	"pethouse/internal/domain/pets"
	"pethouse/internal/domain/users"
	"pethouse/internal/domain/visits"
	"pethouse/internal/session"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestUsers_UniqueUsernameAndEmail(t *testing.T) {
	st := NewStore()
	repo := st.Users()
	ctx := context.Background()

	id, err := repo.Create(ctx, users.User{Username: "alice", Email: "alice@example.com"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	_, err = repo.Create(ctx, users.User{Username: "alice", Email: "x@example.com"})
	assert.ErrorIs(t, err, domain.ErrDuplicateIdentity)
	_, err = repo.Create(ctx, users.User{Username: "x", Email: "ALICE@example.com"})
	assert.ErrorIs(t, err, domain.ErrDuplicateIdentity)

	u, err := repo.GetByIdentifier(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)

	_, err = repo.GetByIdentifier(ctx, "nobody")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPetDelete_CascadesVisits(t *testing.T) {
	st := NewStore()
	ctx := context.Background()

	petID, err := st.Pets().Create(ctx, pets.Pet{OwnerUserID: 1, Name: "Rex"})
	require.NoError(t, err)
	otherID, err := st.Pets().Create(ctx, pets.Pet{OwnerUserID: 1, Name: "Milo"})
	require.NoError(t, err)

	for _, d := range []string{"2024-01-01", "2024-02-01"} {
		_, err := st.Visits().Create(ctx, visits.Visit{PetID: petID, VisitDate: day(d)})
		require.NoError(t, err)
	}
	_, err = st.Visits().Create(ctx, visits.Visit{PetID: otherID, VisitDate: day("2024-03-01")})
	require.NoError(t, err)

	require.NoError(t, st.Pets().Delete(ctx, petID))

	left, err := st.Visits().ListByPet(ctx, petID)
	require.NoError(t, err)
	assert.Empty(t, left)
	assert.Len(t, st.visits, 1)
}

func TestVisitCreate_RequiresExistingPet(t *testing.T) {
	st := NewStore()
	_, err := st.Visits().Create(context.Background(), visits.Visit{PetID: 99, VisitDate: day("2024-01-01")})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetWithPet_OrphanIsNotFound(t *testing.T) {
	st := NewStore()
	ctx := context.Background()

	petID, _ := st.Pets().Create(ctx, pets.Pet{OwnerUserID: 1, Name: "Rex"})
	visitID, err := st.Visits().Create(ctx, visits.Visit{PetID: petID, VisitDate: day("2024-01-01")})
	require.NoError(t, err)

	rec, err := st.Visits().GetWithPet(ctx, visitID, false)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rec.OwnerID())

	// Simulate a broken reference that bypassed the cascade.
	delete(st.pets, petID)
	_, err = st.Visits().GetWithPet(ctx, visitID, false)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRunPets_RollsBackOnError(t *testing.T) {
	st := NewStore()
	ctx := context.Background()
	id, _ := st.Pets().Create(ctx, pets.Pet{OwnerUserID: 1, Name: "Rex"})

	boom := errors.New("boom")
	err := st.RunPets(ctx, func(repo pets.Repository) error {
		p, err := repo.GetByID(ctx, id, true)
		require.NoError(t, err)
		p.Name = "Changed"
		require.NoError(t, repo.Update(ctx, p))
		_, err = repo.Create(ctx, pets.Pet{OwnerUserID: 1, Name: "Ghost"})
		require.NoError(t, err)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	p, err := st.Pets().GetByID(ctx, id, false)
	require.NoError(t, err)
	assert.Equal(t, "Rex", p.Name)

	n, _ := st.Pets().CountByOwner(ctx, 1)
	assert.Equal(t, 1, n)
}

func TestRunVisits_CommitsOnSuccess(t *testing.T) {
	st := NewStore()
	ctx := context.Background()
	petID, _ := st.Pets().Create(ctx, pets.Pet{OwnerUserID: 1, Name: "Rex"})

	err := st.RunVisits(ctx, func(petRepo pets.Repository, repo visits.Repository) error {
		if _, err := petRepo.GetByID(ctx, petID, true); err != nil {
			return err
		}
		_, err := repo.Create(ctx, visits.Visit{PetID: petID, VisitDate: day("2024-05-05")})
		return err
	})
	require.NoError(t, err)

	n, err := st.Visits().CountByOwner(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestListRecent_FilterOrderAndLimit(t *testing.T) {
	st := NewStore()
	ctx := context.Background()
	mine, _ := st.Pets().Create(ctx, pets.Pet{OwnerUserID: 1, Name: "Rex"})
	theirs, _ := st.Pets().Create(ctx, pets.Pet{OwnerUserID: 2, Name: "Milo"})

	for _, d := range []string{"2024-01-01", "2024-01-15", "2024-02-01", "2024-02-15", "2024-03-01", "2024-03-15"} {
		_, err := st.Visits().Create(ctx, visits.Visit{PetID: mine, VisitDate: day(d)})
		require.NoError(t, err)
	}
	_, err := st.Visits().Create(ctx, visits.Visit{PetID: theirs, VisitDate: day("2024-02-10")})
	require.NoError(t, err)

	from, to := day("2024-01-15"), day("2024-03-01")
	got, err := st.Visits().ListRecent(ctx, 1, visits.RecentFilter{From: &from, To: &to, Limit: 5})
	require.NoError(t, err)

	dates := make([]string, 0, len(got))
	for _, v := range got {
		dates = append(dates, v.VisitDate.Format("2006-01-02"))
		assert.Equal(t, "Rex", v.PetName)
	}
	assert.Equal(t, []string{"2024-03-01", "2024-02-15", "2024-02-01", "2024-01-15"}, dates)

	all, err := st.Visits().ListRecent(ctx, 1, visits.RecentFilter{Limit: 5})
	require.NoError(t, err)
	assert.Len(t, all, 5)
	assert.Equal(t, "2024-03-15", all[0].VisitDate.Format("2006-01-02"))
}

func TestSessions_TakeFlashOnlyOnceUnderContention(t *testing.T) {
	st := NewStore()
	store := st.Sessions()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "sid", session.Data{Flash: "hello"}))

	var got atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok, err := store.TakeFlash(ctx, "sid"); err == nil && ok {
				got.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), got.Load())

	_, _, err := store.TakeFlash(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, store.SetFlash(ctx, "missing", "x"), domain.ErrNotFound)
}
