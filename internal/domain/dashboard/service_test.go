package dashboard_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pethouse/internal/adapters/storage/memory"
	"pethouse/internal/domain"
	"pethouse/internal/domain/dashboard"
	"pethouse/internal/domain/pets"
	"pethouse/internal/domain/visits"
	"pethouse/internal/ports/auth"
)

var (
	alice = auth.Identity{ID: 1, Username: "alice", Role: auth.RoleOwner}
	bob   = auth.Identity{ID: 2, Username: "bob", Role: auth.RoleOwner}
	admin = auth.Identity{ID: 9, Username: "root", Role: auth.RoleAdmin}
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

type fixture struct {
	store *memory.Store
	svc   *dashboard.Service
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	st := memory.NewStore()
	petSvc := pets.NewService(st.Pets(), st, nil, pets.Options{})
	visitSvc := visits.NewService(st.Visits(), st.Pets(), st)
	return fixture{store: st, svc: dashboard.NewService(petSvc, visitSvc)}
}

func (f fixture) pet(t *testing.T, owner int64, name string) int64 {
	t.Helper()
	id, err := f.store.Pets().Create(context.Background(), pets.Pet{
		OwnerUserID: owner,
		Name:        name,
		Gender:      pets.GenderUnknown,
		CreatedAt:   time.Now(),
	})
	require.NoError(t, err)
	return id
}

func (f fixture) visit(t *testing.T, petID int64, date string) {
	t.Helper()
	_, err := f.store.Visits().Create(context.Background(), visits.Visit{
		PetID:     petID,
		VisitDate: day(date),
		CreatedAt: time.Now(),
	})
	require.NoError(t, err)
}

func TestParseRange(t *testing.T) {
	tests := []struct {
		name       string
		start, end string
		from, to   string
	}{
		{name: "both open", start: "", end: ""},
		{name: "only start", start: "2024-01-01", from: "2024-01-01"},
		{name: "only end", end: "2024-12-31", to: "2024-12-31"},
		{name: "ordered", start: "2024-01-01", end: "2024-02-01", from: "2024-01-01", to: "2024-02-01"},
		{name: "reversed is swapped", start: "2024-02-01", end: "2024-01-01", from: "2024-01-01", to: "2024-02-01"},
		{name: "invalid start ignored", start: "01/02/2024", end: "2024-02-01", to: "2024-02-01"},
		{name: "impossible date ignored", start: "2024-02-30"},
		{name: "whitespace trimmed", start: " 2024-03-01 ", from: "2024-03-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := dashboard.ParseRange(tt.start, tt.end)
			if tt.from == "" {
				assert.Nil(t, f.From)
			} else {
				require.NotNil(t, f.From)
				assert.Equal(t, day(tt.from), *f.From)
			}
			if tt.to == "" {
				assert.Nil(t, f.To)
			} else {
				require.NotNil(t, f.To)
				assert.Equal(t, day(tt.to), *f.To)
			}
		})
	}
}

func TestSummary_CountsAndRecentAreCallerScoped(t *testing.T) {
	f := newFixture(t)
	rex := f.pet(t, alice.ID, "Rex")
	mia := f.pet(t, alice.ID, "Mia")
	other := f.pet(t, bob.ID, "Bolt")

	f.visit(t, rex, "2024-01-10")
	f.visit(t, rex, "2024-03-05")
	f.visit(t, mia, "2024-02-20")
	f.visit(t, other, "2024-04-01")

	sum, err := f.svc.Summary(context.Background(), alice, "", "")
	require.NoError(t, err)
	assert.Equal(t, 2, sum.TotalPets)
	assert.Equal(t, 3, sum.TotalVisits)
	require.Len(t, sum.Recent, 3)
	assert.Equal(t, day("2024-03-05"), sum.Recent[0].VisitDate)
	assert.Equal(t, "Rex", sum.Recent[0].PetName)
	assert.Equal(t, "Mia", sum.Recent[1].PetName)

	sum, err = f.svc.Summary(context.Background(), admin, "", "")
	require.NoError(t, err)
	assert.Zero(t, sum.TotalPets)
	assert.Zero(t, sum.TotalVisits)
	assert.Empty(t, sum.Recent)
}

func TestSummary_RecentIsCappedAtFive(t *testing.T) {
	f := newFixture(t)
	rex := f.pet(t, alice.ID, "Rex")
	for i := 1; i <= 7; i++ {
		f.visit(t, rex, day("2024-01-01").AddDate(0, 0, i).Format("2006-01-02"))
	}

	sum, err := f.svc.Summary(context.Background(), alice, "", "")
	require.NoError(t, err)
	assert.Equal(t, 7, sum.TotalVisits)
	require.Len(t, sum.Recent, visits.RecentLimit)
	assert.Equal(t, day("2024-01-08"), sum.Recent[0].VisitDate)
}

func TestSummary_ReversedRangeMatchesOrderedRange(t *testing.T) {
	f := newFixture(t)
	rex := f.pet(t, alice.ID, "Rex")
	for _, d := range []string{"2023-12-31", "2024-01-01", "2024-01-15", "2024-02-01", "2024-02-02"} {
		f.visit(t, rex, d)
	}

	ordered, err := f.svc.Summary(context.Background(), alice, "2024-01-01", "2024-02-01")
	require.NoError(t, err)
	reversed, err := f.svc.Summary(context.Background(), alice, "2024-02-01", "2024-01-01")
	require.NoError(t, err)

	require.Len(t, ordered.Recent, 3, "bounds are inclusive")
	assert.Equal(t, ordered.Recent, reversed.Recent)
	assert.Equal(t, ordered.Range.From, reversed.Range.From)
	assert.Equal(t, ordered.Range.To, reversed.Range.To)
}

func TestSummary_RequiresIdentity(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Summary(context.Background(), auth.Identity{}, "", "")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}
