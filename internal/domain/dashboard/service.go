package dashboard

import (
	"context"
	"strings"
	"time"

	"pethouse/internal/domain/visits"
	"pethouse/internal/ports/auth"
)

const dateLayout = "2006-01-02"

type PetCounter interface {
	CountFor(ctx context.Context, id auth.Identity) (int, error)
}

type VisitSource interface {
	CountFor(ctx context.Context, id auth.Identity) (int, error)
	Recent(ctx context.Context, id auth.Identity, f visits.RecentFilter) ([]visits.RecentVisit, error)
}

type Summary struct {
	TotalPets   int
	TotalVisits int
	Recent      []visits.RecentVisit
	Range       visits.RecentFilter
}

type Service struct {
	pets   PetCounter
	visits VisitSource
}

func NewService(pets PetCounter, visits VisitSource) *Service {
	return &Service{pets: pets, visits: visits}
}

// ParseRange turns the query bounds into a filter. Blank or malformed bounds are left open and
// reversed bounds are swapped.
func ParseRange(start, end string) visits.RecentFilter {
	var f visits.RecentFilter
	f.From = parseDate(start)
	f.To = parseDate(end)
	if f.From != nil && f.To != nil && f.From.After(*f.To) {
		f.From, f.To = f.To, f.From
	}
	return f
}

func parseDate(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil
	}
	return &t
}

// Summary counts are always the caller's own, admins included.
func (s *Service) Summary(ctx context.Context, id auth.Identity, start, end string) (Summary, error) {
	f := ParseRange(start, end)
	f.Limit = visits.RecentLimit

	totalPets, err := s.pets.CountFor(ctx, id)
	if err != nil {
		return Summary{}, err
	}
	totalVisits, err := s.visits.CountFor(ctx, id)
	if err != nil {
		return Summary{}, err
	}
	recent, err := s.visits.Recent(ctx, id, f)
	if err != nil {
		return Summary{}, err
	}

	return Summary{
		TotalPets:   totalPets,
		TotalVisits: totalVisits,
		Recent:      recent,
		Range:       f,
	}, nil
}
