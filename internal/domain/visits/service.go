package visits

import (
	"context"
	"fmt"
	"time"

	"pethouse/internal/domain"
	"pethouse/internal/domain/guard"
	"pethouse/internal/domain/pets"
	"pethouse/internal/ports/auth"
)

// RecentLimit is how many visits the dashboard shows.
const RecentLimit = 5

type Service struct {
	repo    Repository
	petRepo pets.Repository
	tx      TxRunner
	now     func() time.Time
}

func NewService(repo Repository, petRepo pets.Repository, tx TxRunner) *Service {
	return &Service{
		repo:    repo,
		petRepo: petRepo,
		tx:      tx,
		now:     time.Now,
	}
}

// Resolver adapts repo to the guard. forUpdate is only meaningful inside a transaction.
func Resolver(repo Repository, forUpdate bool) guard.Resolver[Record] {
	return func(ctx context.Context, visitID int64) (Record, error) {
		return repo.GetWithPet(ctx, visitID, forUpdate)
	}
}

// Create adds a visit to a pet the caller may act on. The pet row stays locked until commit.
func (s *Service) Create(ctx context.Context, id auth.Identity, rawPetID string, in Input) (Record, error) {
	var rec Record
	err := s.tx.RunVisits(ctx, func(petRepo pets.Repository, repo Repository) error {
		pet, err := guard.AuthorizeAndLoad(ctx, id, guard.KindPet, rawPetID, pets.Resolver(petRepo, true))
		if err != nil {
			return err
		}

		var p domain.Problems
		f := in.normalize(&p)
		if err := p.Err(); err != nil {
			return err
		}

		v := Visit{PetID: pet.ID, CreatedAt: s.now().UTC()}
		f.apply(&v)

		newID, err := repo.Create(ctx, v)
		if err != nil {
			return fmt.Errorf("create visit for pet %d: %w", pet.ID, err)
		}
		v.ID = newID
		rec = Record{Visit: v, Pet: pet}
		return nil
	})
	if err != nil {
		return Record{}, err
	}
	return rec, nil
}

func (s *Service) Get(ctx context.Context, id auth.Identity, rawVisitID string) (Record, error) {
	return guard.AuthorizeAndLoad(ctx, id, guard.KindVisit, rawVisitID, Resolver(s.repo, false))
}

func (s *Service) Update(ctx context.Context, id auth.Identity, rawVisitID string, in Input) (Record, error) {
	var rec Record
	err := s.tx.RunVisits(ctx, func(_ pets.Repository, repo Repository) error {
		current, err := guard.AuthorizeAndLoad(ctx, id, guard.KindVisit, rawVisitID, Resolver(repo, true))
		if err != nil {
			return err
		}

		var p domain.Problems
		f := in.normalize(&p)
		if err := p.Err(); err != nil {
			return err
		}

		next := current
		f.apply(&next.Visit)
		if err := repo.Update(ctx, next.Visit); err != nil {
			return fmt.Errorf("update visit %d: %w", next.ID, err)
		}
		rec = next
		return nil
	})
	if err != nil {
		return Record{}, err
	}
	return rec, nil
}

func (s *Service) Delete(ctx context.Context, id auth.Identity, rawVisitID string) (Record, error) {
	var rec Record
	err := s.tx.RunVisits(ctx, func(_ pets.Repository, repo Repository) error {
		current, err := guard.AuthorizeAndLoad(ctx, id, guard.KindVisit, rawVisitID, Resolver(repo, true))
		if err != nil {
			return err
		}
		if err := repo.Delete(ctx, current.ID); err != nil {
			return fmt.Errorf("delete visit %d: %w", current.ID, err)
		}
		rec = current
		return nil
	})
	if err != nil {
		return Record{}, err
	}
	return rec, nil
}

// ListByPet is the pet profile: the pet itself plus its visit history.
func (s *Service) ListByPet(ctx context.Context, id auth.Identity, rawPetID string) (pets.Pet, []Visit, error) {
	pet, err := guard.AuthorizeAndLoad(ctx, id, guard.KindPet, rawPetID, pets.Resolver(s.petRepo, false))
	if err != nil {
		return pets.Pet{}, nil, err
	}
	items, err := s.repo.ListByPet(ctx, pet.ID)
	if err != nil {
		return pets.Pet{}, nil, fmt.Errorf("list visits of pet %d: %w", pet.ID, err)
	}
	return pet, items, nil
}

func (s *Service) CountFor(ctx context.Context, id auth.Identity) (int, error) {
	if !id.Valid() {
		return 0, domain.ErrUnauthenticated
	}
	n, err := s.repo.CountByOwner(ctx, id.ID)
	if err != nil {
		return 0, fmt.Errorf("count visits: %w", err)
	}
	return n, nil
}

// Recent lists the caller's latest visits inside f. Limit defaults to RecentLimit.
func (s *Service) Recent(ctx context.Context, id auth.Identity, f RecentFilter) ([]RecentVisit, error) {
	if !id.Valid() {
		return nil, domain.ErrUnauthenticated
	}
	if f.Limit <= 0 {
		f.Limit = RecentLimit
	}
	items, err := s.repo.ListRecent(ctx, id.ID, f)
	if err != nil {
		return nil, fmt.Errorf("recent visits: %w", err)
	}
	return items, nil
}
