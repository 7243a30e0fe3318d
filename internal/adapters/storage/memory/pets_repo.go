package memory

import (
	"context"
	"sort"

	"pethouse/internal/domain"
	"pethouse/internal/domain/pets"
)

type petsRepo struct {
	s  *Store
	tx bool
}

func (r *petsRepo) Create(ctx context.Context, p pets.Pet) (int64, error) {
	unlock := r.s.lockWrite(r.tx)
	defer unlock()

	r.s.nextPetID++
	p.ID = r.s.nextPetID
	r.s.pets[p.ID] = p
	return p.ID, nil
}

// GetByID ignores forUpdate: transactions already run one at a time.
func (r *petsRepo) GetByID(ctx context.Context, id int64, forUpdate bool) (pets.Pet, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.pets[id]
	if !ok {
		return pets.Pet{}, domain.ErrNotFound
	}
	return p, nil
}

func (r *petsRepo) List(ctx context.Context, ownerID int64) ([]pets.Pet, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]pets.Pet, 0)
	for _, p := range r.s.pets {
		if ownerID == 0 || p.OwnerUserID == ownerID {
			out = append(out, p)
		}
	}

	// created_at desc, id desc for ties
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *petsRepo) Update(ctx context.Context, p pets.Pet) error {
	unlock := r.s.lockWrite(r.tx)
	defer unlock()

	current, ok := r.s.pets[p.ID]
	if !ok {
		return domain.ErrNotFound
	}
	p.OwnerUserID = current.OwnerUserID
	p.CreatedAt = current.CreatedAt
	r.s.pets[p.ID] = p
	return nil
}

func (r *petsRepo) Delete(ctx context.Context, id int64) error {
	unlock := r.s.lockWrite(r.tx)
	defer unlock()

	if _, ok := r.s.pets[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.pets, id)
	for vid, v := range r.s.visits {
		if v.PetID == id {
			delete(r.s.visits, vid)
		}
	}
	return nil
}

func (r *petsRepo) CountByOwner(ctx context.Context, ownerID int64) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	n := 0
	for _, p := range r.s.pets {
		if ownerID == 0 || p.OwnerUserID == ownerID {
			n++
		}
	}
	return n, nil
}
