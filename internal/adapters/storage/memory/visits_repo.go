package memory

import (
	"context"
	"sort"

	"pethouse/internal/domain"
	"pethouse/internal/domain/visits"
)

type visitsRepo struct {
	s  *Store
	tx bool
}

func (r *visitsRepo) Create(ctx context.Context, v visits.Visit) (int64, error) {
	unlock := r.s.lockWrite(r.tx)
	defer unlock()

	if _, ok := r.s.pets[v.PetID]; !ok {
		return 0, domain.ErrNotFound
	}

	r.s.nextVisitID++
	v.ID = r.s.nextVisitID
	r.s.visits[v.ID] = v
	return v.ID, nil
}

func (r *visitsRepo) GetWithPet(ctx context.Context, id int64, forUpdate bool) (visits.Record, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	v, ok := r.s.visits[id]
	if !ok {
		return visits.Record{}, domain.ErrNotFound
	}
	p, ok := r.s.pets[v.PetID]
	if !ok {
		return visits.Record{}, domain.ErrNotFound
	}
	return visits.Record{Visit: v, Pet: p}, nil
}

func (r *visitsRepo) ListByPet(ctx context.Context, petID int64) ([]visits.Visit, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]visits.Visit, 0)
	for _, v := range r.s.visits {
		if v.PetID == petID {
			out = append(out, v)
		}
	}
	sortNewestFirst(out, func(v visits.Visit) visits.Visit { return v })
	return out, nil
}

func (r *visitsRepo) Update(ctx context.Context, v visits.Visit) error {
	unlock := r.s.lockWrite(r.tx)
	defer unlock()

	current, ok := r.s.visits[v.ID]
	if !ok {
		return domain.ErrNotFound
	}
	v.PetID = current.PetID
	v.CreatedAt = current.CreatedAt
	r.s.visits[v.ID] = v
	return nil
}

func (r *visitsRepo) Delete(ctx context.Context, id int64) error {
	unlock := r.s.lockWrite(r.tx)
	defer unlock()

	if _, ok := r.s.visits[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.visits, id)
	return nil
}

func (r *visitsRepo) CountByOwner(ctx context.Context, ownerID int64) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	n := 0
	for _, v := range r.s.visits {
		if p, ok := r.s.pets[v.PetID]; ok && p.OwnerUserID == ownerID {
			n++
		}
	}
	return n, nil
}

func (r *visitsRepo) ListRecent(ctx context.Context, ownerID int64, f visits.RecentFilter) ([]visits.RecentVisit, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]visits.RecentVisit, 0)
	for _, v := range r.s.visits {
		p, ok := r.s.pets[v.PetID]
		if !ok || p.OwnerUserID != ownerID || !f.Match(v.VisitDate) {
			continue
		}
		out = append(out, visits.RecentVisit{Visit: v, PetName: p.Name})
	}
	sortNewestFirst(out, func(rv visits.RecentVisit) visits.Visit { return rv.Visit })

	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

// sortNewestFirst orders by visit_date desc, created_at desc, id desc.
func sortNewestFirst[T any](items []T, visit func(T) visits.Visit) {
	sort.Slice(items, func(i, j int) bool {
		a, b := visit(items[i]), visit(items[j])
		if !a.VisitDate.Equal(b.VisitDate) {
			return a.VisitDate.After(b.VisitDate)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})
}
