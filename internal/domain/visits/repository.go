package visits

import (
	"context"

	"pethouse/internal/domain/pets"
)

type Repository interface {
	Create(ctx context.Context, v Visit) (int64, error)
	// GetWithPet joins the visit to its pet; an orphaned visit is domain.ErrNotFound.
	GetWithPet(ctx context.Context, id int64, forUpdate bool) (Record, error)
	// ListByPet orders by visit_date desc, created_at desc.
	ListByPet(ctx context.Context, petID int64) ([]Visit, error)
	Update(ctx context.Context, v Visit) error
	Delete(ctx context.Context, id int64) error
	// CountByOwner counts visits of pets owned by ownerID.
	CountByOwner(ctx context.Context, ownerID int64) (int, error)
	// ListRecent returns visits of ownerID's pets matching f, newest visit_date first.
	ListRecent(ctx context.Context, ownerID int64, f RecentFilter) ([]RecentVisit, error)
}

// TxRunner gives fn both repositories on one transaction, so a parent pet can be locked while its visit
// is written.
type TxRunner interface {
	RunVisits(ctx context.Context, fn func(petRepo pets.Repository, repo Repository) error) error
}
