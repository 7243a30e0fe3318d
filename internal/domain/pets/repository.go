package pets

import "context"

type Repository interface {
	Create(ctx context.Context, p Pet) (int64, error)
	// GetByID returns domain.ErrNotFound when missing. forUpdate locks the row inside a transaction.
	GetByID(ctx context.Context, id int64, forUpdate bool) (Pet, error)
	// List returns pets of ownerID, or every pet when ownerID is 0. Newest first.
	List(ctx context.Context, ownerID int64) ([]Pet, error)
	Update(ctx context.Context, p Pet) error
	// Delete removes the pet and all of its visits.
	Delete(ctx context.Context, id int64) error
	CountByOwner(ctx context.Context, ownerID int64) (int, error)
}

// TxRunner runs fn with a Repository bound to one transaction. A non-nil error from fn rolls back.
type TxRunner interface {
	RunPets(ctx context.Context, fn func(repo Repository) error) error
}

// PhotoStore keeps uploaded photo files by name.
type PhotoStore interface {
	Save(ctx context.Context, name string, data []byte) error
	Remove(ctx context.Context, name string) error
}
