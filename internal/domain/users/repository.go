package users

import "context"

type Repository interface {
	// Create returns domain.ErrDuplicateIdentity when username or email is taken.
	Create(ctx context.Context, u User) (int64, error)
	// ExistsByUsernameOrEmail is the single combined uniqueness lookup used before insert.
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
	// GetByIdentifier matches username or email; domain.ErrNotFound when neither does.
	GetByIdentifier(ctx context.Context, identifier string) (User, error)
}
