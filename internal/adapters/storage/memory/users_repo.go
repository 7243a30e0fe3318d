package memory

import (
	"context"
	"strings"

	"pethouse/internal/domain"
	"pethouse/internal/domain/users"
)

type usersRepo struct {
	s *Store
}

func (r *usersRepo) Create(ctx context.Context, u users.User) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, x := range r.s.users {
		if x.Username == u.Username || strings.EqualFold(x.Email, u.Email) {
			return 0, domain.ErrDuplicateIdentity
		}
	}

	r.s.nextUserID++
	u.ID = r.s.nextUserID
	r.s.users[u.ID] = u
	return u.ID, nil
}

func (r *usersRepo) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, x := range r.s.users {
		if x.Username == username || strings.EqualFold(x.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (r *usersRepo) GetByIdentifier(ctx context.Context, identifier string) (users.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	// Username wins over email when one account's username equals another's email.
	var byEmail *users.User
	for _, x := range r.s.users {
		if x.Username == identifier {
			return x, nil
		}
		if byEmail == nil && strings.EqualFold(x.Email, identifier) {
			u := x
			byEmail = &u
		}
	}
	if byEmail != nil {
		return *byEmail, nil
	}
	return users.User{}, domain.ErrNotFound
}

// SeedUser inserts u as-is (role included). Used to provision admins in dev mode and tests.
func (s *Store) SeedUser(u users.User) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextUserID++
	u.ID = s.nextUserID
	s.users[u.ID] = u
	return u.ID
}
