package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/asaskevich/govalidator"
	"golang.org/x/crypto/bcrypt"

	"pethouse/internal/domain"
	"pethouse/internal/ports/auth"
)

// bcrypt ignores input past this length; longer passwords are rejected instead of silently truncated.
const maxPasswordBytes = 72

type Service struct {
	repo  Repository
	cost  int
	now   func() time.Time
	dummy func() []byte
}

func NewService(repo Repository, bcryptCost int) *Service {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	s := &Service{
		repo: repo,
		cost: bcryptCost,
		now:  time.Now,
	}
	// Compared against when the identifier matches no account, so both failure paths pay for one hash.
	s.dummy = sync.OnceValue(func() []byte {
		h, _ := bcrypt.GenerateFromPassword([]byte("pethouse:no-such-user"), s.cost)
		return h
	})
	return s
}

type RegisterInput struct {
	Username        string
	Email           string
	Password        string
	PasswordConfirm string
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (int64, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.TrimSpace(in.Email)

	var p domain.Problems
	p.Addf(username == "", "Username is required.")
	if email == "" {
		p.Add("Email address is required.")
	} else if !govalidator.IsEmail(email) {
		p.Add("Email address is not valid.")
	}
	p.Addf(in.Password == "", "Password is required.")
	p.Addf(len(in.Password) > maxPasswordBytes, "Password must be at most 72 bytes.")
	p.Addf(in.Password != in.PasswordConfirm, "Password confirmation does not match.")
	if err := p.Err(); err != nil {
		return 0, err
	}

	taken, err := s.repo.ExistsByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return 0, fmt.Errorf("check identity: %w", err)
	}
	if taken {
		return 0, domain.ErrDuplicateIdentity
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}

	id, err := s.repo.Create(ctx, User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         auth.RoleOwner,
		CreatedAt:    s.now().UTC(),
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateIdentity) {
			return 0, domain.ErrDuplicateIdentity
		}
		return 0, fmt.Errorf("create user: %w", err)
	}
	return id, nil
}

// Login checks identifier (username or email) and password, then binds the identity to sc under a new
// session identifier. Unknown identifier and wrong password are the same error.
func (s *Service) Login(ctx context.Context, sc auth.SessionContext, identifier, password string) (auth.Identity, error) {
	identifier = strings.TrimSpace(identifier)

	var p domain.Problems
	p.Addf(identifier == "", "Username or email is required.")
	p.Addf(password == "", "Password is required.")
	if err := p.Err(); err != nil {
		return auth.Identity{}, err
	}

	u, err := s.repo.GetByIdentifier(ctx, identifier)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		_ = bcrypt.CompareHashAndPassword(s.dummy(), []byte(password))
		return auth.Identity{}, domain.ErrInvalidCredentials
	case err != nil:
		return auth.Identity{}, fmt.Errorf("lookup user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return auth.Identity{}, domain.ErrInvalidCredentials
	}

	id := u.Identity()
	if err := sc.Establish(ctx, id); err != nil {
		return auth.Identity{}, fmt.Errorf("establish session: %w", err)
	}
	return id, nil
}

// Logout drops the identity; a flash queued before the call is kept for the next page.
func (s *Service) Logout(ctx context.Context, sc auth.SessionContext) error {
	if err := sc.Clear(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (s *Service) CurrentIdentity(sc auth.SessionContext) (auth.Identity, bool) {
	if sc == nil {
		return auth.Identity{}, false
	}
	id, ok := sc.Identity()
	if !ok || !id.Valid() {
		return auth.Identity{}, false
	}
	return id, true
}

// RequireAuthenticated is the check every protected operation starts with.
func (s *Service) RequireAuthenticated(sc auth.SessionContext) (auth.Identity, error) {
	id, ok := s.CurrentIdentity(sc)
	if !ok {
		return auth.Identity{}, domain.ErrUnauthenticated
	}
	return id, nil
}
