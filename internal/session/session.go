package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"pethouse/internal/domain"
	"pethouse/internal/ports/auth"
)

// Session is the per-request handle on the session store. It is created lazily: anonymous visitors get
// a row (and a cookie) only once something has to be remembered for them, such as a flash message.
type Session struct {
	m    *Manager
	w    http.ResponseWriter
	id   string // empty until the session exists in the store
	data Data
}

var _ auth.SessionContext = (*Session)(nil)

func (s *Session) ID() string {
	return s.id
}

func (s *Session) Identity() (auth.Identity, bool) {
	if s.id == "" {
		return auth.Identity{}, false
	}
	return s.data.Identity()
}

// Establish binds id to a fresh session identifier. The previous session row is dropped; a pending
// flash message moves to the new one.
func (s *Session) Establish(ctx context.Context, id auth.Identity) error {
	if !id.Valid() {
		return fmt.Errorf("establish session: %w", domain.ErrUnauthenticated)
	}

	flash, err := s.pendingFlash(ctx)
	if err != nil {
		return err
	}
	if err := s.destroy(ctx); err != nil {
		return err
	}

	return s.create(ctx, Data{
		UserID:   id.ID,
		Username: id.Username,
		Role:     string(id.Role),
		Flash:    flash,
	})
}

// Clear forgets the identity and rotates the identifier. A pending flash survives into a new anonymous
// session; without one the cookie is simply expired.
func (s *Session) Clear(ctx context.Context) error {
	flash, err := s.pendingFlash(ctx)
	if err != nil {
		return err
	}
	if err := s.destroy(ctx); err != nil {
		return err
	}

	if flash == "" {
		s.m.expireCookie(s.w)
		return nil
	}
	return s.create(ctx, Data{Flash: flash})
}

// SetFlash stores exactly one pending message, replacing any unread one.
func (s *Session) SetFlash(ctx context.Context, msg string) error {
	if s.id == "" {
		return s.create(ctx, Data{Flash: msg})
	}

	err := s.m.store.SetFlash(ctx, s.id, msg)
	if errors.Is(err, domain.ErrNotFound) {
		// Row expired or was removed between load and now.
		s.id = ""
		return s.create(ctx, Data{Flash: msg})
	}
	if err != nil {
		return fmt.Errorf("set flash: %w", err)
	}
	s.data.Flash = msg
	return nil
}

// TakeFlash returns the pending message once. Store failures are logged and reported as no message.
func (s *Session) TakeFlash(ctx context.Context) (string, bool) {
	if s.id == "" {
		return "", false
	}

	msg, ok, err := s.m.store.TakeFlash(ctx, s.id)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.m.log.Error("take flash failed", map[string]any{"err": err})
		}
		return "", false
	}
	s.data.Flash = ""
	return msg, ok
}

func (s *Session) pendingFlash(ctx context.Context) (string, error) {
	if s.id == "" {
		return "", nil
	}
	msg, _, err := s.m.store.TakeFlash(ctx, s.id)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return "", fmt.Errorf("carry flash: %w", err)
	}
	return msg, nil
}

func (s *Session) destroy(ctx context.Context) error {
	if s.id == "" {
		return nil
	}
	if err := s.m.store.Delete(ctx, s.id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	s.id = ""
	s.data = Data{}
	return nil
}

func (s *Session) create(ctx context.Context, d Data) error {
	id := uuid.NewString()
	d.ExpiresAt = s.m.now().Add(s.m.ttl)

	if err := s.m.store.Save(ctx, id, d); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	s.id = id
	s.data = d
	s.m.writeCookie(s.w, id, d.ExpiresAt)
	return nil
}
