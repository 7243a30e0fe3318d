package memory

import (
	"context"

	"pethouse/internal/domain"
	"pethouse/internal/session"
)

type sessionStore struct {
	s *Store
}

func (r *sessionStore) Load(ctx context.Context, id string) (session.Data, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	d, ok := r.s.sessions[id]
	if !ok {
		return session.Data{}, domain.ErrNotFound
	}
	return d, nil
}

func (r *sessionStore) Save(ctx context.Context, id string, d session.Data) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.sessions[id] = d
	return nil
}

func (r *sessionStore) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.sessions, id)
	return nil
}

func (r *sessionStore) SetFlash(ctx context.Context, id, msg string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	d, ok := r.s.sessions[id]
	if !ok {
		return domain.ErrNotFound
	}
	d.Flash = msg
	r.s.sessions[id] = d
	return nil
}

// TakeFlash reads and clears under one lock.
func (r *sessionStore) TakeFlash(ctx context.Context, id string) (string, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	d, ok := r.s.sessions[id]
	if !ok {
		return "", false, domain.ErrNotFound
	}
	msg := d.Flash
	if msg == "" {
		return "", false, nil
	}
	d.Flash = ""
	r.s.sessions[id] = d
	return msg, true, nil
}
