package session

import (
	"context"
	"time"

	"pethouse/internal/ports/auth"
)

// Data is what a session row holds. A zero UserID means anonymous (flash-only) session.
type Data struct {
	UserID    int64
	Username  string
	Role      string
	Flash     string
	ExpiresAt time.Time
}

func (d Data) Identity() (auth.Identity, bool) {
	if d.UserID <= 0 {
		return auth.Identity{}, false
	}
	return auth.Identity{
		ID:       d.UserID,
		Username: d.Username,
		Role:     auth.ParseRole(d.Role),
	}, true
}

func (d Data) Expired(now time.Time) bool {
	return !d.ExpiresAt.IsZero() && !now.Before(d.ExpiresAt)
}

// Store persists sessions by id. Load, SetFlash and TakeFlash report domain.ErrNotFound for unknown ids.
// TakeFlash must read and clear the flash in one step.
type Store interface {
	Load(ctx context.Context, id string) (Data, error)
	Save(ctx context.Context, id string, d Data) error
	Delete(ctx context.Context, id string) error
	SetFlash(ctx context.Context, id, msg string) error
	TakeFlash(ctx context.Context, id string) (string, bool, error)
}
