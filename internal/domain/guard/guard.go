// Package guard decides whether an identity may act on a pet-scoped entity.
//
// Every read or write of a pet or visit goes through AuthorizeAndLoad: resolve first, authorize
// second, and only then hand the entity back. Missing and foreign entities are refused with the same
// RefusedError message so callers cannot tell them apart.
package guard

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"pethouse/internal/domain"
	"pethouse/internal/ports/auth"
)

// Owned is anything whose access is scoped to a pet owner. Visits report their parent pet's owner.
type Owned interface {
	OwnerID() int64
}

type Kind string

const (
	KindPet   Kind = "pet"
	KindVisit Kind = "visit"
)

// RefusedError is returned for both missing and forbidden entities. Reason keeps the distinction
// for logs only.
type RefusedError struct {
	Kind   Kind
	Reason error // domain.ErrNotFound or domain.ErrDenied
}

func (e *RefusedError) Error() string {
	return fmt.Sprintf("%s refused: %v", e.Kind, e.Reason)
}

func (e *RefusedError) Unwrap() error {
	return e.Reason
}

// Message is what the user sees. It depends on the kind only.
func (e *RefusedError) Message() string {
	switch e.Kind {
	case KindVisit:
		return "Visit not found or you do not have access to it."
	default:
		return "Pet not found or you do not have access to it."
	}
}

// Authorize allows owners of the entity and admins.
func Authorize(id auth.Identity, e Owned) error {
	if id.IsAdmin() {
		return nil
	}
	if id.Valid() && e.OwnerID() == id.ID {
		return nil
	}
	return domain.ErrDenied
}

// ParseID accepts positive base-10 integers only; anything else is reported as not found.
func ParseID(raw string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || n <= 0 {
		return 0, domain.ErrNotFound
	}
	return n, nil
}

// Resolver loads an entity by primary key and reports domain.ErrNotFound when it does not exist.
type Resolver[T Owned] func(ctx context.Context, id int64) (T, error)

// AuthorizeAndLoad is the single sequence every pet/visit operation follows.
// Storage failures are returned wrapped, not as refusals.
func AuthorizeAndLoad[T Owned](ctx context.Context, id auth.Identity, kind Kind, rawID string, resolve Resolver[T]) (T, error) {
	var zero T

	entityID, err := ParseID(rawID)
	if err != nil {
		return zero, &RefusedError{Kind: kind, Reason: domain.ErrNotFound}
	}

	e, err := resolve(ctx, entityID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return zero, &RefusedError{Kind: kind, Reason: domain.ErrNotFound}
		}
		return zero, fmt.Errorf("load %s %d: %w", kind, entityID, err)
	}

	if err := Authorize(id, e); err != nil {
		return zero, &RefusedError{Kind: kind, Reason: err}
	}
	return e, nil
}

// Refused reports whether err is a not-found or denied outcome of the guard.
func Refused(err error) bool {
	var re *RefusedError
	return errors.As(err, &re)
}

// AsRefused extracts the refusal, if any.
func AsRefused(err error) (*RefusedError, bool) {
	var re *RefusedError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}
