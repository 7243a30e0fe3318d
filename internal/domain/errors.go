package domain

import (
	"errors"
	"strings"
)

// Domain errors shared by every module. Adapters translate their own failures into these.
var (
	ErrNotFound           = errors.New("not found")
	ErrDenied             = errors.New("access denied")
	ErrInvalidInput       = errors.New("invalid input")
	ErrDuplicateIdentity  = errors.New("username or email already in use")
	ErrInvalidCredentials = errors.New("invalid username/email or password")
	ErrUnauthenticated    = errors.New("authentication required")
)

// ValidationError carries every problem found in a submission, in the order they were detected.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid input: " + strings.Join(e.Problems, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// Problems collects validation messages without short-circuiting.
type Problems []string

func (p *Problems) Add(msg string) {
	*p = append(*p, msg)
}

func (p *Problems) Addf(cond bool, msg string) {
	if cond {
		p.Add(msg)
	}
}

// Err returns nil when nothing was collected.
func (p Problems) Err() error {
	if len(p) == 0 {
		return nil
	}
	return &ValidationError{Problems: append([]string(nil), p...)}
}
