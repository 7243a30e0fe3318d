package auth

import "context"

// SessionContext is the per-request view of the session store that authentication works against.
// Establish and Clear rotate the session identifier.
type SessionContext interface {
	Identity() (Identity, bool)
	Establish(ctx context.Context, id Identity) error
	Clear(ctx context.Context) error
}
