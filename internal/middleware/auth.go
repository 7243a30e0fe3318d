package middleware

import (
	"context"
	"net/http"

	"pethouse/internal/platform/httpx"
	"pethouse/internal/platform/logger"
	"pethouse/internal/ports/auth"
	"pethouse/internal/session"
)

type ctxKey string

const identityKey ctxKey = "identity"

const msgLoginRequired = "Please sign in to continue."

// Authenticator is the part of the auth service RequireLogin needs.
type Authenticator interface {
	RequireAuthenticated(sc auth.SessionContext) (auth.Identity, error)
}

// RequireLogin lets authenticated requests through with their identity in the context.
// Everyone else is sent to loginPath.
func RequireLogin(authn Authenticator, loginPath string, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, ok := session.FromContext(r.Context())
			if !ok {
				http.Redirect(w, r, loginPath, http.StatusSeeOther)
				return
			}

			id, err := authn.RequireAuthenticated(s)
			if err != nil {
				httpx.Redirect(w, r, log, loginPath, msgLoginRequired)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

func WithIdentity(ctx context.Context, id auth.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

func GetIdentity(ctx context.Context) (auth.Identity, bool) {
	v := ctx.Value(identityKey)
	if v == nil {
		return auth.Identity{}, false
	}
	id, ok := v.(auth.Identity)
	return id, ok
}
