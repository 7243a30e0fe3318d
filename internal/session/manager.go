package session

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"pethouse/internal/domain"
	"pethouse/internal/platform/logger"
)

type ctxKey string

const sessionKey ctxKey = "session"

type Options struct {
	CookieName string
	TTL        time.Duration
	Secure     bool
}

// Manager loads the session named by the request cookie and binds a *Session to the request context.
type Manager struct {
	store  Store
	cookie string
	ttl    time.Duration
	secure bool
	log    logger.Logger
	now    func() time.Time
}

func NewManager(store Store, opts Options, log logger.Logger) *Manager {
	if log == nil {
		log = logger.Nop()
	}
	name := strings.TrimSpace(opts.CookieName)
	if name == "" {
		name = "pethouse_session"
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Manager{
		store:  store,
		cookie: name,
		ttl:    ttl,
		secure: opts.Secure,
		log:    log,
		now:    time.Now,
	}
}

// Middleware never rejects a request. Unknown, expired or unreadable sessions become anonymous ones.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := m.load(r.Context(), w, r)
		ctx := context.WithValue(r.Context(), sessionKey, s)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *Manager) load(ctx context.Context, w http.ResponseWriter, r *http.Request) *Session {
	s := &Session{m: m, w: w}

	c, err := r.Cookie(m.cookie)
	if err != nil || strings.TrimSpace(c.Value) == "" {
		return s
	}

	d, err := m.store.Load(ctx, c.Value)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return s
	case err != nil:
		m.log.Error("session load failed", map[string]any{"err": err})
		return s
	}

	if d.Expired(m.now()) {
		if err := m.store.Delete(ctx, c.Value); err != nil {
			m.log.Warn("expired session delete failed", map[string]any{"err": err})
		}
		return s
	}

	s.id = c.Value
	s.data = d
	return s
}

// FromContext returns the request's session. It is absent only when Manager.Middleware is not mounted.
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionKey).(*Session)
	return s, ok && s != nil
}

func (m *Manager) writeCookie(w http.ResponseWriter, id string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookie,
		Value:    id,
		Path:     "/",
		Expires:  expires,
		MaxAge:   int(expires.Sub(m.now()).Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (m *Manager) expireCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
