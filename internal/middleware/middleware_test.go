package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pethouse/internal/adapters/storage/memory"
	"pethouse/internal/domain"
	"pethouse/internal/middleware"
	"pethouse/internal/platform/logger"
	"pethouse/internal/ports/auth"
	"pethouse/internal/session"
)

type entry struct {
	level  string
	msg    string
	fields map[string]any
}

type recordingLogger struct {
	mu      sync.Mutex
	entries []entry
}

func (l *recordingLogger) With(map[string]any) logger.Logger { return l }
func (l *recordingLogger) Debug(msg string, f map[string]any) { l.add("debug", msg, f) }
func (l *recordingLogger) Info(msg string, f map[string]any)  { l.add("info", msg, f) }
func (l *recordingLogger) Warn(msg string, f map[string]any)  { l.add("warn", msg, f) }
func (l *recordingLogger) Error(msg string, f map[string]any) { l.add("error", msg, f) }

func (l *recordingLogger) add(level, msg string, f map[string]any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entry{level: level, msg: msg, fields: f})
}

type fakeAuthn struct {
	id  auth.Identity
	err error
}

func (f fakeAuthn) RequireAuthenticated(auth.SessionContext) (auth.Identity, error) {
	return f.id, f.err
}

func withSessions(h http.Handler) http.Handler {
	m := session.NewManager(memory.NewStore().Sessions(), session.Options{}, logger.Nop())
	return m.Middleware(h)
}

func TestRequireLogin_RedirectsAnonymous(t *testing.T) {
	called := false
	h := withSessions(middleware.RequireLogin(fakeAuthn{err: domain.ErrUnauthenticated}, "/login", logger.Nop())(
		http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }),
	))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/pets", nil))

	assert.False(t, called)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
	assert.NotEmpty(t, rec.Result().Cookies(), "the sign-in notice travels in a fresh session")
}

func TestRequireLogin_WithoutSessionMiddleware(t *testing.T) {
	h := middleware.RequireLogin(fakeAuthn{id: auth.Identity{ID: 1, Username: "a", Role: auth.RoleOwner}}, "/login", logger.Nop())(
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusTeapot) }),
	)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/pets", nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
}

func TestRequireLogin_PutsIdentityInContext(t *testing.T) {
	want := auth.Identity{ID: 7, Username: "alice", Role: auth.RoleOwner}
	var got auth.Identity
	var ok bool
	h := withSessions(middleware.RequireLogin(fakeAuthn{id: want}, "/login", logger.Nop())(
		http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			got, ok = middleware.GetIdentity(r.Context())
		}),
	))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/pets", nil))

	require.True(t, ok)
	assert.Equal(t, want, got)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetIdentity_Empty(t *testing.T) {
	_, ok := middleware.GetIdentity(httptest.NewRequest(http.MethodGet, "/", nil).Context())
	assert.False(t, ok)
}

func TestRecover_Returns500AndLogs(t *testing.T) {
	log := &recordingLogger{}
	h := chimw.RequestID(middleware.Recover(log)(
		http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") }),
	))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/pets", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Something went wrong")
	require.Len(t, log.entries, 1)
	assert.Equal(t, "error", log.entries[0].level)
	assert.Equal(t, "boom", log.entries[0].fields["panic"])
	assert.NotEmpty(t, log.entries[0].fields["request_id"])
	assert.NotContains(t, rec.Body.String(), "boom")
}

func TestRequestLogger_LevelFollowsStatus(t *testing.T) {
	tests := []struct {
		status int
		level  string
	}{
		{http.StatusOK, "info"},
		{http.StatusSeeOther, "info"},
		{http.StatusUnprocessableEntity, "warn"},
		{http.StatusInternalServerError, "error"},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			log := &recordingLogger{}
			h := chimw.RequestID(middleware.RequestLogger(log)(
				http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
					w.WriteHeader(tt.status)
					_, _ = w.Write([]byte("x"))
				}),
			))

			h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/dashboard", nil))

			require.Len(t, log.entries, 1)
			e := log.entries[0]
			assert.Equal(t, tt.level, e.level)
			assert.Equal(t, tt.status, e.fields["status"])
			assert.Equal(t, "/dashboard", e.fields["path"])
			assert.Equal(t, 1, e.fields["bytes"])
		})
	}
}
