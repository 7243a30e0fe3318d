package httpx_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pethouse/internal/adapters/storage/memory"
	"pethouse/internal/domain"
	"pethouse/internal/domain/guard"
	"pethouse/internal/platform/httpx"
	"pethouse/internal/platform/logger"
	"pethouse/internal/session"
)

// roundTrip runs h behind a session manager, then reads the flash left for the next request.
func roundTrip(t *testing.T, h http.HandlerFunc) (*httptest.ResponseRecorder, *string) {
	t.Helper()
	m := session.NewManager(memory.NewStore().Sessions(), session.Options{}, logger.Nop())

	rec := httptest.NewRecorder()
	m.Middleware(h).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/pets/1/edit", nil))

	var flash *string
	next := httptest.NewRequest(http.MethodGet, "/pets", nil)
	for _, c := range rec.Result().Cookies() {
		next.AddCookie(c)
	}
	m.Middleware(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		flash = httpx.TakeFlash(r)
	})).ServeHTTP(httptest.NewRecorder(), next)

	return rec, flash
}

func TestRefuse_RedirectsWithKindMessage(t *testing.T) {
	tests := []struct {
		kind   guard.Kind
		reason error
		want   string
	}{
		{guard.KindPet, domain.ErrNotFound, "Pet not found or you do not have access to it."},
		{guard.KindPet, domain.ErrDenied, "Pet not found or you do not have access to it."},
		{guard.KindVisit, domain.ErrDenied, "Visit not found or you do not have access to it."},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s/%v", tt.kind, tt.reason), func(t *testing.T) {
			err := fmt.Errorf("update: %w", &guard.RefusedError{Kind: tt.kind, Reason: tt.reason})

			rec, flash := roundTrip(t, func(w http.ResponseWriter, r *http.Request) {
				assert.True(t, httpx.Refuse(w, r, logger.Nop(), err))
			})

			assert.Equal(t, http.StatusSeeOther, rec.Code)
			assert.Equal(t, httpx.ListingPath, rec.Header().Get("Location"))
			require.NotNil(t, flash)
			assert.Equal(t, tt.want, *flash)
		})
	}
}

func TestRefuse_IgnoresOtherErrors(t *testing.T) {
	rec, flash := roundTrip(t, func(w http.ResponseWriter, r *http.Request) {
		assert.False(t, httpx.Refuse(w, r, logger.Nop(), errors.New("connection reset")))
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Location"))
	assert.Nil(t, flash)
}

func TestServerError_HidesDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	httpx.ServerError(rec, httptest.NewRequest(http.MethodPost, "/pets", nil), logger.Nop(),
		"create pet failed", errors.New("pq: relation pets does not exist"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body httpx.MessageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, httpx.GenericError, body.Message)
	assert.NotContains(t, rec.Body.String(), "relation")
}

func TestFormError_EchoesInput(t *testing.T) {
	rec := httptest.NewRecorder()
	httpx.FormError(rec, http.StatusUnprocessableEntity, []string{"Name is required."}, map[string]string{"species": "cat"})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var body httpx.FormErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []string{"Name is required."}, body.Errors)
	assert.Equal(t, "cat", body.Old["species"])
}
