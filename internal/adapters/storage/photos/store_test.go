package photos

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pethouse/internal/domain"
)

func newMemStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(afero.NewMemMapFs(), "/uploads")
	require.NoError(t, err)
	return s
}

func TestSaveRemove(t *testing.T) {
	s := newMemStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "pet_abc.png", []byte("png")))
	assert.True(t, s.Exists("pet_abc.png"))

	assert.Error(t, s.Save(ctx, "pet_abc.png", []byte("again")), "names are never reused")

	require.NoError(t, s.Remove(ctx, "pet_abc.png"))
	assert.False(t, s.Exists("pet_abc.png"))
	assert.ErrorIs(t, s.Remove(ctx, "pet_abc.png"), domain.ErrNotFound)
}

func TestRejectsPathsOutsideTheUploadDir(t *testing.T) {
	s := newMemStore(t)
	for _, name := range []string{"", "../secret", "a/b.png", `..\x.png`, "."} {
		err := s.Save(context.Background(), name, []byte("x"))
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "name=%q", name)
	}
}

func TestHandlerServesStoredFiles(t *testing.T) {
	s := newMemStore(t)
	require.NoError(t, s.Save(context.Background(), "pet_1.png", []byte("\x89PNG\r\n\x1a\nrest")))

	srv := httptest.NewServer(http.StripPrefix("/uploads", s.Handler()))
	defer srv.Close()

	res, err := http.Get(srv.URL + "/uploads/pet_1.png")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "nosniff", res.Header.Get("X-Content-Type-Options"))

	res, err = http.Get(srv.URL + "/uploads/")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusNotFound, res.StatusCode)

	res, err = http.Get(srv.URL + "/uploads/missing.png")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}
