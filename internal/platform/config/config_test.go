package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "pethouse", cfg.App.Name)
	assert.Equal(t, ":8080", cfg.HTTP.Addr())
	assert.Equal(t, 5*time.Second, cfg.HTTP.ReadTimeout)
	assert.Empty(t, cfg.DB.DSN)
	assert.True(t, cfg.DB.Migrate)
	assert.Equal(t, "pethouse_session", cfg.Session.CookieName)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
	assert.Equal(t, int64(2<<20), cfg.Upload.MaxBytes)
	assert.Equal(t, bcrypt.DefaultCost, cfg.Auth.BcryptCost)
}

func TestLoad_EnvOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("PORT", ":9090")
	t.Setenv("DB_DSN", "  postgres://u:p@localhost/pethouse  ")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("SESSION_SECURE", "true")
	t.Setenv("UPLOAD_MAX_BYTES", "1024")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTP.Addr())
	assert.Equal(t, "postgres://u:p@localhost/pethouse", cfg.DB.DSN)
	assert.Equal(t, 30*time.Minute, cfg.Session.TTL)
	assert.True(t, cfg.Session.Secure)
	assert.Equal(t, int64(1024), cfg.Upload.MaxBytes)
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}
