// Package photos stores uploaded pet photos on an afero filesystem. Production uses the OS filesystem
// rooted at UPLOAD_DIR; tests use an in-memory one.
package photos

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/spf13/afero"

	"pethouse/internal/domain"
	"pethouse/internal/domain/pets"
)

type Store struct {
	fs afero.Fs
}

var _ pets.PhotoStore = (*Store)(nil)

// NewStore roots fs at dir. An empty dir uses fs as-is.
func NewStore(fs afero.Fs, dir string) (*Store, error) {
	if strings.TrimSpace(dir) != "" {
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create upload dir: %w", err)
		}
		fs = afero.NewBasePathFs(fs, dir)
	}
	return &Store{fs: fs}, nil
}

// NewDiskStore is the production store under dir.
func NewDiskStore(dir string) (*Store, error) {
	return NewStore(afero.NewOsFs(), dir)
}

func (s *Store) Save(ctx context.Context, name string, data []byte) error {
	name, err := cleanName(name)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	f, err := s.fs.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", name, err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = s.fs.Remove(name)
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		_ = s.fs.Remove(name)
		return fmt.Errorf("close %s: %w", name, err)
	}
	return nil
}

// Remove reports domain.ErrNotFound for files that are already gone.
func (s *Store) Remove(ctx context.Context, name string) error {
	name, err := cleanName(name)
	if err != nil {
		return err
	}
	if err := s.fs.Remove(name); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("remove %s: %w", name, err)
	}
	return nil
}

func (s *Store) Exists(name string) bool {
	name, err := cleanName(name)
	if err != nil {
		return false
	}
	ok, _ := afero.Exists(s.fs, name)
	return ok
}

// Handler serves stored photos read-only. Directory listings are not exposed.
func (s *Store) Handler() http.Handler {
	files := http.FileServer(afero.NewHttpFs(afero.NewReadOnlyFs(s.fs)).Dir("/"))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("X-Content-Type-Options", "nosniff")
		files.ServeHTTP(w, r)
	})
}

// cleanName accepts flat file names only.
func cleanName(name string) (string, error) {
	n := path.Base(strings.TrimSpace(name))
	if n == "" || n == "." || n == "/" || n != strings.TrimSpace(name) || strings.ContainsAny(n, `\`) {
		return "", fmt.Errorf("photo name %q: %w", name, domain.ErrInvalidInput)
	}
	return "/" + n, nil
}
