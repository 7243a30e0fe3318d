package pets

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"pethouse/internal/domain"
	"pethouse/internal/platform/logger"
)

// DefaultMaxPhotoBytes is 2 MiB.
const DefaultMaxPhotoBytes int64 = 2 << 20

// allowed photo types by sniffed content type.
var photoExt = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

// PhotoUpload is the raw file received from the client. Data may hold one byte more than the limit,
// which is how an oversized upload is detected without reading all of it.
type PhotoUpload struct {
	Filename string
	Data     []byte
	// Failed is set when the transfer itself broke; the upload is reported as a problem.
	Failed bool
}

// ValidatePhoto sniffs the content type (the client's declaration is ignored) and checks the size.
// It returns the file extension to store under, adding problems to p when the upload is unusable.
func ValidatePhoto(up *PhotoUpload, maxBytes int64, p *domain.Problems) string {
	if up == nil {
		return ""
	}
	if up.Failed {
		p.Add("An error occurred while uploading the photo.")
		return ""
	}

	ext, ok := photoExt[sniff(up.Data)]
	if !ok {
		p.Add("File type not allowed. Only JPG, PNG or WEBP.")
	}
	if int64(len(up.Data)) > maxBytes {
		p.Add(fmt.Sprintf("File exceeds the maximum size of %d MB.", maxBytes>>20))
	}
	return ext
}

func sniff(data []byte) string {
	ct := http.DetectContentType(data)
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return strings.TrimSpace(ct)
}

// NewPhotoName returns a collision-resistant file name such as pet_3f2a...9c.png.
func NewPhotoName(ext string) string {
	return "pet_" + strings.ReplaceAll(uuid.NewString(), "-", "") + "." + ext
}

// StagedPhoto is a stored file whose database row is not committed yet. Release removes it unless Keep
// was called first, so a deferred Release cleans up after any failure that follows the write.
type StagedPhoto struct {
	name  string
	store PhotoStore
	log   logger.Logger
	kept  bool
}

func stagePhoto(ctx context.Context, store PhotoStore, log logger.Logger, data []byte, ext string) (*StagedPhoto, error) {
	name := NewPhotoName(ext)
	if err := store.Save(ctx, name, data); err != nil {
		return nil, fmt.Errorf("store photo: %w", err)
	}
	return &StagedPhoto{name: name, store: store, log: log}, nil
}

func (s *StagedPhoto) Name() string {
	return s.name
}

func (s *StagedPhoto) Keep() {
	s.kept = true
}

func (s *StagedPhoto) Release(ctx context.Context) {
	if s == nil || s.kept {
		return
	}
	if err := s.store.Remove(context.WithoutCancel(ctx), s.name); err != nil {
		s.log.Error("orphan photo not removed", map[string]any{"err": err, "photo": s.name})
	}
}
