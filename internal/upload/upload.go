// Package upload validates and holds uploaded files. Blobs live in memory
// only: a restart keeps project metadata but loses the image bytes, which is
// an accepted limitation of the local-only design.
package upload

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lumiflow/backend/internal/config"
	"github.com/lumiflow/backend/internal/models"
)

// Kind selects the allowlist an upload is validated against.
type Kind string

const (
	// KindFloorPlan accepts floor-plan drawings.
	KindFloorPlan Kind = "floor-plan"
	// KindPhoto accepts interior photos.
	KindPhoto Kind = "photo"
)

// ErrTooLarge is returned for uploads beyond the configured size limit.
var ErrTooLarge = errors.New("file too large")

// ErrUnsupportedType is returned when the sniffed content type is not on the
// allowlist for the upload kind.
var ErrUnsupportedType = errors.New("unsupported file type")

var allowlists = map[Kind][]string{
	KindFloorPlan: {"image/jpeg", "image/png", "application/pdf"},
	KindPhoto:     {"image/jpeg", "image/png"},
}

// Blob is an accepted upload: its metadata plus the raw bytes.
type Blob struct {
	Ref  models.FileRef
	Data []byte
}

// Store keeps accepted uploads in memory, keyed by upload id.
type Store struct {
	mu      sync.RWMutex
	maxSize int64
	blobs   map[string]*Blob
	logger  *zap.Logger
}

// NewStore creates an upload store with the size limit from config.
func NewStore(cfg *config.Config, logger *zap.Logger) *Store {
	return &Store{
		maxSize: cfg.MaxUploadSize,
		blobs:   make(map[string]*Blob),
		logger:  logger,
	}
}

// Accept validates data against the size limit and the kind's type
// allowlist, sniffing the type from content rather than trusting the client.
// A rejected upload leaves previously accepted uploads untouched.
func (s *Store) Accept(kind Kind, fileName string, data []byte) (models.FileRef, error) {
	if int64(len(data)) > s.maxSize {
		return models.FileRef{}, fmt.Errorf("%w: %d bytes, maximum %d", ErrTooLarge, len(data), s.maxSize)
	}

	detected := mimetype.Detect(data)
	if !allowed(kind, detected) {
		return models.FileRef{}, fmt.Errorf("%w: %s", ErrUnsupportedType, detected.String())
	}

	id := uuid.New().String()
	ref := models.FileRef{
		UploadID:    id,
		FileName:    fileName,
		ContentType: detected.String(),
		Size:        int64(len(data)),
		PreviewURL:  "/api/v1/uploads/" + id,
	}

	s.mu.Lock()
	s.blobs[id] = &Blob{Ref: ref, Data: data}
	s.mu.Unlock()

	s.logger.Info("Accepted upload",
		zap.String("id", id),
		zap.String("kind", string(kind)),
		zap.String("content_type", ref.ContentType),
		zap.Int64("size", ref.Size),
	)
	return ref, nil
}

// Get retrieves an accepted upload by id.
func (s *Store) Get(id string) (*Blob, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	blob, ok := s.blobs[id]
	return blob, ok
}

// Remove drops an upload. Removing an unknown id is a no-op.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, id)
}

func allowed(kind Kind, detected *mimetype.MIME) bool {
	for _, t := range allowlists[kind] {
		if detected.Is(t) {
			return true
		}
	}
	return false
}
