package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/medvault/medvault/pkg/errors"
	"github.com/medvault/medvault/pkg/logger"
)

// Upload categories. Each maps to a subdirectory under the store's base dir.
const (
	CategoryAdminCert      = "admin-cert"
	CategoryDoctorCert     = "doctor-cert"
	CategoryPatientIDProof = "patient-id-proof"
)

var (
	// ErrEmptyFile is returned for zero-length uploads.
	ErrEmptyFile = apperrors.New("EMPTY_FILE", "Uploaded file is empty.", 400)

	// ErrInvalidFilename is returned for missing or path-traversing filenames.
	ErrInvalidFilename = apperrors.New("INVALID_FILENAME", "Invalid file name.", 400)

	// ErrStorageFailure is returned when the file cannot be persisted.
	ErrStorageFailure = apperrors.New("STORAGE_FAILURE", "Failed to store uploaded file.", 500)
)

var validCategories = map[string]struct{}{
	CategoryAdminCert:      {},
	CategoryDoctorCert:     {},
	CategoryPatientIDProof: {},
}

// FileStore persists uploaded documents on the local filesystem and hands
// back opaque reference strings of the form /files/<category>/<uuid>_<name>.
type FileStore struct {
	baseDir string
	log     *zap.Logger
}

// NewFileStore creates the base directory tree and returns a store rooted
// there.
func NewFileStore(baseDir string) (*FileStore, error) {
	if strings.TrimSpace(baseDir) == "" {
		return nil, fmt.Errorf("file store requires a base directory")
	}
	for category := range validCategories {
		if err := os.MkdirAll(filepath.Join(baseDir, category), 0o755); err != nil {
			return nil, fmt.Errorf("create upload directory %s: %w", category, err)
		}
	}
	return &FileStore{baseDir: baseDir, log: logger.WithModule("storage")}, nil
}

// Save writes the stream into the category directory under a unique name and
// returns the reference string. Empty streams and traversal filenames are
// rejected before anything touches disk.
func (s *FileStore) Save(r io.Reader, category, filename string) (string, error) {
	if _, ok := validCategories[category]; !ok {
		return "", ErrInvalidFilename.WithInternal(fmt.Errorf("unknown category %q", category))
	}

	filename = strings.TrimSpace(filename)
	if filename == "" || strings.Contains(filename, "..") ||
		strings.ContainsAny(filename, `/\`) {
		return "", ErrInvalidFilename
	}

	stored := fmt.Sprintf("%s_%s", uuid.NewString(), filename)
	path := filepath.Join(s.baseDir, category, stored)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", ErrStorageFailure.WithInternal(fmt.Errorf("create %s: %w", path, err))
	}

	written, err := io.Copy(f, r)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
		return "", ErrStorageFailure.WithInternal(fmt.Errorf("write %s: %w", path, err))
	}
	if written == 0 {
		_ = os.Remove(path)
		return "", ErrEmptyFile
	}

	ref := fmt.Sprintf("/files/%s/%s", category, stored)
	s.log.Debug("stored upload",
		zap.String("category", category),
		zap.String("ref", ref),
		zap.Int64("bytes", written))
	return ref, nil
}

// Resolve maps a reference produced by Save back to the on-disk path. It
// refuses references that escape the base directory.
func (s *FileStore) Resolve(ref string) (string, error) {
	rel, ok := strings.CutPrefix(ref, "/files/")
	if !ok {
		return "", ErrInvalidFilename
	}

	category, name, ok := strings.Cut(rel, "/")
	if !ok {
		return "", ErrInvalidFilename
	}
	if _, valid := validCategories[category]; !valid {
		return "", ErrInvalidFilename
	}
	if name == "" || strings.Contains(name, "..") || strings.ContainsAny(name, `/\`) {
		return "", ErrInvalidFilename
	}

	return filepath.Join(s.baseDir, category, name), nil
}
