package service

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Robinhood75t/Backend-MedScan-AI/internal/domain"

	"github.com/google/uuid"
)

// FileUploadStore keeps each upload in its own uniquely named file under dir.
type FileUploadStore struct {
	dir      string
	maxBytes int64
	logger   domain.Logger
}

// NewUploadStore creates a store that writes to dir and rejects parts larger than maxBytes.
func NewUploadStore(dir string, maxBytes int64, logger domain.Logger) *FileUploadStore {
	return &FileUploadStore{
		dir:      dir,
		maxBytes: maxBytes,
		logger:   logger,
	}
}

// MaxBytes returns the per-file ceiling.
func (s *FileUploadStore) MaxBytes() int64 {
	return s.maxBytes
}

// Save streams r into a new temp file. The returned document owns the file and
// removes it on Release. On error nothing is left on disk.
func (s *FileUploadStore) Save(r io.Reader, originalName, contentType string) (*domain.UploadedDocument, error) {
	if err := os.MkdirAll(s.dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}

	id := uuid.New().String()
	path := filepath.Join(s.dir, id)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to create upload file: %w", err)
	}

	n, copyErr := io.Copy(f, io.LimitReader(r, s.maxBytes+1))
	closeErr := f.Close()

	switch {
	case copyErr != nil:
		s.discard(path)
		return nil, fmt.Errorf("failed to write upload: %w", copyErr)
	case closeErr != nil:
		s.discard(path)
		return nil, fmt.Errorf("failed to write upload: %w", closeErr)
	case n > s.maxBytes:
		s.discard(path)
		s.logger.Warn("Upload exceeds size limit", "file_name", originalName, "limit_bytes", s.maxBytes)
		return nil, domain.ErrFileTooLarge
	}

	s.logger.Debug("Upload stored", "document_id", id, "file_name", originalName, "content_type", contentType, "size", n)

	doc := domain.NewUploadedDocument(id, originalName, contentType, path, n, func() error {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			s.logger.Error("Failed to remove upload", err, "document_id", id)
			return err
		}
		s.logger.Debug("Upload released", "document_id", id)
		return nil
	})
	return doc, nil
}

func (s *FileUploadStore) discard(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		s.logger.Error("Failed to remove partial upload", err, "path", path)
	}
}
