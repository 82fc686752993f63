package domain

import (
	"fmt"
	"mime"
	"os"
	"strings"
	"sync"
	"time"
)

// ContentKind is the closed set of extraction strategies an upload can map to.
type ContentKind int

const (
	ContentKindUnsupported ContentKind = iota
	ContentKindPDF
	ContentKindImage
)

func (k ContentKind) String() string {
	switch k {
	case ContentKindPDF:
		return "pdf"
	case ContentKindImage:
		return "image"
	default:
		return "unsupported"
	}
}

// ClassifyContentType maps a declared MIME type onto a ContentKind.
// Parameters ("; charset=...") are ignored and matching is case-insensitive.
func ClassifyContentType(declared string) ContentKind {
	declared = strings.TrimSpace(declared)
	if declared == "" {
		return ContentKindUnsupported
	}
	mediaType, _, err := mime.ParseMediaType(declared)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(strings.SplitN(declared, ";", 2)[0]))
	}

	switch {
	case mediaType == "application/pdf":
		return ContentKindPDF
	case strings.HasPrefix(mediaType, "image/") && len(mediaType) > len("image/"):
		return ContentKindImage
	default:
		return ContentKindUnsupported
	}
}

// UploadedDocument is a single uploaded file backed by a temporary file on disk.
// The holder must call Release; the backing file is removed exactly once.
type UploadedDocument struct {
	ID           string      `json:"id"`
	OriginalName string      `json:"original_name"`
	ContentType  string      `json:"content_type"`
	Kind         ContentKind `json:"kind"`
	Size         int64       `json:"size"`
	Path         string      `json:"-"`

	release    func() error
	once       sync.Once
	mu         sync.Mutex
	released   bool
	releaseErr error
}

// NewUploadedDocument wraps a temp file. release is invoked at most once.
func NewUploadedDocument(id, originalName, contentType, path string, size int64, release func() error) *UploadedDocument {
	return &UploadedDocument{
		ID:           id,
		OriginalName: originalName,
		ContentType:  contentType,
		Kind:         ClassifyContentType(contentType),
		Size:         size,
		Path:         path,
		release:      release,
	}
}

// ReadAll loads the uploaded bytes from disk.
func (d *UploadedDocument) ReadAll() ([]byte, error) {
	if d.Released() {
		return nil, fmt.Errorf("document %s already released", d.ID)
	}
	data, err := os.ReadFile(d.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	return data, nil
}

// Release deletes the backing storage. Subsequent calls return the first result.
func (d *UploadedDocument) Release() error {
	d.once.Do(func() {
		var err error
		if d.release != nil {
			err = d.release()
		}
		d.mu.Lock()
		d.released = true
		d.releaseErr = err
		d.mu.Unlock()
	})
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.releaseErr
}

// Released reports whether Release has run.
func (d *UploadedDocument) Released() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.released
}

// ExtractedText is the plain text produced by an extraction strategy.
type ExtractedText struct {
	Content  string        `json:"content"`
	Method   string        `json:"method"` // "pdf-text" | "image-ocr"
	Pages    int           `json:"pages"`
	Duration time.Duration `json:"duration"`
}

const (
	ExtractionMethodPDFText  = "pdf-text"
	ExtractionMethodImageOCR = "image-ocr"
)
