package domain

import (
	"context"
	"io"
	"time"
)

// TextExtractor turns an uploaded document into plain text.
type TextExtractor interface {
	Extract(ctx context.Context, doc *UploadedDocument) (*ExtractedText, error)
}

// CompletionClient sends one prompt to a completion service and returns the raw reply.
type CompletionClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// UploadStore persists an incoming file part for the lifetime of one request.
type UploadStore interface {
	Save(r io.Reader, originalName, contentType string) (*UploadedDocument, error)
}

// Summarizer runs the document-to-summary pipeline.
type Summarizer interface {
	Summarize(ctx context.Context, doc *UploadedDocument) (Summary, error)
}

// Logger defines the interface for logging operations
type Logger interface {
	Info(msg string, fields ...interface{})
	Error(msg string, err error, fields ...interface{})
	Debug(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
}

// Config defines the interface for configuration management
type Config interface {
	GetServerPort() string
	GetUploadPath() string
	GetMaxFileSize() int64
	GetLogLevel() string
	GetAllowedOrigins() []string
	GetCompletionProvider() string
	GetCompletionAPIKey() string
	GetCompletionBaseURL() string
	GetCompletionModel() string
	GetCompletionTimeout() time.Duration
	GetVertexProjectID() string
	GetVertexLocation() string
	GetVertexModel() string
	GetPDFEngine() string
	GetTesseractPath() string
	GetTessdataDir() string
	Validate() error
}
