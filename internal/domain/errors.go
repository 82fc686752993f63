package domain

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrMissingFile         = errors.New("missing file")
	ErrFileTooLarge        = errors.New("file too large")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrEmptyExtraction     = errors.New("no readable text extracted")
	ErrExtractionFailed    = errors.New("text extraction failed")
)

// UpstreamError is returned when the completion service does not answer with a 2xx.
// StatusCode is 0 when no HTTP response was received.
type UpstreamError struct {
	Provider   string
	StatusCode int
	Body       string
	Cause      error
}

func (e *UpstreamError) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("%s api error (status %d): %s", e.Provider, e.StatusCode, e.Body)
	case e.Cause != nil:
		return fmt.Sprintf("%s api error: %v", e.Provider, e.Cause)
	default:
		return fmt.Sprintf("%s api error: %s", e.Provider, e.Body)
	}
}

func (e *UpstreamError) Unwrap() error {
	return e.Cause
}
