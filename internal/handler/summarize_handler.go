package handler

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/Robinhood75t/Backend-MedScan-AI/internal/domain"
	apperrors "github.com/Robinhood75t/Backend-MedScan-AI/pkg/errors"
)

const (
	uploadFieldName = "file"
	// multipartEnvelope covers boundaries and part headers on top of the file itself.
	multipartEnvelope = 1 << 20

	MsgMissingFile  = "Please select a file"
	MsgFileTooLarge = "File too large"
	MsgBadUpload    = "Invalid upload"
)

// SummarizeHandler serves POST /api/summarize.
type SummarizeHandler struct {
	store      domain.UploadStore
	summarizer domain.Summarizer
	maxBytes   int64
	logger     domain.Logger
}

// NewSummarizeHandler creates a new summarize handler
func NewSummarizeHandler(store domain.UploadStore, summarizer domain.Summarizer, maxBytes int64, logger domain.Logger) *SummarizeHandler {
	return &SummarizeHandler{
		store:      store,
		summarizer: summarizer,
		maxBytes:   maxBytes,
		logger:     logger,
	}
}

// Summarize streams the "file" part to the upload store and runs the pipeline on it.
func (h *SummarizeHandler) Summarize(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+multipartEnvelope)

	part, err := h.filePart(r)
	if err != nil {
		h.writeUploadError(w, r, err, true)
		return
	}
	defer part.Close()

	originalName := sanitizeFileName(part.FileName())
	contentType := part.Header.Get("Content-Type")

	body := &bodyReader{r: part}
	doc, err := h.store.Save(body, originalName, contentType)
	if err != nil {
		h.writeUploadError(w, r, err, body.err != nil)
		return
	}

	h.logger.Info("Upload received",
		"request_id", RequestIDFromContext(r),
		"document_id", doc.ID,
		"file_name", originalName,
		"content_type", contentType,
		"size", doc.Size,
	)

	summary, err := h.summarizer.Summarize(r.Context(), doc)
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, domain.SummaryResponse{Result: summary})
}

// filePart advances the multipart stream to the first file part named "file".
func (h *SummarizeHandler) filePart(r *http.Request) (*multipart.Part, error) {
	mr, err := r.MultipartReader()
	if err != nil {
		return nil, domain.ErrMissingFile
	}
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			return nil, domain.ErrMissingFile
		}
		if err != nil {
			return nil, err
		}
		if part.FormName() == uploadFieldName && part.FileName() != "" {
			return part, nil
		}
		_ = part.Close()
	}
}

// writeUploadError maps upload failures to a status. fromBody marks errors raised
// while reading the request body, which are the client's fault.
func (h *SummarizeHandler) writeUploadError(w http.ResponseWriter, r *http.Request, err error, fromBody bool) {
	var maxErr *http.MaxBytesError
	var appErr *apperrors.AppError
	switch {
	case errors.Is(err, domain.ErrMissingFile):
		appErr = apperrors.NewMissingFileError(MsgMissingFile, err)
	case errors.Is(err, domain.ErrFileTooLarge), errors.As(err, &maxErr):
		appErr = apperrors.NewPayloadTooLargeError(MsgFileTooLarge, err)
	case errors.Is(err, multipart.ErrMessageTooLarge):
		appErr = apperrors.NewPayloadTooLargeError(MsgFileTooLarge, err)
	case fromBody:
		appErr = apperrors.NewValidationError(MsgBadUpload, err.Error())
	default:
		appErr = apperrors.NewInternalError("Failed to store upload", err)
	}
	h.logger.Warn("Upload rejected",
		"request_id", RequestIDFromContext(r),
		"status", appErr.StatusCode,
		"error", err,
	)
	writeAppError(w, appErr)
}

// bodyReader remembers the first non-EOF error from the request body so that
// client side stream failures can be told apart from storage failures.
type bodyReader struct {
	r   io.Reader
	err error
}

func (b *bodyReader) Read(p []byte) (int, error) {
	n, err := b.r.Read(p)
	if err != nil && err != io.EOF && b.err == nil {
		b.err = err
	}
	return n, err
}

// sanitizeFileName strips any path components from a client supplied name.
func sanitizeFileName(name string) string {
	name = strings.TrimSpace(filepath.Base(strings.ReplaceAll(name, "\\", "/")))
	if name == "" || name == "." || name == "/" {
		return "document"
	}
	return name
}
