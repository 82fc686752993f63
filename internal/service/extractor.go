package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Robinhood75t/Backend-MedScan-AI/internal/domain"
)

// ImageRecognizer turns an image file into text.
type ImageRecognizer interface {
	Recognize(ctx context.Context, path string) (string, error)
}

// DocumentExtractor picks an extraction strategy from the document's kind.
type DocumentExtractor struct {
	pdfEngine PDFTextEngine
	ocr       ImageRecognizer
	logger    domain.Logger
}

// NewDocumentExtractor creates a new extractor
func NewDocumentExtractor(pdfEngine PDFTextEngine, ocr ImageRecognizer, logger domain.Logger) *DocumentExtractor {
	return &DocumentExtractor{
		pdfEngine: pdfEngine,
		ocr:       ocr,
		logger:    logger,
	}
}

// Extract returns the document's plain text. Unsupported kinds fail before any
// engine is touched. Engine failures wrap domain.ErrExtractionFailed.
func (e *DocumentExtractor) Extract(ctx context.Context, doc *domain.UploadedDocument) (*domain.ExtractedText, error) {
	start := time.Now()

	var (
		res *domain.ExtractedText
		err error
	)
	switch doc.Kind {
	case domain.ContentKindPDF:
		res, err = e.extractPDF(ctx, doc)
	case domain.ContentKindImage:
		res, err = e.extractImage(ctx, doc)
	case domain.ContentKindUnsupported:
		return nil, domain.ErrUnsupportedFileType
	default:
		return nil, domain.ErrUnsupportedFileType
	}
	if err != nil {
		return nil, err
	}

	res.Content = sanitizeText(res.Content)
	res.Duration = time.Since(start)
	e.logger.Info("Text extracted",
		"document_id", doc.ID,
		"method", res.Method,
		"pages", res.Pages,
		"chars", len(res.Content),
		"duration_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}

func (e *DocumentExtractor) extractPDF(ctx context.Context, doc *domain.UploadedDocument) (*domain.ExtractedText, error) {
	data, err := doc.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrExtractionFailed, err)
	}

	// A document whose page tree cannot be read is rejected before any engine runs.
	pageCount, err := countPDFPages(data)
	if err != nil {
		e.logger.Warn("PDF structure check failed", "document_id", doc.ID, "error", err)
		return nil, fmt.Errorf("%w: malformed pdf: %v", domain.ErrExtractionFailed, err)
	}

	pages, err := e.pdfEngine.ExtractPages(ctx, data)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		e.logger.Error("PDF text extraction failed", err, "document_id", doc.ID, "engine", e.pdfEngine.Name())
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrExtractionFailed, e.pdfEngine.Name(), err)
	}
	if len(pages) != pageCount {
		e.logger.Warn("PDF page count mismatch",
			"document_id", doc.ID,
			"engine", e.pdfEngine.Name(),
			"engine_pages", len(pages),
			"structure_pages", pageCount,
		)
	}

	return &domain.ExtractedText{
		Content: joinPages(pages),
		Method:  domain.ExtractionMethodPDFText,
		Pages:   len(pages),
	}, nil
}

func (e *DocumentExtractor) extractImage(ctx context.Context, doc *domain.UploadedDocument) (*domain.ExtractedText, error) {
	text, err := e.ocr.Recognize(ctx, doc.Path)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		e.logger.Error("Image OCR failed", err, "document_id", doc.ID)
		return nil, fmt.Errorf("%w: ocr: %v", domain.ErrExtractionFailed, err)
	}

	return &domain.ExtractedText{
		Content: text,
		Method:  domain.ExtractionMethodImageOCR,
		Pages:   1,
	}, nil
}
