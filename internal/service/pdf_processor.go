package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/Robinhood75t/Backend-MedScan-AI/internal/domain"

	"github.com/gen2brain/go-fitz"
	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

const (
	PDFEngineMuPDF  = "mupdf"
	PDFEngineNative = "native"
)

// PDFTextEngine extracts the text layer of a PDF, one string per page in page order.
type PDFTextEngine interface {
	Name() string
	ExtractPages(ctx context.Context, pdfBytes []byte) ([]string, error)
}

// NewPDFTextEngine returns the engine registered under name. Empty means mupdf.
func NewPDFTextEngine(name string, logger domain.Logger) (PDFTextEngine, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", PDFEngineMuPDF:
		return NewMuPDFEngine(logger), nil
	case PDFEngineNative:
		return NewNativePDFEngine(logger), nil
	default:
		return nil, fmt.Errorf("unknown pdf engine %q", name)
	}
}

// MuPDFEngine reads PDFs through go-fitz.
type MuPDFEngine struct {
	logger domain.Logger
}

// NewMuPDFEngine creates a new MuPDF backed engine
func NewMuPDFEngine(logger domain.Logger) *MuPDFEngine {
	return &MuPDFEngine{logger: logger}
}

func (e *MuPDFEngine) Name() string { return PDFEngineMuPDF }

// ExtractPages opens the document from memory and reads every page's text.
func (e *MuPDFEngine) ExtractPages(ctx context.Context, pdfBytes []byte) ([]string, error) {
	doc, err := fitz.NewFromMemory(pdfBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	numPages := doc.NumPage()
	pages := make([]string, 0, numPages)
	for i := 0; i < numPages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		text, err := doc.Text(i)
		if err != nil {
			e.logger.Warn("Failed to extract text from page", "page", i+1, "total", numPages, "error", err)
			pages = append(pages, "")
			continue
		}
		e.logger.Debug("PDF page extracted", "page", i+1, "total", numPages, "chars", len(text))
		pages = append(pages, text)
	}
	return pages, nil
}

// NativePDFEngine reads PDFs with the pure-Go ledongthuc/pdf reader.
type NativePDFEngine struct {
	logger domain.Logger
}

// NewNativePDFEngine creates a new pure-Go engine
func NewNativePDFEngine(logger domain.Logger) *NativePDFEngine {
	return &NativePDFEngine{logger: logger}
}

func (e *NativePDFEngine) Name() string { return PDFEngineNative }

// ExtractPages reads the plain text of every page. Pages are 1-indexed in the reader.
func (e *NativePDFEngine) ExtractPages(ctx context.Context, pdfBytes []byte) ([]string, error) {
	r, err := pdf.NewReader(bytes.NewReader(pdfBytes), int64(len(pdfBytes)))
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}

	numPages := r.NumPage()
	pages := make([]string, 0, numPages)
	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := r.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			e.logger.Warn("Failed to extract text from page", "page", i, "total", numPages, "error", err)
			pages = append(pages, "")
			continue
		}
		pages = append(pages, text)
	}
	return pages, nil
}

// countPDFPages reads the page tree with pdfcpu in relaxed mode. An error means
// the document structure is unreadable.
func countPDFPages(pdfBytes []byte) (n int, err error) {
	defer func() {
		if r := recover(); r != nil {
			n, err = 0, fmt.Errorf("pdfcpu panic: %v", r)
		}
	}()
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return api.PageCount(bytes.NewReader(pdfBytes), conf)
}

// joinPages concatenates page texts in order, one newline between pages.
func joinPages(pages []string) string {
	return strings.Join(pages, "\n")
}

// sanitizeText drops invalid UTF-8, NUL and control characters other than tab,
// newline and carriage return.
func sanitizeText(text string) string {
	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, "")
	}

	var result strings.Builder
	result.Grow(len(text))
	for _, r := range text {
		switch {
		case r == '\t' || r == '\n' || r == '\r':
			result.WriteRune(r)
		case r < 0x20 || r == 0x7F:
			continue
		case r >= 0xD800 && r <= 0xDFFF:
			continue
		default:
			result.WriteRune(r)
		}
	}
	return result.String()
}
