package service

import (
	"context"
	"errors"

	"github.com/Robinhood75t/Backend-MedScan-AI/internal/domain"
	apperrors "github.com/Robinhood75t/Backend-MedScan-AI/pkg/errors"
)

// Stage is the position of one request in the summarization pipeline.
type Stage int

const (
	StageReceived Stage = iota
	StageExtracting
	StageValidating
	StagePrompting
	StageAwaitingCompletion
	StageParsing
	StageResponded
)

func (s Stage) String() string {
	switch s {
	case StageReceived:
		return "received"
	case StageExtracting:
		return "extracting"
	case StageValidating:
		return "validating"
	case StagePrompting:
		return "prompting"
	case StageAwaitingCompletion:
		return "awaiting_completion"
	case StageParsing:
		return "parsing"
	case StageResponded:
		return "responded"
	default:
		return "unknown"
	}
}

// Client-facing messages for pipeline failures.
const (
	MsgUnsupportedFileType = "Only PDF and image files are supported"
	MsgEmptyExtraction     = "No readable text was found in the document"
	MsgExtractionFailed    = "Failed to read text from the document"
	MsgUpstreamFailed      = "Summarization service failed"
	MsgInternal            = "Internal server error"
)

// SummaryPipeline runs extract, validate, prompt, complete and parse for one document.
type SummaryPipeline struct {
	extractor domain.TextExtractor
	client    domain.CompletionClient
	parser    *ResultParser
	logger    domain.Logger
	observe   func(docID string, stage Stage)
}

// NewSummaryPipeline creates a new pipeline
func NewSummaryPipeline(extractor domain.TextExtractor, client domain.CompletionClient, parser *ResultParser, logger domain.Logger) *SummaryPipeline {
	return &SummaryPipeline{
		extractor: extractor,
		client:    client,
		parser:    parser,
		logger:    logger,
	}
}

// WithStageObserver registers a callback invoked on every stage transition.
func (p *SummaryPipeline) WithStageObserver(fn func(docID string, stage Stage)) *SummaryPipeline {
	p.observe = fn
	return p
}

// Summarize owns doc for the duration of the call and releases it on every path.
// Errors are *apperrors.AppError values carrying the HTTP status to respond with.
func (p *SummaryPipeline) Summarize(ctx context.Context, doc *domain.UploadedDocument) (domain.Summary, error) {
	defer p.release(doc)

	stage := StageReceived
	enter := func(s Stage) {
		stage = s
		p.logger.Debug("Pipeline stage", "document_id", doc.ID, "stage", s.String())
		if p.observe != nil {
			p.observe(doc.ID, s)
		}
	}
	fail := func(err error) (domain.Summary, error) {
		failed := stage
		enter(StageResponded)
		appErr := p.toAppError(doc, err)
		p.logger.Error("Summarization failed", err,
			"document_id", doc.ID,
			"stage", failed.String(),
			"status", appErr.StatusCode,
		)
		return nil, appErr
	}

	enter(StageReceived)

	enter(StageExtracting)
	extracted, err := p.extractor.Extract(ctx, doc)
	p.release(doc)
	if err != nil {
		return fail(err)
	}

	enter(StageValidating)
	if err := ValidateExtractedText(extracted.Content); err != nil {
		return fail(err)
	}

	enter(StagePrompting)
	prompt := BuildSummaryPrompt(extracted.Content)

	enter(StageAwaitingCompletion)
	raw, err := p.client.Complete(ctx, prompt)
	if err != nil {
		return fail(err)
	}

	enter(StageParsing)
	summary := p.parser.Parse(raw)

	enter(StageResponded)
	p.logger.Info("Summarization completed",
		"document_id", doc.ID,
		"kind", summary.Kind(),
		"method", extracted.Method,
	)
	return summary, nil
}

func (p *SummaryPipeline) release(doc *domain.UploadedDocument) {
	if doc.Released() {
		return
	}
	if err := doc.Release(); err != nil {
		p.logger.Warn("Failed to release upload", "document_id", doc.ID, "error", err)
	}
}

func (p *SummaryPipeline) toAppError(doc *domain.UploadedDocument, err error) *apperrors.AppError {
	var upstream *domain.UpstreamError
	switch {
	case errors.Is(err, domain.ErrUnsupportedFileType):
		return apperrors.NewUnsupportedTypeError(MsgUnsupportedFileType, doc.ContentType, err)
	case errors.Is(err, domain.ErrEmptyExtraction):
		return apperrors.NewEmptyExtractionError(MsgEmptyExtraction, err)
	case errors.Is(err, domain.ErrExtractionFailed):
		return apperrors.NewProcessingError(MsgExtractionFailed, err)
	case errors.As(err, &upstream):
		return apperrors.NewUpstreamError(MsgUpstreamFailed, upstream.Error(), err)
	default:
		return apperrors.NewInternalError(MsgInternal, err)
	}
}
