package config

import (
	"context"
	"fmt"
	"io"

	"github.com/Robinhood75t/Backend-MedScan-AI/internal/domain"
	"github.com/Robinhood75t/Backend-MedScan-AI/internal/service"
	"github.com/Robinhood75t/Backend-MedScan-AI/pkg/logger"
)

// Container holds all application dependencies
type Container struct {
	Config           domain.Config
	Logger           domain.Logger
	UploadStore      *service.FileUploadStore
	Extractor        *service.DocumentExtractor
	CompletionClient domain.CompletionClient
	Pipeline         *service.SummaryPipeline
}

// NewContainer creates a new dependency injection container
func NewContainer(ctx context.Context) (*Container, error) {
	cfg := NewConfig()
	appLogger := logger.NewLogger(cfg.GetLogLevel())
	return NewContainerWith(ctx, cfg, appLogger)
}

// NewContainerWith wires the pipeline from an explicit config and logger.
func NewContainerWith(ctx context.Context, cfg domain.Config, appLogger domain.Logger) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	pdfEngine, err := service.NewPDFTextEngine(cfg.GetPDFEngine(), appLogger)
	if err != nil {
		return nil, err
	}
	ocr := service.NewTesseractOCR(cfg.GetTesseractPath(), cfg.GetTessdataDir(), appLogger)
	extractor := service.NewDocumentExtractor(pdfEngine, ocr, appLogger)

	client, err := newCompletionClient(ctx, cfg, appLogger)
	if err != nil {
		return nil, err
	}

	parser, err := service.NewResultParser(appLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to build result parser: %w", err)
	}

	appLogger.Info("Container initialized",
		"provider", cfg.GetCompletionProvider(),
		"pdf_engine", pdfEngine.Name(),
		"upload_path", cfg.GetUploadPath(),
		"max_file_size", cfg.GetMaxFileSize(),
	)

	return &Container{
		Config:           cfg,
		Logger:           appLogger,
		UploadStore:      service.NewUploadStore(cfg.GetUploadPath(), cfg.GetMaxFileSize(), appLogger),
		Extractor:        extractor,
		CompletionClient: client,
		Pipeline:         service.NewSummaryPipeline(extractor, client, parser, appLogger),
	}, nil
}

func newCompletionClient(ctx context.Context, cfg domain.Config, appLogger domain.Logger) (domain.CompletionClient, error) {
	switch cfg.GetCompletionProvider() {
	case service.ProviderVertex:
		client, err := service.NewVertexCompletionClient(ctx, cfg.GetVertexProjectID(), cfg.GetVertexLocation(), cfg.GetVertexModel(), appLogger)
		if err != nil {
			return nil, err
		}
		return client, nil
	case service.ProviderPerplexity:
		return service.NewChatCompletionClient(service.CompletionClientConfig{
			Provider: service.ProviderPerplexity,
			APIKey:   cfg.GetCompletionAPIKey(),
			BaseURL:  cfg.GetCompletionBaseURL(),
			Model:    cfg.GetCompletionModel(),
			Timeout:  cfg.GetCompletionTimeout(),
		}, appLogger), nil
	default:
		return nil, fmt.Errorf("unknown completion provider %q", cfg.GetCompletionProvider())
	}
}

// Close releases clients that hold connections and flushes the logger.
func (c *Container) Close() error {
	var err error
	if closer, ok := c.CompletionClient.(io.Closer); ok {
		err = closer.Close()
	}
	if s, ok := c.Logger.(interface{ Sync() error }); ok {
		_ = s.Sync()
	}
	return err
}

// GetConfig returns the configuration instance
func (c *Container) GetConfig() domain.Config {
	return c.Config
}

// GetLogger returns the logger instance
func (c *Container) GetLogger() domain.Logger {
	return c.Logger
}
