package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Robinhood75t/Backend-MedScan-AI/internal/domain"
)

const (
	DefaultServerPort  = "5000"
	DefaultMaxFileSize = 5 * 1024 * 1024
)

// AppConfig implements the domain.Config interface
type AppConfig struct {
	ServerPort     string
	UploadPath     string
	MaxFileSize    int64
	LogLevel       string
	AllowedOrigins []string

	CompletionProvider string
	CompletionAPIKey   string
	CompletionBaseURL  string
	CompletionModel    string
	CompletionTimeout  time.Duration

	VertexProjectID string
	VertexLocation  string
	VertexModel     string

	PDFEngine     string
	TesseractPath string
	TessdataDir   string
}

// NewConfig creates a new configuration instance with default values
func NewConfig() domain.Config {
	return &AppConfig{
		// Cloud Run (and many PaaS) provide the listening port via PORT.
		// Keep SERVER_PORT for local/dev compatibility.
		ServerPort:     getEnvOrDefault("PORT", getEnvOrDefault("SERVER_PORT", DefaultServerPort)),
		UploadPath:     getEnvOrDefault("UPLOAD_PATH", "./uploads"),
		MaxFileSize:    getEnvInt64OrDefault("MAX_FILE_SIZE", DefaultMaxFileSize),
		LogLevel:       getEnvOrDefault("LOG_LEVEL", "info"),
		AllowedOrigins: splitList(getEnvOrDefault("CORS_ALLOWED_ORIGINS", "*")),

		CompletionProvider: strings.ToLower(getEnvOrDefault("COMPLETION_PROVIDER", "perplexity")),
		CompletionAPIKey:   getEnvOrDefault("PERPLEXITY_API_KEY", ""),
		CompletionBaseURL:  getEnvOrDefault("COMPLETION_BASE_URL", "https://api.perplexity.ai"),
		CompletionModel:    getEnvOrDefault("COMPLETION_MODEL", "sonar-pro"),
		CompletionTimeout:  getEnvDurationOrDefault("COMPLETION_TIMEOUT", 0),

		VertexProjectID: getEnvOrDefault("VERTEX_PROJECT_ID", ""),
		VertexLocation:  getEnvOrDefault("VERTEX_LOCATION", "us-central1"),
		VertexModel:     getEnvOrDefault("VERTEX_MODEL", "gemini-2.0-flash-001"),

		PDFEngine:     strings.ToLower(getEnvOrDefault("PDF_ENGINE", "mupdf")),
		TesseractPath: getEnvOrDefault("TESSERACT_PATH", "tesseract"),
		TessdataDir:   getEnvOrDefault("TESSDATA_DIR", ""),
	}
}

// GetServerPort returns the server port
func (c *AppConfig) GetServerPort() string {
	return c.ServerPort
}

// GetUploadPath returns the upload directory path
func (c *AppConfig) GetUploadPath() string {
	return c.UploadPath
}

// GetMaxFileSize returns the maximum allowed file size
func (c *AppConfig) GetMaxFileSize() int64 {
	return c.MaxFileSize
}

// GetLogLevel returns the logging level
func (c *AppConfig) GetLogLevel() string {
	return c.LogLevel
}

// GetAllowedOrigins returns the CORS origins
func (c *AppConfig) GetAllowedOrigins() []string {
	return c.AllowedOrigins
}

func (c *AppConfig) GetCompletionProvider() string {
	return c.CompletionProvider
}

func (c *AppConfig) GetCompletionAPIKey() string {
	return c.CompletionAPIKey
}

func (c *AppConfig) GetCompletionBaseURL() string {
	return c.CompletionBaseURL
}

func (c *AppConfig) GetCompletionModel() string {
	return c.CompletionModel
}

// GetCompletionTimeout returns the client timeout; zero means none
func (c *AppConfig) GetCompletionTimeout() time.Duration {
	return c.CompletionTimeout
}

func (c *AppConfig) GetVertexProjectID() string {
	return c.VertexProjectID
}

func (c *AppConfig) GetVertexLocation() string {
	return c.VertexLocation
}

func (c *AppConfig) GetVertexModel() string {
	return c.VertexModel
}

func (c *AppConfig) GetPDFEngine() string {
	return c.PDFEngine
}

func (c *AppConfig) GetTesseractPath() string {
	return c.TesseractPath
}

func (c *AppConfig) GetTessdataDir() string {
	return c.TessdataDir
}

// Validate checks the settings the selected provider needs.
func (c *AppConfig) Validate() error {
	var errs []error
	if c.MaxFileSize <= 0 {
		errs = append(errs, fmt.Errorf("MAX_FILE_SIZE must be positive, got %d", c.MaxFileSize))
	}
	switch c.CompletionProvider {
	case "perplexity":
		if c.CompletionAPIKey == "" {
			errs = append(errs, errors.New("PERPLEXITY_API_KEY is required"))
		}
	case "vertex":
		if c.VertexProjectID == "" {
			errs = append(errs, errors.New("VERTEX_PROJECT_ID is required for the vertex provider"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown COMPLETION_PROVIDER %q", c.CompletionProvider))
	}
	switch c.PDFEngine {
	case "mupdf", "native":
	default:
		errs = append(errs, fmt.Errorf("unknown PDF_ENGINE %q", c.PDFEngine))
	}
	if c.CompletionTimeout < 0 {
		errs = append(errs, errors.New("COMPLETION_TIMEOUT must not be negative"))
	}
	return errors.Join(errs...)
}

// Helper functions for environment variable handling
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvDurationOrDefault accepts Go durations ("30s") or bare seconds ("30").
func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
