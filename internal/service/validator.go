package service

import (
	"strings"

	"github.com/Robinhood75t/Backend-MedScan-AI/internal/domain"
)

// ValidateExtractedText rejects text with no non-whitespace content.
func ValidateExtractedText(text string) error {
	if strings.TrimSpace(text) == "" {
		return domain.ErrEmptyExtraction
	}
	return nil
}
