package service

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/Robinhood75t/Backend-MedScan-AI/internal/domain"
)

// Runner lets us stub external commands in tests.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

type execRunner struct {
	logger domain.Logger
}

func (r execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	start := time.Now()

	cmd := exec.CommandContext(ctx, name, args...)
	var out, errb bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errb

	err := cmd.Run()
	dur := time.Since(start)

	if err != nil {
		r.logger.Error("exec failed", err,
			"cmd", name,
			"args", strings.Join(args, " "),
			"duration_ms", dur.Milliseconds(),
			"stderr", truncate(errb.String(), 8<<10),
		)
	} else {
		r.logger.Debug("exec ok",
			"cmd", name,
			"args", strings.Join(args, " "),
			"duration_ms", dur.Milliseconds(),
			"stdout_bytes", out.Len(),
		)
	}

	return out.Bytes(), errb.Bytes(), err
}

// OCRLanguage is fixed; reports are read as English.
const OCRLanguage = "eng"

// TesseractOCR recognizes text in images by running the tesseract binary.
type TesseractOCR struct {
	binary      string
	tessdataDir string
	runner      Runner
}

// NewTesseractOCR creates an OCR engine. An empty binary means "tesseract" on PATH.
func NewTesseractOCR(binary, tessdataDir string, logger domain.Logger) *TesseractOCR {
	if binary == "" {
		binary = "tesseract"
	}
	return &TesseractOCR{
		binary:      binary,
		tessdataDir: tessdataDir,
		runner:      execRunner{logger: logger},
	}
}

// WithRunner replaces the command runner.
func (t *TesseractOCR) WithRunner(r Runner) *TesseractOCR {
	t.runner = r
	return t
}

// Recognize runs: tesseract <path> stdout -l eng [--tessdata-dir dir]
func (t *TesseractOCR) Recognize(ctx context.Context, path string) (string, error) {
	args := []string{path, "stdout", "-l", OCRLanguage}
	if t.tessdataDir != "" {
		args = append(args, "--tessdata-dir", t.tessdataDir)
	}

	out, errb, err := t.runner.Run(ctx, t.binary, args...)
	if err != nil {
		if msg := strings.TrimSpace(string(errb)); msg != "" {
			return "", fmt.Errorf("tesseract: %w: %s", err, truncate(msg, 512))
		}
		return "", fmt.Errorf("tesseract: %w", err)
	}
	return string(out), nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
