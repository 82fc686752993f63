package service

import (
	"bytes"
	"embed"
	"text/template"

	"github.com/Robinhood75t/Backend-MedScan-AI/internal/domain"
)

const (
	ReportStartMarker = "=== REPORT START ==="
	ReportEndMarker   = "=== REPORT END ==="
)

//go:embed templates/*
var templatesFS embed.FS

var summaryPromptTmpl = template.Must(template.ParseFS(templatesFS, "templates/summary_prompt.tmpl"))

type summaryPromptData struct {
	Keys     []string
	NotFound string
	Report   string
}

// BuildSummaryPrompt renders the summarization instructions around the extracted
// report text. The text is embedded verbatim between the report markers.
func BuildSummaryPrompt(extracted string) string {
	var buf bytes.Buffer
	data := summaryPromptData{
		Keys:     domain.SummaryKeys,
		NotFound: domain.NotFound,
		Report:   extracted,
	}
	if err := summaryPromptTmpl.Execute(&buf, data); err != nil {
		// The template is parsed at init and only ranges over strings.
		panic("summary prompt template: " + err.Error())
	}
	return buf.String()
}
