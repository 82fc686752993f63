package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Robinhood75t/Backend-MedScan-AI/internal/domain"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ResultParser turns raw model output into a Summary. It never fails: anything
// that is not a single JSON object becomes a FallbackSummary.
type ResultParser struct {
	schema *jsonschema.Schema
	logger domain.Logger
}

// NewResultParser compiles the summary schema used for conformance diagnostics.
func NewResultParser(logger domain.Logger) (*ResultParser, error) {
	schema, err := compileSummarySchema()
	if err != nil {
		return nil, err
	}
	return &ResultParser{schema: schema, logger: logger}, nil
}

// Parse classifies raw. Structured results keep the object bytes unchanged; schema
// deviations are only logged.
func (p *ResultParser) Parse(raw string) domain.Summary {
	trimmed := strings.TrimSpace(raw)
	if !isJSONObject(trimmed) {
		p.logger.Info("Completion is not a JSON object, using fallback summary", "content_len", len(raw))
		return domain.FallbackSummary{Summary: raw}
	}

	if err := p.validate([]byte(trimmed)); err != nil {
		p.logger.Warn("Structured summary deviates from schema", "error", err)
	}
	return domain.NewStructuredSummary(json.RawMessage(trimmed))
}

func (p *ResultParser) validate(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := p.schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}

// isJSONObject reports whether s is exactly one syntactically valid JSON object.
func isJSONObject(s string) bool {
	if s == "" || s[0] != '{' {
		return false
	}
	return json.Valid([]byte(s))
}

// summarySchema describes the eight-key structured summary.
func summarySchema() map[string]any {
	props := make(map[string]any, len(domain.SummaryKeys))
	for _, k := range domain.SummaryKeys {
		props[k] = map[string]any{"type": "string"}
	}
	return map[string]any{
		"type":                 "object",
		"properties":           props,
		"required":             domain.SummaryKeys,
		"additionalProperties": false,
	}
}

func compileSummarySchema() (*jsonschema.Schema, error) {
	b, err := json.Marshal(summarySchema())
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("summary.json", bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("summary.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
}
