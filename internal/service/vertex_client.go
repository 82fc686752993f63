package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Robinhood75t/Backend-MedScan-AI/internal/domain"

	"cloud.google.com/go/vertexai/genai"
	"github.com/google/uuid"
)

const DefaultVertexModel = "gemini-2.0-flash-001"

// contentGenerator is the part of *genai.GenerativeModel the client calls.
type contentGenerator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// VertexCompletionClient sends prompts to a Gemini model on Vertex AI.
type VertexCompletionClient struct {
	client    *genai.Client
	model     contentGenerator
	modelName string
	logger    domain.Logger
}

// NewVertexCompletionClient dials Vertex AI using application default credentials.
func NewVertexCompletionClient(ctx context.Context, projectID, location, modelName string, logger domain.Logger) (*VertexCompletionClient, error) {
	client, err := genai.NewClient(ctx, projectID, location)
	if err != nil {
		return nil, fmt.Errorf("failed to create vertex ai client: %w", err)
	}
	if modelName == "" {
		modelName = DefaultVertexModel
	}
	model := client.GenerativeModel(modelName)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(SystemPersona)},
	}
	c := newVertexCompletionClient(model, modelName, logger)
	c.client = client
	return c, nil
}

func newVertexCompletionClient(model contentGenerator, modelName string, logger domain.Logger) *VertexCompletionClient {
	return &VertexCompletionClient{
		model:     model,
		modelName: modelName,
		logger:    logger,
	}
}

// Complete generates one response. Candidate text parts are joined and trimmed.
func (c *VertexCompletionClient) Complete(ctx context.Context, prompt string) (string, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.logger.Info("completion.start", "req_id", rid, "provider", ProviderVertex, "model", c.modelName, "prompt_len", len(prompt))

	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		c.logger.Error("completion.vertex_error", err, "req_id", rid, "elapsed_ms", time.Since(start).Milliseconds())
		return "", &domain.UpstreamError{Provider: ProviderVertex, Cause: err}
	}

	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		c.logger.Warn("completion.no_choices", "req_id", rid)
		return "", nil
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			sb.WriteString(string(t))
		}
	}
	content := strings.TrimSpace(sb.String())

	c.logger.Info("completion.ok", "req_id", rid, "content_len", len(content), "elapsed_ms", time.Since(start).Milliseconds())
	return content, nil
}

// Close releases the underlying gRPC connection.
func (c *VertexCompletionClient) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}
