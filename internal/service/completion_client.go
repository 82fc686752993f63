package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Robinhood75t/Backend-MedScan-AI/internal/domain"

	"github.com/google/uuid"
)

const (
	ProviderPerplexity = "perplexity"
	ProviderVertex     = "vertex"

	DefaultCompletionBaseURL = "https://api.perplexity.ai"
	DefaultCompletionModel   = "sonar-pro"

	// SystemPersona is sent as the system message on every completion call.
	SystemPersona = "You are a helpful medical assistant."

	maxErrorBodyBytes = 64 << 10
)

// CompletionClientConfig configures a chat-completions style client.
type CompletionClientConfig struct {
	Provider string
	APIKey   string
	BaseURL  string
	Model    string
	// Timeout of zero leaves the call bounded only by the request context.
	Timeout time.Duration
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// ChatCompletionClient posts one prompt to <BaseURL>/chat/completions with bearer auth.
type ChatCompletionClient struct {
	cfg        CompletionClientConfig
	httpClient *http.Client
	logger     domain.Logger
}

// NewChatCompletionClient creates a client. Empty fields take the Perplexity defaults.
func NewChatCompletionClient(cfg CompletionClientConfig, logger domain.Logger) *ChatCompletionClient {
	if cfg.Provider == "" {
		cfg.Provider = ProviderPerplexity
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultCompletionBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultCompletionModel
	}
	return &ChatCompletionClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

// Complete sends exactly one request. It never retries.
func (c *ChatCompletionClient) Complete(ctx context.Context, prompt string) (string, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.logger.Info("completion.start",
		"req_id", rid,
		"provider", c.cfg.Provider,
		"model", c.cfg.Model,
		"prompt_len", len(prompt),
	)

	body, err := json.Marshal(chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: SystemPersona},
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("completion.http_error", err,
			"req_id", rid,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", &domain.UpstreamError{Provider: c.cfg.Provider, Cause: err}
	}
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			c.logger.Warn("completion response body close error", "error", err)
		}
	}(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		upstream := &domain.UpstreamError{
			Provider:   c.cfg.Provider,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(errBody)),
		}
		c.logger.Error("completion.status_error", upstream,
			"req_id", rid,
			"status", resp.StatusCode,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", upstream
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &domain.UpstreamError{Provider: c.cfg.Provider, Cause: fmt.Errorf("read response: %w", err)}
	}

	var cr chatResponse
	if err := json.Unmarshal(raw, &cr); err != nil {
		c.logger.Error("completion.decode_error", err,
			"req_id", rid,
			"raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", &domain.UpstreamError{Provider: c.cfg.Provider, Cause: fmt.Errorf("decode response: %w", err)}
	}

	var content string
	if len(cr.Choices) > 0 {
		content = strings.TrimSpace(cr.Choices[0].Message.Content)
	} else {
		c.logger.Warn("completion.no_choices", "req_id", rid)
	}

	c.logger.Info("completion.ok",
		"req_id", rid,
		"content_len", len(content),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return content, nil
}
