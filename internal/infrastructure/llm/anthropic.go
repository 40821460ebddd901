package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"iacforge/internal/domain/entity"
	"iacforge/internal/domain/repository"
	"iacforge/internal/infrastructure/metrics"
)

// AnthropicBackend talks to the Anthropic messages API.
type AnthropicBackend struct {
	name      string
	role      repository.BackendRole
	apiKey    string
	baseURL   string
	model     string
	maxTokens int
	client    *http.Client
}

type AnthropicConfig struct {
	Name      string
	Role      repository.BackendRole
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int
	Timeout   time.Duration
}

const anthropicVersion = "2023-06-01"

func NewAnthropicBackend(cfg AnthropicConfig) (*AnthropicBackend, error) {
	if cfg.APIKey == "" {
		return nil, &entity.ConfigError{Backend: cfg.Name, Reason: "api key is required"}
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.anthropic.com"
	}
	if cfg.Model == "" {
		cfg.Model = "claude-3-5-sonnet-20241022"
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 4000
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 2 * time.Minute
	}
	if cfg.Name == "" {
		cfg.Name = "anthropic"
	}
	return &AnthropicBackend{
		name:      cfg.Name,
		role:      cfg.Role,
		apiKey:    cfg.APIKey,
		baseURL:   strings.TrimSuffix(cfg.BaseURL, "/"),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		client:    &http.Client{Timeout: cfg.Timeout},
	}, nil
}

func (b *AnthropicBackend) Name() string                 { return b.name }
func (b *AnthropicBackend) Role() repository.BackendRole { return b.role }

func (b *AnthropicBackend) Complete(ctx context.Context, prompt string) (string, error) {
	request := map[string]any{
		"model":      b.model,
		"max_tokens": b.maxTokens,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
	}

	jsonData, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/v1/messages", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", b.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := b.client.Do(req)
	if err != nil {
		metrics.IncError("llm", "anthropic_request")
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		metrics.IncError("llm", "anthropic_request")
		return "", fmt.Errorf("api error: %d - %s", resp.StatusCode, string(body))
	}

	var response struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	for _, block := range response.Content {
		if block.Type == "text" && block.Text != "" {
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("backend %s: invalid response format: no text content", b.name)
}

// Ping issues a minimal messages call. The API has no cheap list endpoint that
// verifies the key, so a one-token request is the reachability check.
func (b *AnthropicBackend) Ping(ctx context.Context) error {
	request := map[string]any{
		"model":      b.model,
		"max_tokens": 1,
		"messages": []map[string]string{
			{"role": "user", "content": "ping"},
		},
	}
	jsonData, err := json.Marshal(request)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/v1/messages", bytes.NewBuffer(jsonData))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", b.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := b.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("anthropic messages endpoint returned %d", resp.StatusCode)
	}
	return nil
}
