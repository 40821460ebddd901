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

// OpenAIBackend talks to an OpenAI-compatible chat-completions endpoint.
type OpenAIBackend struct {
	name        string
	role        repository.BackendRole
	apiKey      string
	baseURL     string
	model       string
	temperature float64
	maxTokens   int
	client      *http.Client
}

type OpenAIConfig struct {
	Name        string
	Role        repository.BackendRole
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

func NewOpenAIBackend(cfg OpenAIConfig) (*OpenAIBackend, error) {
	if cfg.APIKey == "" {
		return nil, &entity.ConfigError{Backend: cfg.Name, Reason: "api key is required"}
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4"
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 4000
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 2 * time.Minute
	}
	if cfg.Name == "" {
		cfg.Name = "openai"
	}
	return &OpenAIBackend{
		name:        cfg.Name,
		role:        cfg.Role,
		apiKey:      cfg.APIKey,
		baseURL:     strings.TrimSuffix(cfg.BaseURL, "/"),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		client:      &http.Client{Timeout: cfg.Timeout},
	}, nil
}

func (b *OpenAIBackend) Name() string                 { return b.name }
func (b *OpenAIBackend) Role() repository.BackendRole { return b.role }

func (b *OpenAIBackend) Complete(ctx context.Context, prompt string) (string, error) {
	request := map[string]any{
		"model": b.model,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
		"temperature": b.temperature,
		"max_tokens":  b.maxTokens,
	}

	response, err := b.makeRequest(ctx, request)
	if err != nil {
		metrics.IncError("llm", "openai_request")
		return "", err
	}
	return parseChatContent(b.name, response)
}

// Ping lists models, which authenticates without an inference call.
func (b *OpenAIBackend) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.baseURL+"/models", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+b.apiKey)

	resp, err := b.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("openai models endpoint returned %d", resp.StatusCode)
	}
	return nil
}

func (b *OpenAIBackend) makeRequest(ctx context.Context, request map[string]any) (map[string]any, error) {
	jsonData, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+b.apiKey)

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("api error: %d - %s", resp.StatusCode, string(body))
	}

	var response map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return response, nil
}

// parseChatContent walks the choices[0].message.content path shared by
// chat-completions style APIs.
func parseChatContent(backend string, response map[string]any) (string, error) {
	choices, ok := response["choices"].([]any)
	if !ok || len(choices) == 0 {
		return "", fmt.Errorf("backend %s: invalid response format: no choices", backend)
	}
	choice, ok := choices[0].(map[string]any)
	if !ok {
		return "", fmt.Errorf("backend %s: invalid response format: invalid choice", backend)
	}
	message, ok := choice["message"].(map[string]any)
	if !ok {
		return "", fmt.Errorf("backend %s: invalid response format: no message", backend)
	}
	content, ok := message["content"].(string)
	if !ok {
		return "", fmt.Errorf("backend %s: invalid response format: no content", backend)
	}
	return content, nil
}
