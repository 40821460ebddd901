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

// OllamaBackend talks to a local Ollama daemon. It needs no credentials, which
// makes it the usual last fallback for self-hosted setups.
type OllamaBackend struct {
	name    string
	role    repository.BackendRole
	baseURL string
	model   string
	client  *http.Client
}

type OllamaConfig struct {
	Name    string
	Role    repository.BackendRole
	BaseURL string
	Model   string
	Timeout time.Duration
}

func NewOllamaBackend(cfg OllamaConfig) (*OllamaBackend, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:11434"
	}
	if cfg.Model == "" {
		return nil, &entity.ConfigError{Backend: cfg.Name, Reason: "model is required"}
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Minute
	}
	if cfg.Name == "" {
		cfg.Name = "ollama"
	}
	return &OllamaBackend{
		name:    cfg.Name,
		role:    cfg.Role,
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		model:   cfg.Model,
		client:  &http.Client{Timeout: cfg.Timeout},
	}, nil
}

func (b *OllamaBackend) Name() string                 { return b.name }
func (b *OllamaBackend) Role() repository.BackendRole { return b.role }

func (b *OllamaBackend) Complete(ctx context.Context, prompt string) (string, error) {
	request := map[string]any{
		"model":  b.model,
		"prompt": prompt,
		"stream": false,
	}

	jsonData, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/api/generate", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		metrics.IncError("llm", "ollama_request")
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		metrics.IncError("llm", "ollama_request")
		return "", fmt.Errorf("api error: %d - %s", resp.StatusCode, string(body))
	}

	var response struct {
		Response string `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if response.Response == "" {
		return "", fmt.Errorf("backend %s: invalid response format: empty response", b.name)
	}
	return response.Response, nil
}

// Ping lists the local model tags, which confirms the daemon is up.
func (b *OllamaBackend) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.baseURL+"/api/tags", nil)
	if err != nil {
		return err
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("ollama tags endpoint returned %d", resp.StatusCode)
	}
	return nil
}
