package embedder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Default Ollama configuration.
const (
	DefaultOllamaBaseURL = "http://localhost:11434"
	DefaultOllamaModel   = "nomic-embed-text"
	DefaultOllamaTimeout = 30 * time.Second
	OllamaDimension      = 768 // nomic-embed-text default
)

// OllamaConfig holds configuration for the Ollama backend.
type OllamaConfig struct {
	// BaseURL is the Ollama API base URL (default: http://localhost:11434).
	BaseURL string

	// Model is the embedding model to use (default: nomic-embed-text).
	Model string

	// Timeout is the per-request timeout (default: 30s).
	Timeout time.Duration

	// Dimensions is the embedding vector size (model-dependent).
	Dimensions int
}

// OllamaBackend generates embeddings through a local Ollama server. Init is
// slow on a cold server because it forces the model into memory.
type OllamaBackend struct {
	client     *http.Client
	baseURL    string
	model      string
	dimensions int
}

var _ Backend = (*OllamaBackend)(nil)

// ollamaRequest is the Ollama API request format.
type ollamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

// ollamaResponse is the Ollama API response format.
type ollamaResponse struct {
	Embedding []float32 `json:"embedding"`
}

// NewOllamaBackend creates a new Ollama embedding backend.
func NewOllamaBackend(cfg OllamaConfig) *OllamaBackend {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultOllamaBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultOllamaModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultOllamaTimeout
	}
	if cfg.Dimensions == 0 {
		cfg.Dimensions = OllamaDimension
	}

	return &OllamaBackend{
		client:     &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.BaseURL,
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
	}
}

// Init forces the model into server memory by embedding a short sentinel,
// so the first real call doesn't pay the load cost.
func (b *OllamaBackend) Init(ctx context.Context) error {
	if _, err := b.Embed(ctx, "ping"); err != nil {
		return fmt.Errorf("ollama init: %w", err)
	}
	return nil
}

// Embed generates a vector embedding for the given text.
func (b *OllamaBackend) Embed(ctx context.Context, text string) ([]float32, error) {
	config := DefaultRetryConfig()
	return retryWithBackoff(ctx, config, func() ([]float32, error) {
		return b.callAPI(ctx, text)
	})
}

func (b *OllamaBackend) callAPI(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(ollamaRequest{Model: b.model, Prompt: text})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/api/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackendFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: status %d: %s", ErrBackendFailed, resp.StatusCode, string(respBody))
	}

	var apiResp ollamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return apiResp.Embedding, nil
}

func (b *OllamaBackend) Dimension() int {
	return b.dimensions
}

func (b *OllamaBackend) Provider() string {
	return ProviderOllama
}

func (b *OllamaBackend) Model() string {
	return b.model
}

func (b *OllamaBackend) Close() error {
	b.client.CloseIdleConnections()
	return nil
}
