package embedder

import (
	"fmt"
	"os"
	"strings"
)

// Provider names
const (
	ProviderOllama = "ollama"
	ProviderLocal  = "local"
)

// Environment variables consulted by NewFromEnv
const (
	EnvProvider  = "RECOLLECT_EMBEDDING_PROVIDER"
	EnvOllamaURL = "RECOLLECT_OLLAMA_URL"
	EnvModel     = "RECOLLECT_EMBEDDING_MODEL"
)

// Config holds embedder configuration
type Config struct {
	Provider  string
	BaseURL   string
	Model     string
	CacheSize int
}

// New creates a coordinator with explicit configuration.
func New(cfg Config) (*Coordinator, error) {
	var cache *Cache
	if cfg.CacheSize != 0 {
		cache = NewCache(cfg.CacheSize)
	} else {
		cache = NewCache(0)
	}

	switch strings.ToLower(cfg.Provider) {
	case ProviderOllama:
		backend := NewOllamaBackend(OllamaConfig{BaseURL: cfg.BaseURL, Model: cfg.Model})
		return NewCoordinator(backend, cache), nil
	case ProviderLocal, "":
		return NewCoordinator(NewLocalBackend(), cache), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}
}

// NewFromEnv creates a coordinator based on environment variables.
// Priority:
//  1. RECOLLECT_EMBEDDING_PROVIDER (ollama, local)
//  2. RECOLLECT_OLLAMA_URL set implies ollama
//  3. Default to the local hash backend
func NewFromEnv() (*Coordinator, error) {
	provider := os.Getenv(EnvProvider)
	if provider == "" && os.Getenv(EnvOllamaURL) != "" {
		provider = ProviderOllama
	}
	return New(Config{
		Provider: provider,
		BaseURL:  os.Getenv(EnvOllamaURL),
		Model:    os.Getenv(EnvModel),
	})
}
