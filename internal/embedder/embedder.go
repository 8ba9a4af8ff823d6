package embedder

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Common errors
var (
	// ErrDuplicateInstance is reported by a backend whose Init lost a race
	// against a peer initializer outside this process. The coordinator
	// swallows it: the peer's instance is usable.
	ErrDuplicateInstance = errors.New("embedding backend instance already exists")

	// ErrBackendFailed wraps backend call failures.
	ErrBackendFailed = errors.New("embedding backend failed")
)

// MaxInputChars caps the text forwarded to the backend.
const MaxInputChars = 1000

// Backend is a single embedding model instance. Init may be slow (model
// load); Embed must only be called after a successful Init.
type Backend interface {
	// Init prepares the backend for embedding calls.
	Init(ctx context.Context) error

	// Embed returns the embedding vector for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimension returns the embedding dimension for this backend
	Dimension() int

	// Provider returns the backend name
	Provider() string

	// Model returns the model name
	Model() string

	// Close releases any resources held by the backend
	Close() error
}

// NormalizeInput trims the text and caps it at MaxInputChars characters.
// The cap counts runes, so a multi-byte sequence is never split.
func NormalizeInput(text string) string {
	text = strings.TrimSpace(text)
	if len(text) <= MaxInputChars {
		return text
	}
	count := 0
	for i := range text {
		if count == MaxInputChars {
			return text[:i]
		}
		count++
	}
	return text
}

// ComputeHash computes the SHA-256 hash of text for caching
func ComputeHash(text string) string {
	h := sha256.Sum256([]byte(text))
	return hex.EncodeToString(h[:])
}

// Cache provides in-memory LRU caching of vectors by content hash
type Cache struct {
	cache *lru.Cache[string, []float32]
}

// NewCache creates a new embedding cache with LRU eviction
func NewCache(maxLen int) *Cache {
	if maxLen <= 0 {
		maxLen = 10000 // Default: cache 10k embeddings
	}
	cache, err := lru.New[string, []float32](maxLen)
	if err != nil {
		// Should never happen with positive size, but fallback to default
		cache, _ = lru.New[string, []float32](10000)
	}
	return &Cache{cache: cache}
}

// Get retrieves a copy of a cached vector. The copy prevents caller
// mutations from polluting the cache.
func (c *Cache) Get(hash string) ([]float32, bool) {
	vec, ok := c.cache.Get(hash)
	if !ok {
		return nil, false
	}
	out := make([]float32, len(vec))
	copy(out, vec)
	return out, true
}

// Set stores a vector in cache with automatic LRU eviction
func (c *Cache) Set(hash string, vec []float32) {
	c.cache.Add(hash, vec)
}

// Len returns the current cache size
func (c *Cache) Len() int {
	return c.cache.Len()
}

// Clear empties the cache
func (c *Cache) Clear() {
	c.cache.Purge()
}
