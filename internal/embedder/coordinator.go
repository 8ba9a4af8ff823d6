package embedder

import (
	"context"
	"errors"
	"log"
	"sync"

	"golang.org/x/sync/singleflight"
)

// warmupText is the sentinel embedded by Warmup. Its vector is discarded;
// the call exists only to force backend initialization ahead of the first
// user-visible query.
const warmupText = "warmup"

// Coordinator owns the one process-wide embedding backend instance. It
// serializes initialization through a single-flight group: concurrent
// callers before the first successful Init all await the same in-flight
// attempt, and an initialization failure is surfaced once to every waiter.
// After a failure the coordinator is back in its uninitialized state, so a
// later call retries from scratch.
type Coordinator struct {
	backend Backend
	cache   *Cache

	initGroup singleflight.Group
	mu        sync.Mutex
	ready     bool
}

// NewCoordinator wraps a backend. cache may be nil to disable caching.
func NewCoordinator(backend Backend, cache *Cache) *Coordinator {
	return &Coordinator{backend: backend, cache: cache}
}

// Ready reports whether the backend has been initialized.
func (c *Coordinator) Ready() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ready
}

// ensureReady performs lazy single-flight initialization. A backend report
// of ErrDuplicateInstance counts as success: a peer initializer has already
// produced a usable instance.
func (c *Coordinator) ensureReady(ctx context.Context) error {
	c.mu.Lock()
	ready := c.ready
	c.mu.Unlock()
	if ready {
		return nil
	}

	_, err, _ := c.initGroup.Do("init", func() (interface{}, error) {
		if err := c.backend.Init(ctx); err != nil && !errors.Is(err, ErrDuplicateInstance) {
			return nil, err
		}
		c.mu.Lock()
		c.ready = true
		c.mu.Unlock()
		return nil, nil
	})
	return err
}

// Embed returns the embedding vector for text, or nil when no vector can be
// produced. Empty input (after trimming) returns nil without touching the
// backend; a zero-length backend result maps to nil as well. A backend
// error is returned to this caller only and leaves the ready state intact.
// The returned slice is an independent copy the caller may retain.
func (c *Coordinator) Embed(ctx context.Context, text string) ([]float32, error) {
	text = NormalizeInput(text)
	if text == "" {
		return nil, nil
	}

	if err := c.ensureReady(ctx); err != nil {
		return nil, err
	}

	hash := ComputeHash(text)
	if c.cache != nil {
		if vec, ok := c.cache.Get(hash); ok {
			return vec, nil
		}
	}

	vec, err := c.backend.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	if len(vec) == 0 {
		return nil, nil
	}

	out := make([]float32, len(vec))
	copy(out, vec)
	if c.cache != nil {
		c.cache.Set(hash, out)
	}

	// Hand out a second copy so a caller mutation cannot reach the cache.
	final := make([]float32, len(out))
	copy(final, out)
	return final, nil
}

// Warmup forces backend initialization by embedding a sentinel string. The
// result is discarded and failure is logged, never surfaced: warmup is a
// latency optimization, not a correctness requirement.
func (c *Coordinator) Warmup(ctx context.Context) {
	if _, err := c.Embed(ctx, warmupText); err != nil {
		log.Printf("embedder warmup failed: %v", err)
	}
}

// Dimension returns the backend's embedding dimension.
func (c *Coordinator) Dimension() int { return c.backend.Dimension() }

// Provider returns the backend name.
func (c *Coordinator) Provider() string { return c.backend.Provider() }

// Model returns the backend model name.
func (c *Coordinator) Model() string { return c.backend.Model() }

// Close releases the backend.
func (c *Coordinator) Close() error {
	return c.backend.Close()
}
