package embedder

import (
	"context"
	"crypto/sha256"
)

// LocalDimension is the vector size produced by the local backend.
const LocalDimension = 384

// LocalBackend derives deterministic pseudo-embeddings from a text hash. It
// carries no semantic signal and exists so the pipeline works offline and in
// tests without a model runtime.
type LocalBackend struct {
	model string
}

var _ Backend = (*LocalBackend)(nil)

// NewLocalBackend creates a new local hash backend.
func NewLocalBackend() *LocalBackend {
	return &LocalBackend{model: "local-hash"}
}

func (l *LocalBackend) Init(ctx context.Context) error {
	return nil
}

func (l *LocalBackend) Embed(ctx context.Context, text string) ([]float32, error) {
	vector := make([]float32, LocalDimension)
	textHash := sha256.Sum256([]byte(text))
	for i := 0; i < LocalDimension && i < len(textHash); i++ {
		vector[i] = float32(textHash[i]) / 255.0
	}
	return vector, nil
}

func (l *LocalBackend) Dimension() int {
	return LocalDimension
}

func (l *LocalBackend) Provider() string {
	return ProviderLocal
}

func (l *LocalBackend) Model() string {
	return l.model
}

func (l *LocalBackend) Close() error {
	return nil
}
