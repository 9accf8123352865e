package domain

import "context"

// Embedder converts text into a fixed-length vector.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// ImageEmbedder converts raw image bytes into a fixed-length vector.
type ImageEmbedder interface {
	EmbedImage(ctx context.Context, data []byte) (EmbeddingResult, error)
}

// Provider is the full capability pair resolved from the system config.
type Provider interface {
	Embedder
	ImageEmbedder
	// Name returns the provider name used in SystemConfig.
	Name() string
	// Dimensions returns the provider's native vector length.
	Dimensions() int
}

// HealthChecker verifies provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// EmbeddingResult carries the vector through the decorator chain.
// Degraded marks a fallback vector produced after a provider failure: callers
// receive it as a success (availability over correctness), but tests and the
// cache layer can tell it apart from a genuine embedding.
type EmbeddingResult struct {
	Embedding []float32
	Degraded  bool
}
