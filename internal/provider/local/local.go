// Package local implements an offline-safe embedding provider. Vectors are
// deterministic pseudo-random noise seeded from the input, so identical inputs
// always map to identical vectors and tests never need a network.
package local

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"math/rand"

	"github.com/souqlane/stylesearch/internal/domain"
)

// DefaultDimensions matches the sentence-transformer models this stub stands in for.
const DefaultDimensions = 384

// Provider implements domain.Provider without external calls. It never fails.
type Provider struct {
	dims int
}

var _ domain.Provider = (*Provider)(nil)

// New creates a local provider. dims <= 0 falls back to DefaultDimensions.
func New(dims int) *Provider {
	if dims <= 0 {
		dims = DefaultDimensions
	}
	return &Provider{dims: dims}
}

// Name implements domain.Provider.
func (p *Provider) Name() string { return domain.ProviderLocal }

// Dimensions implements domain.Provider.
func (p *Provider) Dimensions() int { return p.dims }

// Embed implements domain.Embedder.
func (p *Provider) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{Embedding: Vector(text, p.dims)}, nil
}

// EmbedImage implements domain.ImageEmbedder.
func (p *Provider) EmbedImage(_ context.Context, data []byte) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{Embedding: Vector(string(data), p.dims)}, nil
}

// Vector produces a deterministic pseudo-random unit-range vector from a seed
// string. Shared by this provider and by fallback paths that must return
// plausible noise after a provider failure.
func Vector(seed string, dim int) []float32 {
	sum := sha256.Sum256([]byte(seed))
	src := rand.NewSource(int64(binary.LittleEndian.Uint64(sum[:8]))) //nolint:gosec // not cryptographic
	rng := rand.New(src)                                              //nolint:gosec // not cryptographic

	vec := make([]float32, dim)
	for i := range vec {
		vec[i] = float32(rng.Float64()*2 - 1)
	}
	return vec
}
