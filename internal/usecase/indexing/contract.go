package indexing

import (
	"context"
	"time"

	"github.com/souqlane/stylesearch/internal/domain"
)

// Catalog reads stale products and persists their embeddings.
type Catalog interface {
	ListStale(ctx context.Context, limit int) ([]domain.Product, error)
	CountStale(ctx context.Context) (int, error)
	UpdateVectors(ctx context.Context, id string, vectors *domain.Vectors, indexedAt time.Time) error
}

// Jobs records sweep progress. The job row is the single source of truth;
// clients poll it through Latest.
type Jobs interface {
	Create(ctx context.Context, total int) (domain.IndexJob, error)
	IncrementProcessed(ctx context.Context, id string) error
	IncrementFailed(ctx context.Context, id string) error
	Complete(ctx context.Context, id string) error
	Latest(ctx context.Context) (domain.IndexJob, error)
	Running(ctx context.Context) (bool, error)
}

// Settings reads the runtime configuration.
type Settings interface {
	Current() domain.SystemConfig
}

// ProviderResolver builds the embedding provider named by a configuration.
type ProviderResolver interface {
	ResolveForConfig(sc domain.SystemConfig) (domain.Provider, error)
}
