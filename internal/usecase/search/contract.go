package search

import (
	"context"

	"github.com/souqlane/stylesearch/internal/domain"
)

// Catalog reads products for search operations.
type Catalog interface {
	ListPublished(ctx context.Context) ([]domain.Product, error)
}

// Settings reads the runtime configuration.
type Settings interface {
	Current() domain.SystemConfig
}

// ProviderResolver builds the embedding provider named by a configuration.
type ProviderResolver interface {
	ResolveForConfig(sc domain.SystemConfig) (domain.Provider, error)
}
