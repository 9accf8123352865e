package outfit

import (
	"context"

	"github.com/souqlane/stylesearch/internal/domain"
)

// Catalog reads candidate products.
type Catalog interface {
	ListPublished(ctx context.Context) ([]domain.Product, error)
}

// Settings reads the runtime configuration.
type Settings interface {
	Current() domain.SystemConfig
}

// Picker asks a generative model to choose an outfit from the partitioned
// candidates.
type Picker interface {
	PickOutfit(ctx context.Context, profile domain.ShopperProfile, tops, bottoms []domain.OutfitCandidate) (domain.OutfitSuggestion, error)
}

// PickerResolver builds a Picker for a provider API key.
type PickerResolver func(apiKey string) (Picker, error)
