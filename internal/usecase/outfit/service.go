// Package outfit suggests a top/bottom/shoe combination for a shopper.
package outfit

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"go.uber.org/zap"

	"github.com/souqlane/stylesearch/internal/domain"
)

// Category keyword sets used to partition candidates. A product whose title
// or tags contain one of these becomes a candidate for that slot.
var (
	topKeywords    = []string{"t-shirt", "tshirt", "shirt", "blouse", "hoodie", "sweater", "sweatshirt", "jacket", "polo", "top", "tee"}
	bottomKeywords = []string{"jean", "pant", "trouser", "short", "skirt", "legging", "chino"}
)

// fallbackShoes is the generic recommendation used whenever the model call
// or response parsing fails.
var fallbackShoes = domain.ShoeRecommendation{
	Brand:  "Adidas",
	Model:  "Stan Smith",
	Reason: "a neutral classic that works with most casual outfits",
}

// Service builds outfit suggestions from the published catalog.
type Service struct {
	catalog  Catalog
	settings Settings
	resolve  PickerResolver
	logger   *zap.Logger
}

// New creates an outfit service.
func New(catalog Catalog, settings Settings, resolve PickerResolver, logger *zap.Logger) *Service {
	return &Service{catalog: catalog, settings: settings, resolve: resolve, logger: logger}
}

// Suggest partitions the published catalog into tops and bottoms and asks
// the generative picker to choose. Any picker failure falls back to a
// random rule-based selection; the client always gets a suggestion.
func (s *Service) Suggest(ctx context.Context, profile domain.ShopperProfile) (domain.OutfitSuggestion, error) {
	cfg := s.settings.Current()
	if !cfg.EnableOutfitAI {
		return domain.OutfitSuggestion{}, fmt.Errorf("outfit suggestions: %w", domain.ErrFeatureDisabled)
	}

	products, err := s.catalog.ListPublished(ctx)
	if err != nil {
		return domain.OutfitSuggestion{}, fmt.Errorf("list published: %w", err)
	}

	tops, bottoms := partition(products)

	picker, err := s.resolve(cfg.KeyFor(domain.ProviderOpenAI))
	if err != nil {
		s.logger.Warn("Outfit picker unavailable, using fallback", zap.Error(err))
		return fallbackSuggestion(tops, bottoms), nil
	}

	suggestion, err := picker.PickOutfit(ctx, profile, tops, bottoms)
	if err != nil {
		s.logger.Warn("Outfit pick failed, using fallback", zap.Error(err))
		return fallbackSuggestion(tops, bottoms), nil
	}
	return suggestion, nil
}

// partition splits products into top and bottom candidates by keyword.
// A product matching neither set is dropped.
func partition(products []domain.Product) (tops, bottoms []domain.OutfitCandidate) {
	for _, p := range products {
		text := candidateText(p)
		if kw, ok := matchKeyword(text, topKeywords); ok {
			tops = append(tops, domain.OutfitCandidate{ID: p.ID, Name: p.Title, Category: kw})
			continue
		}
		if kw, ok := matchKeyword(text, bottomKeywords); ok {
			bottoms = append(bottoms, domain.OutfitCandidate{ID: p.ID, Name: p.Title, Category: kw})
		}
	}
	return tops, bottoms
}

func candidateText(p domain.Product) string {
	parts := append([]string{p.Title}, p.Tags...)
	return strings.ToLower(strings.Join(parts, " "))
}

func matchKeyword(text string, keywords []string) (string, bool) {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return kw, true
		}
	}
	return "", false
}

// fallbackSuggestion picks uniformly at random from each partition. An
// empty partition leaves its slot nil.
func fallbackSuggestion(tops, bottoms []domain.OutfitCandidate) domain.OutfitSuggestion {
	s := domain.OutfitSuggestion{
		Shoes:     fallbackShoes,
		Reasoning: "Automatic selection: the stylist was unavailable, so items were picked at random from matching categories.",
		Fallback:  true,
	}
	if len(tops) > 0 {
		pick := tops[rand.Intn(len(tops))]
		s.Top = &pick
	}
	if len(bottoms) > 0 {
		pick := bottoms[rand.Intn(len(bottoms))]
		s.Bottom = &pick
	}
	return s
}
