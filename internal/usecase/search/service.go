// Package search serves the text and image product search paths.
package search

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/souqlane/stylesearch/internal/domain"
)

// Filters are the optional predicates applied to text search results.
// Prices are decimal major units, boundaries inclusive.
type Filters struct {
	PriceMin *float64
	PriceMax *float64
	Sizes    []string
	Colors   []string
}

// Service handles product search over the published catalog.
type Service struct {
	catalog   Catalog
	settings  Settings
	providers ProviderResolver
	logger    *zap.Logger
}

// New creates a search service.
func New(catalog Catalog, settings Settings, providers ProviderResolver, logger *zap.Logger) *Service {
	return &Service{catalog: catalog, settings: settings, providers: providers, logger: logger}
}

// Text matches published products by case-insensitive substring against the
// title (both title fields when multilingual is enabled), then applies the
// filters in fixed order: price-min, price-max, sizes, colors. An empty
// query matches every published product.
func (s *Service) Text(ctx context.Context, query string, f Filters) ([]domain.ProductSummary, error) {
	products, err := s.catalog.ListPublished(ctx)
	if err != nil {
		return nil, fmt.Errorf("list published: %w", err)
	}

	cfg := s.settings.Current()
	q := strings.ToLower(strings.TrimSpace(query))

	var matched []domain.Product
	for _, p := range products {
		if !titleMatches(p, q, cfg.EnableMultilingual) {
			continue
		}
		matched = append(matched, p)
	}

	matched = applyFilters(matched, f)

	summaries := make([]domain.ProductSummary, 0, len(matched))
	for _, p := range matched {
		summaries = append(summaries, p.Summary())
	}
	return summaries, nil
}

// Image embeds the uploaded image with the active provider and returns
// candidate products. With reranking off this is the compatibility behavior:
// the first top-K published products, the embedding computed but unused.
// With reranking on, products carrying a text embedding are ranked by the
// configured similarity metric. The returned flag reports a degraded
// (fallback) embedding.
func (s *Service) Image(ctx context.Context, imageData []byte) ([]domain.ProductSummary, bool, error) {
	cfg := s.settings.Current()
	if !cfg.EnableImageSearch {
		return nil, false, fmt.Errorf("image search: %w", domain.ErrFeatureDisabled)
	}
	if len(imageData) == 0 {
		return nil, false, fmt.Errorf("%w: image data is required", domain.ErrValidation)
	}

	provider, err := s.providers.ResolveForConfig(cfg)
	if err != nil {
		return nil, false, fmt.Errorf("resolve provider: %w", err)
	}

	result, err := provider.EmbedImage(ctx, imageData)
	if err != nil {
		return nil, false, fmt.Errorf("embed image: %w", err)
	}
	if result.Degraded {
		s.logger.Warn("Image search running on a degraded embedding",
			zap.String("provider", provider.Name()))
	}

	products, err := s.catalog.ListPublished(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("list published: %w", err)
	}

	topK := cfg.SimilarityTopK
	var candidates []domain.Product
	if cfg.SimilarityRerank {
		candidates = rankBySimilarity(products, result.Embedding, cfg.SimilarityMetric, topK)
	} else {
		candidates = products
		if len(candidates) > topK {
			candidates = candidates[:topK]
		}
	}

	summaries := make([]domain.ProductSummary, 0, len(candidates))
	for _, p := range candidates {
		summaries = append(summaries, p.Summary())
	}
	return summaries, result.Degraded, nil
}

func titleMatches(p domain.Product, q string, multilingual bool) bool {
	if q == "" {
		return true
	}
	if strings.Contains(strings.ToLower(p.Title), q) {
		return true
	}
	return multilingual && p.TitleAr != "" && strings.Contains(strings.ToLower(p.TitleAr), q)
}

// applyFilters keeps the predicate order fixed so identical inputs always
// produce identical ordered results.
func applyFilters(products []domain.Product, f Filters) []domain.Product {
	out := products
	if f.PriceMin != nil {
		out = keep(out, func(p domain.Product) bool { return p.PriceMajor() >= *f.PriceMin })
	}
	if f.PriceMax != nil {
		out = keep(out, func(p domain.Product) bool { return p.PriceMajor() <= *f.PriceMax })
	}
	if len(f.Sizes) > 0 {
		out = keep(out, func(p domain.Product) bool { return intersects(p.Sizes, f.Sizes) })
	}
	if len(f.Colors) > 0 {
		out = keep(out, func(p domain.Product) bool { return intersects(p.Colors, f.Colors) })
	}
	return out
}

func keep(products []domain.Product, pred func(domain.Product) bool) []domain.Product {
	var out []domain.Product
	for _, p := range products {
		if pred(p) {
			out = append(out, p)
		}
	}
	return out
}

func intersects(have, want []string) bool {
	for _, h := range have {
		for _, w := range want {
			if strings.EqualFold(h, w) {
				return true
			}
		}
	}
	return false
}

type scored struct {
	product domain.Product
	score   float64
}

// rankBySimilarity scores products that carry a text embedding against the
// query vector and returns the top-K. Dimension mismatches score -Inf and
// are dropped.
func rankBySimilarity(products []domain.Product, query []float32, metric string, topK int) []domain.Product {
	ranked := make([]scored, 0, len(products))
	for _, p := range products {
		if p.Vectors == nil || len(p.Vectors.TextEmbedding) == 0 {
			continue
		}
		score := domain.Similarity(metric, query, p.Vectors.TextEmbedding)
		if math.IsInf(score, -1) {
			continue
		}
		ranked = append(ranked, scored{product: p, score: score})
	}

	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	if len(ranked) > topK {
		ranked = ranked[:topK]
	}
	out := make([]domain.Product, 0, len(ranked))
	for _, r := range ranked {
		out = append(out, r.product)
	}
	return out
}
