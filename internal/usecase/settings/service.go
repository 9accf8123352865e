// Package settings serves the administrator-mutable runtime configuration.
package settings

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/souqlane/stylesearch/internal/domain"
)

// Service caches the SystemConfig row in memory so search and indexing read
// it without a database round-trip. Updates write through and refresh the
// cached copy.
type Service struct {
	repo   Repository
	logger *zap.Logger

	mu  sync.RWMutex
	cfg domain.SystemConfig
}

// New creates a settings service with the default configuration. Call Reload
// at boot to pick up the stored row.
func New(repo Repository, logger *zap.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
		cfg:    domain.DefaultSystemConfig(),
	}
}

// Reload replaces the cached configuration with the stored one.
func (s *Service) Reload(ctx context.Context) error {
	cfg, err := s.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("reload system config: %w", err)
	}

	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()
	return nil
}

// Current returns the cached configuration.
func (s *Service) Current() domain.SystemConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// Update applies a partial patch, validates, persists, and returns the new
// configuration.
func (s *Service) Update(ctx context.Context, p Patch) (domain.SystemConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.cfg
	p.apply(&next)
	next.Normalize()

	if err := validate(next); err != nil {
		return domain.SystemConfig{}, fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}

	if err := s.repo.Save(ctx, next); err != nil {
		return domain.SystemConfig{}, fmt.Errorf("save system config: %w", err)
	}

	s.cfg = next
	s.logger.Info("System config updated",
		zap.String("active_provider", next.ActiveProvider),
		zap.String("similarity_metric", next.SimilarityMetric),
	)
	return next, nil
}

// SetSynonym upserts one synonym entry and persists the configuration.
func (s *Service) SetSynonym(ctx context.Context, key, term string) (domain.SystemConfig, error) {
	if key == "" || term == "" {
		return domain.SystemConfig{}, fmt.Errorf("%w: synonym key and term are required", domain.ErrValidation)
	}
	return s.Update(ctx, Patch{Synonyms: map[string]string{key: term}})
}

// Patch is a partial SystemConfig update. Nil fields are left unchanged;
// the ProviderKeys and Synonyms maps are merged, not replaced.
type Patch struct {
	ActiveProvider   *string `json:"activeProvider"`
	ImageGenProvider *string `json:"imageGenProvider"`

	SimilarityDimension *int    `json:"similarityDimension"`
	SimilarityMetric    *string `json:"similarityMetric"`
	SimilarityTopK      *int    `json:"similarityTopK"`
	SimilarityRerank    *bool   `json:"similarityRerank"`

	EnableSpellCorrection *bool `json:"enableSpellCorrection"`
	EnableOutfitAI        *bool `json:"enableOutfitAI"`
	EnableImageSearch     *bool `json:"enableImageSearch"`
	EnableMultilingual    *bool `json:"enableMultilingual"`

	ProviderKeys map[string]string `json:"providerKeys"`
	Synonyms     map[string]string `json:"synonyms"`
}

func (p Patch) apply(cfg *domain.SystemConfig) {
	if p.ActiveProvider != nil {
		cfg.ActiveProvider = *p.ActiveProvider
	}
	if p.ImageGenProvider != nil {
		cfg.ImageGenProvider = *p.ImageGenProvider
	}
	if p.SimilarityDimension != nil {
		cfg.SimilarityDimension = *p.SimilarityDimension
	}
	if p.SimilarityMetric != nil {
		cfg.SimilarityMetric = *p.SimilarityMetric
	}
	if p.SimilarityTopK != nil {
		cfg.SimilarityTopK = *p.SimilarityTopK
	}
	if p.SimilarityRerank != nil {
		cfg.SimilarityRerank = *p.SimilarityRerank
	}
	if p.EnableSpellCorrection != nil {
		cfg.EnableSpellCorrection = *p.EnableSpellCorrection
	}
	if p.EnableOutfitAI != nil {
		cfg.EnableOutfitAI = *p.EnableOutfitAI
	}
	if p.EnableImageSearch != nil {
		cfg.EnableImageSearch = *p.EnableImageSearch
	}
	if p.EnableMultilingual != nil {
		cfg.EnableMultilingual = *p.EnableMultilingual
	}
	if len(p.ProviderKeys) > 0 {
		if cfg.ProviderKeys == nil {
			cfg.ProviderKeys = make(map[string]string, len(p.ProviderKeys))
		} else {
			cfg.ProviderKeys = cloneMap(cfg.ProviderKeys)
		}
		for k, v := range p.ProviderKeys {
			cfg.ProviderKeys[k] = v
		}
	}
	if len(p.Synonyms) > 0 {
		if cfg.Synonyms == nil {
			cfg.Synonyms = make(map[string]string, len(p.Synonyms))
		} else {
			cfg.Synonyms = cloneMap(cfg.Synonyms)
		}
		for k, v := range p.Synonyms {
			cfg.Synonyms[k] = v
		}
	}
}

func validate(cfg domain.SystemConfig) error {
	switch cfg.ActiveProvider {
	case domain.ProviderLocal, domain.ProviderHuggingFace, domain.ProviderOpenAI:
	default:
		return fmt.Errorf("unknown provider %q", cfg.ActiveProvider)
	}
	switch cfg.SimilarityMetric {
	case domain.MetricCosine, domain.MetricEuclidean, domain.MetricDot:
	default:
		return fmt.Errorf("unknown similarity metric %q", cfg.SimilarityMetric)
	}
	if cfg.SimilarityDimension <= 0 {
		return fmt.Errorf("similarity dimension must be positive, got %d", cfg.SimilarityDimension)
	}
	if cfg.SimilarityTopK <= 0 || cfg.SimilarityTopK > 100 {
		return fmt.Errorf("similarity top-k must be in [1, 100], got %d", cfg.SimilarityTopK)
	}
	return nil
}

func cloneMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
