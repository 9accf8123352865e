// Package provider resolves embedding providers by configuration name.
package provider

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/souqlane/stylesearch/internal/config"
	"github.com/souqlane/stylesearch/internal/db"
	"github.com/souqlane/stylesearch/internal/domain"
	"github.com/souqlane/stylesearch/internal/metrics"
	"github.com/souqlane/stylesearch/internal/provider/hf"
	"github.com/souqlane/stylesearch/internal/provider/local"
	"github.com/souqlane/stylesearch/internal/provider/openai"
	"github.com/souqlane/stylesearch/internal/repository/embcache"
)

// Factory resolves (providerName, apiKey) pairs into providers. Boot config
// supplies endpoints and fallback keys; SystemConfig may override keys at
// runtime. When a cache store is attached, resolved text embedders are
// wrapped with the Redis embedding cache.
type Factory struct {
	cfg        config.ProvidersConfig
	store      db.Store
	cacheTTL   time.Duration
	maxRetries int
	retryBase  time.Duration
	logger     *zap.Logger
}

// NewFactory creates a provider factory.
func NewFactory(cfg config.ProvidersConfig, logger *zap.Logger) *Factory {
	return &Factory{
		cfg:        cfg,
		maxRetries: 2,
		retryBase:  250 * time.Millisecond,
		logger:     logger,
	}
}

// WithCache attaches the embedding-cache store.
func (f *Factory) WithCache(store db.Store, ttl time.Duration) *Factory {
	f.store = store
	f.cacheTTL = ttl
	return f
}

// WithRetry sets the transient-failure retry budget for providers that
// degrade rather than fail.
func (f *Factory) WithRetry(maxRetries int, base time.Duration) *Factory {
	if maxRetries > 0 {
		f.maxRetries = maxRetries
	}
	if base > 0 {
		f.retryBase = base
	}
	return f
}

// Resolve builds the provider for a name and optional API key override.
// Unknown names and missing required keys are configuration errors.
func (f *Factory) Resolve(name, apiKey string) (domain.Provider, error) {
	base, err := f.build(name, apiKey)
	if err != nil {
		return nil, err
	}

	if f.store != nil {
		// The namespace keys the cache by provider identity: after a runtime
		// provider switch a stale entry from the old provider (wrong
		// dimensionality) must never be served.
		namespace := fmt.Sprintf("%s:%d", base.Name(), base.Dimensions())
		cached := embcache.New(base, f.store, namespace, f.cacheTTL, metrics.EmbeddingCacheTotal, f.logger)
		return &cachedProvider{Provider: base, text: cached}, nil
	}
	return base, nil
}

// ResolveForConfig resolves the active provider declared in a system config,
// using the config's stored key when present.
func (f *Factory) ResolveForConfig(sc domain.SystemConfig) (domain.Provider, error) {
	return f.Resolve(sc.ActiveProvider, sc.KeyFor(sc.ActiveProvider))
}

// OutfitPicker builds the chat-backed outfit picker for the generative
// provider. Requires an OpenAI key from either source.
func (f *Factory) OutfitPicker(apiKey string) (*openai.OutfitPicker, error) {
	key := firstNonEmpty(apiKey, f.cfg.OpenAI.APIKey)
	if key == "" {
		return nil, fmt.Errorf("outfit picker requires an openai api key: %w", domain.ErrProviderConfig)
	}
	return openai.NewOutfitPicker(openai.Config{
		APIKey:      key,
		BaseURL:     f.cfg.OpenAI.BaseURL,
		VisionModel: f.cfg.OpenAI.VisionModel,
		Timeout:     time.Duration(f.cfg.OpenAI.TimeoutSec) * time.Second,
		Logger:      f.logger,
	}), nil
}

func (f *Factory) build(name, apiKey string) (domain.Provider, error) {
	switch name {
	case domain.ProviderLocal, "":
		return local.New(0), nil

	case domain.ProviderHuggingFace:
		key := firstNonEmpty(apiKey, f.cfg.HuggingFace.APIKey)
		if key == "" {
			return nil, fmt.Errorf("provider %q requires an api key: %w", name, domain.ErrProviderConfig)
		}
		return hf.New(hf.Config{
			APIKey:  key,
			BaseURL: f.cfg.HuggingFace.BaseURL,
			Model:   f.cfg.HuggingFace.Model,
			Timeout: time.Duration(f.cfg.HuggingFace.TimeoutSec) * time.Second,
			Logger:  f.logger,
		}), nil

	case domain.ProviderOpenAI:
		key := firstNonEmpty(apiKey, f.cfg.OpenAI.APIKey)
		if key == "" {
			return nil, fmt.Errorf("provider %q requires an api key: %w", name, domain.ErrProviderConfig)
		}
		return openai.New(openai.Config{
			APIKey:      key,
			BaseURL:     f.cfg.OpenAI.BaseURL,
			Model:       f.cfg.OpenAI.Model,
			VisionModel: f.cfg.OpenAI.VisionModel,
			Timeout:     time.Duration(f.cfg.OpenAI.TimeoutSec) * time.Second,
			MaxRetries:  f.maxRetries,
			RetryBase:   f.retryBase,
			Logger:      f.logger,
		}), nil

	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownProvider, name)
	}
}

// cachedProvider routes text embedding through the cache decorator while
// keeping the underlying provider's image path and identity.
type cachedProvider struct {
	domain.Provider
	text domain.Embedder
}

func (c *cachedProvider) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	return c.text.Embed(ctx, text)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
