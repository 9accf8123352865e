package domain

// Similarity metric names accepted in SystemConfig.
const (
	MetricCosine    = "cosine"
	MetricEuclidean = "euclidean"
	MetricDot       = "dot"
)

// Provider names accepted in SystemConfig.ActiveProvider.
const (
	ProviderLocal       = "local"
	ProviderHuggingFace = "huggingface"
	ProviderOpenAI      = "openai"
)

// SystemConfig is the administrator-mutable runtime configuration.
// It is stored as a singleton row and read by every search and indexing
// operation to decide the active provider and thresholds.
type SystemConfig struct {
	ActiveProvider   string `json:"activeProvider"`
	ImageGenProvider string `json:"imageGenProvider"`

	SimilarityDimension int    `json:"similarityDimension"`
	SimilarityMetric    string `json:"similarityMetric"`
	SimilarityTopK      int    `json:"similarityTopK"`
	SimilarityRerank    bool   `json:"similarityRerank"`

	EnableSpellCorrection bool `json:"enableSpellCorrection"`
	EnableOutfitAI        bool `json:"enableOutfitAI"`
	EnableImageSearch     bool `json:"enableImageSearch"`
	EnableMultilingual    bool `json:"enableMultilingual"`

	ProviderKeys map[string]string `json:"providerKeys,omitempty"`
	Synonyms     map[string]string `json:"synonyms,omitempty"`
}

// DefaultSystemConfig returns the configuration used before an administrator
// saves one: offline-safe local provider, cosine ranking, every feature on
// except image search reranking.
func DefaultSystemConfig() SystemConfig {
	return SystemConfig{
		ActiveProvider:      ProviderLocal,
		ImageGenProvider:    ProviderLocal,
		SimilarityDimension: 384,
		SimilarityMetric:    MetricCosine,
		SimilarityTopK:      20,
		SimilarityRerank:    false,

		EnableSpellCorrection: true,
		EnableOutfitAI:        true,
		EnableImageSearch:     true,
		EnableMultilingual:    true,
	}
}

// Normalize fills zero values with defaults so a partially-patched config
// never breaks search.
func (c *SystemConfig) Normalize() {
	def := DefaultSystemConfig()
	if c.ActiveProvider == "" {
		c.ActiveProvider = def.ActiveProvider
	}
	if c.ImageGenProvider == "" {
		c.ImageGenProvider = def.ImageGenProvider
	}
	if c.SimilarityDimension <= 0 {
		c.SimilarityDimension = def.SimilarityDimension
	}
	switch c.SimilarityMetric {
	case MetricCosine, MetricEuclidean, MetricDot:
	default:
		c.SimilarityMetric = def.SimilarityMetric
	}
	if c.SimilarityTopK <= 0 {
		c.SimilarityTopK = def.SimilarityTopK
	}
}

// KeyFor returns the stored API key for a provider name, empty if unset.
func (c *SystemConfig) KeyFor(provider string) string {
	if c.ProviderKeys == nil {
		return ""
	}
	return c.ProviderKeys[provider]
}
