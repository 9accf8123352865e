package httpapi

import (
	"github.com/souqlane/stylesearch/internal/domain"
	"github.com/souqlane/stylesearch/internal/usecase/search"
)

// Error codes returned in errorResponse.Code.
const (
	codeBadRequest          = "bad_request"
	codeValidationFailed    = "validation_failed"
	codeUnauthorized        = "unauthorized"
	codeNotFound            = "not_found"
	codeFeatureDisabled     = "feature_disabled"
	codeSweepRunning        = "sweep_running"
	codeProviderConfig      = "provider_config_error"
	codeProviderUnavailable = "provider_unavailable"
	codeInternalError       = "internal_error"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type textSearchRequest struct {
	Q       string      `json:"q"`
	Filters *filtersDTO `json:"filters"`
}

type filtersDTO struct {
	Sizes    []string `json:"sizes"`
	Colors   []string `json:"colors"`
	PriceMin *float64 `json:"priceMin"`
	PriceMax *float64 `json:"priceMax"`
}

func (f *filtersDTO) toDomain() search.Filters {
	if f == nil {
		return search.Filters{}
	}
	return search.Filters{
		PriceMin: f.PriceMin,
		PriceMax: f.PriceMax,
		Sizes:    f.Sizes,
		Colors:   f.Colors,
	}
}

type searchResponse struct {
	Results []domain.ProductSummary `json:"results"`
	Count   int                     `json:"count"`
}

func newSearchResponse(results []domain.ProductSummary) searchResponse {
	if results == nil {
		results = []domain.ProductSummary{}
	}
	return searchResponse{Results: results, Count: len(results)}
}

type spellRequest struct {
	Q        string `json:"q"`
	Language string `json:"language"`
}

type spellResponse struct {
	Suggestions []string `json:"suggestions"`
}

type synonymRequest struct {
	Key  string `json:"key"`
	Term string `json:"term"`
}

type rebuildResponse struct {
	JobID         string `json:"jobId"`
	Message       string `json:"message"`
	TotalProducts int    `json:"totalProducts"`
}

type indexHealthResponse struct {
	LatestJob     *domain.IndexJob `json:"latestJob,omitempty"`
	StaleProducts int              `json:"staleProducts"`
	Message       string           `json:"message,omitempty"`
}

type outfitRequest struct {
	HeightCm int    `json:"heightCm"`
	WeightKg int    `json:"weightKg"`
	Prompt   string `json:"prompt"`
}

type outfitResponse struct {
	Top       *domain.OutfitCandidate    `json:"top"`
	Bottom    *domain.OutfitCandidate    `json:"bottom"`
	Shoes     domain.ShoeRecommendation  `json:"shoes"`
	Reasoning string                     `json:"reasoning"`
	Fallback  bool                       `json:"fallback"`
}

func newOutfitResponse(s domain.OutfitSuggestion) outfitResponse {
	return outfitResponse{
		Top:       s.Top,
		Bottom:    s.Bottom,
		Shoes:     s.Shoes,
		Reasoning: s.Reasoning,
		Fallback:  s.Fallback,
	}
}

type healthResponse struct {
	Status  string            `json:"status"`
	Version string            `json:"version"`
	Checks  map[string]string `json:"checks"`
}
