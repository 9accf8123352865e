package domain

// ShopperProfile is the body/style input for outfit suggestions.
type ShopperProfile struct {
	HeightCm int    `json:"heightCm"`
	WeightKg int    `json:"weightKg"`
	Prompt   string `json:"prompt"`
}

// OutfitCandidate is one product offered to the outfit picker.
type OutfitCandidate struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

// ShoeRecommendation is the brand/model/reason triple attached to a suggestion.
type ShoeRecommendation struct {
	Brand  string `json:"brand"`
	Model  string `json:"model"`
	Reason string `json:"reason"`
}

// OutfitSuggestion is the picked top/bottom pair plus a shoe recommendation.
// Fallback marks a randomized rule-based pick produced after a model failure.
type OutfitSuggestion struct {
	Top       *OutfitCandidate   `json:"top,omitempty"`
	Bottom    *OutfitCandidate   `json:"bottom,omitempty"`
	Shoes     ShoeRecommendation `json:"shoes"`
	Reasoning string             `json:"reasoning"`
	Fallback  bool               `json:"fallback"`
}
