package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/souqlane/stylesearch/internal/domain"
)

const outfitSystemPrompt = "You are a fashion stylist for an online marketplace. " +
	"Pick exactly one top and one bottom from the candidate lists that work together " +
	"for the shopper, and recommend one pair of shoes. " +
	"Respond with a single JSON object and nothing else, using this shape: " +
	`{"topId": "...", "bottomId": "...", "shoes": {"brand": "...", "model": "...", "reason": "..."}, "reasoning": "..."}`

// OutfitPicker asks the chat model to assemble an outfit. Call or parse
// failures surface as errors; the outfit service owns the randomized fallback.
type OutfitPicker struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	logger  *zap.Logger
}

// NewOutfitPicker creates the chat-backed outfit picker.
func NewOutfitPicker(cfg Config) *OutfitPicker {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	model := cfg.VisionModel
	if model == "" {
		model = defaultVisionModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OutfitPicker{
		client:  openai.NewClientWithConfig(clientCfg),
		model:   model,
		timeout: timeout,
		logger:  logger,
	}
}

type outfitModelResponse struct {
	TopID     string                    `json:"topId"`
	BottomID  string                    `json:"bottomId"`
	Shoes     domain.ShoeRecommendation `json:"shoes"`
	Reasoning string                    `json:"reasoning"`
}

// PickOutfit sends the candidate partitions and shopper profile to the model
// and parses its JSON reply.
func (p *OutfitPicker) PickOutfit(
	ctx context.Context,
	profile domain.ShopperProfile,
	tops, bottoms []domain.OutfitCandidate,
) (domain.OutfitSuggestion, error) {
	callCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	resp, err := p.client.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: outfitSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildOutfitPrompt(profile, tops, bottoms)},
		},
	})
	if err != nil {
		return domain.OutfitSuggestion{}, fmt.Errorf("outfit completion: %w: %w", domain.ErrProviderUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return domain.OutfitSuggestion{}, fmt.Errorf("empty outfit response: %w", domain.ErrProviderUnavailable)
	}

	raw, ok := ExtractJSON(resp.Choices[0].Message.Content)
	if !ok {
		return domain.OutfitSuggestion{}, fmt.Errorf("no JSON object in outfit response: %w", domain.ErrProviderUnavailable)
	}

	var parsed outfitModelResponse
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return domain.OutfitSuggestion{}, fmt.Errorf("parse outfit response: %w: %w", domain.ErrProviderUnavailable, err)
	}

	suggestion := domain.OutfitSuggestion{
		Top:       findCandidate(tops, parsed.TopID),
		Bottom:    findCandidate(bottoms, parsed.BottomID),
		Shoes:     parsed.Shoes,
		Reasoning: parsed.Reasoning,
	}
	if suggestion.Top == nil && suggestion.Bottom == nil {
		return domain.OutfitSuggestion{}, fmt.Errorf("model picked no known candidates: %w", domain.ErrProviderUnavailable)
	}
	return suggestion, nil
}

func buildOutfitPrompt(profile domain.ShopperProfile, tops, bottoms []domain.OutfitCandidate) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Shopper: height %d cm, weight %d kg.\n", profile.HeightCm, profile.WeightKg)
	if profile.Prompt != "" {
		fmt.Fprintf(&b, "Style request: %s\n", profile.Prompt)
	}
	b.WriteString("Tops:\n")
	for _, c := range tops {
		fmt.Fprintf(&b, "- id=%s name=%q category=%s\n", c.ID, c.Name, c.Category)
	}
	b.WriteString("Bottoms:\n")
	for _, c := range bottoms {
		fmt.Fprintf(&b, "- id=%s name=%q category=%s\n", c.ID, c.Name, c.Category)
	}
	return b.String()
}

func findCandidate(list []domain.OutfitCandidate, id string) *domain.OutfitCandidate {
	if id == "" {
		return nil
	}
	for i := range list {
		if list[i].ID == id {
			return &list[i]
		}
	}
	return nil
}

// fencedJSON matches a JSON object inside a ```json fenced block.
var fencedJSON = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")

// ExtractJSON locates a JSON object inside markdown fences or raw text.
func ExtractJSON(s string) (string, bool) {
	if m := fencedJSON.FindStringSubmatch(s); m != nil {
		return m[1], true
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		return s[start : end+1], true
	}
	return "", false
}
