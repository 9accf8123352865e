// Package hf implements the remote HTTP embedding provider backed by the
// Hugging Face Inference API. Unlike the openai provider it does not degrade
// on failure: errors surface to the caller, which decides whether to retry.
package hf

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/souqlane/stylesearch/internal/domain"
)

const defaultBaseURL = "https://api-inference.huggingface.co"

// DefaultDimensions matches all-MiniLM-class feature-extraction models.
const DefaultDimensions = 384

// Config holds the remote provider settings.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
	Logger  *zap.Logger
}

// Provider calls the Inference API feature-extraction pipeline.
type Provider struct {
	baseURL    string
	model      string
	token      string
	httpClient *http.Client
	logger     *zap.Logger
}

var _ domain.Provider = (*Provider)(nil)

// New creates a Hugging Face inference provider.
func New(cfg Config) *Provider {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = "sentence-transformers/all-MiniLM-L6-v2"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provider{
		baseURL:    baseURL,
		model:      model,
		token:      cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Name implements domain.Provider.
func (p *Provider) Name() string { return domain.ProviderHuggingFace }

// Dimensions implements domain.Provider.
func (p *Provider) Dimensions() int { return DefaultDimensions }

type embedRequest struct {
	Inputs  string          `json:"inputs"`
	Options map[string]bool `json:"options,omitempty"`
}

// Embed implements domain.Embedder via the feature-extraction pipeline.
func (p *Provider) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	payload, err := json.Marshal(embedRequest{
		Inputs:  text,
		Options: map[string]bool{"wait_for_model": true},
	})
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/pipeline/feature-extraction/%s", p.baseURL, p.model)
	vec, err := p.post(ctx, url, "application/json", payload)
	if err != nil {
		return domain.EmbeddingResult{}, err
	}
	return domain.EmbeddingResult{Embedding: vec}, nil
}

// EmbedImage implements domain.ImageEmbedder by posting raw image bytes to the
// model endpoint (image feature-extraction models accept binary payloads).
func (p *Provider) EmbedImage(ctx context.Context, data []byte) (domain.EmbeddingResult, error) {
	url := fmt.Sprintf("%s/models/%s", p.baseURL, p.model)
	vec, err := p.post(ctx, url, "application/octet-stream", data)
	if err != nil {
		return domain.EmbeddingResult{}, err
	}
	return domain.EmbeddingResult{Embedding: vec}, nil
}

// post sends the payload and decodes the response, which is either a flat
// vector or a single-input nested array [[...]].
func (p *Provider) post(ctx context.Context, url, contentType string, body []byte) ([]float32, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	if p.token != "" {
		req.Header.Set("Authorization", "Bearer "+p.token)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("inference request: %w: %w", domain.ErrProviderUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		var errBody map[string]any
		_ = json.NewDecoder(resp.Body).Decode(&errBody)
		p.logger.Warn("Inference API error",
			zap.Int("status", resp.StatusCode),
			zap.String("model", p.model),
			zap.Any("body", errBody),
		)
		return nil, fmt.Errorf("inference API status %d: %w", resp.StatusCode, domain.ErrProviderUnavailable)
	}

	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	var flat []float32
	if err := json.Unmarshal(raw, &flat); err == nil && len(flat) > 0 {
		return flat, nil
	}

	var nested [][]float32
	if err := json.Unmarshal(raw, &nested); err == nil && len(nested) > 0 {
		return nested[0], nil
	}

	return nil, fmt.Errorf("unexpected embedding response shape: %w", domain.ErrProviderUnavailable)
}

// HealthCheck verifies the model endpoint responds.
func (p *Provider) HealthCheck(ctx context.Context) error {
	if _, err := p.Embed(ctx, "ping"); err != nil {
		return fmt.Errorf("inference health check: %w", err)
	}
	return nil
}
