// Package openai implements the generative-AI provider on the OpenAI API:
// text embeddings, a two-hop image embedding path (vision description, then
// embed the description), and the outfit picker chat calls.
package openai

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/souqlane/stylesearch/internal/domain"
	"github.com/souqlane/stylesearch/internal/metrics"
	"github.com/souqlane/stylesearch/internal/provider/local"
)

// Dimensions is the vector length requested from the embedding endpoint and
// used for fallback noise, so stored vectors stay consistent across outages.
const Dimensions = 768

const (
	defaultEmbeddingModel = "text-embedding-3-small"
	defaultVisionModel    = "gpt-4o-mini"
)

const describePrompt = "Describe this fashion item for a product search index. " +
	"Cover the garment type, style, dominant colors, and material in one short paragraph. " +
	"Respond with the description only."

// Config holds the provider settings.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	VisionModel string
	Timeout     time.Duration
	MaxRetries  int
	RetryBase   time.Duration
	Logger      *zap.Logger
}

// Provider implements domain.Provider. Provider failures never escape: after
// the retry budget is spent, callers get a deterministic noise vector flagged
// Degraded so search stays available at the cost of relevance.
type Provider struct {
	client      *openai.Client
	model       openai.EmbeddingModel
	visionModel string
	timeout     time.Duration
	maxRetries  int
	retryBase   time.Duration
	logger      *zap.Logger
}

var _ domain.Provider = (*Provider)(nil)

// New creates the generative-AI provider.
func New(cfg Config) *Provider {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = defaultEmbeddingModel
	}
	visionModel := cfg.VisionModel
	if visionModel == "" {
		visionModel = defaultVisionModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	retryBase := cfg.RetryBase
	if retryBase <= 0 {
		retryBase = 250 * time.Millisecond
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Provider{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       openai.EmbeddingModel(model),
		visionModel: visionModel,
		timeout:     timeout,
		maxRetries:  cfg.MaxRetries,
		retryBase:   retryBase,
		logger:      logger,
	}
}

// Name implements domain.Provider.
func (p *Provider) Name() string { return domain.ProviderOpenAI }

// Dimensions implements domain.Provider.
func (p *Provider) Dimensions() int { return Dimensions }

// Embed implements domain.Embedder. On failure it returns a degraded noise
// vector instead of an error.
func (p *Provider) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	vec, err := p.embedText(ctx, text)
	if err != nil {
		return p.degrade("text", text, err), nil
	}

	metrics.EmbeddingRequestsTotal.WithLabelValues(p.Name(), "text", "success").Inc()
	return domain.EmbeddingResult{Embedding: vec}, nil
}

// EmbedImage implements domain.ImageEmbedder. The API has no native image
// embedding endpoint, so the vision model first describes the garment and the
// description is embedded — one extra round-trip for provider compatibility.
func (p *Provider) EmbedImage(ctx context.Context, data []byte) (domain.EmbeddingResult, error) {
	description, err := p.describeImage(ctx, data)
	if err != nil {
		return p.degrade("image", string(data), err), nil
	}

	vec, err := p.embedText(ctx, description)
	if err != nil {
		return p.degrade("image", string(data), err), nil
	}

	metrics.EmbeddingRequestsTotal.WithLabelValues(p.Name(), "image", "success").Inc()
	return domain.EmbeddingResult{Embedding: vec}, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (p *Provider) HealthCheck(ctx context.Context) error {
	if _, err := p.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

// embedText calls the embedding endpoint with the per-call timeout and a
// short exponential-backoff retry budget for transient failures.
func (p *Provider) embedText(ctx context.Context, text string) ([]float32, error) {
	req := openai.EmbeddingRequest{
		Input:          []string{text},
		Model:          p.model,
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
		Dimensions:     Dimensions,
	}

	var lastErr error
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<(attempt-1)) * p.retryBase
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		callCtx, cancel := context.WithTimeout(ctx, p.timeout)
		start := time.Now()
		resp, err := p.client.CreateEmbeddings(callCtx, req)
		cancel()

		if err != nil {
			lastErr = err
			continue
		}
		if len(resp.Data) == 0 {
			lastErr = fmt.Errorf("empty embedding response")
			continue
		}

		metrics.EmbeddingRequestDuration.WithLabelValues(p.Name(), "text").Observe(time.Since(start).Seconds())
		return resp.Data[0].Embedding, nil
	}

	return nil, fmt.Errorf("embedding after %d attempts: %w", p.maxRetries+1, lastErr)
}

// describeImage asks the vision model for a natural-language description of
// the fashion item.
func (p *Provider) describeImage(ctx context.Context, data []byte) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	dataURL := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(data)

	resp, err := p.client.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
		Model: p.visionModel,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: describePrompt},
					{
						Type:     openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{URL: dataURL},
					},
				},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("describe image: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("empty vision response")
	}

	return resp.Choices[0].Message.Content, nil
}

// degrade logs the failure and produces the fallback noise vector.
func (p *Provider) degrade(kind, seed string, err error) domain.EmbeddingResult {
	p.logger.Warn("Embedding degraded to fallback vector",
		zap.String("provider", p.Name()),
		zap.String("kind", kind),
		zap.Error(err),
	)
	metrics.EmbeddingRequestsTotal.WithLabelValues(p.Name(), kind, "error").Inc()
	metrics.EmbeddingDegradedTotal.WithLabelValues(p.Name(), kind).Inc()

	return domain.EmbeddingResult{
		Embedding: local.Vector(seed, Dimensions),
		Degraded:  true,
	}
}
