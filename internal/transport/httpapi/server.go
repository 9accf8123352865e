// Package httpapi is the HTTP JSON transport for the search service.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/souqlane/stylesearch/internal/domain"
	"github.com/souqlane/stylesearch/internal/metrics"
	"github.com/souqlane/stylesearch/internal/usecase/health"
	"github.com/souqlane/stylesearch/internal/usecase/search"
	"github.com/souqlane/stylesearch/internal/usecase/settings"
	"github.com/souqlane/stylesearch/internal/version"
)

// maxImageBytes caps the uploaded image size for POST /search/image.
const maxImageBytes = 10 << 20

// SearchService serves the text and image search paths.
type SearchService interface {
	Text(ctx context.Context, query string, f search.Filters) ([]domain.ProductSummary, error)
	Image(ctx context.Context, imageData []byte) ([]domain.ProductSummary, bool, error)
}

// SpellService serves spell-correction suggestions.
type SpellService interface {
	Suggest(ctx context.Context, query, language string) ([]string, error)
	AddSynonym(ctx context.Context, key, term string) error
}

// IndexingService owns the re-indexing sweep.
type IndexingService interface {
	StartRebuild(ctx context.Context) (domain.IndexJob, error)
	Latest(ctx context.Context) (domain.IndexJob, error)
	StaleCount(ctx context.Context) (int, error)
}

// OutfitService builds outfit suggestions.
type OutfitService interface {
	Suggest(ctx context.Context, profile domain.ShopperProfile) (domain.OutfitSuggestion, error)
}

// SettingsService serves the runtime configuration.
type SettingsService interface {
	Current() domain.SystemConfig
	Update(ctx context.Context, p settings.Patch) (domain.SystemConfig, error)
}

// HealthService aggregates component health checks.
type HealthService interface {
	Check(ctx context.Context) health.Report
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server holds the HTTP handlers.
type Server struct {
	search        SearchService
	spell         SpellService
	indexing      IndexingService
	outfits       OutfitService
	settings      SettingsService
	health        HealthService
	recorder      *metrics.Recorder
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	searchSvc SearchService,
	spellSvc SpellService,
	indexingSvc IndexingService,
	outfitSvc OutfitService,
	settingsSvc SettingsService,
	healthSvc HealthService,
	recorder *metrics.Recorder,
	logger *zap.Logger,
) *Server {
	s := &Server{
		search:   searchSvc,
		spell:    spellSvc,
		indexing: indexingSvc,
		outfits:  outfitSvc,
		settings: settingsSvc,
		health:   healthSvc,
		recorder: recorder,
		logger:   logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrValidation, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrFeatureDisabled, http.StatusServiceUnavailable, codeFeatureDisabled),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, codeNotFound),
		sentinelHandler(domain.ErrSweepRunning, http.StatusConflict, codeSweepRunning),
		sentinelHandler(domain.ErrProviderUnavailable, http.StatusBadGateway, codeProviderUnavailable),
		sentinelHandler(domain.ErrProviderConfig, http.StatusInternalServerError, codeProviderConfig),
		sentinelHandler(domain.ErrUnknownProvider, http.StatusInternalServerError, codeProviderConfig),
	}
	return s
}

// Routes registers every endpoint. Admin routes sit behind the bearer-key
// middleware.
func (s *Server) Routes(r chi.Router, adminKeys []string) {
	r.Post("/search/text", s.TextSearch)
	r.Post("/search/image", s.ImageSearch)
	r.Post("/search/spell", s.SpellSuggest)
	r.Post("/outfits/suggest", s.OutfitSuggest)

	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/admin", func(admin chi.Router) {
		admin.Use(AdminAuthMiddleware(adminKeys))
		admin.Post("/index/rebuild", s.RebuildIndex)
		admin.Get("/index/health", s.IndexHealth)
		admin.Get("/config", s.GetConfig)
		admin.Patch("/config", s.PatchConfig)
		admin.Post("/spell/synonyms", s.AddSynonym)
		admin.Get("/metrics", s.LatencyMetrics)
	})
}

// TextSearch handles POST /search/text.
func (s *Server) TextSearch(w http.ResponseWriter, r *http.Request) {
	var req textSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	results, err := s.search.Text(r.Context(), req.Q, req.Filters.toDomain())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newSearchResponse(results))
}

// ImageSearch handles POST /search/image (multipart, field "image").
func (s *Server) ImageSearch(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid multipart form: "+err.Error())
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "An \"image\" file field is required")
		return
	}
	defer file.Close()

	// Read one byte past the cap so an oversized upload is rejected rather
	// than silently truncated.
	data, err := io.ReadAll(io.LimitReader(file, maxImageBytes+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Failed to read image: "+err.Error())
		return
	}
	if len(data) > maxImageBytes {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "Image exceeds the 10MB limit")
		return
	}

	results, degraded, err := s.search.Image(r.Context(), data)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	if degraded {
		s.logger.Warn("Image search served from a degraded embedding")
	}

	writeJSON(w, http.StatusOK, newSearchResponse(results))
}

// SpellSuggest handles POST /search/spell.
func (s *Server) SpellSuggest(w http.ResponseWriter, r *http.Request) {
	var req spellRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	suggestions, err := s.spell.Suggest(r.Context(), req.Q, req.Language)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	if suggestions == nil {
		suggestions = []string{}
	}

	writeJSON(w, http.StatusOK, spellResponse{Suggestions: suggestions})
}

// OutfitSuggest handles POST /outfits/suggest.
func (s *Server) OutfitSuggest(w http.ResponseWriter, r *http.Request) {
	var req outfitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	suggestion, err := s.outfits.Suggest(r.Context(), domain.ShopperProfile{
		HeightCm: req.HeightCm,
		WeightKg: req.WeightKg,
		Prompt:   req.Prompt,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newOutfitResponse(suggestion))
}

// RebuildIndex handles POST /admin/index/rebuild.
func (s *Server) RebuildIndex(w http.ResponseWriter, r *http.Request) {
	job, err := s.indexing.StartRebuild(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, rebuildResponse{
		JobID:         job.ID,
		Message:       "Re-indexing started",
		TotalProducts: job.ProductsTotal,
	})
}

// IndexHealth handles GET /admin/index/health.
func (s *Server) IndexHealth(w http.ResponseWriter, r *http.Request) {
	stale, err := s.indexing.StaleCount(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	job, err := s.indexing.Latest(r.Context())
	if err != nil {
		if errors.Is(err, domain.ErrNoJobs) {
			writeJSON(w, http.StatusOK, indexHealthResponse{
				Message:       "no indexing jobs yet",
				StaleProducts: stale,
			})
			return
		}
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, indexHealthResponse{
		LatestJob:     &job,
		StaleProducts: stale,
	})
}

// GetConfig handles GET /admin/config.
func (s *Server) GetConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.settings.Current())
}

// PatchConfig handles PATCH /admin/config.
func (s *Server) PatchConfig(w http.ResponseWriter, r *http.Request) {
	var patch settings.Patch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	cfg, err := s.settings.Update(r.Context(), patch)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, cfg)
}

// AddSynonym handles POST /admin/spell/synonyms.
func (s *Server) AddSynonym(w http.ResponseWriter, r *http.Request) {
	var req synonymRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if err := s.spell.AddSynonym(r.Context(), req.Key, req.Term); err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// LatencyMetrics handles GET /admin/metrics: per-route latency quantiles.
func (s *Server) LatencyMetrics(w http.ResponseWriter, r *http.Request) {
	if s.recorder == nil {
		writeJSON(w, http.StatusOK, map[string]any{"routes": []any{}})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"routes": s.recorder.Snapshot()})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != health.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{
		Status:  string(report.Status),
		Version: version.Version,
		Checks:  checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// safeDomainMessage returns a sentinel error message for the client without
// exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrValidation,
		domain.ErrFeatureDisabled,
		domain.ErrNotFound,
		domain.ErrSweepRunning,
		domain.ErrProviderUnavailable,
		domain.ErrProviderConfig,
		domain.ErrUnknownProvider,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
