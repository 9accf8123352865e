package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/souqlane/stylesearch/internal/domain"
	"github.com/souqlane/stylesearch/internal/usecase/health"
	"github.com/souqlane/stylesearch/internal/usecase/search"
	"github.com/souqlane/stylesearch/internal/usecase/settings"
)

// --- Mocks ---

type mockSearch struct {
	textFn  func(ctx context.Context, q string, f search.Filters) ([]domain.ProductSummary, error)
	imageFn func(ctx context.Context, data []byte) ([]domain.ProductSummary, bool, error)
}

func (m *mockSearch) Text(ctx context.Context, q string, f search.Filters) ([]domain.ProductSummary, error) {
	return m.textFn(ctx, q, f)
}

func (m *mockSearch) Image(ctx context.Context, data []byte) ([]domain.ProductSummary, bool, error) {
	return m.imageFn(ctx, data)
}

type mockSpell struct {
	suggestFn func(ctx context.Context, q, lang string) ([]string, error)
	addFn     func(ctx context.Context, key, term string) error
}

func (m *mockSpell) Suggest(ctx context.Context, q, lang string) ([]string, error) {
	return m.suggestFn(ctx, q, lang)
}

func (m *mockSpell) AddSynonym(ctx context.Context, key, term string) error {
	if m.addFn == nil {
		return nil
	}
	return m.addFn(ctx, key, term)
}

type mockIndexing struct {
	startFn  func(ctx context.Context) (domain.IndexJob, error)
	latestFn func(ctx context.Context) (domain.IndexJob, error)
	staleFn  func(ctx context.Context) (int, error)
}

func (m *mockIndexing) StartRebuild(ctx context.Context) (domain.IndexJob, error) {
	return m.startFn(ctx)
}

func (m *mockIndexing) Latest(ctx context.Context) (domain.IndexJob, error) {
	return m.latestFn(ctx)
}

func (m *mockIndexing) StaleCount(ctx context.Context) (int, error) {
	if m.staleFn == nil {
		return 0, nil
	}
	return m.staleFn(ctx)
}

type mockOutfits struct {
	suggestFn func(ctx context.Context, p domain.ShopperProfile) (domain.OutfitSuggestion, error)
}

func (m *mockOutfits) Suggest(ctx context.Context, p domain.ShopperProfile) (domain.OutfitSuggestion, error) {
	return m.suggestFn(ctx, p)
}

type mockSettings struct {
	cfg      domain.SystemConfig
	updateFn func(ctx context.Context, p settings.Patch) (domain.SystemConfig, error)
}

func (m *mockSettings) Current() domain.SystemConfig { return m.cfg }

func (m *mockSettings) Update(ctx context.Context, p settings.Patch) (domain.SystemConfig, error) {
	return m.updateFn(ctx, p)
}

type mockHealth struct {
	report health.Report
}

func (m *mockHealth) Check(_ context.Context) health.Report { return m.report }

func newTestServer(t *testing.T, opts ...func(*Server)) *Server {
	t.Helper()
	s := NewServer(
		&mockSearch{
			textFn: func(context.Context, string, search.Filters) ([]domain.ProductSummary, error) {
				return nil, nil
			},
			imageFn: func(context.Context, []byte) ([]domain.ProductSummary, bool, error) {
				return nil, false, nil
			},
		},
		&mockSpell{suggestFn: func(context.Context, string, string) ([]string, error) { return nil, nil }},
		&mockIndexing{
			startFn:  func(context.Context) (domain.IndexJob, error) { return domain.IndexJob{}, nil },
			latestFn: func(context.Context) (domain.IndexJob, error) { return domain.IndexJob{}, nil },
		},
		&mockOutfits{suggestFn: func(context.Context, domain.ShopperProfile) (domain.OutfitSuggestion, error) {
			return domain.OutfitSuggestion{}, nil
		}},
		&mockSettings{
			cfg:      domain.DefaultSystemConfig(),
			updateFn: func(_ context.Context, _ settings.Patch) (domain.SystemConfig, error) { return domain.DefaultSystemConfig(), nil },
		},
		&mockHealth{report: health.Report{Status: health.Healthy, Checks: map[string]health.CheckResult{"database": health.CheckOK}}},
		nil,
		zap.NewNop(),
	)
	for _, o := range opts {
		o(s)
	}
	return s
}

func newRouter(s *Server, adminKeys ...string) chi.Router {
	r := chi.NewRouter()
	s.Routes(r, adminKeys)
	return r
}

func doJSON(t *testing.T, r chi.Router, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// --- Text search ---

func TestTextSearch_OK(t *testing.T) {
	s := newTestServer(t)
	s.search = &mockSearch{
		textFn: func(_ context.Context, q string, f search.Filters) ([]domain.ProductSummary, error) {
			if q != "hoodie" {
				t.Errorf("expected query %q, got %q", "hoodie", q)
			}
			if f.PriceMin == nil || *f.PriceMin != 100 {
				t.Error("expected priceMin filter to reach the service")
			}
			return []domain.ProductSummary{{ID: "p1", Title: "Black hoodie"}}, nil
		},
	}
	r := newRouter(s)

	w := doJSON(t, r, http.MethodPost, "/search/text", `{"q":"hoodie","filters":{"priceMin":100}}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp searchResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Count != 1 || len(resp.Results) != 1 || resp.Results[0].ID != "p1" {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestTextSearch_EmptyResultsIsArray(t *testing.T) {
	s := newTestServer(t)
	r := newRouter(s)

	w := doJSON(t, r, http.MethodPost, "/search/text", `{"q":"nothing"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"results":[]`) {
		t.Errorf("expected empty array results, got %s", w.Body.String())
	}
}

func TestTextSearch_InvalidBody(t *testing.T) {
	s := newTestServer(t)
	r := newRouter(s)

	w := doJSON(t, r, http.MethodPost, "/search/text", `{not json`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestTextSearch_ValidationError(t *testing.T) {
	s := newTestServer(t)
	s.search = &mockSearch{
		textFn: func(context.Context, string, search.Filters) ([]domain.ProductSummary, error) {
			return nil, fmt.Errorf("%w: bad filter", domain.ErrValidation)
		},
	}
	r := newRouter(s)

	w := doJSON(t, r, http.MethodPost, "/search/text", `{"q":"x"}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), codeValidationFailed) {
		t.Errorf("expected code %q in body %s", codeValidationFailed, w.Body.String())
	}
}

func TestTextSearch_InternalError(t *testing.T) {
	s := newTestServer(t)
	s.search = &mockSearch{
		textFn: func(context.Context, string, search.Filters) ([]domain.ProductSummary, error) {
			return nil, errors.New("pq: connection reset")
		},
	}
	r := newRouter(s)

	w := doJSON(t, r, http.MethodPost, "/search/text", `{"q":"x"}`)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "pq:") {
		t.Error("internal error details must not leak to the client")
	}
}

// --- Image search ---

func multipartImage(t *testing.T, field string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, "look.jpg")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write(data); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func TestImageSearch_OK(t *testing.T) {
	s := newTestServer(t)
	var got []byte
	s.search = &mockSearch{
		imageFn: func(_ context.Context, data []byte) ([]domain.ProductSummary, bool, error) {
			got = data
			return []domain.ProductSummary{{ID: "p1"}}, false, nil
		},
	}
	r := newRouter(s)

	body, contentType := multipartImage(t, "image", []byte("jpeg-bytes"))
	req := httptest.NewRequest(http.MethodPost, "/search/image", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if string(got) != "jpeg-bytes" {
		t.Errorf("expected image bytes to reach the service, got %q", got)
	}
}

func TestImageSearch_MissingFileField(t *testing.T) {
	s := newTestServer(t)
	r := newRouter(s)

	body, contentType := multipartImage(t, "photo", []byte("x"))
	req := httptest.NewRequest(http.MethodPost, "/search/image", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestImageSearch_FeatureDisabled(t *testing.T) {
	s := newTestServer(t)
	s.search = &mockSearch{
		imageFn: func(context.Context, []byte) ([]domain.ProductSummary, bool, error) {
			return nil, false, domain.ErrFeatureDisabled
		},
	}
	r := newRouter(s)

	body, contentType := multipartImage(t, "image", []byte("x"))
	req := httptest.NewRequest(http.MethodPost, "/search/image", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), codeFeatureDisabled) {
		t.Errorf("expected code %q in body %s", codeFeatureDisabled, w.Body.String())
	}
}

func TestImageSearch_ProviderUnavailable(t *testing.T) {
	s := newTestServer(t)
	s.search = &mockSearch{
		imageFn: func(context.Context, []byte) ([]domain.ProductSummary, bool, error) {
			return nil, false, fmt.Errorf("%w: hf status 500", domain.ErrProviderUnavailable)
		},
	}
	r := newRouter(s)

	body, contentType := multipartImage(t, "image", []byte("x"))
	req := httptest.NewRequest(http.MethodPost, "/search/image", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", w.Code)
	}
}

func TestImageSearch_OversizeRejected(t *testing.T) {
	s := newTestServer(t)
	s.search = &mockSearch{
		imageFn: func(context.Context, []byte) ([]domain.ProductSummary, bool, error) {
			t.Error("oversized image must not reach the service")
			return nil, false, nil
		},
	}
	r := newRouter(s)

	body, contentType := multipartImage(t, "image", make([]byte, maxImageBytes+1))
	req := httptest.NewRequest(http.MethodPost, "/search/image", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), codeValidationFailed) {
		t.Errorf("expected code %q in body %s", codeValidationFailed, w.Body.String())
	}
}

// --- Spell ---

func TestSpellSuggest_OK(t *testing.T) {
	s := newTestServer(t)
	s.spell = &mockSpell{
		suggestFn: func(_ context.Context, q, lang string) ([]string, error) {
			if q != "hodie" || lang != "en" {
				t.Errorf("unexpected args %q %q", q, lang)
			}
			return []string{"hoodie"}, nil
		},
	}
	r := newRouter(s)

	w := doJSON(t, r, http.MethodPost, "/search/spell", `{"q":"hodie","language":"en"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp spellResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Suggestions) != 1 || resp.Suggestions[0] != "hoodie" {
		t.Errorf("unexpected suggestions %v", resp.Suggestions)
	}
}

func TestSpellSuggest_NoMatchesIsArray(t *testing.T) {
	s := newTestServer(t)
	r := newRouter(s)

	w := doJSON(t, r, http.MethodPost, "/search/spell", `{"q":"zzz"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"suggestions":[]`) {
		t.Errorf("expected empty array, got %s", w.Body.String())
	}
}

func TestSpellSuggest_Disabled(t *testing.T) {
	s := newTestServer(t)
	s.spell = &mockSpell{
		suggestFn: func(context.Context, string, string) ([]string, error) {
			return nil, domain.ErrFeatureDisabled
		},
	}
	r := newRouter(s)

	w := doJSON(t, r, http.MethodPost, "/search/spell", `{"q":"x"}`)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
}

// --- Outfits ---

func TestOutfitSuggest_OK(t *testing.T) {
	s := newTestServer(t)
	s.outfits = &mockOutfits{
		suggestFn: func(_ context.Context, p domain.ShopperProfile) (domain.OutfitSuggestion, error) {
			if p.HeightCm != 180 || p.WeightKg != 75 {
				t.Errorf("unexpected profile %+v", p)
			}
			return domain.OutfitSuggestion{
				Top:       &domain.OutfitCandidate{ID: "t1", Name: "White tee", Category: "t-shirt"},
				Bottom:    &domain.OutfitCandidate{ID: "b1", Name: "Blue jeans", Category: "jean"},
				Shoes:     domain.ShoeRecommendation{Brand: "Adidas", Model: "Stan Smith"},
				Reasoning: "clean casual pairing",
			}, nil
		},
	}
	r := newRouter(s)

	w := doJSON(t, r, http.MethodPost, "/outfits/suggest", `{"heightCm":180,"weightKg":75,"prompt":"casual friday"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp outfitResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Top == nil || resp.Top.ID != "t1" || resp.Shoes.Brand != "Adidas" {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestOutfitSuggest_Disabled(t *testing.T) {
	s := newTestServer(t)
	s.outfits = &mockOutfits{
		suggestFn: func(context.Context, domain.ShopperProfile) (domain.OutfitSuggestion, error) {
			return domain.OutfitSuggestion{}, domain.ErrFeatureDisabled
		},
	}
	r := newRouter(s)

	w := doJSON(t, r, http.MethodPost, "/outfits/suggest", `{}`)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
}

// --- Admin: index ---

func TestRebuildIndex_Accepted(t *testing.T) {
	s := newTestServer(t)
	s.indexing = &mockIndexing{
		startFn: func(context.Context) (domain.IndexJob, error) {
			return domain.IndexJob{ID: "job-1", Status: domain.JobStatusRunning, ProductsTotal: 42}, nil
		},
		latestFn: func(context.Context) (domain.IndexJob, error) { return domain.IndexJob{}, nil },
	}
	r := newRouter(s)

	w := doJSON(t, r, http.MethodPost, "/admin/index/rebuild", "")

	if w.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", w.Code, w.Body.String())
	}
	var resp rebuildResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.JobID != "job-1" || resp.TotalProducts != 42 {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestRebuildIndex_Conflict(t *testing.T) {
	s := newTestServer(t)
	s.indexing = &mockIndexing{
		startFn: func(context.Context) (domain.IndexJob, error) {
			return domain.IndexJob{}, domain.ErrSweepRunning
		},
		latestFn: func(context.Context) (domain.IndexJob, error) { return domain.IndexJob{}, nil },
	}
	r := newRouter(s)

	w := doJSON(t, r, http.MethodPost, "/admin/index/rebuild", "")

	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), codeSweepRunning) {
		t.Errorf("expected code %q in body %s", codeSweepRunning, w.Body.String())
	}
}

func TestIndexHealth_LatestJob(t *testing.T) {
	s := newTestServer(t)
	s.indexing = &mockIndexing{
		startFn: func(context.Context) (domain.IndexJob, error) { return domain.IndexJob{}, nil },
		latestFn: func(context.Context) (domain.IndexJob, error) {
			return domain.IndexJob{ID: "job-9", Status: domain.JobStatusCompleted, ProductsTotal: 10, ProductsProcessed: 8, Failures: 2}, nil
		},
		staleFn: func(context.Context) (int, error) { return 7, nil },
	}
	r := newRouter(s)

	w := doJSON(t, r, http.MethodGet, "/admin/index/health", "")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp indexHealthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.LatestJob == nil || resp.LatestJob.ID != "job-9" || resp.LatestJob.Failures != 2 {
		t.Errorf("unexpected job %+v", resp.LatestJob)
	}
	if resp.StaleProducts != 7 {
		t.Errorf("expected 7 stale products, got %d", resp.StaleProducts)
	}
}

func TestIndexHealth_NoJobsYet(t *testing.T) {
	s := newTestServer(t)
	s.indexing = &mockIndexing{
		startFn:  func(context.Context) (domain.IndexJob, error) { return domain.IndexJob{}, nil },
		latestFn: func(context.Context) (domain.IndexJob, error) { return domain.IndexJob{}, domain.ErrNoJobs },
		staleFn:  func(context.Context) (int, error) { return 3, nil },
	}
	r := newRouter(s)

	w := doJSON(t, r, http.MethodGet, "/admin/index/health", "")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "no indexing jobs yet") {
		t.Errorf("expected placeholder message, got %s", w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"staleProducts":3`) {
		t.Errorf("expected stale count in body, got %s", w.Body.String())
	}
}

// --- Admin: config ---

func TestGetConfig(t *testing.T) {
	s := newTestServer(t)
	r := newRouter(s)

	w := doJSON(t, r, http.MethodGet, "/admin/config", "")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var cfg domain.SystemConfig
	if err := json.Unmarshal(w.Body.Bytes(), &cfg); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if cfg.ActiveProvider != domain.ProviderLocal {
		t.Errorf("unexpected config %+v", cfg)
	}
}

func TestPatchConfig_OK(t *testing.T) {
	s := newTestServer(t)
	s.settings = &mockSettings{
		cfg: domain.DefaultSystemConfig(),
		updateFn: func(_ context.Context, p settings.Patch) (domain.SystemConfig, error) {
			if p.ActiveProvider == nil || *p.ActiveProvider != domain.ProviderOpenAI {
				t.Errorf("expected activeProvider patch, got %+v", p)
			}
			cfg := domain.DefaultSystemConfig()
			cfg.ActiveProvider = domain.ProviderOpenAI
			return cfg, nil
		},
	}
	r := newRouter(s)

	w := doJSON(t, r, http.MethodPatch, "/admin/config", `{"activeProvider":"openai"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"activeProvider":"openai"`) {
		t.Errorf("expected updated config, got %s", w.Body.String())
	}
}

func TestPatchConfig_ValidationError(t *testing.T) {
	s := newTestServer(t)
	s.settings = &mockSettings{
		cfg: domain.DefaultSystemConfig(),
		updateFn: func(context.Context, settings.Patch) (domain.SystemConfig, error) {
			return domain.SystemConfig{}, fmt.Errorf("%w: unknown provider", domain.ErrValidation)
		},
	}
	r := newRouter(s)

	w := doJSON(t, r, http.MethodPatch, "/admin/config", `{"activeProvider":"bogus"}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestAddSynonym_NoContent(t *testing.T) {
	s := newTestServer(t)
	var gotKey, gotTerm string
	s.spell = &mockSpell{
		suggestFn: func(context.Context, string, string) ([]string, error) { return nil, nil },
		addFn: func(_ context.Context, key, term string) error {
			gotKey, gotTerm = key, term
			return nil
		},
	}
	r := newRouter(s)

	w := doJSON(t, r, http.MethodPost, "/admin/spell/synonyms", `{"key":"sweter","term":"sweater"}`)

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", w.Code, w.Body.String())
	}
	if gotKey != "sweter" || gotTerm != "sweater" {
		t.Errorf("unexpected synonym %q -> %q", gotKey, gotTerm)
	}
}

// --- Admin auth ---

func TestAdminAuth_MissingKey(t *testing.T) {
	s := newTestServer(t)
	r := newRouter(s, "secret-key")

	w := doJSON(t, r, http.MethodGet, "/admin/config", "")

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestAdminAuth_ValidKey(t *testing.T) {
	s := newTestServer(t)
	r := newRouter(s, "secret-key")

	req := httptest.NewRequest(http.MethodGet, "/admin/config", nil)
	req.Header.Set("Authorization", "Bearer secret-key")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestAdminAuth_InvalidKey(t *testing.T) {
	s := newTestServer(t)
	r := newRouter(s, "secret-key")

	req := httptest.NewRequest(http.MethodGet, "/admin/config", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestAdminAuth_PublicRoutesUnaffected(t *testing.T) {
	s := newTestServer(t)
	r := newRouter(s, "secret-key")

	w := doJSON(t, r, http.MethodPost, "/search/text", `{"q":"x"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 without auth on public route, got %d", w.Code)
	}
}

// --- Health ---

func TestHealthCheck_OK(t *testing.T) {
	s := newTestServer(t)
	r := newRouter(s)

	w := doJSON(t, r, http.MethodGet, "/health", "")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp healthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != string(health.Healthy) {
		t.Errorf("unexpected status %q", resp.Status)
	}
	if resp.Checks["database"] != string(health.CheckOK) {
		t.Errorf("unexpected checks %+v", resp.Checks)
	}
}

func TestHealthCheck_Degraded(t *testing.T) {
	s := newTestServer(t)
	s.health = &mockHealth{report: health.Report{
		Status: health.Degraded,
		Checks: map[string]health.CheckResult{"database": health.CheckError},
	}}
	r := newRouter(s)

	w := doJSON(t, r, http.MethodGet, "/health", "")

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
}
