// Package indexing runs the on-demand re-embedding sweep over stale products.
package indexing

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/souqlane/stylesearch/internal/domain"
	"github.com/souqlane/stylesearch/internal/metrics"
)

// Options bound the sweep: how many stale products one run picks up, how
// long a single embedding call may take, and how old a running job row must
// be before it counts as abandoned by a crashed process.
type Options struct {
	BatchSize    int
	EmbedTimeout time.Duration
	StaleAfter   time.Duration
}

// Service owns the re-indexing sweep lifecycle. One sweep runs at a time;
// a concurrent start is rejected with ErrSweepRunning.
type Service struct {
	catalog   Catalog
	jobs      Jobs
	settings  Settings
	providers ProviderResolver
	opts      Options
	logger    *zap.Logger

	mu      sync.Mutex
	running bool
	wg      sync.WaitGroup
}

// New creates an indexing service.
func New(
	catalog Catalog,
	jobs Jobs,
	settings Settings,
	providers ProviderResolver,
	opts Options,
	logger *zap.Logger,
) *Service {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 100
	}
	if opts.EmbedTimeout <= 0 {
		opts.EmbedTimeout = 5 * time.Second
	}
	if opts.StaleAfter <= 0 {
		opts.StaleAfter = time.Hour
	}
	return &Service{
		catalog:   catalog,
		jobs:      jobs,
		settings:  settings,
		providers: providers,
		opts:      opts,
		logger:    logger,
	}
}

// StartRebuild creates a job for the current stale set and detaches the
// sweep goroutine. The returned job is the caller's handle for polling.
func (s *Service) StartRebuild(ctx context.Context) (domain.IndexJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return domain.IndexJob{}, domain.ErrSweepRunning
	}
	if running, err := s.jobs.Running(ctx); err != nil {
		return domain.IndexJob{}, fmt.Errorf("check running sweep: %w", err)
	} else if running && !s.reapAbandoned(ctx) {
		return domain.IndexJob{}, domain.ErrSweepRunning
	}

	provider, err := s.providers.ResolveForConfig(s.settings.Current())
	if err != nil {
		return domain.IndexJob{}, fmt.Errorf("resolve provider: %w", err)
	}

	products, err := s.catalog.ListStale(ctx, s.opts.BatchSize)
	if err != nil {
		return domain.IndexJob{}, fmt.Errorf("list stale products: %w", err)
	}

	job, err := s.jobs.Create(ctx, len(products))
	if err != nil {
		return domain.IndexJob{}, fmt.Errorf("create job: %w", err)
	}

	s.running = true
	s.wg.Add(1)
	go s.sweep(job, products, provider)

	s.logger.Info("Re-indexing sweep started",
		zap.String("job_id", job.ID),
		zap.Int("products", len(products)),
		zap.String("provider", provider.Name()),
	)
	return job, nil
}

// reapAbandoned closes a running job row left behind by a crashed process.
// A running row older than StaleAfter cannot belong to a live sweep: this
// process holds the only in-process flag and sweeps are batch-bounded.
// Without it a hard crash mid-sweep would lock out rebuilds forever.
// Reports whether the lockout was cleared.
func (s *Service) reapAbandoned(ctx context.Context) bool {
	job, err := s.jobs.Latest(ctx)
	if err != nil {
		return false
	}
	if job.Status != domain.JobStatusRunning || time.Since(job.StartedAt) < s.opts.StaleAfter {
		return false
	}
	if err := s.jobs.Complete(ctx, job.ID); err != nil {
		s.logger.Warn("Failed to close abandoned sweep job",
			zap.String("job_id", job.ID), zap.Error(err))
		return false
	}
	s.logger.Warn("Closed abandoned sweep job from a previous run",
		zap.String("job_id", job.ID), zap.Time("started_at", job.StartedAt))
	return true
}

// Latest returns the most recent job. ErrNoJobs when no sweep ever ran.
func (s *Service) Latest(ctx context.Context) (domain.IndexJob, error) {
	return s.jobs.Latest(ctx)
}

// StaleCount reports how many published products currently need re-indexing.
func (s *Service) StaleCount(ctx context.Context) (int, error) {
	return s.catalog.CountStale(ctx)
}

// Wait blocks until an in-flight sweep finishes. Used during shutdown.
func (s *Service) Wait() {
	s.wg.Wait()
}

// sweep processes products strictly sequentially. It outlives the HTTP
// request that started it, so it runs on a background context.
func (s *Service) sweep(job domain.IndexJob, products []domain.Product, provider domain.Provider) {
	defer s.wg.Done()
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	ctx := context.Background()

	for _, p := range products {
		if s.indexOne(ctx, provider, p) {
			if err := s.jobs.IncrementProcessed(ctx, job.ID); err != nil {
				s.logger.Warn("Failed to record progress", zap.String("job_id", job.ID), zap.Error(err))
			}
			metrics.IndexSweepProductsTotal.WithLabelValues("processed").Inc()
		} else {
			if err := s.jobs.IncrementFailed(ctx, job.ID); err != nil {
				s.logger.Warn("Failed to record failure", zap.String("job_id", job.ID), zap.Error(err))
			}
			metrics.IndexSweepProductsTotal.WithLabelValues("failed").Inc()
		}
	}

	if err := s.jobs.Complete(ctx, job.ID); err != nil {
		s.logger.Error("Failed to complete sweep job", zap.String("job_id", job.ID), zap.Error(err))
		return
	}
	s.logger.Info("Re-indexing sweep completed", zap.String("job_id", job.ID))
}

// indexOne embeds one product and persists the vector. A degraded fallback
// embedding is treated as a failure: noise must never be stored as a real
// vector.
func (s *Service) indexOne(ctx context.Context, provider domain.Provider, p domain.Product) bool {
	embedCtx, cancel := context.WithTimeout(ctx, s.opts.EmbedTimeout)
	result, err := provider.Embed(embedCtx, p.IndexText())
	cancel()
	if err != nil {
		s.logger.Warn("Embedding failed during sweep",
			zap.String("product_id", p.ID), zap.Error(err))
		return false
	}
	if result.Degraded {
		s.logger.Warn("Provider degraded during sweep, vector discarded",
			zap.String("product_id", p.ID))
		return false
	}

	vectors := &domain.Vectors{TextEmbedding: result.Embedding}
	if p.Vectors != nil {
		vectors.ImageEmbeddings = p.Vectors.ImageEmbeddings
	}

	if err := s.catalog.UpdateVectors(ctx, p.ID, vectors, time.Now().UTC()); err != nil {
		s.logger.Warn("Failed to persist vectors",
			zap.String("product_id", p.ID), zap.Error(err))
		return false
	}
	return true
}
