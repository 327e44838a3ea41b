package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/quake-data-etl/internal/domain"
	"github.com/couchcryptid/quake-data-etl/internal/observability"
)

// Extractor produces the normalized table for a run.
type Extractor interface {
	Extract(ctx context.Context) (*domain.Table, error)
}

// BatchLoader writes a batch of normalized rows to the destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, events []domain.Event) error
}

// Summary describes a finished (or aborted) run.
type Summary struct {
	Records  int
	Tsunami  int
	Loaded   int
	Batches  int
	Duration time.Duration
}

// Pipeline runs one extract-load pass over the dataset.
type Pipeline struct {
	extractor Extractor
	loader    BatchLoader
	logger    *slog.Logger
	metrics   *observability.Metrics
	ready     atomic.Bool
	batchSize int
}

// New creates a Pipeline. A nil loader makes Run a dry run that only
// normalizes and reports.
func New(e Extractor, l BatchLoader, logger *slog.Logger, metrics *observability.Metrics, batchSize int) *Pipeline {
	if batchSize < 1 {
		batchSize = 1
	}
	return &Pipeline{
		extractor: e,
		loader:    l,
		logger:    logger,
		metrics:   metrics,
		batchSize: batchSize,
	}
}

// CheckReadiness returns nil once the dataset has been normalized, or an
// error describing why the run is not ready yet.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("dataset has not been prepared yet")
	}
	return nil
}

// Run extracts the whole table, then hands it to the loader in batches.
// Cancellation is honoured between batches; rows already loaded stay loaded.
func (p *Pipeline) Run(ctx context.Context) (Summary, error) {
	p.logger.Info("pipeline started", "batch_size", p.batchSize, "dry_run", p.loader == nil)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	start := domain.Now()
	table, err := p.extractor.Extract(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("extract dataset: %w", err)
	}

	p.ready.Store(true)

	summary := Summary{Records: table.Len()}
	for i := range table.Events {
		if table.Events[i].Tsunami {
			summary.Tsunami++
		}
	}
	p.metrics.NormalizeDuration.Observe(domain.Since(start).Seconds())
	p.metrics.RecordsRead.Add(float64(summary.Records))
	p.metrics.TsunamiFlagged.Add(float64(summary.Tsunami))
	p.logger.Info("dataset normalized",
		"records", summary.Records,
		"tsunami", summary.Tsunami,
		"duration", domain.Since(start),
	)

	if p.loader != nil {
		err = p.load(ctx, table.Events, &summary)
	}
	summary.Duration = domain.Since(start)
	if err != nil {
		return summary, err
	}

	p.logger.Info("pipeline finished",
		"records", summary.Records,
		"loaded", summary.Loaded,
		"batches", summary.Batches,
		"duration", summary.Duration,
	)
	return summary, nil
}

func (p *Pipeline) load(ctx context.Context, events []domain.Event, summary *Summary) error {
	for batch := range slices.Chunk(events, p.batchSize) {
		if err := ctx.Err(); err != nil {
			p.logger.Info("pipeline stopping", "reason", err, "loaded", summary.Loaded)
			return err
		}

		batchStart := domain.Now()
		if err := p.loader.LoadBatch(ctx, batch); err != nil {
			p.metrics.LoadErrors.Inc()
			p.logger.Error("load batch failed", "error", err, "batch_size", len(batch), "loaded", summary.Loaded)
			return fmt.Errorf("load batch %d: %w", summary.Batches+1, err)
		}

		p.metrics.BatchSize.Observe(float64(len(batch)))
		p.metrics.BatchProcessingDuration.Observe(domain.Since(batchStart).Seconds())
		p.metrics.RecordsProduced.Add(float64(len(batch)))
		summary.Batches++
		summary.Loaded += len(batch)
	}
	return nil
}
