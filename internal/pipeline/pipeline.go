package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/hazard-engine/internal/domain"
	"github.com/couchcryptid/hazard-engine/internal/observability"
	"github.com/couchcryptid/storm-data-shared/retry"
)

// BatchExtractor reads up to batchSize raw snapshots from the source.
type BatchExtractor interface {
	ExtractBatch(ctx context.Context, batchSize int) ([]domain.RawEvent, error)
}

// Transformer turns one raw snapshot into a serialized assessment.
type Transformer interface {
	Transform(ctx context.Context, raw domain.RawEvent) (domain.OutputEvent, error)
}

// BatchLoader writes serialized assessments to the destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, events []domain.OutputEvent) error
}

const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

// Pipeline runs the extract-assess-load loop.
type Pipeline struct {
	extractor   BatchExtractor
	transformer Transformer
	loader      BatchLoader
	logger      *slog.Logger
	metrics     *observability.Metrics
	batchSize   int

	ready atomic.Bool
}

// New creates a Pipeline with the given stages and observability.
func New(e BatchExtractor, t Transformer, l BatchLoader, logger *slog.Logger, metrics *observability.Metrics, batchSize int) *Pipeline {
	return &Pipeline{
		extractor:   e,
		transformer: t,
		loader:      l,
		logger:      logger,
		metrics:     metrics,
		batchSize:   batchSize,
	}
}

// CheckReadiness returns nil once the pipeline has published at least one
// assessment.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not published any assessments yet")
	}
	return nil
}

// Run executes the batch loop until the context is cancelled. A failed
// extract or load is retried with exponential backoff; the backoff resets
// after the next clean cycle.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started", "batch_size", p.batchSize)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	backoff := initialBackoff
	for ctx.Err() == nil {
		published, err := p.cycle(ctx)
		if err == nil {
			backoff = initialBackoff
			if published > 0 {
				p.ready.Store(true)
			}
			continue
		}
		if ctx.Err() != nil {
			break
		}
		p.logger.Error("assessment cycle failed", "error", err, "retry_in", backoff)
		if !retry.SleepWithContext(ctx, backoff) {
			break
		}
		backoff = retry.NextBackoff(backoff, maxBackoff)
	}

	p.logger.Info("pipeline stopping", "reason", context.Cause(ctx))
	return nil
}

// split is one extracted batch partitioned by transform outcome.
type split struct {
	events   []domain.OutputEvent
	accepted []domain.RawEvent
	rejected []domain.RawEvent
}

// cycle extracts one batch, assesses it and publishes the results, returning
// how many assessments were published. Offsets of published snapshots are
// committed only after the load succeeds; rejected snapshots are committed
// straight away so one bad message cannot stall its partition.
func (p *Pipeline) cycle(ctx context.Context) (int, error) {
	start := time.Now()

	raws, err := p.extractor.ExtractBatch(ctx, p.batchSize)
	if err != nil {
		return 0, fmt.Errorf("extract batch: %w", err)
	}
	if len(raws) == 0 {
		return 0, nil
	}
	p.metrics.MessagesConsumed.Add(float64(len(raws)))
	p.metrics.BatchSize.Observe(float64(len(raws)))

	s := p.assess(ctx, raws)
	p.commitAll(ctx, s.rejected)
	if len(s.events) == 0 {
		return 0, nil
	}

	if err := p.loader.LoadBatch(ctx, s.events); err != nil {
		return 0, fmt.Errorf("load %d assessments: %w", len(s.events), err)
	}
	p.metrics.MessagesProduced.Add(float64(len(s.events)))
	p.commitAll(ctx, s.accepted)
	p.metrics.BatchProcessingDuration.Observe(time.Since(start).Seconds())

	return len(s.events), nil
}

func (p *Pipeline) assess(ctx context.Context, raws []domain.RawEvent) split {
	s := split{
		events:   make([]domain.OutputEvent, 0, len(raws)),
		accepted: make([]domain.RawEvent, 0, len(raws)),
	}
	for _, raw := range raws {
		event, err := p.transformer.Transform(ctx, raw)
		if err != nil {
			p.logger.Warn("skipping snapshot",
				"error", err,
				"key", string(raw.Key),
				"topic", raw.Topic,
				"partition", raw.Partition,
				"offset", raw.Offset,
			)
			p.metrics.TransformErrors.Inc()
			s.rejected = append(s.rejected, raw)
			continue
		}
		s.events = append(s.events, event)
		s.accepted = append(s.accepted, raw)
	}
	return s
}

func (p *Pipeline) commitAll(ctx context.Context, raws []domain.RawEvent) {
	for _, raw := range raws {
		if raw.Commit == nil {
			continue
		}
		if err := raw.Commit(ctx); err != nil {
			p.logger.Warn("commit offset failed", "error", err,
				"topic", raw.Topic, "partition", raw.Partition, "offset", raw.Offset)
		}
	}
}
