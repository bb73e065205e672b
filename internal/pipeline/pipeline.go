// Package pipeline runs the streaming extract-transform-load loop that turns
// raw scintillometer records into flux estimates.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/gampnico/scintillometry-tools/internal/domain"
	"github.com/gampnico/scintillometry-tools/internal/observability"
)

// BatchExtractor reads up to batchSize raw messages from the source.
type BatchExtractor interface {
	ExtractBatch(ctx context.Context, batchSize int) ([]domain.RawMessage, error)
}

// Transformer converts a raw scintillometer message into a flux estimate.
type Transformer interface {
	Transform(ctx context.Context, raw domain.RawMessage) (domain.FluxEstimate, error)
}

// BatchLoader writes multiple flux estimates to the destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, estimates []domain.FluxEstimate) error
}

// retryBackoff doubles its delay after every failed cycle up to a cap. A
// successful fetch resets it, so a broker blip recovers quickly while an
// outage settles into the capped interval.
type retryBackoff struct {
	initial time.Duration
	max     time.Duration
	current time.Duration
}

func newRetryBackoff(initial, max time.Duration) *retryBackoff {
	return &retryBackoff{initial: initial, max: max, current: initial}
}

func (b *retryBackoff) reset() { b.current = b.initial }

// wait sleeps for the current delay, then doubles it. Returns false when the
// context is cancelled before the delay elapses.
func (b *retryBackoff) wait(ctx context.Context) bool {
	if b.current > 0 {
		timer := time.NewTimer(b.current)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return false
		case <-timer.C:
		}
	}
	if next := b.current * 2; next <= b.max {
		b.current = next
	} else {
		b.current = b.max
	}
	return true
}

// Pipeline orchestrates the extract-transform-load loop. Source offsets are
// committed only after a record is either loaded or rejected by the
// transformer, so an estimate may be published twice after a crash but is
// never silently dropped.
type Pipeline struct {
	extractor   BatchExtractor
	transformer Transformer
	loader      BatchLoader
	logger      *slog.Logger
	metrics     *observability.Metrics
	batchSize   int
	ready       atomic.Bool
}

// New assembles a pipeline from its three stages.
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

// CheckReadiness reports whether at least one batch has made it through to
// the sink, gating the readiness probe.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not processed any messages yet")
	}
	return nil
}

// Run drives the loop until the context is cancelled. Cancellation is a
// clean shutdown and returns nil.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started", "batch_size", p.batchSize)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	backoff := newRetryBackoff(200*time.Millisecond, 5*time.Second)
	for ctx.Err() == nil {
		if !p.cycle(ctx, backoff) {
			break
		}
	}
	p.logger.Info("pipeline stopping", "reason", context.Cause(ctx))
	return nil
}

// cycle runs one extract-transform-load pass. Returns false when the loop
// should stop.
func (p *Pipeline) cycle(ctx context.Context, backoff *retryBackoff) bool {
	start := time.Now()

	batch, err := p.extractor.ExtractBatch(ctx, p.batchSize)
	switch {
	case ctx.Err() != nil:
		return false
	case err != nil:
		p.logger.Error("extract batch failed", "error", err)
		return backoff.wait(ctx)
	case len(batch) == 0:
		return true
	}

	p.metrics.MessagesConsumed.Add(float64(len(batch)))
	p.metrics.BatchSize.Observe(float64(len(batch)))
	backoff.reset()

	estimates, accepted := p.transform(ctx, batch)
	if len(estimates) == 0 {
		return true
	}

	if err := p.loader.LoadBatch(ctx, estimates); err != nil {
		// Leave the accepted offsets uncommitted so the records are
		// re-delivered rather than lost.
		p.logger.Error("load batch failed", "error", err, "batch_size", len(estimates))
		return backoff.wait(ctx)
	}
	p.metrics.MessagesProduced.Add(float64(len(estimates)))

	for _, raw := range accepted {
		p.commit(ctx, raw)
	}

	p.metrics.BatchProcessingDuration.Observe(time.Since(start).Seconds())
	p.ready.Store(true)
	return true
}

// transform runs the transformer over a batch. Records the transformer
// rejects are committed immediately: a malformed record stays malformed on
// redelivery, so retrying it would only wedge the partition.
func (p *Pipeline) transform(ctx context.Context, batch []domain.RawMessage) ([]domain.FluxEstimate, []domain.RawMessage) {
	estimates := make([]domain.FluxEstimate, 0, len(batch))
	accepted := make([]domain.RawMessage, 0, len(batch))

	for _, raw := range batch {
		estimate, err := p.transformer.Transform(ctx, raw)
		if err != nil {
			p.logger.Warn("transform failed, skipping message",
				"error", err,
				"topic", raw.Topic,
				"partition", raw.Partition,
				"offset", raw.Offset,
			)
			p.metrics.TransformErrors.Inc()
			p.commit(ctx, raw)
			continue
		}
		estimates = append(estimates, estimate)
		accepted = append(accepted, raw)
	}
	return estimates, accepted
}

func (p *Pipeline) commit(ctx context.Context, raw domain.RawMessage) {
	if raw.Commit == nil {
		return
	}
	if err := raw.Commit(ctx); err != nil {
		p.logger.Warn("commit offset failed", "error", err,
			"topic", raw.Topic, "partition", raw.Partition, "offset", raw.Offset)
	}
}
