package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"orion-collector/internal/domain"
	"orion-collector/internal/observability"
)

// Source produces loop records in emission order.
type Source interface {
	Next(ctx context.Context) (domain.OutputRecord, error)
}

// Publisher delivers one loop record to the configured sink.
type Publisher interface {
	Publish(ctx context.Context, rec domain.OutputRecord) error
}

// publishAttempts caps how often a single record is retried before it is
// dropped. The station issues fresh data every poll; stale records are not
// worth holding the loop for.
const publishAttempts = 3

// Pipeline moves records from the station poller to the sink.
type Pipeline struct {
	source    Source
	publisher Publisher
	logger    *slog.Logger
	metrics   *observability.Metrics
	ready     atomic.Bool
}

// New creates a Pipeline with the given stages and observability.
func New(source Source, publisher Publisher, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		source:    source,
		publisher: publisher,
		logger:    logger,
		metrics:   metrics,
	}
}

// CheckReadiness returns nil once at least one record has been published.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("no records published yet")
	}
	return nil
}

// Run executes the collect-publish loop until the context is cancelled.
// A source error ends the run; publish errors are retried briefly and the
// record dropped if the sink stays unavailable.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started")
	p.metrics.CollectorRunning.Set(1)
	defer p.metrics.CollectorRunning.Set(0)

	for {
		rec, err := p.source.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				p.logger.Info("pipeline stopping", "reason", ctx.Err())
				return nil
			}
			return err
		}

		p.publish(ctx, rec)
	}
}

// publish delivers one record, retrying with exponential backoff before
// dropping it.
func (p *Pipeline) publish(ctx context.Context, rec domain.OutputRecord) {
	// Exponential backoff: start at 200ms, double each retry, cap at 5s.
	backoff := 200 * time.Millisecond
	maxBackoff := 5 * time.Second

	var err error
	for attempt := 1; attempt <= publishAttempts; attempt++ {
		if err = p.publisher.Publish(ctx, rec); err == nil {
			p.metrics.RecordsPublished.Inc()
			p.ready.Store(true)
			return
		}
		if ctx.Err() != nil {
			return // shutdown, not a sink failure
		}

		p.logger.Warn("publish failed",
			"error", err,
			"group", string(rec.Class),
			"attempt", attempt,
		)

		if attempt < publishAttempts {
			if !sleepWithContext(ctx, backoff) {
				return
			}
			backoff = nextBackoff(backoff, maxBackoff)
		}
	}

	p.metrics.RecordsDropped.Inc()
	p.logger.Error("record dropped, sink unavailable",
		"error", err,
		"group", string(rec.Class),
		"dateTime", rec.Timestamp,
	)
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
