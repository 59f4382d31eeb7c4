package poller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"orion-collector/internal/domain"
	"orion-collector/internal/observability"
)

// Fetcher retrieves one raw station document.
type Fetcher interface {
	Fetch(ctx context.Context) ([]byte, error)
}

// RetryPolicy selects what happens when the station stays unreachable.
type RetryPolicy string

const (
	// PolicyResync keeps retrying on the polling grid indefinitely: quick
	// retries first, then once per minute until the station answers.
	PolicyResync RetryPolicy = "resync"
	// PolicyBounded retries the same way but turns the outage into a fatal
	// error after MaxAttempts consecutive failures, for deployments that
	// prefer a supervisor restart over silent waiting.
	PolicyBounded RetryPolicy = "bounded"
)

// Config carries the polling and retry knobs.
type Config struct {
	Schedule     Schedule
	SensorMap    map[string]string
	QuickRetries int
	Policy       RetryPolicy
	MaxAttempts  int // bounded policy only
}

// Poller drives the poll cycle against one station: wait for a grid
// instant, fetch and parse the sample, assemble records. All methods must
// be called from a single goroutine; the poller owns the carried state.
type Poller struct {
	fetcher Fetcher
	cfg     Config
	clk     clockwork.Clock
	logger  *slog.Logger
	metrics *observability.Metrics

	state   domain.CarriedState
	pending []domain.OutputRecord
	started bool
}

// New creates a Poller. The clock is injected so tests can drive the
// polling grid without waiting out real minutes.
func New(fetcher Fetcher, cfg Config, clk clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Poller {
	return &Poller{
		fetcher: fetcher,
		cfg:     cfg,
		clk:     clk,
		logger:  logger,
		metrics: metrics,
	}
}

// Next blocks until the next record is due and returns it. Records
// assembled from one sample are handed out one at a time, in their fixed
// group order, before the next poll cycle starts. The first cycle polls
// immediately and is treated as minute-final so a fresh start publishes a
// complete set of records right away.
func (p *Poller) Next(ctx context.Context) (domain.OutputRecord, error) {
	for len(p.pending) == 0 {
		if err := p.cycle(ctx); err != nil {
			return domain.OutputRecord{}, err
		}
	}
	rec := p.pending[0]
	p.pending = p.pending[1:]
	return rec, nil
}

// cycle waits for the poll instant and runs fetch attempts until one
// succeeds, the retry policy gives up, or the context ends.
func (p *Poller) cycle(ctx context.Context) error {
	minuteFinal := true
	if p.started {
		mf, err := p.cfg.Schedule.Await(ctx, p.clk)
		if err != nil {
			return err
		}
		minuteFinal = mf
		// step off the instant so the next wait cannot land on it again
		if err := p.sleep(ctx, time.Second); err != nil {
			return err
		}
	}
	p.started = true

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		start := p.clk.Now()
		p.metrics.PollsTotal.Inc()

		data, err := p.fetcher.Fetch(ctx)
		var doc *domain.Document
		if err == nil {
			doc, err = domain.ParseDocument(data)
		}
		p.metrics.PollDuration.Observe(p.clk.Now().Sub(start).Seconds())

		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			mf, rerr := p.backOff(ctx, err)
			if rerr != nil {
				return rerr
			}
			minuteFinal = mf
			continue
		}

		p.clearFailures()
		p.assemble(doc, minuteFinal)
		return nil
	}
}

// backOff records one failed attempt and waits for the retry instant the
// current tier prescribes. The first QuickRetries failures wait only for
// the next grid instant; after that retries happen at minute-final
// instants only, once per minute, to stop hammering a station that is
// down for maintenance.
func (p *Poller) backOff(ctx context.Context, cause error) (minuteFinal bool, err error) {
	p.state.ConsecutiveFailures++
	n := p.state.ConsecutiveFailures

	p.metrics.PollFailures.WithLabelValues(failureKind(cause)).Inc()
	p.metrics.ConsecutiveFailures.Set(float64(n))
	p.logger.Error("poll failed", "attempt", n, "quick_retries", p.cfg.QuickRetries, "error", cause)

	if p.cfg.Policy == PolicyBounded && n >= p.cfg.MaxAttempts {
		return false, fmt.Errorf("station unreachable after %d consecutive failed polls: %w", n, cause)
	}

	if n <= p.cfg.QuickRetries {
		return p.cfg.Schedule.Await(ctx, p.clk)
	}

	if n == p.cfg.QuickRetries+1 {
		p.logger.Warn("quick retries exhausted, retrying once per minute")
	}
	return p.awaitMinuteFinal(ctx)
}

// clearFailures resets the failure run after a successful poll.
func (p *Poller) clearFailures() {
	if p.state.ConsecutiveFailures > 0 {
		p.logger.Info("station answering again", "failed_polls", p.state.ConsecutiveFailures)
	}
	p.state.ConsecutiveFailures = 0
	p.metrics.ConsecutiveFailures.Set(0)
}

// assemble turns a parsed sample into pending records and logs whatever
// the assembly flagged.
func (p *Poller) assemble(doc *domain.Document, minuteFinal bool) {
	if doc.Repaired {
		p.metrics.TruncationRepairs.Inc()
		p.logger.Warn("repaired truncated station data", "tail", doc.Tail)
	}

	timestamp := p.clk.Now().Round(time.Second).Unix()
	records := domain.BuildRecords(doc, p.cfg.SensorMap, &p.state, timestamp, minuteFinal)
	p.state.LastPollMinuteFinal = minuteFinal

	for _, rec := range records {
		p.metrics.RecordsEmitted.WithLabelValues(string(rec.Class)).Inc()
		if !rec.UnitsResolved {
			p.metrics.UnknownUnits.WithLabelValues(rec.BaseUnits).Inc()
			p.logger.Error("unknown base units, record emitted without a unit system",
				"units", rec.BaseUnits, "group", rec.Class)
		}
		if rec.RainCounterReset {
			p.metrics.RainCounterResets.Inc()
			p.logger.Info("rain counter reset, interval rainfall unknown")
		}
	}
	p.logger.Debug("assembled records", "count", len(records), "minute_final", minuteFinal)

	p.pending = records
}

// awaitMinuteFinal waits out whole poll instants until one lands in the
// minute-final window. It steps off the current instant first, so a retry
// that just failed on the minute-final instant waits a full minute instead
// of firing again within the same second.
func (p *Poller) awaitMinuteFinal(ctx context.Context) (bool, error) {
	for {
		if err := p.sleep(ctx, time.Second); err != nil {
			return false, err
		}
		mf, err := p.cfg.Schedule.Await(ctx, p.clk)
		if err != nil {
			return false, err
		}
		if mf {
			return true, nil
		}
	}
}

func (p *Poller) sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-p.clk.After(d):
		return nil
	}
}

func failureKind(err error) string {
	var perr *domain.ParseError
	if errors.As(err, &perr) {
		return "parse"
	}
	return "transport"
}
