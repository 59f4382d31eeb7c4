package poller

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
)

// awaitStep is how often Await rechecks the clock while waiting for the
// next poll instant.
const awaitStep = 500 * time.Millisecond

// Schedule is the fractional-minute polling grid. Polls happen at the epoch
// seconds where (second + lead) is a multiple of the interval, so the last
// poll of every minute lands lead seconds before the minute boundary. That
// gap gives the slower once-a-minute records time to reach the sink before
// downstream archive processing starts.
type Schedule struct {
	intervalSec int
	leadSec     int
}

// NewSchedule builds the grid for pollsPerMinute evenly spaced polls. The
// rate must divide the minute evenly so the grid repeats identically every
// minute; the lead must leave the minute-final instant inside the minute.
func NewSchedule(pollsPerMinute, leadSeconds int) (Schedule, error) {
	if pollsPerMinute < 1 || pollsPerMinute > 60 || 60%pollsPerMinute != 0 {
		return Schedule{}, fmt.Errorf("polls per minute %d does not divide the minute evenly", pollsPerMinute)
	}
	if leadSeconds < 1 || leadSeconds > 59 {
		return Schedule{}, fmt.Errorf("poll lead %ds is outside the minute", leadSeconds)
	}
	return Schedule{intervalSec: 60 / pollsPerMinute, leadSec: leadSeconds}, nil
}

// Interval returns the spacing between poll instants.
func (s Schedule) Interval() time.Duration {
	return time.Duration(s.intervalSec) * time.Second
}

// IsPollInstant reports whether t falls on the polling grid.
func (s Schedule) IsPollInstant(t time.Time) bool {
	return (t.Unix()+int64(s.leadSec))%int64(s.intervalSec) == 0
}

// IsMinuteFinal reports whether t is in the window of the minute's last
// poll instant. The window is a second wide on each side so a slightly
// late wakeup still counts.
func (s Schedule) IsMinuteFinal(t time.Time) bool {
	sec := t.UTC().Second()
	final := 60 - s.leadSec
	return sec >= final-1 && sec <= final+1
}

// Await blocks until the clock reaches a poll instant, checking every half
// second, and reports whether the instant it landed on is the minute-final
// one. It returns immediately when called at a poll instant.
func (s Schedule) Await(ctx context.Context, clk clockwork.Clock) (minuteFinal bool, err error) {
	for !s.IsPollInstant(clk.Now()) {
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-clk.After(awaitStep):
		}
	}
	return s.IsMinuteFinal(clk.Now()), nil
}
