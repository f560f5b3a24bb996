package pipeline

import (
	"context"
	"log/slog"
	"time"
)

// Clock abstracts timer creation so the scheduler can be driven by a
// virtual clock in tests.
type Clock interface {
	After(d time.Duration) <-chan time.Time
}

type realClock struct{}

func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

func RealClock() Clock { return realClock{} }

// Scheduler fires a job once after a bounded start delay and then on a
// fixed period, matching the ingestion cadence. It owns no state beyond
// the timers; overlapping-run protection lives in the job itself.
type Scheduler struct {
	clock      Clock
	startDelay time.Duration
	interval   time.Duration
	job        func(ctx context.Context)
	log        *slog.Logger
}

func NewScheduler(clock Clock, startDelay, interval time.Duration, job func(ctx context.Context), log *slog.Logger) *Scheduler {
	if clock == nil {
		clock = RealClock()
	}
	if log == nil {
		log = slog.Default()
	}
	return &Scheduler{clock: clock, startDelay: startDelay, interval: interval, job: job, log: log}
}

// Run blocks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	select {
	case <-ctx.Done():
		return
	case <-s.clock.After(s.startDelay):
	}
	s.log.Debug("scheduler initial run")
	s.job(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.clock.After(s.interval):
			s.log.Debug("scheduler periodic run")
			s.job(ctx)
		}
	}
}
