package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type virtualClock struct {
	waits chan time.Duration
	fire  chan time.Time
}

func newVirtualClock() *virtualClock {
	return &virtualClock{
		waits: make(chan time.Duration, 16),
		fire:  make(chan time.Time),
	}
}

func (c *virtualClock) After(d time.Duration) <-chan time.Time {
	c.waits <- d
	return c.fire
}

func (c *virtualClock) tick(t *testing.T) {
	t.Helper()
	select {
	case c.fire <- time.Now():
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler is not waiting on the clock")
	}
}

func (c *virtualClock) nextWait(t *testing.T) time.Duration {
	t.Helper()
	select {
	case d := <-c.waits:
		return d
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler never armed a timer")
		return 0
	}
}

func TestSchedulerRunsAfterStartDelayThenOnInterval(t *testing.T) {
	clock := newVirtualClock()
	runs := make(chan struct{}, 16)
	sched := NewScheduler(clock, 10*time.Second, 6*time.Hour, func(ctx context.Context) {
		runs <- struct{}{}
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		sched.Run(ctx)
		close(done)
	}()

	require.Equal(t, 10*time.Second, clock.nextWait(t))
	select {
	case <-runs:
		t.Fatal("job ran before the start delay elapsed")
	default:
	}

	clock.tick(t)
	<-runs

	for i := 0; i < 3; i++ {
		require.Equal(t, 6*time.Hour, clock.nextWait(t))
		clock.tick(t)
		select {
		case <-runs:
		case <-time.After(2 * time.Second):
			t.Fatalf("periodic run %d never fired", i+1)
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop on cancellation")
	}
}

func TestSchedulerStopsDuringStartDelay(t *testing.T) {
	clock := newVirtualClock()
	ran := false
	sched := NewScheduler(clock, time.Hour, time.Hour, func(ctx context.Context) { ran = true }, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sched.Run(ctx)
		close(done)
	}()

	clock.nextWait(t)
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop on cancellation")
	}
	require.False(t, ran)
}
