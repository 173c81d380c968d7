package reconcile

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type countingRunner struct {
	mu    sync.Mutex
	count int
	delay time.Duration
}

func (r *countingRunner) RunCycle(ctx context.Context) error {
	r.mu.Lock()
	r.count++
	r.mu.Unlock()
	if r.delay > 0 {
		time.Sleep(r.delay)
	}
	return nil
}

func (r *countingRunner) calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

func TestScheduler_RunsOnInterval(t *testing.T) {
	runner := &countingRunner{}
	s := NewScheduler(SchedulerConfig{Interval: 50 * time.Millisecond}, runner)

	s.Start()
	time.Sleep(180 * time.Millisecond)
	s.Stop()

	// Initial run plus ~3 ticks.
	assert.GreaterOrEqual(t, runner.calls(), 3)
}

func TestScheduler_OverrunningCycleNeverOverlaps(t *testing.T) {
	// Each cycle takes 3 intervals; ticks during a cycle are dropped, not
	// queued up as concurrent runs.
	runner := &countingRunner{delay: 90 * time.Millisecond}
	s := NewScheduler(SchedulerConfig{Interval: 30 * time.Millisecond}, runner)

	s.Start()
	time.Sleep(200 * time.Millisecond)
	s.Stop()

	assert.LessOrEqual(t, runner.calls(), 3)
}

func TestScheduler_DefaultInterval(t *testing.T) {
	s := NewScheduler(SchedulerConfig{}, &countingRunner{})
	assert.Equal(t, 60*time.Second, s.config.Interval)
}
