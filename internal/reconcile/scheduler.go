package reconcile

import (
	"context"
	"log"
	"sync"
	"time"
)

// CycleRunner is what the driver loop invokes once per tick.
type CycleRunner interface {
	RunCycle(ctx context.Context) error
}

// SchedulerConfig defines parameters
type SchedulerConfig struct {
	Interval time.Duration
}

// Scheduler drives the engine on a fixed cadence, on its own goroutine,
// isolated from request handling. Cycles run synchronously on the loop
// goroutine, so at most one cycle is ever in flight; a cycle that overruns
// the interval simply delays the following ticks.
type Scheduler struct {
	config  SchedulerConfig
	service CycleRunner
	quit    chan struct{}
	wg      sync.WaitGroup
}

func NewScheduler(cfg SchedulerConfig, svc CycleRunner) *Scheduler {
	if cfg.Interval == 0 {
		cfg.Interval = 60 * time.Second
	}
	return &Scheduler{
		config:  cfg,
		service: svc,
		quit:    make(chan struct{}),
	}
}

// Start initiates the scheduling loop
func (s *Scheduler) Start() {
	s.wg.Add(1)
	go s.run()
}

func (s *Scheduler) Stop() {
	close(s.quit)
	s.wg.Wait()
}

func (s *Scheduler) run() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	// Initial Run
	s.runOnce()

	for {
		// Quit takes priority over a tick buffered during a long cycle.
		select {
		case <-s.quit:
			return
		default:
		}

		select {
		case <-ticker.C:
			s.runOnce()
		case <-s.quit:
			return
		}
	}
}

func (s *Scheduler) runOnce() {
	ctx := context.Background()
	if err := s.service.RunCycle(ctx); err != nil {
		log.Printf("Reconcile cycle failed: %v", err)
	}
}
