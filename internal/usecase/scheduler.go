package usecase

import (
	"context"
	"time"

	applogger "SectorPulse/pkg/logger"
)

// Scheduler triggers pipeline runs on a fixed interval.
type Scheduler struct {
	runner    *PipelineRunner
	interval  time.Duration
	onStartup bool
	ingest    bool
	l         *applogger.Logger
	stop      chan struct{}
	done      chan struct{}
}

func NewScheduler(runner *PipelineRunner, interval time.Duration, onStartup, ingest bool) *Scheduler {
	return &Scheduler{
		runner:    runner,
		interval:  interval,
		onStartup: onStartup,
		ingest:    ingest,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// SetLogger injects a structured logger.
func (s *Scheduler) SetLogger(l *applogger.Logger) { s.l = l }

// Start launches the schedule loop. With a zero interval only the optional
// startup run happens.
func (s *Scheduler) Start(ctx context.Context) {
	go s.loop(ctx)
}

func (s *Scheduler) loop(ctx context.Context) {
	defer close(s.done)

	if s.onStartup {
		s.runOnce(ctx)
	}
	if s.interval <= 0 {
		return
	}
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stop:
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	if _, err := s.runner.Run(ctx, s.ingest); err != nil && s.l != nil {
		s.l.Error("scheduled run failed", applogger.Error(err))
	}
}

// Stop stops the schedule loop.
func (s *Scheduler) Stop() {
	close(s.stop)
	select {
	case <-s.done:
	case <-time.After(5 * time.Second):
	}
}
