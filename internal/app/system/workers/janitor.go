// internal/app/system/workers/janitor.go
package workers

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Sweeper deletes stale rows and reports how many it removed.
type Sweeper interface {
	Sweep(ctx context.Context, now time.Time) (int64, error)
}

// SweepFunc adapts a function to Sweeper.
type SweepFunc func(ctx context.Context, now time.Time) (int64, error)

func (f SweepFunc) Sweep(ctx context.Context, now time.Time) (int64, error) { return f(ctx, now) }

// Janitor is a background worker that runs a set of named sweeps on an
// interval: expired OAuth states, old read notifications.
type Janitor struct {
	sweeps   map[string]Sweeper
	log      *zap.Logger
	interval time.Duration
	stopCh   chan struct{}
	wg       sync.WaitGroup
	now      func() time.Time
}

// NewJanitor creates a janitor that runs every interval.
func NewJanitor(logger *zap.Logger, interval time.Duration) *Janitor {
	return &Janitor{
		sweeps:   map[string]Sweeper{},
		log:      logger,
		interval: interval,
		stopCh:   make(chan struct{}),
		now:      time.Now,
	}
}

// Add registers a sweep under name. Call before Start.
func (j *Janitor) Add(name string, s Sweeper) *Janitor {
	j.sweeps[name] = s
	return j
}

// Start begins the background loop.
func (j *Janitor) Start() {
	j.wg.Add(1)
	go j.run()
	j.log.Info("janitor started",
		zap.Duration("interval", j.interval),
		zap.Int("sweeps", len(j.sweeps)))
}

// Stop signals the worker to stop and waits for it to finish.
func (j *Janitor) Stop() {
	close(j.stopCh)
	j.wg.Wait()
	j.log.Info("janitor stopped")
}

func (j *Janitor) run() {
	defer j.wg.Done()

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-j.stopCh:
			return
		case <-ticker.C:
			j.RunOnce()
		}
	}
}

// RunOnce runs every sweep once. A failing sweep is logged and does not stop
// the others.
func (j *Janitor) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	now := j.now().UTC()
	for name, s := range j.sweeps {
		n, err := s.Sweep(ctx, now)
		if err != nil {
			j.log.Error("janitor sweep failed", zap.String("sweep", name), zap.Error(err))
			continue
		}
		if n > 0 {
			j.log.Info("janitor swept", zap.String("sweep", name), zap.Int64("count", n))
		}
	}
}
