// Package schedule runs named tasks on fixed intervals in the background.
//
//	s := schedule.New()
//	s.Every(time.Minute, "notifications.sweep", sweep)
//	s.Start(ctx)
//
// A task never overlaps with itself: a tick that finds the previous run
// still going is skipped.
package schedule

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shashiranjanraj/storefront/pkg/logger"
)

type Task func(ctx context.Context) error

type entry struct {
	name     string
	interval time.Duration
	task     Task

	mu      sync.Mutex
	lastRun time.Time
	running bool
}

type Scheduler struct {
	mu      sync.Mutex
	entries []*entry
	tick    time.Duration
	wg      sync.WaitGroup
}

func New() *Scheduler {
	return &Scheduler{tick: time.Second}
}

// SetTick changes how often due tasks are checked.
func (s *Scheduler) SetTick(d time.Duration) { s.tick = d }

// Every registers task to run every interval. The first run happens on the
// first tick after Start.
func (s *Scheduler) Every(interval time.Duration, name string, task Task) {
	s.mu.Lock()
	s.entries = append(s.entries, &entry{name: name, interval: interval, task: task})
	s.mu.Unlock()
}

// Start dispatches due tasks until ctx is cancelled. It does not block.
func (s *Scheduler) Start(ctx context.Context) {
	go s.loop(ctx)
	logger.Info("schedule: started", "tasks", len(s.List()))
}

// Wait blocks until every in-flight run has returned.
func (s *Scheduler) Wait() { s.wg.Wait() }

func (s *Scheduler) loop(ctx context.Context) {
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("schedule: stopped")
			return
		case now := <-ticker.C:
			s.mu.Lock()
			current := append([]*entry(nil), s.entries...)
			s.mu.Unlock()

			for _, e := range current {
				s.dispatch(ctx, e, now)
			}
		}
	}
}

func (s *Scheduler) dispatch(ctx context.Context, e *entry, now time.Time) {
	e.mu.Lock()
	if e.running || (!e.lastRun.IsZero() && now.Sub(e.lastRun) < e.interval) {
		e.mu.Unlock()
		return
	}
	e.running = true
	e.lastRun = now
	e.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				logger.Error("schedule: task panicked", "task", e.name, "panic", r)
			}
			e.mu.Lock()
			e.running = false
			e.mu.Unlock()
		}()

		start := time.Now()
		if err := e.task(ctx); err != nil {
			logger.Error("schedule: task failed", "task", e.name, "error", err)
			return
		}
		logger.Debug("schedule: task done", "task", e.name, "duration_ms", time.Since(start).Milliseconds())
	}()
}

// List describes the registered tasks, for the CLI.
func (s *Scheduler) List() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, fmt.Sprintf("%s  [every %s]", e.name, e.interval))
	}
	return out
}
