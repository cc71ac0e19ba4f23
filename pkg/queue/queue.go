// Package queue runs background jobs with retries on a pluggable driver
// (in-memory channel or Redis list).
//
//	type RetryNotification struct{ OrderID uint }
//	func (RetryNotification) Name() string { return "notifications.retry" }
//	func (j *RetryNotification) Handle(ctx context.Context) error { ... }
//
//	queue.Register("notifications.retry", func() queue.Job { return &RetryNotification{} })
//	queue.Dispatch(&RetryNotification{OrderID: order.ID})
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/metrics"
)

// Job is a unit of background work. Its exported fields are the payload.
type Job interface {
	Name() string
	Handle(ctx context.Context) error
}

type FailedJob struct {
	Name     string
	Err      error
	FailedAt time.Time
	Attempts int
}

// Driver stores encoded jobs. Pop returns (nil, nil) when nothing arrived
// before its own poll timeout.
type Driver interface {
	Push(ctx context.Context, payload []byte) error
	Pop(ctx context.Context) ([]byte, error)
}

var ErrUnknownJob = errors.New("queue: unregistered job")

// Manager owns a driver, the job registry and the retry policy.
type Manager struct {
	mu       sync.RWMutex
	driver   Driver
	registry map[string]func() Job
	failed   []FailedJob
	store    FailedStore
	maxRetry int
	backoff  time.Duration
}

func New(driver Driver) *Manager {
	return &Manager{
		driver:   driver,
		registry: map[string]func() Job{},
		maxRetry: 3,
		backoff:  time.Second,
	}
}

var defaultManager = New(NewMemoryDriver(1000))

// Default returns the process-wide manager used by the package functions.
func Default() *Manager { return defaultManager }

func SetDriver(d Driver) { defaultManager.SetDriver(d) }

func Register(name string, factory func() Job) { defaultManager.Register(name, factory) }

func Dispatch(ctx context.Context, job Job) error { return defaultManager.Dispatch(ctx, job) }

func FailedJobs() []FailedJob { return defaultManager.FailedJobs() }

func (m *Manager) SetDriver(d Driver) {
	m.mu.Lock()
	m.driver = d
	m.mu.Unlock()
}

// SetRetry sets attempts per job and the linear backoff step between them.
func (m *Manager) SetRetry(attempts int, backoff time.Duration) {
	m.mu.Lock()
	m.maxRetry, m.backoff = attempts, backoff
	m.mu.Unlock()
}

// Register makes a job type decodable by name. Call once at boot.
func (m *Manager) Register(name string, factory func() Job) {
	m.mu.Lock()
	m.registry[name] = factory
	m.mu.Unlock()
}

type envelope struct {
	Name    string          `json:"name"`
	Payload json.RawMessage `json:"payload"`
}

func (m *Manager) Dispatch(ctx context.Context, job Job) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("queue: marshal %s: %w", job.Name(), err)
	}
	raw, err := json.Marshal(envelope{Name: job.Name(), Payload: payload})
	if err != nil {
		return fmt.Errorf("queue: marshal envelope: %w", err)
	}

	m.mu.RLock()
	d := m.driver
	m.mu.RUnlock()

	if err := d.Push(ctx, raw); err != nil {
		return err
	}
	metrics.RecordQueueJob(job.Name(), "dispatched")
	return nil
}

// Run starts n workers and blocks until ctx is cancelled and they exit.
func (m *Manager) Run(ctx context.Context, n int) {
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			m.work(ctx)
		}()
	}
	logger.Info("queue: workers started", "count", n)
	wg.Wait()
	logger.Info("queue: workers stopped")
}

func (m *Manager) work(ctx context.Context) {
	for ctx.Err() == nil {
		m.mu.RLock()
		d := m.driver
		m.mu.RUnlock()

		raw, err := d.Pop(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Warn("queue: pop failed", "error", err)
			sleep(ctx, 500*time.Millisecond)
			continue
		}
		if raw != nil {
			_ = m.Process(ctx, raw)
		}
	}
}

// Process decodes one encoded job and runs it with retries.
func (m *Manager) Process(ctx context.Context, raw []byte) error {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		logger.Error("queue: bad envelope", "error", err)
		return err
	}

	m.mu.RLock()
	factory, ok := m.registry[env.Name]
	m.mu.RUnlock()
	if !ok {
		logger.Warn("queue: unregistered job", "name", env.Name)
		return fmt.Errorf("%w: %s", ErrUnknownJob, env.Name)
	}

	job := factory()
	if err := json.Unmarshal(env.Payload, job); err != nil {
		logger.Error("queue: unmarshal payload", "name", env.Name, "error", err)
		return err
	}
	return m.runWithRetry(ctx, job, env.Payload)
}

func (m *Manager) runWithRetry(ctx context.Context, job Job, payload []byte) error {
	m.mu.RLock()
	attempts, backoff := m.maxRetry, m.backoff
	m.mu.RUnlock()

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if lastErr = job.Handle(ctx); lastErr == nil {
			metrics.RecordQueueJob(job.Name(), "processed")
			return nil
		}
		logger.Warn("queue: job failed", "name", job.Name(), "attempt", attempt, "error", lastErr)
		if attempt < attempts && !sleep(ctx, time.Duration(attempt)*backoff) {
			break
		}
	}

	metrics.RecordQueueJob(job.Name(), "failed")
	m.recordFailure(ctx, job.Name(), payload, lastErr, attempts)
	logger.Error("queue: job exhausted retries", "name", job.Name(), "error", lastErr)
	return lastErr
}

func (m *Manager) FailedJobs() []FailedJob {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]FailedJob(nil), m.failed...)
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
