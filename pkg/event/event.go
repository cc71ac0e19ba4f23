// Package event is an in-process publish/subscribe bus. Listeners run
// either inline (Fire) or on a bounded worker pool (FireAsync), so a slow
// listener never holds up the request that raised the event.
package event

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/workerpool"
)

// Listener handles one event payload.
type Listener func(ctx context.Context, payload any) error

type Bus struct {
	mu        sync.RWMutex
	listeners map[string][]Listener
	pool      *workerpool.Pool
}

// NewBus creates a bus whose async listeners run on pool.
func NewBus(pool *workerpool.Pool) *Bus {
	return &Bus{listeners: map[string][]Listener{}, pool: pool}
}

func (b *Bus) Listen(name string, l Listener) {
	b.mu.Lock()
	b.listeners[name] = append(b.listeners[name], l)
	b.mu.Unlock()
}

func (b *Bus) snapshot(name string) []Listener {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]Listener(nil), b.listeners[name]...)
}

// Fire runs every listener inline and joins their errors.
func (b *Bus) Fire(ctx context.Context, name string, payload any) error {
	var errs []error
	for _, l := range b.snapshot(name) {
		if err := l(ctx, payload); err != nil {
			errs = append(errs, fmt.Errorf("event %s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// FireAsync hands each listener to the pool and returns at once. The
// listener context is detached from ctx so it outlives the request.
// Listeners that do not fit in the pool are dropped and logged.
func (b *Bus) FireAsync(ctx context.Context, name string, payload any) {
	detached := context.WithoutCancel(ctx)
	log := logger.WithCtx(ctx)

	for _, l := range b.snapshot(name) {
		l := l
		err := b.pool.Submit(func() {
			if err := l(detached, payload); err != nil {
				log.Warn("event listener failed", "event", name, "error", err)
			}
		})
		if err != nil {
			log.Warn("event listener dropped", "event", name, "error", err)
		}
	}
}

// Flush removes every listener.
func (b *Bus) Flush() {
	b.mu.Lock()
	b.listeners = map[string][]Listener{}
	b.mu.Unlock()
}

var defaultBus = NewBus(workerpool.New("events", 8, 256))

func Default() *Bus { return defaultBus }

func Listen(name string, l Listener) { defaultBus.Listen(name, l) }

func Fire(ctx context.Context, name string, payload any) error {
	return defaultBus.Fire(ctx, name, payload)
}

func FireAsync(ctx context.Context, name string, payload any) {
	defaultBus.FireAsync(ctx, name, payload)
}

func Flush() { defaultBus.Flush() }
