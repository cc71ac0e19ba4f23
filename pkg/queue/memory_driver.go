package queue

import (
	"context"
	"errors"
	"time"
)

var ErrQueueFull = errors.New("queue: memory driver is full")

// MemoryDriver is a channel-backed, non-durable driver.
type MemoryDriver struct {
	ch chan []byte
}

func NewMemoryDriver(capacity int) *MemoryDriver {
	return &MemoryDriver{ch: make(chan []byte, capacity)}
}

// Push never blocks the caller; a full buffer is an error.
func (d *MemoryDriver) Push(_ context.Context, payload []byte) error {
	select {
	case d.ch <- payload:
		return nil
	default:
		return ErrQueueFull
	}
}

func (d *MemoryDriver) Pop(ctx context.Context) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case payload := <-d.ch:
		return payload, nil
	case <-time.After(time.Second):
		return nil, nil
	}
}

func (d *MemoryDriver) Len() int { return len(d.ch) }
