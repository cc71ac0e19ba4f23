// Package sse streams Server-Sent Events. A Broker fans published events
// out to every connected stream; admin dashboards that cannot hold a
// websocket subscribe with a plain GET.
package sse

import (
	"fmt"
	"net/http"
	"sync"
	"time"
)

// Event is one message on the wire.
type Event struct {
	Name string
	Data []byte
}

// Stream writes events to one client.
type Stream struct {
	w  http.ResponseWriter
	rc *http.ResponseController
	r  *http.Request
}

// Open sets the event-stream headers and flushes them. It fails when the
// writer cannot flush.
func Open(w http.ResponseWriter, r *http.Request) (*Stream, error) {
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	rc := http.NewResponseController(w)
	// Streams outlive the server's write timeout.
	_ = rc.SetWriteDeadline(time.Time{})
	if err := rc.Flush(); err != nil {
		return nil, fmt.Errorf("sse: flush: %w", err)
	}
	return &Stream{w: w, rc: rc, r: r}, nil
}

// Send writes ev and flushes.
func (s *Stream) Send(ev Event) error {
	if ev.Name != "" {
		if _, err := fmt.Fprintf(s.w, "event: %s\n", ev.Name); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", ev.Data); err != nil {
		return err
	}
	return s.rc.Flush()
}

// Comment writes a keepalive line clients ignore.
func (s *Stream) Comment(msg string) error {
	if _, err := fmt.Fprintf(s.w, ": %s\n\n", msg); err != nil {
		return err
	}
	return s.rc.Flush()
}

// Broker keeps the set of subscribed streams.
type Broker struct {
	mu        sync.Mutex
	subs      map[chan Event]struct{}
	buffer    int
	heartbeat time.Duration
}

func NewBroker() *Broker {
	return &Broker{subs: map[chan Event]struct{}{}, buffer: 16, heartbeat: 25 * time.Second}
}

// SetHeartbeat changes the keepalive interval for streams served after the call.
func (b *Broker) SetHeartbeat(d time.Duration) { b.heartbeat = d }

func (b *Broker) subscribe() chan Event {
	ch := make(chan Event, b.buffer)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

func (b *Broker) unsubscribe(ch chan Event) {
	b.mu.Lock()
	delete(b.subs, ch)
	b.mu.Unlock()
}

// Publish hands ev to every subscriber and returns how many took it.
// A subscriber whose buffer is full misses the event.
func (b *Broker) Publish(ev Event) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	delivered := 0
	for ch := range b.subs {
		select {
		case ch <- ev:
			delivered++
		default:
		}
	}
	return delivered
}

// Subscribers returns the number of open streams.
func (b *Broker) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Serve streams published events to the client until it disconnects.
func (b *Broker) Serve(w http.ResponseWriter, r *http.Request) {
	stream, err := Open(w, r)
	if err != nil {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	ch := b.subscribe()
	defer b.unsubscribe(ch)

	tick := time.NewTicker(b.heartbeat)
	defer tick.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			if err := stream.Send(ev); err != nil {
				return
			}
		case <-tick.C:
			if err := stream.Comment("ping"); err != nil {
				return
			}
		}
	}
}
