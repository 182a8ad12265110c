// Package sse implements a Server-Sent Events broker for real-time
// object change notifications.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// Event represents an SSE event to broadcast.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Broker manages SSE client connections and broadcasts events.
// Object-change events pass through unthrottled; the derived
// graph.updated event is rate limited so bursts of imports do not
// stampede graph consumers.
type Broker struct {
	graphMin time.Duration

	mu        sync.Mutex
	clients   map[chan []byte]struct{}
	lastGraph time.Time
	closed    bool
}

// NewBroker creates a new SSE broker with the given graph throttle
// interval.
func NewBroker(graphThrottle time.Duration) *Broker {
	if graphThrottle <= 0 {
		graphThrottle = 2 * time.Second
	}
	return &Broker{
		graphMin: graphThrottle,
		clients:  make(map[chan []byte]struct{}),
	}
}

// Subscribe adds a new client and returns its channel.
func (b *Broker) Subscribe() chan []byte {
	ch := make(chan []byte, 64)
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return ch
	}
	b.clients[ch] = struct{}{}
	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.clients[ch]; ok {
		delete(b.clients, ch)
		close(ch)
	}
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.clients)
}

// Close stops the broker and closes all client channels.
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for ch := range b.clients {
		close(ch)
	}
	b.clients = make(map[chan []byte]struct{})
}

// Publish sends an event to all connected clients. Slow clients with a
// full buffer are skipped rather than blocking the publisher.
func (b *Broker) Publish(event Event) {
	payload, err := json.Marshal(event.Data)
	if err != nil {
		return
	}
	raw := []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", event.Type, payload))

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	for ch := range b.clients {
		select {
		case ch <- raw:
		default:
		}
	}
}

// PublishObjectEvent publishes an object change (kind is one of
// "created", "updated", "deleted") plus a throttled graph.updated event.
func (b *Broker) PublishObjectEvent(kind, id string) {
	switch kind {
	case "created", "updated", "deleted":
	default:
		return
	}
	b.Publish(Event{Type: "object." + kind, Data: map[string]string{"id": id}})

	b.mu.Lock()
	due := !b.closed && time.Since(b.lastGraph) >= b.graphMin
	if due {
		b.lastGraph = time.Now()
	}
	b.mu.Unlock()
	if due {
		b.Publish(Event{Type: "graph.updated", Data: map[string]string{}})
	}
}

// ServeHTTP is the SSE endpoint handler.
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}
