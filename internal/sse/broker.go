// Package sse streams metadata index changes to HTTP clients as Server-Sent
// Events.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/starford/notemeta/internal/index"
)

// Event is one SSE message.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// NoteChange is the payload of note.created, note.updated and note.deleted.
type NoteChange struct {
	Path string   `json:"path"`
	Keys []string `json:"keys"`
}

// FieldsChange is the payload of fields.updated: every key whose indexed
// values changed since the previous fields.updated.
type FieldsChange struct {
	Keys []string `json:"keys"`
}

const clientBuffer = 64

// Broker fans events out to connected clients. Note events are sent as they
// happen; the keys they touch are collected and sent as one fields.updated
// event at most once per interval.
type Broker struct {
	interval time.Duration

	mu        sync.Mutex
	clients   map[chan []byte]struct{}
	closed    bool
	pending   map[string]struct{}
	flush     *time.Timer
	lastFlush time.Time
}

// NewBroker creates a broker that emits fields.updated at most once per
// interval.
func NewBroker(interval time.Duration) *Broker {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &Broker{
		interval: interval,
		clients:  make(map[chan []byte]struct{}),
		pending:  make(map[string]struct{}),
	}
}

// encode renders an event in the text/event-stream wire format.
func encode(event Event) ([]byte, error) {
	payload, err := json.Marshal(event.Data)
	if err != nil {
		return nil, err
	}
	return fmt.Appendf(nil, "event: %s\ndata: %s\n\n", event.Type, payload), nil
}

// Subscribe registers a client. The channel is closed by Unsubscribe or
// Close; after Close it is returned already closed.
func (b *Broker) Subscribe() chan []byte {
	ch := make(chan []byte, clientBuffer)

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

// Publish sends event to every client. A client whose buffer is full misses
// the event.
func (b *Broker) Publish(event Event) {
	raw, err := encode(event)
	if err != nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.clients {
		select {
		case ch <- raw:
		default:
		}
	}
}

// PublishIndexEvent reports a watcher-driven index change. It matches
// index.EventCallback.
func (b *Broker) PublishIndexEvent(ev index.Event) {
	switch ev.Kind {
	case "created", "updated", "deleted":
	default:
		return
	}
	keys := ev.Keys
	if keys == nil {
		keys = []string{}
	}
	b.Publish(Event{Type: "note." + ev.Kind, Data: NoteChange{Path: ev.Path, Keys: keys}})

	if len(ev.Keys) == 0 {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	for _, k := range ev.Keys {
		b.pending[k] = struct{}{}
	}
	if b.flush == nil {
		wait := max(b.interval-time.Since(b.lastFlush), 0)
		b.flush = time.AfterFunc(wait, b.flushFields)
	}
}

// flushFields sends the collected keys as one fields.updated event.
func (b *Broker) flushFields() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	keys := make([]string, 0, len(b.pending))
	for k := range b.pending {
		keys = append(keys, k)
	}
	clear(b.pending)
	b.flush = nil
	b.lastFlush = time.Now()
	b.mu.Unlock()

	sort.Strings(keys)
	b.Publish(Event{Type: "fields.updated", Data: FieldsChange{Keys: keys}})
}

// Close disconnects every client and drops pending keys. Later calls to
// Publish and PublishIndexEvent do nothing.
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	if b.flush != nil {
		b.flush.Stop()
		b.flush = nil
	}
	for ch := range b.clients {
		close(ch)
	}
	clear(b.clients)
	clear(b.pending)
}

// ServeHTTP is the SSE endpoint handler (GET /api/events).
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if _, err := w.Write(msg); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
