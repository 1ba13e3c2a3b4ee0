// Package sse implements a Server-Sent Events broker that tells dashboards
// when the correlation artifact changes.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"
)

// Artifact lifecycle event types.
const (
	EventArtifactBuilt    = "artifact.built"
	EventArtifactReloaded = "artifact.reloaded"
)

// Event represents an SSE event to broadcast.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// ArtifactInfo is the payload of artifact lifecycle events.
type ArtifactInfo struct {
	Checksum     string    `json:"checksum,omitempty"`
	SnapshotID   string    `json:"snapshot_id,omitempty"`
	TimelineDays int       `json:"timeline_days"`
	At           time.Time `json:"at"`
}

// Stats is a point-in-time view of the broker.
type Stats struct {
	Clients     int    `json:"clients"`
	LastEventID uint64 `json:"last_event_id"`
}

const clientBuffer = 64

// Broker fans artifact events out to connected dashboards.
//
// A single loop goroutine owns the client set, the event sequence and the
// latest artifact event; every public method talks to it over channels.
type Broker struct {
	heartbeat time.Duration

	join    chan chan []byte
	leave   chan chan []byte
	events  chan Event
	queries chan chan Stats

	stop    chan struct{}
	done    chan struct{}
	stopped atomic.Bool
}

// NewBroker starts a broker that writes a comment line to every client each
// heartbeat interval.
func NewBroker(heartbeat time.Duration) *Broker {
	if heartbeat <= 0 {
		heartbeat = 15 * time.Second
	}

	b := &Broker{
		heartbeat: heartbeat,
		join:      make(chan chan []byte),
		leave:     make(chan chan []byte),
		events:    make(chan Event, 256),
		queries:   make(chan chan Stats),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}

	go b.loop()
	return b
}

func (b *Broker) loop() {
	defer close(b.done)

	clients := make(map[chan []byte]struct{})
	var seq uint64
	var latest []byte

	ticker := time.NewTicker(b.heartbeat)
	defer ticker.Stop()

	fanout := func(frame []byte) {
		for ch := range clients {
			select {
			case ch <- frame:
			default:
				// Slow client: drop the frame rather than stall everyone else.
			}
		}
	}

	for {
		select {
		case <-b.stop:
			for ch := range clients {
				close(ch)
			}
			return

		case ch := <-b.join:
			clients[ch] = struct{}{}
			if latest != nil {
				ch <- latest
			}

		case ch := <-b.leave:
			if _, ok := clients[ch]; ok {
				delete(clients, ch)
				close(ch)
			}

		case ev := <-b.events:
			frame, err := encode(seq+1, ev)
			if err != nil {
				continue
			}
			seq++
			if ev.Type == EventArtifactBuilt || ev.Type == EventArtifactReloaded {
				latest = frame
			}
			fanout(frame)

		case <-ticker.C:
			fanout([]byte(": heartbeat\n\n"))

		case reply := <-b.queries:
			reply <- Stats{Clients: len(clients), LastEventID: seq}
		}
	}
}

func encode(id uint64, ev Event) ([]byte, error) {
	payload, err := json.Marshal(ev.Data)
	if err != nil {
		return nil, err
	}
	return []byte(fmt.Sprintf("id: %d\nevent: %s\ndata: %s\n\n", id, ev.Type, payload)), nil
}

// Close stops the loop and closes every client stream. It is safe to call
// more than once.
func (b *Broker) Close() {
	if b.stopped.CompareAndSwap(false, true) {
		close(b.stop)
	}
	<-b.done
}

// Subscribe registers a client. New clients first receive the latest
// artifact event, if any. The returned func unregisters the client and
// closes the stream; the stream is also closed when the broker stops.
func (b *Broker) Subscribe() (<-chan []byte, func()) {
	ch := make(chan []byte, clientBuffer)
	select {
	case b.join <- ch:
	case <-b.done:
		close(ch)
		return ch, func() {}
	}

	return ch, func() {
		select {
		case b.leave <- ch:
		case <-b.done:
		}
	}
}

// Stats reports the connected clients and the last event id. A stopped
// broker reports zero clients.
func (b *Broker) Stats() Stats {
	reply := make(chan Stats, 1)
	select {
	case b.queries <- reply:
		return <-reply
	case <-b.done:
		return Stats{}
	}
}

// Publish queues an event for every connected client. Publishing on a
// stopped broker is a no-op.
func (b *Broker) Publish(ev Event) {
	if b.stopped.Load() {
		return
	}
	select {
	case b.events <- ev:
	case <-b.done:
	}
}

// PublishArtifact announces an artifact lifecycle change. kind is
// EventArtifactBuilt or EventArtifactReloaded.
func (b *Broker) PublishArtifact(kind string, info ArtifactInfo) {
	if info.At.IsZero() {
		info.At = time.Now().UTC()
	}
	b.Publish(Event{Type: kind, Data: info})
}

// ServeHTTP streams events to one client (GET /api/events).
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "retry: %d\n\n", (3 * time.Second).Milliseconds())
	flusher.Flush()

	stream, cancel := b.Subscribe()
	defer cancel()

	for {
		select {
		case <-r.Context().Done():
			return
		case frame, open := <-stream:
			if !open {
				return
			}
			if _, err := w.Write(frame); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
