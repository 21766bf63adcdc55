// Package sse streams library change notifications to browsers as
// Server-Sent Events.
//
// Every broadcast carries a sequence id. The broker keeps the most recent
// messages so a client that reconnects with a Last-Event-ID header receives
// what it missed, as long as it is still in the history window.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"
)

const (
	clientBuffer     = 64
	defaultHistory   = 128
	defaultKeepAlive = 15 * time.Second
	retryMillis      = 3000
)

// Event is one message for all connected clients.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// scoreEventTypes maps watcher callback kinds to event names.
var scoreEventTypes = map[string]string{
	"created": "score.created",
	"updated": "score.updated",
	"deleted": "score.deleted",
}

type frame struct {
	id  uint64
	raw []byte
}

type subscription struct {
	ch     chan []byte
	after  uint64
	replay bool
}

// Option configures a Broker.
type Option func(*Broker)

// WithKeepAlive sets how often idle streams receive a comment line. Zero
// disables keepalives.
func WithKeepAlive(d time.Duration) Option {
	return func(b *Broker) { b.keepAlive = d }
}

// WithHistory sets how many recent messages are kept for replay.
func WithHistory(n int) Option {
	return func(b *Broker) { b.history = n }
}

// Broker fans events out to subscribers.
//
// A single goroutine owns the client set, the history and the library
// throttle; the exported methods talk to it over channels.
type Broker struct {
	libraryMin time.Duration
	keepAlive  time.Duration
	history    int

	subscribeCh   chan subscription
	unsubscribeCh chan chan []byte
	publishCh     chan Event
	scoreEventCh  chan [2]string
	countReqCh    chan chan int

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker starts a broker. libraryThrottle is the minimum gap between two
// library.updated events.
func NewBroker(libraryThrottle time.Duration, opts ...Option) *Broker {
	if libraryThrottle <= 0 {
		libraryThrottle = 2 * time.Second
	}

	b := &Broker{
		libraryMin:    libraryThrottle,
		keepAlive:     defaultKeepAlive,
		history:       defaultHistory,
		subscribeCh:   make(chan subscription),
		unsubscribeCh: make(chan chan []byte),
		publishCh:     make(chan Event, 256),
		scoreEventCh:  make(chan [2]string, 256),
		countReqCh:    make(chan chan int),
		stopCh:        make(chan struct{}),
		stopped:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}

	go b.run()
	return b
}

func encode(id uint64, event Event) ([]byte, error) {
	payload, err := json.Marshal(event.Data)
	if err != nil {
		return nil, err
	}
	return []byte(fmt.Sprintf("id: %d\nevent: %s\ndata: %s\n\n", id, event.Type, payload)), nil
}

// offer never blocks: a client whose buffer is full misses the message and
// can catch up through Last-Event-ID.
func offer(ch chan []byte, raw []byte) {
	select {
	case ch <- raw:
	default:
	}
}

func (b *Broker) run() {
	defer close(b.stopped)

	clients := make(map[chan []byte]struct{})
	var (
		seq         uint64
		recent      []frame
		lastLibrary time.Time
	)

	broadcast := func(event Event) {
		raw, err := encode(seq+1, event)
		if err != nil {
			return
		}
		seq++
		if b.history > 0 {
			recent = append(recent, frame{id: seq, raw: raw})
			if len(recent) > b.history {
				recent = recent[len(recent)-b.history:]
			}
		}
		for ch := range clients {
			offer(ch, raw)
		}
	}

	for {
		select {
		case <-b.stopCh:
			for ch := range clients {
				close(ch)
			}
			return

		case sub := <-b.subscribeCh:
			clients[sub.ch] = struct{}{}
			if sub.replay {
				for _, f := range recent {
					if f.id > sub.after {
						offer(sub.ch, f.raw)
					}
				}
			}

		case ch := <-b.unsubscribeCh:
			if _, ok := clients[ch]; ok {
				delete(clients, ch)
				close(ch)
			}

		case event := <-b.publishCh:
			broadcast(event)

		case req := <-b.scoreEventCh:
			if typ, ok := scoreEventTypes[req[0]]; ok {
				broadcast(Event{Type: typ, Data: map[string]string{"path": req[1]}})
			}
			now := time.Now()
			if now.Sub(lastLibrary) >= b.libraryMin {
				lastLibrary = now
				broadcast(Event{Type: "library.updated", Data: map[string]string{}})
			}

		case resp := <-b.countReqCh:
			resp <- len(clients)
		}
	}
}

// Close stops the loop and closes every client channel. It is idempotent.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe registers a client for new events only.
func (b *Broker) Subscribe() chan []byte {
	return b.subscribe(subscription{})
}

// SubscribeAfter registers a client and first replays the retained events
// whose id is greater than lastID.
func (b *Broker) SubscribeAfter(lastID uint64) chan []byte {
	return b.subscribe(subscription{after: lastID, replay: true})
}

func (b *Broker) subscribe(sub subscription) chan []byte {
	sub.ch = make(chan []byte, clientBuffer)
	if b.closed.Load() {
		close(sub.ch)
		return sub.ch
	}
	select {
	case b.subscribeCh <- sub:
	case <-b.stopped:
		close(sub.ch)
	}
	return sub.ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	if b.closed.Load() {
		return
	}
	select {
	case b.unsubscribeCh <- ch:
	case <-b.stopped:
	}
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	if b.closed.Load() {
		return 0
	}

	resp := make(chan int, 1)
	select {
	case b.countReqCh <- resp:
	case <-b.stopped:
		return 0
	}

	select {
	case n := <-resp:
		return n
	case <-b.stopped:
		return 0
	}
}

// Publish sends an event to all connected clients.
func (b *Broker) Publish(event Event) {
	if b.closed.Load() {
		return
	}
	select {
	case b.publishCh <- event:
	case <-b.stopped:
	}
}

// PublishScoreEvent matches the index watcher callback. Kind is created,
// updated or deleted; other kinds only count towards library.updated.
func (b *Broker) PublishScoreEvent(kind, path string) {
	if b.closed.Load() {
		return
	}
	select {
	case b.scoreEventCh <- [2]string{kind, path}:
	case <-b.stopped:
	}
}

// ServeHTTP streams events to one client (GET /api/events).
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "retry: %d\n\n", retryMillis)
	flusher.Flush()

	var ch chan []byte
	if lastID, err := strconv.ParseUint(r.Header.Get("Last-Event-ID"), 10, 64); err == nil {
		ch = b.SubscribeAfter(lastID)
	} else {
		ch = b.Subscribe()
	}
	defer b.Unsubscribe(ch)

	var tick <-chan time.Time
	if b.keepAlive > 0 {
		ticker := time.NewTicker(b.keepAlive)
		defer ticker.Stop()
		tick = ticker.C
	}

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick:
			_, _ = w.Write([]byte(": keepalive\n\n"))
			flusher.Flush()
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}
