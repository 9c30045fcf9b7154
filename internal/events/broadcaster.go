// Package events fans out state-change notifications to live observers.
//
// Observers are browser connections (SSE or WebSocket). Delivery is best
// effort: a slow or full observer drops messages instead of blocking the
// webhook path, and the transport handler unsubscribes the observer once
// its connection closes.
package events

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/talktuah/seatswitch/internal/models"
)

// DefaultObserverBuffer is the per-observer channel capacity. The demo
// produces a handful of events per call chain, so a small buffer absorbs
// any transport hiccup.
const DefaultObserverBuffer = 16

// Observer is one registered event consumer.
type Observer struct {
	ID string
	ch chan models.Event
}

// Events returns the channel the observer receives broadcasts on. It is
// closed on Unsubscribe.
func (o *Observer) Events() <-chan models.Event {
	return o.ch
}

// Broadcaster is the observer registry.
type Broadcaster struct {
	mu        sync.RWMutex
	observers map[string]*Observer
}

// NewBroadcaster creates an empty Broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{observers: make(map[string]*Observer)}
}

// Subscribe registers a new observer for all subsequent broadcasts.
func (b *Broadcaster) Subscribe() *Observer {
	o := &Observer{
		ID: uuid.NewString(),
		ch: make(chan models.Event, DefaultObserverBuffer),
	}
	b.mu.Lock()
	b.observers[o.ID] = o
	b.mu.Unlock()
	slog.Debug("Broadcaster.Subscribe: observer registered", "observer_id", o.ID)
	return o
}

// Unsubscribe removes the observer and closes its channel. Safe to call
// more than once.
func (b *Broadcaster) Unsubscribe(id string) {
	b.mu.Lock()
	o, ok := b.observers[id]
	if ok {
		delete(b.observers, id)
		close(o.ch)
	}
	b.mu.Unlock()
	if ok {
		slog.Debug("Broadcaster.Unsubscribe: observer removed", "observer_id", id)
	}
}

// Broadcast delivers ev to every registered observer without blocking. An
// observer whose buffer is full misses the event; that never fails the
// caller or the other observers.
func (b *Broadcaster) Broadcast(ev models.Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for id, o := range b.observers {
		select {
		case o.ch <- ev:
		default:
			slog.Warn("Broadcaster.Broadcast: observer buffer full, dropping event", "observer_id", id, "event_type", ev.Type)
		}
	}
}

// Len returns the number of registered observers.
func (b *Broadcaster) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.observers)
}
