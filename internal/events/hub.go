// Package events implements the per-battle spectator event stream: a
// strict event grammar, best-effort per-subscriber delivery, and a
// synthetic epoch_end snapshot for late subscribers. One Hub per battle
// with a channel per subscriber, rather than a single global broadcaster
// over a shared connection set, since each battle's grammar must be
// enforced independently.
package events

import (
	"log"
	"sync"

	"github.com/rawblock/gladiator-arena/pkg/models"
)

// Subscriber is a per-connection outbound channel. Hub never blocks on a
// slow subscriber: a full channel drops the subscriber rather than stalling
// the epoch ("best-effort per-subscriber delivery").
type Subscriber struct {
	ch chan models.Event
	dropped bool
}

func (s *Subscriber) Events() <-chan models.Event {
	return s.ch
}

// Hub fans out one battle's event stream to every live subscriber.
type Hub struct {
	mu sync.Mutex
	battleID string
	subscribers map[*Subscriber]bool
	lastSnapshot models.EpochEndData
	haveSnapshot bool
}

func NewHub(battleID string) *Hub {
	return &Hub{battleID: battleID, subscribers: make(map[*Subscriber]bool)}
}

// Subscribe registers a new listener. If an epoch_end snapshot has already
// been recorded, it is delivered synthetically so the new subscriber can
// initialise its view without needing replay.
func (h *Hub) Subscribe(buffer int) *Subscriber {
	if buffer <= 0 {
		buffer = 64
	}
	sub := &Subscriber{ch: make(chan models.Event, buffer)}

	h.mu.Lock()
	h.subscribers[sub] = true
	snapshot := h.lastSnapshot
	have := h.haveSnapshot
	h.mu.Unlock()

	if have {
		h.deliver(sub, models.Event{Type: models.EventEpochEnd, Data: snapshot})
	}
	return sub
}

// Unsubscribe removes a subscriber and closes its channel.
func (h *Hub) Unsubscribe(sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subscribers[sub] {
		delete(h.subscribers, sub)
		close(sub.ch)
	}
}

// Publish broadcasts one event to every live subscriber, dropping (not
// blocking on) any whose channel is full. epoch_end payloads are cached as
// the late-subscriber snapshot.
func (h *Hub) Publish(event models.Event) {
	h.mu.Lock()
	if event.Type == models.EventEpochEnd {
		if snap, ok := event.Data.(models.EpochEndData); ok {
			h.lastSnapshot = snap
			h.haveSnapshot = true
		}
	}
	targets := make([]*Subscriber, 0, len(h.subscribers))
	for s := range h.subscribers {
		targets = append(targets, s)
	}
	h.mu.Unlock()

	for _, sub := range targets {
		h.deliver(sub, event)
	}
}

func (h *Hub) deliver(sub *Subscriber, event models.Event) {
	select {
	case sub.ch <- event:
	default:
		h.mu.Lock()
		alreadyDropped := sub.dropped
		sub.dropped = true
		if !alreadyDropped {
			delete(h.subscribers, sub)
			close(sub.ch)
		}
		h.mu.Unlock()
		if !alreadyDropped {
			log.Printf("[events] battle %s: dropping slow subscriber", h.battleID)
		}
	}
}

// Store tracks one Hub per battle.
type Store struct {
	mu sync.Mutex
	hubs map[string]*Hub
}

func NewStore() *Store {
	return &Store{hubs: make(map[string]*Hub)}
}

func (s *Store) Open(battleID string) *Hub {
	s.mu.Lock()
	defer s.mu.Unlock()
	if h, ok := s.hubs[battleID]; ok {
		return h
	}
	h := NewHub(battleID)
	s.hubs[battleID] = h
	return h
}
