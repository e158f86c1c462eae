package server

import (
	"encoding/json"
	"sync"
)

// ActivityEvent is pushed to admin dashboard subscribers whenever a
// participant checks in, completes a sub-event, spins, or has a prize
// claimed.
type ActivityEvent struct {
	Type          string `json:"type"`
	ParticipantID string `json:"participantId,omitempty"`
	LocationID    int    `json:"locationId,omitempty"`
	SubEventID    string `json:"subEventId,omitempty"`
	Prize         string `json:"prize,omitempty"`
	Points        int    `json:"points,omitempty"`
}

// Broker is an in-process pub/sub fan-out for the admin activity feed.
type Broker struct {
	mu   sync.RWMutex
	subs map[chan []byte]struct{}
}

func NewBroker() *Broker {
	return &Broker{
		subs: make(map[chan []byte]struct{}),
	}
}

// Subscribe returns a channel receiving JSON-encoded activity events.
func (b *Broker) Subscribe() chan []byte {
	ch := make(chan []byte, 16)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a subscriber.
func (b *Broker) Unsubscribe(ch chan []byte) {
	b.mu.Lock()
	delete(b.subs, ch)
	b.mu.Unlock()
}

// Publish sends an event to all subscribers.
func (b *Broker) Publish(event ActivityEvent) {
	data, _ := json.Marshal(event)
	b.mu.RLock()
	for ch := range b.subs {
		select {
		case ch <- data:
		default:
			// Drop if subscriber is slow.
		}
	}
	b.mu.RUnlock()
}
