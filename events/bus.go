// Package events provides the publish/subscribe bus connecting the
// engine, manager, scoring system and external consumers. Topics are the
// string-tagged event types in models.
package events

import (
	"sync"

	"arena-engine/models"
)

// Handler receives published events. Handlers run synchronously on the
// publisher's goroutine, in subscription order; they must not block.
type Handler func(models.GameEvent)

type subscription struct {
	id      int
	topic   string // "" = all topics
	handler Handler
}

// Bus is a mutex-guarded topic fan-out.
type Bus struct {
	mu     sync.RWMutex
	nextID int
	subs   []subscription
}

func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers a handler for one topic and returns an unsubscribe
// function.
func (b *Bus) Subscribe(topic string, h Handler) func() {
	return b.add(topic, h)
}

// SubscribeAll registers a handler for every topic.
func (b *Bus) SubscribeAll(h Handler) func() {
	return b.add("", h)
}

func (b *Bus) add(topic string, h Handler) func() {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscription{id: id, topic: topic, handler: h})
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, s := range b.subs {
			if s.id == id {
				b.subs = append(b.subs[:i], b.subs[i+1:]...)
				return
			}
		}
	}
}

// Publish delivers the event to all matching subscribers. The subscriber
// list is copied first so handlers may subscribe or unsubscribe safely.
func (b *Bus) Publish(ev models.GameEvent) {
	b.mu.RLock()
	matched := make([]Handler, 0, len(b.subs))
	for _, s := range b.subs {
		if s.topic == "" || s.topic == ev.Type {
			matched = append(matched, s.handler)
		}
	}
	b.mu.RUnlock()

	for _, h := range matched {
		h(ev)
	}
}
