// Package client is the Go side of the real-time chat: a channel receiving
// server events and a subscriber keeping the open conversation up to date.
package client

import (
	"chatline/domain/event"
	"sync"
)

type HandlerID uint64

type Handler func(event.DomainEvent)

// Channel delivers server events to handlers registered by event name.
type Channel interface {
	On(name string, handler Handler) HandlerID
	Off(id HandlerID)
}

// handlers is the registration table shared by channel implementations.
type handlers struct {
	mu     sync.RWMutex
	nextID HandlerID
	byName map[string]map[HandlerID]Handler
}

func newHandlers() *handlers {
	return &handlers{byName: make(map[string]map[HandlerID]Handler)}
}

func (h *handlers) On(name string, handler Handler) HandlerID {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextID++
	if h.byName[name] == nil {
		h.byName[name] = make(map[HandlerID]Handler)
	}
	h.byName[name][h.nextID] = handler
	return h.nextID
}

func (h *handlers) Off(id HandlerID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for name, set := range h.byName {
		delete(set, id)
		if len(set) == 0 {
			delete(h.byName, name)
		}
	}
}

// emit calls every handler of e's name outside the lock.
func (h *handlers) emit(e event.DomainEvent) {
	h.mu.RLock()
	set := make([]Handler, 0, len(h.byName[e.Name()]))
	for _, handler := range h.byName[e.Name()] {
		set = append(set, handler)
	}
	h.mu.RUnlock()
	for _, handler := range set {
		handler(e)
	}
}

func (h *handlers) count(name string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.byName[name])
}
