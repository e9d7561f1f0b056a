package runtime

import (
	"chatline/contract"
	"sync"

	"github.com/samber/lo"
)

// Connections holds every established connection, anonymous ones included.
type Connections struct {
	mu    sync.RWMutex
	sinks map[string]contract.EventSink // map connection -> Sink
}

func NewConnections() *Connections {
	return &Connections{sinks: make(map[string]contract.EventSink)}
}

func (c *Connections) Add(connectionID string, sink contract.EventSink) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sinks[connectionID] = sink
}

func (c *Connections) Remove(connectionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.sinks, connectionID)
}

func (c *Connections) Get(connectionID string) (contract.EventSink, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	sink, ok := c.sinks[connectionID]
	return sink, ok
}

// All returns a copy so that callers can push without holding the lock.
func (c *Connections) All() map[string]contract.EventSink {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return lo.Assign(c.sinks)
}

func (c *Connections) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.sinks)
}
