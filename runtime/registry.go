package runtime

import (
	"sync"

	"github.com/samber/lo"
)

// Registry is the presence directory: which connection a user was last seen on.
// It keeps at most one connection per user, the newest connection wins.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]string // map user -> connection
	strict   bool
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]string)}
}

// NewStrictRegistry returns a registry whose Unregister ignores stale connections.
func NewStrictRegistry() *Registry {
	r := NewRegistry()
	r.strict = true
	return r
}

// Register upserts the connection of a user, overwriting any previous one.
func (r *Registry) Register(userID, connectionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[userID] = connectionID
}

// Unregister removes the user from the directory.
//
// By default the entry is removed whatever connection it points to: a stale
// connection closing after the same user reconnected evicts the newer one.
// A strict registry only removes the entry when connectionID is the one stored.
// It reports whether an entry was removed.
func (r *Registry) Unregister(userID, connectionID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.sessions[userID]
	if !ok {
		return false
	}
	if r.strict && current != connectionID {
		return false
	}
	delete(r.sessions, userID)
	return true
}

func (r *Registry) Lookup(userID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	connectionID, ok := r.sessions[userID]
	return connectionID, ok
}

// Snapshot returns the online users. Order is not meaningful.
func (r *Registry) Snapshot() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lo.Keys(r.sessions)
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
