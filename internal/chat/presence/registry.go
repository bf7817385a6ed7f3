package presence

import (
	"sort"
	"sync"
)

// Registry identity -> active connection handle, last registration wins
type Registry struct {
	mu      sync.Mutex
	entries map[string]string
}

// NewRegistry create an empty Registry
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]string)}
}

// Register map identity to handle, replacing any earlier handle
func (r *Registry) Register(identity, handle string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[identity] = handle
}

// Unregister remove identity only while it still points at handle.
// A late disconnect of a superseded connection leaves the newer entry alone.
func (r *Registry) Unregister(identity, handle string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if current, ok := r.entries[identity]; ok && current == handle {
		delete(r.entries, identity)
		return true
	}
	return false
}

// ListOnline sorted online identities
func (r *Registry) ListOnline() []string {
	r.mu.Lock()
	online := make([]string, 0, len(r.entries))
	for identity := range r.entries {
		online = append(online, identity)
	}
	r.mu.Unlock()

	sort.Strings(online)
	return online
}
