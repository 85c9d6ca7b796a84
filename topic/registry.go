package topic

import (
	"sort"
	"sync"

	"golang.org/x/sync/singleflight"
)

// DefaultRegistry is the process-wide Registry used by producers that
// are not given one explicitly.
var DefaultRegistry = NewRegistry()

// A Registry is the set of topic names that have already been confirmed
// or created on the cluster. Names can be added via Add and looked up via
// Contains. It is not possible to remove a name. The zero value is ready
// to use and all methods are safe to use in concurrent code.
type Registry struct {
	mu     sync.RWMutex
	topics map[string]struct{}

	// inflight collapses concurrent ensures of the same topic.
	inflight singleflight.Group
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{topics: make(map[string]struct{})}
}

// Contains reports whether the topic has been registered.
func (r *Registry) Contains(topic string) bool {
	r.mu.RLock()
	_, ok := r.topics[topic]
	r.mu.RUnlock()
	return ok
}

// Add registers the topic. Adding a topic twice is harmless.
func (r *Registry) Add(topic string) {
	r.mu.Lock()
	if r.topics == nil {
		r.topics = make(map[string]struct{})
	}
	r.topics[topic] = struct{}{}
	r.mu.Unlock()
}

// Topics returns the registered topic names, sorted.
func (r *Registry) Topics() []string {
	r.mu.RLock()
	topics := make([]string, 0, len(r.topics))
	for t := range r.topics {
		topics = append(topics, t)
	}
	r.mu.RUnlock()
	sort.Strings(topics)
	return topics
}

// Len returns the number of registered topics.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.topics)
}
