package tester

import (
	"strings"
	"sync"

	"github.com/goliatone/go-jsonforms/pkg/schema"
	"github.com/goliatone/go-jsonforms/pkg/uischema"
)

// Entry pairs a tester with the renderer it selects.
type Entry[R any] struct {
	Name     string
	Tester   Tester
	Renderer R
}

// Registry holds tester/renderer pairs. Higher rank wins; on equal rank the
// later registration wins so applications can override built-ins.
type Registry[R any] struct {
	mu      sync.RWMutex
	entries []Entry[R]
}

// NewRegistry constructs an empty registry.
func NewRegistry[R any]() *Registry[R] {
	return &Registry[R]{}
}

// Register appends a pair. Nil testers are ignored.
func (r *Registry[R]) Register(name string, t Tester, renderer R) {
	if r == nil || t == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, Entry[R]{
		Name:     strings.TrimSpace(name),
		Tester:   t,
		Renderer: renderer,
	})
}

// Snapshot returns a copy of the registry so a render pass sees a stable
// set of renderers.
func (r *Registry[R]) Snapshot() *Registry[R] {
	out := &Registry[R]{}
	if r == nil {
		return out
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out.entries = append([]Entry[R](nil), r.entries...)
	return out
}

// Entries lists the registered pairs in registration order.
func (r *Registry[R]) Entries() []Entry[R] {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Entry[R](nil), r.entries...)
}

// Len reports the number of registered pairs.
func (r *Registry[R]) Len() int {
	if r == nil {
		return 0
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// FindBestMatch returns the entry with the highest applicable rank.
func (r *Registry[R]) FindBestMatch(element *uischema.Element, sub *schema.Schema) (Entry[R], int, bool) {
	var (
		best     Entry[R]
		bestRank = NotApplicable
		found    bool
	)
	for _, entry := range r.Entries() {
		rank := entry.Tester(element, sub)
		if rank < 0 {
			continue
		}
		if rank >= bestRank {
			best, bestRank, found = entry, rank, true
		}
	}
	return best, bestRank, found
}
