package dispatcher

import (
	"errors"
	"fmt"
	"runtime"
	"sort"
	"sync"

	"github.com/atomicstack/inline-menus/internal/logging/events"
	"github.com/atomicstack/inline-menus/internal/menu"
)

// ErrTreeRegistered is returned when a different tree already uses the id.
var ErrTreeRegistered = errors.New("tree already registered")

// Registry maps root menu ids to trees. It routes incoming events and backs
// cross-tree navigation, so every tree it holds resolves peers through it.
type Registry struct {
	mu    sync.RWMutex
	trees map[string]*menu.Tree
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{trees: make(map[string]*menu.Tree)}
}

// Register adds t. Registering the same tree twice is a no-op.
func (r *Registry) Register(t *menu.Tree) error {
	if t == nil {
		return errors.New("register: nil tree")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.trees[t.ID()]; ok {
		if existing == t {
			return nil
		}
		return fmt.Errorf("register %q: %w", t.ID(), ErrTreeRegistered)
	}
	r.trees[t.ID()] = t
	t.SetPeers(r)
	events.Tree.Register(t.ID())
	return nil
}

// Unregister removes the tree with the given root id and clears its value
// stack.
func (r *Registry) Unregister(id string) (*menu.Tree, bool) {
	r.mu.Lock()
	t, ok := r.trees[id]
	if ok {
		delete(r.trees, id)
	}
	r.mu.Unlock()
	if !ok {
		return nil, false
	}
	t.Reset()
	t.SetPeers(nil)
	events.Tree.Unregister(id)
	return t, true
}

// Dispose unregisters t if it is the tree registered under its id.
func (r *Registry) Dispose(t *menu.Tree) bool {
	if t == nil {
		return false
	}
	r.mu.RLock()
	current, ok := r.trees[t.ID()]
	r.mu.RUnlock()
	if !ok || current != t {
		return false
	}
	_, ok = r.Unregister(t.ID())
	return ok
}

// LookupTree returns the tree registered under id.
func (r *Registry) LookupTree(id string) (*menu.Tree, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.trees[id]
	return t, ok
}

// Trees returns the registered ids in sorted order.
func (r *Registry) Trees() []string {
	r.mu.RLock()
	ids := make([]string, 0, len(r.trees))
	for id := range r.trees {
		ids = append(ids, id)
	}
	r.mu.RUnlock()
	sort.Strings(ids)
	return ids
}

// Keep ties t's registration to keeper: once keeper is unreachable and
// collected, t is disposed. The association is weak; keeper does not own t
// and t does not keep keeper alive.
func Keep[T any](r *Registry, keeper *T, t *menu.Tree) runtime.Cleanup {
	return runtime.AddCleanup(keeper, func(t *menu.Tree) { r.Dispose(t) }, t)
}
