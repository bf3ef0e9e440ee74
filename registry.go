package lazyview

import (
	"fmt"
	"sync"
)

// RegistryConfig fixes the shared measurement a registry uses for all of
// its elements. The zero value observes with no margin and reports any
// overlap as visible.
type RegistryConfig struct {
	Threshold float64
	Margin    Margin
	Logger    Logger
}

// Registry tracks visibility for a whole set of elements with one shared
// observation, keyed by caller-chosen string ids. It suits list screens
// where a tracker per row would be wasteful. On an unavailable platform
// every registered id is marked visible immediately and stays that way.
type Registry struct {
	platform Platform
	log      Logger

	mu       sync.Mutex
	obs      Observer
	ids      map[string]Element
	elems    map[Element]string
	vis      map[string]bool
	degraded bool
	closed   bool
}

// NewRegistry builds a registry and, when the platform is available, its
// shared observer.
func NewRegistry(p Platform, cfg RegistryConfig) *Registry {
	r := &Registry{
		platform: p,
		log:      cfg.Logger,
		ids:      map[string]Element{},
		elems:    map[Element]string{},
		vis:      map[string]bool{},
	}
	if r.log == nil {
		r.log = nopLogger{}
	}
	if p == nil || !p.Available() {
		r.degraded = true
		r.log.Printf("registry: platform unavailable, marking everything visible")
		return r
	}
	r.obs = p.NewObserver(ObserverConfig{Threshold: cfg.Threshold, Margin: cfg.Margin}, r.apply)
	return r
}

// Register adds id -> el to the table and starts observing el. Re-using an
// id replaces its element; re-using an element moves it to the new id. On a
// degraded registry the id is marked visible at once.
func (r *Registry) Register(id string, el Element) error {
	if id == "" {
		return fmt.Errorf("lazyview: registry id is required")
	}
	if el == nil {
		return fmt.Errorf("lazyview: registry element is required for %s", id)
	}
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return ErrClosed
	}
	var released []Element
	if old, ok := r.ids[id]; ok && old != el {
		delete(r.elems, old)
		released = append(released, old)
	}
	if oldID, ok := r.elems[el]; ok && oldID != id {
		delete(r.ids, oldID)
		delete(r.vis, oldID)
	}
	r.ids[id] = el
	r.elems[el] = id
	if r.degraded {
		r.vis[id] = true
		r.mu.Unlock()
		return nil
	}
	if _, seen := r.vis[id]; !seen {
		r.vis[id] = false
	}
	obs := r.obs
	r.mu.Unlock()

	for _, old := range released {
		obs.Unobserve(old)
	}
	obs.Observe(el)
	return nil
}

// Unregister drops the element and its id from the table. Unknown elements
// are ignored.
func (r *Registry) Unregister(el Element) {
	if el == nil {
		return
	}
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	id, ok := r.elems[el]
	if !ok {
		r.mu.Unlock()
		return
	}
	delete(r.elems, el)
	delete(r.ids, id)
	delete(r.vis, id)
	obs := r.obs
	r.mu.Unlock()

	if obs != nil {
		obs.Unobserve(el)
	}
}

// Visible reports the last known visibility for id. Unknown ids are not
// visible.
func (r *Registry) Visible(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.vis[id]
}

// Snapshot returns a copy of the visibility table keyed by id.
func (r *Registry) Snapshot() map[string]bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]bool, len(r.vis))
	for id, v := range r.vis {
		out[id] = v
	}
	return out
}

// Len returns the number of registered ids.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.ids)
}

// Close disconnects the shared observer and empties the table. It is
// idempotent; Register after Close returns ErrClosed.
func (r *Registry) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	obs := r.obs
	r.obs = nil
	r.ids = map[string]Element{}
	r.elems = map[Element]string{}
	r.vis = map[string]bool{}
	r.mu.Unlock()

	if obs != nil {
		obs.Disconnect()
	}
}

// apply folds a signal batch into the visibility table. It walks the batch,
// not the table, so table mutations stay safe while a batch is processed;
// entries for elements that were unregistered before delivery are skipped.
func (r *Registry) apply(entries []Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	for _, e := range entries {
		id, ok := r.elems[e.Element]
		if !ok {
			continue
		}
		r.vis[id] = e.Intersecting
	}
}
