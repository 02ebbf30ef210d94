package render

import "sync"

// Bindings is the table of named global textures the blur layers
// publish their results under. Materials in the host look their input
// up by name, the way a shader resolves a global texture binding.
//
// Writes are last-writer-wins by design. Layers never publish under the
// same name, so in practice each name has exactly one writer.
//
// Bindings is safe for concurrent reads; writes happen on the render
// thread only.
type Bindings struct {
	mu sync.RWMutex
	m  map[string]Target
}

// NewBindings creates an empty binding table.
func NewBindings() *Bindings {
	return &Bindings{m: make(map[string]Target)}
}

// Set publishes t under name, replacing any previous binding.
// Setting a nil target removes the binding.
func (b *Bindings) Set(name string, t Target) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if t == nil {
		delete(b.m, name)
		return
	}
	b.m[name] = t
}

// Get returns the target bound under name, or (nil, false) if absent.
// A layer that stops updating leaves its last-good texture bound, so a
// present binding may be stale but is never invalid.
func (b *Bindings) Get(name string) (Target, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	t, ok := b.m[name]
	return t, ok
}

// Len returns the number of bindings.
func (b *Bindings) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.m)
}
