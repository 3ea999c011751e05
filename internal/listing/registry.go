package listing

import "sync"

type regKey struct {
	collection string
	lang       string
}

// Registry maps (collection, language) to its controller so the HTTP layer
// and CLI can resolve controllers without holding wiring globals.
type Registry struct {
	mu  sync.RWMutex
	set map[regKey]*Controller
}

func NewRegistry() *Registry {
	return &Registry{set: make(map[regKey]*Controller)}
}

// Register adds a controller under its configured collection and language.
func (r *Registry) Register(c *Controller) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.set[regKey{c.cfg.Collection, c.cfg.Lang}] = c
}

// Get resolves the controller for a collection and language.
func (r *Registry) Get(collection, lang string) (*Controller, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.set[regKey{collection, lang}]
	return c, ok
}

// All returns every registered controller.
func (r *Registry) All() []*Controller {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Controller, 0, len(r.set))
	for _, c := range r.set {
		out = append(out, c)
	}
	return out
}
