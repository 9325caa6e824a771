package tags

import (
	"slices"
	"sync"
)

// Applicator applies tags by display name. Keys are registered once, after
// which Apply can tag an entity from a plain string, e.g. a shell command.
type Applicator struct {
	reg    *Registry
	mu     sync.RWMutex
	byName map[string]Key
}

// NewApplicator creates an applicator backed by r.
func NewApplicator(r *Registry) *Applicator {
	return &Applicator{
		reg:    r,
		byName: make(map[string]Key),
	}
}

// Register makes keys applicable by name. A later key with the same display
// name replaces an earlier one.
func (a *Applicator) Register(keys ...Key) error {
	if err := a.reg.Register(keys...); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	for _, k := range keys {
		a.byName[k.Name()] = k
	}
	return nil
}

// Key returns the key registered under name.
func (a *Applicator) Key(name string) (Key, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	k, ok := a.byName[name]
	return k, ok
}

// Apply tags t with the key registered under name. It returns false when the
// name is unknown or the key no longer has an index.
func (a *Applicator) Apply(name string, t *Taggable) bool {
	k, ok := a.Key(name)
	if !ok {
		return false
	}
	idx, ok := a.reg.Peek(k)
	if !ok {
		return false
	}
	t.AddTag(idx)
	return true
}

// Names returns every applicable name, sorted.
func (a *Applicator) Names() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	names := make([]string, 0, len(a.byName))
	for n := range a.byName {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}
