package tags

import (
	"math/bits"
	"sync"

	"github.com/dd0wney/cluso-nodeflow/pkg/metrics"
)

// MaxTags is the width of a Set and the upper bound on registry capacity.
const MaxTags = 64

// Registry hands out tag indices from a free list. Freed indices are reused
// lowest-first, so a registry that was emptied starts again at index 0.
//
// All methods are safe for concurrent use. Index assignment is a single
// test-and-set under the registry mutex: two goroutines racing to register
// the same novel key observe the same index.
type Registry struct {
	mu       sync.Mutex
	capacity int
	byKey    map[any]int
	slots    [MaxTags]Key
	used     Set

	metrics *metrics.Registry
}

// Option configures a Registry.
type Option func(*Registry)

// WithMetrics reports registry size and capacity failures to m.
func WithMetrics(m *metrics.Registry) Option {
	return func(r *Registry) {
		r.metrics = m
	}
}

// NewRegistry creates a registry holding at most capacity live tags.
// A capacity outside (0, MaxTags] is clamped to MaxTags.
func NewRegistry(capacity int, opts ...Option) *Registry {
	if capacity <= 0 || capacity > MaxTags {
		capacity = MaxTags
	}
	r := &Registry{
		capacity: capacity,
		byKey:    make(map[any]int),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.report()
	return r
}

// Capacity returns the maximum number of simultaneously live tags.
func (r *Registry) Capacity() int {
	return r.capacity
}

// Index returns the index of key, registering it on first use.
func (r *Registry) Index(key Key) (int, error) {
	if key.IsZero() {
		return 0, &Error{Op: "index", Cause: ErrInvalidKey}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.indexLocked(key)
}

func (r *Registry) indexLocked(key Key) (int, error) {
	if idx, ok := r.byKey[key.id]; ok {
		return idx, nil
	}

	idx := bits.TrailingZeros64(^uint64(r.used))
	if idx >= r.capacity {
		if r.metrics != nil {
			r.metrics.RecordTagCapacityError()
		}
		return 0, &Error{Op: "index", Tag: key.name, Capacity: r.capacity, Cause: ErrCapacityExceeded}
	}

	r.byKey[key.id] = idx
	r.slots[idx] = key
	r.used = r.used.With(idx)
	r.report()
	return idx, nil
}

// Peek returns the index of key without registering it.
func (r *Registry) Peek(key Key) (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx, ok := r.byKey[key.id]
	return idx, ok
}

// Register registers every key, stopping at the first failure. Keys
// registered before the failure stay registered.
func (r *Registry) Register(keys ...Key) error {
	if len(keys) == 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, k := range keys {
		if k.IsZero() {
			return &Error{Op: "register", Cause: ErrInvalidKey}
		}
		if _, err := r.indexLocked(k); err != nil {
			return err
		}
	}
	return nil
}

// Unregister releases the index held by key. Sets that still carry the bit
// become stale; clearing them is the caller's job.
func (r *Registry) Unregister(key Key) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx, ok := r.byKey[key.id]
	if !ok {
		return
	}
	delete(r.byKey, key.id)
	r.slots[idx] = Key{}
	r.used = r.used.Without(idx)
	r.report()
}

// UnregisterAll releases every index.
func (r *Registry) UnregisterAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	clear(r.byKey)
	r.slots = [MaxTags]Key{}
	r.used = 0
	r.report()
}

// Count returns the number of live registrations.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.used.Count()
}

// Name returns the display name of key if it is registered, or "".
func (r *Registry) Name(key Key) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byKey[key.id]; !ok {
		return ""
	}
	return key.name
}

// NameByIndex returns the display name registered at idx, or "" when the
// index is free or out of range.
func (r *Registry) NameByIndex(idx int) string {
	if idx < 0 || idx >= MaxTags {
		return ""
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.slots[idx].name
}

// Lookup finds a live key by its display name.
func (r *Registry) Lookup(name string) (Key, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, idx := range r.used.Indices() {
		if r.slots[idx].name == name {
			return r.slots[idx], true
		}
	}
	return Key{}, false
}

// Names returns the display names of a set, in index order. Stale bits are
// skipped.
func (r *Registry) Names(s Set) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, s.Count())
	for _, idx := range s.Indices() {
		if n := r.slots[idx].name; n != "" {
			names = append(names, n)
		}
	}
	return names
}

// SetOf returns the set holding every key, registering keys as needed.
func (r *Registry) SetOf(keys ...Key) (Set, error) {
	var s Set
	for _, k := range keys {
		idx, err := r.Index(k)
		if err != nil {
			return 0, err
		}
		s = s.With(idx)
	}
	return s, nil
}

func (r *Registry) report() {
	if r.metrics != nil {
		r.metrics.UpdateTagCount(r.used.Count(), r.capacity)
	}
}

// IndexOf returns the index of marker type T in r.
func IndexOf[T any](r *Registry) (int, error) {
	return r.Index(TypeKey[T]())
}

// NameOf returns the registered name of marker type T, or "".
func NameOf[T any](r *Registry) string {
	return r.Name(TypeKey[T]())
}
