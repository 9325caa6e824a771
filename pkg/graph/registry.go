// Package graph is the consistency store of a node/port/connection editor.
//
// A Registry owns every node, group, port and connection, addressed through
// generation-checked handles. All state lives behind one RWMutex. Each
// operation is implemented on *Tx, which assumes the lock is held; the
// Registry method of the same name acquires the lock and delegates. Callers
// that need several operations to appear atomic use Update or View and call
// the Tx methods directly. Every Tx method may be called from inside Update,
// and every read-only one from inside View.
//
// Invalid requests (wrong orientation, stale handles, unknown owners,
// incompatible ports) never panic or return errors. They are logged at WARN,
// counted, and leave the registry untouched.
package graph

import (
	"sync"

	"github.com/dd0wney/cluso-nodeflow/pkg/logging"
	"github.com/dd0wney/cluso-nodeflow/pkg/metrics"
)

// Registry is the single source of truth for graph topology.
type Registry struct {
	mu sync.RWMutex

	entities    arena[entity]
	ports       arena[port]
	connections arena[connection]

	nodes      map[EntityHandle]*descriptor
	groups     map[EntityHandle]*descriptor
	nodeOrder  []EntityHandle
	groupOrder []EntityHandle
	nextID     uint64

	logger   logging.Logger
	metrics  *metrics.Registry
	listener GeometryListener
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used for rejected operations.
func WithLogger(l logging.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithMetrics reports graph size and operation counts to m.
func WithMetrics(m *metrics.Registry) Option {
	return func(r *Registry) {
		r.metrics = m
	}
}

// WithGeometryListener installs the receiver of NodeMoved events.
func WithGeometryListener(l GeometryListener) Option {
	return func(r *Registry) {
		r.listener = l
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		nodes:  make(map[EntityHandle]*descriptor),
		groups: make(map[EntityHandle]*descriptor),
		nextID: 1,
		logger: logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Tx is a view of the registry with the lock held. It must not be retained
// after the function it was passed to returns.
type Tx struct {
	r        *Registry
	writable bool
}

// Update runs fn with the write lock held.
func (r *Registry) Update(fn func(tx *Tx)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn(&Tx{r: r, writable: true})
	r.report()
}

// View runs fn with the read lock held. Calling a mutating method on a view
// Tx panics.
func (r *Registry) View(fn func(tx *Tx)) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn(&Tx{r: r})
}

func write[T any](r *Registry, fn func(tx *Tx) T) T {
	var out T
	r.Update(func(tx *Tx) { out = fn(tx) })
	return out
}

func write2[A, B any](r *Registry, fn func(tx *Tx) (A, B)) (A, B) {
	var a A
	var b B
	r.Update(func(tx *Tx) { a, b = fn(tx) })
	return a, b
}

func read[T any](r *Registry, fn func(tx *Tx) T) T {
	var out T
	r.View(func(tx *Tx) { out = fn(tx) })
	return out
}

func read2[A, B any](r *Registry, fn func(tx *Tx) (A, B)) (A, B) {
	var a A
	var b B
	r.View(func(tx *Tx) { a, b = fn(tx) })
	return a, b
}

func (tx *Tx) mustWrite(op string) {
	if !tx.writable {
		panic("graph: " + op + " called on a read-only transaction")
	}
}

func (tx *Tx) reject(op string, reason Reason, fields ...logging.Field) {
	r := tx.r
	fields = append(fields, logging.Operation(op), logging.Reason(string(reason)))
	r.logger.Warn("graph operation rejected", fields...)
	if r.metrics != nil {
		r.metrics.RecordRejection(string(reason))
		r.metrics.RecordGraphOperation(op, "rejected")
	}
}

func (tx *Tx) success(op string) {
	if tx.r.metrics != nil {
		tx.r.metrics.RecordGraphOperation(op, "success")
	}
}

func (r *Registry) report() {
	if r.metrics == nil {
		return
	}
	r.metrics.UpdateGraphSize(len(r.nodes), len(r.groups), r.ports.live, r.connections.live)
}

func (tx *Tx) entity(h EntityHandle) (*entity, bool) {
	return tx.r.entities.get(h.index, h.gen)
}

func (tx *Tx) port(p PortHandle) (*port, bool) {
	return tx.r.ports.get(p.index, p.gen)
}

func (tx *Tx) conn(c ConnectionHandle) (*connection, bool) {
	return tx.r.connections.get(c.index, c.gen)
}

// descriptor returns the registration record of h, whichever kind it is.
func (tx *Tx) descriptor(h EntityHandle) (*descriptor, bool) {
	if d, ok := tx.r.nodes[h]; ok {
		return d, true
	}
	d, ok := tx.r.groups[h]
	return d, ok
}

func (tx *Tx) entityName(h EntityHandle) string {
	if e, ok := tx.entity(h); ok {
		return e.name
	}
	return ""
}

// portRegistered reports whether p is in its owner's descriptor.
func (tx *Tx) portRegistered(p PortHandle, pt *port) bool {
	d, ok := tx.descriptor(pt.owner)
	return ok && d.ports[pt.orientation].has(p)
}

func (tx *Tx) portFields(p PortHandle) []logging.Field {
	pt, ok := tx.port(p)
	if !ok {
		return []logging.Field{logging.String("port_handle", p.String())}
	}
	return []logging.Field{
		logging.Node(tx.entityName(pt.owner)),
		logging.Port(pt.name),
		logging.Orientation(pt.orientation),
	}
}
