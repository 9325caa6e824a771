package graph

import (
	"github.com/google/uuid"

	"github.com/dd0wney/cluso-nodeflow/pkg/logging"
)

// RegisterConnection records a connection between from and to. One of them
// must be a sink (input or parameter) and the other an output, in either
// order, and both must be registered on registered owners. Uniqueness and
// tag checks are the builder's job; see CreateConnectionBetweenPorts.
func (tx *Tx) RegisterConnection(from, to PortHandle, active bool) (ConnectionHandle, bool) {
	const op = "register_connection"
	tx.mustWrite(op)

	source, sink, ok := tx.classify(from, to)
	if !ok {
		tx.reject(op, ReasonUnclassifiable, append(tx.portFields(from), logging.String("to", tx.refOf(to).String()))...)
		return ConnectionHandle{}, false
	}
	src, _ := tx.port(source)
	snk, _ := tx.port(sink)

	srcDesc, ok := tx.descriptor(src.owner)
	if !ok {
		tx.reject(op, ReasonOwnerUnknown, tx.portFields(source)...)
		return ConnectionHandle{}, false
	}
	snkDesc, ok := tx.descriptor(snk.owner)
	if !ok {
		tx.reject(op, ReasonOwnerUnknown, tx.portFields(sink)...)
		return ConnectionHandle{}, false
	}
	if !srcDesc.ports[Output].has(source) {
		tx.reject(op, ReasonNotRegistered, tx.portFields(source)...)
		return ConnectionHandle{}, false
	}
	if !snkDesc.ports[snk.orientation].has(sink) {
		tx.reject(op, ReasonNotRegistered, tx.portFields(sink)...)
		return ConnectionHandle{}, false
	}

	idx, gen := tx.r.connections.alloc(connection{
		id:        uuid.New(),
		source:    source,
		sink:      sink,
		sourceRef: tx.refOf(source),
		sinkRef:   tx.refOf(sink),
		active:    active,
	})
	c := ConnectionHandle{index: idx, gen: gen}

	srcTable := &srcDesc.ports[Output]
	srcTable.conns[source] = append(srcTable.conns[source], c)
	snkTable := &snkDesc.ports[snk.orientation]
	snkTable.conns[sink] = append(snkTable.conns[sink], c)

	tx.success(op)
	return c, true
}

// classify orders a pair as (source, sink).
func (tx *Tx) classify(a, b PortHandle) (source, sink PortHandle, ok bool) {
	pa, okA := tx.port(a)
	pb, okB := tx.port(b)
	if !okA || !okB {
		return PortHandle{}, PortHandle{}, false
	}
	switch {
	case pa.orientation == Output && pb.orientation.IsSink():
		return a, b, true
	case pa.orientation.IsSink() && pb.orientation == Output:
		return b, a, true
	default:
		return PortHandle{}, PortHandle{}, false
	}
}

func (tx *Tx) refOf(p PortHandle) PortRef {
	pt, ok := tx.port(p)
	if !ok {
		return PortRef{}
	}
	return PortRef{Owner: tx.entityName(pt.owner), Port: pt.name}
}

// UnregisterConnection removes c from every descriptor and frees it.
func (tx *Tx) UnregisterConnection(c ConnectionHandle) {
	tx.mustWrite("unregister_connection")
	if _, ok := tx.conn(c); !ok {
		tx.reject("unregister_connection", ReasonStaleHandle, logging.String("connection_handle", c.String()))
		return
	}
	tx.unregisterConnection(c)
	tx.success("unregister_connection")
}

// unregisterConnection removes c from the lists of every descriptor, then
// frees it.
func (tx *Tx) unregisterConnection(c ConnectionHandle) {
	sweep := func(d *descriptor) {
		for _, o := range orientations {
			table := &d.ports[o]
			for p, list := range table.conns {
				if containsValue(list, c) {
					table.conns[p] = removeValue(list, c)
				}
			}
		}
	}
	for _, d := range tx.r.nodes {
		sweep(d)
	}
	for _, d := range tx.r.groups {
		sweep(d)
	}
	tx.r.connections.release(c.index, c.gen)
}

// Connections returns the connections attached to p. For a forward port this
// includes the connections of every concrete port behind it.
func (tx *Tx) Connections(p PortHandle) []ConnectionHandle {
	var out []ConnectionHandle
	tx.collectConnections(p, map[PortHandle]bool{}, &out)
	return out
}

func (tx *Tx) collectConnections(p PortHandle, seen map[PortHandle]bool, out *[]ConnectionHandle) {
	if seen[p] {
		return
	}
	seen[p] = true

	pt, ok := tx.port(p)
	if !ok {
		return
	}
	if d, ok := tx.descriptor(pt.owner); ok {
		for _, c := range d.ports[pt.orientation].conns[p] {
			if !containsValue(*out, c) {
				*out = append(*out, c)
			}
		}
	}
	for _, target := range tx.ForwardedPortsFrom(p) {
		tx.collectConnections(target, seen, out)
	}
}

// HasConnection reports whether p, or any concrete port behind it, is
// connected.
func (tx *Tx) HasConnection(p PortHandle) bool {
	return len(tx.Connections(p)) > 0
}

// FindConnection returns the connection of from whose other end is the port
// toPort on the entity named toOwner. When that port is a group's forward
// port, connections on the concrete ports behind it match too.
func (tx *Tx) FindConnection(from PortHandle, toPort, toOwner string) (ConnectionHandle, bool) {
	pt, ok := tx.port(from)
	if !ok {
		return ConnectionHandle{}, false
	}
	for _, c := range tx.Connections(from) {
		cn, ok := tx.conn(c)
		if !ok {
			continue
		}
		other := cn.sinkRef
		if pt.orientation.IsSink() {
			other = cn.sourceRef
		}
		if other.Port == toPort && other.Owner == toOwner {
			return c, true
		}
	}
	if to, ok := tx.ResolvePort(toOwner, toPort); ok {
		return tx.ConnectionBetween(from, to)
	}
	return ConnectionHandle{}, false
}

// HasConnectionToName reports whether FindConnection succeeds.
func (tx *Tx) HasConnectionToName(from PortHandle, toPort, toOwner string) bool {
	_, ok := tx.FindConnection(from, toPort, toOwner)
	return ok
}

// HasConnectionTo reports whether a and b are connected, in either order.
// Forward ports match through the concrete ports behind them.
func (tx *Tx) HasConnectionTo(a, b PortHandle) bool {
	_, ok := tx.ConnectionBetween(a, b)
	return ok
}

// ConnectionBetween returns the connection joining a and b, in either order.
// Forward ports match through the concrete ports behind them.
func (tx *Tx) ConnectionBetween(a, b PortHandle) (ConnectionHandle, bool) {
	source, sink, ok := tx.classify(a, b)
	if !ok {
		return ConnectionHandle{}, false
	}
	sinks := append(tx.concretePorts(sink), sink)
	for _, c := range tx.Connections(source) {
		if cn, ok := tx.conn(c); ok && containsValue(sinks, cn.sink) {
			return c, true
		}
	}
	return ConnectionHandle{}, false
}

// concretePorts returns every port reachable from p through forwarding.
func (tx *Tx) concretePorts(p PortHandle) []PortHandle {
	var out []PortHandle
	var walk func(PortHandle)
	walk = func(q PortHandle) {
		for _, t := range tx.ForwardedPortsFrom(q) {
			if t != p && !containsValue(out, t) {
				out = append(out, t)
				walk(t)
			}
		}
	}
	walk(p)
	return out
}

// Connection describes c.
func (tx *Tx) Connection(c ConnectionHandle) (ConnectionInfo, bool) {
	cn, ok := tx.conn(c)
	if !ok {
		return ConnectionInfo{}, false
	}
	return ConnectionInfo{
		Handle:    c,
		ID:        cn.id,
		Source:    cn.source,
		Sink:      cn.sink,
		SourceRef: cn.sourceRef,
		SinkRef:   cn.sinkRef,
		Active:    cn.active,
	}, true
}

// AllConnections returns every live connection.
func (tx *Tx) AllConnections() []ConnectionHandle {
	var out []ConnectionHandle
	tx.r.connections.each(func(index, gen uint32, _ *connection) {
		out = append(out, ConnectionHandle{index: index, gen: gen})
	})
	return out
}

// FindConnectionByID looks a connection up by its UUID.
func (tx *Tx) FindConnectionByID(id uuid.UUID) (ConnectionHandle, bool) {
	var found ConnectionHandle
	tx.r.connections.each(func(index, gen uint32, cn *connection) {
		if found.IsZero() && cn.id == id {
			found = ConnectionHandle{index: index, gen: gen}
		}
	})
	return found, !found.IsZero()
}
