package graph

import (
	"github.com/dd0wney/cluso-nodeflow/pkg/logging"
)

// CreateConnectionBetweenPorts connects from and to if they are compatible
// and not already connected. Forward ports are resolved one level to the
// concrete port whose "<owner>_<port>" name matches. Afterwards the owners on
// both sides refresh their parameter state and are re-laid out through
// NodeMoved.
func (tx *Tx) CreateConnectionBetweenPorts(from, to PortHandle) (ConnectionHandle, bool) {
	const op = "create_connection"
	tx.mustWrite(op)

	if reason := tx.Incompatibility(from, to); reason != ReasonNone {
		tx.reject(op, reason, append(tx.portFields(from), logging.String("to", tx.refOf(to).String()))...)
		return ConnectionHandle{}, false
	}
	if tx.HasConnectionTo(from, to) {
		tx.reject(op, ReasonDuplicate, append(tx.portFields(from), logging.String("to", tx.refOf(to).String()))...)
		return ConnectionHandle{}, false
	}

	concreteFrom := tx.resolveForward(from)
	concreteTo := tx.resolveForward(to)

	c, ok := tx.RegisterConnection(concreteFrom, concreteTo, false)
	if !ok {
		return ConnectionHandle{}, false
	}

	tx.touchAround(from, to, concreteFrom, concreteTo)
	tx.success(op)
	return c, true
}

// resolveForward maps a forward port to the target whose synthesized name
// "<owner>_<port>" equals the forward port's name. Other ports are returned
// unchanged.
func (tx *Tx) resolveForward(p PortHandle) PortHandle {
	pt, ok := tx.port(p)
	if !ok {
		return p
	}
	for _, target := range tx.ForwardedPortsFrom(p) {
		if ref := tx.refOf(target); ref.Owner+"_"+ref.Port == pt.name {
			return target
		}
	}
	return p
}

// CreateConnection connects from and to, then activates or deactivates the
// node on the sink side.
func (tx *Tx) CreateConnection(from, to PortHandle, active bool) (ConnectionHandle, bool) {
	c, ok := tx.CreateConnectionBetweenPorts(from, to)
	if !ok {
		return ConnectionHandle{}, false
	}
	cn, _ := tx.conn(c)
	sink, _ := tx.port(cn.sink)
	if active {
		tx.ActivateNode(sink.owner)
	} else {
		tx.DeactivateNode(sink.owner)
	}
	return c, true
}

// DeleteConnection removes c and refreshes both endpoint owners.
func (tx *Tx) DeleteConnection(c ConnectionHandle) {
	tx.mustWrite("delete_connection")
	cn, ok := tx.conn(c)
	if !ok {
		tx.reject("delete_connection", ReasonStaleHandle, logging.String("connection_handle", c.String()))
		return
	}
	source, sink := cn.source, cn.sink
	tx.unregisterConnection(c)
	tx.touchAround(source, sink)
	tx.success("delete_connection")
}

// RemovePort destroys p along with its connections and forwarding entries,
// then refreshes every owner that was connected to it.
func (tx *Tx) RemovePort(p PortHandle) {
	tx.mustWrite("remove_port")
	if _, ok := tx.port(p); !ok {
		tx.reject("remove_port", ReasonStaleHandle, logging.String("port_handle", p.String()))
		return
	}
	peers := tx.peersOf(p)
	tx.releasePort(p)
	tx.touchAround(peers...)
	tx.success("remove_port")
}

// RemoveNode destroys a node or group with all of its ports, then refreshes
// every owner that was connected to it.
func (tx *Tx) RemoveNode(h EntityHandle) {
	tx.mustWrite("remove_node")
	e, ok := tx.entity(h)
	if !ok {
		tx.reject("remove_node", ReasonStaleHandle, logging.String("entity_handle", h.String()))
		return
	}
	var peers []PortHandle
	for _, o := range orientations {
		for _, p := range e.ports[o] {
			peers = append(peers, tx.peersOf(p)...)
		}
	}
	tx.Release(h)
	tx.touchAround(peers...)
	tx.success("remove_node")
}

// peersOf returns the ports at the other end of p's connections.
func (tx *Tx) peersOf(p PortHandle) []PortHandle {
	var out []PortHandle
	for _, c := range tx.Connections(p) {
		if cn, ok := tx.conn(c); ok {
			if cn.source == p {
				out = append(out, cn.sink)
			} else {
				out = append(out, cn.source)
			}
		}
	}
	return out
}

// RefreshParameterState disables every parameter of h that has a connection
// and enables the rest.
func (tx *Tx) RefreshParameterState(h EntityHandle) {
	tx.mustWrite("refresh_parameter_state")
	d, ok := tx.descriptor(h)
	if !ok {
		return
	}
	for _, p := range d.ports[Parameter].order {
		if pt, ok := tx.port(p); ok {
			pt.enabled = !tx.HasConnection(p)
		}
	}
}

// touchAround refreshes parameter state and runs NodeMoved for the owners of
// ports, and for every group forwarding one of them. Each owner is touched
// once.
func (tx *Tx) touchAround(ports ...PortHandle) {
	var owners []EntityHandle
	add := func(p PortHandle) {
		if pt, ok := tx.port(p); ok && !containsValue(owners, pt.owner) {
			owners = append(owners, pt.owner)
		}
	}
	for _, p := range ports {
		add(p)
		for _, fwd := range tx.PortsForwardedTo(p) {
			add(fwd)
		}
	}
	for _, h := range owners {
		tx.RefreshParameterState(h)
		tx.NodeMoved(h)
	}
}
