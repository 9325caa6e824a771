package graph

import (
	"github.com/dd0wney/cluso-nodeflow/pkg/logging"
)

// ActivateNode marks h active and activates every connection leaving its
// output ports. Inputs are not touched.
func (tx *Tx) ActivateNode(h EntityHandle) {
	tx.setActive("activate_node", h, true)
}

// DeactivateNode is the inverse of ActivateNode.
func (tx *Tx) DeactivateNode(h EntityHandle) {
	tx.setActive("deactivate_node", h, false)
}

func (tx *Tx) setActive(op string, h EntityHandle, active bool) {
	tx.mustWrite(op)
	e, ok := tx.entity(h)
	if !ok {
		tx.reject(op, ReasonStaleHandle, logging.String("entity_handle", h.String()))
		return
	}
	d, ok := tx.descriptor(h)
	if !ok {
		tx.reject(op, ReasonNotRegistered, logging.Node(e.name))
		return
	}

	e.active = active
	for _, p := range d.ports[Output].order {
		for _, c := range tx.Connections(p) {
			if cn, ok := tx.conn(c); ok {
				cn.active = active
			}
		}
	}
	tx.success(op)
}

// IsNodeActive reports the active flag of a registered node or group.
func (tx *Tx) IsNodeActive(h EntityHandle) bool {
	if _, ok := tx.descriptor(h); !ok {
		return false
	}
	e, ok := tx.entity(h)
	return ok && e.active
}

// NodeMoved emits a MoveEvent for every connection attached to h and hands
// each to the GeometryListener, if one is installed.
//
// For a plain node every registered port refreshes its own connections; a
// hidden node emits nothing. For a group the events come from the concrete
// ports behind its forwarding tables. The forward port supplies the position.
// Bounds come from the concrete port on the sink side and from the forward
// port on the output side.
func (tx *Tx) NodeMoved(h EntityHandle) []MoveEvent {
	e, ok := tx.entity(h)
	if !ok {
		return nil
	}
	d, ok := tx.descriptor(h)
	if !ok {
		return nil
	}

	var events []MoveEvent
	switch e.kind {
	case KindGroup:
		for _, o := range orientations {
			table := d.group.forward[o]
			for _, fwd := range table.order {
				for _, concrete := range table.targets[fwd] {
					bounds := fwd
					if o.IsSink() {
						bounds = concrete
					}
					for _, c := range tx.Connections(concrete) {
						events = append(events, MoveEvent{
							Connection:   c,
							Port:         concrete,
							SinkSide:     o.IsSink(),
							PositionFrom: fwd,
							BoundsFrom:   bounds,
						})
					}
				}
			}
		}
	default:
		if !e.visible {
			return nil
		}
		for _, o := range orientations {
			table := d.ports[o]
			for _, p := range table.order {
				for _, c := range table.conns[p] {
					events = append(events, MoveEvent{
						Connection:   c,
						Port:         p,
						SinkSide:     o.IsSink(),
						PositionFrom: p,
						BoundsFrom:   p,
					})
				}
			}
		}
	}

	if l := tx.r.listener; l != nil {
		for _, ev := range events {
			l.ConnectionMoved(ev)
		}
	}
	return events
}
