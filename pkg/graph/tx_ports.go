package graph

import (
	"github.com/dd0wney/cluso-nodeflow/pkg/logging"
	"github.com/dd0wney/cluso-nodeflow/pkg/tags"
	"github.com/dd0wney/cluso-nodeflow/pkg/validation"
)

// NewPort creates a port on owner. Names are unique per owner and
// orientation; a duplicate is refused. The port still has to be registered
// with RegisterInput, RegisterOutput or RegisterParameter.
func (tx *Tx) NewPort(owner EntityHandle, name string, o Orientation) PortHandle {
	tx.mustWrite("new_port")
	return tx.newPort(owner, name, name, o)
}

func (tx *Tx) newPort(owner EntityHandle, name, displayName string, o Orientation) PortHandle {
	e, ok := tx.entity(owner)
	if !ok {
		tx.reject("new_port", ReasonStaleHandle, logging.Port(name))
		return PortHandle{}
	}
	if o > Parameter {
		tx.reject("new_port", ReasonOrientation, logging.Node(e.name), logging.Port(name))
		return PortHandle{}
	}
	if err := validation.ValidateName(name); err != nil {
		tx.reject("new_port", ReasonInvalidName, logging.Node(e.name), logging.Port(name), logging.Error(err))
		return PortHandle{}
	}
	for _, p := range e.ports[o] {
		if pt, ok := tx.port(p); ok && pt.name == name {
			tx.reject("new_port", ReasonDuplicateName, logging.Node(e.name), logging.Port(name), logging.Orientation(o))
			return PortHandle{}
		}
	}

	if displayName == "" {
		displayName = name
	}
	idx, gen := tx.r.ports.alloc(port{
		name:        name,
		displayName: displayName,
		orientation: o,
		owner:       owner,
		visible:     true,
		enabled:     true,
	})
	h := PortHandle{index: idx, gen: gen}
	e.ports[o] = append(e.ports[o], h)
	return h
}

// ReleasePort tears down everything attached to p and frees it.
func (tx *Tx) ReleasePort(p PortHandle) {
	tx.mustWrite("release_port")
	if _, ok := tx.port(p); !ok {
		tx.reject("release_port", ReasonStaleHandle, logging.String("port_handle", p.String()))
		return
	}
	tx.releasePort(p)
	tx.success("release_port")
}

func (tx *Tx) releasePort(p PortHandle) {
	pt, ok := tx.port(p)
	if !ok {
		return
	}
	tx.detachPort(p)
	if e, ok := tx.entity(pt.owner); ok {
		e.ports[pt.orientation] = removeValue(e.ports[pt.orientation], p)
	}
	tx.r.ports.release(p.index, p.gen)
}

// detachPort removes p from its owner's descriptor, destroys its connections
// and removes every forwarding entry that mentions it.
func (tx *Tx) detachPort(p PortHandle) {
	pt, ok := tx.port(p)
	if !ok {
		return
	}
	if d, ok := tx.descriptor(pt.owner); ok {
		table := &d.ports[pt.orientation]
		for _, c := range append([]ConnectionHandle(nil), table.conns[p]...) {
			tx.unregisterConnection(c)
		}
		table.remove(p)
	}
	tx.dropForwardRefs(p)
}

func (tx *Tx) RegisterInput(owner EntityHandle, p PortHandle) {
	tx.registerPort("register_input", Input, owner, p)
}

func (tx *Tx) RegisterOutput(owner EntityHandle, p PortHandle) {
	tx.registerPort("register_output", Output, owner, p)
}

func (tx *Tx) RegisterParameter(owner EntityHandle, p PortHandle) {
	tx.registerPort("register_parameter", Parameter, owner, p)
}

// RegisterPort registers p under its own orientation.
func (tx *Tx) RegisterPort(p PortHandle) {
	tx.mustWrite("register_port")
	pt, ok := tx.port(p)
	if !ok {
		tx.reject("register_port", ReasonStaleHandle, logging.String("port_handle", p.String()))
		return
	}
	tx.registerPort("register_port", pt.orientation, pt.owner, p)
}

func (tx *Tx) registerPort(op string, o Orientation, owner EntityHandle, p PortHandle) {
	tx.mustWrite(op)
	d, ok := tx.checkPort(op, o, owner, p)
	if !ok || d.ports[o].has(p) {
		return
	}
	d.ports[o].add(p)
	tx.success(op)
}

func (tx *Tx) UnregisterInput(owner EntityHandle, p PortHandle) {
	tx.unregisterPort("unregister_input", Input, owner, p)
}

func (tx *Tx) UnregisterOutput(owner EntityHandle, p PortHandle) {
	tx.unregisterPort("unregister_output", Output, owner, p)
}

func (tx *Tx) UnregisterParameter(owner EntityHandle, p PortHandle) {
	tx.unregisterPort("unregister_parameter", Parameter, owner, p)
}

// unregisterPort removes p from its owner's descriptor. Its connections and
// forwarding entries go with it; the port itself stays allocated.
func (tx *Tx) unregisterPort(op string, o Orientation, owner EntityHandle, p PortHandle) {
	tx.mustWrite(op)
	d, ok := tx.checkPort(op, o, owner, p)
	if !ok || !d.ports[o].has(p) {
		return
	}
	tx.detachPort(p)
	tx.success(op)
}

// checkPort validates a port registration request. The wrong orientation,
// a foreign owner or an unregistered owner all reject.
func (tx *Tx) checkPort(op string, o Orientation, owner EntityHandle, p PortHandle) (*descriptor, bool) {
	pt, ok := tx.port(p)
	if !ok {
		tx.reject(op, ReasonStaleHandle, logging.String("port_handle", p.String()))
		return nil, false
	}
	if pt.orientation != o {
		tx.reject(op, ReasonOrientation, append(tx.portFields(p), logging.String("expected", o.String()))...)
		return nil, false
	}
	if pt.owner != owner {
		tx.reject(op, ReasonForeignPort, append(tx.portFields(p), logging.String("claimed_owner", tx.entityName(owner)))...)
		return nil, false
	}
	d, ok := tx.descriptor(owner)
	if !ok {
		tx.reject(op, ReasonNotRegistered, tx.portFields(p)...)
		return nil, false
	}
	return d, true
}

// ResolvePort finds a registered port by owner name and port name. Plain
// nodes are searched before groups; names must match exactly.
func (tx *Tx) ResolvePort(ownerName, portName string) (PortHandle, bool) {
	for _, order := range [][]EntityHandle{tx.r.nodeOrder, tx.r.groupOrder} {
		for _, h := range order {
			e, ok := tx.entity(h)
			if !ok || e.name != ownerName {
				continue
			}
			d, _ := tx.descriptor(h)
			for _, o := range orientations {
				for _, p := range d.ports[o].order {
					if pt, ok := tx.port(p); ok && pt.name == portName {
						return p, true
					}
				}
			}
		}
	}
	return PortHandle{}, false
}

// Ports returns the ports owner has created in orientation o, in creation
// order, registered or not.
func (tx *Tx) Ports(owner EntityHandle, o Orientation) []PortHandle {
	e, ok := tx.entity(owner)
	if !ok || o > Parameter {
		return nil
	}
	return append([]PortHandle(nil), e.ports[o]...)
}

// RegisteredPorts returns the ports registered for owner in orientation o, in
// registration order.
func (tx *Tx) RegisteredPorts(owner EntityHandle, o Orientation) []PortHandle {
	d, ok := tx.descriptor(owner)
	if !ok || o > Parameter {
		return nil
	}
	return append([]PortHandle(nil), d.ports[o].order...)
}

// PortByName returns the port of owner named name in orientation o.
func (tx *Tx) PortByName(owner EntityHandle, o Orientation, name string) (PortHandle, bool) {
	e, ok := tx.entity(owner)
	if !ok || o > Parameter {
		return PortHandle{}, false
	}
	for _, p := range e.ports[o] {
		if pt, ok := tx.port(p); ok && pt.name == name {
			return p, true
		}
	}
	return PortHandle{}, false
}

// Port describes p.
func (tx *Tx) Port(p PortHandle) (PortInfo, bool) {
	pt, ok := tx.port(p)
	if !ok {
		return PortInfo{}, false
	}
	return PortInfo{
		Handle:      p,
		Owner:       pt.owner,
		OwnerName:   tx.entityName(pt.owner),
		Name:        pt.name,
		DisplayName: pt.displayName,
		Orientation: pt.orientation,
		Tags:        pt.Tags(),
		Visible:     pt.visible,
		Enabled:     pt.enabled,
		Registered:  tx.portRegistered(p, pt),
	}, true
}

// PortTags returns the tag set of p.
func (tx *Tx) PortTags(p PortHandle) tags.Set {
	if pt, ok := tx.port(p); ok {
		return pt.Tags()
	}
	return 0
}

// SetPortTags replaces the tag set of p.
func (tx *Tx) SetPortTags(p PortHandle, s tags.Set) {
	tx.UpdatePortTags(p, func(t *tags.Taggable) { t.SetTags(s) })
}

// UpdatePortTags runs fn on the tag set of p.
func (tx *Tx) UpdatePortTags(p PortHandle, fn func(t *tags.Taggable)) {
	tx.mustWrite("update_port_tags")
	if pt, ok := tx.port(p); ok {
		fn(&pt.Taggable)
	}
}

func (tx *Tx) SetPortVisible(p PortHandle, visible bool) {
	tx.mustWrite("set_port_visible")
	if pt, ok := tx.port(p); ok {
		pt.visible = visible
	}
}

func (tx *Tx) SetPortEnabled(p PortHandle, enabled bool) {
	tx.mustWrite("set_port_enabled")
	if pt, ok := tx.port(p); ok {
		pt.enabled = enabled
	}
}

func (tx *Tx) SetPortDisplayName(p PortHandle, displayName string) {
	tx.mustWrite("set_port_display_name")
	if pt, ok := tx.port(p); ok {
		pt.displayName = displayName
	}
}

// portVisible reports whether p and its owner are both visible.
func (tx *Tx) portVisible(pt *port) bool {
	e, ok := tx.entity(pt.owner)
	return ok && e.visible && pt.visible
}
