package graph

import (
	"github.com/dd0wney/cluso-nodeflow/pkg/logging"
)

func (tx *Tx) RegisterForwardInput(g EntityHandle, forward, concrete PortHandle) {
	tx.registerForward("register_forward_input", Input, g, forward, concrete)
}

func (tx *Tx) RegisterForwardOutput(g EntityHandle, forward, concrete PortHandle) {
	tx.registerForward("register_forward_output", Output, g, forward, concrete)
}

func (tx *Tx) RegisterForwardParameter(g EntityHandle, forward, concrete PortHandle) {
	tx.registerForward("register_forward_parameter", Parameter, g, forward, concrete)
}

// registerForward appends concrete to the targets of forward and copies the
// concrete port's tags onto forward. With several targets the forward port
// ends up with the tags of the last one registered.
func (tx *Tx) registerForward(op string, o Orientation, g EntityHandle, forward, concrete PortHandle) {
	tx.mustWrite(op)

	gd, ok := tx.r.groups[g]
	if !ok {
		tx.reject(op, ReasonNotGroup, logging.Group(tx.entityName(g)))
		return
	}
	fwd, okF := tx.port(forward)
	con, okC := tx.port(concrete)
	if !okF || !okC {
		tx.reject(op, ReasonStaleHandle, logging.Group(tx.entityName(g)))
		return
	}
	if fwd.orientation != o || con.orientation != o {
		tx.reject(op, ReasonOrientation, append(tx.portFields(concrete), logging.Group(tx.entityName(g)))...)
		return
	}
	if fwd.owner != g || con.owner == g {
		tx.reject(op, ReasonForeignPort, append(tx.portFields(concrete), logging.Group(tx.entityName(g)))...)
		return
	}
	if !gd.ports[o].has(forward) || !tx.portRegistered(concrete, con) {
		tx.reject(op, ReasonNotRegistered, append(tx.portFields(concrete), logging.Group(tx.entityName(g)))...)
		return
	}

	table := &gd.group.forward[o]
	if owner, taken := table.forwardOf(concrete); taken {
		if owner != forward {
			tx.reject(op, ReasonForwardTaken, append(tx.portFields(concrete), logging.Group(tx.entityName(g)))...)
		}
		return
	}
	if _, exists := table.targets[forward]; !exists {
		table.order = append(table.order, forward)
	}
	table.targets[forward] = append(table.targets[forward], concrete)
	fwd.CopyTagsFrom(&con.Taggable)
	tx.success(op)
}

// UnregisterForwardPort drops forward from all three forwarding tables of g.
// The port itself stays registered on the group.
func (tx *Tx) UnregisterForwardPort(g EntityHandle, forward PortHandle) {
	tx.mustWrite("unregister_forward_port")
	gd, ok := tx.r.groups[g]
	if !ok {
		tx.reject("unregister_forward_port", ReasonNotGroup, logging.Group(tx.entityName(g)))
		return
	}
	for _, o := range orientations {
		gd.group.forward[o].drop(forward)
	}
	tx.success("unregister_forward_port")
}

// dropForwardRefs removes p from every forwarding table, as a forward port
// and as a target. A forward port left without targets is dropped as well.
func (tx *Tx) dropForwardRefs(p PortHandle) {
	for _, g := range tx.r.groupOrder {
		gs := tx.r.groups[g].group
		for _, o := range orientations {
			table := &gs.forward[o]
			table.drop(p)
			for _, fwd := range append([]PortHandle(nil), table.order...) {
				targets := table.targets[fwd]
				if !containsValue(targets, p) {
					continue
				}
				targets = removeValue(targets, p)
				if len(targets) == 0 {
					table.drop(fwd)
				} else {
					table.targets[fwd] = targets
				}
			}
		}
	}
}

// ForwardedPortsFrom returns the concrete ports behind a forward port, in
// registration order. It is empty for a port that forwards nothing.
func (tx *Tx) ForwardedPortsFrom(forward PortHandle) []PortHandle {
	var out []PortHandle
	for _, g := range tx.r.groupOrder {
		gs := tx.r.groups[g].group
		for _, o := range orientations {
			out = append(out, gs.forward[o].targets[forward]...)
		}
	}
	return out
}

// PortsForwardedTo returns every forward port that has concrete among its
// targets.
func (tx *Tx) PortsForwardedTo(concrete PortHandle) []PortHandle {
	var out []PortHandle
	for _, g := range tx.r.groupOrder {
		gs := tx.r.groups[g].group
		for _, o := range orientations {
			if fwd, ok := gs.forward[o].forwardOf(concrete); ok {
				out = append(out, fwd)
			}
		}
	}
	return out
}

// IsForwardPort reports whether p forwards to at least one concrete port.
func (tx *Tx) IsForwardPort(p PortHandle) bool {
	for _, g := range tx.r.groupOrder {
		gs := tx.r.groups[g].group
		for _, o := range orientations {
			if _, ok := gs.forward[o].targets[p]; ok {
				return true
			}
		}
	}
	return false
}

// AddNodeToGroup makes n a member of g. A node may belong to several groups.
func (tx *Tx) AddNodeToGroup(g, n EntityHandle) {
	tx.mustWrite("add_node_to_group")
	gd, ok := tx.r.groups[g]
	if !ok {
		tx.reject("add_node_to_group", ReasonNotGroup, logging.Group(tx.entityName(g)))
		return
	}
	if _, ok := tx.r.nodes[n]; !ok {
		tx.reject("add_node_to_group", ReasonNotRegistered, logging.Group(tx.entityName(g)), logging.Node(tx.entityName(n)))
		return
	}
	if containsValue(gd.group.members, n) {
		return
	}
	gd.group.members = append(gd.group.members, n)
	tx.success("add_node_to_group")
}

// RemoveNodeFromGroup ends the membership of n in g. Forwarding entries that
// target n's ports are left to the caller.
func (tx *Tx) RemoveNodeFromGroup(g, n EntityHandle) {
	tx.mustWrite("remove_node_from_group")
	gd, ok := tx.r.groups[g]
	if !ok {
		tx.reject("remove_node_from_group", ReasonNotGroup, logging.Group(tx.entityName(g)))
		return
	}
	gd.group.members = removeValue(gd.group.members, n)
	tx.success("remove_node_from_group")
}

// GroupsOf returns the groups n belongs to, in group registration order.
func (tx *Tx) GroupsOf(n EntityHandle) []EntityHandle {
	var out []EntityHandle
	for _, g := range tx.r.groupOrder {
		if containsValue(tx.r.groups[g].group.members, n) {
			out = append(out, g)
		}
	}
	return out
}

// Members returns the member nodes of g in insertion order.
func (tx *Tx) Members(g EntityHandle) []EntityHandle {
	gd, ok := tx.r.groups[g]
	if !ok {
		return nil
	}
	return append([]EntityHandle(nil), gd.group.members...)
}

// FindNodeInGroup returns the member of g named name.
func (tx *Tx) FindNodeInGroup(name string, g EntityHandle) (EntityHandle, bool) {
	gd, ok := tx.r.groups[g]
	if !ok {
		return EntityHandle{}, false
	}
	return tx.findIn(gd.group.members, name)
}

// Forwards lists the forwarding entries of g, inputs first, then outputs,
// then parameters.
func (tx *Tx) Forwards(g EntityHandle) []ForwardEntry {
	gd, ok := tx.r.groups[g]
	if !ok {
		return nil
	}
	var out []ForwardEntry
	for _, o := range orientations {
		table := gd.group.forward[o]
		for _, fwd := range table.order {
			out = append(out, ForwardEntry{
				Group:       g,
				Orientation: o,
				Forward:     fwd,
				Targets:     append([]PortHandle(nil), table.targets[fwd]...),
			})
		}
	}
	return out
}
