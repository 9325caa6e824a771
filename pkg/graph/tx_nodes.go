package graph

import (
	"github.com/dd0wney/cluso-nodeflow/pkg/logging"
	"github.com/dd0wney/cluso-nodeflow/pkg/validation"
)

// NewNode allocates a plain node. The node is not registered; call
// RegisterNode once the caller has set it up. An empty display name defaults
// to name.
func (tx *Tx) NewNode(name, displayName string) EntityHandle {
	tx.mustWrite("new_node")
	return tx.newEntity("new_node", KindNode, name, displayName)
}

// NewGroup allocates an empty group entity. Use Group to build a group from
// existing nodes in one step.
func (tx *Tx) NewGroup(name, displayName string) EntityHandle {
	tx.mustWrite("new_group")
	return tx.newEntity("new_group", KindGroup, name, displayName)
}

func (tx *Tx) newEntity(op string, kind Kind, name, displayName string) EntityHandle {
	if err := validation.ValidateName(name); err != nil {
		tx.reject(op, ReasonInvalidName, logging.Node(name), logging.Error(err))
		return EntityHandle{}
	}
	return tx.allocEntity(kind, name, displayName)
}

func (tx *Tx) allocEntity(kind Kind, name, displayName string) EntityHandle {
	if displayName == "" {
		displayName = name
	}
	idx, gen := tx.r.entities.alloc(entity{
		kind:        kind,
		name:        name,
		displayName: displayName,
		visible:     true,
	})
	return EntityHandle{index: idx, gen: gen}
}

// Release unregisters h if needed, releases all of its ports and frees the
// handle. Releasing a group dissolves it first, as Ungroup does.
func (tx *Tx) Release(h EntityHandle) {
	tx.mustWrite("release")
	e, ok := tx.entity(h)
	if !ok {
		tx.reject("release", ReasonStaleHandle, logging.String("entity_handle", h.String()))
		return
	}

	var members []EntityHandle
	switch e.kind {
	case KindGroup:
		members = tx.Members(h)
		tx.unregisterGroup(h)
	default:
		tx.unregisterNode(h)
	}

	for _, o := range orientations {
		for _, p := range append([]PortHandle(nil), e.ports[o]...) {
			tx.releasePort(p)
		}
	}
	tx.r.entities.release(h.index, h.gen)
	for _, n := range members {
		tx.RefreshParameterState(n)
		tx.NodeMoved(n)
	}
	tx.success("release")
}

// RegisterNode registers a plain node and returns its id. Registering the
// same node again returns the existing id and changes nothing. Groups are
// refused; they register through RegisterGroup.
func (tx *Tx) RegisterNode(h EntityHandle) (uint64, bool) {
	tx.mustWrite("register_node")
	e, ok := tx.entity(h)
	if !ok {
		tx.reject("register_node", ReasonStaleHandle, logging.String("entity_handle", h.String()))
		return 0, false
	}
	if e.kind == KindGroup {
		tx.reject("register_node", ReasonIsGroup, logging.Node(e.name))
		return 0, false
	}
	if d, ok := tx.r.nodes[h]; ok {
		return d.id, true
	}

	d := newDescriptor(tx.r.nextID, h, KindNode)
	tx.r.nextID++
	tx.r.nodes[h] = d
	tx.r.nodeOrder = append(tx.r.nodeOrder, h)
	tx.success("register_node")
	return d.id, true
}

// UnregisterNode drops the node's descriptor. Every connection and forwarding
// entry that involves one of its ports is torn down, and the node leaves
// every group it belonged to.
func (tx *Tx) UnregisterNode(h EntityHandle) {
	tx.mustWrite("unregister_node")
	if _, ok := tx.r.nodes[h]; !ok {
		tx.reject("unregister_node", ReasonNotRegistered, logging.Node(tx.entityName(h)))
		return
	}
	tx.unregisterNode(h)
	tx.success("unregister_node")
}

func (tx *Tx) unregisterNode(h EntityHandle) {
	d, ok := tx.r.nodes[h]
	if !ok {
		return
	}
	tx.detachDescriptorPorts(d)
	for _, g := range tx.r.groupOrder {
		gs := tx.r.groups[g].group
		gs.members = removeValue(gs.members, h)
	}
	delete(tx.r.nodes, h)
	tx.r.nodeOrder = removeValue(tx.r.nodeOrder, h)
}

// RegisterGroup registers a group and returns its id. It is idempotent. If
// the entity was registered as a plain node, that registration is dropped.
func (tx *Tx) RegisterGroup(h EntityHandle) (uint64, bool) {
	tx.mustWrite("register_group")
	e, ok := tx.entity(h)
	if !ok {
		tx.reject("register_group", ReasonStaleHandle, logging.String("entity_handle", h.String()))
		return 0, false
	}
	if e.kind != KindGroup {
		tx.reject("register_group", ReasonNotGroup, logging.Node(e.name))
		return 0, false
	}
	if d, ok := tx.r.groups[h]; ok {
		return d.id, true
	}
	tx.unregisterNode(h)

	d := newDescriptor(tx.r.nextID, h, KindGroup)
	tx.r.nextID++
	tx.r.groups[h] = d
	tx.r.groupOrder = append(tx.r.groupOrder, h)
	tx.success("register_group")
	return d.id, true
}

// UnregisterGroup drops the group's descriptor together with its forwarding
// tables, its memberships and any connection on its own ports. Members that
// no other group hides become visible again.
func (tx *Tx) UnregisterGroup(h EntityHandle) {
	tx.mustWrite("unregister_group")
	if _, ok := tx.r.groups[h]; !ok {
		tx.reject("unregister_group", ReasonNotRegistered, logging.Group(tx.entityName(h)))
		return
	}
	tx.unregisterGroup(h)
	tx.success("unregister_group")
}

func (tx *Tx) unregisterGroup(h EntityHandle) {
	d, ok := tx.r.groups[h]
	if !ok {
		return
	}
	members := append([]EntityHandle(nil), d.group.members...)
	tx.detachDescriptorPorts(d)
	delete(tx.r.groups, h)
	tx.r.groupOrder = removeValue(tx.r.groupOrder, h)
	tx.restoreMembers(members)
}

// restoreMembers shows each node that no registered group contains.
func (tx *Tx) restoreMembers(nodes []EntityHandle) {
	for _, n := range nodes {
		if len(tx.GroupsOf(n)) == 0 {
			tx.SetNodeVisible(n, true)
		}
	}
}

func (tx *Tx) detachDescriptorPorts(d *descriptor) {
	for _, o := range orientations {
		for _, p := range append([]PortHandle(nil), d.ports[o].order...) {
			tx.detachPort(p)
		}
	}
}

// Node describes h, registered or not.
func (tx *Tx) Node(h EntityHandle) (NodeInfo, bool) {
	e, ok := tx.entity(h)
	if !ok {
		return NodeInfo{}, false
	}
	info := NodeInfo{
		Handle:      h,
		Kind:        e.kind,
		Name:        e.name,
		DisplayName: e.displayName,
		Active:      e.active,
		Visible:     e.visible,
	}
	if d, ok := tx.descriptor(h); ok {
		info.ID = d.id
		info.Registered = true
	}
	return info, true
}

// AllNodes returns registered plain nodes in registration order.
func (tx *Tx) AllNodes() []EntityHandle {
	return append([]EntityHandle(nil), tx.r.nodeOrder...)
}

// AllGroups returns registered groups in registration order.
func (tx *Tx) AllGroups() []EntityHandle {
	return append([]EntityHandle(nil), tx.r.groupOrder...)
}

// FindNode returns the first registered plain node named name.
func (tx *Tx) FindNode(name string) (EntityHandle, bool) {
	return tx.findIn(tx.r.nodeOrder, name)
}

// FindGroup returns the first registered group named name.
func (tx *Tx) FindGroup(name string) (EntityHandle, bool) {
	return tx.findIn(tx.r.groupOrder, name)
}

// FindEntity looks up name among nodes, then groups.
func (tx *Tx) FindEntity(name string) (EntityHandle, bool) {
	if h, ok := tx.FindNode(name); ok {
		return h, true
	}
	return tx.FindGroup(name)
}

func (tx *Tx) findIn(order []EntityHandle, name string) (EntityHandle, bool) {
	for _, h := range order {
		if e, ok := tx.entity(h); ok && e.name == name {
			return h, true
		}
	}
	return EntityHandle{}, false
}

// SetDisplayName renames the display name of a node or group.
func (tx *Tx) SetDisplayName(h EntityHandle, displayName string) {
	tx.mustWrite("set_display_name")
	if e, ok := tx.entity(h); ok {
		e.displayName = displayName
	}
}

// SetNodeVisible shows or hides a node. Ports of a hidden node are treated
// as hidden by compatibility checks.
func (tx *Tx) SetNodeVisible(h EntityHandle, visible bool) {
	tx.mustWrite("set_node_visible")
	if e, ok := tx.entity(h); ok {
		e.visible = visible
	}
}
