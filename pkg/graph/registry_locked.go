package graph

import (
	"github.com/google/uuid"

	"github.com/dd0wney/cluso-nodeflow/pkg/tags"
)

// Locking wrappers. Each method takes the registry lock for the duration of
// one Tx call; see the Tx method of the same name for semantics.

func (r *Registry) NewNode(name, displayName string) EntityHandle {
	return write(r, func(tx *Tx) EntityHandle { return tx.NewNode(name, displayName) })
}

func (r *Registry) NewGroup(name, displayName string) EntityHandle {
	return write(r, func(tx *Tx) EntityHandle { return tx.NewGroup(name, displayName) })
}

func (r *Registry) Release(h EntityHandle) {
	r.Update(func(tx *Tx) { tx.Release(h) })
}

func (r *Registry) RegisterNode(h EntityHandle) (uint64, bool) {
	return write2(r, func(tx *Tx) (uint64, bool) { return tx.RegisterNode(h) })
}

func (r *Registry) UnregisterNode(h EntityHandle) {
	r.Update(func(tx *Tx) { tx.UnregisterNode(h) })
}

func (r *Registry) RegisterGroup(h EntityHandle) (uint64, bool) {
	return write2(r, func(tx *Tx) (uint64, bool) { return tx.RegisterGroup(h) })
}

func (r *Registry) UnregisterGroup(h EntityHandle) {
	r.Update(func(tx *Tx) { tx.UnregisterGroup(h) })
}

func (r *Registry) Node(h EntityHandle) (NodeInfo, bool) {
	return read2(r, func(tx *Tx) (NodeInfo, bool) { return tx.Node(h) })
}

func (r *Registry) AllNodes() []EntityHandle {
	return read(r, func(tx *Tx) []EntityHandle { return tx.AllNodes() })
}

func (r *Registry) AllGroups() []EntityHandle {
	return read(r, func(tx *Tx) []EntityHandle { return tx.AllGroups() })
}

func (r *Registry) FindNode(name string) (EntityHandle, bool) {
	return read2(r, func(tx *Tx) (EntityHandle, bool) { return tx.FindNode(name) })
}

func (r *Registry) FindGroup(name string) (EntityHandle, bool) {
	return read2(r, func(tx *Tx) (EntityHandle, bool) { return tx.FindGroup(name) })
}

func (r *Registry) FindEntity(name string) (EntityHandle, bool) {
	return read2(r, func(tx *Tx) (EntityHandle, bool) { return tx.FindEntity(name) })
}

func (r *Registry) SetDisplayName(h EntityHandle, displayName string) {
	r.Update(func(tx *Tx) { tx.SetDisplayName(h, displayName) })
}

func (r *Registry) SetNodeVisible(h EntityHandle, visible bool) {
	r.Update(func(tx *Tx) { tx.SetNodeVisible(h, visible) })
}

func (r *Registry) NewPort(owner EntityHandle, name string, o Orientation) PortHandle {
	return write(r, func(tx *Tx) PortHandle { return tx.NewPort(owner, name, o) })
}

func (r *Registry) ReleasePort(p PortHandle) {
	r.Update(func(tx *Tx) { tx.ReleasePort(p) })
}

func (r *Registry) RegisterInput(owner EntityHandle, p PortHandle) {
	r.Update(func(tx *Tx) { tx.RegisterInput(owner, p) })
}

func (r *Registry) RegisterOutput(owner EntityHandle, p PortHandle) {
	r.Update(func(tx *Tx) { tx.RegisterOutput(owner, p) })
}

func (r *Registry) RegisterParameter(owner EntityHandle, p PortHandle) {
	r.Update(func(tx *Tx) { tx.RegisterParameter(owner, p) })
}

func (r *Registry) RegisterPort(p PortHandle) {
	r.Update(func(tx *Tx) { tx.RegisterPort(p) })
}

func (r *Registry) UnregisterInput(owner EntityHandle, p PortHandle) {
	r.Update(func(tx *Tx) { tx.UnregisterInput(owner, p) })
}

func (r *Registry) UnregisterOutput(owner EntityHandle, p PortHandle) {
	r.Update(func(tx *Tx) { tx.UnregisterOutput(owner, p) })
}

func (r *Registry) UnregisterParameter(owner EntityHandle, p PortHandle) {
	r.Update(func(tx *Tx) { tx.UnregisterParameter(owner, p) })
}

func (r *Registry) ResolvePort(ownerName, portName string) (PortHandle, bool) {
	return read2(r, func(tx *Tx) (PortHandle, bool) { return tx.ResolvePort(ownerName, portName) })
}

func (r *Registry) Ports(owner EntityHandle, o Orientation) []PortHandle {
	return read(r, func(tx *Tx) []PortHandle { return tx.Ports(owner, o) })
}

func (r *Registry) RegisteredPorts(owner EntityHandle, o Orientation) []PortHandle {
	return read(r, func(tx *Tx) []PortHandle { return tx.RegisteredPorts(owner, o) })
}

func (r *Registry) PortByName(owner EntityHandle, o Orientation, name string) (PortHandle, bool) {
	return read2(r, func(tx *Tx) (PortHandle, bool) { return tx.PortByName(owner, o, name) })
}

func (r *Registry) Port(p PortHandle) (PortInfo, bool) {
	return read2(r, func(tx *Tx) (PortInfo, bool) { return tx.Port(p) })
}

func (r *Registry) PortTags(p PortHandle) tags.Set {
	return read(r, func(tx *Tx) tags.Set { return tx.PortTags(p) })
}

func (r *Registry) SetPortTags(p PortHandle, s tags.Set) {
	r.Update(func(tx *Tx) { tx.SetPortTags(p, s) })
}

func (r *Registry) UpdatePortTags(p PortHandle, fn func(t *tags.Taggable)) {
	r.Update(func(tx *Tx) { tx.UpdatePortTags(p, fn) })
}

func (r *Registry) SetPortVisible(p PortHandle, visible bool) {
	r.Update(func(tx *Tx) { tx.SetPortVisible(p, visible) })
}

func (r *Registry) SetPortEnabled(p PortHandle, enabled bool) {
	r.Update(func(tx *Tx) { tx.SetPortEnabled(p, enabled) })
}

func (r *Registry) SetPortDisplayName(p PortHandle, displayName string) {
	r.Update(func(tx *Tx) { tx.SetPortDisplayName(p, displayName) })
}

func (r *Registry) RegisterConnection(from, to PortHandle, active bool) (ConnectionHandle, bool) {
	return write2(r, func(tx *Tx) (ConnectionHandle, bool) { return tx.RegisterConnection(from, to, active) })
}

func (r *Registry) UnregisterConnection(c ConnectionHandle) {
	r.Update(func(tx *Tx) { tx.UnregisterConnection(c) })
}

func (r *Registry) Connections(p PortHandle) []ConnectionHandle {
	return read(r, func(tx *Tx) []ConnectionHandle { return tx.Connections(p) })
}

func (r *Registry) HasConnection(p PortHandle) bool {
	return read(r, func(tx *Tx) bool { return tx.HasConnection(p) })
}

func (r *Registry) FindConnection(from PortHandle, toPort, toOwner string) (ConnectionHandle, bool) {
	return read2(r, func(tx *Tx) (ConnectionHandle, bool) { return tx.FindConnection(from, toPort, toOwner) })
}

func (r *Registry) HasConnectionToName(from PortHandle, toPort, toOwner string) bool {
	return read(r, func(tx *Tx) bool { return tx.HasConnectionToName(from, toPort, toOwner) })
}

func (r *Registry) HasConnectionTo(a, b PortHandle) bool {
	return read(r, func(tx *Tx) bool { return tx.HasConnectionTo(a, b) })
}

func (r *Registry) ConnectionBetween(a, b PortHandle) (ConnectionHandle, bool) {
	return read2(r, func(tx *Tx) (ConnectionHandle, bool) { return tx.ConnectionBetween(a, b) })
}

func (r *Registry) Connection(c ConnectionHandle) (ConnectionInfo, bool) {
	return read2(r, func(tx *Tx) (ConnectionInfo, bool) { return tx.Connection(c) })
}

func (r *Registry) AllConnections() []ConnectionHandle {
	return read(r, func(tx *Tx) []ConnectionHandle { return tx.AllConnections() })
}

func (r *Registry) FindConnectionByID(id uuid.UUID) (ConnectionHandle, bool) {
	return read2(r, func(tx *Tx) (ConnectionHandle, bool) { return tx.FindConnectionByID(id) })
}

func (r *Registry) RegisterForwardInput(g EntityHandle, forward, concrete PortHandle) {
	r.Update(func(tx *Tx) { tx.RegisterForwardInput(g, forward, concrete) })
}

func (r *Registry) RegisterForwardOutput(g EntityHandle, forward, concrete PortHandle) {
	r.Update(func(tx *Tx) { tx.RegisterForwardOutput(g, forward, concrete) })
}

func (r *Registry) RegisterForwardParameter(g EntityHandle, forward, concrete PortHandle) {
	r.Update(func(tx *Tx) { tx.RegisterForwardParameter(g, forward, concrete) })
}

func (r *Registry) UnregisterForwardPort(g EntityHandle, forward PortHandle) {
	r.Update(func(tx *Tx) { tx.UnregisterForwardPort(g, forward) })
}

func (r *Registry) ForwardedPortsFrom(forward PortHandle) []PortHandle {
	return read(r, func(tx *Tx) []PortHandle { return tx.ForwardedPortsFrom(forward) })
}

func (r *Registry) PortsForwardedTo(concrete PortHandle) []PortHandle {
	return read(r, func(tx *Tx) []PortHandle { return tx.PortsForwardedTo(concrete) })
}

func (r *Registry) IsForwardPort(p PortHandle) bool {
	return read(r, func(tx *Tx) bool { return tx.IsForwardPort(p) })
}

func (r *Registry) Forwards(g EntityHandle) []ForwardEntry {
	return read(r, func(tx *Tx) []ForwardEntry { return tx.Forwards(g) })
}

func (r *Registry) AddNodeToGroup(g, n EntityHandle) {
	r.Update(func(tx *Tx) { tx.AddNodeToGroup(g, n) })
}

func (r *Registry) RemoveNodeFromGroup(g, n EntityHandle) {
	r.Update(func(tx *Tx) { tx.RemoveNodeFromGroup(g, n) })
}

func (r *Registry) GroupsOf(n EntityHandle) []EntityHandle {
	return read(r, func(tx *Tx) []EntityHandle { return tx.GroupsOf(n) })
}

func (r *Registry) Members(g EntityHandle) []EntityHandle {
	return read(r, func(tx *Tx) []EntityHandle { return tx.Members(g) })
}

func (r *Registry) FindNodeInGroup(name string, g EntityHandle) (EntityHandle, bool) {
	return read2(r, func(tx *Tx) (EntityHandle, bool) { return tx.FindNodeInGroup(name, g) })
}

func (r *Registry) ActivateNode(h EntityHandle) {
	r.Update(func(tx *Tx) { tx.ActivateNode(h) })
}

func (r *Registry) DeactivateNode(h EntityHandle) {
	r.Update(func(tx *Tx) { tx.DeactivateNode(h) })
}

func (r *Registry) IsNodeActive(h EntityHandle) bool {
	return read(r, func(tx *Tx) bool { return tx.IsNodeActive(h) })
}

func (r *Registry) NodeMoved(h EntityHandle) []MoveEvent {
	return read(r, func(tx *Tx) []MoveEvent { return tx.NodeMoved(h) })
}

func (r *Registry) Incompatibility(a, b PortHandle) Reason {
	return read(r, func(tx *Tx) Reason { return tx.Incompatibility(a, b) })
}

func (r *Registry) ArePortsCompatible(a, b PortHandle) bool {
	return read(r, func(tx *Tx) bool { return tx.ArePortsCompatible(a, b) })
}

func (r *Registry) CreateConnectionBetweenPorts(from, to PortHandle) (ConnectionHandle, bool) {
	return write2(r, func(tx *Tx) (ConnectionHandle, bool) { return tx.CreateConnectionBetweenPorts(from, to) })
}

func (r *Registry) CreateConnection(from, to PortHandle, active bool) (ConnectionHandle, bool) {
	return write2(r, func(tx *Tx) (ConnectionHandle, bool) { return tx.CreateConnection(from, to, active) })
}

func (r *Registry) DeleteConnection(c ConnectionHandle) {
	r.Update(func(tx *Tx) { tx.DeleteConnection(c) })
}

func (r *Registry) RemovePort(p PortHandle) {
	r.Update(func(tx *Tx) { tx.RemovePort(p) })
}

func (r *Registry) RemoveNode(h EntityHandle) {
	r.Update(func(tx *Tx) { tx.RemoveNode(h) })
}

func (r *Registry) RefreshParameterState(h EntityHandle) {
	r.Update(func(tx *Tx) { tx.RefreshParameterState(h) })
}

func (r *Registry) Group(nodes ...EntityHandle) (EntityHandle, bool) {
	return write2(r, func(tx *Tx) (EntityHandle, bool) { return tx.Group(nodes...) })
}

func (r *Registry) Ungroup(g EntityHandle) bool {
	return write(r, func(tx *Tx) bool { return tx.Ungroup(g) })
}

func (r *Registry) Snapshot() *Snapshot {
	return read(r, func(tx *Tx) *Snapshot { return tx.Snapshot() })
}
