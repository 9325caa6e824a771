package graph

import (
	"github.com/google/uuid"

	"github.com/dd0wney/cluso-nodeflow/pkg/tags"
)

// Kind discriminates plain nodes from groups.
type Kind uint8

const (
	KindNode Kind = iota
	KindGroup
)

func (k Kind) String() string {
	switch k {
	case KindNode:
		return "node"
	case KindGroup:
		return "group"
	default:
		return "unknown"
	}
}

// Orientation is the direction of a port.
type Orientation uint8

const (
	Input Orientation = iota
	Output
	Parameter
)

var orientations = [...]Orientation{Input, Output, Parameter}

func (o Orientation) String() string {
	switch o {
	case Input:
		return "input"
	case Output:
		return "output"
	case Parameter:
		return "parameter"
	default:
		return "unknown"
	}
}

// IsSink reports whether ports of this orientation receive connections.
func (o Orientation) IsSink() bool {
	return o == Input || o == Parameter
}

// ParseOrientation maps "input", "output" or "parameter" (or their first
// letter) to an Orientation.
func ParseOrientation(s string) (Orientation, bool) {
	switch s {
	case "input", "in", "i":
		return Input, true
	case "output", "out", "o":
		return Output, true
	case "parameter", "param", "p":
		return Parameter, true
	default:
		return 0, false
	}
}

// PortRef names a port by its owner and port name.
type PortRef struct {
	Owner string
	Port  string
}

func (r PortRef) String() string {
	return r.Owner + "." + r.Port
}

// Reason explains why a mutation or compatibility check was refused.
type Reason string

const (
	ReasonNone           Reason = ""
	ReasonStaleHandle    Reason = "stale_handle"
	ReasonInvalidName    Reason = "invalid_name"
	ReasonDuplicateName  Reason = "duplicate_name"
	ReasonNotRegistered  Reason = "not_registered"
	ReasonIsGroup        Reason = "is_group"
	ReasonNotGroup       Reason = "not_group"
	ReasonOrientation    Reason = "orientation"
	ReasonForeignPort    Reason = "foreign_port"
	ReasonUnclassifiable Reason = "unclassifiable"
	ReasonOwnerUnknown   Reason = "owner_unknown"
	ReasonForwardTaken   Reason = "forward_taken"
	ReasonEmptyGroup     Reason = "empty_group"
	ReasonHidden         Reason = "hidden"
	ReasonDisabled       Reason = "disabled"
	ReasonSameOwner      Reason = "same_owner"
	ReasonSameDirection  Reason = "same_direction"
	ReasonUntagged       Reason = "untagged"
	ReasonSinkConnected  Reason = "sink_connected"
	ReasonTagMismatch    Reason = "tag_mismatch"
	ReasonDuplicate      Reason = "duplicate_connection"
)

type entity struct {
	kind        Kind
	name        string
	displayName string
	active      bool
	visible     bool
	ports       [3][]PortHandle
}

type port struct {
	tags.Taggable

	name        string
	displayName string
	orientation Orientation
	owner       EntityHandle
	visible     bool
	enabled     bool
}

type connection struct {
	id        uuid.UUID
	source    PortHandle
	sink      PortHandle
	sourceRef PortRef
	sinkRef   PortRef
	active    bool
}

// portTable is one orientation of a descriptor: registered ports in order,
// each with the connections attached to it.
type portTable struct {
	order []PortHandle
	conns map[PortHandle][]ConnectionHandle
}

func newPortTable() portTable {
	return portTable{conns: make(map[PortHandle][]ConnectionHandle)}
}

func (t *portTable) has(p PortHandle) bool {
	_, ok := t.conns[p]
	return ok
}

func (t *portTable) add(p PortHandle) {
	if t.has(p) {
		return
	}
	t.order = append(t.order, p)
	t.conns[p] = nil
}

func (t *portTable) remove(p PortHandle) {
	if !t.has(p) {
		return
	}
	delete(t.conns, p)
	t.order = removeValue(t.order, p)
}

// forwardTable maps a group's forward port to the concrete ports behind it.
type forwardTable struct {
	order   []PortHandle
	targets map[PortHandle][]PortHandle
}

func newForwardTable() forwardTable {
	return forwardTable{targets: make(map[PortHandle][]PortHandle)}
}

// forwardOf returns the forward port that targets concrete, if any.
func (t *forwardTable) forwardOf(concrete PortHandle) (PortHandle, bool) {
	for _, fwd := range t.order {
		for _, c := range t.targets[fwd] {
			if c == concrete {
				return fwd, true
			}
		}
	}
	return PortHandle{}, false
}

func (t *forwardTable) drop(fwd PortHandle) {
	if _, ok := t.targets[fwd]; !ok {
		return
	}
	delete(t.targets, fwd)
	t.order = removeValue(t.order, fwd)
}

type groupState struct {
	members []EntityHandle
	forward [3]forwardTable
}

type descriptor struct {
	id     uint64
	entity EntityHandle
	kind   Kind
	ports  [3]portTable
	group  *groupState
}

func newDescriptor(id uint64, h EntityHandle, kind Kind) *descriptor {
	d := &descriptor{id: id, entity: h, kind: kind}
	for _, o := range orientations {
		d.ports[o] = newPortTable()
	}
	if kind == KindGroup {
		d.group = &groupState{}
		for _, o := range orientations {
			d.group.forward[o] = newForwardTable()
		}
	}
	return d
}

// NodeInfo is a read-only view of a node or group.
type NodeInfo struct {
	Handle      EntityHandle
	ID          uint64 // zero until registered
	Kind        Kind
	Name        string
	DisplayName string
	Active      bool
	Visible     bool
	Registered  bool
}

// PortInfo is a read-only view of a port.
type PortInfo struct {
	Handle      PortHandle
	Owner       EntityHandle
	OwnerName   string
	Name        string
	DisplayName string
	Orientation Orientation
	Tags        tags.Set
	Visible     bool
	Enabled     bool
	Registered  bool
}

// Ref returns the name-based reference of the port.
func (p PortInfo) Ref() PortRef {
	return PortRef{Owner: p.OwnerName, Port: p.Name}
}

// ConnectionInfo is a read-only view of a connection.
type ConnectionInfo struct {
	Handle    ConnectionHandle
	ID        uuid.UUID
	Source    PortHandle
	Sink      PortHandle
	SourceRef PortRef
	SinkRef   PortRef
	Active    bool
}

// ForwardEntry is one row of a group's forwarding table.
type ForwardEntry struct {
	Group       EntityHandle
	Orientation Orientation
	Forward     PortHandle
	Targets     []PortHandle
}

// MoveEvent asks the view to refresh one end of a connection. PositionFrom
// and BoundsFrom name the ports whose geometry to use; for groups they may be
// the forward port standing in for a hidden concrete port.
type MoveEvent struct {
	Connection   ConnectionHandle
	Port         PortHandle
	SinkSide     bool
	PositionFrom PortHandle
	BoundsFrom   PortHandle
}

// GeometryListener receives move events. It is called with the registry
// lock held and must not call back into the Registry.
type GeometryListener interface {
	ConnectionMoved(ev MoveEvent)
}

// GeometryListenerFunc adapts a function to GeometryListener.
type GeometryListenerFunc func(ev MoveEvent)

func (f GeometryListenerFunc) ConnectionMoved(ev MoveEvent) { f(ev) }

func removeValue[T comparable](s []T, v T) []T {
	out := s[:0]
	for _, x := range s {
		if x != v {
			out = append(out, x)
		}
	}
	return out
}

func containsValue[T comparable](s []T, v T) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}
