package graph

import (
	"sort"
	"strings"

	"github.com/dd0wney/cluso-nodeflow/pkg/logging"
)

// GroupTitleSeparator joins member names into a group name.
const GroupTitleSeparator = " . "

// Group wraps registered plain nodes in a new group. The group is named after
// its members sorted by display name. Members are hidden, and every member
// input and output gets a forward port named "<member>_<port>" on the group.
// Parameters are bucketed by that same name and mirrored once per bucket.
// Existing connections stay on the concrete ports.
func (tx *Tx) Group(nodes ...EntityHandle) (EntityHandle, bool) {
	const op = "group"
	tx.mustWrite(op)

	var members []EntityHandle
	for _, n := range nodes {
		if _, ok := tx.r.nodes[n]; !ok {
			tx.reject(op, ReasonNotRegistered, logging.Node(tx.entityName(n)))
			return EntityHandle{}, false
		}
		if !containsValue(members, n) {
			members = append(members, n)
		}
	}
	if len(members) == 0 {
		tx.reject(op, ReasonEmptyGroup)
		return EntityHandle{}, false
	}

	g := tx.allocEntity(KindGroup, tx.groupTitle(members), "")
	if _, ok := tx.RegisterGroup(g); !ok {
		tx.r.entities.release(g.index, g.gen)
		return EntityHandle{}, false
	}
	for _, n := range members {
		tx.AddNodeToGroup(g, n)
		tx.SetNodeVisible(n, false)
	}

	tx.mirrorPorts(g, members)
	tx.mirrorParameters(g, members)
	tx.RefreshParameterState(g)
	tx.NodeMoved(g)

	tx.success(op)
	return g, true
}

func (tx *Tx) groupTitle(members []EntityHandle) string {
	sorted := append([]EntityHandle(nil), members...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, _ := tx.entity(sorted[i])
		b, _ := tx.entity(sorted[j])
		return a.displayName < b.displayName
	})
	names := make([]string, len(sorted))
	for i, h := range sorted {
		names[i] = tx.entityName(h)
	}
	return strings.Join(names, GroupTitleSeparator)
}

func (tx *Tx) mirrorPorts(g EntityHandle, members []EntityHandle) {
	for _, n := range members {
		d := tx.r.nodes[n]
		for _, o := range []Orientation{Input, Output} {
			for _, concrete := range d.ports[o].order {
				tx.mirror(g, o, concrete)
			}
		}
	}
}

func (tx *Tx) mirrorParameters(g EntityHandle, members []EntityHandle) {
	buckets := make(map[string]PortHandle)
	for _, n := range members {
		for _, p := range tx.r.nodes[n].ports[Parameter].order {
			buckets[tx.forwardName(p)] = p
		}
	}
	names := make([]string, 0, len(buckets))
	for name := range buckets {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		tx.mirror(g, Parameter, buckets[name])
	}
}

func (tx *Tx) forwardName(concrete PortHandle) string {
	ref := tx.refOf(concrete)
	return ref.Owner + "_" + ref.Port
}

// mirror creates the forward port for concrete on g and registers it.
func (tx *Tx) mirror(g EntityHandle, o Orientation, concrete PortHandle) {
	con, ok := tx.port(concrete)
	if !ok {
		return
	}
	owner := tx.entityName(con.owner)
	fwd := tx.newPort(g, owner+"_"+con.name, owner+"_"+con.displayName, o)
	if fwd.IsZero() {
		return
	}
	tx.registerPort("register_port", o, g, fwd)
	tx.registerForward("register_forward_port", o, g, fwd, concrete)
}

// Ungroup dissolves g. Forwarding entries and forward ports are dropped,
// members not hidden by another group become visible again and the group is
// released. Connections between concrete ports are untouched, so the topology
// is exactly what it was before Group.
func (tx *Tx) Ungroup(g EntityHandle) bool {
	const op = "ungroup"
	tx.mustWrite(op)
	if _, ok := tx.r.groups[g]; !ok {
		tx.reject(op, ReasonNotGroup, logging.Group(tx.entityName(g)))
		return false
	}

	members := tx.Members(g)
	for _, entry := range tx.Forwards(g) {
		tx.UnregisterForwardPort(g, entry.Forward)
	}
	for _, n := range members {
		tx.RemoveNodeFromGroup(g, n)
	}
	tx.Release(g)
	tx.restoreMembers(members)
	for _, n := range members {
		tx.RefreshParameterState(n)
		tx.NodeMoved(n)
	}

	tx.success(op)
	return true
}
