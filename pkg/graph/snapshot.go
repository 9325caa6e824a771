package graph

import "time"

// Snapshot is an immutable copy of the registered graph. It is safe to use
// after the lock is released, from any goroutine.
type Snapshot struct {
	TakenAt time.Time

	entities    []NodeInfo
	entityIndex map[EntityHandle]int
	ports       map[EntityHandle][]PortInfo
	portIndex   map[PortHandle]PortInfo
	attached    map[PortHandle][]ConnectionHandle
	connections []ConnectionInfo
	connIndex   map[ConnectionHandle]int
	forwards    []ForwardEntry
	members     map[EntityHandle][]EntityHandle
}

// Snapshot copies every registered node, group, port, connection and
// forwarding entry.
func (tx *Tx) Snapshot() *Snapshot {
	s := &Snapshot{
		TakenAt:     time.Now(),
		entityIndex: make(map[EntityHandle]int),
		ports:       make(map[EntityHandle][]PortInfo),
		portIndex:   make(map[PortHandle]PortInfo),
		attached:    make(map[PortHandle][]ConnectionHandle),
		connIndex:   make(map[ConnectionHandle]int),
		members:     make(map[EntityHandle][]EntityHandle),
	}

	add := func(h EntityHandle, d *descriptor) {
		info, ok := tx.Node(h)
		if !ok {
			return
		}
		s.entityIndex[h] = len(s.entities)
		s.entities = append(s.entities, info)
		for _, o := range orientations {
			table := d.ports[o]
			for _, p := range table.order {
				pi, ok := tx.Port(p)
				if !ok {
					continue
				}
				s.ports[h] = append(s.ports[h], pi)
				s.portIndex[p] = pi
				s.attached[p] = append([]ConnectionHandle(nil), table.conns[p]...)
			}
		}
		if d.group != nil {
			s.members[h] = append([]EntityHandle(nil), d.group.members...)
			s.forwards = append(s.forwards, tx.Forwards(h)...)
		}
	}
	for _, h := range tx.r.nodeOrder {
		add(h, tx.r.nodes[h])
	}
	for _, h := range tx.r.groupOrder {
		add(h, tx.r.groups[h])
	}

	for _, c := range tx.AllConnections() {
		if info, ok := tx.Connection(c); ok {
			s.connIndex[c] = len(s.connections)
			s.connections = append(s.connections, info)
		}
	}
	return s
}

// Entities returns registered nodes followed by registered groups.
func (s *Snapshot) Entities() []NodeInfo {
	return s.entities
}

func (s *Snapshot) Entity(h EntityHandle) (NodeInfo, bool) {
	i, ok := s.entityIndex[h]
	if !ok {
		return NodeInfo{}, false
	}
	return s.entities[i], true
}

// Ports returns the registered ports of owner: inputs, then outputs, then
// parameters, each in registration order.
func (s *Snapshot) Ports(owner EntityHandle) []PortInfo {
	return s.ports[owner]
}

func (s *Snapshot) Port(p PortHandle) (PortInfo, bool) {
	info, ok := s.portIndex[p]
	return info, ok
}

// Attached returns the connections stored directly on p. Connections reached
// through forwarding are not included.
func (s *Snapshot) Attached(p PortHandle) []ConnectionHandle {
	return s.attached[p]
}

func (s *Snapshot) Connections() []ConnectionInfo {
	return s.connections
}

func (s *Snapshot) Connection(c ConnectionHandle) (ConnectionInfo, bool) {
	i, ok := s.connIndex[c]
	if !ok {
		return ConnectionInfo{}, false
	}
	return s.connections[i], true
}

func (s *Snapshot) Forwards() []ForwardEntry {
	return s.forwards
}

func (s *Snapshot) Members(g EntityHandle) []EntityHandle {
	return s.members[g]
}
