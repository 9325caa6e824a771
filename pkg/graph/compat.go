package graph

// Incompatibility returns the first rule that forbids connecting a and b, or
// ReasonNone when they may be connected. The rules are checked in order:
// both ports visible and enabled, different owners, opposite directions, both
// tagged, the sink not yet connected, and finally identical tag sets.
//
// The result does not depend on argument order.
func (tx *Tx) Incompatibility(a, b PortHandle) Reason {
	pa, okA := tx.port(a)
	pb, okB := tx.port(b)
	if !okA || !okB {
		return ReasonStaleHandle
	}

	if !tx.portVisible(pa) || !tx.portVisible(pb) {
		return ReasonHidden
	}
	if !pa.enabled || !pb.enabled {
		return ReasonDisabled
	}
	if pa.owner == pb.owner {
		return ReasonSameOwner
	}
	if pa.orientation.IsSink() == pb.orientation.IsSink() {
		return ReasonSameDirection
	}
	if pa.Tags().Empty() || pb.Tags().Empty() {
		return ReasonUntagged
	}

	sink := a
	if pb.orientation.IsSink() {
		sink = b
	}
	if tx.HasConnection(sink) {
		return ReasonSinkConnected
	}

	if !pa.HasSameTags(pb) {
		return ReasonTagMismatch
	}
	return ReasonNone
}

// ArePortsCompatible reports whether a and b may be connected.
func (tx *Tx) ArePortsCompatible(a, b PortHandle) bool {
	return tx.Incompatibility(a, b) == ReasonNone
}
