package graph

import "fmt"

// EntityHandle addresses a node or group. The zero value is invalid, and a
// handle whose slot has been released never resolves again, even after the
// slot is reused.
type EntityHandle struct {
	index uint32
	gen   uint32
}

// PortHandle addresses a port.
type PortHandle struct {
	index uint32
	gen   uint32
}

// ConnectionHandle addresses a connection.
type ConnectionHandle struct {
	index uint32
	gen   uint32
}

func (h EntityHandle) IsZero() bool     { return h.gen == 0 }
func (h PortHandle) IsZero() bool       { return h.gen == 0 }
func (h ConnectionHandle) IsZero() bool { return h.gen == 0 }

func (h EntityHandle) String() string     { return fmt.Sprintf("e%d.%d", h.index, h.gen) }
func (h PortHandle) String() string       { return fmt.Sprintf("p%d.%d", h.index, h.gen) }
func (h ConnectionHandle) String() string { return fmt.Sprintf("c%d.%d", h.index, h.gen) }

type slot[T any] struct {
	gen  uint32
	live bool
	val  T
}

// arena stores values in reusable slots. Releasing a slot bumps its
// generation, invalidating every outstanding handle to it.
type arena[T any] struct {
	slots []slot[T]
	free  []uint32
	live  int
}

func (a *arena[T]) alloc(v T) (index, gen uint32) {
	if n := len(a.free); n > 0 {
		index = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		a.slots = append(a.slots, slot[T]{gen: 1})
		index = uint32(len(a.slots) - 1)
	}
	s := &a.slots[index]
	s.live = true
	s.val = v
	a.live++
	return index, s.gen
}

func (a *arena[T]) get(index, gen uint32) (*T, bool) {
	if gen == 0 || int(index) >= len(a.slots) {
		return nil, false
	}
	s := &a.slots[index]
	if !s.live || s.gen != gen {
		return nil, false
	}
	return &s.val, true
}

func (a *arena[T]) release(index, gen uint32) bool {
	if _, ok := a.get(index, gen); !ok {
		return false
	}
	s := &a.slots[index]
	var zero T
	s.val = zero
	s.live = false
	s.gen++
	if s.gen == 0 {
		s.gen = 1
	}
	a.free = append(a.free, index)
	a.live--
	return true
}

// each visits live slots in index order.
func (a *arena[T]) each(fn func(index, gen uint32, v *T)) {
	for i := range a.slots {
		if a.slots[i].live {
			fn(uint32(i), a.slots[i].gen, &a.slots[i].val)
		}
	}
}
