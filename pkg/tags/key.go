// Package tags assigns small stable indices to capability markers and gives
// entities a fixed-width bitmask over those indices.
//
// A tag is identified by a Key. Keys come in two flavours: a Go type
// (TypeKey[T]) for markers declared in code, and a plain name (NameKey) for
// markers that only exist at run time, e.g. typed from a shell. Both live in
// the same index space of a Registry.
//
// Two ports are type-compatible only when their tag sets are identical, so the
// registry is the single authority on which bit means what. The Registry is an
// ordinary value: construct one per editor and pass it to whatever needs to
// register or query tags.
package tags

import (
	"reflect"
)

// Key identifies a tag. The zero Key is invalid.
type Key struct {
	id   any
	name string
}

// TypeKey returns the key for the marker type T. Distinct types always yield
// distinct keys, even when their printed names collide.
func TypeKey[T any]() Key {
	t := reflect.TypeOf((*T)(nil)).Elem()
	return Key{id: t, name: t.String()}
}

// NameKey returns the key for a named marker.
func NameKey(name string) Key {
	if name == "" {
		return Key{}
	}
	return Key{id: name, name: name}
}

// Name returns the display name of the key.
func (k Key) Name() string {
	return k.name
}

// IsZero reports whether k is the invalid zero key.
func (k Key) IsZero() bool {
	return k.id == nil
}

func (k Key) String() string {
	return k.name
}
