package logging

import (
	"fmt"
	"time"
)

func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value.String()}
}

// Error records err under "error". A nil error records a nil value.
func Error(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

func Component(name string) Field { return String("component", name) }
func Path(p string) Field         { return String("path", p) }
func Operation(op string) Field   { return String("operation", op) }

// Graph entities.

func Node(name string) Field  { return String("node", name) }
func Group(name string) Field { return String("group", name) }
func Port(name string) Field  { return String("port", name) }

func Orientation(o fmt.Stringer) Field {
	return String("orientation", o.String())
}

// Reason records why an edit was rejected.
func Reason(r string) Field { return String("reason", r) }
