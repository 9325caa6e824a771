package constraints

import (
	"github.com/dd0wney/cluso-nodeflow/pkg/graph"
)

// GraphReader defines the read-only operations needed for constraint validation.
// *graph.Snapshot satisfies it; tests can wrap a snapshot to inject faults.
type GraphReader interface {
	// Entity operations
	Entities() []graph.NodeInfo
	Entity(h graph.EntityHandle) (graph.NodeInfo, bool)
	Members(g graph.EntityHandle) []graph.EntityHandle

	// Port operations
	Ports(owner graph.EntityHandle) []graph.PortInfo
	Port(p graph.PortHandle) (graph.PortInfo, bool)
	Attached(p graph.PortHandle) []graph.ConnectionHandle

	// Connection operations
	Connections() []graph.ConnectionInfo
	Connection(c graph.ConnectionHandle) (graph.ConnectionInfo, bool)

	Forwards() []graph.ForwardEntry
}

// Severity indicates the importance of a violation
type Severity int

const (
	Info Severity = iota
	Warning
	Error
)

func (s Severity) String() string {
	switch s {
	case Info:
		return "Info"
	case Warning:
		return "Warning"
	case Error:
		return "Error"
	default:
		return "Unknown"
	}
}

// ViolationType categorizes the type of constraint violation
type ViolationType int

const (
	DanglingConnection ViolationType = iota
	TagMismatch
	CardinalityViolation
	ForwardViolation
	InvalidStructure
	UniquenessViolation
)

func (vt ViolationType) String() string {
	switch vt {
	case DanglingConnection:
		return "DanglingConnection"
	case TagMismatch:
		return "TagMismatch"
	case CardinalityViolation:
		return "CardinalityViolation"
	case ForwardViolation:
		return "ForwardViolation"
	case InvalidStructure:
		return "InvalidStructure"
	case UniquenessViolation:
		return "UniquenessViolation"
	default:
		return "Unknown"
	}
}

// Violation represents a constraint violation. Entity, Port and Connection
// are set when the violation can be pinned to one.
type Violation struct {
	Type       ViolationType
	Severity   Severity
	Entity     string
	Port       *graph.PortRef
	Connection string
	Constraint string
	Message    string
	Details    map[string]any
}

// Constraint is the interface that all constraint types must implement.
type Constraint interface {
	// Validate checks the constraint against the graph
	// Returns a list of violations (empty if valid)
	Validate(graph GraphReader) ([]Violation, error)

	// Name returns a human-readable name for the constraint
	Name() string
}

func refPtr(r graph.PortRef) *graph.PortRef {
	return &r
}
