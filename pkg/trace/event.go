package trace

import (
	"time"
)

// Event represents a single clock layer operation.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// Session identifies the boot session (UUID).
	Session string `cbor:"2,keyasint,omitempty"`

	// Node identifies the node or simulator host the trace came from.
	Node string `cbor:"3,keyasint,omitempty"`

	// Op is the operation performed.
	Op Op `cbor:"4,keyasint"`

	// Target names the resource, e.g. "CLOCK:MSI" or "BUS:APB1".
	Target string `cbor:"5,keyasint"`

	// Status is the operation's status code.
	Status uint8 `cbor:"6,keyasint"`

	// FreqHz is the resulting frequency for operations that set one.
	FreqHz uint32 `cbor:"7,keyasint,omitempty"`

	// Usage is the target's usage count after the operation. Present for
	// tracked targets, absent for raw targets.
	Usage *uint32 `cbor:"8,keyasint,omitempty"`

	// Detail carries free-form context, e.g. the scenario phase name.
	Detail string `cbor:"9,keyasint,omitempty"`
}

// Op identifies the kind of clock operation an event records.
type Op uint8

const (
	// OpAcquire is a usage tracker acquire.
	OpAcquire Op = 0

	// OpRelease is a usage tracker release.
	OpRelease Op = 1

	// OpInit is a clock or peripheral bring-up sequence.
	OpInit Op = 2

	// OpDeinit is a clock or peripheral teardown sequence.
	OpDeinit Op = 3

	// OpSelect is a system clock source switch.
	OpSelect Op = 4

	// OpDriveChange is an LSE drive strength change.
	OpDriveChange Op = 5

	// OpReset is a usage table reset.
	OpReset Op = 6

	// OpPhase marks a scenario phase boundary in bench runs.
	OpPhase Op = 7
)

// String returns the operation name.
func (o Op) String() string {
	switch o {
	case OpAcquire:
		return "ACQUIRE"
	case OpRelease:
		return "RELEASE"
	case OpInit:
		return "INIT"
	case OpDeinit:
		return "DEINIT"
	case OpSelect:
		return "SELECT"
	case OpDriveChange:
		return "DRIVE_CHANGE"
	case OpReset:
		return "RESET"
	case OpPhase:
		return "PHASE"
	default:
		return "UNKNOWN"
	}
}

// U32 returns a pointer to v, for optional count fields.
func U32(v uint32) *uint32 {
	return &v
}
