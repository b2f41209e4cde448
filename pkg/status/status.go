// Package status defines the status codes returned by the clock management
// layer. The numeric values of the first eight codes match the firmware's
// status word, so trace files and console output line up with on-device logs.
package status

// Code represents the result of a clock management operation.
type Code uint8

const (
	// OK indicates the operation completed successfully.
	OK Code = 0x00

	// Error indicates a generic failure, such as a PLL configuration whose
	// output frequency exceeds the system limit.
	Error Code = 0x01

	// Timeout indicates a bounded polling loop exhausted its iteration
	// budget before the hardware flag changed state.
	Timeout Code = 0x02

	// Busy indicates the resource is busy and the operation should be
	// retried later.
	Busy Code = 0x03

	// InvalidParam indicates an argument outside its permitted domain.
	InvalidParam Code = 0x04

	// NotReady indicates a precondition flag is not set, such as selecting
	// a system clock source whose oscillator is not yet ready.
	NotReady Code = 0x05

	// ClockError indicates a clock hardware fault or an oscillator that is
	// not present on the board.
	ClockError Code = 0x06

	// AlreadyAcquired indicates a direct acquire of a resource that is
	// already held.
	AlreadyAcquired Code = 0x07

	// AlreadyReleased indicates a release of a resource with no holders.
	AlreadyReleased Code = 0x08

	// DependenciesNotReleased indicates a release of a resource that other
	// resources still depend on.
	DependenciesNotReleased Code = 0x09

	// DependentClockNotConfigured indicates an acquire whose upstream
	// dependency is not held.
	DependentClockNotConfigured Code = 0x0A
)

// String returns the status name.
func (c Code) String() string {
	switch c {
	case OK:
		return "OK"
	case Error:
		return "ERROR"
	case Timeout:
		return "TIMEOUT"
	case Busy:
		return "BUSY"
	case InvalidParam:
		return "INVALID_PARAM"
	case NotReady:
		return "NOT_READY"
	case ClockError:
		return "CLOCK_ERROR"
	case AlreadyAcquired:
		return "ALREADY_ACQUIRED"
	case AlreadyReleased:
		return "ALREADY_RELEASED"
	case DependenciesNotReleased:
		return "DEPENDENCIES_NOT_RELEASED"
	case DependentClockNotConfigured:
		return "DEPENDENT_CLOCK_NOT_CONFIGURED"
	default:
		return "UNKNOWN"
	}
}

// IsOK returns true if the code indicates success.
func (c Code) IsOK() bool {
	return c == OK
}

// IsError returns true if the code indicates a failure.
func (c Code) IsError() bool {
	return c != OK
}
