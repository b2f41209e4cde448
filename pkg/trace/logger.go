package trace

// Logger is the interface consumers implement to receive clock events.
// Pass NoopLogger to disable tracing.
type Logger interface {
	// Log records a clock event. Implementations must not fail the caller;
	// errors are swallowed or surfaced out of band.
	Log(event Event)
}

// NoopLogger discards all events. Use when tracing is disabled.
// NoopLogger is safe for concurrent use and usable as a zero value.
type NoopLogger struct{}

// Log discards the event.
func (NoopLogger) Log(Event) {}

// Compile-time interface satisfaction check.
var _ Logger = NoopLogger{}
