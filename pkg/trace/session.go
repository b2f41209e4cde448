package trace

import (
	"github.com/denisbrodbeck/machineid"
	"github.com/google/uuid"
)

// NewSessionID returns a fresh boot session identifier.
func NewSessionID() string {
	return uuid.NewString()
}

// NodeID returns a stable, privacy-preserving identifier for the host the
// trace is recorded on, or an empty string if the platform provides none.
// The same host always reports the same id, so traces from repeated bench
// runs can be correlated.
func NodeID() string {
	id, err := machineid.ProtectedID("weathernode")
	if err != nil {
		return ""
	}
	return id
}

// SessionLogger stamps session and node identity onto events before
// forwarding them. Fields already set on an event are left untouched.
type SessionLogger struct {
	inner   Logger
	session string
	node    string
}

// NewSessionLogger wraps inner so every event carries the given session
// and node identifiers.
func NewSessionLogger(inner Logger, session, node string) *SessionLogger {
	return &SessionLogger{inner: inner, session: session, node: node}
}

// Log forwards the event with identity fields filled in.
func (s *SessionLogger) Log(event Event) {
	if event.Session == "" {
		event.Session = s.session
	}
	if event.Node == "" {
		event.Node = s.node
	}
	s.inner.Log(event)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SessionLogger)(nil)
