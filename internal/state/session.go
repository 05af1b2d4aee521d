package state

// Session carries the per-device application state that every component
// needing a client id receives explicitly. It is initialized once at startup
// and never mutated mid-session except on identity refresh.
type Session struct {
	ClientID string
}

// NewSession creates a session for an identified client.
func NewSession(clientID string) *Session {
	return &Session{ClientID: clientID}
}

// ID returns the client id.
func (s *Session) ID() string { return s.ClientID }
