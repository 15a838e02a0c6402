package domain

// Session is the single mutable entity of the access-control core: the
// process-wide authentication state. It is handled as an immutable value
// snapshot — the session store replaces the whole snapshot on every
// transition so no reader observes a half-applied combination (token set
// but IsAuthenticated still false).
//
// Invariant: once Hydrated is true,
// IsAuthenticated == (Token != "" && User != nil).
type Session struct {
	User            *User  `json:"user"`
	Token           string `json:"token"`
	IsAuthenticated bool   `json:"is_authenticated"`
	IsLoading       bool   `json:"is_loading"`
	Error           string `json:"error,omitempty"`
	Hydrated        bool   `json:"hydrated"`
}

// Role returns the session user's role, or the empty Role when no user
// is attached. Callers must still check IsAuthenticated before trusting it.
func (s Session) Role() Role {
	if s.User == nil {
		return ""
	}
	return s.User.Role
}

// SessionEnvelope is the durable-storage form of a session: only the
// credential and identity survive a restart, wrapped in a "state" object
// for compatibility with the persistence convention of the previous
// admin client.
type SessionEnvelope struct {
	State SessionState `json:"state"`
}

// SessionState is the persisted subset of Session.
type SessionState struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}
