// Package session owns the process-wide authentication state machine.
//
// The store moves between four logical states — Unauthenticated,
// Authenticating, Authenticated, Error — encoded in the Session snapshot
// fields rather than an explicit tag, with IsLoading marking the
// transient authenticating phase. Every transition replaces the snapshot
// as a whole under the store mutex, so readers never observe a
// half-applied combination.
package session

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/brokerhub/admin-gateway/internal/core/domain"
	"github.com/brokerhub/admin-gateway/internal/core/ports"
)

// Subscriber receives the new snapshot after every applied transition.
type Subscriber func(domain.Session)

// Store is the only mutable state in the access-control core. It is safe
// for concurrent use; transitions triggered by in-flight logins racing a
// logout are dropped via a generation counter so a stale completion
// cannot resurrect a superseded session.
type Store struct {
	backend ports.AuthBackend
	storage ports.SessionStorage
	log     zerolog.Logger

	mu          sync.RWMutex
	current     domain.Session
	generation  uint64
	subscribers map[int]Subscriber
	nextSubID   int
}

// NewStore creates an empty, unhydrated store. Call InitializeAuth once
// before the first access decision is trusted.
func NewStore(backend ports.AuthBackend, storage ports.SessionStorage, log zerolog.Logger) *Store {
	return &Store{
		backend:     backend,
		storage:     storage,
		log:         log,
		subscribers: make(map[int]Subscriber),
	}
}

// Snapshot returns the current session by value.
func (s *Store) Snapshot() domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Subscribe registers fn to be called after every applied transition and
// returns an unsubscribe function. The guard re-evaluates its decision
// through this hook whenever hydration, authentication, or the role
// changes.
func (s *Store) Subscribe(fn Subscriber) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}
}

// InitializeAuth hydrates the session from durable storage. It never
// fails: absence or corruption of the persisted envelope resolves to an
// unauthenticated, hydrated session. It is the only transition allowed
// to run before Hydrated is true.
func (s *Store) InitializeAuth(ctx context.Context) {
	next := domain.Session{Hydrated: true}

	env, err := s.storage.Load(ctx)
	switch {
	case err != nil:
		s.log.Warn().Err(err).Msg("session hydration failed, starting unauthenticated")
	case env != nil:
		next.Token = env.State.Token
		next.User = env.State.User
		next.IsAuthenticated = next.Token != "" && next.User != nil
	}

	s.mu.Lock()
	s.generation++
	s.current = next
	subs := s.snapshotSubscribersLocked()
	s.mu.Unlock()

	notify(subs, next)
}

// Login authenticates against the backend. On success the session is
// atomically replaced and persisted. On failure the error message is
// captured into the snapshot and any prior token/user is left untouched:
// a failed attempt does not silently log the operator out.
func (s *Store) Login(ctx context.Context, creds ports.Credentials) error {
	gen := s.beginAttempt()

	result, err := s.backend.Login(ctx, creds)
	if err != nil {
		s.failAttempt(gen, err)
		return err
	}
	s.completeAttempt(ctx, gen, result)
	return nil
}

// Register creates an account through the backend; identical transition
// shape to Login against a distinct endpoint.
func (s *Store) Register(ctx context.Context, reg ports.Registration) error {
	gen := s.beginAttempt()

	result, err := s.backend.Register(ctx, reg)
	if err != nil {
		s.failAttempt(gen, err)
		return err
	}
	s.completeAttempt(ctx, gen, result)
	return nil
}

// Logout clears the session and the persisted envelope. It is
// synchronous, always succeeds, and is idempotent: a second call leaves
// the same terminal unauthenticated state.
func (s *Store) Logout(ctx context.Context) {
	s.mu.Lock()
	s.generation++
	s.current = domain.Session{Hydrated: true}
	subs := s.snapshotSubscribersLocked()
	snap := s.current
	s.mu.Unlock()

	if err := s.storage.Clear(ctx); err != nil {
		s.log.Error().Err(err).Msg("failed to clear persisted session")
	}
	notify(subs, snap)
}

// ClearError drops the error message without touching any other field.
func (s *Store) ClearError() {
	s.mu.Lock()
	s.current.Error = ""
	subs := s.snapshotSubscribersLocked()
	snap := s.current
	s.mu.Unlock()
	notify(subs, snap)
}

// beginAttempt enters the Authenticating phase, keeping prior identity
// fields, and returns the generation the completion must match.
func (s *Store) beginAttempt() uint64 {
	s.mu.Lock()
	s.generation++
	gen := s.generation
	next := s.current
	next.IsLoading = true
	next.Error = ""
	s.current = next
	subs := s.snapshotSubscribersLocked()
	snap := s.current
	s.mu.Unlock()

	notify(subs, snap)
	return gen
}

func (s *Store) completeAttempt(ctx context.Context, gen uint64, result *ports.AuthResult) {
	s.mu.Lock()
	if s.generation != gen {
		s.mu.Unlock()
		s.log.Debug().Msg("dropping stale auth completion")
		return
	}
	s.current = domain.Session{
		User:            result.User,
		Token:           result.Token,
		IsAuthenticated: true,
		Hydrated:        true,
	}
	subs := s.snapshotSubscribersLocked()
	snap := s.current
	s.mu.Unlock()

	env := domain.SessionEnvelope{State: domain.SessionState{Token: result.Token, User: result.User}}
	if err := s.storage.Save(ctx, env); err != nil {
		s.log.Error().Err(err).Msg("failed to persist session")
	}
	notify(subs, snap)
}

func (s *Store) failAttempt(gen uint64, cause error) {
	s.mu.Lock()
	if s.generation != gen {
		s.mu.Unlock()
		return
	}
	next := s.current
	next.IsAuthenticated = false
	next.IsLoading = false
	next.Error = cause.Error()
	s.current = next
	subs := s.snapshotSubscribersLocked()
	snap := s.current
	s.mu.Unlock()

	notify(subs, snap)
}

func (s *Store) snapshotSubscribersLocked() []Subscriber {
	subs := make([]Subscriber, 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	return subs
}

// notify runs outside the store mutex so subscribers may read the store.
func notify(subs []Subscriber, snap domain.Session) {
	for _, fn := range subs {
		fn(snap)
	}
}
