package conversation

import (
	"sync"
	"time"
)

// Step is the current position in the booking dialogue.
type Step int

const (
	StepChooseProfessional Step = iota + 1
	StepChooseDate
	StepChooseTime
	StepChooseServices
	StepGetName
)

// Session holds the partially collected booking for one customer. Sessions
// are in-memory only: a process restart drops mid-dialogue state and the
// customer starts over.
type Session struct {
	Step         Step
	Professional string
	Date         time.Time
	TimeSlot     string
	Services     []string
	// Offered is the availability list the customer was just shown; time
	// selection is validated against it before re-validation at insert.
	Offered []string
}

// SessionStore keeps sessions keyed by customer identity. Clearing a session
// is an explicit removal, never assignment of an empty marker.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
	locks    map[string]*sync.Mutex
}

// NewSessionStore creates an empty session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*Session),
		locks:    make(map[string]*sync.Mutex),
	}
}

// Get returns the session for the identity, or nil.
func (s *SessionStore) Get(identity string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[identity]
}

// Put stores the session for the identity.
func (s *SessionStore) Put(identity string, session *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[identity] = session
}

// Clear removes the identity's session.
func (s *SessionStore) Clear(identity string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, identity)
}

// lock returns the per-identity mutex, creating it on first use. Messages
// from one customer are processed strictly in arrival order; customers never
// block each other.
func (s *SessionStore) lock(identity string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	mu, ok := s.locks[identity]
	if !ok {
		mu = &sync.Mutex{}
		s.locks[identity] = mu
	}
	return mu
}
