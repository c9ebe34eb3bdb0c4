package session

import (
	"sync"
	"time"

	"github.com/annaimjamhari/aircond-crm-app/prometheus"
	"github.com/google/uuid"
)

// Session is a server-held record of a successful login.
type Session struct {
	ID        string
	UserID    uint
	Username  string
	ExpiresAt time.Time
}

// Store keeps sessions in process memory. A horizontally scaled deployment
// would need a shared store behind the same interface.
//
// The store owns the active-sessions gauge: every insert increments it and
// every removal decrements it, whichever path the removal takes.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

// NewStore creates an empty session store
func NewStore() *Store {
	return &Store{
		sessions: make(map[string]Session),
	}
}

// Create registers a new session for the user with the given lifetime
func (s *Store) Create(userID uint, username string, ttl time.Duration) Session {
	sess := Session{
		ID:        uuid.New().String(),
		UserID:    userID,
		Username:  username,
		ExpiresAt: time.Now().Add(ttl),
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	prometheus.IncreaseActiveSessions()
	return sess
}

// Get returns the session if it exists and is not expired.
// Expired sessions are removed on access.
func (s *Store) Get(id string) (Session, bool) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return Session{}, false
	}

	if time.Now().After(sess.ExpiresAt) {
		s.Delete(id)
		return Session{}, false
	}

	return sess, true
}

// Delete removes the session; a missing id is a no-op
func (s *Store) Delete(id string) {
	s.mu.Lock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if ok {
		prometheus.DecreaseActiveSessions()
	}
}

// SweepExpired drops every session past its expiry and reports how many
// were removed. Covers sessions whose cookie never comes back.
func (s *Store) SweepExpired() int {
	now := time.Now()

	s.mu.Lock()
	var removed int
	for id, sess := range s.sessions {
		if now.After(sess.ExpiresAt) {
			delete(s.sessions, id)
			removed++
		}
	}
	s.mu.Unlock()

	for i := 0; i < removed; i++ {
		prometheus.DecreaseActiveSessions()
	}
	return removed
}

// Count returns the number of stored sessions, expired ones included
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
