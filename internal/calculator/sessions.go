package calculator

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"ladder-calculator/internal/ladder"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionLimit    = errors.New("session limit reached")
)

// SessionStore keeps one ladder.Session per form. Each session is the single
// writer of its own result; the store lock keeps concurrent requests for the
// same ID in order, so the last write wins.
type SessionStore struct {
	mu        sync.Mutex
	sessions  map[string]*ladder.Session
	validator ladder.Validator
	limit     int
}

// NewSessionStore creates an empty store. A limit of 0 means unlimited.
func NewSessionStore(v ladder.Validator, limit int) *SessionStore {
	return &SessionStore{
		sessions:  make(map[string]*ladder.Session),
		validator: v,
		limit:     limit,
	}
}

// Create opens a session in the given mode with an empty result.
func (s *SessionStore) Create(mode ladder.Mode) (string, ladder.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.limit > 0 && len(s.sessions) >= s.limit {
		return "", ladder.Result{}, ErrSessionLimit
	}

	sess := ladder.NewSession(s.validator)
	// Nothing is filled in yet, so this only switches the mode.
	res, _ := sess.Recompute(ladder.RawInput{Mode: mode})

	id := uuid.NewString()
	s.sessions[id] = sess
	s.report()

	return id, res, nil
}

// Get returns the current result of a session.
func (s *SessionStore) Get(id string) (ladder.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return ladder.Result{}, ErrSessionNotFound
	}
	return sess.Result(), nil
}

// Recompute feeds a new raw snapshot to a session. updated is false when the
// snapshot was rejected and the previous result was kept.
func (s *SessionStore) Recompute(id string, raw ladder.RawInput) (res ladder.Result, updated bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return ladder.Result{}, false, ErrSessionNotFound
	}

	res, updated = sess.Recompute(raw)
	return res, updated, nil
}

// Delete drops a session.
func (s *SessionStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, id)
	s.report()

	return nil
}

// Len returns the number of live sessions.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// report must be called with mu held.
func (s *SessionStore) report() {
	promSessions.Set(float64(len(s.sessions)))
}
