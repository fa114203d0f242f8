package build

import (
	"context"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/xenking/robobuild/internal/domain/part"
)

var (
	// ErrSessionNotFound is returned for unknown or evicted session ids.
	ErrSessionNotFound = errors.New("build session not found")
	// ErrTooManySessions is returned by Create when the store is full.
	ErrTooManySessions = errors.New("too many build sessions")
)

// session serializes access to a single Configurator.
type session struct {
	mu       sync.Mutex
	cfg      *Configurator
	lastUsed time.Time
	// closed is set under mu once the session has left the store.
	closed bool
}

// Store keeps one Configurator per session. Operations on a session run one
// at a time; different sessions proceed independently.
type Store struct {
	catalog *part.Catalog
	ttl     time.Duration
	max     int
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*session
}

// NewStore creates a Store whose sessions expire after ttl of inactivity and
// which holds at most maxSessions live sessions. A zero ttl disables expiry,
// a zero maxSessions disables the cap.
func NewStore(catalog *part.Catalog, ttl time.Duration, maxSessions int) *Store {
	return &Store{
		catalog:  catalog,
		ttl:      ttl,
		max:      maxSessions,
		now:      time.Now,
		sessions: make(map[string]*session),
	}
}

// Catalog returns the catalog shared by every session.
func (s *Store) Catalog() *part.Catalog {
	return s.catalog
}

// Create starts a new session with an empty selection.
func (s *Store) Create() (string, error) {
	id := uuid.New().String()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.max > 0 && len(s.sessions) >= s.max {
		return "", ErrTooManySessions
	}
	s.sessions[id] = &session{cfg: NewConfigurator(s.catalog), lastUsed: s.now()}
	return id, nil
}

// Do runs fn against the session's Configurator while holding the session lock.
func (s *Store) Do(id string, fn func(c *Configurator) error) error {
	sess, err := s.lookup(id)
	if err != nil {
		return err
	}
	return s.run(sess, fn)
}

func (s *Store) run(sess *session, fn func(c *Configurator) error) error {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	// Delete or Sweep may have removed the session after lookup.
	if sess.closed {
		return ErrSessionNotFound
	}
	sess.lastUsed = s.now()
	return fn(sess.cfg)
}

// View runs fn against the session's Configurator for reading. It takes the
// same lock as Do so fn sees a consistent selection.
func (s *Store) View(id string, fn func(c *Configurator)) error {
	return s.Do(id, func(c *Configurator) error {
		fn(c)
		return nil
	})
}

// Delete tears a session down and reports whether it existed.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if !ok {
		return false
	}
	sess.mu.Lock()
	sess.closed = true
	sess.mu.Unlock()
	return true
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep evicts sessions idle for longer than the TTL and returns how many
// were removed.
func (s *Store) Sweep(now time.Time) int {
	if s.ttl <= 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, sess := range s.sessions {
		// TryLock skips sessions that are in use right now.
		if !sess.mu.TryLock() {
			continue
		}
		if now.Sub(sess.lastUsed) >= s.ttl {
			sess.closed = true
			delete(s.sessions, id)
			removed++
		}
		sess.mu.Unlock()
	}
	return removed
}

// Run sweeps expired sessions every interval until ctx is cancelled.
func (s *Store) Run(ctx context.Context, interval time.Duration, onSweep func(removed int)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := s.Sweep(now); n > 0 && onSweep != nil {
				onSweep(n)
			}
		}
	}
}

func (s *Store) lookup(id string) (*session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}
