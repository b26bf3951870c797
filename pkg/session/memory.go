package session

import (
	"context"
	"sync"

	"github.com/matzehuels/deeptime/pkg/errors"
)

// MemoryStore is an in-process store. Sessions are copied on the way in
// and out so callers cannot mutate stored values.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]Session)}
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	if sess.IsExpired() {
		_ = s.Delete(ctx, id)
		return nil, nil
	}
	return &sess, nil
}

func (s *MemoryStore) Set(ctx context.Context, sess *Session) error {
	if sess == nil || !ValidID(sess.ID) {
		return errors.New(errors.ErrCodeInvalidInput, "view needs a valid id")
	}
	s.mu.Lock()
	s.sessions[sess.ID] = *sess
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) List(ctx context.Context) ([]*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		if sess.IsExpired() {
			continue
		}
		out = append(out, &sess)
	}
	SortByCreation(out)
	return out, nil
}

func (s *MemoryStore) Cleanup(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sess := range s.sessions {
		if sess.IsExpired() {
			delete(s.sessions, id)
		}
	}
	return nil
}

func (s *MemoryStore) Close() error { return nil }

// Len returns the number of stored sessions, including expired ones not yet
// cleaned up.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
