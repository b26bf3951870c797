// Package session persists view state: the zoom/pan position of a timeline
// viewer and named saved views.
//
// This package defines the [Store] interface with implementations for
// different backends:
//   - memory: in-process storage for development and tests
//   - file: JSON files for the CLI
//   - redis: shared storage for multi-instance servers (subpackage redis)
//   - mongo: document storage (subpackage mongo)
//
// # Architecture
//
// A [State] is the minimal persisted view: translate X, scale K and an
// optional language tag. It round-trips through a query string
// ("x=-140.50&k=2.00") so a view can be shared as a URL.
//
// Viewers publish state on every zoom or pan. A [Publisher] coalesces those
// updates with a trailing [Debouncer] so only the latest state is written
// once input settles (500 ms by default).
//
// # Usage
//
//	store := session.NewMemoryStore()
//	sess := session.New("Cretaceous", state, 0)
//	if err := store.Set(ctx, sess); err != nil {
//	    return err
//	}
//
//	pub := session.NewPublisher(store, "current", session.DefaultDebounce, logger)
//	defer pub.Close()
//	nav.OnChange(func(t view.Transform) { pub.Publish(session.FromTransform(t, "en")) })
package session

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/deeptime/pkg/errors"
)

// Default durations.
const (
	// DefaultDebounce is the quiet period before a view-state write.
	DefaultDebounce = 500 * time.Millisecond

	// DefaultTTL is the lifetime of a saved view; zero means forever.
	DefaultTTL time.Duration = 0
)

// Session is a saved view.
type Session struct {
	ID        string    `json:"id" bson:"_id"`
	Name      string    `json:"name,omitempty" bson:"name,omitempty"`
	State     State     `json:"state" bson:"state"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
	ExpiresAt time.Time `json:"expires_at,omitempty" bson:"expires_at,omitempty"`
}

// IsExpired reports whether the session has a deadline that has passed.
func (s *Session) IsExpired() bool {
	return !s.ExpiresAt.IsZero() && time.Now().After(s.ExpiresAt)
}

// TTL returns the remaining lifetime, or zero for sessions that never
// expire.
func (s *Session) TTL() time.Duration {
	if s.ExpiresAt.IsZero() {
		return 0
	}
	return max(time.Millisecond, time.Until(s.ExpiresAt))
}

// Store is the interface for saved-view storage backends.
type Store interface {
	// Get retrieves a session by ID.
	// Returns nil, nil if the session doesn't exist or has expired.
	Get(ctx context.Context, id string) (*Session, error)

	// Set stores a session, replacing any session with the same ID.
	Set(ctx context.Context, session *Session) error

	// Delete removes a session. Deleting a missing session is not an error.
	Delete(ctx context.Context, id string) error

	// List returns all live sessions ordered by creation time.
	List(ctx context.Context) ([]*Session, error)

	// Cleanup removes expired sessions (may be a no-op where the backend
	// expires keys itself).
	Cleanup(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}

// GenerateID returns a new random session ID.
func GenerateID() string { return uuid.NewString() }

// ValidID reports whether id is acceptable as a storage key: a UUID or a
// short name made of letters, digits, dashes and underscores.
func ValidID(id string) bool {
	if _, err := uuid.Parse(id); err == nil {
		return true
	}
	if id == "" || len(id) > 64 {
		return false
	}
	for _, r := range id {
		ok := r == '-' || r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
		if !ok {
			return false
		}
	}
	return true
}

// New creates a saved view with a fresh ID. A positive ttl sets an expiry.
func New(name string, st State, ttl time.Duration) *Session {
	now := time.Now()
	s := &Session{
		ID:        GenerateID(),
		Name:      name,
		State:     st,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if ttl > 0 {
		s.ExpiresAt = now.Add(ttl)
	}
	return s
}

// Lookup fetches a session and fails with ErrCodeSessionNotFound when it is
// missing or expired.
func Lookup(ctx context.Context, store Store, id string) (*Session, error) {
	if !ValidID(id) {
		return nil, errors.New(errors.ErrCodeInvalidInput, "invalid session id %q", id)
	}
	sess, err := store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, errors.New(errors.ErrCodeSessionNotFound, "view %q not found", id)
	}
	return sess, nil
}
