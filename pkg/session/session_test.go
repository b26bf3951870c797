package session

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/deeptime/pkg/errors"
	"github.com/matzehuels/deeptime/pkg/observability"
	"github.com/matzehuels/deeptime/pkg/view"
)

func TestStateQueryRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		state State
		query string
	}{
		{"identity", State{X: 0, K: 1}, "k=1.00&x=0.00"},
		{"zoomed", State{X: -140.5, K: 2}, "k=2.00&x=-140.50"},
		{"lang", State{X: -1, K: 8, Lang: "de"}, "k=8.00&lang=de&x=-1.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.Query(); got != tt.query {
				t.Errorf("Query() = %q, want %q", got, tt.query)
			}
			got, ok := ParseStateQuery(tt.query)
			if !ok {
				t.Fatalf("ParseStateQuery(%q) failed", tt.query)
			}
			if got != tt.state {
				t.Errorf("ParseStateQuery(%q) = %+v, want %+v", tt.query, got, tt.state)
			}
		})
	}
}

func TestParseStateRejects(t *testing.T) {
	for _, q := range []string{"", "x=1", "k=2", "x=a&k=2", "%zz"} {
		if _, ok := ParseStateQuery(q); ok {
			t.Errorf("ParseStateQuery(%q) accepted", q)
		}
	}
}

func TestFromTransform(t *testing.T) {
	st := FromTransform(view.Transform{X: -10, K: 3}, "en")
	if st.Transform() != (view.Transform{X: -10, K: 3}) || st.Lang != "en" {
		t.Errorf("FromTransform = %+v", st)
	}
}

func TestValidID(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{GenerateID(), true},
		{"current", true},
		{"my_view-2", true},
		{"", false},
		{"../etc/passwd", false},
		{"a b", false},
	}
	for _, tt := range tests {
		if got := ValidID(tt.id); got != tt.want {
			t.Errorf("ValidID(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}

func TestSessionExpiry(t *testing.T) {
	s := New("v", State{K: 1}, 0)
	if s.IsExpired() || s.TTL() != 0 {
		t.Error("session without ttl should never expire")
	}
	s.ExpiresAt = time.Now().Add(-time.Second)
	if !s.IsExpired() {
		t.Error("past deadline should be expired")
	}
	s = New("v", State{K: 1}, time.Hour)
	if s.TTL() <= 0 || s.TTL() > time.Hour {
		t.Errorf("TTL() = %v", s.TTL())
	}
}

func stores(t *testing.T) map[string]Store {
	t.Helper()
	fs, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	return map[string]Store{"memory": NewMemoryStore(), "file": fs}
}

func TestStoreCRUD(t *testing.T) {
	ctx := context.Background()
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			defer store.Close()

			if got, err := store.Get(ctx, "missing"); err != nil || got != nil {
				t.Fatalf("Get(missing) = %v, %v", got, err)
			}

			a := New("a", State{X: -5, K: 2}, 0)
			b := New("b", State{X: -9, K: 4, Lang: "fr"}, 0)
			b.CreatedAt = a.CreatedAt.Add(time.Second)
			for _, s := range []*Session{a, b} {
				if err := store.Set(ctx, s); err != nil {
					t.Fatalf("Set: %v", err)
				}
			}

			got, err := store.Get(ctx, b.ID)
			if err != nil || got == nil {
				t.Fatalf("Get = %v, %v", got, err)
			}
			if got.State != b.State || got.Name != "b" {
				t.Errorf("Get = %+v, want %+v", got, b)
			}

			list, err := store.List(ctx)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if len(list) != 2 || list[0].ID != a.ID || list[1].ID != b.ID {
				t.Errorf("List order wrong: %v", list)
			}

			if err := store.Delete(ctx, a.ID); err != nil {
				t.Fatalf("Delete: %v", err)
			}
			if err := store.Delete(ctx, a.ID); err != nil {
				t.Errorf("second Delete: %v", err)
			}
			if got, _ := store.Get(ctx, a.ID); got != nil {
				t.Error("deleted session still returned")
			}
		})
	}
}

func TestStoreExpired(t *testing.T) {
	ctx := context.Background()
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			old := New("old", State{K: 1}, time.Hour)
			old.ExpiresAt = time.Now().Add(-time.Minute)
			live := New("live", State{K: 1}, time.Hour)
			store.Set(ctx, old)
			store.Set(ctx, live)

			if got, _ := store.Get(ctx, old.ID); got != nil {
				t.Error("expired session returned by Get")
			}
			if err := store.Cleanup(ctx); err != nil {
				t.Fatalf("Cleanup: %v", err)
			}
			list, _ := store.List(ctx)
			if len(list) != 1 || list[0].ID != live.ID {
				t.Errorf("List after Cleanup = %v", list)
			}
		})
	}
}

func TestStoreRejectsBadID(t *testing.T) {
	ctx := context.Background()
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			err := store.Set(ctx, &Session{ID: "../x"})
			if !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("Set(bad id) = %v", err)
			}
		})
	}
}

func TestLookup(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if _, err := Lookup(ctx, store, "nope"); !errors.Is(err, errors.ErrCodeSessionNotFound) {
		t.Errorf("Lookup(missing) = %v", err)
	}
	if _, err := Lookup(ctx, store, "a/b"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Lookup(bad) = %v", err)
	}
	s := New("x", State{K: 2}, 0)
	store.Set(ctx, s)
	got, err := Lookup(ctx, store, s.ID)
	if err != nil || got.ID != s.ID {
		t.Errorf("Lookup = %v, %v", got, err)
	}
}

func TestMemoryStoreCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	s := New("x", State{K: 2}, 0)
	store.Set(ctx, s)
	s.State.K = 50
	got, _ := store.Get(ctx, s.ID)
	if got.State.K != 2 {
		t.Error("store shares memory with caller")
	}
}

func TestDebouncerCoalesces(t *testing.T) {
	var mu sync.Mutex
	var calls []int
	d := NewDebouncer(20*time.Millisecond, func(v int) {
		mu.Lock()
		calls = append(calls, v)
		mu.Unlock()
	})
	for i := 1; i <= 5; i++ {
		d.Trigger(i)
	}
	if !d.Pending() {
		t.Fatal("expected pending call")
	}
	time.Sleep(150 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(calls) != 1 || calls[0] != 5 {
		t.Errorf("calls = %v, want [5]", calls)
	}
	if d.Dropped() != 4 {
		t.Errorf("Dropped() = %d, want 4", d.Dropped())
	}
}

func TestDebouncerFlushAndStop(t *testing.T) {
	var n atomic.Int32
	var last atomic.Int32
	d := NewDebouncer(time.Hour, func(v int) {
		n.Add(1)
		last.Store(int32(v))
	})

	if d.Flush() {
		t.Error("Flush with nothing pending reported true")
	}
	d.Trigger(1)
	d.Trigger(2)
	if !d.Flush() {
		t.Fatal("Flush reported false")
	}
	if n.Load() != 1 || last.Load() != 2 {
		t.Errorf("after Flush: calls=%d last=%d", n.Load(), last.Load())
	}

	d.Trigger(3)
	d.Stop()
	if d.Pending() || d.Flush() {
		t.Error("Stop left a pending call")
	}
	if n.Load() != 1 {
		t.Errorf("calls = %d after Stop, want 1", n.Load())
	}
}

func TestDebouncerWaitForTimerCall(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var done atomic.Bool
	d := NewDebouncer(time.Millisecond, func(int) {
		close(started)
		<-release
		done.Store(true)
	})

	d.Trigger(1)
	<-started
	if d.Flush() {
		t.Error("Flush found a value the timer already took")
	}
	go func() {
		time.Sleep(20 * time.Millisecond)
		close(release)
	}()
	d.Wait()
	if !done.Load() {
		t.Error("Wait returned while the timer call was running")
	}
}

type countingHooks struct {
	observability.NoopSessionHooks
	mu        sync.Mutex
	published int
	coalesced int
	backend   string
}

func (h *countingHooks) OnPublish(_ context.Context, backend, _ string, _ error) {
	h.mu.Lock()
	h.published++
	h.backend = backend
	h.mu.Unlock()
}

func (h *countingHooks) OnCoalesced(_ context.Context, dropped int) {
	h.mu.Lock()
	h.coalesced += dropped
	h.mu.Unlock()
}

func TestPublisher(t *testing.T) {
	hooks := &countingHooks{}
	observability.SetSessionHooks(hooks)
	defer observability.Reset()

	ctx := context.Background()
	store := NewMemoryStore()
	pub := NewPublisher(store, "current", time.Hour, nil)

	pub.Publish(State{X: -1, K: 2})
	pub.Publish(State{X: -2, K: 4})
	pub.Publish(State{X: -3, K: 8})
	if _, n := pub.Last(); n != 0 {
		t.Fatalf("written before settle: %d", n)
	}
	if err := pub.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	last, n := pub.Last()
	if n != 1 || last != (State{X: -3, K: 8}) {
		t.Errorf("Last() = %+v, %d", last, n)
	}
	sess, _ := store.Get(ctx, "current")
	if sess == nil || sess.State != last {
		t.Fatalf("stored = %+v", sess)
	}
	if sess.CreatedAt.IsZero() || sess.UpdatedAt.IsZero() {
		t.Error("timestamps not set")
	}

	hooks.mu.Lock()
	defer hooks.mu.Unlock()
	if hooks.published != 1 || hooks.coalesced != 2 || hooks.backend != "memory" {
		t.Errorf("hooks: published=%d coalesced=%d backend=%q", hooks.published, hooks.coalesced, hooks.backend)
	}
}

// slowStore delays Set so a publish write can be observed in flight.
type slowStore struct {
	*MemoryStore
	delay   time.Duration
	started chan struct{}
	once    sync.Once
}

func (s *slowStore) Set(ctx context.Context, sess *Session) error {
	s.once.Do(func() { close(s.started) })
	time.Sleep(s.delay)
	return s.MemoryStore.Set(ctx, sess)
}

func TestPublisherCloseWaitsForWrite(t *testing.T) {
	tests := []struct {
		name  string
		delay time.Duration // debounce delay
		wait  bool          // let the timer start the write before Close
	}{
		{"timer write in flight", time.Millisecond, true},
		{"pending write flushed", time.Hour, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &slowStore{MemoryStore: NewMemoryStore(), delay: 50 * time.Millisecond, started: make(chan struct{})}
			pub := NewPublisher(store, "current", tt.delay, nil)
			want := State{X: -42, K: 6}
			pub.Publish(want)
			if tt.wait {
				<-store.started
			}
			if err := pub.Close(); err != nil {
				t.Fatalf("Close: %v", err)
			}
			last, n := pub.Last()
			if n != 1 || last != want {
				t.Errorf("Last() after Close = %+v, %d; want %+v, 1", last, n, want)
			}
			sess, _ := store.Get(context.Background(), "current")
			if sess == nil || sess.State != want {
				t.Errorf("stored = %+v", sess)
			}
		})
	}
}

func TestPublisherKeepsCreation(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store.Set(ctx, &Session{ID: "current", Name: "mine", CreatedAt: created})

	pub := NewPublisher(store, "current", time.Hour, nil)
	pub.Publish(State{X: -7, K: 3})
	pub.Flush()

	sess, _ := store.Get(ctx, "current")
	if !sess.CreatedAt.Equal(created) || sess.Name != "mine" || sess.State.K != 3 {
		t.Errorf("publisher overwrote metadata: %+v", sess)
	}
}
