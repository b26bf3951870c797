package session

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/deeptime/pkg/observability"
)

// publishTimeout bounds a single backend write.
const publishTimeout = 5 * time.Second

// Publisher writes view state to a Store, coalescing rapid updates.
// A Publisher is safe for concurrent use.
type Publisher struct {
	store   Store
	id      string
	backend string
	logger  *log.Logger
	deb     *Debouncer[State]

	mu       sync.Mutex
	last     State
	written  int
	lastErr  error
	reported int
}

// NewPublisher returns a publisher that stores state under the session id.
// A nil logger discards output.
func NewPublisher(store Store, id string, delay time.Duration, logger *log.Logger) *Publisher {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	p := &Publisher{
		store:   store,
		id:      id,
		backend: backendName(store),
		logger:  logger,
	}
	p.deb = NewDebouncer(delay, p.write)
	return p
}

// Publish schedules st to be written once updates settle.
func (p *Publisher) Publish(st State) {
	p.deb.Trigger(st)
	p.reportCoalesced()
}

// Flush writes any pending state now.
func (p *Publisher) Flush() bool { return p.deb.Flush() }

// Close flushes pending state and waits for any write already in flight,
// so Last reflects every published state afterwards. The store is left
// open.
func (p *Publisher) Close() error {
	p.deb.Flush()
	p.deb.Wait()
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastErr
}

// Last returns the most recently written state and the number of writes.
func (p *Publisher) Last() (State, int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last, p.written
}

func (p *Publisher) reportCoalesced() {
	n := p.deb.Dropped()
	p.mu.Lock()
	delta := n - p.reported
	p.reported = n
	p.mu.Unlock()
	if delta > 0 {
		observability.Session().OnCoalesced(context.Background(), delta)
	}
}

func (p *Publisher) write(st State) {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	sess, err := p.store.Get(ctx, p.id)
	now := time.Now()
	if err == nil {
		if sess == nil {
			sess = &Session{ID: p.id, CreatedAt: now}
		}
		sess.State = st
		sess.UpdatedAt = now
		err = p.store.Set(ctx, sess)
	}
	observability.Session().OnPublish(ctx, p.backend, p.id, err)

	p.mu.Lock()
	p.lastErr = err
	if err == nil {
		p.last = st
		p.written++
	}
	p.mu.Unlock()

	if err != nil {
		p.logger.Warn("view state not saved", "id", p.id, "backend", p.backend, "err", err)
		return
	}
	p.logger.Debug("view state saved", "id", p.id, "query", st.Query())
}

// Named is implemented by stores that report a backend name for hooks and
// logs.
type Named interface {
	Backend() string
}

func backendName(s Store) string {
	switch s := s.(type) {
	case Named:
		return s.Backend()
	case *MemoryStore:
		return "memory"
	case *FileStore:
		return "file"
	default:
		return "custom"
	}
}
