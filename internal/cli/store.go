package cli

import (
	"context"
	"time"

	"github.com/matzehuels/deeptime/pkg/config"
	"github.com/matzehuels/deeptime/pkg/errors"
	"github.com/matzehuels/deeptime/pkg/session"
	"github.com/matzehuels/deeptime/pkg/session/mongostore"
	"github.com/matzehuels/deeptime/pkg/session/redisstore"
)

// connectAttempts and connectDelay bound retries against remote stores.
const (
	connectAttempts = 3
	connectDelay    = 250 * time.Millisecond
)

// openStore opens the configured saved-view store. Remote backends are
// retried with backoff while the connection fails.
func (c *CLI) openStore(ctx context.Context) (session.Store, error) {
	sc := c.cfg.Session
	switch sc.Backend {
	case config.BackendMemory:
		return session.NewMemoryStore(), nil
	case config.BackendFile:
		return session.NewFileStore(sc.Dir)
	case config.BackendRedis:
		st, err := session.Connect(ctx, sc.Backend, connectAttempts, connectDelay, c.Logger,
			func(ctx context.Context) (*redisstore.Store, error) {
				return redisstore.Open(ctx, sc.RedisURL)
			})
		if err != nil {
			return nil, err
		}
		return st, nil
	case config.BackendMongo:
		st, err := session.Connect(ctx, sc.Backend, connectAttempts, connectDelay, c.Logger,
			func(ctx context.Context) (*mongostore.Store, error) {
				return mongostore.Open(ctx, sc.MongoURI, sc.MongoDatabase, "")
			})
		if err != nil {
			return nil, err
		}
		return st, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown session backend %q", sc.Backend)
}
