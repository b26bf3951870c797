// Package redisstore implements session.Store on Redis.
//
// Views are stored as JSON under "<prefix>view:<id>" with the view's TTL
// applied as the key expiry, so Cleanup has nothing to do.
package redisstore

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/deeptime/pkg/errors"
	"github.com/matzehuels/deeptime/pkg/session"
)

// DefaultPrefix namespaces keys when several apps share one Redis.
const DefaultPrefix = "deeptime:"

// Store is a Redis-backed session.Store.
type Store struct {
	client redis.UniversalClient
	prefix string
	owned  bool
}

// Option configures a Store.
type Option func(*Store)

// WithPrefix overrides DefaultPrefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) { s.prefix = prefix }
}

// New wraps an existing client. The caller keeps ownership of it.
func New(client redis.UniversalClient, opts ...Option) *Store {
	s := &Store{client: client, prefix: DefaultPrefix}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open parses a redis:// URL, connects and pings the server.
func Open(ctx context.Context, url string, opts ...Option) (*Store, error) {
	o, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse redis url")
	}
	client := redis.NewClient(o)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "connect to redis at %s", o.Addr)
	}
	s := New(client, opts...)
	s.owned = true
	return s, nil
}

func (s *Store) key(id string) string { return s.prefix + "view:" + id }

// Backend names the store for logs and hooks.
func (s *Store) Backend() string { return "redis" }

func (s *Store) Get(ctx context.Context, id string) (*session.Session, error) {
	if !session.ValidID(id) {
		return nil, nil
	}
	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "redis get %s", id)
	}
	var sess session.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "parse view %s", id)
	}
	if sess.IsExpired() {
		return nil, nil
	}
	return &sess, nil
}

func (s *Store) Set(ctx context.Context, sess *session.Session) error {
	if sess == nil || !session.ValidID(sess.ID) {
		return errors.New(errors.ErrCodeInvalidInput, "view needs a valid id")
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "marshal view")
	}
	if err := s.client.Set(ctx, s.key(sess.ID), data, sess.TTL()).Err(); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "redis set %s", sess.ID)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "redis del %s", id)
	}
	return nil
}

func (s *Store) List(ctx context.Context) ([]*session.Session, error) {
	var out []*session.Session
	iter := s.client.Scan(ctx, 0, s.key("*"), 100).Iterator()
	for iter.Next(ctx) {
		id := strings.TrimPrefix(iter.Val(), s.key(""))
		sess, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if sess != nil {
			out = append(out, sess)
		}
	}
	if err := iter.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "redis scan")
	}
	session.SortByCreation(out)
	return out, nil
}

// Cleanup is a no-op: Redis expires keys itself.
func (s *Store) Cleanup(ctx context.Context) error { return nil }

// Close closes the client when the store opened it.
func (s *Store) Close() error {
	if !s.owned {
		return nil
	}
	return s.client.Close()
}

var _ session.Store = (*Store)(nil)
