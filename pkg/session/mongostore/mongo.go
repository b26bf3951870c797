// Package mongostore implements session.Store on MongoDB.
//
// Each view is one document keyed by its ID. A TTL index on expires_at lets
// the server remove expired views; Cleanup also deletes them eagerly.
package mongostore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/deeptime/pkg/errors"
	"github.com/matzehuels/deeptime/pkg/session"
)

// Defaults for database and collection names.
const (
	DefaultDatabase   = "deeptime"
	DefaultCollection = "views"
)

// Store is a MongoDB-backed session.Store.
type Store struct {
	client *mongo.Client
	coll   *mongo.Collection
	owned  bool
}

// Open connects to uri, pings the primary and ensures the TTL index.
// Empty database or collection names fall back to the defaults.
func Open(ctx context.Context, uri, database, collection string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "connect to mongodb")
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "ping mongodb")
	}
	s, err := New(ctx, client, database, collection)
	if err != nil {
		client.Disconnect(ctx)
		return nil, err
	}
	s.owned = true
	return s, nil
}

// New uses an existing client. The caller keeps ownership of it.
func New(ctx context.Context, client *mongo.Client, database, collection string) (*Store, error) {
	if database == "" {
		database = DefaultDatabase
	}
	if collection == "" {
		collection = DefaultCollection
	}
	coll := client.Database(database).Collection(collection)
	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "create ttl index")
	}
	return &Store{client: client, coll: coll}, nil
}

// Backend names the store for logs and hooks.
func (s *Store) Backend() string { return "mongo" }

func (s *Store) Get(ctx context.Context, id string) (*session.Session, error) {
	if !session.ValidID(id) {
		return nil, nil
	}
	var sess session.Session
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&sess)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "find view %s", id)
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
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": sess.ID}, sess, options.Replace().SetUpsert(true))
	if err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "store view %s", sess.ID)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "delete view %s", id)
	}
	return nil
}

func (s *Store) List(ctx context.Context) ([]*session.Session, error) {
	cur, err := s.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "list views")
	}
	var all []*session.Session
	if err := cur.All(ctx, &all); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "decode views")
	}
	out := all[:0]
	for _, sess := range all {
		if !sess.IsExpired() {
			out = append(out, sess)
		}
	}
	return out, nil
}

func (s *Store) Cleanup(ctx context.Context) error {
	_, err := s.coll.DeleteMany(ctx, bson.M{"expires_at": bson.M{"$exists": true, "$lt": time.Now()}})
	if err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "delete expired views")
	}
	return nil
}

// Close disconnects the client when the store opened it.
func (s *Store) Close() error {
	if !s.owned {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ session.Store = (*Store)(nil)
