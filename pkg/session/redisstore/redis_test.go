package redisstore

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/matzehuels/deeptime/pkg/session"
)

// Set DEEPTIME_TEST_REDIS (e.g. redis://localhost:6379/15) to run.
func TestStoreIntegration(t *testing.T) {
	url := os.Getenv("DEEPTIME_TEST_REDIS")
	if url == "" {
		t.Skip("DEEPTIME_TEST_REDIS not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store, err := Open(ctx, url, WithPrefix("deeptime-test:"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	s := session.New("test", session.State{X: -3, K: 2}, time.Minute)
	if err := store.Set(ctx, s); err != nil {
		t.Fatalf("Set: %v", err)
	}
	defer store.Delete(ctx, s.ID)

	got, err := store.Get(ctx, s.ID)
	if err != nil || got == nil || got.State != s.State {
		t.Fatalf("Get = %+v, %v", got, err)
	}
	list, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	found := false
	for _, v := range list {
		found = found || v.ID == s.ID
	}
	if !found {
		t.Error("List missing stored view")
	}
}

func TestOpenBadURL(t *testing.T) {
	if _, err := Open(context.Background(), "not a url"); err == nil {
		t.Error("expected error for malformed url")
	}
}

func TestKeyPrefix(t *testing.T) {
	s := New(nil, WithPrefix("x:"))
	if got := s.key("abc"); got != "x:view:abc" {
		t.Errorf("key = %q", got)
	}
	if New(nil).prefix != DefaultPrefix {
		t.Error("default prefix not applied")
	}
}
