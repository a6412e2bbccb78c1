package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func newTestStore() (*MemoryStore, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	s := NewMemoryStore()
	s.now = clock.now
	return s, clock
}

func TestMemoryStore_GetSet(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	if _, ok, _ := s.Get(ctx, "k"); ok {
		t.Fatal("expected miss on empty store")
	}
	s.Set(ctx, "k", []byte("v"), time.Minute)
	data, ok, err := s.Get(ctx, "k")
	if err != nil || !ok || string(data) != "v" {
		t.Errorf("expected hit v, got %q %v %v", data, ok, err)
	}
}

func TestMemoryStore_Expiry(t *testing.T) {
	s, clock := newTestStore()
	ctx := context.Background()
	s.Set(ctx, "k", []byte("v"), 5*time.Minute)

	clock.t = clock.t.Add(4 * time.Minute)
	if _, ok, _ := s.Get(ctx, "k"); !ok {
		t.Error("expected hit within ttl")
	}
	clock.t = clock.t.Add(2 * time.Minute)
	if _, ok, _ := s.Get(ctx, "k"); ok {
		t.Error("expected miss after ttl")
	}
	if s.Len() != 0 {
		t.Errorf("expected lazy delete, %d entries remain", s.Len())
	}
}

func TestMemoryStore_DeletePrefix(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()
	s.Set(ctx, "referrals:2024-03", []byte("a"), time.Minute)
	s.Set(ctx, "referrals:2024-04", []byte("b"), time.Minute)
	s.Set(ctx, "doctors:active", []byte("c"), time.Minute)

	s.DeletePrefix(ctx, "referrals:")
	if s.Len() != 1 {
		t.Errorf("expected 1 entry left, got %d", s.Len())
	}
	if _, ok, _ := s.Get(ctx, "doctors:active"); !ok {
		t.Error("unrelated key should survive")
	}
	s.Delete(ctx, "doctors:active")
	if s.Len() != 0 {
		t.Errorf("expected empty store, got %d", s.Len())
	}
}

func TestMemoryStore_Sweep(t *testing.T) {
	s, clock := newTestStore()
	ctx := context.Background()
	s.Set(ctx, "short", []byte("a"), time.Second)
	s.Set(ctx, "long", []byte("b"), time.Hour)
	clock.t = clock.t.Add(time.Minute)
	s.sweep()
	if s.Len() != 1 {
		t.Errorf("expected 1 entry after sweep, got %d", s.Len())
	}
}

func TestRemember(t *testing.T) {
	s, clock := newTestStore()
	ctx := context.Background()
	calls := 0
	load := func(context.Context) ([]string, error) {
		calls++
		return []string{"Dr. Rao", "Dr. Iyer"}, nil
	}

	for i := 0; i < 3; i++ {
		v, err := Remember(ctx, s, "doctors", 5*time.Minute, load)
		if err != nil || len(v) != 2 {
			t.Fatalf("unexpected result %v %v", v, err)
		}
	}
	if calls != 1 {
		t.Errorf("expected one load within ttl, got %d", calls)
	}

	clock.t = clock.t.Add(6 * time.Minute)
	Remember(ctx, s, "doctors", 5*time.Minute, load)
	if calls != 2 {
		t.Errorf("expected reload after ttl, got %d", calls)
	}
}

func TestRemember_LoadErrorNotCached(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()
	_, err := Remember(ctx, s, "k", time.Minute, func(context.Context) (int, error) {
		return 0, errors.New("db down")
	})
	if err == nil {
		t.Fatal("expected load error")
	}
	if s.Len() != 0 {
		t.Error("failed loads must not be cached")
	}
}

func TestRedisStore_KeyPrefix(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	defer client.Close()
	s := NewRedisStore(client, "primelabs:")
	if got := s.key("referrals:2024-03"); got != "primelabs:referrals:2024-03" {
		t.Errorf("unexpected key %q", got)
	}
}

func TestConnectRedis_BadURL(t *testing.T) {
	if _, err := ConnectRedis(context.Background(), "not-a-url://", "p:"); err == nil {
		t.Error("expected error for malformed url")
	}
}
