package docstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type flakyStore struct {
	*MemoryStore
	failures int
	err      error
	calls    int
	// landed makes the failing attempts still store the document.
	landed bool
}

func (f *flakyStore) Create(ctx context.Context, collection string, doc any, id string) (string, error) {
	f.calls++
	if f.calls <= f.failures {
		if f.landed {
			f.MemoryStore.Create(ctx, collection, doc, id)
		}
		return "", f.err
	}
	return f.MemoryStore.Create(ctx, collection, doc, id)
}

func (f *flakyStore) Update(ctx context.Context, collection, id string, partial map[string]any) error {
	f.calls++
	if f.calls <= f.failures {
		return f.err
	}
	return f.MemoryStore.Update(ctx, collection, id, partial)
}

func testPolicy(attempts int) RetryPolicy {
	return RetryPolicy{MaxAttempts: attempts, Backoff: FixedBackoff(time.Millisecond)}
}

func TestWithRetry_RecoversFromTransient(t *testing.T) {
	f := &flakyStore{MemoryStore: NewMemoryStore(), failures: 2, err: errors.New("connection reset by peer")}
	s := WithRetry(f, testPolicy(3), zerolog.Nop())

	id, err := s.Create(context.Background(), "c", map[string]any{"a": 1}, "")
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if id == "" || f.calls != 3 {
		t.Errorf("expected 3 calls and an id, got calls=%d id=%q", f.calls, id)
	}
}

func TestWithRetry_GivesUp(t *testing.T) {
	f := &flakyStore{MemoryStore: NewMemoryStore(), failures: 5, err: errors.New("service unavailable")}
	s := WithRetry(f, testPolicy(3), zerolog.Nop())

	_, err := s.Create(context.Background(), "c", map[string]any{"a": 1}, "")
	if err == nil {
		t.Fatal("expected error after attempts exhausted")
	}
	if f.calls != 3 {
		t.Errorf("expected 3 attempts, got %d", f.calls)
	}
}

func TestWithRetry_PermanentNotRetried(t *testing.T) {
	f := &flakyStore{MemoryStore: NewMemoryStore(), failures: 5, err: errors.New("PERMISSION_DENIED: missing rights")}
	s := WithRetry(f, testPolicy(3), zerolog.Nop())

	err := s.Update(context.Background(), "c", "x", map[string]any{"a": 1})
	if err == nil {
		t.Fatal("expected error")
	}
	if f.calls != 1 {
		t.Errorf("permission errors should not be retried, got %d calls", f.calls)
	}
}

func TestWithRetry_CreateAfterLostAck(t *testing.T) {
	f := &flakyStore{MemoryStore: NewMemoryStore(), failures: 1, err: errors.New("i/o timeout"), landed: true}
	s := WithRetry(f, testPolicy(3), zerolog.Nop())

	id, err := s.Create(context.Background(), "c", map[string]any{"a": 1}, "")
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	docs, _ := All(context.Background(), f.MemoryStore, "c", Query{})
	if len(docs) != 1 || docs[0].ID != id {
		t.Errorf("expected exactly one stored document with id %s, got %+v", id, docs)
	}
}

func TestRetryPolicy_StopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := RetryPolicy{MaxAttempts: 5, Backoff: FixedBackoff(time.Hour)}
	calls := 0
	done := make(chan error, 1)
	go func() {
		done <- p.Do(ctx, func(int) error {
			calls++
			return errors.New("network down")
		})
	}()
	time.Sleep(10 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("retry did not stop on cancel")
	}
	if calls != 1 {
		t.Errorf("expected a single attempt, got %d", calls)
	}
}

func TestDefaultRetryPolicy(t *testing.T) {
	p := DefaultRetryPolicy()
	if p.MaxAttempts != 3 || p.Backoff(1) != time.Second || p.Backoff(2) != time.Second {
		t.Errorf("unexpected default policy: %+v", p)
	}
}
