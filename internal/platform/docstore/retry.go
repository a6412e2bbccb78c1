package docstore

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
)

// Backoff returns the wait before the given retry (1 for the first retry).
type Backoff func(retry int) time.Duration

func FixedBackoff(d time.Duration) Backoff {
	return func(int) time.Duration { return d }
}

// RetryPolicy bounds how often a failed write is attempted.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     Backoff
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, Backoff: FixedBackoff(time.Second)}
}

// Retryable reports whether err looks transient. Permission, validation and
// not-found failures are permanent.
func Retryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	switch Classify(err) {
	case KindNetwork, KindOther:
		return true
	}
	return false
}

// Do runs op until it succeeds, fails permanently, attempts run out or ctx
// is done.
func (p RetryPolicy) Do(ctx context.Context, op func(attempt int) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = op(attempt)
		if err == nil || !Retryable(err) || attempt == attempts {
			return err
		}
		var wait time.Duration
		if p.Backoff != nil {
			wait = p.Backoff(attempt)
		}
		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return errors.Join(err, ctx.Err())
		case <-t.C:
		}
	}
	return err
}

type retryStore struct {
	Store
	policy RetryPolicy
	logger zerolog.Logger
}

// WithRetry wraps the write operations of s with policy. Reads and queries
// pass through unchanged.
func WithRetry(s Store, policy RetryPolicy, logger zerolog.Logger) Store {
	return &retryStore{Store: s, policy: policy, logger: logger}
}

func (r *retryStore) logAttempt(op, collection string, attempt int, err error) {
	if err == nil || attempt >= r.policy.MaxAttempts || !Retryable(err) {
		return
	}
	r.logger.Warn().Err(err).
		Str("op", op).
		Str("collection", collection).
		Int("attempt", attempt).
		Str("kind", string(Classify(err))).
		Msg("document write failed, retrying")
}

func (r *retryStore) Create(ctx context.Context, collection string, doc any, id string) (string, error) {
	// Fix the id up front so a retry after a lost acknowledgement cannot
	// store the document twice.
	if id == "" {
		id = newID()
	}
	var out string
	err := r.policy.Do(ctx, func(attempt int) error {
		var err error
		out, err = r.Store.Create(ctx, collection, doc, id)
		if attempt > 1 && errors.Is(err, ErrAlreadyExists) {
			out, err = id, nil
		}
		r.logAttempt("create", collection, attempt, err)
		return err
	})
	return out, err
}

func (r *retryStore) Update(ctx context.Context, collection, id string, partial map[string]any) error {
	return r.policy.Do(ctx, func(attempt int) error {
		err := r.Store.Update(ctx, collection, id, partial)
		r.logAttempt("update", collection, attempt, err)
		return err
	})
}

func (r *retryStore) Delete(ctx context.Context, collection, id string) error {
	return r.policy.Do(ctx, func(attempt int) error {
		err := r.Store.Delete(ctx, collection, id)
		if attempt > 1 && errors.Is(err, ErrNotFound) {
			return nil
		}
		r.logAttempt("delete", collection, attempt, err)
		return err
	})
}
