package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func TestLimiter_BurstThenRefill(t *testing.T) {
	l := newLimiter(RateLimitConfig{RequestsPerSecond: 1, BurstSize: 2})
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	for i := 0; i < 2; i++ {
		if ok, _ := l.allow("10.0.0.1"); !ok {
			t.Fatalf("request %d: expected allowed", i)
		}
	}
	ok, retry := l.allow("10.0.0.1")
	if ok {
		t.Fatal("expected third request to be limited")
	}
	if retry < 1 {
		t.Errorf("expected positive retry-after, got %d", retry)
	}
	if ok, _ := l.allow("10.0.0.2"); !ok {
		t.Error("expected other client to have its own bucket")
	}

	now = now.Add(1500 * time.Millisecond)
	if ok, _ := l.allow("10.0.0.1"); !ok {
		t.Error("expected refill after wait")
	}
}

func TestLimiter_Prune(t *testing.T) {
	l := newLimiter(DefaultRateLimitConfig())
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	l.allow("a")
	now = now.Add(time.Hour)
	l.allow("b")

	l.prune(10 * time.Minute)
	if _, ok := l.buckets["a"]; ok {
		t.Error("expected idle bucket to be pruned")
	}
	if _, ok := l.buckets["b"]; !ok {
		t.Error("expected recent bucket to stay")
	}
}

func TestRateLimit_Returns429(t *testing.T) {
	e := echo.New()
	h := RateLimit(RateLimitConfig{RequestsPerSecond: 0.001, BurstSize: 1})(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	if err := h(e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)); err != nil {
		t.Fatalf("first request: unexpected error %v", err)
	}

	rec = httptest.NewRecorder()
	err := h(e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec))
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %v", err)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After header")
	}
}
