package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap/zaptest"
)

type fakeRateLimitStore struct {
	count     int
	recordErr error
	oldest    time.Time
	hasOldest bool
	oldestErr error

	recordedKeys []string
}

func (f *fakeRateLimitStore) RecordAndCount(_ context.Context, identifier string, _ time.Time, _ time.Duration) (int, error) {
	if f.recordErr != nil {
		return 0, f.recordErr
	}
	f.recordedKeys = append(f.recordedKeys, identifier)
	f.count++
	return f.count, nil
}

func (f *fakeRateLimitStore) OldestAttempt(context.Context, string, time.Duration, time.Time) (time.Time, bool, error) {
	return f.oldest, f.hasOldest, f.oldestErr
}

func newLimitedRouter(t *testing.T, store *fakeRateLimitStore, now time.Time, identifier IdentifierFunc) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	limiter := NewRateLimiter(store, zaptest.NewLogger(t)).WithClock(func() time.Time { return now })

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(UserIDKey, "user-1")
		c.Next()
	})
	router.Use(limiter.RateLimit(RateLimitRule{
		Name:       "cart_mutation",
		Limit:      5,
		Window:     time.Minute,
		Identifier: identifier,
	}))
	router.POST("/cart/items", func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})
	return router
}

func TestRateLimiterAllowsWhenBelowLimit(t *testing.T) {
	now := time.Date(2026, 3, 12, 10, 0, 0, 0, time.UTC)
	oldest := now.Add(-30 * time.Second)
	store := &fakeRateLimitStore{count: 2, oldest: oldest, hasOldest: true}

	router := newLimitedRouter(t, store, now, UserIdentifier())
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/cart/items", nil))

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rr.Code)
	}
	if len(store.recordedKeys) != 1 || store.recordedKeys[0] != "cart_mutation:user-1" {
		t.Fatalf("expected attempt keyed by user, got %v", store.recordedKeys)
	}
	if got := rr.Header().Get("X-RateLimit-Remaining"); got != "2" {
		t.Fatalf("expected remaining header 2, got %q", got)
	}
	expectedReset := oldest.Add(time.Minute).Unix()
	if got := rr.Header().Get("X-RateLimit-Reset"); got != strconv.FormatInt(expectedReset, 10) {
		t.Fatalf("expected reset header %d, got %q", expectedReset, got)
	}
	if got := rr.Header().Get("Retry-After"); got != "" {
		t.Fatalf("expected no retry-after header, got %q", got)
	}
}

func TestRateLimiterBlocksWhenLimitExceeded(t *testing.T) {
	now := time.Date(2026, 3, 12, 10, 0, 0, 0, time.UTC)
	store := &fakeRateLimitStore{count: 5, oldest: now.Add(-30 * time.Second), hasOldest: true}

	router := newLimitedRouter(t, store, now, UserIdentifier())
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/cart/items", nil))

	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rr.Code)
	}
	if got := rr.Header().Get("Retry-After"); got != "30" {
		t.Fatalf("expected retry-after 30, got %q", got)
	}

	var problem ProblemDetails
	if err := json.Unmarshal(rr.Body.Bytes(), &problem); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if problem.Status != http.StatusTooManyRequests || problem.RetryAfter != 30 {
		t.Fatalf("unexpected problem %+v", problem)
	}
	if problem.Instance != "/cart/items" {
		t.Fatalf("unexpected instance %q", problem.Instance)
	}
}

func TestRateLimiterFailsOpenOnStoreError(t *testing.T) {
	now := time.Date(2026, 3, 12, 10, 0, 0, 0, time.UTC)
	store := &fakeRateLimitStore{recordErr: errors.New("redis down")}

	router := newLimitedRouter(t, store, now, UserIdentifier())
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/cart/items", nil))

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201 when failing open, got %d", rr.Code)
	}
	if rr.Header().Get("X-RateLimit-Limit") != "" {
		t.Fatalf("expected no rate limit headers on store failure")
	}
}

func TestRateLimiterSkipsWithoutIdentifier(t *testing.T) {
	now := time.Date(2026, 3, 12, 10, 0, 0, 0, time.UTC)
	store := &fakeRateLimitStore{}

	router := newLimitedRouter(t, store, now, func(*gin.Context) (string, bool) { return "", false })
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/cart/items", nil))

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rr.Code)
	}
	if len(store.recordedKeys) != 0 {
		t.Fatalf("expected no attempts recorded, got %v", store.recordedKeys)
	}
}
