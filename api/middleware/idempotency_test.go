package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	pkgredis "github.com/binarymart/storefront-backend/pkg/redis"
)

type memoryStore struct {
	values map[string]string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{values: map[string]string{}}
}

func (s *memoryStore) Get(_ context.Context, key string) (string, error) {
	value, ok := s.values[key]
	if !ok {
		return "", pkgredis.ErrNotFound
	}
	return value, nil
}

func (s *memoryStore) Set(_ context.Context, key, value string, _ time.Duration) error {
	s.values[key] = value
	return nil
}

func (s *memoryStore) SetNX(_ context.Context, key, value string, _ time.Duration) (bool, error) {
	if _, ok := s.values[key]; ok {
		return false, nil
	}
	s.values[key] = value
	return true, nil
}

func (s *memoryStore) IdempotencyKey(scope, id string) string {
	return "test:" + scope + ":" + id
}

func newCountingHandler() (http.Handler, *int) {
	calls := 0
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusCreated)
		fmt.Fprintf(w, `{"data":{"attempt":%d}}`, calls)
	}), &calls
}

func postWithKey(key, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(body))
	if key != "" {
		req.Header.Set(idempotencyHeader, key)
	}
	return req
}

func TestIdempotencyReplaysStoredResponse(t *testing.T) {
	store := newMemoryStore()
	inner, calls := newCountingHandler()
	handler := Idempotency(store, "checkout", time.Hour, nil)(inner)

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, postWithKey("key-1", `{"use_cart":true}`))
	if first.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", first.Code)
	}

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, postWithKey("key-1", `{"use_cart":true}`))
	if second.Code != http.StatusCreated {
		t.Fatalf("expected replayed 201, got %d", second.Code)
	}
	if *calls != 1 {
		t.Fatalf("handler must run once, ran %d times", *calls)
	}
	if first.Body.String() != second.Body.String() {
		t.Fatalf("replay mismatch: %q vs %q", first.Body.String(), second.Body.String())
	}
}

func TestIdempotencyRejectsReusedKeyWithDifferentBody(t *testing.T) {
	store := newMemoryStore()
	inner, calls := newCountingHandler()
	handler := Idempotency(store, "checkout", time.Hour, nil)(inner)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, postWithKey("key-1", `{"use_cart":true}`))

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, postWithKey("key-1", `{"use_cart":false}`))
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	if *calls != 1 {
		t.Fatalf("handler must not rerun, ran %d times", *calls)
	}
}

func TestIdempotencyRequiresHeader(t *testing.T) {
	store := newMemoryStore()
	inner, calls := newCountingHandler()
	handler := Idempotency(store, "checkout", time.Hour, nil)(inner)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, postWithKey("", `{}`))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if *calls != 0 {
		t.Fatal("handler must not run without a key")
	}
}

func TestIdempotencySkipsServerErrors(t *testing.T) {
	store := newMemoryStore()
	calls := 0
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusCreated)
	})
	handler := Idempotency(store, "checkout", time.Hour, nil)(inner)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, postWithKey("key-1", `{}`))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}

	// A 500 is not recorded, so the retry reaches the handler.
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, postWithKey("key-1", `{}`))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 on retry, got %d", rec.Code)
	}
	if calls != 2 {
		t.Fatalf("expected 2 handler runs, got %d", calls)
	}
}

func TestIdempotencyWithoutStorePassesThrough(t *testing.T) {
	inner, calls := newCountingHandler()
	handler := Idempotency(nil, "checkout", time.Hour, nil)(inner)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, postWithKey("", `{}`))
	if rec.Code != http.StatusCreated || *calls != 1 {
		t.Fatalf("expected pass-through, got %d (%d calls)", rec.Code, *calls)
	}
}
