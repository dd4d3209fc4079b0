package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/payledger/internal/usecase/mocks"
)

func serve(mw *IdempotencyMiddleware, h http.HandlerFunc, method, path, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(`{}`))
	if key != "" {
		req.Header.Set(IdempotencyKeyHeader, key)
	}
	rec := httptest.NewRecorder()
	mw.Wrap(h).ServeHTTP(rec, req)
	return rec
}

func TestIdempotencyMiddleware_ReplaysStatusAndBody(t *testing.T) {
	store := mocks.NewMockIdempotencyStore()
	mw := NewIdempotencyMiddleware(store, time.Minute, zerolog.Nop())

	calls := 0
	h := func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"rcpt-1"}`))
	}

	first := serve(mw, h, http.MethodPost, "/api/v1/receipts", "key-1")
	second := serve(mw, h, http.MethodPost, "/api/v1/receipts", "key-1")

	if calls != 1 {
		t.Fatalf("expected handler to run once, ran %d times", calls)
	}
	if first.Header().Get(IdempotencyReplayHeader) != "" {
		t.Fatalf("first response must not be marked as replay")
	}
	if second.Code != http.StatusCreated || second.Body.String() != `{"id":"rcpt-1"}` {
		t.Fatalf("unexpected replay %d %q", second.Code, second.Body.String())
	}
	if second.Header().Get(IdempotencyReplayHeader) != "true" || second.Header().Get("Content-Type") != "application/json" {
		t.Fatalf("unexpected replay headers %v", second.Header())
	}
}

func TestIdempotencyMiddleware_KeyIsScopedToEndpoint(t *testing.T) {
	store := mocks.NewMockIdempotencyStore()
	mw := NewIdempotencyMiddleware(store, time.Minute, zerolog.Nop())

	calls := 0
	h := func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	}

	serve(mw, h, http.MethodPost, "/api/v1/receipts", "shared")
	serve(mw, h, http.MethodPost, "/api/v1/allocations", "shared")

	if calls != 2 {
		t.Fatalf("expected both endpoints to run, got %d calls", calls)
	}
}

func TestIdempotencyMiddleware_InProgressKeyConflicts(t *testing.T) {
	store := &mocks.MockIdempotencyStore{
		CheckAndSetFunc: func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
			return true, []byte(processingMarker), nil
		},
	}
	mw := NewIdempotencyMiddleware(store, time.Minute, zerolog.Nop())

	rec := serve(mw, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run while the key is held")
	}, http.MethodPut, "/api/v1/receipts/r-1/void", "key-2")

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestIdempotencyMiddleware_FailedResponsesReleaseKey(t *testing.T) {
	store := mocks.NewMockIdempotencyStore()
	var released string
	store.ReleaseFunc = func(ctx context.Context, key string) error {
		released = key
		return nil
	}
	mw := NewIdempotencyMiddleware(store, time.Minute, zerolog.Nop())

	rec := serve(mw, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}, http.MethodPost, "/api/v1/allocations", "key-3")

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	if released != "POST /api/v1/allocations key-3" {
		t.Fatalf("expected key to be released, got %q", released)
	}
}

func TestIdempotencyMiddleware_PanicReleasesKey(t *testing.T) {
	store := mocks.NewMockIdempotencyStore()
	mw := NewIdempotencyMiddleware(store, time.Minute, zerolog.Nop())

	h := Recovery(zerolog.Nop())(mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/receipts", nil)
	req.Header.Set(IdempotencyKeyHeader, "key-4")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	exists, _, _ := store.CheckAndSet(context.Background(), "POST /api/v1/receipts key-4", nil, time.Minute)
	if exists {
		t.Fatal("expected key to be released after panic")
	}
}

func TestIdempotencyMiddleware_StoreErrorFailsClosed(t *testing.T) {
	store := &mocks.MockIdempotencyStore{
		CheckAndSetFunc: func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
			return false, nil, errors.New("redis down")
		},
	}
	mw := NewIdempotencyMiddleware(store, time.Minute, zerolog.Nop())

	rec := serve(mw, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called when store errors")
	}, http.MethodPost, "/api/v1/receipts", "key-5")

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rec.Code)
	}
}

func TestIdempotencyMiddleware_SkipsWithoutKeyOrForReads(t *testing.T) {
	store := &mocks.MockIdempotencyStore{
		CheckAndSetFunc: func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
			t.Fatal("store must not be consulted")
			return false, nil, nil
		},
	}
	mw := NewIdempotencyMiddleware(store, 0, zerolog.Nop())

	tests := []struct {
		method string
		key    string
	}{
		{http.MethodGet, "key-6"},
		{http.MethodPost, ""},
	}
	for _, tt := range tests {
		called := false
		serve(mw, func(w http.ResponseWriter, r *http.Request) { called = true }, tt.method, "/api/v1/receipts", tt.key)
		if !called {
			t.Fatalf("%s with key %q: expected next handler to be called", tt.method, tt.key)
		}
	}
}

func TestIdempotencyMiddleware_SettlesKeyAfterClientDisconnect(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		wantUpdate  bool
		wantRelease bool
	}{
		{"success is stored", http.StatusCreated, true, false},
		{"failure is released", http.StatusInternalServerError, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var updated, released bool
			store := mocks.NewMockIdempotencyStore()
			store.UpdateFunc = func(ctx context.Context, key string, response []byte, ttl time.Duration) error {
				if err := ctx.Err(); err != nil {
					return err
				}
				updated = true
				return nil
			}
			store.ReleaseFunc = func(ctx context.Context, key string) error {
				if err := ctx.Err(); err != nil {
					return err
				}
				released = true
				return nil
			}
			mw := NewIdempotencyMiddleware(store, time.Minute, zerolog.Nop())

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			h := func(w http.ResponseWriter, r *http.Request) {
				// The client disconnects while the write is being handled.
				cancel()
				w.WriteHeader(tt.status)
			}

			req := httptest.NewRequest(http.MethodPost, "/api/v1/receipts", strings.NewReader(`{}`)).WithContext(ctx)
			req.Header.Set(IdempotencyKeyHeader, "key-1")
			mw.Wrap(http.HandlerFunc(h)).ServeHTTP(httptest.NewRecorder(), req)

			if updated != tt.wantUpdate {
				t.Errorf("updated = %v, want %v", updated, tt.wantUpdate)
			}
			if released != tt.wantRelease {
				t.Errorf("released = %v, want %v", released, tt.wantRelease)
			}
		})
	}
}
