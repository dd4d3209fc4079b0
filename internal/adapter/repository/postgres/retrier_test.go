package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/iho/payledger/internal/domain"
	"github.com/iho/payledger/internal/infrastructure/metrics"
)

func fastRetrier(maxRetries int) *Retrier {
	r := NewRetrier(zerolog.Nop()).WithMaxRetries(maxRetries)
	r.initialInterval = 1 * time.Millisecond
	r.maxInterval = 2 * time.Millisecond
	r.maxElapsedTime = time.Second
	return r
}

func TestRetrierRetriesOnRetryableError(t *testing.T) {
	r := fastRetrier(2)

	attempts := 0
	err := r.Retry(context.Background(), func() error {
		attempts++
		if attempts < 2 {
			return &pgconn.PgError{Code: pgErrDeadlock}
		}
		return nil
	})

	if err != nil {
		t.Fatalf("expected success after retry, got %v", err)
	}
	if attempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", attempts)
	}
}

func TestRetrierCountsRetriesBySQLState(t *testing.T) {
	m := metrics.NewWithRegisterer(prometheus.NewRegistry())
	r := fastRetrier(3).WithMetrics(m)

	codes := []string{pgErrLockNotAvailable, pgErrDeadlock, pgErrLockNotAvailable}
	attempts := 0
	err := r.Retry(context.Background(), func() error {
		if attempts < len(codes) {
			code := codes[attempts]
			attempts++
			return &pgconn.PgError{Code: code}
		}
		attempts++
		return nil
	})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}

	if got := testutil.ToFloat64(m.TxRetries.WithLabelValues(pgErrLockNotAvailable)); got != 2 {
		t.Errorf("expected 2 lock timeout retries, got %v", got)
	}
	if got := testutil.ToFloat64(m.TxRetries.WithLabelValues(pgErrDeadlock)); got != 1 {
		t.Errorf("expected 1 deadlock retry, got %v", got)
	}
}

func TestRetrierZeroRetriesRunsOnce(t *testing.T) {
	r := fastRetrier(-1)
	attempts := 0

	err := r.Retry(context.Background(), func() error {
		attempts++
		return &pgconn.PgError{Code: pgErrDeadlock}
	})

	if !errors.Is(err, domain.ErrConcurrency) || attempts != 1 {
		t.Fatalf("expected a single attempt ending in ErrConcurrency, got %d attempts and %v", attempts, err)
	}
}

func TestRetrierStopsOnPermanentError(t *testing.T) {
	r := fastRetrier(3)
	attempts := 0
	permanentErr := errors.New("permanent")

	err := r.Retry(context.Background(), func() error {
		attempts++
		return permanentErr
	})

	if !errors.Is(err, permanentErr) {
		t.Fatalf("expected permanent error, got %v", err)
	}
	if errors.Is(err, domain.ErrConcurrency) {
		t.Fatalf("permanent error must not be reported as concurrency")
	}
	if attempts != 1 {
		t.Fatalf("expected 1 attempt, got %d", attempts)
	}
}

func TestRetrierExhaustionIsConcurrencyError(t *testing.T) {
	r := fastRetrier(2)
	attempts := 0

	err := r.Retry(context.Background(), func() error {
		attempts++
		return &pgconn.PgError{Code: pgErrSerializationFailure}
	})

	if !errors.Is(err, domain.ErrConcurrency) {
		t.Fatalf("expected ErrConcurrency, got %v", err)
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgErrSerializationFailure {
		t.Fatalf("expected the store error to stay in the chain, got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestRetrierHonoursCanceledContext(t *testing.T) {
	r := fastRetrier(5)
	ctx, cancel := context.WithCancel(context.Background())

	attempts := 0
	err := r.Retry(ctx, func() error {
		attempts++
		cancel()
		return &pgconn.PgError{Code: pgErrDeadlock}
	})

	if err == nil {
		t.Fatal("expected an error")
	}
	if attempts != 1 {
		t.Fatalf("expected 1 attempt after cancel, got %d", attempts)
	}
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{&pgconn.PgError{Code: pgErrDeadlock}, true},
		{&pgconn.PgError{Code: pgErrSerializationFailure}, true},
		{&pgconn.PgError{Code: pgErrLockNotAvailable}, true},
		{&pgconn.PgError{Code: "23505"}, false},
		{errors.New("other"), false},
		{nil, false},
	}

	for _, tt := range tests {
		if got := isRetryableError(tt.err); got != tt.want {
			t.Errorf("isRetryableError(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
