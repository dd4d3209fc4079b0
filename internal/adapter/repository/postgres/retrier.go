package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"

	"github.com/iho/payledger/internal/domain"
	"github.com/iho/payledger/internal/infrastructure/metrics"
)

// SQLSTATE codes after which a ledger transaction is safe to re-run from scratch.
const (
	pgErrDeadlock             = "40P01"
	pgErrSerializationFailure = "40001"
	pgErrLockNotAvailable     = "55P03"
)

// Retrier implements usecase.Retrier. It re-runs a whole transaction with
// exponential backoff while Postgres reports a transient conflict.
type Retrier struct {
	maxRetries      int
	initialInterval time.Duration
	maxInterval     time.Duration
	maxElapsedTime  time.Duration
	logger          zerolog.Logger
	metrics         *metrics.Metrics
}

// NewRetrier creates a Retrier allowing 3 retries.
func NewRetrier(logger zerolog.Logger) *Retrier {
	return &Retrier{
		maxRetries:      3,
		initialInterval: 50 * time.Millisecond,
		maxInterval:     1 * time.Second,
		maxElapsedTime:  10 * time.Second,
		logger:          logger,
	}
}

// WithMaxRetries overrides the number of retries after the first attempt.
func (r *Retrier) WithMaxRetries(n int) *Retrier {
	if n < 0 {
		n = 0
	}
	r.maxRetries = n
	return r
}

// WithMetrics counts retries per SQLSTATE on m.
func (r *Retrier) WithMetrics(m *metrics.Metrics) *Retrier {
	r.metrics = m
	return r
}

// Retry runs operation until it succeeds, fails permanently or the retries
// run out. Running out wraps the last store error in domain.ErrConcurrency.
func (r *Retrier) Retry(ctx context.Context, operation func() error) error {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = r.initialInterval
	exp.MaxInterval = r.maxInterval
	exp.MaxElapsedTime = r.maxElapsedTime
	policy := backoff.WithContext(backoff.WithMaxRetries(exp, uint64(r.maxRetries)), ctx)

	err := backoff.RetryNotify(func() error {
		err := operation()
		if err != nil && !isRetryableError(err) {
			return backoff.Permanent(err)
		}
		return err
	}, policy, r.onRetry)

	if err != nil && isRetryableError(err) {
		return fmt.Errorf("%w: %w", domain.ErrConcurrency, err)
	}
	return err
}

func (r *Retrier) onRetry(err error, wait time.Duration) {
	code := sqlState(err)

	r.logger.Warn().
		Err(err).
		Str("sqlstate", code).
		Dur("backoff", wait).
		Msg("transient conflict, retrying transaction")

	if r.metrics != nil {
		r.metrics.TxRetries.WithLabelValues(code).Inc()
	}
}

func sqlState(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func isRetryableError(err error) bool {
	switch sqlState(err) {
	case pgErrDeadlock, pgErrSerializationFailure, pgErrLockNotAvailable:
		return true
	}
	return false
}
