package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
)

func TestTxManagerBeginSuccess(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectBeginTx(pgx.TxOptions{})
	mockPool.ExpectCommit()

	manager := newTxManagerWithPool(mockPool, 0)
	tx, err := manager.Begin(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if tx == nil {
		t.Fatalf("expected transaction")
	}

	if err := tx.Commit(context.Background()); err != nil {
		t.Fatalf("commit failed: %v", err)
	}

	assertExpectations(t, mockPool)
}

func TestTxManagerBeginSerializableSetsLockTimeout(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectBeginTx(pgx.TxOptions{IsoLevel: pgx.Serializable})
	mockPool.ExpectExec("SET LOCAL lock_timeout = '1500ms'").WillReturnResult(pgxmock.NewResult("SET", 0))
	mockPool.ExpectRollback()

	manager := newTxManagerWithPool(mockPool, 1500*time.Millisecond)
	tx, err := manager.BeginSerializable(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := tx.Rollback(context.Background()); err != nil {
		t.Fatalf("rollback failed: %v", err)
	}

	assertExpectations(t, mockPool)
}

func TestTxManagerLockTimeoutFailureRollsBack(t *testing.T) {
	mockPool := newMockPool(t)
	setErr := errors.New("set failed")
	mockPool.ExpectBeginTx(pgx.TxOptions{})
	mockPool.ExpectExec("SET LOCAL lock_timeout").WillReturnError(setErr)
	mockPool.ExpectRollback()

	manager := newTxManagerWithPool(mockPool, time.Second)
	if _, err := manager.Begin(context.Background()); !errors.Is(err, setErr) {
		t.Fatalf("expected set error, got %v", err)
	}

	assertExpectations(t, mockPool)
}

func TestTxManagerBeginError(t *testing.T) {
	mockPool := newMockPool(t)
	mockErr := errors.New("begin failed")
	mockPool.ExpectBeginTx(pgx.TxOptions{}).WillReturnError(mockErr)

	manager := newTxManagerWithPool(mockPool, 0)
	tx, err := manager.Begin(context.Background())
	if err == nil || !errors.Is(err, mockErr) {
		t.Fatalf("expected begin error, got err=%v tx=%v", err, tx)
	}
}

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	pool, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgxmock pool: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}

func assertExpectations(t *testing.T, pool pgxmock.PgxPoolIface) {
	t.Helper()
	if err := pool.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations were not met: %v", err)
	}
}
