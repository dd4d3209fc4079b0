package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/iho/payledger/internal/domain"
	"github.com/iho/payledger/internal/infrastructure/metrics"
)

// SequenceUseCase issues gapless numbers per scope.
type SequenceUseCase struct {
	txManager TransactionManager
	retrier   Retrier
	seqRepo   SequenceRepository
	metrics   *metrics.Metrics
}

// NewSequenceUseCase creates a new SequenceUseCase.
func NewSequenceUseCase(
	txManager TransactionManager,
	retrier Retrier,
	seqRepo SequenceRepository,
	metrics *metrics.Metrics,
) *SequenceUseCase {
	return &SequenceUseCase{
		txManager: txManager,
		retrier:   retrier,
		seqRepo:   seqRepo,
		metrics:   metrics,
	}
}

// GetNext issues the next number of scope. The first call for a scope returns 1.
func (uc *SequenceUseCase) GetNext(ctx context.Context, scope string) (int64, error) {
	start := time.Now()
	scope = strings.TrimSpace(scope)
	if err := domain.ValidateScope(scope); err != nil {
		return 0, err
	}

	var number int64
	err := runInTx(ctx, uc.txManager.BeginSerializable, uc.retrier, func(ctx context.Context, tx Transaction) error {
		n, err := uc.seqRepo.Next(ctx, tx, scope)
		if err != nil {
			return err
		}
		number = n
		return nil
	})
	uc.metrics.ObserveOperation("sequence_next", start, errorType(err))
	if err != nil {
		return 0, err
	}

	if uc.metrics != nil {
		uc.metrics.SequenceNumbersIssued.Inc()
	}

	return number, nil
}

// NextInTx issues the next number of scope inside a caller's transaction, so
// the number is only consumed if that transaction commits.
func (uc *SequenceUseCase) NextInTx(ctx context.Context, tx Transaction, scope string) (int64, error) {
	if err := domain.ValidateScope(scope); err != nil {
		return 0, err
	}
	return uc.seqRepo.Next(ctx, tx, scope)
}

// Peek returns the number the next GetNext call would issue without consuming it.
func (uc *SequenceUseCase) Peek(ctx context.Context, scope string) (*domain.NumberingSequence, error) {
	scope = strings.TrimSpace(scope)
	if err := domain.ValidateScope(scope); err != nil {
		return nil, err
	}

	next, err := uc.seqRepo.Peek(ctx, scope)
	if err != nil {
		return nil, err
	}

	return &domain.NumberingSequence{Scope: scope, NextNumber: next}, nil
}
