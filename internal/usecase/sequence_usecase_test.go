package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go.uber.org/mock/gomock"

	"github.com/iho/payledger/internal/domain"
	"github.com/iho/payledger/internal/usecase"
	"github.com/iho/payledger/internal/usecase/mockusecase"
)

func TestSequenceUseCase_GetNext(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		scope string
		want  int64
	}{
		{"invoice:2026", 1},
		{"invoice:2026", 2},
		{"credit_note:2026", 1},
		{" invoice:2026 ", 3},
	}

	for _, tt := range tests {
		got, err := f.sequences.GetNext(ctx, tt.scope)
		if err != nil {
			t.Fatalf("GetNext(%q): %v", tt.scope, err)
		}
		if got != tt.want {
			t.Errorf("GetNext(%q) = %d, want %d", tt.scope, got, tt.want)
		}
	}

	seq, err := f.sequences.Peek(ctx, "invoice:2026")
	if err != nil {
		t.Fatalf("Peek: %v", err)
	}
	if seq.NextNumber != 4 {
		t.Errorf("expected next number 4, got %d", seq.NextNumber)
	}

	fresh, err := f.sequences.Peek(ctx, "unused")
	if err != nil {
		t.Fatalf("Peek: %v", err)
	}
	if fresh.NextNumber != 1 {
		t.Errorf("expected next number 1 for a new scope, got %d", fresh.NextNumber)
	}
}

func TestSequenceUseCase_InvalidScope(t *testing.T) {
	f := newFixture(t)

	for _, scope := range []string{"", "   ", string(make([]byte, domain.MaxScopeLength+1))} {
		if _, err := f.sequences.GetNext(context.Background(), scope); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("GetNext(%q): expected validation error, got %v", scope, err)
		}
	}
}

func TestSequenceUseCase_ConcurrentCallersGetDistinctNumbers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const n = 50
	results := make([]int64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			num, err := f.sequences.GetNext(ctx, "contention")
			if err != nil {
				t.Errorf("GetNext: %v", err)
				return
			}
			results[i] = num
		}(i)
	}
	wg.Wait()

	seen := make(map[int64]bool, n)
	for _, num := range results {
		if seen[num] {
			t.Errorf("number %d issued twice", num)
		}
		seen[num] = true
	}
	for want := int64(1); want <= n; want++ {
		if !seen[want] {
			t.Errorf("number %d was never issued", want)
		}
	}
}

func TestSequenceUseCase_RollsBackOnRepositoryError(t *testing.T) {
	ctrl := gomock.NewController(t)

	txMgr := mockusecase.NewMockTransactionManager(ctrl)
	tx := mockusecase.NewMockTransaction(ctrl)
	seqRepo := mockusecase.NewMockSequenceRepository(ctrl)
	retrier := mockusecase.NewMockRetrier(ctrl)

	repoErr := errors.New("serialization failure")

	retrier.EXPECT().Retry(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, op func() error) error {
			return op()
		},
	)
	txMgr.EXPECT().BeginSerializable(gomock.Any()).Return(tx, nil)
	seqRepo.EXPECT().Next(gomock.Any(), tx, "receipt:customer").Return(int64(0), repoErr)
	tx.EXPECT().Rollback(gomock.Any()).Return(nil)

	uc := usecase.NewSequenceUseCase(txMgr, retrier, seqRepo, nil)
	_, err := uc.GetNext(context.Background(), "receipt:customer")
	if !errors.Is(err, repoErr) {
		t.Errorf("expected %v, got %v", repoErr, err)
	}
}

func TestSequenceUseCase_CommitsIssuedNumber(t *testing.T) {
	ctrl := gomock.NewController(t)

	txMgr := mockusecase.NewMockTransactionManager(ctrl)
	tx := mockusecase.NewMockTransaction(ctrl)
	seqRepo := mockusecase.NewMockSequenceRepository(ctrl)

	gomock.InOrder(
		txMgr.EXPECT().BeginSerializable(gomock.Any()).Return(tx, nil),
		seqRepo.EXPECT().Next(gomock.Any(), tx, "receipt:customer").Return(int64(7), nil),
		tx.EXPECT().Commit(gomock.Any()).Return(nil),
	)
	tx.EXPECT().Rollback(gomock.Any()).Return(nil).AnyTimes()

	uc := usecase.NewSequenceUseCase(txMgr, nil, seqRepo, nil)
	got, err := uc.GetNext(context.Background(), "receipt:customer")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 7 {
		t.Errorf("expected 7, got %d", got)
	}
}

func TestSequenceUseCase_CanceledContext(t *testing.T) {
	ctrl := gomock.NewController(t)
	txMgr := mockusecase.NewMockTransactionManager(ctrl)
	seqRepo := mockusecase.NewMockSequenceRepository(ctrl)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	uc := usecase.NewSequenceUseCase(txMgr, nil, seqRepo, nil)
	if _, err := uc.GetNext(ctx, "scope"); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
