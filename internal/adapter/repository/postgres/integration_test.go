//go:build integration

package postgres_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/iho/payledger/internal/adapter/repository/postgres"
	"github.com/iho/payledger/internal/domain"
	"github.com/iho/payledger/internal/infrastructure/metrics"
	infrapg "github.com/iho/payledger/internal/infrastructure/postgres"
	"github.com/iho/payledger/internal/usecase"
)

var (
	customer = domain.PartyRef{Type: domain.PartyTypeCustomer, ID: "cust-1"}
	docDate  = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type ledger struct {
	pool        *pgxpool.Pool
	docs        *postgres.DocumentRepository
	receipts    *usecase.ReceiptUseCase
	ingestion   *usecase.IngestionUseCase
	allocations *usecase.AllocationUseCase
	sequences   *usecase.SequenceUseCase
	balances    *usecase.BalanceUseCase
	consistency *usecase.ConsistencyUseCase
}

func setupLedger(t *testing.T) *ledger {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("payledger"),
		tcpostgres.WithUsername("payledger"),
		tcpostgres.WithPassword("payledger"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	require.NoError(t, infrapg.RunMigrations(dsn, zerolog.Nop()))

	pool, err := infrapg.NewPoolWithConfig(ctx, infrapg.PoolConfig{DatabaseURL: dsn, MaxConns: 20})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	txMgr := postgres.NewTxManager(pool, postgres.DefaultLockTimeout)
	retrier := postgres.NewRetrier(zerolog.Nop()).WithMaxRetries(10)
	docRepo := postgres.NewDocumentRepository(pool)
	receiptRepo := postgres.NewReceiptRepository(pool)
	allocRepo := postgres.NewAllocationRepository(pool)
	outboxRepo := postgres.NewOutboxRepository(pool)
	idGen := postgres.NewULIDGenerator()
	m := metrics.NewWithRegisterer(prometheus.NewRegistry())

	l := &ledger{pool: pool, docs: docRepo}
	l.sequences = usecase.NewSequenceUseCase(txMgr, retrier, postgres.NewSequenceRepository(pool), m)
	documents := usecase.NewDocumentUseCase(txMgr, retrier, docRepo, outboxRepo, idGen, nil, m)
	l.ingestion = usecase.NewIngestionUseCase(documents)
	l.receipts = usecase.NewReceiptUseCase(txMgr, retrier, l.sequences, docRepo, receiptRepo, allocRepo, outboxRepo, idGen, nil, m)
	l.allocations = usecase.NewAllocationUseCase(txMgr, retrier, docRepo, receiptRepo, allocRepo, outboxRepo, idGen, nil, m)
	l.balances = usecase.NewBalanceUseCase(docRepo, documents, nil)
	l.consistency = usecase.NewConsistencyUseCase(postgres.NewConsistencyRepository(pool), m)

	return l
}

func (l *ledger) ingest(t *testing.T, kind domain.DocumentKind, ref, amount string) string {
	t.Helper()
	id, err := l.ingestion.UpsertFiscalDocument(context.Background(), usecase.FiscalDocumentInput{
		DocumentDate:  docDate,
		PartyType:     customer.Type,
		PartyID:       customer.ID,
		Kind:          kind,
		ExternalRefID: ref,
		Currency:      "USD",
		AmountBase:    dec(amount),
		FxRate:        decimal.NewFromInt(1),
	})
	require.NoError(t, err)
	return id
}

func (l *ledger) receipt(t *testing.T, amount string, allocs ...usecase.ReceiptAllocationInput) *domain.Receipt {
	t.Helper()
	r, err := l.receipts.CreateReceipt(context.Background(), usecase.CreateReceiptInput{
		Date:        docDate,
		PartyType:   customer.Type,
		PartyID:     customer.ID,
		Currency:    "USD",
		FxRate:      decimal.NewFromInt(1),
		Lines:       []usecase.PaymentLineInput{{Method: domain.MethodCash, AmountOriginal: dec(amount)}},
		Allocations: allocs,
	})
	require.NoError(t, err)
	return r
}

func (l *ledger) requirePending(t *testing.T, id, want string) {
	t.Helper()
	doc, err := l.docs.GetByID(context.Background(), id)
	require.NoError(t, err)
	require.True(t, doc.PendingBase.Equal(dec(want)), "document %s pending = %s, want %s", id, doc.PendingBase, want)
}

func (l *ledger) requireConsistent(t *testing.T) {
	t.Helper()
	report, err := l.consistency.Check(context.Background())
	require.NoError(t, err)
	require.True(t, report.Consistent, "issues: %+v", report.Issues)
}

func TestIntegration_LedgerFlows(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	l := setupLedger(t)
	ctx := context.Background()

	t.Run("receipt settles an invoice and stays idempotent on ingest", func(t *testing.T) {
		inv := l.ingest(t, domain.KindInvoice, "A-INV", "1000")
		again := l.ingest(t, domain.KindInvoice, "A-INV", "1000")
		assert.Equal(t, inv, again)

		r := l.receipt(t, "1500", usecase.ReceiptAllocationInput{DebitDocumentID: inv, AmountBase: dec("1000")})
		assert.Equal(t, "R-000001", r.Number)

		l.requirePending(t, inv, "0")
		l.requirePending(t, r.LedgerDocumentID, "500")

		stored, err := l.receipts.GetReceipt(ctx, r.ID)
		require.NoError(t, err)
		require.Len(t, stored.Lines, 1)
		assert.True(t, stored.TotalBase.Equal(dec("1500")))
	})

	t.Run("cover invoice draws from a credit note and a receipt", func(t *testing.T) {
		inv := l.ingest(t, domain.KindInvoice, "B-INV", "300")
		cn := l.ingest(t, domain.KindCreditNote, "B-CN", "100")
		r := l.receipt(t, "200")

		allocs, err := l.allocations.CoverInvoiceWithReceipts(ctx, usecase.CoverInvoiceInput{
			PartyType:              customer.Type,
			PartyID:                customer.ID,
			TargetDebitExternalRef: "B-INV",
			Sources: []domain.CoverSource{
				{SourceDocumentID: cn, AmountBase: dec("100")},
				{SourceDocumentID: r.LedgerDocumentID, AmountBase: dec("200")},
			},
		})
		require.NoError(t, err)
		assert.Len(t, allocs, 2)
		l.requirePending(t, inv, "0")
		l.requirePending(t, cn, "0")
	})

	t.Run("manual batch with excess writes nothing", func(t *testing.T) {
		inv := l.ingest(t, domain.KindInvoice, "C-INV", "100")
		r := l.receipt(t, "150")

		res, err := l.allocations.ExecuteManualAllocation(ctx, usecase.ExecuteManualAllocationInput{
			PartyType: customer.Type,
			PartyID:   customer.ID,
			CreatedBy: "clerk-1",
			Entries: []domain.ManualAllocationEntry{{
				DebitDocumentID: inv,
				Sources: []domain.ManualAllocationSource{
					{SourceKind: domain.SourceKindReceipt, SourceID: r.ID, AmountBase: dec("150")},
				},
			}},
		})
		require.NoError(t, err)
		assert.False(t, res.CanExecute)
		assert.Nil(t, res.Batch)
		l.requirePending(t, inv, "100")
		l.requirePending(t, r.LedgerDocumentID, "150")

		res, err = l.allocations.ExecuteManualAllocation(ctx, usecase.ExecuteManualAllocationInput{
			PartyType: customer.Type,
			PartyID:   customer.ID,
			CreatedBy: "clerk-1",
			Entries: []domain.ManualAllocationEntry{{
				DebitDocumentID: inv,
				Sources: []domain.ManualAllocationSource{
					{SourceKind: domain.SourceKindReceipt, SourceID: r.ID, AmountBase: dec("100")},
				},
			}},
		})
		require.NoError(t, err)
		require.True(t, res.CanExecute, "warnings: %v", res.Warnings)
		require.NotNil(t, res.Batch)

		batch, err := l.allocations.GetBatch(ctx, res.Batch.ID)
		require.NoError(t, err)
		require.Len(t, batch.Items, 1)
		assert.True(t, batch.TotalBase.Equal(dec("100")))
		l.requirePending(t, r.LedgerDocumentID, "50")
	})

	t.Run("voided document keeps its allocations", func(t *testing.T) {
		inv := l.ingest(t, domain.KindInvoice, "D-INV", "100")
		l.receipt(t, "40", usecase.ReceiptAllocationInput{DebitDocumentID: inv, AmountBase: dec("40")})

		require.NoError(t, l.ingestion.CancelFiscalDocument(ctx, customer.Type, "D-INV", domain.KindInvoice))

		allocs, err := l.allocations.ListDocumentAllocations(ctx, inv)
		require.NoError(t, err)
		assert.Len(t, allocs, 1)

		sel, err := l.balances.GetSelectablesForReceipt(ctx, customer)
		require.NoError(t, err)
		for _, d := range sel.Debits {
			assert.NotEqual(t, inv, d.ID)
		}
	})

	l.requireConsistent(t)
}

func TestIntegration_ConcurrentAllocationsNeverOverdraw(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	l := setupLedger(t)
	ctx := context.Background()

	inv := l.ingest(t, domain.KindInvoice, "RACE-INV", "100")
	r := l.receipt(t, "1000")

	const workers = 20
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := l.allocations.ApplyAllocation(ctx, usecase.ApplyAllocationInput{
				SourceDocumentID: r.LedgerDocumentID,
				DebitDocumentID:  inv,
				AmountBase:       dec("10"),
			})
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, succeeded)
	l.requirePending(t, inv, "0")
	l.requirePending(t, r.LedgerDocumentID, "900")
	l.requireConsistent(t)
}

func TestIntegration_SequenceIsGapless(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	l := setupLedger(t)
	ctx := context.Background()

	const n = 30
	got := make(chan int64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			num, err := l.sequences.GetNext(ctx, "invoice:2026")
			if err != nil {
				t.Errorf("GetNext: %v", err)
				return
			}
			got <- num
		}()
	}
	wg.Wait()
	close(got)

	seen := make(map[int64]bool, n)
	for num := range got {
		assert.False(t, seen[num], "number %d issued twice", num)
		seen[num] = true
	}
	for want := int64(1); want <= n; want++ {
		assert.True(t, seen[want], "number %d missing", want)
	}

	seq, err := l.sequences.Peek(ctx, "invoice:2026")
	require.NoError(t, err)
	assert.Equal(t, int64(n+1), seq.NextNumber)
}

func TestIntegration_PendingBoundsEnforcedByDatabase(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	l := setupLedger(t)
	ctx := context.Background()
	inv := l.ingest(t, domain.KindInvoice, "BOUNDS", "50")

	txMgr := postgres.NewTxManager(l.pool, 0)
	tx, err := txMgr.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	err = l.docs.UpdatePending(ctx, tx, inv, dec("51"), time.Now())
	assert.ErrorIs(t, err, domain.ErrPendingOutOfBounds)
}
