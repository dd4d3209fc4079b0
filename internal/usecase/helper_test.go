package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/iho/payledger/internal/domain"
	"github.com/iho/payledger/internal/infrastructure/metrics"
	"github.com/iho/payledger/internal/usecase"
	"github.com/iho/payledger/internal/usecase/mocks"
)

var (
	customer = domain.PartyRef{Type: domain.PartyTypeCustomer, ID: "cust-1"}
	supplier = domain.PartyRef{Type: domain.PartyTypeSupplier, ID: "supp-1"}
	docDate  = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type fixture struct {
	store       *mocks.Store
	txMgr       *mocks.MockTransactionManager
	docRepo     *mocks.MockDocumentRepository
	receiptRepo *mocks.MockReceiptRepository
	allocRepo   *mocks.MockAllocationRepository
	cache       *mocks.MockCache
	registry    *prometheus.Registry

	sequences   *usecase.SequenceUseCase
	documents   *usecase.DocumentUseCase
	ingestion   *usecase.IngestionUseCase
	receipts    *usecase.ReceiptUseCase
	allocations *usecase.AllocationUseCase
	balances    *usecase.BalanceUseCase
	consistency *usecase.ConsistencyUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := mocks.NewStore()
	f := &fixture{
		store:       store,
		txMgr:       mocks.NewMockTransactionManager(store),
		docRepo:     mocks.NewMockDocumentRepository(store),
		receiptRepo: mocks.NewMockReceiptRepository(store),
		allocRepo:   mocks.NewMockAllocationRepository(store),
		cache:       mocks.NewMockCache(),
		registry:    prometheus.NewRegistry(),
	}

	seqRepo := mocks.NewMockSequenceRepository(store)
	outboxRepo := mocks.NewMockOutboxRepository(store)
	idGen := mocks.NewMockIDGenerator()
	m := metrics.NewWithRegisterer(f.registry)

	f.sequences = usecase.NewSequenceUseCase(f.txMgr, nil, seqRepo, m)
	f.documents = usecase.NewDocumentUseCase(f.txMgr, nil, f.docRepo, outboxRepo, idGen, f.cache, m)
	f.ingestion = usecase.NewIngestionUseCase(f.documents)
	f.receipts = usecase.NewReceiptUseCase(f.txMgr, nil, f.sequences, f.docRepo, f.receiptRepo, f.allocRepo, outboxRepo, idGen, f.cache, m)
	f.allocations = usecase.NewAllocationUseCase(f.txMgr, nil, f.docRepo, f.receiptRepo, f.allocRepo, outboxRepo, idGen, f.cache, m)
	f.balances = usecase.NewBalanceUseCase(f.docRepo, f.documents, f.cache)
	f.consistency = usecase.NewConsistencyUseCase(mocks.NewMockConsistencyRepository(store), m)

	return f
}

// ingest records a customer document dated docDate and returns its id.
func (f *fixture) ingest(t *testing.T, kind domain.DocumentKind, ref, amount string) string {
	t.Helper()
	return f.ingestFor(t, customer, kind, ref, amount, docDate)
}

func (f *fixture) ingestFor(t *testing.T, party domain.PartyRef, kind domain.DocumentKind, ref, amount string, date time.Time) string {
	t.Helper()
	id, err := f.ingestion.UpsertFiscalDocument(context.Background(), usecase.FiscalDocumentInput{
		DocumentDate:      date,
		PartyType:         party.Type,
		PartyID:           party.ID,
		Kind:              kind,
		ExternalRefID:     ref,
		ExternalRefNumber: "No. " + ref,
		Currency:          "USD",
		AmountBase:        dec(amount),
		FxRate:            decimal.NewFromInt(1),
	})
	require.NoError(t, err)
	return id
}

// receipt creates a single cash-line customer receipt.
func (f *fixture) receipt(t *testing.T, amount string, allocations ...usecase.ReceiptAllocationInput) *domain.Receipt {
	t.Helper()
	r, err := f.receipts.CreateReceipt(context.Background(), cashReceipt(customer, amount, allocations...))
	require.NoError(t, err)
	return r
}

func cashReceipt(party domain.PartyRef, amount string, allocations ...usecase.ReceiptAllocationInput) usecase.CreateReceiptInput {
	return usecase.CreateReceiptInput{
		Date:      docDate,
		PartyType: party.Type,
		PartyID:   party.ID,
		Currency:  "USD",
		FxRate:    decimal.NewFromInt(1),
		CreatedBy: "clerk-1",
		Lines: []usecase.PaymentLineInput{
			{Method: domain.MethodCash, AmountOriginal: dec(amount)},
		},
		Allocations: allocations,
	}
}

func (f *fixture) pending(t *testing.T, id string) decimal.Decimal {
	t.Helper()
	doc := f.store.Document(id)
	require.NotNil(t, doc, "document %s", id)
	return doc.PendingBase
}

func (f *fixture) requirePending(t *testing.T, id, want string) {
	t.Helper()
	got := f.pending(t, id)
	require.True(t, got.Equal(dec(want)), "document %s pending = %s, want %s", id, got, want)
}

// requireConsistent checks the ledger-wide conservation rules.
func (f *fixture) requireConsistent(t *testing.T) {
	t.Helper()
	report, err := f.consistency.Check(context.Background())
	require.NoError(t, err)
	require.True(t, report.Consistent, "issues: %+v", report.Issues)
}

func countEvents(events []*domain.OutboxEvent, eventType string) int {
	n := 0
	for _, e := range events {
		if e.EventType == eventType {
			n++
		}
	}
	return n
}
