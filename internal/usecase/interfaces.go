package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/payledger/internal/domain"
)

// DocumentRepository defines data access for ledger documents.
type DocumentRepository interface {
	// InsertIfAbsent inserts doc unless an Active document with the same
	// idempotency key exists. It reports whether the row was inserted.
	InsertIfAbsent(ctx context.Context, tx Transaction, doc *domain.LedgerDocument) (bool, error)
	GetByID(ctx context.Context, id string) (*domain.LedgerDocument, error)
	GetByIDs(ctx context.Context, ids []string) ([]*domain.LedgerDocument, error)
	// GetByIDsForUpdate locks the rows in id order.
	GetByIDsForUpdate(ctx context.Context, tx Transaction, ids []string) ([]*domain.LedgerDocument, error)
	GetActiveByExternalRefForUpdate(ctx context.Context, tx Transaction, party domain.PartyRef, kind domain.DocumentKind, externalRefID string) (*domain.LedgerDocument, error)
	// FindByExternalRefForUpdate matches across parties of the given type and all statuses.
	FindByExternalRefForUpdate(ctx context.Context, tx Transaction, partyType domain.PartyType, kind domain.DocumentKind, externalRefID string) ([]*domain.LedgerDocument, error)
	FindActiveDebitsByExternalRef(ctx context.Context, party domain.PartyRef, externalRefID string) ([]*domain.LedgerDocument, error)
	UpdateAmounts(ctx context.Context, tx Transaction, doc *domain.LedgerDocument) error
	UpdatePending(ctx context.Context, tx Transaction, id string, pending decimal.Decimal, updatedAt time.Time) error
	Void(ctx context.Context, tx Transaction, id string, voidedAt time.Time) error
	ListActiveByParty(ctx context.Context, party domain.PartyRef) ([]*domain.LedgerDocument, error)
	// ListSelectable returns Active documents of the kinds with PendingBase > 0, oldest first.
	ListSelectable(ctx context.Context, party domain.PartyRef, kinds []domain.DocumentKind) ([]*domain.LedgerDocument, error)
	List(ctx context.Context, party domain.PartyRef, filter domain.DocumentFilter, limit, offset int) ([]*domain.LedgerDocument, int, error)
	ListActiveBefore(ctx context.Context, party domain.PartyRef, before time.Time) ([]*domain.LedgerDocument, error)
	ListActiveBetween(ctx context.Context, party domain.PartyRef, from, to time.Time) ([]*domain.LedgerDocument, error)
	PendingTotals(ctx context.Context, party domain.PartyRef) (outstanding, credits decimal.Decimal, err error)
}

// ReceiptRepository defines data access for receipts and their payment lines.
type ReceiptRepository interface {
	Create(ctx context.Context, tx Transaction, receipt *domain.Receipt) error
	GetByID(ctx context.Context, id string) (*domain.Receipt, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Receipt, error)
	MarkVoided(ctx context.Context, tx Transaction, id string, voidedAt time.Time) error
	// MirrorDocumentIDs maps receipt ids to their mirror ledger document ids.
	MirrorDocumentIDs(ctx context.Context, receiptIDs []string) (map[string]string, error)
}

// AllocationRepository defines data access for allocations and batches.
type AllocationRepository interface {
	Create(ctx context.Context, tx Transaction, allocation *domain.Allocation) error
	// CreateBatch writes the batch, its allocations and its items.
	CreateBatch(ctx context.Context, tx Transaction, batch *domain.AllocationBatch, allocations []*domain.Allocation) error
	CountBySource(ctx context.Context, tx Transaction, sourceDocumentID string) (int, error)
	ListByDocument(ctx context.Context, documentID string) ([]*domain.Allocation, error)
	GetBatch(ctx context.Context, id string) (*domain.AllocationBatch, error)
}

// SequenceRepository defines data access for numbering sequences.
type SequenceRepository interface {
	// Next issues the next number of scope, creating the scope lazily.
	Next(ctx context.Context, tx Transaction, scope string) (int64, error)
	Peek(ctx context.Context, scope string) (int64, error)
}

// DocumentAllocationTotal pairs a document with the allocations recorded against it.
type DocumentAllocationTotal struct {
	Document  *domain.LedgerDocument
	Allocated decimal.Decimal
}

// ConsistencyRepository defines data access for ledger-wide checks.
type ConsistencyRepository interface {
	DocumentAllocationTotals(ctx context.Context) ([]DocumentAllocationTotal, error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublished(ctx context.Context, before time.Time) (int64, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
	BeginSerializable(ctx context.Context) (Transaction, error)
}

// Retrier re-runs an operation on transient store failures.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Cache defines caching operations. Get returns nil, nil on a miss.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	// Incr atomically increments the integer stored at key, starting from 0.
	Incr(ctx context.Context, key string) (int64, error)
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops a key whose request did not complete, so it can be retried.
	Release(ctx context.Context, key string) error
}
