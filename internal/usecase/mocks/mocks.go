package mocks

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/payledger/internal/domain"
	"github.com/iho/payledger/internal/usecase"
)

// errCheckViolation mirrors the ledger_documents pending CHECK constraint.
var errCheckViolation = errors.New("check constraint violated: pending_base out of bounds")

// Store is an in-memory ledger with transactional semantics. Transactions are
// serialized; Rollback restores the state captured by Begin.
type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex

	docs        map[string]*domain.LedgerDocument
	receipts    map[string]*domain.Receipt
	allocations []*domain.Allocation
	batches     map[string]*domain.AllocationBatch
	sequences   map[string]int64
	events      []*domain.OutboxEvent
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		docs:      make(map[string]*domain.LedgerDocument),
		receipts:  make(map[string]*domain.Receipt),
		batches:   make(map[string]*domain.AllocationBatch),
		sequences: make(map[string]int64),
	}
}

type snapshot struct {
	docs        map[string]*domain.LedgerDocument
	receipts    map[string]*domain.Receipt
	allocations []*domain.Allocation
	batches     map[string]*domain.AllocationBatch
	sequences   map[string]int64
	events      []*domain.OutboxEvent
}

func (s *Store) snapshot() snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := snapshot{
		docs:        make(map[string]*domain.LedgerDocument, len(s.docs)),
		receipts:    make(map[string]*domain.Receipt, len(s.receipts)),
		allocations: append([]*domain.Allocation(nil), s.allocations...),
		batches:     make(map[string]*domain.AllocationBatch, len(s.batches)),
		sequences:   make(map[string]int64, len(s.sequences)),
		events:      make([]*domain.OutboxEvent, 0, len(s.events)),
	}
	for id, d := range s.docs {
		snap.docs[id] = cloneDoc(d)
	}
	for id, r := range s.receipts {
		snap.receipts[id] = cloneReceipt(r)
	}
	for id, b := range s.batches {
		snap.batches[id] = b
	}
	for scope, n := range s.sequences {
		snap.sequences[scope] = n
	}
	for _, e := range s.events {
		c := *e
		snap.events = append(snap.events, &c)
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.docs = snap.docs
	s.receipts = snap.receipts
	s.allocations = snap.allocations
	s.batches = snap.batches
	s.sequences = snap.sequences
	s.events = snap.events
}

// SeedDocument stores a document directly, outside any transaction.
func (s *Store) SeedDocument(doc *domain.LedgerDocument) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[doc.ID] = cloneDoc(doc)
}

// Document returns a copy of a stored document, or nil.
func (s *Store) Document(id string) *domain.LedgerDocument {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if d, ok := s.docs[id]; ok {
		return cloneDoc(d)
	}
	return nil
}

// Documents returns copies of every stored document.
func (s *Store) Documents() []*domain.LedgerDocument {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.LedgerDocument, 0, len(s.docs))
	for _, d := range s.docs {
		out = append(out, cloneDoc(d))
	}
	sortByID(out)
	return out
}

// Allocations returns every stored allocation in insertion order.
func (s *Store) Allocations() []*domain.Allocation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*domain.Allocation(nil), s.allocations...)
}

// Events returns every outbox event in insertion order.
func (s *Store) Events() []*domain.OutboxEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*domain.OutboxEvent(nil), s.events...)
}

// Receipts returns the number of stored receipts.
func (s *Store) Receipts() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.receipts)
}

func cloneDoc(d *domain.LedgerDocument) *domain.LedgerDocument {
	c := *d
	if d.VoidedAt != nil {
		t := *d.VoidedAt
		c.VoidedAt = &t
	}
	return &c
}

func cloneReceipt(r *domain.Receipt) *domain.Receipt {
	c := *r
	c.Lines = append([]domain.PaymentLine(nil), r.Lines...)
	if r.VoidedAt != nil {
		t := *r.VoidedAt
		c.VoidedAt = &t
	}
	return &c
}

func sortByID(docs []*domain.LedgerDocument) {
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
}

func sortChronological(docs []*domain.LedgerDocument) {
	sort.Slice(docs, func(i, j int) bool {
		a, b := docs[i], docs[j]
		if !a.DocumentDate.Equal(b.DocumentDate) {
			return a.DocumentDate.Before(b.DocumentDate)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}

func sortNewestFirst(docs []*domain.LedgerDocument) {
	sortChronological(docs)
	for i, j := 0, len(docs)-1; i < j; i, j = i+1, j-1 {
		docs[i], docs[j] = docs[j], docs[i]
	}
}

// MockTransactionManager is a mock implementation of TransactionManager backed by a Store.
type MockTransactionManager struct {
	store *Store

	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
	// CommitErr, when set, makes every commit fail and roll back instead.
	CommitErr error

	mu      sync.Mutex
	begins  int
	commits int
}

func NewMockTransactionManager(store *Store) *MockTransactionManager {
	return &MockTransactionManager{store: store}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.store.txMu.Lock()
	m.mu.Lock()
	m.begins++
	m.mu.Unlock()

	return &MockTransaction{manager: m, snap: m.store.snapshot()}, nil
}

func (m *MockTransactionManager) BeginSerializable(ctx context.Context) (usecase.Transaction, error) {
	return m.Begin(ctx)
}

// Counts returns how many transactions were begun and committed.
func (m *MockTransactionManager) Counts() (begins, commits int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.begins, m.commits
}

// MockTransaction is a mock implementation of Transaction.
type MockTransaction struct {
	manager *MockTransactionManager
	snap    snapshot
	done    bool
}

func (t *MockTransaction) Commit(ctx context.Context) error {
	if t.done {
		return errors.New("tx is closed")
	}
	if t.manager.CommitErr != nil {
		t.finish(true)
		return t.manager.CommitErr
	}
	t.manager.mu.Lock()
	t.manager.commits++
	t.manager.mu.Unlock()
	t.finish(false)
	return nil
}

func (t *MockTransaction) Rollback(ctx context.Context) error {
	if t.done {
		return nil
	}
	t.finish(true)
	return nil
}

func (t *MockTransaction) finish(rollback bool) {
	if rollback {
		t.manager.store.restore(t.snap)
	}
	t.done = true
	t.manager.store.txMu.Unlock()
}

// MockDocumentRepository is a mock implementation of DocumentRepository.
type MockDocumentRepository struct {
	store *Store

	GetByIDsForUpdateFunc func(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.LedgerDocument, error)
	UpdatePendingFunc     func(ctx context.Context, tx usecase.Transaction, id string, pending decimal.Decimal, updatedAt time.Time) error
}

func NewMockDocumentRepository(store *Store) *MockDocumentRepository {
	return &MockDocumentRepository{store: store}
}

func (m *MockDocumentRepository) InsertIfAbsent(ctx context.Context, tx usecase.Transaction, doc *domain.LedgerDocument) (bool, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	for _, d := range m.store.docs {
		if d.IsActive() && d.PartyType == doc.PartyType && d.PartyID == doc.PartyID &&
			d.Kind == doc.Kind && d.ExternalRefID == doc.ExternalRefID {
			return false, nil
		}
	}
	if err := doc.CheckPendingBounds(); err != nil {
		return false, errCheckViolation
	}
	m.store.docs[doc.ID] = cloneDoc(doc)
	return true, nil
}

func (m *MockDocumentRepository) GetByID(ctx context.Context, id string) (*domain.LedgerDocument, error) {
	m.store.mu.RLock()
	defer m.store.mu.RUnlock()
	if d, ok := m.store.docs[id]; ok {
		return cloneDoc(d), nil
	}
	return nil, domain.ErrDocumentNotFound
}

func (m *MockDocumentRepository) GetByIDs(ctx context.Context, ids []string) ([]*domain.LedgerDocument, error) {
	m.store.mu.RLock()
	defer m.store.mu.RUnlock()
	var docs []*domain.LedgerDocument
	for _, id := range ids {
		if d, ok := m.store.docs[id]; ok {
			docs = append(docs, cloneDoc(d))
		}
	}
	return docs, nil
}

func (m *MockDocumentRepository) GetByIDsForUpdate(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.LedgerDocument, error) {
	if m.GetByIDsForUpdateFunc != nil {
		return m.GetByIDsForUpdateFunc(ctx, tx, ids)
	}
	docs, err := m.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	sortByID(docs)
	return docs, nil
}

func (m *MockDocumentRepository) GetActiveByExternalRefForUpdate(ctx context.Context, tx usecase.Transaction, party domain.PartyRef, kind domain.DocumentKind, externalRefID string) (*domain.LedgerDocument, error) {
	m.store.mu.RLock()
	defer m.store.mu.RUnlock()
	for _, d := range m.store.docs {
		if d.IsActive() && d.Party() == party && d.Kind == kind && d.ExternalRefID == externalRefID {
			return cloneDoc(d), nil
		}
	}
	return nil, domain.ErrDocumentNotFound
}

func (m *MockDocumentRepository) FindByExternalRefForUpdate(ctx context.Context, tx usecase.Transaction, partyType domain.PartyType, kind domain.DocumentKind, externalRefID string) ([]*domain.LedgerDocument, error) {
	return m.filter(func(d *domain.LedgerDocument) bool {
		return d.PartyType == partyType && d.Kind == kind && d.ExternalRefID == externalRefID
	}, sortByID), nil
}

func (m *MockDocumentRepository) FindActiveDebitsByExternalRef(ctx context.Context, party domain.PartyRef, externalRefID string) ([]*domain.LedgerDocument, error) {
	return m.filter(func(d *domain.LedgerDocument) bool {
		return d.IsActive() && d.Party() == party && d.Kind.IsDebit() && d.ExternalRefID == externalRefID
	}, sortByID), nil
}

func (m *MockDocumentRepository) UpdateAmounts(ctx context.Context, tx usecase.Transaction, doc *domain.LedgerDocument) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	if _, ok := m.store.docs[doc.ID]; !ok {
		return domain.ErrDocumentNotFound
	}
	if err := doc.CheckPendingBounds(); err != nil {
		return errCheckViolation
	}
	m.store.docs[doc.ID] = cloneDoc(doc)
	return nil
}

func (m *MockDocumentRepository) UpdatePending(ctx context.Context, tx usecase.Transaction, id string, pending decimal.Decimal, updatedAt time.Time) error {
	if m.UpdatePendingFunc != nil {
		return m.UpdatePendingFunc(ctx, tx, id, pending, updatedAt)
	}
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	d, ok := m.store.docs[id]
	if !ok {
		return domain.ErrDocumentNotFound
	}
	if pending.IsNegative() || pending.GreaterThan(d.AmountBase) {
		return errCheckViolation
	}
	d.PendingBase = pending
	d.UpdatedAt = updatedAt
	return nil
}

func (m *MockDocumentRepository) Void(ctx context.Context, tx usecase.Transaction, id string, voidedAt time.Time) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	d, ok := m.store.docs[id]
	if !ok {
		return domain.ErrDocumentNotFound
	}
	d.Status = domain.StatusVoided
	d.VoidedAt = &voidedAt
	d.UpdatedAt = voidedAt
	return nil
}

func (m *MockDocumentRepository) ListActiveByParty(ctx context.Context, party domain.PartyRef) ([]*domain.LedgerDocument, error) {
	return m.filter(func(d *domain.LedgerDocument) bool {
		return d.IsActive() && d.Party() == party
	}, sortNewestFirst), nil
}

func (m *MockDocumentRepository) ListSelectable(ctx context.Context, party domain.PartyRef, kinds []domain.DocumentKind) ([]*domain.LedgerDocument, error) {
	return m.filter(func(d *domain.LedgerDocument) bool {
		if !d.IsActive() || d.Party() != party || !d.PendingBase.IsPositive() {
			return false
		}
		for _, k := range kinds {
			if d.Kind == k {
				return true
			}
		}
		return false
	}, sortChronological), nil
}

func (m *MockDocumentRepository) List(ctx context.Context, party domain.PartyRef, filter domain.DocumentFilter, limit, offset int) ([]*domain.LedgerDocument, int, error) {
	docs := m.filter(func(d *domain.LedgerDocument) bool {
		switch {
		case d.Party() != party:
			return false
		case filter.From != nil && d.DocumentDate.Before(*filter.From):
			return false
		case filter.To != nil && d.DocumentDate.After(*filter.To):
			return false
		case filter.Kind != nil && d.Kind != *filter.Kind:
			return false
		case filter.Status != nil && d.Status != *filter.Status:
			return false
		}
		return true
	}, sortNewestFirst)

	total := len(docs)
	if offset >= total {
		return []*domain.LedgerDocument{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return docs[offset:end], total, nil
}

func (m *MockDocumentRepository) ListActiveBefore(ctx context.Context, party domain.PartyRef, before time.Time) ([]*domain.LedgerDocument, error) {
	return m.filter(func(d *domain.LedgerDocument) bool {
		return d.IsActive() && d.Party() == party && d.DocumentDate.Before(before)
	}, sortChronological), nil
}

func (m *MockDocumentRepository) ListActiveBetween(ctx context.Context, party domain.PartyRef, from, to time.Time) ([]*domain.LedgerDocument, error) {
	return m.filter(func(d *domain.LedgerDocument) bool {
		return d.IsActive() && d.Party() == party && !d.DocumentDate.Before(from) && !d.DocumentDate.After(to)
	}, sortChronological), nil
}

func (m *MockDocumentRepository) PendingTotals(ctx context.Context, party domain.PartyRef) (decimal.Decimal, decimal.Decimal, error) {
	m.store.mu.RLock()
	defer m.store.mu.RUnlock()
	outstanding, credits := decimal.Zero, decimal.Zero
	for _, d := range m.store.docs {
		if !d.IsActive() || d.Party() != party {
			continue
		}
		if d.Kind.IsDebit() {
			outstanding = outstanding.Add(d.PendingBase)
		} else {
			credits = credits.Add(d.PendingBase)
		}
	}
	return outstanding, credits, nil
}

func (m *MockDocumentRepository) filter(keep func(*domain.LedgerDocument) bool, order func([]*domain.LedgerDocument)) []*domain.LedgerDocument {
	m.store.mu.RLock()
	defer m.store.mu.RUnlock()
	out := []*domain.LedgerDocument{}
	for _, d := range m.store.docs {
		if keep(d) {
			out = append(out, cloneDoc(d))
		}
	}
	order(out)
	return out
}

// MockReceiptRepository is a mock implementation of ReceiptRepository.
type MockReceiptRepository struct {
	store *Store

	CreateFunc func(ctx context.Context, tx usecase.Transaction, receipt *domain.Receipt) error
}

func NewMockReceiptRepository(store *Store) *MockReceiptRepository {
	return &MockReceiptRepository{store: store}
}

func (m *MockReceiptRepository) Create(ctx context.Context, tx usecase.Transaction, receipt *domain.Receipt) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, receipt)
	}
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	for _, r := range m.store.receipts {
		if r.PartyType == receipt.PartyType && r.Number == receipt.Number {
			return fmt.Errorf("duplicate receipt number %s", receipt.Number)
		}
	}
	m.store.receipts[receipt.ID] = cloneReceipt(receipt)
	return nil
}

func (m *MockReceiptRepository) GetByID(ctx context.Context, id string) (*domain.Receipt, error) {
	m.store.mu.RLock()
	defer m.store.mu.RUnlock()
	if r, ok := m.store.receipts[id]; ok {
		return cloneReceipt(r), nil
	}
	return nil, domain.ErrReceiptNotFound
}

func (m *MockReceiptRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Receipt, error) {
	return m.GetByID(ctx, id)
}

func (m *MockReceiptRepository) MarkVoided(ctx context.Context, tx usecase.Transaction, id string, voidedAt time.Time) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	r, ok := m.store.receipts[id]
	if !ok {
		return domain.ErrReceiptNotFound
	}
	r.IsVoided = true
	r.VoidedAt = &voidedAt
	return nil
}

func (m *MockReceiptRepository) MirrorDocumentIDs(ctx context.Context, receiptIDs []string) (map[string]string, error) {
	m.store.mu.RLock()
	defer m.store.mu.RUnlock()
	out := make(map[string]string, len(receiptIDs))
	for _, id := range receiptIDs {
		if r, ok := m.store.receipts[id]; ok {
			out[id] = r.LedgerDocumentID
		}
	}
	return out, nil
}

// MockAllocationRepository is a mock implementation of AllocationRepository.
type MockAllocationRepository struct {
	store *Store

	CreateFunc func(ctx context.Context, tx usecase.Transaction, allocation *domain.Allocation) error
}

func NewMockAllocationRepository(store *Store) *MockAllocationRepository {
	return &MockAllocationRepository{store: store}
}

func (m *MockAllocationRepository) Create(ctx context.Context, tx usecase.Transaction, allocation *domain.Allocation) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, allocation)
	}
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	c := *allocation
	m.store.allocations = append(m.store.allocations, &c)
	return nil
}

func (m *MockAllocationRepository) CreateBatch(ctx context.Context, tx usecase.Transaction, batch *domain.AllocationBatch, allocations []*domain.Allocation) error {
	m.store.mu.Lock()
	m.store.batches[batch.ID] = batch
	m.store.mu.Unlock()
	for _, a := range allocations {
		if err := m.Create(ctx, tx, a); err != nil {
			return err
		}
	}
	return nil
}

func (m *MockAllocationRepository) CountBySource(ctx context.Context, tx usecase.Transaction, sourceDocumentID string) (int, error) {
	m.store.mu.RLock()
	defer m.store.mu.RUnlock()
	n := 0
	for _, a := range m.store.allocations {
		if a.SourceDocumentID == sourceDocumentID {
			n++
		}
	}
	return n, nil
}

func (m *MockAllocationRepository) ListByDocument(ctx context.Context, documentID string) ([]*domain.Allocation, error) {
	m.store.mu.RLock()
	defer m.store.mu.RUnlock()
	var out []*domain.Allocation
	for _, a := range m.store.allocations {
		if a.SourceDocumentID == documentID || a.DebitDocumentID == documentID {
			c := *a
			out = append(out, &c)
		}
	}
	return out, nil
}

func (m *MockAllocationRepository) GetBatch(ctx context.Context, id string) (*domain.AllocationBatch, error) {
	m.store.mu.RLock()
	defer m.store.mu.RUnlock()
	if b, ok := m.store.batches[id]; ok {
		return b, nil
	}
	return nil, fmt.Errorf("%w: allocation batch", domain.ErrNotFound)
}

// MockSequenceRepository is a mock implementation of SequenceRepository.
type MockSequenceRepository struct {
	store *Store
}

func NewMockSequenceRepository(store *Store) *MockSequenceRepository {
	return &MockSequenceRepository{store: store}
}

func (m *MockSequenceRepository) Next(ctx context.Context, tx usecase.Transaction, scope string) (int64, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	next, ok := m.store.sequences[scope]
	if !ok {
		next = 1
	}
	m.store.sequences[scope] = next + 1
	return next, nil
}

func (m *MockSequenceRepository) Peek(ctx context.Context, scope string) (int64, error) {
	m.store.mu.RLock()
	defer m.store.mu.RUnlock()
	if next, ok := m.store.sequences[scope]; ok {
		return next, nil
	}
	return 1, nil
}

// MockOutboxRepository is a mock implementation of OutboxRepository.
type MockOutboxRepository struct {
	store *Store
}

func NewMockOutboxRepository(store *Store) *MockOutboxRepository {
	return &MockOutboxRepository{store: store}
}

func (m *MockOutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	c := *event
	m.store.events = append(m.store.events, &c)
	return nil
}

func (m *MockOutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	m.store.mu.RLock()
	defer m.store.mu.RUnlock()
	var out []*domain.OutboxEvent
	for _, e := range m.store.events {
		if !e.Published && len(out) < limit {
			c := *e
			out = append(out, &c)
		}
	}
	return out, nil
}

func (m *MockOutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	for _, e := range m.store.events {
		if e.ID == id {
			e.Published = true
			e.PublishedAt = &publishedAt
		}
	}
	return nil
}

func (m *MockOutboxRepository) DeletePublished(ctx context.Context, before time.Time) (int64, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	kept := m.store.events[:0]
	for _, e := range m.store.events {
		if !(e.Published && e.PublishedAt != nil && e.PublishedAt.Before(before)) {
			kept = append(kept, e)
		}
	}
	deleted := int64(len(m.store.events) - len(kept))
	m.store.events = kept
	return deleted, nil
}

// MockConsistencyRepository is a mock implementation of ConsistencyRepository.
type MockConsistencyRepository struct {
	store *Store
}

func NewMockConsistencyRepository(store *Store) *MockConsistencyRepository {
	return &MockConsistencyRepository{store: store}
}

func (m *MockConsistencyRepository) DocumentAllocationTotals(ctx context.Context) ([]usecase.DocumentAllocationTotal, error) {
	m.store.mu.RLock()
	defer m.store.mu.RUnlock()

	allocated := make(map[string]decimal.Decimal)
	for _, a := range m.store.allocations {
		allocated[a.SourceDocumentID] = allocated[a.SourceDocumentID].Add(a.AmountBase)
		allocated[a.DebitDocumentID] = allocated[a.DebitDocumentID].Add(a.AmountBase)
	}

	out := make([]usecase.DocumentAllocationTotal, 0, len(m.store.docs))
	for _, d := range m.store.docs {
		out = append(out, usecase.DocumentAllocationTotal{Document: cloneDoc(d), Allocated: allocated[d.ID]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Document.ID < out[j].Document.ID })
	return out, nil
}

// MockIDGenerator is a mock implementation of IDGenerator.
// Generated ids sort in creation order.
type MockIDGenerator struct {
	GenerateFunc func() string
	counter      int
	mu           sync.Mutex
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return fmt.Sprintf("mock-id-%06d", m.counter)
}

// MockCache is a mock implementation of Cache.
type MockCache struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMockCache() *MockCache {
	return &MockCache{data: make(map[string][]byte)}
}

func (m *MockCache) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.data[key], nil
}

func (m *MockCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *MockCache) Delete(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

func (m *MockCache) Incr(ctx context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	if raw, ok := m.data[key]; ok {
		v, err := strconv.ParseInt(string(raw), 10, 64)
		if err != nil {
			return 0, err
		}
		n = v
	}
	n++
	m.data[key] = []byte(strconv.FormatInt(n, 10))
	return n, nil
}

// Has reports whether key is cached.
func (m *MockCache) Has(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.data[key]
	return ok
}

// MockIdempotencyStore is a mock implementation of IdempotencyStore.
type MockIdempotencyStore struct {
	mu   sync.RWMutex
	data map[string][]byte

	CheckAndSetFunc func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	UpdateFunc      func(ctx context.Context, key string, response []byte, ttl time.Duration) error
	ReleaseFunc     func(ctx context.Context, key string) error
}

func NewMockIdempotencyStore() *MockIdempotencyStore {
	return &MockIdempotencyStore{
		data: make(map[string][]byte),
	}
}

func (m *MockIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	if m.CheckAndSetFunc != nil {
		return m.CheckAndSetFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.data[key]; ok {
		return true, existing, nil
	}
	if response != nil {
		m.data[key] = response
	} else {
		m.data[key] = []byte("processing")
	}
	return false, nil, nil
}

func (m *MockIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = response
	return nil
}

func (m *MockIdempotencyStore) Release(ctx context.Context, key string) error {
	if m.ReleaseFunc != nil {
		return m.ReleaseFunc(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}
