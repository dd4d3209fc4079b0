package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"

	"github.com/iho/payledger/internal/domain"
	"github.com/iho/payledger/internal/infrastructure/postgres/generated"
)

var outboxColumns = []string{
	"id", "party_type", "party_id", "aggregate_id", "aggregate_type", "event_type",
	"payload", "created_at", "published", "published_at",
}

func TestOutboxRepositoryCreate(t *testing.T) {
	mock := newMockPool(t)
	repo := &OutboxRepository{queries: generated.New(mock)}
	tx := beginMockTx(t, mock)
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectExec("INSERT INTO outbox_events").
		WithArgs("evt-1", "supplier", "sup-1", "alloc-1", domain.AggregateTypeAllocation,
			domain.EventTypeAllocationApplied, []byte(`{}`), timeToPgTimestamptz(at)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.Create(context.Background(), tx, &domain.OutboxEvent{
		ID:            "evt-1",
		PartyType:     domain.PartyTypeSupplier,
		PartyID:       "sup-1",
		AggregateID:   "alloc-1",
		AggregateType: domain.AggregateTypeAllocation,
		EventType:     domain.EventTypeAllocationApplied,
		CreatedAt:     at,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assertExpectations(t, mock)
}

func TestOutboxRepositoryCreateRequiresParty(t *testing.T) {
	mock := newMockPool(t)
	repo := &OutboxRepository{queries: generated.New(mock)}
	tx := beginMockTx(t, mock)

	err := repo.Create(context.Background(), tx, &domain.OutboxEvent{ID: "evt-1", PartyType: "vendor", PartyID: "v-1"})
	if !errors.Is(err, domain.ErrInvalidPartyType) {
		t.Fatalf("expected ErrInvalidPartyType, got %v", err)
	}

	assertExpectations(t, mock)
}

func TestOutboxRepositoryGetUnpublished(t *testing.T) {
	mock := newMockPool(t)
	repo := &OutboxRepository{queries: generated.New(mock)}
	at := timeToPgTimestamptz(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))

	mock.ExpectQuery("SELECT (.+) FROM outbox_events").
		WithArgs(int32(10)).
		WillReturnRows(pgxmock.NewRows(outboxColumns).AddRow(
			"evt-1", "customer", "cust-1", "rcpt-1", domain.AggregateTypeReceipt, domain.EventTypeReceiptCreated,
			[]byte(`{"number":"R-000001"}`), at, false, timePtrToPgTimestamptz(nil),
		))

	events, err := repo.GetUnpublished(context.Background(), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	e := events[0]
	if e.Party() != (domain.PartyRef{Type: domain.PartyTypeCustomer, ID: "cust-1"}) || e.Payload["number"] != "R-000001" {
		t.Errorf("unexpected event %+v", e)
	}
	if e.PublishedAt != nil {
		t.Errorf("expected nil published_at")
	}

	if events, err := repo.GetUnpublished(context.Background(), 0); err != nil || events != nil {
		t.Errorf("expected no query for a zero limit, got %v %v", events, err)
	}

	assertExpectations(t, mock)
}

func TestOutboxRepositoryMarkPublishedMissing(t *testing.T) {
	mock := newMockPool(t)
	repo := &OutboxRepository{queries: generated.New(mock)}
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectExec("UPDATE outbox_events SET published = TRUE").
		WithArgs(timeToPgTimestamptz(at), "gone").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	if err := repo.MarkPublished(context.Background(), "gone", at); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	assertExpectations(t, mock)
}

func TestOutboxRepositoryDeletePublished(t *testing.T) {
	mock := newMockPool(t)
	repo := &OutboxRepository{queries: generated.New(mock)}
	before := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec("DELETE FROM outbox_events").
		WithArgs(timeToPgTimestamptz(before)).
		WillReturnResult(pgxmock.NewResult("DELETE", 7))

	n, err := repo.DeletePublished(context.Background(), before)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 7 {
		t.Errorf("expected 7 deleted rows, got %d", n)
	}

	assertExpectations(t, mock)
}
