package eventpublisher

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/iho/payledger/internal/domain"
	"github.com/iho/payledger/internal/infrastructure/metrics"
	"github.com/iho/payledger/internal/usecase"
)

func TestProcessEventsPublishesAndMarks(t *testing.T) {
	repo := &stubOutboxRepo{
		events: []*domain.OutboxEvent{{ID: "evt-1", EventType: domain.EventTypeReceiptCreated}},
	}
	pub := &stubPublisher{}
	ep := newTestPublisher(repo, pub)

	if err := ep.processEvents(context.Background()); err != nil {
		t.Fatalf("processEvents failed: %v", err)
	}

	if len(pub.published) != 1 {
		t.Fatalf("expected one published event, got %d", len(pub.published))
	}
	if len(repo.marked) != 1 || repo.marked[0] != "evt-1" {
		t.Fatalf("expected event to be marked published, got %#v", repo.marked)
	}
	if got := testutil.ToFloat64(ep.metrics.OutboxPublished); got != 1 {
		t.Fatalf("expected published counter 1, got %v", got)
	}
}

func TestProcessEventsContinuesOnPublishError(t *testing.T) {
	repo := &stubOutboxRepo{
		events: []*domain.OutboxEvent{
			{ID: "evt-1", EventType: domain.EventTypeDocumentUpserted},
			{ID: "evt-2", EventType: domain.EventTypeDocumentVoided},
		},
	}
	pub := &stubPublisher{
		errorsByID: map[string]error{"evt-1": errors.New("fail")},
	}
	ep := newTestPublisher(repo, pub)

	if err := ep.processEvents(context.Background()); err != nil {
		t.Fatalf("processEvents returned error: %v", err)
	}

	if len(pub.published) != 1 || pub.published[0].ID != "evt-2" {
		t.Fatalf("expected only evt-2 to be published, got %#v", pub.published)
	}
	if len(repo.marked) != 1 || repo.marked[0] != "evt-2" {
		t.Fatalf("expected only evt-2 to be marked, got %#v", repo.marked)
	}
	if got := testutil.ToFloat64(ep.metrics.OutboxFailures); got != 1 {
		t.Fatalf("expected failure counter 1, got %v", got)
	}
}

func TestProcessEventsRepositoryError(t *testing.T) {
	repoErr := errors.New("connection reset")
	ep := newTestPublisher(&stubOutboxRepo{fetchErr: repoErr}, &stubPublisher{})

	if err := ep.processEvents(context.Background()); !errors.Is(err, repoErr) {
		t.Fatalf("expected %v, got %v", repoErr, err)
	}
}

func TestCleanupUsesRetention(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		retention time.Duration
		want      *time.Time
	}{
		{"disabled", 0, nil},
		{"one day", 24 * time.Hour, ptr(now.Add(-24 * time.Hour))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &stubOutboxRepo{}
			ep := newTestPublisher(repo, &stubPublisher{})
			ep.retention = tt.retention
			ep.now = func() time.Time { return now }

			if err := ep.cleanup(context.Background()); err != nil {
				t.Fatalf("cleanup: %v", err)
			}
			switch {
			case tt.want == nil && repo.deletedBefore != nil:
				t.Fatalf("expected no cleanup, got %v", repo.deletedBefore)
			case tt.want != nil && (repo.deletedBefore == nil || !repo.deletedBefore.Equal(*tt.want)):
				t.Fatalf("expected cleanup before %v, got %v", tt.want, repo.deletedBefore)
			}
		})
	}
}

func TestStartStopsOnContextCancellation(t *testing.T) {
	repo := &stubOutboxRepo{}
	pub := &stubPublisher{}
	ep := newTestPublisher(repo, pub)
	ep.interval = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- ep.Start(ctx)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("publisher did not stop after cancel")
	}
}

func TestLogPublisher(t *testing.T) {
	var buf bytes.Buffer
	p := NewLogPublisher(zerolog.New(&buf))

	err := p.Publish(context.Background(), &domain.OutboxEvent{
		ID:          "evt-1",
		EventType:   domain.EventTypeAllocationApplied,
		AggregateID: "alloc-1",
		Payload:     map[string]any{"amount_base": "10.00"},
	})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not json: %v", err)
	}
	payload, ok := entry["payload"].(map[string]any)
	if !ok || payload["amount_base"] != "10.00" {
		t.Fatalf("unexpected payload in log: %v", entry["payload"])
	}
}

func TestRedisPublisher(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	party := domain.PartyRef{Type: domain.PartyTypeCustomer, ID: "cust-1"}
	typeChannel := ChannelPrefix + domain.EventTypeReceiptVoided
	partyChannel := PartyChannel(party)

	sub := client.Subscribe(ctx, typeChannel, partyChannel)
	t.Cleanup(func() { _ = sub.Close() })
	for i := 0; i < 2; i++ {
		if _, err := sub.Receive(ctx); err != nil {
			t.Fatalf("subscribe: %v", err)
		}
	}

	p := NewRedisPublisher(client)
	err := p.Publish(ctx, &domain.OutboxEvent{
		ID:            "evt-9",
		PartyType:     party.Type,
		PartyID:       party.ID,
		EventType:     domain.EventTypeReceiptVoided,
		AggregateType: domain.AggregateTypeReceipt,
		AggregateID:   "rcpt-1",
		Payload:       map[string]any{"number": "R-000001"},
	})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}

	channels := map[string]bool{}
	for i := 0; i < 2; i++ {
		select {
		case msg := <-sub.Channel():
			var got Message
			if err := json.Unmarshal([]byte(msg.Payload), &got); err != nil {
				t.Fatalf("decode message: %v", err)
			}
			if got.ID != "evt-9" || got.PartyID != "cust-1" || got.Payload["number"] != "R-000001" {
				t.Fatalf("unexpected message %+v", got)
			}
			channels[msg.Channel] = true
		case <-time.After(time.Second):
			t.Fatal("no message received")
		}
	}

	if !channels[typeChannel] || !channels[partyChannel] {
		t.Fatalf("expected messages on %s and %s, got %v", typeChannel, partyChannel, channels)
	}
}

func TestPartyChannel(t *testing.T) {
	got := PartyChannel(domain.PartyRef{Type: domain.PartyTypeSupplier, ID: "sup-7"})
	if got != "payledger:events:party:supplier:sup-7" {
		t.Fatalf("unexpected channel %q", got)
	}
}

func newTestPublisher(repo *stubOutboxRepo, pub *stubPublisher) *EventPublisher {
	return NewEventPublisher(Config{
		OutboxRepo: repo,
		Publisher:  pub,
		Metrics:    metrics.NewWithRegisterer(prometheus.NewRegistry()),
		Logger:     zerolog.Nop(),
		BatchSize:  10,
		Interval:   5 * time.Millisecond,
	})
}

func ptr[T any](v T) *T { return &v }

type stubOutboxRepo struct {
	events        []*domain.OutboxEvent
	marked        []string
	fetchErr      error
	deletedBefore *time.Time
}

func (s *stubOutboxRepo) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	return nil
}

func (s *stubOutboxRepo) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	if len(s.events) <= limit {
		return append([]*domain.OutboxEvent(nil), s.events...), nil
	}
	return append([]*domain.OutboxEvent(nil), s.events[:limit]...), nil
}

func (s *stubOutboxRepo) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	s.marked = append(s.marked, id)
	return nil
}

func (s *stubOutboxRepo) DeletePublished(ctx context.Context, before time.Time) (int64, error) {
	s.deletedBefore = &before
	return 0, nil
}

type stubPublisher struct {
	published  []*domain.OutboxEvent
	errorsByID map[string]error
}

func (s *stubPublisher) Publish(ctx context.Context, event *domain.OutboxEvent) error {
	if err := s.errorsByID[event.ID]; err != nil {
		return err
	}
	s.published = append(s.published, event)
	return nil
}
