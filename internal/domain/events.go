package domain

import "time"

// Event types
const (
	EventTypeDocumentUpserted        = "document.upserted"
	EventTypeDocumentVoided          = "document.voided"
	EventTypeReceiptCreated          = "receipt.created"
	EventTypeReceiptVoided           = "receipt.voided"
	EventTypeAllocationApplied       = "allocation.applied"
	EventTypeAllocationBatchExecuted = "allocation_batch.executed"
)

// Aggregate types
const (
	AggregateTypeDocument        = "ledger_document"
	AggregateTypeReceipt         = "receipt"
	AggregateTypeAllocation      = "allocation"
	AggregateTypeAllocationBatch = "allocation_batch"
)

// OutboxEvent is a domain event stored with the change it describes and
// relayed after commit. Every event belongs to exactly one party.
type OutboxEvent struct {
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Payload       map[string]any
	ID            string
	PartyType     PartyType
	PartyID       string
	AggregateID   string
	AggregateType string
	EventType     string
	Published     bool
}

// Party returns the party the event concerns.
func (e *OutboxEvent) Party() PartyRef {
	return PartyRef{Type: e.PartyType, ID: e.PartyID}
}
