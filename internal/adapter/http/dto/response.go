package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/payledger/internal/domain"
	"github.com/iho/payledger/internal/usecase"
)

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// IDResponse returns the id of a created or updated resource.
type IDResponse struct {
	ID string `json:"id"`
}

// DocumentResponse represents a ledger document in API responses.
type DocumentResponse struct {
	ID                string          `json:"id"`
	PartyType         string          `json:"party_type"`
	PartyID           string          `json:"party_id"`
	Kind              string          `json:"kind"`
	Status            string          `json:"status"`
	ExternalRefID     string          `json:"external_ref_id"`
	ExternalRefNumber string          `json:"external_ref_number"`
	DocumentDate      time.Time       `json:"document_date"`
	Currency          string          `json:"currency"`
	FxRate            decimal.Decimal `json:"fx_rate"`
	AmountOriginal    decimal.Decimal `json:"amount_original"`
	AmountBase        decimal.Decimal `json:"amount_base"`
	PendingBase       decimal.Decimal `json:"pending_base"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
	VoidedAt          *time.Time      `json:"voided_at,omitempty"`
}

// DocumentFromDomain converts a domain document to a response.
func DocumentFromDomain(d *domain.LedgerDocument) *DocumentResponse {
	return &DocumentResponse{
		ID:                d.ID,
		PartyType:         string(d.PartyType),
		PartyID:           d.PartyID,
		Kind:              string(d.Kind),
		Status:            string(d.Status),
		ExternalRefID:     d.ExternalRefID,
		ExternalRefNumber: d.ExternalRefNumber,
		DocumentDate:      d.DocumentDate,
		Currency:          d.Currency,
		FxRate:            d.FxRate,
		AmountOriginal:    d.AmountOriginal,
		AmountBase:        d.AmountBase,
		PendingBase:       d.PendingBase,
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
		VoidedAt:          d.VoidedAt,
	}
}

// DocumentsFromDomain converts domain documents to responses.
func DocumentsFromDomain(docs []*domain.LedgerDocument) []*DocumentResponse {
	result := make([]*DocumentResponse, len(docs))
	for i, d := range docs {
		result[i] = DocumentFromDomain(d)
	}
	return result
}

// PaymentLineResponse represents a payment line in API responses.
type PaymentLineResponse struct {
	ID             string          `json:"id"`
	Position       int             `json:"position"`
	Method         string          `json:"method"`
	AmountOriginal decimal.Decimal `json:"amount_original"`
	AmountBase     decimal.Decimal `json:"amount_base"`
	BankName       string          `json:"bank_name,omitempty"`
	BankAccount    string          `json:"bank_account,omitempty"`
	CheckNumber    string          `json:"check_number,omitempty"`
	ValueDate      *time.Time      `json:"value_date,omitempty"`
}

// ReceiptResponse represents a receipt in API responses.
type ReceiptResponse struct {
	ID               string                `json:"id"`
	Number           string                `json:"number"`
	PartyType        string                `json:"party_type"`
	PartyID          string                `json:"party_id"`
	Date             time.Time             `json:"date"`
	Currency         string                `json:"currency"`
	FxRate           decimal.Decimal       `json:"fx_rate"`
	TotalBase        decimal.Decimal       `json:"total_base"`
	Notes            string                `json:"notes,omitempty"`
	CreatedBy        string                `json:"created_by"`
	LedgerDocumentID string                `json:"ledger_document_id"`
	IsVoided         bool                  `json:"is_voided"`
	VoidedAt         *time.Time            `json:"voided_at,omitempty"`
	CreatedAt        time.Time             `json:"created_at"`
	Lines            []PaymentLineResponse `json:"lines"`
}

// ReceiptFromDomain converts a domain receipt to a response.
func ReceiptFromDomain(r *domain.Receipt) *ReceiptResponse {
	lines := make([]PaymentLineResponse, len(r.Lines))
	for i, l := range r.Lines {
		lines[i] = PaymentLineResponse{
			ID:             l.ID,
			Position:       l.Position,
			Method:         string(l.Method),
			AmountOriginal: l.AmountOriginal,
			AmountBase:     l.AmountBase,
			BankName:       l.BankName,
			BankAccount:    l.BankAccount,
			CheckNumber:    l.CheckNumber,
			ValueDate:      l.ValueDate,
		}
	}
	return &ReceiptResponse{
		ID:               r.ID,
		Number:           r.Number,
		PartyType:        string(r.PartyType),
		PartyID:          r.PartyID,
		Date:             r.Date,
		Currency:         r.Currency,
		FxRate:           r.FxRate,
		TotalBase:        r.TotalBase,
		Notes:            r.Notes,
		CreatedBy:        r.CreatedBy,
		LedgerDocumentID: r.LedgerDocumentID,
		IsVoided:         r.IsVoided,
		VoidedAt:         r.VoidedAt,
		CreatedAt:        r.CreatedAt,
		Lines:            lines,
	}
}

// AllocationResponse represents an allocation in API responses.
type AllocationResponse struct {
	ID               string          `json:"id"`
	SourceKind       string          `json:"source_kind"`
	SourceDocumentID string          `json:"source_document_id"`
	DebitDocumentID  string          `json:"debit_document_id"`
	AmountBase       decimal.Decimal `json:"amount_base"`
	BatchID          *string         `json:"batch_id,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}

// AllocationFromDomain converts a domain allocation to a response.
func AllocationFromDomain(a *domain.Allocation) *AllocationResponse {
	return &AllocationResponse{
		ID:               a.ID,
		SourceKind:       string(a.SourceKind),
		SourceDocumentID: a.SourceDocumentID,
		DebitDocumentID:  a.DebitDocumentID,
		AmountBase:       a.AmountBase,
		BatchID:          a.BatchID,
		CreatedAt:        a.CreatedAt,
	}
}

// AllocationsFromDomain converts domain allocations to responses.
func AllocationsFromDomain(allocs []*domain.Allocation) []*AllocationResponse {
	result := make([]*AllocationResponse, len(allocs))
	for i, a := range allocs {
		result[i] = AllocationFromDomain(a)
	}
	return result
}

// BatchItemResponse is one line of an allocation batch.
type BatchItemResponse struct {
	ID               string          `json:"id"`
	AllocationID     string          `json:"allocation_id"`
	SourceKind       string          `json:"source_kind"`
	SourceDocumentID string          `json:"source_document_id"`
	DebitDocumentID  string          `json:"debit_document_id"`
	AmountBase       decimal.Decimal `json:"amount_base"`
}

// BatchResponse represents an executed manual batch.
type BatchResponse struct {
	ID        string              `json:"id"`
	PartyType string              `json:"party_type"`
	PartyID   string              `json:"party_id"`
	TotalBase decimal.Decimal     `json:"total_base"`
	CreatedBy string              `json:"created_by"`
	CreatedAt time.Time           `json:"created_at"`
	Items     []BatchItemResponse `json:"items"`
}

// BatchFromDomain converts a domain batch to a response.
func BatchFromDomain(b *domain.AllocationBatch) *BatchResponse {
	items := make([]BatchItemResponse, len(b.Items))
	for i, it := range b.Items {
		items[i] = BatchItemResponse{
			ID:               it.ID,
			AllocationID:     it.AllocationID,
			SourceKind:       string(it.SourceKind),
			SourceDocumentID: it.SourceDocumentID,
			DebitDocumentID:  it.DebitDocumentID,
			AmountBase:       it.AmountBase,
		}
	}
	return &BatchResponse{
		ID:        b.ID,
		PartyType: string(b.PartyType),
		PartyID:   b.PartyID,
		TotalBase: b.TotalBase,
		CreatedBy: b.CreatedBy,
		CreatedAt: b.CreatedAt,
		Items:     items,
	}
}

// ViolationResponse is one reason a manual batch cannot run.
type ViolationResponse struct {
	Code            string `json:"code"`
	DebitDocumentID string `json:"debit_document_id,omitempty"`
	SourceID        string `json:"source_id,omitempty"`
	Message         string `json:"message"`
}

// ManualAllocationResponse is returned by manual preview and execute.
type ManualAllocationResponse struct {
	Warnings   []string            `json:"warnings"`
	Violations []ViolationResponse `json:"violations"`
	CanExecute bool                `json:"can_execute"`
	BatchID    string              `json:"batch_id,omitempty"`
}

// ManualAllocationFromResult converts a use case result to a response.
func ManualAllocationFromResult(res *usecase.ManualAllocationResult) *ManualAllocationResponse {
	resp := &ManualAllocationResponse{
		Warnings:   res.Warnings,
		Violations: make([]ViolationResponse, len(res.Violations)),
		CanExecute: res.CanExecute,
	}
	if resp.Warnings == nil {
		resp.Warnings = []string{}
	}
	for i, v := range res.Violations {
		resp.Violations[i] = ViolationResponse{
			Code:            string(v.Code),
			DebitDocumentID: v.DebitDocumentID,
			SourceID:        v.SourceID,
			Message:         v.Message,
		}
	}
	if res.Batch != nil {
		resp.BatchID = res.Batch.ID
	}
	return resp
}

// BalancesResponse represents a party's pending position.
type BalancesResponse struct {
	PartyType       string          `json:"party_type"`
	PartyID         string          `json:"party_id"`
	OutstandingBase decimal.Decimal `json:"outstanding_base"`
	CreditsBase     decimal.Decimal `json:"credits_base"`
	NetBalanceBase  decimal.Decimal `json:"net_balance_base"`
}

// BalancesFromDomain converts domain balances to a response.
func BalancesFromDomain(b *domain.Balances) *BalancesResponse {
	return &BalancesResponse{
		PartyType:       string(b.PartyType),
		PartyID:         b.PartyID,
		OutstandingBase: b.OutstandingBase,
		CreditsBase:     b.CreditsBase,
		NetBalanceBase:  b.NetBalanceBase,
	}
}

// LedgerPageResponse is one page of a party ledger.
type LedgerPageResponse struct {
	Items  []*DocumentResponse `json:"items"`
	Total  int                 `json:"total"`
	Limit  int                 `json:"limit"`
	Offset int                 `json:"offset"`
}

// LedgerPageFromUseCase converts a ledger page to a response.
func LedgerPageFromUseCase(p *usecase.LedgerPage) *LedgerPageResponse {
	return &LedgerPageResponse{
		Items:  DocumentsFromDomain(p.Items),
		Total:  p.Total,
		Limit:  p.Limit,
		Offset: p.Offset,
	}
}

// SelectablesResponse lists what a client may offer when allocating.
type SelectablesResponse struct {
	Debits         []*DocumentResponse `json:"debits"`
	Credits        []*DocumentResponse `json:"credits"`
	ReceiptCredits []*DocumentResponse `json:"receipt_credits"`
}

// SelectablesFromDomain converts selectables to a response.
func SelectablesFromDomain(s *domain.Selectables) *SelectablesResponse {
	return &SelectablesResponse{
		Debits:         DocumentsFromDomain(s.Debits),
		Credits:        DocumentsFromDomain(s.Credits),
		ReceiptCredits: DocumentsFromDomain(s.ReceiptCredits),
	}
}

// StatementLineResponse is one line of a statement.
type StatementLineResponse struct {
	Date              time.Time       `json:"date"`
	DocumentID        string          `json:"document_id"`
	Kind              string          `json:"kind"`
	ExternalRefNumber string          `json:"external_ref_number"`
	SignedAmount      decimal.Decimal `json:"signed_amount"`
	RunningBalance    decimal.Decimal `json:"running_balance"`
}

// StatementResponse is a party statement over a period.
type StatementResponse struct {
	PartyType      string                  `json:"party_type"`
	PartyID        string                  `json:"party_id"`
	From           time.Time               `json:"from"`
	To             time.Time               `json:"to"`
	OpeningBalance decimal.Decimal         `json:"opening_balance"`
	ClosingBalance decimal.Decimal         `json:"closing_balance"`
	Lines          []StatementLineResponse `json:"lines"`
}

// StatementFromDomain converts a statement to a response.
func StatementFromDomain(s *domain.Statement) *StatementResponse {
	lines := make([]StatementLineResponse, len(s.Lines))
	for i, l := range s.Lines {
		lines[i] = StatementLineResponse{
			Date:              l.Date,
			DocumentID:        l.DocumentID,
			Kind:              string(l.Kind),
			ExternalRefNumber: l.ExternalRefNumber,
			SignedAmount:      l.SignedAmount,
			RunningBalance:    l.RunningBalance,
		}
	}
	return &StatementResponse{
		PartyType:      string(s.PartyType),
		PartyID:        s.PartyID,
		From:           s.From,
		To:             s.To,
		OpeningBalance: s.OpeningBalance,
		ClosingBalance: s.ClosingBalance,
		Lines:          lines,
	}
}

// SequenceNumberResponse is a freshly issued number.
type SequenceNumberResponse struct {
	Scope  string `json:"scope"`
	Number int64  `json:"number"`
}

// SequenceResponse shows the next number a scope will issue.
type SequenceResponse struct {
	Scope      string `json:"scope"`
	NextNumber int64  `json:"next_number"`
}

// ConsistencyIssueResponse is a document breaking a conservation rule.
type ConsistencyIssueResponse struct {
	DocumentID    string          `json:"document_id"`
	Kind          string          `json:"kind"`
	Problem       string          `json:"problem"`
	AmountBase    decimal.Decimal `json:"amount_base"`
	PendingBase   decimal.Decimal `json:"pending_base"`
	AllocatedBase decimal.Decimal `json:"allocated_base"`
}

// ConsistencyResponse is the result of a full ledger check.
type ConsistencyResponse struct {
	Status           string                     `json:"status"`
	Consistent       bool                       `json:"consistent"`
	DocumentsChecked int                        `json:"documents_checked"`
	CheckedAt        time.Time                  `json:"checked_at"`
	Issues           []ConsistencyIssueResponse `json:"issues"`
}

// ConsistencyFromDomain converts a report to a response.
func ConsistencyFromDomain(r *domain.ConsistencyReport) *ConsistencyResponse {
	status := "consistent"
	if !r.Consistent {
		status = "inconsistent"
	}
	issues := make([]ConsistencyIssueResponse, len(r.Issues))
	for i, is := range r.Issues {
		issues[i] = ConsistencyIssueResponse{
			DocumentID:    is.DocumentID,
			Kind:          string(is.Kind),
			Problem:       is.Problem,
			AmountBase:    is.AmountBase,
			PendingBase:   is.PendingBase,
			AllocatedBase: is.AllocatedBase,
		}
	}
	return &ConsistencyResponse{
		Status:           status,
		Consistent:       r.Consistent,
		DocumentsChecked: r.DocumentsChecked,
		CheckedAt:        r.CheckedAt,
		Issues:           issues,
	}
}
