package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/iho/payledger/internal/domain"
)

// BalanceUseCase answers read-side questions about a party's position.
type BalanceUseCase struct {
	docRepo   DocumentRepository
	documents *DocumentUseCase
	balances  balanceCache
}

// NewBalanceUseCase creates a new BalanceUseCase.
func NewBalanceUseCase(docRepo DocumentRepository, documents *DocumentUseCase, cache Cache) *BalanceUseCase {
	return &BalanceUseCase{
		docRepo:   docRepo,
		documents: documents,
		balances:  balanceCache{cache: cache},
	}
}

// GetBalances returns outstanding debt, available credit and the net position.
func (uc *BalanceUseCase) GetBalances(ctx context.Context, party domain.PartyRef) (*domain.Balances, error) {
	if err := party.Validate(); err != nil {
		return nil, err
	}

	gen, cacheable := uc.balances.generation(ctx, party)
	if cacheable {
		if cached := uc.balances.get(ctx, party, gen); cached != nil {
			return cached, nil
		}
	}

	outstanding, credits, err := uc.docRepo.PendingTotals(ctx, party)
	if err != nil {
		return nil, err
	}

	balances := domain.NewBalances(party, outstanding, credits)
	if cacheable {
		uc.balances.set(ctx, gen, balances)
	}

	return balances, nil
}

// LedgerPage is one page of a party ledger.
type LedgerPage struct {
	Items  []*domain.LedgerDocument
	Total  int
	Limit  int
	Offset int
}

// GetLedger lists a party's documents, newest first.
func (uc *BalanceUseCase) GetLedger(ctx context.Context, party domain.PartyRef, filter domain.DocumentFilter, limit, offset int) (*LedgerPage, error) {
	if err := party.Validate(); err != nil {
		return nil, err
	}
	if filter.Kind != nil && !filter.Kind.IsValid() {
		return nil, domain.ErrInvalidKind
	}
	if filter.Status != nil && !filter.Status.IsValid() {
		return nil, domain.ErrInvalidStatus
	}
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return nil, fmt.Errorf("%w: 'to' is before 'from'", domain.ErrValidation)
	}

	limit, offset = domain.ValidatePagination(limit, offset)

	items, total, err := uc.docRepo.List(ctx, party, filter, limit, offset)
	if err != nil {
		return nil, err
	}

	return &LedgerPage{Items: items, Total: total, Limit: limit, Offset: offset}, nil
}

// GetSelectablesForReceipt returns the pools a client may offer when allocating,
// using the same predicates the allocation engine enforces.
func (uc *BalanceUseCase) GetSelectablesForReceipt(ctx context.Context, party domain.PartyRef) (*domain.Selectables, error) {
	debits, err := uc.documents.GetSelectableDebits(ctx, party)
	if err != nil {
		return nil, err
	}
	credits, err := uc.documents.GetSelectableCredits(ctx, party)
	if err != nil {
		return nil, err
	}
	receipts, err := uc.documents.GetReceiptCredits(ctx, party)
	if err != nil {
		return nil, err
	}

	return &domain.Selectables{Debits: debits, Credits: credits, ReceiptCredits: receipts}, nil
}

// GetReceiptCredits lists receipt mirrors with money not yet applied.
func (uc *BalanceUseCase) GetReceiptCredits(ctx context.Context, party domain.PartyRef) ([]*domain.LedgerDocument, error) {
	return uc.documents.GetReceiptCredits(ctx, party)
}

// GetStatement builds the party statement for [from, to].
func (uc *BalanceUseCase) GetStatement(ctx context.Context, party domain.PartyRef, from, to time.Time) (*domain.Statement, error) {
	if err := party.Validate(); err != nil {
		return nil, err
	}
	if from.IsZero() || to.IsZero() {
		return nil, fmt.Errorf("%w: statement needs both 'from' and 'to'", domain.ErrValidation)
	}
	if to.Before(from) {
		return nil, fmt.Errorf("%w: 'to' is before 'from'", domain.ErrValidation)
	}

	prior, err := uc.docRepo.ListActiveBefore(ctx, party, from)
	if err != nil {
		return nil, err
	}
	period, err := uc.docRepo.ListActiveBetween(ctx, party, from, to)
	if err != nil {
		return nil, err
	}

	return domain.BuildStatement(party, from, to, prior, period), nil
}
