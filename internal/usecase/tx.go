package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/iho/payledger/internal/domain"
)

type beginFunc func(ctx context.Context) (Transaction, error)

// runInTx runs fn in one transaction and commits it. The whole unit is re-run
// by the retrier when the store reports a transient failure, so fn must not
// keep state between attempts.
func runInTx(ctx context.Context, begin beginFunc, retrier Retrier, fn func(ctx context.Context, tx Transaction) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	attempt := func() error {
		txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
		defer cancel()

		tx, err := begin(txCtx)
		if err != nil {
			return err
		}
		// Once begun, the outcome must be settled even if the caller went away.
		settleCtx := context.WithoutCancel(txCtx)
		defer tx.Rollback(settleCtx)

		if err := fn(txCtx, tx); err != nil {
			return err
		}

		return tx.Commit(settleCtx)
	}

	if retrier == nil {
		return attempt()
	}

	return retrier.Retry(ctx, attempt)
}

func newOutboxEvent(idGen IDGenerator, party domain.PartyRef, aggregateType, aggregateID, eventType string, payload map[string]any, now time.Time) *domain.OutboxEvent {
	return &domain.OutboxEvent{
		ID:            idGen.Generate(),
		PartyType:     party.Type,
		PartyID:       party.ID,
		AggregateID:   aggregateID,
		AggregateType: aggregateType,
		EventType:     eventType,
		Payload:       payload,
		CreatedAt:     now,
		Published:     false,
	}
}

// balanceCache keeps party balances in the shared cache. A nil cache disables it.
//
// Entries live under the party's current generation. A reader reads the
// generation before loading totals and stores the result under it, so totals
// loaded before a write can only land under a generation the write retired.
type balanceCache struct {
	cache Cache
}

func balanceGenerationKey(party domain.PartyRef) string {
	return balanceCacheKeyPrefix + "gen:" + string(party.Type) + ":" + party.ID
}

func balanceCacheKey(party domain.PartyRef, gen int64) string {
	return balanceCacheKeyPrefix + string(party.Type) + ":" + party.ID + ":" + strconv.FormatInt(gen, 10)
}

// generation returns the party's cache generation. ok is false when the cache
// is disabled or the generation cannot be read, in which case nothing is cached.
func (b balanceCache) generation(ctx context.Context, party domain.PartyRef) (gen int64, ok bool) {
	if b.cache == nil {
		return 0, false
	}
	raw, err := b.cache.Get(ctx, balanceGenerationKey(party))
	if err != nil {
		return 0, false
	}
	if raw == nil {
		return 0, true
	}
	gen, err = strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return 0, false
	}
	return gen, true
}

func (b balanceCache) get(ctx context.Context, party domain.PartyRef, gen int64) *domain.Balances {
	raw, err := b.cache.Get(ctx, balanceCacheKey(party, gen))
	if err != nil || raw == nil {
		return nil
	}
	var balances domain.Balances
	if err := json.Unmarshal(raw, &balances); err != nil {
		return nil
	}
	return &balances
}

func (b balanceCache) set(ctx context.Context, gen int64, balances *domain.Balances) {
	raw, err := json.Marshal(balances)
	if err != nil {
		return
	}
	party := domain.PartyRef{Type: balances.PartyType, ID: balances.PartyID}
	_ = b.cache.Set(ctx, balanceCacheKey(party, gen), raw, BalanceCacheTTL)
}

// invalidate retires the parties' cached balances after a committed write.
// Failures are tolerated: entries expire after BalanceCacheTTL.
func (b balanceCache) invalidate(ctx context.Context, parties ...domain.PartyRef) {
	if b.cache == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	for _, p := range parties {
		gen, err := b.cache.Incr(ctx, balanceGenerationKey(p))
		if err != nil {
			continue
		}
		_ = b.cache.Delete(ctx, balanceCacheKey(p, gen-1))
	}
}

// errorType labels an error for metrics.
func errorType(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, domain.ErrValidation):
		return "validation"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrConflict):
		return "conflict"
	case errors.Is(err, domain.ErrInsufficientCredit):
		return "insufficient_credit"
	case errors.Is(err, domain.ErrOverAllocation):
		return "over_allocation"
	case errors.Is(err, domain.ErrConcurrency):
		return "concurrency"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "internal"
	}
}
