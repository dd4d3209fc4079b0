package usecase

import "time"

// DefaultTransactionTimeout bounds one attempt of a ledger transaction,
// lock waits included. Retries get a fresh budget each.
const DefaultTransactionTimeout = 10 * time.Second

// Balance cache entries are keyed by party and generation. Every committed
// write that moves one of the party's pending balances bumps the generation.
const (
	BalanceCacheTTL       = 30 * time.Second
	balanceCacheKeyPrefix = "balances:"
)

// IdempotencyKeyTTL is how long a replayable response is kept.
const IdempotencyKeyTTL = 24 * time.Hour
