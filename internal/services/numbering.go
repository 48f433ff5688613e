package services

import (
	"fmt"
	"time"

	"pizza_pos_backend/internal/repositories"
)

// DefaultNumberPrefix is the store prefix stamped on every transaction
// number. Overridable per deployment via TX_NUMBER_PREFIX.
const DefaultNumberPrefix = "PZ"

// TransactionNumberGenerator mints the human-readable identifier shared by
// all rows of one checkout: prefix + two-digit year + two-digit month + a
// zero-padded per-month sequence, e.g. PZ25030042.
//
// The sequence lives in a store-side counter advanced atomically per period,
// so concurrent checkouts cannot mint the same number and the sequence
// survives process restarts.
type TransactionNumberGenerator interface {
	Next(executor repositories.SQLExecutor) (string, error)
}

type transactionNumberGenerator struct {
	txRepo repositories.TransactionRepository
	prefix string
	now    func() time.Time
}

// NewTransactionNumberGenerator creates a generator with the given store prefix.
func NewTransactionNumberGenerator(txRepo repositories.TransactionRepository, prefix string) TransactionNumberGenerator {
	if prefix == "" {
		prefix = DefaultNumberPrefix
	}
	return &transactionNumberGenerator{txRepo: txRepo, prefix: prefix, now: time.Now}
}

// Next returns the next transaction number for the current period. It must
// be called once per checkout; every line of that checkout reuses the value.
func (g *transactionNumberGenerator) Next(executor repositories.SQLExecutor) (string, error) {
	now := g.now()
	seq, err := g.txRepo.NextSequence(executor, NumberPeriod(g.prefix, now))
	if err != nil {
		return "", fmt.Errorf("failed to advance transaction sequence: %w", err)
	}
	return FormatTransactionNumber(g.prefix, now, seq), nil
}

// NumberPeriod returns the counter key for a point in time, e.g. "PZ2503".
func NumberPeriod(prefix string, t time.Time) string {
	return prefix + t.Format("0601")
}

// FormatTransactionNumber renders prefix + YYMM + the sequence zero-padded
// to at least four digits.
func FormatTransactionNumber(prefix string, t time.Time, seq int64) string {
	return fmt.Sprintf("%s%s%04d", prefix, t.Format("0601"), seq)
}
