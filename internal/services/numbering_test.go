package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pizza_pos_backend/internal/repositories"
)

// stubCounterRepo overrides only the counter method; the embedded interface
// panics on anything else, which is exactly what these tests want.
type stubCounterRepo struct {
	repositories.TransactionRepository
	value      int64
	lastPeriod string
}

func (s *stubCounterRepo) NextSequence(_ repositories.SQLExecutor, period string) (int64, error) {
	s.value++
	s.lastPeriod = period
	return s.value, nil
}

func TestFormatTransactionNumber(t *testing.T) {
	march := time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)

	assert.Equal(t, "PZ25030042", FormatTransactionNumber("PZ", march, 42))
	assert.Equal(t, "PZ25030001", FormatTransactionNumber("PZ", march, 1))

	// Sequences past 9999 widen rather than wrap.
	assert.Equal(t, "PZ250312345", FormatTransactionNumber("PZ", march, 12345))

	december := time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "SHOP26120007", FormatTransactionNumber("SHOP", december, 7))
}

func TestNumberPeriod(t *testing.T) {
	assert.Equal(t, "PZ2503", NumberPeriod("PZ", time.Date(2025, 3, 31, 23, 59, 0, 0, time.UTC)))
	assert.Equal(t, "PZ2504", NumberPeriod("PZ", time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)))
}

func TestGeneratorNextAdvancesPerPeriod(t *testing.T) {
	repo := &stubCounterRepo{}
	gen := &transactionNumberGenerator{
		txRepo: repo,
		prefix: "PZ",
		now:    func() time.Time { return time.Date(2025, 3, 2, 12, 0, 0, 0, time.UTC) },
	}

	first, err := gen.Next(nil)
	require.NoError(t, err)
	second, err := gen.Next(nil)
	require.NoError(t, err)

	assert.Equal(t, "PZ25030001", first)
	assert.Equal(t, "PZ25030002", second)
	assert.Equal(t, "PZ2503", repo.lastPeriod)
}

func TestNewTransactionNumberGeneratorDefaultsPrefix(t *testing.T) {
	repo := &stubCounterRepo{}
	gen := NewTransactionNumberGenerator(repo, "")

	number, err := gen.Next(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultNumberPrefix, number[:2])
}
