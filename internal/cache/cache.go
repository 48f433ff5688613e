package cache

import (
	"context"
	"time"
)

// Keys for the cached dashboard views. Writers invalidate these after any
// commit that changes the underlying figures; the cached value is only ever
// used for display, never as input to business logic. The sales and expense
// report keys are prefixes: each filter combination caches under its own
// parameterized key, so writers invalidate them by prefix.
const (
	KeyDashboardSummary = "pos:dashboard:summary"
	KeySalesReport      = "pos:report:sales"
	KeyExpenseReport    = "pos:report:expenses"
	KeyStockReport      = "pos:report:stock"
)

// ViewCache is a read-through cache for the reporting views.
type ViewCache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Invalidate(ctx context.Context, keys ...string) error
	InvalidatePrefix(ctx context.Context, prefix string) error
}

// NoopViewCache satisfies ViewCache without caching anything. Used when no
// redis address is configured.
type NoopViewCache struct{}

func (NoopViewCache) GetJSON(_ context.Context, _ string, _ interface{}) (bool, error) {
	return false, nil
}

func (NoopViewCache) SetJSON(_ context.Context, _ string, _ interface{}, _ time.Duration) error {
	return nil
}

func (NoopViewCache) Invalidate(_ context.Context, _ ...string) error {
	return nil
}

func (NoopViewCache) InvalidatePrefix(_ context.Context, _ string) error {
	return nil
}
