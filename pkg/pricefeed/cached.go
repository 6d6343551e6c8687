package pricefeed

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/newsly/sandbox/pkg/cache"
)

// Source is anything that can quote a symbol.
type Source interface {
	CurrentPrice(ctx context.Context, symbol string) (decimal.Decimal, error)
}

// Cached wraps a Source with a short TTL so read-only quote endpoints do not
// hammer the upstream API. Trading paths should use the raw Source: an order
// must settle at a freshly fetched price, never a cached one.
type Cached struct {
	source Source
	quotes *cache.TTLCache[string, decimal.Decimal]
	ttl    time.Duration
}

func NewCached(source Source, ttl time.Duration) *Cached {
	if ttl <= 0 {
		ttl = 3 * time.Second
	}
	return &Cached{
		source: source,
		quotes: cache.NewTTL[string, decimal.Decimal](ttl),
		ttl:    ttl,
	}
}

// CurrentPrice serves from cache when fresh. Errors are not cached.
func (c *Cached) CurrentPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	if price, ok := c.quotes.Get(symbol); ok {
		return price, nil
	}
	price, err := c.source.CurrentPrice(ctx, symbol)
	if err != nil {
		return decimal.Zero, err
	}
	c.quotes.Set(symbol, price, c.ttl)
	return price, nil
}
