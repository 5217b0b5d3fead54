package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"DCFSuite/internal/model"
)

// Store caches raw market data fetched from the provider. Computed
// results are never stored.
type Store interface {
	Get(key string) (*model.MarketData, bool, error)
	Put(key string, md *model.MarketData, ttl time.Duration) error
	DeleteExpired() (int64, error)
	Close() error
}

// Source is anything that can collect market data for a run.
type Source interface {
	Collect(ctx context.Context, ticker, index string, years int) (*model.MarketData, error)
}

// Key builds the cache key from ticker, index and lookback window.
func Key(ticker, index string, years int) string {
	return fmt.Sprintf("%s|%s|%dy", strings.ToUpper(strings.TrimSpace(ticker)), strings.ToUpper(index), years)
}

// CachedCollector serves fresh cached market data and falls through to the
// wrapped source on a miss.
type CachedCollector struct {
	source Source
	store  Store
	ttl    time.Duration
	log    zerolog.Logger
}

// NewCachedCollector wraps source with store.
func NewCachedCollector(source Source, store Store, ttl time.Duration, log zerolog.Logger) *CachedCollector {
	return &CachedCollector{
		source: source,
		store:  store,
		ttl:    ttl,
		log:    log.With().Str("component", "cache").Logger(),
	}
}

func (c *CachedCollector) Collect(ctx context.Context, ticker, index string, years int) (*model.MarketData, error) {
	key := Key(ticker, index, years)
	md, ok, err := c.store.Get(key)
	if err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("cache read failed, fetching")
	} else if ok {
		c.log.Debug().Str("key", key).Msg("cache hit")
		return md, nil
	}

	md, err = c.source.Collect(ctx, ticker, index, years)
	if err != nil {
		return nil, err
	}
	if err := c.store.Put(key, md, c.ttl); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
	return md, nil
}
