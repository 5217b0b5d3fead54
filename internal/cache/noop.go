package cache

import (
	"time"

	"DCFSuite/internal/model"
)

// NoopStore is used when caching is disabled. Every lookup misses.
type NoopStore struct{}

func NewNoopStore() *NoopStore { return &NoopStore{} }

func (n *NoopStore) Get(_ string) (*model.MarketData, bool, error)            { return nil, false, nil }
func (n *NoopStore) Put(_ string, _ *model.MarketData, _ time.Duration) error { return nil }
func (n *NoopStore) DeleteExpired() (int64, error)                            { return 0, nil }
func (n *NoopStore) Close() error                                             { return nil }
