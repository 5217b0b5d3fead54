package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"DCFSuite/internal/model"
)

func quietLogger() zerolog.Logger {
	return zerolog.New(nil).Level(zerolog.Disabled)
}

func newTestStore(t *testing.T) *SQLiteStore {
	s, err := NewSQLiteStore(":memory:", quietLogger())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleData() *model.MarketData {
	ts := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	return &model.MarketData{
		Fundamentals: model.Fundamentals{
			Ticker:            "MSFT",
			CompanyName:       "Microsoft",
			MarketCap:         3e12,
			SharesOutstanding: 7.4e9,
			Quarters:          []model.QuarterlyLine{{EndDate: ts, TotalRevenue: 6e10}},
		},
		Asset: model.PriceSeries{Symbol: "MSFT", MonthlyBars: []model.OHLCV{{Time: ts, Close: 410}}},
		Index: model.PriceSeries{Symbol: "^GSPC", MonthlyBars: []model.OHLCV{{Time: ts, Close: 5100}}},
		Years: 5,
	}
}

func TestKey(t *testing.T) {
	assert.Equal(t, "MSFT|^GSPC|5y", Key(" msft ", "^gspc", 5))
}

func TestSQLiteStore_RoundTripAndExpiry(t *testing.T) {
	s := newTestStore(t)
	now := time.Now()
	s.now = func() time.Time { return now }

	require.NoError(t, s.Put("k", sampleData(), time.Hour))

	got, ok, err := s.Get("k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Microsoft", got.Fundamentals.CompanyName)
	assert.Equal(t, 410.0, got.Asset.MonthlyBars[0].Close)
	assert.True(t, got.Fundamentals.Quarters[0].EndDate.Equal(time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)))

	s.now = func() time.Time { return now.Add(2 * time.Hour) }
	_, ok, err = s.Get("k")
	require.NoError(t, err)
	assert.False(t, ok)

	n, err := s.DeleteExpired()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

type countingSource struct {
	calls int
	err   error
}

func (c *countingSource) Collect(_ context.Context, ticker, index string, years int) (*model.MarketData, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return sampleData(), nil
}

func TestCachedCollector_HitsAvoidRefetch(t *testing.T) {
	src := &countingSource{}
	cc := NewCachedCollector(src, newTestStore(t), time.Hour, quietLogger())

	for i := 0; i < 3; i++ {
		md, err := cc.Collect(context.Background(), "MSFT", "^GSPC", 5)
		require.NoError(t, err)
		assert.Equal(t, "MSFT", md.Fundamentals.Ticker)
	}
	assert.Equal(t, 1, src.calls)

	_, err := cc.Collect(context.Background(), "MSFT", "^DJI", 5)
	require.NoError(t, err)
	assert.Equal(t, 2, src.calls, "different index is a different key")
}

func TestCachedCollector_NoopAlwaysFetches(t *testing.T) {
	src := &countingSource{}
	cc := NewCachedCollector(src, NewNoopStore(), time.Hour, quietLogger())
	cc.Collect(context.Background(), "MSFT", "^GSPC", 5)
	cc.Collect(context.Background(), "MSFT", "^GSPC", 5)
	assert.Equal(t, 2, src.calls)
}

func TestCachedCollector_ErrorsAreNotCached(t *testing.T) {
	src := &countingSource{err: errors.New("down")}
	cc := NewCachedCollector(src, newTestStore(t), time.Hour, quietLogger())
	_, err := cc.Collect(context.Background(), "MSFT", "^GSPC", 5)
	assert.Error(t, err)
	src.err = nil
	_, err = cc.Collect(context.Background(), "MSFT", "^GSPC", 5)
	assert.NoError(t, err)
	assert.Equal(t, 2, src.calls)
}
