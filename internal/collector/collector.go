package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"DCFSuite/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price        float64
	Fundamentals *model.Fundamentals
	MonthlyData  map[string][]model.OHLCV // by symbol
	Err          error
	Calls        int
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchMonthlyBars(_ context.Context, symbol string, years int) ([]model.OHLCV, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	if bars, ok := m.MonthlyData[symbol]; ok {
		return bars, nil
	}
	return generateMockBars(m.Price, years*12+1), nil
}

func (m *MockFetcher) FetchCurrentPrice(_ context.Context, _ string) (float64, error) {
	m.Calls++
	if m.Err != nil {
		return 0, m.Err
	}
	return m.Price, nil
}

func (m *MockFetcher) FetchFundamentals(_ context.Context, ticker string) (*model.Fundamentals, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Fundamentals != nil {
		f := *m.Fundamentals
		return &f, nil
	}
	return &model.Fundamentals{
		Ticker:            ticker,
		CompanyName:       ticker,
		MarketCap:         m.Price * 1e9,
		TotalDebt:         2e11,
		TotalCash:         5e10,
		SharesOutstanding: 1e9,
		CurrentPrice:      m.Price,
		Quarters: []model.QuarterlyLine{
			{EndDate: time.Now().AddDate(0, -1, 0), TotalRevenue: 6e10, EBIT: 2.5e10},
			{EndDate: time.Now().AddDate(0, -4, 0), TotalRevenue: 5.8e10, EBIT: 2.4e10},
			{EndDate: time.Now().AddDate(0, -7, 0), TotalRevenue: 5.6e10, EBIT: 2.3e10},
			{EndDate: time.Now().AddDate(0, -10, 0), TotalRevenue: 5.4e10, EBIT: 2.2e10},
		},
	}, nil
}

// generateMockBars produces count monthly bars ending this month, with a
// gentle zig-zag so returns have non-zero variance.
func generateMockBars(basePrice float64, count int) []model.OHLCV {
	bars := make([]model.OHLCV, count)
	start := time.Now().UTC().AddDate(0, -(count - 1), 0)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.01)
		if i%2 == 1 {
			p *= 1.02
		}
		bars[i] = model.OHLCV{
			Time:   time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, i, 0),
			Open:   p * 0.99,
			High:   p * 1.03,
			Low:    p * 0.97,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}

// Collector gathers everything a valuation run needs from a Fetcher.
type Collector struct {
	Fetcher Fetcher
	log     zerolog.Logger
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, log zerolog.Logger) *Collector {
	return &Collector{
		Fetcher: fetcher,
		log:     log.With().Str("component", "collector").Str("source", fetcher.Name()).Logger(),
	}
}

// Collect fetches fundamentals plus asset and index monthly bars. Only the
// fields every run needs are required here; shares outstanding and quarterly
// statements are checked by the valuation path.
func (c *Collector) Collect(ctx context.Context, ticker, index string, years int) (*model.MarketData, error) {
	if index == "" {
		index = DefaultIndex
	}
	fund, err := c.Fetcher.FetchFundamentals(ctx, ticker)
	if err != nil {
		return nil, fmt.Errorf("fetch fundamentals: %w", err)
	}
	if err := checkFundamentals(fund); err != nil {
		return nil, err
	}

	assetBars, err := c.Fetcher.FetchMonthlyBars(ctx, ticker, years)
	if err != nil {
		return nil, fmt.Errorf("fetch %s bars: %w", ticker, err)
	}
	if len(assetBars) == 0 {
		return nil, model.NewDataUnavailable("price history", "no monthly bars for "+ticker)
	}
	indexBars, err := c.Fetcher.FetchMonthlyBars(ctx, index, years)
	if err != nil {
		return nil, fmt.Errorf("fetch %s bars: %w", index, err)
	}
	if len(indexBars) == 0 {
		return nil, model.NewDataUnavailable("price history", "no monthly bars for "+index)
	}

	if fund.CurrentPrice <= 0 {
		if p, err := c.Fetcher.FetchCurrentPrice(ctx, ticker); err != nil || p <= 0 {
			c.log.Warn().Err(err).Str("ticker", ticker).Msg("current price unavailable, using last monthly close")
			fund.CurrentPrice = assetBars[len(assetBars)-1].Close
		} else {
			fund.CurrentPrice = p
		}
	}

	now := time.Now()
	c.log.Info().
		Str("ticker", ticker).
		Str("index", index).
		Int("asset_bars", len(assetBars)).
		Int("index_bars", len(indexBars)).
		Msg("market data collected")

	return &model.MarketData{
		Fundamentals: *fund,
		Asset:        model.PriceSeries{Symbol: ticker, MonthlyBars: assetBars, CurrentPrice: fund.CurrentPrice, FetchedAt: now},
		Index:        model.PriceSeries{Symbol: index, MonthlyBars: indexBars, FetchedAt: now},
		Years:        years,
	}, nil
}

func checkFundamentals(f *model.Fundamentals) error {
	switch {
	case f == nil:
		return model.NewDataUnavailable("fundamentals", "provider returned nothing")
	case f.MarketCap <= 0:
		return model.NewDataUnavailable("market cap", "missing or zero")
	case f.TotalDebt < 0 || f.TotalCash < 0:
		return model.NewDataUnavailable("balance sheet", "negative debt or cash")
	}
	return nil
}
