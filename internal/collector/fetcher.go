package collector

import (
	"context"

	"DCFSuite/internal/model"
)

// Fetcher defines the interface for fetching market data.
type Fetcher interface {
	// FetchMonthlyBars returns monthly bars covering the last years, oldest first.
	FetchMonthlyBars(ctx context.Context, symbol string, years int) ([]model.OHLCV, error)
	FetchCurrentPrice(ctx context.Context, symbol string) (float64, error)
	// FetchFundamentals returns the company snapshot with quarters most recent first.
	FetchFundamentals(ctx context.Context, ticker string) (*model.Fundamentals, error)
	Name() string
}

// Benchmark indices offered for the beta regression.
var Indices = map[string]string{
	"^GSPC": "S&P 500",
	"^DJI":  "Dow Jones",
	"^IXIC": "NASDAQ",
}

// DefaultIndex is the benchmark used when none is given.
const DefaultIndex = "^GSPC"

func trimToYears(bars []model.OHLCV, years int) []model.OHLCV {
	if years <= 0 {
		return bars
	}
	limit := years*12 + 1
	if len(bars) > limit {
		bars = bars[len(bars)-limit:]
	}
	return bars
}
