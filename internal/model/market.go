package model

import "time"

// OHLCV represents a single candlestick bar.
type OHLCV struct {
	Time   time.Time `json:"time" msgpack:"t"`
	Open   float64   `json:"open" msgpack:"o"`
	High   float64   `json:"high" msgpack:"h"`
	Low    float64   `json:"low" msgpack:"l"`
	Close  float64   `json:"close" msgpack:"c"`
	Volume float64   `json:"volume" msgpack:"v"`
}

// PriceSeries holds monthly bars for one symbol over the lookback window.
type PriceSeries struct {
	Symbol       string    `json:"symbol" msgpack:"symbol"`
	MonthlyBars  []OHLCV   `json:"monthly_bars" msgpack:"bars"`
	CurrentPrice float64   `json:"current_price" msgpack:"price"`
	FetchedAt    time.Time `json:"fetched_at" msgpack:"fetched_at"`
}

// QuarterlyLine is one quarter of income statement data.
type QuarterlyLine struct {
	EndDate      time.Time `json:"end_date" msgpack:"end"`
	TotalRevenue float64   `json:"total_revenue" msgpack:"rev"`
	EBIT         float64   `json:"ebit" msgpack:"ebit"`

	// DepreciationAmortization is zero when the provider does not report it.
	DepreciationAmortization float64 `json:"depreciation_amortization" msgpack:"da"`
}

// Fundamentals is the company snapshot returned by the market data provider.
type Fundamentals struct {
	Ticker            string          `json:"ticker" msgpack:"ticker"`
	CompanyName       string          `json:"company_name" msgpack:"name"`
	MarketCap         float64         `json:"market_cap" msgpack:"mcap"`
	TotalDebt         float64         `json:"total_debt" msgpack:"debt"`
	TotalCash         float64         `json:"total_cash" msgpack:"cash"`
	SharesOutstanding float64         `json:"shares_outstanding" msgpack:"shares"`
	CurrentPrice      float64         `json:"current_price" msgpack:"price"`
	Quarters          []QuarterlyLine `json:"quarters" msgpack:"quarters"` // most recent first
	FetchedAt         time.Time       `json:"fetched_at" msgpack:"fetched_at"`
}

// MostRecentQuarter returns the end date of the latest reported quarter.
func (f *Fundamentals) MostRecentQuarter() (time.Time, bool) {
	if len(f.Quarters) == 0 {
		return time.Time{}, false
	}
	return f.Quarters[0].EndDate, true
}

// MarketData bundles everything a valuation run needs from the provider.
type MarketData struct {
	Fundamentals Fundamentals `json:"fundamentals" msgpack:"fundamentals"`
	Asset        PriceSeries  `json:"asset" msgpack:"asset"`
	Index        PriceSeries  `json:"index" msgpack:"index"`
	Years        int          `json:"years" msgpack:"years"`
}

// PriceContext places the current price inside its trailing 52-week range.
type PriceContext struct {
	CurrentPrice float64 `json:"current_price"`
	High52w      float64 `json:"high_52w"`
	Low52w       float64 `json:"low_52w"`
	Position52w  float64 `json:"position_52w"` // 0.0 ~ 1.0
}
