package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"DCFSuite/internal/model"
)

// GatewayFetcher implements Fetcher against a self-hosted market data
// gateway that exposes bars, quotes and fundamentals as JSON.
type GatewayFetcher struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewGatewayFetcher creates a new fetcher with optional proxy support.
func NewGatewayFetcher(baseURL, apiKey, proxyURL string, timeout time.Duration) *GatewayFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &GatewayFetcher{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

func (f *GatewayFetcher) Name() string { return "gateway" }

// gwBar is the expected JSON shape of a bar.
type gwBar struct {
	Timestamp int64   `json:"timestamp"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
}

type gwFundamentals struct {
	Name              string  `json:"name"`
	MarketCap         float64 `json:"market_cap"`
	TotalDebt         float64 `json:"total_debt"`
	TotalCash         float64 `json:"total_cash"`
	SharesOutstanding float64 `json:"shares_outstanding"`
	Price             float64 `json:"price"`
	Quarters          []struct {
		EndDate      int64   `json:"end_date"`
		TotalRevenue float64 `json:"total_revenue"`
		EBIT         float64 `json:"ebit"`
		DA           float64 `json:"depreciation_amortization"`
	} `json:"quarters"`
}

func (f *GatewayFetcher) FetchMonthlyBars(ctx context.Context, symbol string, years int) ([]model.OHLCV, error) {
	months := years*12 + 1
	// Try the monthly endpoint first; if the gateway only serves daily bars, aggregate internally.
	endpoint := fmt.Sprintf("%s/api/v1/bars/monthly?symbol=%s&limit=%d", f.BaseURL, url.QueryEscape(symbol), months)
	bars, err := f.fetchBars(ctx, endpoint)
	if err != nil {
		dailyEndpoint := fmt.Sprintf("%s/api/v1/bars/daily?symbol=%s&limit=%d", f.BaseURL, url.QueryEscape(symbol), years*366+31)
		dailyBars, dailyErr := f.fetchBars(ctx, dailyEndpoint)
		if dailyErr != nil {
			return nil, fmt.Errorf("monthly fetch failed: %w; daily fallback also failed: %w", err, dailyErr)
		}
		bars = aggregateDailyToMonthly(dailyBars)
	}
	return trimToYears(bars, years), nil
}

func (f *GatewayFetcher) FetchCurrentPrice(ctx context.Context, symbol string) (float64, error) {
	endpoint := fmt.Sprintf("%s/api/v1/quote?symbol=%s", f.BaseURL, url.QueryEscape(symbol))
	var result struct {
		Price float64 `json:"price"`
	}
	if err := f.getJSON(ctx, endpoint, &result); err != nil {
		return 0, fmt.Errorf("fetch current price: %w", err)
	}
	return result.Price, nil
}

func (f *GatewayFetcher) FetchFundamentals(ctx context.Context, ticker string) (*model.Fundamentals, error) {
	endpoint := fmt.Sprintf("%s/api/v1/fundamentals?symbol=%s", f.BaseURL, url.QueryEscape(ticker))
	var gw gwFundamentals
	if err := f.getJSON(ctx, endpoint, &gw); err != nil {
		return nil, fmt.Errorf("fetch fundamentals: %w", err)
	}
	fund := &model.Fundamentals{
		Ticker:            ticker,
		CompanyName:       gw.Name,
		MarketCap:         gw.MarketCap,
		TotalDebt:         gw.TotalDebt,
		TotalCash:         gw.TotalCash,
		SharesOutstanding: gw.SharesOutstanding,
		CurrentPrice:      gw.Price,
		FetchedAt:         time.Now(),
	}
	if fund.CompanyName == "" {
		fund.CompanyName = ticker
	}
	for _, q := range gw.Quarters {
		fund.Quarters = append(fund.Quarters, model.QuarterlyLine{
			EndDate:      time.Unix(q.EndDate, 0).UTC(),
			TotalRevenue: q.TotalRevenue,
			EBIT:         q.EBIT,

			DepreciationAmortization: q.DA,
		})
	}
	sort.Slice(fund.Quarters, func(i, j int) bool {
		return fund.Quarters[i].EndDate.After(fund.Quarters[j].EndDate)
	})
	return fund, nil
}

func (f *GatewayFetcher) getJSON(ctx context.Context, endpoint string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	if f.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+f.APIKey)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("status %d, body: %s", resp.StatusCode, string(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}

func (f *GatewayFetcher) fetchBars(ctx context.Context, endpoint string) ([]model.OHLCV, error) {
	var gwBars []gwBar
	if err := f.getJSON(ctx, endpoint, &gwBars); err != nil {
		return nil, fmt.Errorf("fetch bars: %w", err)
	}
	bars := make([]model.OHLCV, len(gwBars))
	for i, b := range gwBars {
		bars[i] = model.OHLCV{
			Time:   time.Unix(b.Timestamp, 0).UTC(),
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: b.Volume,
		}
	}
	// Ensure chronological order
	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return bars, nil
}

// aggregateDailyToMonthly converts chronological daily bars into calendar month bars.
func aggregateDailyToMonthly(daily []model.OHLCV) []model.OHLCV {
	if len(daily) == 0 {
		return nil
	}
	var monthly []model.OHLCV
	month := daily[0]
	monthKey := func(t time.Time) int { return t.Year()*100 + int(t.Month()) }

	for _, d := range daily[1:] {
		if monthKey(d.Time) != monthKey(month.Time) {
			monthly = append(monthly, month)
			month = d
			continue
		}
		if d.High > month.High {
			month.High = d.High
		}
		if d.Low < month.Low {
			month.Low = d.Low
		}
		month.Close = d.Close
		month.Volume += d.Volume
	}
	return append(monthly, month)
}
