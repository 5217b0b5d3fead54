package collector

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"DCFSuite/internal/model"
)

const (
	DefaultYahooBaseURL = "https://query1.finance.yahoo.com"
	summaryModules      = "price,financialData,defaultKeyStatistics,incomeStatementHistoryQuarterly,cashflowStatementHistoryQuarterly"
)

// YahooFetcher implements Fetcher using the Yahoo Finance public API.
type YahooFetcher struct {
	BaseURL   string
	Client    *http.Client
	SymbolMap map[string]string // maps internal symbol to Yahoo ticker
	limiter   *rate.Limiter
}

// NewYahooFetcher creates a Yahoo Finance fetcher throttled to rps requests per second.
func NewYahooFetcher(proxyURL string, timeout time.Duration, rps int) *YahooFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if rps <= 0 {
		rps = 2
	}
	return &YahooFetcher{
		BaseURL: DefaultYahooBaseURL,
		Client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		SymbolMap: map[string]string{
			"SPX":    "^GSPC",
			"SP500":  "^GSPC",
			"DJI":    "^DJI",
			"NASDAQ": "^IXIC",
		},
		limiter: rate.NewLimiter(rate.Limit(rps), rps),
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

func (f *YahooFetcher) yahooSymbol(symbol string) string {
	if mapped, ok := f.SymbolMap[strings.ToUpper(symbol)]; ok {
		return mapped
	}
	return symbol
}

func (f *YahooFetcher) get(ctx context.Context, u string) ([]byte, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("yahoo rate limit: %w", err)
		}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yahoo fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("yahoo read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo: status %d, body: %s", resp.StatusCode, string(body))
	}
	return body, nil
}

func yahooRange(years int) string {
	switch {
	case years <= 1:
		return "1y"
	case years <= 2:
		return "2y"
	case years <= 5:
		return "5y"
	case years <= 10:
		return "10y"
	default:
		return "max"
	}
}

func (f *YahooFetcher) fetchChart(ctx context.Context, symbol, interval, rng string) (gjson.Result, []model.OHLCV, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=%s&range=%s",
		f.BaseURL, url.PathEscape(f.yahooSymbol(symbol)), interval, rng)
	body, err := f.get(ctx, u)
	if err != nil {
		return gjson.Result{}, nil, err
	}
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, nil, fmt.Errorf("yahoo decode: invalid json")
	}
	if desc := gjson.GetBytes(body, "chart.error.description"); desc.Exists() {
		return gjson.Result{}, nil, fmt.Errorf("yahoo api error: %s", desc.String())
	}
	result := gjson.GetBytes(body, "chart.result.0")
	timestamps := result.Get("timestamp").Array()
	if !result.Exists() || len(timestamps) == 0 {
		return result, nil, model.NewDataUnavailable("price history", fmt.Sprintf("yahoo returned no bars for %s", symbol))
	}

	quote := result.Get("indicators.quote.0")
	opens := quote.Get("open").Array()
	highs := quote.Get("high").Array()
	lows := quote.Get("low").Array()
	closes := quote.Get("close").Array()
	volumes := quote.Get("volume").Array()
	at := func(v []gjson.Result, i int) float64 {
		if i >= len(v) {
			return 0
		}
		return v[i].Float() // null -> 0
	}

	bars := make([]model.OHLCV, 0, len(timestamps))
	for i, ts := range timestamps {
		o, h, l, c := at(opens, i), at(highs, i), at(lows, i), at(closes, i)
		if o == 0 && h == 0 && l == 0 && c == 0 {
			continue // skip null bars
		}
		bars = append(bars, model.OHLCV{
			Time:   time.Unix(ts.Int(), 0).UTC(),
			Open:   o,
			High:   h,
			Low:    l,
			Close:  c,
			Volume: at(volumes, i),
		})
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return result, bars, nil
}

func (f *YahooFetcher) FetchMonthlyBars(ctx context.Context, symbol string, years int) ([]model.OHLCV, error) {
	_, bars, err := f.fetchChart(ctx, symbol, "1mo", yahooRange(years))
	if err != nil {
		return nil, err
	}
	return trimToYears(bars, years), nil
}

func (f *YahooFetcher) FetchCurrentPrice(ctx context.Context, symbol string) (float64, error) {
	result, bars, err := f.fetchChart(ctx, symbol, "1d", "5d")
	if err != nil {
		return 0, err
	}
	if p := result.Get("meta.regularMarketPrice").Float(); p > 0 {
		return p, nil
	}
	if len(bars) == 0 {
		return 0, model.NewDataUnavailable("current price", "yahoo returned no price data")
	}
	return bars[len(bars)-1].Close, nil
}

func (f *YahooFetcher) FetchFundamentals(ctx context.Context, ticker string) (*model.Fundamentals, error) {
	u := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=%s",
		f.BaseURL, url.PathEscape(f.yahooSymbol(ticker)), summaryModules)
	body, err := f.get(ctx, u)
	if err != nil {
		return nil, err
	}
	if desc := gjson.GetBytes(body, "quoteSummary.error.description"); desc.Exists() {
		return nil, fmt.Errorf("yahoo api error: %s", desc.String())
	}
	r := gjson.GetBytes(body, "quoteSummary.result.0")
	if !r.Exists() {
		return nil, model.NewDataUnavailable("fundamentals", fmt.Sprintf("yahoo returned no summary for %s", ticker))
	}
	return parseSummary(ticker, r), nil
}

func parseSummary(ticker string, r gjson.Result) *model.Fundamentals {
	fund := &model.Fundamentals{
		Ticker:            ticker,
		CompanyName:       r.Get("price.longName").String(),
		MarketCap:         r.Get("price.marketCap.raw").Float(),
		TotalDebt:         r.Get("financialData.totalDebt.raw").Float(),
		TotalCash:         r.Get("financialData.totalCash.raw").Float(),
		SharesOutstanding: r.Get("defaultKeyStatistics.sharesOutstanding.raw").Float(),
		CurrentPrice:      r.Get("financialData.currentPrice.raw").Float(),
		FetchedAt:         time.Now(),
	}
	if fund.CompanyName == "" {
		fund.CompanyName = ticker
	}
	if fund.CurrentPrice == 0 {
		fund.CurrentPrice = r.Get("price.regularMarketPrice.raw").Float()
	}

	// D&A lives in the cash flow statement, matched to the income statement by period end.
	da := make(map[int64]float64)
	for _, q := range r.Get("cashflowStatementHistoryQuarterly.cashflowStatements").Array() {
		da[q.Get("endDate.raw").Int()] = q.Get("depreciation.raw").Float()
	}
	for _, q := range r.Get("incomeStatementHistoryQuarterly.incomeStatementHistory").Array() {
		end := q.Get("endDate.raw").Int()
		fund.Quarters = append(fund.Quarters, model.QuarterlyLine{
			EndDate:                  time.Unix(end, 0).UTC(),
			TotalRevenue:             q.Get("totalRevenue.raw").Float(),
			EBIT:                     q.Get("ebit.raw").Float(),
			DepreciationAmortization: da[end],
		})
	}
	sort.Slice(fund.Quarters, func(i, j int) bool {
		return fund.Quarters[i].EndDate.After(fund.Quarters[j].EndDate)
	})
	return fund
}
