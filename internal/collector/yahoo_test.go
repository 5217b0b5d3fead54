package collector

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chartJSON = `{"chart":{"result":[{"meta":{"regularMarketPrice":412.5},
"timestamp":[1706745600,1704067200,1709251200],
"indicators":{"quote":[{"open":[10,9,null],"high":[12,11,null],"low":[9,8,null],"close":[11,10,null],"volume":[100,90,null]}]}}],"error":null}}`

const summaryJSON = `{"quoteSummary":{"result":[{
"price":{"longName":"Example Corp","marketCap":{"raw":3000000000},"regularMarketPrice":{"raw":410.0}},
"financialData":{"totalDebt":{"raw":500000000},"totalCash":{"raw":200000000},"currentPrice":{"raw":411.0}},
"defaultKeyStatistics":{"sharesOutstanding":{"raw":7500000}},
"incomeStatementHistoryQuarterly":{"incomeStatementHistory":[
 {"endDate":{"raw":1696032000},"totalRevenue":{"raw":100},"ebit":{"raw":40}},
 {"endDate":{"raw":1703980800},"totalRevenue":{"raw":120},"ebit":{"raw":45}}
]},
"cashflowStatementHistoryQuarterly":{"cashflowStatements":[
 {"endDate":{"raw":1703980800},"depreciation":{"raw":7}}
]}}],"error":null}}`

func newYahooTestServer(t *testing.T) *YahooFetcher {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/v8/finance/chart/"):
			assert.Equal(t, "1mo", r.URL.Query().Get("interval"))
			w.Write([]byte(chartJSON))
		case strings.HasPrefix(r.URL.Path, "/v10/finance/quoteSummary/"):
			assert.Contains(t, r.URL.Query().Get("modules"), "incomeStatementHistoryQuarterly")
			assert.Contains(t, r.URL.Query().Get("modules"), "cashflowStatementHistoryQuarterly")
			w.Write([]byte(summaryJSON))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	f := NewYahooFetcher("", 5*time.Second, 50)
	f.BaseURL = srv.URL
	return f
}

func TestYahooFetcher_MonthlyBarsSortedAndNullsSkipped(t *testing.T) {
	f := newYahooTestServer(t)
	bars, err := f.FetchMonthlyBars(context.Background(), "MSFT", 5)
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.True(t, bars[0].Time.Before(bars[1].Time))
	assert.Equal(t, 10.0, bars[0].Close)
	assert.Equal(t, 11.0, bars[1].Close)
}

func TestYahooFetcher_Fundamentals(t *testing.T) {
	f := newYahooTestServer(t)
	fund, err := f.FetchFundamentals(context.Background(), "EXM")
	require.NoError(t, err)

	assert.Equal(t, "Example Corp", fund.CompanyName)
	assert.Equal(t, 3e9, fund.MarketCap)
	assert.Equal(t, 5e8, fund.TotalDebt)
	assert.Equal(t, 2e8, fund.TotalCash)
	assert.Equal(t, 7.5e6, fund.SharesOutstanding)
	assert.Equal(t, 411.0, fund.CurrentPrice)
	require.Len(t, fund.Quarters, 2)
	assert.Equal(t, 120.0, fund.Quarters[0].TotalRevenue, "most recent quarter first")
	assert.Equal(t, 7.0, fund.Quarters[0].DepreciationAmortization)
	assert.Zero(t, fund.Quarters[1].DepreciationAmortization, "no cash flow line for that quarter")
}

func TestYahooFetcher_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`))
	}))
	defer srv.Close()

	f := NewYahooFetcher("", time.Second, 10)
	f.BaseURL = srv.URL
	_, err := f.FetchMonthlyBars(context.Background(), "NOPE", 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "delisted")
}

func TestYahooFetcher_CurrentPriceFromMeta(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(chartJSON))
	}))
	defer srv.Close()

	f := NewYahooFetcher("", time.Second, 10)
	f.BaseURL = srv.URL
	p, err := f.FetchCurrentPrice(context.Background(), "MSFT")
	require.NoError(t, err)
	assert.Equal(t, 412.5, p)
}

func TestYahooRange(t *testing.T) {
	assert.Equal(t, "1y", yahooRange(1))
	assert.Equal(t, "5y", yahooRange(3))
	assert.Equal(t, "10y", yahooRange(10))
	assert.Equal(t, "max", yahooRange(20))
}
