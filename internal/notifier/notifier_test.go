package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"DCFSuite/internal/model"
)

func newTestNotifier(t *testing.T, h http.HandlerFunc) *TelegramNotifier {
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	n := NewTelegramNotifier("TOKEN", "42", "", zerolog.New(nil).Level(zerolog.Disabled))
	n.APIBase = srv.URL
	return n
}

func TestSend_PostsHTMLMessage(t *testing.T) {
	var got map[string]string
	n := newTestNotifier(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/botTOKEN/sendMessage", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"ok":true}`))
	})

	require.NoError(t, n.Send(context.Background(), "<b>hi</b>"))
	assert.Equal(t, "42", got["chat_id"])
	assert.Equal(t, "HTML", got["parse_mode"])
	assert.Equal(t, "<b>hi</b>", got["text"])
}

func TestSendWithRetry_RecoversAfterFailure(t *testing.T) {
	var calls int32
	n := newTestNotifier(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			http.Error(w, "flood", http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"ok":true}`))
	})

	require.NoError(t, n.SendWithRetry(context.Background(), "x", 2))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestSendWithRetry_StopsOnCancel(t *testing.T) {
	n := newTestNotifier(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	})
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	err := n.SendWithRetry(ctx, "x", 3)
	assert.Error(t, err)
}

func TestStartPolling_DispatchesCommands(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	replies := make(chan string, 1)
	var polled int32
	n := newTestNotifier(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/botTOKEN/getUpdates":
			if atomic.AddInt32(&polled, 1) == 1 {
				w.Write([]byte(`{"ok":true,"result":[{"update_id":7,"message":{"text":" /list "}}]}`))
				return
			}
			assert.Equal(t, "8", r.URL.Query().Get("offset"))
			w.Write([]byte(`{"ok":true,"result":[]}`))
		case "/botTOKEN/sendMessage":
			var body map[string]string
			json.NewDecoder(r.Body).Decode(&body)
			replies <- body["text"]
			w.Write([]byte(`{"ok":true}`))
		}
	})

	go n.StartPolling(ctx, func(_ context.Context, cmd string) string {
		return "got " + cmd
	})

	select {
	case reply := <-replies:
		assert.Equal(t, "got /list", reply)
	case <-time.After(3 * time.Second):
		t.Fatal("no reply sent")
	}
}

func sampleReport() *model.Report {
	return &model.Report{
		Ticker:      "EXM",
		CompanyName: "Example & Co",
		Index:       "^GSPC",
		GeneratedAt: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		BaseRevenue: 245_120_000_000,
		Price:       model.PriceContext{CurrentPrice: 410.5, High52w: 430, Low52w: 310},
		Regression:  &model.RegressionResult{Beta: 0.91, RSquared: 0.52},
		CostOfCapital: &model.CostOfCapitalEstimate{
			WACC: 0.0925, WACCLower: 0.0796, WACCUpper: 0.1054, HasBounds: true,
		},
		Scenarios: []model.ValuationScenario{
			{Name: model.ScenarioLower, DiscountRate: 0.0796, SharePrice: 480.123, FirmValue: 3.6e12},
			{Name: model.ScenarioMid, DiscountRate: 0.0925, SharePrice: 400, FirmValue: 3e12},
			{Name: model.ScenarioUpper, DiscountRate: 0.1054, SharePrice: 340, FirmValue: 2.5e12},
		},
		PriceRange: model.PriceRange{Low: 340, High: 480.123},
		Verdict:    model.VerdictFairlyValued,
		Warnings:   []model.Warning{{Kind: model.KindUnknownRating, Message: "rating \"X\" not found"}},
	}
}

func TestFormatValuationReport(t *testing.T) {
	msg := FormatValuationReport(sampleReport())
	assert.Contains(t, msg, "Example &amp; Co")
	assert.Contains(t, msg, "LTM revenue: 245120.00M")
	assert.Contains(t, msg, "WACC: 9.25% [7.96% – 10.54%]")
	assert.Contains(t, msg, "Lower Bound @ 7.96%: 480.12")
	assert.Contains(t, msg, "Fairly valued")
	assert.Contains(t, msg, "⚠️")
}

func TestFormatWatchSummary(t *testing.T) {
	msg := FormatWatchSummary([]WatchResult{
		{Ticker: "EXM", Report: sampleReport()},
		{Ticker: "BAD", Err: errors.New("DATA_UNAVAILABLE: market cap")},
	})
	assert.Contains(t, msg, "EXM: 🟡 Fairly valued | value 340.00 – 480.12 | price 410.50")
	assert.Contains(t, msg, "BAD: ❌ DATA_UNAVAILABLE")

	assert.Contains(t, FormatWatchSummary(nil), "empty")
}

func TestFormatCapitalReport(t *testing.T) {
	msg := FormatCapitalReport(&model.CapitalReport{
		Ticker:      "EXM",
		CompanyName: "Example",
		Index:       "^GSPC",
		Capital:     model.CapitalStructure{Equity: 8e9, Debt: 2e9},
		Regression:  &model.RegressionResult{Beta: 1.2, BetaLower: 0.9, BetaUpper: 1.5, HasInterval: true, Observations: 59},
		CostOfCapital: &model.CostOfCapitalEstimate{
			EquityWeight: 0.8, DebtWeight: 0.2, CostOfEquity: 0.105, CostOfDebt: 0.0495,
			Rating: "Aaa/AAA", CreditSpread: 0.0045, WACC: 0.091425, WACCLower: 0.079, WACCUpper: 0.103, HasBounds: true,
		},
	})
	assert.Contains(t, msg, "Market cap: 8000.00M | Debt: 2000.00M")
	assert.Contains(t, msg, "95% CI 0.900 – 1.500")
	assert.Contains(t, msg, "<b>WACC: 9.14%</b>")
}
