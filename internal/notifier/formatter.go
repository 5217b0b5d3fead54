package notifier

import (
	"fmt"
	"html"
	"strings"

	"github.com/shopspring/decimal"

	"DCFSuite/internal/model"
)

var million = decimal.NewFromInt(1_000_000)

// millions renders an amount at the reporting scale.
func millions(v float64) string {
	return decimal.NewFromFloat(v).Div(million).StringFixed(2) + "M"
}

func pct(v float64) string {
	return decimal.NewFromFloat(v).Shift(2).StringFixed(2) + "%"
}

func price(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

func verdictLabel(v model.Verdict) string {
	switch v {
	case model.VerdictUndervalued:
		return "🟢 Undervalued"
	case model.VerdictOvervalued:
		return "🔴 Overvalued"
	case model.VerdictFairlyValued:
		return "🟡 Fairly valued"
	default:
		return "⚪ No current price"
	}
}

// FormatValuationReport formats a valuation run into a Telegram message.
func FormatValuationReport(r *model.Report) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>%s</b> (%s) | %s\n\n",
		html.EscapeString(r.CompanyName), r.Ticker, r.GeneratedAt.Format("2006-01-02")))

	b.WriteString(fmt.Sprintf("Current price: %s\n", price(r.Price.CurrentPrice)))
	b.WriteString(fmt.Sprintf("52w range: %s - %s\n", price(r.Price.Low52w), price(r.Price.High52w)))
	b.WriteString(fmt.Sprintf("LTM revenue: %s\n\n", millions(r.BaseRevenue)))

	if r.CostOfCapital != nil {
		est := r.CostOfCapital
		b.WriteString(fmt.Sprintf("β vs %s: %.2f (R² %.2f)\n", r.Index, r.Regression.Beta, r.Regression.RSquared))
		b.WriteString(fmt.Sprintf("WACC: %s", pct(est.WACC)))
		if est.HasBounds {
			b.WriteString(fmt.Sprintf(" [%s – %s]", pct(est.WACCLower), pct(est.WACCUpper)))
		}
		b.WriteString("\n\n")
	}

	b.WriteString("💰 <b>Intrinsic value per share:</b>\n")
	for _, s := range r.Scenarios {
		b.WriteString(fmt.Sprintf("  %s @ %s: %s (EV %s)\n",
			s.Name, pct(s.DiscountRate), price(s.SharePrice), millions(s.FirmValue)))
	}
	b.WriteString(fmt.Sprintf("\nVerdict: <b>%s</b>\n", verdictLabel(r.Verdict)))

	for _, w := range r.Warnings {
		b.WriteString(fmt.Sprintf("\n⚠️ %s", html.EscapeString(w.Message)))
	}
	return b.String()
}

// FormatCapitalReport formats a cost of capital estimate.
func FormatCapitalReport(r *model.CapitalReport) string {
	var b strings.Builder
	est := r.CostOfCapital
	reg := r.Regression

	b.WriteString(fmt.Sprintf("🏦 <b>Cost of capital</b> | %s (%s)\n\n", html.EscapeString(r.CompanyName), r.Ticker))
	b.WriteString(fmt.Sprintf("Market cap: %s | Debt: %s\n", millions(r.Capital.Equity), millions(r.Capital.Debt)))
	b.WriteString(fmt.Sprintf("Weights: E %s / D %s\n\n", pct(est.EquityWeight), pct(est.DebtWeight)))

	b.WriteString(fmt.Sprintf("β vs %s: %.3f", r.Index, reg.Beta))
	if reg.HasInterval {
		b.WriteString(fmt.Sprintf(" (95%% CI %.3f – %.3f)", reg.BetaLower, reg.BetaUpper))
	}
	b.WriteString(fmt.Sprintf(", R² %.3f, n=%d\n", reg.RSquared, reg.Observations))

	b.WriteString(fmt.Sprintf("Cost of equity: %s\n", pct(est.CostOfEquity)))
	b.WriteString(fmt.Sprintf("Cost of debt: %s (%s spread %s)\n", pct(est.CostOfDebt), html.EscapeString(est.Rating), pct(est.CreditSpread)))
	b.WriteString(fmt.Sprintf("After-tax cost of debt: %s\n\n", pct(est.AfterTaxCostDebt)))

	b.WriteString(fmt.Sprintf("<b>WACC: %s</b>\n", pct(est.WACC)))
	if est.HasBounds {
		b.WriteString(fmt.Sprintf("Range: %s – %s\n", pct(est.WACCLower), pct(est.WACCUpper)))
	}
	for _, w := range r.Warnings {
		b.WriteString(fmt.Sprintf("\n⚠️ %s", html.EscapeString(w.Message)))
	}
	return b.String()
}

// WatchResult is one line of a scheduled revaluation summary.
type WatchResult struct {
	Ticker string
	Report *model.Report
	Err    error
}

// FormatWatchSummary formats a scheduled revaluation of the watchlist.
func FormatWatchSummary(results []WatchResult) string {
	var b strings.Builder
	b.WriteString("📅 <b>Watchlist revaluation</b>\n\n")
	if len(results) == 0 {
		b.WriteString("Watchlist is empty. Use /watch TICKER to add one.")
		return b.String()
	}
	for _, res := range results {
		if res.Err != nil {
			b.WriteString(fmt.Sprintf("%s: ❌ %s\n", res.Ticker, html.EscapeString(res.Err.Error())))
			continue
		}
		r := res.Report
		b.WriteString(fmt.Sprintf("%s: %s | value %s – %s | price %s\n",
			res.Ticker, verdictLabel(r.Verdict), price(r.PriceRange.Low), price(r.PriceRange.High), price(r.Price.CurrentPrice)))
	}
	return b.String()
}

// FormatWatchlist lists the watched tickers.
func FormatWatchlist(tickers []string) string {
	if len(tickers) == 0 {
		return "Watchlist is empty."
	}
	return "👀 <b>Watching:</b> " + strings.Join(tickers, ", ")
}

// FormatError formats a failed command.
func FormatError(ticker string, err error) string {
	return fmt.Sprintf("❌ %s: %s", ticker, html.EscapeString(err.Error()))
}
