package model

import "time"

// Scenario names used for the three discount rates.
const (
	ScenarioLower = "Lower Bound"
	ScenarioMid   = "Mid Estimate"
	ScenarioUpper = "Upper Bound"
)

// Verdict classifies the current trading price against the valuation range.
type Verdict string

const (
	VerdictUndervalued  Verdict = "UNDERVALUED"
	VerdictFairlyValued Verdict = "FAIRLY_VALUED"
	VerdictOvervalued   Verdict = "OVERVALUED"
	VerdictUnknown      Verdict = "UNKNOWN"
)

// ProjectionAssumptions are the per-year operating assumptions, as fractions.
type ProjectionAssumptions struct {
	Growth       []float64 `json:"growth"`
	EBITMargin   []float64 `json:"ebit_margin"`
	Reinvestment []float64 `json:"reinvestment"`
}

// ProjectionRow is one projected year.
type ProjectionRow struct {
	Year             int     `json:"year"`
	GrowthRate       float64 `json:"growth_rate"`
	EBITMargin       float64 `json:"ebit_margin"`
	ReinvestmentRate float64 `json:"reinvestment_rate"`
	Revenue          float64 `json:"revenue"`
	EBIT             float64 `json:"ebit"`
	NOPAT            float64 `json:"nopat"`
	FCF              float64 `json:"fcf"`
}

// DiscountScenario is a named discount rate.
type DiscountScenario struct {
	Name string  `json:"name"`
	Rate float64 `json:"rate"`
}

// ValuationScenario is the discounted value of the projection at one rate.
type ValuationScenario struct {
	Name              string  `json:"name"`
	DiscountRate      float64 `json:"discount_rate"`
	PVOfFCF           float64 `json:"pv_of_fcf"`
	TerminalValue     float64 `json:"terminal_value"`
	PVOfTerminalValue float64 `json:"pv_of_terminal_value"`
	FirmValue         float64 `json:"firm_value"`
	EquityValue       float64 `json:"equity_value"`
	SharePrice        float64 `json:"share_price"`
}

// PriceRange is the span of per-share values across scenarios.
type PriceRange struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// Report is the full output of one valuation run. It is never persisted.
type Report struct {
	ID             string                 `json:"id"`
	Ticker         string                 `json:"ticker"`
	CompanyName    string                 `json:"company_name"`
	Index          string                 `json:"index"`
	GeneratedAt    time.Time              `json:"generated_at"`
	LatestQuarter  *time.Time             `json:"latest_quarter,omitempty"`
	Capital        CapitalStructure       `json:"capital_structure"`
	TotalCash      float64                `json:"total_cash"`
	Shares         float64                `json:"shares_outstanding"`
	BaseRevenue    float64                `json:"base_revenue"`
	Price          PriceContext           `json:"price"`
	Regression     *RegressionResult      `json:"regression"`
	CostOfCapital  *CostOfCapitalEstimate `json:"cost_of_capital"`
	TerminalGrowth float64                `json:"terminal_growth"`
	EffectiveTax   float64                `json:"effective_tax"`
	Projection     []ProjectionRow        `json:"projection"`
	Scenarios      []ValuationScenario    `json:"scenarios"`
	PriceRange     PriceRange             `json:"price_range"`
	Verdict        Verdict                `json:"verdict"`
	Warnings       []Warning              `json:"warnings,omitempty"`
}

// CapitalReport is the output of a cost of capital run without valuation.
type CapitalReport struct {
	ID            string                 `json:"id"`
	Ticker        string                 `json:"ticker"`
	CompanyName   string                 `json:"company_name"`
	Index         string                 `json:"index"`
	GeneratedAt   time.Time              `json:"generated_at"`
	Capital       CapitalStructure       `json:"capital_structure"`
	Regression    *RegressionResult      `json:"regression"`
	CostOfCapital *CostOfCapitalEstimate `json:"cost_of_capital"`
	Warnings      []Warning              `json:"warnings,omitempty"`
}
