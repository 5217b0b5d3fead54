package model

// CapitalStructure is the market value of equity and book value of debt.
type CapitalStructure struct {
	Equity float64 `json:"equity"`
	Debt   float64 `json:"debt"`
}

// Total returns equity plus debt.
func (c CapitalStructure) Total() float64 {
	return c.Equity + c.Debt
}

// Weights returns the equity and debt weights. They always sum to 1.
func (c CapitalStructure) Weights() (equity, debt float64, err error) {
	if c.Equity < 0 {
		return 0, 0, NewValidationError("equity", ">= 0", c.Equity)
	}
	if c.Debt < 0 {
		return 0, 0, NewValidationError("debt", ">= 0", c.Debt)
	}
	total := c.Total()
	if total <= 0 {
		return 0, 0, NewDataUnavailable("capital structure", "equity plus debt is zero")
	}
	equity = c.Equity / total
	return equity, 1 - equity, nil
}

// ReturnSeries holds period returns, in excess of the risk-free rate,
// aligned by period.
type ReturnSeries struct {
	Asset []float64 `json:"asset"`
	Index []float64 `json:"index"`
}

// Len returns the number of aligned observations.
func (r ReturnSeries) Len() int {
	return len(r.Asset)
}

// RegressionResult is the OLS fit of asset returns on index returns.
type RegressionResult struct {
	Alpha        float64 `json:"alpha"`
	Beta         float64 `json:"beta"`
	BetaLower    float64 `json:"beta_lower"`
	BetaUpper    float64 `json:"beta_upper"`
	RSquared     float64 `json:"r_squared"`
	Observations int     `json:"observations"`
	// HasInterval is false when the residual degrees of freedom are zero.
	HasInterval bool `json:"has_interval"`
}

// CreditSpreadEntry is one band of the interest-coverage rating table.
// GreaterThan and LessThan describe the half-open band [GreaterThan, LessThan).
type CreditSpreadEntry struct {
	GreaterThan float64 `json:"greater_than" yaml:"greater_than"`
	LessThan    float64 `json:"less_than" yaml:"less_than"`
	Rating      string  `json:"rating" yaml:"rating"`
	Spread      float64 `json:"spread_pct" yaml:"spread_pct"`
}

// CostOfCapitalEstimate is the composed cost of capital with regression bounds.
type CostOfCapitalEstimate struct {
	EquityWeight      float64   `json:"equity_weight"`
	DebtWeight        float64   `json:"debt_weight"`
	RiskFree          float64   `json:"risk_free"`
	MarketPremium     float64   `json:"market_premium"`
	CostOfEquity      float64   `json:"cost_of_equity"`
	CostOfEquityLower float64   `json:"cost_of_equity_lower"`
	CostOfEquityUpper float64   `json:"cost_of_equity_upper"`
	Rating            string    `json:"rating"`
	CreditSpread      float64   `json:"credit_spread"`
	CostOfDebt        float64   `json:"cost_of_debt"`
	TaxRate           float64   `json:"tax_rate"`
	AfterTaxCostDebt  float64   `json:"after_tax_cost_of_debt"`
	WACC              float64   `json:"wacc"`
	WACCLower         float64   `json:"wacc_lower"`
	WACCUpper         float64   `json:"wacc_upper"`
	HasBounds         bool      `json:"has_bounds"`
	Warnings          []Warning `json:"warnings,omitempty"`
}

// Scenarios returns the Lower Bound, Mid Estimate and Upper Bound discount
// rates derived from the estimate.
func (e *CostOfCapitalEstimate) Scenarios() ([]DiscountScenario, error) {
	if !e.HasBounds {
		return nil, NewDataUnavailable("wacc bounds", "beta confidence interval is undefined")
	}
	return []DiscountScenario{
		{Name: ScenarioLower, Rate: e.WACCLower},
		{Name: ScenarioMid, Rate: e.WACC},
		{Name: ScenarioUpper, Rate: e.WACCUpper},
	}, nil
}
