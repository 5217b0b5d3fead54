package wacc

import (
	"math"

	"github.com/rs/zerolog"

	"DCFSuite/internal/credit"
	"DCFSuite/internal/model"
)

// Input is everything needed to compose a cost of capital.
type Input struct {
	Equity        float64 // market value of equity
	Debt          float64 // total debt
	Regression    *model.RegressionResult
	RiskFree      float64
	MarketPremium float64
	Rating        string
	TaxRate       float64 // marginal
}

// Calculator composes CAPM cost of equity and spread-based cost of debt
// into a weighted average cost of capital.
type Calculator struct {
	bands []model.CreditSpreadEntry
	log   zerolog.Logger
}

// New creates a Calculator. A nil table selects credit.DefaultTable.
func New(bands []model.CreditSpreadEntry, log zerolog.Logger) *Calculator {
	if len(bands) == 0 {
		bands = credit.DefaultTable
	}
	return &Calculator{bands: bands, log: log.With().Str("component", "wacc").Logger()}
}

// Bands returns the credit spread table in use.
func (c *Calculator) Bands() []model.CreditSpreadEntry {
	return c.bands
}

// Estimate computes the WACC and its bounds from the beta interval.
// Only the equity leg moves with the bounds; the debt leg always uses the
// point cost of debt.
func (c *Calculator) Estimate(in Input) (*model.CostOfCapitalEstimate, error) {
	if in.Regression == nil {
		return nil, model.NewDataUnavailable("regression", "beta estimate is missing")
	}
	we, wd, err := model.CapitalStructure{Equity: in.Equity, Debt: in.Debt}.Weights()
	if err != nil {
		return nil, err
	}

	reg := in.Regression
	capm := func(beta float64) float64 {
		return in.RiskFree + beta*in.MarketPremium
	}

	est := &model.CostOfCapitalEstimate{
		EquityWeight:  we,
		DebtWeight:    wd,
		RiskFree:      in.RiskFree,
		MarketPremium: in.MarketPremium,
		CostOfEquity:  capm(reg.Beta),
		Rating:        in.Rating,
		TaxRate:       in.TaxRate,
		HasBounds:     reg.HasInterval,
	}

	spread, warn := credit.Lookup(in.Rating, c.bands)
	if warn != nil {
		c.log.Warn().Str("rating", in.Rating).Msg(warn.Message)
		est.Warnings = append(est.Warnings, *warn)
	}
	est.CreditSpread = spread
	est.CostOfDebt = in.RiskFree + spread
	est.AfterTaxCostDebt = est.CostOfDebt * (1 - in.TaxRate)

	debtLeg := wd * est.AfterTaxCostDebt
	est.WACC = we*est.CostOfEquity + debtLeg

	if reg.HasInterval {
		est.CostOfEquityLower = capm(reg.BetaLower)
		est.CostOfEquityUpper = capm(reg.BetaUpper)
	} else {
		est.CostOfEquityLower = est.CostOfEquity
		est.CostOfEquityUpper = est.CostOfEquity
	}
	est.WACCLower = we*est.CostOfEquityLower + debtLeg
	est.WACCUpper = we*est.CostOfEquityUpper + debtLeg

	for _, f := range []struct {
		name string
		v    float64
	}{
		{"cost of equity", est.CostOfEquity},
		{"cost of debt", est.AfterTaxCostDebt},
		{"wacc", est.WACC},
		{"wacc lower", est.WACCLower},
		{"wacc upper", est.WACCUpper},
	} {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return nil, model.NewValidationError(f.name, "finite value", f.v)
		}
	}

	c.log.Debug().
		Float64("beta", reg.Beta).
		Float64("wacc", est.WACC).
		Bool("has_bounds", est.HasBounds).
		Msg("cost of capital estimated")
	return est, nil
}
