package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"DCFSuite/internal/calculator"
	"DCFSuite/internal/model"
	"DCFSuite/internal/projection"
	"DCFSuite/internal/valuation"
	"DCFSuite/internal/wacc"
)

// MarketSource supplies market data for a run.
type MarketSource interface {
	Collect(ctx context.Context, ticker, index string, years int) (*model.MarketData, error)
}

// Runner executes cost of capital and valuation runs. It holds no per-run
// state and is safe for concurrent use.
type Runner struct {
	source MarketSource
	wacc   *wacc.Calculator
	log    zerolog.Logger
	now    func() time.Time
}

// NewRunner creates a Runner.
func NewRunner(source MarketSource, calc *wacc.Calculator, log zerolog.Logger) *Runner {
	return &Runner{
		source: source,
		wacc:   calc,
		log:    log.With().Str("component", "pipeline").Logger(),
		now:    time.Now,
	}
}

type capitalResult struct {
	market     *model.MarketData
	regression *model.RegressionResult
	estimate   *model.CostOfCapitalEstimate
}

func (r *Runner) costOfCapital(ctx context.Context, req CapitalRequest) (*capitalResult, error) {
	md, err := r.source.Collect(ctx, req.Ticker, req.Index, req.LookbackYears)
	if err != nil {
		return nil, err
	}
	series, err := calculator.BuildReturnSeries(md.Asset.MonthlyBars, md.Index.MonthlyBars, req.RiskFree)
	if err != nil {
		return nil, err
	}
	reg, err := calculator.RegressBeta(series)
	if err != nil {
		return nil, fmt.Errorf("beta regression: %w", err)
	}
	est, err := r.wacc.Estimate(wacc.Input{
		Equity:        md.Fundamentals.MarketCap,
		Debt:          md.Fundamentals.TotalDebt,
		Regression:    reg,
		RiskFree:      req.RiskFree,
		MarketPremium: req.MarketPremium,
		Rating:        req.Rating,
		TaxRate:       req.MarginalTax,
	})
	if err != nil {
		return nil, err
	}
	return &capitalResult{market: md, regression: reg, estimate: est}, nil
}

// CostOfCapital estimates beta and WACC for the requested ticker.
func (r *Runner) CostOfCapital(ctx context.Context, req CapitalRequest) (*model.CapitalReport, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	cr, err := r.costOfCapital(ctx, req)
	if err != nil {
		r.log.Error().Err(err).Str("ticker", req.Ticker).Msg("cost of capital failed")
		return nil, err
	}
	f := cr.market.Fundamentals
	return &model.CapitalReport{
		ID:            uuid.NewString(),
		Ticker:        req.Ticker,
		CompanyName:   f.CompanyName,
		Index:         req.Index,
		GeneratedAt:   r.now(),
		Capital:       model.CapitalStructure{Equity: f.MarketCap, Debt: f.TotalDebt},
		Regression:    cr.regression,
		CostOfCapital: cr.estimate,
		Warnings:      cr.estimate.Warnings,
	}, nil
}

// Run performs a full valuation. Any failed precondition aborts the run
// with no partial report.
func (r *Runner) Run(ctx context.Context, req Request) (*model.Report, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	log := r.log.With().Str("ticker", req.Ticker).Logger()

	cr, err := r.costOfCapital(ctx, req.CapitalRequest)
	if err != nil {
		log.Error().Err(err).Msg("valuation failed")
		return nil, err
	}
	f := cr.market.Fundamentals
	if err := checkValuationInputs(&f); err != nil {
		return nil, err
	}

	scenarios := req.Scenarios()
	if scenarios == nil {
		if scenarios, err = cr.estimate.Scenarios(); err != nil {
			return nil, err
		}
	}

	baseline, err := projection.LTMRevenue(f.Quarters)
	if err != nil {
		return nil, err
	}
	rows, err := projection.Project(baseline, req.Horizon, req.EffectiveTax, req.Assumptions())
	if err != nil {
		return nil, err
	}

	res, err := valuation.Evaluate(valuation.Input{
		Projection:        rows,
		TerminalGrowth:    req.TerminalGrowth,
		Scenarios:         scenarios,
		TotalDebt:         f.TotalDebt,
		TotalCash:         f.TotalCash,
		SharesOutstanding: f.SharesOutstanding,
	})
	if err != nil {
		log.Error().Err(err).Msg("valuation failed")
		return nil, err
	}

	pr := res.PriceRange()
	report := &model.Report{
		ID:             uuid.NewString(),
		Ticker:         req.Ticker,
		CompanyName:    f.CompanyName,
		Index:          req.Index,
		GeneratedAt:    r.now(),
		Capital:        model.CapitalStructure{Equity: f.MarketCap, Debt: f.TotalDebt},
		TotalCash:      f.TotalCash,
		Shares:         f.SharesOutstanding,
		BaseRevenue:    baseline,
		Regression:     cr.regression,
		CostOfCapital:  cr.estimate,
		TerminalGrowth: req.TerminalGrowth,
		EffectiveTax:   req.EffectiveTax,
		Projection:     rows,
		Scenarios:      res.Scenarios,
		PriceRange:     pr,
		Verdict:        valuation.Verdict(f.CurrentPrice, pr),
		Warnings:       cr.estimate.Warnings,
	}
	if q, ok := f.MostRecentQuarter(); ok {
		report.LatestQuarter = &q
	}
	if pc, err := calculator.PriceContextFor(cr.market.Asset.MonthlyBars, f.CurrentPrice); err != nil {
		log.Warn().Err(err).Msg("52-week price context unavailable")
	} else {
		report.Price = pc
	}

	log.Info().
		Float64("wacc", cr.estimate.WACC).
		Float64("price_low", pr.Low).
		Float64("price_high", pr.High).
		Str("verdict", string(report.Verdict)).
		Msg("valuation complete")
	return report, nil
}

// checkValuationInputs covers the fundamentals a valuation needs beyond a
// cost of capital estimate.
func checkValuationInputs(f *model.Fundamentals) error {
	switch {
	case f.SharesOutstanding <= 0:
		return model.NewDataUnavailable("shares outstanding", "missing or zero")
	case len(f.Quarters) == 0:
		return model.NewDataUnavailable("quarterly income statement", "missing")
	}
	return nil
}
