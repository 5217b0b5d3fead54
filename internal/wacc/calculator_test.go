package wacc

import (
	"errors"
	"math"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"DCFSuite/internal/model"
)

func newTestCalculator() *Calculator {
	return New(nil, zerolog.New(nil).Level(zerolog.Disabled))
}

func baseInput() Input {
	return Input{
		Equity: 800,
		Debt:   200,
		Regression: &model.RegressionResult{
			Beta: 1.2, BetaLower: 0.9, BetaUpper: 1.5, HasInterval: true,
		},
		RiskFree:      0.045,
		MarketPremium: 0.05,
		Rating:        "Aaa/AAA",
		TaxRate:       0.25,
	}
}

func TestEstimate_ComposesWACC(t *testing.T) {
	est, err := newTestCalculator().Estimate(baseInput())
	require.NoError(t, err)

	assert.InDelta(t, 1.0, est.EquityWeight+est.DebtWeight, 1e-12)
	assert.InDelta(t, 0.8, est.EquityWeight, 1e-12)
	assert.InDelta(t, 0.105, est.CostOfEquity, 1e-12)
	assert.InDelta(t, 0.0045, est.CreditSpread, 1e-12)
	assert.InDelta(t, 0.0495, est.CostOfDebt, 1e-12)
	// 0.8*0.105 + 0.2*0.0495*0.75
	assert.InDelta(t, 0.0914250, est.WACC, 1e-9)
	assert.Empty(t, est.Warnings)
}

func TestEstimate_BoundsFollowBeta(t *testing.T) {
	est, err := newTestCalculator().Estimate(baseInput())
	require.NoError(t, err)

	assert.True(t, est.HasBounds)
	assert.Less(t, est.CostOfEquityLower, est.CostOfEquity)
	assert.Less(t, est.CostOfEquity, est.CostOfEquityUpper)
	assert.Less(t, est.WACCLower, est.WACC)
	assert.Less(t, est.WACC, est.WACCUpper)

	// debt leg is identical across bounds
	debtLeg := est.DebtWeight * est.CostOfDebt * (1 - est.TaxRate)
	assert.InDelta(t, est.WACCLower-debtLeg, est.EquityWeight*est.CostOfEquityLower, 1e-12)
	assert.InDelta(t, est.WACCUpper-debtLeg, est.EquityWeight*est.CostOfEquityUpper, 1e-12)

	scenarios, err := est.Scenarios()
	require.NoError(t, err)
	require.Len(t, scenarios, 3)
	assert.Equal(t, model.ScenarioLower, scenarios[0].Name)
	assert.Equal(t, est.WACCUpper, scenarios[2].Rate)
}

func TestEstimate_UnknownRatingWarns(t *testing.T) {
	in := baseInput()
	in.Rating = "not-a-rating"
	est, err := newTestCalculator().Estimate(in)
	require.NoError(t, err)

	require.Len(t, est.Warnings, 1)
	assert.Equal(t, model.KindUnknownRating, est.Warnings[0].Kind)
	assert.Equal(t, 0.0, est.CreditSpread)
	assert.Equal(t, in.RiskFree, est.CostOfDebt)
}

func TestEstimate_NoIntervalHasNoScenarios(t *testing.T) {
	in := baseInput()
	in.Regression = &model.RegressionResult{Beta: 1.1, BetaLower: 1.1, BetaUpper: 1.1}
	est, err := newTestCalculator().Estimate(in)
	require.NoError(t, err)

	assert.False(t, est.HasBounds)
	_, err = est.Scenarios()
	assert.True(t, errors.Is(err, model.ErrDataUnavailable))
}

func TestEstimate_Failures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Input)
		want   error
	}{
		{"zero capital", func(in *Input) { in.Equity, in.Debt = 0, 0 }, model.ErrDataUnavailable},
		{"negative debt", func(in *Input) { in.Debt = -1 }, model.ErrValidation},
		{"missing regression", func(in *Input) { in.Regression = nil }, model.ErrDataUnavailable},
		{"nan beta", func(in *Input) {
			in.Regression = &model.RegressionResult{Beta: math.NaN(), BetaLower: math.NaN(), BetaUpper: math.NaN(), HasInterval: true}
		}, model.ErrValidation},
		{"nan upper bound", func(in *Input) { in.Regression.BetaUpper = math.NaN() }, model.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := baseInput()
			tt.mutate(&in)
			_, err := newTestCalculator().Estimate(in)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestEstimate_AllEquity(t *testing.T) {
	in := baseInput()
	in.Debt = 0
	est, err := newTestCalculator().Estimate(in)
	require.NoError(t, err)
	assert.Equal(t, 1.0, est.EquityWeight)
	assert.Equal(t, 0.0, est.DebtWeight)
	assert.InDelta(t, est.CostOfEquity, est.WACC, 1e-12)
}

func TestEstimate_WeightsAcrossCapitalStructures(t *testing.T) {
	pairs := []struct{ equity, debt float64 }{
		{1, 0},
		{800, 200},
		{1, 1},
		{5e11, 1},
		{1, 5e11},
		{3.2e12, 9.7e10},
		{0.001, 0.002},
	}
	for _, p := range pairs {
		in := baseInput()
		in.Equity, in.Debt = p.equity, p.debt
		est, err := newTestCalculator().Estimate(in)
		require.NoError(t, err, "equity=%v debt=%v", p.equity, p.debt)

		assert.InDelta(t, 1.0, est.EquityWeight+est.DebtWeight, 1e-12, "equity=%v debt=%v", p.equity, p.debt)
		assert.GreaterOrEqual(t, est.DebtWeight, 0.0)
		lo := math.Min(est.CostOfEquity, est.AfterTaxCostDebt)
		hi := math.Max(est.CostOfEquity, est.AfterTaxCostDebt)
		assert.GreaterOrEqual(t, est.WACC, lo-1e-12)
		assert.LessOrEqual(t, est.WACC, hi+1e-12)
	}
}

func TestEstimate_WACCOrderFollowsBetaOrder(t *testing.T) {
	betas := []float64{-0.5, 0, 0.4, 1, 1.7, 3}
	prev := math.Inf(-1)
	for _, b := range betas {
		in := baseInput()
		in.Regression = &model.RegressionResult{Beta: b, BetaLower: b, BetaUpper: b}
		est, err := newTestCalculator().Estimate(in)
		require.NoError(t, err)
		assert.Greater(t, est.WACC, prev, "beta %v", b)
		prev = est.WACC
	}
}
