package calculator

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"DCFSuite/internal/model"
)

// ConfidenceLevel is the two-sided coverage of the beta interval.
const ConfidenceLevel = 0.95

const varianceTolerance = 1e-12

// RegressBeta fits asset = alpha + beta*index by ordinary least squares and
// returns beta with its 95% confidence interval.
//
// The interval uses the Student-t quantile with n-2 degrees of freedom and
// SE(beta) = sqrt(SSR/(n-2) / sum((x-mean(x))^2)). With exactly two
// observations the fit is exact and HasInterval is false.
func RegressBeta(series model.ReturnSeries) (*model.RegressionResult, error) {
	x, y := series.Index, series.Asset
	if len(x) == 0 || len(y) == 0 {
		return nil, model.NewValidationMsg("returns", "series must be non-empty")
	}
	if len(x) != len(y) {
		return nil, model.NewValidationError("returns", fmt.Sprintf("equal lengths (index has %d)", len(x)), len(y))
	}
	n := len(x)
	if n < 2 {
		return nil, model.NewValidationError("returns", "at least 2 observations", n)
	}
	for i := 0; i < n; i++ {
		if !isFinite(x[i]) || !isFinite(y[i]) {
			return nil, model.NewValidationMsg("returns", fmt.Sprintf("non-finite value at period %d", i))
		}
	}

	// Rounding in the mean leaves a tiny residue for a constant series, so
	// the variance is compared against the scale of the data.
	sxx := sumSquaredDeviations(x)
	if sxx <= varianceTolerance*sumSquares(x) {
		return nil, model.NewValidationMsg("index returns", "zero variance, beta is undefined")
	}

	alpha, beta := stat.LinearRegression(x, y, nil, false)
	if !isFinite(alpha) || !isFinite(beta) {
		return nil, model.NewValidationMsg("index returns", "regression did not produce a finite beta")
	}

	ssr := 0.0
	for i := range x {
		r := y[i] - (alpha + beta*x[i])
		ssr += r * r
	}

	rSquared := 1.0
	if sumSquaredDeviations(y) > 0 {
		rSquared = stat.RSquared(x, y, nil, alpha, beta)
	}

	res := &model.RegressionResult{
		Alpha:        alpha,
		Beta:         beta,
		BetaLower:    beta,
		BetaUpper:    beta,
		RSquared:     rSquared,
		Observations: n,
	}

	df := n - 2
	if df == 0 {
		return res, nil
	}
	se := math.Sqrt(ssr / float64(df) / sxx)
	if !isFinite(se) {
		return nil, model.NewValidationMsg("index returns", "standard error of beta is not finite")
	}
	t := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(df)}.Quantile(1 - (1-ConfidenceLevel)/2)
	res.BetaLower = beta - t*se
	res.BetaUpper = beta + t*se
	res.HasInterval = true
	return res, nil
}

func sumSquaredDeviations(v []float64) float64 {
	m := stat.Mean(v, nil)
	s := 0.0
	for _, x := range v {
		d := x - m
		s += d * d
	}
	return s
}

func sumSquares(v []float64) float64 {
	s := 0.0
	for _, x := range v {
		s += x * x
	}
	return s
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
