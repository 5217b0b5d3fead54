package calculator

import (
	"sort"

	"github.com/markcheno/go-talib"

	"DCFSuite/internal/model"
)

// MonthlyClose is the last close observed in a calendar month.
type MonthlyClose struct {
	Month int // year*100 + month
	Close float64
}

// MonthlyCloses collapses bars to one close per calendar month, keeping the
// latest bar of each month. The result is sorted oldest first.
func MonthlyCloses(bars []model.OHLCV) []MonthlyClose {
	byMonth := make(map[int]model.OHLCV, len(bars))
	for _, b := range bars {
		key := b.Time.Year()*100 + int(b.Time.Month())
		if prev, ok := byMonth[key]; !ok || b.Time.After(prev.Time) {
			byMonth[key] = b
		}
	}
	out := make([]MonthlyClose, 0, len(byMonth))
	for k, b := range byMonth {
		out = append(out, MonthlyClose{Month: k, Close: b.Close})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}

// AlignCloses keeps only the months present in both series.
func AlignCloses(asset, index []MonthlyClose) (a, b []float64) {
	idx := make(map[int]float64, len(index))
	for _, c := range index {
		idx[c.Month] = c.Close
	}
	for _, c := range asset {
		if ic, ok := idx[c.Month]; ok {
			a = append(a, c.Close)
			b = append(b, ic)
		}
	}
	return a, b
}

// PercentReturns converts closes to period-over-period simple returns.
func PercentReturns(closes []float64) ([]float64, error) {
	if len(closes) < 2 {
		return nil, model.NewDataUnavailable("price history", "need at least 2 closes to compute returns")
	}
	for _, c := range closes {
		if c <= 0 {
			return nil, model.NewDataUnavailable("price history", "non-positive close in series")
		}
	}
	return talib.Rocp(closes, 1)[1:], nil
}

// ExcessReturns subtracts the risk-free rate from every period return.
// The rate is applied as quoted, without de-annualizing.
func ExcessReturns(returns []float64, riskFree float64) []float64 {
	out := make([]float64, len(returns))
	for i, r := range returns {
		out[i] = r - riskFree
	}
	return out
}

// BuildReturnSeries aligns asset and index bars by month and returns their
// excess returns.
func BuildReturnSeries(assetBars, indexBars []model.OHLCV, riskFree float64) (model.ReturnSeries, error) {
	a, b := AlignCloses(MonthlyCloses(assetBars), MonthlyCloses(indexBars))
	if len(a) == 0 {
		return model.ReturnSeries{}, model.NewDataUnavailable("price history", "no overlapping months between asset and index")
	}
	ra, err := PercentReturns(a)
	if err != nil {
		return model.ReturnSeries{}, err
	}
	rb, err := PercentReturns(b)
	if err != nil {
		return model.ReturnSeries{}, err
	}
	return model.ReturnSeries{
		Asset: ExcessReturns(ra, riskFree),
		Index: ExcessReturns(rb, riskFree),
	}, nil
}
