package calculator

import (
	"math"

	"DCFSuite/internal/model"
)

// trailingMonths is the 52-week window expressed in monthly bars.
const trailingMonths = 12

// PriceContextFor places the current price within the high/low of the last
// twelve monthly bars. A non-positive current falls back to the latest close.
// Position is 0 at the low, 1 at the high, and 0.5 for a flat range.
func PriceContextFor(monthlyBars []model.OHLCV, current float64) (model.PriceContext, error) {
	if len(monthlyBars) == 0 {
		return model.PriceContext{}, model.NewDataUnavailable("price history", "no monthly bars for 52-week range")
	}
	window := monthlyBars[max(0, len(monthlyBars)-trailingMonths):]

	pc := model.PriceContext{CurrentPrice: current, High52w: math.Inf(-1), Low52w: math.Inf(1)}
	for _, b := range window {
		pc.High52w = math.Max(pc.High52w, b.High)
		pc.Low52w = math.Min(pc.Low52w, b.Low)
	}
	if pc.CurrentPrice <= 0 {
		pc.CurrentPrice = window[len(window)-1].Close
	}

	pc.Position52w = 0.5
	if span := pc.High52w - pc.Low52w; span > 0 {
		pc.Position52w = math.Min(1, math.Max(0, (pc.CurrentPrice-pc.Low52w)/span))
	}
	return pc, nil
}
