package valuation

import "DCFSuite/internal/model"

// Verdict classifies the current trading price against the valuation range.
// A non-positive current price means it is unavailable.
func Verdict(current float64, pr model.PriceRange) model.Verdict {
	switch {
	case current <= 0:
		return model.VerdictUnknown
	case current < pr.Low:
		return model.VerdictUndervalued
	case current > pr.High:
		return model.VerdictOvervalued
	default:
		return model.VerdictFairlyValued
	}
}
