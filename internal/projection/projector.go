package projection

import (
	"fmt"

	"DCFSuite/internal/model"
)

// Project grows the baseline revenue year by year and derives EBIT, NOPAT
// and free cash flow from the per-year assumptions.
//
//	revenue(t) = revenue(t-1) * (1 + growth[t])
//	EBIT       = revenue * margin[t]
//	NOPAT      = EBIT * (1 - tax)
//	FCF        = NOPAT * (1 - reinvestment[t])
//
// Assumption values are not bounded.
func Project(baseline float64, horizon int, taxRate float64, a model.ProjectionAssumptions) ([]model.ProjectionRow, error) {
	if err := ValidateAssumptions(horizon, a); err != nil {
		return nil, err
	}

	rows := make([]model.ProjectionRow, horizon)
	revenue := baseline
	for t := 0; t < horizon; t++ {
		revenue *= 1 + a.Growth[t]
		ebit := revenue * a.EBITMargin[t]
		nopat := ebit * (1 - taxRate)
		rows[t] = model.ProjectionRow{
			Year:             t + 1,
			GrowthRate:       a.Growth[t],
			EBITMargin:       a.EBITMargin[t],
			ReinvestmentRate: a.Reinvestment[t],
			Revenue:          revenue,
			EBIT:             ebit,
			NOPAT:            nopat,
			FCF:              nopat * (1 - a.Reinvestment[t]),
		}
	}
	return rows, nil
}

// ValidateAssumptions checks that every sequence has exactly horizon values.
func ValidateAssumptions(horizon int, a model.ProjectionAssumptions) error {
	if horizon < 1 {
		return model.NewValidationError("horizon", ">= 1", horizon)
	}
	if err := checkLen("growth", a.Growth, horizon); err != nil {
		return err
	}
	if err := checkLen("ebit_margin", a.EBITMargin, horizon); err != nil {
		return err
	}
	return checkLen("reinvestment", a.Reinvestment, horizon)
}

func checkLen(field string, v []float64, horizon int) error {
	if len(v) != horizon {
		return &model.Error{
			Kind:     model.KindValidation,
			Field:    field,
			Expected: fmt.Sprintf("%d values", horizon),
			Actual:   fmt.Sprintf("%d", len(v)),
			Msg:      fmt.Sprintf("must have exactly %d values, got %d", horizon, len(v)),
		}
	}
	return nil
}
