package valuation

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"DCFSuite/internal/model"
)

// Input is a projection to discount under one or more rates.
type Input struct {
	Projection        []model.ProjectionRow
	TerminalGrowth    float64
	Scenarios         []model.DiscountScenario
	TotalDebt         float64
	TotalCash         float64
	SharesOutstanding float64
}

// Result holds one valuation per scenario, in input order.
type Result struct {
	Scenarios []model.ValuationScenario
}

// PriceRange returns the lowest and highest per-share value.
func (r *Result) PriceRange() model.PriceRange {
	pr := model.PriceRange{Low: math.Inf(1), High: math.Inf(-1)}
	for _, s := range r.Scenarios {
		pr.Low = math.Min(pr.Low, s.SharePrice)
		pr.High = math.Max(pr.High, s.SharePrice)
	}
	return pr
}

// Evaluate discounts the projected free cash flows and a Gordon growth
// terminal value under each scenario. Every precondition is checked before
// any scenario is computed, so a failure never yields a partial result.
func Evaluate(in Input) (*Result, error) {
	if len(in.Projection) == 0 {
		return nil, model.NewValidationMsg("projection", "no projected years")
	}
	if len(in.Scenarios) == 0 {
		return nil, model.NewValidationMsg("discount rates", "no scenarios")
	}
	if err := checkFinite(in); err != nil {
		return nil, err
	}
	if in.SharesOutstanding <= 0 {
		return nil, model.NewDataUnavailable("shares outstanding", "must be positive")
	}
	for _, s := range in.Scenarios {
		if s.Rate <= in.TerminalGrowth {
			return nil, model.NewMathDomainError("discount rate",
				fmt.Sprintf("%s rate %.4f must exceed terminal growth %.4f", s.Name, s.Rate, in.TerminalGrowth))
		}
		if s.Rate <= -1 {
			return nil, model.NewMathDomainError("discount rate", fmt.Sprintf("%s rate %.4f is not above -100%%", s.Name, s.Rate))
		}
	}

	res := &Result{Scenarios: make([]model.ValuationScenario, 0, len(in.Scenarios))}
	for _, s := range in.Scenarios {
		res.Scenarios = append(res.Scenarios, discount(in, s))
	}
	return res, nil
}

// checkFinite rejects NaN and infinite inputs. NaN compares false against
// every bound, so it would slip past the domain checks below.
func checkFinite(in Input) error {
	for _, row := range in.Projection {
		if !finite(row.FCF) {
			return model.NewValidationError("fcf", "finite value", fmt.Sprintf("%v in year %d", row.FCF, row.Year))
		}
	}
	for _, s := range in.Scenarios {
		if !finite(s.Rate) {
			return model.NewValidationError("discount rate", "finite value", fmt.Sprintf("%s %v", s.Name, s.Rate))
		}
	}
	fields := []struct {
		name string
		v    float64
	}{
		{"terminal growth", in.TerminalGrowth},
		{"total debt", in.TotalDebt},
		{"total cash", in.TotalCash},
		{"shares outstanding", in.SharesOutstanding},
	}
	for _, f := range fields {
		if !finite(f.v) {
			return model.NewValidationError(f.name, "finite value", f.v)
		}
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func discount(in Input, s model.DiscountScenario) model.ValuationScenario {
	n := len(in.Projection)
	pv := make([]float64, n)
	for i, row := range in.Projection {
		pv[i] = row.FCF / math.Pow(1+s.Rate, float64(i+1))
	}
	pvFCF := floats.Sum(pv)

	last := in.Projection[n-1].FCF
	tv := last * (1 + in.TerminalGrowth) / (s.Rate - in.TerminalGrowth)
	pvTV := tv / math.Pow(1+s.Rate, float64(n))

	firm := pvFCF + pvTV
	equity := firm - in.TotalDebt + in.TotalCash
	return model.ValuationScenario{
		Name:              s.Name,
		DiscountRate:      s.Rate,
		PVOfFCF:           pvFCF,
		TerminalValue:     tv,
		PVOfTerminalValue: pvTV,
		FirmValue:         firm,
		EquityValue:       equity,
		SharePrice:        equity / in.SharesOutstanding,
	}
}
