package pipeline

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"DCFSuite/internal/model"
	"DCFSuite/internal/projection"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// CapitalRequest holds the inputs of a cost of capital estimate. Rates are fractions.
type CapitalRequest struct {
	Ticker        string  `json:"ticker" validate:"required,max=16"`
	Index         string  `json:"index" validate:"omitempty,oneof=^GSPC ^DJI ^IXIC"`
	LookbackYears int     `json:"lookback_years" validate:"gte=1,lte=20"`
	RiskFree      float64 `json:"risk_free" validate:"gte=0,lte=0.2"`
	MarketPremium float64 `json:"market_premium" validate:"gte=0,lte=0.2"`
	// An empty or unknown rating is not fatal: the spread is zero and the
	// estimate carries an UNKNOWN_RATING warning.
	Rating        string  `json:"rating" validate:"max=64"`
	MarginalTax   float64 `json:"marginal_tax" validate:"gte=0,lte=1"`
}

// Request holds the inputs of a full valuation run.
type Request struct {
	CapitalRequest
	EffectiveTax   float64 `json:"effective_tax" validate:"gte=0,lte=1"`
	Horizon        int     `json:"horizon" validate:"gte=5,lte=15"`
	TerminalGrowth float64 `json:"terminal_growth" validate:"gte=0,lte=0.1"`
	// DiscountRates are the Lower, Mid and Upper rates. When empty the
	// computed WACC bounds are used.
	DiscountRates []float64 `json:"discount_rates,omitempty" validate:"omitempty,len=3,dive,gte=0,lte=0.5"`
	Growth        []float64 `json:"growth" validate:"required"`
	EBITMargin    []float64 `json:"ebit_margin" validate:"required"`
	Reinvestment  []float64 `json:"reinvestment" validate:"required"`
}

// Normalize trims the ticker and fills in the default index.
func (r *CapitalRequest) Normalize() {
	r.Ticker = strings.ToUpper(strings.TrimSpace(r.Ticker))
	r.Index = strings.ToUpper(strings.TrimSpace(r.Index))
	if r.Index == "" {
		r.Index = "^GSPC"
	}
}

// Validate checks field ranges.
func (r *CapitalRequest) Validate() error {
	return toModelError(validate.Struct(r))
}

// Validate checks field ranges and that every assumption sequence matches the horizon.
func (r *Request) Validate() error {
	if err := toModelError(validate.Struct(r)); err != nil {
		return err
	}
	return projection.ValidateAssumptions(r.Horizon, r.Assumptions())
}

// Assumptions returns the per-year projection assumptions.
func (r *Request) Assumptions() model.ProjectionAssumptions {
	return model.ProjectionAssumptions{
		Growth:       r.Growth,
		EBITMargin:   r.EBITMargin,
		Reinvestment: r.Reinvestment,
	}
}

// Scenarios returns the caller supplied discount rates, if any.
func (r *Request) Scenarios() []model.DiscountScenario {
	if len(r.DiscountRates) != 3 {
		return nil
	}
	return []model.DiscountScenario{
		{Name: model.ScenarioLower, Rate: r.DiscountRates[0]},
		{Name: model.ScenarioMid, Rate: r.DiscountRates[1]},
		{Name: model.ScenarioUpper, Rate: r.DiscountRates[2]},
	}
}

func toModelError(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		expected := fe.Tag()
		if fe.Param() != "" {
			expected = fmt.Sprintf("%s=%s", fe.Tag(), fe.Param())
		}
		return model.NewValidationError(fe.Field(), expected, fe.Value())
	}
	return model.NewValidationMsg("request", err.Error())
}
