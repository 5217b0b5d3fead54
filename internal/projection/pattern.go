package projection

import (
	"fmt"
	"strconv"
	"strings"

	"DCFSuite/internal/model"
)

// ParsePattern parses a comma separated list of percentages such as
// "20, 15, 10" into fractions.
func ParsePattern(field, s string) ([]float64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, model.NewValidationMsg(field, "no values provided")
	}
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for i, p := range parts {
		p = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(p), "%"))
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, model.NewValidationMsg(field, fmt.Sprintf("value %d (%q) is not a number", i+1, parts[i]))
		}
		out = append(out, v/100)
	}
	return out, nil
}

// Repeat returns a pattern with v repeated n times.
func Repeat(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// LTMRevenue sums total revenue over the four most recent quarters.
// quarters must be ordered most recent first.
func LTMRevenue(quarters []model.QuarterlyLine) (float64, error) {
	if len(quarters) == 0 {
		return 0, model.NewDataUnavailable("total revenue", "no quarterly income statements")
	}
	n := len(quarters)
	if n > 4 {
		n = 4
	}
	total := 0.0
	for _, q := range quarters[:n] {
		total += q.TotalRevenue
	}
	if total <= 0 {
		return 0, model.NewDataUnavailable("total revenue", "trailing revenue is zero")
	}
	return total, nil
}
