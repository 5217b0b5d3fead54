package projection

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"DCFSuite/internal/model"
)

func TestProject_SingleYear(t *testing.T) {
	rows, err := Project(100, 1, 0.20, model.ProjectionAssumptions{
		Growth:       []float64{0.10},
		EBITMargin:   []float64{0.50},
		Reinvestment: []float64{0.20},
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)

	r := rows[0]
	assert.Equal(t, 1, r.Year)
	assert.InDelta(t, 110.0, r.Revenue, 1e-9)
	assert.InDelta(t, 55.0, r.EBIT, 1e-9)
	assert.InDelta(t, 44.0, r.NOPAT, 1e-9)
	assert.InDelta(t, 35.2, r.FCF, 1e-9)
}

func TestProject_Compounds(t *testing.T) {
	rows, err := Project(100, 3, 0, model.ProjectionAssumptions{
		Growth:       []float64{0.10, 0.10, -0.50},
		EBITMargin:   Repeat(1, 3),
		Reinvestment: Repeat(0, 3),
	})
	require.NoError(t, err)
	assert.InDelta(t, 110.0, rows[0].Revenue, 1e-9)
	assert.InDelta(t, 121.0, rows[1].Revenue, 1e-9)
	assert.InDelta(t, 60.5, rows[2].Revenue, 1e-9)
	assert.InDelta(t, 60.5, rows[2].FCF, 1e-9)
}

func TestProject_LengthMismatch(t *testing.T) {
	tests := []struct {
		name  string
		a     model.ProjectionAssumptions
		field string
	}{
		{"growth short", model.ProjectionAssumptions{Growth: Repeat(0.1, 2), EBITMargin: Repeat(0.4, 3), Reinvestment: Repeat(0.2, 3)}, "growth"},
		{"margin long", model.ProjectionAssumptions{Growth: Repeat(0.1, 3), EBITMargin: Repeat(0.4, 4), Reinvestment: Repeat(0.2, 3)}, "ebit_margin"},
		{"reinvestment missing", model.ProjectionAssumptions{Growth: Repeat(0.1, 3), EBITMargin: Repeat(0.4, 3)}, "reinvestment"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Project(100, 3, 0.2, tt.a)
			require.Error(t, err)
			var e *model.Error
			require.True(t, errors.As(err, &e))
			assert.Equal(t, model.KindValidation, e.Kind)
			assert.Equal(t, tt.field, e.Field)
			assert.Contains(t, e.Error(), "exactly 3 values")
		})
	}
}

func TestProject_InvalidHorizon(t *testing.T) {
	_, err := Project(100, 0, 0.2, model.ProjectionAssumptions{})
	assert.True(t, errors.Is(err, model.ErrValidation))
}

func TestParsePattern(t *testing.T) {
	got, err := ParsePattern("growth", "20, 15,10%, 8")
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.20, 0.15, 0.10, 0.08}, got, 1e-12)

	_, err = ParsePattern("growth", "20, abc")
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrValidation))
	assert.Contains(t, err.Error(), "growth")

	_, err = ParsePattern("margin", "  ")
	assert.Error(t, err)
}

func TestLTMRevenue(t *testing.T) {
	q := func(rev float64) model.QuarterlyLine {
		return model.QuarterlyLine{EndDate: time.Now(), TotalRevenue: rev}
	}
	total, err := LTMRevenue([]model.QuarterlyLine{q(10), q(20), q(30), q(40), q(1000)})
	require.NoError(t, err)
	assert.Equal(t, 100.0, total)

	total, err = LTMRevenue([]model.QuarterlyLine{q(10), q(20)})
	require.NoError(t, err)
	assert.Equal(t, 30.0, total)

	_, err = LTMRevenue(nil)
	assert.True(t, errors.Is(err, model.ErrDataUnavailable))
}
