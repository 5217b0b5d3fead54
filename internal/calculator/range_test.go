package calculator

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"DCFSuite/internal/model"
)

func TestPriceContextFor_UsesLastTwelveBars(t *testing.T) {
	var bars []model.OHLCV
	start := time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 18; i++ {
		m := start.AddDate(0, i, 0)
		bars = append(bars, bar(m.Year(), m.Month(), 1, float64(10+i)))
	}
	bars[0].High = 500 // outside the window

	pc, err := PriceContextFor(bars, 21.5)
	require.NoError(t, err)
	assert.Equal(t, 27.0, pc.High52w)
	assert.Equal(t, 16.0, pc.Low52w)
	assert.InDelta(t, 0.5, pc.Position52w, 1e-12)
}

func TestPriceContextFor_Position(t *testing.T) {
	bars := []model.OHLCV{
		{High: 20, Low: 10, Close: 15},
	}
	tests := []struct {
		name    string
		current float64
		want    float64
	}{
		{"middle", 15, 0.5},
		{"below low clamps", 5, 0},
		{"above high clamps", 25, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pc, err := PriceContextFor(bars, tt.current)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, pc.Position52w, 1e-12)
		})
	}

	flat, err := PriceContextFor([]model.OHLCV{bar(2024, time.May, 1, 10)}, 10)
	require.NoError(t, err)
	assert.Equal(t, 0.5, flat.Position52w)
}

func TestPriceContextFor_FallsBackToLastClose(t *testing.T) {
	bars := []model.OHLCV{
		bar(2024, time.January, 1, 10),
		bar(2024, time.February, 1, 20),
		bar(2024, time.March, 1, 15),
	}
	pc, err := PriceContextFor(bars, 0)
	require.NoError(t, err)
	assert.Equal(t, 15.0, pc.CurrentPrice)
	assert.Equal(t, 20.0, pc.High52w)
	assert.Equal(t, 10.0, pc.Low52w)
	assert.InDelta(t, 0.5, pc.Position52w, 1e-12)
}

func TestPriceContextFor_NoBars(t *testing.T) {
	_, err := PriceContextFor(nil, 10)
	assert.True(t, errors.Is(err, model.ErrDataUnavailable), "got %v", err)
}
