package util

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFmtFloat(t *testing.T) {
	assert.Equal(t, "0.300024", FmtFloat(0.300024))
	assert.Equal(t, "2.0084695e-11", FmtFloat(2.0084695e-11))
	assert.Equal(t, "111", FmtFloat(111))
	assert.Equal(t, "NaN", FmtFloat(math.NaN()))
}

func TestFmtSeconds(t *testing.T) {
	assert.Equal(t, "1.50", FmtSeconds(1500*time.Millisecond))
	assert.Equal(t, "0.00", FmtSeconds(0))
}

func TestMinMax(t *testing.T) {
	t.Run("regular", func(t *testing.T) {
		lo, hi, ok := MinMax([]float64{3, -1, 7, 2})
		require.True(t, ok)
		assert.Equal(t, -1.0, lo)
		assert.Equal(t, 7.0, hi)
	})
	t.Run("skips_nan", func(t *testing.T) {
		lo, hi, ok := MinMax([]float64{math.NaN(), 5, math.NaN(), 4})
		require.True(t, ok)
		assert.Equal(t, 4.0, lo)
		assert.Equal(t, 5.0, hi)
	})
	t.Run("empty_or_all_nan", func(t *testing.T) {
		_, _, ok := MinMax(nil)
		assert.False(t, ok)
		_, _, ok = MinMax([]float64{math.NaN()})
		assert.False(t, ok)
	})
	t.Run("single", func(t *testing.T) {
		lo, hi, ok := MinMax([]float64{0.5})
		require.True(t, ok)
		assert.Equal(t, lo, hi)
	})
}

func TestEMA(t *testing.T) {
	e := NewEMA(0.5)
	assert.True(t, math.IsNaN(e.Next(math.NaN())))
	assert.Equal(t, 4.0, e.Next(4))
	assert.Equal(t, 3.0, e.Next(2))
	assert.Equal(t, 3.0, e.Next(math.NaN()))
	assert.Equal(t, 5.0, e.Next(7))
}
