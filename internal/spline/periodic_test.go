package spline

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPeriodic_Errors(t *testing.T) {
	tests := []struct {
		name   string
		t, y   []float64
		degree int
		want   error
	}{
		{"length mismatch", []float64{0, 1, 2}, []float64{0, 1}, 3, ErrLengthMismatch},
		{"too few", []float64{0, 1}, []float64{0, 0}, 3, ErrTooFewPoints},
		{"bad degree", []float64{0, 1, 2}, []float64{0, 1, 0}, 1, ErrUnsupportedDegree},
		{"non zero start", []float64{1, 2, 3}, []float64{0, 1, 0}, 2, ErrUnsortedTimes},
		{"repeated time", []float64{0, 1, 1, 2}, []float64{0, 1, 2, 0}, 3, ErrUnsortedTimes},
		{"decreasing time", []float64{0, 2, 1, 3}, []float64{0, 1, 2, 0}, 3, ErrUnsortedTimes},
		{"open loop", []float64{0, 1, 2}, []float64{0, 1, 2}, 2, ErrOpenLoop},
	}
	for _, tt := range tests {
		tt := tt // per-iteration copy (go 1.21 loop semantics)
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPeriodic(tt.t, tt.y, tt.degree)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestPeriodic_InterpolatesControlPoints(t *testing.T) {
	times := []float64{0, 3, 4.5, 9, 10, 14}
	values := []float64{5, -2, 7, 1, 3, 5}

	for _, degree := range []int{2, 3} {
		p, err := NewPeriodic(times, values, degree)
		require.NoError(t, err)
		assert.Equal(t, degree, p.Degree())
		assert.Equal(t, 14.0, p.Period())

		for k := range times {
			assert.InDelta(t, values[k], p.Eval(times[k]), 1e-9, "degree %d knot %d", degree, k)
		}
	}
}

func TestPeriodic_SmoothAtSeam(t *testing.T) {
	times := []float64{0, 2, 5, 6, 9}
	values := []float64{1, 4, -3, 0, 1}

	for _, degree := range []int{2, 3} {
		p, err := NewPeriodic(times, values, degree)
		require.NoError(t, err)

		assert.InDelta(t, p.Eval(0), p.Eval(p.Period()), 1e-9)
		assert.InDelta(t, p.Derivative(0), p.Derivative(p.Period()), 1e-9, "degree %d", degree)

		// approaching the seam from both sides
		eps := 1e-6
		assert.InDelta(t, p.Eval(eps), p.Eval(p.Period()-eps), 1e-4)
	}
}

func TestPeriodic_ContinuousBetweenPieces(t *testing.T) {
	times := []float64{0, 1, 3, 3.5, 7}
	values := []float64{0, 10, -5, 2, 0}

	for _, degree := range []int{2, 3} {
		p, err := NewPeriodic(times, values, degree)
		require.NoError(t, err)

		const eps = 1e-7
		for x := 0.05; x < p.Period()-0.05; x += 0.05 {
			assert.InDelta(t, p.Eval(x-eps), p.Eval(x+eps), 1e-4, "degree %d x=%v", degree, x)
			assert.InDelta(t, p.Derivative(x-eps), p.Derivative(x+eps), 1e-3, "degree %d x=%v", degree, x)
		}
	}
}

func TestPeriodic_ConstantData(t *testing.T) {
	p, err := NewPeriodic([]float64{0, 1, 2, 3}, []float64{4, 4, 4, 4}, 3)
	require.NoError(t, err)

	for x := 0.0; x <= 3; x += 0.25 {
		assert.InDelta(t, 4.0, p.Eval(x), 1e-12)
		assert.InDelta(t, 0.0, p.Derivative(x), 1e-12)
	}
}

func TestPeriodic_CubicApproximatesSine(t *testing.T) {
	const n = 16
	times := make([]float64, n+1)
	values := make([]float64, n+1)
	for k := 0; k <= n; k++ {
		times[k] = 2 * math.Pi * float64(k) / n
		values[k] = math.Sin(times[k])
	}
	values[n] = values[0]

	p, err := NewPeriodic(times, values, 3)
	require.NoError(t, err)

	for x := 0.0; x < 2*math.Pi; x += 0.1 {
		assert.InDelta(t, math.Sin(x), p.Eval(x), 1e-3)
		assert.InDelta(t, math.Cos(x), p.Derivative(x), 1e-2)
	}
}

func TestPeriodic_QuadraticOutAndBack(t *testing.T) {
	// two segments of equal length: A -> B -> A
	p, err := NewPeriodic([]float64{0, 10, 20}, []float64{0, 8, 0}, 2)
	require.NoError(t, err)

	assert.InDelta(t, 0.0, p.Eval(0), 1e-9)
	assert.InDelta(t, 4.0, p.Eval(5), 1e-9)
	assert.InDelta(t, 8.0, p.Eval(10), 1e-9)
	assert.InDelta(t, 4.0, p.Eval(15), 1e-9)
	assert.InDelta(t, 0.0, p.Eval(20), 1e-9)
	assert.InDelta(t, 0.0, p.Derivative(0), 1e-9)
	assert.InDelta(t, 0.0, p.Derivative(10), 1e-9)
}

func TestPeriodic_PanicsOutsideDomain(t *testing.T) {
	p, err := NewPeriodic([]float64{0, 1, 2, 3}, []float64{0, 1, 2, 0}, 3)
	require.NoError(t, err)

	assert.Panics(t, func() { p.Eval(-0.001) })
	assert.Panics(t, func() { p.Eval(3.001) })
	assert.Panics(t, func() { p.Eval(math.NaN()) })
	assert.Panics(t, func() { p.Derivative(4) })
	assert.NotPanics(t, func() { p.Eval(0) })
	assert.NotPanics(t, func() { p.Eval(3) })
}
