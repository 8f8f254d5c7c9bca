package obstacle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeonjoon13/moving-obstacle-tracker/internal/geo"
	"github.com/yeonjoon13/moving-obstacle-tracker/internal/model"
	"github.com/yeonjoon13/moving-obstacle-tracker/internal/units"
)

func TestSegmentTravelTime_Failures(t *testing.T) {
	circuit := squareCircuit()

	tests := []struct {
		name     string
		circuit  []model.Waypoint
		from, to int
		speed    float64
		want     error
	}{
		{"empty circuit", nil, 0, 1, 30, ErrEmptyCircuit},
		{"single waypoint", circuit[:1], 0, 0, 30, ErrTooFewWaypoints},
		{"from negative", circuit, -1, 1, 30, ErrIndexOutOfRange},
		{"from too large", circuit, 4, 1, 30, ErrIndexOutOfRange},
		{"to negative", circuit, 0, -1, 30, ErrIndexOutOfRange},
		{"to too large", circuit, 0, 9, 30, ErrIndexOutOfRange},
		{"zero speed", circuit, 0, 1, 0, ErrNonPositiveSpeed},
		{"negative speed", circuit, 0, 1, -5, ErrNonPositiveSpeed},
	}
	for _, tt := range tests {
		tt := tt // per-iteration copy (go 1.21 loop semantics)
		t.Run(tt.name, func(t *testing.T) {
			_, err := SegmentTravelTime(tt.circuit, tt.from, tt.to, tt.speed)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestSegmentTravelTime(t *testing.T) {
	circuit := squareCircuit()
	a, b := circuit[0], circuit[1]

	got, err := SegmentTravelTime(circuit, 0, 1, 30)
	require.NoError(t, err)

	dist := geo.Distance(a.Latitude, a.Longitude, a.AltitudeMSL, b.Latitude, b.Longitude, b.AltitudeMSL)
	assert.InDelta(t, dist/units.KnotsToFeetPerSecond(30), got, 1e-9)

	back, err := SegmentTravelTime(circuit, 1, 0, 30)
	require.NoError(t, err)
	assert.InDelta(t, got, back, 1e-9)
}

func TestTravelTimes_WrapAround(t *testing.T) {
	circuit := squareCircuit()

	times, err := TravelTimes(circuit, 30)
	require.NoError(t, err)
	require.Len(t, times, len(circuit)+1)

	assert.Equal(t, 0.0, times[0])
	for i := 1; i <= len(circuit); i++ {
		want, err := SegmentTravelTime(circuit, i-1, i%len(circuit), 30)
		require.NoError(t, err)
		assert.Equal(t, want, times[i])
	}
}

func TestTravelTimes_Failures(t *testing.T) {
	_, err := TravelTimes(nil, 30)
	assert.ErrorIs(t, err, ErrEmptyCircuit)

	_, err = TravelTimes(squareCircuit()[:1], 30)
	assert.ErrorIs(t, err, ErrTooFewWaypoints)

	_, err = TravelTimes(squareCircuit(), 0)
	assert.ErrorIs(t, err, ErrNonPositiveSpeed)
}

func TestArrivalTimes(t *testing.T) {
	assert.Equal(t, []float64{0, 2, 5, 5, 9.5}, ArrivalTimes([]float64{0, 2, 3, 0, 4.5}))
	assert.Equal(t, []float64{}, ArrivalTimes([]float64{}))
}

func TestArrivalTimes_ThreeWaypointTriangle(t *testing.T) {
	circuit := []model.Waypoint{
		wp(0, 0, 0, 0),
		wp(1, 0, 1, 0),
		wp(2, 1, 1, 0),
	}

	travel, err := TravelTimes(circuit, 10)
	require.NoError(t, err)
	arrivals := ArrivalTimes(travel)

	require.Len(t, arrivals, 4)
	assert.Equal(t, 0.0, arrivals[0])
	for i := 1; i < len(arrivals); i++ {
		assert.Greater(t, arrivals[i], arrivals[i-1])
	}
	assert.Greater(t, travel[3], 0.0)
	// the closing hypotenuse is the longest leg
	assert.Greater(t, travel[3], travel[1])
	assert.Greater(t, travel[3], travel[2])
}
