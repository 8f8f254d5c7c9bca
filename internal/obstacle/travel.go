package obstacle

import (
	"errors"

	"github.com/yeonjoon13/moving-obstacle-tracker/internal/model"
	"github.com/yeonjoon13/moving-obstacle-tracker/internal/units"
)

var (
	ErrEmptyCircuit     = errors.New("obstacle: circuit has no waypoints")
	ErrTooFewWaypoints  = errors.New("obstacle: circuit needs at least two waypoints")
	ErrIndexOutOfRange  = errors.New("obstacle: waypoint index out of range")
	ErrNonPositiveSpeed = errors.New("obstacle: average speed must be positive")
)

// SegmentTravelTime returns the seconds needed to travel from circuit[from]
// to circuit[to] at speedKnots.
func SegmentTravelTime(circuit []model.Waypoint, from, to int, speedKnots float64) (float64, error) {
	if len(circuit) == 0 {
		return 0, ErrEmptyCircuit
	}
	if len(circuit) < 2 {
		return 0, ErrTooFewWaypoints
	}
	if from < 0 || from >= len(circuit) || to < 0 || to >= len(circuit) {
		return 0, ErrIndexOutOfRange
	}
	if speedKnots <= 0 {
		return 0, ErrNonPositiveSpeed
	}

	dist := waypointDistance(circuit[from], circuit[to])
	return dist / units.KnotsToFeetPerSecond(speedKnots), nil
}

// TravelTimes returns len(circuit)+1 segment durations in seconds. Entry 0
// is zero; entry i is the time from waypoint i-1 to waypoint i, and the last
// entry closes the circuit back to waypoint 0.
func TravelTimes(circuit []model.Waypoint, speedKnots float64) ([]float64, error) {
	n := len(circuit)
	if n == 0 {
		return nil, ErrEmptyCircuit
	}
	times := make([]float64, n+1)
	for i := 1; i <= n; i++ {
		t, err := SegmentTravelTime(circuit, (i-1)%n, i%n, speedKnots)
		if err != nil {
			return nil, err
		}
		times[i] = t
	}
	return times, nil
}

// ArrivalTimes returns the running sum of travelTimes: the seconds after
// circuit start at which each waypoint is reached. The last entry is the
// circuit period.
func ArrivalTimes(travelTimes []float64) []float64 {
	arrivals := make([]float64, len(travelTimes))
	total := 0.0
	for i, t := range travelTimes {
		total += t
		arrivals[i] = total
	}
	return arrivals
}
