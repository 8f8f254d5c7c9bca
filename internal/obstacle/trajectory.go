package obstacle

import (
	"fmt"
	"math"
	"time"

	"github.com/yeonjoon13/moving-obstacle-tracker/internal/model"
	"github.com/yeonjoon13/moving-obstacle-tracker/internal/spline"
)

// Epoch is the instant circuit time is measured from. Every obstacle starts
// its first lap at waypoint 0 at Epoch.
var Epoch = time.Unix(0, 0).UTC()

// Trajectory is the closed-loop path of an obstacle: one periodic spline
// per dimension, parameterised by seconds into the current lap.
type Trajectory struct {
	Period       float64
	ArrivalTimes []float64
	Lat          *spline.Periodic
	Lon          *spline.Periodic
	Alt          *spline.Periodic
}

// BuildTrajectory fits the trajectory of a circuit flown at speedKnots. The
// circuit must hold at least two distinct waypoints and the speed must be
// positive.
func BuildTrajectory(circuit []model.Waypoint, speedKnots float64) (*Trajectory, error) {
	travel, err := TravelTimes(circuit, speedKnots)
	if err != nil {
		return nil, err
	}
	arrivals := ArrivalTimes(travel)

	n := len(circuit)
	lat := make([]float64, n+1)
	lon := make([]float64, n+1)
	alt := make([]float64, n+1)
	for i := 0; i <= n; i++ {
		w := circuit[i%n]
		lat[i] = w.Latitude
		lon[i] = w.Longitude
		alt[i] = w.AltitudeMSL
	}

	degree := 2
	if n >= 3 {
		degree = 3
	}

	traj := &Trajectory{Period: arrivals[n], ArrivalTimes: arrivals}
	if traj.Lat, err = spline.NewPeriodic(arrivals, lat, degree); err != nil {
		return nil, fmt.Errorf("latitude spline: %w", err)
	}
	if traj.Lon, err = spline.NewPeriodic(arrivals, lon, degree); err != nil {
		return nil, fmt.Errorf("longitude spline: %w", err)
	}
	if traj.Alt, err = spline.NewPeriodic(arrivals, alt, degree); err != nil {
		return nil, fmt.Errorf("altitude spline: %w", err)
	}
	return traj, nil
}

// At returns the position sec seconds into a lap, sec in [0, Period].
func (t *Trajectory) At(sec float64) model.Position {
	return model.Position{
		Latitude:    t.Lat.Eval(sec),
		Longitude:   t.Lon.Eval(sec),
		AltitudeMSL: t.Alt.Eval(sec),
	}
}

// Heading returns the true course in degrees sec seconds into a lap.
func (t *Trajectory) Heading(sec float64) float64 {
	north := t.Lat.Derivative(sec)
	east := t.Lon.Derivative(sec) * math.Cos(t.Lat.Eval(sec)*math.Pi/180)
	hdg := math.Atan2(east, north) * 180 / math.Pi
	if hdg < 0 {
		hdg += 360
	}
	return hdg
}

// LapTime reduces ts to seconds into the current lap of a circuit with the
// given period. The result lies in [0, period).
func LapTime(ts time.Time, period float64) float64 {
	sec := float64(ts.Unix()-Epoch.Unix()) + float64(ts.Nanosecond())/1e9
	r := math.Mod(sec, period)
	if r < 0 {
		r += period
	}
	if r >= period {
		r = 0
	}
	return r
}
