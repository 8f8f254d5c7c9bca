// Package export samples obstacle trajectories into time-stamped tracks
// for visualisation.
package export

import (
	"time"

	"github.com/yeonjoon13/moving-obstacle-tracker/internal/model"
	"github.com/yeonjoon13/moving-obstacle-tracker/internal/units"
)

// DefaultStep is the sampling interval used when none is given.
const DefaultStep = 100 * time.Millisecond

// Positioner reports a position for an instant.
type Positioner interface {
	PositionAt(ts time.Time) model.Position
}

// TimePeriod is a half-open interval [Start, End).
type TimePeriod struct {
	Start time.Time
	End   time.Time
}

// TrackPoint is one sampled position. Altitude stays in feet MSL.
type TrackPoint struct {
	Time time.Time
	model.Position
}

// Coord returns the point as longitude, latitude and altitude in meters.
func (p TrackPoint) Coord() (lon, lat, altMeters float64) {
	return p.Longitude, p.Latitude, units.FeetToMeters(p.AltitudeMSL)
}

// Track samples o every step over each period in turn, oldest first within
// each period.
func Track(o Positioner, periods []TimePeriod, step time.Duration) []TrackPoint {
	if step <= 0 {
		step = DefaultStep
	}
	var points []TrackPoint
	for _, period := range periods {
		for t := period.Start; t.Before(period.End); t = t.Add(step) {
			points = append(points, TrackPoint{Time: t, Position: o.PositionAt(t)})
		}
	}
	return points
}

// LiveTrack samples o backwards from now until now-lookback, newest first.
func LiveTrack(o Positioner, now time.Time, lookback, step time.Duration) []TrackPoint {
	if step <= 0 {
		step = DefaultStep
	}
	last := now.Add(-lookback)
	var points []TrackPoint
	for t := now; !t.Before(last); t = t.Add(-step) {
		points = append(points, TrackPoint{Time: t, Position: o.PositionAt(t)})
	}
	return points
}
