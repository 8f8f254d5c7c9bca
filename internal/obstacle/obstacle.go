// Package obstacle models moving obstacles that patrol a closed circuit of
// waypoints at a constant average speed, and evaluates vehicle telemetry
// against their protective spheres.
//
// Native units: degrees for latitude/longitude, feet for altitude, distance
// and sphere radius, knots for speed.
package obstacle

import (
	"fmt"
	"sync"
	"time"

	"github.com/yeonjoon13/moving-obstacle-tracker/internal/model"
)

// MovingObstacle is an obstacle flying its circuit forever. Waypoints,
// speed and radius are fixed at construction; the deduplicated circuit and
// the fitted trajectory are derived once, on first use.
type MovingObstacle struct {
	ID   uint
	Name string

	speed     float64
	radius    float64
	waypoints []model.Waypoint

	circuitOnce sync.Once
	circuit     []model.Waypoint

	trajectoryOnce sync.Once
	trajectory     *Trajectory
	trajectoryErr  error
}

// New creates an obstacle. Waypoints are copied and ordered by Order.
func New(id uint, waypoints []model.Waypoint, speedKnots, radiusFeet float64) *MovingObstacle {
	return &MovingObstacle{
		ID:        id,
		speed:     speedKnots,
		radius:    radiusFeet,
		waypoints: sortByOrder(waypoints),
	}
}

// FromConfig creates an obstacle from its stored description.
func FromConfig(cfg model.ObstacleConfig) *MovingObstacle {
	o := New(cfg.ID, cfg.Waypoints, cfg.SpeedAvg, cfg.SphereRadius)
	o.Name = cfg.Name
	return o
}

func (o *MovingObstacle) String() string {
	return fmt.Sprintf("MovingObstacle (id:%d, speed:%g, radius:%g)", o.ID, o.speed, o.radius)
}

// Speed returns the average speed in knots.
func (o *MovingObstacle) Speed() float64 { return o.speed }

// SphereRadius returns the protective sphere radius in feet.
func (o *MovingObstacle) SphereRadius() float64 { return o.radius }

// Waypoints returns a copy of the configured waypoints in circuit order.
func (o *MovingObstacle) Waypoints() []model.Waypoint {
	return append([]model.Waypoint(nil), o.waypoints...)
}

// Circuit returns a copy of the deduplicated circuit.
func (o *MovingObstacle) Circuit() []model.Waypoint {
	return append([]model.Waypoint(nil), o.dedupedCircuit()...)
}

func (o *MovingObstacle) dedupedCircuit() []model.Waypoint {
	o.circuitOnce.Do(func() {
		o.circuit = Dedupe(o.waypoints)
	})
	return o.circuit
}

// Stationary reports whether the obstacle holds at its first waypoint.
func (o *MovingObstacle) Stationary() bool {
	return len(o.dedupedCircuit()) < 2 || o.speed <= 0
}

// Trajectory returns the fitted trajectory. ok is false for stationary
// obstacles and for circuits the spline fit rejected.
func (o *MovingObstacle) Trajectory() (*Trajectory, bool) {
	if o.Stationary() {
		return nil, false
	}
	o.trajectoryOnce.Do(func() {
		o.trajectory, o.trajectoryErr = BuildTrajectory(o.dedupedCircuit(), o.speed)
	})
	return o.trajectory, o.trajectoryErr == nil
}

// TrajectoryErr returns why the trajectory could not be fitted, if it
// could not.
func (o *MovingObstacle) TrajectoryErr() error {
	o.Trajectory()
	return o.trajectoryErr
}

// PositionAt returns the obstacle position at ts. An obstacle without
// waypoints reports the zero Position.
func (o *MovingObstacle) PositionAt(ts time.Time) model.Position {
	circuit := o.dedupedCircuit()
	if len(circuit) == 0 {
		return model.Position{}
	}
	traj, ok := o.Trajectory()
	if !ok {
		return circuit[0].Position
	}
	return traj.At(LapTime(ts, traj.Period))
}

// PositionNow returns the obstacle position at the current wall-clock time.
func (o *MovingObstacle) PositionNow() model.Position {
	return o.PositionAt(time.Now())
}

// HeadingAt returns the obstacle's true course at ts, or 0 when stationary.
func (o *MovingObstacle) HeadingAt(ts time.Time) float64 {
	traj, ok := o.Trajectory()
	if !ok {
		return 0
	}
	return traj.Heading(LapTime(ts, traj.Period))
}

// View returns the flat reporting form of the obstacle at ts.
func (o *MovingObstacle) View(ts time.Time) model.ObstacleView {
	p := o.PositionAt(ts)
	return model.ObstacleView{
		Latitude:     p.Latitude,
		Longitude:    p.Longitude,
		AltitudeMSL:  p.AltitudeMSL,
		SphereRadius: o.radius,
	}
}
