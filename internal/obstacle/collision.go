package obstacle

import (
	"runtime"
	"sync"

	"github.com/yeonjoon13/moving-obstacle-tracker/internal/geo"
	"github.com/yeonjoon13/moving-obstacle-tracker/internal/model"
)

// Hit describes the first telemetry sample found inside an obstacle sphere.
type Hit struct {
	Sample   model.TelemetrySample
	Obstacle model.Position
	Distance float64
}

// ContainsPos reports whether p lies inside the sphere centred at center.
// The sphere surface counts as inside.
func (o *MovingObstacle) ContainsPos(center, p model.Position) bool {
	return distance(center, p) <= o.radius
}

// Collides reports whether any of the samples lies inside the obstacle's
// sphere at the sample's timestamp. Samples are expected to be densified
// already; see telemetry.Interpolate.
func (o *MovingObstacle) Collides(samples []model.TelemetrySample) bool {
	_, ok := o.FirstCollision(samples)
	return ok
}

// FirstCollision returns the first sample inside the obstacle's sphere.
func (o *MovingObstacle) FirstCollision(samples []model.TelemetrySample) (Hit, bool) {
	for _, s := range samples {
		center := o.PositionAt(s.Timestamp)
		if d := distance(center, s.Position); d <= o.radius {
			return Hit{Sample: s, Obstacle: center, Distance: d}, true
		}
	}
	return Hit{}, false
}

// EvaluateCollisions checks samples against every obstacle concurrently.
// result[i] is the outcome for obstacles[i].
func EvaluateCollisions(obstacles []*MovingObstacle, samples []model.TelemetrySample) []bool {
	results := make([]bool, len(obstacles))

	sem := make(chan struct{}, runtime.GOMAXPROCS(0))
	var wg sync.WaitGroup
	for i, o := range obstacles {
		i, o := i, o // per-iteration copy (go 1.21 loop semantics)
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = o.Collides(samples)
		}()
	}
	wg.Wait()

	return results
}

func distance(a, b model.Position) float64 {
	return geo.Distance(
		a.Latitude, a.Longitude, a.AltitudeMSL,
		b.Latitude, b.Longitude, b.AltitudeMSL,
	)
}
