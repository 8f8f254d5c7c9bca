package obstacle

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeonjoon13/moving-obstacle-tracker/internal/model"
)

func wp(order int, lat, lon, alt float64) model.Waypoint {
	return model.Waypoint{
		Order:    order,
		Position: model.Position{Latitude: lat, Longitude: lon, AltitudeMSL: alt},
	}
}

// squareCircuit is roughly 3600 ft on a side near Webster Field.
func squareCircuit() []model.Waypoint {
	return []model.Waypoint{
		wp(0, 38.140, -76.430, 200),
		wp(1, 38.150, -76.430, 300),
		wp(2, 38.150, -76.417, 300),
		wp(3, 38.140, -76.417, 200),
	}
}

// lapInstant returns the instant sec seconds into lap number lap.
func lapInstant(period float64, lap int, sec float64) time.Time {
	return Epoch.Add(time.Duration((float64(lap)*period + sec) * float64(time.Second)))
}

func assertPositionNear(t *testing.T, want, got model.Position) {
	t.Helper()
	assert.InDelta(t, want.Latitude, got.Latitude, 1e-7)
	assert.InDelta(t, want.Longitude, got.Longitude, 1e-7)
	assert.InDelta(t, want.AltitudeMSL, got.AltitudeMSL, 1e-3)
}

func TestNew_SortsWaypointsByOrder(t *testing.T) {
	o := New(1, []model.Waypoint{
		wp(2, 3, 3, 0),
		wp(0, 1, 1, 0),
		wp(1, 2, 2, 0),
	}, 10, 50)

	got := o.Waypoints()
	require.Len(t, got, 3)
	assert.Equal(t, []int{0, 1, 2}, []int{got[0].Order, got[1].Order, got[2].Order})
	assert.Equal(t, 1.0, got[0].Latitude)
}

func TestPositionAt_NoWaypoints(t *testing.T) {
	o := New(1, nil, 30, 50)

	assert.Equal(t, model.Position{}, o.PositionAt(time.Now()))
	assert.True(t, o.Stationary())
}

func TestPositionAt_SingleWaypoint(t *testing.T) {
	w := wp(0, 38.14, -76.43, 150)
	o := New(1, []model.Waypoint{w}, 30, 50)

	instants := []time.Time{
		Epoch,
		time.Date(1999, 12, 31, 23, 59, 59, 0, time.UTC),
		time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
		time.Date(2301, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	for _, ts := range instants {
		assert.Equal(t, w.Position, o.PositionAt(ts))
	}
	_, ok := o.Trajectory()
	assert.False(t, ok)
}

func TestPositionAt_DuplicatesCollapseToStationary(t *testing.T) {
	w := wp(0, 38.14, -76.43, 150)
	o := New(1, []model.Waypoint{w, wp(1, 38.14, -76.43, 150), wp(2, 38.14, -76.43, 150)}, 30, 50)

	assert.Len(t, o.Circuit(), 1)
	assert.Equal(t, w.Position, o.PositionAt(time.Now()))
}

func TestPositionAt_NonPositiveSpeed(t *testing.T) {
	for _, speed := range []float64{0, -10} {
		o := New(1, squareCircuit(), speed, 50)

		first := squareCircuit()[0].Position
		assert.Equal(t, first, o.PositionAt(time.Unix(12345, 0)))
		assert.Equal(t, first, o.PositionAt(time.Unix(98765, 0)))
		assert.True(t, o.Stationary())
	}
}

func TestPositionAt_ReachesEachWaypointOnSchedule(t *testing.T) {
	circuit := squareCircuit()
	o := New(1, circuit, 30, 50)

	traj, ok := o.Trajectory()
	require.True(t, ok)

	for k, w := range circuit {
		ts := lapInstant(traj.Period, 3, traj.ArrivalTimes[k])
		assertPositionNear(t, w.Position, o.PositionAt(ts))
	}
	assertPositionNear(t, circuit[0].Position, o.PositionAt(Epoch))
}

func TestPositionAt_Periodic(t *testing.T) {
	o := New(1, squareCircuit(), 30, 50)
	traj, ok := o.Trajectory()
	require.True(t, ok)

	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	for _, offset := range []time.Duration{0, 17 * time.Second, 3*time.Minute + 250*time.Millisecond} {
		ts := base.Add(offset)
		want := o.PositionAt(ts)
		for _, k := range []int{-3, -1, 1, 2, 10} {
			shift := time.Duration(float64(k) * traj.Period * float64(time.Second))
			assertPositionNear(t, want, o.PositionAt(ts.Add(shift)))
		}
	}
}

func TestPositionAt_RepeatableForSameInstant(t *testing.T) {
	o := New(1, squareCircuit(), 30, 50)
	ts := time.Date(2024, 6, 1, 12, 0, 0, 123456789, time.UTC)

	assert.Equal(t, o.PositionAt(ts), o.PositionAt(ts))
}

func TestPositionAt_TwoWaypointsOutAndBack(t *testing.T) {
	a := wp(0, 38.14, -76.43, 100)
	b := wp(1, 38.15, -76.43, 300)
	o := New(1, []model.Waypoint{a, b}, 20, 30)

	traj, ok := o.Trajectory()
	require.True(t, ok)
	assert.Equal(t, 2, traj.Lat.Degree())

	assertPositionNear(t, a.Position, o.PositionAt(lapInstant(traj.Period, 1, 0)))
	assertPositionNear(t, b.Position, o.PositionAt(lapInstant(traj.Period, 1, traj.ArrivalTimes[1])))

	mid := o.PositionAt(lapInstant(traj.Period, 1, traj.ArrivalTimes[1]/2))
	assert.InDelta(t, 38.145, mid.Latitude, 1e-6)
	assert.InDelta(t, 200, mid.AltitudeMSL, 1e-3)
}

func TestTrajectory_UsesCubicForThreeOrMore(t *testing.T) {
	o := New(1, squareCircuit(), 30, 50)
	traj, ok := o.Trajectory()
	require.True(t, ok)

	assert.Equal(t, 3, traj.Lat.Degree())
	assert.Equal(t, 3, traj.Lon.Degree())
	assert.Equal(t, 3, traj.Alt.Degree())
	assert.Equal(t, traj.ArrivalTimes[len(traj.ArrivalTimes)-1], traj.Period)
}

func TestTrajectory_BuiltOnceUnderConcurrency(t *testing.T) {
	o := New(1, squareCircuit(), 30, 50)
	ts := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	const workers = 32
	positions := make([]model.Position, workers)
	trajectories := make([]*Trajectory, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		i := i // per-iteration copy (go 1.21 loop semantics)
		wg.Add(1)
		go func() {
			defer wg.Done()
			positions[i] = o.PositionAt(ts)
			trajectories[i], _ = o.Trajectory()
		}()
	}
	wg.Wait()

	for i := 1; i < workers; i++ {
		assert.Equal(t, positions[0], positions[i])
		assert.Same(t, trajectories[0], trajectories[i])
	}
}

func TestHeadingAt(t *testing.T) {
	o := New(1, squareCircuit(), 30, 50)
	traj, ok := o.Trajectory()
	require.True(t, ok)

	// halfway up the western edge the obstacle flies roughly north
	hdg := o.HeadingAt(lapInstant(traj.Period, 0, traj.ArrivalTimes[1]/2))
	assert.True(t, hdg < 45 || hdg > 315, "heading %v", hdg)

	stationary := New(2, squareCircuit()[:1], 30, 50)
	assert.Equal(t, 0.0, stationary.HeadingAt(time.Now()))
}

func TestView(t *testing.T) {
	w := wp(0, 38.14, -76.43, 150)
	o := New(7, []model.Waypoint{w}, 0, 42)

	v := o.View(time.Now())
	assert.Equal(t, model.ObstacleView{
		Latitude:     38.14,
		Longitude:    -76.43,
		AltitudeMSL:  150,
		SphereRadius: 42,
	}, v)
}

func TestFromConfig(t *testing.T) {
	o := FromConfig(model.ObstacleConfig{
		ID:           3,
		Name:         "north loop",
		SpeedAvg:     25,
		SphereRadius: 60,
		Waypoints:    squareCircuit(),
	})

	assert.Equal(t, uint(3), o.ID)
	assert.Equal(t, "north loop", o.Name)
	assert.Equal(t, 25.0, o.Speed())
	assert.Equal(t, 60.0, o.SphereRadius())
	assert.Equal(t, "MovingObstacle (id:3, speed:25, radius:60)", o.String())
}

func TestLapTime(t *testing.T) {
	assert.Equal(t, 0.0, LapTime(Epoch, 100))
	assert.InDelta(t, 25.5, LapTime(Epoch.Add(125500*time.Millisecond), 100), 1e-9)
	assert.InDelta(t, 75.0, LapTime(Epoch.Add(-25*time.Second), 100), 1e-9)

	for _, ts := range []time.Time{
		time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
		time.Date(1960, 1, 1, 0, 0, 0, 0, time.UTC),
	} {
		r := LapTime(ts, 317.25)
		assert.GreaterOrEqual(t, r, 0.0)
		assert.Less(t, r, 317.25)
	}
}
