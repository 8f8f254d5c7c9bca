package obstacle

import (
	"sort"

	"github.com/yeonjoon13/moving-obstacle-tracker/internal/geo"
	"github.com/yeonjoon13/moving-obstacle-tracker/internal/model"
)

// Dedupe collapses consecutive coincident waypoints. The first waypoint is
// always kept. Trailing waypoints that coincide with the first are dropped
// too, so the closing segment of the circuit is never zero length.
func Dedupe(waypoints []model.Waypoint) []model.Waypoint {
	out := make([]model.Waypoint, 0, len(waypoints))
	for i, w := range waypoints {
		if i == 0 || waypointDistance(w, waypoints[i-1]) != 0 {
			out = append(out, w)
		}
	}
	for len(out) > 1 && waypointDistance(out[len(out)-1], out[0]) == 0 {
		out = out[:len(out)-1]
	}
	return out
}

// sortByOrder returns a copy of waypoints ordered by their ordinal.
func sortByOrder(waypoints []model.Waypoint) []model.Waypoint {
	out := append([]model.Waypoint(nil), waypoints...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

func waypointDistance(a, b model.Waypoint) float64 {
	return geo.Distance(
		a.Latitude, a.Longitude, a.AltitudeMSL,
		b.Latitude, b.Longitude, b.AltitudeMSL,
	)
}
