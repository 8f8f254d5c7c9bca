package model

// Waypoint is an ordered node of an obstacle circuit. Order defines the
// position in the circuit.
type Waypoint struct {
	Order int `json:"order"`
	Position
}

// ObstacleView is the flat reporting form of an obstacle at one instant.
type ObstacleView struct {
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	AltitudeMSL  float64 `json:"altitude_msl"`
	SphereRadius float64 `json:"sphere_radius"`
}

// ObstacleConfig is the persisted/imported description of a moving obstacle.
type ObstacleConfig struct {
	ID           uint       `json:"id,omitempty"`
	Name         string     `json:"name"`
	SpeedAvg     float64    `json:"speed_avg"`
	SphereRadius float64    `json:"sphere_radius"`
	Waypoints    []Waypoint `json:"waypoints"`
}
