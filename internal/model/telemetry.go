package model

import (
	"encoding/json"
	"strings"
	"time"
	"unicode"
)

// Position is a point in the tracker's native units: decimal degrees and feet MSL.
type Position struct {
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	AltitudeMSL float64 `json:"altitude_msl"`
}

// TelemetrySample is a single timestamped vehicle position report
type TelemetrySample struct {
	Vehicle   string    `json:"vehicle"`
	Timestamp time.Time `json:"timestamp"`
	Position
	Heading float64 `json:"heading,omitempty"`
}

// CollisionAlert is published when a vehicle's telemetry enters an obstacle's sphere
type CollisionAlert struct {
	ObstacleID   uint            `json:"obstacle_id"`
	Vehicle      string          `json:"vehicle"`
	Sample       TelemetrySample `json:"sample"`
	Obstacle     Position        `json:"obstacle"`
	Distance     float64         `json:"distance_ft"`
	SphereRadius float64         `json:"sphere_radius_ft"`
	DetectedAt   time.Time       `json:"detected_at"`
}

// UnmarshalTelemetry parses a JSON telemetry sample. A missing timestamp is
// replaced with received.
func UnmarshalTelemetry(data []byte, s *TelemetrySample, received time.Time) error {
	if err := json.Unmarshal(cleanJSON(data), s); err != nil {
		return err
	}

	if s.Timestamp.IsZero() {
		s.Timestamp = received
	}

	if s.Vehicle != "" {
		s.Vehicle = trimVehicle(s.Vehicle)
	}

	return nil
}

// cleanJSON drops a leading BOM or unicode space some producers prepend.
func cleanJSON(raw []byte) []byte {
	s := strings.TrimLeftFunc(string(raw), func(r rune) bool {
		return unicode.IsSpace(r) || r == '\ufeff' || r == '\u00a0'
	})
	return []byte(s)
}

// trimVehicle strips null bytes and surrounding whitespace from a vehicle id.
func trimVehicle(s string) string {
	s = strings.Map(func(r rune) rune {
		if r == 0 {
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}
