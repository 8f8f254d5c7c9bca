package store

import (
	"time"

	"github.com/yeonjoon13/moving-obstacle-tracker/internal/model"
)

// ObstacleRecord is the persisted obstacle row.
type ObstacleRecord struct {
	ID           uint `gorm:"primaryKey"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Name         string
	SpeedAvg     float64
	SphereRadius float64
	Waypoints    []WaypointRecord `gorm:"foreignKey:ObstacleID;constraint:OnDelete:CASCADE"`
}

func (ObstacleRecord) TableName() string { return "moving_obstacles" }

// WaypointRecord is one circuit node. Order is its ordinal in the circuit.
type WaypointRecord struct {
	ID          uint `gorm:"primaryKey"`
	ObstacleID  uint `gorm:"index;not null"`
	Order       int  `gorm:"column:order;not null"`
	Latitude    float64
	Longitude   float64
	AltitudeMSL float64 `gorm:"column:altitude_msl"`
}

func (WaypointRecord) TableName() string { return "obstacle_waypoints" }

func recordFromConfig(cfg model.ObstacleConfig) ObstacleRecord {
	rec := ObstacleRecord{
		ID:           cfg.ID,
		Name:         cfg.Name,
		SpeedAvg:     cfg.SpeedAvg,
		SphereRadius: cfg.SphereRadius,
		Waypoints:    make([]WaypointRecord, 0, len(cfg.Waypoints)),
	}
	for _, w := range cfg.Waypoints {
		rec.Waypoints = append(rec.Waypoints, WaypointRecord{
			Order:       w.Order,
			Latitude:    w.Latitude,
			Longitude:   w.Longitude,
			AltitudeMSL: w.AltitudeMSL,
		})
	}
	return rec
}

func (r ObstacleRecord) config() model.ObstacleConfig {
	cfg := model.ObstacleConfig{
		ID:           r.ID,
		Name:         r.Name,
		SpeedAvg:     r.SpeedAvg,
		SphereRadius: r.SphereRadius,
		Waypoints:    make([]model.Waypoint, 0, len(r.Waypoints)),
	}
	for _, w := range r.Waypoints {
		cfg.Waypoints = append(cfg.Waypoints, model.Waypoint{
			Order: w.Order,
			Position: model.Position{
				Latitude:    w.Latitude,
				Longitude:   w.Longitude,
				AltitudeMSL: w.AltitudeMSL,
			},
		})
	}
	return cfg
}
