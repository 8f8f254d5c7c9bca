// Package store persists moving obstacles and their waypoint circuits in
// SQLite through gorm.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/yeonjoon13/moving-obstacle-tracker/internal/model"
	"github.com/yeonjoon13/moving-obstacle-tracker/internal/obstacle"
)

// ErrNotFound is returned when no obstacle has the requested id.
var ErrNotFound = errors.New("store: obstacle not found")

// Store reads and writes obstacle definitions.
type Store struct {
	db  *gorm.DB
	log zerolog.Logger
}

// Open connects to the SQLite database at path and migrates the schema.
// An empty path opens a private in-memory database.
func Open(path string, log zerolog.Logger) (*Store, error) {
	dsn := path
	if dsn == "" {
		dsn = ":memory:"
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", dsn, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access sql interface: %w", err)
	}
	// every in-memory connection is its own database
	if path == "" {
		sqlDB.SetMaxOpenConns(1)
	}

	if err := db.Exec("PRAGMA foreign_keys = ON;").Error; err != nil {
		return nil, fmt.Errorf("error setting PRAGMA: %w", err)
	}
	if err := db.AutoMigrate(&ObstacleRecord{}, &WaypointRecord{}); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	log.Info().Str("path", dsn).Msg("obstacle store ready")
	return &Store{db: db, log: log}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SaveObstacle stores cfg and returns its id. A non-zero cfg.ID replaces
// the existing obstacle and its waypoints.
func (s *Store) SaveObstacle(ctx context.Context, cfg model.ObstacleConfig) (uint, error) {
	rec := recordFromConfig(cfg)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if rec.ID != 0 {
			if err := tx.Where("obstacle_id = ?", rec.ID).Delete(&WaypointRecord{}).Error; err != nil {
				return err
			}
			if err := tx.Delete(&ObstacleRecord{}, rec.ID).Error; err != nil {
				return err
			}
		}
		return tx.Create(&rec).Error
	})
	if err != nil {
		return 0, fmt.Errorf("save obstacle %q: %w", cfg.Name, err)
	}

	s.log.Debug().
		Uint("id", rec.ID).
		Int("waypoints", len(rec.Waypoints)).
		Msg("obstacle saved")
	return rec.ID, nil
}

// DeleteObstacle removes an obstacle and its waypoints.
func (s *Store) DeleteObstacle(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("obstacle_id = ?", id).Delete(&WaypointRecord{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&ObstacleRecord{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (s *Store) preloaded(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Preload("Waypoints", func(db *gorm.DB) *gorm.DB {
			return db.Order(clause.OrderByColumn{Column: clause.Column{Name: "order"}})
		}).
		Order("id")
}

// ListConfigs returns every stored obstacle with waypoints in ordinal order.
func (s *Store) ListConfigs(ctx context.Context) ([]model.ObstacleConfig, error) {
	var recs []ObstacleRecord
	if err := s.preloaded(ctx).Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("list obstacles: %w", err)
	}

	out := make([]model.ObstacleConfig, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.config())
	}
	return out, nil
}

// GetConfig returns one stored obstacle.
func (s *Store) GetConfig(ctx context.Context, id uint) (model.ObstacleConfig, error) {
	var rec ObstacleRecord
	err := s.preloaded(ctx).First(&rec, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.ObstacleConfig{}, ErrNotFound
	}
	if err != nil {
		return model.ObstacleConfig{}, fmt.Errorf("get obstacle %d: %w", id, err)
	}
	return rec.config(), nil
}

// LoadObstacles builds a MovingObstacle for every stored definition.
func (s *Store) LoadObstacles(ctx context.Context) ([]*obstacle.MovingObstacle, error) {
	cfgs, err := s.ListConfigs(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]*obstacle.MovingObstacle, 0, len(cfgs))
	for _, cfg := range cfgs {
		out = append(out, obstacle.FromConfig(cfg))
	}
	s.log.Debug().Int("count", len(out)).Msg("obstacles loaded")
	return out, nil
}
