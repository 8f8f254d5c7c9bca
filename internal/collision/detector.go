// Package collision watches live telemetry against the stored moving
// obstacles and raises alerts on sphere intrusions.
package collision

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/yeonjoon13/moving-obstacle-tracker/internal/kafka"
	"github.com/yeonjoon13/moving-obstacle-tracker/internal/metrics"
	"github.com/yeonjoon13/moving-obstacle-tracker/internal/model"
	"github.com/yeonjoon13/moving-obstacle-tracker/internal/obstacle"
	"github.com/yeonjoon13/moving-obstacle-tracker/internal/telemetry"
	"github.com/yeonjoon13/moving-obstacle-tracker/internal/tracks"
)

// DefaultWindow is how much recent telemetry per vehicle is evaluated.
const DefaultWindow = 2 * time.Minute

type Config struct {
	Window    time.Duration
	Telemetry telemetry.Config
}

type pair struct {
	obstacle uint
	vehicle  string
}

// Detector evaluates each vehicle's recent track against every obstacle.
// After an alert, further intrusions by the same vehicle into the same
// obstacle are suppressed for one window.
type Detector struct {
	obstacles []*obstacle.MovingObstacle
	buffer    *tracks.Buffer
	cfg       Config
	metrics   *metrics.Collector
	log       zerolog.Logger

	mu      sync.Mutex
	alerted map[pair]time.Time
	latest  time.Time
}

func NewDetector(obstacles []*obstacle.MovingObstacle, cfg Config, m *metrics.Collector, log zerolog.Logger) *Detector {
	if cfg.Window <= 0 {
		cfg.Window = DefaultWindow
	}
	return &Detector{
		obstacles: obstacles,
		buffer:    tracks.NewBuffer(),
		cfg:       cfg,
		metrics:   m,
		log:       log,
		alerted:   make(map[pair]time.Time),
	}
}

// Buffer exposes the per-vehicle telemetry buffer.
func (d *Detector) Buffer() *tracks.Buffer { return d.buffer }

// Observe buffers s and returns alerts for obstacles the vehicle's densified
// recent track has entered.
func (d *Detector) Observe(s model.TelemetrySample) []model.CollisionAlert {
	d.buffer.Add(s)
	d.metrics.ObserveSamples(1)

	window := d.buffer.Window(s.Vehicle, s.Timestamp.Add(-d.cfg.Window))
	dense := telemetry.Interpolate(window, d.cfg.Telemetry)

	hits := obstacle.EvaluateCollisions(d.obstacles, dense)

	d.mu.Lock()
	defer d.mu.Unlock()
	if s.Timestamp.After(d.latest) {
		d.latest = s.Timestamp
	}

	var alerts []model.CollisionAlert
	for i, o := range d.obstacles {
		d.metrics.ObserveCheck(o.ID, hits[i])
		if !hits[i] {
			continue
		}

		key := pair{obstacle: o.ID, vehicle: s.Vehicle}
		fresh := dense
		if last, ok := d.alerted[key]; ok {
			fresh = after(dense, last.Add(d.cfg.Window))
		}
		hit, ok := o.FirstCollision(fresh)
		if !ok {
			continue
		}
		d.alerted[key] = hit.Sample.Timestamp

		alerts = append(alerts, model.CollisionAlert{
			ObstacleID:   o.ID,
			Vehicle:      s.Vehicle,
			Sample:       hit.Sample,
			Obstacle:     hit.Obstacle,
			Distance:     hit.Distance,
			SphereRadius: o.SphereRadius(),
			DetectedAt:   time.Now().UTC(),
		})
	}
	return alerts
}

// Prune forgets telemetry and alert state older than the window, measured
// from the newest sample seen.
func (d *Detector) Prune() int {
	d.mu.Lock()
	cutoff := d.latest.Add(-d.cfg.Window)
	for k, ts := range d.alerted {
		if ts.Before(cutoff) {
			delete(d.alerted, k)
		}
	}
	d.mu.Unlock()

	return d.buffer.Prune(cutoff)
}

func after(samples []model.TelemetrySample, ts time.Time) []model.TelemetrySample {
	for i, s := range samples {
		if s.Timestamp.After(ts) {
			return samples[i:]
		}
	}
	return nil
}

// RunDetector consumes telemetry from r and publishes alerts to w until ctx
// is done or the reader is closed.
func RunDetector(ctx context.Context, r kafka.MessageReader, w kafka.MessageWriter, d *Detector, log zerolog.Logger) error {
	g, ctx := errgroup.WithContext(ctx)
	done := make(chan struct{})

	g.Go(func() error {
		defer close(done)
		return kafka.ConsumeTelemetry(ctx, r, log, func(s model.TelemetrySample) {
			alerts := d.Observe(s)
			for _, a := range alerts {
				log.Warn().
					Uint("obstacle", a.ObstacleID).
					Str("vehicle", a.Vehicle).
					Time("at", a.Sample.Timestamp).
					Float64("distance_ft", a.Distance).
					Msg("collision detected")
			}
			if err := kafka.PublishAlerts(ctx, w, alerts); err != nil {
				log.Error().Err(err).Int("alerts", len(alerts)).Msg("publish alerts")
			}
		})
	})

	g.Go(func() error {
		ticker := time.NewTicker(d.cfg.Window / 2)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-done:
				return nil
			case <-ticker.C:
				if n := d.Prune(); n > 0 {
					log.Debug().Int("samples", n).Msg("pruned stale telemetry")
				}
			}
		}
	})

	return g.Wait()
}
