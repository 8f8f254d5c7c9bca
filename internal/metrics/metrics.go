// Package metrics exposes Prometheus counters for collision checks and
// telemetry flow.
package metrics

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector bundles the tracker's Prometheus metrics.
type Collector struct {
	gatherer prometheus.Gatherer

	CollisionChecks  prometheus.Counter
	Collisions       *prometheus.CounterVec
	TelemetrySamples prometheus.Counter
	PositionQueries  prometheus.Counter
}

// NewCollector registers the tracker metrics against reg, defaulting to the
// global Prometheus registry when nil.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	checks, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "obstacle_collision_checks_total",
		Help: "Total number of obstacle versus telemetry window evaluations.",
	}), "obstacle_collision_checks_total")
	if err != nil {
		return nil, err
	}

	collisions, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "obstacle_collisions_total",
		Help: "Total number of detected collisions, labeled by obstacle.",
	}, []string{"obstacle"}), "obstacle_collisions_total")
	if err != nil {
		return nil, err
	}

	samples, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "telemetry_samples_total",
		Help: "Total number of telemetry samples received.",
	}), "telemetry_samples_total")
	if err != nil {
		return nil, err
	}

	queries, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "obstacle_position_queries_total",
		Help: "Total number of obstacle position lookups served.",
	}), "obstacle_position_queries_total")
	if err != nil {
		return nil, err
	}

	return &Collector{
		gatherer:         gatherer,
		CollisionChecks:  checks,
		Collisions:       collisions,
		TelemetrySamples: samples,
		PositionQueries:  queries,
	}, nil
}

// Handler exposes a ready-to-use /metrics handler.
func (c *Collector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// ObserveCheck records one evaluation and, if it hit, a collision for the
// obstacle.
func (c *Collector) ObserveCheck(obstacleID uint, hit bool) {
	if c == nil {
		return
	}
	c.CollisionChecks.Inc()
	if hit {
		c.Collisions.WithLabelValues(fmt.Sprint(obstacleID)).Inc()
	}
}

// ObserveSamples adds n received telemetry samples.
func (c *Collector) ObserveSamples(n int) {
	if c == nil {
		return
	}
	c.TelemetrySamples.Add(float64(n))
}

// ObservePositionQueries adds n served position lookups.
func (c *Collector) ObservePositionQueries(n int) {
	if c == nil {
		return
	}
	c.PositionQueries.Add(float64(n))
}

func registerCounter(reg prometheus.Registerer, c prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return c, nil
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}
