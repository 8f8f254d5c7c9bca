package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/yeonjoon13/moving-obstacle-tracker/internal/collision"
	"github.com/yeonjoon13/moving-obstacle-tracker/internal/config"
	"github.com/yeonjoon13/moving-obstacle-tracker/internal/kafka"
	"github.com/yeonjoon13/moving-obstacle-tracker/internal/logging"
	"github.com/yeonjoon13/moving-obstacle-tracker/internal/metrics"
	"github.com/yeonjoon13/moving-obstacle-tracker/internal/store"
	"github.com/yeonjoon13/moving-obstacle-tracker/internal/telemetry"
)

func main() {
	configDir := flag.String("config", ".", "Directory containing tracker.cfg.json")
	metricsAddr := flag.String("metrics", ":9102", "Address to serve /metrics on, empty to disable")
	flag.Parse()

	if err := config.Load(*configDir); err != nil {
		boot := logging.New("info", "console", os.Stderr)
		boot.Fatal().Err(err).Msg("load config")
	}
	cfg := config.Get()
	log := logging.Component(logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr), "detector")

	// ensure alert topic exists
	if err := kafka.CreateTopics(cfg.Kafka.Broker, []kafka.TopicConfig{
		{Topic: cfg.Kafka.AlertTopic, NumPartitions: 1, ReplicationFactor: 1},
	}); err != nil {
		log.Warn().Err(err).Str("topic", cfg.Kafka.AlertTopic).Msg("could not create alert topic")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	db, err := store.Open(cfg.DBPath, logging.Component(log, "store"))
	if err != nil {
		log.Fatal().Err(err).Msg("open obstacle store")
	}
	defer db.Close()

	obstacles, err := db.LoadObstacles(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("load obstacles")
	}
	for _, o := range obstacles {
		if err := o.TrajectoryErr(); err != nil {
			log.Warn().Err(err).Stringer("obstacle", o).Msg("trajectory unavailable, holding at first waypoint")
		}
	}

	m, err := metrics.NewCollector(nil)
	if err != nil {
		log.Fatal().Err(err).Msg("register metrics")
	}
	if *metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", m.Handler())
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil {
				log.Error().Err(err).Msg("metrics server stopped")
			}
		}()
	}

	detector := collision.NewDetector(obstacles, collision.Config{
		Window: cfg.Telemetry.Window,
		Telemetry: telemetry.Config{
			Step:   cfg.Telemetry.Step,
			MaxGap: cfg.Telemetry.MaxGap,
		},
	}, m, log)

	reader := kafka.NewReader(cfg.Kafka.Broker, cfg.Kafka.TelemetryTopic, cfg.Kafka.GroupID)
	defer reader.Close()
	writer := kafka.NewWriter(cfg.Kafka.Broker, cfg.Kafka.AlertTopic)
	defer writer.Close()

	log.Info().
		Int("obstacles", len(obstacles)).
		Str("topic", cfg.Kafka.TelemetryTopic).
		Str("group", cfg.Kafka.GroupID).
		Msg("starting collision detector")

	if err := collision.RunDetector(ctx, reader, writer, detector, log); err != nil {
		log.Error().Err(err).Msg("detector stopped")
	}
	log.Info().Msg("shutting down")
}
