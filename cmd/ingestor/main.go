package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/yeonjoon13/moving-obstacle-tracker/internal/config"
	"github.com/yeonjoon13/moving-obstacle-tracker/internal/kafka"
	"github.com/yeonjoon13/moving-obstacle-tracker/internal/logging"
	"github.com/yeonjoon13/moving-obstacle-tracker/internal/opensky"
)

func main() {
	configDir := flag.String("config", ".", "Directory containing tracker.cfg.json")
	flag.Parse()

	if err := config.Load(*configDir); err != nil {
		boot := logging.New("info", "console", os.Stderr)
		boot.Fatal().Err(err).Msg("load config")
	}
	cfg := config.Get()
	log := logging.Component(logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr), "ingestor")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	client := opensky.NewClient(cfg.OpenSky.URL)
	writer := kafka.NewWriter(cfg.Kafka.Broker, cfg.Kafka.TelemetryTopic)
	defer writer.Close()

	ticker := time.NewTicker(cfg.OpenSky.Interval)
	defer ticker.Stop()

	log.Info().
		Str("broker", cfg.Kafka.Broker).
		Str("topic", cfg.Kafka.TelemetryTopic).
		Dur("interval", cfg.OpenSky.Interval).
		Msg("starting ingestor")

	poll(ctx, client, writer, log)
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("shutting down ingestor")
			return
		case <-ticker.C:
			poll(ctx, client, writer, log)
		}
	}
}

func poll(ctx context.Context, client *opensky.Client, w kafka.MessageWriter, log zerolog.Logger) {
	samples, err := client.FetchStates(ctx)
	if err != nil {
		log.Error().Err(err).Msg("fetch error")
		return
	}
	log.Info().Int("aircraft", len(samples)).Msg("fetched states from OpenSky")

	if err := kafka.PublishTelemetry(ctx, w, samples); err != nil {
		log.Error().Err(err).Msg("publish error")
		return
	}
	log.Debug().Int("samples", len(samples)).Msg("published telemetry")
}
