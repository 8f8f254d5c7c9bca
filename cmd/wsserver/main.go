package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/yeonjoon13/moving-obstacle-tracker/internal/config"
	"github.com/yeonjoon13/moving-obstacle-tracker/internal/kafka"
	"github.com/yeonjoon13/moving-obstacle-tracker/internal/logging"
	"github.com/yeonjoon13/moving-obstacle-tracker/internal/metrics"
	"github.com/yeonjoon13/moving-obstacle-tracker/internal/model"
	"github.com/yeonjoon13/moving-obstacle-tracker/internal/store"
	"github.com/yeonjoon13/moving-obstacle-tracker/internal/tracks"
)

const vehicleMaxAge = 15 * time.Minute

func main() {
	configDir := flag.String("config", ".", "Directory containing tracker.cfg.json")
	flag.Parse()

	if err := config.Load(*configDir); err != nil {
		boot := logging.New("info", "console", os.Stderr)
		boot.Fatal().Err(err).Msg("load config")
	}
	cfg := config.Get()
	log := logging.Component(logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr), "wsserver")

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

	m, err := metrics.NewCollector(nil)
	if err != nil {
		log.Fatal().Err(err).Msg("register metrics")
	}

	vehicles := tracks.NewBuffer()
	srv := newServer(obstacles, vehicles, m, log)
	srv.exportStep = cfg.Export.Step
	srv.lookback = cfg.Export.Lookback

	reader := kafka.NewReader(cfg.Kafka.Broker, cfg.Kafka.TelemetryTopic, cfg.Kafka.GroupID+"-ws")
	defer reader.Close()
	go func() {
		err := kafka.ConsumeTelemetry(ctx, reader, log, func(s model.TelemetrySample) {
			vehicles.Add(s)
			m.ObserveSamples(1)
		})
		if err != nil {
			log.Error().Err(err).Msg("telemetry consumer stopped")
		}
	}()

	go func() {
		ticker := time.NewTicker(cfg.WS.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				srv.broadcast()
			}
		}
	}()

	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := vehicles.Prune(time.Now().Add(-vehicleMaxAge)); n > 0 {
					log.Debug().Int("samples", n).Int("vehicles", len(vehicles.Vehicles())).Msg("cleaned up stale telemetry")
				}
			}
		}
	}()

	httpSrv := &http.Server{Addr: cfg.WS.Addr, Handler: srv.routes()}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}()

	log.Info().Str("addr", cfg.WS.Addr).Int("obstacles", len(obstacles)).Msg("websocket server starting")
	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server")
	}
	log.Info().Msg("shutting down")
}
