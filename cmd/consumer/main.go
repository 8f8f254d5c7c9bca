package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/yeonjoon13/moving-obstacle-tracker/internal/config"
	"github.com/yeonjoon13/moving-obstacle-tracker/internal/export"
	"github.com/yeonjoon13/moving-obstacle-tracker/internal/kafka"
	"github.com/yeonjoon13/moving-obstacle-tracker/internal/logging"
	"github.com/yeonjoon13/moving-obstacle-tracker/internal/obstacle"
	"github.com/yeonjoon13/moving-obstacle-tracker/internal/store"
	"github.com/yeonjoon13/moving-obstacle-tracker/internal/telemetry"
	"github.com/yeonjoon13/moving-obstacle-tracker/internal/tracks"
)

func main() {
	configDir := flag.String("config", ".", "Directory containing tracker.cfg.json")
	kmlPath := flag.String("kml", "", "Write obstacle paths over each flight window to this KML file")
	flag.Parse()

	if err := config.Load(*configDir); err != nil {
		boot := logging.New("info", "console", os.Stderr)
		boot.Fatal().Err(err).Msg("load config")
	}
	cfg := config.Get()
	log := logging.Component(logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr), "consumer")

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

	buffer, err := replay(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("replay telemetry")
	}

	interp := telemetry.Config{Step: cfg.Telemetry.Step, MaxGap: cfg.Telemetry.MaxGap}
	periods := report(os.Stdout, buffer, obstacles, interp)

	if *kmlPath != "" {
		if err := writeKML(*kmlPath, obstacles, periods, cfg.Export.Step); err != nil {
			log.Fatal().Err(err).Str("path", *kmlPath).Msg("write KML")
		}
		log.Info().Str("path", *kmlPath).Int("periods", len(periods)).Msg("wrote obstacle paths")
	}
}

// replay reads every partition of the telemetry topic from the first offset.
func replay(ctx context.Context, cfg config.Config, log zerolog.Logger) (*tracks.Buffer, error) {
	partitions, err := kafka.Partitions(ctx, cfg.Kafka.Broker, cfg.Kafka.TelemetryTopic)
	if err != nil {
		return nil, err
	}
	log.Info().Int("partitions", len(partitions)).Str("topic", cfg.Kafka.TelemetryTopic).Msg("replaying topic")

	buffer := tracks.NewBuffer()
	g, ctx := errgroup.WithContext(ctx)
	for _, p := range partitions {
		p := p // per-iteration copy (go 1.21 loop semantics)
		g.Go(func() error {
			n, err := kafka.ReplayPartition(ctx, cfg.Kafka.Broker, cfg.Kafka.TelemetryTopic, p, log, buffer.Add)
			if err != nil {
				return fmt.Errorf("partition %d: %w", p, err)
			}
			log.Debug().Int("partition", p).Int("samples", n).Msg("partition replayed")
			return nil
		})
	}
	return buffer, g.Wait()
}

// report prints, per vehicle, which obstacles its densified track entered
// and returns the vehicles' flight windows.
func report(w io.Writer, buffer *tracks.Buffer, obstacles []*obstacle.MovingObstacle, interp telemetry.Config) []export.TimePeriod {
	var periods []export.TimePeriod
	for _, vehicle := range buffer.Vehicles() {
		samples := buffer.Window(vehicle, time.Time{})
		dense := telemetry.Interpolate(samples, interp)

		hits := obstacle.EvaluateCollisions(obstacles, dense)
		fmt.Fprintf(w, "%s: %d samples (%d densified)\n", vehicle, len(samples), len(dense))
		for i, o := range obstacles {
			if !hits[i] {
				fmt.Fprintf(w, "  %s: clear\n", o)
				continue
			}
			hit, _ := o.FirstCollision(dense)
			fmt.Fprintf(w, "  %s: COLLISION at %s, %.1f ft from centre\n",
				o, hit.Sample.Timestamp.UTC().Format("2006-01-02T15:04:05.000Z"), hit.Distance)
		}

		for _, win := range telemetry.Windows(samples, interp.MaxGap) {
			periods = append(periods, export.TimePeriod{Start: win[0], End: win[1]})
		}
	}
	return periods
}

func writeKML(path string, obstacles []*obstacle.MovingObstacle, periods []export.TimePeriod, step time.Duration) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	tracksOut := make([]export.ObstacleTrack, 0, len(obstacles))
	for _, o := range obstacles {
		tracksOut = append(tracksOut, export.ObstacleTrack{
			ID:     o.ID,
			Name:   o.Name,
			Points: export.Track(o, periods, step),
		})
	}
	if err := export.WriteKML(f, tracksOut); err != nil {
		return err
	}
	return f.Close()
}
