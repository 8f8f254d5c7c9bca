package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/yeonjoon13/moving-obstacle-tracker/internal/config"
	"github.com/yeonjoon13/moving-obstacle-tracker/internal/logging"
	"github.com/yeonjoon13/moving-obstacle-tracker/internal/model"
	"github.com/yeonjoon13/moving-obstacle-tracker/internal/obstacle"
	"github.com/yeonjoon13/moving-obstacle-tracker/internal/store"
)

const usage = `usage: obstacles [-config dir] <command>

commands:
  import <file.json>   store the obstacles described in file.json
  list                 print stored obstacles
  delete <id>          remove an obstacle
`

func main() {
	configDir := flag.String("config", ".", "Directory containing tracker.cfg.json")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if err := config.Load(*configDir); err != nil {
		boot := logging.New("info", "console", os.Stderr)
		boot.Fatal().Err(err).Msg("load config")
	}
	cfg := config.Get()
	log := logging.Component(logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr), "obstacles")

	db, err := store.Open(cfg.DBPath, logging.Component(log, "store"))
	if err != nil {
		log.Fatal().Err(err).Msg("open obstacle store")
	}
	defer db.Close()

	if err := run(context.Background(), db, flag.Args(), os.Stdout); err != nil {
		log.Error().Err(err).Msg("command failed")
		db.Close()
		os.Exit(1)
	}
}

func run(ctx context.Context, db *store.Store, args []string, out io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("missing command\n%s", usage)
	}

	switch args[0] {
	case "import":
		if len(args) != 2 {
			return fmt.Errorf("import takes one file")
		}
		f, err := os.Open(args[1])
		if err != nil {
			return err
		}
		defer f.Close()
		return importObstacles(ctx, db, f, out)
	case "list":
		return listObstacles(ctx, db, out)
	case "delete":
		if len(args) != 2 {
			return fmt.Errorf("delete takes one id")
		}
		id, err := strconv.ParseUint(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid id %q: %w", args[1], err)
		}
		return db.DeleteObstacle(ctx, uint(id))
	default:
		return fmt.Errorf("unknown command %q\n%s", args[0], usage)
	}
}

// importObstacles accepts either a single obstacle object or an array.
func importObstacles(ctx context.Context, db *store.Store, r io.Reader, out io.Writer) error {
	raw, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	var cfgs []model.ObstacleConfig
	if err := json.Unmarshal(raw, &cfgs); err != nil {
		var single model.ObstacleConfig
		if err2 := json.Unmarshal(raw, &single); err2 != nil {
			return fmt.Errorf("decode obstacles: %w", err)
		}
		cfgs = []model.ObstacleConfig{single}
	}

	for _, c := range cfgs {
		id, err := db.SaveObstacle(ctx, c)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "stored %q as %d (%d waypoints)\n", c.Name, id, len(c.Waypoints))
	}
	return nil
}

func listObstacles(ctx context.Context, db *store.Store, out io.Writer) error {
	cfgs, err := db.ListConfigs(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSPEED (kt)\tRADIUS (ft)\tWAYPOINTS\tCIRCUIT\tPERIOD (s)")
	for _, c := range cfgs {
		o := obstacle.FromConfig(c)
		period := "-"
		if traj, ok := o.Trajectory(); ok {
			period = strconv.FormatFloat(traj.Period, 'f', 1, 64)
		}
		fmt.Fprintf(tw, "%d\t%s\t%g\t%g\t%d\t%d\t%s\n",
			c.ID, c.Name, c.SpeedAvg, c.SphereRadius, len(c.Waypoints), len(o.Circuit()), period)
	}
	return tw.Flush()
}
