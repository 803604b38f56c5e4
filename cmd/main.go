package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/egtaonline/market-sim/internal/config"
	"github.com/egtaonline/market-sim/internal/obs"
	"github.com/egtaonline/market-sim/internal/sim"
)

func main() {
	configFile := flag.String("config", "", "Path to YAML config file")
	seed := flag.Int64("seed", 0, "Override the config seed (0 keeps the config value)")
	horizon := flag.Int64("horizon", 0, "Override the simulation horizon (0 keeps the config value)")
	verbose := flag.Bool("verbose", false, "Enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cfg := config.Default()
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			log.Error("failed to load config", "err", err)
			os.Exit(1)
		}
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}
	if *horizon != 0 {
		cfg.Horizon = *horizon
	}

	if err := run(cfg, log); err != nil {
		log.Error("simulation failed", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	s, err := sim.New(cfg, log)
	if err != nil {
		return err
	}

	start := time.Now()
	s.Run()
	log.Info("run complete", "elapsed", time.Since(start))

	printSummary(s)

	var rec obs.Recorder = obs.NewMemory()
	if cfg.DBConnStr != "" {
		pg, err := obs.NewPostgres(cfg.DBConnStr)
		if err != nil {
			return fmt.Errorf("failed to connect recorder: %w", err)
		}
		defer pg.Close()
		rec = pg
	}

	run := obs.NewRun(cfg.Seed, cfg.Horizon)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.Record(ctx, rec, run); err != nil {
		return err
	}
	log.Info("observations recorded", "run", run.ID)
	return nil
}

func printSummary(s *sim.Simulation) {
	stats := s.Collector().Stats()
	names := make([]string, 0, len(stats))
	for name := range stats {
		names = append(names, name)
	}
	sort.Strings(names)

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Statistic", "Value"})
	for _, name := range names {
		table.Append([]string{name, fmt.Sprintf("%.2f", stats[name])})
	}
	table.Render()

	fmt.Printf("Final NBBO: %s\n", s.SIP().NBBO())
}
