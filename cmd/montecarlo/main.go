// Package main runs Monte Carlo dice simulations: it plays a dice set, prints
// the recorded table with its analyses, and optionally saves the play.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/montecarlo/internal/config"
	"github.com/cory-johannsen/montecarlo/internal/game/dice"
	"github.com/cory-johannsen/montecarlo/internal/game/play"
	"github.com/cory-johannsen/montecarlo/internal/observability"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	diceFile := flag.String("dice", "", "dice-set YAML file (overrides simulation.dice_file)")
	rolls := flag.Int("rolls", 0, "number of rolls (overrides simulation.rolls)")
	seed := flag.Uint64("seed", 0, "random seed, 0 for a fresh one (overrides simulation.seed)")
	shape := flag.String("shape", "", "table shape to print: wide or narrow (overrides simulation.shape)")
	predicate := flag.String("predicate", "", "predicate name in scripting.predicate_dir, or a .lua file")
	limit := flag.Int("limit", 20, "maximum rows printed per section, 0 for all")
	load := flag.String("load", "", "analyze a saved play by ID instead of playing")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "dice":
			cfg.Simulation.DiceFile = *diceFile
		case "rolls":
			cfg.Simulation.Rolls = *rolls
		case "seed":
			cfg.Simulation.Seed = *seed
		case "shape":
			cfg.Simulation.Shape = *shape
		}
	})
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid flags: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	app, cleanup, err := initializeApp(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("initializing", zap.Error(err))
	}
	defer cleanup()

	if err := execute(ctx, app, *predicate, *load, *limit); err != nil {
		logger.Error("simulation failed", zap.Error(err))
		cleanup()
		logger.Sync()
		os.Exit(1)
	}
	logger.Info("done", zap.Duration("elapsed", time.Since(start)))
}

func execute(ctx context.Context, app *App, predicateRef, loadID string, limit int) error {
	sim := app.Config.Simulation
	shape, err := play.ParseShape(sim.Shape)
	if err != nil {
		return err
	}
	pred, release, err := resolvePredicate(app, predicateRef)
	if err != nil {
		return err
	}
	defer release()

	r := run{
		rolls:     sim.Rolls,
		seed:      sim.Seed,
		shape:     shape,
		predicate: pred,
		report:    newReport(os.Stdout, limit),
	}

	if loadID != "" {
		id, err := uuid.Parse(loadID)
		if err != nil {
			return fmt.Errorf("parsing play ID %q: %w", loadID, err)
		}
		return replayStored(ctx, app.Store, id, r)
	}

	set, err := dice.LoadSetFromFile(sim.DiceFile)
	if err != nil {
		return err
	}
	if r.seed == 0 {
		if r.seed, err = dice.NewSeed(); err != nil {
			return err
		}
	}
	app.Logger.Info("simulating",
		zap.String("dice_set", set.Name),
		zap.Int("dice", set.Size()),
		zap.Int("rolls", r.rolls),
		zap.Uint64("seed", r.seed),
	)
	fmt.Fprintf(os.Stdout, "dice set %q: %d dice, %d rolls, seed %d\n", set.Name, set.Size(), r.rolls, r.seed)
	return simulate(ctx, app, set, r)
}
