package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/montecarlo/internal/game/analysis"
	"github.com/cory-johannsen/montecarlo/internal/game/dice"
	"github.com/cory-johannsen/montecarlo/internal/game/play"
	"github.com/cory-johannsen/montecarlo/internal/observability"
	"github.com/cory-johannsen/montecarlo/internal/scripting"
	"github.com/cory-johannsen/montecarlo/internal/storage"
)

// run describes one invocation after flags and config are merged.
type run struct {
	rolls     int
	seed      uint64
	shape     play.Shape
	predicate *scripting.Predicate
	report    report
}

// simulate plays the dice set and prints the table and every analysis. The
// play is saved when app has a store.
func simulate(ctx context.Context, app *App, set *dice.Set, r run) error {
	logger := observability.RunLogger(app.Logger, set.Name, r.seed)
	sources := dice.SeededSources(r.seed)
	switch set.Kind {
	case dice.KindNumeric:
		ds, err := set.BuildNumeric(sources)
		if err != nil {
			return err
		}
		return simulateDice(ctx, app.Store, logger, set, ds, r)
	case dice.KindText:
		ds, err := set.BuildText(sources)
		if err != nil {
			return err
		}
		return simulateDice(ctx, app.Store, logger, set, ds, r)
	}
	return fmt.Errorf("dice set %q has unknown kind %q", set.Name, set.Kind)
}

func simulateDice[F dice.Face](ctx context.Context, store storage.PlayStore, logger *zap.Logger, set *dice.Set, ds []*dice.Die[F], r run) error {
	start := time.Now()
	g, err := play.NewGame(ds, logger)
	if err != nil {
		return err
	}
	if err := g.Play(r.rolls); err != nil {
		return err
	}
	logger.Info("play complete",
		zap.Int("rolls", r.rolls),
		zap.Int("dice", len(ds)),
		zap.Duration("elapsed", time.Since(start)),
	)

	if err := analyze[F](r, g); err != nil {
		return err
	}

	a, err := analysis.New[F](g)
	if err != nil {
		return err
	}
	fits := make([]analysis.Fit, len(ds))
	for i, d := range ds {
		if fits[i], err = a.GoodnessOfFit(d, i+1); err != nil {
			return fmt.Errorf("fit die %d: %w", i+1, err)
		}
	}
	writeFits(r.report, fits)

	if store == nil {
		return nil
	}
	n, err := g.LastPlayNarrow()
	if err != nil {
		return err
	}
	id, err := store.Save(ctx, storage.NewRecord(set.Name, set.Kind, r.seed, n))
	if err != nil {
		return fmt.Errorf("saving play: %w", err)
	}
	logger.Info("play saved", zap.String("id", id.String()))
	fmt.Fprintf(r.report.out, "\nsaved play %s\n", id)
	return nil
}

// analyze prints the recorded table and every analysis of src.
func analyze[F dice.Face](r run, src play.Recorder[F]) error {
	t, err := src.LastPlay(r.shape)
	if err != nil {
		return err
	}
	writeTable(r.report, t)

	a, err := analysis.New[F](src)
	if err != nil {
		return err
	}
	rolls := t.Wide().NumRolls()

	jackpots, err := a.Jackpot()
	if err != nil {
		return err
	}
	writeJackpot(r.report, jackpots, rolls)

	ff, err := a.FaceCounts()
	if err != nil {
		return err
	}
	writeFaceCounts(r.report, ff)

	combos, err := a.ComboCount()
	if err != nil {
		return err
	}
	writeTally(r.report, "combinations", combos)

	perms, err := a.PermCount()
	if err != nil {
		return err
	}
	writeTally(r.report, "permutations", perms)

	sums, err := a.Summarize()
	if err != nil {
		return err
	}
	writeSummary(r.report, sums)

	if r.predicate != nil {
		matches, err := a.CountWhere(analysis.ScriptPredicate[F](r.predicate))
		if err != nil {
			return err
		}
		writeMatches(r.report, r.predicate.Name(), matches, rolls)
	}
	return nil
}

// replayStored loads a saved play and prints its analyses.
func replayStored(ctx context.Context, store storage.PlayStore, id uuid.UUID, r run) error {
	if store == nil {
		return fmt.Errorf("loading play %s: storage driver is none", id)
	}
	rec, err := store.Load(ctx, id)
	if err != nil {
		return fmt.Errorf("loading play %s: %w", id, err)
	}
	fmt.Fprintf(r.report.out, "play %s: dice set %q, seed %d, saved %s\n",
		rec.ID, rec.DiceSet, rec.Seed, rec.CreatedAt.Format(time.RFC3339))

	switch rec.Kind {
	case dice.KindNumeric:
		t, err := rec.NumericTable()
		if err != nil {
			return err
		}
		rp, err := play.NewReplay[float64](t)
		if err != nil {
			return fmt.Errorf("play %s: %w", id, err)
		}
		return analyze[float64](r, rp)
	case dice.KindText:
		t, err := rec.TextTable()
		if err != nil {
			return err
		}
		rp, err := play.NewReplay[string](t)
		if err != nil {
			return fmt.Errorf("play %s: %w", id, err)
		}
		return analyze[string](r, rp)
	}
	return fmt.Errorf("play %s has unknown face kind %q", id, rec.Kind)
}

// resolvePredicate finds a predicate by name among the loaded ones, or loads
// it from a .lua path. The returned cleanup closes a predicate loaded here.
func resolvePredicate(app *App, ref string) (*scripting.Predicate, func(), error) {
	if ref == "" {
		return nil, func() {}, nil
	}
	if strings.HasSuffix(ref, ".lua") {
		p, err := scripting.LoadPredicateFile(filepath.Clean(ref), app.Config.Scripting.InstructionLimit, app.Logger)
		if err != nil {
			return nil, nil, err
		}
		return p, p.Close, nil
	}
	p, ok := app.Predicates[ref]
	if !ok {
		return nil, nil, fmt.Errorf("unknown predicate %q in %s", ref, app.Config.Scripting.PredicateDir)
	}
	return p, func() {}, nil
}

// newReport returns a report writing to out.
func newReport(out io.Writer, limit int) report {
	return report{out: out, limit: limit}
}
