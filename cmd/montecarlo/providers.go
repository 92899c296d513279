package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/montecarlo/internal/config"
	"github.com/cory-johannsen/montecarlo/internal/scripting"
	"github.com/cory-johannsen/montecarlo/internal/storage"
	"github.com/cory-johannsen/montecarlo/internal/storage/postgres"
	"github.com/cory-johannsen/montecarlo/internal/storage/sqlite"
)

// Predicates are the Lua predicates found in the configured directory, by name.
type Predicates map[string]*scripting.Predicate

// App holds everything a simulation run needs beyond its dice.
type App struct {
	Config     config.Config
	Logger     *zap.Logger
	Store      storage.PlayStore
	Predicates Predicates
}

// provideStore opens the configured play store. The none driver yields a nil
// store.
func provideStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (storage.PlayStore, func(), error) {
	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		dbStart := time.Now()
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to database: %w", err)
		}
		logger.Info("database connected",
			zap.String("host", cfg.Database.Host),
			zap.Int("port", cfg.Database.Port),
			zap.String("database", cfg.Database.Name),
			zap.Duration("elapsed", time.Since(dbStart)),
		)
		return postgres.NewPlayRepository(pool.DB()), pool.Close, nil
	case config.DriverSQLite:
		store, err := sqlite.Open(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		logger.Info("sqlite store opened", zap.String("path", cfg.Storage.SQLitePath))
		return store, func() {
			if err := store.Close(); err != nil {
				logger.Warn("closing sqlite store", zap.Error(err))
			}
		}, nil
	}
	return nil, func() {}, nil
}

// providePredicates loads every predicate in the configured directory. A
// missing directory yields no predicates.
func providePredicates(cfg config.Config, logger *zap.Logger) (Predicates, func(), error) {
	dir := cfg.Scripting.PredicateDir
	if dir == "" {
		return Predicates{}, func() {}, nil
	}
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		logger.Debug("predicate directory absent", zap.String("dir", dir))
		return Predicates{}, func() {}, nil
	}
	preds, err := scripting.LoadPredicateDir(dir, cfg.Scripting.InstructionLimit, logger)
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("predicates loaded", zap.String("dir", dir), zap.Int("count", len(preds)))
	return preds, func() {
		for _, p := range preds {
			p.Close()
		}
	}, nil
}
