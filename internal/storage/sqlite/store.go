// Package sqlite provides an embedded SQLite play store using
// modernc.org/sqlite.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/cory-johannsen/montecarlo/internal/game/dice"
	"github.com/cory-johannsen/montecarlo/internal/storage"
	"github.com/cory-johannsen/montecarlo/internal/storage/sqlite/migrations"
)

// Store provides SQLite-backed play persistence.
type Store struct {
	sqlDB *sql.DB
}

// Open opens the SQLite database at path, creating it if needed, and applies
// migrations.
//
// Precondition: path must be non-empty.
// Postcondition: Returns a ready Store; the caller must Close it.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"

	if err := migrateUp(dsn); err != nil {
		return nil, err
	}

	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// migrateUp applies the embedded migrations over a dedicated connection; the
// migrate driver closes its database when done.
func migrateUp(dsn string) error {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("open sqlite db for migrations: %w", err)
	}
	driver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("sqlite migration driver: %w", err)
	}
	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("opening embedded migrations: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("creating migrator: %w", err)
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

// Close releases the SQLite connection.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Save inserts the play and its outcomes in one transaction.
//
// Postcondition: Returns the play ID, or storage.ErrInvalidRecord; nothing is
// written on error.
func (s *Store) Save(ctx context.Context, rec storage.Record) (uuid.UUID, error) {
	if err := ctx.Err(); err != nil {
		return uuid.Nil, err
	}
	rec, err := storage.Prepare(rec)
	if err != nil {
		return uuid.Nil, err
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return uuid.Nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx, `
INSERT INTO plays (id, dice_set, face_kind, seed, rolls, dice, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
`,
		rec.ID.String(),
		rec.DiceSet,
		string(rec.Kind),
		int64(rec.Seed),
		rec.Rolls,
		rec.Dice,
		rec.CreatedAt.UTC().UnixMilli(),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert play: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO play_outcomes (play_id, roll, die, face) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return uuid.Nil, fmt.Errorf("prepare outcome insert: %w", err)
	}
	defer stmt.Close()
	for _, row := range rec.Rows {
		if _, err := stmt.ExecContext(ctx, rec.ID.String(), row.Roll, row.Die, row.Face); err != nil {
			return uuid.Nil, fmt.Errorf("insert outcome roll %d die %d: %w", row.Roll, row.Die, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return uuid.Nil, fmt.Errorf("commit play: %w", err)
	}
	return rec.ID, nil
}

// Load retrieves a play and its outcomes in key order.
//
// Postcondition: Returns storage.ErrPlayNotFound if no play has that ID.
func (s *Store) Load(ctx context.Context, id uuid.UUID) (storage.Record, error) {
	if err := ctx.Err(); err != nil {
		return storage.Record{}, err
	}

	var (
		rec       storage.Record
		rawID     string
		kind      string
		seed      int64
		createdAt int64
	)
	err := s.sqlDB.QueryRowContext(ctx, `
SELECT id, dice_set, face_kind, seed, rolls, dice, created_at
FROM plays WHERE id = ?
`, id.String()).Scan(&rawID, &rec.DiceSet, &kind, &seed, &rec.Rolls, &rec.Dice, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Record{}, storage.ErrPlayNotFound
		}
		return storage.Record{}, fmt.Errorf("query play: %w", err)
	}
	if rec.ID, err = uuid.Parse(rawID); err != nil {
		return storage.Record{}, fmt.Errorf("parse play id %q: %w", rawID, err)
	}
	rec.Kind = dice.Kind(kind)
	rec.Seed = uint64(seed)
	rec.CreatedAt = time.UnixMilli(createdAt).UTC()

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT roll, die, face FROM play_outcomes
WHERE play_id = ? ORDER BY roll, die
`, id.String())
	if err != nil {
		return storage.Record{}, fmt.Errorf("query outcomes: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var row storage.Row
		if err := rows.Scan(&row.Roll, &row.Die, &row.Face); err != nil {
			return storage.Record{}, fmt.Errorf("scan outcome: %w", err)
		}
		rec.Rows = append(rec.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return storage.Record{}, fmt.Errorf("iterate outcomes: %w", err)
	}
	return rec, nil
}

// Delete removes a play and its outcomes.
//
// Postcondition: Returns storage.ErrPlayNotFound if no play has that ID.
func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM play_outcomes WHERE play_id = ?`, id.String()); err != nil {
		return fmt.Errorf("delete outcomes: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM plays WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("delete play: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete play: %w", err)
	}
	if n == 0 {
		return storage.ErrPlayNotFound
	}
	return tx.Commit()
}
