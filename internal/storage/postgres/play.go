package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/montecarlo/internal/game/dice"
	"github.com/cory-johannsen/montecarlo/internal/storage"
)

// PlayRepository provides play persistence operations.
type PlayRepository struct {
	db *pgxpool.Pool
}

// NewPlayRepository creates a PlayRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewPlayRepository(db *pgxpool.Pool) *PlayRepository {
	return &PlayRepository{db: db}
}

// Save inserts the play header and bulk-copies its outcomes in one
// transaction.
//
// Precondition: rec must have at least one row and a known face kind.
// Postcondition: Returns the play ID, or storage.ErrInvalidRecord; nothing is
// written on error.
func (r *PlayRepository) Save(ctx context.Context, rec storage.Record) (uuid.UUID, error) {
	rec, err := storage.Prepare(rec)
	if err != nil {
		return uuid.Nil, err
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	_, err = tx.Exec(ctx,
		`INSERT INTO plays (id, dice_set, face_kind, seed, rolls, dice, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rec.ID, rec.DiceSet, string(rec.Kind), int64(rec.Seed), rec.Rolls, rec.Dice, rec.CreatedAt,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("inserting play: %w", err)
	}

	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"play_outcomes"},
		[]string{"play_id", "roll", "die", "face"},
		pgx.CopyFromSlice(len(rec.Rows), func(i int) ([]any, error) {
			row := rec.Rows[i]
			return []any{rec.ID, row.Roll, row.Die, row.Face}, nil
		}),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("copying outcomes: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("committing play: %w", err)
	}
	return rec.ID, nil
}

// Load retrieves a play and its outcomes in key order.
//
// Postcondition: Returns storage.ErrPlayNotFound if no play has that ID.
func (r *PlayRepository) Load(ctx context.Context, id uuid.UUID) (storage.Record, error) {
	var (
		rec  storage.Record
		kind string
		seed int64
	)
	err := r.db.QueryRow(ctx,
		`SELECT id, dice_set, face_kind, seed, rolls, dice, created_at
		 FROM plays WHERE id = $1`,
		id,
	).Scan(&rec.ID, &rec.DiceSet, &kind, &seed, &rec.Rolls, &rec.Dice, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return storage.Record{}, storage.ErrPlayNotFound
		}
		return storage.Record{}, fmt.Errorf("querying play: %w", err)
	}
	rec.Kind = dice.Kind(kind)
	rec.Seed = uint64(seed)

	rows, err := r.db.Query(ctx,
		`SELECT roll, die, face FROM play_outcomes
		 WHERE play_id = $1 ORDER BY roll, die`,
		id,
	)
	if err != nil {
		return storage.Record{}, fmt.Errorf("querying outcomes: %w", err)
	}
	rec.Rows, err = pgx.CollectRows(rows, pgx.RowToStructByPos[storage.Row])
	if err != nil {
		return storage.Record{}, fmt.Errorf("scanning outcomes: %w", err)
	}
	return rec, nil
}

// Delete removes a play and its outcomes.
//
// Postcondition: Returns storage.ErrPlayNotFound if no play has that ID.
func (r *PlayRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM plays WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting play: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrPlayNotFound
	}
	return nil
}
