package dice

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Roller wraps a Die and logger to provide logged rolling.
// Every batch is logged at debug level with its size, the die's face count,
// how often each face came up and the elapsed time.
type Roller[F Face] struct {
	die    *Die[F]
	logger *zap.Logger
}

// NewLoggedRoller creates a Roller that rolls d and logs each batch to logger.
//
// Precondition: d and logger must be non-nil.
func NewLoggedRoller[F Face](d *Die[F], logger *zap.Logger) *Roller[F] {
	return &Roller[F]{die: d, logger: logger}
}

// Die returns the wrapped die.
func (r *Roller[F]) Die() *Die[F] {
	return r.die
}

// Roll rolls the wrapped die n times and logs the batch at debug level.
//
// Postcondition: Returns the die's Roll result unchanged; failures are logged
// at warn level and returned.
func (r *Roller[F]) Roll(n int) ([]F, error) {
	start := time.Now()
	faces, err := r.die.Roll(n)
	if err != nil {
		r.logger.Warn("dice roll failed",
			zap.Int("count", n),
			zap.Int("faces", r.die.Len()),
			zap.Error(err),
		)
		return nil, err
	}
	if ce := r.logger.Check(zap.DebugLevel, "dice roll"); ce != nil {
		ce.Write(
			zap.Int("count", n),
			zap.Int("faces", r.die.Len()),
			zap.Any("counts", faceCounts(faces)),
			zap.Duration("elapsed", time.Since(start)),
		)
	}
	return faces, nil
}

// faceCounts tallies a batch by face. Keys are text so every face kind
// encodes as a JSON object.
func faceCounts[F Face](faces []F) map[string]int {
	counts := make(map[string]int)
	for _, f := range faces {
		counts[fmt.Sprint(f)]++
	}
	return counts
}
