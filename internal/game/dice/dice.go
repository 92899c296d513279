// Package dice provides weighted discrete-outcome dice, the randomness
// abstraction they sample from, and loaders for dice-set definitions.
package dice

import "errors"

// DefaultWeight is the weight every face receives at construction.
const DefaultWeight = 1.0

// Face is the set of label types a die may carry. A die is therefore either
// all-numeric or all-textual.
type Face interface {
	~int | ~int64 | ~float64 | ~string
}

var (
	// ErrInvalidArgument is returned for malformed inputs: an empty face list,
	// a NaN face, a non-positive roll count or a nil die.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrDuplicateFace is returned when a face appears more than once at construction.
	ErrDuplicateFace = errors.New("duplicate face")

	// ErrUnknownFace is returned when a weight update targets a face the die does not have.
	ErrUnknownFace = errors.New("unknown face")

	// ErrInvalidWeight is returned for a non-numeric, negative or non-finite weight,
	// and when a die whose weights are all zero is rolled.
	ErrInvalidWeight = errors.New("invalid weight")
)

// FaceWeight pairs a face with its current weight.
type FaceWeight[F Face] struct {
	Face   F
	Weight float64
}

// Source is the randomness provider for dice rolls.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int

	// Float64 returns a random float64 in [0, 1).
	Float64() float64
}
