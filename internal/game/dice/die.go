package dice

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Die is a weighted discrete-outcome generator.
//
// Invariant: faces are distinct and fixed after construction; every face has
// exactly one non-negative finite weight.
type Die[F Face] struct {
	faces   []F
	weights map[F]float64
	src     Source
}

type dieOptions struct {
	src Source
}

// Option configures a Die at construction.
type Option func(*dieOptions)

// WithSource injects the randomness source a die samples from.
// A nil src leaves the default crypto source in place.
func WithSource(src Source) Option {
	return func(o *dieOptions) {
		if src != nil {
			o.src = src
		}
	}
}

// New creates a die with the given faces, each weighted DefaultWeight.
//
// Precondition: faces must be non-empty, distinct and free of NaN.
// Postcondition: Returns a die or an error wrapping ErrInvalidArgument or
// ErrDuplicateFace.
func New[F Face](faces []F, opts ...Option) (*Die[F], error) {
	if len(faces) == 0 {
		return nil, fmt.Errorf("%w: a die needs at least one face", ErrInvalidArgument)
	}

	o := dieOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.src == nil {
		o.src = NewCryptoSource()
	}

	weights := make(map[F]float64, len(faces))
	for i, f := range faces {
		// NaN is the only value of a Face type that is not equal to itself.
		if f != f {
			return nil, fmt.Errorf("%w: face %d is NaN", ErrInvalidArgument, i)
		}
		if _, dup := weights[f]; dup {
			return nil, fmt.Errorf("%w: %v", ErrDuplicateFace, f)
		}
		weights[f] = DefaultWeight
	}

	return &Die[F]{
		faces:   append([]F(nil), faces...),
		weights: weights,
		src:     o.src,
	}, nil
}

// MustNew is New that panics on error. Useful for fixtures and constants.
func MustNew[F Face](faces []F, opts ...Option) *Die[F] {
	d, err := New(faces, opts...)
	if err != nil {
		panic("dice: MustNew failed: " + err.Error())
	}
	return d
}

// Faces returns a copy of the die's faces in construction order.
func (d *Die[F]) Faces() []F {
	return append([]F(nil), d.faces...)
}

// Len returns the number of faces.
func (d *Die[F]) Len() int {
	return len(d.faces)
}

// Has reports whether face is one of the die's faces.
func (d *Die[F]) Has(face F) bool {
	_, ok := d.weights[face]
	return ok
}

// Weight returns the current weight of face.
//
// Postcondition: Returns ErrUnknownFace if face is not on the die.
func (d *Die[F]) Weight(face F) (float64, error) {
	w, ok := d.weights[face]
	if !ok {
		return 0, fmt.Errorf("%w: %v", ErrUnknownFace, face)
	}
	return w, nil
}

// SetWeight replaces the weight of a single face. A weight of zero makes the
// face unreachable by Roll.
//
// Precondition: weight must be finite and >= 0.
// Postcondition: Only face's weight changes; returns ErrUnknownFace or
// ErrInvalidWeight without modifying the die on failure.
func (d *Die[F]) SetWeight(face F, weight float64) error {
	if !d.Has(face) {
		return fmt.Errorf("%w: %v", ErrUnknownFace, face)
	}
	if math.IsNaN(weight) || math.IsInf(weight, 0) || weight < 0 {
		return fmt.Errorf("%w: %v for face %v", ErrInvalidWeight, weight, face)
	}
	d.weights[face] = weight
	return nil
}

// SetWeightString parses weight as a real number and applies it with SetWeight.
//
// Postcondition: Returns ErrInvalidWeight if weight does not parse.
func (d *Die[F]) SetWeightString(face F, weight string) error {
	if !d.Has(face) {
		return fmt.Errorf("%w: %v", ErrUnknownFace, face)
	}
	w, err := strconv.ParseFloat(strings.TrimSpace(weight), 64)
	if err != nil {
		return fmt.Errorf("%w: %q for face %v", ErrInvalidWeight, weight, face)
	}
	return d.SetWeight(face, w)
}

// Weights returns a copy of the face to weight mapping.
func (d *Die[F]) Weights() map[F]float64 {
	out := make(map[F]float64, len(d.weights))
	for f, w := range d.weights {
		out[f] = w
	}
	return out
}

// State returns every face with its weight, in face order.
func (d *Die[F]) State() []FaceWeight[F] {
	out := make([]FaceWeight[F], len(d.faces))
	for i, f := range d.faces {
		out[i] = FaceWeight[F]{Face: f, Weight: d.weights[f]}
	}
	return out
}

// Probabilities returns each face's weight divided by the total weight.
//
// Postcondition: Values sum to 1; returns ErrInvalidWeight if every weight is zero.
func (d *Die[F]) Probabilities() (map[F]float64, error) {
	total := d.totalWeight()
	if total <= 0 || math.IsInf(total, 0) {
		return nil, fmt.Errorf("%w: total weight is %v", ErrInvalidWeight, total)
	}
	out := make(map[F]float64, len(d.faces))
	for f, w := range d.weights {
		out[f] = w / total
	}
	return out, nil
}

// Roll draws n faces independently with replacement. Each draw picks face f
// with probability weight(f)/sum(weights). Roll never mutates the die.
//
// Precondition: n >= 1.
// Postcondition: len(result) == n and no zero-weight face appears; returns
// ErrInvalidArgument for n < 1 or ErrInvalidWeight when all weights are zero.
func (d *Die[F]) Roll(n int) ([]F, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: roll count must be >= 1, got %d", ErrInvalidArgument, n)
	}

	cum, total := d.cumulative()
	if total <= 0 || math.IsInf(total, 0) {
		return nil, fmt.Errorf("%w: total weight is %v", ErrInvalidWeight, total)
	}

	out := make([]F, n)
	if d.uniform() {
		for i := range out {
			out[i] = d.faces[d.src.Intn(len(d.faces))]
		}
		return out, nil
	}
	for i := range out {
		out[i] = d.faces[d.pick(cum, d.src.Float64()*total)]
	}
	return out, nil
}

// cumulative returns the running weight totals in face order.
func (d *Die[F]) cumulative() ([]float64, float64) {
	cum := make([]float64, len(d.faces))
	var total float64
	for i, f := range d.faces {
		total += d.weights[f]
		cum[i] = total
	}
	return cum, total
}

// pick returns the index of the first face whose cumulative weight exceeds r.
// Zero-weight faces share their predecessor's bound and can never be first.
func (d *Die[F]) pick(cum []float64, r float64) int {
	i := sort.Search(len(cum), func(i int) bool { return cum[i] > r })
	if i < len(cum) {
		return i
	}
	// r rounded up to the total; fall back to the last reachable face.
	for i = len(cum) - 1; i > 0; i-- {
		if d.weights[d.faces[i]] > 0 {
			break
		}
	}
	return i
}

// uniform reports whether every face carries the same positive weight.
func (d *Die[F]) uniform() bool {
	first := d.weights[d.faces[0]]
	if first <= 0 {
		return false
	}
	for _, f := range d.faces[1:] {
		if d.weights[f] != first {
			return false
		}
	}
	return true
}

func (d *Die[F]) totalWeight() float64 {
	_, total := d.cumulative()
	return total
}
