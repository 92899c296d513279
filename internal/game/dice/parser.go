package dice

import (
	"fmt"
	"strconv"
	"strings"
)

// Expression is a parsed "NdS" shorthand naming Count identical dice with
// faces 1..Sides.
//
// Precondition: Count >= 1, Sides >= 1 after successful Parse.
type Expression struct {
	Raw   string // original input string
	Count int    // number of dice
	Sides int    // faces per die
}

// Parse parses a dice shorthand string into an Expression.
// Supported forms: "d6", "3d6", "D20".
//
// Precondition: expr must be a non-empty string.
// Postcondition: Returns an Expression or an error wrapping ErrInvalidArgument.
func Parse(expr string) (Expression, error) {
	raw := expr
	s := strings.ToLower(strings.TrimSpace(expr))
	if s == "" {
		return Expression{}, fmt.Errorf("%w: empty dice expression", ErrInvalidArgument)
	}

	dIdx := strings.Index(s, "d")
	if dIdx < 0 {
		return Expression{}, fmt.Errorf("%w: missing 'd' in expression %q", ErrInvalidArgument, raw)
	}

	// Count defaults to 1 when omitted.
	count := 1
	if countStr := s[:dIdx]; countStr != "" {
		n, err := strconv.Atoi(countStr)
		if err != nil {
			return Expression{}, fmt.Errorf("%w: invalid die count in %q: %v", ErrInvalidArgument, raw, err)
		}
		if n <= 0 {
			return Expression{}, fmt.Errorf("%w: invalid die count in %q: must be >= 1", ErrInvalidArgument, raw)
		}
		count = n
	}

	sides, err := strconv.Atoi(s[dIdx+1:])
	if err != nil {
		return Expression{}, fmt.Errorf("%w: invalid die sides in %q: %v", ErrInvalidArgument, raw, err)
	}
	if sides < 1 {
		return Expression{}, fmt.Errorf("%w: invalid die sides in %q: must be >= 1", ErrInvalidArgument, raw)
	}

	return Expression{Raw: raw, Count: count, Sides: sides}, nil
}

// MustParse parses expr and panics on error.
//
// Precondition: expr must be a valid dice expression.
func MustParse(expr string) Expression {
	e, err := Parse(expr)
	if err != nil {
		panic("dice: MustParse failed for expression " + expr + ": " + err.Error())
	}
	return e
}

// Faces returns the numeric faces 1..Sides.
//
// Postcondition: len(result) == e.Sides.
func (e Expression) Faces() []float64 {
	faces := make([]float64, e.Sides)
	for i := range faces {
		faces[i] = float64(i + 1)
	}
	return faces
}
