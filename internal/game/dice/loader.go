package dice

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Kind classifies the faces of a dice set.
type Kind string

const (
	// KindNumeric marks a set whose faces are all numbers.
	KindNumeric Kind = "numeric"
	// KindText marks a set whose faces are all strings.
	KindText Kind = "text"
)

// Definition describes one die of a set before it is built.
type Definition struct {
	Name    string
	Kind    Kind
	Numeric []float64
	Text    []string
	// Weights overrides DefaultWeight for the faces it names, keyed by the
	// face's text form.
	Weights map[string]float64
	// Count is the number of positions the built die occupies. All positions
	// share one *Die.
	Count int
}

// Set is a named, homogeneous collection of die definitions.
type Set struct {
	Name string
	Kind Kind
	Dice []Definition
}

// SourceFactory returns the Source for the die at index i of a set.
type SourceFactory func(i int) Source

// CryptoSources gives every die a crypto/rand backed Source.
func CryptoSources() SourceFactory {
	return func(int) Source { return NewCryptoSource() }
}

// SeededSources gives die i the PCG stream i of seed, so a seeded set
// reproduces exactly while its dice stay independent.
func SeededSources(seed uint64) SourceFactory {
	return func(i int) Source { return NewSeededStream(seed, uint64(i)) }
}

// yamlSetFile is the top-level YAML structure for dice-set files.
type yamlSetFile struct {
	Set yamlSet `yaml:"set"`
}

// yamlSet is the YAML representation of a dice set.
type yamlSet struct {
	Name string    `yaml:"name"`
	Dice []yamlDie `yaml:"dice"`
}

// yamlDie is the YAML representation of a die. Faces is either a list of
// scalars or an "NdS" shorthand string.
type yamlDie struct {
	Name    string             `yaml:"name"`
	Faces   any                `yaml:"faces"`
	Weights map[string]float64 `yaml:"weights"`
	Count   int                `yaml:"count"`
}

// LoadSetFromFile reads and validates a single dice-set YAML file.
//
// Precondition: path must point to a valid YAML dice-set file.
// Postcondition: Returns a validated Set or a non-nil error.
func LoadSetFromFile(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading dice file %s: %w", path, err)
	}
	return LoadSetFromBytes(data)
}

// LoadSetFromBytes parses and validates a dice set from YAML bytes.
//
// Precondition: data must be valid YAML conforming to the dice-set schema.
// Postcondition: Returns a validated Set or a non-nil error.
func LoadSetFromBytes(data []byte) (*Set, error) {
	var file yamlSetFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing dice YAML: %w", err)
	}

	set, err := convertYAMLSet(file.Set)
	if err != nil {
		return nil, fmt.Errorf("converting dice set: %w", err)
	}
	if err := set.Validate(); err != nil {
		return nil, fmt.Errorf("validating dice set: %w", err)
	}
	return set, nil
}

// LoadSetsFromDir loads every YAML file in dir as a dice set, keyed by set name.
//
// Precondition: dir must be a valid directory path.
// Postcondition: Returns all validated sets or the first error encountered.
func LoadSetsFromDir(dir string) (map[string]*Set, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading dice directory %s: %w", dir, err)
	}

	sets := make(map[string]*Set)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml") {
			continue
		}
		set, err := LoadSetFromFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("loading dice set from %s: %w", name, err)
		}
		if _, dup := sets[set.Name]; dup {
			return nil, fmt.Errorf("duplicate dice set name %q in %s", set.Name, name)
		}
		sets[set.Name] = set
	}

	if len(sets) == 0 {
		return nil, fmt.Errorf("no dice files found in %s", dir)
	}
	return sets, nil
}

// Validate checks the set invariants: a name, at least one die, a single
// face kind across all dice, positive counts and weights that name real faces.
//
// Postcondition: Returns nil if the set is valid, or an error describing all violations.
func (s *Set) Validate() error {
	var errs []error
	if s.Name == "" {
		errs = append(errs, errors.New("set name must not be empty"))
	}
	if len(s.Dice) == 0 {
		errs = append(errs, errors.New("set must define at least one die"))
	}
	for i, d := range s.Dice {
		if d.Kind != s.Kind {
			errs = append(errs, fmt.Errorf("die %d (%s) has %s faces in a %s set", i, d.Name, d.Kind, s.Kind))
		}
		if d.Count < 1 {
			errs = append(errs, fmt.Errorf("die %d (%s) count must be >= 1, got %d", i, d.Name, d.Count))
		}
		faces := d.faceKeys()
		for key, w := range d.Weights {
			if _, ok := faces[d.canonicalKey(key)]; !ok {
				errs = append(errs, fmt.Errorf("die %d (%s): %w: %s", i, d.Name, ErrUnknownFace, key))
			}
			if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
				errs = append(errs, fmt.Errorf("die %d (%s): %w: %v for face %s", i, d.Name, ErrInvalidWeight, w, key))
			}
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Size returns the number of die positions the set expands to.
func (s *Set) Size() int {
	n := 0
	for _, d := range s.Dice {
		n += d.Count
	}
	return n
}

// BuildNumeric builds the dice of a numeric set in position order.
//
// Precondition: s.Kind == KindNumeric.
// Postcondition: len(result) == s.Size(); positions of one definition share a *Die.
func (s *Set) BuildNumeric(sources SourceFactory) ([]*Die[float64], error) {
	if s.Kind != KindNumeric {
		return nil, fmt.Errorf("%w: set %q is %s, not numeric", ErrInvalidArgument, s.Name, s.Kind)
	}
	return buildSet(s, sources, func(d Definition) []float64 { return d.Numeric }, func(key string) (float64, error) {
		return strconv.ParseFloat(strings.TrimSpace(key), 64)
	})
}

// BuildText builds the dice of a textual set in position order.
//
// Precondition: s.Kind == KindText.
// Postcondition: len(result) == s.Size(); positions of one definition share a *Die.
func (s *Set) BuildText(sources SourceFactory) ([]*Die[string], error) {
	if s.Kind != KindText {
		return nil, fmt.Errorf("%w: set %q is %s, not text", ErrInvalidArgument, s.Name, s.Kind)
	}
	return buildSet(s, sources, func(d Definition) []string { return d.Text }, func(key string) (string, error) {
		return key, nil
	})
}

func buildSet[F Face](s *Set, sources SourceFactory, faces func(Definition) []F, parseKey func(string) (F, error)) ([]*Die[F], error) {
	if sources == nil {
		sources = CryptoSources()
	}
	out := make([]*Die[F], 0, s.Size())
	for i, def := range s.Dice {
		d, err := New(faces(def), WithSource(sources(i)))
		if err != nil {
			return nil, fmt.Errorf("building die %d (%s): %w", i, def.Name, err)
		}
		for key, w := range def.Weights {
			face, err := parseKey(key)
			if err != nil {
				return nil, fmt.Errorf("building die %d (%s): %w: %s", i, def.Name, ErrUnknownFace, key)
			}
			if err := d.SetWeight(face, w); err != nil {
				return nil, fmt.Errorf("building die %d (%s): %w", i, def.Name, err)
			}
		}
		for range def.Count {
			out = append(out, d)
		}
	}
	return out, nil
}

// faceKeys returns the text form of every face, matching Weights keys.
func (d Definition) faceKeys() map[string]struct{} {
	keys := make(map[string]struct{}, len(d.Numeric)+len(d.Text))
	for _, f := range d.Numeric {
		keys[strconv.FormatFloat(f, 'g', -1, 64)] = struct{}{}
	}
	for _, f := range d.Text {
		keys[f] = struct{}{}
	}
	return keys
}

// canonicalKey normalises a numeric weight key so "1" and "1.0" both name face 1.
func (d Definition) canonicalKey(key string) string {
	if d.Kind != KindNumeric {
		return key
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(key), 64)
	if err != nil {
		return key
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// convertYAMLSet converts the parsed YAML structures into a Set.
func convertYAMLSet(ys yamlSet) (*Set, error) {
	set := &Set{Name: ys.Name}
	for i, yd := range ys.Dice {
		def, err := convertYAMLDie(yd)
		if err != nil {
			return nil, fmt.Errorf("die %d (%s): %w", i, yd.Name, err)
		}
		if i == 0 {
			set.Kind = def.Kind
		}
		set.Dice = append(set.Dice, def)
	}
	return set, nil
}

func convertYAMLDie(yd yamlDie) (Definition, error) {
	def := Definition{
		Name:    yd.Name,
		Weights: yd.Weights,
		Count:   yd.Count,
	}

	switch faces := yd.Faces.(type) {
	case string:
		expr, err := Parse(faces)
		if err != nil {
			return Definition{}, err
		}
		def.Kind = KindNumeric
		def.Numeric = expr.Faces()
		if def.Count == 0 {
			def.Count = expr.Count
		}
	case []any:
		if err := def.setFaces(faces); err != nil {
			return Definition{}, err
		}
	default:
		return Definition{}, fmt.Errorf("%w: faces must be a list or an NdS expression, got %T", ErrInvalidArgument, yd.Faces)
	}

	if def.Count == 0 {
		def.Count = 1
	}
	return def, nil
}

// setFaces classifies a YAML face list as numeric or textual.
func (d *Definition) setFaces(raw []any) error {
	for i, v := range raw {
		var (
			num    float64
			isText bool
			text   string
		)
		switch f := v.(type) {
		case int:
			num = float64(f)
		case int64:
			num = float64(f)
		case uint64:
			num = float64(f)
		case float64:
			num = f
		case string:
			isText, text = true, f
		default:
			return fmt.Errorf("%w: face %d has unsupported type %T", ErrInvalidArgument, i, v)
		}

		kind := KindNumeric
		if isText {
			kind = KindText
		}
		if d.Kind == "" {
			d.Kind = kind
		}
		if d.Kind != kind {
			return fmt.Errorf("%w: face %d mixes %s and %s faces", ErrInvalidArgument, i, d.Kind, kind)
		}
		if isText {
			d.Text = append(d.Text, text)
		} else {
			d.Numeric = append(d.Numeric, num)
		}
	}
	if d.Kind == "" {
		return fmt.Errorf("%w: a die needs at least one face", ErrInvalidArgument)
	}
	return nil
}
