package hazard

import (
	"fmt"
	"math"
	"sort"

	"github.com/couchcryptid/hazard-engine/internal/domain"
)

// FeatureSpec documents one raw input key and the value used when it is absent.
type FeatureSpec struct {
	Name    string
	Default float64
}

// CategoryGroup is a one-hot encoded categorical input such as geology type.
// When none of its option keys are supplied, Default is set hot.
type CategoryGroup struct {
	Options []string
	Default string
}

// Schema describes the raw inputs a hazard accepts and the ordered feature
// vector its models score.
type Schema struct {
	Hazard     domain.HazardType
	Inputs     []FeatureSpec
	Aliases    map[string]string
	Categories []CategoryGroup
	Features   []string

	build func(Resolved) []float64
}

// Len is the fixed vector length for this hazard.
func (s *Schema) Len() int { return len(s.Features) }

// Index returns the vector position of a named feature, or -1.
func (s *Schema) Index(name string) int {
	for i, f := range s.Features {
		if f == name {
			return i
		}
	}
	return -1
}

// Defaults returns the documented default for every input.
func (s *Schema) Defaults() domain.RawFeatureMap {
	r, _ := s.Resolve(nil)
	return domain.RawFeatureMap(r)
}

// Resolved is a raw feature map after alias folding, default filling and
// removal of non-finite values. Every schema input is present.
type Resolved map[string]float64

// Resolve folds aliases into canonical keys, drops non-finite values, and
// fills every missing input with its default. It returns the sorted list of
// keys that carried non-finite values.
func (s *Schema) Resolve(raw domain.RawFeatureMap) (Resolved, []string) {
	out := make(Resolved, len(s.Inputs)+len(raw))
	var malformed []string

	aliases := make([]string, 0, len(s.Aliases))
	for k, v := range raw {
		if _, ok := s.Aliases[k]; ok {
			aliases = append(aliases, k)
			continue
		}
		if !finite(v) {
			malformed = append(malformed, k)
			continue
		}
		out[k] = v
	}

	// The canonical key wins over any alias; among aliases the first in
	// sorted order wins.
	sort.Strings(aliases)
	for _, alias := range aliases {
		v := raw[alias]
		if !finite(v) {
			malformed = append(malformed, alias)
			continue
		}
		canonical := s.Aliases[alias]
		if _, ok := out[canonical]; ok {
			continue
		}
		out[canonical] = v
	}

	for _, in := range s.Inputs {
		if _, ok := out[in.Name]; !ok {
			out[in.Name] = in.Default
		}
	}

	for _, g := range s.Categories {
		supplied := false
		for _, opt := range g.Options {
			if _, ok := out[opt]; ok {
				supplied = true
				break
			}
		}
		for _, opt := range g.Options {
			if _, ok := out[opt]; ok {
				continue
			}
			if !supplied && opt == g.Default {
				out[opt] = 1
			} else {
				out[opt] = 0
			}
		}
	}

	sort.Strings(malformed)
	return out, malformed
}

// FeatureVector is a fixed-length numeric vector bound to a hazard schema.
// The zero value is unusable; construct one with NewFeatureVector.
type FeatureVector struct {
	schema *Schema
	values []float64
}

// NewFeatureVector copies values into a vector validated against s.
func NewFeatureVector(s *Schema, values []float64) (FeatureVector, error) {
	if len(values) != s.Len() {
		return FeatureVector{}, fmt.Errorf("%w: %s vector has %d values, schema expects %d",
			ErrSchemaMismatch, s.Hazard, len(values), s.Len())
	}
	v := make([]float64, len(values))
	copy(v, values)
	return FeatureVector{schema: s, values: v}, nil
}

// ZeroVector returns an all-zero vector of the schema's length.
func ZeroVector(s *Schema) FeatureVector {
	return FeatureVector{schema: s, values: make([]float64, s.Len())}
}

// Len returns the number of features.
func (v FeatureVector) Len() int { return len(v.values) }

// At returns the i-th feature value.
func (v FeatureVector) At(i int) float64 { return v.values[i] }

// Value returns the named feature value.
func (v FeatureVector) Value(name string) (float64, bool) {
	if v.schema == nil {
		return 0, false
	}
	i := v.schema.Index(name)
	if i < 0 {
		return 0, false
	}
	return v.values[i], true
}

// Values returns a copy of the underlying values in schema order.
func (v FeatureVector) Values() []float64 {
	out := make([]float64, len(v.values))
	copy(out, v.values)
	return out
}

// Schema returns the schema the vector was built against.
func (v FeatureVector) Schema() *Schema { return v.schema }

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func sinDeg(deg float64) float64 { return math.Sin(deg * math.Pi / 180) }
func cosDeg(deg float64) float64 { return math.Cos(deg * math.Pi / 180) }
