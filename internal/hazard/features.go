package hazard

import (
	"fmt"
	"strings"

	"github.com/couchcryptid/hazard-engine/internal/domain"
)

// FeatureEngineer turns a sparse raw feature map into a schema-ordered vector.
type FeatureEngineer struct {
	schema *Schema
}

// NewFeatureEngineer creates a FeatureEngineer for s.
func NewFeatureEngineer(s *Schema) *FeatureEngineer {
	return &FeatureEngineer{schema: s}
}

// Build resolves raw against the schema and assembles the feature vector.
//
// The returned vector is always usable. A non-nil error wraps
// ErrFeatureMalformed and is informational: non-finite raw values are replaced
// by their defaults, and if the assembled vector itself is unusable Build
// returns a zero vector instead.
func (e *FeatureEngineer) Build(raw domain.RawFeatureMap) (vec FeatureVector, resolved Resolved, err error) {
	defer func() {
		if r := recover(); r != nil {
			vec = ZeroVector(e.schema)
			resolved, _ = e.schema.Resolve(nil)
			err = fmt.Errorf("%w: %v", ErrFeatureMalformed, r)
		}
	}()

	resolved, malformed := e.schema.Resolve(raw)

	values := e.schema.build(resolved)
	for i, v := range values {
		if !finite(v) {
			return ZeroVector(e.schema), resolved,
				fmt.Errorf("%w: %s is not finite", ErrFeatureMalformed, e.schema.Features[i])
		}
	}

	vec, err = NewFeatureVector(e.schema, values)
	if err != nil {
		return ZeroVector(e.schema), resolved, fmt.Errorf("%w: %w", ErrFeatureMalformed, err)
	}

	if len(malformed) > 0 {
		return vec, resolved, fmt.Errorf("%w: non-finite values for %s",
			ErrFeatureMalformed, strings.Join(malformed, ", "))
	}
	return vec, resolved, nil
}
