package hazard

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/couchcryptid/hazard-engine/internal/domain"
	"gonum.org/v1/gonum/floats"
)

// ArtifactVersion is the artifact layout this package reads and writes.
const ArtifactVersion = 1

// EnsembleKind selects how a Regressor combines its trees.
type EnsembleKind string

const (
	// KindBagging averages the trees (random-forest style).
	KindBagging EnsembleKind = "bagging"
	// KindBoosting adds the learning-rate-scaled tree sum to a base score.
	KindBoosting EnsembleKind = "boosting"
)

// Tree is a binary regression tree in flat array form. Node 0 is the root.
// A node is a leaf when Left and Right are both -1; otherwise samples with
// x[Feature] <= Threshold go left.
type Tree struct {
	Left      []int32   `json:"left"`
	Right     []int32   `json:"right"`
	Feature   []int32   `json:"feature"`
	Threshold []float64 `json:"threshold"`
	Value     []float64 `json:"value"`
}

func (t *Tree) predict(x []float64) float64 {
	node := int32(0)
	for t.Left[node] >= 0 {
		if x[t.Feature[node]] <= t.Threshold[node] {
			node = t.Left[node]
		} else {
			node = t.Right[node]
		}
	}
	return t.Value[node]
}

// validate checks array shapes and that every child index points forward,
// which guarantees traversal terminates.
func (t *Tree) validate(nFeatures int) error {
	n := len(t.Value)
	if n == 0 {
		return errors.New("tree has no nodes")
	}
	if len(t.Left) != n || len(t.Right) != n || len(t.Feature) != n || len(t.Threshold) != n {
		return fmt.Errorf("tree arrays have mismatched lengths (%d nodes)", n)
	}
	for i := 0; i < n; i++ {
		l, r := int(t.Left[i]), int(t.Right[i])
		if l < 0 || r < 0 {
			if l != -1 || r != -1 {
				return fmt.Errorf("node %d has exactly one child", i)
			}
			if !finite(t.Value[i]) {
				return fmt.Errorf("leaf %d value is not finite", i)
			}
			continue
		}
		if l <= i || r <= i || l >= n || r >= n {
			return fmt.Errorf("node %d children (%d, %d) out of order", i, l, r)
		}
		if f := int(t.Feature[i]); f < 0 || f >= nFeatures {
			return fmt.Errorf("node %d splits on feature %d of %d", i, f, nFeatures)
		}
		if !finite(t.Threshold[i]) {
			return fmt.Errorf("node %d threshold is not finite", i)
		}
	}
	return nil
}

// Regressor is a trained tree ensemble.
type Regressor struct {
	Kind         EnsembleKind `json:"kind"`
	Trees        []Tree       `json:"trees"`
	BaseScore    float64      `json:"base_score"`
	LearningRate float64      `json:"learning_rate"`
	Importances  []float64    `json:"importances"`
}

// Predict scores an already-scaled input.
func (r *Regressor) Predict(x []float64) float64 {
	outputs := make([]float64, len(r.Trees))
	for i := range r.Trees {
		outputs[i] = r.Trees[i].predict(x)
	}
	sum := floats.Sum(outputs)
	if r.Kind == KindBoosting {
		return r.BaseScore + r.LearningRate*sum
	}
	return sum / float64(len(outputs))
}

func (r *Regressor) validate(nFeatures int) error {
	switch r.Kind {
	case KindBagging, KindBoosting:
	default:
		return fmt.Errorf("unknown ensemble kind %q", r.Kind)
	}
	if len(r.Trees) == 0 {
		return errors.New("ensemble has no trees")
	}
	if len(r.Importances) != 0 && len(r.Importances) != nFeatures {
		return fmt.Errorf("%d importances for %d features", len(r.Importances), nFeatures)
	}
	if !finite(r.BaseScore) || !finite(r.LearningRate) {
		return errors.New("base score and learning rate must be finite")
	}
	for i := range r.Trees {
		if err := r.Trees[i].validate(nFeatures); err != nil {
			return fmt.Errorf("tree %d: %w", i, err)
		}
	}
	return nil
}

// Scaler standardizes inputs as (x - Mean) / Scale.
type Scaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// Transform returns the standardized copy of x.
func (s *Scaler) Transform(x []float64) []float64 {
	out := make([]float64, len(x))
	floats.SubTo(out, x, s.Mean)
	floats.Div(out, s.Scale)
	return out
}

// ModelArtifact is the immutable trained state for one hazard: a fitted
// scaler and two tree ensembles over the same feature order.
type ModelArtifact struct {
	Version      int               `json:"version"`
	Hazard       domain.HazardType `json:"hazard"`
	FeatureNames []string          `json:"feature_names"`
	Scaler       Scaler            `json:"scaler"`
	Primary      Regressor         `json:"primary"`
	Secondary    Regressor         `json:"secondary"`
	TrainedAt    time.Time         `json:"trained_at"`
}

// Validate checks the artifact's structure. Zero scale entries are replaced
// with 1 so constant training features pass through unscaled.
func (a *ModelArtifact) Validate() error {
	if a.Version != ArtifactVersion {
		return fmt.Errorf("%w: version %d, want %d", ErrArtifactInvalid, a.Version, ArtifactVersion)
	}
	n := len(a.FeatureNames)
	if n == 0 {
		return fmt.Errorf("%w: no feature names", ErrArtifactInvalid)
	}
	if len(a.Scaler.Mean) != n || len(a.Scaler.Scale) != n {
		return fmt.Errorf("%w: scaler has %d/%d entries for %d features",
			ErrArtifactInvalid, len(a.Scaler.Mean), len(a.Scaler.Scale), n)
	}
	for i, sc := range a.Scaler.Scale {
		if !finite(sc) || !finite(a.Scaler.Mean[i]) {
			return fmt.Errorf("%w: scaler entry %d is not finite", ErrArtifactInvalid, i)
		}
		if sc == 0 {
			a.Scaler.Scale[i] = 1
		}
	}
	if err := a.Primary.validate(n); err != nil {
		return fmt.Errorf("%w: primary: %w", ErrArtifactInvalid, err)
	}
	if err := a.Secondary.validate(n); err != nil {
		return fmt.Errorf("%w: secondary: %w", ErrArtifactInvalid, err)
	}
	return nil
}

// CheckSchema reports whether the artifact was trained on s's feature order.
func (a *ModelArtifact) CheckSchema(s *Schema) error {
	if a.Hazard != s.Hazard {
		return fmt.Errorf("%w: artifact is for %s, schema is %s", ErrSchemaMismatch, a.Hazard, s.Hazard)
	}
	if len(a.FeatureNames) != s.Len() {
		return fmt.Errorf("%w: artifact has %d features, schema has %d",
			ErrSchemaMismatch, len(a.FeatureNames), s.Len())
	}
	for i, name := range a.FeatureNames {
		if name != s.Features[i] {
			return fmt.Errorf("%w: feature %d is %q, schema expects %q",
				ErrSchemaMismatch, i, name, s.Features[i])
		}
	}
	return nil
}

// TopFeatures returns the indices of the k most important primary-model
// features, highest first. Ties keep the lower index first. A negative k
// selects nothing.
func (a *ModelArtifact) TopFeatures(k int) []int {
	k = max(k, 0)
	imp := a.Primary.Importances
	idx := make([]int, len(imp))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool { return imp[idx[i]] > imp[idx[j]] })
	if k < len(idx) {
		idx = idx[:k]
	}
	return idx
}
