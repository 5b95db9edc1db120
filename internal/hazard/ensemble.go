package hazard

import (
	"fmt"
	"math"

	"github.com/couchcryptid/hazard-engine/internal/calc"
)

const (
	// Confidence drops by this many points per point of model disagreement.
	disagreementPenalty = 4.0
	maxDisagreementCost = 45.0

	MinEnsembleConfidence = 60.0
	MaxEnsembleConfidence = 95.0

	// FactorCandidates is how many top-importance features are offered for
	// attribution.
	FactorCandidates = 5
)

// BlendWeights combine the primary and secondary model outputs.
type BlendWeights struct {
	Primary   float64
	Secondary float64
}

// DefaultBlendWeights is the 0.6/0.4 primary/secondary blend carried over
// from the trained system.
func DefaultBlendWeights() BlendWeights {
	return BlendWeights{Primary: 0.6, Secondary: 0.4}
}

// Validate requires non-negative weights summing to 1.
func (w BlendWeights) Validate() error {
	if w.Primary < 0 || w.Secondary < 0 {
		return fmt.Errorf("blend weights must be non-negative, got %v/%v", w.Primary, w.Secondary)
	}
	if math.Abs(w.Primary+w.Secondary-1) > weightTolerance {
		return fmt.Errorf("blend weights must sum to 1, got %v", w.Primary+w.Secondary)
	}
	return nil
}

// Ensemble scores feature vectors with a loaded ModelArtifact.
// It holds no mutable state and is safe for concurrent use.
type Ensemble struct {
	artifact *ModelArtifact
	weights  BlendWeights
}

// EnsembleResult is the raw output of one ensemble prediction.
type EnsembleResult struct {
	RiskScore        float64
	Confidence       float64
	Primary          float64
	Secondary        float64
	FactorCandidates []int
}

// NewEnsemble creates an Ensemble over a validated artifact.
func NewEnsemble(a *ModelArtifact, w BlendWeights) (*Ensemble, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return &Ensemble{artifact: a, weights: w}, nil
}

// Predict scales vec, scores it with both models and blends the results.
func (e *Ensemble) Predict(vec FeatureVector) (EnsembleResult, error) {
	if vec.Len() != len(e.artifact.FeatureNames) {
		return EnsembleResult{}, fmt.Errorf("%w: vector has %d features, model expects %d",
			ErrSchemaMismatch, vec.Len(), len(e.artifact.FeatureNames))
	}

	x := e.artifact.Scaler.Transform(vec.values)
	a := e.artifact.Primary.Predict(x)
	b := e.artifact.Secondary.Predict(x)
	if !finite(a) || !finite(b) {
		return EnsembleResult{}, fmt.Errorf("%w: model output not finite (%v, %v)", ErrPredictionFailure, a, b)
	}

	return EnsembleResult{
		RiskScore:        calc.Clip100(e.weights.Primary*a + e.weights.Secondary*b),
		Confidence:       agreementConfidence(a, b),
		Primary:          a,
		Secondary:        b,
		FactorCandidates: e.artifact.TopFeatures(FactorCandidates),
	}, nil
}

// agreementConfidence is high when the two models agree and falls linearly
// with their disagreement.
func agreementConfidence(a, b float64) float64 {
	cost := math.Min(maxDisagreementCost, math.Abs(a-b)*disagreementPenalty)
	return calc.Clamp(100-cost, MinEnsembleConfidence, MaxEnsembleConfidence)
}
