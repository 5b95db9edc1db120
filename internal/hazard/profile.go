package hazard

import (
	"fmt"

	"github.com/couchcryptid/hazard-engine/internal/domain"
)

const (
	// DefaultConfidence is reported when scoring failed and the fixed
	// default answer was substituted.
	DefaultConfidence = 40.0

	defaultFactor = "Model unavailable - using default assessment"
	quietLabel    = "Moderate conditions"
)

// Profile bundles everything hazard-specific: the feature schema, fallback
// rules, factor labels, recommendations, derived metrics and the default
// answer used when scoring fails.
type Profile struct {
	Schema             *Schema
	Rules              []Rule
	FallbackConfidence float64
	FactorLabels       map[string]string
	GenericFactor      string
	Recommendations    RecommendationSet
	Metrics            func(r Resolved, risk float64) map[string]float64
	Default            DefaultAnswer
}

// DefaultAnswer is the fixed prediction substituted on scoring failure.
type DefaultAnswer struct {
	RiskScore      float64
	Recommendation string
	Metrics        map[string]float64
}

// Hazard returns the profile's hazard type.
func (p *Profile) Hazard() domain.HazardType { return p.Schema.Hazard }

// DefaultPrediction builds a fresh copy of the profile's default answer.
func (p *Profile) DefaultPrediction() domain.HazardPrediction {
	metrics := make(map[string]float64, len(p.Default.Metrics))
	for k, v := range p.Default.Metrics {
		metrics[k] = v
	}
	return domain.HazardPrediction{
		Hazard:              p.Schema.Hazard,
		RiskScore:           p.Default.RiskScore,
		Confidence:          DefaultConfidence,
		ContributingFactors: []string{defaultFactor},
		Recommendations:     []string{p.Default.Recommendation},
		ModelStatus:         domain.StatusDefault,
		Metrics:             metrics,
	}
}

// ProfileFor returns a fresh profile for h. Callers may modify the returned
// value without affecting other profiles.
func ProfileFor(h domain.HazardType) (*Profile, error) {
	switch h {
	case domain.HazardWildfire:
		return WildfireProfile(), nil
	case domain.HazardFlood:
		return FloodProfile(), nil
	case domain.HazardLandslide:
		return LandslideProfile(), nil
	default:
		return nil, fmt.Errorf("no profile for hazard %q", h)
	}
}
