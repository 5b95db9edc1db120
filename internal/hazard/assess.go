package hazard

import (
	"log/slog"
	"math"
	"sort"

	"github.com/couchcryptid/hazard-engine/internal/calc"
	"github.com/couchcryptid/hazard-engine/internal/domain"
)

const (
	// PriorityRiskThreshold marks a hazard as a priority in the overall
	// assessment.
	PriorityRiskThreshold = 50.0

	maxOverallRecommendations = 5
)

// DefaultOverallWeights weight each hazard's risk in the overall score.
func DefaultOverallWeights() map[domain.HazardType]float64 {
	return map[domain.HazardType]float64{
		domain.HazardWildfire:  0.40,
		domain.HazardFlood:     0.35,
		domain.HazardLandslide: 0.25,
	}
}

// Assessor runs every configured predictor over a snapshot and summarizes
// the results.
type Assessor struct {
	registry *Registry
	weights  map[domain.HazardType]float64
	logger   *slog.Logger
}

// NewAssessor creates an Assessor over reg using DefaultOverallWeights.
func NewAssessor(reg *Registry, logger *slog.Logger) *Assessor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Assessor{registry: reg, weights: DefaultOverallWeights(), logger: logger}
}

// Assess scores snap for the hazards it requests, or for every configured
// hazard when it requests none. Hazards that are not configured are skipped.
func (a *Assessor) Assess(snap domain.FeatureSnapshot) domain.Assessment {
	hazards := snap.Hazards
	if len(hazards) == 0 {
		hazards = a.registry.Hazards()
	}

	preds := make([]domain.HazardPrediction, 0, len(hazards))
	seen := make(map[domain.HazardType]bool, len(hazards))
	for _, h := range hazards {
		if seen[h] {
			continue
		}
		seen[h] = true
		p, ok := a.registry.Predictor(h)
		if !ok {
			a.logger.Warn("hazard not configured, skipping", "hazard", h, "aoi_id", snap.AOIID)
			continue
		}
		preds = append(preds, p.Predict(snap.Features))
	}

	return domain.Assessment{
		ID:          domain.AssessmentID(snap.AOIID, snap.ObservedAt),
		AOIID:       snap.AOIID,
		ObservedAt:  snap.ObservedAt,
		AssessedAt:  domain.Now(),
		Predictions: preds,
		Overall:     Summarize(preds, a.weights),
	}
}

// Summarize combines per-hazard predictions into an overall assessment. The
// weighted score is renormalized over the hazards present.
func Summarize(preds []domain.HazardPrediction, weights map[domain.HazardType]float64) domain.OverallAssessment {
	overall := domain.OverallAssessment{
		RiskLevel:       domain.RiskLow,
		PriorityHazards: []domain.HazardType{},
		Recommendations: []string{},
	}
	if len(preds) == 0 {
		return overall
	}

	var weighted, total float64
	confidence := math.Inf(1)
	for _, p := range preds {
		w := weights[p.Hazard]
		weighted += p.RiskScore * w
		total += w
		confidence = math.Min(confidence, p.Confidence)
	}
	if total > 0 {
		overall.RiskScore = calc.Clip100(weighted / total)
	}
	overall.RiskLevel = domain.ClassifyRisk(overall.RiskScore)
	overall.Confidence = confidence

	ranked := append([]domain.HazardPrediction(nil), preds...)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].RiskScore > ranked[j].RiskScore })
	for _, p := range ranked {
		if p.RiskScore > PriorityRiskThreshold {
			overall.PriorityHazards = append(overall.PriorityHazards, p.Hazard)
		}
	}

	seen := make(map[string]bool)
	for _, p := range preds {
		for _, rec := range p.Recommendations {
			if len(overall.Recommendations) == maxOverallRecommendations {
				return overall
			}
			if seen[rec] {
				continue
			}
			seen[rec] = true
			overall.Recommendations = append(overall.Recommendations, rec)
		}
	}
	return overall
}
