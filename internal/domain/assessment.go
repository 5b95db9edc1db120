package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RiskLevel is the four-level classification of an overall risk score.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskModerate RiskLevel = "moderate"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// ClassifyRisk maps a 0..100 score onto a RiskLevel.
func ClassifyRisk(score float64) RiskLevel {
	switch {
	case score > 75:
		return RiskCritical
	case score > 50:
		return RiskHigh
	case score > 25:
		return RiskModerate
	default:
		return RiskLow
	}
}

// OverallAssessment summarizes the per-hazard predictions of one snapshot.
type OverallAssessment struct {
	RiskScore       float64      `json:"overall_risk_score"`
	RiskLevel       RiskLevel    `json:"risk_level"`
	PriorityHazards []HazardType `json:"priority_hazards"`
	Recommendations []string     `json:"recommendations"`
	Confidence      float64      `json:"assessment_confidence"`
}

// Assessment is the multi-hazard result published for a feature snapshot.
type Assessment struct {
	ID          string             `json:"id"`
	AOIID       string             `json:"aoi_id"`
	ObservedAt  time.Time          `json:"observed_at"`
	AssessedAt  time.Time          `json:"assessed_at"`
	Predictions []HazardPrediction `json:"predictions"`
	Overall     OverallAssessment  `json:"overall"`
}

// Prediction returns the prediction for h, if the assessment includes it.
func (a Assessment) Prediction(h HazardType) (HazardPrediction, bool) {
	for _, p := range a.Predictions {
		if p.Hazard == h {
			return p, true
		}
	}
	return HazardPrediction{}, false
}

// assessmentNamespace scopes name-based assessment IDs.
var assessmentNamespace = uuid.MustParse("6f1c2a9e-4b7d-5e3f-9a8c-2d1e0b4f7a63")

// AssessmentID derives a stable ID from the AOI and observation time, so
// reprocessing the same snapshot yields the same ID.
func AssessmentID(aoiID string, observedAt time.Time) string {
	name := fmt.Sprintf("%s|%s", aoiID, observedAt.UTC().Format(time.RFC3339Nano))
	return uuid.NewSHA1(assessmentNamespace, []byte(name)).String()
}
