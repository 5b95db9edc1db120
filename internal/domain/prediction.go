package domain

import (
	"encoding/json"
	"fmt"
	"math"
)

// ModelStatus records which scoring path produced a prediction.
type ModelStatus string

const (
	StatusEnsemble ModelStatus = "ensemble"
	StatusFallback ModelStatus = "fallback"
	StatusDefault  ModelStatus = "default"
)

// HazardPrediction is the scored result for one hazard.
//
// Metrics holds the hazard's derived physical quantities (for wildfire:
// ignition_probability, spread_rate, fuel_moisture, fire_weather_index).
// They are flattened into the top-level JSON object rather than nested.
type HazardPrediction struct {
	Hazard              HazardType         `json:"hazard_type"`
	RiskScore           float64            `json:"risk_score"`
	Confidence          float64            `json:"confidence"`
	ContributingFactors []string           `json:"contributing_factors"`
	Recommendations     []string           `json:"recommendations"`
	ModelStatus         ModelStatus        `json:"model_status"`
	Metrics             map[string]float64 `json:"-"`
}

// predictionFields are the fixed JSON keys; anything else is a metric.
var predictionFields = map[string]bool{
	"hazard_type":          true,
	"risk_score":           true,
	"confidence":           true,
	"contributing_factors": true,
	"recommendations":      true,
	"model_status":         true,
}

// Metric returns the named derived metric and whether it is present.
func (p HazardPrediction) Metric(name string) (float64, bool) {
	v, ok := p.Metrics[name]
	return v, ok
}

// Validate checks the output invariants every prediction must satisfy:
// finite scores on 0..100, finite metrics, and non-empty factor and
// recommendation lists.
func (p HazardPrediction) Validate() error {
	if !inUnitRange(p.RiskScore, 100) {
		return fmt.Errorf("risk_score %v outside [0,100]", p.RiskScore)
	}
	if !inUnitRange(p.Confidence, 100) {
		return fmt.Errorf("confidence %v outside [0,100]", p.Confidence)
	}
	if len(p.ContributingFactors) == 0 {
		return fmt.Errorf("contributing_factors is empty")
	}
	if len(p.Recommendations) == 0 {
		return fmt.Errorf("recommendations is empty")
	}
	for name, v := range p.Metrics {
		if predictionFields[name] {
			return fmt.Errorf("metric %q shadows a prediction field", name)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("metric %q is not finite", name)
		}
	}
	return nil
}

func inUnitRange(v, upper float64) bool {
	return !math.IsNaN(v) && v >= 0 && v <= upper
}

// MarshalJSON flattens Metrics alongside the fixed prediction fields.
func (p HazardPrediction) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(predictionFields)+len(p.Metrics))
	for k, v := range p.Metrics {
		out[k] = v
	}
	factors := p.ContributingFactors
	if factors == nil {
		factors = []string{}
	}
	recs := p.Recommendations
	if recs == nil {
		recs = []string{}
	}
	out["hazard_type"] = p.Hazard
	out["risk_score"] = p.RiskScore
	out["confidence"] = p.Confidence
	out["contributing_factors"] = factors
	out["recommendations"] = recs
	out["model_status"] = p.ModelStatus
	return json.Marshal(out)
}

// UnmarshalJSON reads the fixed fields and collects every other numeric key
// into Metrics.
func (p *HazardPrediction) UnmarshalJSON(data []byte) error {
	type plain HazardPrediction
	var base plain
	if err := json.Unmarshal(data, &base); err != nil {
		return fmt.Errorf("decode prediction: %w", err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("decode prediction fields: %w", err)
	}

	metrics := make(map[string]float64)
	for k, raw := range fields {
		if predictionFields[k] {
			continue
		}
		var v float64
		if err := json.Unmarshal(raw, &v); err != nil {
			return fmt.Errorf("decode metric %q: %w", k, err)
		}
		metrics[k] = v
	}

	*p = HazardPrediction(base)
	p.Metrics = metrics
	return nil
}
