package hazard

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/couchcryptid/hazard-engine/internal/calc"
	"github.com/couchcryptid/hazard-engine/internal/domain"
)

const weightTolerance = 1e-6

// Rule is one weighted sub-risk of a fallback rule set. Sub-risks are clipped
// to [0,100]; the rule is reported as a contributing factor when its sub-risk
// exceeds Threshold.
type Rule struct {
	Name      string
	Label     string
	Weight    float64
	Threshold float64
	Score     func(Resolved) float64
}

// FallbackRules scores raw features with deterministic weighted heuristics.
// It is used when no trained model is available.
type FallbackRules struct {
	schema     *Schema
	rules      []Rule
	confidence float64
	quietLabel string
}

// RuleResult is the output of one fallback evaluation.
type RuleResult struct {
	RiskScore  float64
	Confidence float64
	Factors    []string
	SubRisks   map[string]float64
}

// NewFallbackRules validates the rule set: weights must be non-negative and
// sum to 1.
func NewFallbackRules(s *Schema, rules []Rule, confidence float64, quietLabel string) (*FallbackRules, error) {
	if len(rules) == 0 {
		return nil, fmt.Errorf("%s: fallback rule set is empty", s.Hazard)
	}
	var total float64
	for _, r := range rules {
		if r.Weight < 0 {
			return nil, fmt.Errorf("%s: rule %q has negative weight %v", s.Hazard, r.Name, r.Weight)
		}
		total += r.Weight
	}
	if math.Abs(total-1) > weightTolerance {
		return nil, fmt.Errorf("%s: fallback rule weights sum to %v, want 1", s.Hazard, total)
	}
	return &FallbackRules{
		schema:     s,
		rules:      rules,
		confidence: confidence,
		quietLabel: quietLabel,
	}, nil
}

// Predict resolves raw against the schema and evaluates the rules.
func (f *FallbackRules) Predict(raw domain.RawFeatureMap) RuleResult {
	r, _ := f.schema.Resolve(raw)
	return f.Evaluate(r)
}

// Evaluate scores already-resolved features.
func (f *FallbackRules) Evaluate(r Resolved) RuleResult {
	res := RuleResult{
		Confidence: f.confidence,
		SubRisks:   make(map[string]float64, len(f.rules)),
	}
	var risk float64
	for _, rule := range f.rules {
		sub := calc.Clip100(rule.Score(r))
		res.SubRisks[rule.Name] = sub
		risk += sub * rule.Weight
		if sub > rule.Threshold {
			res.Factors = append(res.Factors, rule.Label)
		}
	}
	res.RiskScore = calc.Clip100(risk)
	if len(res.Factors) == 0 {
		res.Factors = []string{f.quietLabel}
	}
	return res
}

// applyRuleOverrides returns a copy of rules with weights and thresholds
// replaced by name. Unknown names are an error.
func applyRuleOverrides(rules []Rule, weights, thresholds map[string]float64) ([]Rule, error) {
	out := make([]Rule, len(rules))
	copy(out, rules)

	byName := make(map[string]int, len(out))
	for i, r := range out {
		byName[r.Name] = i
	}

	var unknown []string
	for name, w := range weights {
		i, ok := byName[name]
		if !ok {
			unknown = append(unknown, name)
			continue
		}
		out[i].Weight = w
	}
	for name, t := range thresholds {
		i, ok := byName[name]
		if !ok {
			unknown = append(unknown, name)
			continue
		}
		out[i].Threshold = t
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, fmt.Errorf("unknown fallback rules: %s", strings.Join(unknown, ", "))
	}
	return out, nil
}
