package hazard

const (
	UrgentRiskThreshold   = 75.0
	ElevatedRiskThreshold = 50.0
)

// Advisory is a condition-specific recommendation appended to the tier list
// when a resolved feature crosses a threshold.
type Advisory struct {
	Feature   string
	Below     bool // fire when value < Threshold instead of > Threshold
	Threshold float64
	Text      string
}

func (a Advisory) applies(r Resolved) bool {
	v, ok := r[a.Feature]
	if !ok {
		return false
	}
	if a.Below {
		return v < a.Threshold
	}
	return v > a.Threshold
}

// RecommendationSet holds the tiered recommendations for one hazard.
type RecommendationSet struct {
	Urgent     []string
	Elevated   []string
	Routine    []string
	Advisories []Advisory
}

// Recommender selects recommendations by risk tier and conditions.
type Recommender struct {
	set RecommendationSet
}

// NewRecommender creates a Recommender over set.
func NewRecommender(set RecommendationSet) *Recommender {
	return &Recommender{set: set}
}

// Generate returns the tier list for risk (>= 75 urgent, >= 50 elevated,
// otherwise routine) followed by any advisories whose condition holds.
func (g *Recommender) Generate(risk float64, r Resolved) []string {
	var tier []string
	switch {
	case risk >= UrgentRiskThreshold:
		tier = g.set.Urgent
	case risk >= ElevatedRiskThreshold:
		tier = g.set.Elevated
	default:
		tier = g.set.Routine
	}

	out := make([]string, 0, len(tier)+len(g.set.Advisories))
	out = append(out, tier...)
	for _, a := range g.set.Advisories {
		if a.applies(r) {
			out = append(out, a.Text)
		}
	}
	return out
}
