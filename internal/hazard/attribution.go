package hazard

import "strings"

// Attributor turns model feature indices or triggered rule labels into
// human-readable contributing factors.
type Attributor struct {
	features []string
	labels   map[string]string
	generic  string
}

// NewAttributor creates an Attributor mapping schema feature names through
// labels. generic is returned when nothing maps.
func NewAttributor(s *Schema, labels map[string]string, generic string) *Attributor {
	return &Attributor{features: s.Features, labels: labels, generic: generic}
}

// FromImportances labels the given feature indices in order. Features with no
// label and duplicate labels are skipped.
func (a *Attributor) FromImportances(indices []int) []string {
	out := make([]string, 0, len(indices))
	for _, i := range indices {
		if i < 0 || i >= len(a.features) {
			continue
		}
		out = append(out, a.labels[a.features[i]])
	}
	return a.finish(out)
}

// FromLabels cleans rule labels: blanks and duplicates are dropped.
func (a *Attributor) FromLabels(labels []string) []string {
	return a.finish(append([]string(nil), labels...))
}

func (a *Attributor) finish(labels []string) []string {
	out := labels[:0]
	seen := make(map[string]bool, len(labels))
	for _, l := range labels {
		l = strings.TrimSpace(l)
		if l == "" || seen[l] {
			continue
		}
		seen[l] = true
		out = append(out, l)
	}
	if len(out) == 0 {
		return []string{a.generic}
	}
	return out
}
