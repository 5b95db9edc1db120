package domain

import (
	"fmt"
	"strings"
)

// HazardType names a natural hazard the engine can score.
type HazardType string

const (
	HazardWildfire  HazardType = "wildfire"
	HazardFlood     HazardType = "flood"
	HazardLandslide HazardType = "landslide"
)

// AllHazards returns every supported hazard in assessment order.
func AllHazards() []HazardType {
	return []HazardType{HazardWildfire, HazardFlood, HazardLandslide}
}

// ParseHazardType normalizes s and returns the matching HazardType.
func ParseHazardType(s string) (HazardType, error) {
	switch h := HazardType(strings.ToLower(strings.TrimSpace(s))); h {
	case HazardWildfire, HazardFlood, HazardLandslide:
		return h, nil
	default:
		return "", fmt.Errorf("unknown hazard type %q", s)
	}
}

// ParseHazardList parses a comma-separated hazard list, dropping duplicates.
func ParseHazardList(s string) ([]HazardType, error) {
	var out []HazardType
	seen := make(map[HazardType]bool)
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		h, err := ParseHazardType(part)
		if err != nil {
			return nil, err
		}
		if seen[h] {
			continue
		}
		seen[h] = true
		out = append(out, h)
	}
	return out, nil
}

// RawFeatureMap holds named numeric observations for one area of interest.
// Absent keys are valid and mean "use the documented default".
type RawFeatureMap map[string]float64
