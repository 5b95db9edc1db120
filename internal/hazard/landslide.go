package hazard

import (
	"math"

	"github.com/couchcryptid/hazard-engine/internal/calc"
	"github.com/couchcryptid/hazard-engine/internal/domain"
)

var geology = CategoryGroup{
	Options: []string{"geology_sedimentary", "geology_igneous", "geology_metamorphic"},
	Default: "geology_sedimentary",
}

// geologyRisk is the fallback sub-risk for each rock class.
var geologyRisk = []struct {
	key  string
	risk float64
}{
	{"geology_metamorphic", 60},
	{"geology_sedimentary", 40},
	{"geology_igneous", 20},
}

// LandslideProfile returns the landslide susceptibility profile.
func LandslideProfile() *Profile {
	return &Profile{
		Schema: &Schema{
			Hazard: domain.HazardLandslide,
			Inputs: []FeatureSpec{
				{"elevation", 500},
				{"slope", 15},
				{"aspect", 180},
				{"aspect_variation", 10},
				{"precipitation_annual", 1000},
				{"precipitation_intensity", 50},
				{"ndvi", 0.6},
				{"soil_clay_content", 25},
				{"soil_sand_content", 35},
				{"soil_cohesion", 20},
				{"soil_permeability", 10},
				{"friction_angle", 30},
				{"distance_to_faults", 10},
				{"distance_to_roads", 2},
				{"drainage_density", 0.5},
				{"contributing_area", 100},
				{"basin_length", 1000},
				{"slope_length", 100},
				{"slope_width", 50},
			},
			Categories: []CategoryGroup{geology, landCover},
			Features: []string{
				"elevation",
				"slope_angle",
				"aspect_sin",
				"aspect_cos",
				"plan_curvature",
				"profile_curvature",
				"topographic_wetness_index",
				"stream_power_index",
				"geology_sedimentary",
				"geology_igneous",
				"geology_metamorphic",
				"soil_clay_content",
				"soil_sand_content",
				"land_cover_forest",
				"land_cover_urban",
				"land_cover_agriculture",
				"precipitation_annual",
				"precipitation_intensity",
				"distance_to_faults",
				"distance_to_roads",
				"ndvi",
				"drainage_density",
				"relief_ratio",
				"slope_length",
			},
			build: landslideVector,
		},
		Rules: []Rule{
			{
				Name: "slope", Label: "Steep slopes", Weight: 0.35, Threshold: 40,
				Score: func(r Resolved) float64 { return (r["slope"] - 10) * 4 },
			},
			{
				Name: "geology", Label: "Unstable geology", Weight: 0.25, Threshold: 30,
				Score: geologySubRisk,
			},
			{
				Name: "precipitation", Label: "High precipitation", Weight: 0.20, Threshold: 40,
				Score: func(r Resolved) float64 { return (r["precipitation_annual"] - 500) / 20 },
			},
			{
				Name: "soil", Label: "Clay-rich soils", Weight: 0.15, Threshold: 30,
				Score: func(r Resolved) float64 { return math.Min(50, r["soil_clay_content"]*1.5) },
			},
			{
				// Capped at 50, so it weighs in but never reports as a factor.
				Name: "elevation", Label: "High elevation", Weight: 0.05, Threshold: 50,
				Score: func(r Resolved) float64 { return calc.Clamp((r["elevation"]-200)/20, 0, 50) },
			},
		},
		FallbackConfidence: 70,
		FactorLabels: map[string]string{
			"slope_angle":               "Steep slopes",
			"geology_sedimentary":       "Sedimentary geology",
			"precipitation_annual":      "High precipitation",
			"soil_clay_content":         "Clay-rich soils",
			"distance_to_faults":        "Proximity to faults",
			"topographic_wetness_index": "Water accumulation",
			"plan_curvature":            "Slope curvature",
			"distance_to_roads":         "Road cuts",
		},
		GenericFactor: "Multiple geological factors",
		Recommendations: RecommendationSet{
			Urgent: []string{
				"Immediate evacuation of high-risk areas",
				"Install early warning systems",
				"Implement emergency response protocols",
				"Restrict access to unstable slopes",
			},
			Elevated: []string{
				"Enhanced slope monitoring",
				"Install drainage systems",
				"Vegetation stabilization measures",
				"Regular geotechnical assessments",
			},
			Routine: []string{
				"Routine slope inspections",
				"Maintain existing drainage",
				"Monitor precipitation levels",
			},
			Advisories: []Advisory{
				{Feature: "slope", Threshold: 30, Text: "Consider slope angle reduction or terracing"},
				{Feature: "precipitation_annual", Threshold: 1500, Text: "Improve surface and subsurface drainage"},
			},
		},
		Metrics: landslideMetrics,
		Default: DefaultAnswer{
			RiskScore:      45,
			Recommendation: "Use alternative landslide assessment methods",
			Metrics: map[string]float64{
				"stability_factor":  1.5,
				"trigger_threshold": 75,
				"affected_area":     2,
			},
		},
	}
}

func geologySubRisk(r Resolved) float64 {
	for _, g := range geologyRisk {
		if r[g.key] > 0 {
			return g.risk
		}
	}
	return 0
}

func landslideVector(r Resolved) []float64 {
	slope := r["slope"]
	elevation := r["elevation"]
	return []float64{
		elevation,
		slope,
		sinDeg(r["aspect"]),
		cosDeg(r["aspect"]),
		(r["aspect_variation"] / 180) * (slope / 45) * 0.1,
		(slope / 45) * (elevation / 1000) * 0.05,
		topographicWetnessIndex(slope, r["contributing_area"]),
		streamPowerIndex(slope, r["contributing_area"]),
		r["geology_sedimentary"],
		r["geology_igneous"],
		r["geology_metamorphic"],
		r["soil_clay_content"],
		r["soil_sand_content"],
		r["land_cover_forest"],
		r["land_cover_urban"],
		r["land_cover_agriculture"],
		r["precipitation_annual"],
		r["precipitation_intensity"],
		r["distance_to_faults"],
		r["distance_to_roads"],
		r["ndvi"],
		r["drainage_density"],
		reliefRatio(r),
		r["slope_length"] * math.Sin(calc.Clamp(slope, 0, 90)*math.Pi/180),
	}
}

// topographicWetnessIndex is ln(a / tan β) on [0,20].
func topographicWetnessIndex(slopeDeg, contributingArea float64) float64 {
	tanB := math.Tan(calc.Clamp(slopeDeg, 0.1, 89.9) * math.Pi / 180)
	return calc.Clamp(math.Log(math.Max(contributingArea, 1e-6)/tanB), 0, 20)
}

// streamPowerIndex is a · tan β, capped at 1000.
func streamPowerIndex(slopeDeg, contributingArea float64) float64 {
	tanB := math.Tan(calc.Clamp(slopeDeg, 0, 89.9) * math.Pi / 180)
	return math.Min(1000, contributingArea*tanB)
}

// reliefRatio uses max_elevation/min_elevation when supplied and assumes
// 100 m either side of the site elevation otherwise.
func reliefRatio(r Resolved) float64 {
	hi, ok := r["max_elevation"]
	if !ok {
		hi = r["elevation"] + 100
	}
	lo, ok := r["min_elevation"]
	if !ok {
		lo = r["elevation"] - 100
	}
	length := r["basin_length"]
	if length <= 0 {
		return 0.1
	}
	return (hi - lo) / length
}

func landslideMetrics(r Resolved, risk float64) map[string]float64 {
	return map[string]float64{
		"stability_factor":  calc.StabilityFactor(r["slope"], r["soil_cohesion"], r["friction_angle"], risk),
		"trigger_threshold": calc.TriggerThreshold(r["slope"], r["soil_permeability"]),
		"affected_area":     calc.LandslideAffectedArea(r["slope_length"], r["slope_width"], risk),
	}
}
