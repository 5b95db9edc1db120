package hazard

import (
	"math"

	"github.com/couchcryptid/hazard-engine/internal/calc"
	"github.com/couchcryptid/hazard-engine/internal/domain"
)

// soilPermeability is the base infiltration rate (mm/hr) by soil type.
var soilPermeability = []struct {
	key  string
	rate float64
}{
	{"soil_type_sand", 50},
	{"soil_type_sandy_loam", 25},
	{"soil_type_loam", 15},
	{"soil_type_clay_loam", 8},
	{"soil_type_clay", 3},
	{"soil_type_rock", 1},
}

var (
	landCover = CategoryGroup{
		Options: []string{"land_cover_urban", "land_cover_forest", "land_cover_agriculture", "land_cover_mixed"},
		Default: "land_cover_mixed",
	}
	soilType = CategoryGroup{
		Options: []string{
			"soil_type_sand", "soil_type_sandy_loam", "soil_type_loam",
			"soil_type_clay_loam", "soil_type_clay", "soil_type_rock",
		},
		Default: "soil_type_loam",
	}
)

// FloodProfile returns the flood scoring profile.
func FloodProfile() *Profile {
	return &Profile{
		Schema: &Schema{
			Hazard: domain.HazardFlood,
			Inputs: []FeatureSpec{
				{"precipitation_24h", 10},
				{"precipitation_7day", 25},
				{"precipitation_30day", 75},
				{"elevation", 100},
				{"slope", 5},
				{"aspect", 180},
				{"soil_moisture", 0.3},
				{"drainage_density", 0.5},
				{"river_distance", 2},
				{"urban_percentage", 15},
				{"basin_area", 50},
			},
			Categories: []CategoryGroup{landCover, soilType},
			Features: []string{
				"precipitation_24h",
				"precipitation_7day",
				"precipitation_30day",
				"elevation",
				"slope",
				"aspect_sin",
				"aspect_cos",
				"land_cover_urban",
				"land_cover_forest",
				"land_cover_agriculture",
				"soil_permeability",
				"drainage_density",
				"river_distance",
				"stream_order",
				"soil_moisture",
				"antecedent_precipitation_index",
				"urbanization_ratio",
				"impervious_surface_ratio",
				"basin_area",
				"flow_accumulation",
			},
			build: floodVector,
		},
		Rules: []Rule{
			{
				Name: "precipitation", Label: "Heavy precipitation", Weight: 0.35, Threshold: 50,
				Score: func(r Resolved) float64 { return r["precipitation_24h"] * 3 },
			},
			{
				Name: "elevation", Label: "Low elevation", Weight: 0.25, Threshold: 40,
				Score: func(r Resolved) float64 { return (200 - r["elevation"]) / 2 },
			},
			{
				Name: "terrain", Label: "Flat terrain", Weight: 0.20, Threshold: 30,
				Score: func(r Resolved) float64 { return (10 - r["slope"]) * 8 },
			},
			{
				Name: "drainage", Label: "Poor drainage", Weight: 0.15, Threshold: 40,
				Score: func(r Resolved) float64 { return (0.3 - r["drainage_density"]) * 200 },
			},
			{
				Name: "urban", Label: "Urban runoff", Weight: 0.05, Threshold: 20,
				Score: func(r Resolved) float64 { return r["urban_percentage"] * 1.5 },
			},
		},
		FallbackConfidence: 70,
		FactorLabels: map[string]string{
			"precipitation_24h":              "Heavy rainfall",
			"elevation":                      "Low elevation",
			"slope":                          "Flat terrain",
			"drainage_density":               "Poor drainage",
			"land_cover_urban":               "Urban runoff",
			"soil_permeability":              "Low soil permeability",
			"river_distance":                 "River proximity",
			"antecedent_precipitation_index": "Saturated conditions",
		},
		GenericFactor: "Multiple hydrological factors",
		Recommendations: RecommendationSet{
			Urgent: []string{
				"Issue flood warnings to residents",
				"Activate emergency response protocols",
				"Prepare evacuation routes",
				"Monitor water levels continuously",
			},
			Elevated: []string{
				"Monitor weather and water levels",
				"Prepare flood barriers and sandbags",
				"Alert emergency services",
				"Check drainage system capacity",
			},
			Routine: []string{
				"Routine monitoring of precipitation",
				"Maintain drainage infrastructure",
				"Review flood preparedness plans",
			},
			Advisories: []Advisory{
				{Feature: "urban_percentage", Threshold: 50, Text: "Improve urban drainage and stormwater management"},
				{Feature: "drainage_density", Below: true, Threshold: 0.3, Text: "Enhance natural drainage systems"},
			},
		},
		Metrics: floodMetrics,
		Default: DefaultAnswer{
			RiskScore:      40,
			Recommendation: "Use alternative flood assessment methods",
			Metrics: map[string]float64{
				"return_period":     50,
				"max_depth":         0.8,
				"affected_area":     5,
				"drainage_capacity": 60,
			},
		},
	}
}

func floodVector(r Resolved) []float64 {
	urbanization := r["urban_percentage"] / 100
	return []float64{
		r["precipitation_24h"],
		r["precipitation_7day"],
		r["precipitation_30day"],
		r["elevation"],
		r["slope"],
		sinDeg(r["aspect"]),
		cosDeg(r["aspect"]),
		r["land_cover_urban"],
		r["land_cover_forest"],
		r["land_cover_agriculture"],
		estimateSoilPermeability(r),
		r["drainage_density"],
		r["river_distance"],
		estimateStreamOrder(r["river_distance"], r["drainage_density"]),
		r["soil_moisture"],
		antecedentPrecipitationIndex(r["precipitation_7day"], r["precipitation_30day"]),
		urbanization,
		urbanization * 0.7,
		r["basin_area"],
		estimateFlowAccumulation(r["elevation"], r["slope"], r["basin_area"]),
	}
}

// estimateSoilPermeability returns an explicit soil_permeability if supplied,
// otherwise the soil type's base rate adjusted for land cover.
func estimateSoilPermeability(r Resolved) float64 {
	if v, ok := r["soil_permeability"]; ok {
		return v
	}
	rate := 15.0
	for _, s := range soilPermeability {
		if r[s.key] > 0 {
			rate = s.rate
			break
		}
	}
	switch {
	case r["land_cover_urban"] > 0:
		rate *= 0.3
	case r["land_cover_forest"] > 0:
		rate *= 1.5
	}
	return rate
}

// estimateStreamOrder approximates Strahler order from river proximity (km)
// and drainage density.
func estimateStreamOrder(riverDistance, drainageDensity float64) float64 {
	d := math.Trunc(drainageDensity * 10)
	switch {
	case riverDistance < 0.5:
		return calc.Clamp(d, 3, 6)
	case riverDistance < 2:
		return calc.Clamp(math.Trunc(drainageDensity*8), 2, 4)
	default:
		return calc.Clamp(math.Trunc(drainageDensity*5), 1, 2)
	}
}

func antecedentPrecipitationIndex(p7, p30 float64) float64 {
	return p7*0.7 + (p30-p7)*0.3
}

// estimateFlowAccumulation is higher for low, flat terrain in large basins.
func estimateFlowAccumulation(elevation, slope, basinArea float64) float64 {
	acc := (1000 - elevation) / 1000 *
		(10 - math.Min(slope, 10)) / 10 *
		math.Log(math.Max(0, basinArea)+1)
	return math.Max(0, acc)
}

func floodMetrics(r Resolved, risk float64) map[string]float64 {
	return map[string]float64{
		"return_period":     calc.ReturnPeriod(risk),
		"max_depth":         calc.MaxFloodDepth(risk, r["slope"], r["elevation"]),
		"affected_area":     calc.FloodAffectedArea(risk, r["basin_area"], r["slope"]),
		"drainage_capacity": calc.DrainageCapacity(r["drainage_density"], r["slope"], r["urban_percentage"]),
	}
}
