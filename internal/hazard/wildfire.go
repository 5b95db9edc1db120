package hazard

import (
	"github.com/couchcryptid/hazard-engine/internal/calc"
	"github.com/couchcryptid/hazard-engine/internal/domain"
)

// Wildfire fallback rule names, usable as override keys.
const (
	RuleTemperature = "temperature"
	RuleVegetation  = "vegetation"
	RuleWind        = "wind"
	RuleHumidity    = "humidity"
	RuleFuel        = "fuel"
)

// WildfireProfile returns the wildfire scoring profile.
func WildfireProfile() *Profile {
	return &Profile{
		Schema: &Schema{
			Hazard: domain.HazardWildfire,
			Inputs: []FeatureSpec{
				{"land_surface_temperature", 25},
				{"ndvi", 0.3},
				{"fuel_moisture", 20},
				{"wind_speed", 5},
				{"wind_direction", 180},
				{"slope", 10},
				{"aspect", 0},
				{"humidity", 60},
				{"precipitation_7day", 0},
				{"precipitation_30day", 0},
				{"fuel_load", 500},
				{"elevation", 0},
				{"road_distance", 0},
				{"settlement_distance", 0},
				{"fire_history_1year", 0},
				{"fire_history_5year", 0},
				{"drought_index", 0},
				{"temperature_anomaly", 0},
			},
			Aliases: map[string]string{
				"temperature": "land_surface_temperature",
				"lst":         "land_surface_temperature",
			},
			Features: []string{
				"land_surface_temperature",
				"ndvi",
				"fuel_moisture",
				"wind_speed",
				"wind_direction_sin",
				"wind_direction_cos",
				"slope",
				"aspect_sin",
				"aspect_cos",
				"humidity",
				"precipitation_7day",
				"precipitation_30day",
				"fuel_load",
				"elevation",
				"road_distance",
				"settlement_distance",
				"fire_history_1year",
				"fire_history_5year",
				"drought_index",
				"temperature_anomaly",
			},
			build: wildfireVector,
		},
		Rules: []Rule{
			{
				Name: RuleTemperature, Label: "High temperature", Weight: 0.25, Threshold: 30,
				Score: func(r Resolved) float64 { return (r["land_surface_temperature"] - 20) * 3 },
			},
			{
				Name: RuleVegetation, Label: "Dry vegetation", Weight: 0.20, Threshold: 40,
				Score: func(r Resolved) float64 { return (0.8 - r["ndvi"]) * 125 },
			},
			{
				Name: RuleWind, Label: "Strong winds", Weight: 0.20, Threshold: 40,
				Score: func(r Resolved) float64 { return r["wind_speed"] * 7 },
			},
			{
				Name: RuleHumidity, Label: "Low humidity", Weight: 0.20, Threshold: 30,
				Score: func(r Resolved) float64 { return (70 - r["humidity"]) * 1.5 },
			},
			{
				Name: RuleFuel, Label: "Low fuel moisture", Weight: 0.15, Threshold: 30,
				Score: func(r Resolved) float64 { return (30 - r["fuel_moisture"]) * 2.5 },
			},
		},
		FallbackConfidence: 75,
		FactorLabels: map[string]string{
			"land_surface_temperature": "High temperature",
			"ndvi":                     "Vegetation stress",
			"fuel_moisture":            "Low fuel moisture",
			"wind_speed":               "Strong winds",
			"humidity":                 "Low humidity",
			"slope":                    "Steep terrain",
			"fuel_load":                "High fuel load",
			"drought_index":            "Drought conditions",
			"fire_history_1year":       "Recent fire activity",
		},
		GenericFactor: "Multiple environmental factors",
		Recommendations: RecommendationSet{
			Urgent: []string{
				"Implement immediate fire watch protocols",
				"Prepare evacuation routes and plans",
				"Pre-position firefighting resources",
				"Issue red flag warnings to public",
			},
			Elevated: []string{
				"Enhanced fire monitoring and patrols",
				"Public fire safety warnings",
				"Restrict outdoor burning activities",
				"Increase firefighting crew readiness",
			},
			Routine: []string{
				"Routine fire monitoring",
				"Maintain firefighting equipment",
				"Monitor weather conditions closely",
			},
			Advisories: []Advisory{
				{Feature: "wind_speed", Threshold: 40, Text: "High wind advisory - extreme caution with any ignition sources"},
				{Feature: "humidity", Below: true, Threshold: 20, Text: "Low humidity conditions - increase moisture monitoring"},
			},
		},
		Metrics: wildfireMetrics,
		Default: DefaultAnswer{
			RiskScore:      50,
			Recommendation: "Use alternative fire risk assessment methods",
			Metrics: map[string]float64{
				"ignition_probability": 0.3,
				"spread_rate":          1.0,
				"fuel_moisture":        25,
				"fire_weather_index":   40,
			},
		},
	}
}

func wildfireVector(r Resolved) []float64 {
	return []float64{
		r["land_surface_temperature"],
		r["ndvi"],
		r["fuel_moisture"],
		r["wind_speed"],
		sinDeg(r["wind_direction"]),
		cosDeg(r["wind_direction"]),
		r["slope"],
		sinDeg(r["aspect"]),
		cosDeg(r["aspect"]),
		r["humidity"],
		r["precipitation_7day"],
		r["precipitation_30day"],
		r["fuel_load"],
		r["elevation"],
		r["road_distance"],
		r["settlement_distance"],
		r["fire_history_1year"],
		r["fire_history_5year"],
		droughtProxy(r),
		r["temperature_anomaly"],
	}
}

// droughtProxy is the larger of the reported drought index and the 30-day
// precipitation deficit against a 30 mm baseline, on [0,1].
func droughtProxy(r Resolved) float64 {
	deficit := (30 - r["precipitation_30day"]) / 30
	return calc.Clamp(max(r["drought_index"], deficit), 0, 1)
}

func wildfireMetrics(r Resolved, risk float64) map[string]float64 {
	temp := r["land_surface_temperature"]
	wind := r["wind_speed"]
	humidity := r["humidity"]
	return map[string]float64{
		"ignition_probability": calc.IgnitionProbability(risk),
		"spread_rate":          calc.SpreadRate(wind, humidity, r["slope"], risk),
		"fuel_moisture":        calc.FuelMoisture(r["fuel_moisture"], humidity, temp, r["precipitation_7day"]),
		"fire_weather_index":   calc.FireWeatherIndex(temp, wind, humidity, droughtProxy(r)),
	}
}
