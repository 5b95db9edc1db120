package calc

import "math"

// StabilityFactor approximates an infinite-slope factor of safety: resisting
// forces (cohesion plus friction) over the downslope driving force, discounted
// by the risk score. Below 1 indicates likely failure.
func StabilityFactor(slopeDeg, cohesion, frictionAngleDeg, risk float64) float64 {
	slope := Clamp(slopeDeg, 1, 89) * math.Pi / 180
	friction := Clamp(frictionAngleDeg, 0, 89) * math.Pi / 180

	resisting := cohesion + math.Cos(slope)*math.Tan(friction)
	driving := math.Sin(slope)
	fs := resisting / driving * (1 - Clamp(risk, 0, 100)/200)
	return Clamp(fs, 0.5, 3)
}

// TriggerThreshold estimates the daily rainfall (mm/day) likely to trigger a
// slide. The estimate grows with slope angle and shrinks as permeability
// rises, with permeability below 10 treated as 10.
func TriggerThreshold(slopeDeg, permeability float64) float64 {
	slopeFactor := slopeDeg / 30
	permFactor := math.Max(0.5, permeability/20)
	return Clamp(50*slopeFactor/permFactor, 20, 200)
}

// LandslideAffectedArea estimates the area in hectares that a slide on a slope
// of the given length and width (metres) would affect.
func LandslideAffectedArea(slopeLength, slopeWidth, risk float64) float64 {
	hectares := math.Max(0, slopeLength) * math.Max(0, slopeWidth) / 10000
	return Clamp(hectares*Clamp(risk, 0, 100)/100, 0.1, 100)
}
