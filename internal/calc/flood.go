package calc

import "math"

// ReturnPeriod maps a flood risk score to an estimated return period in years.
func ReturnPeriod(risk float64) float64 {
	switch {
	case risk > 90:
		return 5
	case risk > 75:
		return 10
	case risk > 60:
		return 25
	case risk > 40:
		return 50
	default:
		return 100
	}
}

// MaxFloodDepth estimates peak inundation depth in metres. Flat, low-lying
// terrain deepens the estimate.
func MaxFloodDepth(risk, slope, elevation float64) float64 {
	depth := Clamp(risk, 0, 100) / 50
	if slope < 2 {
		depth *= 1.5
	}
	if elevation < 50 {
		depth *= 1.3
	}
	return Clamp(depth, 0.1, 5)
}

// FloodAffectedArea estimates the inundated area in km² from the risk score,
// the upstream basin area (km²) and the terrain slope (degrees).
func FloodAffectedArea(risk, basinArea, slope float64) float64 {
	base := Clamp(risk, 0, 100) / 10
	basinFactor := math.Min(2, math.Max(0, basinArea)/25)
	slopeFactor := math.Max(0.5, (10-slope)/10)
	return Clamp(base*basinFactor*slopeFactor, 0.5, 100)
}

// DrainageCapacity estimates remaining drainage capacity as a percentage.
// Dense natural drainage and gentle gradients help; impervious urban cover hurts.
func DrainageCapacity(drainageDensity, slope, urbanPercentage float64) float64 {
	base := drainageDensity * 100
	slopeFactor := math.Min(1.5, slope/10)
	urbanFactor := math.Max(0.5, (100-urbanPercentage)/100)
	return Clamp(base*slopeFactor*urbanFactor, 20, 100)
}
