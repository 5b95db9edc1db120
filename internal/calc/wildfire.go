package calc

const (
	MinSpreadRate = 0.0
	MaxSpreadRate = 15.0 // km/h

	MinFuelMoisture = 5.0
	MaxFuelMoisture = 50.0 // %

	// Fire weather index component weights.
	fwiTemperatureWeight = 0.30
	fwiWindWeight        = 0.30
	fwiDrynessWeight     = 0.25
	fwiDroughtWeight     = 0.15
)

// IgnitionProbability converts a 0..100 risk score into a probability.
func IgnitionProbability(risk float64) float64 {
	return Clamp(risk/100, 0, 1)
}

// SpreadRate estimates the rate of fire spread in km/h. Wind drives the base
// rate; dry air and steep terrain amplify it and the risk score scales it.
func SpreadRate(windSpeed, humidity, slope, risk float64) float64 {
	base := windSpeed * 0.3
	humidityFactor := Clamp((100-humidity)/100, 0.3, 1)
	slopeFactor := 1 + Clamp(slope, 0, 90)/100
	rate := base * humidityFactor * slopeFactor * Clamp(risk, 0, 100) / 100
	return Clamp(rate, MinSpreadRate, MaxSpreadRate)
}

// FuelMoisture adjusts a base fuel moisture content (%) for ambient humidity,
// temperature and recent precipitation.
func FuelMoisture(base, humidity, temperature, precipitation float64) float64 {
	m := base +
		(humidity-50)*0.2 -
		(temperature-25)*0.5 +
		precipitation*0.3
	return Clamp(m, MinFuelMoisture, MaxFuelMoisture)
}

// FireWeatherIndex combines normalized temperature, wind, dryness and drought
// components into a 0..100 index. drought is a 0..1 drought index.
func FireWeatherIndex(temperature, windSpeed, humidity, drought float64) float64 {
	temp := Clamp((temperature-20)/30, 0, 1)
	wind := Clamp(windSpeed/50, 0, 1)
	dryness := Clamp((100-humidity)/100, 0, 1)
	dry := Clamp(drought, 0, 1)

	idx := 100 * (fwiTemperatureWeight*temp +
		fwiWindWeight*wind +
		fwiDrynessWeight*dryness +
		fwiDroughtWeight*dry)
	return Clamp(idx, 0, 100)
}
