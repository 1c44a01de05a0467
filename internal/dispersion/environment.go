package dispersion

// Reference conditions for the environmental multipliers.
const (
	referenceTemperatureK = 293.15
	standardPressure      = 1013.25 // hPa
	kelvinOffset          = 273.15
	temperatureExponent   = 1.0
	indoorContainment     = 0.3
)

// stabilityFactors scale hazard distance by Pasquill class: unstable air
// mixes the plume out quickly, stable air carries it further.
var stabilityFactors = map[string]float64{
	"A": 0.5,
	"B": 0.7,
	"C": 0.85,
	"D": 1.0,
	"E": 1.25,
	"F": 1.5,
}

var terrainFactors = map[string]float64{
	"urban":    0.8,
	"suburban": 0.9,
	"rural":    1.0,
	"water":    1.2,
	"forest":   0.7,
}

// EnvironmentalFactors are the dimensionless multipliers applied to the
// hazard distance. Total is their product.
type EnvironmentalFactors struct {
	Stability   float64 `json:"stability"`
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	Pressure    float64 `json:"pressure"`
	Terrain     float64 `json:"terrain"`
	Containment float64 `json:"containment"`
	Total       float64 `json:"total"`
}

func resolveEnvironment(s scenario) EnvironmentalFactors {
	f := EnvironmentalFactors{
		Stability:   stabilityFactor(s.stability),
		Temperature: temperatureFactor(s.releaseTemperature),
		Humidity:    humidityFactor(s.humidity),
		Pressure:    pressureFactor(s.pressure),
		Terrain:     terrainFactor(s.terrain),
		Containment: containmentFactor(s.indoor),
	}
	f.Total = f.Stability * f.Temperature * f.Humidity * f.Pressure * f.Terrain * f.Containment
	return f
}

func stabilityFactor(class string) float64 {
	if f, ok := stabilityFactors[class]; ok {
		return f
	}
	return stabilityFactors[DefaultStabilityClass]
}

// temperatureFactor grows with the temperature of the released material:
// warmer releases evaporate faster and carry more vapour downwind.
func temperatureFactor(celsius float64) float64 {
	kelvin := finite(celsius, DefaultTemperature) + kelvinOffset
	if kelvin <= 0 {
		kelvin = referenceTemperatureK
	}
	return pow(kelvin/referenceTemperatureK, temperatureExponent)
}

// humidityFactor maps 0–100 %RH linearly onto [1.4, 0.6]; moist air washes
// soluble vapours out of the plume.
func humidityFactor(rh float64) float64 {
	rh = clamp(finite(rh, DefaultHumidity), 0, 100)
	return 1.4 - 0.008*rh
}

func pressureFactor(hPa float64) float64 {
	hPa = finite(hPa, standardPressure)
	if hPa <= 0 {
		return 1
	}
	return clamp(hPa/standardPressure, 0.8, 1.2)
}

func terrainFactor(terrain string) float64 {
	if f, ok := terrainFactors[terrain]; ok {
		return f
	}
	return 1
}

func containmentFactor(indoor bool) float64 {
	if indoor {
		return indoorContainment
	}
	return 1
}
