package dispersion

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

const (
	gravity = 9.81 // m/s²

	// minDenominatorWind floors wind speed wherever it divides.
	minDenominatorWind = 0.5

	briggsCoefficient  = 1.6
	buoyancyFetch      = 50.0  // m, downwind distance at which rise is evaluated
	heightDistanceHalf = 100.0 // m, H_eff at which the distance factor reaches 1.5
	groundReductionLen = 200.0 // m, e-folding height of the ground reduction
	minGroundReduction = 0.1

	// Search window for the ground-level concentration maximum.
	searchNear    = 10.0   // m
	searchFar     = 5000.0 // m
	searchSamples = 60
)

// sigmaCoefficients parameterize σ = a·x·(1+b·x)^-0.5.
type sigmaCoefficients struct {
	a, b float64
}

// Briggs open-country fits, A (most dispersive) to F (least).
var (
	sigmaYCoefficients = map[string]sigmaCoefficients{
		"A": {0.22, 0.0001},
		"B": {0.16, 0.0001},
		"C": {0.11, 0.0001},
		"D": {0.08, 0.0001},
		"E": {0.06, 0.0001},
		"F": {0.04, 0.0001},
	}
	sigmaZCoefficients = map[string]sigmaCoefficients{
		"A": {0.20, 0},
		"B": {0.12, 0},
		"C": {0.08, 0.0002},
		"D": {0.06, 0.0015},
		"E": {0.03, 0.0003},
		"F": {0.016, 0.0003},
	}
)

// PlumeGeometry is the resolved release geometry of a scenario.
type PlumeGeometry struct {
	BuoyancyRise          float64 `json:"buoyancy_rise"`    // m
	EffectiveHeight       float64 `json:"effective_height"` // m
	HeightDistanceFactor  float64 `json:"height_distance_factor"`
	GroundReductionFactor float64 `json:"ground_reduction_factor"`
}

func resolveGeometry(s scenario) PlumeGeometry {
	rise := buoyancyRise(s.releaseTemperature, s.temperature, s.windSpeed)
	h := s.sourceHeight + rise
	return PlumeGeometry{
		BuoyancyRise:          rise,
		EffectiveHeight:       h,
		HeightDistanceFactor:  heightDistanceFactor(h),
		GroundReductionFactor: groundReductionFactor(h),
	}
}

// Sigmas returns σy and σz in metres at downwind distance x (metres).
func Sigmas(class string, x float64) DispersionCoefficients {
	if x <= 0 || math.IsNaN(x) {
		return DispersionCoefficients{}
	}
	cy, ok := sigmaYCoefficients[class]
	if !ok {
		cy = sigmaYCoefficients[DefaultStabilityClass]
	}
	cz, ok := sigmaZCoefficients[class]
	if !ok {
		cz = sigmaZCoefficients[DefaultStabilityClass]
	}
	return DispersionCoefficients{
		SigmaY: sigma(cy, x),
		SigmaZ: sigma(cz, x),
	}
}

func sigma(c sigmaCoefficients, x float64) float64 {
	return c.a * x / math.Sqrt(1+c.b*x)
}

// buoyancyRise is a simplified Briggs rise for a release warmer than the
// surrounding air. The rise depends on the temperature differential only, so
// hazard distance stays proportional to the square root of release rate.
// Cold or neutral releases do not rise.
func buoyancyRise(releaseC, ambientC, wind float64) float64 {
	releaseK := releaseC + kelvinOffset
	deltaT := releaseC - ambientC
	if deltaT <= 0 || releaseK <= 0 {
		return 0
	}
	flux := gravity * deltaT / releaseK
	rise := briggsCoefficient * math.Cbrt(flux) * math.Pow(buoyancyFetch, 2.0/3.0) / windDenominator(wind)
	return finite(rise, 0)
}

// heightDistanceFactor stretches hazard distance for elevated releases: the
// ground-level maximum moves downwind as the plume centreline rises.
func heightDistanceFactor(h float64) float64 {
	if h <= 0 {
		return 1
	}
	return 1 + h/(h+heightDistanceHalf)
}

// groundReductionFactor lowers threshold concentrations near an elevated
// source, where the plume has not yet reached the ground.
func groundReductionFactor(h float64) float64 {
	if h <= 0 {
		return 1
	}
	return math.Max(minGroundReduction, math.Exp(-h/groundReductionLen))
}

func windDenominator(u float64) float64 {
	return math.Max(minDenominatorWind, finite(u, minDenominatorWind))
}

// groundConcentration is the Gaussian plume ground-level centreline
// concentration (mg/m³) at x metres for a release of rate kg/min at
// effective height h.
func groundConcentration(class string, rate, wind, h, x float64) float64 {
	sig := Sigmas(class, x)
	if sig.SigmaY <= 0 || sig.SigmaZ <= 0 {
		return 0
	}
	gramsPerSecond := rate * 1000 / 60
	c := gramsPerSecond / (math.Pi * sig.SigmaY * sig.SigmaZ * windDenominator(wind))
	c *= math.Exp(-h * h / (2 * sig.SigmaZ * sig.SigmaZ))
	return finite(c*1000, 0)
}

// maximumConcentration searches log-spaced distances for the largest
// ground-level concentration, scaled by indoor containment.
func maximumConcentration(s scenario, g PlumeGeometry, env EnvironmentalFactors) float64 {
	xs := floats.LogSpan(make([]float64, searchSamples), searchNear, searchFar)
	cs := make([]float64, len(xs))
	for i, x := range xs {
		cs[i] = groundConcentration(s.stability, s.releaseRate, s.windSpeed, g.EffectiveHeight, x)
	}
	return finite(floats.Max(cs)*env.Containment, 0)
}

func pow(x, y float64) float64 {
	return finite(math.Pow(x, y), 1)
}
