package dispersion

import (
	"math"

	"github.com/couchcryptid/hazmat-dispersion/internal/chemical"
)

const (
	baseDistanceScale = 5.0  // km for the reference release in neutral air
	referenceRate     = 10.0 // kg/min
	windExponent      = -0.8
	minBaseDistance   = 0.01 // km

	redFraction       = 0.3
	orangeFraction    = 0.6
	yellowFraction    = 1.0
	minOrangeToRed    = 1.5
	minYellowToOrange = 1.3

	fallbackRedConcentration = 50.0 // mg/m³
	orangeFallbackRatio      = 0.5
	yellowFallbackRatio      = 0.25
	minZoneConcentration     = 1.0 // mg/m³

	airMolecularWeight = 29.0
	atmosphereKPa      = 101.325
	minChemicalFactor  = 0.8
	maxChemicalFactor  = 2.0

	minWindSpread = 0.2
	maxAspect     = 3.0

	defaultPopulationDensity = 500.0 // people/km²
)

var populationDensities = map[string]float64{
	"urban":    3000,
	"suburban": 1000,
	"rural":    100,
	"water":    10,
	"forest":   50,
}

// hazardModel carries the intermediate multipliers of one scenario so that
// downstream stages can reuse them.
type hazardModel struct {
	env            EnvironmentalFactors
	geometry       PlumeGeometry
	chemicalFactor float64
	rateFactor     float64
	windFactor     float64
	baseDistance   float64 // km
	thresholds     [3]float64
}

func buildHazardModel(s scenario) hazardModel {
	m := hazardModel{
		env:            resolveEnvironment(s),
		geometry:       resolveGeometry(s),
		chemicalFactor: chemicalHazardFactor(s.props, s.knownChemical),
		rateFactor:     math.Sqrt(s.releaseRate / referenceRate),
		windFactor:     math.Pow(windDenominator(s.windSpeed), windExponent),
	}
	base := baseDistanceScale * m.chemicalFactor * m.rateFactor * m.windFactor *
		m.env.Total * m.geometry.HeightDistanceFactor
	m.baseDistance = math.Max(minBaseDistance, finite(base, minBaseDistance))
	m.thresholds = zoneThresholds(s.props, s.knownChemical, m.geometry.GroundReductionFactor)
	return m
}

// chemicalHazardFactor rises for light, volatile chemicals, which form
// larger vapour clouds per kilogram released.
func chemicalHazardFactor(p chemical.Properties, known bool) float64 {
	if !known || p.MolecularWeight <= 0 || p.VaporPressure <= 0 {
		return 1
	}
	f := math.Sqrt(airMolecularWeight/p.MolecularWeight) * math.Pow(p.VaporPressure/atmosphereKPa, 0.25)
	return clamp(finite(f, 1), minChemicalFactor, maxChemicalFactor)
}

// zoneDistances splits the base distance (km) into strictly ordered zone
// boundaries (km).
func zoneDistances(base float64) (red, orange, yellow float64) {
	red = redFraction * base
	orange = math.Max(orangeFraction*base, minOrangeToRed*red)
	yellow = math.Max(yellowFraction*base, minYellowToOrange*orange)
	return red, orange, yellow
}

// zoneThresholds returns the red, orange and yellow boundary concentrations
// in mg/m³, falling back down the guideline ladder when values are missing.
func zoneThresholds(p chemical.Properties, known bool, groundReduction float64) [3]float64 {
	toMg := func(ppm float64) float64 {
		if !known || ppm <= 0 {
			return 0
		}
		return p.ToMgPerM3(ppm)
	}

	red := toMg(p.AEGL3)
	if red <= 0 {
		red = toMg(p.IDLH)
	}
	if red <= 0 {
		red = fallbackRedConcentration
	}
	orange := toMg(p.AEGL2)
	if orange <= 0 {
		orange = orangeFallbackRatio * red
	}
	yellow := toMg(p.AEGL1)
	if yellow <= 0 {
		yellow = yellowFallbackRatio * red
	}

	scale := func(c float64) float64 {
		return math.Max(minZoneConcentration, finite(c*groundReduction, minZoneConcentration))
	}
	red, orange, yellow = scale(red), scale(orange), scale(yellow)
	orange = math.Min(orange, red)
	yellow = math.Min(yellow, orange)
	return [3]float64{red, orange, yellow}
}

// ellipseArea is the footprint (km²) of an elongated plume reaching
// distance km: high wind narrows and lengthens it.
func ellipseArea(distance, wind float64) float64 {
	u := windDenominator(wind)
	spread := math.Max(minWindSpread, 1/math.Sqrt(u))
	aspect := math.Min(maxAspect, u/2)
	return math.Pi * distance * distance * spread * aspect
}

func populationDensity(terrain string) float64 {
	if d, ok := populationDensities[terrain]; ok {
		return d
	}
	return defaultPopulationDensity
}

// zones resolves the three detailed zones. Outer areas exclude the inner
// ones so the footprints partition the affected region.
func (m hazardModel) zones(s scenario) DetailedZones {
	red, orange, yellow := zoneDistances(m.baseDistance)

	redArea := ellipseArea(red, s.windSpeed)
	orangeArea := ellipseArea(orange, s.windSpeed)
	yellowArea := ellipseArea(yellow, s.windSpeed)
	density := populationDensity(s.terrain)

	detail := func(distance, conc, area float64) ZoneDetail {
		return ZoneDetail{
			Zone:             Zone{Distance: distance * 1000, Concentration: conc},
			Area:             area,
			PopulationAtRisk: area * density,
		}
	}
	return DetailedZones{
		Red:    detail(red, m.thresholds[0], redArea),
		Orange: detail(orange, m.thresholds[1], orangeArea-redArea),
		Yellow: detail(yellow, m.thresholds[2], yellowArea-orangeArea),
	}
}
