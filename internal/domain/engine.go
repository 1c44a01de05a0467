package domain

import "github.com/couchcryptid/hazmat-dispersion/internal/dispersion"

// Engine runs the dispersion model for a release report. *dispersion.Engine
// satisfies it.
type Engine interface {
	CalculateDetailedDispersion(p dispersion.ModelParameters) dispersion.DetailedCalculationResults
	GenerateSensorRecommendations(p dispersion.ModelParameters, zones dispersion.ZoneData, count int) []dispersion.SensorRecommendation

	CalculateMultipleSourceDispersion(m dispersion.MultiSourceParams) dispersion.MultipleSourceResults
	OptimizeSensorPlacementMultipleSources(m dispersion.MultiSourceParams, budget int) []dispersion.SensorRecommendation

	// CalculateHealthImpact classifies an exposure of concentration mg/m³
	// lasting exposureMinutes.
	CalculateHealthImpact(concentration, exposureMinutes float64, chemicalID string) dispersion.HealthImpact
}
