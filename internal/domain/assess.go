package domain

// AssessRelease runs the dispersion engine for a parsed report and assembles
// the hazard assessment: zones, detailed or multi-source results, a sensor
// plan of sensorBudget sensors, and the health impact of the peak ground
// concentration over the exposure time.
func AssessRelease(report ReleaseReport, engine Engine, sensorBudget int) HazardAssessment {
	a := HazardAssessment{
		ID:              generateID(report.ID, report.Chemical, report.Location.Lat, report.Location.Lng, report.TotalReleaseRate()),
		ReportID:        report.ID,
		Facility:        report.Facility,
		Chemical:        report.Chemical,
		Location:        report.Location,
		ReportedAt:      report.ReportedAt,
		ExposureMinutes: report.exposureMinutes(),
	}

	healthChemical := report.Chemical
	if m, ok := report.MultiSource(); ok {
		multi := engine.CalculateMultipleSourceDispersion(m)
		a.MultiSource = &multi
		a.Zones = multi.CombinedZones
		a.Sensors = engine.OptimizeSensorPlacementMultipleSources(m, sensorBudget)

		// The most concentrated source drives the health classification.
		for _, r := range multi.IndividualResults {
			if r.Results.MaximumConcentration <= a.PeakConcentration {
				continue
			}
			a.PeakConcentration = r.Results.MaximumConcentration
			healthChemical = report.Chemical
			if r.Source.Chemical != "" {
				healthChemical = r.Source.Chemical
			}
		}
	} else {
		detail := engine.CalculateDetailedDispersion(report.ModelParameters)
		a.Detail = &detail
		a.Zones = detail.Zones
		a.Sensors = engine.GenerateSensorRecommendations(report.ModelParameters, detail.Zones.ZoneData(), sensorBudget)
		a.PeakConcentration = detail.MaximumConcentration
	}

	a.HealthImpact = engine.CalculateHealthImpact(a.PeakConcentration, a.ExposureMinutes, healthChemical)
	a.ProcessedAt = clock.Now()
	return a
}
