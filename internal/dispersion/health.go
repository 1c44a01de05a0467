package dispersion

import (
	"fmt"
	"math"

	"github.com/couchcryptid/hazmat-dispersion/internal/chemical"
)

// Dose bands (mg·min/m³) used when no exposure guideline is available.
const (
	fatalDose  = 1000.0
	highDose   = 500.0
	mediumDose = 100.0
)

// classifyHealthImpact grades an exposure of conc mg/m³ for minutes against
// the chemical's AEGL ladder, most severe first.
func classifyHealthImpact(conc, minutes float64, p chemical.Properties, known bool) HealthImpact {
	conc = math.Max(0, finite(conc, 0))
	minutes = math.Max(0, finite(minutes, 0))

	if !known || p.MolecularWeight <= 0 || (p.AEGL1 <= 0 && p.AEGL2 <= 0 && p.AEGL3 <= 0) {
		return classifyByDose(conc, minutes)
	}

	ppm := p.ToPPM(conc)
	switch {
	case p.AEGL3 > 0 && ppm > p.AEGL3:
		return HealthImpact{
			Severity:    SeverityFatal,
			Description: fmt.Sprintf("%.3g ppm exceeds AEGL-3 (%g ppm): life-threatening effects or death possible", ppm, p.AEGL3),
		}
	case p.AEGL2 > 0 && ppm > p.AEGL2:
		return HealthImpact{
			Severity:    SeverityHigh,
			Description: fmt.Sprintf("%.3g ppm exceeds AEGL-2 (%g ppm): irreversible or long-lasting effects, impaired ability to escape", ppm, p.AEGL2),
		}
	case p.AEGL1 > 0 && ppm > p.AEGL1:
		return HealthImpact{
			Severity:    SeverityMedium,
			Description: fmt.Sprintf("%.3g ppm exceeds AEGL-1 (%g ppm): notable discomfort and irritation, transient and reversible", ppm, p.AEGL1),
		}
	}
	return HealthImpact{
		Severity:    SeverityLow,
		Description: fmt.Sprintf("%.3g ppm is below all defined AEGL thresholds", ppm),
	}
}

func classifyByDose(conc, minutes float64) HealthImpact {
	dose := conc * minutes
	switch {
	case dose > fatalDose:
		return HealthImpact{
			Severity:    SeverityFatal,
			Description: fmt.Sprintf("dose %.0f mg·min/m³ exceeds %g (no exposure guideline available)", dose, fatalDose),
		}
	case dose > highDose:
		return HealthImpact{
			Severity:    SeverityHigh,
			Description: fmt.Sprintf("dose %.0f mg·min/m³ exceeds %g (no exposure guideline available)", dose, highDose),
		}
	case dose > mediumDose:
		return HealthImpact{
			Severity:    SeverityMedium,
			Description: fmt.Sprintf("dose %.0f mg·min/m³ exceeds %g (no exposure guideline available)", dose, mediumDose),
		}
	}
	return HealthImpact{
		Severity:    SeverityLow,
		Description: fmt.Sprintf("dose %.0f mg·min/m³ is below %g (no exposure guideline available)", dose, mediumDose),
	}
}
