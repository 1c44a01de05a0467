package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/hazmat-dispersion/internal/domain"
)

// Assessor implements Transformer by parsing release reports and running
// them through the dispersion engine.
type Assessor struct {
	engine       domain.Engine
	sensorBudget int
	logger       *slog.Logger
}

// NewAssessor creates an Assessor that plans sensorBudget sensors per
// assessment.
func NewAssessor(engine domain.Engine, sensorBudget int, logger *slog.Logger) *Assessor {
	return &Assessor{
		engine:       engine,
		sensorBudget: sensorBudget,
		logger:       logger,
	}
}

func (a *Assessor) Transform(_ context.Context, raw domain.RawEvent) (domain.HazardAssessment, error) {
	report, err := domain.ParseReleaseReport(raw)
	if err != nil {
		return domain.HazardAssessment{}, err
	}

	assessment := domain.AssessRelease(report, a.engine, a.sensorBudget)
	assessment.RawPayload = raw.Value

	a.logger.Debug("release assessed",
		"id", assessment.ID,
		"chemical", assessment.Chemical,
		"yellow_distance_m", assessment.Zones.Yellow.Distance,
		"severity", assessment.HealthImpact.Severity,
	)
	return assessment, nil
}
