package domain

import (
	"context"
	"time"

	"github.com/couchcryptid/hazmat-dispersion/internal/dispersion"
)

// RawEvent represents an unprocessed message from the source topic.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// ReleaseReport is the JSON payload published for a chemical release by
// facility monitors or field responders. The model parameters are flattened
// into the report, so a report is also a valid dispersion request.
type ReleaseReport struct {
	ID         string    `json:"id"`
	Facility   string    `json:"facility,omitempty"`
	ReportedAt time.Time `json:"reported_at,omitzero"`

	dispersion.ModelParameters

	// Sources lists every release point when more than one is leaking.
	Sources []dispersion.Source `json:"sources,omitempty"`

	// ExposureMinutes is the exposure assumed for the health classification.
	// Zero uses the leak duration.
	ExposureMinutes float64 `json:"exposure_minutes,omitempty"`
}

// HazardAssessment is the enriched result published to the sink topic.
type HazardAssessment struct {
	ID         string                `json:"id"`
	ReportID   string                `json:"report_id,omitempty"`
	Facility   string                `json:"facility,omitempty"`
	Chemical   string                `json:"chemical"`
	Location   dispersion.Coordinate `json:"location"`
	ReportedAt time.Time             `json:"reported_at,omitzero"`

	Zones       dispersion.DetailedZones               `json:"zones"`
	Detail      *dispersion.DetailedCalculationResults `json:"detail,omitempty"`
	MultiSource *dispersion.MultipleSourceResults      `json:"multi_source,omitempty"`
	Sensors     []dispersion.SensorRecommendation      `json:"sensors"`

	PeakConcentration float64                 `json:"peak_concentration"` // mg/m³
	ExposureMinutes   float64                 `json:"exposure_minutes"`
	HealthImpact      dispersion.HealthImpact `json:"health_impact"`

	RawPayload  []byte    `json:"-"`
	ProcessedAt time.Time `json:"processed_at"`
}
