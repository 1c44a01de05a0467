package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/couchcryptid/hazmat-dispersion/internal/chemical"
	"github.com/couchcryptid/hazmat-dispersion/internal/dispersion"
)

// ErrNoChemical is returned for a report that names no chemical at all.
var ErrNoChemical = errors.New("release report names no chemical")

// ParseReleaseReport deserializes a RawEvent's value into a ReleaseReport.
// A missing report ID falls back to the message key and a missing report time
// to the message timestamp.
func ParseReleaseReport(raw RawEvent) (ReleaseReport, error) {
	var r ReleaseReport
	if err := json.Unmarshal(raw.Value, &r); err != nil {
		return ReleaseReport{}, fmt.Errorf("parse release report: %w", err)
	}

	r.ID = strings.TrimSpace(r.ID)
	if r.ID == "" {
		r.ID = string(raw.Key)
	}
	if r.ReportedAt.IsZero() {
		r.ReportedAt = raw.Timestamp
	}
	r.ReportedAt = r.ReportedAt.UTC()
	r.Facility = strings.TrimSpace(r.Facility)

	r.Chemical = chemical.Normalize(r.Chemical)
	for i := range r.Sources {
		r.Sources[i].ID = strings.TrimSpace(r.Sources[i].ID)
		if r.Sources[i].ID == "" {
			r.Sources[i].ID = fmt.Sprintf("source-%d", i+1)
		}
		r.Sources[i].Chemical = chemical.Normalize(r.Sources[i].Chemical)
	}

	if r.Chemical == "" && !sourcesNameChemical(r.Sources) {
		return ReleaseReport{}, fmt.Errorf("parse release report %q: %w", r.ID, ErrNoChemical)
	}
	return r, nil
}

func sourcesNameChemical(sources []dispersion.Source) bool {
	if len(sources) == 0 {
		return false
	}
	for _, s := range sources {
		if s.Chemical == "" {
			return false
		}
	}
	return true
}

// MultiSource returns the report as a multi-source scenario when it lists
// explicit release points.
func (r ReleaseReport) MultiSource() (dispersion.MultiSourceParams, bool) {
	if len(r.Sources) == 0 {
		return dispersion.MultiSourceParams{}, false
	}
	return dispersion.MultiSourceParams{Params: r.ModelParameters, Sources: r.Sources}, true
}

// TotalReleaseRate is the combined release rate (kg/min) over all sources.
func (r ReleaseReport) TotalReleaseRate() float64 {
	if len(r.Sources) == 0 {
		return r.ReleaseRate
	}
	var total float64
	for _, s := range r.Sources {
		total += s.ReleaseRate
	}
	return total
}

// exposureMinutes picks the exposure used for the health classification.
func (r ReleaseReport) exposureMinutes() float64 {
	switch {
	case r.ExposureMinutes > 0:
		return r.ExposureMinutes
	case r.LeakDuration > 0:
		return r.LeakDuration
	default:
		return dispersion.DefaultLeakDuration
	}
}

// generateID produces a deterministic ID from the report's key fields so that
// reprocessing the same report yields the same assessment ID.
func generateID(reportID, chemicalID string, lat, lng, rate float64) string {
	input := fmt.Sprintf("%s|%s|%.5f|%.5f|%g", reportID, chemicalID, lat, lng, rate)
	hash := sha256.Sum256([]byte(input))
	short := hex.EncodeToString(hash[:8])
	if chemicalID == "" {
		return short
	}
	return strings.ReplaceAll(chemicalID, " ", "-") + "-" + short
}
