// Command genmock generates the release report fixture used by the pipeline
// and integration tests, and optionally the hazard assessments the service
// produces for it. Assessments are computed with the real domain and
// dispersion packages so the fixture matches pipeline behavior.
//
// The fixture is a grid: every catalogued chemical under every stability
// class, rotated across five facilities with varying release rates, weather,
// and release heights. Every eleventh report is a two-tank release.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -reports-out data/mock/release_reports.json \
//	  -assessments-out data/mock/hazard_assessments.json
package main

import (
	"cmp"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/couchcryptid/hazmat-dispersion/internal/chemical"
	"github.com/couchcryptid/hazmat-dispersion/internal/dispersion"
	"github.com/couchcryptid/hazmat-dispersion/internal/domain"
	"github.com/jonboulle/clockwork"
)

var (
	baseTime      = time.Date(2024, time.April, 26, 12, 0, 0, 0, time.UTC)
	processedTime = time.Date(2024, time.April, 27, 6, 0, 0, 0, time.UTC)
)

type facility struct {
	name     string
	code     string
	location dispersion.Coordinate
	terrain  string
}

var facilities = []facility{
	{"Calumet Cold Storage", "CCS", dispersion.Coordinate{Lat: 41.6528, Lng: -87.5473}, "urban"},
	{"Houston Ship Channel Terminal", "HSC", dispersion.Coordinate{Lat: 29.7355, Lng: -95.263}, "suburban"},
	{"Baton Rouge Refinery", "BRR", dispersion.Coordinate{Lat: 30.488, Lng: -91.187}, "suburban"},
	{"Joliet Water Treatment", "JWT", dispersion.Coordinate{Lat: 41.525, Lng: -88.0817}, "rural"},
	{"Tacoma Pulp Mill", "TPM", dispersion.Coordinate{Lat: 47.2668, Lng: -122.417}, "water"},
}

// Per-class wind speeds roughly follow the Pasquill table: unstable and
// stable classes occur in light wind.
var (
	stabilityClasses = []string{"A", "B", "C", "D", "E", "F"}
	classWindSpeeds  = []float64{1.5, 2.5, 4, 5.5, 3, 1.5}
	releaseRates     = []float64{0.5, 2, 10, 25, 80}
	sourceHeights    = []float64{0, 10, 30}
)

const (
	batchEvery       = 9
	multiSourceEvery = 11
	reportSpacing    = 7 * time.Minute
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	reportsOut := flag.String("reports-out", "", "output path for the release report fixture")
	assessmentsOut := flag.String("assessments-out", "", "optional output path for hazard assessments")
	budget := flag.Int("sensor-budget", 8, "sensors planned per assessment")
	flag.Parse()

	if *reportsOut == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -reports-out")
	}

	table := chemical.Default()
	reports := generateReports(table.Names())
	log.Printf("generated %d reports", len(reports))

	if err := writeJSON(*reportsOut, reports); err != nil {
		return fmt.Errorf("writing report fixture: %w", err)
	}
	log.Printf("wrote report fixture: %s", *reportsOut)

	if *assessmentsOut == "" {
		return nil
	}

	// Set a fixed clock for reproducible ProcessedAt timestamps.
	domain.SetClock(clockwork.NewFakeClockAt(processedTime))
	defer domain.SetClock(nil)

	engine := dispersion.New(table, nil)
	assessments, err := assessReports(reports, engine, *budget)
	if err != nil {
		return err
	}
	if err := writeJSON(*assessmentsOut, assessments); err != nil {
		return fmt.Errorf("writing assessment fixture: %w", err)
	}
	log.Printf("wrote assessment fixture: %s", *assessmentsOut)

	printStats(assessments)
	return nil
}

// generateReports builds one report per chemical and stability class.
func generateReports(chemicals []string) []domain.ReleaseReport {
	reports := make([]domain.ReleaseReport, 0, len(chemicals)*len(stabilityClasses))
	for ci, chem := range chemicals {
		for si, class := range stabilityClasses {
			n := ci*len(stabilityClasses) + si
			f := facilities[n%len(facilities)]
			rate := releaseRates[n%len(releaseRates)]

			r := domain.ReleaseReport{
				ID:         fmt.Sprintf("%s-%03d", f.code, n+1),
				Facility:   f.name,
				ReportedAt: baseTime.Add(time.Duration(n) * reportSpacing),
			}
			r.Chemical = chem
			r.ReleaseRate = rate
			r.WindSpeed = classWindSpeeds[si]
			r.WindDirection = float64((ci*37 + si*61) % 360)
			r.StabilityClass = class
			r.Temperature = float64(24 - 3*si)
			r.Humidity = float64(30 + 10*(ci%6))
			r.SourceHeight = sourceHeights[ci%len(sourceHeights)]
			r.Location = f.location
			r.Terrain = f.terrain
			r.LeakDuration = float64(15 * (1 + n%4))
			if n%batchEvery == batchEvery-1 {
				r.MonitoringMode = "batch"
			}
			if n%multiSourceEvery == multiSourceEvery-1 {
				r.Sources = []dispersion.Source{
					{ID: "tank-1", Location: f.location, ReleaseRate: rate},
					{
						ID:          "tank-2",
						Location:    dispersion.Coordinate{Lat: f.location.Lat + 0.004, Lng: f.location.Lng + 0.006},
						ReleaseRate: rate / 2,
					},
				}
			}
			reports = append(reports, r)
		}
	}
	return reports
}

// assessReports round-trips each report through JSON and the real parse and
// assess path, exactly as the pipeline does.
func assessReports(reports []domain.ReleaseReport, engine domain.Engine, budget int) ([]domain.HazardAssessment, error) {
	out := make([]domain.HazardAssessment, 0, len(reports))
	for _, r := range reports {
		payload, err := json.Marshal(r)
		if err != nil {
			return nil, fmt.Errorf("marshal report %s: %w", r.ID, err)
		}
		parsed, err := domain.ParseReleaseReport(domain.RawEvent{Key: []byte(r.ID), Value: payload, Timestamp: baseTime})
		if err != nil {
			return nil, err
		}
		a := domain.AssessRelease(parsed, engine, budget)
		a.RawPayload = payload
		out = append(out, a)
	}
	return out, nil
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

func printStats(assessments []domain.HazardAssessment) {
	severities := map[dispersion.Severity]int{}
	var multi int
	farthest := assessments[0]
	for _, a := range assessments {
		severities[a.HealthImpact.Severity]++
		if a.MultiSource != nil {
			multi++
		}
		if a.Zones.Yellow.Distance > farthest.Zones.Yellow.Distance {
			farthest = a
		}
	}

	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Total: %d (multi-source %d)\n", len(assessments), multi)
	fmt.Printf("By severity: fatal=%d, high=%d, medium=%d, low=%d\n",
		severities[dispersion.SeverityFatal], severities[dispersion.SeverityHigh],
		severities[dispersion.SeverityMedium], severities[dispersion.SeverityLow])
	fmt.Printf("Farthest yellow zone: %s (%s, class %s) %.0f m\n",
		farthest.ReportID, farthest.Chemical, stabilityOf(farthest), farthest.Zones.Yellow.Distance)

	byChemical := map[string]float64{}
	for _, a := range assessments {
		byChemical[a.Chemical] = max(byChemical[a.Chemical], a.Zones.Yellow.Distance)
	}
	fmt.Println("\nMax yellow distance by chemical:")
	for _, name := range slices.SortedFunc(maps.Keys(byChemical), func(a, b string) int {
		return cmp.Compare(byChemical[b], byChemical[a])
	}) {
		fmt.Printf("  %-18s %8.0f m\n", name, byChemical[name])
	}
}

func stabilityOf(a domain.HazardAssessment) string {
	var r domain.ReleaseReport
	if err := json.Unmarshal(a.RawPayload, &r); err != nil || r.StabilityClass == "" {
		return "?"
	}
	return r.StabilityClass
}
