// Command validate performs data integrity checks on the mock fixtures: the
// release report grid and the hazard assessments generated from it. It
// verifies grid coverage, reproduces every assessment with the current
// engine, and checks zone and schema invariants.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -reports data/mock/release_reports.json \
//	  -assessments data/mock/hazard_assessments.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/couchcryptid/hazmat-dispersion/internal/chemical"
	"github.com/couchcryptid/hazmat-dispersion/internal/dispersion"
	"github.com/couchcryptid/hazmat-dispersion/internal/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/jonboulle/clockwork"
)

var (
	baseTime      = time.Date(2024, time.April, 26, 12, 0, 0, 0, time.UTC)
	processedTime = time.Date(2024, time.April, 27, 6, 0, 0, 0, time.UTC)
	reportIDRe    = regexp.MustCompile(`^[A-Z]{3}-\d{3}$`)
)

var stabilityClasses = []string{"A", "B", "C", "D", "E", "F"}

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	reportsPath := flag.String("reports", "", "path to the release report fixture")
	assessmentsPath := flag.String("assessments", "", "path to the hazard assessment fixture")
	budget := flag.Int("sensor-budget", 8, "sensors planned per assessment when the fixture was generated")
	flag.Parse()

	if *reportsPath == "" || *assessmentsPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*reportsPath, *assessmentsPath, *budget); code != 0 {
		os.Exit(code)
	}
}

func run(reportsPath, assessmentsPath string, budget int) int {
	// Set a fixed clock matching genmock for reproducible ProcessedAt.
	domain.SetClock(clockwork.NewFakeClockAt(processedTime))
	defer domain.SetClock(nil)

	fmt.Println("=== Hazmat Fixture Integrity Validation ===")
	fmt.Println()

	payloads, err := loadJSON[json.RawMessage](reportsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load reports: %v\n", err)
		return 1
	}
	assessments, err := loadJSON[domain.HazardAssessment](assessmentsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load assessments: %v\n", err)
		return 1
	}

	table := chemical.Default()
	reports, parsePhase := parseReports(payloads)

	phases := []*phase{
		parsePhase,
		validateGrid(reports, table.Names()),
		validateReproduction(payloads, assessments, dispersion.New(table, nil), budget),
		validateZoneInvariants(assessments, budget),
		validateSchema(assessments),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Records: %d reports, %d assessments\n", len(payloads), len(assessments))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

func loadJSON[T any](path string) ([]T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func rawEvent(payload []byte) domain.RawEvent {
	return domain.RawEvent{Value: payload, Timestamp: baseTime}
}

// ── Phase 1: Parsing ──

func parseReports(payloads []json.RawMessage) ([]domain.ReleaseReport, *phase) {
	p := &phase{name: "Phase 1: Report Parsing"}
	reports := make([]domain.ReleaseReport, 0, len(payloads))
	for i, payload := range payloads {
		r, err := domain.ParseReleaseReport(rawEvent(payload))
		if err != nil {
			p.errorf("report %d: %v", i, err)
			continue
		}
		reports = append(reports, r)
	}
	return reports, p
}

// ── Phase 2: Grid Coverage ──
// Every catalogued chemical appears once under every stability class.

func validateGrid(reports []domain.ReleaseReport, chemicals []string) *phase {
	p := &phase{name: "Phase 2: Grid Coverage"}

	if want := len(chemicals) * len(stabilityClasses); len(reports) != want {
		p.errorf("total count: expected %d, got %d", want, len(reports))
	}

	seen := map[string]string{}
	cells := map[string]int{}
	for _, r := range reports {
		if !reportIDRe.MatchString(r.ID) {
			p.errorf("report %q: id does not match FAC-NNN", r.ID)
		}
		if prev, dup := seen[r.ID]; dup {
			p.errorf("report %q: duplicate id (also %s)", r.ID, prev)
		}
		seen[r.ID] = r.Chemical
		cells[r.Chemical+"|"+r.StabilityClass]++

		if r.ReportedAt.IsZero() {
			p.errorf("report %s: missing reported_at", r.ID)
		}
		if r.Location.Lat == 0 && r.Location.Lng == 0 {
			p.errorf("report %s: coordinates are both zero", r.ID)
		}
		for _, s := range r.Sources {
			if d := dispersion.Distance(r.Location, s.Location); d > 2000 {
				p.errorf("report %s: source %s is %.0f m from the facility", r.ID, s.ID, d)
			}
		}
	}

	for _, chem := range chemicals {
		for _, class := range stabilityClasses {
			if n := cells[chem+"|"+class]; n != 1 {
				p.errorf("%s class %s: expected 1 report, got %d", chem, class, n)
			}
		}
	}
	return p
}

// ── Phase 3: Reproduction ──
// Re-running each report through the engine reproduces its assessment.

func validateReproduction(payloads []json.RawMessage, assessments []domain.HazardAssessment, engine domain.Engine, budget int) *phase {
	p := &phase{name: "Phase 3: Assessment Reproduction"}

	if len(payloads) != len(assessments) {
		p.errorf("count: %d reports but %d assessments", len(payloads), len(assessments))
	}

	opts := cmp.Options{
		cmpopts.EquateEmpty(),
		cmpopts.EquateApprox(0, 1e-9),
		cmpopts.IgnoreFields(domain.HazardAssessment{}, "RawPayload"),
	}
	for i := range min(len(payloads), len(assessments)) {
		report, err := domain.ParseReleaseReport(rawEvent(payloads[i]))
		if err != nil {
			continue // reported in phase 1
		}
		want := domain.AssessRelease(report, engine, budget)
		if diff := cmp.Diff(want, assessments[i], opts); diff != "" {
			p.errorf("report %s: assessment mismatch (-want +got):\n%s", report.ID, diff)
		}
	}
	return p
}

// ── Phase 4: Zone Invariants ──

func validateZoneInvariants(assessments []domain.HazardAssessment, budget int) *phase {
	p := &phase{name: "Phase 4: Zone Invariants"}

	for i := range assessments {
		a := &assessments[i]
		pf := func(format string, args ...any) {
			p.errorf("assessment %s: "+format, append([]any{a.ReportID}, args...)...)
		}

		z := a.Zones
		if z.Red.Distance <= 0 || z.Red.Distance > z.Orange.Distance || z.Orange.Distance > z.Yellow.Distance {
			pf("zone distances out of order: red=%g orange=%g yellow=%g", z.Red.Distance, z.Orange.Distance, z.Yellow.Distance)
		}
		if z.Red.Concentration < z.Orange.Concentration || z.Orange.Concentration < z.Yellow.Concentration {
			pf("zone thresholds out of order: red=%g orange=%g yellow=%g", z.Red.Concentration, z.Orange.Concentration, z.Yellow.Concentration)
		}
		for _, v := range []float64{z.Red.Area, z.Orange.Area, z.Yellow.Area, a.PeakConcentration} {
			if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
				pf("negative or non-finite value %g", v)
			}
		}
		if len(a.Sensors) != budget {
			pf("expected %d sensors, got %d", budget, len(a.Sensors))
		}
		if (a.Detail == nil) == (a.MultiSource == nil) {
			pf("exactly one of detail and multi_source must be set")
		}
		if a.Detail != nil {
			checkProfile(pf, a.Detail.ConcentrationProfile)
		}
	}
	return p
}

func checkProfile(pf func(string, ...any), profile []dispersion.ProfilePoint) {
	for j := 1; j < len(profile); j++ {
		if profile[j].Distance <= profile[j-1].Distance {
			pf("profile distance not increasing at sample %d", j)
		}
		if profile[j].Concentration > profile[j-1].Concentration {
			pf("profile concentration increases at sample %d", j)
		}
	}
}

// ── Phase 5: Schema ──

var (
	schemaSeverities = map[dispersion.Severity]bool{
		dispersion.SeverityFatal: true, dispersion.SeverityHigh: true,
		dispersion.SeverityMedium: true, dispersion.SeverityLow: true,
	}
	schemaSensorTypes = map[dispersion.SensorType]bool{dispersion.SensorFixed: true, dispersion.SensorMobile: true}
	schemaColors      = map[string]bool{dispersion.ColorRed: true, dispersion.ColorOrange: true, dispersion.ColorYellow: true}
)

func validateSchema(assessments []domain.HazardAssessment) *phase {
	p := &phase{name: "Phase 5: Schema Alignment"}

	for i := range assessments {
		a := &assessments[i]
		pf := func(format string, args ...any) {
			p.errorf("record %d (ID %s): "+format, append([]any{i, a.ID}, args...)...)
		}

		if a.ID == "" {
			pf("id is empty")
		} else if !strings.HasPrefix(a.ID, strings.ReplaceAll(a.Chemical, " ", "-")+"-") {
			pf("id doesn't start with chemical prefix")
		}
		if !schemaSeverities[a.HealthImpact.Severity] {
			pf("severity %q not in {fatal, high, medium, low}", a.HealthImpact.Severity)
		}
		if a.HealthImpact.Description == "" {
			pf("health impact description is empty")
		}
		for _, s := range a.Sensors {
			if !schemaSensorTypes[s.Type] {
				pf("sensor type %q not in {fixed, mobile}", s.Type)
			}
			if s.Priority < 1 || s.Priority > 4 {
				pf("sensor priority %d outside 1-4", s.Priority)
			}
		}
		if a.MultiSource != nil {
			for _, z := range a.MultiSource.PriorityEvacuationZones {
				if !schemaColors[z.Color] {
					pf("evacuation zone color %q not in {red, orange, yellow}", z.Color)
				}
			}
		}
		if a.ProcessedAt.IsZero() {
			pf("processed_at is zero")
		}
	}
	return p
}
