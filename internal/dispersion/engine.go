package dispersion

import (
	"log/slog"
	"math"
	"runtime"
	"sync"
	"time"

	"github.com/couchcryptid/hazmat-dispersion/internal/chemical"
	"github.com/jonboulle/clockwork"
)

const (
	defaultEvaporationFraction = 0.5
	minEvaporationFraction     = 0.05
)

// Conservative zones substituted when a calculation fails outright.
var conservativeZones = ZoneData{
	Red:    Zone{Distance: 1000, Concentration: 50},
	Orange: Zone{Distance: 2500, Concentration: 25},
	Yellow: Zone{Distance: 5000, Concentration: 12.5},
}

// ConservativeZones returns the fixed fallback used when a calculation
// cannot be completed.
func ConservativeZones() ZoneData { return conservativeZones }

// Observer receives engine events, typically to export them as metrics.
type Observer interface {
	ObserveDegradation(field string)
	ObserveCacheLookup(hit bool)
}

// Option configures an Engine.
type Option func(*Engine)

// WithRandSource sets the generator used by SimulateLeakDetection.
func WithRandSource(r RandSource) Option {
	return func(e *Engine) {
		if r != nil {
			e.rand = r
		}
	}
}

// WithClock sets the time source used to stamp simulated detections.
func WithClock(c clockwork.Clock) Option {
	return func(e *Engine) {
		if c != nil {
			e.clock = c
		}
	}
}

// WithObserver registers an Observer for degradations and cache lookups.
func WithObserver(o Observer) Option {
	return func(e *Engine) { e.observer = o }
}

// WithResultCache memoizes detailed results for up to maxEntries distinct
// scenarios. A non-positive size disables memoization.
func WithResultCache(maxEntries int) Option {
	return func(e *Engine) {
		if maxEntries > 0 {
			e.cache = newResultCache(maxEntries)
		}
	}
}

// WithWorkers bounds the number of sources evaluated concurrently by the
// multi-source operations.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// Engine evaluates release scenarios. It holds no per-call state and is safe
// for concurrent use; identical inputs always yield identical results (apart
// from SimulateLeakDetection, which draws from its RandSource).
type Engine struct {
	table    chemical.Lookup
	logger   *slog.Logger
	observer Observer
	cache    *resultCache
	workers  int
	clock    clockwork.Clock

	randMu sync.Mutex
	rand   RandSource
}

// New creates an Engine backed by the given chemical table. A nil logger
// uses slog.Default().
func New(table chemical.Lookup, logger *slog.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Engine{
		table:   table,
		logger:  logger,
		workers: runtime.GOMAXPROCS(0),
		clock:   clockwork.NewRealClock(),
		rand:    globalRand{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CalculateDispersion returns the three hazard zones for a release. It never
// panics; on internal failure it returns ConservativeZones.
func (e *Engine) CalculateDispersion(p ModelParameters) (zones ZoneData) {
	defer e.recoverTo("calculate_dispersion", func() { zones = conservativeZones })

	s := e.resolve(p)
	return buildHazardModel(s).zones(s).ZoneData()
}

// CalculateDetailedDispersion returns zones with areas and populations, the
// mass balance, plume geometry, concentration profile and detection plan.
func (e *Engine) CalculateDetailedDispersion(p ModelParameters) (results DetailedCalculationResults) {
	defer e.recoverTo("calculate_detailed_dispersion", func() { results = conservativeResults() })

	return e.detailed(e.resolve(p))
}

// GenerateSensorRecommendations proposes count sensor positions (8 when
// count is not positive) in four priority tiers around the given zones.
func (e *Engine) GenerateSensorRecommendations(p ModelParameters, zones ZoneData, count int) (recs []SensorRecommendation) {
	defer e.recoverTo("generate_sensor_recommendations", func() { recs = nil })

	s := e.resolve(p)
	return placeSensors(s, sanitizeZones(zones), e.sensorBudget(s.chemical, count))
}

// CalculateHealthImpact classifies an exposure of concentration mg/m³ for
// exposureMinutes to the named chemical.
func (e *Engine) CalculateHealthImpact(concentration, exposureMinutes float64, chemicalID string) (impact HealthImpact) {
	defer e.recoverTo("calculate_health_impact", func() {
		impact = classifyByDose(concentration, exposureMinutes)
	})

	var (
		props chemical.Properties
		known bool
	)
	if e.table != nil {
		props, known = e.table.Lookup(chemicalID)
	}
	if !known {
		e.degraded(chemical.Normalize(chemicalID), degradation{Field: "chemical", Reason: "unknown chemical, using dose bands"})
	}
	return classifyHealthImpact(concentration, exposureMinutes, props, known)
}

// SimulateLeakDetection runs one Bernoulli trial against the scenario's
// detection probability.
func (e *Engine) SimulateLeakDetection(p ModelParameters) (sim LeakSimulation) {
	defer e.recoverTo("simulate_leak_detection", func() { sim = LeakSimulation{} })

	r := e.detailed(e.resolve(p))

	e.randMu.Lock()
	draw := e.rand.Float64()
	e.randMu.Unlock()

	sim.Probability = r.DetectionProbability
	if draw < r.DetectionProbability {
		sim.Detected = true
		sim.TimeToDetection = r.TimeToDetection
		// TimeToDetection is bounded by maxTimeToDetection, well inside time.Duration.
		sim.DetectedAt = e.clock.Now().Add(time.Duration(r.TimeToDetection * float64(time.Minute)))
	}
	return sim
}

// resolve normalizes p, logging and reporting every degraded input.
func (e *Engine) resolve(p ModelParameters) scenario {
	s, degraded := normalize(p, e.table)
	for _, d := range degraded {
		e.degraded(s.chemical, d)
	}
	return s
}

// sensorBudget applies the default and MaxSensorCount to a caller-supplied
// sensor count. A clamp is reported as a degradation.
func (e *Engine) sensorBudget(chemicalID string, n int) int {
	switch {
	case n <= 0:
		return DefaultSensorCount
	case n > MaxSensorCount:
		e.degraded(chemicalID, degradation{Field: "sensor_count", Reason: "above maximum, clamped"})
		return MaxSensorCount
	}
	return n
}

func (e *Engine) degraded(chemicalID string, d degradation) {
	e.logger.Warn("dispersion input degraded",
		"chemical", chemicalID,
		"field", d.Field,
		"reason", d.Reason,
	)
	if e.observer != nil {
		e.observer.ObserveDegradation(d.Field)
	}
}

// detailed computes (or recalls) the full result for a resolved scenario.
func (e *Engine) detailed(s scenario) DetailedCalculationResults {
	if e.cache != nil {
		r, ok := e.cache.get(s)
		if e.observer != nil {
			e.observer.ObserveCacheLookup(ok)
		}
		if ok {
			return r
		}
	}

	r := computeDetailed(s)
	if e.cache != nil {
		e.cache.put(s, r)
	}
	return r
}

func computeDetailed(s scenario) DetailedCalculationResults {
	m := buildHazardModel(s)
	zones := m.zones(s)
	yellow := zones.Yellow.Distance

	maxConc := maximumConcentration(s, m.geometry, m.env)
	plan := planDetection(s, zones)

	return DetailedCalculationResults{
		Zones:                  zones,
		MassReleased:           s.releaseRate * s.leakDuration,
		EvaporationRate:        evaporationRate(s, m.env),
		DispersionCoefficients: Sigmas(s.stability, yellow),
		MaximumConcentration:   maxConc,
		LethalDistance:         lethalDistance(maxConc, zones.Red.Concentration, yellow, s.stability, s.windSpeed),
		ConcentrationProfile:   collectProfile(maxConc, yellow, s.stability, s.windSpeed),
		Environment:            m.env,
		Geometry:               m.geometry,

		DetectionProbability:       plan.probability,
		TimeToDetection:            plan.timeToDetection,
		RecommendedSensorLocations: plan.locations,
		DetectionThreshold:         plan.threshold,
		FalseAlarmRate:             plan.falseAlarmRate,
		EvacuationTime:             plan.evacuationTime,
	}
}

// evaporationRate estimates the vapour generation (kg/min) from the share of
// the release that flashes or evaporates at the chemical's vapour pressure.
func evaporationRate(s scenario, env EnvironmentalFactors) float64 {
	fraction := defaultEvaporationFraction
	if s.knownChemical && s.props.VaporPressure > 0 {
		fraction = clamp(s.props.VaporPressure/atmosphereKPa, minEvaporationFraction, 1)
	}
	return math.Min(s.releaseRate, s.releaseRate*fraction*env.Temperature)
}

// sanitizeZones replaces a caller-supplied ZoneData that violates the
// ordering invariant with the conservative fallback.
func sanitizeZones(z ZoneData) ZoneData {
	ok := z.Red.Distance > 0 && z.Red.Distance < z.Orange.Distance && z.Orange.Distance < z.Yellow.Distance &&
		!math.IsInf(z.Yellow.Distance, 0)
	if !ok {
		return conservativeZones
	}
	return z
}

func conservativeResults() DetailedCalculationResults {
	z := conservativeZones
	density := defaultPopulationDensity
	red := ellipseArea(z.Red.Distance/1000, DefaultWindSpeed)
	orange := ellipseArea(z.Orange.Distance/1000, DefaultWindSpeed)
	yellow := ellipseArea(z.Yellow.Distance/1000, DefaultWindSpeed)
	yellowKm := z.Yellow.Distance / 1000

	return DetailedCalculationResults{
		Zones: DetailedZones{
			Red:    ZoneDetail{Zone: z.Red, Area: red, PopulationAtRisk: red * density},
			Orange: ZoneDetail{Zone: z.Orange, Area: orange - red, PopulationAtRisk: (orange - red) * density},
			Yellow: ZoneDetail{Zone: z.Yellow, Area: yellow - orange, PopulationAtRisk: (yellow - orange) * density},
		},
		MaximumConcentration: z.Red.Concentration,
		Environment: EnvironmentalFactors{
			Stability: 1, Temperature: 1, Humidity: 1, Pressure: 1, Terrain: 1, Containment: 1, Total: 1,
		},
		Geometry:           PlumeGeometry{HeightDistanceFactor: 1, GroundReductionFactor: 1},
		DetectionThreshold: DefaultSensorThreshold,
		FalseAlarmRate:     2 / (DefaultSensorThreshold * 4),
		TimeToDetection:    10 * DefaultSensorThreshold / DefaultReleaseRate,
		EvacuationTime:     baseEvacuationMinutes + math.Sqrt(math.Pi*yellowKm*yellowKm*density/100),
	}
}

// recoverTo is deferred by every public entry point so that a panic is
// logged and replaced by a conservative result instead of reaching the caller.
func (e *Engine) recoverTo(op string, fallback func()) {
	if r := recover(); r != nil {
		e.logger.Error("dispersion calculation failed, using conservative defaults",
			"operation", op,
			"panic", r,
		)
		if e.observer != nil {
			e.observer.ObserveDegradation("panic")
		}
		fallback()
	}
}
