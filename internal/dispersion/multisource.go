package dispersion

import (
	"math"

	"golang.org/x/sync/errgroup"
)

// PrimarySourceID names the primary release when a multi-source scenario
// lists no explicit sources.
const PrimarySourceID = "primary"

// Zone colours, most severe first.
const (
	ColorRed    = "red"
	ColorOrange = "orange"
	ColorYellow = "yellow"
)

// sources returns the release points of m, falling back to the primary
// release alone.
func (m MultiSourceParams) sources() []Source {
	if len(m.Sources) > 0 {
		return m.Sources
	}
	return []Source{{
		ID:          PrimarySourceID,
		Location:    m.Params.Location,
		Chemical:    m.Params.Chemical,
		ReleaseRate: m.Params.ReleaseRate,
	}}
}

// paramsFor applies a source's release point to the shared parameters. An
// empty source chemical inherits the primary chemical.
func (m MultiSourceParams) paramsFor(src Source) ModelParameters {
	p := m.Params
	p.Location = src.Location
	p.ReleaseRate = src.ReleaseRate
	if src.Chemical != "" {
		p.Chemical = src.Chemical
	}
	return p
}

// CalculateMultipleSourceDispersion evaluates every source independently and
// superimposes the results: the largest zone wins, areas and populations
// add up.
func (e *Engine) CalculateMultipleSourceDispersion(m MultiSourceParams) (out MultipleSourceResults) {
	defer e.recoverTo("calculate_multiple_source_dispersion", func() {
		r := conservativeResults()
		out = MultipleSourceResults{CombinedZones: r.Zones}
	})

	sources := m.sources()
	individual := e.evaluateSources(m, sources)

	out.IndividualResults = individual
	out.CombinedZones = combineZones(individual)
	out.PriorityEvacuationZones = evacuationZones(individual)
	for _, r := range individual {
		out.TotalMassReleased += r.Results.MassReleased
		z := r.Results.Zones
		out.AffectedPopulation += z.Red.PopulationAtRisk + z.Orange.PopulationAtRisk + z.Yellow.PopulationAtRisk
	}
	return out
}

// evaluateSources runs the single-source pipeline per source concurrently.
// Each goroutine writes only its own slot, so output order matches input.
func (e *Engine) evaluateSources(m MultiSourceParams, sources []Source) []SourceResult {
	results := make([]SourceResult, len(sources))

	var g errgroup.Group
	g.SetLimit(e.workers)
	for i, src := range sources {
		g.Go(func() error {
			results[i] = SourceResult{
				Source:  src,
				Results: e.CalculateDetailedDispersion(m.paramsFor(src)),
			}
			return nil
		})
	}
	_ = g.Wait() // workers never return errors; panics are recovered per source

	return results
}

func combineZones(results []SourceResult) DetailedZones {
	var combined DetailedZones
	for _, r := range results {
		z := r.Results.Zones
		combined.Red = combineZone(combined.Red, z.Red)
		combined.Orange = combineZone(combined.Orange, z.Orange)
		combined.Yellow = combineZone(combined.Yellow, z.Yellow)
	}
	return combined
}

func combineZone(acc, z ZoneDetail) ZoneDetail {
	return ZoneDetail{
		Zone: Zone{
			Distance:      math.Max(acc.Distance, z.Distance),
			Concentration: math.Max(acc.Concentration, z.Concentration),
		},
		Area:             acc.Area + z.Area,
		PopulationAtRisk: acc.PopulationAtRisk + z.PopulationAtRisk,
	}
}

func evacuationZones(results []SourceResult) []EvacuationZone {
	zones := make([]EvacuationZone, 0, 3*len(results))
	for _, r := range results {
		z := r.Results.Zones
		tiers := []struct {
			color    string
			distance float64
			inner    float64
			priority EvacuationPriority
		}{
			{ColorRed, z.Red.Distance, 0, PriorityHigh},
			{ColorOrange, z.Orange.Distance, z.Red.Distance, PriorityMedium},
			{ColorYellow, z.Yellow.Distance, z.Orange.Distance, PriorityLow},
		}
		for _, t := range tiers {
			if t.distance <= t.inner {
				continue
			}
			zones = append(zones, EvacuationZone{
				SourceID: r.Source.ID,
				Color:    t.color,
				Center:   r.Source.Location,
				Radius:   t.distance,
				Priority: t.priority,
			})
		}
	}
	return zones
}

// OptimizeSensorPlacementMultipleSources spends budget sensors (8 when not
// positive) on a network covering every source: one fixed sensor per
// source, one mobile sensor between consecutive sources, and the rest on a
// downwind-biased perimeter around the sources' centroid.
func (e *Engine) OptimizeSensorPlacementMultipleSources(m MultiSourceParams, budget int) (recs []SensorRecommendation) {
	defer e.recoverTo("optimize_sensor_placement_multiple_sources", func() { recs = nil })

	sources := m.sources()
	s := e.resolve(m.Params)
	budget = e.sensorBudget(s.chemical, budget)

	recs = make([]SensorRecommendation, 0, budget)
	ids := make([]string, len(sources))
	locations := make([]Coordinate, len(sources))
	for i, src := range sources {
		ids[i] = src.ID
		locations[i] = src.Location
	}

	for i := 0; i < len(sources) && len(recs) < budget; i++ {
		recs = append(recs, SensorRecommendation{
			Location: sources[i].Location,
			Type:     SensorFixed,
			Priority: 1,
			Coverage: []string{sources[i].ID},
		})
	}
	for i := 0; i+1 < len(sources) && len(recs) < budget; i++ {
		recs = append(recs, SensorRecommendation{
			Location: Midpoint(sources[i].Location, sources[i+1].Location),
			Type:     SensorMobile,
			Priority: 2,
			Coverage: []string{sources[i].ID, sources[i+1].ID},
		})
	}

	remaining := budget - len(recs)
	if remaining <= 0 {
		return recs
	}

	center := Centroid(locations)
	var reach, spread float64
	for _, src := range sources {
		spread = math.Max(spread, Distance(center, src.Location))
		z := e.CalculateDispersion(m.paramsFor(src))
		reach = math.Max(reach, z.Orange.Distance)
	}
	radius := spread + reach
	downwind := downwindBearing(s.windDirection)

	for j := range remaining {
		t := (float64(j) + 0.5) / float64(remaining)
		bearing := downwind - math.Pi/2 + math.Pi*t
		recs = append(recs, SensorRecommendation{
			Location: Offset(center, bearing, radius),
			Type:     SensorMobile,
			Priority: 3,
			Coverage: append([]string(nil), ids...),
		})
	}
	return recs
}
