package dispersion

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoSources() MultiSourceParams {
	p := ammoniaParams()
	return MultiSourceParams{
		Params: p,
		Sources: []Source{
			{ID: "tank-a", Location: p.Location, Chemical: "ammonia", ReleaseRate: 10},
			{ID: "tank-b", Location: Offset(p.Location, 0, 800), Chemical: "ammonia", ReleaseRate: 10},
		},
	}
}

func TestCalculateMultipleSourceDispersion_IdenticalSources(t *testing.T) {
	e := newTestEngine(WithWorkers(2))
	m := twoSources()

	out := e.CalculateMultipleSourceDispersion(m)

	require.Len(t, out.IndividualResults, 2)
	assert.Equal(t, "tank-a", out.IndividualResults[0].Source.ID)
	assert.Equal(t, "tank-b", out.IndividualResults[1].Source.ID)

	single := out.IndividualResults[0].Results.Zones
	assert.Equal(t, single.Red.Distance, out.CombinedZones.Red.Distance)
	assert.Equal(t, single.Yellow.Concentration, out.CombinedZones.Yellow.Concentration)
	assert.InDelta(t, 2*single.Orange.Area, out.CombinedZones.Orange.Area, 1e-9)
	assert.InDelta(t, 2*single.Yellow.PopulationAtRisk, out.CombinedZones.Yellow.PopulationAtRisk, 1e-6)

	assert.Equal(t, 2*10*DefaultLeakDuration, out.TotalMassReleased)
	total := out.CombinedZones.Red.PopulationAtRisk + out.CombinedZones.Orange.PopulationAtRisk + out.CombinedZones.Yellow.PopulationAtRisk
	assert.InDelta(t, total, out.AffectedPopulation, 1e-6)
}

func TestCalculateMultipleSourceDispersion_CombinesByMaximum(t *testing.T) {
	e := newTestEngine()
	m := twoSources()
	m.Sources[1].ReleaseRate = 80
	m.Sources[1].Chemical = "chlorine"

	out := e.CalculateMultipleSourceDispersion(m)

	a := out.IndividualResults[0].Results.Zones
	b := out.IndividualResults[1].Results.Zones
	for _, pair := range [][3]ZoneDetail{
		{out.CombinedZones.Red, a.Red, b.Red},
		{out.CombinedZones.Orange, a.Orange, b.Orange},
		{out.CombinedZones.Yellow, a.Yellow, b.Yellow},
	} {
		assert.Equal(t, max(pair[1].Distance, pair[2].Distance), pair[0].Distance)
		assert.Equal(t, max(pair[1].Concentration, pair[2].Concentration), pair[0].Concentration)
		assert.InDelta(t, pair[1].Area+pair[2].Area, pair[0].Area, 1e-9)
	}
	assert.Equal(t, (10+80)*DefaultLeakDuration, out.TotalMassReleased)
}

func TestCalculateMultipleSourceDispersion_NoSourcesUsesPrimary(t *testing.T) {
	e := newTestEngine()
	p := ammoniaParams()

	out := e.CalculateMultipleSourceDispersion(MultiSourceParams{Params: p})

	require.Len(t, out.IndividualResults, 1)
	assert.Equal(t, PrimarySourceID, out.IndividualResults[0].Source.ID)
	assert.Equal(t, e.CalculateDetailedDispersion(p), out.IndividualResults[0].Results)
	assert.Equal(t, out.IndividualResults[0].Results.Zones, out.CombinedZones)
}

func TestCalculateMultipleSourceDispersion_InheritsChemical(t *testing.T) {
	e := newTestEngine()
	m := twoSources()
	m.Sources[1].Chemical = ""

	out := e.CalculateMultipleSourceDispersion(m)

	assert.Equal(t,
		out.IndividualResults[0].Results.Zones.Red.Concentration,
		out.IndividualResults[1].Results.Zones.Red.Concentration,
	)
}

func TestCalculateMultipleSourceDispersion_EvacuationZones(t *testing.T) {
	e := newTestEngine()
	m := twoSources()

	out := e.CalculateMultipleSourceDispersion(m)

	require.Len(t, out.PriorityEvacuationZones, 6)
	first := out.PriorityEvacuationZones[:3]
	assert.Equal(t, []string{ColorRed, ColorOrange, ColorYellow},
		[]string{first[0].Color, first[1].Color, first[2].Color})
	assert.Equal(t, []EvacuationPriority{PriorityHigh, PriorityMedium, PriorityLow},
		[]EvacuationPriority{first[0].Priority, first[1].Priority, first[2].Priority})
	for _, z := range first {
		assert.Equal(t, "tank-a", z.SourceID)
		assert.Equal(t, m.Sources[0].Location, z.Center)
	}
	assert.Equal(t, out.IndividualResults[1].Results.Zones.Yellow.Distance, out.PriorityEvacuationZones[5].Radius)
}

func TestCalculateMultipleSourceDispersion_ManySourcesBoundedWorkers(t *testing.T) {
	e := newTestEngine(WithWorkers(3), WithResultCache(16))
	p := ammoniaParams()
	m := MultiSourceParams{Params: p}
	for i := range 25 {
		m.Sources = append(m.Sources, Source{
			ID:          string(rune('a' + i)),
			Location:    Offset(p.Location, float64(i), 100*float64(i)),
			ReleaseRate: float64(1 + i%5),
		})
	}

	out := e.CalculateMultipleSourceDispersion(m)

	require.Len(t, out.IndividualResults, 25)
	for i, r := range out.IndividualResults {
		assert.Equal(t, m.Sources[i].ID, r.Source.ID)
		assertOrdered(t, r.Results.Zones.ZoneData())
	}
}

func TestOptimizeSensorPlacementMultipleSources(t *testing.T) {
	e := newTestEngine()
	p := ammoniaParams()
	m := MultiSourceParams{
		Params: p,
		Sources: []Source{
			{ID: "a", Location: p.Location, ReleaseRate: 10},
			{ID: "b", Location: Offset(p.Location, 0, 1000), ReleaseRate: 10},
			{ID: "c", Location: Offset(p.Location, 0, 2000), ReleaseRate: 10},
		},
	}

	recs := e.OptimizeSensorPlacementMultipleSources(m, 8)

	require.Len(t, recs, 8)
	assert.Equal(t, map[int]int{1: 3, 2: 2, 3: 3}, countByPriority(recs))

	for i, src := range m.Sources {
		assert.Equal(t, src.Location, recs[i].Location)
		assert.Equal(t, SensorFixed, recs[i].Type)
		assert.Equal(t, []string{src.ID}, recs[i].Coverage)
	}
	assert.Equal(t, Midpoint(m.Sources[0].Location, m.Sources[1].Location), recs[3].Location)
	assert.Equal(t, []string{"a", "b"}, recs[3].Coverage)
	assert.Equal(t, []string{"b", "c"}, recs[4].Coverage)

	center := Centroid([]Coordinate{m.Sources[0].Location, m.Sources[1].Location, m.Sources[2].Location})
	for _, r := range recs[5:] {
		assert.Equal(t, SensorMobile, r.Type)
		assert.Equal(t, []string{"a", "b", "c"}, r.Coverage)
		assert.Greater(t, Distance(center, r.Location), 1000.0)
		assert.Greater(t, r.Location.Lng, center.Lng, "perimeter leans downwind")
	}
}

func TestOptimizeSensorPlacementMultipleSources_Budget(t *testing.T) {
	e := newTestEngine()
	m := twoSources()

	assert.Len(t, e.OptimizeSensorPlacementMultipleSources(m, 0), DefaultSensorCount)

	tight := e.OptimizeSensorPlacementMultipleSources(m, 1)
	require.Len(t, tight, 1)
	assert.Equal(t, "tank-a", tight[0].Coverage[0])

	primary := e.OptimizeSensorPlacementMultipleSources(MultiSourceParams{Params: ammoniaParams()}, 4)
	require.Len(t, primary, 4)
	assert.Equal(t, []string{PrimarySourceID}, primary[0].Coverage)
}

func TestOptimizeSensorPlacementMultipleSources_ClampsOversizedBudget(t *testing.T) {
	obs := newCountingObserver()
	e := newTestEngine(WithObserver(obs))

	recs := e.OptimizeSensorPlacementMultipleSources(twoSources(), math.MaxInt32)

	assert.Len(t, recs, MaxSensorCount)
	assert.Equal(t, 1, obs.degradations["sensor_count"])
}
