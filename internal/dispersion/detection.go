package dispersion

import (
	"math"
	"math/rand/v2"
)

const (
	baseDetectionProbability = 0.75
	fullCoverageSensors      = 10.0
	fullSignalReleaseRate    = 50.0 // kg/min
	batchDetectionPenalty    = 0.7
	batchDelayMultiplier     = 5.0
	minDetectionRate         = 0.1 // kg/min
	minSensorThreshold       = 0.1 // mg/m³
	baseEvacuationMinutes    = 20.0
	sensorBearingOffset      = 0.3             // rad
	maxTimeToDetection       = 365 * 24 * 60.0 // minutes
)

// RandSource supplies uniform draws in [0, 1). *rand.Rand from math/rand/v2
// satisfies it.
type RandSource interface {
	Float64() float64
}

// globalRand draws from the math/rand/v2 top-level generator, which is safe
// for concurrent use.
type globalRand struct{}

func (globalRand) Float64() float64 { return rand.Float64() }

type detectionPlan struct {
	probability     float64
	timeToDetection float64 // minutes
	threshold       float64
	falseAlarmRate  float64
	evacuationTime  float64 // minutes
	locations       []Coordinate
}

func planDetection(s scenario, zones DetailedZones) detectionPlan {
	threshold := math.Max(minSensorThreshold, s.sensorThreshold)

	p := baseDetectionProbability *
		math.Min(1, float64(s.sensorCount)/fullCoverageSensors) *
		math.Min(1, s.releaseRate/fullSignalReleaseRate)
	delay := 1.0
	if s.batch {
		p *= batchDetectionPenalty
		delay = batchDelayMultiplier
	}

	yellowKm := zones.Yellow.Distance / 1000
	population := math.Pi * yellowKm * yellowKm * populationDensity(s.terrain)

	return detectionPlan{
		probability:     clamp(finite(p, 0), 0, 1),
		timeToDetection: clamp(finite(10*(threshold/math.Max(minDetectionRate, s.releaseRate))*delay, maxTimeToDetection), 1, maxTimeToDetection),
		threshold:       threshold,
		falseAlarmRate:  2 / (threshold * 4),
		evacuationTime:  baseEvacuationMinutes + math.Sqrt(math.Max(0, population)/100),
		locations:       sensorLocations(s, zones.Yellow.Distance),
	}
}

// sensorLocations places one sensor at the source and the rest at
// increasing fractions of the yellow distance, alternating either side of
// the downwind bearing.
func sensorLocations(s scenario, yellow float64) []Coordinate {
	n := s.sensorCount
	locs := make([]Coordinate, 0, n)
	locs = append(locs, s.location)
	downwind := downwindBearing(s.windDirection)
	for i := 1; i < n; i++ {
		offset := sensorBearingOffset
		if i%2 == 0 {
			offset = -sensorBearingOffset
		}
		locs = append(locs, Offset(s.location, downwind+offset, yellow*float64(i)/float64(n)))
	}
	return locs
}
