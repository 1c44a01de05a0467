package dispersion

import (
	"iter"
	"math"
	"slices"
)

const (
	// DefaultProfileSamples is the number of points in a concentration profile.
	DefaultProfileSamples = 21

	profileExtent        = 1.2 // profile spans 0..1.2×yellow distance
	referenceProfileWind = 5.0 // m/s
	minWindDecayAdjust   = 0.75
	maxWindDecayAdjust   = 1.5
	minProfileDistance   = 1.0 // m
)

type decayParameters struct {
	k, n float64
}

// Unstable air dilutes the plume steeply; stable air keeps it concentrated.
var profileDecay = map[string]decayParameters{
	"A": {4.0, 1.5},
	"B": {3.5, 1.6},
	"C": {3.0, 1.7},
	"D": {2.5, 1.8},
	"E": {2.0, 1.9},
	"F": {1.5, 2.0},
}

func decayFor(class string, wind float64) decayParameters {
	d, ok := profileDecay[class]
	if !ok {
		d = profileDecay[DefaultStabilityClass]
	}
	adjust := clamp(math.Sqrt(windDenominator(wind)/referenceProfileWind), minWindDecayAdjust, maxWindDecayAdjust)
	d.k *= adjust
	return d
}

// ConcentrationProfile yields samples of C(x) = c0·exp(-k·(x/yellow)^n) from
// the source out to 1.2× the yellow-zone distance (metres). The sequence is
// finite and may be ranged over any number of times with identical results.
func ConcentrationProfile(c0, yellow float64, class string, wind float64, samples int) iter.Seq[ProfilePoint] {
	if samples < 2 {
		samples = DefaultProfileSamples
	}
	c0 = math.Max(0, finite(c0, 0))
	yellow = math.Max(minProfileDistance, finite(yellow, minProfileDistance))
	decay := decayFor(class, wind)
	step := profileExtent * yellow / float64(samples-1)

	return func(yield func(ProfilePoint) bool) {
		for i := range samples {
			x := float64(i) * step
			c := c0 * math.Exp(-decay.k*math.Pow(x/yellow, decay.n))
			if !yield(ProfilePoint{Distance: x, Concentration: c}) {
				return
			}
		}
	}
}

func collectProfile(c0, yellow float64, class string, wind float64) []ProfilePoint {
	return slices.Collect(ConcentrationProfile(c0, yellow, class, wind, DefaultProfileSamples))
}

// lethalDistance inverts the profile curve at the red threshold. It returns
// 0 when the peak never reaches the threshold.
func lethalDistance(c0, threshold, yellow float64, class string, wind float64) float64 {
	if c0 <= threshold || threshold <= 0 || yellow <= 0 {
		return 0
	}
	decay := decayFor(class, wind)
	x := yellow * math.Pow(math.Log(c0/threshold)/decay.k, 1/decay.n)
	return math.Min(finite(x, 0), profileExtent*yellow)
}
