package dispersion

import "math"

// Share of the sensor budget per placement tier. The perimeter tier takes
// whatever remains.
const (
	downwindShare  = 0.4
	crosswindShare = 0.3

	downwindArcHalfWidth = 0.15 // rad
	crosswindBearing     = math.Pi / 4
	crosswindRingStep    = 0.25
	perimeterHalfWidth   = 2 * math.Pi / 3
	perimeterRadiusScale = 1.1
)

// placeSensors builds the four-tier placement: source, downwind arc,
// crosswind arc, perimeter arc.
func placeSensors(s scenario, zones ZoneData, count int) []SensorRecommendation {
	if count <= 0 {
		count = DefaultSensorCount
	}
	count = min(count, MaxSensorCount)
	recs := make([]SensorRecommendation, 0, count)
	recs = append(recs, SensorRecommendation{Location: s.location, Type: SensorFixed, Priority: 1})

	remaining := count - 1
	nDownwind := min(remaining, int(math.Floor(downwindShare*float64(count))))
	remaining -= nDownwind
	nCrosswind := min(remaining, int(math.Floor(crosswindShare*float64(count))))
	nPerimeter := remaining - nCrosswind

	downwind := downwindBearing(s.windDirection)

	for j := range nDownwind {
		dist, offset := zones.Orange.Distance, 0.0
		if nDownwind > 1 {
			t := float64(j) / float64(nDownwind-1)
			dist = zones.Red.Distance + (zones.Yellow.Distance-zones.Red.Distance)*t
			offset = -downwindArcHalfWidth + 2*downwindArcHalfWidth*t
		}
		recs = append(recs, SensorRecommendation{
			Location: Offset(s.location, downwind+offset, dist),
			Type:     SensorFixed,
			Priority: 2,
		})
	}

	for j := range nCrosswind {
		side := 1.0
		if j%2 == 1 {
			side = -1
		}
		ring := float64(j / 2)
		recs = append(recs, SensorRecommendation{
			Location: Offset(s.location, downwind+side*crosswindBearing, zones.Orange.Distance*(1+crosswindRingStep*ring)),
			Type:     SensorMobile,
			Priority: 3,
		})
	}

	radius := zones.Yellow.Distance * perimeterRadiusScale
	for j := range nPerimeter {
		t := (float64(j) + 0.5) / float64(nPerimeter)
		bearing := downwind - perimeterHalfWidth + 2*perimeterHalfWidth*t
		recs = append(recs, SensorRecommendation{
			Location: Offset(s.location, bearing, radius),
			Type:     SensorMobile,
			Priority: 4,
		})
	}
	return recs
}
