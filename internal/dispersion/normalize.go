package dispersion

import (
	"math"
	"strings"

	"github.com/couchcryptid/hazmat-dispersion/internal/chemical"
)

// Defaults applied when an input is missing, non-finite or out of range.
const (
	DefaultReleaseRate     = 1.0     // kg/min
	DefaultWindSpeed       = 1.5     // m/s
	DefaultWindDirection   = 270.0   // degrees (westerly)
	DefaultTemperature     = 20.0    // °C
	DefaultHumidity        = 50.0    // %RH
	DefaultPressure        = 1013.25 // hPa
	DefaultLeakDuration    = 60.0    // minutes
	DefaultSensorThreshold = 1.0     // mg/m³
	DefaultSensorCount     = 8
	DefaultStabilityClass  = "D"

	// MaxSensorCount bounds every sensor count and budget; larger requests
	// are clamped.
	MaxSensorCount = 1000

	// MinWindSpeed is the clamp applied to reported wind. Calm reports are
	// still floored further (minDenominatorWind) wherever wind divides.
	MinWindSpeed = 0.1

	minAmbientTemperature = -80.0
	maxAmbientTemperature = 60.0
	minReleaseTemperature = -200.0
	maxReleaseTemperature = 1500.0
	maxLatitude           = 90.0
	maxLongitude          = 180.0
)

// degradation records one input that was replaced or clamped.
type degradation struct {
	Field  string
	Reason string
}

// scenario is the fully resolved, comparable form of ModelParameters. Every
// field is finite and inside its documented range.
type scenario struct {
	chemical      string
	props         chemical.Properties
	knownChemical bool

	releaseRate        float64
	windSpeed          float64
	windDirection      float64
	stability          string
	temperature        float64
	humidity           float64
	releaseTemperature float64
	pressure           float64
	sourceHeight       float64
	location           Coordinate
	terrain            string
	indoor             bool
	leakDuration       float64
	sensorThreshold    float64
	sensorCount        int
	batch              bool
}

func normalize(p ModelParameters, table chemical.Lookup) (scenario, []degradation) {
	var degraded []degradation
	note := func(field, reason string) {
		degraded = append(degraded, degradation{Field: field, Reason: reason})
	}

	s := scenario{
		chemical: chemical.Normalize(p.Chemical),
		terrain:  strings.ToLower(strings.TrimSpace(p.Terrain)),
		indoor:   p.Indoor,
		batch:    strings.EqualFold(strings.TrimSpace(p.MonitoringMode), "batch"),
	}
	if table != nil {
		s.props, s.knownChemical = table.Lookup(s.chemical)
	}
	if !s.knownChemical {
		note("chemical", "unknown chemical, using generic factors")
	}

	s.releaseRate = positiveOr(p.ReleaseRate, DefaultReleaseRate, "release_rate", note)

	s.windSpeed = finiteOr(p.WindSpeed, DefaultWindSpeed, "wind_speed", note)
	if s.windSpeed < MinWindSpeed {
		note("wind_speed", "below minimum, clamped")
		s.windSpeed = MinWindSpeed
	}

	s.windDirection = math.Mod(finiteOr(p.WindDirection, DefaultWindDirection, "wind_direction", note), 360)
	if s.windDirection < 0 {
		s.windDirection += 360
	}

	s.stability = strings.ToUpper(strings.TrimSpace(p.StabilityClass))
	if _, ok := stabilityFactors[s.stability]; !ok {
		note("stability_class", "unknown class, using D")
		s.stability = DefaultStabilityClass
	}

	s.temperature = clampNoted(finiteOr(p.Temperature, DefaultTemperature, "temperature", note),
		minAmbientTemperature, maxAmbientTemperature, "temperature", note)
	s.humidity = clampNoted(finiteOr(p.Humidity, DefaultHumidity, "humidity", note),
		0, 100, "humidity", note)

	s.releaseTemperature = s.temperature
	if p.ReleaseTemperature != nil {
		s.releaseTemperature = clampNoted(finiteOr(*p.ReleaseTemperature, s.temperature, "release_temperature", note),
			minReleaseTemperature, maxReleaseTemperature, "release_temperature", note)
	}

	s.pressure = DefaultPressure
	if p.Pressure != nil {
		s.pressure = positiveOr(*p.Pressure, DefaultPressure, "pressure", note)
	}

	s.sourceHeight = finiteOr(p.SourceHeight, 0, "source_height", note)
	if s.sourceHeight < 0 {
		note("source_height", "negative, clamped to ground level")
		s.sourceHeight = 0
	}

	s.location = Coordinate{
		Lat: clampNoted(finiteOr(p.Location.Lat, 0, "location.lat", note), -maxLatitude, maxLatitude, "location.lat", note),
		Lng: clampNoted(finiteOr(p.Location.Lng, 0, "location.lng", note), -maxLongitude, maxLongitude, "location.lng", note),
	}

	if p.LeakDuration != 0 {
		s.leakDuration = positiveOr(p.LeakDuration, DefaultLeakDuration, "leak_duration", note)
	} else {
		s.leakDuration = DefaultLeakDuration
	}
	if p.SensorThreshold != 0 {
		s.sensorThreshold = positiveOr(p.SensorThreshold, DefaultSensorThreshold, "sensor_threshold", note)
	} else {
		s.sensorThreshold = DefaultSensorThreshold
	}
	s.sensorCount = p.SensorCount
	switch {
	case s.sensorCount <= 0:
		s.sensorCount = DefaultSensorCount
	case s.sensorCount > MaxSensorCount:
		note("sensor_count", "above maximum, clamped")
		s.sensorCount = MaxSensorCount
	}

	return s, degraded
}

func finiteOr(v, def float64, field string, note func(string, string)) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		note(field, "not a finite number, using default")
		return def
	}
	return v
}

func positiveOr(v, def float64, field string, note func(string, string)) float64 {
	v = finiteOr(v, def, field, note)
	if v <= 0 {
		note(field, "not positive, using default")
		return def
	}
	return v
}

func clampNoted(v, lo, hi float64, field string, note func(string, string)) float64 {
	if v < lo || v > hi {
		note(field, "out of range, clamped")
	}
	return clamp(v, lo, hi)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// finite replaces NaN and ±Inf with def.
func finite(v, def float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return def
	}
	return v
}
