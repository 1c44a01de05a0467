package dispersion

import "time"

// Coordinate is a WGS-84 latitude/longitude pair in degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// ModelParameters describes one release scenario.
//
// Zero values for the optional fields select documented defaults; see
// normalize for the full list.
type ModelParameters struct {
	Chemical       string     `json:"chemical"`
	ReleaseRate    float64    `json:"release_rate"`    // kg/min
	WindSpeed      float64    `json:"wind_speed"`      // m/s
	WindDirection  float64    `json:"wind_direction"`  // degrees, direction the wind blows from
	StabilityClass string     `json:"stability_class"` // Pasquill A–F
	Temperature    float64    `json:"temperature"`     // ambient °C
	Humidity       float64    `json:"humidity"`        // %RH
	SourceHeight   float64    `json:"source_height"`   // m above ground
	Location       Coordinate `json:"location"`

	ReleaseTemperature *float64 `json:"release_temperature,omitempty"` // °C, nil means ambient
	Pressure           *float64 `json:"pressure,omitempty"`            // hPa
	Terrain            string   `json:"terrain,omitempty"`
	Indoor             bool     `json:"indoor,omitempty"`
	LeakDuration       float64  `json:"leak_duration,omitempty"`    // minutes
	SensorThreshold    float64  `json:"sensor_threshold,omitempty"` // mg/m³
	SensorCount        int      `json:"sensor_count,omitempty"`
	MonitoringMode     string   `json:"monitoring_mode,omitempty"` // "continuous" or "batch"
}

// Zone is a hazard boundary: the downwind distance at which the threshold
// concentration is crossed.
type Zone struct {
	Distance      float64 `json:"distance"`      // m
	Concentration float64 `json:"concentration"` // mg/m³
}

// ZoneData holds the three hazard zones, most severe first.
type ZoneData struct {
	Red    Zone `json:"red"`
	Orange Zone `json:"orange"`
	Yellow Zone `json:"yellow"`
}

// ZoneDetail extends a Zone with its footprint and exposed population.
type ZoneDetail struct {
	Zone
	Area             float64 `json:"area"` // km²
	PopulationAtRisk float64 `json:"population_at_risk"`
}

// DetailedZones holds the three detailed hazard zones.
type DetailedZones struct {
	Red    ZoneDetail `json:"red"`
	Orange ZoneDetail `json:"orange"`
	Yellow ZoneDetail `json:"yellow"`
}

// ZoneData strips area and population from the detailed zones.
func (d DetailedZones) ZoneData() ZoneData {
	return ZoneData{Red: d.Red.Zone, Orange: d.Orange.Zone, Yellow: d.Yellow.Zone}
}

// DispersionCoefficients are the Pasquill–Gifford plume widths in metres.
type DispersionCoefficients struct {
	SigmaY float64 `json:"sigma_y"`
	SigmaZ float64 `json:"sigma_z"`
}

// ProfilePoint is one sample of the downwind concentration curve.
type ProfilePoint struct {
	Distance      float64 `json:"distance"`      // m
	Concentration float64 `json:"concentration"` // mg/m³
}

// DetailedCalculationResults is the full output of a single-source run.
type DetailedCalculationResults struct {
	Zones DetailedZones `json:"zones"`

	MassReleased    float64 `json:"mass_released"`    // kg
	EvaporationRate float64 `json:"evaporation_rate"` // kg/min

	DispersionCoefficients DispersionCoefficients `json:"dispersion_coefficients"`
	MaximumConcentration   float64                `json:"maximum_concentration"` // mg/m³
	LethalDistance         float64                `json:"lethal_distance"`       // m
	ConcentrationProfile   []ProfilePoint         `json:"concentration_profile"`
	Environment            EnvironmentalFactors   `json:"environment"`
	Geometry               PlumeGeometry          `json:"geometry"`

	DetectionProbability       float64      `json:"detection_probability"`
	TimeToDetection            float64      `json:"time_to_detection"` // minutes
	RecommendedSensorLocations []Coordinate `json:"recommended_sensor_locations"`
	DetectionThreshold         float64      `json:"detection_threshold"` // mg/m³
	FalseAlarmRate             float64      `json:"false_alarm_rate"`
	EvacuationTime             float64      `json:"evacuation_time"` // minutes
}

// Source is one release point in a multi-source scenario.
type Source struct {
	ID          string     `json:"id"`
	Location    Coordinate `json:"location"`
	Chemical    string     `json:"chemical"`
	ReleaseRate float64    `json:"release_rate"` // kg/min
}

// SensorType distinguishes permanently installed from deployable sensors.
type SensorType string

const (
	SensorFixed  SensorType = "fixed"
	SensorMobile SensorType = "mobile"
)

// SensorRecommendation is a proposed monitoring position.
type SensorRecommendation struct {
	Location Coordinate `json:"location"`
	Type     SensorType `json:"type"`
	Priority int        `json:"priority"`           // 1 (highest) to 4
	Coverage []string   `json:"coverage,omitempty"` // source ids monitored
}

// MultiSourceParams is a scenario with several release points sharing the
// meteorology and options of Params.
type MultiSourceParams struct {
	Params  ModelParameters `json:"params"`
	Sources []Source        `json:"sources"`
}

// SourceResult pairs a source with its independent single-source result.
type SourceResult struct {
	Source  Source                     `json:"source"`
	Results DetailedCalculationResults `json:"results"`
}

// EvacuationPriority ranks evacuation circles.
type EvacuationPriority string

const (
	PriorityHigh   EvacuationPriority = "high"
	PriorityMedium EvacuationPriority = "medium"
	PriorityLow    EvacuationPriority = "low"
)

// EvacuationZone is a circle around one source that must be cleared.
type EvacuationZone struct {
	SourceID string             `json:"source_id"`
	Color    string             `json:"color"`
	Center   Coordinate         `json:"center"`
	Radius   float64            `json:"radius"` // m
	Priority EvacuationPriority `json:"priority"`
}

// MultipleSourceResults is the superposition of several single-source runs.
type MultipleSourceResults struct {
	CombinedZones           DetailedZones    `json:"combined_zones"`
	IndividualResults       []SourceResult   `json:"individual_results"`
	TotalMassReleased       float64          `json:"total_mass_released"` // kg
	AffectedPopulation      float64          `json:"affected_population"`
	PriorityEvacuationZones []EvacuationZone `json:"priority_evacuation_zones"`
}

// Severity is a health impact class.
type Severity string

const (
	SeverityFatal  Severity = "fatal"
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// HealthImpact is the classified effect of an exposure.
type HealthImpact struct {
	Severity    Severity `json:"severity"`
	Description string   `json:"description"`
}

// LeakSimulation is one stochastic detection trial.
type LeakSimulation struct {
	Detected        bool    `json:"detected"`
	Probability     float64 `json:"probability"`
	TimeToDetection float64 `json:"time_to_detection"` // minutes, 0 when not detected
	// DetectedAt is the wall-clock time the alarm would fire; zero when not detected.
	DetectedAt time.Time `json:"detected_at,omitzero"`
}
