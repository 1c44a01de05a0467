// Package domain models chemical release reports and the hazard assessments
// derived from them.
//
// # Data Source
//
// Release reports are published to the Kafka source topic by facility leak
// monitors and by field responders using the incident intake form. Each
// message is one JSON object describing a single release, or a group of
// release points leaking at the same site.
//
// # Report Format
//
// The dispersion model parameters are flattened into the report:
//
//	{
//	  "id": "CCS-2024-0117",
//	  "facility": "Calumet Cold Storage",
//	  "reported_at": "2024-04-26T15:10:00Z",
//	  "chemical": "ammonia",
//	  "release_rate": 12.5,
//	  "wind_speed": 4.2,
//	  "wind_direction": 250,
//	  "stability_class": "D",
//	  "temperature": 18,
//	  "humidity": 65,
//	  "source_height": 6,
//	  "location": {"lat": 41.6528, "lng": -87.5473}
//	}
//
// Optional fields (terrain, indoor, leak_duration, sensor_threshold,
// sensor_count, monitoring_mode, release_temperature, pressure) follow the
// dispersion package defaults when absent. A "sources" array turns the
// report into a multi-source scenario sharing the report's meteorology.
//
// Units:
//
//	release_rate      kg/min
//	wind_speed        m/s, wind_direction in degrees the wind blows FROM
//	temperature       °C
//	humidity          % relative humidity
//	source_height     m above ground
//	exposure_minutes  minutes (defaults to leak_duration, then 60)
//
// Chemical names are case-insensitive and matched against the built-in
// chemical table. Unknown chemicals are still assessed with generic factors;
// a report with no chemical at all is rejected with [ErrNoChemical].
//
// # Health Classification
//
// The health impact is classified at the peak ground-level concentration of
// the plume (the most concentrated source for multi-source reports) over the
// exposure time, against the chemical's AEGL ladder.
//
// # ID Generation
//
// Assessment IDs are deterministic SHA-256 hashes of
// report id|chemical|lat|lng|total release rate, prefixed with the chemical.
// Replaying a report yields the same ID, which keeps downstream upserts
// idempotent. See [generateID].
package domain
