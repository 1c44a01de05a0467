// Package dispersion estimates the downwind spread of a hazardous chemical
// release and classifies the surrounding area into response zones.
//
// # Model
//
// The engine is a screening-grade Gaussian plume approximation. A scenario
// flows through five pure stages:
//
//  1. Environmental factors: dimensionless multipliers for atmospheric
//     stability, release temperature, humidity, pressure, terrain and indoor
//     containment, multiplied into a single environmental factor.
//  2. Plume geometry: Pasquill–Gifford σy/σz curves of the form
//     σ = a·x·(1+b·x)^-0.5, a simplified Briggs buoyancy rise for warm
//     releases, and the effective release height derived from it.
//  3. Hazard zones: a base distance (km) scaled by chemical volatility,
//     sqrt(Q/10), wind^-0.8, the environmental factor and release height,
//     split 0.3/0.6/1.0 into red/orange/yellow boundaries. Boundary
//     concentrations come from AEGL-3/AEGL-2/AEGL-1.
//  4. Concentration profile and detection plan: a stability-dependent decay
//     curve out to 1.2× the yellow distance, detection probability and
//     timing for the configured sensor network, and sensor positions.
//  5. Multi-source superposition: per-source runs combined by taking the
//     largest zone and summing areas, populations and mass.
//
// # Units
//
//	release rate   kg/min
//	wind speed     m/s, direction in degrees the wind blows FROM (0 = north)
//	distances      metres in results, kilometres inside the zone model
//	concentration  mg/m³ (guidelines in the chemical table are ppm)
//	temperature    °C
//	area           km²
//
// Coordinates are offset with an equirectangular approximation
// (111 320 m per degree of latitude, longitude scaled by cos(latitude)),
// adequate at the sub-100 km scale of hazard zones.
//
// # Degradation
//
// Hazard estimates are needed most when telemetry is worst, so the engine
// never returns an error and never panics past its public methods. Missing
// or invalid inputs (NaN, negative rates, out-of-range humidity or
// coordinates, unknown stability classes or chemicals) are replaced by the
// Default* constants or clamped, logged at WARN and reported to the
// Observer. A panic inside a calculation is recovered, logged at ERROR and
// replaced by ConservativeZones.
package dispersion
