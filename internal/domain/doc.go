// Package domain models scintillometer measurements and their derived fluxes.
//
// # Data Source
//
// Raw measurements come from a Scintec BLS450 large-aperture scintillometer.
// The instrument's SRun software logs one record per averaging interval into a
// .mnd file; a collector service tails that log and publishes each record as
// flat JSON to the Kafka source topic, batch processing reads the .mnd files
// directly.
//
// # BLS450 Conventions
//
// Timestamp format:
//
//	"PT00H00M30S/2020-06-03T03:23:00Z"
//	ISO-8601 averaging duration and end-of-interval date joined by a slash.
//	Both halves are used: the duration distinguishes 30 s from 60 s
//	averaging, the date indexes the record.
//
// Path-length recalibration:
//
//	Cn2 scales with the beam path length L as L^-3. When the path length
//	configured in SRun disagrees with the surveyed distance, Cn2 and the
//	instrument's own flux output are multiplied by
//	(surveyed^-3)/(configured^-3) during parsing.
//
// Effective beam height:
//
//	The beam does not sit at a constant height above terrain. The height
//	used in flux computation is a path-weighted effective height computed
//	from the path transect with a Bessel-function weighting that peaks at
//	the path centre, with an exponent for the stability regime.
//
// Weather data:
//
//	ZAMG (now GeoSphere Austria) klima exports use short column codes which
//	are renamed on parse:
//
//	  DD  -> wind_direction        FF  -> vector_wind_speed
//	  FAM -> mean_wind_speed       GSX -> global_irradiance
//	  P   -> pressure              RF  -> relative_humidity
//	  RR  -> precipitation         TL  -> temperature_2m
//
//	Merged series are normalised to Kelvin and hPa: temperatures below 100
//	are taken as Celsius, pressures above 2000 as Pa.
//
// # ID Generation
//
// Estimate IDs are deterministic SHA-256 hashes of station|time|Cn2|pressure.
// Reprocessing the same raw record produces the same ID, which keeps the
// PostgreSQL sink idempotent (ON CONFLICT DO NOTHING) and makes topic replays
// safe without coordination.
package domain
