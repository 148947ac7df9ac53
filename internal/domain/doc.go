// Package domain models normalized remote-sensing observations.
//
// # Data Source
//
// Observations originate from ground-based remote-sensing instruments
// (Doppler wind lidars, radar wind profilers, sodars, microwave
// radiometers) that each write their own self-describing text format.
// The format readers in internal/formats parse those files into uniform
// tables; this package turns table rows into the flat observation
// records the sink topic carries.
//
// # Conventions
//
// Heights are meters above ground level. Wind direction is the
// meteorological from-direction in degrees, (0, 360] with 360 = north.
// Wind speed is m/s except where an instrument reports otherwise; the
// field name carries the unit when the source format declares one
// (e.g. "windspeed_ms").
//
// Masked sentinel values never reach an observation: a cell the reader
// marked missing is simply absent from the Fields map. Consumers treat
// an absent key as "not measured", never as zero.
//
// # ID Generation
//
// Observation IDs are deterministic SHA-256 hashes of
// instrument|file|time|height|row. Reprocessing the same file yields
// the same IDs, so downstream upserts stay idempotent without
// distributed coordination. See [generateID].
package domain
