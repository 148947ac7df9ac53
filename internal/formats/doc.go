// Package formats maps each supported remote-sensing file format onto the
// generic block ingestion engine in internal/ingest.
//
// A format here is configuration, not a bespoke parser: the fixed column
// names, range-gate heights, and bad-value sentinels each instrument vendor
// documents live in constant tables, and the reader functions drive the
// engine's schema resolution, block reading, stitching, masking, and
// reshaping steps with them. Adding an instrument variant means supplying
// another table, not another parsing loop.
//
// Supported formats:
//
//   - windcube: Leosphere WindCube v1 lidar exports (optional key=value
//     header, per-level um/vm orthogonal wind components).
//   - profiler: NOAA consensus wind profiler radar files (repeated
//     WINDS/RASS blocks, "$"-terminated).
//   - pcsodar: ARL wind profilers writing PCSodar data blocks (fixed
//     28-column schema, fixed range gates, comma-delimited).
//   - scintec: Scintec MFAS flat-array sodar APRun files (self-describing
//     variable definitions with per-column sentinels).
//   - radiometrics: Radiometrics microwave radiometer level 2 files
//     (record-type multiplexed CSV).
//
// Ceilometer workbook exports are handled by application-specific tooling
// and are deliberately not represented here.
package formats
