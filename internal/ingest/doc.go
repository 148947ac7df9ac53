// Package ingest implements a self-describing block-format ingestion engine
// for remote-sensing instrument files (wind lidars, radar wind profilers,
// sodars, microwave radiometers).
//
// # File Model
//
// Every supported format embeds its own structure inside the file: optional
// key=value metadata lines, a schema (column name) line, then one or more
// sequential data blocks. A Block is a run of rows sharing one schema and one
// timestamp (or a timestamp range: start plus duration). Blocks end on a
// declared row count, a terminator token on its own line, or a blank line.
//
// The engine splits the recurring parsing work into small, composable steps:
//
//   - Reader: line cursor over a UTF-8 text stream. Invalid byte sequences
//     are replaced, not fatal — instrument loggers routinely emit stray
//     bytes. Supports one-line pushback for headerless file variants.
//   - ResolveSchema: deduplicates repeated header tokens. The first
//     occurrence keeps its name; the i-th repeat becomes "<name>.<i>".
//   - ReadBlock: tokenizes rows against a Schema with per-field numeric
//     coercion (fields that fail coercion stay text).
//   - Stitch: concatenates Blocks into a Table. Blocks with differing
//     schemas are legal; absent columns are filled with the missing marker.
//   - MaskSentinels: replaces documented bad-value literals (999999, -99.9,
//     99.99, ...) with the missing marker by exact-value equality.
//   - Reshape: unpivots wide per-level component columns into long
//     (time, height) rows and derives wind speed and direction.
//
// # Error Taxonomy
//
// Structural problems abort the current file and are never retried — the
// cause is a malformed or unsupported file, not a transient condition:
//
//   - SchemaError: the header declares structure the stream cannot satisfy.
//   - TruncatedBlockError: the stream ends mid-block.
//   - UnexpectedBlockHeaderError: a required tag or version marker is
//     missing or not on the allow-list.
//   - ColumnMismatchError: a row disagrees with its schema, or paired
//     component columns disagree on level count.
//
// A sentinel column with no match in the resolved schema is a diagnostic,
// not an error: downstream fields may legitimately be absent from a file
// variant. MaskSentinels reports such columns instead of failing.
//
// The engine owns no persistent state. Each file produces one independent
// Table; processing is single-threaded per file and safe to run concurrently
// across files.
package ingest
