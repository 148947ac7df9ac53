package ingest

import "strconv"

// Schema is the ordered, deduplicated list of column names governing how a
// block's raw tokens map to named fields.
type Schema []string

// ResolveSchema deduplicates raw header tokens. The first occurrence of a
// name is left unchanged; the i-th occurrence (0-indexed) becomes
// "<name>.<i>". Resolving an already-resolved schema is a no-op.
func ResolveSchema(fields []string) Schema {
	out := make(Schema, len(fields))
	seen := make(map[string]int, len(fields))
	for i, f := range fields {
		n := seen[f]
		if n == 0 {
			out[i] = f
		} else {
			out[i] = f + "." + strconv.Itoa(n)
		}
		seen[f] = n + 1
	}
	return out
}

// Index returns the position of name in the schema, or -1.
func (s Schema) Index(name string) int {
	for i, f := range s {
		if f == name {
			return i
		}
	}
	return -1
}
