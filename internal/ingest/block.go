package ingest

import (
	"io"
	"strings"
	"time"
)

type termKind int

const (
	termRows termKind = iota
	termToken
	termBlank
)

// Terminator is the rule that ends a block: a fixed row count, a terminator
// token on its own line, or a blank line. Token- and blank-delimited blocks
// also end at EOF; only a fixed row count treats EOF as truncation.
type Terminator struct {
	kind  termKind
	rows  int
	token string
}

// Rows terminates a block after exactly n rows.
func Rows(n int) Terminator { return Terminator{kind: termRows, rows: n} }

// Token terminates a block at a line whose trimmed content equals tok
// (e.g. the "$" line ending a profiler block). The token line is consumed.
func Token(tok string) Terminator { return Terminator{kind: termToken, token: tok} }

// BlankLine terminates a block at the first blank line, which is consumed.
func BlankLine() Terminator { return Terminator{kind: termBlank} }

// BlockSpec configures one ReadBlock invocation.
type BlockSpec struct {
	Schema     Schema
	Terminator Terminator

	// Delimiter splits row tokens; empty means any run of whitespace.
	Delimiter string

	// Block-level context attached to the returned Block.
	Time     time.Time
	Duration time.Duration
	Meta     Metadata
	Tag      string
}

// Record is one parsed row, positionally aligned with its block's Schema.
type Record []Value

// Block is one self-contained run of records sharing a schema and a
// timestamp (or timestamp range: Time plus Duration). Blocks are immutable
// once returned and are consumed by Stitch.
type Block struct {
	Schema   Schema
	Rows     []Record
	Time     time.Time
	Duration time.Duration
	Meta     Metadata
	Tag      string
}

// Field returns the value of the named field in row i, or the missing
// marker when the field is not part of the block's schema.
func (b *Block) Field(i int, name string) Value {
	idx := b.Schema.Index(name)
	if idx < 0 {
		return Missing
	}
	return b.Rows[i][idx]
}

// ReadBlock consumes rows from the cursor until the termination rule is
// met. Each line is tokenized and zipped positionally against the schema;
// a token-count disagreement is a ColumnMismatchError, never silent
// padding. Numeric coercion is attempted per field with text fallback.
func (r *Reader) ReadBlock(spec BlockSpec) (*Block, error) {
	block := &Block{
		Schema:   spec.Schema,
		Time:     spec.Time,
		Duration: spec.Duration,
		Meta:     spec.Meta,
		Tag:      spec.Tag,
	}

	for {
		if spec.Terminator.kind == termRows && len(block.Rows) == spec.Terminator.rows {
			return block, nil
		}

		line, err := r.ReadLine()
		if err == io.EOF {
			if spec.Terminator.kind == termRows {
				return nil, &TruncatedBlockError{
					Line: r.line,
					Want: spec.Terminator.rows,
					Got:  len(block.Rows),
				}
			}
			return block, nil
		}
		if err != nil {
			return nil, err
		}

		switch spec.Terminator.kind {
		case termToken:
			if strings.TrimSpace(line) == spec.Terminator.token {
				return block, nil
			}
		case termBlank:
			if strings.TrimSpace(line) == "" {
				return block, nil
			}
		}

		rec, err := r.parseRow(line, spec)
		if err != nil {
			return nil, err
		}
		block.Rows = append(block.Rows, rec)
	}
}

func (r *Reader) parseRow(line string, spec BlockSpec) (Record, error) {
	var tokens []string
	if spec.Delimiter == "" {
		tokens = strings.Fields(line)
	} else {
		tokens = strings.Split(strings.TrimSpace(line), spec.Delimiter)
		for i := range tokens {
			tokens[i] = strings.TrimSpace(tokens[i])
		}
	}

	if len(tokens) != len(spec.Schema) {
		return nil, &ColumnMismatchError{
			Line:    r.line,
			Want:    len(spec.Schema),
			Got:     len(tokens),
			Context: "row token count disagrees with schema",
		}
	}

	rec := make(Record, len(tokens))
	for i, tok := range tokens {
		rec[i] = Coerce(tok)
	}
	return rec, nil
}
