package ingest

import (
	"strconv"
	"strings"
)

// Kind discriminates the three states a parsed cell can be in.
type Kind int

const (
	KindMissing Kind = iota
	KindNumber
	KindText
)

// Value is a typed scalar cell: a number, a piece of text, or the missing
// marker. The zero Value is missing.
type Value struct {
	kind Kind
	num  float64
	text string
}

// Missing is the missing-value marker used for masked sentinels and for
// columns absent from a block during heterogeneous stitching.
var Missing = Value{}

// Num returns a numeric Value.
func Num(f float64) Value { return Value{kind: KindNumber, num: f} }

// Str returns a text Value.
func Str(s string) Value { return Value{kind: KindText, text: s} }

// Coerce parses a raw token: numeric if it parses as a float, text
// otherwise. Legitimately textual fields are not an error.
func Coerce(token string) Value {
	if f, err := strconv.ParseFloat(token, 64); err == nil {
		return Num(f)
	}
	return Str(token)
}

// CoerceMeta parses a metadata value with int -> float -> string preference.
// Integers still come back as KindNumber; the distinction only matters for
// display, so a single numeric kind suffices.
func CoerceMeta(raw string) Value {
	raw = strings.TrimSpace(raw)
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return Num(f)
	}
	return Str(raw)
}

func (v Value) Kind() Kind      { return v.kind }
func (v Value) IsMissing() bool { return v.kind == KindMissing }

// Float returns the numeric payload and whether the Value is a number.
func (v Value) Float() (float64, bool) {
	return v.num, v.kind == KindNumber
}

// Text returns the text payload and whether the Value is text.
func (v Value) Text() (string, bool) {
	return v.text, v.kind == KindText
}

// Equal reports exact-value equality. The missing marker equals nothing,
// including itself as far as sentinel matching is concerned; masking is
// therefore idempotent.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind || v.kind == KindMissing {
		return false
	}
	if v.kind == KindNumber {
		return v.num == o.num
	}
	return v.text == o.text
}

// String renders the Value for logs and diagnostics.
func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	case KindText:
		return v.text
	default:
		return "<missing>"
	}
}
