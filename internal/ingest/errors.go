package ingest

import (
	"fmt"
	"strings"
)

// SchemaError reports a header that declares structure the stream cannot
// satisfy, e.g. a metadata-line count larger than the remaining file.
type SchemaError struct {
	Line int
	Msg  string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema error at line %d: %s", e.Line, e.Msg)
}

// TruncatedBlockError reports a stream that ended before a fixed-row-count
// block was complete.
type TruncatedBlockError struct {
	Line int
	Want int
	Got  int
}

func (e *TruncatedBlockError) Error() string {
	return fmt.Sprintf("truncated block at line %d: got %d of %d declared rows", e.Line, e.Got, e.Want)
}

// UnexpectedBlockHeaderError reports a required tag literal (format or
// version marker) that is absent or not on the allow-list.
type UnexpectedBlockHeaderError struct {
	Line int
	Got  string
	Want []string
}

func (e *UnexpectedBlockHeaderError) Error() string {
	return fmt.Sprintf("unexpected block header at line %d: got %q, want one of %s",
		e.Line, e.Got, strings.Join(e.Want, ", "))
}

// ColumnMismatchError reports a row whose token count disagrees with its
// schema, or paired component columns that disagree on level count.
type ColumnMismatchError struct {
	Line    int
	Want    int
	Got     int
	Context string
}

func (e *ColumnMismatchError) Error() string {
	return fmt.Sprintf("column mismatch at line %d: %s: got %d, want %d", e.Line, e.Context, e.Got, e.Want)
}
