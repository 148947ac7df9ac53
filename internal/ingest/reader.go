package ingest

import (
	"bufio"
	"io"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Reader is a line cursor over an instrument text stream. Invalid UTF-8
// byte sequences are replaced with U+FFFD during decoding rather than
// aborting the read — several instrument loggers interleave stray bytes
// with otherwise clean ASCII output.
//
// A Reader is owned by exactly one file-processing pass and is not safe for
// concurrent use.
type Reader struct {
	sc     *bufio.Scanner
	pushed []string
	line   int
}

// NewReader wraps r in a replace-on-error UTF-8 decoder and a line scanner.
func NewReader(r io.Reader) *Reader {
	sc := bufio.NewScanner(transform.NewReader(r, unicode.UTF8.NewDecoder()))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &Reader{sc: sc}
}

// ReadLine returns the next line without its terminator, or io.EOF.
func (r *Reader) ReadLine() (string, error) {
	if n := len(r.pushed); n > 0 {
		line := r.pushed[n-1]
		r.pushed = r.pushed[:n-1]
		r.line++
		return line, nil
	}
	if !r.sc.Scan() {
		if err := r.sc.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	r.line++
	return r.sc.Text(), nil
}

// UnreadLine pushes a line back so the next ReadLine returns it again.
// Used for headerless file variants where the first line turns out to be
// data rather than metadata.
func (r *Reader) UnreadLine(line string) {
	r.pushed = append(r.pushed, line)
	r.line--
}

// Line returns the 1-based number of the last line read.
func (r *Reader) Line() int { return r.line }

// Skip consumes n lines. Reaching EOF early is a SchemaError: a declared
// line count could not be satisfied.
func (r *Reader) Skip(n int) error {
	for i := 0; i < n; i++ {
		if _, err := r.ReadLine(); err != nil {
			return &SchemaError{Line: r.line, Msg: "stream ended inside a declared header section"}
		}
	}
	return nil
}

// Metadata holds typed key=value pairs parsed from a file header.
type Metadata map[string]Value

// ParseMetadataLine splits a "key=value" line. ok is false when the line
// carries no '='.
func ParseMetadataLine(line string) (key string, val Value, ok bool) {
	k, v, found := strings.Cut(line, "=")
	if !found {
		return "", Missing, false
	}
	return strings.TrimSpace(k), CoerceMeta(v), true
}

// ReadMetadata consumes count key=value lines. Lines without an '=' are
// skipped but still counted, matching how instrument headers pad their
// declared line counts. EOF before count lines is a SchemaError.
func (r *Reader) ReadMetadata(count int) (Metadata, error) {
	meta := make(Metadata, count)
	for i := 0; i < count; i++ {
		line, err := r.ReadLine()
		if err != nil {
			return nil, &SchemaError{
				Line: r.line,
				Msg:  "stream ended before the declared metadata line count was consumed",
			}
		}
		if key, val, ok := ParseMetadataLine(line); ok {
			meta[key] = val
		}
	}
	return meta, nil
}

// ExpectTag reads one line and checks its first whitespace token against an
// allow-list, returning the full line for further parsing. A missing or
// unrecognized token is an UnexpectedBlockHeaderError.
func (r *Reader) ExpectTag(allowed ...string) (string, error) {
	line, err := r.ReadLine()
	if err != nil {
		return "", &UnexpectedBlockHeaderError{Line: r.line, Got: "<EOF>", Want: allowed}
	}
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", &UnexpectedBlockHeaderError{Line: r.line, Got: "", Want: allowed}
	}
	for _, want := range allowed {
		if fields[0] == want {
			return line, nil
		}
	}
	return "", &UnexpectedBlockHeaderError{Line: r.line, Got: fields[0], Want: allowed}
}

// ExpectLine reads one line and checks its trimmed content against an
// allow-list of exact literals.
func (r *Reader) ExpectLine(allowed ...string) (string, error) {
	line, err := r.ReadLine()
	if err != nil {
		return "", &UnexpectedBlockHeaderError{Line: r.line, Got: "<EOF>", Want: allowed}
	}
	trimmed := strings.TrimSpace(line)
	for _, want := range allowed {
		if trimmed == want {
			return line, nil
		}
	}
	return "", &UnexpectedBlockHeaderError{Line: r.line, Got: trimmed, Want: allowed}
}
