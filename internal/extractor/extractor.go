// Package extractor slices fixed-width log lines into their named fields.
// It knows nothing about formatting; callers get the trimmed raw text back.
package extractor

import (
	"errors"
	"fmt"
	"strings"

	"logreport/internal/record"
)

// ErrTruncatedLine is returned by CheckWidth when a line ends before one of
// the schema's fields begins.
var ErrTruncatedLine = errors.New("truncated line")

// trimSet is the whitespace stripped from both ends of every field.
const trimSet = " \t\n\r\x00\x0B"

// Span is a fixed byte range within a line.
type Span struct {
	Offset int `yaml:"offset" json:"offset"`
	Length int `yaml:"length" json:"length"`
}

// End returns the offset one past the last byte of the span.
func (s Span) End() int { return s.Offset + s.Length }

// Schema describes where each field lives in a line. It is a plain value:
// copies are independent and nothing in this package mutates one.
type Schema struct {
	ID       Span `yaml:"id" json:"id"`
	UserID   Span `yaml:"user_id" json:"user_id"`
	BytesTx  Span `yaml:"bytes_tx" json:"bytes_tx"`
	BytesRx  Span `yaml:"bytes_rx" json:"bytes_rx"`
	DateTime Span `yaml:"datetime" json:"datetime"`
}

// DefaultSchema returns the column layout of the standard transfer log.
func DefaultSchema() Schema {
	return Schema{
		ID:       Span{Offset: 0, Length: 12},
		UserID:   Span{Offset: 12, Length: 6},
		BytesTx:  Span{Offset: 18, Length: 8},
		BytesRx:  Span{Offset: 26, Length: 8},
		DateTime: Span{Offset: 34, Length: 17},
	}
}

// NewSchema builds a schema from spans keyed by field name (see record.FieldNames).
func NewSchema(spans map[string]Span) (Schema, error) {
	var s Schema
	for _, name := range record.FieldNames {
		sp, ok := spans[name]
		if !ok {
			return Schema{}, fmt.Errorf("schema: missing field %q", name)
		}
		*s.field(name) = sp
	}
	for name := range spans {
		if s.field(name) == nil {
			return Schema{}, fmt.Errorf("schema: unknown field %q", name)
		}
	}
	return s, s.Validate()
}

// field returns a pointer to the named span, or nil for unknown names.
func (s *Schema) field(name string) *Span {
	switch name {
	case record.FieldID:
		return &s.ID
	case record.FieldUserID:
		return &s.UserID
	case record.FieldBytesTx:
		return &s.BytesTx
	case record.FieldBytesRx:
		return &s.BytesRx
	case record.FieldDateTime:
		return &s.DateTime
	}
	return nil
}

// Span returns the span for a field name.
func (s Schema) Span(name string) (Span, bool) {
	p := s.field(name)
	if p == nil {
		return Span{}, false
	}
	return *p, true
}

// Validate checks that every span has a non-negative offset and a positive length.
// Overlapping spans are allowed.
func (s Schema) Validate() error {
	for _, name := range record.FieldNames {
		sp, _ := s.Span(name)
		if sp.Offset < 0 {
			return fmt.Errorf("schema: field %q has negative offset %d", name, sp.Offset)
		}
		if sp.Length <= 0 {
			return fmt.Errorf("schema: field %q has non-positive length %d", name, sp.Length)
		}
	}
	return nil
}

// Width returns the minimum line length that holds every field in full.
func (s Schema) Width() int {
	w := 0
	for _, name := range record.FieldNames {
		sp, _ := s.Span(name)
		if sp.End() > w {
			w = sp.End()
		}
	}
	return w
}

// Extract slices every field out of line and trims surrounding whitespace.
// Short lines are tolerated: a span past the end yields "" and a span that
// runs off the end is truncated.
func (s Schema) Extract(line string) record.Fields {
	return record.Fields{
		ID:       cut(line, s.ID),
		UserID:   cut(line, s.UserID),
		BytesTx:  cut(line, s.BytesTx),
		BytesRx:  cut(line, s.BytesRx),
		DateTime: cut(line, s.DateTime),
	}
}

// CheckWidth reports ErrTruncatedLine when line, minus its terminator, ends
// before some field begins. A field that is only partly present passes, since
// writers commonly drop the trailing padding of the last column.
func (s Schema) CheckWidth(line string) error {
	n := len(strings.TrimRight(line, "\r\n"))
	for _, name := range record.FieldNames {
		sp, _ := s.Span(name)
		if sp.Offset >= n {
			return fmt.Errorf("%w: field %q starts at byte %d, line has %d", ErrTruncatedLine, name, sp.Offset, n)
		}
	}
	return nil
}

func cut(line string, sp Span) string {
	if sp.Offset >= len(line) {
		return ""
	}
	end := sp.End()
	if end > len(line) {
		end = len(line)
	}
	return strings.Trim(line[sp.Offset:end], trimSet)
}
