// Package format turns raw field text into display values: thousands-separated
// byte counts and reformatted timestamps.
package format

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"

	"logreport/internal/record"
	"logreport/internal/registry"
)

var (
	// ErrInvalidNumber is returned when a byte count is not a base-10 unsigned integer.
	ErrInvalidNumber = errors.New("invalid number")

	// ErrInvalidDateTime is returned when a timestamp does not match InputLayout.
	ErrInvalidDateTime = errors.New("invalid datetime format")
)

// InputLayout is the only accepted timestamp shape: YYYY-MM-DD HH:MM, 24-hour, zero-padded.
const InputLayout = "2006-01-02 15:04"

// Number parses text as a non-negative integer and renders it with comma
// thousands separators, e.g. "00012345" -> "12,345".
func Number(text string) (string, error) {
	// bitSize 63 keeps the value inside int64 for humanize.
	n, err := strconv.ParseUint(text, 10, 63)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidNumber, text)
	}
	return humanize.Comma(int64(n)), nil
}

// ParseDateTime parses text with InputLayout. time.Parse accepts a single-digit
// hour, so the length is checked first to keep the layout exact.
func ParseDateTime(text string) (time.Time, error) {
	if len(text) != len(InputLayout) {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDateTime, text)
	}
	t, err := time.Parse(InputLayout, text)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDateTime, text)
	}
	return t, nil
}

// DateTime parses text and renders it with style.
func DateTime(text string, style registry.Style) (string, error) {
	t, err := ParseDateTime(text)
	if err != nil {
		return "", err
	}
	return style.Format(t), nil
}

// Formatter converts extracted fields into a display record.
type Formatter struct {
	style registry.Style
}

// New creates a Formatter rendering timestamps with style.
// A nil style selects DefaultStyle.
func New(style registry.Style) *Formatter {
	if style == nil {
		style, _ = registry.Default().Lookup(DefaultStyle)
	}
	return &Formatter{style: style}
}

// Style returns the date style the formatter renders with.
func (f *Formatter) Style() registry.Style {
	return f.style
}

// Format formats both byte counts and the timestamp. The first failing field
// is reported, wrapped with its field name.
func (f *Formatter) Format(fields record.Fields) (record.Record, error) {
	tx, err := Number(fields.BytesTx)
	if err != nil {
		return record.Record{}, fmt.Errorf("%s: %w", record.FieldBytesTx, err)
	}
	rx, err := Number(fields.BytesRx)
	if err != nil {
		return record.Record{}, fmt.Errorf("%s: %w", record.FieldBytesRx, err)
	}
	dt, err := DateTime(fields.DateTime, f.style)
	if err != nil {
		return record.Record{}, fmt.Errorf("%s: %w", record.FieldDateTime, err)
	}

	return record.Record{
		ID:       fields.ID,
		UserID:   fields.UserID,
		BytesTx:  tx,
		BytesRx:  rx,
		DateTime: dt,
	}, nil
}
