package format

import (
	"fmt"
	"strings"
	"time"

	"github.com/ncruces/go-strftime"

	"logreport/internal/registry"
)

// Built-in style names.
const (
	// StyleLong renders "September 07 2023, 14:30".
	StyleLong = "long"
	// StyleWeekday renders "Thu, 07 September 2023 14:30:00". Seconds are always 00
	// because the input carries none.
	StyleWeekday = "weekday"

	DefaultStyle = StyleLong
)

// CustomStyle is the name given to styles built from a configured pattern.
const CustomStyle = "custom"

// PatternStyle renders timestamps with a strftime pattern.
// Month and weekday names are always English.
type PatternStyle struct {
	name    string
	pattern string
}

func (s *PatternStyle) Name() string    { return s.name }
func (s *PatternStyle) Pattern() string { return s.pattern }

func (s *PatternStyle) Format(t time.Time) string {
	return strftime.Format(s.pattern, t)
}

// NewPatternStyle creates a named style from a strftime pattern.
func NewPatternStyle(name, pattern string) (*PatternStyle, error) {
	if strings.TrimSpace(pattern) == "" {
		return nil, fmt.Errorf("date style %q: empty pattern", name)
	}
	if !strings.Contains(pattern, "%") {
		return nil, fmt.Errorf("date style %q: pattern %q has no conversion specifiers", name, pattern)
	}
	return &PatternStyle{name: name, pattern: pattern}, nil
}

func init() {
	registry.Register(&PatternStyle{name: StyleLong, pattern: "%B %d %Y, %H:%M"})
	registry.Register(&PatternStyle{name: StyleWeekday, pattern: "%a, %d %B %Y %H:%M:%S"})
}

// ResolveStyle picks the date style for a run. A non-empty pattern wins over
// name; an empty name means DefaultStyle.
func ResolveStyle(name, pattern string) (registry.Style, error) {
	if pattern != "" {
		s, err := NewPatternStyle(CustomStyle, pattern)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	if name == "" {
		name = DefaultStyle
	}
	s, ok := registry.Default().Lookup(name)
	if !ok {
		return nil, fmt.Errorf("unknown date style %q (available: %s)",
			name, strings.Join(registry.Default().Names(), ", "))
	}
	return s, nil
}
