package domain

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Measurement is an optional millimetre value as typed into a form field.
// It keeps the raw text so that an empty or non-numeric entry is never
// mistaken for zero.
type Measurement struct {
	raw string
}

// NewMeasurement returns a measurement holding v.
func NewMeasurement(v float64) Measurement {
	return Measurement{raw: strconv.FormatFloat(v, 'f', -1, 64)}
}

// ParseMeasurement wraps raw form text without interpreting it.
func ParseMeasurement(raw string) Measurement {
	return Measurement{raw: strings.TrimSpace(raw)}
}

// Value returns the numeric value and whether the text held a finite number.
func (m Measurement) Value() (float64, bool) {
	if m.raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m.raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// AtMost reports whether the measurement is numeric and <= limit.
func (m Measurement) AtMost(limit float64) bool {
	v, ok := m.Value()
	return ok && v <= limit
}

// AtLeast reports whether the measurement is numeric and >= limit.
func (m Measurement) AtLeast(limit float64) bool {
	v, ok := m.Value()
	return ok && v >= limit
}

// IsEmpty reports whether nothing was entered.
func (m Measurement) IsEmpty() bool {
	return m.raw == ""
}

// IsZero lets yaml omitempty drop unset measurements.
func (m Measurement) IsZero() bool {
	return m.IsEmpty()
}

func (m Measurement) String() string {
	return m.raw
}

// MarshalJSON emits a number when the text is numeric, the raw string
// otherwise and null when empty. Numbers are re-encoded since forms such as
// ".5" or "+2" parse as floats but are not JSON numbers.
func (m Measurement) MarshalJSON() ([]byte, error) {
	if m.raw == "" {
		return []byte("null"), nil
	}
	if v, ok := m.Value(); ok {
		return json.Marshal(v)
	}
	return json.Marshal(m.raw)
}

// UnmarshalJSON accepts a number, a string or null.
func (m *Measurement) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		m.raw = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*m = ParseMeasurement(s)
		return nil
	}
	*m = ParseMeasurement(string(data))
	return nil
}

// MarshalYAML mirrors MarshalJSON.
func (m Measurement) MarshalYAML() (interface{}, error) {
	if m.raw == "" {
		return nil, nil
	}
	if v, ok := m.Value(); ok {
		return v, nil
	}
	return m.raw, nil
}

// UnmarshalYAML accepts any scalar.
func (m *Measurement) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode || node.Tag == "!!null" {
		m.raw = ""
		return nil
	}
	*m = ParseMeasurement(node.Value)
	return nil
}
