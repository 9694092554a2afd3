package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Unavailability reasons carried by Value.
const (
	ReasonMissing      = "missing"
	ReasonZero         = "zero"
	ReasonNotNumeric   = "not numeric"
	ReasonNotFinite    = "not finite"
	ReasonInsufficient = "insufficient data"
	ReasonFetchFailed  = "fetch failed"
)

// Value is an optional numeric metric. The zero Value is unavailable.
type Value struct {
	v      float64
	ok     bool
	reason string
}

// Of returns an available Value.
func Of(v float64) Value {
	return Value{v: v, ok: true}
}

// Unavailable returns a Value marked unavailable with the given reason.
func Unavailable(reason string) Value {
	return Value{reason: reason}
}

// Get returns the wrapped number and whether it is available.
func (v Value) Get() (float64, bool) {
	return v.v, v.ok
}

// Available reports whether the value is present.
func (v Value) Available() bool {
	return v.ok
}

// Float returns the number, or 0 when unavailable.
func (v Value) Float() float64 {
	if !v.ok {
		return 0
	}
	return v.v
}

// Reason returns why the value is unavailable, or "" when it is present.
func (v Value) Reason() string {
	if v.ok {
		return ""
	}
	if v.reason == "" {
		return ReasonMissing
	}
	return v.reason
}

// Map applies fn when the value is present.
func (v Value) Map(fn func(float64) float64) Value {
	if !v.ok {
		return v
	}
	return Of(fn(v.v))
}

// Or returns v when present, otherwise other.
func (v Value) Or(other Value) Value {
	if v.ok {
		return v
	}
	return other
}

// String implements fmt.Stringer. Unavailable values render as "N/A".
func (v Value) String() string {
	if !v.ok {
		return "N/A"
	}
	return strconv.FormatFloat(v.v, 'f', -1, 64)
}

// MarshalJSON encodes an unavailable value as null.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.ok {
		return []byte("null"), nil
	}
	if math.IsNaN(v.v) || math.IsInf(v.v, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(v.v)
}

// MarshalYAML encodes an unavailable value as null.
func (v Value) MarshalYAML() (any, error) {
	if !v.ok || math.IsNaN(v.v) || math.IsInf(v.v, 0) {
		return nil, nil
	}
	return v.v, nil
}

// UnmarshalJSON accepts a number, null, or the legacy "N/A" string.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*v = Unavailable(ReasonMissing)
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = ParseValue(s)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("invalid metric value %s: %w", string(data), err)
	}
	*v = Of(f)
	return nil
}

// ParseValue converts a string into a Value. Empty strings and "N/A" are unavailable.
func ParseValue(s string) Value {
	switch s {
	case "", "N/A", "n/a", "-", "None", "null":
		return Unavailable(ReasonMissing)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Unavailable(ReasonNotNumeric)
	}
	return Of(f)
}
