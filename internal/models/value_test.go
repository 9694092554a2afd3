package models

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestValue_ZeroIsUnavailable(t *testing.T) {
	var v Value
	assert.False(t, v.Available())
	assert.Equal(t, ReasonMissing, v.Reason())
	assert.Equal(t, "N/A", v.String())
	assert.Equal(t, 0.0, v.Float())
}

func TestValue_MapAndOr(t *testing.T) {
	pct := Of(0.085).Map(func(f float64) float64 { return f * 100 })
	got, ok := pct.Get()
	require.True(t, ok)
	assert.InDelta(t, 8.5, got, 1e-9)

	na := Unavailable(ReasonZero).Map(func(f float64) float64 { return f * 100 })
	assert.False(t, na.Available())
	assert.Equal(t, ReasonZero, na.Reason())

	assert.Equal(t, 12.0, Unavailable(ReasonMissing).Or(Of(12)).Float())
	assert.Equal(t, 3.0, Of(3).Or(Of(12)).Float())
}

func TestValue_JSON(t *testing.T) {
	type doc struct {
		A Value `json:"a"`
		B Value `json:"b"`
	}

	data, err := json.Marshal(doc{A: Of(1.5), B: Unavailable(ReasonMissing)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1.5,"b":null}`, string(data))

	var back doc
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, 1.5, back.A.Float())
	assert.False(t, back.B.Available())

	// Legacy documents carried the "N/A" string sentinel.
	require.NoError(t, json.Unmarshal([]byte(`{"a":"N/A","b":"42"}`), &back))
	assert.False(t, back.A.Available())
	assert.Equal(t, 42.0, back.B.Float())
}

func TestValue_MarshalNonFinite(t *testing.T) {
	data, err := json.Marshal(Of(math.Inf(1)))
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		in     string
		want   float64
		wantOK bool
	}{
		{"12.5", 12.5, true},
		{"0", 0, true},
		{"", 0, false},
		{"N/A", 0, false},
		{"abc", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseValue(tt.in).Get()
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValue_MarshalYAML(t *testing.T) {
	out, err := yaml.Marshal(struct {
		Price Value `yaml:"price"`
		PE    Value `yaml:"pe"`
	}{Of(1.5), Unavailable(ReasonMissing)})
	require.NoError(t, err)
	assert.Equal(t, "price: 1.5\npe: null\n", string(out))
}
