package metrics

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/ternarybob/barsi/internal/models"
)

// field reads info[key] as a number. Missing keys, nil, zero and non-numeric
// values all come back unavailable with a reason.
func field(info map[string]any, key string) models.Value {
	raw, ok := info[key]
	if !ok || raw == nil {
		return models.Unavailable(models.ReasonMissing)
	}
	v := toValue(raw)
	if f, ok := v.Get(); ok && f == 0 {
		return models.Unavailable(models.ReasonZero)
	}
	return v
}

// Number converts a raw info value into a Value.
func Number(raw any) models.Value {
	return toValue(raw)
}

func toValue(raw any) models.Value {
	var f float64
	switch n := raw.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint:
		f = float64(n)
	case uint32:
		f = float64(n)
	case uint64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return models.Unavailable(models.ReasonNotNumeric)
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return models.Unavailable(models.ReasonNotNumeric)
		}
		f = parsed
	default:
		return models.Unavailable(models.ReasonNotNumeric)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return models.Unavailable(models.ReasonNotFinite)
	}
	return models.Of(f)
}

// text reads info[key] as a non-placeholder string.
func text(info map[string]any, key string) (string, bool) {
	raw, ok := info[key]
	if !ok {
		return "", false
	}
	s, ok := raw.(string)
	if !ok || models.IsPlaceholder(s) {
		return "", false
	}
	return strings.TrimSpace(s), true
}
