package score

import (
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
)

// DecodeResponse parses a model's JSON object text into a loosely-typed
// map, using sonic rather than encoding/json since this runs once per
// candidate per attempt and is the hottest decode path in the pipeline.
func DecodeResponse(jsonText string) (map[string]any, error) {
	var out map[string]any
	if err := sonic.UnmarshalString(jsonText, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CoerceFloat accepts a number directly, or a numeric string, and returns
// false if v cannot be interpreted as a float at all.
func CoerceFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// ClampScore constrains a score to the [0, 1] range.
func ClampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// CoerceSubscoreContainer normalizes a subscore blob, which a model may
// return as a JSON object, a JSON array, a JSON-encoded string of either, or
// a comma/semicolon separated list of numbers, into a map keyed by the
// canonical criterion codes when the input is ordered as such, or the
// literal keys it already carries when it's a map.
func CoerceSubscoreContainer(raw any, canonicalOrder []string) map[string]float64 {
	switch t := raw.(type) {
	case map[string]any:
		out := make(map[string]float64, len(t))
		for k, v := range t {
			if f, ok := CoerceFloat(v); ok {
				out[k] = ClampScore(f)
			}
		}
		return out
	case []any:
		return assignByOrder(floatsFromSlice(t), canonicalOrder)
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return nil
		}
		if strings.HasPrefix(s, "{") {
			obj, err := DecodeResponse(s)
			if err == nil {
				return CoerceSubscoreContainer(obj, canonicalOrder)
			}
			return nil
		}
		if strings.HasPrefix(s, "[") {
			var arr []any
			if err := decodeInto(s, &arr); err == nil {
				return assignByOrder(floatsFromSlice(arr), canonicalOrder)
			}
			return nil
		}
		sep := ","
		if strings.Contains(s, ";") {
			sep = ";"
		}
		var floats []float64
		for _, part := range strings.Split(s, sep) {
			if f, err := strconv.ParseFloat(strings.TrimSpace(part), 64); err == nil {
				floats = append(floats, f)
			}
		}
		return assignByOrder(floats, canonicalOrder)
	default:
		return nil
	}
}

func floatsFromSlice(in []any) []float64 {
	out := make([]float64, 0, len(in))
	for _, v := range in {
		if f, ok := CoerceFloat(v); ok {
			out = append(out, f)
		}
	}
	return out
}

func assignByOrder(values []float64, order []string) map[string]float64 {
	out := make(map[string]float64, len(order))
	for i, key := range order {
		if i < len(values) {
			out[key] = ClampScore(values[i])
		}
	}
	return out
}

func decodeInto(s string, out any) error {
	return sonic.UnmarshalString(s, out)
}
