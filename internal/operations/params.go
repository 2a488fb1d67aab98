package operations

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/desertthunder/vidx/internal/shared"
)

// Params is the parameter bag of one operation. Values are numbers, strings or booleans.
type Params map[string]any

// Number returns the numeric value at key, or def when it is absent, not a number, or not finite.
// Integer and fractional representations are both accepted.
func (p Params) Number(key string, def float64) float64 {
	if v, ok := p.OptionalNumber(key); ok {
		return v
	}
	return def
}

// OptionalNumber reports the numeric value at key and whether one was usable.
func (p Params) OptionalNumber(key string) (float64, bool) {
	raw, ok := p[key]
	if !ok {
		return 0, false
	}

	var v float64
	switch n := raw.(type) {
	case float64:
		v = n
	case float32:
		v = float64(n)
	case int:
		v = float64(n)
	case int32:
		v = float64(n)
	case int64:
		v = float64(n)
	case uint:
		v = float64(n)
	case uint32:
		v = float64(n)
	case uint64:
		v = float64(n)
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		v = f
	default:
		return 0, false
	}

	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// Integer returns the numeric value at key truncated toward zero, or def.
func (p Params) Integer(key string, def int) int {
	v, ok := p.OptionalNumber(key)
	if !ok || v > math.MaxInt32 || v < math.MinInt32 {
		return def
	}
	return int(v)
}

// String returns the string value at key, or def when it is absent or not a string.
func (p Params) String(key, def string) string {
	if s, ok := p[key].(string); ok {
		return s
	}
	return def
}

// ParseValue types a command-line value: numbers first, then true/false, otherwise the raw string.
func ParseValue(raw string) any {
	if f, err := strconv.ParseFloat(raw, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return f
	}
	switch raw {
	case "true":
		return true
	case "false":
		return false
	}
	return raw
}

// ParseAssignments builds Params from "key=value" pairs.
func ParseAssignments(pairs []string) (Params, error) {
	params := make(Params, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: parameter %q is not key=value", shared.ErrInvalidArgument, pair)
		}
		params[key] = ParseValue(value)
	}
	return params, nil
}
