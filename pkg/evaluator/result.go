package evaluator

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/secondlayerco/jsonata/pkg/types"
)

// stringify renders v the way implicit string contexts do: undefined is "",
// Null is the literal "null", numbers use JSONata's number-to-string
// formatting, and anything else (arrays, objects) serializes as JSON. The
// `&` operator unwraps Null to undefined before calling it, so a null
// operand concatenates as "".
func stringify(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case types.Null:
		return "null"
	case string:
		return val
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return ""
		}
		return formatNumber(val)
	case bool:
		if val {
			return "true"
		}
		return "false"
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(b)
	}
}

// formatNumber renders a float64 the way JSONata stringifies numbers:
// integral values drop their fractional part, very large/small magnitudes
// switch to exponential notation with an unpadded exponent, and otherwise
// the shortest round-tripping decimal form is used.
func formatNumber(v float64) string {
	abs := math.Abs(v)
	if abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		str := strconv.FormatFloat(v, 'e', -1, 64)
		str = strings.Replace(str, "e+0", "e+", 1)
		str = strings.Replace(str, "e-0", "e-", 1)
		return str
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// normalizeResult converts the evaluator's internal representation
// (*types.Sequence, *types.OrderedObject, types.Null, Go nil for undefined)
// into the publicly-returned host shape: a sequence
// collapses via its own Normalize, and nested sequences/objects inside
// arrays and object values are normalized recursively so embedded
// maps/functions never leak to callers.
func normalizeResult(v interface{}) interface{} {
	switch val := v.(type) {
	case *types.Sequence:
		return normalizeResult(val.Normalize())
	case []interface{}:
		out := make([]interface{}, 0, len(val))
		for _, item := range val {
			if item == nil {
				// Undefined has no JSON representation and must not survive
				// as a bare `null` slot: nested Undefined is stripped from
				// arrays/objects, not rendered.
				continue
			}
			out = append(out, normalizeResult(item))
		}
		return out
	case *types.OrderedObject:
		out := types.NewOrderedObject()
		for _, k := range val.Keys {
			out.Set(k, normalizeResult(val.Values[k]))
		}
		return out
	default:
		return val
	}
}
