package evaluator

import (
	"context"
	"encoding/json"
	"math"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/secondlayerco/jsonata/pkg/types"
)

var trimWhitespaceRe = regexp.MustCompile(`\s+`)

// String builtins:
// $string/$length/$substring/$uppercase/$lowercase/$trim/$contains/$split/
// $join/$pad/$substringBefore/$substringAfter. Indices throughout are rune
// offsets, not byte offsets — JSONata strings are Unicode text.

func fnString(ctx context.Context, e *Evaluator, env *Environment, args []interface{}) (interface{}, error) {
	var value interface{}
	if len(args) == 0 {
		value = env.Input()
	} else {
		value = args[0]
	}
	if value == nil {
		return nil, nil
	}
	if _, ok := value.(types.Null); ok {
		return "null", nil
	}

	prettify := false
	if len(args) > 1 && args[1] != nil {
		p, ok := args[1].(bool)
		if !ok {
			return nil, types.NewError(types.ErrArgumentCountMismatch, "the second argument of $string must be a boolean")
		}
		prettify = p
	}

	switch v := value.(type) {
	case string:
		return v, nil
	case float64:
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return nil, types.NewError(types.ErrSerializeNonFinite, "number cannot be represented as a JSON value")
		}
		return formatNumber(v), nil
	case bool:
		return stringify(v), nil
	case *Lambda, *FunctionDef, *PartialApplication:
		return "", nil
	default:
		processed := stringifyPreprocess(value)
		if containsNonFinite(processed) {
			return nil, types.NewError(types.ErrSerializeNonFinite, "value cannot be represented as a JSON value")
		}
		var b []byte
		var err error
		if prettify {
			b, err = json.MarshalIndent(processed, "", "  ")
		} else {
			b, err = json.Marshal(processed)
		}
		if err != nil {
			return nil, types.NewError(types.ErrCannotConvertString, "unable to serialize value: "+err.Error())
		}
		return string(b), nil
	}
}

func containsNonFinite(v interface{}) bool {
	switch val := v.(type) {
	case float64:
		return math.IsInf(val, 0) || math.IsNaN(val)
	case map[string]interface{}:
		for _, item := range val {
			if containsNonFinite(item) {
				return true
			}
		}
	case []interface{}:
		for _, item := range val {
			if containsNonFinite(item) {
				return true
			}
		}
	case *types.OrderedObject:
		for _, k := range val.Keys {
			if containsNonFinite(val.Values[k]) {
				return true
			}
		}
	}
	return false
}

// stringifyPreprocess converts internal-only representations (Null,
// callables embedded in a structure) into values encoding/json can
// marshal the way JSONata's own stringifier does: Null -> Go nil,
// callables -> "".
func stringifyPreprocess(v interface{}) interface{} {
	switch val := v.(type) {
	case types.Null:
		return nil
	case *Lambda, *FunctionDef, *PartialApplication:
		return ""
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, item := range val {
			out[k] = stringifyPreprocess(item)
		}
		return out
	case *types.OrderedObject:
		out := types.NewOrderedObject()
		for _, k := range val.Keys {
			out.Set(k, stringifyPreprocess(val.Values[k]))
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = stringifyPreprocess(item)
		}
		return out
	default:
		return val
	}
}

func fnLength(ctx context.Context, e *Evaluator, env *Environment, args []interface{}) (interface{}, error) {
	if args[0] == nil {
		return nil, nil
	}
	v, ok := args[0].(string)
	if !ok {
		return nil, types.NewError(types.ErrCannotConvertString, "$length() argument must be a string")
	}
	return float64(utf8.RuneCountInString(v)), nil
}

func fnSubstring(ctx context.Context, e *Evaluator, env *Environment, args []interface{}) (interface{}, error) {
	if args[0] == nil {
		return nil, nil
	}
	str, ok := args[0].(string)
	if !ok {
		return nil, types.NewError(types.ErrCannotConvertString, "argument 1 of $substring must be a string")
	}
	start, err := toNumber(args[1])
	if err != nil {
		return nil, err
	}

	runes := []rune(str)
	strLen := len(runes)
	startIdx := int(start)
	if startIdx < 0 {
		startIdx += strLen
		if startIdx < 0 {
			startIdx = 0
		}
	}
	if startIdx > strLen {
		return "", nil
	}
	if len(args) == 2 || args[2] == nil {
		return string(runes[startIdx:]), nil
	}

	length, err := toNumber(args[2])
	if err != nil {
		return nil, err
	}
	lengthInt := int(length)
	if lengthInt <= 0 {
		return "", nil
	}
	endIdx := startIdx + lengthInt
	if endIdx > strLen {
		endIdx = strLen
	}
	return string(runes[startIdx:endIdx]), nil
}

func fnUppercase(ctx context.Context, e *Evaluator, env *Environment, args []interface{}) (interface{}, error) {
	if args[0] == nil {
		return nil, nil
	}
	str, ok := args[0].(string)
	if !ok {
		return nil, types.NewError(types.ErrCannotConvertString, "argument 1 of $uppercase must be a string")
	}
	return strings.ToUpper(str), nil
}

func fnLowercase(ctx context.Context, e *Evaluator, env *Environment, args []interface{}) (interface{}, error) {
	if args[0] == nil {
		return nil, nil
	}
	str, ok := args[0].(string)
	if !ok {
		return nil, types.NewError(types.ErrCannotConvertString, "argument 1 of $lowercase must be a string")
	}
	return strings.ToLower(str), nil
}

func fnTrim(ctx context.Context, e *Evaluator, env *Environment, args []interface{}) (interface{}, error) {
	if len(args) == 0 || args[0] == nil {
		return nil, nil
	}
	str, err := toStringArg(args[0])
	if err != nil {
		return nil, err
	}
	str = strings.TrimSpace(str)
	str = trimWhitespaceRe.ReplaceAllString(str, " ")
	return str, nil
}

func fnContains(ctx context.Context, e *Evaluator, env *Environment, args []interface{}) (interface{}, error) {
	if args[0] == nil || args[1] == nil {
		return nil, nil
	}
	str, ok := args[0].(string)
	if !ok {
		return nil, types.NewError(types.ErrArgumentCountMismatch, "argument 1 of $contains must be a string")
	}
	switch pattern := args[1].(type) {
	case string:
		return strings.Contains(str, pattern), nil
	case *regexp.Regexp:
		return pattern.MatchString(str), nil
	default:
		return nil, types.NewError(types.ErrArgumentCountMismatch, "argument 2 of $contains must be a string or regex")
	}
}

func fnSplit(ctx context.Context, e *Evaluator, env *Environment, args []interface{}) (interface{}, error) {
	if args[0] == nil {
		return nil, nil
	}
	str, ok := args[0].(string)
	if !ok {
		return nil, types.NewError(types.ErrArgumentCountMismatch, "the first argument of $split must be a string")
	}

	limit := -1
	if len(args) >= 3 && args[2] != nil {
		n, err := toNumber(args[2])
		if err != nil {
			return nil, types.NewError(types.ErrArgumentCountMismatch, "the third argument of $split must be a number")
		}
		limit = int(n)
		if limit < 0 {
			return nil, types.NewError(types.ErrNegativeLimit, "the third argument of $split cannot be negative")
		}
		if limit == 0 {
			return []interface{}{}, nil
		}
	}

	var parts []string
	switch sep := args[1].(type) {
	case *regexp.Regexp:
		parts = sep.Split(str, -1)
	case string:
		parts = strings.Split(str, sep)
	default:
		return nil, types.NewError(types.ErrArgumentCountMismatch, "the second argument of $split must be a string or regex")
	}
	if limit > 0 && len(parts) > limit {
		parts = parts[:limit]
	}

	result := make([]interface{}, len(parts))
	for i, p := range parts {
		result[i] = p
	}
	return result, nil
}

func fnJoin(ctx context.Context, e *Evaluator, env *Environment, args []interface{}) (interface{}, error) {
	if args[0] == nil {
		return nil, nil
	}
	if str, ok := args[0].(string); ok {
		return str, nil
	}
	arr, ok := args[0].([]interface{})
	if !ok {
		return nil, types.NewError(types.ErrArrayElementNotNumber, "the argument of $join is not an array")
	}
	separator := ""
	if len(args) == 2 && args[1] != nil {
		sep, ok := args[1].(string)
		if !ok {
			return nil, types.NewError(types.ErrArgumentCountMismatch, "the second argument of $join must be a string")
		}
		separator = sep
	}
	strs := make([]string, len(arr))
	for i, v := range arr {
		s, ok := v.(string)
		if !ok {
			return nil, types.NewError(types.ErrArrayElementNotNumber, "the argument of $join is not an array of strings")
		}
		strs[i] = s
	}
	return strings.Join(strs, separator), nil
}

func fnPad(ctx context.Context, e *Evaluator, env *Environment, args []interface{}) (interface{}, error) {
	if args[0] == nil {
		return nil, nil
	}
	str, err := toStringArg(args[0])
	if err != nil {
		return nil, err
	}
	strRunes := []rune(str)

	width, err := toNumber(args[1])
	if err != nil {
		return nil, err
	}
	targetWidth := int(width)

	padRunes := []rune{' '}
	if len(args) > 2 && args[2] != nil {
		padStr, err := toStringArg(args[2])
		if err != nil {
			return nil, err
		}
		if len([]rune(padStr)) > 0 {
			padRunes = []rune(padStr)
		}
	}

	leftPad := targetWidth < 0
	if leftPad {
		targetWidth = -targetWidth
	}

	strLen := len(strRunes)
	if strLen >= targetWidth {
		return str, nil
	}
	padCount := targetWidth - strLen
	padding := make([]rune, padCount)
	for i := 0; i < padCount; i++ {
		padding[i] = padRunes[i%len(padRunes)]
	}
	if leftPad {
		return string(padding) + string(strRunes), nil
	}
	return string(strRunes) + string(padding), nil
}

func fnSubstringBefore(ctx context.Context, e *Evaluator, env *Environment, args []interface{}) (interface{}, error) {
	if args[0] == nil {
		return nil, nil
	}
	str, ok := args[0].(string)
	if !ok {
		return nil, types.NewError(types.ErrArgumentCountMismatch, "argument 1 of $substringBefore must be a string")
	}
	separator, ok := args[1].(string)
	if !ok {
		return nil, types.NewError(types.ErrArgumentCountMismatch, "argument 2 of $substringBefore must be a string")
	}
	if separator == "" {
		return "", nil
	}
	idx := strings.Index(str, separator)
	if idx < 0 {
		return str, nil
	}
	return str[:idx], nil
}

func fnSubstringAfter(ctx context.Context, e *Evaluator, env *Environment, args []interface{}) (interface{}, error) {
	if args[0] == nil {
		return nil, nil
	}
	str, ok := args[0].(string)
	if !ok {
		return nil, types.NewError(types.ErrArgumentCountMismatch, "argument 1 of $substringAfter must be a string")
	}
	separator, ok := args[1].(string)
	if !ok {
		return nil, types.NewError(types.ErrArgumentCountMismatch, "argument 2 of $substringAfter must be a string")
	}
	if separator == "" {
		return str, nil
	}
	idx := strings.Index(str, separator)
	if idx < 0 {
		return str, nil
	}
	return str[idx+len(separator):], nil
}
