package evaluator

import (
	"context"
	"regexp"
	"strings"
	"unicode"

	"github.com/secondlayerco/jsonata/pkg/types"
)

// Extended string builtins:
// prefix/suffix/position tests, case-convention conversion, $repeat,
// $words, and {{key}} templating.

func stringArgAt(args []interface{}, i int, fn string) (string, error) {
	s, ok := args[i].(string)
	if !ok {
		return "", types.NewError(types.ErrArgumentCountMismatch, "the arguments of "+fn+" must be strings")
	}
	return s, nil
}

func fnStartsWith(ctx context.Context, e *Evaluator, env *Environment, args []interface{}) (interface{}, error) {
	if args[0] == nil {
		return nil, nil
	}
	str, err := stringArgAt(args, 0, "$startsWith")
	if err != nil {
		return nil, err
	}
	prefix, err := stringArgAt(args, 1, "$startsWith")
	if err != nil {
		return nil, err
	}
	return strings.HasPrefix(str, prefix), nil
}

func fnEndsWith(ctx context.Context, e *Evaluator, env *Environment, args []interface{}) (interface{}, error) {
	if args[0] == nil {
		return nil, nil
	}
	str, err := stringArgAt(args, 0, "$endsWith")
	if err != nil {
		return nil, err
	}
	suffix, err := stringArgAt(args, 1, "$endsWith")
	if err != nil {
		return nil, err
	}
	return strings.HasSuffix(str, suffix), nil
}

// fnIndexOf returns the position of the first occurrence of search at or
// after the optional start offset, or -1.
func fnIndexOf(ctx context.Context, e *Evaluator, env *Environment, args []interface{}) (interface{}, error) {
	if args[0] == nil {
		return nil, nil
	}
	str, err := stringArgAt(args, 0, "$indexOf")
	if err != nil {
		return nil, err
	}
	search, err := stringArgAt(args, 1, "$indexOf")
	if err != nil {
		return nil, err
	}
	start := 0
	if len(args) > 2 && args[2] != nil {
		start, err = intArg(args[2], "$indexOf", "start")
		if err != nil {
			return nil, err
		}
		if start < 0 {
			start = 0
		}
	}
	if start >= len(str) {
		return float64(-1), nil
	}
	idx := strings.Index(str[start:], search)
	if idx < 0 {
		return float64(-1), nil
	}
	return float64(idx + start), nil
}

func fnCapitalize(ctx context.Context, e *Evaluator, env *Environment, args []interface{}) (interface{}, error) {
	if args[0] == nil {
		return nil, nil
	}
	str, err := stringArgAt(args, 0, "$capitalize")
	if err != nil {
		return nil, err
	}
	if str == "" {
		return str, nil
	}
	runes := []rune(str)
	runes[0] = unicode.ToUpper(runes[0])
	for i := 1; i < len(runes); i++ {
		runes[i] = unicode.ToLower(runes[i])
	}
	return string(runes), nil
}

// wordBoundaryRe matches the separators $camelCase and friends split on:
// underscores, dashes, whitespace runs, and lower-to-upper camel humps.
var wordBoundaryRe = regexp.MustCompile(`[_\-\s]+|([a-z])([A-Z])`)

func splitCaseWords(str string) []string {
	expanded := wordBoundaryRe.ReplaceAllStringFunc(str, func(s string) string {
		if len(s) == 2 && s[0] >= 'a' && s[0] <= 'z' {
			return string(s[0]) + " " + string(s[1])
		}
		return " "
	})
	return strings.Fields(expanded)
}

func fnCamelCase(ctx context.Context, e *Evaluator, env *Environment, args []interface{}) (interface{}, error) {
	if args[0] == nil {
		return nil, nil
	}
	str, err := stringArgAt(args, 0, "$camelCase")
	if err != nil {
		return nil, err
	}
	words := splitCaseWords(str)
	if len(words) == 0 {
		return "", nil
	}
	var b strings.Builder
	b.WriteString(strings.ToLower(words[0]))
	for _, w := range words[1:] {
		runes := []rune(strings.ToLower(w))
		runes[0] = unicode.ToUpper(runes[0])
		b.WriteString(string(runes))
	}
	return b.String(), nil
}

func fnSnakeCase(ctx context.Context, e *Evaluator, env *Environment, args []interface{}) (interface{}, error) {
	return caseJoin(args, "$snakeCase", "_")
}

func fnKebabCase(ctx context.Context, e *Evaluator, env *Environment, args []interface{}) (interface{}, error) {
	return caseJoin(args, "$kebabCase", "-")
}

func caseJoin(args []interface{}, fn, sep string) (interface{}, error) {
	if args[0] == nil {
		return nil, nil
	}
	str, err := stringArgAt(args, 0, fn)
	if err != nil {
		return nil, err
	}
	words := splitCaseWords(str)
	for i, w := range words {
		words[i] = strings.ToLower(w)
	}
	return strings.Join(words, sep), nil
}

func fnRepeat(ctx context.Context, e *Evaluator, env *Environment, args []interface{}) (interface{}, error) {
	if args[0] == nil {
		return nil, nil
	}
	str, err := stringArgAt(args, 0, "$repeat")
	if err != nil {
		return nil, err
	}
	n, err := intArg(args[1], "$repeat", "count")
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, types.NewError(types.ErrArgumentCountMismatch, "the count argument of $repeat must not be negative")
	}
	return strings.Repeat(str, n), nil
}

func fnWords(ctx context.Context, e *Evaluator, env *Environment, args []interface{}) (interface{}, error) {
	if args[0] == nil {
		return nil, nil
	}
	str, err := stringArgAt(args, 0, "$words")
	if err != nil {
		return nil, err
	}
	parts := strings.Fields(str)
	if len(parts) == 0 {
		return nil, nil
	}
	result := make([]interface{}, len(parts))
	for i, p := range parts {
		result[i] = p
	}
	return result, nil
}

var templatePlaceholderRe = regexp.MustCompile(`\{\{(\w+)\}\}`)

// fnTemplate substitutes {{key}} placeholders from a bindings object;
// placeholders with no binding are left as written.
func fnTemplate(ctx context.Context, e *Evaluator, env *Environment, args []interface{}) (interface{}, error) {
	if args[0] == nil {
		return nil, nil
	}
	tmpl, err := stringArgAt(args, 0, "$template")
	if err != nil {
		return nil, err
	}
	_, bindings, ok := objectKeysValues(args[1])
	if !ok {
		return nil, types.NewError(types.ErrArgumentCountMismatch, "the second argument of $template must be an object")
	}
	result := templatePlaceholderRe.ReplaceAllStringFunc(tmpl, func(match string) string {
		key := match[2 : len(match)-2]
		if val, exists := bindings[key]; exists {
			return stringify(val)
		}
		return match
	})
	return result, nil
}
