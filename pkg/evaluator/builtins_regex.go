package evaluator

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/secondlayerco/jsonata/pkg/types"
)

// Regex builtins:
// $match builds an array of `{match, index, groups}` objects; $replace
// substitutes either a literal/template string (with `$0`/`$N` group
// references) or the string a lambda/function replacement returns.

func buildMatchObject(fullMatch string, index int, groups []string) *types.OrderedObject {
	groupArr := make([]interface{}, len(groups))
	for i, g := range groups {
		groupArr[i] = g
	}
	obj := types.NewOrderedObject()
	obj.Set("match", fullMatch)
	obj.Set("index", float64(index))
	obj.Set("groups", groupArr)
	return obj
}

func fnMatch(ctx context.Context, e *Evaluator, env *Environment, args []interface{}) (interface{}, error) {
	if args[0] == nil {
		return nil, nil
	}
	str, ok := args[0].(string)
	if !ok {
		str = fmt.Sprint(args[0])
	}

	limit := -1
	if len(args) > 2 && args[2] != nil {
		n, err := toNumber(args[2])
		if err != nil {
			return nil, err
		}
		limit = int(n)
	}

	var re *regexp.Regexp
	switch pattern := args[1].(type) {
	case string:
		compiled, err := regexp.Compile(regexp.QuoteMeta(pattern))
		if err != nil {
			return nil, types.NewError(types.ErrEmptyRegex, "invalid pattern passed to $match: "+err.Error())
		}
		re = compiled
	case *regexp.Regexp:
		re = pattern
	default:
		return nil, types.NewError(types.ErrArgumentCountMismatch, "the second argument of $match must be a string or regex")
	}

	matches := re.FindAllStringSubmatchIndex(str, limit)
	if len(matches) == 0 {
		return nil, nil
	}

	result := make([]interface{}, len(matches))
	for i, match := range matches {
		matchStr := str[match[0]:match[1]]
		var groups []interface{}
		for j := 1; j < len(match)/2; j++ {
			start, end := match[2*j], match[2*j+1]
			if start >= 0 && end >= 0 {
				groups = append(groups, str[start:end])
			} else {
				groups = append(groups, nil)
			}
		}
		if groups == nil {
			groups = []interface{}{}
		}
		obj := types.NewOrderedObject()
		obj.Set("match", matchStr)
		obj.Set("index", float64(match[0]))
		obj.Set("groups", groups)
		result[i] = obj
	}
	return result, nil
}

// expandReplacementTemplate expands `$0`/`$N` group references in a
// JSONata replacement template string; unrecognized `$name` sequences
// pass through unchanged.
func expandReplacementTemplate(template string, groups []string, fullMatch string) string {
	var b strings.Builder
	i := 0
	for i < len(template) {
		if template[i] != '$' {
			b.WriteByte(template[i])
			i++
			continue
		}
		i++
		if i >= len(template) {
			b.WriteByte('$')
			break
		}
		c := template[i]
		if c == '$' {
			b.WriteByte('$')
			i++
			continue
		}
		if c == '0' {
			b.WriteString(fullMatch)
			i++
			continue
		}
		if c >= '1' && c <= '9' {
			j := i
			for j < len(template) && template[j] >= '0' && template[j] <= '9' {
				j++
			}
			digits := template[i:j]
			i = j
			written := false
			for end := len(digits); end >= 1; end-- {
				n, _ := strconv.Atoi(digits[:end])
				if n >= 1 && n <= len(groups) {
					b.WriteString(groups[n-1])
					b.WriteString(digits[end:])
					written = true
					break
				}
				if end == 1 {
					b.WriteString(digits[1:])
					written = true
					break
				}
			}
			if !written {
				b.WriteString(digits)
			}
			continue
		}
		b.WriteByte('$')
	}
	return b.String()
}

func fnReplace(ctx context.Context, e *Evaluator, env *Environment, args []interface{}) (interface{}, error) {
	if args[0] == nil {
		return nil, nil
	}
	str, ok := args[0].(string)
	if !ok {
		str = fmt.Sprint(args[0])
	}

	limit := -1
	if len(args) > 3 && args[3] != nil {
		n, err := toNumber(args[3])
		if err != nil {
			return nil, err
		}
		limit = int(n)
		if limit < 0 {
			return nil, types.NewError(types.ErrReplaceLimitNegative, "the fourth argument of $replace must not be negative")
		}
	}

	switch pattern := args[1].(type) {
	case string:
		if pattern == "" {
			return nil, types.NewError(types.ErrEmptyPattern, "the pattern argument of $replace must not be empty")
		}
		replacement, ok := args[2].(string)
		if !ok {
			return nil, types.NewError(types.ErrReplacementNotString, "the replacement argument of $replace must be a string")
		}
		if limit < 0 {
			return strings.ReplaceAll(str, pattern, replacement), nil
		}
		return strings.Replace(str, pattern, replacement, limit), nil

	case *regexp.Regexp:
		if pattern.String() == "" {
			return nil, types.NewError(types.ErrEmptyPattern, "the pattern argument of $replace must not be empty")
		}
		maxMatches := -1
		if limit >= 0 {
			maxMatches = limit
		}
		allMatches := pattern.FindAllStringSubmatchIndex(str, maxMatches)

		var b strings.Builder
		lastEnd := 0
		for _, match := range allMatches {
			start, end := match[0], match[1]
			if start == end {
				return nil, types.NewError(types.ErrZeroLengthMatch, "the regular expression in $replace matched a zero-length string")
			}
			b.WriteString(str[lastEnd:start])
			fullMatch := str[start:end]

			numGroups := (len(match) - 2) / 2
			groups := make([]string, numGroups)
			for j := 0; j < numGroups; j++ {
				gs, ge := match[2+2*j], match[3+2*j]
				if gs >= 0 && ge >= 0 {
					groups[j] = str[gs:ge]
				}
			}

			switch args[2].(type) {
			case *Lambda, *FunctionDef, *PartialApplication:
				matchObj := buildMatchObject(fullMatch, start, groups)
				result, err := e.callCallable(ctx, args[2], env, []interface{}{matchObj})
				if err != nil {
					return nil, err
				}
				if result != nil {
					resultStr, ok := result.(string)
					if !ok {
						return nil, types.NewError(types.ErrReplacementNotString, "the replacement function must return a string")
					}
					b.WriteString(resultStr)
				}
			default:
				replacement, ok := args[2].(string)
				if !ok {
					return nil, types.NewError(types.ErrReplacementNotString, "the replacement argument of $replace must be a string or function")
				}
				b.WriteString(expandReplacementTemplate(replacement, groups, fullMatch))
			}
			lastEnd = end
		}
		b.WriteString(str[lastEnd:])
		return b.String(), nil

	default:
		return nil, types.NewError(types.ErrArgumentCountMismatch, "the second argument of $replace must be a string or regex")
	}
}
