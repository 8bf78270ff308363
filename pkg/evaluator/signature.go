package evaluator

import (
	"strings"

	"github.com/secondlayerco/jsonata/pkg/types"
)

// validateSignature checks args against sig (parsing its Raw text on
// every call), auto-wrapping any array-typed parameter that was supplied a
// bare scalar, and returns the (possibly wrapped) argument list.
func validateSignature(sig *types.Signature, args []interface{}) ([]interface{}, error) {
	params, err := parseSignatureParams(sig.Raw)
	if err != nil {
		return nil, err
	}

	required := 0
	for _, p := range params {
		if !p.Optional && !p.Variadic {
			required++
		}
	}
	if len(args) < required {
		return nil, types.NewError(types.ErrArgumentCountMismatch, "too few arguments supplied")
	}

	adapted := make([]interface{}, len(args))
	copy(adapted, args)

	for i := range adapted {
		var param types.ParamType
		switch {
		case i < len(params):
			param = params[i]
		case len(params) > 0 && params[len(params)-1].Variadic:
			param = params[len(params)-1]
		default:
			return nil, types.NewError(types.ErrArgumentCountMismatch, "too many arguments supplied")
		}

		if param.Array {
			if _, isArray := adapted[i].([]interface{}); !isArray && adapted[i] != nil {
				adapted[i] = []interface{}{adapted[i]}
			}
		}

		if adapted[i] == nil {
			continue
		}
		if !matchesAnyType(param.Types, adapted[i]) {
			return nil, types.NewError(types.ErrArgumentCountMismatch, "argument type does not match function signature")
		}
	}

	return adapted, nil
}

func matchesAnyType(codes []types.TypeCode, value interface{}) bool {
	if len(codes) == 0 {
		return true
	}
	for _, c := range codes {
		if matchesType(c, value) {
			return true
		}
	}
	return false
}

func matchesType(code types.TypeCode, value interface{}) bool {
	switch code {
	case 'x':
		return true
	case 's':
		_, ok := value.(string)
		return ok
	case 'n':
		_, ok := value.(float64)
		return ok
	case 'b':
		_, ok := value.(bool)
		return ok
	case 'l':
		_, ok := value.(types.Null)
		return ok
	case 'a':
		_, ok := value.([]interface{})
		return ok
	case 'o':
		switch value.(type) {
		case *types.OrderedObject, map[string]interface{}:
			return true
		default:
			return false
		}
	case 'f':
		switch value.(type) {
		case *Lambda, *FunctionDef:
			return true
		default:
			return false
		}
	default:
		return true
	}
}

// parseSignatureParams interprets the raw `<...>` text the parser
// captured verbatim (pkg/parser's parseSignature does not itself assign
// meaning to the characters — that is this function's job, run lazily at
// call time so the parser stays independent of the evaluator's type
// vocabulary). Supported grammar: one letter per parameter (optionally a
// parenthesized union of letters), an optional trailing `?` (optional
// parameter) or `+` (variadic, one-or-more), with `-` accepted as an inert
// separator between parameters. A `<params:return>` form is also accepted;
// the return-type half after the top-level `:` is ignored.
func parseSignatureParams(raw string) ([]types.ParamType, error) {
	if raw == "" {
		return nil, nil
	}
	body := strings.TrimPrefix(raw, "<")
	body = strings.TrimSuffix(body, ">")

	paramsPart := body
	if idx := topLevelColon(body); idx >= 0 {
		paramsPart = body[:idx]
	}

	var params []types.ParamType
	i := 0
	for i < len(paramsPart) {
		switch paramsPart[i] {
		case '-':
			i++
			continue
		case '(':
			end := strings.IndexByte(paramsPart[i:], ')')
			if end < 0 {
				return nil, types.NewError(types.ErrBadParamList, "unterminated union type in signature")
			}
			union := paramsPart[i+1 : i+end]
			i += end + 1
			var codes []types.TypeCode
			for _, c := range union {
				codes = append(codes, types.TypeCode(c))
			}
			param := types.ParamType{Types: codes}
			i = consumeParamSuffix(paramsPart, i, &param)
			params = append(params, param)
		case '<', '>':
			return nil, types.NewError(types.ErrBadParamList, "unsupported nested type in signature")
		default:
			code := types.TypeCode(paramsPart[i])
			i++
			param := types.ParamType{Types: []types.TypeCode{code}, Array: code == 'a'}
			if code == 'a' || code == 'f' {
				i = skipSubtype(paramsPart, i)
			}
			i = consumeParamSuffix(paramsPart, i, &param)
			params = append(params, param)
		}
	}

	return params, nil
}

func consumeParamSuffix(s string, i int, param *types.ParamType) int {
	if i < len(s) {
		switch s[i] {
		case '?':
			param.Optional = true
			return i + 1
		case '+':
			param.Variadic = true
			return i + 1
		}
	}
	return i
}

func skipSubtype(s string, i int) int {
	if i >= len(s) || s[i] != '<' {
		return i
	}
	depth := 1
	j := i + 1
	for j < len(s) && depth > 0 {
		switch s[j] {
		case '<':
			depth++
		case '>':
			depth--
		}
		j++
	}
	return j
}

func topLevelColon(s string) int {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<':
			depth++
		case '>':
			depth--
		case ':':
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
