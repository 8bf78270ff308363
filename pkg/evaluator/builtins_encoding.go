package evaluator

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"

	"github.com/secondlayerco/jsonata/pkg/types"
)

// Encoding builtins:
// $base64encode/$base64decode and JS-style $encodeUrl(Component)/
// $decodeUrl(Component).

func fnBase64Encode(ctx context.Context, e *Evaluator, env *Environment, args []interface{}) (interface{}, error) {
	if args[0] == nil {
		return nil, nil
	}
	str, ok := args[0].(string)
	if !ok {
		str = fmt.Sprint(args[0])
	}
	return base64.StdEncoding.EncodeToString([]byte(str)), nil
}

func fnBase64Decode(ctx context.Context, e *Evaluator, env *Environment, args []interface{}) (interface{}, error) {
	if args[0] == nil {
		return nil, nil
	}
	str, ok := args[0].(string)
	if !ok {
		str = fmt.Sprint(args[0])
	}
	decoded, err := base64.StdEncoding.DecodeString(str)
	if err != nil {
		return nil, types.NewError(types.ErrFunctionThrown, "invalid base64 string passed to $base64decode: "+err.Error())
	}
	return string(decoded), nil
}

// encodeURIExcluded/encodeURIComponentExcluded mirror JS encodeURI's and
// encodeURIComponent's respective sets of never-percent-encoded characters.
const (
	encodeURIExcluded          = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_.!~*'();/?:@&=+$,#%"
	encodeURIComponentExcluded = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_.!~*'()"
)

func encodeURIJS(str string, isComponent bool, fnName string) (string, error) {
	excluded := encodeURIExcluded
	if isComponent {
		excluded = encodeURIComponentExcluded
	}

	for _, r := range str {
		if r == '�' || (r >= 0xD800 && r <= 0xDFFF) {
			return "", types.NewError(types.ErrEncodeURISurrogate,
				fmt.Sprintf("the argument of function %s contains an unpaired surrogate", fnName))
		}
	}

	var buf strings.Builder
	for _, b := range []byte(str) {
		if strings.ContainsRune(excluded, rune(b)) {
			buf.WriteByte(b)
		} else {
			fmt.Fprintf(&buf, "%%%02X", b)
		}
	}
	return buf.String(), nil
}

func fnEncodeUrl(ctx context.Context, e *Evaluator, env *Environment, args []interface{}) (interface{}, error) {
	if args[0] == nil {
		return nil, nil
	}
	str, ok := args[0].(string)
	if !ok {
		str = fmt.Sprint(args[0])
	}
	return encodeURIJS(str, false, "encodeUrl")
}

func fnEncodeUrlComponent(ctx context.Context, e *Evaluator, env *Environment, args []interface{}) (interface{}, error) {
	if args[0] == nil {
		return nil, nil
	}
	str, ok := args[0].(string)
	if !ok {
		str = fmt.Sprint(args[0])
	}
	return encodeURIJS(str, true, "encodeUrlComponent")
}

func fnDecodeUrl(ctx context.Context, e *Evaluator, env *Environment, args []interface{}) (interface{}, error) {
	if args[0] == nil {
		return nil, nil
	}
	str, ok := args[0].(string)
	if !ok {
		str = fmt.Sprint(args[0])
	}
	decoded, err := url.PathUnescape(str)
	if err != nil {
		return nil, types.NewError(types.ErrFunctionThrown, "invalid URL encoding passed to $decodeUrl: "+err.Error())
	}
	return decoded, nil
}

func fnDecodeUrlComponent(ctx context.Context, e *Evaluator, env *Environment, args []interface{}) (interface{}, error) {
	if args[0] == nil {
		return nil, nil
	}
	str, ok := args[0].(string)
	if !ok {
		str = fmt.Sprint(args[0])
	}
	decoded, err := url.QueryUnescape(str)
	if err != nil {
		return nil, types.NewError(types.ErrFunctionThrown, "invalid URL component encoding passed to $decodeUrlComponent: "+err.Error())
	}
	return decoded, nil
}
