package evaluator_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/secondlayerco/jsonata/pkg/ancestry"
	"github.com/secondlayerco/jsonata/pkg/evaluator"
	"github.com/secondlayerco/jsonata/pkg/parser"
	"github.com/secondlayerco/jsonata/pkg/types"
)

// compile parses, resolves ancestry, and returns the AST ready to Eval —
// mirroring jsonata.Compile's internal pipeline without going through the
// root package, so this package's own tests don't need an import cycle.
func compile(t *testing.T, src string) *types.ASTNode {
	t.Helper()
	expr, err := parser.NewParser(src).Parse()
	if err != nil {
		t.Fatalf("Parse(%q): %v", src, err)
	}
	ast := expr.AST()
	if err := ancestry.Resolve(ast); err != nil {
		t.Fatalf("Resolve(%q): %v", src, err)
	}
	return ast
}

func eval(t *testing.T, src string, input string) (interface{}, error) {
	t.Helper()
	ast := compile(t, src)
	var v interface{}
	if input != "" {
		if err := json.Unmarshal([]byte(input), &v); err != nil {
			t.Fatalf("unmarshal input: %v", err)
		}
	}
	ev := evaluator.New()
	return ev.Eval(context.Background(), ast, v)
}

func mustEval(t *testing.T, src string, input string) interface{} {
	t.Helper()
	got, err := eval(t, src, input)
	if err != nil {
		t.Fatalf("eval(%q): %v", src, err)
	}
	return got
}

func wantErrCode(t *testing.T, src string, input string, code types.ErrorCode) {
	t.Helper()
	_, err := eval(t, src, input)
	if err == nil {
		t.Fatalf("eval(%q): expected error %s, got nil", src, code)
	}
	jerr, ok := err.(*types.Error)
	if !ok {
		t.Fatalf("eval(%q): expected *types.Error, got %T (%v)", src, err, err)
	}
	if jerr.Code != code {
		t.Errorf("eval(%q): code = %s, want %s", src, jerr.Code, code)
	}
}

func asJSON(t *testing.T, v interface{}) string {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(b)
}

func TestArithmeticOnNonNumberIsT2001(t *testing.T) {
	wantErrCode(t, `"a" + 1`, "", types.ErrArithmeticNonNumber)
}

func TestArithmeticChecksBeforeUndefinedPropagation(t *testing.T) {
	// A non-number operand is T2001, checked before undefined propagation,
	// so false + $x raises even if $x is undefined.
	wantErrCode(t, `false + $x`, "", types.ErrArithmeticNonNumber)
}

func TestDivideByZeroIsD1001(t *testing.T) {
	wantErrCode(t, `1 % 0`, "", types.ErrNumberNonFinite)
}

func TestCompareMixedNumberStringIsT2009(t *testing.T) {
	wantErrCode(t, `1 < "a"`, "", types.ErrCompareMixedTypes)
}

func TestCompareUnorderableTypeIsT2010(t *testing.T) {
	wantErrCode(t, `[1] < [2]`, "", types.ErrCompareBadType)
}

func TestCompareWithUndefinedYieldsUndefined(t *testing.T) {
	got := mustEval(t, `a < 1`, `{}`)
	if got != nil {
		t.Errorf("got %v, want nil (undefined)", got)
	}
}

func TestEqualityWithUndefinedIsFalse(t *testing.T) {
	if got := mustEval(t, `a = 1`, `{}`); got != false {
		t.Errorf("a = 1 with absent a: got %v, want false", got)
	}
	if got := mustEval(t, `a != 1`, `{}`); got != false {
		t.Errorf("a != 1 with absent a: got %v, want false", got)
	}
}

func TestStructuralEqualityOnArraysAndObjects(t *testing.T) {
	if got := mustEval(t, `[1,2,3] = [1,2,3]`, ""); got != true {
		t.Errorf("got %v, want true", got)
	}
	if got := mustEval(t, `{"a":1} = {"a":1}`, ""); got != true {
		t.Errorf("got %v, want true", got)
	}
}

func TestStructuralEqualityOnInputObjects(t *testing.T) {
	// Objects drawn from the input document arrive as plain Go maps, not
	// the constructor's ordered representation; equality must hold across
	// both, and through `in` membership.
	input := `{"x": {"k": 1, "l": [2]}, "y": {"l": [2], "k": 1}, "z": {"k": 2}}`
	if got := mustEval(t, `x = y`, input); got != true {
		t.Errorf("x = y: got %v, want true", got)
	}
	if got := mustEval(t, `x = z`, input); got != false {
		t.Errorf("x = z: got %v, want false", got)
	}
	if got := mustEval(t, `x = {"k": 1, "l": [2]}`, input); got != true {
		t.Errorf("input map vs constructed object: got %v, want true", got)
	}
	if got := mustEval(t, `x in [z, y]`, input); got != true {
		t.Errorf("x in [z, y]: got %v, want true", got)
	}
}

func TestNonEmptyArrayOfFalsyValuesIsTruthy(t *testing.T) {
	// Arrays are truthy iff non-empty, regardless of their contents.
	if got := mustEval(t, `[0] ? "t" : "f"`, ""); got != "t" {
		t.Errorf("[0]: got %v, want t", got)
	}
	if got := mustEval(t, `[false, 0] ? "t" : "f"`, ""); got != "t" {
		t.Errorf("[false, 0]: got %v, want t", got)
	}
	if got := mustEval(t, `[] ? "t" : "f"`, ""); got != "f" {
		t.Errorf("[]: got %v, want f", got)
	}
}

func TestRangeBoundNotIntegerIsT2003(t *testing.T) {
	wantErrCode(t, `1.5..3`, "", types.ErrRangeBoundNotInteger)
}

func TestRangeBoundNotNumberIsT2004(t *testing.T) {
	wantErrCode(t, `"a"..3`, "", types.ErrRangeBoundNotNumber)
}

func TestRangeTooLargeIsD2014(t *testing.T) {
	wantErrCode(t, `0..10000001`, "", types.ErrRangeTooLarge)
}

func TestRangeWithUndefinedBoundIsEmpty(t *testing.T) {
	got := mustEval(t, `a..3`, `{}`)
	if got != nil {
		t.Errorf("got %v, want nil (empty range normalizes to undefined)", got)
	}
}

func TestNonStringObjectKeyIsT1003(t *testing.T) {
	wantErrCode(t, `{1: "x"}`, "", types.ErrNonStringKey)
}

func TestDuplicateObjectKeyIsD1009(t *testing.T) {
	wantErrCode(t, `{"a": 1, "a": 2}`, "", types.ErrDuplicateKey)
}

func TestObjectConstructorOmitsUndefinedValuedPair(t *testing.T) {
	got := mustEval(t, `{"k": a}`, `{}`)
	if asJSON(t, got) != `{}` {
		t.Errorf("got %s, want {}", asJSON(t, got))
	}
}

func TestCallingNonFunctionIsT1005(t *testing.T) {
	wantErrCode(t, `$x()`, `{}`, types.ErrNotCallable)
}

func TestReduceWrongShapeCalleeIsD3050(t *testing.T) {
	wantErrCode(t, `$reduce([1,2,3], function($x){$x})`, "", types.ErrReduceInsufficientArgs)
}

func TestSortKeyTypeMismatchIsT2007(t *testing.T) {
	wantErrCode(t, `$sort([1, "a"])`, "", types.ErrSortKeyStringMismatch)
}

func TestWildcardEnumeratesObjectValuesInOrder(t *testing.T) {
	// Constructed via a JSONata object literal (an *types.OrderedObject
	// internally) rather than raw host JSON input, since a plain Go
	// map[string]interface{} has no defined iteration order to begin with.
	got := mustEval(t, `({"b": 1, "a": 2}).*`, "")
	if asJSON(t, got) != `[1,2]` {
		t.Errorf("got %s, want [1,2]", asJSON(t, got))
	}
}

func TestDescendantRecursesDepthFirst(t *testing.T) {
	got := mustEval(t, `**.x`, `{"a": {"x": 1}, "b": [{"x": 2}, {"y": 3}]}`)
	if asJSON(t, got) != `[1,2]` {
		t.Errorf("got %s, want [1,2]", asJSON(t, got))
	}
}

func TestKeepArrayForcesArrayOnSingleton(t *testing.T) {
	got := mustEval(t, `a[]`, `{"a": 5}`)
	if asJSON(t, got) != `[5]` {
		t.Errorf("got %s, want [5]", asJSON(t, got))
	}
}

func TestFilterByNegativeIndex(t *testing.T) {
	got := mustEval(t, `a[-1]`, `{"a": [10,20,30]}`)
	if got != float64(30) {
		t.Errorf("got %v, want 30", got)
	}
}

func TestConditionalOperator(t *testing.T) {
	if got := mustEval(t, `a ? "yes" : "no"`, `{"a": 1}`); got != "yes" {
		t.Errorf("got %v, want yes", got)
	}
	if got := mustEval(t, `a ? "yes" : "no"`, `{}`); got != "no" {
		t.Errorf("got %v, want no", got)
	}
}

func TestCoalesceOperator(t *testing.T) {
	if got := mustEval(t, `a ?? "fallback"`, `{}`); got != "fallback" {
		t.Errorf("got %v, want fallback", got)
	}
	if got := mustEval(t, `a ?? "fallback"`, `{"a": null}`); got != "fallback" {
		t.Errorf("got %v, want fallback for null", got)
	}
	if got := mustEval(t, `a ?? "fallback"`, `{"a": 0}`); got != float64(0) {
		t.Errorf("got %v, want 0 (defined, not null/undefined)", got)
	}
}

func TestStringConcatCoercion(t *testing.T) {
	cases := []struct{ expr, want string }{
		{`1 & ""`, "1"},
		{`1.50 & ""`, "1.5"},
		{`true & ""`, "true"},
		{`null & ""`, ""},
		{`[1,2] & ""`, "[1,2]"},
	}
	for _, c := range cases {
		got := mustEval(t, c.expr, "")
		if got != c.want {
			t.Errorf("eval(%q) = %q, want %q", c.expr, got, c.want)
		}
	}
}

func TestInOperator(t *testing.T) {
	if got := mustEval(t, `2 in [1,2,3]`, ""); got != true {
		t.Errorf("got %v, want true", got)
	}
	if got := mustEval(t, `4 in [1,2,3]`, ""); got != false {
		t.Errorf("got %v, want false", got)
	}
}

func TestShortCircuitAndOr(t *testing.T) {
	// A right-hand side that would error must never be evaluated once the
	// left operand already decides the result.
	if got := mustEval(t, `false and (1/0 > 0)`, ""); got != false {
		t.Errorf("got %v, want false (short-circuited)", got)
	}
	if got := mustEval(t, `true or (1/0 > 0)`, ""); got != true {
		t.Errorf("got %v, want true (short-circuited)", got)
	}
}

func TestLambdaClosureCapturesDefinitionInput(t *testing.T) {
	// A lambda body resolves bare field references against the closure's
	// captured input, not the call site's.
	got := mustEval(t, `(
		$f := a.(function(){b});
		$f()
	)`, `{"a": {"b": 42}}`)
	if got != float64(42) {
		t.Errorf("got %v, want 42", got)
	}
}

func TestPartialApplication(t *testing.T) {
	got := mustEval(t, `(
		$add := function($x, $y){$x + $y};
		$add5 := $add(5, ?);
		$add5(10)
	)`, "")
	if got != float64(15) {
		t.Errorf("got %v, want 15", got)
	}
}

func TestChainOperator(t *testing.T) {
	got := mustEval(t, `5 ~> function($x){$x * 2} ~> function($x){$x + 1}`, "")
	if got != float64(11) {
		t.Errorf("got %v, want 11", got)
	}
}

func TestChainRightHandSideNotCallableIsT2006(t *testing.T) {
	wantErrCode(t, `5 ~> 3`, "", types.ErrChainNotCallable)
}

func TestObjectGroupingFirstEncounteredKeyOrder(t *testing.T) {
	got := mustEval(t, `items{category: name}`, `{"items": [
		{"category": "b", "name": "x"},
		{"category": "a", "name": "y"},
		{"category": "b", "name": "z"}
	]}`)
	// b's category is seen first; grouped value for a repeated key becomes
	// an array of the group's items (size > 1).
	if asJSON(t, got) != `{"b":["x","z"],"a":"y"}` {
		t.Errorf("got %s", asJSON(t, got))
	}
}

func TestFocusBindingKeepsOuterParentContext(t *testing.T) {
	got := mustEval(t, `items@$i.(%.total)`, `{"total": 99, "items": [1,2]}`)
	if asJSON(t, got) != `[99,99]` {
		t.Errorf("got %s, want [99,99]", asJSON(t, got))
	}
}

func TestIndexBindExposesZeroBasedPosition(t *testing.T) {
	got := mustEval(t, `items#$i[$i = 1]`, `{"items": ["a","b","c"]}`)
	if got != "b" {
		t.Errorf("got %v, want b", got)
	}
}

func TestBuiltinMapFilterReduce(t *testing.T) {
	if got := mustEval(t, `$map([1,2,3], function($v){$v * 2})`, ""); asJSON(t, got) != `[2,4,6]` {
		t.Errorf("map: got %s", asJSON(t, got))
	}
	if got := mustEval(t, `$filter([1,2,3,4], function($v){$v % 2 = 0})`, ""); asJSON(t, got) != `[2,4]` {
		t.Errorf("filter: got %s", asJSON(t, got))
	}
	if got := mustEval(t, `$reduce([1,2,3,4], function($a,$b){$a+$b})`, ""); got != float64(10) {
		t.Errorf("reduce: got %v, want 10", got)
	}
}

func TestBuiltinStringFunctions(t *testing.T) {
	if got := mustEval(t, `$uppercase("abc")`, ""); got != "ABC" {
		t.Errorf("got %v", got)
	}
	if got := mustEval(t, `$substring("hello world", 0, 5)`, ""); got != "hello" {
		t.Errorf("got %v", got)
	}
	if got := mustEval(t, `$split("a,b,c", ",")`, ""); asJSON(t, got) != `["a","b","c"]` {
		t.Errorf("got %s", asJSON(t, got))
	}
	if got := mustEval(t, `$contains("hello", "ell")`, ""); got != true {
		t.Errorf("got %v", got)
	}
	if got := mustEval(t, `$join(["a","b","c"], "-")`, ""); got != "a-b-c" {
		t.Errorf("got %v", got)
	}
}

func TestBuiltinSumAverageMinMax(t *testing.T) {
	if got := mustEval(t, `$sum([1,2,3])`, ""); got != float64(6) {
		t.Errorf("sum: got %v", got)
	}
	if got := mustEval(t, `$sum([])`, ""); got != nil {
		t.Errorf("sum([]) should be Undefined, got %v", got)
	}
	if got := mustEval(t, `$sum([5])`, ""); got != float64(5) {
		t.Errorf("sum([x])=x law: got %v, want 5", got)
	}
	if got := mustEval(t, `$average([2,4,6])`, ""); got != float64(4) {
		t.Errorf("average: got %v", got)
	}
	if got := mustEval(t, `$min([3,1,2])`, ""); got != float64(1) {
		t.Errorf("min: got %v", got)
	}
	if got := mustEval(t, `$max([3,1,2])`, ""); got != float64(3) {
		t.Errorf("max: got %v", got)
	}
}

func TestBuiltinReverseInvolution(t *testing.T) {
	got := mustEval(t, `$reverse($reverse([1,2,3]))`, "")
	if asJSON(t, got) != `[1,2,3]` {
		t.Errorf("got %s, want [1,2,3]", asJSON(t, got))
	}
}

func TestBuiltinKeysPreservesInsertionOrder(t *testing.T) {
	got := mustEval(t, `$keys({"b":1,"a":2})`, "")
	if asJSON(t, got) != `["b","a"]` {
		t.Errorf("got %s, want [\"b\",\"a\"]", asJSON(t, got))
	}
}

func TestBuiltinTypeAndExists(t *testing.T) {
	if got := mustEval(t, `$type(1)`, ""); got != "number" {
		t.Errorf("got %v", got)
	}
	if got := mustEval(t, `$type("s")`, ""); got != "string" {
		t.Errorf("got %v", got)
	}
	if got := mustEval(t, `$exists(a)`, `{"a": 1}`); got != true {
		t.Errorf("got %v", got)
	}
	if got := mustEval(t, `$exists(a)`, `{}`); got != false {
		t.Errorf("got %v", got)
	}
}

func TestBuiltinNumberStringRoundTrip(t *testing.T) {
	for _, s := range []string{"0", "1", "42", "3.14", "100"} {
		got := mustEval(t, `$string($number(s))`, `{"s": "`+s+`"}`)
		if got != s {
			t.Errorf("$string($number(%q)) = %v, want %q", s, got, s)
		}
	}
}

func TestBuiltinMatchAndReplace(t *testing.T) {
	got := mustEval(t, `$match("abc123", /[0-9]+/)`, "")
	if asJSON(t, got) != `[{"match":"123","index":3,"groups":[]}]` {
		t.Errorf("got %s", asJSON(t, got))
	}

	got2 := mustEval(t, `$replace("hello world", "world", "there")`, "")
	if got2 != "hello there" {
		t.Errorf("got %v, want 'hello there'", got2)
	}
}

func TestBuiltinMergeAndSpread(t *testing.T) {
	got := mustEval(t, `$merge([{"a":1},{"b":2}])`, "")
	if asJSON(t, got) != `{"a":1,"b":2}` {
		t.Errorf("got %s", asJSON(t, got))
	}
}

func TestBuiltinEncodeDecodeURLComponent(t *testing.T) {
	got := mustEval(t, `$decodeUrlComponent($encodeUrlComponent("a b/c"))`, "")
	if got != "a b/c" {
		t.Errorf("got %v, want round-trip", got)
	}
}

func TestBuiltinBase64RoundTrip(t *testing.T) {
	got := mustEval(t, `$base64decode($base64encode("hello"))`, "")
	if got != "hello" {
		t.Errorf("got %v, want hello", got)
	}
}

func TestExtensionArrayBuiltins(t *testing.T) {
	if got := mustEval(t, `$first([7,8,9])`, ""); got != float64(7) {
		t.Errorf("first: got %v", got)
	}
	if got := mustEval(t, `$last([7,8,9])`, ""); got != float64(9) {
		t.Errorf("last: got %v", got)
	}
	if got := mustEval(t, `$take([1,2,3,4], 2)`, ""); asJSON(t, got) != `[1,2]` {
		t.Errorf("take: got %s", asJSON(t, got))
	}
	if got := mustEval(t, `$skip([1,2,3,4], 2)`, ""); asJSON(t, got) != `[3,4]` {
		t.Errorf("skip: got %s", asJSON(t, got))
	}
	if got := mustEval(t, `$slice([1,2,3,4,5], 1, -1)`, ""); asJSON(t, got) != `[2,3,4]` {
		t.Errorf("slice: got %s", asJSON(t, got))
	}
	if got := mustEval(t, `$flatten([1,[2,[3,4]]])`, ""); asJSON(t, got) != `[1,2,3,4]` {
		t.Errorf("flatten: got %s", asJSON(t, got))
	}
	if got := mustEval(t, `$flatten([1,[2,[3,4]]], 1)`, ""); asJSON(t, got) != `[1,2,[3,4]]` {
		t.Errorf("flatten depth 1: got %s", asJSON(t, got))
	}
	if got := mustEval(t, `$chunk([1,2,3,4,5], 2)`, ""); asJSON(t, got) != `[[1,2],[3,4],[5]]` {
		t.Errorf("chunk: got %s", asJSON(t, got))
	}
	if got := mustEval(t, `$union([1,2], [2,3])`, ""); asJSON(t, got) != `[1,2,3]` {
		t.Errorf("union: got %s", asJSON(t, got))
	}
	if got := mustEval(t, `$intersection([1,2,3], [2,3,4])`, ""); asJSON(t, got) != `[2,3]` {
		t.Errorf("intersection: got %s", asJSON(t, got))
	}
	if got := mustEval(t, `$difference([1,2,3], [2])`, ""); asJSON(t, got) != `[1,3]` {
		t.Errorf("difference: got %s", asJSON(t, got))
	}
}

func TestExtensionObjectBuiltins(t *testing.T) {
	if got := mustEval(t, `$values({"a":1,"b":2})`, ""); asJSON(t, got) != `[1,2]` {
		t.Errorf("values: got %s", asJSON(t, got))
	}
	if got := mustEval(t, `$pairs({"a":1,"b":2})`, ""); asJSON(t, got) != `[["a",1],["b",2]]` {
		t.Errorf("pairs: got %s", asJSON(t, got))
	}
	if got := mustEval(t, `$fromPairs([["a",1],["b",2]])`, ""); asJSON(t, got) != `{"a":1,"b":2}` {
		t.Errorf("fromPairs: got %s", asJSON(t, got))
	}
	if got := mustEval(t, `$pick({"a":1,"b":2,"c":3}, ["a","c"])`, ""); asJSON(t, got) != `{"a":1,"c":3}` {
		t.Errorf("pick: got %s", asJSON(t, got))
	}
	if got := mustEval(t, `$omit({"a":1,"b":2,"c":3}, ["b"])`, ""); asJSON(t, got) != `{"a":1,"c":3}` {
		t.Errorf("omit: got %s", asJSON(t, got))
	}
	if got := mustEval(t, `$deepMerge([{"a":{"x":1}},{"a":{"y":2}}])`, ""); asJSON(t, got) != `{"a":{"x":1,"y":2}}` {
		t.Errorf("deepMerge: got %s", asJSON(t, got))
	}
	if got := mustEval(t, `$invert({"a":"x","b":"y"})`, ""); asJSON(t, got) != `{"x":"a","y":"b"}` {
		t.Errorf("invert: got %s", asJSON(t, got))
	}
}

func TestExtensionStringBuiltins(t *testing.T) {
	if got := mustEval(t, `$startsWith("hello", "he")`, ""); got != true {
		t.Errorf("startsWith: got %v", got)
	}
	if got := mustEval(t, `$endsWith("hello", "lo")`, ""); got != true {
		t.Errorf("endsWith: got %v", got)
	}
	if got := mustEval(t, `$indexOf("banana", "na", 3)`, ""); got != float64(4) {
		t.Errorf("indexOf: got %v", got)
	}
	if got := mustEval(t, `$capitalize("hELLO")`, ""); got != "Hello" {
		t.Errorf("capitalize: got %v", got)
	}
	if got := mustEval(t, `$camelCase("order_line item")`, ""); got != "orderLineItem" {
		t.Errorf("camelCase: got %v", got)
	}
	if got := mustEval(t, `$snakeCase("orderLineItem")`, ""); got != "order_line_item" {
		t.Errorf("snakeCase: got %v", got)
	}
	if got := mustEval(t, `$kebabCase("orderLineItem")`, ""); got != "order-line-item" {
		t.Errorf("kebabCase: got %v", got)
	}
	if got := mustEval(t, `$repeat("ab", 3)`, ""); got != "ababab" {
		t.Errorf("repeat: got %v", got)
	}
	if got := mustEval(t, `$words("two  words")`, ""); asJSON(t, got) != `["two","words"]` {
		t.Errorf("words: got %s", asJSON(t, got))
	}
	if got := mustEval(t, `$template("{{n}} of {{d}}", {"n": 3, "d": 4})`, ""); got != "3 of 4" {
		t.Errorf("template: got %v", got)
	}
}

func TestExtensionDigestBuiltins(t *testing.T) {
	if got := mustEval(t, `$hash("abc", "sha256")`, ""); got != "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad" {
		t.Errorf("hash: got %v", got)
	}
	// RFC 4231 test case 2.
	if got := mustEval(t, `$hmac("what do ya want for nothing?", "Jefe", "sha256")`, ""); got != "5bdcc146bf60754e6a042426089575c75a003f089d2739839dec58b964ec3843" {
		t.Errorf("hmac: got %v", got)
	}
}

func TestSequenceFlatteningAcrossArrayPathStep(t *testing.T) {
	// Account.Order.Product-style flattening: a path step returning an
	// array splices into the tuple stream rather than nesting.
	got := mustEval(t, `a.b`, `{"a": [{"b": [1,2]}, {"b": [3]}]}`)
	if asJSON(t, got) != `[1,2,3]` {
		t.Errorf("got %s, want [1,2,3]", asJSON(t, got))
	}
}

func TestArrayConstructorDoesNotIterateArrayInput(t *testing.T) {
	got := mustEval(t, `[a]`, `{"a": [1,2,3]}`)
	if asJSON(t, got) != `[[1,2,3]]` {
		t.Errorf("got %s, want [[1,2,3]]", asJSON(t, got))
	}
}

func TestNullFieldValueDistinctFromAbsentField(t *testing.T) {
	// A present field holding JSON null must round-trip as null, not as
	// absence; an absent field also normalizes to null at
	// the host boundary, but internally the two differ (types.Null vs Go
	// nil) until normalization — exercised here via JSON rendering.
	present := mustEval(t, `a`, `{"a": null}`)
	if asJSON(t, present) != "null" {
		t.Errorf("present null field: got %s, want null", asJSON(t, present))
	}

	absent, err := eval(t, `a`, `{}`)
	if err != nil {
		t.Fatalf("absent field should not error: %v", err)
	}
	if asJSON(t, absent) != "null" {
		t.Errorf("absent field: got %s, want null at the host boundary", asJSON(t, absent))
	}
}

func TestStackOverflowGuardIsD2002(t *testing.T) {
	ast := compile(t, `(
		$f := function($n){$n = 0 ? 0 : $f($n - 1) + 1};
		$f(100000)
	)`)
	ev := evaluator.New(evaluator.WithMaxDepth(200))
	_, err := ev.Eval(context.Background(), ast, nil)
	if err == nil {
		t.Fatal("expected a recursion-depth error for unbounded recursion")
	}
	jerr, ok := err.(*types.Error)
	if !ok {
		t.Fatalf("expected *types.Error, got %T", err)
	}
	if jerr.Code != types.ErrStackOverflow {
		t.Errorf("code = %s, want %s", jerr.Code, types.ErrStackOverflow)
	}
}

func TestTransformOperatorIsD3013(t *testing.T) {
	wantErrCode(t, `a ~> |b|{"c":1}|`, `{"a":{"b":{}}}`, types.ErrTransformUnsupported)
}

func TestCustomFunctionViaWithCustomFunction(t *testing.T) {
	ast := compile(t, `$shout("hi")`)
	ev := evaluator.New(evaluator.WithCustomFunction("shout", &evaluator.FunctionDef{
		Name: "$shout", MinArgs: 1, MaxArgs: 1,
		Impl: func(_ context.Context, _ *evaluator.Evaluator, _ *evaluator.Environment, args []interface{}) (interface{}, error) {
			s, _ := args[0].(string)
			return s + "!", nil
		},
	}))
	got, err := ev.Eval(context.Background(), ast, nil)
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if got != "hi!" {
		t.Errorf("got %v, want hi!", got)
	}
}

func TestEvalWithBindingsInjectsRootVariable(t *testing.T) {
	ast := compile(t, `$rate * 2`)
	ev := evaluator.New()
	got, err := ev.EvalWithBindings(context.Background(), ast, nil, map[string]interface{}{"rate": float64(21)})
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if got != float64(42) {
		t.Errorf("got %v, want 42", got)
	}
}
