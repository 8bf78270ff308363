package parser

import (
	"testing"

	"github.com/secondlayerco/jsonata/pkg/types"
)

func parseOk(t *testing.T, src string) *types.ASTNode {
	t.Helper()
	expr, err := NewParser(src).Parse()
	if err != nil {
		t.Fatalf("Parse(%q) unexpected error: %v", src, err)
	}
	return expr.AST()
}

func TestParserLiterals(t *testing.T) {
	cases := []struct {
		src      string
		nodeType types.NodeType
	}{
		{"42", types.NodeNumber},
		{`"hi"`, types.NodeString},
		{"true", types.NodeBoolean},
		{"null", types.NodeNull},
		{"foo", types.NodeName},
		{"$x", types.NodeVariable},
		{"*", types.NodeWildcard},
		{"%", types.NodeParent},
	}
	for _, tc := range cases {
		node := parseOk(t, tc.src)
		if node.Type != tc.nodeType {
			t.Errorf("Parse(%q).Type = %v, want %v", tc.src, node.Type, tc.nodeType)
		}
	}
}

func TestParserPathChainsLeftAssociative(t *testing.T) {
	node := parseOk(t, "a.b.c")
	if node.Type != types.NodePath {
		t.Fatalf("top node type = %v, want NodePath", node.Type)
	}
	if node.RHS.Type != types.NodeName || node.RHS.Value != "c" {
		t.Fatalf("RHS = %+v, want Name(c)", node.RHS)
	}
	inner := node.LHS
	if inner.Type != types.NodePath {
		t.Fatalf("LHS type = %v, want NodePath", inner.Type)
	}
	if inner.LHS.Value != "a" || inner.RHS.Value != "b" {
		t.Fatalf("inner path = %+v", inner)
	}
}

func TestParserFilter(t *testing.T) {
	node := parseOk(t, "a[b>1]")
	if node.Type != types.NodeFilter {
		t.Fatalf("type = %v, want NodeFilter", node.Type)
	}
	if node.LHS.Value != "a" {
		t.Fatalf("filter target = %+v", node.LHS)
	}
	if node.RHS.Type != types.NodeBinary || node.RHS.Value != ">" {
		t.Fatalf("predicate = %+v", node.RHS)
	}
}

func TestParserKeepArray(t *testing.T) {
	node := parseOk(t, "a[]")
	if node.Type != types.NodeFilter || !node.KeepArray {
		t.Fatalf("a[] should parse as KeepArray filter, got %+v", node)
	}
}

func TestParserObjectConstructor(t *testing.T) {
	node := parseOk(t, `{"a": 1, "b": 2}`)
	if node.Type != types.NodeObject {
		t.Fatalf("type = %v, want NodeObject", node.Type)
	}
	if len(node.Expressions) != 2 {
		t.Fatalf("expected 2 pairs, got %d", len(node.Expressions))
	}
}

func TestParserObjectGrouping(t *testing.T) {
	node := parseOk(t, `A.O{P: U}`)
	if node.Type != types.NodeGroupBy {
		t.Fatalf("type = %v, want NodeGroupBy", node.Type)
	}
	if node.LHS == nil {
		t.Fatal("grouping node missing LHS target")
	}
}

func TestParserConditional(t *testing.T) {
	node := parseOk(t, "a ? b : c")
	if node.Type != types.NodeCondition {
		t.Fatalf("type = %v, want NodeCondition", node.Type)
	}
	if node.LHS.Value != "a" || node.RHS.Value != "b" {
		t.Fatalf("cond/then = %+v / %+v", node.LHS, node.RHS)
	}
	if len(node.Steps) != 1 || node.Steps[0].Value != "c" {
		t.Fatalf("else = %+v", node.Steps)
	}
}

func TestParserElvis(t *testing.T) {
	node := parseOk(t, "a ?: b")
	if node.Type != types.NodeBinary || node.Value != "?:" {
		t.Fatalf("elvis should parse as a '?:' binary, got %+v", node)
	}
	if node.LHS.Value != "a" || node.RHS.Value != "b" {
		t.Fatalf("elvis operands = %+v / %+v", node.LHS, node.RHS)
	}
}

func TestParserLambda(t *testing.T) {
	node := parseOk(t, "function($x){$x*2}")
	if node.Type != types.NodeLambda {
		t.Fatalf("type = %v, want NodeLambda", node.Type)
	}
	if len(node.Arguments) != 1 || node.Arguments[0].Value != "x" {
		t.Fatalf("params = %+v", node.Arguments)
	}
	if node.RHS == nil {
		t.Fatal("lambda body missing")
	}
}

func TestParserAssignment(t *testing.T) {
	node := parseOk(t, "$x := 1")
	if node.Type != types.NodeAssignment {
		t.Fatalf("type = %v, want NodeAssignment", node.Type)
	}
}

func TestParserAssignmentToNonVariableFails(t *testing.T) {
	_, err := NewParser("1 := 2").Parse()
	if err == nil {
		t.Fatal("expected error assigning to non-variable")
	}
}

func TestParserRange(t *testing.T) {
	node := parseOk(t, "1..5")
	if node.Type != types.NodeRange {
		t.Fatalf("range = %+v, want NodeRange", node)
	}
}

func TestParserRangeBindsLooserThanComparison(t *testing.T) {
	// `..` sits at 20, below the comparison operators at 40, so the
	// comparison groups into the range's right bound.
	node := parseOk(t, "1..2 = 3")
	if node.Type != types.NodeRange {
		t.Fatalf("type = %v, want NodeRange", node.Type)
	}
	if node.RHS.Type != types.NodeBinary || node.RHS.Value != "=" {
		t.Fatalf("range RHS = %+v, want Binary(=)", node.RHS)
	}
}

func TestParserRangeBindsLooserThanArithmetic(t *testing.T) {
	node := parseOk(t, "1..$n - 1")
	if node.Type != types.NodeRange {
		t.Fatalf("type = %v, want NodeRange", node.Type)
	}
	if node.RHS.Type != types.NodeBinary || node.RHS.Value != "-" {
		t.Fatalf("range RHS = %+v, want Binary(-)", node.RHS)
	}
}

func TestParserChain(t *testing.T) {
	node := parseOk(t, "a ~> $b ~> $c")
	if node.Type != types.NodeChain {
		t.Fatalf("type = %v, want NodeChain", node.Type)
	}
}

func TestParserChainBindsTighterThanOr(t *testing.T) {
	// `~>` sits at 40 with the comparison operators, above `or` at 25, so
	// the chain groups under the boolean's right operand.
	node := parseOk(t, "a or b ~> $f")
	if node.Type != types.NodeBinary || node.Value != "or" {
		t.Fatalf("type = %+v, want Binary(or)", node)
	}
	if node.RHS.Type != types.NodeChain {
		t.Fatalf("or RHS = %+v, want NodeChain", node.RHS)
	}
}

func TestParserCoalesceBindsLooserThanOr(t *testing.T) {
	// `??` sits at 20, below `or` at 25, so the boolean groups into the
	// coalesce's right side.
	node := parseOk(t, "a ?? b or c")
	if node.Type != types.NodeBinary || node.Value != "??" {
		t.Fatalf("type = %+v, want Binary(??)", node)
	}
	if node.RHS.Type != types.NodeBinary || node.RHS.Value != "or" {
		t.Fatalf("coalesce RHS = %+v, want Binary(or)", node.RHS)
	}
}

func TestParserSortAppliesToWholePath(t *testing.T) {
	// `^` binds just below `.`, so a sort written after a path applies to
	// the whole preceding sequence, and a following step navigates the
	// sorted result.
	node := parseOk(t, "a.b^(<u)")
	if node.Type != types.NodeSort {
		t.Fatalf("type = %v, want NodeSort", node.Type)
	}
	if node.LHS.Type != types.NodePath {
		t.Fatalf("sort LHS = %+v, want NodePath", node.LHS)
	}

	node = parseOk(t, "a.b^(<u).c")
	if node.Type != types.NodePath {
		t.Fatalf("type = %v, want NodePath", node.Type)
	}
	if node.LHS.Type != types.NodeSort {
		t.Fatalf("path LHS = %+v, want NodeSort", node.LHS)
	}
	if node.RHS.Type != types.NodeName || node.RHS.Value != "c" {
		t.Fatalf("path RHS = %+v, want Name(c)", node.RHS)
	}
}

func TestParserFocusAndIndexBind(t *testing.T) {
	node := parseOk(t, "a@$v")
	if node.Type != types.NodeFocus || node.Value != "v" {
		t.Fatalf("focus = %+v", node)
	}
	node = parseOk(t, "a#$i")
	if node.Type != types.NodeIndexBind || node.Value != "i" {
		t.Fatalf("indexbind = %+v", node)
	}
}

func TestParserSort(t *testing.T) {
	node := parseOk(t, "a^(<x, >y)")
	if node.Type != types.NodeSort {
		t.Fatalf("type = %v, want NodeSort", node.Type)
	}
	if len(node.Expressions) != 2 {
		t.Fatalf("expected 2 sort terms, got %d", len(node.Expressions))
	}
	if node.Expressions[0].Value != "<" || node.Expressions[1].Value != ">" {
		t.Fatalf("sort terms = %+v", node.Expressions)
	}
}

func TestParserFunctionCallPlaceholder(t *testing.T) {
	node := parseOk(t, "$f(?, 2)")
	if node.Type != types.NodeFunctionCall {
		t.Fatalf("type = %v, want NodeFunctionCall", node.Type)
	}
	if len(node.Arguments) != 2 || node.Arguments[0].Type != types.NodePlaceholder {
		t.Fatalf("args = %+v", node.Arguments)
	}
}

func TestParserEmptyExpressionFails(t *testing.T) {
	_, err := NewParser("").Parse()
	if err == nil {
		t.Fatal("expected error for empty expression")
	}
	jsonataErr, ok := err.(*types.Error)
	if !ok {
		t.Fatalf("expected *types.Error, got %T", err)
	}
	if jsonataErr.Code != types.ErrEmptyExpression {
		t.Errorf("code = %v, want %v", jsonataErr.Code, types.ErrEmptyExpression)
	}
}

func TestParserUnexpectedTokenFails(t *testing.T) {
	_, err := NewParser("a +").Parse()
	if err == nil {
		t.Fatal("expected syntax error")
	}
}

func TestParserRecoveryAggregatesErrors(t *testing.T) {
	p := NewParser("a +", WithRecovery(true))
	_, _ = p.Parse()
	if len(p.Errors()) == 0 {
		t.Fatal("expected at least one recorded error in recovery mode")
	}
}
