package ancestry

import (
	"testing"

	"github.com/secondlayerco/jsonata/pkg/parser"
	"github.com/secondlayerco/jsonata/pkg/types"
)

func parseAST(t *testing.T, src string) *types.ASTNode {
	t.Helper()
	expr, err := parser.NewParser(src).Parse()
	if err != nil {
		t.Fatalf("Parse(%q): %v", src, err)
	}
	return expr.AST()
}

func TestResolveBindsParentInGroupingPair(t *testing.T) {
	ast := parseAST(t, "A.O[U>20]{P: %.N}")
	if err := Resolve(ast); err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	// A.O[...]{P: %.N} parses as NodeGroupBy{LHS: A.O[...], Expressions: [pair(P, %.N)]}.
	if ast.Type != types.NodeGroupBy {
		t.Fatalf("top node type = %v, want NodeGroupBy", ast.Type)
	}
	pair := ast.Expressions[0]
	percentNode := pair.RHS.LHS // %.N => NodePath{LHS: %, RHS: N}
	if percentNode.Type != types.NodeParent {
		t.Fatalf("expected NodeParent, got %+v", percentNode)
	}
	if percentNode.Parent == nil {
		t.Fatal("expected a resolved ParentSlot, got nil")
	}
}

func TestResolveUnboundParentFails(t *testing.T) {
	ast := parseAST(t, "%")
	err := Resolve(ast)
	if err == nil {
		t.Fatal("expected S0217 for a bare '%' with no enclosing step")
	}
	jsonataErr, ok := err.(*types.Error)
	if !ok {
		t.Fatalf("expected *types.Error, got %T", err)
	}
	if jsonataErr.Code != types.ErrParentNotResolved {
		t.Errorf("code = %v, want %v", jsonataErr.Code, types.ErrParentNotResolved)
	}
}

func TestResolveParentNotEscapingLambda(t *testing.T) {
	ast := parseAST(t, "A[function(){%}()]")
	err := Resolve(ast)
	if err == nil {
		t.Fatal("expected S0217: a lambda body is opaque to the enclosing path's parent slots")
	}
}
