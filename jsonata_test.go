package jsonata

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/secondlayerco/jsonata/pkg/cache"
	"github.com/secondlayerco/jsonata/pkg/evaluator"
)

// sampleInput is the order document the end-to-end scenarios run against.
const sampleInput = `{
  "A": { "O": [
    { "P": "Hat",   "N": 2, "U": 9.99  },
    { "P": "Shoes", "N": 1, "U": 49.99 },
    { "P": "Shirt", "N": 3, "U": 24.99 }
  ] }
}`

func mustUnmarshal(t *testing.T, src string) interface{} {
	t.Helper()
	var v interface{}
	if err := json.Unmarshal([]byte(src), &v); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return v
}

func evalExpr(t *testing.T, expr string, input interface{}, opts ...Option) interface{} {
	t.Helper()
	prog, err := Compile(expr, opts...)
	if err != nil {
		t.Fatalf("Compile(%q): %v", expr, err)
	}
	result, err := prog.Evaluate(input)
	if err != nil {
		t.Fatalf("Evaluate(%q): %v", expr, err)
	}
	return result
}

func asJSON(t *testing.T, v interface{}) string {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(b)
}

func TestEndToEndScenarios(t *testing.T) {
	input := mustUnmarshal(t, sampleInput)

	cases := []struct {
		name string
		expr string
		want string
	}{
		{"simple path projection", "A.O.P", `["Hat","Shoes","Shirt"]`},
		{"filter then project", "A.O[U>20].P", `["Shoes","Shirt"]`},
		{"aggregate over projected pairwise product", "$sum(A.O.(U*N))", "144.94"},
		{"object grouping", "A.O{P: U}", `{"Hat":9.99,"Shoes":49.99,"Shirt":24.99}`},
		{"sort descending by key", "A.O^(>U).P", `["Shoes","Shirt","Hat"]`},
		// `&` binds looser than `.`, so a focus
		// variable consumed alongside further navigation must stay grouped
		// inside the same path step via `.(...)` — written ungrouped it would
		// fall outside the path chain that bound `$o` in the first place.
		{"focus binding", `A.O@$o.(P & ": " & $string($o.U))`, `["Hat: 9.99","Shoes: 49.99","Shirt: 24.99"]`},
		{"index binding", `A.O#$i.{"i":$i,"p":P}`, `[{"i":0,"p":"Hat"},{"i":1,"p":"Shoes"},{"i":2,"p":"Shirt"}]`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := evalExpr(t, tc.expr, input)
			if gotJSON := asJSON(t, got); gotJSON != tc.want {
				t.Errorf("eval(%q) = %s, want %s", tc.expr, gotJSON, tc.want)
			}
		})
	}
}

func TestBindAndLambdaClosure(t *testing.T) {
	input := mustUnmarshal(t, sampleInput)

	prog, err := Compile("A.O[0].U * $tax")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	prog.Bind("tax", 1.1)
	got, err := prog.Evaluate(input)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if gotJSON := asJSON(t, got); gotJSON != "10.989" {
		t.Errorf("got %s, want 10.989", gotJSON)
	}
}

func TestLambdaAssignmentAndInvocation(t *testing.T) {
	got := evalExpr(t, "(($d := function($x){$x*2}); $d(21))", nil)
	if got != float64(42) {
		t.Errorf("got %v, want 42", got)
	}
}

func TestBoundaryCases(t *testing.T) {
	cases := []struct {
		name  string
		expr  string
		input string
		want  string
	}{
		{"undefined key omitted from object", `{"k": ()}`, "null", "{}"},
		{"single element range", "[1..1]", "null", "[1]"},
		{"empty range when start exceeds end", "[5..3]", "null", "[]"},
		{"keepArray wraps non-array value", "a[]", `{"a": 1}`, "[1]"},
		{"null field stays null, not absent", "a.b", `{"a": {"b": null}}`, "null"},
		{"absent field returns no result", "a.c", `{"a": {"b": 1}}`, "null"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := mustUnmarshal(t, tc.input)
			got := evalExpr(t, tc.expr, input)
			if gotJSON := asJSON(t, got); gotJSON != tc.want {
				t.Errorf("eval(%q) = %s, want %s", tc.expr, gotJSON, tc.want)
			}
		})
	}
}

func TestContextEqualsRootContextAtTopLevel(t *testing.T) {
	input := mustUnmarshal(t, `{"x": 1}`)
	got := evalExpr(t, "$ = $$", input)
	if got != true {
		t.Errorf("$ = $$ at top level = %v, want true", got)
	}
}

func TestRegisterFunctionAddsCustomCallable(t *testing.T) {
	prog, err := Compile(`$shout("hi")`)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	prog.RegisterFunction("$shout", func(_ context.Context, _ *evaluator.Evaluator, _ *evaluator.Environment, args []interface{}) (interface{}, error) {
		s, _ := args[0].(string)
		return s + "!", nil
	}, 1, 1)

	got, err := prog.Evaluate(nil)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if got != "hi!" {
		t.Errorf("got %v, want %q", got, "hi!")
	}
}

func TestCompileCachedSharesParseAcrossCalls(t *testing.T) {
	c := cache.New(8)
	const expr = "1 + 1"

	p1, err := CompileCached(expr, c)
	if err != nil {
		t.Fatalf("CompileCached: %v", err)
	}
	p2, err := CompileCached(expr, c)
	if err != nil {
		t.Fatalf("CompileCached: %v", err)
	}
	if p1.AST() != p2.AST() {
		t.Error("expected CompileCached to reuse the same parsed AST on a cache hit")
	}
	if c.Len() != 1 {
		t.Errorf("cache.Len() = %d, want 1", c.Len())
	}

	result, err := p2.Evaluate(nil)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if result != float64(2) {
		t.Errorf("got %v, want 2", result)
	}
}

func TestCompileErrorForEmptyExpression(t *testing.T) {
	if _, err := Compile(""); err == nil {
		t.Fatal("expected error compiling an empty expression")
	}
}

func TestCompileErrorForUnresolvableParent(t *testing.T) {
	if _, err := Compile("%"); err == nil {
		t.Fatal("expected S0217 compiling a bare '%' with no enclosing step")
	}
}

func TestDumpProducesNonEmptyTree(t *testing.T) {
	prog, err := Compile("a.b")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if prog.Dump() == "" {
		t.Error("expected Dump() to render something")
	}
	if prog.Source() != "a.b" {
		t.Errorf("Source() = %q, want %q", prog.Source(), "a.b")
	}
}
