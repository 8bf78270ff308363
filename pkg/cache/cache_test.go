package cache

import (
	"testing"

	"github.com/secondlayerco/jsonata/pkg/types"
)

func expr(src string) *types.Expression {
	return types.NewExpression(types.NewASTNode(types.NodeString, 0), src)
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := New(2)
	c.Set("a", expr("a"))
	c.Set("b", expr("b"))

	if _, ok := c.Get("a"); !ok {
		t.Fatal("a should be cached")
	}

	// a was just touched, so inserting c must evict b.
	c.Set("c", expr("c"))
	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("a should have survived eviction")
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}
	if got := c.Stats().Evictions; got != 1 {
		t.Errorf("Evictions = %d, want 1", got)
	}
}

func TestCacheGetOrCompileCompilesOncePerSource(t *testing.T) {
	c := New(4)
	calls := 0
	compile := func() (*types.Expression, error) {
		calls++
		return expr("x"), nil
	}

	e1, err := c.GetOrCompile("x", compile)
	if err != nil {
		t.Fatalf("GetOrCompile: %v", err)
	}
	e2, err := c.GetOrCompile("x", compile)
	if err != nil {
		t.Fatalf("GetOrCompile: %v", err)
	}
	if calls != 1 {
		t.Errorf("compile ran %d times, want 1", calls)
	}
	if e1 != e2 {
		t.Error("both callers should share the cached expression")
	}

	stats := c.Stats()
	if stats.Hits != 1 || stats.Misses != 1 {
		t.Errorf("stats = %+v, want 1 hit / 1 miss", stats)
	}
}

func TestCacheDoesNotCacheCompileErrors(t *testing.T) {
	c := New(4)
	calls := 0
	failing := func() (*types.Expression, error) {
		calls++
		return nil, types.NewError(types.ErrSyntaxError, "bad expression")
	}

	if _, err := c.GetOrCompile("bad", failing); err == nil {
		t.Fatal("expected compile error")
	}
	if _, err := c.GetOrCompile("bad", failing); err == nil {
		t.Fatal("expected compile error on retry")
	}
	if calls != 2 {
		t.Errorf("compile ran %d times, want 2 (errors are not cached)", calls)
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0", c.Len())
	}
}
