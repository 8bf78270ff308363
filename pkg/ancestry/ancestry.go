// Package ancestry implements the post-parse static resolution pass for
// the `%` (parent) operator.
//
// JSONata's tree-walking evaluator threads a dynamic "current step depth"
// through path evaluation, but `%` must be resolved to a specific ancestor
// step at compile time so the evaluator can bind the right value into the
// environment as it descends, rather than searching back up a live call
// stack on every reference. Resolve walks the AST once after parsing and
// annotates every NodeParent with a ParentSlot describing which enclosing
// step's pre-navigation context it refers to.
package ancestry

import (
	"fmt"

	"github.com/secondlayerco/jsonata/pkg/types"
)

// Resolve walks root and assigns a ParentSlot to every NodeParent node it
// finds. It returns an error (S0217) for a `%` with no enclosing step to
// bind to.
func Resolve(root *types.ASTNode) error {
	r := &resolver{}
	return r.walk(root, 0)
}

type resolver struct{}

// walk recurses through node with depth counting the number of path/filter
// steps currently enclosing it. depth 0 means "no enclosing step" — a `%`
// seen there cannot resolve to anything and is an error.
//
// depth is incremented when recursing into:
//   - the RHS of a NodePath or NodeDescendant (a dotted step)
//   - the predicate (RHS) of a NodeFilter
//   - the sort terms of a NodeSort
//   - the RHS of a NodeGroupBy
//
// and reset to 0 inside a NodeLambda body: the body is self-contained, so
// a `%` inside it resolves only against steps within the body itself,
// never against the path nesting at its definition site or its call site.
func (r *resolver) walk(node *types.ASTNode, depth int) error {
	if node == nil {
		return nil
	}

	switch node.Type {
	case types.NodeParent:
		if depth == 0 {
			return &types.Error{
				Code:     types.ErrParentNotResolved,
				Message:  "no enclosing step for '%'",
				Position: node.Position,
			}
		}
		node.Parent = &types.ParentSlot{
			Label: fmt.Sprintf("$$parent%d", depth-1),
			Level: 1,
			Index: depth - 1,
		}
		return nil

	case types.NodePath, types.NodeDescendant:
		if err := r.walk(node.LHS, depth); err != nil {
			return err
		}
		return r.walk(node.RHS, depth+1)

	case types.NodeFilter:
		if err := r.walk(node.LHS, depth); err != nil {
			return err
		}
		return r.walk(node.RHS, depth+1)

	case types.NodeSort:
		if err := r.walk(node.LHS, depth); err != nil {
			return err
		}
		for _, term := range node.Expressions {
			if err := r.walk(term, depth+1); err != nil {
				return err
			}
		}
		return nil

	case types.NodeGroupBy:
		if err := r.walk(node.LHS, depth); err != nil {
			return err
		}
		for _, pair := range node.Expressions {
			if err := r.walk(pair, depth+1); err != nil {
				return err
			}
		}
		return nil

	case types.NodeLambda:
		for _, param := range node.Arguments {
			if err := r.walk(param, depth); err != nil {
				return err
			}
		}
		return r.walk(node.RHS, 0)

	default:
		if err := r.walk(node.LHS, depth); err != nil {
			return err
		}
		if err := r.walk(node.RHS, depth); err != nil {
			return err
		}
		for _, step := range node.Steps {
			if err := r.walk(step, depth); err != nil {
				return err
			}
		}
		for _, arg := range node.Arguments {
			if err := r.walk(arg, depth); err != nil {
				return err
			}
		}
		for _, expr := range node.Expressions {
			if err := r.walk(expr, depth); err != nil {
				return err
			}
		}
		return nil
	}
}
