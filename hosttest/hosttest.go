// Package hosttest provides a minimal scriptable host.Evaluator stub for
// tests of the flash package. It lets a test drive every sub-expression
// scenario the spec describes (inline value, bind, FRR, FRR list,
// undefined) without a real mapping-language lexer/parser/evaluator.
package hosttest

import (
	"context"
	"fmt"

	"github.com/mechanik-daniel/flashonata/ast"
	"github.com/mechanik-daniel/flashonata/env"
	"github.com/mechanik-daniel/flashonata/host"
)

// Func is a scripted behavior for one node: it receives the live input and
// scope so a test can script a variable bind (mutate scope, return nil) or
// a value that depends on the input.
type Func func(ctx context.Context, input any, scope *env.Env) (any, error)

// Stub is a scriptable host.Evaluator. Zero value is usable; register
// canned results with OnNode or OnTag before evaluating.
type Stub struct {
	byNode map[*ast.Node]Func
	byTag  map[string]Func
	calls  []*ast.Node
}

// New creates an empty Stub.
func New() *Stub {
	return &Stub{
		byNode: make(map[*ast.Node]Func),
		byTag:  make(map[string]Func),
	}
}

// OnNode scripts the result for one specific *ast.Node instance.
func (s *Stub) OnNode(node *ast.Node, fn Func) *Stub {
	s.byNode[node] = fn
	return s
}

// OnTag scripts the result for any node whose Value matches tag. Useful
// when the test builds nodes from a helper and cares about identity by
// name rather than pointer.
func (s *Stub) OnTag(tag string, fn Func) *Stub {
	s.byTag[tag] = fn
	return s
}

// Value scripts a plain inline value to return, ignoring input/scope.
func Value(v any) Func {
	return func(context.Context, any, *env.Env) (any, error) { return v, nil }
}

// Rule scripts a single flash-rule result.
func Rule(frr *host.FlashRuleResult) Func {
	return func(context.Context, any, *env.Env) (any, error) { return frr, nil }
}

// RuleList scripts an array of flash-rule results.
func RuleList(list []*host.FlashRuleResult) Func {
	return func(context.Context, any, *env.Env) (any, error) { return list, nil }
}

// Bind scripts a variable-binding node: it mutates scope and returns nil,
// exactly as spec §4.2 describes a "bind" node's contract.
func Bind(name string, value any) Func {
	return func(_ context.Context, _ any, scope *env.Env) (any, error) {
		scope.BindVar(name, value)
		return nil, nil
	}
}

// Fail scripts a node that always errors.
func Fail(err error) Func {
	return func(context.Context, any, *env.Env) (any, error) { return nil, err }
}

// Evaluate implements host.Evaluator. Unscripted nodes return (nil, nil)
// — the "undefined" case spec §4.2 discards outright.
func (s *Stub) Evaluate(ctx context.Context, node *ast.Node, input any, scope *env.Env) (any, error) {
	s.calls = append(s.calls, node)

	if fn, ok := s.byNode[node]; ok {
		return fn(ctx, input, scope)
	}
	if node != nil {
		if fn, ok := s.byTag[node.Value]; ok {
			return fn(ctx, input, scope)
		}
	}
	return nil, nil
}

// CallCount returns how many times Evaluate was invoked.
func (s *Stub) CallCount() int { return len(s.calls) }

// Calls returns the nodes Evaluate was invoked with, in call order.
func (s *Stub) Calls() []*ast.Node { return s.calls }

var _ host.Evaluator = (*Stub)(nil)

// TaggedNode is a convenience constructor for a plain expression node
// tagged for OnTag lookup.
func TaggedNode(tag string) *ast.Node {
	return &ast.Node{Type: "expression", Value: tag}
}

// InlineNode is a convenience constructor for an inline-expression node.
func InlineNode(tag string) *ast.Node {
	n := TaggedNode(tag)
	n.IsInlineExpression = true
	return n
}

// errUnregistered is the error an Unreachable script returns when a node
// that must never be reached is evaluated.
var errUnregistered = fmt.Errorf("hosttest: node evaluated without a script")

// Unreachable scripts a node that must never be evaluated.
func Unreachable() Func {
	return Fail(errUnregistered)
}
