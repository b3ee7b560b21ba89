package flash

import (
	"context"

	fo "github.com/mechanik-daniel/flashonata"
	"github.com/mechanik-daniel/flashonata/ast"
	"github.com/mechanik-daniel/flashonata/env"
	"github.com/mechanik-daniel/flashonata/host"
)

// subExprOutcome is the result of processing a node's sub-expressions
// (spec §4.2): at most one inline value, and FRRs grouped by key in
// arrival order.
type subExprOutcome struct {
	inlineResult any
	hasInline    bool
	byKey        map[string][]*host.FlashRuleResult
	order        []string
}

// isRetainedFalsy reports whether v is one of the two falsy values spec
// §4.2 explicitly retains as a meaningful inline result (explicit false or
// 0), as opposed to every other falsy value which is dropped.
func isRetainedFalsy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t == false
	case float64:
		return t == 0
	case int:
		return t == 0
	case int64:
		return t == 0
	}
	return false
}

// isFalsy mirrors the ambient-language falsiness spec §4.2 references:
// nil, empty string, zero number, false, and empty slice/map are falsy.
func isFalsy(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case bool:
		return !t
	case string:
		return t == ""
	case float64:
		return t == 0
	case int:
		return t == 0
	case int64:
		return t == 0
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	default:
		return false
	}
}

// processSubExpressions implements spec §4.2: evaluate every expression in
// node.Expressions against input/scope through the host evaluator, and
// classify each result.
func processSubExpressions(ctx context.Context, he host.Evaluator, node *ast.Node, input any, scope *env.Env) (*subExprOutcome, error) {
	out := &subExprOutcome{byKey: make(map[string][]*host.FlashRuleResult)}

	for _, expr := range node.Expressions {
		select {
		case <-ctx.Done():
			return nil, fo.NewErr(fo.ErrCanceled).
				Position(node.Position, node.Start, node.Line).
				Wrap(ctx.Err()).
				Message("evaluation canceled: %v", ctx.Err()).
				Build()
		default:
		}

		raw, err := he.Evaluate(ctx, expr, input, scope)
		if err != nil {
			return nil, err
		}

		result := host.Classify(raw)
		if result.IsUndefined() {
			continue
		}

		if expr.IsInlineExpression {
			v := result.Raw
			if result.Kind == host.Rule && result.Rule != nil {
				v = result.Rule.Value
			}
			if !isFalsy(v) || isRetainedFalsy(v) {
				out.inlineResult = v
				out.hasInline = true
			}
			continue
		}

		switch result.Kind {
		case host.Rule:
			appendSubExprResult(out, result.Rule)
		case host.RuleList:
			for _, frr := range result.List {
				appendSubExprResult(out, frr)
			}
		default:
			// A non-inline raw value with no flash-rule envelope carries no
			// grouping key; nothing in spec §4.2 names this case, so it is
			// silently ignored rather than guessed at.
		}
	}

	return out, nil
}

func appendSubExprResult(out *subExprOutcome, frr *host.FlashRuleResult) {
	if frr == nil {
		return
	}
	if _, seen := out.byKey[frr.Key]; !seen {
		out.order = append(out.order, frr.Key)
	}
	out.byKey[frr.Key] = append(out.byKey[frr.Key], frr)
}
