package flash

import (
	"context"

	fo "github.com/mechanik-daniel/flashonata"
	"github.com/mechanik-daniel/flashonata/ast"
	"github.com/mechanik-daniel/flashonata/definitions"
	"github.com/mechanik-daniel/flashonata/env"
	"github.com/mechanik-daniel/flashonata/host"
)

// childProjection is one child ED's resolved contribution, ready for
// assignment (spec §4.3's output feeding into §4.5's assignment step).
type childProjection struct {
	ed       *definitions.ElementDefinition
	key      string // grouping key ("name" or "name:sliceName")
	value    any
	hasValue bool
}

// candidateNames implements spec §4.3 step 1.
func candidateNames(ed *definitions.ElementDefinition) []string {
	if len(ed.Names) == 0 {
		return nil
	}
	if len(ed.Names) > 1 {
		return ed.Names
	}
	name := ed.Names[0]
	if ed.IsPolymorphic() {
		return []string{name}
	}
	if ed.SliceName != "" {
		return []string{name + ":" + ed.SliceName}
	}
	return []string{name}
}

// harvestInline implements spec §4.3 step 2's inline contribution: reading
// inlineResult[name] (and, for primitive-type children, the "_name"
// sibling), spreading arrays for repeating children.
func harvestInline(ed *definitions.ElementDefinition, name string, inline any) []any {
	obj, ok := asMap(inline)
	if !ok || ed.SliceName != "" {
		return nil
	}

	raw, hasRaw := obj[name]
	var sibling any
	hasSibling := false
	if ed.Kind == definitions.KindPrimitiveType {
		sibling, hasSibling = obj["_"+name]
	}
	if !hasRaw && !hasSibling {
		return nil
	}

	if ed.Kind == definitions.KindPrimitiveType {
		return harvestPrimitiveInline(ed, raw, sibling)
	}

	if ed.IsArray {
		if arr, ok := raw.([]any); ok {
			return arr
		}
		if raw == nil {
			return nil
		}
		return []any{raw}
	}
	return []any{raw}
}

// harvestPrimitiveInline wraps each scalar (and its index-aligned "_name"
// sibling, when arrays) as { value: scalar, ...siblings } per spec §4.3
// step 2's "For primitive-type, each scalar is wrapped".
func harvestPrimitiveInline(ed *definitions.ElementDefinition, raw, sibling any) []any {
	if ed.IsArray {
		rawArr, _ := raw.([]any)
		sibArr, _ := sibling.([]any)
		n := len(rawArr)
		if len(sibArr) > n {
			n = len(sibArr)
		}
		out := make([]any, 0, n)
		for i := 0; i < n; i++ {
			var rv, sv any
			if i < len(rawArr) {
				rv = rawArr[i]
			}
			if i < len(sibArr) {
				sv = sibArr[i]
			}
			if w := wrapPrimitive(rv, sv); w != nil {
				out = append(out, w)
			}
		}
		return out
	}
	if w := wrapPrimitive(raw, sibling); w != nil {
		return []any{w}
	}
	return nil
}

// wrapPrimitive builds the { value, ...siblings } object spec §4.3/§4.5 use
// as the canonical in-flight shape of a primitive-type element's value.
func wrapPrimitive(value, sibling any) map[string]any {
	obj := map[string]any{}
	if value != nil {
		obj["value"] = value
	}
	if sibMap, ok := sibling.(map[string]any); ok {
		for k, v := range sibMap {
			obj[k] = v
		}
	}
	if len(obj) == 0 {
		return nil
	}
	return obj
}

// harvestSubExpressions implements spec §4.3 step 2's sub-expression
// contribution.
func harvestSubExpressions(name string, sub *subExprOutcome) []any {
	frrs := sub.byKey[name]
	if len(frrs) == 0 {
		return nil
	}
	out := make([]any, 0, len(frrs))
	for _, frr := range frrs {
		out = append(out, frr.Value)
	}
	return out
}

// collapseCardinality implements spec §4.3 step 3.
func collapseCardinality(ed *definitions.ElementDefinition, harvest []any) (any, bool) {
	if len(harvest) == 0 {
		return nil, false
	}
	if ed.IsArray {
		return harvest, true
	}
	if ed.Kind == definitions.KindSystem {
		return harvest[len(harvest)-1], true
	}
	merged := map[string]any{}
	mergedAny := false
	for _, v := range harvest {
		if m, ok := asMap(v); ok {
			for k, vv := range m {
				merged[k] = vv
			}
			mergedAny = true
		}
	}
	if mergedAny {
		return merged, true
	}
	return harvest[len(harvest)-1], true
}

// projectChildren implements spec §4.3 in full: candidate names, harvest,
// cardinality collapse, and virtual-rule synthesis for mandatory children
// with no direct contribution.
func projectChildren(ctxParent context.Context, he host.Evaluator, node *ast.Node, children []*definitions.ElementDefinition, inline any, sub *subExprOutcome, scope *env.Env, opts *fo.Options) ([]childProjection, map[string]*fo.EvalError, error) {
	projections := make([]childProjection, 0, len(children))
	virtualErrs := make(map[string]*fo.EvalError)

	for _, ed := range children {
		// Unlike a flash rule's own direct target (initContext raises F3005
		// there), a child with no resolved name is spec §4.3's "unnamed
		// children" case: silently skipped rather than failing the parent.
		if ed.Max == "0" || len(ed.Names) == 0 {
			continue
		}

		names := candidateNames(ed)
		var harvest []any
		var resolvedKey string
		if len(names) == 1 {
			resolvedKey = names[0]
			baseName := resolvedKey
			if ed.SliceName != "" {
				baseName = ed.Names[0]
			}
			harvest = append(harvest, harvestInline(ed, baseName, inline)...)
			harvest = append(harvest, harvestSubExpressions(resolvedKey, sub)...)
		} else {
			// Unnarrowed polymorphic: try every candidate name, the first
			// one with a contribution wins the resolved JSON key.
			for _, n := range names {
				h := append(harvestInline(ed, n, inline), harvestSubExpressions(n, sub)...)
				if len(h) > 0 {
					resolvedKey = n
					harvest = h
					break
				}
			}
		}

		value, has := collapseCardinality(ed, harvest)

		if !has && ed.MinCount > 0 && !ed.IsUnnarrowedPolymorphic() {
			select {
			case <-ctxParent.Done():
				return nil, nil, fo.NewErr(fo.ErrCanceled).Wrap(ctxParent.Err()).
					Message("evaluation canceled during virtual-rule synthesis: %v", ctxParent.Err()).Build()
			default:
			}

			synthetic := ast.VirtualRule(node.Instanceof, ed.FlashPathRefKey)
			child := scope.Child()
			v, err := evaluateFlash(ctxParent, he, synthetic, nil, child, opts)
			child.Release()
			if err != nil {
				if ferr, ok := err.(*fo.EvalError); ok {
					virtualErrs[ed.FlashPathRefKey] = ferr
					if opts != nil && opts.Logger != nil {
						opts.Logger.Debug("virtual rule failed", "element", ed.Path, "code", ferr.Code)
					}
				}
			} else if v != nil {
				value = v
				has = true
				if resolvedKey == "" {
					resolvedKey = names[0]
				}
				if frr, ok := v.(*host.FlashRuleResult); ok {
					value = frr.Value
					if frr.Key != "" {
						resolvedKey = frr.Key
					}
				}
			}
		}

		if resolvedKey == "" {
			if len(names) > 0 {
				resolvedKey = names[0]
			} else {
				continue
			}
		}

		projections = append(projections, childProjection{ed: ed, key: resolvedKey, value: value, hasValue: has})
	}

	return projections, virtualErrs, nil
}
