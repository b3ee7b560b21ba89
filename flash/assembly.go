package flash

import (
	fo "github.com/mechanik-daniel/flashonata"
	"github.com/mechanik-daniel/flashonata/ast"
	"github.com/mechanik-daniel/flashonata/definitions"
)

// validateResourceInput implements spec §4.5's resource-kind base check:
// the inline value must be a non-null object with a non-empty string
// resourceType.
func validateResourceInput(node *ast.Node, inline any) (map[string]any, *fo.EvalError) {
	obj, ok := inline.(map[string]any)
	if !ok || obj == nil {
		return nil, fo.NewErr(fo.ErrResourceNotObject).
			Position(node.Position, node.Start, node.Line).
			At("", "", node.Instanceof).
			Value(inline, typeName(inline)).
			Message("resource-kind input must be a non-null object").
			Build()
	}
	rt, ok := obj["resourceType"].(string)
	if !ok || rt == "" {
		return nil, fo.NewErr(fo.ErrResourceMissingType).
			Position(node.Position, node.Start, node.Line).
			At("", "", node.Instanceof).
			Message("resource-kind input is missing a non-empty resourceType").
			Build()
	}
	return obj, nil
}

func typeName(v any) string {
	if v == nil {
		return "nil"
	}
	switch v.(type) {
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case bool:
		return "bool"
	case float64:
		return "number"
	default:
		return "unknown"
	}
}

// buildResult implements spec §4.5's "Result skeleton" and "Assignment"
// for a single non-system-kind node: seed from an inline resource base (if
// any), then assign every projected child in ED order.
func buildResult(ctxBlock *blockContext, node *ast.Node, inline any, projections []childProjection) (*Result, *fo.EvalError) {
	result := NewResult()

	if ctxBlock.kind == definitions.KindResource {
		if inline != nil {
			obj, err := validateResourceInput(node, inline)
			if err != nil {
				return nil, err
			}
			for k, v := range obj {
				result.Set(k, v)
			}
		}
		if ctxBlock.resourceType != "" {
			result.Set("resourceType", ctxBlock.resourceType)
		}
	}

	for _, proj := range projections {
		if !proj.hasValue {
			continue
		}
		assignProjection(result, proj)
	}

	return result, nil
}

// assignProjection implements spec §4.5's per-kind assignment rule.
func assignProjection(result *Result, proj childProjection) {
	ed := proj.ed
	if ed.Kind == definitions.KindPrimitiveType {
		assignPrimitive(result, proj)
		return
	}

	flattened := flattenPrimitives(proj.value)
	if ed.IsArray {
		arr, ok := flattened.([]any)
		if !ok {
			if flattened == nil {
				return
			}
			arr = []any{flattened}
		}
		result.Set(proj.key, arr)
		return
	}
	result.Set(proj.key, flattened)
}

// assignPrimitive implements spec §4.5's primitive split into index-aligned
// name[]/_name[] arrays (or their max="1" collapse), omitting an array that
// consists entirely of nulls.
func assignPrimitive(result *Result, proj childProjection) {
	ed := proj.ed

	if ed.IsArray {
		arr, _ := proj.value.([]any)
		names := make([]any, len(arr))
		exts := make([]any, len(arr))
		anyName, anyExt := false, false
		for i, item := range arr {
			m, _ := asMap(item)
			if v, ok := m["value"]; ok && v != nil {
				names[i] = v
				anyName = true
			}
			ext := siblingsOf(m)
			if len(ext) > 0 {
				exts[i] = ext
				anyExt = true
			}
		}
		if anyName {
			result.Set(proj.key, names)
		}
		if anyExt {
			result.Set("_"+proj.key, exts)
		}
		return
	}

	m, _ := asMap(proj.value)
	if v, ok := m["value"]; ok && v != nil {
		result.Set(proj.key, v)
	}
	if ext := siblingsOf(m); len(ext) > 0 {
		result.Set("_"+proj.key, ext)
	}
}

func siblingsOf(m map[string]any) map[string]any {
	if len(m) == 0 {
		return nil
	}
	ext := make(map[string]any, len(m))
	for k, v := range m {
		if k != "value" {
			ext[k] = v
		}
	}
	if len(ext) == 0 {
		return nil
	}
	return ext
}

// flattenPrimitives implements spec §4.5's "primitive-flattening": any
// nested object shaped { value: x, ...extras } collapses to x at that key
// plus an "_key" sibling carrying extras, applied recursively. This is the
// heuristic fallback spec §4.5 sanctions for positions with no ED of their
// own: nested FRR values arriving from a recursive evaluation are already
// in final shape, so this mainly catches deeply-nested inline literals that
// reuse the module's own { value, ...ext } wrapping convention.
func flattenPrimitives(v any) any {
	if arr, ok := v.([]any); ok {
		out := make([]any, len(arr))
		for i, vv := range arr {
			out[i] = flattenPrimitives(vv)
		}
		return out
	}
	if m, ok := asMap(v); ok {
		out := make(map[string]any, len(m))
		for k, vv := range m {
			if base, ext, ok := unwrapPrimitiveShape(vv); ok {
				out[k] = base
				if ext != nil {
					out["_"+k] = ext
				}
				continue
			}
			out[k] = flattenPrimitives(vv)
		}
		return out
	}
	return v
}

// unwrapPrimitiveShape recognizes the { value: x, ...extras } heuristic
// shape and splits it into its base value and extras map.
func unwrapPrimitiveShape(v any) (base any, extras map[string]any, ok bool) {
	m, isMap := asMap(v)
	if !isMap {
		return nil, nil, false
	}
	base, hasValue := m["value"]
	if !hasValue {
		return nil, nil, false
	}
	extras = siblingsOf(m)
	return base, extras, true
}
