package flash

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mechanik-daniel/flashonata/definitions"
	"github.com/mechanik-daniel/flashonata/flashpath"
)

// resolvePolymorphicType picks which of an unnarrowed polymorphic element's
// declared types matches a supplied value's Go type (spec §8 S3: "a number
// produces valueInteger"), so a flash rule written directly against a
// "[x]" element resolves to the type the value actually is, not whichever
// type the ElementDefinition happens to list first.
func resolvePolymorphicType(types []definitions.TypeRef, value any) definitions.TypeRef {
	if len(types) == 0 {
		return definitions.TypeRef{}
	}
	switch v := value.(type) {
	case []any:
		if len(v) > 0 {
			return resolvePolymorphicType(types, v[0])
		}
	case bool:
		if t, ok := typeByCode(types, "boolean"); ok {
			return t
		}
	case string:
		if t, ok := typeByCode(types, "string"); ok {
			return t
		}
	case float64, float32, int, int64, decimal.Decimal:
		if isWholeNumber(v) {
			if t, ok := typeByCode(types, "integer"); ok {
				return t
			}
		}
		if t, ok := typeByCode(types, "decimal"); ok {
			return t
		}
		if t, ok := typeByCode(types, "integer"); ok {
			return t
		}
	case map[string]any:
		for _, t := range types {
			if t.Kind == definitions.KindComplexType || t.Kind == definitions.KindResource {
				return t
			}
		}
	}
	return types[0]
}

func typeByCode(types []definitions.TypeRef, code string) (definitions.TypeRef, bool) {
	for _, t := range types {
		if t.Code == code {
			return t, true
		}
	}
	return definitions.TypeRef{}, false
}

func isWholeNumber(v any) bool {
	switch n := v.(type) {
	case float64:
		return n == math.Trunc(n)
	case float32:
		return n == float32(math.Trunc(float64(n)))
	case int, int64:
		return true
	case decimal.Decimal:
		return n.Equal(n.Truncate(0))
	}
	return false
}

// baseElementName strips an element's trailing "[x]" choice marker and any
// parent-path prefix, leaving the bare name a type suffix attaches to
// ("Observation.value[x]" -> "value").
func baseElementName(basePath string) string {
	name := flashpath.ChoiceBaseName(basePath)
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[i+1:]
	}
	return name
}

// polymorphicGroupingKey resolves the FRR key for an unnarrowed polymorphic
// ED by dispatching on the supplied value's type, reporting ok=false for
// any ED this doesn't apply to (narrowed elements, non-choice elements).
func polymorphicGroupingKey(ed *definitions.ElementDefinition, value any) (string, bool) {
	if ed == nil || !ed.IsUnnarrowedPolymorphic() || !flashpath.IsChoiceBasePath(ed.BasePath) {
		return "", false
	}
	chosen := resolvePolymorphicType(ed.Types, value)
	if chosen.Code == "" {
		return "", false
	}
	return flashpath.BuildPolymorphicName(baseElementName(ed.BasePath), chosen.Code), true
}

// resolvePolymorphicBlock narrows a flash rule's blockContext from an
// unnarrowed polymorphic ED's representative type (whichever type the
// dictionary happened to bake in at load time, see loader.elementKind) to
// the single type its supplied value actually is: that type's own Kind,
// FhirTypeCode, and children, instead of the first declared type's (spec
// §8 S3). The dictionary's ElementDefinition is never mutated; a shallow
// copy carries the resolved fields for this evaluation only.
func resolvePolymorphicBlock(dict *definitions.Dictionary, ctxBlock *blockContext, inline any) *blockContext {
	chosen := resolvePolymorphicType(ctxBlock.ed.Types, inline)
	if chosen.Code == "" {
		return ctxBlock
	}

	resolvedEd := *ctxBlock.ed
	resolvedEd.Kind = chosen.Kind
	resolvedEd.FhirTypeCode = chosen.Code
	resolvedEd.Names = []string{flashpath.BuildPolymorphicName(baseElementName(ctxBlock.ed.BasePath), chosen.Code)}

	next := &blockContext{kind: chosen.Kind, ed: &resolvedEd}
	if chosen.Kind != definitions.KindSystem {
		next.children = dict.ChildrenOfType(chosen.Code)
	}
	return next
}
