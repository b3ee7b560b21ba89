package loader

import (
	"sort"
	"strconv"
	"strings"

	"github.com/mechanik-daniel/flashonata/definitions"
	"github.com/mechanik-daniel/flashonata/flashpath"
	"github.com/mechanik-daniel/flashonata/service"
)

// primitiveTypeCodes are the FHIR primitive type names (StructureDefinition
// kind "primitive-type"), used to classify an ElementDefinition's own type
// when no StructureDefinition for that type code was loaded.
var primitiveTypeCodes = map[string]bool{
	"boolean": true, "integer": true, "string": true, "decimal": true,
	"uri": true, "url": true, "canonical": true, "base64Binary": true,
	"instant": true, "date": true, "dateTime": true, "time": true,
	"code": true, "oid": true, "id": true, "markdown": true,
	"unsignedInt": true, "positiveInt": true, "uuid": true, "xhtml": true,
	"integer64": true,
}

const systemTypePrefix = "http://hl7.org/fhirpath/System."

// BuildDictionary resolves a set of converted StructureDefinitions into the
// definitions.Dictionary the flash evaluator consults (spec §1's "FHIR
// definition loader" collaborator, spec §3/§6 shape). It indexes every
// snapshot element by its dotted path, resolves contentReference aliases,
// and classifies each element's structural Kind from the type system built
// up across the whole set (so a profile's elements can resolve kinds
// against base resource/complex-type definitions loaded earlier).
func BuildDictionary(sds []*service.StructureDefinition) (*definitions.Dictionary, error) {
	dict := &definitions.Dictionary{
		TypeMeta:           make(map[string]definitions.TypeMeta),
		TypeChildren:       make(map[string][]*definitions.ElementDefinition),
		ElementDefinitions: make(map[string]*definitions.ElementDefinition),
		ElementChildren:    make(map[string][]*definitions.ElementDefinition),
	}

	kindByType := make(map[string]definitions.Kind)
	for _, sd := range sds {
		if sd == nil || sd.Type == "" {
			continue
		}
		kindByType[sd.Type] = toKind(sd.Kind)
	}

	for _, sd := range sds {
		if sd == nil {
			continue
		}
		if err := indexStructureDefinition(dict, sd, kindByType); err != nil {
			return nil, err
		}
	}

	resolveContentReferences(dict)
	return dict, nil
}

func toKind(k string) definitions.Kind {
	switch k {
	case "resource":
		return definitions.KindResource
	case "primitive-type":
		return definitions.KindPrimitiveType
	case "complex-type":
		return definitions.KindComplexType
	default:
		return definitions.KindComplexType
	}
}

func indexStructureDefinition(dict *definitions.Dictionary, sd *service.StructureDefinition, kindByType map[string]definitions.Kind) error {
	if sd.Type == "" {
		return nil
	}

	elements := sd.Snapshot
	if len(elements) == 0 {
		elements = sd.Differential
	}
	if len(elements) == 0 {
		return nil
	}

	derivation := definitions.DerivationSpecialization
	if sd.BaseDefinition != "" && !isBaseTypeDefinition(sd.URL, sd.Type) {
		derivation = definitions.DerivationConstraint
	}
	dict.TypeMeta[sd.Type] = definitions.TypeMeta{
		Kind:       toKind(sd.Kind),
		Type:       sd.Type,
		URL:        sd.URL,
		Derivation: derivation,
	}

	// byParentPath groups elements by their immediate parent path so each
	// level can be emitted in snapshot declaration order.
	byParentPath := make(map[string][]*definitions.ElementDefinition)
	var rootChildren []*definitions.ElementDefinition

	for i := range elements {
		src := &elements[i]
		if src.Path == sd.Type {
			continue // the root element carries no child of its own
		}

		ed := convertElement(sd, src, kindByType)
		dict.ElementDefinitions[ed.FlashPathRefKey] = ed

		parent := parentPath(src.Path)
		byParentPath[parent] = append(byParentPath[parent], ed)
		if parent == sd.Type {
			rootChildren = append(rootChildren, ed)
		}
	}

	if existing, ok := dict.TypeChildren[sd.Type]; !ok || len(existing) == 0 {
		dict.TypeChildren[sd.Type] = rootChildren
	}

	for i := range elements {
		src := &elements[i]
		if src.Path == sd.Type {
			continue
		}
		ed, ok := dict.ElementDefinitions[refKey(src)]
		if !ok {
			continue
		}
		if children, ok := byParentPath[src.Path]; ok {
			dict.ElementChildren[ed.FlashPathRefKey] = children
		}
	}

	return nil
}

func convertElement(sd *service.StructureDefinition, src *service.ElementDefinition, kindByType map[string]definitions.Kind) *definitions.ElementDefinition {
	types := make([]definitions.TypeRef, 0, len(src.Types))
	names := make([]string, 0, len(src.Types))
	polymorphic := isChoiceElement(src.Path)

	leafName := lastPathSegment(src.Path)
	baseLeaf := strings.TrimSuffix(leafName, "[x]")

	for _, t := range src.Types {
		kind := classifyTypeCode(t.Code, kindByType)
		types = append(types, definitions.TypeRef{Code: t.Code, Kind: kind})
		if polymorphic {
			names = append(names, flashpath.BuildPolymorphicName(baseLeaf, t.Code))
		}
	}
	if !polymorphic {
		names = append(names, leafName)
	}

	ed := &definitions.ElementDefinition{
		Path:                 src.Path,
		Min:                  strconv.Itoa(src.Min),
		Max:                  src.Max,
		MinCount:             src.Min,
		IsArray:              src.Max != "1" && src.Max != "0",
		SliceName:            src.SliceName,
		BasePath:             src.Path,
		Names:                names,
		Types:                types,
		FixedValue:           src.Fixed,
		FhirTypeCode:         primaryTypeCode(src.Types),
		FromDefinition:       sd.URL,
		FlashPathRefKey:      refKey(src),
		Kind:                 elementKind(types),
		ContentReferencePath: strings.TrimPrefix(src.ContentReference, "#"),
	}
	return ed
}

// elementKind picks the element's own structural Kind. An unnarrowed
// polymorphic element (len(types) > 1) gets its first declared type's Kind
// here as a placeholder only; the evaluator (flash.resolvePolymorphicBlock)
// overrides it with the type actually matching the supplied value before
// any Kind-dependent processing runs, since no value is available yet at
// dictionary-build time to resolve it properly.
func elementKind(types []definitions.TypeRef) definitions.Kind {
	if len(types) == 0 {
		return definitions.KindComplexType
	}
	return types[0].Kind
}

// classifyTypeCode resolves a type[].code to its structural Kind. A type
// code virtually never names a resource directly even when capitalized —
// "Reference" is itself a complex type, with the target resource carried
// in targetProfile — so an uppercase code with no matching StructureDefinition
// in kindByType defaults to complex-type rather than guessing resource.
func classifyTypeCode(code string, kindByType map[string]definitions.Kind) definitions.Kind {
	if strings.HasPrefix(code, systemTypePrefix) {
		return definitions.KindSystem
	}
	if k, ok := kindByType[code]; ok {
		return k
	}
	if primitiveTypeCodes[code] {
		return definitions.KindPrimitiveType
	}
	return definitions.KindComplexType
}

// primaryTypeCode picks the element's first declared type code. For an
// unnarrowed polymorphic element this is only a placeholder, like
// elementKind's Kind choice — flash.resolvePolymorphicBlock resolves the
// real FhirTypeCode from the supplied value at evaluation time.
func primaryTypeCode(types []service.TypeRef) string {
	if len(types) == 0 {
		return ""
	}
	return types[0].Code
}

func isChoiceElement(path string) bool {
	return strings.HasSuffix(path, "[x]")
}

func parentPath(path string) string {
	i := strings.LastIndex(path, ".")
	if i < 0 {
		return path
	}
	return path[:i]
}

func lastPathSegment(path string) string {
	i := strings.LastIndex(path, ".")
	if i < 0 {
		return path
	}
	return path[i+1:]
}

// refKey is the FlashPathRefKey a flash-rule AST node uses to address this
// element: its dotted path, with a ":sliceName" suffix for a named slice,
// matching the "path:slice" addressing convention FSH/flash authors already
// write by hand.
func refKey(src *service.ElementDefinition) string {
	if src.SliceName != "" {
		return src.Path + ":" + src.SliceName
	}
	return src.Path
}

// resolveContentReferences copies the referenced element's children onto
// every element that points at it via contentReference (e.g.
// Questionnaire.item.item sharing Questionnaire.item's own children), so
// the evaluator never has to chase the alias itself (spec §3's
// ContentReferencePath doc comment).
func resolveContentReferences(dict *definitions.Dictionary) {
	var withRefs []*definitions.ElementDefinition
	for _, ed := range dict.ElementDefinitions {
		if ed.ContentReferencePath != "" {
			withRefs = append(withRefs, ed)
		}
	}
	sort.Slice(withRefs, func(i, j int) bool { return withRefs[i].Path < withRefs[j].Path })

	for _, ed := range withRefs {
		if children, ok := dict.ElementChildren[ed.ContentReferencePath]; ok {
			dict.ElementChildren[ed.FlashPathRefKey] = children
		}
	}
}
