// Package definitions describes the resolved FHIR definitions dictionary
// the flash evaluator consults: element definitions, type metadata, and the
// indexes that let the child projector walk a type's children in
// declaration order. The dictionary itself is built by an external loader
// (spec §1's "FHIR definition loader" collaborator); this package only
// describes its shape (spec §3, §6).
package definitions

// Kind is the structural category of a type or element, per spec §3's
// kind table.
type Kind string

// Kinds an ElementDefinition or TypeMeta may carry.
const (
	KindSystem        Kind = "system"
	KindPrimitiveType Kind = "primitive-type"
	KindComplexType   Kind = "complex-type"
	KindResource      Kind = "resource"
)

// Derivation is a StructureDefinition's relationship to its base type.
type Derivation string

// Derivations a TypeMeta may carry.
const (
	DerivationSpecialization Derivation = "specialization"
	DerivationConstraint     Derivation = "constraint"
)

// TypeRef names one member of an ElementDefinition's type[] list: a FHIR
// type code plus the structural kind it resolves to.
type TypeRef struct {
	Code string
	Kind Kind
}

// ElementDefinition is the evaluator's view of a FHIR ElementDefinition
// (spec §3). Cardinality is kept as the original FHIR strings (`"0"`,
// `"1"`, `"*"`) alongside parsed MinCount/IsArray for direct use.
type ElementDefinition struct {
	// Path is the element's dotted FHIRPath (e.g. "Patient.name.given"),
	// used for diagnostics and for the F3003 lookup by FlashPathRefKey.
	Path string

	// Min and Max are the raw FHIR cardinality strings.
	Min string
	Max string

	// MinCount is Min parsed to an integer (0 when Min == "").
	MinCount int

	// IsArray is true when Max != "1" (repeating element) or when the ED
	// carries an explicit isArray override for a narrowed polymorphic
	// single-type slot that the loader still wants wrapped in an array.
	IsArray bool

	// SliceName is set when this ED is one named slice of a sliced parent
	// element; empty for the unsliced base element.
	SliceName string

	// BasePath is base.path from the source StructureDefinition, used to
	// detect a polymorphic "[x]" origin (e.g. "Observation.value[x]").
	BasePath string

	// Names lists the JSON element name(s) this ED can be written under.
	// A single entry for ordinary and narrowed-polymorphic elements;
	// multiple entries (one per allowed type suffix) for an unnarrowed
	// polymorphic element.
	Names []string

	// Types are the allowed FHIR type codes for this element, each tagged
	// with its structural kind.
	Types []TypeRef

	// FixedValue, when non-nil, is emitted verbatim regardless of any
	// inline or sub-expression input (spec §3 invariant, §4.5 short-circuit).
	FixedValue any

	// Regex is the compiled-on-demand validation pattern for primitive
	// leaves (spec §4.4), as a source pattern string.
	Regex string

	// FhirTypeCode is the resolved FHIR primitive type code used by the
	// primitive normalizer (spec §4.4); empty for non-primitive elements.
	FhirTypeCode string

	// FromDefinition is the canonical URL of the StructureDefinition this
	// ED was declared on (used for diagnostics and profile resolution).
	FromDefinition string

	// FlashPathRefKey is the identifier a flash-rule AST node uses to
	// reference this ED (spec §6).
	FlashPathRefKey string

	// Kind is the structural kind this element projects to.
	Kind Kind

	// ContentReferencePath, when non-empty, means this ED's children are
	// defined by reference to another element's subtree rather than its
	// own (FHIR's contentReference, e.g. Questionnaire.item.item). The
	// dictionary's ElementChildren index resolves this alias at load time
	// so callers never need to chase it themselves.
	ContentReferencePath string
}

// IsPolymorphic reports whether this ED represents a "[x]" choice element,
// narrowed or not (spec §4.3 candidate-names step).
func (e *ElementDefinition) IsPolymorphic() bool {
	return len(e.Types) > 1 || (e.BasePath != "" && len(e.Names) >= 1 && isChoiceBase(e.BasePath))
}

func isChoiceBase(basePath string) bool {
	if len(basePath) < 3 {
		return false
	}
	return basePath[len(basePath)-3:] == "[x]"
}

// IsUnnarrowedPolymorphic reports whether this ED still carries more than
// one allowed type (spec §4.3's "unnarrowed polymorphic" case, used to
// suppress virtual-rule synthesis since there's no single type to
// synthesize a value for).
func (e *ElementDefinition) IsUnnarrowedPolymorphic() bool {
	return len(e.Types) > 1
}

// TypeMeta is the evaluator's view of a FHIR StructureDefinition (spec §3).
type TypeMeta struct {
	Kind       Kind
	Type       string
	URL        string
	Derivation Derivation
}

// Dictionary is the resolved FHIR definitions the environment carries
// (spec §3 "Environment", §6 "resolved FHIR definitions"). Read-only after
// construction; safe for concurrent reads (spec §5).
type Dictionary struct {
	// TypeMeta maps a type id (as used in AST Instanceof) to its metadata.
	TypeMeta map[string]TypeMeta

	// TypeChildren maps a type id to its top-level ElementDefinitions, in
	// declaration order (spec §4.1 "Children come from typeChildren[instanceof]").
	TypeChildren map[string][]*ElementDefinition

	// ElementDefinitions maps a FlashPathRefKey to its ElementDefinition
	// (spec §4.1 "look up ED by flashPathRefKey").
	ElementDefinitions map[string]*ElementDefinition

	// ElementChildren maps a FlashPathRefKey to that element's own
	// children, in declaration order, with contentReference aliases
	// already resolved (spec §4.1 "Children come from elementChildren[...]").
	ElementChildren map[string][]*ElementDefinition
}

// LookupType returns the TypeMeta for a type id.
func (d *Dictionary) LookupType(instanceof string) (TypeMeta, bool) {
	tm, ok := d.TypeMeta[instanceof]
	return tm, ok
}

// LookupElement returns the ElementDefinition for a flashPathRefKey.
func (d *Dictionary) LookupElement(flashPathRefKey string) (*ElementDefinition, bool) {
	ed, ok := d.ElementDefinitions[flashPathRefKey]
	return ed, ok
}

// ChildrenOfType returns the ordered children of a flash block's root type.
func (d *Dictionary) ChildrenOfType(instanceof string) []*ElementDefinition {
	return d.TypeChildren[instanceof]
}

// ChildrenOfElement returns the ordered children of an element, following
// contentReference aliases that the loader resolved at build time.
func (d *Dictionary) ChildrenOfElement(flashPathRefKey string) []*ElementDefinition {
	return d.ElementChildren[flashPathRefKey]
}
