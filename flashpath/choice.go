// Package flashpath provides the FHIR choice-type ("[x]") vocabulary
// shared by the definitions loader and the flash child projector: the
// suffix table that turns a base element name plus an allowed type into
// the JSON key it's written under (e.g. "value" + "string" -> "valueString"),
// and the reverse lookup a loader uses to expand an unnarrowed polymorphic
// element into its full Names list.
package flashpath

import "strings"

// PrimitiveTypeSuffixes maps a FHIR primitive type code to its PascalCase
// choice-type suffix.
var PrimitiveTypeSuffixes = map[string]string{
	"string":       "String",
	"boolean":      "Boolean",
	"integer":      "Integer",
	"integer64":    "Integer64",
	"decimal":      "Decimal",
	"dateTime":     "DateTime",
	"date":         "Date",
	"time":         "Time",
	"instant":      "Instant",
	"uri":          "Uri",
	"url":          "Url",
	"canonical":    "Canonical",
	"code":         "Code",
	"id":           "Id",
	"markdown":     "Markdown",
	"base64Binary": "Base64Binary",
	"oid":          "Oid",
	"uuid":         "Uuid",
	"positiveInt":  "PositiveInt",
	"unsignedInt":  "UnsignedInt",
}

// ComplexTypeSuffixes lists FHIR complex types that may appear in a choice
// element's type list; the suffix is the type name itself.
var ComplexTypeSuffixes = []string{
	"Address", "Age", "Annotation", "Attachment", "CodeableConcept",
	"CodeableReference", "Coding", "ContactDetail", "ContactPoint",
	"Contributor", "Count", "DataRequirement", "Distance", "Dosage",
	"Duration", "Expression", "HumanName", "Identifier", "Meta", "Money",
	"MoneyQuantity", "Narrative", "ParameterDefinition", "Period",
	"Quantity", "Range", "Ratio", "RatioRange", "Reference",
	"RelatedArtifact", "SampledData", "Signature", "SimpleQuantity",
	"Timing", "TriggerDefinition", "UsageContext",
}

// SuffixForType returns the choice-type suffix for a FHIR type code (e.g.
// "string" -> "String", "CodeableConcept" -> "CodeableConcept"), used by
// the loader to expand "value[x]" into its full candidate-name set.
func SuffixForType(typeCode string) string {
	if suffix, ok := PrimitiveTypeSuffixes[typeCode]; ok {
		return suffix
	}
	for _, c := range ComplexTypeSuffixes {
		if c == typeCode {
			return c
		}
	}
	// Resource types and anything else use the type code verbatim
	// (PascalCase resource names already match their suffix form).
	return typeCode
}

// IsChoiceBasePath reports whether a base.path ends in the FHIR "[x]"
// polymorphic marker (spec §4.3's origin detection).
func IsChoiceBasePath(basePath string) bool {
	return strings.HasSuffix(basePath, "[x]")
}

// ChoiceBaseName strips the trailing "[x]" from a choice element's
// base.path, yielding the name prefix every candidate name is built from.
func ChoiceBaseName(basePath string) string {
	return strings.TrimSuffix(basePath, "[x]")
}

// BuildPolymorphicName joins a base name and a FHIR type code into the JSON
// key an unnarrowed polymorphic element's value would be written under.
func BuildPolymorphicName(baseName, typeCode string) string {
	return baseName + SuffixForType(typeCode)
}
