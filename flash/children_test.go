package flash

import (
	"reflect"
	"testing"

	"github.com/mechanik-daniel/flashonata/definitions"
)

func TestCandidateNamesPlainElement(t *testing.T) {
	ed := &definitions.ElementDefinition{Names: []string{"active"}}
	got := candidateNames(ed)
	if !reflect.DeepEqual(got, []string{"active"}) {
		t.Errorf("candidateNames = %v, want [active]", got)
	}
}

func TestCandidateNamesSlicedElement(t *testing.T) {
	ed := &definitions.ElementDefinition{Names: []string{"identifier"}, SliceName: "mrn"}
	got := candidateNames(ed)
	if !reflect.DeepEqual(got, []string{"identifier:mrn"}) {
		t.Errorf("candidateNames = %v, want [identifier:mrn]", got)
	}
}

func TestCandidateNamesNarrowedPolymorphic(t *testing.T) {
	ed := &definitions.ElementDefinition{
		Names:    []string{"valueString"},
		BasePath: "Observation.value[x]",
	}
	got := candidateNames(ed)
	if !reflect.DeepEqual(got, []string{"valueString"}) {
		t.Errorf("candidateNames = %v, want [valueString]", got)
	}
}

func TestCandidateNamesUnnarrowedPolymorphic(t *testing.T) {
	ed := &definitions.ElementDefinition{
		Names: []string{"valueString", "valueInteger"},
		Types: []definitions.TypeRef{{Code: "string"}, {Code: "integer"}},
	}
	got := candidateNames(ed)
	if !reflect.DeepEqual(got, []string{"valueString", "valueInteger"}) {
		t.Errorf("candidateNames = %v, want both names", got)
	}
}

func TestCandidateNamesNoNames(t *testing.T) {
	ed := &definitions.ElementDefinition{}
	if got := candidateNames(ed); got != nil {
		t.Errorf("candidateNames = %v, want nil", got)
	}
}

func TestWrapPrimitiveOmitsNilValueAndKeepsSiblings(t *testing.T) {
	got := wrapPrimitive(nil, map[string]any{"id": "x1"})
	want := map[string]any{"id": "x1"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("wrapPrimitive = %v, want %v", got, want)
	}
}

func TestWrapPrimitiveNilWhenBothEmpty(t *testing.T) {
	if got := wrapPrimitive(nil, nil); got != nil {
		t.Errorf("wrapPrimitive(nil, nil) = %v, want nil", got)
	}
}

func TestWrapPrimitiveKeepsValueAndSiblings(t *testing.T) {
	got := wrapPrimitive("male", map[string]any{"id": "x1"})
	want := map[string]any{"value": "male", "id": "x1"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("wrapPrimitive = %v, want %v", got, want)
	}
}

func TestHarvestInlinePrimitiveArrayAlignsSiblings(t *testing.T) {
	ed := &definitions.ElementDefinition{Names: []string{"given"}, Kind: definitions.KindPrimitiveType, IsArray: true}
	inline := map[string]any{
		"given":  []any{"John", "Jane"},
		"_given": []any{nil, map[string]any{"id": "x2"}},
	}
	got := harvestInline(ed, "given", inline)
	want := []any{
		map[string]any{"value": "John"},
		map[string]any{"value": "Jane", "id": "x2"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("harvestInline = %#v, want %#v", got, want)
	}
}

func TestHarvestInlineSkipsSlicedElements(t *testing.T) {
	ed := &definitions.ElementDefinition{Names: []string{"identifier"}, SliceName: "mrn"}
	inline := map[string]any{"identifier": "should not be read this way"}
	if got := harvestInline(ed, "identifier", inline); got != nil {
		t.Errorf("harvestInline for a sliced element should return nil, got %v", got)
	}
}

func TestCollapseCardinalityArrayPassesThrough(t *testing.T) {
	ed := &definitions.ElementDefinition{IsArray: true}
	harvest := []any{"a", "b"}
	got, has := collapseCardinality(ed, harvest)
	if !has {
		t.Fatal("expected has = true")
	}
	if !reflect.DeepEqual(got, harvest) {
		t.Errorf("collapseCardinality = %v, want %v", got, harvest)
	}
}

func TestCollapseCardinalitySystemKeepsLastWriterWins(t *testing.T) {
	ed := &definitions.ElementDefinition{Kind: definitions.KindSystem}
	got, has := collapseCardinality(ed, []any{"first", "second"})
	if !has || got != "second" {
		t.Errorf("collapseCardinality = %v, %v, want second, true", got, has)
	}
}

func TestCollapseCardinalityMergesObjectContributions(t *testing.T) {
	ed := &definitions.ElementDefinition{Kind: definitions.KindPrimitiveType}
	got, has := collapseCardinality(ed, []any{
		map[string]any{"value": "male"},
		map[string]any{"id": "x1"},
	})
	want := map[string]any{"value": "male", "id": "x1"}
	if !has || !reflect.DeepEqual(got, want) {
		t.Errorf("collapseCardinality = %v, %v, want %v, true", got, has, want)
	}
}

func TestCollapseCardinalityEmptyHarvestIsAbsent(t *testing.T) {
	ed := &definitions.ElementDefinition{}
	_, has := collapseCardinality(ed, nil)
	if has {
		t.Error("empty harvest should report has = false")
	}
}
