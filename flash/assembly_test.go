package flash

import (
	"reflect"
	"testing"

	fo "github.com/mechanik-daniel/flashonata"
	"github.com/mechanik-daniel/flashonata/ast"
	"github.com/mechanik-daniel/flashonata/definitions"
)

func TestBuildResultSeedsResourceTypeAndBase(t *testing.T) {
	ctxBlock := &blockContext{kind: definitions.KindResource, resourceType: "Patient"}
	node := &ast.Node{}
	inline := map[string]any{"id": "p1"}

	result, err := buildResult(ctxBlock, node, inline, nil)
	if err != nil {
		t.Fatalf("buildResult: %v", err)
	}
	if v, _ := result.Get("resourceType"); v != "Patient" {
		t.Errorf("resourceType = %v, want Patient", v)
	}
	if v, _ := result.Get("id"); v != "p1" {
		t.Errorf("id = %v, want p1", v)
	}
}

func TestBuildResultResourceRejectsNonObjectInput(t *testing.T) {
	ctxBlock := &blockContext{kind: definitions.KindResource, resourceType: "Patient"}
	node := &ast.Node{}

	_, err := buildResult(ctxBlock, node, "not an object", nil)
	if err == nil || err.Code != fo.ErrResourceNotObject {
		t.Fatalf("err = %v, want %s", err, fo.ErrResourceNotObject)
	}
}

func TestBuildResultResourceRejectsMissingResourceType(t *testing.T) {
	ctxBlock := &blockContext{kind: definitions.KindResource}
	node := &ast.Node{}

	_, err := buildResult(ctxBlock, node, map[string]any{"id": "p1"}, nil)
	if err == nil || err.Code != fo.ErrResourceMissingType {
		t.Fatalf("err = %v, want %s", err, fo.ErrResourceMissingType)
	}
}

func TestBuildResultAssignsComplexTypeArrayProjection(t *testing.T) {
	ctxBlock := &blockContext{kind: definitions.KindComplexType}
	node := &ast.Node{}
	nameED := &definitions.ElementDefinition{Names: []string{"name"}, Kind: definitions.KindComplexType, IsArray: true}
	proj := childProjection{
		ed:       nameED,
		key:      "name",
		hasValue: true,
		value:    []any{map[string]any{"value": "Doe"}},
	}

	result, err := buildResult(ctxBlock, node, nil, []childProjection{proj})
	if err != nil {
		t.Fatalf("buildResult: %v", err)
	}
	v, _ := result.Get("name")
	arr, ok := v.([]any)
	if !ok || len(arr) != 1 {
		t.Fatalf("name = %v, want a 1-element array", v)
	}
}

func TestAssignPrimitiveSplitsValueAndExtension(t *testing.T) {
	result := NewResult()
	ed := &definitions.ElementDefinition{Names: []string{"gender"}, Kind: definitions.KindPrimitiveType}
	proj := childProjection{ed: ed, key: "gender", hasValue: true, value: map[string]any{"value": "male", "id": "x1"}}

	assignPrimitive(result, proj)

	if v, _ := result.Get("gender"); v != "male" {
		t.Errorf("gender = %v, want male", v)
	}
	ext, ok := result.Get("_gender")
	if !ok {
		t.Fatal("_gender should be present")
	}
	if ext.(map[string]any)["id"] != "x1" {
		t.Errorf("_gender = %v", ext)
	}
}

func TestAssignPrimitiveOmitsExtensionWhenAbsent(t *testing.T) {
	result := NewResult()
	ed := &definitions.ElementDefinition{Names: []string{"gender"}, Kind: definitions.KindPrimitiveType}
	proj := childProjection{ed: ed, key: "gender", hasValue: true, value: map[string]any{"value": "male"}}

	assignPrimitive(result, proj)

	if result.Has("_gender") {
		t.Error("_gender should be absent when there are no sibling extensions")
	}
}

func TestAssignPrimitiveArrayOmitsNameWhenAllNull(t *testing.T) {
	result := NewResult()
	ed := &definitions.ElementDefinition{Names: []string{"given"}, Kind: definitions.KindPrimitiveType, IsArray: true}
	proj := childProjection{
		ed: ed, key: "given", hasValue: true,
		value: []any{map[string]any{"id": "x1"}, map[string]any{"id": "x2"}},
	}

	assignPrimitive(result, proj)

	if result.Has("given") {
		t.Error("given should be absent: every element had a nil value")
	}
	ext, ok := result.Get("_given")
	if !ok {
		t.Fatal("_given should be present")
	}
	arr := ext.([]any)
	if len(arr) != 2 {
		t.Fatalf("_given = %v, want 2 entries", arr)
	}
}

func TestFlattenPrimitivesUnwrapsNestedShape(t *testing.T) {
	in := map[string]any{
		"family": map[string]any{"value": "Doe"},
		"given":  []any{map[string]any{"value": "John"}},
	}
	got := flattenPrimitives(in).(map[string]any)

	if got["family"] != "Doe" {
		t.Errorf("family = %v, want Doe", got["family"])
	}
	arr, ok := got["given"].([]any)
	if !ok || arr[0] != "John" {
		t.Errorf("given = %v, want [John]", got["given"])
	}
}

func TestFlattenPrimitivesKeepsExtensionsAsUnderscoreSibling(t *testing.T) {
	in := map[string]any{
		"family": map[string]any{"value": "Doe", "id": "x1"},
	}
	got := flattenPrimitives(in).(map[string]any)

	if got["family"] != "Doe" {
		t.Errorf("family = %v, want Doe", got["family"])
	}
	ext, ok := got["_family"].(map[string]any)
	if !ok || ext["id"] != "x1" {
		t.Errorf("_family = %v", got["_family"])
	}
}

func TestUnwrapPrimitiveShapeRecognizesShape(t *testing.T) {
	base, extras, ok := unwrapPrimitiveShape(map[string]any{"value": "x", "id": "y"})
	if !ok || base != "x" || !reflect.DeepEqual(extras, map[string]any{"id": "y"}) {
		t.Errorf("unwrapPrimitiveShape = %v, %v, %v", base, extras, ok)
	}
}

func TestUnwrapPrimitiveShapeRejectsPlainObject(t *testing.T) {
	_, _, ok := unwrapPrimitiveShape(map[string]any{"family": "Doe"})
	if ok {
		t.Error("a plain object with no value key should not be recognized as the primitive shape")
	}
}
