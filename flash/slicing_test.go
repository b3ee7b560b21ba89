package flash

import "testing"

func TestFlattenSlicesGroupsInAssignmentOrder(t *testing.T) {
	r := NewResult()
	r.Set("identifier:mrn", map[string]any{"value": "mrn-1"})
	r.Set("identifier:visit", map[string]any{"value": "visit-1"})

	flattenSlices(r)

	if r.Has("identifier:mrn") || r.Has("identifier:visit") {
		t.Fatal("sliced keys should be removed after flattening")
	}

	v, ok := r.Get("identifier")
	if !ok {
		t.Fatal("expected identifier to be present after flattening")
	}
	arr, ok := v.([]any)
	if !ok || len(arr) != 2 {
		t.Fatalf("identifier = %v, want a 2-element array", v)
	}
	first := arr[0].(map[string]any)
	if first["value"] != "mrn-1" {
		t.Errorf("first slice = %v, want mrn-1 first (assignment order)", first)
	}
}

func TestFlattenSlicesAppendsToExistingArray(t *testing.T) {
	r := NewResult()
	r.Set("identifier", []any{map[string]any{"value": "base"}})
	r.Set("identifier:mrn", map[string]any{"value": "mrn-1"})

	flattenSlices(r)

	v, _ := r.Get("identifier")
	arr := v.([]any)
	if len(arr) != 2 {
		t.Fatalf("identifier = %v, want 2 entries", arr)
	}
}

func TestFlattenSlicesLeavesUnslicedKeysAlone(t *testing.T) {
	r := NewResult()
	r.Set("active", true)

	flattenSlices(r)

	v, ok := r.Get("active")
	if !ok || v != true {
		t.Fatalf("active = %v, %v, want true, true", v, ok)
	}
}
