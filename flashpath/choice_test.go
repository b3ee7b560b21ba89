package flashpath

import "testing"

func TestBuildPolymorphicName(t *testing.T) {
	cases := []struct {
		base, typeCode, want string
	}{
		{"value", "string", "valueString"},
		{"value", "CodeableConcept", "valueCodeableConcept"},
		{"value", "dateTime", "valueDateTime"},
		{"onset", "Age", "onsetAge"},
	}
	for _, c := range cases {
		if got := BuildPolymorphicName(c.base, c.typeCode); got != c.want {
			t.Errorf("BuildPolymorphicName(%q, %q) = %q, want %q", c.base, c.typeCode, got, c.want)
		}
	}
}

func TestIsChoiceBasePath(t *testing.T) {
	if !IsChoiceBasePath("Observation.value[x]") {
		t.Error("expected Observation.value[x] to be a choice base path")
	}
	if IsChoiceBasePath("Observation.status") {
		t.Error("did not expect Observation.status to be a choice base path")
	}
}

func TestChoiceBaseName(t *testing.T) {
	if got := ChoiceBaseName("Observation.value[x]"); got != "Observation.value" {
		t.Errorf("ChoiceBaseName = %q, want %q", got, "Observation.value")
	}
}
