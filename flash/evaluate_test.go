package flash

import (
	"context"
	"testing"

	fo "github.com/mechanik-daniel/flashonata"
	"github.com/mechanik-daniel/flashonata/ast"
	"github.com/mechanik-daniel/flashonata/definitions"
	"github.com/mechanik-daniel/flashonata/host"
	"github.com/mechanik-daniel/flashonata/hosttest"
)

// patientFixture builds a small resolved dictionary for Patient/HumanName:
// Patient.active (mandatory boolean), Patient.gender (optional code),
// Patient.name (optional repeating HumanName), HumanName.family/given.
func patientFixture() *definitions.Dictionary {
	activeED := &definitions.ElementDefinition{
		Path: "Patient.active", FlashPathRefKey: "Patient.active",
		Names: []string{"active"}, Kind: definitions.KindPrimitiveType,
		FhirTypeCode: "boolean", Max: "1", MinCount: 1,
	}
	genderED := &definitions.ElementDefinition{
		Path: "Patient.gender", FlashPathRefKey: "Patient.gender",
		Names: []string{"gender"}, Kind: definitions.KindPrimitiveType,
		FhirTypeCode: "code", Max: "1",
	}
	nameED := &definitions.ElementDefinition{
		Path: "Patient.name", FlashPathRefKey: "Patient.name",
		Names: []string{"name"}, Kind: definitions.KindComplexType,
		Max: "*", IsArray: true,
	}
	familyED := &definitions.ElementDefinition{
		Path: "HumanName.family", FlashPathRefKey: "HumanName.family",
		Names: []string{"family"}, Kind: definitions.KindPrimitiveType,
		FhirTypeCode: "string", Max: "1",
	}
	givenED := &definitions.ElementDefinition{
		Path: "HumanName.given", FlashPathRefKey: "HumanName.given",
		Names: []string{"given"}, Kind: definitions.KindPrimitiveType,
		FhirTypeCode: "string", Max: "*", IsArray: true,
	}

	return &definitions.Dictionary{
		TypeMeta: map[string]definitions.TypeMeta{
			"Patient":   {Kind: definitions.KindResource, Type: "Patient", Derivation: definitions.DerivationSpecialization},
			"HumanName": {Kind: definitions.KindComplexType, Type: "HumanName"},
		},
		TypeChildren: map[string][]*definitions.ElementDefinition{
			"Patient": {activeED, genderED, nameED},
		},
		ElementDefinitions: map[string]*definitions.ElementDefinition{
			"Patient.active":  activeED,
			"Patient.gender":  genderED,
			"Patient.name":    nameED,
			"HumanName.family": familyED,
			"HumanName.given":  givenED,
		},
		ElementChildren: map[string][]*definitions.ElementDefinition{
			"Patient.name": {familyED, givenED},
		},
	}
}

func TestEvaluatePatientEndToEnd(t *testing.T) {
	stub := hosttest.New()

	activeVal := hosttest.InlineNode("active")
	genderVal := hosttest.InlineNode("gender")
	nameVal := hosttest.InlineNode("name")
	stub.OnNode(activeVal, hosttest.Value(true))
	stub.OnNode(genderVal, hosttest.Value("male"))
	stub.OnNode(nameVal, hosttest.Value(map[string]any{
		"family": "Doe",
		"given":  []any{"John", "Jane"},
	}))

	root := &ast.Node{
		IsFlashBlock: true, Instanceof: "Patient",
		Expressions: []*ast.Node{
			{IsFlashRule: true, FlashPathRefKey: "Patient.active", Expressions: []*ast.Node{activeVal}},
			{IsFlashRule: true, FlashPathRefKey: "Patient.gender", Expressions: []*ast.Node{genderVal}},
			{IsFlashRule: true, FlashPathRefKey: "Patient.name", Expressions: []*ast.Node{nameVal}},
		},
	}

	e := NewEvaluator(stub, patientFixture())
	out, err := e.Evaluate(context.Background(), root, nil)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	result, ok := out.(*Result)
	if !ok {
		t.Fatalf("result type = %T, want *Result", out)
	}

	wantKeys := []string{"resourceType", "active", "gender", "name"}
	if len(result.Keys()) != len(wantKeys) {
		t.Fatalf("Keys = %v, want %v", result.Keys(), wantKeys)
	}
	for i, k := range wantKeys {
		if result.Keys()[i] != k {
			t.Fatalf("Keys = %v, want %v", result.Keys(), wantKeys)
		}
	}

	if v, _ := result.Get("resourceType"); v != "Patient" {
		t.Errorf("resourceType = %v", v)
	}
	if v, _ := result.Get("active"); v != true {
		t.Errorf("active = %v", v)
	}
	if v, _ := result.Get("gender"); v != "male" {
		t.Errorf("gender = %v", v)
	}

	nameVal2, _ := result.Get("name")
	arr, ok := nameVal2.([]any)
	if !ok || len(arr) != 1 {
		t.Fatalf("name = %v, want a 1-element array", nameVal2)
	}
	nameObj, ok := arr[0].(map[string]any)
	if !ok {
		t.Fatalf("name[0] = %T, want map[string]any", arr[0])
	}
	if nameObj["family"] != "Doe" {
		t.Errorf("name[0].family = %v, want Doe", nameObj["family"])
	}
	given, ok := nameObj["given"].([]any)
	if !ok || len(given) != 2 || given[0] != "John" || given[1] != "Jane" {
		t.Errorf("name[0].given = %v, want [John Jane]", nameObj["given"])
	}
}

func TestEvaluateMissingMandatoryReturnsError(t *testing.T) {
	stub := hosttest.New()
	root := &ast.Node{IsFlashBlock: true, Instanceof: "Patient"}

	e := NewEvaluator(stub, patientFixture())
	_, err := e.Evaluate(context.Background(), root, nil)
	if err == nil {
		t.Fatal("expected a mandatory-missing error: Patient.active was never supplied")
	}
	ferr, ok := err.(*fo.EvalError)
	if !ok || ferr.Code != fo.ErrMandatoryMissing {
		t.Fatalf("err = %v, want %s", err, fo.ErrMandatoryMissing)
	}
}

func TestEvaluateFlashRuleReturnsFlashRuleResult(t *testing.T) {
	stub := hosttest.New()
	genderVal := hosttest.InlineNode("gender")
	stub.OnNode(genderVal, hosttest.Value("female"))

	ruleNode := &ast.Node{IsFlashRule: true, FlashPathRefKey: "Patient.gender", Expressions: []*ast.Node{genderVal}}

	e := NewEvaluator(stub, patientFixture())
	out, err := e.Evaluate(context.Background(), ruleNode, nil)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	frr, ok := out.(*host.FlashRuleResult)
	if !ok {
		t.Fatalf("result type = %T, want *host.FlashRuleResult", out)
	}
	if frr.Key != "gender" || frr.Kind != string(definitions.KindPrimitiveType) {
		t.Errorf("frr = %+v", frr)
	}
	val, ok := frr.Value.(map[string]any)
	if !ok || val["value"] != "female" {
		t.Errorf("frr.Value = %v", frr.Value)
	}
}

func TestEvaluateRespectsCanceledContext(t *testing.T) {
	stub := hosttest.New()
	root := &ast.Node{IsFlashBlock: true, Instanceof: "Patient"}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := NewEvaluator(stub, patientFixture())
	_, err := e.Evaluate(ctx, root, nil)
	if err == nil {
		t.Fatal("expected a canceled error")
	}
	ferr, ok := err.(*fo.EvalError)
	if !ok || ferr.Code != fo.ErrCanceled {
		t.Fatalf("err = %v, want %s", err, fo.ErrCanceled)
	}
}

func TestEvaluateFixedValueShortCircuits(t *testing.T) {
	fixedED := &definitions.ElementDefinition{
		Path: "Patient.active", FlashPathRefKey: "Patient.active",
		Names: []string{"active"}, Kind: definitions.KindPrimitiveType,
		FhirTypeCode: "boolean", FixedValue: true,
	}
	dict := &definitions.Dictionary{
		ElementDefinitions: map[string]*definitions.ElementDefinition{"Patient.active": fixedED},
	}

	stub := hosttest.New()
	node := &ast.Node{IsFlashRule: true, FlashPathRefKey: "Patient.active", Expressions: nil}

	e := NewEvaluator(stub, dict)
	out, err := e.Evaluate(context.Background(), node, nil)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	frr, ok := out.(*host.FlashRuleResult)
	if !ok {
		t.Fatalf("result type = %T, want *host.FlashRuleResult", out)
	}
	if frr.Value != true {
		t.Errorf("frr.Value = %v, want the fixed value true", frr.Value)
	}
	if stub.CallCount() != 0 {
		t.Error("a fixed-value rule must short-circuit before any sub-expression is evaluated")
	}
}
