package flash

import (
	"context"
	"testing"

	"github.com/mechanik-daniel/flashonata/ast"
	"github.com/mechanik-daniel/flashonata/hosttest"
)

func TestBatchEvaluateRunsEveryJobIndexAligned(t *testing.T) {
	stub := hosttest.New()
	genderVal := hosttest.InlineNode("gender")
	stub.OnNode(genderVal, hosttest.Value("male"))

	e := NewEvaluator(stub, patientFixture())
	be := NewBatchEvaluator(e, 4)

	jobs := make([]*BatchJob, 0, 6)
	for i := 0; i < 6; i++ {
		jobs = append(jobs, &BatchJob{
			ID:   "job",
			Node: &ast.Node{IsFlashRule: true, FlashPathRefKey: "Patient.gender", Expressions: []*ast.Node{genderVal}},
		})
	}

	res := be.EvaluateBatch(context.Background(), jobs)
	if res.TotalJobs != 6 || res.CompletedJobs != 6 || res.FailedJobs != 0 {
		t.Fatalf("res = %+v", res)
	}
	if res.HasErrors() {
		t.Fatal("unexpected errors in batch result")
	}
	for i, r := range res.Results {
		if r.Index != i {
			t.Errorf("result %d has Index %d", i, r.Index)
		}
		if r.Err != nil {
			t.Errorf("result %d: %v", i, r.Err)
		}
	}
}

func TestBatchEvaluateSequentialForSmallBatches(t *testing.T) {
	stub := hosttest.New()
	genderVal := hosttest.InlineNode("gender")
	stub.OnNode(genderVal, hosttest.Value("male"))

	e := NewEvaluator(stub, patientFixture())
	be := NewBatchEvaluator(e, 4)

	jobs := []*BatchJob{
		{ID: "a", Node: &ast.Node{IsFlashRule: true, FlashPathRefKey: "Patient.gender", Expressions: []*ast.Node{genderVal}}},
	}

	res := be.EvaluateBatch(context.Background(), jobs)
	if res.TotalJobs != 1 || res.CompletedJobs != 1 {
		t.Fatalf("res = %+v", res)
	}
}

func TestBatchEvaluateEmptyJobList(t *testing.T) {
	e := NewEvaluator(hosttest.New(), patientFixture())
	be := NewBatchEvaluator(e, 2)

	res := be.EvaluateBatch(context.Background(), nil)
	if res.TotalJobs != 0 || len(res.Results) != 0 {
		t.Fatalf("res = %+v", res)
	}
}

func TestBatchEvaluateCollectsPerJobErrors(t *testing.T) {
	stub := hosttest.New()
	e := NewEvaluator(stub, patientFixture())
	be := NewBatchEvaluator(e, 4)

	jobs := make([]*BatchJob, 0, 3)
	for i := 0; i < 3; i++ {
		jobs = append(jobs, &BatchJob{
			ID:   "missing-mandatory",
			Node: &ast.Node{IsFlashBlock: true, Instanceof: "Patient"},
		})
	}

	res := be.EvaluateBatch(context.Background(), jobs)
	if res.FailedJobs != 3 {
		t.Fatalf("FailedJobs = %d, want 3 (Patient.active is mandatory and never supplied)", res.FailedJobs)
	}
	if !res.HasErrors() {
		t.Fatal("HasErrors() should report true")
	}
}
