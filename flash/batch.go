package flash

import (
	"context"
	"runtime"
	"sync"

	"github.com/mechanik-daniel/flashonata/ast"
)

// BatchJob is one flash-block/flash-rule node plus its input, submitted to
// a BatchEvaluator (SPEC_FULL.md ambient-stack addition, adapted from the
// teacher's worker-pool batch validator).
type BatchJob struct {
	// ID is a caller-supplied label carried through to the matching
	// BatchJobResult, unused by the evaluator itself.
	ID    string
	Node  *ast.Node
	Input any
}

// BatchJobResult is the outcome of one BatchJob.
type BatchJobResult struct {
	ID    string
	Value any
	Err   error
	Index int
}

// BatchResult aggregates a batch run's outcomes, index-aligned with the
// submitted jobs.
type BatchResult struct {
	Results       []*BatchJobResult
	TotalJobs     int
	CompletedJobs int
	FailedJobs    int
}

// HasErrors reports whether any job in the batch failed.
func (b *BatchResult) HasErrors() bool {
	for _, r := range b.Results {
		if r.Err != nil {
			return true
		}
	}
	return false
}

// BatchEvaluator runs many independent node evaluations concurrently over a
// bounded worker pool (spec §5's "independent instantiations may run
// concurrently" ambient addition).
type BatchEvaluator struct {
	evaluator *Evaluator
	workers   int
}

// NewBatchEvaluator wraps an Evaluator for concurrent batch use. workers <= 0
// defaults to runtime.NumCPU().
func NewBatchEvaluator(evaluator *Evaluator, workers int) *BatchEvaluator {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &BatchEvaluator{evaluator: evaluator, workers: workers}
}

// EvaluateBatch evaluates every job, running sequentially for tiny batches
// (where pool setup would dominate) and in parallel otherwise. Each job gets
// its own scope (Evaluator.Evaluate always starts a fresh one), so jobs
// never interfere with one another.
func (be *BatchEvaluator) EvaluateBatch(ctx context.Context, jobs []*BatchJob) *BatchResult {
	if len(jobs) == 0 {
		return &BatchResult{Results: make([]*BatchJobResult, 0)}
	}
	if len(jobs) <= 2 {
		return be.evaluateSequential(ctx, jobs)
	}
	return be.evaluateParallel(ctx, jobs)
}

func (be *BatchEvaluator) evaluateSequential(ctx context.Context, jobs []*BatchJob) *BatchResult {
	results := make([]*BatchJobResult, 0, len(jobs))
	for i, job := range jobs {
		select {
		case <-ctx.Done():
			return &BatchResult{Results: results, TotalJobs: len(jobs), CompletedJobs: len(results)}
		default:
		}
		results = append(results, be.runOne(ctx, job, i))
	}
	return summarize(results, len(jobs))
}

func (be *BatchEvaluator) evaluateParallel(ctx context.Context, jobs []*BatchJob) *BatchResult {
	numWorkers := be.workers
	if numWorkers > len(jobs) {
		numWorkers = len(jobs)
	}

	indices := make(chan int, len(jobs))
	out := make(chan *BatchJobResult, len(jobs))

	var wg sync.WaitGroup
	wg.Add(numWorkers)
	for w := 0; w < numWorkers; w++ {
		go func() {
			defer wg.Done()
			for idx := range indices {
				select {
				case <-ctx.Done():
					out <- &BatchJobResult{ID: jobs[idx].ID, Err: ctx.Err(), Index: idx}
					continue
				default:
				}
				out <- be.runOne(ctx, jobs[idx], idx)
			}
		}()
	}

	go func() {
		for i := range jobs {
			indices <- i
		}
		close(indices)
	}()

	go func() {
		wg.Wait()
		close(out)
	}()

	results := make([]*BatchJobResult, len(jobs))
	for r := range out {
		results[r.Index] = r
	}
	return summarize(results, len(jobs))
}

func (be *BatchEvaluator) runOne(ctx context.Context, job *BatchJob, index int) *BatchJobResult {
	value, err := be.evaluator.Evaluate(ctx, job.Node, job.Input)
	return &BatchJobResult{ID: job.ID, Value: value, Err: err, Index: index}
}

func summarize(results []*BatchJobResult, total int) *BatchResult {
	completed, failed := 0, 0
	for _, r := range results {
		if r == nil {
			continue
		}
		completed++
		if r.Err != nil {
			failed++
		}
	}
	return &BatchResult{Results: results, TotalJobs: total, CompletedJobs: completed, FailedJobs: failed}
}
