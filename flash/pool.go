package flash

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// Pool is a long-running worker pool for evaluating flash nodes submitted
// one at a time over the pool's lifetime, as a streaming service would
// (rather than BatchEvaluator's fixed batch of jobs known up front).
// Adapted from the teacher's worker-pool validation service.
type Pool struct {
	workers    int
	evaluator  *Evaluator
	jobsChan   chan *BatchJob
	resultChan chan *BatchJobResult
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	closed     atomic.Bool
	nextIndex  atomic.Int64

	jobsSubmitted atomic.Uint64
	jobsCompleted atomic.Uint64
	totalDuration atomic.Uint64
}

// NewPool creates a running pool of workers evaluations against evaluator.
// workers <= 0 defaults to runtime.NumCPU().
func NewPool(evaluator *Evaluator, workers int) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		workers:    workers,
		evaluator:  evaluator,
		jobsChan:   make(chan *BatchJob, workers*2),
		resultChan: make(chan *BatchJobResult, workers*2),
		ctx:        ctx,
		cancel:     cancel,
	}

	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker()
	}
	return p
}

// Submit submits a job for evaluation, blocking if the queue is full.
// Returns false if the pool is closed.
func (p *Pool) Submit(job *BatchJob) bool {
	if p.closed.Load() {
		return false
	}
	select {
	case <-p.ctx.Done():
		return false
	case p.jobsChan <- job:
		p.jobsSubmitted.Add(1)
		return true
	}
}

// SubmitAsync submits a job without blocking, returning false if the queue
// is full or the pool is closed.
func (p *Pool) SubmitAsync(job *BatchJob) bool {
	if p.closed.Load() {
		return false
	}
	select {
	case <-p.ctx.Done():
		return false
	case p.jobsChan <- job:
		p.jobsSubmitted.Add(1)
		return true
	default:
		return false
	}
}

// Results returns the channel results arrive on as each job completes.
func (p *Pool) Results() <-chan *BatchJobResult {
	return p.resultChan
}

// Close shuts down the pool and waits for in-flight workers to finish,
// discarding any buffered results. Callers that want the results should use
// CloseAndWait instead, or drain Results() themselves before calling Close.
func (p *Pool) Close() {
	if p.closed.Swap(true) {
		return
	}
	p.cancel()
	close(p.jobsChan)

	done := make(chan struct{})
	go func() {
		for range p.resultChan {
		}
		close(done)
	}()

	p.wg.Wait()
	close(p.resultChan)
	<-done
}

// CloseAndWait closes the pool and collects every pending result into a
// BatchResult. Results are not index-aligned with submission order since
// jobs may have been submitted over an arbitrary span of time; callers that
// need alignment should set BatchJob.ID and match on it.
func (p *Pool) CloseAndWait() *BatchResult {
	if p.closed.Swap(true) {
		return &BatchResult{}
	}
	p.cancel()
	close(p.jobsChan)

	results := make([]*BatchJobResult, 0)
	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(p.resultChan)
		close(done)
	}()

	for result := range p.resultChan {
		results = append(results, result)
	}
	<-done

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	return &BatchResult{
		Results:       results,
		TotalJobs:     int(p.jobsSubmitted.Load()),
		CompletedJobs: int(p.jobsCompleted.Load()),
		FailedJobs:    failed,
	}
}

// Stats returns current pool statistics.
func (p *Pool) Stats() PoolStats {
	return PoolStats{
		Workers:       p.workers,
		JobsSubmitted: p.jobsSubmitted.Load(),
		JobsCompleted: p.jobsCompleted.Load(),
		AvgDuration:   p.averageDuration(),
	}
}

// PoolStats reports a snapshot of a Pool's throughput.
type PoolStats struct {
	Workers       int
	JobsSubmitted uint64
	JobsCompleted uint64
	AvgDuration   time.Duration
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for job := range p.jobsChan {
		select {
		case <-p.ctx.Done():
			return
		default:
		}

		start := time.Now()
		index := int(p.nextIndex.Add(1) - 1)
		value, err := p.evaluator.Evaluate(p.ctx, job.Node, job.Input)
		result := &BatchJobResult{ID: job.ID, Value: value, Err: err, Index: index}
		elapsed := uint64(time.Since(start).Nanoseconds())

		p.jobsCompleted.Add(1)
		p.totalDuration.Add(elapsed)

		select {
		case <-p.ctx.Done():
			return
		case p.resultChan <- result:
		}
	}
}

func (p *Pool) averageDuration() time.Duration {
	completed := p.jobsCompleted.Load()
	if completed == 0 {
		return 0
	}
	return time.Duration(p.totalDuration.Load() / completed)
}
