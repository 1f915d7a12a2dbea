// Package worker rates queued charts and hands the results to a recorder.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/strain/internal/domain/difficulty"
	"github.com/okian/strain/internal/domain/model"
	"github.com/okian/strain/pkg/logger"
	"github.com/okian/strain/pkg/metrics"
)

// Default worker configuration constants.
const (
	poolShutdownTimeout = 30 * time.Second
)

// Job abstracts what workers read off the queue.
type Job = model.Job

// Recorder receives every finished job, failed or not.
type Recorder interface {
	Record(ctx context.Context, res model.Result) error
}

// RecorderFunc adapts a function to Recorder.
type RecorderFunc func(ctx context.Context, res model.Result) error

// Record calls f.
func (f RecorderFunc) Record(ctx context.Context, res model.Result) error { //nolint:gocritic // hugeParam: results are values
	return f(ctx, res)
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Job
}

// Worker rates jobs using the provided interfaces.
type Worker interface {
	// Run starts the worker loop until ctx is canceled or the queue closes.
	Run(ctx context.Context)

	// Shutdown stops the worker after the job in hand.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue    Queue
	rater    difficulty.Rater
	recorder Recorder
	name     string

	// busy is shared with the owning pool, if any.
	busy *atomic.Int64

	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(queue Queue, rater difficulty.Rater, recorder Recorder, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    queue,
		rater:    rater,
		recorder: recorder,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Nop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.Named(w.name)
	return w
}

// Name returns the worker's name.
func (w *InMemoryWorker) Name() string { return w.name }

// Run starts the worker loop. It returns when ctx is done, Shutdown is
// called, or the queue channel is closed and drained.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			metrics.RecordQueueDequeue()
			if err := w.processJob(ctx, job); err != nil {
				w.logger.Error(ctx, "error processing job", logger.Error(err))
			}
		}
	}
}

// Shutdown signals the worker to stop and waits for it.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.shutdownOnce.Do(func() { close(w.shutdown) })

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Done is closed once Run has returned.
func (w *InMemoryWorker) Done() <-chan struct{} { return w.done }

// processJob rates one job and records the outcome. The recorder sees
// failures too so that nothing waiting on a job is left hanging.
func (w *InMemoryWorker) processJob(ctx context.Context, job Job) error { //nolint:gocritic // hugeParam: Job is passed by value for channel semantics
	if w.busy != nil {
		w.busy.Add(1)
		defer w.busy.Add(-1)
	}

	start := time.Now()
	if !job.EnqueuedAt.IsZero() {
		metrics.RecordQueueProcessingLatency(float64(start.Sub(job.EnqueuedAt).Milliseconds()))
	}

	attrs, calcErr := w.rater.Calculate(ctx, job.Sequence, job.Mods)
	took := time.Since(start)
	metrics.RecordWorkerProcessingLatency(float64(took.Milliseconds()))

	res := model.Result{
		JobID:       job.ID,
		ChartID:     job.ChartID,
		Title:       job.Title,
		Attributes:  attrs,
		Err:         calcErr,
		Duration:    took,
		CompletedAt: time.Now(),
	}

	if calcErr != nil {
		metrics.RecordCalculationError()
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "calculation_error")
		w.logger.Error(ctx, "rating failed for job",
			logger.String("jobID", job.ID),
			logger.String("chartID", job.ChartID),
			logger.Error(calcErr),
		)
	} else {
		w.logger.Debug(ctx, "job rated",
			logger.String("jobID", job.ID),
			logger.String("chartID", job.ChartID),
			logger.Float64("aim", attrs.Aim),
			logger.Float64("speed", attrs.Speed),
			logger.Duration("took", took),
		)
	}

	if err := w.recorder.Record(ctx, res); err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "record_error")
		return fmt.Errorf("record job %s: %w", job.ID, err)
	}
	if calcErr != nil {
		return fmt.Errorf("rate job %s: %w", job.ID, calcErr)
	}
	return nil
}

// Pool manages multiple workers sharing one queue.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	busy    atomic.Int64

	stopOnce sync.Once
	logger   logger.Logger
}

// NewPool creates a new worker pool. A count below one uses one worker per CPU.
// Options are applied to every worker; WithName is used as a name prefix.
func NewPool(workerCount int, queue Queue, rater difficulty.Rater, recorder Recorder, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}

	// Resolve pool-wide options once to learn the logger and name prefix.
	probe := &InMemoryWorker{name: "worker", logger: logger.Nop()}
	for _, opt := range opts {
		opt(probe)
	}

	pool := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   queue,
		logger:  probe.logger.Named(probe.name + "-pool"),
	}

	for i := 0; i < workerCount; i++ {
		wopts := append(append([]Option{}, opts...), WithName(probe.name+"-"+strconv.Itoa(i)))
		w := NewInMemoryWorker(queue, rater, recorder, wopts...)
		w.busy = &pool.busy
		pool.workers[i] = w
	}

	metrics.UpdateWorkers(workerCount, 0)
	return pool
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Active returns how many workers are rating a job right now.
func (p *Pool) Active() int { return int(p.busy.Load()) }

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
	p.logger.Info(ctx, "worker pool started", logger.Int("workers", len(p.workers)))
}

// UpdateMetrics publishes the current worker counts.
func (p *Pool) UpdateMetrics() {
	metrics.UpdateWorkers(len(p.workers), p.Active())
}

// Wait blocks until every worker has returned or ctx is done.
func (p *Pool) Wait(ctx context.Context) error {
	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-ctx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
			return fmt.Errorf("wait for workers: %w", ctx.Err())
		}
	}
	return nil
}

// Stop signals every worker to stop after its current job.
func (p *Pool) Stop() {
	p.stopOnce.Do(func() {
		for _, w := range p.workers {
			w.shutdownOnce.Do(func() { close(w.shutdown) })
		}
	})
}

// Shutdown closes the queue, lets the workers drain it, and waits for them.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	if err := p.Wait(shutdownCtx); err != nil {
		p.Stop()
		return err
	}
	p.UpdateMetrics()
	return nil
}
