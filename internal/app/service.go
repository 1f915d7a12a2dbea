// Package service rates batches of charts on a worker pool and keeps them
// ranked by one difficulty skill.
package service

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/strain/internal/adapters/chartfile"
	"github.com/okian/strain/internal/adapters/mq/queue"
	workerpool "github.com/okian/strain/internal/adapters/mq/worker"
	"github.com/okian/strain/internal/adapters/repository"
	"github.com/okian/strain/internal/domain/dedupe"
	"github.com/okian/strain/internal/domain/difficulty"
	"github.com/okian/strain/internal/domain/model"
	"github.com/okian/strain/internal/domain/object"
	"github.com/okian/strain/pkg/logger"
	"github.com/okian/strain/pkg/metrics"
)

// Default service configuration constants.
const (
	defaultQueueSize  = 10_000
	defaultDedupeSize = 50_000
)

// Service owns the queue, worker pool, deduper and ranking store.
type Service struct {
	mu sync.RWMutex

	// Core components
	ranking *repository.TreapStore
	deduper dedupe.Deduper
	queue   *queue.InMemoryQueue
	rater   difficulty.Rater
	pool    *workerpool.Pool

	// Configuration
	workerCount      int
	queueSize        int
	dedupeSize       int
	rankBy           string
	mods             object.Mods
	calcOpts         []difficulty.Option
	snapshotInterval time.Duration

	// Results, keyed by chart ID
	resultsMu sync.RWMutex
	results   map[string]model.Result
	completed int64
	failed    int64

	// Outstanding jobs; idle is closed whenever pending is zero.
	pendingMu sync.Mutex
	pending   int
	idle      chan struct{}

	started bool
	stopped bool

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum number of queued jobs.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many chart fingerprints are remembered.
// Zero means unbounded.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size >= 0 {
			s.dedupeSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithRankBy selects the skill charts are ranked by.
func WithRankBy(skill string) Option {
	return func(s *Service) {
		if difficulty.IsSkill(skill) {
			s.rankBy = skill
		}
	}
}

// WithMods sets modifiers applied on top of every submitted chart's own.
func WithMods(mods object.Mods) Option {
	return func(s *Service) {
		s.mods = mods
	}
}

// WithCalculatorOptions configures the Calculator built on Start.
func WithCalculatorOptions(opts ...difficulty.Option) Option {
	return func(s *Service) {
		s.calcOpts = append(s.calcOpts, opts...)
	}
}

// WithRater replaces the Calculator entirely.
func WithRater(r difficulty.Rater) Option {
	return func(s *Service) {
		if r != nil {
			s.rater = r
		}
	}
}

// WithSnapshotInterval enables periodic ranking snapshots.
func WithSnapshotInterval(interval time.Duration) Option {
	return func(s *Service) {
		s.snapshotInterval = interval
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	idle := make(chan struct{})
	close(idle)

	s := &Service{
		workerCount: runtime.NumCPU(),
		queueSize:   defaultQueueSize,
		dedupeSize:  defaultDedupeSize,
		rankBy:      difficulty.SkillAim,
		results:     make(map[string]model.Result),
		idle:        idle,
		logger:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.stopped {
		return ErrServiceStopped
	}

	s.logger.Info(ctx, "starting rating service...")

	s.ranking = repository.NewTreapStore(ctx, repository.WithSnapshotInterval(s.snapshotInterval))
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	if s.rater == nil {
		opts := append([]difficulty.Option{difficulty.WithLogger(s.logger.Named("calculator"))}, s.calcOpts...)
		s.rater = difficulty.NewCalculator(opts...)
	}

	s.pool = workerpool.NewPool(s.workerCount, s.queue, s.rater, workerpool.RecorderFunc(s.record),
		workerpool.WithLogger(s.logger),
		workerpool.WithName("rater"),
	)
	s.pool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "rating service started",
		logger.Int("workers", s.pool.Size()),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.String("rankBy", s.rankBy),
	)
	return nil
}

// Stop closes the queue, lets the workers finish what was accepted and
// shuts the ranking store down. A stopped service cannot be restarted.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.logger.Info(ctx, "stopping rating service...")

	err := s.pool.Shutdown(ctx)
	if err != nil {
		s.logger.Warn(ctx, "worker pool did not drain", logger.Error(err))
	}
	s.ranking.Publish()
	_ = s.ranking.Close()

	s.started = false
	s.stopped = true
	s.logger.Info(ctx, "rating service stopped")
	return err
}

// Submit queues c for rating and returns the job ID. Charts whose rated
// content was already submitted are rejected with ErrDuplicateChart.
func (s *Service) Submit(ctx context.Context, c *chartfile.Chart) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return "", ErrServiceStopped
	}

	rated := *c
	rated.Mods |= s.mods
	fp := rated.Fingerprint()

	if s.deduper.SeenAndRecord(ctx, fp) {
		metrics.RecordChartDuplicate()
		s.logger.Debug(ctx, "duplicate chart detected, skipping",
			logger.String("chartID", c.ID),
			logger.String("fingerprint", fmt.Sprintf("%016x", fp)),
		)
		return "", fmt.Errorf("%w: %s", ErrDuplicateChart, c.ID)
	}

	job := model.Job{
		ID:          uuid.NewString(),
		ChartID:     c.ID,
		Title:       c.Title,
		Fingerprint: fp,
		Mods:        rated.Mods,
		Sequence:    rated.Sequence(),
		EnqueuedAt:  time.Now(),
	}

	s.addPending()
	if err := s.queue.Enqueue(ctx, job); err != nil {
		s.donePending()
		s.deduper.Unrecord(ctx, fp)
		return "", fmt.Errorf("submit %s: %w", c.ID, err)
	}

	metrics.RecordChartSubmitted()
	s.logger.Debug(ctx, "chart queued",
		logger.String("jobID", job.ID),
		logger.String("chartID", job.ChartID),
		logger.String("mods", job.Mods.String()),
		logger.Int("objects", job.Sequence.Len()),
	)
	return job.ID, nil
}

// record is the worker pool's sink. A chart keeps the result that rates
// highest on the ranking skill; failures only fill an empty slot.
func (s *Service) record(ctx context.Context, res model.Result) error { //nolint:gocritic // hugeParam: results are values
	defer s.donePending()

	s.resultsMu.Lock()
	defer s.resultsMu.Unlock()

	existing, ok := s.results[res.ChartID]
	if res.Failed() {
		s.failed++
		if !ok {
			s.results[res.ChartID] = res
		}
		return nil
	}
	s.completed++

	rating, err := res.Rating(s.rankBy)
	if err != nil {
		return err
	}
	if ok && existing.Failed() {
		if err := s.ranking.Set(ctx, res.ChartID, rating); err != nil {
			return err
		}
		s.results[res.ChartID] = res
		return nil
	}
	updated, err := s.ranking.UpdateBest(ctx, res.ChartID, rating)
	if err != nil {
		return err
	}
	if updated || !ok {
		s.results[res.ChartID] = res
	}
	return nil
}

func (s *Service) addPending() {
	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()
	if s.pending == 0 {
		s.idle = make(chan struct{})
	}
	s.pending++
}

func (s *Service) donePending() {
	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()
	s.pending--
	if s.pending == 0 {
		close(s.idle)
	}
}

// Pending returns the number of accepted jobs not yet recorded.
func (s *Service) Pending() int {
	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()
	return s.pending
}

// Wait blocks until every accepted job has been recorded.
func (s *Service) Wait(ctx context.Context) error {
	s.pendingMu.Lock()
	idle := s.idle
	s.pendingMu.Unlock()

	select {
	case <-idle:
	case <-ctx.Done():
		return fmt.Errorf("wait for jobs: %w", ctx.Err())
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.ranking != nil {
		s.ranking.Publish()
	}
	return nil
}

// TopN returns the top N ranked charts.
func (s *Service) TopN(ctx context.Context, n int) ([]model.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.ranking == nil {
		return nil, ErrServiceStopped
	}
	return s.ranking.TopN(ctx, n)
}

// Rank returns the rank and rating of a chart.
func (s *Service) Rank(ctx context.Context, chartID string) (model.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.ranking == nil {
		return model.Entry{}, ErrServiceStopped
	}
	return s.ranking.Rank(ctx, chartID)
}

// Result returns the recorded result for a chart.
func (s *Service) Result(chartID string) (model.Result, bool) {
	s.resultsMu.RLock()
	defer s.resultsMu.RUnlock()
	res, ok := s.results[chartID]
	return res, ok
}

// Results returns every recorded result ordered by chart ID.
func (s *Service) Results() []model.Result {
	s.resultsMu.RLock()
	out := make([]model.Result, 0, len(s.results))
	for _, r := range s.results {
		out = append(out, r)
	}
	s.resultsMu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ChartID < out[j].ChartID })
	return out
}

// RankBy returns the ranking skill.
func (s *Service) RankBy() string { return s.rankBy }

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
		"rankBy":      s.rankBy,
		"pending":     s.Pending(),
	}

	s.resultsMu.RLock()
	stats["completed"] = s.completed
	stats["failed"] = s.failed
	s.resultsMu.RUnlock()

	if s.deduper != nil {
		stats["fingerprints"] = s.deduper.Size()
	}
	if s.ranking != nil {
		stats["rankedCharts"] = s.ranking.Count(ctx)
		if snap := s.ranking.Snapshot(); snap != nil && len(snap.TopCache) > 0 {
			stats["leader"] = snap.TopCache[0].ChartID
		}
	}
	if s.started {
		stats["queueLength"] = s.queue.Len(ctx)
		stats["activeWorkers"] = s.pool.Active()
		s.pool.UpdateMetrics()
	}
	return stats
}
