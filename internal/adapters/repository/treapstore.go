package repository

import (
	"context"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/okian/strain/pkg/metrics"
)

// Treap-based, in-memory Store implementation.
//
// Ordering: rating DESC, then chartID ASC. NaN ratings sort after every
// number. "less" means ranks earlier, so an in-order walk yields the
// ranking from hardest to easiest. Node priorities are a hash of the chart
// ID, which keeps the tree balanced in expectation and deterministic.
//
// Ranks use competition ranking: equal ratings share a rank and the next
// distinct rating skips past them (1, 2, 2, 4).

const defaultTopCacheSize = 100

// Snapshot is an immutable copy of the ranking state.
type Snapshot struct {
	RankByChart   map[string]int
	RatingByChart map[string]float64

	// TopCache holds the leading entries in rank order.
	TopCache []Entry

	PublishedAt time.Time
}

type node struct {
	id     string
	rating float64
	prio   uint64
	left   *node
	right  *node
	size   int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

// above reports whether rating a ranks strictly ahead of rating b.
func above(a, b float64) bool {
	if math.IsNaN(a) {
		return false
	}
	if math.IsNaN(b) {
		return true
	}
	return a > b
}

func same(a, b float64) bool {
	return a == b || (math.IsNaN(a) && math.IsNaN(b))
}

// less returns true if (aRating, aID) appears before (bRating, bID).
func less(aRating float64, aID string, bRating float64, bID string) bool {
	if !same(aRating, bRating) {
		return above(aRating, bRating)
	}
	return aID < bID
}

func rotateRight(y *node) *node {
	x := y.left
	y.left = x.right
	x.right = y
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	x.right = y.left
	y.left = x
	fix(x)
	fix(y)
	return y
}

func insert(n *node, id string, rating float64) *node {
	if n == nil {
		return &node{id: id, rating: rating, prio: xxhash.Sum64String(id), size: 1}
	}
	if less(rating, id, n.rating, n.id) {
		n.left = insert(n.left, id, rating)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, id, rating)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

func deleteNode(n *node, id string, rating float64) *node {
	if n == nil {
		return nil
	}
	if id == n.id && same(rating, n.rating) {
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		if n.left.prio > n.right.prio {
			n = rotateRight(n)
			n.right = deleteNode(n.right, id, rating)
		} else {
			n = rotateLeft(n)
			n.left = deleteNode(n.left, id, rating)
		}
	} else if less(rating, id, n.rating, n.id) {
		n.left = deleteNode(n.left, id, rating)
	} else {
		n.right = deleteNode(n.right, id, rating)
	}
	fix(n)
	return n
}

// countAbove returns how many nodes rank strictly ahead of rating.
func countAbove(n *node, rating float64) int {
	count := 0
	for n != nil {
		if above(n.rating, rating) {
			count += nsize(n.left) + 1
			n = n.right
		} else {
			n = n.left
		}
	}
	return count
}

// collectTopN appends up to limit entries in rank order.
func collectTopN(n *node, limit int, out *[]Entry) {
	if n == nil || len(*out) >= limit {
		return
	}
	collectTopN(n.left, limit, out)
	if len(*out) < limit {
		*out = append(*out, Entry{ChartID: n.id, Rating: n.rating})
	}
	if len(*out) < limit {
		collectTopN(n.right, limit, out)
	}
}

// assignRanks assigns competition ranks to entries in rank order.
func assignRanks(entries []Entry) {
	for i := range entries {
		if i > 0 && same(entries[i].Rating, entries[i-1].Rating) {
			entries[i].Rank = entries[i-1].Rank
			continue
		}
		entries[i].Rank = i + 1
	}
}

// TreapStore is a Store backed by a treap.
type TreapStore struct {
	mu   sync.RWMutex
	root *node
	byID map[string]float64

	snapshotInterval time.Duration
	topCacheSize     int
	snapshot         atomic.Pointer[Snapshot]

	wg       sync.WaitGroup
	stopOnce sync.Once
	stopChan chan struct{}
}

var _ Store = (*TreapStore)(nil)

// NewTreapStore constructs a treap store. With a snapshot interval set, a
// background publisher runs until ctx is done or Close is called.
func NewTreapStore(ctx context.Context, opts ...Option) *TreapStore {
	s := &TreapStore{
		topCacheSize: defaultTopCacheSize,
		byID:         make(map[string]float64),
		stopChan:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.Publish()
	if s.snapshotInterval > 0 {
		s.startPeriodicSnapshots(ctx)
	}
	metrics.UpdateRankedCharts(0)
	return s
}

func (s *TreapStore) startPeriodicSnapshots(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.snapshotInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				s.Publish()
			}
		}
	}()
}

// Close stops the background publisher.
func (s *TreapStore) Close() error {
	s.stopOnce.Do(func() { close(s.stopChan) })
	s.wg.Wait()
	return nil
}

// UpdateBest implements Store.UpdateBest in O(log n) expected time.
// A NaN rating never replaces a stored one.
func (s *TreapStore) UpdateBest(_ context.Context, chartID string, rating float64) (bool, error) {
	start := time.Now()
	defer recordUpdate(start)

	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.byID[chartID]; ok {
		if !above(rating, old) {
			return false, nil
		}
		s.root = deleteNode(s.root, chartID, old)
	}
	s.byID[chartID] = rating
	s.root = insert(s.root, chartID, rating)
	metrics.UpdateRankedCharts(len(s.byID))
	return true, nil
}

// Set implements Store.Set.
func (s *TreapStore) Set(_ context.Context, chartID string, rating float64) error {
	start := time.Now()
	defer recordUpdate(start)

	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.byID[chartID]; ok {
		s.root = deleteNode(s.root, chartID, old)
	}
	s.byID[chartID] = rating
	s.root = insert(s.root, chartID, rating)
	metrics.UpdateRankedCharts(len(s.byID))
	return nil
}

// Remove implements Store.Remove.
func (s *TreapStore) Remove(_ context.Context, chartID string) error {
	start := time.Now()
	defer recordUpdate(start)

	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.byID[chartID]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return ErrNotFound
	}
	s.root = deleteNode(s.root, chartID, old)
	delete(s.byID, chartID)
	metrics.UpdateRankedCharts(len(s.byID))
	return nil
}

// Rank returns the current rank and rating for a chart in O(log n).
func (s *TreapStore) Rank(_ context.Context, chartID string) (Entry, error) {
	start := time.Now()
	defer recordQuery(start)

	s.mu.RLock()
	defer s.mu.RUnlock()

	rating, ok := s.byID[chartID]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return Entry{}, ErrNotFound
	}
	return Entry{Rank: countAbove(s.root, rating) + 1, ChartID: chartID, Rating: rating}, nil
}

// TopN returns the top N entries ordered by rating desc.
func (s *TreapStore) TopN(_ context.Context, n int) ([]Entry, error) {
	start := time.Now()
	defer recordQuery(start)

	if n < 1 {
		metrics.RecordErrorByComponent("repository", "invalid_limit")
		return nil, ErrInvalidLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Entry, 0, min(n, len(s.byID)))
	collectTopN(s.root, n, &out)
	assignRanks(out)
	return out, nil
}

// Count returns the number of ranked charts.
func (s *TreapStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

// Snapshot returns the last published snapshot.
func (s *TreapStore) Snapshot() *Snapshot {
	return s.snapshot.Load()
}

// Publish rebuilds and publishes a snapshot.
func (s *TreapStore) Publish() {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]Entry, 0, len(s.byID))
	collectTopN(s.root, len(s.byID), &all)
	assignRanks(all)

	snap := &Snapshot{
		RankByChart:   make(map[string]int, len(all)),
		RatingByChart: make(map[string]float64, len(all)),
		TopCache:      append([]Entry(nil), all[:min(s.topCacheSize, len(all))]...),
		PublishedAt:   time.Now(),
	}
	for _, e := range all {
		snap.RankByChart[e.ChartID] = e.Rank
		snap.RatingByChart[e.ChartID] = e.Rating
	}
	s.snapshot.Store(snap)
}

func recordUpdate(start time.Time) {
	metrics.RecordRepositoryUpdateLatency(float64(time.Since(start).Microseconds()) / 1000)
}

func recordQuery(start time.Time) {
	metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Microseconds()) / 1000)
}
