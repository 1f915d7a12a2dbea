package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector of the rating service.
type Manager struct {
	namespace         string
	subsystem         string
	histogramBuckets  []float64
	difficultyBuckets []float64
	enabled           bool
	constLabels       map[string]string
	registry          *prometheus.Registry

	// Chart intake
	chartsSubmitted prometheus.Counter
	chartsDuplicate prometheus.Counter

	// Calculation
	calculations       prometheus.Counter
	calculationErrors  prometheus.Counter
	calculationLatency prometheus.Histogram
	objectsProcessed   prometheus.Counter
	skillLatency       *prometheus.HistogramVec
	skillDifficulty    *prometheus.HistogramVec

	// Ranking
	rankedCharts            prometheus.Gauge
	repositoryUpdateLatency prometheus.Histogram
	repositoryQueryLatency  prometheus.Histogram

	// Queue
	queueSize              prometheus.Gauge
	queueCapacity          prometheus.Gauge
	queueUtilization       prometheus.Gauge
	queueEnqueued          prometheus.Counter
	queueDequeued          prometheus.Counter
	queueEnqueueErrors     prometheus.Counter
	queueProcessingLatency prometheus.Histogram

	// Workers
	workerCount             prometheus.Gauge
	workerActiveCount       prometheus.Gauge
	workerIdleCount         prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	errorsByComponent *prometheus.CounterVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager. Without WithPrometheusRegistry it
// registers on a fresh private registry.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:         "strain",
		subsystem:         "difficulty",
		histogramBuckets:  []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250},
		difficultyBuckets: prometheus.ExponentialBuckets(0.5, 2, 12),
		enabled:           true,
		constLabels:       map[string]string{},
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
		ConstLabels: m.constLabels,
	})
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
		ConstLabels: m.constLabels,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
		ConstLabels: m.constLabels, Buckets: buckets,
	})
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.chartsSubmitted = m.counter("charts_submitted_total", "Total number of charts accepted for rating")
	m.chartsDuplicate = m.counter("charts_duplicate_total", "Total number of duplicate chart submissions dropped")

	m.calculations = m.counter("calculations_total", "Total number of completed difficulty calculations")
	m.calculationErrors = m.counter("calculation_errors_total", "Total number of failed difficulty calculations")
	m.calculationLatency = m.histogram("calculation_latency_milliseconds",
		"Wall time of a full calculation over every skill in milliseconds", m.histogramBuckets)
	m.objectsProcessed = m.counter("objects_processed_total", "Total number of hit objects fed through the skills")

	m.skillLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:        "skill_latency_milliseconds",
		Help:        "Time spent in one skill pass in milliseconds",
		ConstLabels: m.constLabels,
		Buckets:     m.histogramBuckets,
	}, []string{"skill"})

	m.skillDifficulty = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:        "skill_rating",
		Help:        "Distribution of skill ratings",
		ConstLabels: m.constLabels,
		Buckets:     m.difficultyBuckets,
	}, []string{"skill"})

	m.rankedCharts = m.gauge("ranked_charts", "Number of charts in the ranking")
	m.repositoryUpdateLatency = m.histogram("repository_update_latency_milliseconds",
		"Ranking update latency in milliseconds", m.histogramBuckets)
	m.repositoryQueryLatency = m.histogram("repository_query_latency_milliseconds",
		"Ranking query latency in milliseconds", m.histogramBuckets)

	m.queueSize = m.gauge("queue_size", "Current number of queued jobs")
	m.queueCapacity = m.gauge("queue_capacity", "Maximum queue capacity")
	m.queueUtilization = m.gauge("queue_utilization_ratio", "Queue utilization ratio (size / capacity)")
	m.queueEnqueued = m.counter("queue_enqueue_total", "Total number of jobs enqueued")
	m.queueDequeued = m.counter("queue_dequeue_total", "Total number of jobs dequeued")
	m.queueEnqueueErrors = m.counter("queue_enqueue_errors_total", "Total number of rejected enqueues")
	m.queueProcessingLatency = m.histogram("queue_processing_latency_milliseconds",
		"Time a job spent between enqueue and completion in milliseconds", m.histogramBuckets)

	m.workerCount = m.gauge("worker_count", "Configured number of workers")
	m.workerActiveCount = m.gauge("worker_active_count", "Number of workers currently rating a chart")
	m.workerIdleCount = m.gauge("worker_idle_count", "Number of idle workers")
	m.workerProcessingLatency = m.histogram("worker_processing_latency_milliseconds",
		"Worker time per job in milliseconds", m.histogramBuckets)
	m.workerErrors = m.counter("worker_errors_total", "Total number of worker errors")

	m.errorsByComponent = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:        "errors_by_component_total",
		Help:        "Total number of errors by component",
		ConstLabels: m.constLabels,
	}, []string{"component", "error_type"})
}

// Registry returns the registry the manager's collectors live on.
func (m *Manager) Registry() *prometheus.Registry { return m.registry }

// RecordChartSubmitted counts an accepted chart.
func (m *Manager) RecordChartSubmitted() {
	if m.enabled {
		m.chartsSubmitted.Inc()
	}
}

// RecordChartDuplicate counts a dropped duplicate.
func (m *Manager) RecordChartDuplicate() {
	if m.enabled {
		m.chartsDuplicate.Inc()
	}
}

// RecordCalculation records a completed calculation and its latency.
func (m *Manager) RecordCalculation(latencyMs float64, objects int) {
	if !m.enabled {
		return
	}
	m.calculations.Inc()
	m.calculationLatency.Observe(latencyMs)
	m.objectsProcessed.Add(float64(objects))
}

// RecordCalculationError counts a failed calculation.
func (m *Manager) RecordCalculationError() {
	if m.enabled {
		m.calculationErrors.Inc()
	}
}

// RecordSkill records one skill pass.
func (m *Manager) RecordSkill(skill string, latencyMs, rating float64) {
	if !m.enabled {
		return
	}
	m.skillLatency.WithLabelValues(skill).Observe(latencyMs)
	m.skillDifficulty.WithLabelValues(skill).Observe(rating)
}

// UpdateRankedCharts sets the ranking size.
func (m *Manager) UpdateRankedCharts(count int) {
	if m.enabled {
		m.rankedCharts.Set(float64(count))
	}
}

// RecordRepositoryUpdateLatency records a ranking update.
func (m *Manager) RecordRepositoryUpdateLatency(latencyMs float64) {
	if m.enabled {
		m.repositoryUpdateLatency.Observe(latencyMs)
	}
}

// RecordRepositoryQueryLatency records a ranking query.
func (m *Manager) RecordRepositoryQueryLatency(latencyMs float64) {
	if m.enabled {
		m.repositoryQueryLatency.Observe(latencyMs)
	}
}

// UpdateQueue sets the queue size, capacity and utilization gauges.
func (m *Manager) UpdateQueue(size, capacity int) {
	if !m.enabled {
		return
	}
	m.queueSize.Set(float64(size))
	m.queueCapacity.Set(float64(capacity))
	if capacity > 0 {
		m.queueUtilization.Set(float64(size) / float64(capacity))
	}
}

// RecordQueueEnqueue counts an enqueue.
func (m *Manager) RecordQueueEnqueue() {
	if m.enabled {
		m.queueEnqueued.Inc()
	}
}

// RecordQueueDequeue counts a dequeue.
func (m *Manager) RecordQueueDequeue() {
	if m.enabled {
		m.queueDequeued.Inc()
	}
}

// RecordQueueEnqueueError counts a rejected enqueue.
func (m *Manager) RecordQueueEnqueueError() {
	if m.enabled {
		m.queueEnqueueErrors.Inc()
	}
}

// RecordQueueProcessingLatency records enqueue-to-done latency.
func (m *Manager) RecordQueueProcessingLatency(latencyMs float64) {
	if m.enabled {
		m.queueProcessingLatency.Observe(latencyMs)
	}
}

// UpdateWorkers sets the worker gauges.
func (m *Manager) UpdateWorkers(total, active int) {
	if !m.enabled {
		return
	}
	m.workerCount.Set(float64(total))
	m.workerActiveCount.Set(float64(active))
	m.workerIdleCount.Set(float64(total - active))
}

// RecordWorkerProcessingLatency records the worker time of one job.
func (m *Manager) RecordWorkerProcessingLatency(latencyMs float64) {
	if m.enabled {
		m.workerProcessingLatency.Observe(latencyMs)
	}
}

// RecordWorkerError counts a worker failure.
func (m *Manager) RecordWorkerError() {
	if m.enabled {
		m.workerErrors.Inc()
	}
}

// RecordErrorByComponent records an error with component and type labels.
func (m *Manager) RecordErrorByComponent(component, errorType string) {
	if m.enabled {
		m.errorsByComponent.WithLabelValues(component, errorType).Inc()
	}
}

// Global helpers delegate to the process-wide manager.

// RecordChartSubmitted counts an accepted chart.
func RecordChartSubmitted() { globalManager.RecordChartSubmitted() }

// RecordChartDuplicate counts a dropped duplicate.
func RecordChartDuplicate() { globalManager.RecordChartDuplicate() }

// RecordCalculation records a completed calculation.
func RecordCalculation(latencyMs float64, objects int) {
	globalManager.RecordCalculation(latencyMs, objects)
}

// RecordCalculationError counts a failed calculation.
func RecordCalculationError() { globalManager.RecordCalculationError() }

// RecordSkill records one skill pass.
func RecordSkill(skill string, latencyMs, rating float64) {
	globalManager.RecordSkill(skill, latencyMs, rating)
}

// UpdateRankedCharts sets the ranking size.
func UpdateRankedCharts(count int) { globalManager.UpdateRankedCharts(count) }

// RecordRepositoryUpdateLatency records a ranking update.
func RecordRepositoryUpdateLatency(latencyMs float64) {
	globalManager.RecordRepositoryUpdateLatency(latencyMs)
}

// RecordRepositoryQueryLatency records a ranking query.
func RecordRepositoryQueryLatency(latencyMs float64) {
	globalManager.RecordRepositoryQueryLatency(latencyMs)
}

// UpdateQueue sets the queue gauges.
func UpdateQueue(size, capacity int) { globalManager.UpdateQueue(size, capacity) }

// RecordQueueEnqueue counts an enqueue.
func RecordQueueEnqueue() { globalManager.RecordQueueEnqueue() }

// RecordQueueDequeue counts a dequeue.
func RecordQueueDequeue() { globalManager.RecordQueueDequeue() }

// RecordQueueEnqueueError counts a rejected enqueue.
func RecordQueueEnqueueError() { globalManager.RecordQueueEnqueueError() }

// RecordQueueProcessingLatency records enqueue-to-done latency.
func RecordQueueProcessingLatency(latencyMs float64) {
	globalManager.RecordQueueProcessingLatency(latencyMs)
}

// UpdateWorkers sets the worker gauges.
func UpdateWorkers(total, active int) { globalManager.UpdateWorkers(total, active) }

// RecordWorkerProcessingLatency records the worker time of one job.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.RecordWorkerProcessingLatency(latencyMs)
}

// RecordWorkerError counts a worker failure.
func RecordWorkerError() { globalManager.RecordWorkerError() }

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.RecordErrorByComponent(component, errorType)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
