package monitoring

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

const maxResponseSamples = 1000

// Metrics holds application metrics
type Metrics struct {
	RequestCount      int64
	ErrorCount        int64
	SGPACalculations  int64
	CGPACalculations  int64
	RejectedInputs    int64
	ReportsGenerated  int64
	RateLimitIPBlocks int64
	StartTime         time.Time

	responseTimes      []time.Duration
	responseTimesMutex sync.RWMutex

	requestCountByStatus map[int]int64
	statusMutex          sync.RWMutex
}

// NewMetrics creates a new metrics instance
func NewMetrics() *Metrics {
	return &Metrics{
		StartTime:            time.Now(),
		responseTimes:        make([]time.Duration, 0, maxResponseSamples),
		requestCountByStatus: make(map[int]int64),
	}
}

// IncrementRequest increments the request count
func (m *Metrics) IncrementRequest() {
	atomic.AddInt64(&m.RequestCount, 1)
}

// IncrementError increments the error count
func (m *Metrics) IncrementError() {
	atomic.AddInt64(&m.ErrorCount, 1)
}

// RecordCalculation counts a successful calculation of the given kind ("sgpa" or "cgpa")
func (m *Metrics) RecordCalculation(kind string) {
	switch kind {
	case "sgpa":
		atomic.AddInt64(&m.SGPACalculations, 1)
	case "cgpa":
		atomic.AddInt64(&m.CGPACalculations, 1)
	}
}

// IncrementRejected counts inputs refused by validation or the core
func (m *Metrics) IncrementRejected() {
	atomic.AddInt64(&m.RejectedInputs, 1)
}

// IncrementReports counts exported report documents
func (m *Metrics) IncrementReports() {
	atomic.AddInt64(&m.ReportsGenerated, 1)
}

// IncrementRateLimitIPBlock increments IP-based rate limit blocks
func (m *Metrics) IncrementRateLimitIPBlock() {
	atomic.AddInt64(&m.RateLimitIPBlocks, 1)
}

// RecordResponseTime keeps the last maxResponseSamples durations for percentiles
func (m *Metrics) RecordResponseTime(duration time.Duration) {
	m.responseTimesMutex.Lock()
	defer m.responseTimesMutex.Unlock()

	m.responseTimes = append(m.responseTimes, duration)
	if len(m.responseTimes) > maxResponseSamples {
		m.responseTimes = m.responseTimes[1:]
	}
}

// RecordRequestByStatus records request count by HTTP status code
func (m *Metrics) RecordRequestByStatus(statusCode int) {
	m.statusMutex.Lock()
	defer m.statusMutex.Unlock()
	m.requestCountByStatus[statusCode]++
}

// GetPercentileResponseTime calculates percentile response time
func (m *Metrics) GetPercentileResponseTime(percentile float64) time.Duration {
	m.responseTimesMutex.RLock()
	times := make([]time.Duration, len(m.responseTimes))
	copy(times, m.responseTimes)
	m.responseTimesMutex.RUnlock()

	if len(times) == 0 {
		return 0
	}

	sort.Slice(times, func(i, j int) bool {
		return times[i] < times[j]
	})

	index := int(float64(len(times)-1) * percentile / 100.0)
	if index >= len(times) {
		index = len(times) - 1
	}
	return times[index]
}

// GetStatusCodeDistribution returns request count by status code
func (m *Metrics) GetStatusCodeDistribution() map[int]int64 {
	m.statusMutex.RLock()
	defer m.statusMutex.RUnlock()

	distribution := make(map[int]int64, len(m.requestCountByStatus))
	for code, count := range m.requestCountByStatus {
		distribution[code] = count
	}
	return distribution
}

// GetStats returns current metrics statistics
func (m *Metrics) GetStats() map[string]interface{} {
	requests := atomic.LoadInt64(&m.RequestCount)
	errors := atomic.LoadInt64(&m.ErrorCount)

	errorRate := float64(0)
	if requests > 0 {
		errorRate = float64(errors) / float64(requests) * 100
	}

	return map[string]interface{}{
		"uptime_seconds":           time.Since(m.StartTime).Seconds(),
		"start_time":               m.StartTime.Format(time.RFC3339),
		"total_requests":           requests,
		"error_count":              errors,
		"error_rate_percent":       errorRate,
		"sgpa_calculations":        atomic.LoadInt64(&m.SGPACalculations),
		"cgpa_calculations":        atomic.LoadInt64(&m.CGPACalculations),
		"rejected_inputs":          atomic.LoadInt64(&m.RejectedInputs),
		"reports_generated":        atomic.LoadInt64(&m.ReportsGenerated),
		"rate_limit_ip_blocks":     atomic.LoadInt64(&m.RateLimitIPBlocks),
		"p50_response_time_ms":     float64(m.GetPercentileResponseTime(50)) / 1e6,
		"p95_response_time_ms":     float64(m.GetPercentileResponseTime(95)) / 1e6,
		"p99_response_time_ms":     float64(m.GetPercentileResponseTime(99)) / 1e6,
		"status_code_distribution": m.GetStatusCodeDistribution(),
	}
}

// Reset resets all metrics (useful for testing)
func (m *Metrics) Reset() {
	atomic.StoreInt64(&m.RequestCount, 0)
	atomic.StoreInt64(&m.ErrorCount, 0)
	atomic.StoreInt64(&m.SGPACalculations, 0)
	atomic.StoreInt64(&m.CGPACalculations, 0)
	atomic.StoreInt64(&m.RejectedInputs, 0)
	atomic.StoreInt64(&m.ReportsGenerated, 0)
	atomic.StoreInt64(&m.RateLimitIPBlocks, 0)

	m.responseTimesMutex.Lock()
	m.responseTimes = m.responseTimes[:0]
	m.responseTimesMutex.Unlock()

	m.statusMutex.Lock()
	m.requestCountByStatus = make(map[int]int64)
	m.statusMutex.Unlock()

	m.StartTime = time.Now()
}
