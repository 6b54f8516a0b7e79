package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
)

var (
	analyzerAttemptsTotal    atomic.Uint64
	analyzerQuotaAbortsTotal atomic.Uint64

	extractionTotal         atomic.Uint64
	extractionFallbackTotal atomic.Uint64
	extractionFailedTotal   atomic.Uint64

	jobsReceivedTotal  atomic.Uint64
	jobsCompletedTotal atomic.Uint64
	jobsFailedTotal    atomic.Uint64
	jobsDroppedTotal   atomic.Uint64

	emotionStageHits = newLabeledCounter()

	extractionDuration = newHistogram([]float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000})
)

// IncAnalyzerAttempts counts one provider call.
func IncAnalyzerAttempts() { analyzerAttemptsTotal.Add(1) }

// IncAnalyzerQuotaAborts counts a quota refusal that stopped retries.
func IncAnalyzerQuotaAborts() { analyzerQuotaAbortsTotal.Add(1) }

// IncExtraction counts a pipeline invocation.
func IncExtraction() { extractionTotal.Add(1) }

// IncExtractionFallback counts a record produced by heuristics.
func IncExtractionFallback() { extractionFallbackTotal.Add(1) }

// IncExtractionFailed counts a pipeline failure.
func IncExtractionFailed() { extractionFailedTotal.Add(1) }

// IncJobsReceived increments the worker received counter.
func IncJobsReceived() { jobsReceivedTotal.Add(1) }

// IncJobsCompleted increments the worker completed counter.
func IncJobsCompleted() { jobsCompletedTotal.Add(1) }

// IncJobsFailed increments the worker failed counter.
func IncJobsFailed() { jobsFailedTotal.Add(1) }

// IncJobsDropped counts messages deleted as unrecoverable.
func IncJobsDropped() { jobsDroppedTotal.Add(1) }

// IncEmotionStage counts a detector stage that produced the result.
func IncEmotionStage(stage string) { emotionStageHits.Inc(stage) }

// ObserveExtractionDurationMs records a pipeline duration in milliseconds.
func ObserveExtractionDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	extractionDuration.Observe(value)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "analyzer_attempts_total", "Total model provider calls", analyzerAttemptsTotal.Load())
	writeCounter(&buf, "analyzer_quota_aborts_total", "Provider calls stopped by quota errors", analyzerQuotaAbortsTotal.Load())
	writeCounter(&buf, "extraction_total", "Total extraction pipeline runs", extractionTotal.Load())
	writeCounter(&buf, "extraction_fallback_total", "Records produced by heuristic fallback", extractionFallbackTotal.Load())
	writeCounter(&buf, "extraction_failed_total", "Extraction pipeline failures", extractionFailedTotal.Load())
	writeCounter(&buf, "worker_jobs_received_total", "Queue jobs received", jobsReceivedTotal.Load())
	writeCounter(&buf, "worker_jobs_completed_total", "Queue jobs completed", jobsCompletedTotal.Load())
	writeCounter(&buf, "worker_jobs_failed_total", "Queue jobs failed", jobsFailedTotal.Load())
	writeCounter(&buf, "worker_jobs_dropped_total", "Queue jobs deleted as unrecoverable", jobsDroppedTotal.Load())
	writeLabeledCounter(&buf, "emotion_stage_hits_total", "Detector stage that produced faces", "stage", emotionStageHits.Snapshot())
	writeHistogram(&buf, "extraction_duration_ms", "Extraction duration in milliseconds", extractionDuration.Snapshot())
	return buf.String()
}

type labeledCounter struct {
	mu     sync.Mutex
	values map[string]uint64
}

func newLabeledCounter() *labeledCounter {
	return &labeledCounter{values: make(map[string]uint64)}
}

func (l *labeledCounter) Inc(label string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.values[label]++
}

func (l *labeledCounter) Snapshot() map[string]uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[string]uint64, len(l.values))
	for k, v := range l.values {
		out[k] = v
	}
	return out
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

// Observe records value in the first bucket whose bound it does not exceed.
func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
			return
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeLabeledCounter(buf *bytes.Buffer, name, help, label string, values map[string]uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(buf, "%s{%s=%q} %d\n", name, label, k, values[k])
	}
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}

// Since returns milliseconds elapsed since start.
func Since(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000.0
}
