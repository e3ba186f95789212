package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
)

type counter struct {
	name string
	help string
	v    atomic.Uint64
}

var (
	uploadsAccepted  = &counter{name: "uploads_accepted_total", help: "Files stored by upload requests"}
	uploadsRejected  = &counter{name: "uploads_rejected_total", help: "Upload batches rejected"}
	uploadsDeleted   = &counter{name: "uploads_deleted_total", help: "Uploaded files deleted"}
	exportsCompleted = &counter{name: "exports_completed_total", help: "Exports published"}
	exportsFailed    = &counter{name: "exports_failed_total", help: "Exports that failed"}
	exportsDeleted   = &counter{name: "exports_deleted_total", help: "Exported files deleted"}
	holidaysAdded    = &counter{name: "holidays_added_total", help: "Public holidays added"}
	holidaysDeleted  = &counter{name: "holidays_deleted_total", help: "Public holidays deleted"}

	// Render order.
	counters = []*counter{
		uploadsAccepted, uploadsRejected, uploadsDeleted,
		exportsCompleted, exportsFailed, exportsDeleted,
		holidaysAdded, holidaysDeleted,
	}

	exportDuration = newHistogram([]float64{50, 100, 250, 500, 1000, 2500, 5000, 10000})
)

// AddUploadsAccepted counts files stored by a successful upload batch.
func AddUploadsAccepted(n int) {
	if n > 0 {
		uploadsAccepted.v.Add(uint64(n))
	}
}

// IncUploadsRejected counts a rejected upload batch.
func IncUploadsRejected() {
	uploadsRejected.v.Add(1)
}

func IncExportCompleted() {
	exportsCompleted.v.Add(1)
}

func IncExportFailed() {
	exportsFailed.v.Add(1)
}

// IncArtifactDeleted counts a deletion by artifact kind ("upload" or "export").
func IncArtifactDeleted(kind string) {
	switch kind {
	case "upload":
		uploadsDeleted.v.Add(1)
	case "export":
		exportsDeleted.v.Add(1)
	}
}

func IncHolidayAdded() {
	holidaysAdded.v.Add(1)
}

func IncHolidayDeleted() {
	holidaysDeleted.v.Add(1)
}

// ObserveExportDuration records how long an export took.
func ObserveExportDuration(d time.Duration) {
	ms := float64(d) / float64(time.Millisecond)
	if ms < 0 {
		ms = 0
	}
	exportDuration.Observe(ms)
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
	for _, c := range counters {
		writeCounter(&buf, c.name, c.help, c.v.Load())
	}
	writeHistogram(&buf, "export_duration_ms", "Export duration in milliseconds", exportDuration.Snapshot())
	return buf.String()
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

func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
	return out
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	// counts are already cumulative per bound.
	for i, bound := range snap.buckets {
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), snap.counts[i])
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
