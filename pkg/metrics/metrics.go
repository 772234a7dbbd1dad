package metrics

import (
	"fmt"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// RecordAsset records the outcome of one asset
func (r *Registry) RecordAsset(mode, status string, bytes int, duration time.Duration) {
	r.AssetsTotal.WithLabelValues(mode, status).Inc()
	if status == StatusSuccess {
		r.AssetBytesTotal.WithLabelValues(mode).Add(float64(bytes))
		r.AssetDuration.WithLabelValues(mode).Observe(duration.Seconds())
	}
}

// RecordKeyRecovery records where a project key came from
func (r *Registry) RecordKeyRecovery(source string) {
	r.KeyRecoveriesTotal.WithLabelValues(source).Inc()
}

// RecordBatch records a finished batch run
func (r *Registry) RecordBatch(mode string, failed int) {
	status := StatusSuccess
	if failed > 0 {
		status = StatusError
	}
	r.BatchRunsTotal.WithLabelValues(mode, status).Inc()
}

// UpdateSystemMetrics refreshes process gauges
func (r *Registry) UpdateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	r.UptimeSeconds.Set(time.Since(r.started).Seconds())
	r.GoRoutines.Set(float64(runtime.NumGoroutine()))
	r.MemoryAllocBytes.Set(float64(m.Alloc))
}

// WriteTextfile dumps every metric in the Prometheus text format, for the
// node_exporter textfile collector
func (r *Registry) WriteTextfile(path string) error {
	r.UpdateSystemMetrics()
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}
