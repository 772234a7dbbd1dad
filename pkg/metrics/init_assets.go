package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initAssetMetrics() {
	r.AssetsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "mvdecrypt_assets_total",
			Help: "Total number of assets handled",
		},
		[]string{"mode", "status"},
	)

	r.AssetBytesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "mvdecrypt_asset_bytes_total",
			Help: "Total bytes written for processed assets",
		},
		[]string{"mode"},
	)

	r.AssetDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mvdecrypt_asset_duration_seconds",
			Help:    "Time to read, transform and write one asset",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
		},
		[]string{"mode"},
	)

	r.KeyRecoveriesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "mvdecrypt_key_recoveries_total",
			Help: "Project keys resolved, by source",
		},
		[]string{"source"},
	)

	r.BatchInFlight = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "mvdecrypt_batch_in_flight",
			Help: "Assets currently being processed",
		},
	)

	r.BatchRunsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "mvdecrypt_batch_runs_total",
			Help: "Batch runs, by mode and outcome",
		},
		[]string{"mode", "status"},
	)
}
