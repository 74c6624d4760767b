package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PortalMetrics holds all Prometheus metrics for the broker portal.
type PortalMetrics struct {
	LeadsStored          prometheus.Gauge
	LeadMutations        *prometheus.CounterVec
	PermissionDenials    *prometheus.CounterVec
	SnapshotLoadFailures prometheus.Counter
	UploadsTotal         *prometheus.CounterVec
	UploadBytesTotal     prometheus.Counter
	APIKeyCacheHits      prometheus.Counter
	APIKeyCacheMisses    prometheus.Counter
}

// NewPortalMetrics initializes the metrics and registers them with reg.
// Pass prometheus.DefaultRegisterer in production and a fresh registry in tests.
func NewPortalMetrics(reg prometheus.Registerer) *PortalMetrics {
	factory := promauto.With(reg)
	return &PortalMetrics{
		LeadsStored: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "brokerdesk",
			Subsystem: "leads",
			Name:      "stored",
			Help:      "Number of leads currently held in the shared store.",
		}),
		LeadMutations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "brokerdesk",
			Subsystem: "leads",
			Name:      "mutations_total",
			Help:      "Total number of lead mutations by operation and outcome.",
		}, []string{"op", "outcome"}), // op: create, update, delete; outcome: ok, denied, not_found, invalid, error
		PermissionDenials: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "brokerdesk",
			Subsystem: "leads",
			Name:      "permission_denials_total",
			Help:      "Total number of mutations rejected by the ownership policy.",
		}, []string{"op"}),
		SnapshotLoadFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "brokerdesk",
			Subsystem: "leads",
			Name:      "snapshot_load_failures_total",
			Help:      "Total number of times the persisted lead collection could not be decoded.",
		}),
		UploadsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "brokerdesk",
			Subsystem: "uploads",
			Name:      "total",
			Help:      "Total number of file uploads by status.",
		}, []string{"status"}), // status: ok, too_large, error
		UploadBytesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "brokerdesk",
			Subsystem: "uploads",
			Name:      "bytes_total",
			Help:      "Total number of bytes uploaded.",
		}),
		APIKeyCacheHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "brokerdesk",
			Subsystem: "auth",
			Name:      "api_key_cache_hits_total",
			Help:      "Total number of API key cache hits.",
		}),
		APIKeyCacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "brokerdesk",
			Subsystem: "auth",
			Name:      "api_key_cache_misses_total",
			Help:      "Total number of API key cache misses.",
		}),
	}
}
