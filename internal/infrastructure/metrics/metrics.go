package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Document metrics
	DocumentsUpserted *prometheus.CounterVec
	DocumentsVoided   *prometheus.CounterVec

	// Receipt metrics
	ReceiptsCreated prometheus.Counter
	ReceiptsVoided  prometheus.Counter
	ReceiptAmount   prometheus.Histogram

	// Allocation metrics
	AllocationsApplied *prometheus.CounterVec
	AllocationAmount   prometheus.Histogram
	ManualBatches      *prometheus.CounterVec

	// Numbering metrics
	SequenceNumbersIssued prometheus.Counter

	// Operation metrics
	OperationDuration *prometheus.HistogramVec
	OperationErrors   *prometheus.CounterVec
	TxRetries         *prometheus.CounterVec

	// Consistency metrics
	ConsistencyIssues prometheus.Gauge

	// Outbox metrics
	OutboxPublished prometheus.Counter
	OutboxFailures  prometheus.Counter

	// Rate limiting metrics
	RateLimitHits *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics on the default registry.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer creates the metrics on reg.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		DocumentsUpserted: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payledger_documents_upserted_total",
				Help: "Ledger documents upserted by kind and result",
			},
			[]string{"kind", "result"},
		),
		DocumentsVoided: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payledger_documents_voided_total",
				Help: "Ledger documents voided by kind",
			},
			[]string{"kind"},
		),

		ReceiptsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "payledger_receipts_created_total",
			Help: "Total number of receipts created",
		}),
		ReceiptsVoided: f.NewCounter(prometheus.CounterOpts{
			Name: "payledger_receipts_voided_total",
			Help: "Total number of receipts voided",
		}),
		ReceiptAmount: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "payledger_receipt_total_base",
			Help:    "Receipt totals in base currency",
			Buckets: []float64{1, 10, 100, 1000, 10000, 100000, 1000000},
		}),

		AllocationsApplied: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payledger_allocations_applied_total",
				Help: "Allocations written by entry path",
			},
			[]string{"path"},
		),
		AllocationAmount: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "payledger_allocation_amount_base",
			Help:    "Allocation amounts in base currency",
			Buckets: []float64{1, 10, 100, 1000, 10000, 100000, 1000000},
		}),
		ManualBatches: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payledger_manual_batches_total",
				Help: "Manual allocation batches by outcome",
			},
			[]string{"outcome"},
		),

		SequenceNumbersIssued: f.NewCounter(prometheus.CounterOpts{
			Name: "payledger_sequence_numbers_issued_total",
			Help: "Total numbers issued by numbering sequences",
		}),

		OperationDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "payledger_operation_duration_seconds",
				Help:    "Duration of ledger operations",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		OperationErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payledger_operation_errors_total",
				Help: "Ledger operation errors by type",
			},
			[]string{"operation", "error_type"},
		),
		TxRetries: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payledger_tx_retries_total",
				Help: "Transactions re-run after a transient store conflict, by SQLSTATE",
			},
			[]string{"sqlstate"},
		),

		ConsistencyIssues: f.NewGauge(prometheus.GaugeOpts{
			Name: "payledger_consistency_issues",
			Help: "Documents failing the last consistency check",
		}),

		OutboxPublished: f.NewCounter(prometheus.CounterOpts{
			Name: "payledger_outbox_published_total",
			Help: "Outbox events published",
		}),
		OutboxFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "payledger_outbox_failures_total",
			Help: "Outbox events that failed to publish",
		}),

		RateLimitHits: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payledger_rate_limit_hits_total",
				Help: "Total rate limit hits",
			},
			[]string{"ip"},
		),
	}
}

// ObserveOperation records duration and, when errType is not empty, an error.
// It is safe to call on a nil *Metrics.
func (m *Metrics) ObserveOperation(operation string, start time.Time, errType string) {
	if m == nil {
		return
	}
	m.OperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	if errType != "" {
		m.OperationErrors.WithLabelValues(operation, errType).Inc()
	}
}
