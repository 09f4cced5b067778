package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Manager struct {
	// counters
	CounterRequests             *prometheus.CounterVec
	CounterHandleRequestPanic   prometheus.Counter
	CounterRateLimitedRequests  prometheus.Counter
	CounterTrainings            *prometheus.CounterVec
	CounterAuthEvents           *prometheus.CounterVec
	CounterDocumentWrites       *prometheus.CounterVec
	CounterDocumentWriteRetries prometheus.Counter
	CounterDocumentsBackedUp    prometheus.Counter

	// gauges
	GaugeRequests        prometheus.Gauge
	GaugeLifeSignal      prometheus.Gauge
	GaugeOpenNotebooks   prometheus.Gauge
	GaugeLiveSubscribers prometheus.Gauge

	// histograms
	HistBackupDuration        prometheus.Histogram
	HistDocumentWriteDuration prometheus.Histogram
	HistogramRequestDuration  *prometheus.HistogramVec
}

func NewTestManager() *Manager {
	return NewManager("trainings", "test_server", prometheus.NewRegistry())
}

func NewTestManagerAndRegistry() (*Manager, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return NewManager("trainings", "test_server", reg), reg
}

func NewManager(namespace, subsystem string, reg prometheus.Registerer) *Manager {
	factory := promauto.With(reg)

	counterRequests := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "request",
		Help:      "The total number of incoming requests",
	}, []string{"method", "status"})
	counterHandleRequestPanic := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "handle_request_panic",
		Help:      "The total number of serve request panics",
	})
	counterRateLimitedRequests := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "rate_limited_requests",
		Help:      "The total number of rate limited requests",
	})
	counterTrainings := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "trainings",
		Help:      "The total number of training record mutations",
	}, []string{"op"})
	counterAuthEvents := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "auth_events",
		Help:      "The total number of auth events",
	}, []string{"event", "result"})
	counterDocumentWrites := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "document_writes",
		Help:      "The total number of notebook document writes",
	}, []string{"result"})
	counterDocumentWriteRetries := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "document_write_retries",
		Help:      "The total number of retried notebook document writes",
	})
	counterDocumentsBackedUp := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "documents_backed_up",
		Help:      "Number of notebook documents backed up",
	})

	gaugeRequests := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "current_requests",
		Help:      "Current number of requests served",
	})
	gaugeLifeSignal := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "life_signal",
		Help:      "Shows whether the service is alive",
	})
	gaugeOpenNotebooks := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "open_notebooks",
		Help:      "Current number of open user notebooks",
	})
	gaugeLiveSubscribers := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "live_subscribers",
		Help:      "Current number of clients following document changes",
	})

	histBackupDuration := factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Buckets: []float64{
			0.01, 0.1, 1, 10,
			60, 120, 240, 480, 1000,
		},
		Name: "backup_duration_seconds",
		Help: "Total duration of a single documents backup in seconds",
	})
	histDocumentWriteDuration := factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "document_write_duration_seconds",
		Help:      "Duration of notebook document writes, retries included",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
	})
	histogramRequestDuration := factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "request_duration_seconds",
		Help:      "Histogram of response time for requests in seconds",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
	}, []string{"route", "method", "status_code"})

	return &Manager{
		CounterRequests:             counterRequests,
		CounterHandleRequestPanic:   counterHandleRequestPanic,
		CounterRateLimitedRequests:  counterRateLimitedRequests,
		CounterTrainings:            counterTrainings,
		CounterAuthEvents:           counterAuthEvents,
		CounterDocumentWrites:       counterDocumentWrites,
		CounterDocumentWriteRetries: counterDocumentWriteRetries,
		CounterDocumentsBackedUp:    counterDocumentsBackedUp,
		GaugeRequests:               gaugeRequests,
		GaugeLifeSignal:             gaugeLifeSignal,
		GaugeOpenNotebooks:          gaugeOpenNotebooks,
		GaugeLiveSubscribers:        gaugeLiveSubscribers,
		HistBackupDuration:          histBackupDuration,
		HistDocumentWriteDuration:   histDocumentWriteDuration,
		HistogramRequestDuration:    histogramRequestDuration,
	}
}
