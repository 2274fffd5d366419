package metrics

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

type Outcome string

const (
	Success                  Outcome       = "success"
	Error                    Outcome       = "error"
	MetricRequestTimeout     time.Duration = 5 * time.Second
	MetricRequestIdleTimeout time.Duration = 10 * time.Second
)

func (O Outcome) String() string {
	return string(O)
}

// Round outcomes used as the round processing histogram label.
const (
	RoundOutcomeConsensus   = "consensus"
	RoundOutcomeNoConsensus = "no_consensus"
	RoundOutcomeError       = "error"
)

// Attestation intake outcomes.
const (
	AttestationAccepted           = "accepted"
	AttestationRejected           = "rejected"
	AttestationSchemaIncompatible = "schema_incompatible"
)

// Price validation results. Bypassed counts requests for pools whose oracle
// is disabled.
const (
	ValidationAllowed  = "allowed"
	ValidationDenied   = "denied"
	ValidationBypassed = "bypassed"
)

var (
	once                        sync.Once
	metricsRouter               *chi.Mux
	queueSendErrorCounter       prometheus.Counter
	pollerDurationHistogram     *prometheus.HistogramVec
	roundProcessingDuration     *prometheus.HistogramVec
	attestationsConsumedCounter *prometheus.CounterVec
	priceValidationCounter      *prometheus.CounterVec
	manipulationSuspicionGauge  *prometheus.GaugeVec
	manipulationFindingsCounter prometheus.Counter
	staleSnapshotsGauge         prometheus.Gauge
	dbLatency                   *prometheus.HistogramVec
)

// Init initializes the metrics package.
func Init(metricsPort int) {
	once.Do(func() {
		initMetricsRouter(metricsPort)
		registerMetrics()
	})
}

// initMetricsRouter initializes the metrics router.
func initMetricsRouter(metricsPort int) {
	metricsRouter = chi.NewRouter()
	metricsRouter.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})
	// Create a custom server with timeout settings
	metricsAddr := fmt.Sprintf(":%d", metricsPort)
	server := &http.Server{
		Addr:         metricsAddr,
		Handler:      metricsRouter,
		ReadTimeout:  MetricRequestTimeout,
		WriteTimeout: MetricRequestTimeout,
		IdleTimeout:  MetricRequestIdleTimeout,
	}

	// Start the server in a separate goroutine
	go func() {
		log.Printf("Starting metrics server on %s", metricsAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msgf("Error starting metrics server on %s", metricsAddr)
		}
	}()
}

// registerMetrics initializes and register the Prometheus metrics.
func registerMetrics() {
	defaultHistogramBucketsSeconds := []float64{0.1, 0.5, 1, 2.5, 5, 10, 30}

	// add a counter for the number of errors from the fail to push message into queue
	queueSendErrorCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "queue_send_error_count",
			Help: "The total number of errors when sending messages to the queue",
		},
	)

	pollerDurationHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "poller_duration_seconds",
			Help:    "Histogram of poller durations in seconds.",
			Buckets: defaultHistogramBucketsSeconds,
		},
		[]string{"type", "status"},
	)

	roundProcessingDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "consensus_round_duration_seconds",
			Help:    "Per-pool consensus round duration in seconds.",
			Buckets: defaultHistogramBucketsSeconds,
		},
		[]string{"outcome"},
	)

	attestationsConsumedCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "attestations_consumed_total",
			Help: "Number of attestation messages consumed from the queue",
		},
		[]string{"status"},
	)

	priceValidationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "price_validations_total",
			Help: "Number of price validation requests split by result",
		},
		[]string{"result"},
	)

	manipulationSuspicionGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "manipulation_suspicion_level",
			Help: "Latest manipulation suspicion level per pool, in basis points",
		},
		[]string{"pool_id"},
	)

	manipulationFindingsCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "manipulation_findings_count",
			Help: "Number of manipulation findings raised by the scan",
		},
	)

	staleSnapshotsGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "stale_snapshots_count",
			Help: "Number of snapshots marked stale by the last sweep",
		},
	)

	dbLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "db_latency_seconds",
			Help: "DB latency in seconds splitted by method and execution status",
		},
		[]string{"method", "status"},
	)

	prometheus.MustRegister(
		queueSendErrorCounter,
		pollerDurationHistogram,
		roundProcessingDuration,
		attestationsConsumedCounter,
		priceValidationCounter,
		manipulationSuspicionGauge,
		manipulationFindingsCounter,
		staleSnapshotsGauge,
		dbLatency,
	)
}

func RecordDbLatency(d time.Duration, method string, failure bool) {
	status := Success
	if failure {
		status = Error
	}

	dbLatency.WithLabelValues(method, status.String()).Observe(d.Seconds())
}

func RecordConsensusRound(d time.Duration, outcome string) {
	roundProcessingDuration.WithLabelValues(outcome).Observe(d.Seconds())
}

func IncAttestationsConsumed(status string) {
	attestationsConsumedCounter.WithLabelValues(status).Inc()
}

func RecordPriceValidation(result string) {
	priceValidationCounter.WithLabelValues(result).Inc()
}

func RecordManipulationSuspicion(poolID string, level uint64) {
	manipulationSuspicionGauge.WithLabelValues(poolID).Set(float64(level))
}

func IncManipulationFindings() {
	manipulationFindingsCounter.Inc()
}

func RecordStaleSnapshotsCount(count int) {
	staleSnapshotsGauge.Set(float64(count))
}

func RecordQueueSendError() {
	queueSendErrorCounter.Inc()
}
