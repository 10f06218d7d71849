package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels shared by rpc and pubsub recorders.
const (
	OutcomeOK          = "ok"
	OutcomeConnection  = "connection"
	OutcomeApplication = "application"
	OutcomeDecode      = "decode"
)

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "colonies",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests served.",
		},
		[]string{"node", "method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "colonies",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"node", "method", "path", "status"},
	)
	rpcRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "colonies",
			Subsystem: "rpc",
			Name:      "requests_total",
			Help:      "Signed envelope requests sent by the client.",
		},
		[]string{"payloadtype", "outcome"},
	)
	rpcDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "colonies",
			Subsystem: "rpc",
			Name:      "request_duration_seconds",
			Help:      "Signed envelope round trip duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"payloadtype", "outcome"},
	)
	pubsubSessions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "colonies",
			Subsystem: "pubsub",
			Name:      "sessions_total",
			Help:      "Streaming subscription sessions by termination.",
		},
		[]string{"payloadtype", "termination"},
	)
	pubsubBatches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "colonies",
			Subsystem: "pubsub",
			Name:      "batches_total",
			Help:      "Non-empty batches delivered to subscription consumers.",
		},
		[]string{"payloadtype"},
	)
	executorProcesses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "colonies",
			Subsystem: "executor",
			Name:      "processes_total",
			Help:      "Processes handled by the executor runtime.",
		},
		[]string{"funcname", "result"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			httpRequests, httpDuration,
			rpcRequests, rpcDuration,
			pubsubSessions, pubsubBatches,
			executorProcesses,
		)
	})
}

func RecordHTTPRequest(node, method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(node, method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(node, method, path, statusLabel).Observe(duration.Seconds())
}

func RecordRPCRequest(payloadType, outcome string, duration time.Duration) {
	RegisterMetrics()
	rpcRequests.WithLabelValues(payloadType, outcome).Inc()
	rpcDuration.WithLabelValues(payloadType, outcome).Observe(duration.Seconds())
}

func RecordPubSubSession(payloadType, termination string) {
	RegisterMetrics()
	pubsubSessions.WithLabelValues(payloadType, termination).Inc()
}

func RecordPubSubBatch(payloadType string) {
	RegisterMetrics()
	pubsubBatches.WithLabelValues(payloadType).Inc()
}

func RecordExecutorProcess(funcName string, success bool) {
	RegisterMetrics()
	result := "failed"
	if success {
		result = "success"
	}
	executorProcesses.WithLabelValues(funcName, result).Inc()
}
