package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "lazctl"

// Command outcomes used as the outcome label.
const (
	OutcomeOK       = "ok"
	OutcomeChannel  = "channel"
	OutcomeProtocol = "protocol"
	OutcomeDecode   = "decode"
	OutcomeTimeout  = "timeout"
	OutcomeInvalid  = "invalid"
)

var (
	registerOnce sync.Once

	commandsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dispatch",
			Name:      "commands_total",
			Help:      "Commands sent to the host by kind and outcome.",
		},
		[]string{"kind", "command", "outcome"},
	)
	queryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "dispatch",
			Name:      "query_duration_seconds",
			Help:      "Time from query send to resolved reply.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"command", "outcome"},
	)
	staleReplies = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dispatch",
			Name:      "stale_replies_total",
			Help:      "Host frames discarded because no pending query matched them.",
		},
		[]string{"reason"},
	)
	channelState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "dispatch",
			Name:      "channel_state",
			Help:      "1 for the channel's current state, 0 otherwise.",
		},
		[]string{"state"},
	)
	resyncs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dispatch",
			Name:      "resyncs_total",
			Help:      "Resync and reconnect attempts after a degraded channel.",
		},
		[]string{"op", "success"},
	)
	hostCommands = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "simhost",
			Name:      "commands_total",
			Help:      "Commands handled by the stub host.",
		},
		[]string{"command", "outcome"},
	)
	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"component", "method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"component", "method", "path", "status"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			commandsTotal, queryDuration, staleReplies, channelState, resyncs,
			hostCommands, httpRequests, httpDuration,
		)
	})
}

// RecordCommand counts one dispatched command. kind is "action" or "query".
func RecordCommand(kind, command, outcome string) {
	RegisterMetrics()
	commandsTotal.WithLabelValues(kind, command, outcome).Inc()
}

func RecordQueryDuration(command, outcome string, duration time.Duration) {
	RegisterMetrics()
	queryDuration.WithLabelValues(command, outcome).Observe(duration.Seconds())
}

func RecordStaleReply(reason string) {
	RegisterMetrics()
	staleReplies.WithLabelValues(reason).Inc()
}

// SetChannelState marks state as current among states.
func SetChannelState(state string, states ...string) {
	RegisterMetrics()
	for _, s := range states {
		channelState.WithLabelValues(s).Set(0)
	}
	channelState.WithLabelValues(state).Set(1)
}

func RecordResync(op string, success bool) {
	RegisterMetrics()
	resyncs.WithLabelValues(op, strconv.FormatBool(success)).Inc()
}

func RecordHostCommand(command, outcome string) {
	RegisterMetrics()
	hostCommands.WithLabelValues(command, outcome).Inc()
}

func RecordHTTPRequest(component, method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(component, method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(component, method, path, statusLabel).Observe(duration.Seconds())
}
