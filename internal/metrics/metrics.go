// Package metrics exposes RAPTOR's prometheus instrumentation. Grounded
// on the teacher's internal/bot/metrics.go: package-level promauto
// collectors plus small Record*/Update* helpers so call sites never touch
// label construction directly.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ============ Detection and scoring ============

// CreateEventsDetected counts decoded launchpad create-events by source.
var CreateEventsDetected = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "raptor",
		Subsystem: "monitor",
		Name:      "create_events_detected_total",
		Help:      "Total number of decoded create-events",
	},
	[]string{"source"},
)

// OpportunityScore observes the score distribution assigned by the
// opportunity engine.
var OpportunityScore = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: "raptor",
		Subsystem: "opportunity",
		Name:      "score",
		Help:      "Distribution of opportunity scores",
		Buckets:   []float64{0, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
	},
)

// OpportunitiesProcessed counts opportunities by terminal status.
var OpportunitiesProcessed = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "raptor",
		Subsystem: "opportunity",
		Name:      "processed_total",
		Help:      "Total opportunities processed by terminal status",
	},
	[]string{"status"}, // rejected, completed
)

// ============ Execution ============

// TradeJobLatency observes pipeline-stage latency for BUY/SELL jobs.
var TradeJobLatency = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: "raptor",
		Subsystem: "execution",
		Name:      "job_latency_ms",
		Help:      "Latency of a trade job pipeline stage in milliseconds",
		Buckets:   []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
	},
	[]string{"action", "stage"}, // action: buy, sell; stage: quote, prepare, submit
)

// TradesTotal counts completed trades by action and result.
var TradesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "raptor",
		Subsystem: "execution",
		Name:      "trades_total",
		Help:      "Total number of executed trades",
	},
	[]string{"action", "result"}, // result: success, failed
)

// RealizedPnlSol accumulates realized PnL across all closed positions.
var RealizedPnlSol = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: "raptor",
		Subsystem: "execution",
		Name:      "realized_pnl_sol_total",
		Help:      "Total realized PnL in SOL across closed positions",
	},
)

// ============ TP/SL ============

// ActivePositions tracks open positions by lifecycle state.
var ActivePositions = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: "raptor",
		Subsystem: "tpsl",
		Name:      "active_positions",
		Help:      "Current number of positions by lifecycle state",
	},
	[]string{"lifecycle_state"},
)

// ExitTriggersFired counts exit triggers by type.
var ExitTriggersFired = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "raptor",
		Subsystem: "tpsl",
		Name:      "exit_triggers_total",
		Help:      "Number of exit triggers fired by type",
	},
	[]string{"trigger"}, // SL, TP, TRAIL, MAXHOLD, EMERGENCY
)

// ExitQueueDepth tracks the in-process priority exit queue's backlog.
var ExitQueueDepth = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: "raptor",
		Subsystem: "tpsl",
		Name:      "exit_queue_depth",
		Help:      "Current number of exits waiting in the priority queue",
	},
)

// ============ Outbox ============

// NotificationsDelivered counts outbox deliveries by result.
var NotificationsDelivered = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "raptor",
		Subsystem: "outbox",
		Name:      "deliveries_total",
		Help:      "Total notification delivery attempts by result",
	},
	[]string{"result"}, // delivered, failed
)

// ============ Runtime ============

// RPCLatency observes Solana RPC call latency by method.
var RPCLatency = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: "raptor",
		Subsystem: "rpc",
		Name:      "call_latency_ms",
		Help:      "Solana RPC call latency in milliseconds",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 5000},
	},
	[]string{"method"},
)

// MonitorConnectionStatus reports the firehose WS connection state.
var MonitorConnectionStatus = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: "raptor",
		Subsystem: "monitor",
		Name:      "connection_status",
		Help:      "Launchpad monitor WS connection status (1=connected, 0=disconnected)",
	},
)

// RecordCreateEvent records one decoded create-event from source.
func RecordCreateEvent(source string) {
	CreateEventsDetected.WithLabelValues(source).Inc()
}

// RecordOpportunity records a scored opportunity's terminal status.
func RecordOpportunity(score int, status string) {
	OpportunityScore.Observe(float64(score))
	OpportunitiesProcessed.WithLabelValues(status).Inc()
}

// RecordJobStageLatency records one pipeline stage's latency.
func RecordJobStageLatency(action, stage string, latencyMs float64) {
	TradeJobLatency.WithLabelValues(action, stage).Observe(latencyMs)
}

// RecordTrade records a completed trade and, on success, its PnL.
func RecordTrade(action, result string, pnlSol float64) {
	TradesTotal.WithLabelValues(action, result).Inc()
	if result == "success" {
		RealizedPnlSol.Add(pnlSol)
	}
}

// UpdateActivePositions sets the gauge for one lifecycle state.
func UpdateActivePositions(lifecycleState string, count int64) {
	ActivePositions.WithLabelValues(lifecycleState).Set(float64(count))
}

// RecordExitTrigger records one fired exit trigger.
func RecordExitTrigger(trigger string) {
	ExitTriggersFired.WithLabelValues(trigger).Inc()
}

// UpdateExitQueueDepth sets the exit queue's current backlog.
func UpdateExitQueueDepth(n int) {
	ExitQueueDepth.Set(float64(n))
}

// RecordNotificationDelivery records one outbox delivery attempt.
func RecordNotificationDelivery(delivered bool) {
	result := "delivered"
	if !delivered {
		result = "failed"
	}
	NotificationsDelivered.WithLabelValues(result).Inc()
}

// RecordRPCCall records one RPC call's latency.
func RecordRPCCall(method string, latencyMs float64) {
	RPCLatency.WithLabelValues(method).Observe(latencyMs)
}

// UpdateMonitorConnection reflects the firehose WS connection state.
func UpdateMonitorConnection(connected bool) {
	if connected {
		MonitorConnectionStatus.Set(1)
	} else {
		MonitorConnectionStatus.Set(0)
	}
}
