package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Dialog metrics
	DialogActionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dining_dialog_actions_total",
		Help: "Dialog actions returned to the NLU engine",
	}, []string{"intent", "type"})

	SlotValidationFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dining_slot_validation_failures_total",
		Help: "Slot validation failures by violated slot",
	}, []string{"slot"})

	UnsupportedIntentsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dining_unsupported_intents_total",
		Help: "Code-hook calls for intents with no registered handler",
	})

	// Order metrics
	OrdersSubmittedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dining_orders_submitted_total",
		Help: "Orders handed to the queue",
	}, []string{"status"})

	OrdersConsumedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dining_orders_consumed_total",
		Help: "Orders read back from the queue by the consumer",
	}, []string{"status"})

	// NLU metrics
	NLULatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "dining_nlu_latency_seconds",
		Help:    "Latency of text requests to the NLU engine",
		Buckets: prometheus.DefBuckets,
	})

	ChatTurnsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dining_chat_turns_total",
		Help: "Chat turns relayed to the NLU engine",
	}, []string{"channel", "status"})
)
