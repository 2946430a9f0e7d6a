package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Метрики планировщика и доставки. Регистрируются в default registry,
// отдаются через promhttp на /metrics.
var (
	// CadenceTicks — количество выполненных тиков по каждому каденсу.
	CadenceTicks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cobrador_cadence_ticks_total",
		Help: "Completed cadence executions",
	}, []string{"cadence", "result"})

	// CadenceSkipped — тики, пропущенные из-за single-flight.
	CadenceSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cobrador_cadence_skipped_total",
		Help: "Cadence ticks skipped because the previous one is still running",
	}, []string{"cadence"})

	// MessagesSent — попытки доставки по каналам.
	MessagesSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cobrador_messages_total",
		Help: "Delivery attempts by channel and status",
	}, []string{"channel", "status"})

	// PaymentsReconciled — результаты сверки платежей.
	PaymentsReconciled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cobrador_payments_reconciled_total",
		Help: "Subscription reconciliation outcomes",
	}, []string{"status"})

	// ClientsSwept — клиенты, переведённые в inactive часовым sweep.
	ClientsSwept = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cobrador_clients_swept_total",
		Help: "Clients marked inactive by the due date sweep",
	})

	// BridgeTimeouts — задания моста, не уложившиеся в таймаут.
	BridgeTimeouts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cobrador_bridge_timeouts_total",
		Help: "Bridge jobs that exceeded their deadline",
	}, []string{"job"})
)
