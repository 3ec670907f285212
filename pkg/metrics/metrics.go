package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ActiveMonitors tracks live deposit monitors by chain
	ActiveMonitors = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "deposit_monitors_active",
		Help: "Number of active deposit monitors",
	}, []string{"chain"})

	// DepositsDetected counts inbound transfers seen by monitors
	DepositsDetected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "deposits_detected_total",
		Help: "Inbound transfers detected, before confirmation",
	}, []string{"chain"})

	// DepositsCredited counts confirmed deposits credited to wallets
	DepositsCredited = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "deposits_credited_total",
		Help: "Confirmed deposits credited to wallet balances",
	}, []string{"chain"})

	// PollErrors counts failed polling cycles
	PollErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "deposit_poll_errors_total",
		Help: "Monitor polling cycles that ended in error",
	}, []string{"chain"})

	// ReconcilerSweeps counts pending-transaction verification sweeps
	ReconcilerSweeps = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pending_verification_sweeps_total",
		Help: "Completed pending transaction verification sweeps",
	})
)
