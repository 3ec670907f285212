package usecases

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"spot-deposits.backend/internal/infrastructure/blockchain"
	"spot-deposits.backend/pkg/logger"
	"spot-deposits.backend/pkg/metrics"
)

const defaultPollInterval = 10 * time.Second

// baseMonitor holds the polling loop shared by every chain monitor.
// Concrete monitors set pollFn and embed it.
type baseMonitor struct {
	cfg    MonitorConfig
	pollFn func(ctx context.Context) error

	mu     sync.Mutex
	active bool
	stop   chan struct{}
}

func newBaseMonitor(cfg MonitorConfig) baseMonitor {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	return baseMonitor{cfg: cfg}
}

// StartPolling implements Monitor. Idempotent: a second call while
// polling does not register another ticker.
func (m *baseMonitor) StartPolling() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active {
		return
	}
	m.active = true
	m.stop = make(chan struct{})
	metrics.ActiveMonitors.WithLabelValues(m.cfg.Chain).Inc()

	logger.Info(context.Background(), "monitor started",
		zap.String("chain", m.cfg.Chain),
		zap.String("currency", m.cfg.Currency),
		zap.String("address", m.cfg.Address),
	)
	go m.loop(m.stop)
}

// StopPolling implements Monitor
func (m *baseMonitor) StopPolling() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.active {
		return
	}
	m.active = false
	close(m.stop)
	metrics.ActiveMonitors.WithLabelValues(m.cfg.Chain).Dec()

	logger.Info(context.Background(), "monitor stopped",
		zap.String("chain", m.cfg.Chain),
		zap.String("address", m.cfg.Address),
	)
}

// Active implements Monitor
func (m *baseMonitor) Active() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

// Chain implements Monitor
func (m *baseMonitor) Chain() string {
	return m.cfg.Chain
}

func (m *baseMonitor) loop(stop chan struct{}) {
	ticker := time.NewTicker(m.cfg.PollInterval)
	defer ticker.Stop()

	m.pollOnce()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			m.pollOnce()
		}
	}
}

// pollOnce runs one cycle. Transient chain errors are logged and the
// monitor simply waits for the next tick.
func (m *baseMonitor) pollOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), m.cfg.PollInterval)
	defer cancel()

	if err := m.pollFn(ctx); err != nil {
		metrics.PollErrors.WithLabelValues(m.cfg.Chain).Inc()
		logger.Warn(ctx, "monitor poll cycle failed",
			zap.String("chain", m.cfg.Chain),
			zap.String("address", m.cfg.Address),
			zap.Error(err),
		)
	}
}

// applyTransfer records one observed transfer and credits it once the
// chain's threshold is met. Guarded on the active flag so a cycle that
// was in flight when StopPolling returned cannot mutate balances.
func (m *baseMonitor) applyTransfer(ctx context.Context, t blockchain.Transfer) error {
	if !m.Active() {
		return nil
	}

	_, err := m.cfg.Deposits.RecordPending(ctx, PendingDeposit{
		WalletID:      m.cfg.WalletID,
		UserID:        m.cfg.UserID,
		Chain:         m.cfg.Chain,
		Currency:      m.cfg.Currency,
		TrxID:         t.TxID,
		Address:       m.cfg.Address,
		Amount:        t.Amount,
		Confirmations: t.Confirmations,
	})
	if err != nil {
		return err
	}

	if t.Confirmations < m.cfg.confirmations() {
		return nil
	}
	if !m.Active() {
		return nil
	}
	return m.cfg.Deposits.Credit(ctx, m.cfg.WalletID, t.TxID)
}
