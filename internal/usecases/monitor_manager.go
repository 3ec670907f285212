package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"spot-deposits.backend/internal/config"
	"spot-deposits.backend/internal/domain/entities"
	domainerrors "spot-deposits.backend/internal/domain/errors"
	"spot-deposits.backend/internal/domain/repositories"
	"spot-deposits.backend/internal/infrastructure/blockchain"
	"spot-deposits.backend/pkg/logger"
)

// WatchRequest is the payload of one watch frame
type WatchRequest struct {
	Currency string `json:"currency"`
	Chain    string `json:"chain"`
	Address  string `json:"address"`
}

// MonitorManager owns the user -> monitor registry. Monitors are keyed
// per user: concurrent connections from one user share a single monitor
// through a connection reference count, and the eviction clock only
// starts once the last connection is gone.
type MonitorManager struct {
	provisioner *WalletProvisioner
	tokenRepo   repositories.TokenRepository
	deposits    DepositRecorder
	gateways    *blockchain.Gateways
	factory     MonitorFactory

	pollInterval  time.Duration
	blockLookback uint64
	evictionDelay time.Duration

	mu        sync.Mutex
	monitors  map[uuid.UUID]Monitor
	evictions map[uuid.UUID]*time.Timer
	conns     map[uuid.UUID]int
}

// NewMonitorManager creates a monitor lifecycle manager
func NewMonitorManager(
	provisioner *WalletProvisioner,
	tokenRepo repositories.TokenRepository,
	deposits DepositRecorder,
	gateways *blockchain.Gateways,
	depositCfg config.DepositConfig,
) *MonitorManager {
	return &MonitorManager{
		provisioner:   provisioner,
		tokenRepo:     tokenRepo,
		deposits:      deposits,
		gateways:      gateways,
		factory:       NewChainMonitor,
		pollInterval:  depositCfg.PollInterval,
		blockLookback: depositCfg.EVMBlockLookback,
		evictionDelay: depositCfg.EvictionDelay,
		monitors:      make(map[uuid.UUID]Monitor),
		evictions:     make(map[uuid.UUID]*time.Timer),
		conns:         make(map[uuid.UUID]int),
	}
}

// WithFactory overrides monitor construction. Tests use this to inject
// fake monitors.
func (m *MonitorManager) WithFactory(factory MonitorFactory) *MonitorManager {
	m.factory = factory
	return m
}

// ParseWatchRequest decodes a raw watch frame
func ParseWatchRequest(raw []byte) (WatchRequest, error) {
	var req WatchRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return WatchRequest{}, fmt.Errorf("%w: %v", domainerrors.ErrInvalidPayload, err)
	}
	if req.Currency == "" || req.Chain == "" {
		return WatchRequest{}, domainerrors.ErrInvalidPayload
	}
	return req, nil
}

// Watch ensures a monitor is polling for the user's (currency, chain)
// and registers one connection against it. Reconnecting cancels a
// pending eviction; an inactive leftover monitor is rebuilt. A user has
// one monitor, so a live monitor for another chain is reused as-is; the
// returned chain is the one actually being polled.
func (m *MonitorManager) Watch(ctx context.Context, userID uuid.UUID, req WatchRequest) (string, error) {
	if userID == uuid.Nil {
		return "", domainerrors.ErrUnauthorized
	}

	wallet, err := m.provisioner.EnsureWallet(ctx, userID, req.Currency)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return "", domainerrors.ErrWalletNotFound
		}
		return "", err
	}

	token, err := m.tokenRepo.Get(ctx, req.Chain, req.Currency)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return "", domainerrors.ErrTokenNotFound
		}
		return "", err
	}

	address, memo, err := watchedAddress(wallet, token, req)
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Reconnect within the grace period keeps the running monitor
	if timer, ok := m.evictions[userID]; ok {
		timer.Stop()
		delete(m.evictions, userID)
	}

	if monitor, ok := m.monitors[userID]; ok && !monitor.Active() {
		delete(m.monitors, userID)
	}

	monitor, ok := m.monitors[userID]
	if !ok {
		monitor, err = m.factory(req.Chain, MonitorConfig{
			UserID:        userID,
			WalletID:      wallet.ID,
			Chain:         req.Chain,
			Currency:      req.Currency,
			Address:       address,
			Memo:          memo,
			Token:         token,
			Deposits:      m.deposits,
			Gateways:      m.gateways,
			PollInterval:  m.pollInterval,
			BlockLookback: m.blockLookback,
		})
		if err != nil {
			return "", err
		}
		m.monitors[userID] = monitor
	}

	monitor.StartPolling()
	m.conns[userID]++

	logger.Info(ctx, "deposit watch registered",
		zap.String("user_id", userID.String()),
		zap.String("currency", req.Currency),
		zap.String("chain", monitor.Chain()),
		zap.Int("connections", m.conns[userID]),
	)
	return monitor.Chain(), nil
}

// Disconnect releases one connection. When the user's last connection
// is gone, teardown is scheduled after the eviction delay so brief
// reconnects keep the monitor alive.
func (m *MonitorManager) Disconnect(userID uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.conns[userID] > 0 {
		m.conns[userID]--
	}
	if m.conns[userID] > 0 {
		return
	}
	delete(m.conns, userID)

	if _, ok := m.monitors[userID]; !ok {
		return
	}
	if timer, ok := m.evictions[userID]; ok {
		timer.Stop()
	}
	m.evictions[userID] = time.AfterFunc(m.evictionDelay, func() {
		m.evict(userID)
	})
}

func (m *MonitorManager) evict(userID uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// a reconnect raced the timer
	if m.conns[userID] > 0 {
		return
	}
	if monitor, ok := m.monitors[userID]; ok {
		monitor.StopPolling()
		delete(m.monitors, userID)
	}
	delete(m.evictions, userID)

	logger.Info(context.Background(), "monitor evicted",
		zap.String("user_id", userID.String()))
}

// Shutdown stops every monitor and pending eviction timer
func (m *MonitorManager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for userID, timer := range m.evictions {
		timer.Stop()
		delete(m.evictions, userID)
	}
	for userID, monitor := range m.monitors {
		monitor.StopPolling()
		delete(m.monitors, userID)
	}
	for userID := range m.conns {
		delete(m.conns, userID)
	}
}

// MonitorFor returns the user's live monitor, if any
func (m *MonitorManager) MonitorFor(userID uuid.UUID) (Monitor, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	monitor, ok := m.monitors[userID]
	return monitor, ok
}

// watchedAddress picks the address a monitor should follow. Shared
// (no-permit) tokens watch the caller-supplied address; everything else
// watches the wallet's own generated address.
func watchedAddress(wallet *entities.Wallet, token *entities.Token, req WatchRequest) (string, string, error) {
	if token.ContractType == entities.ContractTypeNoPermit {
		if req.Address == "" {
			return "", "", domainerrors.ErrInvalidPayload
		}
		return req.Address, "", nil
	}

	addr, ok := wallet.AddressFor(req.Chain)
	if !ok {
		return "", "", domainerrors.ErrAddressNotFound
	}
	return addr.Address, addr.Memo, nil
}
