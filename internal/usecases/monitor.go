package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"spot-deposits.backend/internal/domain/entities"
	domainerrors "spot-deposits.backend/internal/domain/errors"
	"spot-deposits.backend/internal/infrastructure/blockchain"
)

// Monitor watches one (wallet, chain, address) tuple for deposits
type Monitor interface {
	// StartPolling begins periodic chain inspection; no-op when already polling
	StartPolling()
	// StopPolling halts inspection and releases timers; in-flight cycles
	// may still complete but can no longer credit.
	StopPolling()
	// Active is true while polling
	Active() bool
	// Chain is the chain this monitor was built for
	Chain() string
}

// DepositRecorder is the slice of DepositUsecase monitors consume
type DepositRecorder interface {
	RecordPending(ctx context.Context, dep PendingDeposit) (*entities.Transaction, error)
	Credit(ctx context.Context, walletID uuid.UUID, trxID string) error
}

// MonitorConfig carries everything a chain monitor needs
type MonitorConfig struct {
	UserID   uuid.UUID
	WalletID uuid.UUID
	Chain    string
	Currency string
	Address  string
	Memo     string
	Token    *entities.Token

	Deposits DepositRecorder
	Gateways *blockchain.Gateways

	PollInterval time.Duration
	// EVM native scans inspect at most this many blocks per cycle
	BlockLookback uint64
}

func (c MonitorConfig) confirmations() int {
	tokenConfs := 0
	if c.Token != nil {
		tokenConfs = c.Token.Confirmations
	}
	return RequiredConfirmations(c.Chain, tokenConfs)
}

// MonitorFactory constructs a monitor for a chain
type MonitorFactory func(chain string, cfg MonitorConfig) (Monitor, error)

// NewChainMonitor dispatches to the monitor family for the chain.
// Unknown chains are a construction error, never mapped onto another
// family's semantics.
func NewChainMonitor(chain string, cfg MonitorConfig) (Monitor, error) {
	cfg.Chain = chain

	switch {
	case blockchain.IsEVMChain(chain):
		return newEVMMonitor(cfg)
	case blockchain.IsUTXOChain(chain):
		return newUTXOMonitor(cfg)
	}

	switch chain {
	case "SOL":
		return newSolanaMonitor(cfg)
	case "TRON":
		return newTronMonitor(cfg)
	case "XMR":
		return newMoneroMonitor(cfg)
	case "TON":
		return newTonMonitor(cfg)
	case "MO":
		return newMOMonitor(cfg)
	}
	return nil, fmt.Errorf("%w: %s", domainerrors.ErrUnsupportedChain, chain)
}
