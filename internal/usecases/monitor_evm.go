package usecases

import (
	"context"

	"spot-deposits.backend/internal/domain/entities"
	"spot-deposits.backend/internal/infrastructure/blockchain"
)

const defaultBlockLookback = 200

// evmMonitor covers every EVM-compatible network with one
// implementation; the chain name only selects the RPC endpoint.
type evmMonitor struct {
	baseMonitor
	client    *blockchain.EVMClient
	lastBlock uint64
}

func newEVMMonitor(cfg MonitorConfig) (Monitor, error) {
	client, err := cfg.Gateways.EVM(cfg.Chain)
	if err != nil {
		return nil, err
	}
	if cfg.BlockLookback == 0 {
		cfg.BlockLookback = defaultBlockLookback
	}

	m := &evmMonitor{baseMonitor: newBaseMonitor(cfg), client: client}
	m.pollFn = m.poll
	return m, nil
}

func (m *evmMonitor) poll(ctx context.Context) error {
	head, err := m.client.BlockNumber(ctx)
	if err != nil {
		return err
	}

	from := m.lastBlock + 1
	if m.lastBlock == 0 || head-m.lastBlock > m.cfg.BlockLookback {
		if head > m.cfg.BlockLookback {
			from = head - m.cfg.BlockLookback + 1
		} else {
			from = 1
		}
	}
	if from > head {
		return nil
	}

	transfers, err := m.fetch(ctx, from, head)
	if err != nil {
		return err
	}
	for _, t := range transfers {
		if err := m.applyTransfer(ctx, t); err != nil {
			return err
		}
	}
	m.lastBlock = head
	return nil
}

func (m *evmMonitor) fetch(ctx context.Context, from, to uint64) ([]blockchain.Transfer, error) {
	token := m.cfg.Token
	if token != nil && token.ContractType != entities.ContractTypeNative && token.Contract.Valid {
		return m.client.TokenTransfersTo(ctx, token.Contract.String, m.cfg.Address, from, to, token.Decimals)
	}
	return m.client.NativeTransfersTo(ctx, m.cfg.Address, from, to)
}
