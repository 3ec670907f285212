package usecases

import (
	"context"

	"spot-deposits.backend/internal/infrastructure/blockchain"
)

const moDecimals = 18

// moMonitor polls the MO chain's transfer index with a block cursor
type moMonitor struct {
	baseMonitor
	client    *blockchain.MOClient
	fromBlock uint64
}

func newMOMonitor(cfg MonitorConfig) (Monitor, error) {
	client, err := cfg.Gateways.MO()
	if err != nil {
		return nil, err
	}

	m := &moMonitor{baseMonitor: newBaseMonitor(cfg), client: client}
	m.pollFn = m.poll
	return m, nil
}

func (m *moMonitor) poll(ctx context.Context) error {
	decimals := moDecimals
	if m.cfg.Token != nil && m.cfg.Token.Decimals > 0 {
		decimals = m.cfg.Token.Decimals
	}

	transfers, err := m.client.TransfersTo(ctx, m.cfg.Address, m.fromBlock, decimals)
	if err != nil {
		return err
	}

	threshold := m.cfg.confirmations()
	for _, t := range transfers {
		if err := m.applyTransfer(ctx, t); err != nil {
			return err
		}
		if t.Confirmations >= threshold && t.Block >= m.fromBlock {
			m.fromBlock = t.Block + 1
		}
	}
	return nil
}
