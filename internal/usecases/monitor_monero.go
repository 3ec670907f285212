package usecases

import (
	"context"

	"spot-deposits.backend/internal/infrastructure/blockchain"
)

// moneroMonitor polls monero-wallet-rpc for incoming transfers. Pool
// transfers re-surface every cycle until mined; the height cursor only
// covers mined ones.
type moneroMonitor struct {
	baseMonitor
	client    *blockchain.MoneroClient
	minHeight uint64
}

func newMoneroMonitor(cfg MonitorConfig) (Monitor, error) {
	client, err := cfg.Gateways.Monero()
	if err != nil {
		return nil, err
	}

	m := &moneroMonitor{baseMonitor: newBaseMonitor(cfg), client: client}
	m.pollFn = m.poll
	return m, nil
}

func (m *moneroMonitor) poll(ctx context.Context) error {
	transfers, err := m.client.IncomingTransfers(ctx, m.cfg.Address, m.minHeight)
	if err != nil {
		return err
	}

	threshold := m.cfg.confirmations()
	for _, t := range transfers {
		if err := m.applyTransfer(ctx, t); err != nil {
			return err
		}
		if t.Confirmations >= threshold && t.Block >= m.minHeight {
			m.minHeight = t.Block + 1
		}
	}
	return nil
}
