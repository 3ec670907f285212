package usecases

import (
	"context"

	"spot-deposits.backend/internal/infrastructure/blockchain"
)

// utxoMonitor polls an explorer API for BTC-family chains. The cursor
// only advances past a transaction once it has been credited, so a
// transfer keeps being re-observed (and its confirmation count
// refreshed) until it matures.
type utxoMonitor struct {
	baseMonitor
	client     *blockchain.UTXOClient
	seenHeight uint64
}

func newUTXOMonitor(cfg MonitorConfig) (Monitor, error) {
	client, err := cfg.Gateways.UTXO(cfg.Chain)
	if err != nil {
		return nil, err
	}

	m := &utxoMonitor{baseMonitor: newBaseMonitor(cfg), client: client}
	m.pollFn = m.poll
	return m, nil
}

func (m *utxoMonitor) poll(ctx context.Context) error {
	transfers, err := m.client.TransfersTo(ctx, m.cfg.Address, m.seenHeight)
	if err != nil {
		return err
	}

	threshold := m.cfg.confirmations()
	for _, t := range transfers {
		if err := m.applyTransfer(ctx, t); err != nil {
			return err
		}
		if t.Confirmations >= threshold && t.Block > m.seenHeight {
			m.seenHeight = t.Block
		}
	}
	return nil
}
