package usecases

import (
	"context"

	"spot-deposits.backend/internal/infrastructure/blockchain"
)

// tonMonitor polls the toncenter account history. TON deposits use a
// shared address plus memo, so the monitor matches on the wallet's memo
// and cursors by transaction unixtime.
type tonMonitor struct {
	baseMonitor
	client     *blockchain.TonClient
	sinceUTime int64
}

func newTonMonitor(cfg MonitorConfig) (Monitor, error) {
	m := &tonMonitor{
		baseMonitor: newBaseMonitor(cfg),
		client:      cfg.Gateways.Ton(),
	}
	m.pollFn = m.poll
	return m, nil
}

func (m *tonMonitor) poll(ctx context.Context) error {
	transfers, err := m.client.TransfersTo(ctx, m.cfg.Address, m.cfg.Memo, m.sinceUTime)
	if err != nil {
		return err
	}

	for _, t := range transfers {
		if err := m.applyTransfer(ctx, t); err != nil {
			return err
		}
		// Block carries the transaction unixtime for ton
		if int64(t.Block) > m.sinceUTime {
			m.sinceUTime = int64(t.Block)
		}
	}
	return nil
}
