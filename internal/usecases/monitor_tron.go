package usecases

import (
	"context"
	"time"

	"spot-deposits.backend/internal/infrastructure/blockchain"
)

const tronDecimals = 6

// tronMonitor polls the trongrid account transaction index using a
// millisecond timestamp cursor.
type tronMonitor struct {
	baseMonitor
	client  *blockchain.TronClient
	sinceMs int64
}

func newTronMonitor(cfg MonitorConfig) (Monitor, error) {
	m := &tronMonitor{
		baseMonitor: newBaseMonitor(cfg),
		client:      cfg.Gateways.Tron(),
		sinceMs:     time.Now().Add(-time.Hour).UnixMilli(),
	}
	m.pollFn = m.poll
	return m, nil
}

func (m *tronMonitor) poll(ctx context.Context) error {
	decimals := tronDecimals
	if m.cfg.Token != nil && m.cfg.Token.Decimals > 0 {
		decimals = m.cfg.Token.Decimals
	}

	transfers, err := m.client.TransfersTo(ctx, m.cfg.Address, m.sinceMs, decimals)
	if err != nil {
		return err
	}

	for _, t := range transfers {
		// the tron gateway reports one confirmation; resolve the real
		// count before applying so matured transfers credit immediately
		confirmations, err := m.client.TxConfirmations(ctx, m.cfg.Address, t.TxID)
		if err != nil {
			return err
		}
		if confirmations > t.Confirmations {
			t.Confirmations = confirmations
		}
		if err := m.applyTransfer(ctx, t); err != nil {
			return err
		}
		// Block carries the block timestamp for tron
		if int64(t.Block) > m.sinceMs {
			m.sinceMs = int64(t.Block)
		}
	}
	return nil
}
