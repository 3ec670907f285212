package usecases

import (
	"context"

	"spot-deposits.backend/internal/infrastructure/blockchain"
)

// solanaMonitor walks the address's signature history, newest first,
// using the last seen signature as the pagination cursor.
type solanaMonitor struct {
	baseMonitor
	client        *blockchain.SolanaClient
	lastSignature string
}

func newSolanaMonitor(cfg MonitorConfig) (Monitor, error) {
	client, err := cfg.Gateways.Solana()
	if err != nil {
		return nil, err
	}

	m := &solanaMonitor{baseMonitor: newBaseMonitor(cfg), client: client}
	m.pollFn = m.poll
	return m, nil
}

func (m *solanaMonitor) poll(ctx context.Context) error {
	sigs, err := m.client.SignaturesForAddress(ctx, m.cfg.Address, m.lastSignature, solanaSignatureBatch)
	if err != nil {
		return err
	}
	if len(sigs) == 0 {
		return nil
	}

	// Apply oldest first so the cursor never skips past an unprocessed
	// signature on error.
	for i := len(sigs) - 1; i >= 0; i-- {
		sig := sigs[i]
		if sig.Err != nil {
			m.lastSignature = sig.Signature
			continue
		}

		amount, err := m.client.IncomingAmount(ctx, sig.Signature, m.cfg.Address)
		if err != nil {
			return err
		}
		if amount.IsPositive() {
			confirmations, err := m.client.TxConfirmations(ctx, m.cfg.Address, sig.Signature)
			if err != nil {
				return err
			}
			if err := m.applyTransfer(ctx, blockchain.Transfer{
				TxID:          sig.Signature,
				Amount:        amount,
				Confirmations: confirmations,
				Block:         sig.Slot,
			}); err != nil {
				return err
			}
		}
		m.lastSignature = sig.Signature
	}
	return nil
}
