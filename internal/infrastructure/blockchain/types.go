package blockchain

import (
	"context"
	"math/big"

	"github.com/shopspring/decimal"
)

// Transfer is an inbound transfer observed on chain, normalized to the
// token's display units.
type Transfer struct {
	TxID          string
	Amount        decimal.Decimal
	Confirmations int
	Block         uint64 // chain-native height/slot of inclusion, 0 if unknown
}

// StatusClient re-checks the confirmation state of a known transaction.
// Most chains resolve by tx id alone; address is the watched deposit
// address for chains whose APIs are account-scoped.
type StatusClient interface {
	TxConfirmations(ctx context.Context, address, txID string) (int, error)
}

// scale converts a raw chain-native integer amount into display units
func scale(raw string, decimals int) decimal.Decimal {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero
	}
	return d.Shift(int32(-decimals))
}

func scaleUint(raw uint64, decimals int) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(raw), int32(-decimals))
}
