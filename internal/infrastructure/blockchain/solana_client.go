package blockchain

import (
	"context"

	"github.com/ethereum/go-ethereum/rpc"
	"github.com/shopspring/decimal"
)

const lamportDecimals = 9

// SolanaClient polls a Solana JSON-RPC node
type SolanaClient struct {
	rpc *rpc.Client
}

// NewSolanaClient creates a new Solana client
func NewSolanaClient(rpcURL string) (*SolanaClient, error) {
	client, err := rpc.Dial(rpcURL)
	if err != nil {
		return nil, err
	}
	return &SolanaClient{rpc: client}, nil
}

type solanaSignature struct {
	Signature string  `json:"signature"`
	Slot      uint64  `json:"slot"`
	Err       any     `json:"err"`
	BlockTime *int64  `json:"blockTime"`
	Memo      *string `json:"memo"`
}

type solanaTransaction struct {
	Slot        uint64 `json:"slot"`
	Transaction struct {
		Message struct {
			AccountKeys []string `json:"accountKeys"`
		} `json:"message"`
	} `json:"transaction"`
	Meta struct {
		Err          any      `json:"err"`
		PreBalances  []uint64 `json:"preBalances"`
		PostBalances []uint64 `json:"postBalances"`
	} `json:"meta"`
}

type solanaSignatureStatus struct {
	Value []*struct {
		Slot               uint64 `json:"slot"`
		Confirmations      *int   `json:"confirmations"`
		ConfirmationStatus string `json:"confirmationStatus"`
		Err                any    `json:"err"`
	} `json:"value"`
}

// SignaturesForAddress returns recent transaction signatures involving
// address, newest first, stopping at the until signature when non-empty.
func (c *SolanaClient) SignaturesForAddress(ctx context.Context, address, until string, limit int) ([]solanaSignature, error) {
	opts := map[string]any{"limit": limit}
	if until != "" {
		opts["until"] = until
	}
	var sigs []solanaSignature
	if err := c.rpc.CallContext(ctx, &sigs, "getSignaturesForAddress", address, opts); err != nil {
		return nil, err
	}
	return sigs, nil
}

// IncomingAmount returns the lamports credited to address by the given
// transaction, zero when the transaction did not credit it.
func (c *SolanaClient) IncomingAmount(ctx context.Context, signature, address string) (decimal.Decimal, error) {
	var tx solanaTransaction
	err := c.rpc.CallContext(ctx, &tx, "getTransaction", signature, map[string]any{
		"encoding":                       "json",
		"maxSupportedTransactionVersion": 0,
	})
	if err != nil {
		return decimal.Zero, err
	}
	if tx.Meta.Err != nil {
		return decimal.Zero, nil
	}

	for i, key := range tx.Transaction.Message.AccountKeys {
		if key != address || i >= len(tx.Meta.PreBalances) || i >= len(tx.Meta.PostBalances) {
			continue
		}
		if tx.Meta.PostBalances[i] > tx.Meta.PreBalances[i] {
			delta := tx.Meta.PostBalances[i] - tx.Meta.PreBalances[i]
			return decimal.New(int64(delta), -lamportDecimals), nil
		}
	}
	return decimal.Zero, nil
}

// TxConfirmations implements StatusClient
func (c *SolanaClient) TxConfirmations(ctx context.Context, _ string, txID string) (int, error) {
	var status solanaSignatureStatus
	err := c.rpc.CallContext(ctx, &status, "getSignatureStatuses", []string{txID}, map[string]any{
		"searchTransactionHistory": true,
	})
	if err != nil {
		return 0, err
	}
	if len(status.Value) == 0 || status.Value[0] == nil || status.Value[0].Err != nil {
		return 0, nil
	}
	v := status.Value[0]
	// a nil confirmation count means the transaction is rooted
	if v.Confirmations == nil || v.ConfirmationStatus == "finalized" {
		return 1 << 16, nil
	}
	return *v.Confirmations, nil
}

// Close closes the client connection
func (c *SolanaClient) Close() {
	c.rpc.Close()
}
