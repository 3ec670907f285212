package blockchain

import (
	"context"

	"github.com/ethereum/go-ethereum/rpc"
)

const piconeroDecimals = 12

// MoneroClient talks to a monero-wallet-rpc instance. The wallet daemon
// owns the view keys, so transfers are queried per account rather than
// from raw chain data.
type MoneroClient struct {
	rpc *rpc.Client
}

// NewMoneroClient creates a new Monero wallet RPC client
func NewMoneroClient(rpcURL string) (*MoneroClient, error) {
	client, err := rpc.Dial(rpcURL)
	if err != nil {
		return nil, err
	}
	return &MoneroClient{rpc: client}, nil
}

type moneroTransfer struct {
	TxID          string `json:"txid"`
	Address       string `json:"address"`
	Amount        uint64 `json:"amount"` // piconero
	Confirmations int    `json:"confirmations"`
	Height        uint64 `json:"height"`
	Type          string `json:"type"`
}

type moneroTransfersResult struct {
	In   []moneroTransfer `json:"in"`
	Pool []moneroTransfer `json:"pool"`
}

type moneroTransferByIDResult struct {
	Transfer moneroTransfer `json:"transfer"`
}

// IncomingTransfers returns transfers received by address at or above minHeight
func (c *MoneroClient) IncomingTransfers(ctx context.Context, address string, minHeight uint64) ([]Transfer, error) {
	var result moneroTransfersResult
	err := c.rpc.CallContext(ctx, &result, "get_transfers", map[string]any{
		"in":               true,
		"pool":             true,
		"filter_by_height": minHeight > 0,
		"min_height":       minHeight,
	})
	if err != nil {
		return nil, err
	}

	var transfers []Transfer
	for _, entry := range append(result.In, result.Pool...) {
		if entry.Address != "" && entry.Address != address {
			continue
		}
		transfers = append(transfers, Transfer{
			TxID:          entry.TxID,
			Amount:        scaleUint(entry.Amount, piconeroDecimals),
			Confirmations: entry.Confirmations,
			Block:         entry.Height,
		})
	}
	return transfers, nil
}

// TxConfirmations implements StatusClient
func (c *MoneroClient) TxConfirmations(ctx context.Context, _ string, txID string) (int, error) {
	var result moneroTransferByIDResult
	err := c.rpc.CallContext(ctx, &result, "get_transfer_by_txid", map[string]any{"txid": txID})
	if err != nil {
		return 0, err
	}
	return result.Transfer.Confirmations, nil
}

// Close closes the client connection
func (c *MoneroClient) Close() {
	c.rpc.Close()
}
