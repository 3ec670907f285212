package blockchain

import (
	"context"

	"github.com/ethereum/go-ethereum/rpc"
)

// MOClient talks to an MO chain node. The MO chain exposes an
// EVM-flavored JSON-RPC surface with a custom transfer index, so the
// generic JSON-RPC client is enough.
type MOClient struct {
	rpc *rpc.Client
}

// NewMOClient creates a new MO chain client
func NewMOClient(rpcURL string) (*MOClient, error) {
	client, err := rpc.Dial(rpcURL)
	if err != nil {
		return nil, err
	}
	return &MOClient{rpc: client}, nil
}

type moTransfer struct {
	Hash   string `json:"hash"`
	To     string `json:"to"`
	Value  string `json:"value"` // raw integer string
	Block  uint64 `json:"block"`
	Status string `json:"status"`
}

// TransfersTo returns transfers received by address after fromBlock
func (c *MOClient) TransfersTo(ctx context.Context, address string, fromBlock uint64, decimals int) ([]Transfer, error) {
	var entries []moTransfer
	if err := c.rpc.CallContext(ctx, &entries, "mo_getTransfersTo", address, fromBlock); err != nil {
		return nil, err
	}

	head, err := c.BlockNumber(ctx)
	if err != nil {
		return nil, err
	}

	var transfers []Transfer
	for _, entry := range entries {
		if entry.Status != "success" {
			continue
		}
		transfers = append(transfers, Transfer{
			TxID:          entry.Hash,
			Amount:        scale(entry.Value, decimals),
			Confirmations: confirmationsAt(head, entry.Block),
			Block:         entry.Block,
		})
	}
	return transfers, nil
}

// BlockNumber returns the latest block number
func (c *MOClient) BlockNumber(ctx context.Context) (uint64, error) {
	var head uint64
	if err := c.rpc.CallContext(ctx, &head, "mo_blockNumber"); err != nil {
		return 0, err
	}
	return head, nil
}

// TxConfirmations implements StatusClient
func (c *MOClient) TxConfirmations(ctx context.Context, _ string, txID string) (int, error) {
	var entry moTransfer
	if err := c.rpc.CallContext(ctx, &entry, "mo_getTransaction", txID); err != nil {
		return 0, err
	}
	if entry.Status != "success" || entry.Block == 0 {
		return 0, nil
	}

	head, err := c.BlockNumber(ctx)
	if err != nil {
		return 0, err
	}
	return confirmationsAt(head, entry.Block), nil
}

// Close closes the client connection
func (c *MOClient) Close() {
	c.rpc.Close()
}
