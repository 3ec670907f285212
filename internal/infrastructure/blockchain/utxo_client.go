package blockchain

import (
	"context"
	"fmt"
	"net/http"
)

const satoshiDecimals = 8

// UTXOClient polls an esplora-style explorer API (blockstream and
// compatible deployments).
type UTXOClient struct {
	baseURL string
	http    *http.Client
}

// NewUTXOClient creates a new UTXO explorer client
func NewUTXOClient(baseURL string) *UTXOClient {
	return &UTXOClient{baseURL: baseURL, http: newHTTPClient()}
}

type esploraTx struct {
	TxID   string `json:"txid"`
	Status struct {
		Confirmed   bool   `json:"confirmed"`
		BlockHeight uint64 `json:"block_height"`
	} `json:"status"`
	Vout []struct {
		ScriptPubKeyAddress string `json:"scriptpubkey_address"`
		Value               uint64 `json:"value"` // satoshi
	} `json:"vout"`
}

// TransfersTo returns transfers received by address. Transactions at or
// below belowHeight are assumed already seen and skipped; unconfirmed
// transactions always pass.
func (c *UTXOClient) TransfersTo(ctx context.Context, address string, belowHeight uint64) ([]Transfer, error) {
	var txs []esploraTx
	if err := httpJSON(ctx, c.http, fmt.Sprintf("%s/address/%s/txs", c.baseURL, address), &txs); err != nil {
		return nil, err
	}

	tip, err := c.tipHeight(ctx)
	if err != nil {
		return nil, err
	}

	var transfers []Transfer
	for _, tx := range txs {
		if tx.Status.Confirmed && tx.Status.BlockHeight <= belowHeight {
			continue
		}
		var received uint64
		for _, out := range tx.Vout {
			if out.ScriptPubKeyAddress == address {
				received += out.Value
			}
		}
		if received == 0 {
			continue
		}
		confirmations := 0
		if tx.Status.Confirmed {
			confirmations = confirmationsAt(tip, tx.Status.BlockHeight)
		}
		transfers = append(transfers, Transfer{
			TxID:          tx.TxID,
			Amount:        scaleUint(received, satoshiDecimals),
			Confirmations: confirmations,
			Block:         tx.Status.BlockHeight,
		})
	}
	return transfers, nil
}

// TxConfirmations implements StatusClient
func (c *UTXOClient) TxConfirmations(ctx context.Context, _ string, txID string) (int, error) {
	var tx esploraTx
	if err := httpJSON(ctx, c.http, fmt.Sprintf("%s/tx/%s", c.baseURL, txID), &tx); err != nil {
		return 0, err
	}
	if !tx.Status.Confirmed {
		return 0, nil
	}

	tip, err := c.tipHeight(ctx)
	if err != nil {
		return 0, err
	}
	return confirmationsAt(tip, tx.Status.BlockHeight), nil
}

func (c *UTXOClient) tipHeight(ctx context.Context) (uint64, error) {
	var tip uint64
	if err := httpJSON(ctx, c.http, c.baseURL+"/blocks/tip/height", &tip); err != nil {
		return 0, err
	}
	return tip, nil
}
