package blockchain

import (
	"context"
	"fmt"
	"net/http"
)

const nanotonDecimals = 9

// TON settles within a few masterchain blocks; anything found in account
// history is treated as having this many confirmations.
const tonSettledConfirmations = 16

// TonClient polls a toncenter-style REST API
type TonClient struct {
	baseURL string
	http    *http.Client
}

// NewTonClient creates a new TON client
func NewTonClient(baseURL string) *TonClient {
	return &TonClient{baseURL: baseURL, http: newHTTPClient()}
}

type tonTransactionsResponse struct {
	OK     bool `json:"ok"`
	Result []struct {
		TransactionID struct {
			Hash string `json:"hash"`
			LT   string `json:"lt"`
		} `json:"transaction_id"`
		UTime int64 `json:"utime"`
		InMsg struct {
			Value       string `json:"value"` // nanoton
			Destination string `json:"destination"`
			Message     string `json:"message"` // memo comment
		} `json:"in_msg"`
	} `json:"result"`
}

// TransfersTo returns inbound transfers for address newer than sinceUTime.
// When memo is non-empty only transfers carrying that comment match,
// supporting shared-address deposit schemes.
func (c *TonClient) TransfersTo(ctx context.Context, address, memo string, sinceUTime int64) ([]Transfer, error) {
	url := fmt.Sprintf("%s/getTransactions?address=%s&limit=50&archival=false", c.baseURL, address)

	var resp tonTransactionsResponse
	if err := httpJSON(ctx, c.http, url, &resp); err != nil {
		return nil, err
	}
	if !resp.OK {
		return nil, fmt.Errorf("ton api returned not-ok for %s", address)
	}

	var transfers []Transfer
	for _, tx := range resp.Result {
		if tx.UTime <= sinceUTime || tx.InMsg.Value == "" || tx.InMsg.Value == "0" {
			continue
		}
		if memo != "" && tx.InMsg.Message != memo {
			continue
		}
		transfers = append(transfers, Transfer{
			TxID:          tx.TransactionID.Hash,
			Amount:        scale(tx.InMsg.Value, nanotonDecimals),
			Confirmations: tonSettledConfirmations,
			Block:         uint64(tx.UTime),
		})
	}
	return transfers, nil
}

// TxConfirmations implements StatusClient. TON has no rolling
// confirmation count; a transaction present in the account history is
// settled.
func (c *TonClient) TxConfirmations(ctx context.Context, address, txID string) (int, error) {
	transfers, err := c.TransfersTo(ctx, address, "", 0)
	if err != nil {
		return 0, err
	}
	for _, transfer := range transfers {
		if transfer.TxID == txID {
			return tonSettledConfirmations, nil
		}
	}
	return 0, nil
}
