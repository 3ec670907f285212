package blockchain

import (
	"context"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
)

// TronClient polls the trongrid-style REST API
type TronClient struct {
	baseURL string
	http    *http.Client
}

// NewTronClient creates a new Tron client
func NewTronClient(baseURL string) *TronClient {
	return &TronClient{baseURL: baseURL, http: newHTTPClient()}
}

type tronTransferList struct {
	Data []struct {
		TxID      string `json:"txID"`
		BlockTime int64  `json:"block_timestamp"`
		RawData   struct {
			Contract []struct {
				Type      string `json:"type"`
				Parameter struct {
					Value struct {
						Amount    int64  `json:"amount"`
						ToAddress string `json:"to_address"`
					} `json:"value"`
				} `json:"parameter"`
			} `json:"contract"`
		} `json:"raw_data"`
	} `json:"data"`
}

type tronTxInfo struct {
	ID          string `json:"id"`
	BlockNumber uint64 `json:"blockNumber"`
	Receipt     struct {
		Result string `json:"result"`
	} `json:"receipt"`
}

type tronBlock struct {
	BlockHeader struct {
		RawData struct {
			Number uint64 `json:"number"`
		} `json:"raw_data"`
	} `json:"block_header"`
}

// TransfersTo returns TRX transfers received by address after minTimestamp
// (milliseconds since epoch).
func (c *TronClient) TransfersTo(ctx context.Context, address string, minTimestamp int64, decimals int) ([]Transfer, error) {
	url := fmt.Sprintf("%s/v1/accounts/%s/transactions?only_to=true&only_confirmed=true&min_timestamp=%d&limit=50",
		c.baseURL, address, minTimestamp)

	var list tronTransferList
	if err := httpJSON(ctx, c.http, url, &list); err != nil {
		return nil, err
	}

	var transfers []Transfer
	for _, tx := range list.Data {
		for _, contract := range tx.RawData.Contract {
			if contract.Type != "TransferContract" || contract.Parameter.Value.Amount <= 0 {
				continue
			}
			transfers = append(transfers, Transfer{
				TxID:          tx.TxID,
				Amount:        decimal.New(contract.Parameter.Value.Amount, int32(-decimals)),
				Confirmations: 1, // only_confirmed guarantees at least one
				Block:         uint64(tx.BlockTime),
			})
		}
	}
	return transfers, nil
}

// TxConfirmations implements StatusClient
func (c *TronClient) TxConfirmations(ctx context.Context, _ string, txID string) (int, error) {
	var info tronTxInfo
	url := fmt.Sprintf("%s/wallet/gettransactioninfobyid?value=%s", c.baseURL, txID)
	if err := httpJSON(ctx, c.http, url, &info); err != nil {
		return 0, err
	}
	if info.ID == "" || info.BlockNumber == 0 {
		return 0, nil
	}

	var now tronBlock
	if err := httpJSON(ctx, c.http, c.baseURL+"/wallet/getnowblock", &now); err != nil {
		return 0, err
	}
	return confirmationsAt(now.BlockHeader.RawData.Number, info.BlockNumber), nil
}
