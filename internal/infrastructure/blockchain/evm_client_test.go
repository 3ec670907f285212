package blockchain

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/stretchr/testify/require"
)

type rpcReq struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
	ID      interface{}     `json:"id"`
}

type rpcResp struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   interface{} `json:"error,omitempty"`
}

func newEVMRPCServer(t *testing.T) *httptest.Server {
	t.Helper()
	defer func() {
		if r := recover(); r != nil {
			t.Skipf("skip: httptest server unavailable in this environment: %v", r)
		}
	}()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		var req rpcReq
		_ = json.NewDecoder(r.Body).Decode(&req)

		res := rpcResp{JSONRPC: "2.0", ID: req.ID}
		switch req.Method {
		case "eth_chainId":
			res.Result = "0x2105"
		case "eth_blockNumber":
			res.Result = "0x6e" // 110
		case "eth_getLogs":
			res.Result = []interface{}{
				map[string]interface{}{
					"address": "0x4444444444444444444444444444444444444444",
					"topics": []string{
						"0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef",
						"0x0000000000000000000000003333333333333333333333333333333333333333",
						"0x0000000000000000000000005555555555555555555555555555555555555555",
					},
					"data":             "0x00000000000000000000000000000000000000000000000000000000000f4240", // 1000000
					"blockNumber":      "0x64",                                                               // 100
					"transactionHash":  "0x1111111111111111111111111111111111111111111111111111111111111111",
					"transactionIndex": "0x0",
					"blockHash":        "0x2222222222222222222222222222222222222222222222222222222222222222",
					"logIndex":         "0x0",
					"removed":          false,
				},
			}
		case "eth_getTransactionReceipt":
			res.Result = map[string]interface{}{
				"transactionHash":   "0x1111111111111111111111111111111111111111111111111111111111111111",
				"transactionIndex":  "0x0",
				"blockHash":         "0x2222222222222222222222222222222222222222222222222222222222222222",
				"blockNumber":       "0x64",
				"from":              "0x3333333333333333333333333333333333333333",
				"to":                "0x4444444444444444444444444444444444444444",
				"cumulativeGasUsed": "0x5208",
				"gasUsed":           "0x5208",
				"contractAddress":   nil,
				"logs":              []interface{}{},
				"logsBloom":         "0x" + strings.Repeat("0", 512),
				"status":            "0x1",
				"effectiveGasPrice": "0x3b9aca00",
			}
		default:
			res.Result = "0x0"
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(res)
	}))
}

func TestEVMClient_WithMockRPC(t *testing.T) {
	srv := newEVMRPCServer(t)
	defer srv.Close()

	client, err := NewEVMClient(srv.URL)
	require.NoError(t, err)
	defer client.Close()

	require.Equal(t, big.NewInt(8453), client.ChainID())

	head, err := client.BlockNumber(context.Background())
	require.NoError(t, err)
	require.Equal(t, uint64(110), head)

	transfers, err := client.TokenTransfersTo(
		context.Background(),
		"0x4444444444444444444444444444444444444444",
		"0x5555555555555555555555555555555555555555",
		90, 110, 6,
	)
	require.NoError(t, err)
	require.Len(t, transfers, 1)
	require.Equal(t, "0x1111111111111111111111111111111111111111111111111111111111111111", transfers[0].TxID)
	require.Equal(t, "1", transfers[0].Amount.String())
	require.Equal(t, 11, transfers[0].Confirmations)
	require.Equal(t, uint64(100), transfers[0].Block)

	confs, err := client.TxConfirmations(context.Background(), "", "0x1111111111111111111111111111111111111111111111111111111111111111")
	require.NoError(t, err)
	require.Equal(t, 11, confs)
}

func TestNewEVMClient_InvalidURL(t *testing.T) {
	_, err := NewEVMClient("://bad-url")
	require.Error(t, err)
}

func TestClientFactory_GetEVMClient_CachePath(t *testing.T) {
	srv := newEVMRPCServer(t)
	defer srv.Close()

	f := NewClientFactory()
	c1, err := f.GetEVMClient(srv.URL)
	require.NoError(t, err)
	c2, err := f.GetEVMClient(srv.URL)
	require.NoError(t, err)
	require.Same(t, c1, c2)
	c1.Close()
}

func TestClientFactory_GetEVMClient_InvalidURL(t *testing.T) {
	f := NewClientFactory()
	_, err := f.GetEVMClient("://bad-url")
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to create EVM client")
}

func TestClientFactory_RegisterEVMClient(t *testing.T) {
	f := NewClientFactory()
	injected := &EVMClient{chainID: big.NewInt(8453)}

	f.RegisterEVMClient("mock://rpc", injected)
	got, err := f.GetEVMClient("mock://rpc")
	require.NoError(t, err)
	require.Same(t, injected, got)
}

func TestNewEVMClient_DialHooks(t *testing.T) {
	origDial := dialEVMClient
	origChainID := getClientChainID
	t.Cleanup(func() {
		dialEVMClient = origDial
		getClientChainID = origChainID
	})

	dialEVMClient = func(string) (*ethclient.Client, error) {
		return &ethclient.Client{}, nil
	}
	getClientChainID = func(*ethclient.Client, context.Context) (*big.Int, error) {
		return big.NewInt(56), nil
	}

	client, err := NewEVMClient("mock://hooked")
	require.NoError(t, err)
	require.Equal(t, int64(56), client.ChainID().Int64())
}

func TestConfirmationsAt(t *testing.T) {
	require.Equal(t, 0, confirmationsAt(100, 0))
	require.Equal(t, 0, confirmationsAt(99, 100))
	require.Equal(t, 1, confirmationsAt(100, 100))
	require.Equal(t, 11, confirmationsAt(110, 100))
}
