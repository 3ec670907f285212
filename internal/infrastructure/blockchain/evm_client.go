package blockchain

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/shopspring/decimal"
)

var (
	dialEVMClient    = ethclient.Dial
	getClientChainID = func(client *ethclient.Client, ctx context.Context) (*big.Int, error) {
		return client.ChainID(ctx)
	}
)

// erc20 Transfer(address,address,uint256) topic
var transferEventTopic = common.HexToHash("0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef")

// EVMClient provides EVM blockchain interaction
type EVMClient struct {
	client  *ethclient.Client
	chainID *big.Int
	rpcURL  string
}

// NewEVMClient creates a new EVM client
func NewEVMClient(rpcURL string) (*EVMClient, error) {
	client, err := dialEVMClient(rpcURL)
	if err != nil {
		return nil, err
	}

	chainID, err := getClientChainID(client, context.Background())
	if err != nil {
		return nil, err
	}

	return &EVMClient{
		client:  client,
		chainID: chainID,
		rpcURL:  rpcURL,
	}, nil
}

// ChainID returns the chain ID
func (c *EVMClient) ChainID() *big.Int {
	return c.chainID
}

// BlockNumber gets the latest block number
func (c *EVMClient) BlockNumber(ctx context.Context) (uint64, error) {
	return c.client.BlockNumber(ctx)
}

// TokenTransfersTo returns ERC20 transfers of the given contract sent to
// address within [fromBlock, toBlock].
func (c *EVMClient) TokenTransfersTo(ctx context.Context, contract, address string, fromBlock, toBlock uint64, decimals int) ([]Transfer, error) {
	contractAddr := common.HexToAddress(contract)
	recipient := common.HexToHash(common.HexToAddress(address).Hex())

	logs, err := c.client.FilterLogs(ctx, ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(fromBlock),
		ToBlock:   new(big.Int).SetUint64(toBlock),
		Addresses: []common.Address{contractAddr},
		Topics:    [][]common.Hash{{transferEventTopic}, nil, {recipient}},
	})
	if err != nil {
		return nil, err
	}

	head, err := c.client.BlockNumber(ctx)
	if err != nil {
		return nil, err
	}

	var transfers []Transfer
	for _, entry := range logs {
		if entry.Removed {
			continue
		}
		amount := new(big.Int).SetBytes(entry.Data)
		transfers = append(transfers, Transfer{
			TxID:          entry.TxHash.Hex(),
			Amount:        decimal.NewFromBigInt(amount, int32(-decimals)),
			Confirmations: confirmationsAt(head, entry.BlockNumber),
			Block:         entry.BlockNumber,
		})
	}
	return transfers, nil
}

// NativeTransfersTo returns native-coin transfers sent to address within
// [fromBlock, toBlock]. Blocks are inspected one by one, so callers keep
// the range small.
func (c *EVMClient) NativeTransfersTo(ctx context.Context, address string, fromBlock, toBlock uint64) ([]Transfer, error) {
	recipient := common.HexToAddress(address)

	head, err := c.client.BlockNumber(ctx)
	if err != nil {
		return nil, err
	}

	var transfers []Transfer
	for n := fromBlock; n <= toBlock; n++ {
		block, err := c.client.BlockByNumber(ctx, new(big.Int).SetUint64(n))
		if err != nil {
			return nil, err
		}
		for _, tx := range block.Transactions() {
			if tx.To() == nil || *tx.To() != recipient || tx.Value().Sign() == 0 {
				continue
			}
			transfers = append(transfers, Transfer{
				TxID:          tx.Hash().Hex(),
				Amount:        decimal.NewFromBigInt(tx.Value(), -18),
				Confirmations: confirmationsAt(head, n),
				Block:         n,
			})
		}
	}
	return transfers, nil
}

// TxConfirmations implements StatusClient
func (c *EVMClient) TxConfirmations(ctx context.Context, _ string, txID string) (int, error) {
	receipt, err := c.client.TransactionReceipt(ctx, common.HexToHash(txID))
	if err != nil {
		return 0, err
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return 0, nil
	}

	head, err := c.client.BlockNumber(ctx)
	if err != nil {
		return 0, err
	}
	return confirmationsAt(head, receipt.BlockNumber.Uint64()), nil
}

// Close closes the client connection
func (c *EVMClient) Close() {
	if c.client != nil {
		c.client.Close()
	}
}

func confirmationsAt(head, included uint64) int {
	if included == 0 || head < included {
		return 0
	}
	return int(head-included) + 1
}
