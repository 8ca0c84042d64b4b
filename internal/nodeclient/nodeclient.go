// Package nodeclient wraps the external EVM node capability the rest
// of the indexer treats as opaque: block numbers, blocks by number, and
// transaction receipts, via go-ethereum's ethclient.
package nodeclient

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
)

// Client is the minimal surface the catch-up loop and block processor
// need from an external node. It exists so the catch-up loop and
// processor can be tested against a fake without dialing a real RPC
// endpoint.
type Client interface {
	ChainID(ctx context.Context) (*big.Int, error)
	BlockNumber(ctx context.Context) (uint64, error)
	BlockByNumber(ctx context.Context, number *big.Int) (*types.Block, error)
	TransactionReceipt(ctx context.Context, txHash []byte) (*types.Receipt, error)
}

// EthClient adapts *ethclient.Client to Client. TransactionReceipt's
// signature differs only in hash representation: ethclient wants a
// common.Hash, this package's callers carry raw bytes from decoded
// transactions.
type EthClient struct {
	inner *ethclient.Client
}

func Dial(ctx context.Context, endpoint string) (*EthClient, error) {
	c, err := ethclient.DialContext(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	return &EthClient{inner: c}, nil
}

func (c *EthClient) ChainID(ctx context.Context) (*big.Int, error) {
	return c.inner.ChainID(ctx)
}

func (c *EthClient) BlockNumber(ctx context.Context) (uint64, error) {
	return c.inner.BlockNumber(ctx)
}

func (c *EthClient) BlockByNumber(ctx context.Context, number *big.Int) (*types.Block, error) {
	return c.inner.BlockByNumber(ctx, number)
}

func (c *EthClient) TransactionReceipt(ctx context.Context, txHash []byte) (*types.Receipt, error) {
	return c.inner.TransactionReceipt(ctx, common.BytesToHash(txHash))
}
