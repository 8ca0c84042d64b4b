package processor

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/trie"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rony4d/geth-indexer/internal/chainmodel"
)

func newBlock(number int64, txs []*types.Transaction) *types.Block {
	header := &types.Header{Number: big.NewInt(number)}
	return types.NewBlock(header, txs, nil, nil, trie.NewStackTrie(nil))
}

type fakeNode struct {
	receipts map[common.Hash]*types.Receipt
	errs     map[common.Hash]error
}

func (f *fakeNode) ChainID(ctx context.Context) (*big.Int, error) { return nil, nil }
func (f *fakeNode) BlockNumber(ctx context.Context) (uint64, error) { return 0, nil }
func (f *fakeNode) BlockByNumber(ctx context.Context, number *big.Int) (*types.Block, error) {
	return nil, nil
}
func (f *fakeNode) TransactionReceipt(ctx context.Context, txHash []byte) (*types.Receipt, error) {
	h := common.BytesToHash(txHash)
	if err, ok := f.errs[h]; ok {
		return nil, err
	}
	return f.receipts[h], nil
}

func makeBatchEventLog(t *testing.T, startID, endID uint32, sourceChainID uint32) *types.Log {
	t.Helper()
	data, err := nonIndexedArgs.Pack(
		[]common.Address{{0x01}},
		[]*big.Int{big.NewInt(42)},
		startID,
	)
	require.NoError(t, err)

	topicSource := common.BigToHash(big.NewInt(int64(sourceChainID)))
	topicEnd := common.BigToHash(big.NewInt(int64(endID)))
	return &types.Log{
		Topics: []common.Hash{eventTopic0, topicSource, topicEnd},
		Data:   data,
	}
}

func newLegacyTx(to *common.Address, input []byte, value int64) *types.Transaction {
	return types.NewTx(&types.LegacyTx{
		Nonce:    0,
		To:       to,
		Value:    big.NewInt(value),
		Gas:      21000,
		GasPrice: big.NewInt(1),
		Data:     input,
	})
}

func TestProcessClassifiesNativeWithoutReceiptFetch(t *testing.T) {
	to := common.HexToAddress("0xaaaa")
	tx := newLegacyTx(&to, nil, 100)
	block := newBlock(1, []*types.Transaction{tx})

	node := &fakeNode{receipts: map[common.Hash]*types.Receipt{}}
	result := Process(context.Background(), 1, block, node, types.HomesteadSigner{})

	assert.Equal(t, uint64(1), result.NativeCount)
	assert.Equal(t, uint64(0), result.CrossChainCount)
	assert.Equal(t, uint64(1), result.TotalInteresting)
	assert.Equal(t, uint64(0), result.FailedTransfers)
	assert.Equal(t, chainmodel.TxTypeNative, result.Classifications[tx.Hash().Hex()])
}

func TestProcessDecodesCrossChainBatchEvent(t *testing.T) {
	to := common.HexToAddress("0xbbbb")
	tx := newLegacyTx(&to, []byte{0x01, 0x02}, 0)
	block := newBlock(2, []*types.Transaction{tx})

	log := makeBatchEventLog(t, 95, 100, 7)
	receipt := &types.Receipt{Status: types.ReceiptStatusSuccessful, Logs: []*types.Log{log}}
	node := &fakeNode{receipts: map[common.Hash]*types.Receipt{tx.Hash(): receipt}}

	result := Process(context.Background(), 1, block, node, types.HomesteadSigner{})

	assert.Equal(t, uint64(5), result.CrossChainCount)
	assert.Equal(t, uint64(5), result.TotalInteresting)
	assert.Equal(t, uint64(0), result.FailedTransfers)
	assert.Equal(t, chainmodel.TxTypeCrossChain, result.Classifications[tx.Hash().Hex()])
}

func TestProcessDropsTransactionOnReceiptFetchFailure(t *testing.T) {
	to := common.HexToAddress("0xcccc")
	tx := newLegacyTx(&to, []byte{0x01}, 0)
	block := newBlock(3, []*types.Transaction{tx})

	node := &fakeNode{errs: map[common.Hash]error{tx.Hash(): assertErr{}}}
	result := Process(context.Background(), 1, block, node, types.HomesteadSigner{})

	assert.Equal(t, uint64(0), result.TotalInteresting)
	_, present := result.Classifications[tx.Hash().Hex()]
	assert.False(t, present)
}

func TestProcessKeepsTransactionWhenReceiptHasNoBatchEvent(t *testing.T) {
	to := common.HexToAddress("0xdddd")
	tx := newLegacyTx(&to, []byte{0x01}, 0)
	block := newBlock(4, []*types.Transaction{tx})

	receipt := &types.Receipt{Status: types.ReceiptStatusSuccessful, Logs: nil}
	node := &fakeNode{receipts: map[common.Hash]*types.Receipt{tx.Hash(): receipt}}

	result := Process(context.Background(), 1, block, node, types.HomesteadSigner{})

	require.Len(t, result.Models, 1)
	assert.Equal(t, uint64(0), result.TotalInteresting)
	assert.Equal(t, uint64(0), result.NativeCount)
	assert.Equal(t, uint64(0), result.CrossChainCount)
	assert.Equal(t, uint64(0), result.FailedTransfers)
	_, present := result.Classifications[tx.Hash().Hex()]
	assert.False(t, present)
}

type assertErr struct{}

func (assertErr) Error() string { return "receipt fetch failed" }
