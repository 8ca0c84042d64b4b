// Package processor implements the block processor (§4.E): parallel
// receipt fan-out, static/dynamic transaction classification, and
// decoding of the one known cross-chain batch event.
package processor

import (
	"context"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/rony4d/geth-indexer/internal/chainmodel"
	"github.com/rony4d/geth-indexer/internal/nodeclient"
)

// eventSignature is the canonical signature whose keccak256 is topic0
// for ETHReceivedFromSourceChainInBatch (§6). sourceChainId and
// endMessageId are indexed and therefore arrive as topics, not data.
const eventSignature = "ETHReceivedFromSourceChainInBatch(uint32,address[],uint256[],uint32,uint32)"

var eventTopic0 = crypto.Keccak256Hash([]byte(eventSignature))

// nonIndexedArgs decodes the event's non-indexed fields, in order:
// recipients, amounts, startMessageId.
var nonIndexedArgs abi.Arguments

func init() {
	addressSliceTy, err := abi.NewType("address[]", "", nil)
	if err != nil {
		panic(err)
	}
	uint256SliceTy, err := abi.NewType("uint256[]", "", nil)
	if err != nil {
		panic(err)
	}
	uint32Ty, err := abi.NewType("uint32", "", nil)
	if err != nil {
		panic(err)
	}
	nonIndexedArgs = abi.Arguments{
		{Type: addressSliceTy},
		{Type: uint256SliceTy},
		{Type: uint32Ty},
	}
}

// Result is the aggregate outcome of processing one block, per §4.E.
type Result struct {
	TotalInteresting uint64
	FailedTransfers  uint64
	NativeCount      uint64
	CrossChainCount  uint64
	Classifications  map[string]chainmodel.TxType
	Models           []chainmodel.TxModel
}

type txOutcome struct {
	model       chainmodel.TxModel
	class       chainmodel.TxType
	totalDelta  uint64
	failedDelta uint64
	crossDelta  uint64
	dropped     bool
}

// Process implements §4.E's per-transaction algorithm. Receipt fetches
// for non-native transactions run concurrently; their order of
// completion does not affect the result.
func Process(ctx context.Context, chainID uint64, block *types.Block, node nodeclient.Client, signer types.Signer) *Result {
	txs := block.Transactions()
	result := &Result{Classifications: make(map[string]chainmodel.TxType, len(txs))}
	outcomes := make([]txOutcome, len(txs))

	var wg sync.WaitGroup
	for i, tx := range txs {
		from, err := types.Sender(signer, tx)
		if err != nil {
			from = common.Address{}
		}
		model := chainmodel.FromTransaction(chainID, tx, block.Hash(), int64(block.NumberU64()), uint(i), from, "")

		if chainmodel.IsNativeCandidate(tx.To(), tx.Data()) {
			model.Classification = chainmodel.TxTypeNative
			outcomes[i] = txOutcome{model: *model, class: chainmodel.TxTypeNative, totalDelta: 1}
			continue
		}

		wg.Add(1)
		go func(i int, tx *types.Transaction, model chainmodel.TxModel) {
			defer wg.Done()
			outcomes[i] = receiptOutcome(ctx, node, tx, model)
		}(i, tx, *model)
	}
	wg.Wait()

	for i, tx := range txs {
		o := outcomes[i]
		if o.dropped {
			continue
		}
		if o.class != "" {
			result.Classifications[tx.Hash().Hex()] = o.class
		}
		result.Models = append(result.Models, o.model)
		result.TotalInteresting += o.totalDelta
		result.FailedTransfers += o.failedDelta
		switch o.class {
		case chainmodel.TxTypeNative:
			result.NativeCount++
		case chainmodel.TxTypeCrossChain:
			result.CrossChainCount += o.crossDelta
		}
	}
	return result
}

// receiptOutcome fetches one transaction's receipt and decodes the
// batch event if present, per §4.E steps 3a-3d. Only a fetch failure
// drops the transaction from the accumulators entirely; a receipt that
// simply carries no batch event still persists, contributing (0,0,0) to
// the tps accumulators, with its classification left for the relational
// store's native default (§4.E step 3b).
func receiptOutcome(ctx context.Context, node nodeclient.Client, tx *types.Transaction, model chainmodel.TxModel) txOutcome {
	receipt, err := node.TransactionReceipt(ctx, tx.Hash().Bytes())
	if err != nil || receipt == nil {
		return txOutcome{dropped: true}
	}
	startID, endID, ok := decodeBatchEvent(receipt.Logs)
	if !ok {
		return txOutcome{model: model}
	}
	xtps := uint64(endID - startID)
	var failed uint64
	if receipt.Status != types.ReceiptStatusSuccessful {
		failed = 1
	}
	model.Classification = chainmodel.TxTypeCrossChain
	return txOutcome{
		model: model, class: chainmodel.TxTypeCrossChain,
		totalDelta: xtps, failedDelta: failed, crossDelta: xtps,
	}
}

// decodeBatchEvent scans a receipt's logs for the batch event and
// extracts its start/end message ids.
func decodeBatchEvent(logs []*types.Log) (startID, endID uint32, ok bool) {
	for _, log := range logs {
		if log == nil || len(log.Topics) < 3 || log.Topics[0] != eventTopic0 {
			continue
		}
		values, err := nonIndexedArgs.Unpack(log.Data)
		if err != nil || len(values) < 3 {
			continue
		}
		start, isUint32 := values[2].(uint32)
		if !isUint32 {
			continue
		}
		end := new(big.Int).SetBytes(log.Topics[2].Bytes())
		return start, uint32(end.Uint64()), true
	}
	return 0, 0, false
}
