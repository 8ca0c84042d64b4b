// Package catchup implements the per-chain polling state machine
// (§4.F): determine resume height, drive the block processor, persist
// results, advance, and recover from transient errors without ever
// rewinding.
package catchup

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/sirupsen/logrus"

	"github.com/rony4d/geth-indexer/internal/indexer/processor"
	"github.com/rony4d/geth-indexer/internal/nodeclient"
	"github.com/rony4d/geth-indexer/internal/provider"
)

// SleepMS is the loop's base backoff between iterations, per §4.F.
const SleepMS = 10 * time.Millisecond

// Worker owns exactly one chain id; no two workers ever write the same
// chain (§4.F invariant).
type Worker struct {
	ChainID     uint64
	Node        nodeclient.Client
	Provider    *provider.Provider
	Signer      types.Signer
	Log         *logrus.Entry
	StartHeight *int64 // nil or -1 means "resume from analytics"

	indexerBlockHeight int64
	validatorMaxHeight int64
}

// Run blocks until ctx is cancelled. It never rewinds: indexerBlockHeight
// and validatorMaxHeight are monotonic non-decreasing for the life of
// the worker.
func (w *Worker) Run(ctx context.Context) {
	w.indexerBlockHeight = w.resumeHeight(ctx)
	query := w.indexerBlockHeight + 1
	if w.indexerBlockHeight == 0 {
		query = 0
	}

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		maxHeight, err := w.Node.BlockNumber(ctx)
		if err != nil {
			w.Log.WithError(err).Debug("read max height failed, retrying")
			sleep(ctx, SleepMS)
			continue
		}
		_ = maxHeight

		advanced := w.innerLoop(ctx, query)
		if advanced {
			query = w.indexerBlockHeight + 1
		}
		sleep(ctx, SleepMS)
	}
}

// resumeHeight initialises indexerBlockHeight from the configured start
// height, or from the analytics store's latest_height, or zero (§4.F).
func (w *Worker) resumeHeight(ctx context.Context) int64 {
	if w.StartHeight != nil && *w.StartHeight >= 0 {
		return *w.StartHeight
	}
	h, err := w.Provider.Analytics.LatestHeight(ctx, w.ChainID)
	if err != nil {
		return 0
	}
	return h
}

// innerLoop requests the block at query, waits for it to appear, and on
// success runs the processor and writes analytics. It returns whether
// indexerBlockHeight advanced.
func (w *Worker) innerLoop(ctx context.Context, query int64) bool {
	for {
		select {
		case <-ctx.Done():
			return false
		default:
		}

		block, err := w.Node.BlockByNumber(ctx, big.NewInt(query))
		if err != nil {
			// Node errored (not just "not produced yet"): fall back to
			// the outer loop, which re-reads max height.
			return false
		}
		if block == nil {
			sleep(ctx, SleepMS)
			continue
		}

		number := int64(block.NumberU64())
		if number > w.validatorMaxHeight {
			w.validatorMaxHeight = number
		}
		if !shouldProcess(w.indexerBlockHeight, w.validatorMaxHeight) {
			return false
		}

		w.indexerBlockHeight = number
		result := processor.Process(ctx, w.ChainID, block, w.Node, w.Signer)

		successful := result.TotalInteresting - result.FailedTransfers
		if err := w.Provider.AddBlock(ctx, w.ChainID, int64(block.Time()), successful, result.TotalInteresting,
			result.NativeCount, result.CrossChainCount, uint64(len(block.Transactions())), number); err != nil {
			w.Log.WithError(err).Warn("add_block failed, breaking to outer loop")
			return true
		}

		go func() {
			if err := w.Provider.AddTxns(context.Background(), w.ChainID, uint64(len(block.Transactions())), result.Models, result.Classifications); err != nil {
				w.Log.WithError(err).Warn("add_txns failed")
			}
		}()

		return true
	}
}

// shouldProcess implements §4.F's "indexer_block_height==0 or
// indexer_block_height != validator_max_height" processing gate.
func shouldProcess(indexerBlockHeight, validatorMaxHeight int64) bool {
	return indexerBlockHeight == 0 || indexerBlockHeight != validatorMaxHeight
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
