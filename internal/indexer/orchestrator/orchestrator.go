// Package orchestrator implements §4.G: it spawns one catch-up worker
// per chain whose id is already known, and promotes "inactive" endpoints
// (whose chain id could not yet be read) to active once their chain id
// becomes readable.
package orchestrator

import (
	"context"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/sirupsen/logrus"

	"github.com/rony4d/geth-indexer/internal/indexer/catchup"
	"github.com/rony4d/geth-indexer/internal/nodeclient"
	"github.com/rony4d/geth-indexer/internal/provider"
)

// pollInterval is how often inactive endpoints are retried, per §4.G.
const pollInterval = 120 * time.Second

// Orchestrator owns the active/inactive endpoint maps and spawns catch-
// up workers as chains become known.
type Orchestrator struct {
	Provider *provider.Provider
	Log      *logrus.Entry

	mu       sync.Mutex
	active   map[uint64]nodeclient.Client
	inactive map[string]nodeclient.Client

	// StartHeights holds the start height of each active chain, keyed by
	// chain id; -1 (or absent) means resume from analytics.
	StartHeights map[uint64]int64

	// OnPromote, if set, is invoked whenever an inactive endpoint's
	// chain id becomes readable, so callers keeping their own chain-id
	// lookup (the HTTP API's node registry) stay in sync.
	OnPromote func(chainID uint64, node nodeclient.Client)
}

func New(p *provider.Provider, log *logrus.Entry, active map[uint64]nodeclient.Client, inactive map[string]nodeclient.Client, startHeights map[uint64]int64) *Orchestrator {
	return &Orchestrator{
		Provider:     p,
		Log:          log,
		active:       active,
		inactive:     inactive,
		StartHeights: startHeights,
	}
}

// signerFor derives an EIP-155 signer scoped to one chain; each worker
// needs its own since a transaction's sender recovery depends on the
// chain id it was signed against.
func signerFor(chainID uint64) types.Signer {
	return types.LatestSignerForChainID(new(big.Int).SetUint64(chainID))
}

// Bootstrap spawns one catch-up worker per chain already known to be
// active, per §4.G.
func (o *Orchestrator) Bootstrap(ctx context.Context) {
	o.mu.Lock()
	chains := make(map[uint64]nodeclient.Client, len(o.active))
	for id, node := range o.active {
		chains[id] = node
	}
	o.mu.Unlock()

	for chainID, node := range chains {
		o.spawnWorker(ctx, chainID, node, o.startHeightFor(chainID))
	}
}

func (o *Orchestrator) startHeightFor(chainID uint64) *int64 {
	if h, ok := o.StartHeights[chainID]; ok {
		return &h
	}
	return nil
}

func (o *Orchestrator) spawnWorker(ctx context.Context, chainID uint64, node nodeclient.Client, startHeight *int64) {
	w := &catchup.Worker{
		ChainID:     chainID,
		Node:        node,
		Provider:    o.Provider,
		Signer:      signerFor(chainID),
		Log:         o.Log.WithField("chain_id", chainID),
		StartHeight: startHeight,
	}
	go w.Run(ctx)
}

// PollInactive runs until ctx is cancelled, attempting chain_id on
// every inactive endpoint every pollInterval. On success the endpoint
// is promoted: removed from the inactive map and given a freshly
// spawned catch-up worker with no configured start height (resume from
// analytics), per §4.G.
func (o *Orchestrator) PollInactive(ctx context.Context) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			o.pollOnce(ctx)
		}
	}
}

func (o *Orchestrator) pollOnce(ctx context.Context) {
	o.mu.Lock()
	endpoints := make(map[string]nodeclient.Client, len(o.inactive))
	for ep, node := range o.inactive {
		endpoints[ep] = node
	}
	o.mu.Unlock()

	for ep, node := range endpoints {
		chainID, ok := resolveChainID(ctx, node)
		if !ok {
			continue
		}

		o.mu.Lock()
		delete(o.inactive, ep)
		o.active[chainID] = node
		o.mu.Unlock()

		if o.OnPromote != nil {
			o.OnPromote(chainID, node)
		}
		o.spawnWorker(ctx, chainID, node, nil)
	}
}

// resolveChainID attempts to read an endpoint's chain id, reporting
// whether it succeeded.
func resolveChainID(ctx context.Context, node nodeclient.Client) (uint64, bool) {
	id, err := node.ChainID(ctx)
	if err != nil || id == nil {
		return 0, false
	}
	return id.Uint64(), true
}
