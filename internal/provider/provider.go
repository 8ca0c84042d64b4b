// Package provider implements the façade (§4.D) that unifies the
// analytics and relational stores behind the public operations the
// HTTP layer consumes.
package provider

import (
	"context"
	"sort"

	"github.com/rony4d/geth-indexer/internal/aggregate"
	"github.com/rony4d/geth-indexer/internal/analytics"
	"github.com/rony4d/geth-indexer/internal/chainmodel"
	"github.com/rony4d/geth-indexer/internal/codec"
	"github.com/rony4d/geth-indexer/internal/relstore"
)

// NowFunc is injected so tests can pin "the current wall clock"; in
// production it is time.Now().Unix.
type NowFunc func() int64

// Provider holds one handle per store and applies the small set of
// higher-level policies (anchor selection, bucketing) described in §4.D.
type Provider struct {
	Analytics *analytics.Store
	Relstore  *relstore.Store
	Now       NowFunc
}

func New(a *analytics.Store, r *relstore.Store, now NowFunc) *Provider {
	return &Provider{Analytics: a, Relstore: r, Now: now}
}

// AddBlock delegates to the analytics store. Write-path errors are
// surfaced, per §4.D / §7.
func (p *Provider) AddBlock(ctx context.Context, chainID uint64, ts int64, successfulXfers, totalXfers, nativeXfers, crossChainXfers, txCount uint64, height int64) error {
	return p.Analytics.AddBlock(ctx, chainID, ts, successfulXfers, totalXfers, nativeXfers, crossChainXfers, txCount, height)
}

// AddTxns delegates to the relational store. It is expected to be
// invoked from a fire-and-forget task by the catch-up loop (§5); this
// method itself is synchronous.
func (p *Provider) AddTxns(ctx context.Context, chainID uint64, txCount uint64, txs []chainmodel.TxModel, classificationMap map[string]chainmodel.TxType) error {
	return p.Relstore.AddTxns(ctx, chainID, txCount, txs, classificationMap)
}

// GetTxs delegates to the relational store.
func (p *Provider) GetTxs(ctx context.Context, id relstore.Identifier, filter relstore.Filter, parts relstore.Parts, txType chainmodel.TxType, limit relstore.Limit) ([]chainmodel.TxModel, []relstore.TxSummary, error) {
	return p.Relstore.GetTxs(ctx, id, filter, parts, txType, limit)
}

// LiveTPS and AllChainsLiveTPS pass straight through to the analytics
// store; read-path errors are demoted to empty, per §4.D.
func (p *Provider) LiveTPS(ctx context.Context, chainID uint64, stride int, txType chainmodel.TxType) []aggregate.Point {
	pts, err := p.Analytics.LiveTPS(ctx, chainID, stride, txType)
	if err != nil {
		return nil
	}
	return pts
}

func (p *Provider) AllChainsLiveTPS(ctx context.Context, stride int, txType chainmodel.TxType) []aggregate.Point {
	pts, err := p.Analytics.AllChainsLiveTPS(ctx, stride, txType)
	if err != nil {
		return nil
	}
	return pts
}

func (p *Provider) LatestTPS(ctx context.Context, chainID uint64, txType chainmodel.TxType) uint64 {
	v, err := p.Analytics.LatestTPS(ctx, chainID, txType)
	if err != nil {
		return 0
	}
	return v
}

func (p *Provider) AllChainsLatestTPS(ctx context.Context, txType chainmodel.TxType) uint64 {
	v, err := p.Analytics.AllChainsLatestTPS(ctx, txType)
	if err != nil {
		return 0
	}
	return v
}

// anchor resolves the Unix-second reference point for a chain's
// range queries: the chain's own latest_timestamp when one is given,
// else the current wall clock, per §4.D.
func (p *Provider) anchor(ctx context.Context, chainID *uint64) int64 {
	if chainID != nil {
		ts, err := p.Analytics.LatestTimestamp(ctx, *chainID)
		if err == nil {
			return ts
		}
	}
	return p.Now()
}

const daySeconds = 24 * 3600

// SuccessfulXfersLastDay and TotalXfersLastDay implement §4.D's
// anchor-selection policy for the 24h range queries. TotalXfersLastDay
// returns the same sum as SuccessfulXfersLastDay: both read the
// association successful_xfers_in_range selects for tx_type; the
// chain:<id>:total association that AddBlock writes is not read here.
func (p *Provider) SuccessfulXfersLastDay(ctx context.Context, chainID *uint64, txType chainmodel.TxType) uint64 {
	anchor := p.anchor(ctx, chainID)
	if chainID == nil {
		v, err := p.Analytics.AllChainsSuccessXfersInRange(ctx, daySeconds, anchor, txType)
		if err != nil {
			return 0
		}
		return v
	}
	v, err := p.Analytics.SuccessfulXfersInRange(ctx, *chainID, daySeconds, anchor, txType)
	if err != nil {
		return 0
	}
	return v
}

func (p *Provider) TotalXfersLastDay(ctx context.Context, chainID *uint64, txType chainmodel.TxType) uint64 {
	return p.SuccessfulXfersLastDay(ctx, chainID, txType)
}

// TxResponse is one bucket of a transaction_volume series.
type TxResponse struct {
	SuccessfulTxns  uint64
	TotalTxns       uint64
	TimestampString string
}

// bucketParams resolves (interval_seconds, bucket_count) from stride,
// per §4.D.
func bucketParams(stride int) (int64, int) {
	switch stride {
	case 1:
		return 30, 120
	case 2:
		return 10, 60
	default:
		return 3600, 24
	}
}

// TransactionVolume implements §4.D's transaction_volume: a series of
// per-bucket sums over a sliding window anchored at the chain's (or
// wall-clock) reference point, sorted ascending by timestamp string.
func (p *Provider) TransactionVolume(ctx context.Context, chainID *uint64, txType chainmodel.TxType, stride int) []TxResponse {
	anchor := p.anchor(ctx, chainID)
	interval, bucketCount := bucketParams(stride)

	out := make([]TxResponse, 0, bucketCount-1)
	for i := 1; i < bucketCount; i++ {
		windowStart := anchor - int64(i)*interval
		windowEnd := anchor - int64(i-1)*interval
		window := windowEnd - windowStart
		sum := p.sumInWindow(ctx, chainID, window, windowEnd, txType)
		out = append(out, TxResponse{
			SuccessfulTxns:  sum,
			TotalTxns:       sum,
			TimestampString: codec.UnixToLocalized(windowEnd),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TimestampString < out[j].TimestampString })
	return out
}

func (p *Provider) sumInWindow(ctx context.Context, chainID *uint64, window, anchor int64, txType chainmodel.TxType) uint64 {
	if chainID == nil {
		v, err := p.Analytics.AllChainsSuccessXfersInRange(ctx, window, anchor, txType)
		if err != nil {
			return 0
		}
		return v
	}
	v, err := p.Analytics.SuccessfulXfersInRange(ctx, *chainID, window, anchor, txType)
	if err != nil {
		return 0
	}
	return v
}
