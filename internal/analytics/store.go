// Package analytics implements the typed operations over the KV server
// described in §4.B: per-chain registry, sorted-set time series, scalar
// counters, and range aggregations.
package analytics

import (
	"context"
	"sort"
	"strconv"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/rony4d/geth-indexer/internal/aggregate"
	"github.com/rony4d/geth-indexer/internal/chainmodel"
	"github.com/rony4d/geth-indexer/internal/codec"
	"github.com/rony4d/geth-indexer/internal/xerrors"
)

// Store is a stateless adapter over a single shared KV connection. The
// mutex is the same "single mutable handle guarded by a lock" discipline
// §9 calls out as the source's tightest contention point; it is kept
// here rather than swapped for a pool so add_block's five
// sorted-set-appends-plus-five-scalar-writes read as one logical
// operation to any concurrent reader on the same chain prefix.
type Store struct {
	mu     sync.Mutex
	client client
}

func New(c *redis.Client) *Store {
	return &Store{client: c}
}

func wrapAnalytics(cause error, msg string) error {
	if cause == nil {
		return nil
	}
	return xerrors.Wrap(xerrors.KindAnalytics, cause, msg)
}

// AddBlock persists one block's analytics (§4.B). Writes happen in a
// fixed order — chains set, then the five ordered associations, then
// the scalars — but the whole operation is not atomic: a failure part-way
// leaves the earlier writes in place, so a reader can observe a partial
// write (§7, §9).
func (s *Store) AddBlock(ctx context.Context, chainID uint64, ts int64, successfulXfers, totalXfers, nativeXfers, crossChainXfers, txCount uint64, height int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.client.SAdd(ctx, chainsSetKey(), chainID).Err(); err != nil {
		return wrapAnalytics(err, "add chain to registry")
	}

	associations := []struct {
		key    string
		member uint64
	}{
		{successfulKey(chainID), successfulXfers},
		{totalKey(chainID), totalXfers},
		{liveTpsKey(chainID), txCount},
		{totalNativeKey(chainID), nativeXfers},
		{totalXChainKey(chainID), crossChainXfers},
	}
	for _, a := range associations {
		z := redis.Z{Score: float64(ts), Member: strconv.FormatUint(a.member, 10)}
		if err := s.client.ZAdd(ctx, a.key, z).Err(); err != nil {
			return wrapAnalytics(err, "append ordered association "+a.key)
		}
	}

	scalars := []struct {
		key   string
		value string
	}{
		{heightKey(chainID), strconv.FormatInt(height, 10)},
		{timestampKey(chainID), strconv.FormatInt(ts, 10)},
		{tpsKey(chainID), strconv.FormatUint(txCount, 10)},
		{ntpsKey(chainID), strconv.FormatUint(nativeXfers, 10)},
		{xtpsKey(chainID), strconv.FormatUint(crossChainXfers, 10)},
	}
	for _, sc := range scalars {
		if err := s.client.Set(ctx, sc.key, sc.value, 0).Err(); err != nil {
			return wrapAnalytics(err, "set scalar "+sc.key)
		}
	}
	return nil
}

func (s *Store) LatestHeight(ctx context.Context, chainID uint64) (int64, error) {
	return s.getInt(ctx, heightKey(chainID))
}

func (s *Store) LatestTimestamp(ctx context.Context, chainID uint64) (int64, error) {
	return s.getInt(ctx, timestampKey(chainID))
}

func (s *Store) getInt(ctx context.Context, key string) (int64, error) {
	s.mu.Lock()
	v, err := s.client.Get(ctx, key).Result()
	s.mu.Unlock()
	if err == redis.Nil {
		return 0, wrapAnalytics(err, "missing scalar "+key)
	}
	if err != nil {
		return 0, wrapAnalytics(err, "read scalar "+key)
	}
	n, perr := strconv.ParseInt(v, 10, 64)
	if perr != nil {
		return 0, wrapAnalytics(perr, "parse scalar "+key)
	}
	return n, nil
}

func windowForStride(stride int) int64 {
	if stride == 1 {
		return 3600
	}
	return 600
}

// liveTPSKeyFor resolves the ordered-association key used by LiveTPS for
// a given tx_type, per §4.B. An unknown tx_type has no key.
func liveTPSKeyFor(chainID uint64, txType chainmodel.TxType) (string, bool) {
	switch txType {
	case chainmodel.TxTypeAll, "":
		return liveTpsKey(chainID), true
	case chainmodel.TxTypeNative:
		return totalNativeKey(chainID), true
	case chainmodel.TxTypeCrossChain:
		return totalXChainKey(chainID), true
	default:
		return "", false
	}
}

// rangeKeyFor resolves the ordered-association key used by
// SuccessfulXfersInRange for a given tx_type — a different mapping than
// LiveTPS's (the "all" branch reads "successful", not "live_tps").
func rangeKeyFor(chainID uint64, txType chainmodel.TxType) (string, bool) {
	switch txType {
	case chainmodel.TxTypeAll, "":
		return successfulKey(chainID), true
	case chainmodel.TxTypeNative:
		return totalNativeKey(chainID), true
	case chainmodel.TxTypeCrossChain:
		return totalXChainKey(chainID), true
	default:
		return "", false
	}
}

func scalarKeyFor(chainID uint64, txType chainmodel.TxType) (string, bool) {
	switch txType {
	case chainmodel.TxTypeAll, "":
		return tpsKey(chainID), true
	case chainmodel.TxTypeNative:
		return ntpsKey(chainID), true
	case chainmodel.TxTypeCrossChain:
		return xtpsKey(chainID), true
	default:
		return "", false
	}
}

// LiveTPS implements §4.B's live_tps.
func (s *Store) LiveTPS(ctx context.Context, chainID uint64, stride int, txType chainmodel.TxType) ([]aggregate.Point, error) {
	key, ok := liveTPSKeyFor(chainID, txType)
	if !ok {
		return nil, nil
	}
	latestTS, err := s.LatestTimestamp(ctx, chainID)
	if err != nil {
		return nil, err
	}
	window := windowForStride(stride)
	return s.rangeSeries(ctx, key, latestTS-window, latestTS)
}

// AllChainsLiveTPS implements §4.B's all_chains_live_tps: per-chain
// live_tps fanned out then aligned via accumulate_along_longest_chain.
func (s *Store) AllChainsLiveTPS(ctx context.Context, stride int, txType chainmodel.TxType) ([]aggregate.Point, error) {
	chains, err := s.Chains(ctx)
	if err != nil {
		return nil, err
	}
	series := make([][]aggregate.Point, 0, len(chains))
	for _, c := range chains {
		pts, err := s.LiveTPS(ctx, c, stride, txType)
		if err != nil {
			continue // read-path errors demoted to empty by the caller's contract
		}
		series = append(series, pts)
	}
	if len(series) == 0 {
		return nil, nil
	}
	return aggregate.AccumulateAlongLongestChain(series), nil
}

// SuccessfulXfersInRange implements §4.B's successful_xfers_in_range.
func (s *Store) SuccessfulXfersInRange(ctx context.Context, chainID uint64, windowSeconds int64, anchorTS int64, txType chainmodel.TxType) (uint64, error) {
	key, ok := rangeKeyFor(chainID, txType)
	if !ok {
		return 0, nil
	}
	pts, err := s.rangeSeries(ctx, key, anchorTS-windowSeconds, anchorTS)
	if err != nil {
		return 0, err
	}
	var sum uint64
	for _, p := range pts {
		sum += p.Count
	}
	return sum, nil
}

// AllChainsSuccessXfersInRange implements §4.B's
// all_chains_success_xfers_in_range: a plain fan-out sum, no alignment.
func (s *Store) AllChainsSuccessXfersInRange(ctx context.Context, windowSeconds int64, anchorTS int64, txType chainmodel.TxType) (uint64, error) {
	chains, err := s.Chains(ctx)
	if err != nil {
		return 0, err
	}
	var sum uint64
	for _, c := range chains {
		n, err := s.SuccessfulXfersInRange(ctx, c, windowSeconds, anchorTS, txType)
		if err != nil {
			continue
		}
		sum += n
	}
	return sum, nil
}

// LatestTPS implements §4.B's latest_tps.
func (s *Store) LatestTPS(ctx context.Context, chainID uint64, txType chainmodel.TxType) (uint64, error) {
	key, ok := scalarKeyFor(chainID, txType)
	if !ok {
		return 0, nil
	}
	v, err := s.getInt(ctx, key)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, nil
	}
	return uint64(v), nil
}

// AllChainsLatestTPS implements §4.B's all_chains_latest_tps.
func (s *Store) AllChainsLatestTPS(ctx context.Context, txType chainmodel.TxType) (uint64, error) {
	chains, err := s.Chains(ctx)
	if err != nil {
		return 0, err
	}
	var sum uint64
	for _, c := range chains {
		n, err := s.LatestTPS(ctx, c, txType)
		if err != nil {
			continue
		}
		sum += n
	}
	return sum, nil
}

// Chains returns every known chain id (members of the "chains" set).
func (s *Store) Chains(ctx context.Context) ([]uint64, error) {
	s.mu.Lock()
	members, err := s.client.SMembers(ctx, chainsSetKey()).Result()
	s.mu.Unlock()
	if err != nil {
		return nil, wrapAnalytics(err, "list chains")
	}
	ids := make([]uint64, 0, len(members))
	for _, m := range members {
		id, perr := strconv.ParseUint(m, 10, 64)
		if perr != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *Store) rangeSeries(ctx context.Context, key string, min, max int64) ([]aggregate.Point, error) {
	s.mu.Lock()
	zs, err := s.client.ZRangeByScoreWithScores(ctx, key, &redis.ZRangeBy{
		Min: strconv.FormatInt(min, 10),
		Max: strconv.FormatInt(max, 10),
	}).Result()
	s.mu.Unlock()
	if err != nil {
		return nil, wrapAnalytics(err, "range scan "+key)
	}
	points := make([]aggregate.Point, 0, len(zs))
	for _, z := range zs {
		member, _ := z.Member.(string)
		count, perr := strconv.ParseUint(member, 10, 64)
		if perr != nil {
			continue
		}
		ts := int64(z.Score)
		points = append(points, aggregate.Point{
			Count:    count,
			UnixTS:   ts,
			TSString: codec.UnixToLocalized(ts),
		})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].TSString < points[j].TSString })
	return points, nil
}
