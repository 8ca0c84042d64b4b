// Package aggregate implements the accumulate-along-longest-chain
// kernel (§4.H): nearest-neighbor time alignment across sparsely and
// independently sampled per-chain time series, without rebinning.
package aggregate

// Point is one sample of a time series: Count is the value recorded at
// UnixTS (seconds); TSString is the pre-rendered localized timestamp
// string, which is what every series is sorted by (ascending) before it
// reaches this package.
type Point struct {
	Count    uint64
	UnixTS   int64
	TSString string
}

// AccumulateAlongLongestChain merges several independently-sampled
// series into one, aligned to the longest input series (the "base").
//
// Base selection: the longest series wins; ties are broken in favor of
// the series whose first element has the larger UnixTS. An empty input
// list returns an empty series.
//
// Alignment: for each base entry, every other series contributes the
// value of its nearest-by-|Δt| entry that has not yet been consumed by
// an earlier base entry. This consumption is tracked globally per other
// series, not reset between base entries — as the upstream source does.
// A consequence (preserved deliberately, not a bug to silently fix): if
// two base entries' true nearest neighbors in some other series
// coincide, the later base entry only gets that series' second-nearest
// entry, because the first already consumed the true nearest one.
func AccumulateAlongLongestChain(series [][]Point) []Point {
	if len(series) == 0 {
		return nil
	}

	baseIdx := 0
	for i := 1; i < len(series); i++ {
		switch {
		case len(series[i]) > len(series[baseIdx]):
			baseIdx = i
		case len(series[i]) == len(series[baseIdx]):
			if firstTS(series[i]) > firstTS(series[baseIdx]) {
				baseIdx = i
			}
		}
	}
	base := series[baseIdx]
	if len(base) == 0 {
		return nil
	}

	others := make([][]Point, 0, len(series)-1)
	for i, s := range series {
		if i == baseIdx {
			continue
		}
		others = append(others, s)
	}
	consumed := make([]map[int]bool, len(others))
	for i := range consumed {
		consumed[i] = make(map[int]bool)
	}

	out := make([]Point, 0, len(base))
	for _, e := range base {
		sum := e.Count
		for oi, other := range others {
			idx, found := nearestUnconsumed(other, consumed[oi], e.UnixTS)
			if found {
				consumed[oi][idx] = true
				sum += other[idx].Count
			}
		}
		out = append(out, Point{Count: sum, UnixTS: e.UnixTS, TSString: e.TSString})
	}
	return out
}

func firstTS(s []Point) int64 {
	if len(s) == 0 {
		return 0
	}
	return s[0].UnixTS
}

// nearestUnconsumed returns the index, within s, of the not-yet-consumed
// entry whose UnixTS is closest to target. On a tie the first match
// (lowest index) wins.
func nearestUnconsumed(s []Point, consumed map[int]bool, target int64) (int, bool) {
	best := -1
	var bestDelta int64
	for i, p := range s {
		if consumed[i] {
			continue
		}
		delta := p.UnixTS - target
		if delta < 0 {
			delta = -delta
		}
		if best == -1 || delta < bestDelta {
			best = i
			bestDelta = delta
		}
	}
	if best == -1 {
		return 0, false
	}
	return best, true
}
