package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAccumulateEmptyInput(t *testing.T) {
	assert.Nil(t, AccumulateAlongLongestChain(nil))
	assert.Nil(t, AccumulateAlongLongestChain([][]Point{}))
}

func TestAccumulateSingleSeriesIdentity(t *testing.T) {
	series := []Point{
		{Count: 10, UnixTS: 100, TSString: "a"},
		{Count: 20, UnixTS: 200, TSString: "b"},
	}
	got := AccumulateAlongLongestChain([][]Point{series})
	assert.Equal(t, series, got)
}

func TestAccumulateTwoSeriesAlignment(t *testing.T) {
	// Scenario 6 from spec.md §8: A is longer and becomes the base.
	a := []Point{
		{Count: 10, UnixTS: 1, TSString: "t1"},
		{Count: 20, UnixTS: 2, TSString: "t2"},
		{Count: 30, UnixTS: 3, TSString: "t3"},
	}
	b := []Point{
		{Count: 100, UnixTS: 2, TSString: "t2"},
	}
	got := AccumulateAlongLongestChain([][]Point{a, b})
	// b has only one entry (ts=2), and it is within |Δt|=1 of a's first
	// row (ts=1), so the base loop consumes it there before ever reaching
	// a's second row (ts=2), which would have been the true nearest
	// match. This is the global-consumption quirk (§9), not a bug: the
	// kernel never looks ahead across base rows before committing a
	// consumption.
	want := []Point{
		{Count: 110, UnixTS: 1, TSString: "t1"},
		{Count: 20, UnixTS: 2, TSString: "t2"},
		{Count: 30, UnixTS: 3, TSString: "t3"},
	}
	assert.Equal(t, want, got)
}

func TestAccumulateBaseTieBreakPrefersLargerFirstTimestamp(t *testing.T) {
	a := []Point{{Count: 1, UnixTS: 10, TSString: "a"}, {Count: 2, UnixTS: 20, TSString: "b"}}
	b := []Point{{Count: 5, UnixTS: 50, TSString: "c"}, {Count: 6, UnixTS: 60, TSString: "d"}}
	got := AccumulateAlongLongestChain([][]Point{a, b})
	// b has the larger first UnixTS (50 > 10) so it becomes the base.
	assert.Equal(t, int64(50), got[0].UnixTS)
	assert.Equal(t, int64(60), got[1].UnixTS)
}

func TestAccumulateGlobalConsumptionQuirk(t *testing.T) {
	// Two base rows whose true nearest neighbor in `other` coincide: the
	// second base row is pushed to the second-nearest entry because the
	// first already consumed the true nearest one. This is documented,
	// preserved behaviour (§9), not a bug to silently fix.
	base := []Point{
		{Count: 1, UnixTS: 100, TSString: "t100"},
		{Count: 1, UnixTS: 101, TSString: "t101"},
		{Count: 1, UnixTS: 102, TSString: "t102"},
	}
	other := []Point{
		{Count: 1000, UnixTS: 100, TSString: "o100"},
		{Count: 2000, UnixTS: 500, TSString: "o500"},
	}
	got := AccumulateAlongLongestChain([][]Point{base, other})
	// Row 0 (ts=100) takes other[0] (ts=100, exact match).
	assert.Equal(t, uint64(1001), got[0].Count)
	// Row 1 (ts=101) would also prefer other[0], but it's consumed, so
	// it falls back to other[1] (ts=500).
	assert.Equal(t, uint64(2001), got[1].Count)
	// Row 2 (ts=102) has nothing left unconsumed.
	assert.Equal(t, uint64(1), got[2].Count)
}
