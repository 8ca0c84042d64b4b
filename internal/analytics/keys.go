package analytics

import "fmt"

// Key templates mirror the naming used by the original Rust source's
// db/src/providers/cache.rs: a flat "chains" set plus a "chain:<id>:*"
// namespace per chain. Keeping the literal template here, rather than
// composing it ad hoc at each call site, is what keeps §9's "each
// logical operation doesn't interleave with another logical operation's
// writes to the same key prefix" invariant auditable in one place.

func chainsSetKey() string { return "chains" }

func heightKey(chainID uint64) string    { return fmt.Sprintf("chain:%d:height", chainID) }
func timestampKey(chainID uint64) string { return fmt.Sprintf("chain:%d:timestamp", chainID) }
func tpsKey(chainID uint64) string       { return fmt.Sprintf("chain:%d:tps", chainID) }
func ntpsKey(chainID uint64) string      { return fmt.Sprintf("chain:%d:ntps", chainID) }
func xtpsKey(chainID uint64) string      { return fmt.Sprintf("chain:%d:xtps", chainID) }

func successfulKey(chainID uint64) string  { return fmt.Sprintf("chain:%d:successful", chainID) }
func totalKey(chainID uint64) string       { return fmt.Sprintf("chain:%d:total", chainID) }
func liveTpsKey(chainID uint64) string     { return fmt.Sprintf("chain:%d:live_tps", chainID) }
func totalNativeKey(chainID uint64) string { return fmt.Sprintf("chain:%d:total_native", chainID) }
func totalXChainKey(chainID uint64) string { return fmt.Sprintf("chain:%d:total_x_chain", chainID) }
