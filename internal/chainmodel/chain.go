// Package chainmodel defines the persisted data model: chains, blocks,
// transactions, and the native/cross-chain classification tag. Native Go
// types (common.Address, *big.Int, ...) are used internally; the *Row
// types in row.go are the hex-string-encoded shape that actually reaches
// the relational store, per the codec package's encoding rules.
package chainmodel

// Chain is the minimal per-chain registry row: a chain is known once any
// block has been ingested for it, and LatestTPS always reflects the most
// recently processed block's total transaction count.
type Chain struct {
	ChainID   uint64
	LatestTPS uint64
}
