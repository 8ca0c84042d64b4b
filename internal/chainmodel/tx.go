package chainmodel

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// TxType classifies a transaction at ingest time. Assigned exactly once
// and never mutated afterwards (§3 invariant).
type TxType string

const (
	TxTypeNative     TxType = "native"
	TxTypeCrossChain TxType = "cross_chain"
	// TxTypeAll is only ever used as a filter value, never persisted.
	TxTypeAll TxType = "all"
)

// Signature is the transaction's ECDSA signature, carried verbatim (v, r, s).
type Signature struct {
	V *big.Int
	R *big.Int
	S *big.Int
}

// TxModel is the full persisted transaction shape (§3). BlockHash,
// BlockNumber and BlockIndex are nil for a transaction observed before
// its containing block is known; in practice the indexer always has the
// block in hand before persisting, so these are populated.
type TxModel struct {
	ChainID         uint64
	TransactionHash common.Hash

	Nonce       uint64
	BlockHash   *common.Hash
	BlockNumber *int64
	BlockIndex  *uint

	From  common.Address
	To    *common.Address
	Value *big.Int

	GasPrice *big.Int // optional; FromTransaction always sets it (the fee cap for dynamic-fee transactions)
	Gas      uint64
	Input    []byte

	Signature Signature

	// TransactionType is the EIP-2718 type code (0 = legacy, 1 =
	// access-list, 2 = dynamic fee, ...).
	TransactionType uint8

	// Impersonated is always false for transactions produced by ingest;
	// it exists to keep the persisted schema compatible with tooling
	// that injects synthetic ("impersonated") transactions out-of-band.
	Impersonated bool

	GasFeeCap *big.Int // optional, EIP-1559
	GasTipCap *big.Int // optional, EIP-1559

	Classification TxType
}

// FromTransaction builds a TxModel from a go-ethereum transaction plus
// the block context and sender address resolved by the caller (the
// sender requires a chain-specific signer and is therefore not derivable
// from the transaction alone). classification must already have been
// decided by the block processor (§4.E) before this is called.
func FromTransaction(chainID uint64, tx *types.Transaction, blockHash common.Hash, blockNumber int64, blockIndex uint, from common.Address, classification TxType) *TxModel {
	v, r, s := tx.RawSignatureValues()
	m := &TxModel{
		ChainID:         chainID,
		TransactionHash: tx.Hash(),
		Nonce:           tx.Nonce(),
		BlockHash:       &blockHash,
		BlockNumber:     &blockNumber,
		BlockIndex:      &blockIndex,
		From:            from,
		To:              tx.To(),
		Value:           new(big.Int).Set(tx.Value()),
		Gas:             tx.Gas(),
		Input:           append([]byte(nil), tx.Data()...),
		Signature:       Signature{V: v, R: r, S: s},
		TransactionType: uint8(tx.Type()),
		Impersonated:    false,
		Classification:  classification,
	}
	if gp := tx.GasPrice(); gp != nil {
		m.GasPrice = new(big.Int).Set(gp)
	}
	if tx.Type() == types.DynamicFeeTxType {
		m.GasFeeCap = new(big.Int).Set(tx.GasFeeCap())
		m.GasTipCap = new(big.Int).Set(tx.GasTipCap())
	}
	return m
}

// IsNativeCandidate reports whether a transaction statically qualifies
// as a native transfer per §4.E step 1: empty input (or the literal
// string "0x") and a present recipient.
func IsNativeCandidate(to *common.Address, input []byte) bool {
	return to != nil && len(input) == 0
}
