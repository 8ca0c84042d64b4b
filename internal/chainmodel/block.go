package chainmodel

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Block holds exactly the header fields the indexer persists, keyed by
// the unique pair (ChainID, Number). It intentionally does not carry the
// full transaction list or body — transactions are persisted separately
// as TxModel rows, linked back to their block by BlockNumber/BlockHash.
type Block struct {
	ChainID uint64
	Number  int64

	Hash             common.Hash
	ParentHash       common.Hash
	UnclesHash       common.Hash // a.k.a. ommers hash
	Beneficiary      common.Address
	StateRoot        common.Hash
	TransactionsRoot common.Hash
	ReceiptsRoot     common.Hash
	LogsBloom        types.Bloom
	Difficulty       *big.Int
	GasLimit         uint64
	GasUsed          uint64
	Timestamp        int64 // unix seconds
	ExtraData        []byte
	MixHash          common.Hash
	Nonce            types.BlockNonce
	BaseFee          *big.Int // optional; nil pre-London
}

// BlockFromHeader builds the persisted Block shape from a go-ethereum header,
// the representation returned by the external node client for any block
// (legacy or post-EIP-1559).
func BlockFromHeader(chainID uint64, h *types.Header) *Block {
	b := &Block{
		ChainID:          chainID,
		Number:           h.Number.Int64(),
		Hash:             h.Hash(),
		ParentHash:       h.ParentHash,
		UnclesHash:       h.UncleHash,
		Beneficiary:      h.Coinbase,
		StateRoot:        h.Root,
		TransactionsRoot: h.TxHash,
		ReceiptsRoot:     h.ReceiptHash,
		LogsBloom:        h.Bloom,
		Difficulty:       new(big.Int).Set(h.Difficulty),
		GasLimit:         h.GasLimit,
		GasUsed:          h.GasUsed,
		Timestamp:        int64(h.Time),
		ExtraData:        append([]byte(nil), h.Extra...),
		MixHash:          h.MixDigest,
		Nonce:            h.Nonce,
	}
	if h.BaseFee != nil {
		b.BaseFee = new(big.Int).Set(h.BaseFee)
	}
	return b
}
