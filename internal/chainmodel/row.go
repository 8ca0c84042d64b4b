package chainmodel

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/rony4d/geth-indexer/internal/codec"
)

// BlockRow is the hex-encoded shape of Block as it is written to, and
// read back from, the relational store. Every numeric/byte field uses
// codec.Encode*; BlockNumber and Timestamp are the two fields the spec
// calls out as persisted as plain signed 64-bit integers rather than hex.
type BlockRow struct {
	ChainID     uint64
	BlockNumber int64
	Timestamp   int64

	Hash             string
	ParentHash       string
	UnclesHash       string
	Beneficiary      string
	StateRoot        string
	TransactionsRoot string
	ReceiptsRoot     string
	LogsBloom        string
	Difficulty       string
	GasLimit         string
	GasUsed          string
	ExtraData        string
	MixHash          string
	Nonce            string
	BaseFee          *string
}

// ToRow renders Block into its hex-encoded persisted form.
func (b *Block) ToRow() BlockRow {
	row := BlockRow{
		ChainID:          b.ChainID,
		BlockNumber:      b.Number,
		Timestamp:        b.Timestamp,
		Hash:             codec.EncodeBytes(b.Hash.Bytes()),
		ParentHash:       codec.EncodeBytes(b.ParentHash.Bytes()),
		UnclesHash:       codec.EncodeBytes(b.UnclesHash.Bytes()),
		Beneficiary:      codec.EncodeAddress(b.Beneficiary),
		StateRoot:        codec.EncodeBytes(b.StateRoot.Bytes()),
		TransactionsRoot: codec.EncodeBytes(b.TransactionsRoot.Bytes()),
		ReceiptsRoot:     codec.EncodeBytes(b.ReceiptsRoot.Bytes()),
		LogsBloom:        codec.EncodeBytes(b.LogsBloom.Bytes()),
		Difficulty:       codec.EncodeUint128(b.Difficulty),
		GasLimit:         codec.EncodeUint64(b.GasLimit),
		GasUsed:          codec.EncodeUint64(b.GasUsed),
		ExtraData:        codec.EncodeBytes(b.ExtraData),
		MixHash:          codec.EncodeBytes(b.MixHash.Bytes()),
		Nonce:            codec.EncodeBytes(b.Nonce[:]),
	}
	if b.BaseFee != nil {
		fee := codec.EncodeUint128(b.BaseFee)
		row.BaseFee = &fee
	}
	return row
}

// TxRow is the hex-encoded shape of TxModel as persisted.
type TxRow struct {
	ChainID         uint64
	TransactionHash string

	Nonce       string
	BlockHash   *string
	BlockNumber *int64
	BlockIndex  *int64

	From  string
	To    *string
	Value string

	GasPrice *string
	Gas      string
	Input    string

	V string
	R string
	S string

	TransactionType string
	Impersonated    bool

	GasFeeCap *string
	GasTipCap *string

	TxType TxType
}

// ToRow renders TxModel into its hex-encoded persisted form.
func (m *TxModel) ToRow() TxRow {
	row := TxRow{
		ChainID:         m.ChainID,
		TransactionHash: codec.EncodeBytes(m.TransactionHash.Bytes()),
		Nonce:           codec.EncodeUint64(m.Nonce),
		From:            codec.EncodeAddress(m.From),
		Value:           codec.EncodeUint128(m.Value),
		Gas:             codec.EncodeUint64(m.Gas),
		Input:           codec.EncodeBytes(m.Input),
		V:               codec.EncodeUint128(m.Signature.V),
		R:               codec.EncodeUint128(m.Signature.R),
		S:               codec.EncodeUint128(m.Signature.S),
		TransactionType: codec.EncodeUint8(m.TransactionType),
		Impersonated:    m.Impersonated,
		TxType:          m.Classification,
	}
	if m.BlockHash != nil {
		h := codec.EncodeBytes(m.BlockHash.Bytes())
		row.BlockHash = &h
	}
	if m.BlockNumber != nil {
		row.BlockNumber = m.BlockNumber
	}
	if m.BlockIndex != nil {
		idx := int64(*m.BlockIndex)
		row.BlockIndex = &idx
	}
	if m.To != nil {
		to := codec.EncodeAddress(*m.To)
		row.To = &to
	}
	if m.GasPrice != nil {
		gp := codec.EncodeUint128(m.GasPrice)
		row.GasPrice = &gp
	}
	if m.GasFeeCap != nil {
		v := codec.EncodeUint128(m.GasFeeCap)
		row.GasFeeCap = &v
	}
	if m.GasTipCap != nil {
		v := codec.EncodeUint128(m.GasTipCap)
		row.GasTipCap = &v
	}
	return row
}

// FromRow reconstructs a TxModel from its persisted hex-encoded row.
func FromRow(row TxRow) (*TxModel, error) {
	hashBytes, err := codec.ParseBytes(row.TransactionHash)
	if err != nil {
		return nil, err
	}
	nonce, err := codec.ParseUint64(row.Nonce)
	if err != nil {
		return nil, err
	}
	from, err := codec.ParseAddress(row.From)
	if err != nil {
		return nil, err
	}
	value, err := codec.ParseUint128(row.Value)
	if err != nil {
		return nil, err
	}
	gas, err := codec.ParseUint64(row.Gas)
	if err != nil {
		return nil, err
	}
	input, err := codec.ParseBytes(row.Input)
	if err != nil {
		return nil, err
	}
	v, err := codec.ParseUint128(row.V)
	if err != nil {
		return nil, err
	}
	r, err := codec.ParseUint128(row.R)
	if err != nil {
		return nil, err
	}
	s, err := codec.ParseUint128(row.S)
	if err != nil {
		return nil, err
	}
	txType, err := codec.ParseUint8(row.TransactionType)
	if err != nil {
		return nil, err
	}

	m := &TxModel{
		ChainID:         row.ChainID,
		TransactionHash: common.BytesToHash(hashBytes),
		Nonce:           nonce,
		From:            from,
		Value:           value,
		Gas:             gas,
		Input:           input,
		Signature:       Signature{V: v, R: r, S: s},
		TransactionType: txType,
		Impersonated:    row.Impersonated,
		Classification:  row.TxType,
	}
	if row.BlockHash != nil {
		b, err := codec.ParseBytes(*row.BlockHash)
		if err != nil {
			return nil, err
		}
		h := common.BytesToHash(b)
		m.BlockHash = &h
	}
	m.BlockNumber = row.BlockNumber
	if row.BlockIndex != nil {
		idx := uint(*row.BlockIndex)
		m.BlockIndex = &idx
	}
	if row.To != nil {
		to, err := codec.ParseAddress(*row.To)
		if err != nil {
			return nil, err
		}
		m.To = &to
	}
	if row.GasPrice != nil {
		gp, err := codec.ParseUint128(*row.GasPrice)
		if err != nil {
			return nil, err
		}
		m.GasPrice = gp
	}
	if row.GasFeeCap != nil {
		fc, err := codec.ParseUint128(*row.GasFeeCap)
		if err != nil {
			return nil, err
		}
		m.GasFeeCap = fc
	}
	if row.GasTipCap != nil {
		tc, err := codec.ParseUint128(*row.GasTipCap)
		if err != nil {
			return nil, err
		}
		m.GasTipCap = tc
	}
	return m, nil
}
