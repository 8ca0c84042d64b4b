package chainmodel

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTxModelRowRoundTrip(t *testing.T) {
	to := common.HexToAddress("0x00000000000000000000000000000000000001")
	bh := common.HexToHash("0xaaaa000000000000000000000000000000000000000000000000000000bb")
	bn := int64(42)
	bi := uint(3)

	original := &TxModel{
		ChainID:         1001,
		TransactionHash: common.HexToHash("0x1111111111111111111111111111111111111111111111111111111111ee"),
		Nonce:           7,
		BlockHash:       &bh,
		BlockNumber:     &bn,
		BlockIndex:      &bi,
		From:            common.HexToAddress("0x00000000000000000000000000000000000002"),
		To:              &to,
		Value:           big.NewInt(1_000_000),
		GasPrice:        big.NewInt(50),
		Gas:             21000,
		Input:           []byte{},
		Signature:       Signature{V: big.NewInt(27), R: big.NewInt(123), S: big.NewInt(456)},
		TransactionType: 0,
		Impersonated:    false,
		Classification:  TxTypeNative,
	}

	row := original.ToRow()
	got, err := FromRow(row)
	require.NoError(t, err)

	assert.Equal(t, original.ChainID, got.ChainID)
	assert.Equal(t, original.TransactionHash, got.TransactionHash)
	assert.Equal(t, original.Nonce, got.Nonce)
	assert.Equal(t, *original.BlockHash, *got.BlockHash)
	assert.Equal(t, *original.BlockNumber, *got.BlockNumber)
	assert.Equal(t, *original.BlockIndex, *got.BlockIndex)
	assert.Equal(t, original.From, got.From)
	assert.Equal(t, *original.To, *got.To)
	assert.Equal(t, 0, original.Value.Cmp(got.Value))
	assert.Equal(t, 0, original.GasPrice.Cmp(got.GasPrice))
	assert.Equal(t, original.Gas, got.Gas)
	assert.Equal(t, original.Signature.V.Cmp(got.Signature.V), 0)
	assert.Equal(t, original.TransactionType, got.TransactionType)
	assert.Equal(t, original.Classification, got.Classification)
}

func TestBlockRowEncoding(t *testing.T) {
	b := &Block{
		ChainID:     7,
		Number:      100,
		Timestamp:   1700000000,
		Hash:        common.HexToHash("0x1"),
		Difficulty:  big.NewInt(123456),
		GasLimit:    30_000_000,
		GasUsed:     21000,
		BaseFee:     big.NewInt(1_000_000_000),
	}
	row := b.ToRow()
	assert.Equal(t, int64(100), row.BlockNumber)
	assert.Equal(t, int64(1700000000), row.Timestamp)
	require.NotNil(t, row.BaseFee)
	assert.Contains(t, *row.BaseFee, "0x")
}

func TestIsNativeCandidate(t *testing.T) {
	addr := common.HexToAddress("0x1")
	assert.True(t, IsNativeCandidate(&addr, nil))
	assert.True(t, IsNativeCandidate(&addr, []byte{}))
	assert.False(t, IsNativeCandidate(nil, nil))
	assert.False(t, IsNativeCandidate(&addr, []byte{0x01}))
}
