package codec

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUint8RoundTrip(t *testing.T) {
	for _, x := range []uint8{0, 1, 0x7f, 0xff} {
		got, err := ParseUint8(EncodeUint8(x))
		require.NoError(t, err)
		assert.Equal(t, x, got)
	}
}

func TestUint64RoundTrip(t *testing.T) {
	for _, x := range []uint64{0, 1, 42, 1 << 63, ^uint64(0)} {
		got, err := ParseUint64(EncodeUint64(x))
		require.NoError(t, err)
		assert.Equal(t, x, got)
	}
}

func TestUint128RoundTrip(t *testing.T) {
	values := []*big.Int{
		big.NewInt(0),
		big.NewInt(1),
		new(big.Int).Lsh(big.NewInt(1), 127),
		new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1)),
	}
	for _, x := range values {
		got, err := ParseUint128(EncodeUint128(x))
		require.NoError(t, err)
		assert.Equal(t, 0, x.Cmp(got))
	}
}

func TestAddressRoundTrip(t *testing.T) {
	addr := common.HexToAddress("0x000000000000000000000000000000000000001a")
	encoded := EncodeAddress(addr)
	assert.Len(t, encoded, 2+2*AddressWidth)
	got, err := ParseAddress(encoded)
	require.NoError(t, err)
	assert.Equal(t, addr, got)
}

func TestBytesRoundTrip(t *testing.T) {
	hash := common.HexToHash("0xdeadbeef00000000000000000000000000000000000000000000000000aa")
	encoded := EncodeBytes(hash.Bytes())
	got, err := ParseBytes(encoded)
	require.NoError(t, err)
	assert.Equal(t, hash.Bytes(), got)
}

func TestEncodeWordWidth(t *testing.T) {
	assert.Len(t, EncodeUint64(7), 2+2*WordWidth)
	assert.Len(t, EncodeUint8(7), 2+2*WordWidth)
}

func TestUnixToLocalizedSeconds(t *testing.T) {
	// 2021-01-01T00:00:00Z == 1609459200
	got := UnixToLocalized(1609459200)
	assert.Equal(t, "2021-01-01 05:30:00.000 IST", got)
}

func TestUnixToLocalizedMillis(t *testing.T) {
	got := UnixToLocalized(1609459200123)
	assert.Equal(t, "2021-01-01 05:30:00.123 IST", got)
}

func TestUnixToLocalizedBoundary(t *testing.T) {
	// exactly the seconds/millis threshold is treated as milliseconds
	got := UnixToLocalized(1_000_000_000_000)
	assert.Contains(t, got, "IST")
}
