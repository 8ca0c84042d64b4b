// Package codec implements the canonical hex encoding used for every
// numeric and byte-array field persisted by the indexer, plus the
// Unix-timestamp-to-localized-string conversion used by the analytics
// layer. Every value this package produces must parse back to the
// original value (see the round-trip tests in codec_test.go); callers
// should never hand-roll hex.EncodeToString/big.Int math elsewhere.
package codec

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// WordWidth is the byte width used for every scalar integer field
// (u8/u64/u128), mirroring the 256-bit word size of the EVM. Using a
// single fixed width for all integer kinds avoids a family of
// width-selection bugs when a field's logical range grows (e.g. a u64
// fee later promoted to u128) without touching the persisted schema.
const WordWidth = 32

// AddressWidth is the native byte width of an Ethereum address.
const AddressWidth = 20

// istLocation is the fixed +05:30 offset used by unix_to_localized; it is
// never resolved against the system timezone database.
var istLocation = time.FixedZone("IST", 5*60*60+30*60)

// EncodeUint8 returns the canonical hex form of a u8, left-padded to
// WordWidth bytes.
func EncodeUint8(x uint8) string {
	return encodeWord([]byte{x})
}

// EncodeUint64 returns the canonical hex form of a u64, left-padded to
// WordWidth bytes.
func EncodeUint64(x uint64) string {
	b := make([]byte, 8)
	for i := 7; i >= 0; i-- {
		b[i] = byte(x)
		x >>= 8
	}
	return encodeWord(b)
}

// EncodeUint128 returns the canonical hex form of a u128-range value,
// left-padded to WordWidth bytes. Values outside [0, 2^128) are still
// encoded (truncated to WordWidth bytes) but such inputs should not
// occur given the schema's field ranges.
func EncodeUint128(x *big.Int) string {
	if x == nil {
		return encodeWord(nil)
	}
	return encodeWord(x.Bytes())
}

// EncodeAddress returns the canonical hex form of an address, at its
// native 20-byte width.
func EncodeAddress(addr common.Address) string {
	return "0x" + hex.EncodeToString(addr.Bytes())
}

// EncodeBytes returns the canonical hex form of an arbitrary fixed-width
// byte array (hashes, logs bloom, extra data, nonce, ...) at its native
// width — no padding or truncation.
func EncodeBytes(b []byte) string {
	return "0x" + hex.EncodeToString(b)
}

func encodeWord(b []byte) string {
	if len(b) > WordWidth {
		b = b[len(b)-WordWidth:]
	}
	word := make([]byte, WordWidth)
	copy(word[WordWidth-len(b):], b)
	return "0x" + hex.EncodeToString(word)
}

// ParseUint8 inverts EncodeUint8.
func ParseUint8(s string) (uint8, error) {
	b, err := decodeHex(s)
	if err != nil {
		return 0, err
	}
	if len(b) == 0 {
		return 0, nil
	}
	return b[len(b)-1], nil
}

// ParseUint64 inverts EncodeUint64.
func ParseUint64(s string) (uint64, error) {
	b, err := decodeHex(s)
	if err != nil {
		return 0, err
	}
	if len(b) > 8 {
		b = b[len(b)-8:]
	}
	var x uint64
	for _, v := range b {
		x = x<<8 | uint64(v)
	}
	return x, nil
}

// ParseUint128 inverts EncodeUint128.
func ParseUint128(s string) (*big.Int, error) {
	b, err := decodeHex(s)
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(b), nil
}

// ParseAddress inverts EncodeAddress.
func ParseAddress(s string) (common.Address, error) {
	b, err := decodeHex(s)
	if err != nil {
		return common.Address{}, err
	}
	if len(b) != AddressWidth {
		return common.Address{}, fmt.Errorf("codec: address hex has %d bytes, want %d", len(b), AddressWidth)
	}
	return common.BytesToAddress(b), nil
}

// ParseBytes inverts EncodeBytes.
func ParseBytes(s string) ([]byte, error) {
	return decodeHex(s)
}

func decodeHex(s string) ([]byte, error) {
	if s == "" {
		return nil, fmt.Errorf("codec: empty hex string")
	}
	trimmed := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if len(trimmed)%2 != 0 {
		trimmed = "0" + trimmed
	}
	return hex.DecodeString(trimmed)
}

// UnixToLocalized renders a Unix timestamp (seconds if < 1e12, else
// milliseconds) as "YYYY-MM-DD HH:MM:SS.sss IST" using a fixed +05:30
// offset.
func UnixToLocalized(ts int64) string {
	var sec, millis int64
	if ts < 1_000_000_000_000 {
		sec, millis = ts, 0
	} else {
		sec, millis = ts/1000, ts%1000
	}
	t := time.Unix(sec, millis*int64(time.Millisecond)).In(istLocation)
	return t.Format("2006-01-02 15:04:05.000") + " IST"
}
