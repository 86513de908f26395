// Package codec holds the low-level field packing shared by the order encoders:
// fixed-width big-endian integers, boolean flag packing, the salt+flags word and
// the varint length prefix used by intent frames.
package codec

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/multiformats/go-varint"
)

const (
	// SaltBits is the largest salt width; the low nibble of the salt word holds flags.
	SaltBits = 120

	// compactSaltBits is the salt width that still fits the 8-byte flags word.
	compactSaltBits = 60
)

// PackUnsigned returns value as exactly width big-endian bytes, zero-padded on the left.
// A nil value is a malformed integer.
func PackUnsigned(value *uint256.Int, width int) ([]byte, error) {
	return packUnsigned("", value, width)
}

func packUnsigned(field string, value *uint256.Int, width int) ([]byte, error) {
	if value == nil {
		return nil, newError(ErrMalformedInteger, field, "<nil>")
	}
	if width <= 0 || width > 32 {
		return nil, newError(ErrValueOverflow, field, "width "+strconv.Itoa(width))
	}
	if value.BitLen() > width*8 {
		return nil, newError(ErrValueOverflow, field, value.Dec())
	}
	return value.PaddedBytes(width), nil
}

// PackDecimal parses a base-10 string and packs it to width bytes.
// The field name is carried into any returned EncodingError.
func PackDecimal(field, s string, width int) ([]byte, error) {
	v, err := ParseUint(field, s)
	if err != nil {
		return nil, err
	}
	return packUnsigned(field, v, width)
}

// ParseUint parses a non-negative base-10 integer of at most 256 bits.
func ParseUint(field, s string) (*uint256.Int, error) {
	if s == "" {
		return nil, newError(ErrMalformedInteger, field, s)
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return nil, newError(ErrMalformedInteger, field, s)
		}
	}
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, newError(ErrMalformedInteger, field, s)
	}
	return v, nil
}

// Flag is one boolean attribute and its fixed bit position (0..7).
type Flag struct {
	Set bool
	Bit uint
}

// PackFlags ORs 1<<Bit for every set flag. Bit positions are fixed at compile
// time, so a position outside 0..7 panics whether or not the flag is set.
func PackFlags(flags ...Flag) byte {
	var b byte
	for _, f := range flags {
		if f.Bit > 7 {
			panic(fmt.Sprintf("codec: flag bit %d out of range", f.Bit))
		}
		if f.Set {
			b |= 1 << f.Bit
		}
	}
	return b
}

// PackSaltAndFlags builds the flags word of an EIP-712 order: salt shifted left by
// four bits with flags in the low nibble. Salts below 2^60 produce the 8-byte form
// (15 hex digits of salt and one flag digit); larger salts up to 2^120-1 produce 16 bytes.
func PackSaltAndFlags(salt *uint256.Int, flags byte) ([]byte, error) {
	if flags > 0x0f {
		return nil, newError(ErrValueOverflow, "flags", strconv.Itoa(int(flags)))
	}
	if salt.BitLen() > SaltBits {
		return nil, newError(ErrSaltTooLarge, "salt", salt.Dec())
	}

	word := new(uint256.Int).Lsh(salt, 4)
	word.Or(word, uint256.NewInt(uint64(flags)))

	if salt.BitLen() <= compactSaltBits {
		return word.PaddedBytes(8), nil
	}
	return word.PaddedBytes(16), nil
}

// VarintLengthPrefix encodes n as an unsigned LEB128 varint: 7-bit groups, least
// significant first, continuation bit on every byte but the last.
func VarintLengthPrefix(n uint64) []byte {
	return varint.ToUvarint(n)
}

// ParseAddress validates a 0x-prefixed 20-byte hex address.
func ParseAddress(field, s string) (common.Address, error) {
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		return common.Address{}, newError(ErrMalformedAddress, field, s)
	}
	if !common.IsHexAddress(s) {
		return common.Address{}, newError(ErrMalformedAddress, field, s)
	}
	return common.HexToAddress(s), nil
}

// ParseHexID decodes a 0x-prefixed hex identifier whose length must be one of sizes bytes.
func ParseHexID(field, s string, sizes ...int) ([]byte, error) {
	raw, ok := strings.CutPrefix(s, "0x")
	if !ok {
		return nil, newError(ErrMalformedAddress, field, s)
	}
	b, err := hex.DecodeString(raw)
	if err != nil {
		return nil, newError(ErrMalformedAddress, field, s)
	}
	for _, n := range sizes {
		if len(b) == n {
			return b, nil
		}
	}
	return nil, newError(ErrMalformedAddress, field, s)
}

// ParseHash decodes a 32-byte hash given as hex, with or without a 0x prefix.
func ParseHash(field, s string) (common.Hash, error) {
	raw := strings.TrimPrefix(s, "0x")
	b, err := hex.DecodeString(raw)
	if err != nil || len(b) != common.HashLength {
		return common.Hash{}, newError(ErrMalformedInteger, field, s)
	}
	return common.BytesToHash(b), nil
}
