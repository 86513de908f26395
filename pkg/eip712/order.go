package eip712

import (
	"bytes"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/uhyunpark/perpsign/pkg/codec"
)

const OrderTypeString = "Order(bytes8 flags,uint128 quantity,uint128 price,uint128 triggerPrice,uint128 leverage,address maker,uint128 expiration)"

var orderTypeHash = crypto.Keccak256Hash([]byte(OrderTypeString))

const flagsWordLength = 8

// Flag bit positions inside the low nibble of the flags word.
const (
	bitIsBuy      = 0
	bitReduceOnly = 1
)

// Order is an isolated-trader order. Price, Quantity, Leverage and TriggerPrice
// are base-10 integers in 1e18 fixed point; Salt and Expiration are base-10
// integers; Maker is a 0x-prefixed address.
type Order struct {
	IsBuy        bool
	ReduceOnly   bool
	Price        string
	Quantity     string
	Leverage     string
	TriggerPrice string // zero for non-conditional orders
	Salt         string
	Expiration   string // unix seconds
	Maker        string
}

// Flags returns the boolean nibble: isBuy is bit 0, reduceOnly bit 1.
func (o *Order) Flags() byte {
	return codec.PackFlags(
		codec.Flag{Set: o.IsBuy, Bit: bitIsBuy},
		codec.Flag{Set: o.ReduceOnly, Bit: bitReduceOnly},
	)
}

// FlagsWord returns salt<<4 | flags, the raw value of the bytes8 flags member.
// Salts of 2^60 and above do not fit bytes8 and fail with ErrSaltTooLarge.
func (o *Order) FlagsWord() ([]byte, error) {
	salt, err := codec.ParseUint("salt", o.Salt)
	if err != nil {
		return nil, err
	}
	word, err := codec.PackSaltAndFlags(salt, o.Flags())
	if err != nil {
		return nil, err
	}
	if len(word) != flagsWordLength {
		return nil, &codec.EncodingError{Kind: codec.ErrSaltTooLarge, Field: "salt", Value: o.Salt}
	}
	return word, nil
}

func (o *Order) triggerPrice() string {
	if o.TriggerPrice == "" {
		return "0"
	}
	return o.TriggerPrice
}

// StructHash returns the keccak256 of the ABI-encoded order struct.
func StructHash(o *Order) (common.Hash, error) {
	flags, err := o.FlagsWord()
	if err != nil {
		return common.Hash{}, err
	}
	maker, err := codec.ParseAddress("maker", o.Maker)
	if err != nil {
		return common.Hash{}, err
	}

	var buf bytes.Buffer
	buf.Write(orderTypeHash.Bytes())
	buf.Write(common.RightPadBytes(flags, 32))

	for _, f := range []struct{ name, value string }{
		{"quantity", o.Quantity},
		{"price", o.Price},
		{"triggerPrice", o.triggerPrice()},
		{"leverage", o.Leverage},
	} {
		word, err := decimalWord(f.name, f.value)
		if err != nil {
			return common.Hash{}, err
		}
		buf.Write(word)
	}

	buf.Write(addressWord(maker))

	expiration, err := decimalWord("expiration", o.Expiration)
	if err != nil {
		return common.Hash{}, err
	}
	buf.Write(expiration)

	return crypto.Keccak256Hash(buf.Bytes()), nil
}

func decimalWord(field, s string) ([]byte, error) {
	v, err := codec.ParseUint(field, s)
	if err != nil {
		return nil, err
	}
	return uint128Word(field, v)
}
