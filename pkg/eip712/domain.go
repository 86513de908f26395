// Package eip712 computes EIP-712 digests for isolated-trader orders and their
// cancellations. The struct layouts are fixed by the verifying contract; every
// field is encoded as a 32-byte ABI word and hashed with keccak256.
package eip712

import (
	"bytes"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"

	"github.com/uhyunpark/perpsign/pkg/codec"
)

const (
	DomainTypeString = "EIP712Domain(string name,string version,uint128 chainId,address verifyingContract)"
	DomainName       = "IsolatedTrader"
	DomainVersion    = "1.0"
)

var domainTypeHash = crypto.Keccak256Hash([]byte(DomainTypeString))

// eip191Prefix precedes domain and struct hash in the final digest.
var eip191Prefix = []byte{0x19, 0x01}

// Domain binds digests to one trader contract on one chain.
type Domain struct {
	Name              string
	Version           string
	ChainID           *big.Int
	VerifyingContract string
}

// NewDomain returns the isolated-trader domain for a contract and chain id.
func NewDomain(verifyingContract string, chainID *big.Int) Domain {
	return Domain{
		Name:              DomainName,
		Version:           DomainVersion,
		ChainID:           chainID,
		VerifyingContract: verifyingContract,
	}
}

// DomainHash returns keccak256(typeHash || keccak(name) || keccak(version) || chainId || contract).
func DomainHash(d Domain) (common.Hash, error) {
	contract, err := codec.ParseAddress("verifyingContract", d.VerifyingContract)
	if err != nil {
		return common.Hash{}, err
	}
	if d.ChainID == nil || d.ChainID.Sign() < 0 {
		return common.Hash{}, &codec.EncodingError{Kind: codec.ErrMalformedInteger, Field: "chainId", Value: fmt.Sprint(d.ChainID)}
	}
	chainID, overflow := uint256.FromBig(d.ChainID)
	if overflow {
		return common.Hash{}, &codec.EncodingError{Kind: codec.ErrValueOverflow, Field: "chainId", Value: d.ChainID.String()}
	}
	chainWord, err := uint128Word("chainId", chainID)
	if err != nil {
		return common.Hash{}, err
	}

	var buf bytes.Buffer
	buf.Write(domainTypeHash.Bytes())
	buf.Write(crypto.Keccak256([]byte(d.Name)))
	buf.Write(crypto.Keccak256([]byte(d.Version)))
	buf.Write(chainWord)
	buf.Write(addressWord(contract))
	return crypto.Keccak256Hash(buf.Bytes()), nil
}

// FinalHash returns keccak256(0x1901 || domainHash || structHash).
func FinalHash(domainHash, structHash common.Hash) common.Hash {
	return crypto.Keccak256Hash(eip191Prefix, domainHash.Bytes(), structHash.Bytes())
}

// uint128Word checks v against the uint128 width and left-pads it to a word.
func uint128Word(field string, v *uint256.Int) ([]byte, error) {
	if _, err := codec.PackUnsigned(v, 16); err != nil {
		return nil, &codec.EncodingError{Kind: codec.ErrValueOverflow, Field: field, Value: v.Dec()}
	}
	return v.PaddedBytes(32), nil
}

func addressWord(addr common.Address) []byte {
	return common.LeftPadBytes(addr.Bytes(), 32)
}
