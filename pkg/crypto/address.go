package crypto

import (
	"crypto/ecdsa"
	"encoding/hex"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/crypto/blake2b"
)

// ed25519AddressFlag is the scheme byte prepended to the public key before hashing.
const ed25519AddressFlag = 0x00

// EVMAddress derives the 20-byte account address of a secp256k1 public key.
func EVMAddress(pub *ecdsa.PublicKey) common.Address {
	return crypto.PubkeyToAddress(*pub)
}

// Ed25519Address derives the 32-byte chain address of an ed25519 public key:
// 0x || hex(blake2b-256(0x00 || pub)).
func Ed25519Address(pub []byte) string {
	buf := make([]byte, 0, 1+len(pub))
	buf = append(buf, ed25519AddressFlag)
	buf = append(buf, pub...)
	sum := blake2b.Sum256(buf)
	return "0x" + hex.EncodeToString(sum[:])
}
