package crypto

import (
	"crypto/ecdsa"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/uhyunpark/perpsign/pkg/codec"
)

// Scheme identifies the curve a SigningKey signs with.
type Scheme string

const (
	SchemeSecp256k1 Scheme = "secp256k1"
	SchemeEd25519   Scheme = "ed25519"
)

// Venue tags appended after the raw signature bytes.
const (
	// ECDSATag marks a secp256k1 signature for on-chain verification.
	ECDSATag = "01"
	// Ed25519Tag precedes the base64 public key in an ed25519 signature string.
	Ed25519Tag = "1"
)

// DigestLength is the size of every hash handed to a SigningKey.
const DigestLength = 32

// SigningKey signs 32-byte digests and renders the signature in the exact string
// format the venue verifier parses. Implementations never retain the digest.
type SigningKey interface {
	Scheme() Scheme
	Address() string
	Sign(digest []byte) (string, error)
}

// Sign signs digest with whatever scheme key carries.
func Sign(key SigningKey, digest []byte) (string, error) {
	return key.Sign(digest)
}

// SignWithScheme signs digest after checking that key matches the scheme the caller requires.
func SignWithScheme(key SigningKey, scheme Scheme, digest []byte) (string, error) {
	if key.Scheme() != scheme {
		return "", codec.SchemeMismatch(string(scheme), string(key.Scheme()))
	}
	return key.Sign(digest)
}

// ECDSAKey is a secp256k1 key producing recoverable r||s||v signatures.
type ECDSAKey struct {
	privateKey *ecdsa.PrivateKey
	address    common.Address
	personal   bool
}

// GenerateECDSAKey creates a new random secp256k1 key.
func GenerateECDSAKey() (*ECDSAKey, error) {
	privateKey, err := crypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}
	return NewECDSAKey(privateKey), nil
}

// ECDSAKeyFromHex parses a hex private key, with or without 0x prefix.
func ECDSAKeyFromHex(hexKey string) (*ECDSAKey, error) {
	privateKey, err := crypto.HexToECDSA(strings.TrimPrefix(hexKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}
	return NewECDSAKey(privateKey), nil
}

// NewECDSAKey wraps an existing private key. The key is borrowed, not copied.
func NewECDSAKey(privateKey *ecdsa.PrivateKey) *ECDSAKey {
	return &ECDSAKey{
		privateKey: privateKey,
		address:    crypto.PubkeyToAddress(privateKey.PublicKey),
	}
}

// WithPersonalSign returns a key that signs keccak256("\x19Ethereum Signed Message:\n32" || digest)
// instead of the digest itself, which is what browser wallets and the EVM venue's verifier use.
func (k *ECDSAKey) WithPersonalSign() *ECDSAKey {
	cp := *k
	cp.personal = true
	return &cp
}

// PersonalSign reports whether the key prefixes digests before signing.
func (k *ECDSAKey) PersonalSign() bool { return k.personal }

func (k *ECDSAKey) Scheme() Scheme { return SchemeSecp256k1 }

// Address returns the EIP-55 checksummed address of the key.
func (k *ECDSAKey) Address() string { return k.address.Hex() }

// EthAddress returns the address as a go-ethereum type.
func (k *ECDSAKey) EthAddress() common.Address { return k.address }

// Sign returns 0x || r || s || v || 01, with v in {27, 28}.
func (k *ECDSAKey) Sign(digest []byte) (string, error) {
	sig, err := k.SignRaw(digest)
	if err != nil {
		return "", err
	}
	return hexutil.Encode(sig) + ECDSATag, nil
}

// SignRaw returns the 65-byte [R || S || V] signature with V adjusted to 27/28.
func (k *ECDSAKey) SignRaw(digest []byte) ([]byte, error) {
	if len(digest) != DigestLength {
		return nil, fmt.Errorf("hash must be %d bytes, got %d", DigestLength, len(digest))
	}
	hash := digest
	if k.personal {
		hash = accounts.TextHash(digest)
	}

	sig, err := crypto.Sign(hash, k.privateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to sign: %w", err)
	}
	sig[crypto.RecoveryIDOffset] += 27
	return sig, nil
}
