package crypto

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"github.com/cloudflare/circl/sign/ed25519"
	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// ParseECDSASignature strips the 0x prefix and the trailing venue tag from an
// ECDSA signature string and returns the 65 raw bytes with V normalized to 0/1.
func ParseECDSASignature(sig string) ([]byte, error) {
	sig = strings.TrimPrefix(sig, "0x")
	if len(sig) == 2*crypto.SignatureLength+len(ECDSATag) {
		sig = strings.TrimSuffix(sig, ECDSATag)
	}

	sigBytes, err := hex.DecodeString(sig)
	if err != nil {
		return nil, fmt.Errorf("invalid hex signature: %w", err)
	}
	if len(sigBytes) != crypto.SignatureLength {
		return nil, fmt.Errorf("signature must be %d bytes, got %d", crypto.SignatureLength, len(sigBytes))
	}
	if sigBytes[crypto.RecoveryIDOffset] >= 27 {
		sigBytes[crypto.RecoveryIDOffset] -= 27
	}
	return sigBytes, nil
}

// RecoverAddress recovers the signer address from a digest and a venue ECDSA
// signature string. personal must match how the signature was produced.
func RecoverAddress(digest []byte, sig string, personal bool) (common.Address, error) {
	if len(digest) != DigestLength {
		return common.Address{}, fmt.Errorf("invalid hash length: %d", len(digest))
	}
	sigBytes, err := ParseECDSASignature(sig)
	if err != nil {
		return common.Address{}, err
	}

	hash := digest
	if personal {
		hash = accounts.TextHash(digest)
	}

	publicKey, err := crypto.SigToPub(hash, sigBytes)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to recover public key: %w", err)
	}
	return EVMAddress(publicKey), nil
}

// VerifyECDSA reports whether sig over digest was produced by address.
func VerifyECDSA(address common.Address, digest []byte, sig string, personal bool) bool {
	recovered, err := RecoverAddress(digest, sig, personal)
	if err != nil {
		return false
	}
	return recovered == address
}

// SignatureToRSV splits a venue ECDSA signature string into R, S, V components.
// V is returned as 27/28.
func SignatureToRSV(sig string) (r, s *big.Int, v uint8, err error) {
	sigBytes, err := ParseECDSASignature(sig)
	if err != nil {
		return nil, nil, 0, err
	}
	r = new(big.Int).SetBytes(sigBytes[:32])
	s = new(big.Int).SetBytes(sigBytes[32:64])
	v = sigBytes[crypto.RecoveryIDOffset] + 27
	return r, s, v, nil
}

// VerifyEd25519 checks an ed25519 signature string against digest using the public
// key embedded in the string, and returns the signer's chain address.
func VerifyEd25519(digest []byte, sig string) (string, bool, error) {
	sigHexLen := 2 * ed25519.SignatureSize
	if len(sig) <= sigHexLen+len(Ed25519Tag) {
		return "", false, fmt.Errorf("signature too short: %d", len(sig))
	}
	if sig[sigHexLen:sigHexLen+len(Ed25519Tag)] != Ed25519Tag {
		return "", false, fmt.Errorf("missing scheme tag")
	}

	sigBytes, err := hex.DecodeString(sig[:sigHexLen])
	if err != nil {
		return "", false, fmt.Errorf("invalid hex signature: %w", err)
	}
	pub, err := base64.StdEncoding.DecodeString(sig[sigHexLen+len(Ed25519Tag):])
	if err != nil {
		return "", false, fmt.Errorf("invalid public key: %w", err)
	}
	if len(pub) != ed25519.PublicKeySize {
		return "", false, fmt.Errorf("public key must be %d bytes, got %d", ed25519.PublicKeySize, len(pub))
	}

	ok := ed25519.Verify(ed25519.PublicKey(pub), digest, sigBytes)
	return Ed25519Address(pub), ok, nil
}
