package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/cloudflare/circl/sign/ed25519"
)

// Ed25519Key signs digests for the intent venue. Signatures carry the public key
// so the verifier needs no prior registration.
type Ed25519Key struct {
	privateKey ed25519.PrivateKey
	publicKey  ed25519.PublicKey
	address    string
}

// GenerateEd25519Key creates a new random ed25519 key.
func GenerateEd25519Key() (*Ed25519Key, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}
	return &Ed25519Key{privateKey: priv, publicKey: pub, address: Ed25519Address(pub)}, nil
}

// Ed25519KeyFromHex builds a key from a 32-byte hex seed, with or without 0x prefix.
func Ed25519KeyFromHex(hexSeed string) (*Ed25519Key, error) {
	seed, err := hex.DecodeString(strings.TrimPrefix(hexSeed, "0x"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}
	return Ed25519KeyFromSeed(seed)
}

// Ed25519KeyFromSeed builds a key from a 32-byte seed.
func Ed25519KeyFromSeed(seed []byte) (*Ed25519Key, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("seed must be %d bytes, got %d", ed25519.SeedSize, len(seed))
	}
	priv := ed25519.NewKeyFromSeed(seed)
	pub := priv.Public().(ed25519.PublicKey)
	return &Ed25519Key{privateKey: priv, publicKey: pub, address: Ed25519Address(pub)}, nil
}

func (k *Ed25519Key) Scheme() Scheme { return SchemeEd25519 }

// Address returns the 32-byte chain address derived from the public key.
func (k *Ed25519Key) Address() string { return k.address }

// PublicKey returns a copy of the raw 32-byte public key.
func (k *Ed25519Key) PublicKey() []byte {
	return append([]byte(nil), k.publicKey...)
}

// PublicKeyBase64 is the form appended to every signature string.
func (k *Ed25519Key) PublicKeyBase64() string {
	return base64.StdEncoding.EncodeToString(k.publicKey)
}

// Sign returns lowercase hex(signature) || "1" || base64(publicKey).
func (k *Ed25519Key) Sign(digest []byte) (string, error) {
	if len(digest) != DigestLength {
		return "", fmt.Errorf("hash must be %d bytes, got %d", DigestLength, len(digest))
	}
	sig := ed25519.Sign(k.privateKey, digest)
	return hex.EncodeToString(sig) + Ed25519Tag + k.PublicKeyBase64(), nil
}
