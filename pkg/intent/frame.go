// Package intent hashes orders, cancellations and onboarding messages for the
// intent-signing venue. JSON messages travel inside a fixed intent frame and are
// digested with blake2b-256; orders are serialized positionally and digested with
// sha-256 outside the frame.
package intent

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"golang.org/x/crypto/blake2b"

	"github.com/uhyunpark/perpsign/pkg/codec"
)

// frameTag is the intent scope, version and app id. It is the same for every message kind.
var frameTag = [3]byte{3, 0, 0}

// HashLength is the size of every intent digest.
const HashLength = 32

// Hash is a 32-byte intent digest. Its text form is lowercase hex without a prefix,
// which is how the venue reports order hashes.
type Hash [HashLength]byte

func (h Hash) Bytes() []byte { return h[:] }

func (h Hash) Hex() string { return hex.EncodeToString(h[:]) }

func (h Hash) String() string { return h.Hex() }

// Frame wraps payload as [3,0,0] || varint(len(payload)) || payload.
func Frame(payload []byte) []byte {
	prefix := codec.VarintLengthPrefix(uint64(len(payload)))
	out := make([]byte, 0, len(frameTag)+len(prefix)+len(payload))
	out = append(out, frameTag[:]...)
	out = append(out, prefix...)
	return append(out, payload...)
}

// HashFrame returns blake2b-256 of the framed payload.
func HashFrame(payload []byte) Hash {
	return blake2b.Sum256(Frame(payload))
}

// HashMessage frames the compact JSON encoding of v and hashes it.
func HashMessage(v any) (Hash, error) {
	payload, err := marshalCompact(v)
	if err != nil {
		return Hash{}, err
	}
	return HashFrame(payload), nil
}

// marshalCompact encodes v without HTML escaping or a trailing newline, matching
// what the verifier re-serializes.
func marshalCompact(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("failed to marshal intent payload: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte{'\n'}), nil
}
