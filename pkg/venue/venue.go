// Package venue ties encoders, keys and configuration together for the two
// supported venues. It produces signed payloads ready for a transport layer but
// never sends them.
package venue

import (
	"crypto/rand"
	"math/big"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/uhyunpark/perpsign/pkg/codec"
	"github.com/uhyunpark/perpsign/pkg/util"
)

// SignedOrder is an order digest and the signature over it.
type SignedOrder struct {
	Hash      string `json:"hash"`
	Signature string `json:"signature"`
	Signer    string `json:"signer"`
}

// SignedCancel is a cancellation digest over one or more order hashes.
type SignedCancel struct {
	Hash        string   `json:"hash"`
	OrderHashes []string `json:"orderHashes"`
	Signature   string   `json:"signature"`
	Signer      string   `json:"signer"`
}

// SignedMessage is a signed onboarding message.
type SignedMessage struct {
	Message   string `json:"message"`
	Hash      string `json:"hash"`
	Signature string `json:"signature"`
	Signer    string `json:"signer"`
}

// VerifyRemoteHash compares a locally computed hash with the one a venue echoed
// back. Case and a 0x prefix are ignored.
func VerifyRemoteHash(local, remote string) error {
	if normalizeHash(local) != normalizeHash(remote) {
		return codec.HashMismatch(local, remote)
	}
	return nil
}

func normalizeHash(h string) string {
	h = strings.TrimPrefix(strings.TrimPrefix(h, "0x"), "0X")
	return strings.ToLower(h)
}

type options struct {
	log   *zap.Logger
	clock util.Clock
}

type Option func(*options)

func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.log = l }
}

func WithClock(c util.Clock) Option {
	return func(o *options) { o.clock = c }
}

func buildOptions(opts []Option) options {
	o := options{log: zap.NewNop(), clock: util.RealClock{}}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

// salt returns a unique-enough order salt: the current unix millisecond followed
// by three random digits.
func salt(clock util.Clock) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000))
	if err != nil {
		return "", err
	}
	ms := clock.Now().UnixMilli()
	return strconv.FormatInt(ms*1000+n.Int64(), 10), nil
}

func expiresAt(clock util.Clock, ttl time.Duration) time.Time {
	return clock.Now().Add(ttl)
}
