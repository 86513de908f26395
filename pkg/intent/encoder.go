package intent

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/minio/sha256-simd"

	"github.com/uhyunpark/perpsign/pkg/codec"
)

// venueTag closes every serialized order. It is appended as ASCII, not hex-decoded.
const venueTag = "Bluefin"

// Field widths of the serialized order.
const (
	amountWidth     = 16 // price, quantity, leverage, salt
	expirationWidth = 8
	evmMakerLength  = 20
	makerLength     = 32
)

// SerializedOrderLength is the size of a serialized order with a 32-byte maker.
const SerializedOrderLength = 4*amountWidth + expirationWidth + makerLength + MarketIDLength + 1 + len(venueTag)

var errNoOrderHashes = errors.New("cancel requires at least one order hash")

// Encoder hashes intent-venue orders. It holds no mutable state beyond the
// resolver, so it is safe for concurrent use when the resolver is.
type Encoder struct {
	markets MarketResolver
}

func NewEncoder(markets MarketResolver) *Encoder {
	return &Encoder{markets: markets}
}

// SerializeOrder returns the positional byte layout of the order:
// price | quantity | leverage | salt | expiration | maker | market id | flags | "Bluefin".
func (e *Encoder) SerializeOrder(ctx context.Context, o *Order) ([]byte, error) {
	if e.markets == nil {
		return nil, fmt.Errorf("no market resolver configured")
	}
	marketID, err := e.markets.ResolveMarket(ctx, o.Market)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve market %s: %w", o.Market, err)
	}
	return serializeOrder(o, marketID)
}

func serializeOrder(o *Order, marketID string) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(SerializedOrderLength)

	for _, f := range []struct {
		name, value string
		width       int
	}{
		{"price", o.Price, amountWidth},
		{"quantity", o.Quantity, amountWidth},
		{"leverage", o.Leverage, amountWidth},
		{"salt", o.Salt, amountWidth},
		{"expiration", o.Expiration, expirationWidth},
	} {
		b, err := codec.PackDecimal(f.name, f.value, f.width)
		if err != nil {
			return nil, err
		}
		buf.Write(b)
	}

	maker, err := codec.ParseHexID("maker", o.Maker, evmMakerLength, makerLength)
	if err != nil {
		return nil, err
	}
	buf.Write(maker)

	market, err := codec.ParseHexID("market", marketID, MarketIDLength)
	if err != nil {
		return nil, err
	}
	buf.Write(market)

	buf.WriteByte(o.Flags())
	buf.WriteString(venueTag)
	return buf.Bytes(), nil
}

// OrderHash returns sha-256 of the serialized order. Orders are not wrapped in
// the intent frame.
func (e *Encoder) OrderHash(ctx context.Context, o *Order) (Hash, error) {
	raw, err := e.SerializeOrder(ctx, o)
	if err != nil {
		return Hash{}, err
	}
	return sha256.Sum256(raw), nil
}

// SigningDigest returns the digest an order signature commits to: sha-256 of the
// lowercase hex text of the serialized order. It differs from OrderHash, which is
// the identifier the venue reports back.
func (e *Encoder) SigningDigest(ctx context.Context, o *Order) (Hash, error) {
	_, signing, err := e.OrderDigests(ctx, o)
	return signing, err
}

// OrderDigests returns OrderHash and SigningDigest from a single serialization.
func (e *Encoder) OrderDigests(ctx context.Context, o *Order) (hash, signing Hash, err error) {
	raw, err := e.SerializeOrder(ctx, o)
	if err != nil {
		return Hash{}, Hash{}, err
	}
	return sha256.Sum256(raw), sha256.Sum256([]byte(hex.EncodeToString(raw))), nil
}

type cancelMessage struct {
	OrderHashes []string `json:"orderHashes"`
}

type onboardingMessage struct {
	OnboardingURL string `json:"onboardingUrl"`
}

// CancelHash returns the framed blake2b-256 digest of {"orderHashes":[...]}.
// Hashes are embedded exactly as given, in order; each must decode to 32 bytes.
func CancelHash(orderHashes ...string) (Hash, error) {
	if len(orderHashes) == 0 {
		return Hash{}, errNoOrderHashes
	}
	for _, h := range orderHashes {
		if _, err := codec.ParseHash("orderHash", h); err != nil {
			return Hash{}, err
		}
	}
	return HashMessage(cancelMessage{OrderHashes: orderHashes})
}

// OnboardingHash returns the framed blake2b-256 digest of {"onboardingUrl":url}.
func OnboardingHash(url string) (Hash, error) {
	if url == "" {
		return Hash{}, fmt.Errorf("onboarding url is empty")
	}
	return HashMessage(onboardingMessage{OnboardingURL: url})
}
