package venue

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/uhyunpark/perpsign/params"
	"github.com/uhyunpark/perpsign/pkg/crypto"
	"github.com/uhyunpark/perpsign/pkg/intent"
)

// IntentVenue signs intent-venue orders with an ed25519 key.
type IntentVenue struct {
	enc           *intent.Encoder
	key           crypto.SigningKey
	onboardingURL string
	opts          options
	log           *zap.SugaredLogger
}

// NewIntentVenue resolves markets through markets. The key's scheme is checked
// on every signature.
func NewIntentVenue(cfg params.Intent, markets intent.MarketResolver, key crypto.SigningKey, opts ...Option) *IntentVenue {
	o := buildOptions(opts)
	return &IntentVenue{
		enc:           intent.NewEncoder(markets),
		key:           key,
		onboardingURL: cfg.OnboardingURL,
		opts:          o,
		log:           o.log.Sugar().With("venue", "intent"),
	}
}

// NewIntentVenueFromConfig builds the market registry from cfg.Markets.
func NewIntentVenueFromConfig(cfg params.Intent, key crypto.SigningKey, opts ...Option) (*IntentVenue, error) {
	ms, err := intent.ParseMarkets(cfg.Markets)
	if err != nil {
		return nil, err
	}
	reg, err := intent.NewMarketRegistryFrom(ms)
	if err != nil {
		return nil, err
	}
	return NewIntentVenue(cfg, reg, key, opts...), nil
}

func (v *IntentVenue) Encoder() *intent.Encoder { return v.enc }

func (v *IntentVenue) Address() string { return v.key.Address() }

// NewOrder fills maker, salt and expiration for an orderbook-only order valid for ttl.
func (v *IntentVenue) NewOrder(market string, isBuy bool, orderType intent.OrderType, price, quantity, leverage string, ttl time.Duration) (*intent.Order, error) {
	s, err := salt(v.opts.clock)
	if err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	return &intent.Order{
		Market:        market,
		IsBuy:         isBuy,
		OrderbookOnly: true,
		OrderType:     orderType,
		TimeInForce:   intent.TimeInForceGTT,
		Price:         price,
		Quantity:      quantity,
		Leverage:      leverage,
		Salt:          s,
		Expiration:    strconv.FormatInt(expiresAt(v.opts.clock, ttl).UnixMilli(), 10),
		Maker:         v.key.Address(),
	}, nil
}

func (v *IntentVenue) sign(digest intent.Hash) (string, error) {
	return crypto.SignWithScheme(v.key, crypto.SchemeEd25519, digest.Bytes())
}

// SignOrder hashes and signs an order. The signature covers the signing digest;
// the returned Hash is the order hash the venue reports. An empty maker is filled
// with the signer's address; any other maker must match it.
func (v *IntentVenue) SignOrder(ctx context.Context, order *intent.Order) (*SignedOrder, error) {
	if err := order.Validate(); err != nil {
		return nil, err
	}
	o := *order
	if o.Maker == "" {
		o.Maker = v.key.Address()
	} else if !strings.EqualFold(o.Maker, v.key.Address()) {
		return nil, fmt.Errorf("maker %s does not match signer %s", o.Maker, v.key.Address())
	}

	h, digest, err := v.enc.OrderDigests(ctx, &o)
	if err != nil {
		return nil, err
	}
	sig, err := v.sign(digest)
	if err != nil {
		return nil, fmt.Errorf("failed to sign order: %w", err)
	}

	v.log.Infow("signed order", "hash", h.Hex(), "market", o.Market, "side", o.Side(), "quantity", o.Quantity)
	return &SignedOrder{Hash: h.Hex(), Signature: sig, Signer: v.key.Address()}, nil
}

// OrderRequest signs an order and wraps it in the body the venue accepts.
func (v *IntentVenue) OrderRequest(ctx context.Context, order *intent.Order) (*intent.OrderRequest, *SignedOrder, error) {
	signed, err := v.SignOrder(ctx, order)
	if err != nil {
		return nil, nil, err
	}
	o := *order
	o.Maker = signed.Signer
	req, err := intent.NewOrderRequest(&o, signed.Signature)
	if err != nil {
		return nil, nil, err
	}
	return req, signed, nil
}

// SignCancel signs a cancellation of the given order hashes.
func (v *IntentVenue) SignCancel(orderHashes ...string) (*SignedCancel, error) {
	h, err := intent.CancelHash(orderHashes...)
	if err != nil {
		return nil, err
	}
	sig, err := v.sign(h)
	if err != nil {
		return nil, fmt.Errorf("failed to sign cancel: %w", err)
	}

	v.log.Infow("signed cancel", "hash", h.Hex(), "orders", len(orderHashes))
	return &SignedCancel{
		Hash:        h.Hex(),
		OrderHashes: append([]string(nil), orderHashes...),
		Signature:   sig,
		Signer:      v.key.Address(),
	}, nil
}

// CancelRequest signs a cancellation and wraps it for the given market.
func (v *IntentVenue) CancelRequest(symbol string, orderHashes ...string) (*intent.CancelRequest, error) {
	signed, err := v.SignCancel(orderHashes...)
	if err != nil {
		return nil, err
	}
	return &intent.CancelRequest{
		Symbol:          symbol,
		OrderHashes:     signed.OrderHashes,
		CancelSignature: signed.Signature,
	}, nil
}

// SignOnboarding signs the framed {"onboardingUrl": url} message.
func (v *IntentVenue) SignOnboarding() (*SignedMessage, error) {
	h, err := intent.OnboardingHash(v.onboardingURL)
	if err != nil {
		return nil, err
	}
	sig, err := v.sign(h)
	if err != nil {
		return nil, fmt.Errorf("failed to sign onboarding: %w", err)
	}

	v.log.Infow("signed onboarding", "url", v.onboardingURL)
	return &SignedMessage{Message: v.onboardingURL, Hash: h.Hex(), Signature: sig, Signer: v.key.Address()}, nil
}

// ConfirmOrder checks the hash the venue assigned to a submitted order.
func (v *IntentVenue) ConfirmOrder(signed *SignedOrder, remoteHash string) error {
	if err := VerifyRemoteHash(signed.Hash, remoteHash); err != nil {
		v.log.Warnw("remote hash mismatch", "local", signed.Hash, "remote", remoteHash)
		return err
	}
	return nil
}
