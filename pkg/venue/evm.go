package venue

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/uhyunpark/perpsign/params"
	"github.com/uhyunpark/perpsign/pkg/codec"
	"github.com/uhyunpark/perpsign/pkg/crypto"
	"github.com/uhyunpark/perpsign/pkg/eip712"
)

// EVMVenue signs isolated-trader orders with an ECDSA key.
type EVMVenue struct {
	enc           *eip712.Encoder
	key           *crypto.ECDSAKey
	onboardingURL string
	opts          options
	log           *zap.SugaredLogger
}

func NewEVMVenue(cfg params.EVM, key crypto.SigningKey, opts ...Option) (*EVMVenue, error) {
	if key.Scheme() != crypto.SchemeSecp256k1 {
		return nil, codec.SchemeMismatch(string(crypto.SchemeSecp256k1), string(key.Scheme()))
	}
	ek, ok := key.(*crypto.ECDSAKey)
	if !ok {
		return nil, fmt.Errorf("evm venue requires *crypto.ECDSAKey, got %T", key)
	}
	if cfg.PersonalSign {
		ek = ek.WithPersonalSign()
	}

	domain := eip712.NewDomain(cfg.TraderContract, cfg.ChainID)
	if cfg.DomainName != "" {
		domain.Name = cfg.DomainName
	}
	if cfg.DomainVersion != "" {
		domain.Version = cfg.DomainVersion
	}
	enc, err := eip712.NewEncoder(domain)
	if err != nil {
		return nil, err
	}

	o := buildOptions(opts)
	v := &EVMVenue{
		enc:           enc,
		key:           ek,
		onboardingURL: cfg.OnboardingURL,
		opts:          o,
		log:           o.log.Sugar().With("venue", "evm"),
	}
	v.log.Debugw("venue ready",
		"contract", domain.VerifyingContract,
		"chainId", domain.ChainID.String(),
		"domainHash", enc.DomainHash().Hex(),
		"signer", ek.Address(),
		"personalSign", ek.PersonalSign(),
	)
	return v, nil
}

func (v *EVMVenue) Encoder() *eip712.Encoder { return v.enc }

func (v *EVMVenue) Address() string { return v.key.Address() }

// NewOrder fills maker, salt and expiration for an order valid for ttl.
func (v *EVMVenue) NewOrder(isBuy bool, price, quantity, leverage string, ttl time.Duration) (*eip712.Order, error) {
	s, err := salt(v.opts.clock)
	if err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	return &eip712.Order{
		IsBuy:        isBuy,
		Price:        price,
		Quantity:     quantity,
		Leverage:     leverage,
		TriggerPrice: "0",
		Salt:         s,
		Expiration:   strconv.FormatInt(expiresAt(v.opts.clock, ttl).Unix(), 10),
		Maker:        v.key.Address(),
	}, nil
}

// SignOrder hashes and signs an order. An empty maker is filled with the signer's
// address; any other maker must match it.
func (v *EVMVenue) SignOrder(order *eip712.Order) (*SignedOrder, error) {
	o := *order
	if o.Maker == "" {
		o.Maker = v.key.Address()
	} else if !strings.EqualFold(o.Maker, v.key.Address()) {
		return nil, fmt.Errorf("maker %s does not match signer %s", o.Maker, v.key.Address())
	}

	h, err := v.enc.OrderHash(&o)
	if err != nil {
		return nil, err
	}
	sig, err := crypto.SignWithScheme(v.key, crypto.SchemeSecp256k1, h.Bytes())
	if err != nil {
		return nil, fmt.Errorf("failed to sign order: %w", err)
	}

	v.log.Infow("signed order", "hash", h.Hex(), "isBuy", o.IsBuy, "price", o.Price, "quantity", o.Quantity)
	return &SignedOrder{Hash: h.Hex(), Signature: sig, Signer: v.key.Address()}, nil
}

// SignCancel signs a cancellation of the given order hashes.
func (v *EVMVenue) SignCancel(orderHashes ...string) (*SignedCancel, error) {
	h, err := v.enc.CancelHashHex(orderHashes...)
	if err != nil {
		return nil, err
	}
	sig, err := crypto.SignWithScheme(v.key, crypto.SchemeSecp256k1, h.Bytes())
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

// SignOnboarding signs keccak256 of the onboarding URL. Onboarding is always
// personal-signed, whatever the order signing mode.
func (v *EVMVenue) SignOnboarding() (*SignedMessage, error) {
	if v.onboardingURL == "" {
		return nil, fmt.Errorf("no onboarding url configured")
	}
	h := eip712.OnboardingHash(v.onboardingURL)
	sig, err := v.key.WithPersonalSign().Sign(h.Bytes())
	if err != nil {
		return nil, fmt.Errorf("failed to sign onboarding: %w", err)
	}

	v.log.Infow("signed onboarding", "url", v.onboardingURL)
	return &SignedMessage{Message: v.onboardingURL, Hash: h.Hex(), Signature: sig, Signer: v.key.Address()}, nil
}

// Verify recovers the signer of a signed order and checks it against the venue key.
func (v *EVMVenue) Verify(signed *SignedOrder) error {
	digest, err := codec.ParseHash("hash", signed.Hash)
	if err != nil {
		return err
	}
	if !crypto.VerifyECDSA(v.key.EthAddress(), digest.Bytes(), signed.Signature, v.key.PersonalSign()) {
		return fmt.Errorf("signature does not recover to %s", v.key.Address())
	}
	return nil
}

// ConfirmOrder checks the hash the venue assigned to a submitted order.
func (v *EVMVenue) ConfirmOrder(signed *SignedOrder, remoteHash string) error {
	if err := VerifyRemoteHash(signed.Hash, remoteHash); err != nil {
		v.log.Warnw("remote hash mismatch", "local", signed.Hash, "remote", remoteHash)
		return err
	}
	return nil
}
