package venue

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/uhyunpark/perpsign/params"
	"github.com/uhyunpark/perpsign/pkg/codec"
	"github.com/uhyunpark/perpsign/pkg/crypto"
	"github.com/uhyunpark/perpsign/pkg/eip712"
	"github.com/uhyunpark/perpsign/pkg/intent"
	"github.com/uhyunpark/perpsign/pkg/util"
)

const (
	testECDSAKey   = "2ee813034aab842141cb85d477f7d0e359838f46fcab34a935c69410a4d39efb"
	testEd25519Key = "c501312ca9eb1aaac6344edbe160e41d3d8d79570e6440f2a84f7d9abf462270"
	testPubB64     = "kVmSBjFwjtxdymQhJJgD63QpO7BkbMfHtzJIUAjovV0="
	testEVMAddr    = "0x6F03F28bC1eBB7C9B45614bF2483E70F008A6D3D"
	testIntentAddr = "0xc6c71c996d437eb6589d1b8b17afcd1480afd5f30f6b7155ef468a9713d3240e"

	evmOrderHash  = "0xf72743780d4d05dab491a370eb280a511b96e4c68234f4e6f5f9d2fe48645df5"
	evmCancelHash = "0x35b5a2c72cb5739233fdefaca97fe456a7337c2e3fe98638c7bc7bc3a7417369"

	evmOrderSig = "0xb2b516102d7c0061990354861859cc33cd8380f5e72d15890ad86639c43ef300" +
		"26cb2de176a3d51f290b4fe99e0a1c66cdf34a479ca0015494d62378d08a56d91b01"
	evmOrderSigDirect = "0xcbe3378e039d5844702a7a00afa9df5425319f0f750a3dc14d0d7d13b964dc5f" +
		"6385fed8cff02ba9a346943d464e4d7252f19fee00644e2cbb7a23f8b56c2cc91c01"
	evmCancelSig = "0x81bc07c0c23c969b5f7a1bf439db72fc08ab8713c77f14aacc96b00e950ce3cb" +
		"2083c6eb978588c6856e2d9103f9a897e7ea2540492303727260b120d02db47e1c01"
	evmOnboardingSig = "0x78a6342ec93a04f1273cd2a0b8cbc00d97dc0787357a8d83f302bb0af8f10786" +
		"0d54e7e331cc60f47c446c176a7fbe2ddc5b071d19e7ecfc9eb162ebc755230c1c01"

	intentOrderHash  = "7fc5a617ae390033f309563536b44f227e8c736c9f0e24df898a2398d888a5ac"
	intentSigDigest  = "c9ac6d506b5e1b0555a497201af07893a7417be74804147b17f839ae02ceb501"
	intentCancelHash = "88f2ecc849ffb4c6b66e38cb38a7e175ec9514b7dde00027da9c6d2ae1aaa486"

	intentOrderSig = "81961a4ef9063f061d136bc1a2215f1fc67d3c6296718a0b46fed85580a51418" +
		"443240ca87205c3736cc79abe03968b0bf7a7c8baa35e4b7553cfcebb689110b" + "1" + testPubB64
	intentCancelSig = "4d7da7449423e1045ce0c6606415f12c7227558c92947df71a6b29bd4677d742" +
		"cbe595cd12b83fa6e840e742ed74e0b2eaa06150c8b6881b64a02db54a69410b" + "1" + testPubB64
	intentOnboardingSig = "37cc5465c6cf99c0d3fb0fed96e7384516cfe6c95d2458fe5847a131a393045a" +
		"ebfd0e31a92fea26fa64d7e1979d468e09b206e2c750a2974e3e0d86e220f408" + "1" + testPubB64
)

var testMarketID = "0x" + strings.Repeat("ab", 32)

func evmKey(t *testing.T) *crypto.ECDSAKey {
	t.Helper()
	k, err := crypto.ECDSAKeyFromHex(testECDSAKey)
	if err != nil {
		t.Fatalf("ECDSAKeyFromHex: %v", err)
	}
	return k
}

func edKey(t *testing.T) *crypto.Ed25519Key {
	t.Helper()
	k, err := crypto.Ed25519KeyFromHex(testEd25519Key)
	if err != nil {
		t.Fatalf("Ed25519KeyFromHex: %v", err)
	}
	return k
}

func evmOrder() *eip712.Order {
	return &eip712.Order{
		IsBuy:        true,
		Price:        "1601000000000000000000",
		Quantity:     "10000000000000000",
		Leverage:     "20000000000000000000",
		TriggerPrice: "0",
		Salt:         "169332763775317",
		Expiration:   "1696006037",
	}
}

func intentOrder() *intent.Order {
	return &intent.Order{
		Market:        "ETH-PERP",
		IsBuy:         true,
		OrderbookOnly: true,
		OrderType:     intent.OrderTypeMarket,
		TimeInForce:   intent.TimeInForceGTT,
		Price:         "0",
		Quantity:      "10000000000000000",
		Leverage:      "3000000000000000000",
		Salt:          "1695466663327505",
		Expiration:    "1696489933397",
	}
}

func newEVMVenue(t *testing.T, personal bool) *EVMVenue {
	t.Helper()
	cfg := params.Default().EVM
	cfg.PersonalSign = personal
	v, err := NewEVMVenue(cfg, evmKey(t), WithLogger(zap.NewNop()))
	if err != nil {
		t.Fatalf("NewEVMVenue: %v", err)
	}
	return v
}

func newIntentVenue(t *testing.T, key crypto.SigningKey) *IntentVenue {
	t.Helper()
	cfg := params.Default().Intent
	cfg.Markets = "ETH-PERP=" + testMarketID
	v, err := NewIntentVenueFromConfig(cfg, key)
	if err != nil {
		t.Fatalf("NewIntentVenueFromConfig: %v", err)
	}
	return v
}

func TestEVMSignOrder(t *testing.T) {
	tests := []struct {
		name     string
		personal bool
		want     string
	}{
		{"personal", true, evmOrderSig},
		{"direct", false, evmOrderSigDirect},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newEVMVenue(t, tt.personal)
			signed, err := v.SignOrder(evmOrder())
			if err != nil {
				t.Fatalf("SignOrder: %v", err)
			}
			if signed.Hash != evmOrderHash {
				t.Errorf("hash = %s, want %s", signed.Hash, evmOrderHash)
			}
			if signed.Signature != tt.want {
				t.Errorf("signature = %s, want %s", signed.Signature, tt.want)
			}
			if signed.Signer != testEVMAddr {
				t.Errorf("signer = %s, want %s", signed.Signer, testEVMAddr)
			}
			if err := v.Verify(signed); err != nil {
				t.Errorf("Verify: %v", err)
			}
		})
	}
}

func TestEVMSignOrderMaker(t *testing.T) {
	v := newEVMVenue(t, true)

	o := evmOrder()
	o.Maker = strings.ToLower(testEVMAddr)
	signed, err := v.SignOrder(o)
	if err != nil {
		t.Fatalf("SignOrder: %v", err)
	}
	if signed.Hash != evmOrderHash {
		t.Errorf("hash = %s, want %s", signed.Hash, evmOrderHash)
	}

	o.Maker = "0x934Dd6503795ef6EE6a36e3b3f1d7Be6c7096955"
	if _, err := v.SignOrder(o); err == nil {
		t.Error("expected error for foreign maker")
	}
}

func TestEVMSignCancel(t *testing.T) {
	v := newEVMVenue(t, true)
	signed, err := v.SignCancel(evmOrderHash)
	if err != nil {
		t.Fatalf("SignCancel: %v", err)
	}
	if signed.Hash != evmCancelHash {
		t.Errorf("hash = %s, want %s", signed.Hash, evmCancelHash)
	}
	if signed.Signature != evmCancelSig {
		t.Errorf("signature = %s, want %s", signed.Signature, evmCancelSig)
	}
	if len(signed.OrderHashes) != 1 || signed.OrderHashes[0] != evmOrderHash {
		t.Errorf("order hashes = %v", signed.OrderHashes)
	}

	if _, err := v.SignCancel(); err == nil {
		t.Error("expected error for empty cancel")
	}
}

func TestEVMSignOnboarding(t *testing.T) {
	// Onboarding is personal-signed even when orders are not.
	v := newEVMVenue(t, false)
	msg, err := v.SignOnboarding()
	if err != nil {
		t.Fatalf("SignOnboarding: %v", err)
	}
	if msg.Message != eip712.TestnetOnboardingURL {
		t.Errorf("message = %s", msg.Message)
	}
	if msg.Signature != evmOnboardingSig {
		t.Errorf("signature = %s, want %s", msg.Signature, evmOnboardingSig)
	}
}

func TestEVMVenueRejectsEd25519Key(t *testing.T) {
	_, err := NewEVMVenue(params.Default().EVM, edKey(t))
	if !errors.Is(err, codec.ErrSignatureSchemeMismatch) {
		t.Fatalf("err = %v, want %v", err, codec.ErrSignatureSchemeMismatch)
	}
}

func TestEVMVenueBadConfig(t *testing.T) {
	cfg := params.Default().EVM
	cfg.TraderContract = "not-an-address"
	if _, err := NewEVMVenue(cfg, evmKey(t)); !errors.Is(err, codec.ErrMalformedAddress) {
		t.Fatalf("err = %v, want %v", err, codec.ErrMalformedAddress)
	}
}

func TestEVMNewOrder(t *testing.T) {
	now := time.Date(2023, 9, 29, 12, 0, 0, 0, time.UTC)
	cfg := params.Default().EVM
	v, err := NewEVMVenue(cfg, evmKey(t), WithClock(util.FixedClock(now)))
	if err != nil {
		t.Fatalf("NewEVMVenue: %v", err)
	}

	o, err := v.NewOrder(false, "1601000000000000000000", "10000000000000000", "20000000000000000000", time.Hour)
	if err != nil {
		t.Fatalf("NewOrder: %v", err)
	}
	if o.Expiration != "1695992400" {
		t.Errorf("expiration = %s, want 1695992400", o.Expiration)
	}
	if !strings.HasPrefix(o.Salt, "1695988800000") || len(o.Salt) != 16 {
		t.Errorf("salt = %s", o.Salt)
	}
	if o.Maker != testEVMAddr {
		t.Errorf("maker = %s", o.Maker)
	}
	if _, err := v.SignOrder(o); err != nil {
		t.Errorf("SignOrder: %v", err)
	}
}

func TestIntentSignOrder(t *testing.T) {
	key := edKey(t)
	v := newIntentVenue(t, key)

	signed, err := v.SignOrder(context.Background(), intentOrder())
	if err != nil {
		t.Fatalf("SignOrder: %v", err)
	}
	if signed.Hash != intentOrderHash {
		t.Errorf("hash = %s, want %s", signed.Hash, intentOrderHash)
	}
	if signed.Signature != intentOrderSig {
		t.Errorf("signature = %s, want %s", signed.Signature, intentOrderSig)
	}
	if signed.Signer != testIntentAddr {
		t.Errorf("signer = %s, want %s", signed.Signer, testIntentAddr)
	}

	// The signature covers the hex-text digest, not the reported order hash.
	digest, _ := codec.ParseHash("digest", intentSigDigest)
	addr, ok, err := crypto.VerifyEd25519(digest.Bytes(), signed.Signature)
	if err != nil || !ok || addr != testIntentAddr {
		t.Errorf("VerifyEd25519(signing digest) = %s, %v, %v", addr, ok, err)
	}
	orderHash, _ := codec.ParseHash("hash", signed.Hash)
	if _, ok, _ := crypto.VerifyEd25519(orderHash.Bytes(), signed.Signature); ok {
		t.Error("signature verifies over the order hash")
	}
}

func TestIntentOrderRequest(t *testing.T) {
	v := newIntentVenue(t, edKey(t))
	req, signed, err := v.OrderRequest(context.Background(), intentOrder())
	if err != nil {
		t.Fatalf("OrderRequest: %v", err)
	}
	if req.OrderSignature != signed.Signature || req.UserAddress != testIntentAddr {
		t.Errorf("request = %+v", req)
	}
	b, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(b), `"orderSignature":"`+intentOrderSig+`"`) {
		t.Errorf("request body %s missing signature", b)
	}
}

func TestIntentSignCancel(t *testing.T) {
	v := newIntentVenue(t, edKey(t))
	req, err := v.CancelRequest("ETH-PERP", intentOrderHash)
	if err != nil {
		t.Fatalf("CancelRequest: %v", err)
	}
	if req.CancelSignature != intentCancelSig {
		t.Errorf("signature = %s, want %s", req.CancelSignature, intentCancelSig)
	}
	if req.Symbol != "ETH-PERP" || len(req.OrderHashes) != 1 {
		t.Errorf("request = %+v", req)
	}

	signed, err := v.SignCancel(intentOrderHash)
	if err != nil {
		t.Fatalf("SignCancel: %v", err)
	}
	if signed.Hash != intentCancelHash {
		t.Errorf("hash = %s, want %s", signed.Hash, intentCancelHash)
	}
}

func TestIntentSignOnboarding(t *testing.T) {
	v := newIntentVenue(t, edKey(t))
	msg, err := v.SignOnboarding()
	if err != nil {
		t.Fatalf("SignOnboarding: %v", err)
	}
	if msg.Signature != intentOnboardingSig {
		t.Errorf("signature = %s, want %s", msg.Signature, intentOnboardingSig)
	}
}

func TestIntentVenueRejectsECDSAKey(t *testing.T) {
	v := newIntentVenue(t, evmKey(t))
	if _, err := v.SignOrder(context.Background(), intentOrder()); !errors.Is(err, codec.ErrSignatureSchemeMismatch) {
		t.Fatalf("err = %v, want %v", err, codec.ErrSignatureSchemeMismatch)
	}
	if _, err := v.SignCancel(intentOrderHash); !errors.Is(err, codec.ErrSignatureSchemeMismatch) {
		t.Fatalf("err = %v, want %v", err, codec.ErrSignatureSchemeMismatch)
	}
}

func TestIntentNewOrder(t *testing.T) {
	now := time.Date(2023, 10, 5, 7, 12, 13, 397e6, time.UTC)
	cfg := params.Default().Intent
	cfg.Markets = "ETH-PERP=" + testMarketID
	v, err := NewIntentVenueFromConfig(cfg, edKey(t), WithClock(util.FixedClock(now)))
	if err != nil {
		t.Fatalf("NewIntentVenueFromConfig: %v", err)
	}
	o, err := v.NewOrder("ETH-PERP", true, intent.OrderTypeLimit, "1600000000000000000000", "10000000000000000", "3000000000000000000", 0)
	if err != nil {
		t.Fatalf("NewOrder: %v", err)
	}
	if o.Expiration != "1696489933397" {
		t.Errorf("expiration = %s, want 1696489933397", o.Expiration)
	}
	if _, err := v.SignOrder(context.Background(), o); err != nil {
		t.Errorf("SignOrder: %v", err)
	}
}

func TestConfirmOrder(t *testing.T) {
	v := newIntentVenue(t, edKey(t))
	signed := &SignedOrder{Hash: intentOrderHash}

	for _, remote := range []string{intentOrderHash, "0x" + intentOrderHash, strings.ToUpper(intentOrderHash)} {
		if err := v.ConfirmOrder(signed, remote); err != nil {
			t.Errorf("ConfirmOrder(%s): %v", remote, err)
		}
	}

	err := v.ConfirmOrder(signed, intentCancelHash)
	if !errors.Is(err, codec.ErrHashMismatch) {
		t.Fatalf("err = %v, want %v", err, codec.ErrHashMismatch)
	}

	ev := newEVMVenue(t, true)
	if err := ev.ConfirmOrder(&SignedOrder{Hash: evmOrderHash}, evmOrderHash[2:]); err != nil {
		t.Errorf("ConfirmOrder: %v", err)
	}
}
