package eip712

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Onboarding URLs the EVM venue expects a new account to sign.
const (
	TestnetOnboardingURL = "https://testnet.firefly.exchange"
	MainnetOnboardingURL = "https://trade-arb.firefly.exchange"
)

// OnboardingHash is keccak256 of the onboarding URL. The venue expects it signed
// in personal-message mode.
func OnboardingHash(url string) common.Hash {
	return crypto.Keccak256Hash([]byte(url))
}
