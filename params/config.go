package params

import (
	"math/big"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type EVM struct {
	TraderContract string
	ChainID        *big.Int
	DomainName     string
	DomainVersion  string
	// PersonalSign prefixes digests with "\x19Ethereum Signed Message:\n32" before
	// signing, which is what browser wallets and the venue's own clients do.
	PersonalSign  bool
	OnboardingURL string
	PrivateKey    string
}

type Intent struct {
	OnboardingURL string
	// Markets is a comma-separated SYMBOL=0xobjectid list.
	Markets    string
	PrivateKey string
}

type Log struct {
	Level string
	File  string // empty logs to stdout only
}

type Config struct {
	EVM    EVM
	Intent Intent
	Log    Log
}

func Default() Config {
	return Config{
		EVM: EVM{
			TraderContract: "0x934Dd6503795ef6EE6a36e3b3f1d7Be6c7096955", // arbitrum goerli
			ChainID:        big.NewInt(421613),
			DomainName:     "IsolatedTrader",
			DomainVersion:  "1.0",
			PersonalSign:   true,
			OnboardingURL:  "https://testnet.firefly.exchange",
		},
		Intent: Intent{
			OnboardingURL: "https://testnet.bluefin.io",
		},
		Log: Log{
			Level: "info",
		},
	}
}

// LoadFromEnv loads configuration from .env file (if exists) and environment variables
// Priority: ENV > .env file > defaults
func LoadFromEnv(envPath string) Config {
	cfg := Default()

	if envPath != "" {
		_ = godotenv.Load(envPath)
	} else {
		_ = godotenv.Load()
	}

	cfg.EVM.TraderContract = getEnv("EVM_TRADER_CONTRACT", cfg.EVM.TraderContract)
	if id := os.Getenv("EVM_CHAIN_ID"); id != "" {
		if v, ok := new(big.Int).SetString(id, 10); ok {
			cfg.EVM.ChainID = v
		}
	}
	cfg.EVM.DomainName = getEnv("EVM_DOMAIN_NAME", cfg.EVM.DomainName)
	cfg.EVM.DomainVersion = getEnv("EVM_DOMAIN_VERSION", cfg.EVM.DomainVersion)
	if ps := os.Getenv("EVM_PERSONAL_SIGN"); ps != "" {
		if b, err := strconv.ParseBool(ps); err == nil {
			cfg.EVM.PersonalSign = b
		}
	}
	cfg.EVM.OnboardingURL = getEnv("EVM_ONBOARDING_URL", cfg.EVM.OnboardingURL)
	cfg.EVM.PrivateKey = getEnv("EVM_PRIVATE_KEY", cfg.EVM.PrivateKey)

	cfg.Intent.OnboardingURL = getEnv("INTENT_ONBOARDING_URL", cfg.Intent.OnboardingURL)
	cfg.Intent.Markets = getEnv("INTENT_MARKETS", cfg.Intent.Markets)
	cfg.Intent.PrivateKey = getEnv("ED25519_PRIVATE_KEY", cfg.Intent.PrivateKey)

	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.File = getEnv("LOG_FILE", cfg.Log.File)

	return cfg
}

// getEnv returns environment variable value or default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
