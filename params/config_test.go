package params

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.EVM.ChainID.Int64() != 421613 {
		t.Errorf("chain id = %s", cfg.EVM.ChainID)
	}
	if !cfg.EVM.PersonalSign {
		t.Error("personal sign should default on")
	}
	if cfg.EVM.DomainName != "IsolatedTrader" || cfg.EVM.DomainVersion != "1.0" {
		t.Errorf("domain = %s/%s", cfg.EVM.DomainName, cfg.EVM.DomainVersion)
	}
}

func TestLoadFromEnv(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	content := "EVM_CHAIN_ID=42161\n" +
		"EVM_TRADER_CONTRACT=0x1111111111111111111111111111111111111111\n" +
		"INTENT_MARKETS=ETH-PERP=0xabc\n" +
		"LOG_LEVEL=debug\n"
	if err := os.WriteFile(envPath, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	// Environment wins over the file; godotenv never overrides set variables.
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("EVM_PERSONAL_SIGN", "false")
	// Registered so t.Setenv restores them after godotenv sets them.
	for _, k := range []string{"EVM_CHAIN_ID", "EVM_TRADER_CONTRACT", "INTENT_MARKETS"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}

	cfg := LoadFromEnv(envPath)

	if cfg.EVM.ChainID.Int64() != 42161 {
		t.Errorf("chain id = %s, want 42161", cfg.EVM.ChainID)
	}
	if cfg.EVM.TraderContract != "0x1111111111111111111111111111111111111111" {
		t.Errorf("contract = %s", cfg.EVM.TraderContract)
	}
	if cfg.Intent.Markets != "ETH-PERP=0xabc" {
		t.Errorf("markets = %q", cfg.Intent.Markets)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("log level = %s, want warn", cfg.Log.Level)
	}
	if cfg.EVM.PersonalSign {
		t.Error("personal sign should be off")
	}
	if cfg.EVM.DomainName != "IsolatedTrader" {
		t.Errorf("domain name = %s", cfg.EVM.DomainName)
	}
}

func TestLoadFromEnvIgnoresBadValues(t *testing.T) {
	t.Setenv("EVM_CHAIN_ID", "not-a-number")
	t.Setenv("EVM_PERSONAL_SIGN", "maybe")

	cfg := LoadFromEnv(filepath.Join(t.TempDir(), "missing.env"))
	if cfg.EVM.ChainID.Int64() != 421613 {
		t.Errorf("chain id = %s, want default", cfg.EVM.ChainID)
	}
	if !cfg.EVM.PersonalSign {
		t.Error("personal sign should keep its default")
	}
}
