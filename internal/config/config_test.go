package config

import (
	"os"
	"testing"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	vars := map[string]string{
		"SOLANA_RPC_URL":    "https://api.mainnet-beta.solana.com",
		"SOLANA_WS_URL":     "wss://api.mainnet-beta.solana.com",
		"SOLANA_NETWORK":    "mainnet-beta",
		"SOLANA_COMMITMENT": "confirmed",
		"WALLET_MASTER_KEY": "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef",
	}
	for k, v := range vars {
		t.Setenv(k, v)
	}
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.Solana.Commitment != "confirmed" {
		t.Errorf("expected default commitment confirmed, got %s", cfg.Solana.Commitment)
	}
	if cfg.Executor.WorkerCount <= 0 {
		t.Errorf("expected positive default worker count, got %d", cfg.Executor.WorkerCount)
	}
}

func TestValidate_RejectsMissingRPCURL(t *testing.T) {
	cfg := &Config{
		Solana:   SolanaConfig{WSURL: "wss://x", Commitment: "confirmed", Network: "mainnet-beta"},
		Security: SecurityConfig{WalletMasterKeyHex: "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"},
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing SOLANA_RPC_URL")
	}
}

func TestValidate_RejectsDevnetOnMainnet(t *testing.T) {
	cfg := &Config{
		Solana: SolanaConfig{
			Network:       "mainnet-beta",
			RPCPrimaryURL: "https://api.devnet.solana.com",
			WSURL:         "wss://api.mainnet-beta.solana.com",
			Commitment:    "confirmed",
		},
		Security: SecurityConfig{WalletMasterKeyHex: "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"},
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for devnet RPC URL under mainnet-beta network")
	}
}

func TestValidate_RejectsBadCommitment(t *testing.T) {
	cfg := &Config{
		Solana: SolanaConfig{
			Network:       "mainnet-beta",
			RPCPrimaryURL: "https://api.mainnet-beta.solana.com",
			WSURL:         "wss://api.mainnet-beta.solana.com",
			Commitment:    "bogus",
		},
		Security: SecurityConfig{WalletMasterKeyHex: "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"},
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid commitment level")
	}
}

func TestValidate_RejectsBadMasterKeyLength(t *testing.T) {
	cfg := &Config{
		Solana: SolanaConfig{
			Network:       "mainnet-beta",
			RPCPrimaryURL: "https://api.mainnet-beta.solana.com",
			WSURL:         "wss://api.mainnet-beta.solana.com",
			Commitment:    "confirmed",
		},
		Security: SecurityConfig{WalletMasterKeyHex: "deadbeef"},
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for short master key")
	}
}

func TestGetEnvAsList(t *testing.T) {
	os.Unsetenv("RAPTOR_TEST_LIST")
	if got := getEnvAsList("RAPTOR_TEST_LIST", []string{"a"}); len(got) != 1 || got[0] != "a" {
		t.Errorf("expected default, got %v", got)
	}
	t.Setenv("RAPTOR_TEST_LIST", "a, b ,c")
	got := getEnvAsList("RAPTOR_TEST_LIST", nil)
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("index %d: got %s, want %s", i, got[i], want[i])
		}
	}
}
