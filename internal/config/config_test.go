package config

import (
	"strings"
	"testing"
	"time"
)

func validTestConfig() *Config {
	return &Config{
		Env:                       "development",
		DatabaseURL:               "postgres://x",
		ChainRPCURL:               "http://localhost:8545",
		ChainID:                   31337,
		TokenContractAddress:      "0x5FbDB2315678afecb367f032d93F642f64180aa3",
		EscrowContractAddress:     "0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512",
		OperatorPrivateKey:        strings.Repeat("a", 64),
		APIRateLimitPerMin:        120,
		MintRateLimitPerMin:       12,
		ChainCallTimeout:          10 * time.Second,
		ChainConfirmTimeout:       90 * time.Second,
		OTELTraceSamplingRatio:    1.0,
		OTELMetricsExportInterval: 10 * time.Second,
		OTELLogLevel:              "info",
	}
}

func TestValidateAcceptsCompleteConfig(t *testing.T) {
	if err := validTestConfig().Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestValidateRejectsMissingChainSettings(t *testing.T) {
	cfg := validTestConfig()
	cfg.ChainRPCURL = ""
	cfg.TokenContractAddress = "0xNOTHEX"
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "CHAIN_RPC_URL") {
		t.Fatalf("expected CHAIN_RPC_URL in error, got %v", err)
	}
	if !strings.Contains(err.Error(), "TOKEN_CONTRACT_ADDRESS") {
		t.Fatalf("expected TOKEN_CONTRACT_ADDRESS in error, got %v", err)
	}
}

func TestValidateRejectsBadPrivateKey(t *testing.T) {
	cfg := validTestConfig()
	cfg.OperatorPrivateKey = "abc123"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected private key validation error")
	}

	cfg.OperatorPrivateKey = "0x" + strings.Repeat("f", 64)
	if err := cfg.Validate(); err != nil {
		t.Fatalf("0x-prefixed key should be accepted, got %v", err)
	}
}

func TestValidateStorageRequirements(t *testing.T) {
	cfg := validTestConfig()
	cfg.StorageEnabled = true
	cfg.MinioEndpoint = ""
	cfg.MinioBucket = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected storage validation error")
	}
	if !strings.Contains(err.Error(), "MINIO_ENDPOINT") || !strings.Contains(err.Error(), "MINIO_BUCKET") {
		t.Fatalf("expected minio settings in error, got %v", err)
	}
}

func TestIsHexAddress(t *testing.T) {
	cases := []struct {
		in string
		ok bool
	}{
		{"0x5FbDB2315678afecb367f032d93F642f64180aa3", true},
		{"0x0000000000000000000000000000000000000000", true},
		{"5FbDB2315678afecb367f032d93F642f64180aa3", false},
		{"0x5FbDB2315678afecb367f032d93F642f64180aa", false},
		{"0xZZbDB2315678afecb367f032d93F642f64180aa3", false},
		{"", false},
	}
	for _, c := range cases {
		if got := isHexAddress(c.in); got != c.ok {
			t.Fatalf("isHexAddress(%q) = %v, want %v", c.in, got, c.ok)
		}
	}
}
