package goAuthClient

import (
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := defaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config must validate, got %v", err)
	}
}

func TestConfigValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero challenge ttl", func(c *Config) { c.Verification.ChallengeTTL = 0 }},
		{"zero resend cooldown", func(c *Config) { c.Verification.ResendCooldown = 0 }},
		{"cooldown exceeds ttl", func(c *Config) {
			c.Verification.ChallengeTTL = time.Minute
			c.Verification.ResendCooldown = 2 * time.Minute
		}},
		{"code too short", func(c *Config) { c.Verification.CodeLength = 3 }},
		{"code too long", func(c *Config) { c.Verification.CodeLength = 11 }},
		{"prefix without plus", func(c *Config) { c.Discovery.DefaultCountryPrefix = "91" }},
		{"missing country digits", func(c *Config) { c.Discovery.LocalCountryDigits = "" }},
		{"empty namespace", func(c *Config) { c.Session.Namespace = "" }},
		{"audit without buffer", func(c *Config) {
			c.Audit.Enabled = true
			c.Audit.BufferSize = 0
		}},
	}

	for _, tc := range cases {
		cfg := defaultConfig()
		tc.mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", tc.name)
		}
	}
}

func TestDisabledDiscoverySkipsPrefixChecks(t *testing.T) {
	cfg := defaultConfig()
	cfg.Discovery.Enabled = false
	cfg.Discovery.DefaultCountryPrefix = ""
	cfg.Discovery.LocalCountryDigits = ""

	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled discovery must skip prefix validation, got %v", err)
	}
}
