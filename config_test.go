package lmsAuth

import (
	"testing"
	"time"
)

func TestDefaultConfigNeedsOnlySecrets(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected missing secrets to fail validation")
	}
	cfg.JWT.AccessSecret = []byte("a")
	cfg.JWT.RefreshSecret = []byte("b")
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults with secrets to validate, got %v", err)
	}
	if cfg.JWT.RefreshTTL != 3*24*time.Hour {
		t.Fatalf("expected canonical 3d refresh ttl, got %v", cfg.JWT.RefreshTTL)
	}
	if cfg.Session.TTL != 7*24*time.Hour {
		t.Fatalf("expected 7d session ttl, got %v", cfg.Session.TTL)
	}
}

func TestConfigValidateRejects(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"same secrets", func(c *Config) { c.JWT.RefreshSecret = c.JWT.AccessSecret }},
		{"zero access ttl", func(c *Config) { c.JWT.AccessTTL = 0 }},
		{"refresh not longer than access", func(c *Config) { c.JWT.RefreshTTL = c.JWT.AccessTTL }},
		{"negative leeway", func(c *Config) { c.JWT.Leeway = -time.Second }},
		{"zero session ttl", func(c *Config) { c.Session.TTL = 0 }},
		{"prefix whitespace", func(c *Config) { c.Session.RedisPrefix = "sess: " }},
		{"bcrypt cost", func(c *Config) { c.Password.BcryptCost = 99 }},
		{"min length", func(c *Config) { c.Password.MinLength = 0 }},
		{"same cookie names", func(c *Config) { c.Security.RefreshCookieName = c.Security.AccessCookieName }},
		{"audit buffer", func(c *Config) { c.Audit.Enabled = true; c.Audit.BufferSize = 0 }},
		{"audit drain timeout", func(c *Config) { c.Audit.DrainTimeout = -time.Second }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testConfig()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestInjectedCodecSkipsSecretChecks(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.validate(false); err != nil {
		t.Fatalf("expected config without secrets to pass when codec is injected, got %v", err)
	}
}

func TestWithConfigCopiesSecrets(t *testing.T) {
	cfg := testConfig()
	b := New().WithConfig(cfg)
	cfg.JWT.AccessSecret[0] = 'X'
	if b.config.JWT.AccessSecret[0] == 'X' {
		t.Fatal("expected builder to keep its own copy of secrets")
	}
}
