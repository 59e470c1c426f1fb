package auth

import (
	"testing"
	"time"
)

func testConfig() *Config {
	return &Config{
		Secret:   []byte("test-secret"),
		Issuer:   "edunet",
		Audience: "edunet-realtime",
		TTL:      time.Hour,
	}
}

func TestTokenRoundTrip(t *testing.T) {
	cfg := testConfig()

	token, err := GenerateToken(cfg, "user-42")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	claims, err := ValidateToken(cfg, token)
	if err != nil {
		t.Fatalf("validate token: %v", err)
	}
	if claims.UserID != "user-42" {
		t.Fatalf("unexpected user id: %s", claims.UserID)
	}
}

func TestValidateTokenRejections(t *testing.T) {
	cfg := testConfig()
	good, err := GenerateToken(cfg, "user-42")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	tests := []struct {
		name  string
		cfg   *Config
		token string
	}{
		{
			name:  "garbage token",
			cfg:   cfg,
			token: "not.a.token",
		},
		{
			name:  "wrong secret",
			cfg:   &Config{Secret: []byte("other-secret"), Issuer: cfg.Issuer, Audience: cfg.Audience, TTL: cfg.TTL},
			token: good,
		},
		{
			name:  "wrong issuer",
			cfg:   &Config{Secret: cfg.Secret, Issuer: "someone-else", Audience: cfg.Audience, TTL: cfg.TTL},
			token: good,
		},
		{
			name:  "wrong audience",
			cfg:   &Config{Secret: cfg.Secret, Issuer: cfg.Issuer, Audience: "other-app", TTL: cfg.TTL},
			token: good,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ValidateToken(tt.cfg, tt.token); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestValidateTokenExpired(t *testing.T) {
	cfg := testConfig()
	cfg.TTL = -time.Minute

	token, err := GenerateToken(cfg, "user-42")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	if _, err := ValidateToken(cfg, token); err == nil {
		t.Fatal("expected expiry error")
	}
}

func TestValidateTokenMissingUserID(t *testing.T) {
	cfg := testConfig()

	token, err := GenerateToken(cfg, "")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	if _, err := ValidateToken(cfg, token); err == nil {
		t.Fatal("expected missing user id error")
	}
}
