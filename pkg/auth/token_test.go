package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/syed-hamad/Retail-POS-sub001/pkg/config"
	"github.com/syed-hamad/Retail-POS-sub001/pkg/enums"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:          "unit-test-secret",
		Issuer:          "pos-admin-test",
		AccessTokenTTL:  15 * time.Minute,
		SessionTTL:      12 * time.Hour,
		ClockSkewLeeway: 30 * time.Second,
	}
}

func TestMintAndParseRoundTrip(t *testing.T) {
	cfg := testJWTConfig()
	payload := AccessTokenPayload{
		UserID:   "staff-1",
		SellerID: "seller-1",
		Role:     enums.StaffRoleManager,
		JTI:      "access-123",
	}

	signed, err := MintAccessToken(cfg, time.Now(), payload)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	claims, err := ParseAccessToken(cfg, signed)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != payload.UserID {
		t.Fatalf("user id: got %q want %q", claims.UserID, payload.UserID)
	}
	if claims.SellerID != payload.SellerID {
		t.Fatalf("seller id: got %q want %q", claims.SellerID, payload.SellerID)
	}
	if claims.Role != enums.StaffRoleManager {
		t.Fatalf("role: got %q", claims.Role)
	}
	if claims.ID != "access-123" {
		t.Fatalf("jti: got %q", claims.ID)
	}
}

func TestMintGeneratesJTI(t *testing.T) {
	cfg := testJWTConfig()
	signed, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{
		UserID:   "staff-1",
		SellerID: "seller-1",
		Role:     enums.StaffRoleCashier,
	})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	claims, err := ParseAccessToken(cfg, signed)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.ID == "" {
		t.Fatal("expected generated jti")
	}
}

func TestMintValidation(t *testing.T) {
	cfg := testJWTConfig()
	base := AccessTokenPayload{UserID: "staff-1", SellerID: "seller-1", Role: enums.StaffRoleOwner}

	tests := []struct {
		name   string
		cfg    config.JWTConfig
		mutate func(*AccessTokenPayload)
	}{
		{"missing secret", config.JWTConfig{Issuer: "x", AccessTokenTTL: time.Minute}, nil},
		{"missing issuer", config.JWTConfig{Secret: "x", AccessTokenTTL: time.Minute}, nil},
		{"zero ttl", config.JWTConfig{Secret: "x", Issuer: "x"}, nil},
		{"missing user", cfg, func(p *AccessTokenPayload) { p.UserID = " " }},
		{"missing seller", cfg, func(p *AccessTokenPayload) { p.SellerID = "" }},
		{"bad role", cfg, func(p *AccessTokenPayload) { p.Role = "janitor" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := base
			if tt.mutate != nil {
				tt.mutate(&payload)
			}
			if _, err := MintAccessToken(tt.cfg, time.Now(), payload); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestParseRejectsExpired(t *testing.T) {
	cfg := testJWTConfig()
	signed, err := MintAccessToken(cfg, time.Now().Add(-time.Hour), AccessTokenPayload{
		UserID:   "staff-1",
		SellerID: "seller-1",
		Role:     enums.StaffRoleOwner,
	})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if _, err := ParseAccessToken(cfg, signed); err == nil {
		t.Fatal("expected expiry error")
	}
}

func TestParseRejectsWrongIssuer(t *testing.T) {
	cfg := testJWTConfig()
	signed, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{
		UserID:   "staff-1",
		SellerID: "seller-1",
		Role:     enums.StaffRoleOwner,
	})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	other := cfg
	other.Issuer = "someone-else"
	if _, err := ParseAccessToken(other, signed); err == nil {
		t.Fatal("expected issuer error")
	}
}

func TestPINRoundTrip(t *testing.T) {
	hash, err := HashPIN("4821")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !strings.HasPrefix(hash, "$2") {
		t.Fatalf("unexpected hash format %q", hash)
	}
	if !VerifyPIN("4821", hash) {
		t.Fatal("expected pin to verify")
	}
	if VerifyPIN("0000", hash) {
		t.Fatal("wrong pin must not verify")
	}
}

func TestHashPINValidation(t *testing.T) {
	for _, pin := range []string{"", "123", "123456789", "12a4"} {
		if _, err := HashPIN(pin); err == nil {
			t.Fatalf("expected error for pin %q", pin)
		}
	}
}
