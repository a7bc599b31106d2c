package jwtutil

import (
	"testing"
	"time"
)

func TestGenerateAndParseToken(t *testing.T) {
	signed, err := GenerateToken("test-secret", time.Hour, 42, "alice")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := ParseToken("test-secret", signed)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != 42 || claims.Username != "alice" {
		t.Errorf("claims = %+v", claims)
	}
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	signed, err := GenerateToken("right-secret", time.Hour, 1, "bob")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := ParseToken("wrong-secret", signed); err == nil {
		t.Error("token signed with another secret should not parse")
	}
}

func TestParseTokenRejectsExpired(t *testing.T) {
	signed, err := GenerateToken("test-secret", -time.Minute, 1, "bob")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := ParseToken("test-secret", signed); err == nil {
		t.Error("expired token should not parse")
	}
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	if _, err := ParseToken("test-secret", "not.a.token"); err == nil {
		t.Error("garbage should not parse")
	}
}
