package service

import (
	"errors"
	"testing"
	"time"

	"lms-api/internal/domain"
)

func newTestTokenService() *TokenService {
	return NewTokenService("access-secret", "refresh-secret", "activation-secret", 5*time.Minute, 3*24*time.Hour, 5*time.Minute)
}

func TestTokenService_IssueAndVerifyPair(t *testing.T) {
	svc := newTestTokenService()

	pair, err := svc.IssuePair("u1")
	if err != nil {
		t.Fatalf("issue pair: %v", err)
	}

	access, err := svc.VerifyAccess(pair.AccessToken)
	if err != nil {
		t.Fatalf("verify access: %v", err)
	}
	if access.UserID != "u1" {
		t.Fatalf("expected user u1, got %q", access.UserID)
	}

	refresh, err := svc.VerifyRefresh(pair.RefreshToken)
	if err != nil {
		t.Fatalf("verify refresh: %v", err)
	}
	if refresh.UserID != "u1" {
		t.Fatalf("expected user u1, got %q", refresh.UserID)
	}
}

func TestTokenService_SecretsAreNotInterchangeable(t *testing.T) {
	svc := newTestTokenService()

	pair, err := svc.IssuePair("u1")
	if err != nil {
		t.Fatalf("issue pair: %v", err)
	}

	if _, err := svc.VerifyAccess(pair.RefreshToken); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid verifying refresh as access, got %v", err)
	}
	if _, err := svc.VerifyRefresh(pair.AccessToken); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid verifying access as refresh, got %v", err)
	}
}

func TestTokenService_ExpiredAccessToken(t *testing.T) {
	svc := NewTokenService("a", "r", "act", -time.Minute, time.Hour, time.Hour)

	token, err := svc.IssueAccessToken("u1")
	if err != nil {
		t.Fatalf("issue access: %v", err)
	}
	if _, err := svc.VerifyAccess(token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestTokenService_ActivationTokenRoundTrip(t *testing.T) {
	svc := newTestTokenService()
	pending := domain.PendingRegistration{
		Name:         "Ana",
		Email:        "ana@example.com",
		PasswordHash: "hash",
	}

	token, code, err := svc.IssueActivationToken(pending)
	if err != nil {
		t.Fatalf("issue activation: %v", err)
	}
	if len(code) != 4 || code[0] == '0' {
		t.Fatalf("expected 4 digit code in 1000-9999, got %q", code)
	}

	claims, err := svc.VerifyActivation(token)
	if err != nil {
		t.Fatalf("verify activation: %v", err)
	}
	if claims.User != pending {
		t.Fatalf("expected pending registration round trip, got %+v", claims.User)
	}
	if claims.Code != code {
		t.Fatalf("expected code %q inside claims, got %q", code, claims.Code)
	}
}

func TestTokenService_DecodeExpiryWithoutVerification(t *testing.T) {
	svc := newTestTokenService()

	token, err := svc.IssueAccessToken("u1")
	if err != nil {
		t.Fatalf("issue access: %v", err)
	}

	// Otro servicio con secretos distintos igual puede leer el exp.
	other := NewTokenService("x", "y", "z", time.Minute, time.Minute, time.Minute)
	exp, ok := other.DecodeExpiry(token)
	if !ok {
		t.Fatalf("expected decodable expiry")
	}
	if !exp.After(time.Now()) {
		t.Fatalf("expected future expiry, got %v", exp)
	}

	if _, ok := other.DecodeExpiry("not-a-token"); ok {
		t.Fatalf("expected garbage token to be undecodable")
	}
}

func TestTokenService_TamperedTokenRejected(t *testing.T) {
	svc := newTestTokenService()

	token, err := svc.IssueAccessToken("u1")
	if err != nil {
		t.Fatalf("issue access: %v", err)
	}
	tampered := token[:len(token)-2] + "xx"
	if _, err := svc.VerifyAccess(tampered); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}
