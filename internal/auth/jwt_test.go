package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestParseToken_Valid(t *testing.T) {
	secret := []byte("test-secret")
	token := mustToken(t, secret, "operator")

	claims, err := ParseToken(token, secret)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Role != "operator" {
		t.Errorf("role = %q", claims.Role)
	}
	if claims.Subject != "user-1" {
		t.Errorf("subject = %q", claims.Subject)
	}
}

func TestParseToken_Rejections(t *testing.T) {
	secret := []byte("test-secret")

	if _, err := ParseToken("", secret); err == nil {
		t.Error("expected error for empty token")
	}
	if _, err := ParseToken(mustToken(t, secret, "viewer"), nil); err == nil {
		t.Error("expected error for empty secret")
	}
	if _, err := ParseToken(mustToken(t, secret, "superuser"), secret); err == nil {
		t.Error("expected error for unknown role")
	}
	if _, err := ParseToken(mustToken(t, secret, ""), secret); err == nil {
		t.Error("expected error for missing role")
	}
}

func TestParseToken_Expired(t *testing.T) {
	secret := []byte("test-secret")
	claims := Claims{
		Role: "viewer",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := ParseToken(signed, secret); err == nil {
		t.Error("expected error for expired token")
	}
}

func TestParseToken_WrongAlgorithm(t *testing.T) {
	secret := []byte("test-secret")
	claims := Claims{
		Role: "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(secret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := ParseToken(signed, secret); err == nil {
		t.Error("expected error for non-HS256 token")
	}
}

func TestRoleAtLeast(t *testing.T) {
	if !RoleAtLeast(RoleAdmin, RoleOperator) {
		t.Error("admin should satisfy operator")
	}
	if RoleAtLeast(RoleViewer, RoleOperator) {
		t.Error("viewer should not satisfy operator")
	}
	if !RoleAtLeast(RoleViewer, RoleViewer) {
		t.Error("viewer should satisfy viewer")
	}
}

func TestSubjectContextRoundTrip(t *testing.T) {
	ctx := WithSubject(context.Background(), "user-9")
	if got := SubjectFromContext(ctx); got != "user-9" {
		t.Errorf("subject = %q", got)
	}
	if got := SubjectFromContext(context.Background()); got != "" {
		t.Errorf("expected empty subject, got %q", got)
	}
}
