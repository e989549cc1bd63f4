package service

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"freakmeet/internal/model"
)

func newTestAuthService(t *testing.T) *AuthService {
	t.Helper()
	t.Setenv("ADMIN_PASSWORD", "test-pass")
	t.Setenv("JWT_SECRET", "test-secret")
	return NewAuthService()
}

func TestLoginAndValidate(t *testing.T) {
	svc := newTestAuthService(t)

	resp, err := svc.Login("test-pass")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if resp.Token == "" || resp.AdminID == "" {
		t.Fatalf("incomplete login response: %+v", resp)
	}

	claims, err := svc.ValidateAdminToken(resp.Token)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if claims.AdminID != resp.AdminID {
		t.Errorf("claims admin id %q, want %q", claims.AdminID, resp.AdminID)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc := newTestAuthService(t)

	if _, err := svc.Login("nope"); !errors.Is(err, ErrInvalidPassword) {
		t.Errorf("expected ErrInvalidPassword, got %v", err)
	}
}

func TestValidateRejectsGarbage(t *testing.T) {
	svc := newTestAuthService(t)

	if _, err := svc.ValidateAdminToken("not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

// Only HS256 is accepted; a token signed with another HMAC variant, even
// under the right secret, must not validate.
func TestValidateRejectsWrongSigningMethod(t *testing.T) {
	svc := newTestAuthService(t)

	claims := &model.AdminClaims{
		AdminID: "admin_test",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS384, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("failed to sign test token: %v", err)
	}

	if _, err := svc.ValidateAdminToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for HS384 token, got %v", err)
	}
}
