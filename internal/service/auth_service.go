package service

import (
	"errors"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"freakmeet/internal/model"
)

var (
	ErrInvalidPassword = errors.New("invalid admin password")
	ErrInvalidToken    = errors.New("invalid or expired token")
)

// AuthService guards the admin maintenance endpoints (clear-all-rooms).
// A PIN grants full voting rights by itself; only destructive bulk
// operations sit behind this.
type AuthService struct {
	adminPassword string
	jwtSecret     []byte
}

// NewAuthService creates a new auth service
func NewAuthService() *AuthService {
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "never_meet_a_freak_67"
	}
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "super-secret-key-change-in-production"
	}

	return &AuthService{
		adminPassword: password,
		jwtSecret:     []byte(secret),
	}
}

// Login validates the admin password and returns a short-lived token
func (s *AuthService) Login(password string) (*model.LoginResponse, error) {
	if password != s.adminPassword {
		return nil, ErrInvalidPassword
	}

	adminID := "admin_" + uuid.New().String()[:8]

	claims := &model.AdminClaims{
		AdminID: adminID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(1 * time.Hour)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, err
	}

	return &model.LoginResponse{
		Token:   tokenString,
		AdminID: adminID,
	}, nil
}

// ValidateAdminToken validates an admin JWT and returns claims
func (s *AuthService) ValidateAdminToken(tokenString string) (*model.AdminClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &model.AdminClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*model.AdminClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
