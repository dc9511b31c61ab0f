// Package auth issues and validates JWT token pairs and hashes passwords.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/globalcluster/referral-backend/internal/config"
)

// Claims carried by both access and refresh tokens.
type Claims struct {
	UserID  string `json:"user_id"`
	Email   string `json:"email"`
	Role    string `json:"role"` // user_type: individual / company / admin
	IsStaff bool   `json:"is_staff"`
	Type    string `json:"type"` // "access" or "refresh"
	jwt.RegisteredClaims
}

// GenerateTokenPair issues an access and a refresh token for the user.
func GenerateTokenPair(cfg *config.Config, userID, email, role string, isStaff bool) (accessToken, refreshToken string, err error) {
	now := time.Now()

	accessClaims := Claims{
		UserID:  userID,
		Email:   email,
		Role:    role,
		IsStaff: isStaff,
		Type:    "access",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.JWTAccessExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    "referral-backend",
			Subject:   userID,
		},
	}
	accessToken, err = jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims).SignedString([]byte(cfg.JWTSecret))
	if err != nil {
		return "", "", err
	}

	refreshClaims := Claims{
		UserID:  userID,
		Email:   email,
		Role:    role,
		IsStaff: isStaff,
		Type:    "refresh",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.JWTRefreshExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    "referral-backend",
			Subject:   userID,
		},
	}
	refreshToken, err = jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims).SignedString([]byte(cfg.JWTRefreshSecret))
	if err != nil {
		return "", "", err
	}

	return accessToken, refreshToken, nil
}

// ValidateAccessToken parses and verifies an access token.
func ValidateAccessToken(cfg *config.Config, tokenString string) (*Claims, error) {
	return validate(tokenString, cfg.JWTSecret, "access")
}

// ValidateRefreshToken parses and verifies a refresh token.
func ValidateRefreshToken(cfg *config.Config, tokenString string) (*Claims, error) {
	return validate(tokenString, cfg.JWTRefreshSecret, "refresh")
}

func validate(tokenString, secret, wantType string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Type != wantType {
		return nil, errors.New("token is not a " + wantType + " token")
	}
	return claims, nil
}
