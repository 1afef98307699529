package domain

import (
	"crypto/rsa"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	DefaultAccessTokenDuration  = 15 * time.Minute
	DefaultRefreshTokenDuration = 24 * time.Hour
	RSAKeySize                  = 2048
)

// TokenType distinguishes access tokens from refresh tokens.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// TokenPair represents a pair of access and refresh tokens
type TokenPair struct {
	AccessToken  string `json:"access"`
	RefreshToken string `json:"refresh"`
}

// Claims carries denormalised account fields so a client can render the
// session without another round trip.
type Claims struct {
	jwt.RegisteredClaims
	TokenType TokenType `json:"token_type"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	IsStaff   bool      `json:"is_staff"`
}

// JWTService is the session issuer. Verification is a stateless signature and expiry check.
type JWTService interface {
	GenerateTokenPair(user *User) (*TokenPair, error)
	ValidateToken(token string) (*Claims, error)
	RefreshAccessToken(refreshToken string) (string, error)
	GetPublicKey() *rsa.PublicKey
}
