package domain

import (
	"crypto/rsa"
	"time"
)

// JWTStrategy defines the interface for JWT signing strategies
type JWTStrategy interface {
	// Sign signs a JWT token with the strategy's private key
	Sign(claims *Claims) (string, error)
	// GetPublicKey returns the public key for token validation
	GetPublicKey() *rsa.PublicKey
	// GetKeyID returns the current key ID
	GetKeyID() string
	// GetAccessDuration returns the access token duration
	GetAccessDuration() time.Duration
	// GetRefreshDuration returns the refresh token duration
	GetRefreshDuration() time.Duration
}

// LocalConfig holds the configuration for local key storage.
// An empty KeyPath keeps a generated key in memory only.
type LocalConfig struct {
	KeyPath         string
	AccessDuration  time.Duration
	RefreshDuration time.Duration
}
