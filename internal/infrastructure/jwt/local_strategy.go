package jwt

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/manorfm/scholarship-auth/internal/domain"
	"go.uber.org/zap"
)

// localStrategy implements JWTStrategy using local RSA key pair
type localStrategy struct {
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
	config     *domain.LocalConfig
	logger     *zap.Logger
	keyID      string
	mu         sync.RWMutex
}

// NewLocalStrategy creates a new local strategy for JWT signing.
// With an empty KeyPath the key pair is generated and kept in memory.
func NewLocalStrategy(config *domain.LocalConfig, logger *zap.Logger) (domain.JWTStrategy, error) {
	if config == nil {
		return nil, domain.ErrInvalidKeyConfig
	}

	strategy := &localStrategy{
		config: config,
		logger: logger,
	}

	if err := strategy.loadOrGenerateKeyPair(); err != nil {
		logger.Error("Failed to initialise signing key", zap.String("key_path", config.KeyPath), zap.Error(err))
		return nil, domain.ErrInvalidKeyConfig
	}

	strategy.keyID = generateKeyID(strategy.publicKey)

	return strategy, nil
}

// loadOrGenerateKeyPair loads the key pair from file or generates a new one
func (l *localStrategy) loadOrGenerateKeyPair() error {
	if l.config.KeyPath == "" {
		return l.generateKeyPair(false)
	}

	dir := filepath.Dir(l.config.KeyPath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	if err := l.loadKeyPair(); err == nil {
		return nil
	}

	l.logger.Info("Generating new signing key", zap.String("key_path", l.config.KeyPath))
	return l.generateKeyPair(true)
}

// loadKeyPair loads the key pair from file
func (l *localStrategy) loadKeyPair() error {
	privateKeyPEM, err := os.ReadFile(l.config.KeyPath)
	if err != nil {
		return err
	}

	block, _ := pem.Decode(privateKeyPEM)
	if block == nil {
		return domain.ErrInvalidKeyConfig
	}

	privateKey, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err != nil {
		return err
	}

	l.privateKey = privateKey
	l.publicKey = &privateKey.PublicKey
	return nil
}

// generateKeyPair generates a new RSA key pair, optionally persisting it to KeyPath
func (l *localStrategy) generateKeyPair(persist bool) error {
	privateKey, err := rsa.GenerateKey(rand.Reader, domain.RSAKeySize)
	if err != nil {
		return err
	}

	if persist {
		privateKeyPEM := pem.EncodeToMemory(&pem.Block{
			Type:  "RSA PRIVATE KEY",
			Bytes: x509.MarshalPKCS1PrivateKey(privateKey),
		})
		if err := os.WriteFile(l.config.KeyPath, privateKeyPEM, 0600); err != nil {
			return err
		}
	}

	l.privateKey = privateKey
	l.publicKey = &privateKey.PublicKey
	return nil
}

// Sign signs a JWT token using the local private key
func (l *localStrategy) Sign(claims *domain.Claims) (string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = l.keyID

	return token.SignedString(l.privateKey)
}

// GetPublicKey returns the public key
func (l *localStrategy) GetPublicKey() *rsa.PublicKey {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.publicKey
}

// GetKeyID returns the current key ID
func (l *localStrategy) GetKeyID() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.keyID
}

// generateKeyID derives a stable key ID from the public key
func generateKeyID(key *rsa.PublicKey) string {
	data := append(key.N.Bytes(), byte(key.E))
	hash := sha256.Sum256(data)
	return base64.RawURLEncoding.EncodeToString(hash[:])
}

// GetAccessDuration returns the access token duration
func (l *localStrategy) GetAccessDuration() time.Duration {
	if l.config.AccessDuration > 0 {
		return l.config.AccessDuration
	}
	return domain.DefaultAccessTokenDuration
}

// GetRefreshDuration returns the refresh token duration
func (l *localStrategy) GetRefreshDuration() time.Duration {
	if l.config.RefreshDuration > 0 {
		return l.config.RefreshDuration
	}
	return domain.DefaultRefreshTokenDuration
}
